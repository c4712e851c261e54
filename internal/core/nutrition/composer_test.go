package nutrition

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// ComposerTestSuite 兩種菜單組合的測試
type ComposerTestSuite struct {
	suite.Suite
	composer *Composer
	catalog  *Catalog
}

func (s *ComposerTestSuite) SetupTest() {
	s.catalog = DefaultCatalog()
	s.composer = NewComposer(WithSeed(42), WithCatalog(s.catalog))
}

func allIngredientNames(c *Catalog) []string {
	var names []string
	for _, ing := range c.Ingredients() {
		names = append(names, ing.Name)
	}
	return names
}

func (s *ComposerTestSuite) TestComposeMenu() {
	s.Run("FullPool_ShouldFillEverySlotWithDistinctRecipes", func() {
		// Arrange
		in := MenuInput{TDEE: 2100, Allowed: allIngredientNames(s.catalog), MealsCount: 3}

		// Act
		menu := s.composer.ComposeMenu(in)

		// Assert
		require.Len(s.T(), menu, 3)
		seen := map[string]bool{}
		for i, meal := range menu {
			assert.Equal(s.T(), SlotLabels(3)[i], meal.Slot)
			assert.Equal(s.T(), 700.0, meal.Calories)
			assert.NotEmpty(s.T(), meal.Ingredients)
			assert.False(s.T(), seen[meal.Recipe], "recipe repeated: %s", meal.Recipe)
			seen[meal.Recipe] = true
		}
	})

	s.Run("FiveMeals_ShouldUseFiveLabels", func() {
		menu := s.composer.ComposeMenu(MenuInput{TDEE: 2500, Allowed: allIngredientNames(s.catalog), MealsCount: 5})

		require.Len(s.T(), menu, 5)
		for i, meal := range menu {
			assert.Equal(s.T(), SlotLabels(5)[i], meal.Slot)
			assert.Equal(s.T(), 500.0, meal.Calories)
		}
	})

	s.Run("ExcludedIngredient_ShouldNeverAppear", func() {
		menu := s.composer.ComposeMenu(MenuInput{
			TDEE:       2000,
			Allowed:    allIngredientNames(s.catalog),
			Excluded:   []string{"Pollo", "Huevo"},
			MealsCount: 5,
		})

		require.Len(s.T(), menu, 5)
		for _, meal := range menu {
			assert.NotContains(s.T(), meal.Ingredients, "Pollo")
			assert.NotContains(s.T(), meal.Ingredients, "Huevo")
		}
	})

	s.Run("SingleMatchingRecipe_ShouldReturnEmpty", func() {
		menu := s.composer.ComposeMenu(MenuInput{TDEE: 2000, Allowed: []string{"Manzana", "Nuez"}, MealsCount: 3})

		require.Len(s.T(), s.catalog.FilterRecipes([]string{"Manzana", "Nuez"}, nil), 1)
		assert.NotNil(s.T(), menu)
		assert.Empty(s.T(), menu)
	})

	s.Run("EmptyAllowed_ShouldReturnEmptyWithoutFallback", func() {
		menu := s.composer.ComposeMenu(MenuInput{TDEE: 2000, MealsCount: 3})

		assert.NotNil(s.T(), menu)
		assert.Empty(s.T(), menu)
	})

	s.Run("AllowedButAllExcluded_ShouldReturnEmpty", func() {
		menu := s.composer.ComposeMenu(MenuInput{
			TDEE:       2000,
			Allowed:    []string{"Manzana", "Nuez"},
			Excluded:   []string{"Nuez"},
			MealsCount: 3,
		})

		assert.Empty(s.T(), menu)
	})
}

func (s *ComposerTestSuite) TestComposeMenuSearch() {
	s.Run("PoolSmallerThanSlots_ShouldReturnEmpty", func() {
		catalog := NewCatalog(nil, []Recipe{
			{Name: "A", Ingredients: []string{"x"}, Macros: Macros{Protein: 10}},
			{Name: "B", Ingredients: []string{"x"}, Macros: Macros{Protein: 10}},
		}, nil)
		composer := NewComposer(WithSeed(1), WithCatalog(catalog))

		assert.Empty(s.T(), composer.ComposeMenu(MenuInput{TDEE: 1200, Allowed: []string{"x"}, MealsCount: 3}))
	})

	s.Run("ShouldPreferTheCombinationClosestToTarget", func() {
		// 1200 kcal mantener: 75 g proteína, 150 g carbohidrato, 33 g grasa
		perfect := Macros{Protein: 25, Carbs: 50, Fat: 11}
		catalog := NewCatalog(nil, []Recipe{
			{Name: "A", Ingredients: []string{"x"}, Macros: perfect},
			{Name: "B", Ingredients: []string{"x"}, Macros: perfect},
			{Name: "C", Ingredients: []string{"x"}, Macros: perfect},
			{Name: "Exceso", Ingredients: []string{"x"}, Macros: Macros{Protein: 120, Carbs: 10, Fat: 60}},
		}, nil)
		composer := NewComposer(WithSeed(7), WithCatalog(catalog))

		menu := composer.ComposeMenu(MenuInput{TDEE: 1200, Allowed: []string{"x"}, MealsCount: 3})

		require.Len(s.T(), menu, 3)
		for _, meal := range menu {
			assert.NotEqual(s.T(), "Exceso", meal.Recipe)
		}
		assert.Equal(s.T(), Macros{Protein: 75, Carbs: 150, Fat: 33}, MenuMacros(menu))
	})

	s.Run("PerfectCombination_ShouldStopSearchEarly", func() {
		perfect := Macros{Protein: 25, Carbs: 50, Fat: 11}
		catalog := NewCatalog(nil, []Recipe{
			{Name: "A", Ingredients: []string{"x"}, Macros: perfect},
			{Name: "B", Ingredients: []string{"x"}, Macros: perfect},
			{Name: "C", Ingredients: []string{"x"}, Macros: perfect},
			{Name: "Exceso", Ingredients: []string{"x"}, Macros: Macros{Protein: 120, Carbs: 10, Fat: 60}},
		}, nil)
		composer := NewComposer(WithSeed(3), WithCatalog(catalog))
		pool := catalog.Recipes()
		target := ProfileFor(GoalMaintain).DailyTargets(1200, roundHalfUp)

		// Act
		best, score, tried := composer.searchRecipes(len(pool), 3, func(picks []int) float64 {
			var total Macros
			for _, i := range picks {
				total = total.Add(pool[i].Macros)
			}
			return recipeScore(total, target)
		})

		// Assert
		require.Len(s.T(), best, 3)
		assert.Zero(s.T(), score)
		assert.Less(s.T(), tried, composer.Trials())
		for _, i := range best {
			assert.NotEqual(s.T(), "Exceso", pool[i].Name)
		}
	})

	s.Run("SearchNeverExceedsTrials", func() {
		assert.Equal(s.T(), DefaultRecipeTrials, NewComposer().Trials())
		assert.Equal(s.T(), DefaultRecipeTrials, NewComposer(WithTrials(0)).Trials())

		for _, trials := range []int{1, 25, DefaultRecipeTrials} {
			composer := NewComposer(WithSeed(5), WithTrials(trials))
			calls := 0

			best, score, tried := composer.searchRecipes(6, 3, func(picks []int) float64 {
				calls++
				return 1
			})

			assert.Equal(s.T(), trials, tried)
			assert.Equal(s.T(), trials, calls)
			assert.Len(s.T(), best, 3)
			assert.Equal(s.T(), 1.0, score)
		}
	})

	s.Run("SingleTrial_ShouldStillFillEverySlot", func() {
		composer := NewComposer(WithSeed(11), WithTrials(1))

		menu := composer.ComposeMenu(MenuInput{TDEE: 2000, Allowed: allIngredientNames(s.catalog), MealsCount: 5})

		require.Len(s.T(), menu, 5)
	})

	s.Run("BlockedRecipes_ShouldNeverBePicked", func() {
		names := []string{}
		for _, r := range s.catalog.FilterRecipes(allIngredientNames(s.catalog), nil)[:2] {
			names = append(names, r.Name)
		}

		for seed := int64(0); seed < 20; seed++ {
			menu := NewComposer(WithSeed(seed)).ComposeMenu(MenuInput{
				TDEE:       2000,
				Allowed:    allIngredientNames(s.catalog),
				MealsCount: 3,
				Blocked:    names,
			})

			require.Len(s.T(), menu, 3)
			for _, meal := range menu {
				assert.NotContains(s.T(), names, meal.Recipe)
			}
		}
	})

	s.Run("SameRandSource_ShouldBeReproducible", func() {
		in := MenuInput{TDEE: 1900, Allowed: allIngredientNames(s.catalog), MealsCount: 3}

		a := NewComposer(WithRand(rand.New(rand.NewSource(8)))).ComposeMenu(in)
		b := NewComposer(WithRand(rand.New(rand.NewSource(8)))).ComposeMenu(in)

		assert.Equal(s.T(), a, b)
	})

	s.Run("SameSeed_ShouldBeReproducible", func() {
		in := MenuInput{TDEE: 2300, Allowed: allIngredientNames(s.catalog), MealsCount: 5, Goal: GoalGainMuscle}

		a := NewComposer(WithSeed(99)).ComposeMenu(in)
		b := NewComposer(WithSeed(99)).ComposeMenu(in)

		assert.Equal(s.T(), a, b)
	})
}

func (s *ComposerTestSuite) TestComposeSlot() {
	in := MenuInput{TDEE: 2100, Allowed: allIngredientNames(s.catalog), MealsCount: 3}
	current := s.composer.ComposeMenu(in)
	require.Len(s.T(), current, 3)

	s.Run("ShouldKeepOtherSlotsAndAvoidTheirRecipes", func() {
		for i := 0; i < 30; i++ {
			slot := i % 3

			meal, ok := s.composer.ComposeSlot(in, current, slot)

			require.True(s.T(), ok)
			assert.Equal(s.T(), SlotLabels(3)[slot], meal.Slot)
			assert.Equal(s.T(), 700.0, meal.Calories)
			for j, other := range current {
				if j != slot {
					assert.NotEqual(s.T(), other.Recipe, meal.Recipe)
				}
			}
		}
	})

	s.Run("BlockedCurrentRecipe_ShouldPickAnother", func() {
		blocked := in
		blocked.Blocked = []string{current[0].Recipe}

		meal, ok := s.composer.ComposeSlot(blocked, current, 0)

		require.True(s.T(), ok)
		assert.NotEqual(s.T(), current[0].Recipe, meal.Recipe)
	})

	s.Run("NoCandidateLeft_ShouldReturnFalse", func() {
		catalog := NewCatalog(nil, []Recipe{
			{Name: "A", Ingredients: []string{"x"}, Macros: Macros{Protein: 10}},
			{Name: "B", Ingredients: []string{"x"}, Macros: Macros{Protein: 10}},
			{Name: "C", Ingredients: []string{"x"}, Macros: Macros{Protein: 10}},
		}, nil)
		composer := NewComposer(WithSeed(2), WithCatalog(catalog))
		small := MenuInput{TDEE: 1500, Allowed: []string{"x"}, MealsCount: 3}
		menu := composer.ComposeMenu(small)
		require.Len(s.T(), menu, 3)

		same, ok := composer.ComposeSlot(small, menu, 1)
		require.True(s.T(), ok)
		assert.Equal(s.T(), menu[1].Recipe, same.Recipe)

		small.Blocked = []string{menu[1].Recipe}
		_, ok = composer.ComposeSlot(small, menu, 1)
		assert.False(s.T(), ok)
	})

	s.Run("InvalidSlot_ShouldReturnFalse", func() {
		_, ok := s.composer.ComposeSlot(in, current, 3)
		assert.False(s.T(), ok)

		_, ok = s.composer.ComposeSlot(in, current[:2], 0)
		assert.False(s.T(), ok)
	})
}

func (s *ComposerTestSuite) TestComposeIngredientMenu() {
	s.Run("EmptyAllowed_ShouldReturnEmpty", func() {
		for _, meals := range []int{3, 5} {
			for _, goal := range append(Goals(), "") {
				menu := s.composer.ComposeIngredientMenu(GramajeInput{TDEE: 2000, MealsCount: meals, Goal: goal})
				assert.NotNil(s.T(), menu)
				assert.Empty(s.T(), menu)
			}
		}
	})

	s.Run("UnknownIngredients_ShouldReturnEmpty", func() {
		menu := s.composer.ComposeIngredientMenu(GramajeInput{TDEE: 2000, MealsCount: 3, Allowed: []string{"Dragonfruit"}})
		assert.Empty(s.T(), menu)
	})

	s.Run("FourIngredientScenario_ShouldIncludeCappedChicken", func() {
		// Arrange
		in := GramajeInput{
			TDEE:       2000,
			MealsCount: 3,
			Allowed:    []string{"Pollo", "Brócoli", "Manzana", "Aceite de oliva"},
		}

		// Act
		menu := s.composer.ComposeIngredientMenu(in)

		// Assert
		require.Len(s.T(), menu, 3)
		for _, meal := range menu {
			var chicken *IngredientPortion
			for i := range meal.Ingredients {
				if meal.Ingredients[i].Name == "Pollo" {
					chicken = &meal.Ingredients[i]
				}
			}
			require.NotNil(s.T(), chicken, meal.Slot)
			assert.LessOrEqual(s.T(), chicken.Grams, 250)
			assert.Greater(s.T(), chicken.Grams, 0)
		}
	})

	s.Run("EveryPortion_ShouldRespectItsCap", func() {
		for seed := int64(1); seed <= 20; seed++ {
			composer := NewComposer(WithSeed(seed), WithCatalog(s.catalog))
			menu := composer.ComposeIngredientMenu(GramajeInput{
				TDEE:       3200,
				MealsCount: 3,
				Allowed:    allIngredientNames(s.catalog),
				Goal:       GoalGainMuscle,
			})
			require.Len(s.T(), menu, 3)
			for _, meal := range menu {
				for _, p := range meal.Ingredients {
					assert.LessOrEqual(s.T(), p.Grams, s.catalog.MaxGramsFor(p.Name), p.Name)
					assert.GreaterOrEqual(s.T(), p.Grams, 0, p.Name)
				}
			}
		}
	})

	s.Run("ReportedTotals_ShouldMatchPortions", func() {
		menu := s.composer.ComposeIngredientMenu(GramajeInput{
			TDEE:       2400,
			MealsCount: 5,
			Allowed:    allIngredientNames(s.catalog),
			Goal:       GoalLoseFat,
		})

		require.Len(s.T(), menu, 5)
		for i, meal := range menu {
			assert.Equal(s.T(), SlotLabels(5)[i], meal.Slot)

			var macros Macros
			var kcal float64
			for _, p := range meal.Ingredients {
				macros = macros.Add(Macros{
					Protein: p.Per100.Protein * float64(p.Grams) / 100,
					Carbs:   p.Per100.Carbs * float64(p.Grams) / 100,
					Fat:     p.Per100.Fat * float64(p.Grams) / 100,
				})
				kcal += p.Per100.Kcal * float64(p.Grams) / 100
			}
			assert.InDelta(s.T(), kcal, meal.Calories, 0.5+1e-9)
			assert.InDelta(s.T(), macros.Protein, meal.Macros.Protein, 0.5+1e-9)
			assert.InDelta(s.T(), macros.Carbs, meal.Macros.Carbs, 0.5+1e-9)
			assert.InDelta(s.T(), macros.Fat, meal.Macros.Fat, 0.5+1e-9)
		}
	})

	s.Run("UncappedIngredient_ShouldUseDefaultCap", func() {
		catalog := NewCatalog([]Ingredient{
			{Name: "Seitán", Protein: 10, Carbs: 2, Fat: 1, Kcal: 60},
		}, nil, nil)
		composer := NewComposer(WithSeed(3), WithCatalog(catalog))

		menu := composer.ComposeIngredientMenu(GramajeInput{TDEE: 4000, MealsCount: 3, Allowed: []string{"Seitán"}})

		require.Len(s.T(), menu, 3)
		for _, meal := range menu {
			// 單一食材會落入每個組別
			require.Len(s.T(), meal.Ingredients, 4)
			for _, p := range meal.Ingredients {
				assert.LessOrEqual(s.T(), p.Grams, DefaultMaxGrams)
			}
			assert.Equal(s.T(), DefaultMaxGrams, meal.Ingredients[0].Grams)
		}
	})
}

func (s *ComposerTestSuite) TestPartition() {
	s.Run("ShouldSplitByDominanceAndName", func() {
		pool := s.catalog.FilterIngredients([]string{"Pollo", "Brócoli", "Manzana", "Aceite de oliva"})

		b := partition(pool)

		assert.Equal(s.T(), []string{"Pollo"}, names(b.protein))
		assert.Equal(s.T(), []string{"Brócoli"}, names(b.vegetable))
		assert.Equal(s.T(), []string{"Manzana"}, names(b.fruit))
		assert.Equal(s.T(), []string{"Aceite de oliva"}, names(b.fat))
	})

	s.Run("EmptyBuckets_ShouldFallBackToPool", func() {
		pool := s.catalog.FilterIngredients([]string{"Arroz"})

		b := partition(pool)

		assert.Equal(s.T(), []string{"Arroz"}, names(b.protein))
		assert.Equal(s.T(), []string{"Arroz"}, names(b.vegetable))
		assert.Equal(s.T(), []string{"Arroz"}, names(b.fruit))
		assert.Equal(s.T(), []string{"Arroz"}, names(b.fat))
	})
}

func (s *ComposerTestSuite) TestAssignGroupTopUp() {
	catalog := NewCatalog([]Ingredient{
		{Name: "A", Protein: 20, Kcal: 100},
		{Name: "B", Protein: 20, Kcal: 100},
	}, nil, map[string]int{"A": 100, "B": 300})
	composer := NewComposer(WithCatalog(catalog))
	a, _ := catalog.Ingredient("A")
	b, _ := catalog.Ingredient("B")

	// 每項 30 g 蛋白質 → 150 g，A 被限制在 100 g，B 最多補 5 輪
	portions := composer.assignGroup([]Ingredient{a, b}, 60, proteinOf)

	require.Len(s.T(), portions, 2)
	assert.Equal(s.T(), 100, portions[0].Grams)
	assert.Equal(s.T(), 200, portions[1].Grams)
}

func (s *ComposerTestSuite) TestCorrectEnergy() {
	catalog := NewCatalog([]Ingredient{
		{Name: "A", Protein: 10, Kcal: 100},
		{Name: "Agua", Kcal: 0},
	}, nil, nil)
	composer := NewComposer(WithCatalog(catalog))
	a, _ := catalog.Ingredient("A")
	water, _ := catalog.Ingredient("Agua")

	portions := []IngredientPortion{
		{Name: "A", Grams: 100, Per100: a},
		{Name: "Agua", Grams: 50, Per100: water},
	}

	composer.correctEnergy(portions, 250)

	assert.Equal(s.T(), 250, portions[0].Grams)
	assert.Equal(s.T(), 50, portions[1].Grams)

	_, kcal := aggregate(portions)
	assert.False(s.T(), math.IsNaN(kcal))
}

func names(ings []Ingredient) []string {
	out := make([]string, 0, len(ings))
	for _, i := range ings {
		out = append(out, i.Name)
	}
	return out
}

func TestComposerTestSuite(t *testing.T) {
	suite.Run(t, new(ComposerTestSuite))
}
