package nutrition

import (
	"math"
	"strings"
)

const (
	topUpStep       = 10 // 每次補足增加的克數
	topUpIterations = 5
	energyTolerance = 10 // 低於每餐熱量超過此值才做熱量修正

	vegetableCarbShare = 0.2
	fruitCarbShare     = 0.3
)

// 每餐各組抽取數量
const (
	proteinPicks   = 1
	vegetablePicks = 2
	fruitPicks     = 2
	fatPicks       = 2
)

var vegetableNames = []string{
	"espinaca", "brócoli", "zanahoria", "tomate", "calabaza", "pepino", "espárrago", "jitomate",
	"cebolla", "lechuga", "coliflor", "calabacita", "betabel", "champiñón", "apio",
}

var fruitNames = []string{
	"manzana", "plátano", "fresa", "mango", "pera", "uva", "sandía", "melón",
	"piña", "durazno", "ciruela", "papaya", "kiwi", "mandarina", "naranja",
}

// GramajeInput 克數菜單的輸入
type GramajeInput struct {
	TDEE       int      `json:"tdee"`
	MealsCount int      `json:"comidas"`
	Allowed    []string `json:"ingredientes"`
	Goal       string   `json:"objetivo,omitempty"`
}

// IngredientPortion 一項食材與分配的克數
type IngredientPortion struct {
	Name   string     `json:"nombre"`
	Grams  int        `json:"gramos"`
	Per100 Ingredient `json:"macros"`
}

// Macros 此份量提供的營養素
func (p IngredientPortion) Macros() Macros {
	return p.Per100.Per100().Scale(float64(p.Grams) / 100)
}

// Kcal 此份量提供的熱量
func (p IngredientPortion) Kcal() float64 {
	return p.Per100.Kcal * float64(p.Grams) / 100
}

// GramajeMeal 一餐的食材克數
type GramajeMeal struct {
	Slot        string              `json:"comida"`
	Ingredients []IngredientPortion `json:"ingredientes"`
	Calories    float64             `json:"calorias"`
	Macros      Macros              `json:"macros"`
}

// buckets 四個食物組
type buckets struct {
	protein, vegetable, fruit, fat []Ingredient
}

// partition 依營養素主導與名稱分組，空的組別改用整個食材池
func partition(pool []Ingredient) buckets {
	var b buckets
	for _, ing := range pool {
		name := strings.ToLower(ing.Name)
		if ing.Protein > ing.Carbs && ing.Protein > ing.Fat {
			b.protein = append(b.protein, ing)
		}
		if containsAny(name, vegetableNames) {
			b.vegetable = append(b.vegetable, ing)
		}
		if containsAny(name, fruitNames) {
			b.fruit = append(b.fruit, ing)
		}
		if ing.Fat > ing.Protein && ing.Fat > ing.Carbs {
			b.fat = append(b.fat, ing)
		}
	}
	if len(b.protein) == 0 {
		b.protein = pool
	}
	if len(b.vegetable) == 0 {
		b.vegetable = pool
	}
	if len(b.fruit) == 0 {
		b.fruit = pool
	}
	if len(b.fat) == 0 {
		b.fat = pool
	}
	return b
}

func containsAny(name string, words []string) bool {
	for _, w := range words {
		if strings.Contains(name, w) {
			return true
		}
	}
	return false
}

// ComposeIngredientMenu 每餐從四個食物組抽食材並分配克數。
// 允許的食材不在目錄中時回傳空清單。
func (c *Composer) ComposeIngredientMenu(in GramajeInput) []GramajeMeal {
	pool := c.catalog.FilterIngredients(in.Allowed)
	if len(pool) == 0 {
		return []GramajeMeal{}
	}

	labels := SlotLabels(in.MealsCount)
	slots := float64(len(labels))
	daily := ProfileFor(in.Goal).DailyTargets(in.TDEE, math.Floor)
	perMeal := daily.Scale(1 / slots)
	kcalPerMeal := float64(in.TDEE) / slots

	b := partition(pool)

	menu := make([]GramajeMeal, 0, len(labels))
	for _, label := range labels {
		c.mu.Lock()
		protein := c.drawIngredients(b.protein, proteinPicks)
		vegetables := c.drawIngredients(b.vegetable, vegetablePicks)
		fruits := c.drawIngredients(b.fruit, fruitPicks)
		fats := c.drawIngredients(b.fat, fatPicks)
		c.mu.Unlock()

		portions := make([]IngredientPortion, 0, len(protein)+len(vegetables)+len(fruits)+len(fats))
		portions = append(portions, c.assignGroup(protein, perMeal.Protein, proteinOf)...)
		portions = append(portions, c.assignGroup(vegetables, perMeal.Carbs*vegetableCarbShare, carbsOf)...)
		portions = append(portions, c.assignGroup(fruits, perMeal.Carbs*fruitCarbShare, carbsOf)...)
		portions = append(portions, c.assignGroup(fats, perMeal.Fat, fatOf)...)

		c.correctEnergy(portions, kcalPerMeal)

		macros, kcal := aggregate(portions)
		menu = append(menu, GramajeMeal{
			Slot:        label,
			Ingredients: portions,
			Calories:    roundHalfUp(kcal),
			Macros:      macros.Round(),
		})
	}
	return menu
}

func proteinOf(i Ingredient) float64 { return i.Protein }
func carbsOf(i Ingredient) float64   { return i.Carbs }
func fatOf(i Ingredient) float64     { return i.Fat }

// assignGroup 將一組的營養素目標平均分給組內食材，換算克數並受上限限制，
// 不足時每次加 10 克補足，最多 5 輪
func (c *Composer) assignGroup(ings []Ingredient, groupTarget float64, macro func(Ingredient) float64) []IngredientPortion {
	if len(ings) == 0 {
		return nil
	}
	perIngredient := groupTarget / float64(len(ings))

	portions := make([]IngredientPortion, 0, len(ings))
	for _, ing := range ings {
		content := macro(ing)
		if content == 0 {
			content = 1
		}
		grams := int(roundHalfUp(perIngredient / content * 100))
		if limit := c.catalog.MaxGramsFor(ing.Name); grams > limit {
			grams = limit
		}
		portions = append(portions, IngredientPortion{Name: ing.Name, Grams: grams, Per100: ing})
	}

	delivered := func() float64 {
		var sum float64
		for _, p := range portions {
			sum += macro(p.Per100) * float64(p.Grams) / 100
		}
		return sum
	}

	sum := delivered()
	for iter := 0; sum < groupTarget && iter < topUpIterations; iter++ {
		for i := range portions {
			if portions[i].Grams+topUpStep > c.catalog.MaxGramsFor(portions[i].Name) {
				continue
			}
			portions[i].Grams += topUpStep
			sum = delivered()
			if sum >= groupTarget {
				break
			}
		}
	}
	return portions
}

// correctEnergy 熱量低於每餐目標超過容許值時，依各食材熱量佔比補足克數
func (c *Composer) correctEnergy(portions []IngredientPortion, target float64) {
	_, kcal := aggregate(portions)
	if kcal >= target-energyTolerance || kcal <= 0 {
		return
	}
	shortfall := target - kcal
	for i := range portions {
		p := &portions[i]
		if p.Per100.Kcal <= 0 {
			continue
		}
		share := p.Kcal() / kcal
		extra := int(math.Floor(shortfall * share / (p.Per100.Kcal / 100)))
		grams := p.Grams + extra
		if limit := c.catalog.MaxGramsFor(p.Name); grams > limit {
			grams = limit
		}
		p.Grams = grams
	}
}

// aggregate 由克數計算營養素與熱量
func aggregate(portions []IngredientPortion) (Macros, float64) {
	var (
		total Macros
		kcal  float64
	)
	for _, p := range portions {
		total = total.Add(p.Macros())
		kcal += p.Kcal()
	}
	return total, kcal
}

// GramajeMacros 克數菜單的營養素與熱量總和（使用每餐回報值）
func GramajeMacros(meals []GramajeMeal) (Macros, float64) {
	var (
		total Macros
		kcal  float64
	)
	for _, m := range meals {
		total = total.Add(m.Macros)
		kcal += m.Calories
	}
	return total, kcal
}
