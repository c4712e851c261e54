package nutrition

import "math"

// MenuInput 食譜菜單的輸入
type MenuInput struct {
	TDEE       int      `json:"tdee"`
	Allowed    []string `json:"ingredientes"`
	Excluded   []string `json:"excluidos"`
	MealsCount int      `json:"comidas"`
	Goal       string   `json:"objetivo,omitempty"`
	Blocked    []string `json:"bloqueados,omitempty"` // 不可使用的食譜名稱
}

// RecipeMeal 一餐的食譜
type RecipeMeal struct {
	Slot        string   `json:"comida"`
	Recipe      string   `json:"receta"`
	Calories    float64  `json:"calorias"`
	Macros      Macros   `json:"macros"`
	Ingredients []string `json:"ingredientes"`
}

// ComposeMenu 以隨機嘗試挑選每餐一道不重複的食譜，使總營養素最接近每日目標。
// 可用食譜為空或少於餐數時回傳空清單。
func (c *Composer) ComposeMenu(in MenuInput) []RecipeMeal {
	pool := withoutRecipes(c.catalog.FilterRecipes(in.Allowed, in.Excluded), in.Blocked)
	labels := SlotLabels(in.MealsCount)
	if len(pool) == 0 || len(pool) < len(labels) {
		return []RecipeMeal{}
	}

	target := ProfileFor(in.Goal).DailyTargets(in.TDEE, roundHalfUp)
	best, _, _ := c.searchRecipes(len(pool), len(labels), func(picks []int) float64 {
		var total Macros
		for _, i := range picks {
			total = total.Add(pool[i].Macros)
		}
		return recipeScore(total, target)
	})
	if best == nil {
		return []RecipeMeal{}
	}

	perMeal := float64(in.TDEE) / float64(len(labels))
	menu := make([]RecipeMeal, len(labels))
	for slot, label := range labels {
		menu[slot] = recipeMeal(label, pool[best[slot]], perMeal)
	}
	return menu
}

// ComposeSlot 只重新挑選 current 中第 slot 餐的食譜，其他餐不變。
// 候選食譜排除 in.Blocked 以及其他餐已使用的食譜，沒有候選時回傳 false。
func (c *Composer) ComposeSlot(in MenuInput, current []RecipeMeal, slot int) (RecipeMeal, bool) {
	labels := SlotLabels(in.MealsCount)
	if slot < 0 || slot >= len(labels) || len(current) != len(labels) {
		return RecipeMeal{}, false
	}

	blocked := append([]string{}, in.Blocked...)
	var rest Macros
	for i, meal := range current {
		if i == slot {
			continue
		}
		blocked = append(blocked, meal.Recipe)
		rest = rest.Add(meal.Macros)
	}
	pool := withoutRecipes(c.catalog.FilterRecipes(in.Allowed, in.Excluded), blocked)
	if len(pool) == 0 {
		return RecipeMeal{}, false
	}

	target := ProfileFor(in.Goal).DailyTargets(in.TDEE, roundHalfUp)
	best, _, _ := c.searchRecipes(len(pool), 1, func(picks []int) float64 {
		return recipeScore(rest.Add(pool[picks[0]].Macros), target)
	})
	if best == nil {
		return RecipeMeal{}, false
	}
	return recipeMeal(labels[slot], pool[best[0]], float64(in.TDEE)/float64(len(labels))), true
}

// searchRecipes 最多嘗試 c.trials 次，每次從 n 道食譜取 k 道不重複的組合，
// 保留分數最低者；分數為 0 時提前結束。回傳最佳組合、分數與實際嘗試次數。
func (c *Composer) searchRecipes(n, k int, score func(picks []int) float64) ([]int, float64, int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var (
		best      []int
		bestScore = math.Inf(1)
		tried     int
	)
	for tried < c.trials {
		tried++
		picks := c.pickDistinct(n, k)
		sc := score(picks)
		if sc < bestScore {
			bestScore = sc
			best = append(best[:0], picks...)
		}
		if sc == 0 {
			break
		}
	}
	return best, bestScore, tried
}

func recipeMeal(label string, r Recipe, calories float64) RecipeMeal {
	ingredients := make([]string, len(r.Ingredients))
	copy(ingredients, r.Ingredients)
	return RecipeMeal{
		Slot:        label,
		Recipe:      r.Name,
		Calories:    calories,
		Macros:      r.Macros,
		Ingredients: ingredients,
	}
}

// withoutRecipes 去掉名稱在 names 中的食譜
func withoutRecipes(pool []Recipe, names []string) []Recipe {
	if len(names) == 0 {
		return pool
	}
	deny := toSet(names)
	out := make([]Recipe, 0, len(pool))
	for _, r := range pool {
		if !deny[r.Name] {
			out = append(out, r)
		}
	}
	return out
}

// recipeScore 與目標的絕對差總和
func recipeScore(total, target Macros) float64 {
	return math.Abs(total.Protein-target.Protein) +
		math.Abs(total.Carbs-target.Carbs) +
		math.Abs(total.Fat-target.Fat)
}

// MenuMacros 菜單的營養素總和
func MenuMacros(meals []RecipeMeal) Macros {
	var total Macros
	for _, m := range meals {
		total = total.Add(m.Macros)
	}
	return total
}
