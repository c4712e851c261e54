package nutrition

import "math"

// MenuSummary 菜單摘要：總量、熱量比例與目標偏差
type MenuSummary struct {
	Calories  float64 `json:"calorias"`
	Macros    Macros  `json:"macros"`
	MacroKcal float64 `json:"caloriasMacros"`
	Percent   Macros  `json:"porcentaje"`
	Target    int     `json:"objetivoCalorias"`
	Deviation float64 `json:"desviacion"` // 營養素熱量相對目標的百分比差
	Goal      string  `json:"objetivo"`
	Advice    string  `json:"consejo"`
}

// SummarizeRecipes 食譜菜單摘要
func SummarizeRecipes(meals []RecipeMeal, tdee int, goal string) MenuSummary {
	var kcal float64
	for _, m := range meals {
		kcal += m.Calories
	}
	return summarize(MenuMacros(meals), kcal, tdee, goal)
}

// SummarizeGramaje 克數菜單摘要
func SummarizeGramaje(meals []GramajeMeal, tdee int, goal string) MenuSummary {
	macros, kcal := GramajeMacros(meals)
	return summarize(macros, kcal, tdee, goal)
}

func summarize(macros Macros, kcal float64, tdee int, goal string) MenuSummary {
	profile := ProfileFor(goal)
	macroKcal := macros.Kcal()
	pct := macros.Percent()

	var deviation float64
	if tdee > 0 {
		deviation = (macroKcal - float64(tdee)) * 100 / float64(tdee)
	}

	return MenuSummary{
		Calories:  roundTo(kcal, 0),
		Macros:    macros,
		MacroKcal: roundTo(macroKcal, 0),
		Percent: Macros{
			Protein: roundTo(pct.Protein, 1),
			Carbs:   roundTo(pct.Carbs, 1),
			Fat:     roundTo(pct.Fat, 1),
		},
		Target:    tdee,
		Deviation: roundTo(deviation, 1),
		Goal:      profile.Goal,
		Advice:    profile.Advice,
	}
}

func roundTo(x float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(x*p) / p
}
