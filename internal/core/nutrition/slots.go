package nutrition

var (
	threeMeals = []string{"Desayuno", "Comida", "Cena"}
	fiveMeals  = []string{"Desayuno", "Colación 1", "Comida", "Colación 2", "Cena"}
)

// ValidMealsCount 只接受 3 或 5 餐
func ValidMealsCount(n int) bool {
	return n == 3 || n == 5
}

// SlotLabels 餐別名稱，5 以外的值一律視為 3 餐
func SlotLabels(mealsCount int) []string {
	src := threeMeals
	if mealsCount == 5 {
		src = fiveMeals
	}
	out := make([]string, len(src))
	copy(out, src)
	return out
}
