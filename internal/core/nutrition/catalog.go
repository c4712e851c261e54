package nutrition

import (
	"sort"
	"strings"
)

// 食材分類
const (
	TypeProtein = "proteina"
	TypeCarbs   = "carbohidrato"
	TypeFat     = "grasa"
	TypeVeggie  = "verdura"
	TypeFruit   = "fruta"
	TypeDairy   = "lacteo"
)

// DefaultMaxGrams 未列在上限表中的食材每餐最多克數
const DefaultMaxGrams = 300

// Ingredient 每 100 克的營養成分
type Ingredient struct {
	Name    string  `json:"nombre"`
	Protein float64 `json:"proteina"`
	Carbs   float64 `json:"carbohidrato"`
	Fat     float64 `json:"grasa"`
	Kcal    float64 `json:"kcal"`
	Type    string  `json:"tipo,omitempty"`
}

// Per100 每 100 克的營養素
func (i Ingredient) Per100() Macros {
	return Macros{Protein: i.Protein, Carbs: i.Carbs, Fat: i.Fat}
}

// Recipe 整道食譜的營養素與熱量
type Recipe struct {
	Name        string   `json:"nombre"`
	Ingredients []string `json:"ingredientes"`
	Macros      Macros   `json:"macros"`
	Kcal        float64  `json:"kcal"`
}

// Catalog 食材與食譜的靜態資料
type Catalog struct {
	ingredients []Ingredient
	recipes     []Recipe
	byName      map[string]Ingredient
	maxGrams    map[string]int
}

// NewCatalog 建立目錄，maxGrams 為 nil 時全部使用預設上限
func NewCatalog(ingredients []Ingredient, recipes []Recipe, maxGrams map[string]int) *Catalog {
	c := &Catalog{
		ingredients: ingredients,
		recipes:     recipes,
		byName:      make(map[string]Ingredient, len(ingredients)),
		maxGrams:    maxGrams,
	}
	for _, ing := range ingredients {
		c.byName[ing.Name] = ing
	}
	if c.maxGrams == nil {
		c.maxGrams = map[string]int{}
	}
	return c
}

// DefaultCatalog 內建目錄
func DefaultCatalog() *Catalog {
	return NewCatalog(defaultIngredients, defaultRecipes, defaultMaxGrams)
}

// Ingredients 所有食材（目錄順序）
func (c *Catalog) Ingredients() []Ingredient {
	out := make([]Ingredient, len(c.ingredients))
	copy(out, c.ingredients)
	return out
}

// Recipes 所有食譜（目錄順序）
func (c *Catalog) Recipes() []Recipe {
	out := make([]Recipe, len(c.recipes))
	copy(out, c.recipes)
	return out
}

// Ingredient 以名稱查詢食材
func (c *Catalog) Ingredient(name string) (Ingredient, bool) {
	ing, ok := c.byName[name]
	return ing, ok
}

// HasIngredient 名稱是否存在於目錄
func (c *Catalog) HasIngredient(name string) bool {
	_, ok := c.byName[name]
	return ok
}

// MaxGramsFor 每餐最多克數
func (c *Catalog) MaxGramsFor(name string) int {
	if g, ok := c.maxGrams[name]; ok && g > 0 {
		return g
	}
	return DefaultMaxGrams
}

// FilterIngredients 只保留允許清單中的食材，維持目錄順序
func (c *Catalog) FilterIngredients(allowed []string) []Ingredient {
	set := toSet(allowed)
	out := make([]Ingredient, 0, len(set))
	for _, ing := range c.ingredients {
		if set[ing.Name] {
			out = append(out, ing)
		}
	}
	return out
}

// FilterRecipes 所有材料都在允許清單且沒有任何排除材料的食譜
func (c *Catalog) FilterRecipes(allowed, excluded []string) []Recipe {
	allow := toSet(allowed)
	deny := toSet(excluded)
	out := make([]Recipe, 0)
	for _, r := range c.recipes {
		if usable(r, allow, deny) {
			out = append(out, r)
		}
	}
	return out
}

func usable(r Recipe, allow, deny map[string]bool) bool {
	for _, name := range r.Ingredients {
		if !allow[name] || deny[name] {
			return false
		}
	}
	return true
}

// Compatible 可替換的食譜：排除目前的食譜與使用者封鎖的食譜
func (c *Catalog) Compatible(current string, blocked []string) []Recipe {
	deny := toSet(blocked)
	out := make([]Recipe, 0, len(c.recipes))
	for _, r := range c.recipes {
		if r.Name == current || deny[r.Name] {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Categories 依分類分組的食材，未分類者歸入 "otro"
func (c *Catalog) Categories() map[string][]Ingredient {
	out := make(map[string][]Ingredient)
	for _, ing := range c.ingredients {
		t := ing.Type
		if t == "" {
			t = "otro"
		}
		out[t] = append(out[t], ing)
	}
	return out
}

// CategoryNames 分類名稱（排序後）
func (c *Catalog) CategoryNames() []string {
	cats := c.Categories()
	names := make([]string, 0, len(cats))
	for name := range cats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// UnknownIngredients 不在目錄中的名稱
func (c *Catalog) UnknownIngredients(names []string) []string {
	var out []string
	for _, name := range names {
		if !c.HasIngredient(strings.TrimSpace(name)) {
			out = append(out, name)
		}
	}
	return out
}

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

var defaultMaxGrams = map[string]int{
	// 動物性蛋白（每餐）
	"Pollo":           250,
	"Res":             250,
	"Pescado":         250,
	"Huevo":           240,
	"Pechuga de pavo": 250,
	"Tofu":            250,
	"Yogur griego":    300,
	"Queso":           80,

	// 脂肪
	"Aceite de oliva": 20,
	"Nuez":            40,
	"Almendra":        40,
	"Chía":            25,
	"Linaza":          25,

	// 複合碳水（熟重）
	"Arroz":    180,
	"Pasta":    180,
	"Papa":     250,
	"Camote":   250,
	"Avena":    100,
	"Frijoles": 250,
	"Lentejas": 250,
	"Quinoa":   180,

	// 蔬菜
	"Espinaca":  100,
	"Brócoli":   150,
	"Zanahoria": 150,
	"Tomate":    150,
	"Cebolla":   100,
	"Lechuga":   100,
	"Calabaza":  150,

	// 水果
	"Manzana": 180,
	"Plátano": 150,
	"Fresa":   150,
	"Mango":   150,
	"Piña":    150,
	"Durazno": 150,
	"Sandía":  180,

	// 乳製品
	"Leche": 250,
	"Yogur": 300,

	"Aguacate":       80,
	"Aceite de coco": 15,
	"Pan":            60,
}

var defaultIngredients = []Ingredient{
	{Name: "Pollo", Protein: 31, Carbs: 0, Fat: 3.6, Kcal: 165, Type: TypeProtein},
	{Name: "Res", Protein: 26, Carbs: 0, Fat: 15, Kcal: 250, Type: TypeProtein},
	{Name: "Pescado", Protein: 22, Carbs: 0, Fat: 5, Kcal: 136, Type: TypeProtein},
	{Name: "Huevo", Protein: 13, Carbs: 1.1, Fat: 11, Kcal: 155, Type: TypeProtein},
	{Name: "Pechuga de pavo", Protein: 29, Carbs: 0, Fat: 1, Kcal: 135, Type: TypeProtein},
	{Name: "Tofu", Protein: 8, Carbs: 1.9, Fat: 4.8, Kcal: 76, Type: TypeProtein},
	{Name: "Yogur griego", Protein: 10, Carbs: 3.6, Fat: 0.4, Kcal: 59, Type: TypeDairy},
	{Name: "Queso", Protein: 25, Carbs: 1.3, Fat: 33, Kcal: 402, Type: TypeDairy},

	{Name: "Aceite de oliva", Protein: 0, Carbs: 0, Fat: 100, Kcal: 884, Type: TypeFat},
	{Name: "Nuez", Protein: 15, Carbs: 14, Fat: 65, Kcal: 654, Type: TypeFat},
	{Name: "Almendra", Protein: 21, Carbs: 22, Fat: 50, Kcal: 579, Type: TypeFat},
	{Name: "Chía", Protein: 17, Carbs: 42, Fat: 31, Kcal: 486, Type: TypeFat},
	{Name: "Linaza", Protein: 18, Carbs: 29, Fat: 42, Kcal: 534, Type: TypeFat},
	{Name: "Aguacate", Protein: 2, Carbs: 9, Fat: 15, Kcal: 160, Type: TypeFat},
	{Name: "Aceite de coco", Protein: 0, Carbs: 0, Fat: 100, Kcal: 862, Type: TypeFat},

	{Name: "Arroz", Protein: 2.7, Carbs: 28, Fat: 0.3, Kcal: 130, Type: TypeCarbs},
	{Name: "Pasta", Protein: 5, Carbs: 31, Fat: 0.9, Kcal: 158, Type: TypeCarbs},
	{Name: "Papa", Protein: 2, Carbs: 17, Fat: 0.1, Kcal: 77, Type: TypeCarbs},
	{Name: "Camote", Protein: 1.6, Carbs: 20, Fat: 0.1, Kcal: 86, Type: TypeCarbs},
	{Name: "Avena", Protein: 13, Carbs: 68, Fat: 7, Kcal: 389, Type: TypeCarbs},
	{Name: "Frijoles", Protein: 9, Carbs: 24, Fat: 0.5, Kcal: 127, Type: TypeCarbs},
	{Name: "Lentejas", Protein: 9, Carbs: 20, Fat: 0.4, Kcal: 116, Type: TypeCarbs},
	{Name: "Quinoa", Protein: 4.4, Carbs: 21, Fat: 1.9, Kcal: 120, Type: TypeCarbs},
	{Name: "Pan", Protein: 9, Carbs: 49, Fat: 3.2, Kcal: 265, Type: TypeCarbs},
	{Name: "Tortilla de maíz", Protein: 5.7, Carbs: 45, Fat: 2.9, Kcal: 218, Type: TypeCarbs},

	{Name: "Espinaca", Protein: 2.9, Carbs: 3.6, Fat: 0.4, Kcal: 23, Type: TypeVeggie},
	{Name: "Brócoli", Protein: 2.8, Carbs: 7, Fat: 0.4, Kcal: 34, Type: TypeVeggie},
	{Name: "Zanahoria", Protein: 0.9, Carbs: 10, Fat: 0.2, Kcal: 41, Type: TypeVeggie},
	{Name: "Tomate", Protein: 0.9, Carbs: 3.9, Fat: 0.2, Kcal: 18, Type: TypeVeggie},
	{Name: "Cebolla", Protein: 1.1, Carbs: 9, Fat: 0.1, Kcal: 40, Type: TypeVeggie},
	{Name: "Lechuga", Protein: 1.4, Carbs: 2.9, Fat: 0.2, Kcal: 15, Type: TypeVeggie},
	{Name: "Calabaza", Protein: 1, Carbs: 6.5, Fat: 0.1, Kcal: 26, Type: TypeVeggie},
	{Name: "Pepino", Protein: 0.7, Carbs: 3.6, Fat: 0.1, Kcal: 15, Type: TypeVeggie},

	{Name: "Manzana", Protein: 0.3, Carbs: 14, Fat: 0.2, Kcal: 52, Type: TypeFruit},
	{Name: "Plátano", Protein: 1.1, Carbs: 23, Fat: 0.3, Kcal: 89, Type: TypeFruit},
	{Name: "Fresa", Protein: 0.7, Carbs: 7.7, Fat: 0.3, Kcal: 32, Type: TypeFruit},
	{Name: "Mango", Protein: 0.8, Carbs: 15, Fat: 0.4, Kcal: 60, Type: TypeFruit},
	{Name: "Piña", Protein: 0.5, Carbs: 13, Fat: 0.1, Kcal: 50, Type: TypeFruit},
	{Name: "Durazno", Protein: 0.9, Carbs: 10, Fat: 0.3, Kcal: 39, Type: TypeFruit},
	{Name: "Sandía", Protein: 0.6, Carbs: 7.6, Fat: 0.2, Kcal: 30, Type: TypeFruit},

	{Name: "Leche", Protein: 3.4, Carbs: 5, Fat: 3.3, Kcal: 61, Type: TypeDairy},
	{Name: "Yogur", Protein: 3.5, Carbs: 4.7, Fat: 3.3, Kcal: 61, Type: TypeDairy},
}

var defaultRecipes = []Recipe{
	{Name: "Pollo con arroz y brócoli", Ingredients: []string{"Pollo", "Arroz", "Brócoli"}, Macros: Macros{Protein: 45, Carbs: 50, Fat: 8}, Kcal: 452},
	{Name: "Omelette de espinaca", Ingredients: []string{"Huevo", "Espinaca", "Queso"}, Macros: Macros{Protein: 24, Carbs: 4, Fat: 20}, Kcal: 292},
	{Name: "Avena con plátano", Ingredients: []string{"Avena", "Plátano", "Leche"}, Macros: Macros{Protein: 14, Carbs: 62, Fat: 8}, Kcal: 376},
	{Name: "Yogur griego con fresa", Ingredients: []string{"Yogur griego", "Fresa"}, Macros: Macros{Protein: 17, Carbs: 14, Fat: 1}, Kcal: 133},
	{Name: "Manzana con nuez", Ingredients: []string{"Manzana", "Nuez"}, Macros: Macros{Protein: 4, Carbs: 24, Fat: 13}, Kcal: 229},
	{Name: "Pescado con papa y ensalada", Ingredients: []string{"Pescado", "Papa", "Lechuga", "Tomate"}, Macros: Macros{Protein: 38, Carbs: 40, Fat: 8}, Kcal: 384},
	{Name: "Tacos de res", Ingredients: []string{"Res", "Tortilla de maíz", "Cebolla", "Tomate"}, Macros: Macros{Protein: 35, Carbs: 45, Fat: 18}, Kcal: 482},
	{Name: "Ensalada de pavo", Ingredients: []string{"Pechuga de pavo", "Lechuga", "Tomate", "Pepino", "Aceite de oliva"}, Macros: Macros{Protein: 32, Carbs: 8, Fat: 12}, Kcal: 268},
	{Name: "Tofu salteado con quinoa", Ingredients: []string{"Tofu", "Quinoa", "Brócoli", "Zanahoria"}, Macros: Macros{Protein: 22, Carbs: 45, Fat: 10}, Kcal: 358},
	{Name: "Pasta con pollo y tomate", Ingredients: []string{"Pasta", "Pollo", "Tomate", "Aceite de oliva"}, Macros: Macros{Protein: 40, Carbs: 65, Fat: 12}, Kcal: 528},
	{Name: "Frijoles con arroz", Ingredients: []string{"Frijoles", "Arroz", "Cebolla"}, Macros: Macros{Protein: 15, Carbs: 70, Fat: 2}, Kcal: 358},
	{Name: "Lentejas con zanahoria", Ingredients: []string{"Lentejas", "Zanahoria", "Cebolla", "Aceite de oliva"}, Macros: Macros{Protein: 18, Carbs: 45, Fat: 6}, Kcal: 306},
	{Name: "Tostada de aguacate con huevo", Ingredients: []string{"Pan", "Aguacate", "Huevo"}, Macros: Macros{Protein: 17, Carbs: 30, Fat: 20}, Kcal: 368},
	{Name: "Licuado de plátano y almendra", Ingredients: []string{"Leche", "Plátano", "Almendra"}, Macros: Macros{Protein: 12, Carbs: 40, Fat: 14}, Kcal: 334},
	{Name: "Camote con pollo", Ingredients: []string{"Camote", "Pollo", "Espinaca"}, Macros: Macros{Protein: 40, Carbs: 42, Fat: 6}, Kcal: 382},
	{Name: "Bowl de mango y yogur", Ingredients: []string{"Yogur", "Mango", "Chía"}, Macros: Macros{Protein: 8, Carbs: 35, Fat: 7}, Kcal: 235},
	{Name: "Res con calabaza", Ingredients: []string{"Res", "Calabaza", "Cebolla"}, Macros: Macros{Protein: 34, Carbs: 12, Fat: 18}, Kcal: 346},
	{Name: "Fruta picada", Ingredients: []string{"Piña", "Sandía", "Durazno"}, Macros: Macros{Protein: 2, Carbs: 35, Fat: 1}, Kcal: 157},
	{Name: "Pescado con verduras", Ingredients: []string{"Pescado", "Brócoli", "Calabaza", "Aceite de oliva"}, Macros: Macros{Protein: 36, Carbs: 14, Fat: 14}, Kcal: 326},
	{Name: "Huevos con frijoles", Ingredients: []string{"Huevo", "Frijoles", "Tortilla de maíz"}, Macros: Macros{Protein: 22, Carbs: 40, Fat: 14}, Kcal: 374},
}
