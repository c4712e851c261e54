package planner

import (
	"time"

	"meal-planner/internal/core/nutrition"
	"meal-planner/internal/core/store"
	"meal-planner/internal/pkg/common"
)

// MenuRequest 食譜菜單請求
type MenuRequest struct {
	PersonID   *uint    `json:"personId,omitempty"`
	TDEE       int      `json:"tdee" binding:"omitempty,gt=0"`
	Allowed    []string `json:"ingredientes"`
	Excluded   []string `json:"excluidos"`
	MealsCount int      `json:"comidas" binding:"required,mealscount"`
	Goal       string   `json:"objetivo,omitempty"`
	OnlySlot   *int     `json:"soloComida,omitempty" binding:"omitempty,gte=0"`
}

// GramajeRequest 克數菜單請求
type GramajeRequest struct {
	PersonID   *uint    `json:"personId,omitempty"`
	TDEE       int      `json:"tdee" binding:"omitempty,gt=0"`
	Allowed    []string `json:"ingredientes"`
	MealsCount int      `json:"comidas" binding:"required,mealscount"`
	Goal       string   `json:"objetivo,omitempty"`
}

// RecipeMenu 食譜菜單結果
type RecipeMenu struct {
	ID      string                 `json:"id,omitempty"`
	Meals   []nutrition.RecipeMeal `json:"menu"`
	Summary nutrition.MenuSummary  `json:"resumen"`
}

// GramajeMenu 克數菜單結果
type GramajeMenu struct {
	ID      string                  `json:"id,omitempty"`
	Meals   []nutrition.GramajeMeal `json:"menu"`
	Summary nutrition.MenuSummary   `json:"resumen"`
}

// SavedMenu 已儲存的菜單與摘要
type SavedMenu struct {
	ID         string                  `json:"id"`
	PersonID   uint                    `json:"personId"`
	Kind       string                  `json:"tipo"`
	MealsCount int                     `json:"comidas"`
	TDEE       int                     `json:"tdee"`
	Goal       string                  `json:"objetivo"`
	CreatedAt  time.Time               `json:"creado"`
	Recipes    []nutrition.RecipeMeal  `json:"menu,omitempty"`
	Gramaje    []nutrition.GramajeMeal `json:"gramaje,omitempty"`
	Summary    nutrition.MenuSummary   `json:"resumen"`
}

// BatchResult 批次產生時單一使用者的結果
type BatchResult struct {
	PersonID     uint        `json:"personId"`
	Name         string      `json:"nombre"`
	Menu         *RecipeMenu `json:"menu,omitempty"`
	Insufficient bool        `json:"insufficient,omitempty"`
	Error        string      `json:"error,omitempty"`
}

// toPersonConfig 資料列轉為 API 格式
func toPersonConfig(m store.PersonModel) common.PersonConfig {
	id := m.ID
	return common.PersonConfig{
		ID:           &id,
		Nombre:       m.Name,
		Sexo:         m.Sex,
		Edad:         m.Age,
		Peso:         m.Weight,
		Estatura:     m.Height,
		Actividad:    m.Activity,
		Objetivo:     m.Goal,
		TDEE:         m.TDEE,
		Ingredientes: append([]string{}, m.Allowed...),
		Excluidos:    append([]string{}, m.Excluded...),
	}
}

func energyInput(p common.PersonConfig) nutrition.EnergyInput {
	return nutrition.EnergyInput{
		Sex:      p.Sexo,
		Age:      p.Edad,
		Weight:   p.Peso,
		Height:   p.Estatura,
		Activity: p.Actividad,
		Goal:     p.Objetivo,
	}
}

// biometricsChanged 影響 TDEE 的欄位是否變動
func biometricsChanged(m store.PersonModel, p common.PersonConfig) bool {
	return m.Sex != p.Sexo ||
		m.Age != p.Edad ||
		m.Weight != p.Peso ||
		m.Height != p.Estatura ||
		m.Activity != p.Actividad ||
		m.Goal != p.Objetivo
}
