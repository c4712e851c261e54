package common

import (
	"fmt"
	"strings"
)

// PersonConfig 一位使用者的設定（前端設定頁的欄位）
type PersonConfig struct {
	ID           *uint    `json:"id,omitempty"`
	Nombre       string   `json:"nombre" binding:"required"`
	Sexo         string   `json:"sexo" binding:"required,oneof=masculino femenino male female"`
	Edad         int      `json:"edad" binding:"required,gt=0"`
	Peso         float64  `json:"peso" binding:"required,gt=0"`
	Estatura     float64  `json:"estatura" binding:"required,gt=0"`
	Actividad    float64  `json:"actividad" binding:"required,gt=0"`
	Objetivo     string   `json:"objetivo"`
	TDEE         *int     `json:"tdee,omitempty"`
	Ingredientes []string `json:"ingredientes,omitempty"`
	Excluidos    []string `json:"excluidos,omitempty"`
}

// IngredientSelection 允許與排除的食材清單
type IngredientSelection struct {
	Permitidos []string `json:"permitidos"`
	Excluidos  []string `json:"excluidos"`
}

// Normalize 去除重複與空白；同時出現在兩邊的食材以排除為準
func (s IngredientSelection) Normalize() IngredientSelection {
	excluded := dedupe(s.Excluidos)
	blocked := make(map[string]bool, len(excluded))
	for _, name := range excluded {
		blocked[name] = true
	}

	allowed := make([]string, 0, len(s.Permitidos))
	for _, name := range dedupe(s.Permitidos) {
		if !blocked[name] {
			allowed = append(allowed, name)
		}
	}
	return IngredientSelection{Permitidos: allowed, Excluidos: excluded}
}

func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

// FormatPerson 格式化使用者摘要（日誌用）
func FormatPerson(p PersonConfig) string {
	return fmt.Sprintf("%s (%s, %d años, %.1f kg, %.0f cm, x%.3f, %s)",
		p.Nombre, p.Sexo, p.Edad, p.Peso, p.Estatura, p.Actividad, p.Objetivo)
}
