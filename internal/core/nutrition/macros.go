package nutrition

import "math"

// 每克熱量
const (
	KcalPerGramProtein = 4
	KcalPerGramCarbs   = 4
	KcalPerGramFat     = 9
)

// 目標代碼
const (
	GoalMaintain          = "mantener"
	GoalLoseFatKeepMuscle = "perder_grasa_mantener_musculo"
	GoalLoseFat           = "perder_grasa"
	GoalRecomposition     = "ganar_musculo_perder_grasa"
	GoalGainMuscle        = "ganar_musculo"
)

// Macros 蛋白質、碳水、脂肪（克）
type Macros struct {
	Protein float64 `json:"proteina"`
	Carbs   float64 `json:"carbohidrato"`
	Fat     float64 `json:"grasa"`
}

// Add 兩組營養素相加
func (m Macros) Add(o Macros) Macros {
	return Macros{
		Protein: m.Protein + o.Protein,
		Carbs:   m.Carbs + o.Carbs,
		Fat:     m.Fat + o.Fat,
	}
}

// Scale 依倍率縮放
func (m Macros) Scale(f float64) Macros {
	return Macros{Protein: m.Protein * f, Carbs: m.Carbs * f, Fat: m.Fat * f}
}

// Kcal 由營養素換算熱量
func (m Macros) Kcal() float64 {
	return m.Protein*KcalPerGramProtein + m.Carbs*KcalPerGramCarbs + m.Fat*KcalPerGramFat
}

// Percent 各營養素佔總熱量的百分比，總熱量為 0 時全為 0
func (m Macros) Percent() Macros {
	total := m.Kcal()
	if total == 0 {
		return Macros{}
	}
	return Macros{
		Protein: m.Protein * KcalPerGramProtein * 100 / total,
		Carbs:   m.Carbs * KcalPerGramCarbs * 100 / total,
		Fat:     m.Fat * KcalPerGramFat * 100 / total,
	}
}

// Round 四捨五入到整數克
func (m Macros) Round() Macros {
	return Macros{
		Protein: roundHalfUp(m.Protein),
		Carbs:   roundHalfUp(m.Carbs),
		Fat:     roundHalfUp(m.Fat),
	}
}

// SumMacros 加總多組營養素
func SumMacros(items ...Macros) Macros {
	var total Macros
	for _, m := range items {
		total = total.Add(m)
	}
	return total
}

// GoalProfile 目標對應的熱量分配與調整
type GoalProfile struct {
	Goal       string `json:"objetivo"`
	Split      Macros `json:"reparto"` // 佔每日熱量的比例，總和為 1
	Adjustment int    `json:"ajuste"`  // 每日熱量增減
	Advice     string `json:"consejo"`
}

var goalProfiles = map[string]GoalProfile{
	GoalMaintain: {
		Goal:       GoalMaintain,
		Split:      Macros{Protein: 0.25, Carbs: 0.5, Fat: 0.25},
		Adjustment: 0,
		Advice:     "Mantén un reparto equilibrado y revisa tu peso cada semana.",
	},
	GoalLoseFatKeepMuscle: {
		Goal:       GoalLoseFatKeepMuscle,
		Split:      Macros{Protein: 0.3, Carbs: 0.4, Fat: 0.3},
		Adjustment: -400,
		Advice:     "Prioriza la proteína en cada comida y conserva el entrenamiento de fuerza.",
	},
	GoalLoseFat: {
		Goal:       GoalLoseFat,
		Split:      Macros{Protein: 0.3, Carbs: 0.35, Fat: 0.35},
		Adjustment: -600,
		Advice:     "El déficit es alto: incluye verduras para mayor saciedad y no bajes de las calorías indicadas.",
	},
	GoalRecomposition: {
		Goal:       GoalRecomposition,
		Split:      Macros{Protein: 0.28, Carbs: 0.42, Fat: 0.3},
		Adjustment: -100,
		Advice:     "Concentra los carbohidratos alrededor del entrenamiento y mantén la proteína alta.",
	},
	GoalGainMuscle: {
		Goal:       GoalGainMuscle,
		Split:      Macros{Protein: 0.25, Carbs: 0.55, Fat: 0.2},
		Adjustment: 400,
		Advice:     "Asegura el superávit diario y reparte los carbohidratos en todas las comidas.",
	},
}

// ProfileFor 取得目標設定，未知或空白目標視為 mantener
func ProfileFor(goal string) GoalProfile {
	if p, ok := goalProfiles[goal]; ok {
		return p
	}
	return goalProfiles[GoalMaintain]
}

// IsKnownGoal 是否為已知目標
func IsKnownGoal(goal string) bool {
	_, ok := goalProfiles[goal]
	return ok
}

// Goals 所有已知目標（固定順序）
func Goals() []string {
	return []string{GoalMaintain, GoalLoseFatKeepMuscle, GoalLoseFat, GoalRecomposition, GoalGainMuscle}
}

// DailyTargets 每日營養素目標（克），依 round 決定取整方式
func (p GoalProfile) DailyTargets(tdee int, round func(float64) float64) Macros {
	kcal := float64(tdee)
	return Macros{
		Protein: round(kcal * p.Split.Protein / KcalPerGramProtein),
		Carbs:   round(kcal * p.Split.Carbs / KcalPerGramCarbs),
		Fat:     round(kcal * p.Split.Fat / KcalPerGramFat),
	}
}

func roundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}
