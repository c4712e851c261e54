package nutrition

import "strings"

// EnergyInput 計算每日熱量所需的身體資料
type EnergyInput struct {
	Sex      string  `json:"sexo"`
	Age      int     `json:"edad"`
	Weight   float64 `json:"peso"`     // kg
	Height   float64 `json:"estatura"` // cm
	Activity float64 `json:"actividad"`
	Goal     string  `json:"objetivo"`
}

// IsMale masculino 或 male
func IsMale(sex string) bool {
	switch strings.ToLower(strings.TrimSpace(sex)) {
	case "masculino", "male":
		return true
	}
	return false
}

// BasalMetabolicRate Mifflin-St Jeor 基礎代謝
func BasalMetabolicRate(in EnergyInput) float64 {
	base := 10*in.Weight + 6.25*in.Height - 5*float64(in.Age)
	if IsMale(in.Sex) {
		return base + 5
	}
	return base - 161
}

// EstimateEnergy 每日總消耗熱量（TDEE），含目標調整，四捨五入為整數
// 未知目標不做調整。數值範圍由呼叫端驗證。
func EstimateEnergy(in EnergyInput) int {
	tdee := BasalMetabolicRate(in) * in.Activity
	if IsKnownGoal(in.Goal) {
		tdee += float64(ProfileFor(in.Goal).Adjustment)
	}
	return int(roundHalfUp(tdee))
}
