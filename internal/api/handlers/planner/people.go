package planner

import (
	"net/http"

	"meal-planner/internal/core/nutrition"
	"meal-planner/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TDEERequest 計算熱量所需資料
type TDEERequest struct {
	Sexo      string  `json:"sexo" binding:"required"`
	Edad      int     `json:"edad" binding:"required,gt=0"`
	Peso      float64 `json:"peso" binding:"required,gt=0"`
	Estatura  float64 `json:"estatura" binding:"required,gt=0"`
	Actividad float64 `json:"actividad" binding:"required,gt=0"`
	Objetivo  string  `json:"objetivo"`
}

// HandleTDEE 計算每日總消耗熱量
func (h *Handler) HandleTDEE(c *gin.Context) {
	var req TDEERequest
	if !bindJSON(c, &req) {
		return
	}

	tdee := h.planner.EstimateEnergy(nutrition.EnergyInput{
		Sex:      req.Sexo,
		Age:      req.Edad,
		Weight:   req.Peso,
		Height:   req.Estatura,
		Activity: req.Actividad,
		Goal:     req.Objetivo,
	})
	c.JSON(http.StatusOK, gin.H{"tdee": tdee})
}

// HandleListPeople 列出使用者
func (h *Handler) HandleListPeople(c *gin.Context) {
	people, err := h.planner.ListPeople(c.Request.Context())
	if err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"people": people})
}

// HandleSyncPeople 以傳入的陣列同步使用者
func (h *Handler) HandleSyncPeople(c *gin.Context) {
	var req []common.PersonConfig
	if !bindJSON(c, &req) {
		return
	}

	for _, p := range req {
		common.LogDebug("同步使用者", zap.String("person", common.FormatPerson(p)))
	}

	people, err := h.planner.SyncPeople(c.Request.Context(), req)
	if err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "people": people})
}

// HandleDeletePerson 刪除使用者
func (h *Handler) HandleDeletePerson(c *gin.Context) {
	id, ok := personID(c)
	if !ok {
		return
	}
	if err := h.planner.DeletePerson(c.Request.Context(), id); err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// HandleGetIngredients 使用者的食材清單
func (h *Handler) HandleGetIngredients(c *gin.Context) {
	id, ok := personID(c)
	if !ok {
		return
	}
	sel, err := h.planner.GetIngredients(c.Request.Context(), id)
	if err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, sel)
}

// HandleSetIngredients 取代使用者的食材清單
func (h *Handler) HandleSetIngredients(c *gin.Context) {
	id, ok := personID(c)
	if !ok {
		return
	}

	var req common.IngredientSelection
	if !bindJSON(c, &req) {
		return
	}
	if req.Permitidos == nil || req.Excluidos == nil {
		common.WriteError(c, common.ErrInvalidRequest.Wrap(common.NewValidationError("Formato inválido")))
		return
	}

	sel, err := h.planner.SetIngredients(c.Request.Context(), id, req)
	if err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "permitidos": sel.Permitidos, "excluidos": sel.Excluidos})
}
