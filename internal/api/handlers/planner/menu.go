package planner

import (
	"net/http"

	plannerService "meal-planner/internal/core/planner"
	"meal-planner/internal/core/store"
	"meal-planner/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BatchRequest 為所有使用者產生菜單
type BatchRequest struct {
	MealsCount int `json:"comidas" binding:"required,mealscount"`
}

// HandleMenu 產生食譜菜單
func (h *Handler) HandleMenu(c *gin.Context) {
	var req plannerService.MenuRequest
	if !bindJSON(c, &req) {
		return
	}

	common.LogInfo("開始產生食譜菜單",
		zap.Int("comidas", req.MealsCount),
		zap.Bool("solo_comida", req.OnlySlot != nil),
		zap.String("request_id", common.RequestID(c)),
	)

	menu, err := h.planner.GenerateMenu(c.Request.Context(), req)
	if err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, menu)
}

// HandleMenuAll 為每位使用者產生食譜菜單
func (h *Handler) HandleMenuAll(c *gin.Context) {
	var req BatchRequest
	if !bindJSON(c, &req) {
		return
	}

	results, err := h.planner.GenerateAll(c.Request.Context(), req.MealsCount)
	if err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"resultados": results})
}

// HandleGramaje 產生克數菜單
func (h *Handler) HandleGramaje(c *gin.Context) {
	var req plannerService.GramajeRequest
	if !bindJSON(c, &req) {
		return
	}

	menu, err := h.planner.GenerateGramajeMenu(c.Request.Context(), req)
	if err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, menu)
}

// HandleLatestMenu 使用者最近的菜單，?tipo=receta|gramaje
func (h *Handler) HandleLatestMenu(c *gin.Context) {
	id, ok := personID(c)
	if !ok {
		return
	}

	kind := c.Query("tipo")
	if kind != "" && kind != store.MenuKindRecipe && kind != store.MenuKindGramaje {
		common.WriteError(c, common.ErrInvalidRequest.Wrap(common.NewValidationError("tipo debe ser receta o gramaje")))
		return
	}

	menu, err := h.planner.LatestMenu(c.Request.Context(), id, kind)
	if err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, menu)
}
