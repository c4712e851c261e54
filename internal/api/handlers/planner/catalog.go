package planner

import (
	"net/http"
	"strings"

	"meal-planner/internal/pkg/common"

	"github.com/gin-gonic/gin"
)

// HandleIngredientCatalog 依分類列出食材
func (h *Handler) HandleIngredientCatalog(c *gin.Context) {
	catalog := h.planner.Catalog()
	c.JSON(http.StatusOK, gin.H{
		"categorias": catalog.Categories(),
		"orden":      catalog.CategoryNames(),
	})
}

// HandleCompatibleRecipes 可替換的食譜，?current=&blocked=a,b
func (h *Handler) HandleCompatibleRecipes(c *gin.Context) {
	var blocked []string
	for _, raw := range c.QueryArray("blocked") {
		for _, name := range strings.Split(raw, ",") {
			if name = strings.TrimSpace(name); name != "" {
				blocked = append(blocked, name)
			}
		}
	}

	recipes := h.planner.Catalog().Compatible(c.Query("current"), blocked)
	c.JSON(http.StatusOK, gin.H{"recetas": recipes})
}

// HandleLookup 查詢 Open Food Facts，?q=
func (h *Handler) HandleLookup(c *gin.Context) {
	if h.foodData == nil {
		common.WriteError(c, common.ErrServiceUnavailable)
		return
	}

	products, err := h.foodData.Lookup(c.Request.Context(), c.Query("q"))
	if err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"productos": products})
}
