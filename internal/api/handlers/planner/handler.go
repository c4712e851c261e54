package planner

import (
	"errors"
	"strconv"
	"sync"

	"meal-planner/internal/core/auth"
	"meal-planner/internal/core/fooddata"
	"meal-planner/internal/core/nutrition"
	plannerService "meal-planner/internal/core/planner"
	"meal-planner/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Handler 菜單規劃 API
type Handler struct {
	planner  *plannerService.Service
	auth     *auth.Service
	foodData *fooddata.Client
}

// NewHandler 創建處理程序；foodData 可為 nil
func NewHandler(planner *plannerService.Service, authSvc *auth.Service, foodData *fooddata.Client) *Handler {
	return &Handler{
		planner:  planner,
		auth:     authSvc,
		foodData: foodData,
	}
}

var registerOnce sync.Once

// RegisterValidations 註冊自訂的 binding 驗證
func RegisterValidations() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			common.LogWarn("binding validator is not go-playground/validator")
			return
		}
		if err := v.RegisterValidation("mealscount", func(fl validator.FieldLevel) bool {
			return nutrition.ValidMealsCount(int(fl.Field().Int()))
		}); err != nil {
			common.LogError("Failed to register mealscount validation", zap.Error(err))
		}
	})
}

// bindJSON 解析請求體，餐數錯誤回傳專用錯誤
func bindJSON(c *gin.Context, out interface{}) bool {
	err := c.ShouldBindJSON(out)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if fe.Tag() == "mealscount" {
				common.WriteError(c, common.ErrInvalidMealsCount.Wrap(err))
				return false
			}
		}
	}
	common.WriteError(c, common.ErrInvalidRequest.Wrap(err))
	return false
}

// personID 解析路徑中的 :id
func personID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		common.WriteError(c, common.ErrInvalidRequest.Wrap(common.NewValidationError("id inválido")))
		return 0, false
	}
	return uint(id), true
}
