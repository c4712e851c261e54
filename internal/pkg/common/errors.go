package common

import (
	"errors"
	"net/http"
)

// ErrorResponse 定義 API 錯誤響應結構
type ErrorResponse struct {
	Code    string `json:"code"`              // 錯誤代碼
	Message string `json:"message"`           // 錯誤信息
	Details string `json:"details,omitempty"` // 詳細信息（僅在開發模式顯示）
}

// CustomError 定義自定義錯誤類型
type CustomError struct {
	Code    string // 錯誤代碼
	Message string // 錯誤信息
	Err     error  // 原始錯誤
	Status  int    // HTTP 狀態碼
}

func (e *CustomError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap 讓 errors.Is / errors.As 可以往下找原始錯誤
func (e *CustomError) Unwrap() error {
	return e.Err
}

// Is 以錯誤代碼比對，包裝後的錯誤仍可與預定義錯誤相等
func (e *CustomError) Is(target error) bool {
	t, ok := target.(*CustomError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Wrap 以相同代碼包裝原始錯誤
func (e *CustomError) Wrap(err error) *CustomError {
	return &CustomError{
		Code:    e.Code,
		Message: e.Message,
		Status:  e.Status,
		Err:     err,
	}
}

// NewError 創建新的自定義錯誤
func NewError(code string, message string, status int, err error) *CustomError {
	return &CustomError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

// ValidationError 表示驗證錯誤
type ValidationError struct {
	message string
}

// Error 實現 error 介面
func (e *ValidationError) Error() string {
	return e.message
}

// NewValidationError 創建新的驗證錯誤
func NewValidationError(message string) error {
	return &ValidationError{
		message: message,
	}
}

// IsValidationError 檢查是否為驗證錯誤
func IsValidationError(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// AsCustomError 將任意錯誤轉為 CustomError，未知錯誤視為 500
func AsCustomError(err error) *CustomError {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce
	}
	if IsValidationError(err) {
		return ErrInvalidRequest.Wrap(err)
	}
	return ErrInternalError.Wrap(err)
}

// 預定義錯誤代碼
const (
	// 客戶端錯誤 (4xx)
	ErrCodeInvalidRequest   = "INVALID_REQUEST"    // 400
	ErrCodeUnauthorized     = "UNAUTHORIZED"       // 401
	ErrCodeNotFound         = "NOT_FOUND"          // 404
	ErrCodeMethodNotAllowed = "METHOD_NOT_ALLOWED" // 405
	ErrCodeConflict         = "CONFLICT"           // 409
	ErrCodeUnprocessable    = "UNPROCESSABLE"      // 422
	ErrCodeTooManyRequests  = "TOO_MANY_REQUESTS"  // 429

	// 服務器錯誤 (5xx)
	ErrCodeInternalError      = "INTERNAL_ERROR"      // 500
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE" // 503
	ErrCodeGatewayTimeout     = "GATEWAY_TIMEOUT"     // 504

	// 業務錯誤
	ErrCodeInsufficientPool   = "INSUFFICIENT_INGREDIENTS"
	ErrCodePersonNotFound     = "PERSON_NOT_FOUND"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeInvalidMealsCount  = "INVALID_MEALS_COUNT"
	ErrCodeMenuNotFound       = "MENU_NOT_FOUND"
)

// 預定義錯誤（訊息為前端顯示用語）
var (
	// 客戶端錯誤
	ErrInvalidRequest   = NewError(ErrCodeInvalidRequest, "Faltan datos", http.StatusBadRequest, nil)
	ErrUnauthorized     = NewError(ErrCodeUnauthorized, "No autorizado", http.StatusUnauthorized, nil)
	ErrNotFound         = NewError(ErrCodeNotFound, "Recurso no encontrado", http.StatusNotFound, nil)
	ErrMethodNotAllowed = NewError(ErrCodeMethodNotAllowed, "Método no permitido", http.StatusMethodNotAllowed, nil)
	ErrConflict         = NewError(ErrCodeConflict, "Conflicto de datos", http.StatusConflict, nil)
	ErrTooManyRequests  = NewError(ErrCodeTooManyRequests, "Demasiadas solicitudes", http.StatusTooManyRequests, nil)

	// 服務器錯誤
	ErrInternalError      = NewError(ErrCodeInternalError, "Error interno del servidor", http.StatusInternalServerError, nil)
	ErrServiceUnavailable = NewError(ErrCodeServiceUnavailable, "Servicio no disponible", http.StatusServiceUnavailable, nil)
	ErrGatewayTimeout     = NewError(ErrCodeGatewayTimeout, "Tiempo de espera agotado", http.StatusGatewayTimeout, nil)

	// 業務錯誤
	ErrInsufficientPool   = NewError(ErrCodeInsufficientPool, "No hay suficientes ingredientes o recetas para armar el menú", http.StatusUnprocessableEntity, nil)
	ErrPersonNotFound     = NewError(ErrCodePersonNotFound, "Persona no encontrada", http.StatusNotFound, nil)
	ErrInvalidCredentials = NewError(ErrCodeInvalidCredentials, "Contraseña incorrecta", http.StatusUnauthorized, nil)
	ErrInvalidMealsCount  = NewError(ErrCodeInvalidMealsCount, "El número de comidas debe ser 3 o 5", http.StatusBadRequest, nil)
	ErrMenuNotFound       = NewError(ErrCodeMenuNotFound, "No hay menú guardado", http.StatusNotFound, nil)
	ErrCacheDisabled      = NewError("CACHE_DISABLED", "Caché deshabilitada", http.StatusServiceUnavailable, nil)
	ErrCacheMiss          = NewError("CACHE_MISS", "Entrada de caché no encontrada", http.StatusNotFound, nil)
	ErrCacheFull          = NewError("CACHE_FULL", "Caché llena", http.StatusServiceUnavailable, nil)
	ErrFoodDataError      = NewError("FOOD_DATA_ERROR", "Error al consultar la base de alimentos", http.StatusBadGateway, nil)
)
