package common

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSON(t *testing.T) {
	var out struct {
		Tdee int `json:"tdee"`
	}
	require.NoError(t, ParseJSON(`{"tdee": 2556}`, &out))
	assert.Equal(t, 2556, out.Tdee)

	assert.Error(t, ParseJSON(`{"tdee": 1} {"tdee": 2}`, &out))
	assert.Error(t, ParseJSONBytes([]byte(`{`), &out))
}

func TestCustomErrorMatching(t *testing.T) {
	wrapped := fmt.Errorf("compose: %w", ErrInsufficientPool.Wrap(errors.New("pool empty")))

	assert.ErrorIs(t, wrapped, ErrInsufficientPool)
	assert.NotErrorIs(t, wrapped, ErrPersonNotFound)

	ce := AsCustomError(wrapped)
	assert.Equal(t, http.StatusUnprocessableEntity, ce.Status)

	assert.Equal(t, ErrCodeInvalidRequest, AsCustomError(NewValidationError("x")).Code)
	assert.Equal(t, ErrCodeInternalError, AsCustomError(errors.New("boom")).Code)
}

func TestIngredientSelectionNormalize(t *testing.T) {
	sel := IngredientSelection{
		Permitidos: []string{"Pollo", " Arroz ", "", "Pollo", "Atún"},
		Excluidos:  []string{"Atún", "Atún"},
	}.Normalize()

	assert.Equal(t, []string{"Pollo", "Arroz"}, sel.Permitidos)
	assert.Equal(t, []string{"Atún"}, sel.Excluidos)
}

func TestRequestIDHelpers(t *testing.T) {
	ctx := WithRequestID(context.Background(), "abc")
	assert.Equal(t, "abc", RequestIDFrom(ctx))
	assert.Empty(t, RequestIDFrom(context.Background()))

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	id := RequestID(c)
	assert.NotEmpty(t, id)
	assert.Equal(t, id, RequestID(c))
}

func TestWriteError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/menu", nil)

	WriteError(c, ErrInvalidMealsCount)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"code":"INVALID_MEALS_COUNT","message":"El número de comidas debe ser 3 o 5"}`, w.Body.String())
}

func TestFilterFields(t *testing.T) {
	assert.True(t, isSensitive("jwt_secret"))
	assert.True(t, isSensitive("Authorization"))
	assert.False(t, isSensitive("person_id"))
}
