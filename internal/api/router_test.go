package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"meal-planner/internal/api/metrics"
	"meal-planner/internal/core/auth"
	"meal-planner/internal/core/nutrition"
	"meal-planner/internal/core/planner"
	"meal-planner/internal/core/queue"
	"meal-planner/internal/core/store"
	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// RouterTestSuite 透過 HTTP 走完整流程
type RouterTestSuite struct {
	suite.Suite
	router  *gin.Engine
	cleanup func()
	queue   *queue.Manager
	db      *gorm.DB
	token   string
}

func (s *RouterTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	s.Require().NoError(err)
	sqlDB, err := db.DB()
	s.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)
	s.Require().NoError(store.Migrate(db))
	s.db = db

	cfg := &config.Config{
		App:         config.AppConfig{Version: "test"},
		Auth:        config.AuthConfig{Password: "nutri", JWTSecret: "router-test-secret", TokenTTL: time.Hour},
		Queue:       config.QueueConfig{Workers: 2, MaxSize: 16},
		DedupWindow: time.Nanosecond,
	}

	st := store.New(db)
	s.queue = queue.NewManager(cfg.Queue)
	s.queue.Start()
	m := metrics.NewCollector()
	svc := planner.NewService(st, nutrition.NewComposer(nutrition.WithSeed(7)), nil, s.queue, m)
	authSvc, err := auth.NewService(cfg.Auth)
	s.Require().NoError(err)

	router, cleanup, err := SetupRouter(cfg, Dependencies{
		Planner: svc,
		Auth:    authSvc,
		Store:   st,
		Queue:   s.queue,
		Metrics: m,
	})
	s.Require().NoError(err)
	s.router = router
	s.cleanup = cleanup

	w := s.request(http.MethodPost, "/api/v1/auth/login", map[string]string{"password": "nutri"}, false)
	s.Require().Equal(http.StatusOK, w.Code)
	var login struct {
		Token string `json:"token"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &login))
	s.token = login.Token
}

func (s *RouterTestSuite) TearDownTest() {
	s.cleanup()
	s.queue.Close()
	if sqlDB, err := s.db.DB(); err == nil {
		sqlDB.Close()
	}
}

func (s *RouterTestSuite) request(method, path string, body interface{}, withToken bool) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.T(), json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if withToken {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *RouterTestSuite) decode(w *httptest.ResponseRecorder, out interface{}) {
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
}

func (s *RouterTestSuite) allIngredients() []string {
	var names []string
	for _, ing := range nutrition.DefaultCatalog().Ingredients() {
		names = append(names, ing.Name)
	}
	return names
}

func (s *RouterTestSuite) syncAna() uint {
	w := s.request(http.MethodPost, "/api/v1/people", []map[string]interface{}{{
		"nombre":       "Ana",
		"sexo":         "femenino",
		"edad":         30,
		"peso":         70,
		"estatura":     175,
		"actividad":    1.55,
		"objetivo":     "mantener",
		"ingredientes": s.allIngredients(),
	}}, true)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		People []common.PersonConfig `json:"people"`
	}
	s.decode(w, &resp)
	s.Require().Len(resp.People, 1)
	return *resp.People[0].ID
}

func (s *RouterTestSuite) TestLogin_WrongPassword() {
	w := s.request(http.MethodPost, "/api/v1/auth/login", map[string]string{"password": "x"}, false)
	s.Equal(http.StatusUnauthorized, w.Code)
	s.Contains(w.Body.String(), common.ErrCodeInvalidCredentials)
}

func (s *RouterTestSuite) TestPrivateRoutesRequireToken() {
	w := s.request(http.MethodGet, "/api/v1/people", nil, false)
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *RouterTestSuite) TestTDEE() {
	w := s.request(http.MethodPost, "/api/v1/tdee", map[string]interface{}{
		"sexo": "masculino", "edad": 30, "peso": 70, "estatura": 175, "actividad": 1.55, "objetivo": "mantener",
	}, true)
	s.Require().Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"tdee":2556}`, w.Body.String())

	w = s.request(http.MethodPost, "/api/v1/tdee", map[string]interface{}{"sexo": "masculino", "edad": -1}, true)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *RouterTestSuite) TestPeopleAndIngredients() {
	id := s.syncAna()

	w := s.request(http.MethodPost, fmt.Sprintf("/api/v1/people/%d/ingredients", id), map[string][]string{
		"permitidos": {"Pollo", "Arroz"},
		"excluidos":  {"Arroz"},
	}, true)
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.request(http.MethodGet, fmt.Sprintf("/api/v1/people/%d/ingredients", id), nil, true)
	s.Require().Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"permitidos":["Pollo"],"excluidos":["Arroz"]}`, w.Body.String())

	w = s.request(http.MethodPost, fmt.Sprintf("/api/v1/people/%d/ingredients", id), map[string]interface{}{"permitidos": []string{}}, true)
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.request(http.MethodDelete, fmt.Sprintf("/api/v1/people/%d", id), nil, true)
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.request(http.MethodGet, fmt.Sprintf("/api/v1/people/%d/ingredients", id), nil, true)
	s.Equal(http.StatusNotFound, w.Code)
	s.Contains(w.Body.String(), common.ErrCodePersonNotFound)

	w = s.request(http.MethodDelete, "/api/v1/people/abc", nil, true)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *RouterTestSuite) TestMenuFlow() {
	id := s.syncAna()

	// Act
	w := s.request(http.MethodPost, "/api/v1/menu", map[string]interface{}{"personId": id, "comidas": 5}, true)

	// Assert
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var menu planner.RecipeMenu
	s.decode(w, &menu)
	s.Len(menu.Meals, 5)
	s.NotEmpty(menu.ID)

	w = s.request(http.MethodGet, fmt.Sprintf("/api/v1/people/%d/menu/latest?tipo=receta", id), nil, true)
	s.Require().Equal(http.StatusOK, w.Code)
	var latest planner.SavedMenu
	s.decode(w, &latest)
	s.Equal(menu.ID, latest.ID)
	s.Equal(menu.Meals, latest.Recipes)

	w = s.request(http.MethodGet, fmt.Sprintf("/api/v1/people/%d/menu/latest?tipo=otro", id), nil, true)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *RouterTestSuite) TestMenuValidation() {
	w := s.request(http.MethodPost, "/api/v1/menu", map[string]interface{}{"tdee": 2000, "comidas": 4}, true)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Contains(w.Body.String(), common.ErrCodeInvalidMealsCount)

	w = s.request(http.MethodPost, "/api/v1/menu", map[string]interface{}{
		"tdee": 2000, "comidas": 3, "ingredientes": []string{"Manzana", "Nuez"}, "excluidos": []string{},
	}, true)
	s.Equal(http.StatusUnprocessableEntity, w.Code)
	s.Contains(w.Body.String(), common.ErrCodeInsufficientPool)
}

func (s *RouterTestSuite) TestGramajeAndBatch() {
	s.syncAna()

	w := s.request(http.MethodPost, "/api/v1/menu/gramaje", map[string]interface{}{
		"tdee": 2000, "comidas": 3, "ingredientes": []string{"Pollo", "Brócoli", "Manzana", "Aceite de oliva"},
	}, true)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var gramaje planner.GramajeMenu
	s.decode(w, &gramaje)
	s.Len(gramaje.Meals, 3)

	w = s.request(http.MethodPost, "/api/v1/menu/all", map[string]interface{}{"comidas": 3}, true)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var batch struct {
		Results []planner.BatchResult `json:"resultados"`
	}
	s.decode(w, &batch)
	s.Require().Len(batch.Results, 1)
	s.NotNil(batch.Results[0].Menu)
}

func (s *RouterTestSuite) TestCatalog() {
	w := s.request(http.MethodGet, "/api/v1/catalog/ingredients", nil, true)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), `"proteina"`)

	w = s.request(http.MethodGet, "/api/v1/catalog/recipes/compatible?current=Avena%20con%20pl%C3%A1tano&blocked=Omelette%20de%20espinaca", nil, true)
	s.Require().Equal(http.StatusOK, w.Code)
	var resp struct {
		Recipes []nutrition.Recipe `json:"recetas"`
	}
	s.decode(w, &resp)
	s.Len(resp.Recipes, len(nutrition.DefaultCatalog().Recipes())-2)

	w = s.request(http.MethodGet, "/api/v1/catalog/lookup?q=avena", nil, true)
	s.Equal(http.StatusServiceUnavailable, w.Code)
}

func (s *RouterTestSuite) TestOperationalEndpoints() {
	s.Equal(http.StatusOK, s.request(http.MethodGet, "/health", nil, false).Code)
	s.Equal(http.StatusOK, s.request(http.MethodGet, "/ready", nil, false).Code)
	s.Equal(http.StatusOK, s.request(http.MethodGet, "/live", nil, false).Code)

	w := s.request(http.MethodGet, "/metrics", nil, false)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "meal_planner_http_requests_total")
}

func TestRouterTestSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}
