package api

import (
	"context"
	"errors"
	"time"

	"meal-planner/internal/api/handlers/health"
	plannerHandler "meal-planner/internal/api/handlers/planner"
	"meal-planner/internal/api/metrics"
	"meal-planner/internal/api/middleware"
	"meal-planner/internal/core/auth"
	"meal-planner/internal/core/cache"
	"meal-planner/internal/core/fooddata"
	"meal-planner/internal/core/planner"
	"meal-planner/internal/core/queue"
	"meal-planner/internal/core/store"
	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// 超時設置
	timeoutDuration = 30 * time.Second
	// 請求體大小限制 (1MB)
	defaultMaxBodySize = 1 << 20
)

// Dependencies 路由需要的服務
type Dependencies struct {
	Planner  *planner.Service
	Auth     *auth.Service
	FoodData *fooddata.Client
	Store    *store.Store
	Cache    cache.Store
	Queue    *queue.Manager
	Metrics  *metrics.Collector
}

// SetupRouter 設置路由，回傳的 cleanup 需在關閉時呼叫
func SetupRouter(cfg *config.Config, deps Dependencies) (*gin.Engine, func(), error) {
	if deps.Planner == nil || deps.Auth == nil {
		return nil, nil, errors.New("planner and auth services are required")
	}

	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	// 設置 gin 模式
	if !cfg.App.Debug && gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	plannerHandler.RegisterValidations()

	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(requestid.New())
	router.Use(middleware.Logger())
	if deps.Metrics != nil {
		router.Use(deps.Metrics.HTTPMiddleware())
	}

	// CORS 設置
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	maxBodySize := cfg.Server.MaxBodyBytes
	if maxBodySize <= 0 {
		maxBodySize = defaultMaxBodySize
	}
	router.Use(middleware.BodySizeLimit(maxBodySize))
	router.Use(timeout(timeoutDuration))

	// 健康檢查路由
	var db health.Pinger
	if deps.Store != nil {
		db = deps.Store
	}
	healthHandler := health.NewHandler(cfg.App.Version, db, deps.Queue, deps.Cache)
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/live", healthHandler.LivenessCheck)
	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	h := plannerHandler.NewHandler(deps.Planner, deps.Auth, deps.FoodData)
	dedup := middleware.NewDeduplicator(cfg.DedupWindow)

	// API 路由組
	api := router.Group("/api/v1")
	var limiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = middleware.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
		api.Use(limiter.Middleware())
	}

	api.POST("/auth/login", h.HandleLogin)

	private := api.Group("")
	private.Use(middleware.Auth(deps.Auth))
	{
		private.POST("/tdee", h.HandleTDEE)

		people := private.Group("/people")
		{
			people.GET("", h.HandleListPeople)
			people.POST("", h.HandleSyncPeople)
			people.DELETE("/:id", h.HandleDeletePerson)
			people.GET("/:id/ingredients", h.HandleGetIngredients)
			people.POST("/:id/ingredients", h.HandleSetIngredients)
			people.GET("/:id/menu/latest", h.HandleLatestMenu)
		}

		menu := private.Group("/menu")
		menu.Use(dedup.Middleware())
		{
			menu.POST("", h.HandleMenu)
			menu.POST("/all", h.HandleMenuAll)
			menu.POST("/gramaje", h.HandleGramaje)
		}

		catalog := private.Group("/catalog")
		{
			catalog.GET("/ingredients", h.HandleIngredientCatalog)
			catalog.GET("/recipes/compatible", h.HandleCompatibleRecipes)
			catalog.GET("/lookup", h.HandleLookup)
		}
	}

	common.LogInfo("Router setup completed successfully",
		zap.Bool("metrics_enabled", deps.Metrics != nil),
		zap.Bool("cache_enabled", deps.Cache != nil),
		zap.Bool("fooddata_enabled", deps.FoodData != nil && cfg.FoodData.Enabled),
		zap.Bool("rate_limit_enabled", cfg.RateLimit.Enabled),
		zap.Duration("timeout", timeoutDuration),
		zap.Int64("max_body_size", maxBodySize),
	)

	cleanup := func() {
		dedup.Close()
		if limiter != nil {
			limiter.Close()
		}
	}
	return router, cleanup, nil
}

// timeout 為每個請求設置逾時
func timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !c.Writer.Written() {
			common.LogError("Request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", common.RequestID(c)),
				zap.Duration("timeout", d),
			)
			common.WriteError(c, common.ErrGatewayTimeout)
		}
	}
}
