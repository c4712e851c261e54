package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"meal-planner/internal/api"
	"meal-planner/internal/api/metrics"
	"meal-planner/internal/core/auth"
	"meal-planner/internal/core/cache"
	"meal-planner/internal/core/fooddata"
	"meal-planner/internal/core/nutrition"
	"meal-planner/internal/core/planner"
	"meal-planner/internal/core/queue"
	"meal-planner/internal/core/store"
	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/infrastructure/database"
	"meal-planner/internal/pkg/common"

	"go.uber.org/zap"
)

func main() {
	// 載入設定（.env 由 LoadConfig 處理）
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.LogLevel); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("載入設定",
		zap.String("database_driver", cfg.Database.Driver),
		zap.Bool("redis_enabled", cfg.Redis.Enabled),
		zap.Bool("fooddata_enabled", cfg.FoodData.Enabled),
		zap.Int("recipe_trials", cfg.Planner.RecipeTrials),
	)

	// 資料庫
	db, err := database.Open(cfg.Database)
	if err != nil {
		common.LogFatal("Failed to open database", zap.Error(err))
	}
	defer database.Close(db)
	if err := store.Migrate(db); err != nil {
		common.LogFatal("Failed to migrate database", zap.Error(err))
	}
	st := store.New(db)

	// 初始化快取
	cacheStore, err := cache.New(cfg)
	if err != nil {
		common.LogFatal("Failed to initialize cache", zap.Error(err))
	}
	if cacheStore != nil {
		defer cacheStore.Close()
	}

	// 工作隊列
	queueManager := queue.NewManager(cfg.Queue)
	queueManager.Start()
	defer queueManager.Close()

	// 指標
	collector := metrics.NewCollector()
	collector.WatchQueue(func() int { return queueManager.GetQueueStatus().QueueLength })
	if sqlDB, err := db.DB(); err == nil {
		collector.WatchDB(sqlDB)
	}

	authService, err := auth.NewService(cfg.Auth)
	if err != nil {
		common.LogFatal("Failed to initialize auth service", zap.Error(err))
	}

	opts := []nutrition.Option{nutrition.WithTrials(cfg.Planner.RecipeTrials)}
	if cfg.Planner.Seed != 0 {
		opts = append(opts, nutrition.WithSeed(cfg.Planner.Seed))
	}
	composer := nutrition.NewComposer(opts...)

	plannerService := planner.NewService(st, composer, cacheStore, queueManager, collector)
	foodData := fooddata.NewClient(cfg.FoodData, cacheStore)

	// 設置路由
	router, cleanup, err := api.SetupRouter(cfg, api.Dependencies{
		Planner:  plannerService,
		Auth:     authService,
		FoodData: foodData,
		Store:    st,
		Cache:    cacheStore,
		Queue:    queueManager,
		Metrics:  collector,
	})
	if err != nil {
		common.LogError("Failed to setup router", zap.Error(err))
		os.Exit(1)
	}
	defer cleanup()

	// 設置 HTTP 服務器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// 啟動服務器
	go func() {
		common.LogInfo("啟動應用",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Bool("debug", cfg.App.Debug),
			zap.Int("port", cfg.Server.Port),
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			common.LogFatal("Failed to start server", zap.Error(err))
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	common.LogInfo("Shutting down server...")

	// 設置關閉超時
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		common.LogError("Server forced to shutdown", zap.Error(err))
	}

	common.LogInfo("Server exited")
}
