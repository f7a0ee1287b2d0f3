package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/iRoman8614/timelinesWorks-sub000/internal/config"
	"github.com/iRoman8614/timelinesWorks-sub000/internal/middleware"
	"github.com/iRoman8614/timelinesWorks-sub000/internal/plan/entity"
	"github.com/iRoman8614/timelinesWorks-sub000/internal/plan/handler"
	"github.com/iRoman8614/timelinesWorks-sub000/internal/plan/repository"
	"github.com/iRoman8614/timelinesWorks-sub000/internal/plan/service"
	"github.com/iRoman8614/timelinesWorks-sub000/internal/plan/sse"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting toplan service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := db.AutoMigrate(&entity.Project{}); err != nil {
		zapLogger.Warn("AutoMigrate warning", zap.Error(err))
	}

	rdb := initRedis(cfg.Redis)

	repos := repository.NewRepositories(db)
	hub := sse.NewHub(zapLogger)
	services, err := service.NewServices(repos, rdb, hub, cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to init services", zap.Error(err))
	}
	handlers := handler.NewHandlers(services, hub)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPathsRegexs([]string{`.*/events$`})))

	registerRoutes(router, handlers)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: 0, // Disable for SSE long-lived connections
	}

	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapCfg.Build()
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return db, nil
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func registerRoutes(r *gin.Engine, h *handler.Handlers) {
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/health/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
		})
	})

	v1 := r.Group("/api/v1")
	{
		// Stateless resolution for what-if editing on the client.
		v1.POST("/tracks/resolve", h.Timeline.Resolve)

		projects := v1.Group("/projects")
		{
			projects.GET("", h.Project.List)
			projects.POST("", h.Project.Create)
			projects.GET("/:id", h.Project.Get)
			projects.PUT("/:id", h.Project.Save)
			projects.DELETE("/:id", h.Project.Delete)

			projects.GET("/:id/snapshots", h.Project.Snapshots)
			projects.POST("/:id/snapshots/restore", h.Project.RestoreSnapshot)

			// Structural model editing
			projects.POST("/:id/component-types", h.Model.CreateComponentType)
			projects.PUT("/:id/component-types/:typeId", h.Model.UpdateComponentType)
			projects.DELETE("/:id/component-types/:typeId", h.Model.DeleteComponentType)
			projects.POST("/:id/assembly-types", h.Model.CreateAssemblyType)
			projects.PUT("/:id/assembly-types/:typeId", h.Model.UpdateAssemblyType)
			projects.DELETE("/:id/assembly-types/:typeId", h.Model.DeleteAssemblyType)
			projects.POST("/:id/part-models", h.Model.CreatePartModel)
			projects.PUT("/:id/part-models/:modelId", h.Model.UpdatePartModel)
			projects.DELETE("/:id/part-models/:modelId", h.Model.DeletePartModel)
			projects.POST("/:id/nodes", h.Model.CreateNode)
			projects.PUT("/:id/nodes/:nodeId", h.Model.UpdateNode)
			projects.DELETE("/:id/nodes/:nodeId", h.Model.DeleteNode)
			projects.POST("/:id/nodes/:nodeId/move", h.Model.MoveNode)

			// Timeline
			projects.GET("/:id/tracks", h.Timeline.Tracks)
			projects.POST("/:id/timeline/maintenance", h.Project.AddCustomMaintenance)
			projects.DELETE("/:id/timeline/maintenance", h.Project.DeleteCustomMaintenance)
			projects.POST("/:id/timeline/assignments", h.Project.AddCustomAssignment)
			projects.DELETE("/:id/timeline/assignments", h.Project.DeleteCustomAssignment)

			// Schedule generation
			projects.POST("/:id/generation", h.Generation.Start)
			projects.DELETE("/:id/generation", h.Generation.Cancel)
			projects.GET("/:id/generation", h.Generation.Status)

			// SSE progress stream
			projects.GET("/:id/events", h.SSE.Stream)
		}
	}
}
