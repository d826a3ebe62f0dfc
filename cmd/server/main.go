package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/fabworks/moldline/internal/auth"
	"github.com/fabworks/moldline/internal/config"
	"github.com/fabworks/moldline/internal/handler"
	"github.com/fabworks/moldline/internal/middleware"
	"github.com/fabworks/moldline/internal/model/entity"
	"github.com/fabworks/moldline/internal/repository"
	"github.com/fabworks/moldline/internal/service"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
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
	// 加载 .env 文件
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化日志
	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting moldline service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	// 初始化数据库
	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := db.AutoMigrate(
		&entity.Machine{},
		&entity.ProductionRun{},
		&entity.Employee{},
		&entity.QualityCheck{},
	); err != nil {
		zapLogger.Fatal("Failed to migrate database", zap.Error(err))
	}

	// 初始化Redis（未配置时不启用缓存）
	rdb := initRedis(cfg.Redis)
	if rdb == nil {
		zapLogger.Warn("Redis not configured, recent-checks cache disabled")
	}

	// 组装各层
	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, rdb)

	google := auth.NewGoogle(
		cfg.Google.ClientID,
		cfg.Google.ClientSecret,
		cfg.Google.RedirectURL,
		cfg.Session.Secret,
		cfg.Session.CookieName,
		cfg.Session.MaxAge,
		cfg.Session.Secure,
		zapLogger,
	)

	handlers := handler.NewHandlers(services, google, cfg)

	// 创建路由
	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	registerRoutes(router, handlers, cfg)

	// 创建HTTP服务器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 启动服务器
	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// 优雅关闭
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
		// 删除不做级联，允许悬挂引用，因此不建外键约束
		DisableForeignKeyConstraintWhenMigrating: true,
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
	if cfg.Host == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

// registerRoutes 静态路由组装：所有路由组在编译期已知
func registerRoutes(r *gin.Engine, h *handler.Handlers, cfg *config.Config) {
	// 健康检查
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/health/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// 版本信息
	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
		})
	})

	// 认证（无需登录）
	authGroup := r.Group("/auth")
	{
		authGroup.GET("/google", h.Auth.GoogleLogin)
		authGroup.GET("/google/callback", h.Auth.GoogleCallback)
		authGroup.GET("/status", h.Auth.Status)
		authGroup.GET("/success", h.Auth.Success)
		authGroup.GET("/failure", h.Auth.Failure)
		authGroup.GET("/logout", h.Auth.Logout)
	}

	// 设备与批次（对外公开）
	machines := r.Group("/machines")
	{
		machines.GET("", h.Machine.List)
		machines.POST("", h.Machine.Create)
		machines.GET("/:id", h.Machine.Get)
		machines.PUT("/:id", h.Machine.Update)
		machines.DELETE("/:id", h.Machine.Delete)
	}

	runs := r.Group("/production-runs")
	{
		runs.GET("", h.ProductionRun.List)
		runs.POST("", h.ProductionRun.Create)
		runs.GET("/:id", h.ProductionRun.Get)
		runs.PUT("/:id", h.ProductionRun.Update)
		runs.DELETE("/:id", h.ProductionRun.Delete)
	}

	// 会话认证门之后的接口
	sessionAuth := middleware.SessionAuth(cfg.Session.Secret, cfg.Session.CookieName)

	employees := r.Group("/employees", sessionAuth,
		middleware.RequireCapability("manager", cfg.Auth))
	{
		employees.GET("", h.Employee.List)
		employees.POST("", h.Employee.Create)
		employees.GET("/active", h.Employee.ListActive)
		employees.GET("/:id", h.Employee.Get)
		employees.PUT("/:id", h.Employee.Update)
		employees.DELETE("/:id", h.Employee.Delete)
	}

	checks := r.Group("/quality-checks", sessionAuth,
		middleware.RequireCapability("quality", cfg.Auth))
	{
		checks.GET("", h.QualityCheck.List)
		checks.POST("", h.QualityCheck.Create)
		checks.GET("/recent", h.QualityCheck.Recent)
		checks.GET("/result/:result", h.QualityCheck.ListByResult)
		checks.GET("/export", h.QualityCheck.Export)
		checks.GET("/:id", h.QualityCheck.Get)
		checks.PUT("/:id", h.QualityCheck.Update)
		checks.DELETE("/:id", h.QualityCheck.Delete)
	}
}
