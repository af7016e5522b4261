package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"team11_backend/internal/config"
	"team11_backend/internal/controller"
	"team11_backend/internal/repository"
	"team11_backend/internal/service"
	"team11_backend/internal/view"
	"team11_backend/pkg/configwatcher"
	"team11_backend/pkg/database"
	"team11_backend/pkg/logger"
	"team11_backend/pkg/monitoring"
	"team11_backend/pkg/tracing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DefaultConfigDir is where config.yaml is read from unless -config says otherwise.
const DefaultConfigDir = "configs"

type App struct {
	Config *config.Config
	Router *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client

	tracer          *sdktrace.TracerProvider
	configMu        sync.Mutex
	configCallbacks []func(*config.Config)
}

type repositories struct {
	submission *repository.SubmissionRepository
}

type services struct {
	storage    *service.StorageService
	submission *service.SubmissionService
	query      *service.QueryService
}

type controllers struct {
	submission *controller.SubmissionController
	dashboard  *controller.DashboardController
	exam       *controller.ExamController
	health     *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configMu.Lock()
	defer a.configMu.Unlock()
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) reloadConfig(cfg *config.Config) {
	a.configMu.Lock()
	callbacks := append([]func(*config.Config){}, a.configCallbacks...)
	a.configMu.Unlock()

	for _, cb := range callbacks {
		cb(cfg)
	}
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		submission: repository.NewSubmissionRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	// 未启用 Redis 时 cache 保持为 nil 接口
	var cache service.DashboardCache
	if rdb != nil {
		cache = service.NewRedisDashboardCache(rdb, cfg.Redis.DashboardTTL())
	}

	s.storage = service.NewStorageService(cfg)
	s.submission = service.NewSubmissionService(
		repos.submission,
		s.storage,
		service.NewFixedScorer(cfg.Scoring.FixedScore),
		cache,
		cfg.Audio,
	)
	s.query = service.NewQueryService(repos.submission, cache)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		submission: controller.NewSubmissionController(s.submission, s.query),
		dashboard:  controller.NewDashboardController(s.query),
		exam:       controller.NewExamController(),
		health:     controller.NewHealthController(db, rdb),
	}
}

// NewApp connects to the database and redis and builds the router.
func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	migrate := cfg.ForceMigrate || cfg.Server.Mode != gin.ReleaseMode
	db, err := database.InitDB(&cfg.Database, logger.Log, migrate)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb, err = database.InitRedis(&cfg.Redis)
		if err != nil {
			// 缓存只是加速手段，连接失败时直接查库
			logger.Log.Warn("Redis unavailable, dashboard cache disabled", zap.Error(err))
			rdb = nil
		}
	}

	var tp *sdktrace.TracerProvider
	if cfg.Tracing.Enabled {
		tp, err = tracing.InitTracer(tracing.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Error("Failed to initialize tracing", zap.Error(err))
			cfg.Tracing.Enabled = false
		}
	}

	a := NewWithDB(cfg, db, rdb)
	a.tracer = tp
	a.RegisterConfigCallback(logger.Reload)
	return a
}

// NewWithDB wires the service graph on existing connections. rdb may be nil.
func NewWithDB(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *App {
	gin.SetMode(cfg.Server.Mode)

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	svcs := app.initServices(repos, cfg, rdb)
	ctrls := app.initControllers(svcs, db, rdb)

	// 监控初始化
	monitoring.Init()

	router := gin.New()
	router.SetHTMLTemplate(view.MustTemplates())
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, ctrls, cfg)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:              ":" + a.Config.Server.Port,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	configDir := a.Config.Dir
	if configDir == "" {
		configDir = DefaultConfigDir
	}
	done := make(chan struct{})
	go func() {
		if err := configwatcher.WatchConfig(configDir, a.reloadConfig, done); err != nil {
			logger.Log.Warn("Config watcher stopped", zap.Error(err))
		}
	}()

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("listen failed", zap.Error(err))
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")
	close(done)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	a.Close(ctx)
	logger.Log.Info("Server exiting")
}

// Close releases the tracer, redis and database connections.
func (a *App) Close(ctx context.Context) {
	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
