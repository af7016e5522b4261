package app

import (
	"team11_backend/docs"
	"team11_backend/internal/config"
	"team11_backend/internal/middleware"
	"team11_backend/internal/service"
	"team11_backend/internal/util"
	"team11_backend/internal/view"
	"team11_backend/pkg/logger"
	"team11_backend/pkg/monitoring"
	"team11_backend/pkg/security"
	"team11_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const basePath = "/" + util.TeamName

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger.Log))
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure(cfg.Server.Mode != gin.ReleaseMode))
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, cfg.RateLimit.Window()))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	team := router.Group(basePath)
	team.StaticFS("/static", view.Static())
	// 其他存储不可用时也会回退到本地目录
	if cfg.Storage.LocalPath != "" {
		team.Static("/uploads", cfg.Storage.LocalPath)
	}

	// 1. 公共路由(无需登录)
	team.GET("/", c.exam.Index)
	team.GET("/health/", c.health.HealthCheck)

	identified := team.Group("")
	identified.Use(middleware.Identity(&cfg.Auth)...)

	// 2. JSON 接口
	api := identified.Group("")
	api.Use(middleware.RequireAPIUser())
	{
		api.GET("/ping/", c.submission.Ping)

		submit := api.Group("/api")
		submit.Use(security.SubmitLimiter(cfg.RateLimit.SubmitPerMin))
		{
			submit.POST("/submit-writing/", c.submission.SubmitWriting)
			submit.POST("/submit-listening/", c.submission.SubmitListening)
		}

		api.GET("/api/submissions/", c.submission.ListSubmissions)
		api.GET("/api/submissions/:id/", c.submission.GetSubmission)
	}

	// 3. 页面
	pages := identified.Group("")
	pages.Use(middleware.RequireHTMLUser(cfg.Auth.LoginURL))
	{
		pages.GET("/start-exam/", c.exam.StartExam)
		pages.GET("/writing-exam/", c.exam.WritingExam)
		pages.GET("/listening-exam/", c.exam.ListeningExam)
		pages.GET("/dashboard/", c.dashboard.Dashboard)
		pages.GET("/dashboard/chart/", c.dashboard.ScoreChart)
		pages.GET("/submission/:id/", c.dashboard.SubmissionDetail)
	}
}

var _ service.BlobStore = (*service.StorageService)(nil)
