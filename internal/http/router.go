package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/vaartalab/newsroom-backend/internal/http/handlers"
	httpMW "github.com/vaartalab/newsroom-backend/internal/http/middleware"
	"github.com/vaartalab/newsroom-backend/internal/observability"
	"github.com/vaartalab/newsroom-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	CORSOrigins []string

	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler      *httpH.HealthHandler
	ArticleHandler     *httpH.ArticleHandler
	NewspaperHandler   *httpH.NewspaperHandler
	WebHandler         *httpH.WebHandler
	ShortNewsHandler   *httpH.ShortNewsHandler
	EngagementHandler  *httpH.EngagementHandler
	ProgressHandler    *httpH.ProgressHandler
	PromptHandler      *httpH.PromptHandler
	EventStreamHandler *httpH.EventStreamHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpMW.CORS(cfg.CORSOrigins))
	r.Use(otelgin.Middleware("newsroom-backend"))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	// Reader-facing surface, no auth.
	public := r.Group("/public")
	{
		if cfg.NewspaperHandler != nil {
			public.GET("/newspaper-articles/:id", cfg.NewspaperHandler.GetPublic)
		}
		if cfg.WebHandler != nil {
			public.GET("/tenants/:tenantId/web-articles", cfg.WebHandler.ListPublic)
			public.GET("/tenants/:tenantId/web-articles/:slug", cfg.WebHandler.GetPublicBySlug)
			public.GET("/web-articles/:id/card.png", cfg.WebHandler.ShareCard)
		}
		if cfg.ShortNewsHandler != nil {
			public.GET("/tenants/:tenantId/short-news", cfg.ShortNewsHandler.Feed)
		}
	}

	api := r.Group("/api")
	{
		if cfg.AuthMiddleware != nil {
			api.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Submissions and enrichment lifecycle
		if cfg.ArticleHandler != nil {
			api.POST("/articles", cfg.ArticleHandler.Submit)
			api.GET("/articles", cfg.ArticleHandler.List)
			api.GET("/articles/:id", cfg.ArticleHandler.Get)
			api.GET("/articles/:id/ai-status", cfg.ArticleHandler.AIStatus)
			api.POST("/articles/:id/ai-retry", cfg.ArticleHandler.AIRetry)
			api.GET("/categories", cfg.ArticleHandler.Categories)
		}

		// Desk editing and moderation
		if cfg.NewspaperHandler != nil {
			api.PATCH("/newspaper-articles/:id", cfg.NewspaperHandler.Update)
			api.PATCH("/newspaper-articles/:id/status", cfg.NewspaperHandler.SetStatus)
		}
		if cfg.WebHandler != nil {
			api.PATCH("/web-articles/:id/status", cfg.WebHandler.SetStatus)
		}
		if cfg.ShortNewsHandler != nil {
			api.PATCH("/short-news/:id/status", cfg.ShortNewsHandler.SetStatus)
		}

		// Reader engagement
		if cfg.EngagementHandler != nil {
			api.POST("/articles/:id/comments", cfg.EngagementHandler.AddComment)
			api.GET("/articles/:id/comments", cfg.EngagementHandler.ListComments)
			api.POST("/comments/:id/hide", cfg.EngagementHandler.HideComment)
			api.POST("/articles/:id/like", cfg.EngagementHandler.Like)
			api.DELETE("/articles/:id/like", cfg.EngagementHandler.Unlike)
		}
		if cfg.ProgressHandler != nil {
			api.POST("/progress/batch", cfg.ProgressHandler.Batch)
		}

		// Platform admin
		if cfg.PromptHandler != nil {
			api.GET("/prompt-templates", cfg.PromptHandler.List)
			api.GET("/prompt-templates/:key", cfg.PromptHandler.Get)
			api.PUT("/prompt-templates/:key", cfg.PromptHandler.Put)
		}

		// Realtime
		if cfg.EventStreamHandler != nil {
			api.GET("/events/stream", cfg.EventStreamHandler.Stream)
		}
	}

	return r
}
