package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/vaartalab/newsroom-backend/internal/config"
	"github.com/vaartalab/newsroom-backend/internal/db"
	"github.com/vaartalab/newsroom-backend/internal/http"
	"github.com/vaartalab/newsroom-backend/internal/http/handlers"
	"github.com/vaartalab/newsroom-backend/internal/http/middleware"
	"github.com/vaartalab/newsroom-backend/internal/jobs"
	"github.com/vaartalab/newsroom-backend/internal/observability"
	"github.com/vaartalab/newsroom-backend/internal/platform/ai"
	"github.com/vaartalab/newsroom-backend/internal/platform/logger"
	"github.com/vaartalab/newsroom-backend/internal/prompts"
	"github.com/vaartalab/newsroom-backend/internal/realtime"
	"github.com/vaartalab/newsroom-backend/internal/realtime/bus"
	"github.com/vaartalab/newsroom-backend/internal/repos"
	"github.com/vaartalab/newsroom-backend/internal/sanitize"
	"github.com/vaartalab/newsroom-backend/internal/services"
)

func main() {
	// .env is optional; deployments set the environment directly.
	_ = godotenv.Load()

	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Config
	log.Info("Loading configuration from main...")
	cfg := config.Load(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Observability
	if shutdownTracing := observability.InitTracing(ctx, log, cfg.Otel); shutdownTracing != nil {
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdownTracing(flushCtx)
		}()
	}
	var metrics *observability.Metrics
	if cfg.Metrics.Enabled {
		metrics = observability.NewMetrics()
		metrics.StartServer(ctx, log, cfg.Metrics.Addr)
	}

	// Postgres
	postgresService, err := db.NewPostgresService(cfg.Postgres, log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err := postgresService.AutoMigrateAll(); err != nil {
		log.Error("Postgres auto migration failed", "error", err)
		os.Exit(1)
	}
	gdb := postgresService.DB()

	// Repos
	log.Info("Setting up repos from main...")
	articleRepo := repos.NewArticleRepo(gdb, log)
	newspaperRepo := repos.NewNewspaperArticleRepo(gdb, log)
	webRepo := repos.NewWebArticleRepo(gdb, log)
	shortRepo := repos.NewShortNewsRepo(gdb, log)
	tenantRepo := repos.NewTenantRepo(gdb, log)
	domainRepo := repos.NewDomainRepo(gdb, log)
	languageRepo := repos.NewLanguageRepo(gdb, log)
	stafferRepo := repos.NewStafferRepo(gdb, log)
	categoryRepo := repos.NewCategoryRepo(gdb, log)
	locationRepo := repos.NewLocationRepo(gdb, log)
	commentRepo := repos.NewCommentRepo(gdb, log)
	reactionRepo := repos.NewReactionRepo(gdb, log)
	articleProgressRepo := repos.NewArticleReadProgressRepo(gdb, log)
	shortProgressRepo := repos.NewShortNewsReadProgressRepo(gdb, log)
	promptRepo := repos.NewPromptTemplateRepo(gdb, log)

	// Realtime
	log.Info("Setting up realtime hub from main...")
	hub := realtime.NewHub(log)
	var eventBus bus.Bus
	if cfg.Redis.Addr != "" {
		b, busErr := bus.NewRedisBus(log, cfg.Redis)
		if busErr != nil {
			log.Warn("Redis event bus unavailable, running single-node", "error", busErr)
		} else {
			eventBus = b
			defer eventBus.Close()
			if err := eventBus.StartForwarder(ctx, hub.Broadcast); err != nil {
				log.Warn("Event bus forwarder failed to start", "error", err)
			}
		}
	}
	events := services.NewRealtimeEventPublisher(log, hub, eventBus)

	// AI provider
	var aiClient ai.Client
	if client, aiErr := ai.NewFromConfig(cfg.AI, log); aiErr != nil {
		if !errors.Is(aiErr, ai.ErrNoProvider) {
			log.Error("AI client init failed", "error", aiErr)
			os.Exit(1)
		}
		log.Warn("No AI provider configured; submissions will be recorded without enrichment")
	} else {
		aiClient = client
	}

	// Services
	log.Info("Setting up services from main...")
	resolver := prompts.NewResolver(promptRepo, log)
	sanitizer := sanitize.New()
	composeService := services.NewCompositionService(
		gdb, log, cfg.Composition,
		aiClient, resolver, sanitizer, events,
		articleRepo, newspaperRepo, webRepo, shortRepo,
		tenantRepo, domainRepo, languageRepo, stafferRepo, locationRepo,
	)
	statusService := services.NewCompositionStatusService(gdb, articleRepo)
	contentService := services.NewContentService(
		gdb, log, sanitizer, cfg.Composition.MaxFieldLen,
		articleRepo, newspaperRepo, webRepo, shortRepo, categoryRepo,
	)
	engagementService := services.NewEngagementService(gdb, log, sanitizer, articleRepo, commentRepo, reactionRepo)
	progressService := services.NewReadProgressService(gdb, log, cfg.Progress, articleRepo, shortRepo, articleProgressRepo, shortProgressRepo)
	promptService := services.NewPromptAdminService(gdb, log, promptRepo)
	shareCardService, err := services.NewShareCardService(gdb, log, cfg.ShareCardFont, webRepo, tenantRepo)
	if err != nil {
		log.Error("Share card renderer init failed", "error", err)
		os.Exit(1)
	}
	identityService := services.NewIdentityService(log, cfg.JWTSecret)
	sweeper := jobs.NewSweeper(gdb, log, articleRepo)

	// Handlers
	log.Info("Setting up handlers from main...")
	healthHandler := handlers.NewHealthHandler(gdb)
	articleHandler := handlers.NewArticleHandler(log, composeService, statusService, contentService)
	newspaperHandler := handlers.NewNewspaperHandler(contentService)
	webHandler := handlers.NewWebHandler(contentService, shareCardService)
	shortNewsHandler := handlers.NewShortNewsHandler(contentService)
	engagementHandler := handlers.NewEngagementHandler(engagementService)
	progressHandler := handlers.NewProgressHandler(progressService)
	promptHandler := handlers.NewPromptHandler(promptService)
	eventStreamHandler := handlers.NewEventStreamHandler(log, hub)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(log, identityService)

	// Router
	log.Info("Setting up router from main...")
	srv := http.NewServer(http.RouterConfig{
		Log:                log,
		Metrics:            metrics,
		CORSOrigins:        cfg.CORSOrigins,
		AuthMiddleware:     authMiddleware,
		HealthHandler:      healthHandler,
		ArticleHandler:     articleHandler,
		NewspaperHandler:   newspaperHandler,
		WebHandler:         webHandler,
		ShortNewsHandler:   shortNewsHandler,
		EngagementHandler:  engagementHandler,
		ProgressHandler:    progressHandler,
		PromptHandler:      promptHandler,
		EventStreamHandler: eventStreamHandler,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(gctx, ":"+cfg.Port) })
	g.Go(func() error { return sweeper.Run(gctx) })

	log.Info("Server listening", "port", cfg.Port)
	if err := g.Wait(); err != nil {
		log.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("Shutdown complete")
}
