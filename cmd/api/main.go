package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/oseikb/bookline/internal/adapters/cache"
	"github.com/oseikb/bookline/internal/adapters/database"
	"github.com/oseikb/bookline/internal/adapters/events"
	"github.com/oseikb/bookline/internal/api/handlers"
	"github.com/oseikb/bookline/internal/api/middleware"
	"github.com/oseikb/bookline/internal/api/routes"
	"github.com/oseikb/bookline/internal/application/services"
	"github.com/oseikb/bookline/internal/domain/providers"
	"github.com/oseikb/bookline/internal/infrastructure/clients/postgres"
	"github.com/oseikb/bookline/internal/infrastructure/clients/redis"
	"github.com/oseikb/bookline/internal/infrastructure/observability"
	"github.com/oseikb/bookline/pkg/config"
)

func main() {
	// Load .env if present; real environments set variables directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Server.Env)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			log.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
			log.Info().Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize postgres client")
	}
	defer pgClient.Close()

	// Redis is optional; without it the API runs uncached and without
	// cross-instance events
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("failed to initialize redis client, running without cache")
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	// Adapters
	bookingRepo := database.NewBookingAdapter(pgClient)
	providerRepo := database.NewProviderAdapter(pgClient)
	serviceRepo := database.NewServiceAdapter(pgClient)
	userRepo := database.NewUserAdapter(pgClient)

	var cacheProvider providers.CacheProvider
	var eventBus providers.EventBus
	if redisClient != nil {
		cacheProvider = cache.NewRedisAdapter(redisClient)
		eventBus = events.NewRedisEventBus(redisClient)
	}

	// Services
	clock := providers.SystemClock{}
	bookingService := services.NewBookingService(
		bookingRepo,
		providerRepo,
		serviceRepo,
		services.NewSlotGenerator(),
		clock,
		eventBus,
	)
	catalogService := services.NewCatalogService(providerRepo, serviceRepo)
	authService := services.NewAuthService(userRepo, clock, cfg.Auth.BcryptCost)

	var cacheInvalidationService *services.CacheInvalidationService
	if cacheProvider != nil && eventBus != nil {
		cacheInvalidationService = services.NewCacheInvalidationService(cacheProvider, eventBus)
		if err := cacheInvalidationService.Start(); err != nil {
			log.Warn().Err(err).Msg("failed to start cache invalidation service")
		}
	}

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	providerHandler := handlers.NewProviderHandler(catalogService, bookingService)
	serviceHandler := handlers.NewServiceHandler(catalogService)
	bookingHandler := handlers.NewBookingHandler(bookingService, metrics)

	var cacheMiddleware *middleware.CacheMiddleware
	if cacheProvider != nil {
		cacheMiddleware = middleware.NewCacheMiddleware(cacheProvider, metrics)
	}

	loginRateLimiter := middleware.NewRateLimiter(cfg.Auth.LoginRatePerMin, cfg.Auth.LoginBurst)

	router := routes.NewRouter(
		authHandler,
		providerHandler,
		serviceHandler,
		bookingHandler,
		authService,
		loginRateLimiter,
		cacheMiddleware,
		cfg.Auth.AllowedOriginsCSV,
		metrics,
	)

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router.SetupRoutes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", serverAddr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	if eventBus != nil {
		if err := eventBus.Close(); err != nil {
			log.Error().Err(err).Msg("error closing event bus")
		}
	}

	if cacheInvalidationService != nil {
		cacheInvalidationService.Stop()
	}

	log.Info().Msg("server stopped")
}
