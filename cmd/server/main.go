package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"flightsched-service/internal/domain/entity"
	"flightsched-service/internal/domain/repository"
	"flightsched-service/internal/infrastructure/config"
	"flightsched-service/internal/infrastructure/persistence"
	"flightsched-service/internal/interface/flightapi"
	"flightsched-service/internal/interface/httpapi"
	repo "flightsched-service/internal/interface/repository"
	"flightsched-service/internal/usecase"
	"flightsched-service/pkg/cache"
	"flightsched-service/pkg/clock"
	"flightsched-service/pkg/logger"
	"flightsched-service/pkg/metrics"
	"flightsched-service/pkg/utils"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/mongo"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.NewLogger("info").Fatal("Failed to load config", "error", err)
	}

	// Create logger
	log := logger.NewLogger(cfg.LogLevel)
	defer log.Sync()
	log.Info("Starting flight schedule service", "version", cfg.AppVersion)

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.NewMetrics(cfg.MetricsNamespace, prometheus.DefaultRegisterer)
	clk := clock.Real()

	// Set up storage
	var (
		shardStore  repository.ShardStore
		requestRepo repository.CollectionRequestRepository
		mongoClient *mongo.Client
	)
	switch cfg.StoreBackend {
	case config.StoreMongo:
		log.Info("Connecting to MongoDB")
		client, db, err := persistence.NewMongoClient(ctx, cfg.MongoURI, cfg.MongoDB, cfg.MongoUser, cfg.MongoPassword)
		if err != nil {
			log.Fatal("Failed to connect to MongoDB", "error", err)
		}
		mongoClient = client

		if shardStore, err = repo.NewMongoShardStore(ctx, db); err != nil {
			log.Fatal("Failed to set up flight schedule store", "error", err)
		}
		if requestRepo, err = repo.NewMongoCollectionRequestRepository(ctx, db); err != nil {
			log.Fatal("Failed to set up collection request store", "error", err)
		}
	default:
		log.Warn("Using in-memory storage, data is lost on restart")
		shardStore = repo.NewMemoryShardStore()
		requestRepo = repo.NewMemoryCollectionRequestRepository()
	}

	// Set up airline and timezone repositories
	var (
		airlineRepository  repository.AirlineRepository
		timezoneRepository repository.TimezoneRepository
	)
	if cfg.PostgresURI != "" {
		gormDB, err := persistence.NewPostgresDB(cfg.PostgresURI)
		if err != nil {
			log.Fatal("Failed to connect to PostgreSQL", "error", err)
		}
		airlineRepository = repo.NewGormAirlineRepository(gormDB)
		timezoneRepository = repo.NewGormTimezoneRepository(gormDB)
	} else {
		log.Info("POSTGRES_DSN not set, using built-in reference data")
		airlineRepository = repo.NewStaticAirlineRepository()
		timezoneRepository = repo.NewStaticTimezoneRepository()
	}

	defaultLoc, _ := time.LoadLocation(cfg.DefaultTimezone)
	airports := usecase.NewAirportDirectory(timezoneRepository, defaultLoc, log)

	// Set up flight data API client
	if cfg.FlightAPIKey == "" {
		log.Warn("FLIGHT_API_KEY is empty, upstream calls will be rejected")
	}
	apiClient := flightapi.NewClient(cfg.FlightAPIKey, log,
		flightapi.WithBaseURL(cfg.FlightAPIBaseURL),
		flightapi.WithAPIHost(cfg.FlightAPIHost),
		flightapi.WithHttpClient(&http.Client{Timeout: cfg.FlightAPITimeout}),
		flightapi.WithClock(clk),
		flightapi.WithZoneResolver(func(iata string) *time.Location {
			return airports.Location(ctx, iata)
		}),
	)

	// Set up use cases
	times := utils.NewTimeNormalizer(log, clk, func(kind string) {
		m.TimeFallbacks.WithLabelValues(kind).Inc()
	})
	store := usecase.NewShardedStore(shardStore, clk, log, m)
	monthCache := cache.NewTTL[string, []*entity.FlightSchedule](cfg.CacheTTL, clk)
	queryCache := usecase.NewQueryCache(monthCache, log, m)

	pipeline := usecase.NewIngestionPipeline(
		ctx,
		apiClient,
		requestRepo,
		store,
		usecase.NewScheduleNormalizer(times),
		usecase.NewRelevanceFilter(cfg.AllowedAirports),
		airports,
		airlineRepository,
		queryCache,
		log,
		m,
		usecase.PipelineConfig{
			ChunkSize:    cfg.ChunkSize,
			ChunkDelay:   cfg.ChunkDelay,
			MaxBatchSize: cfg.MaxBatchSize,
			MaxRangeDays: cfg.MaxRangeDays,
			Clock:        clk,
		},
	)
	service := usecase.NewFlightService(pipeline, store, queryCache, log)

	// Drop expired month entries in the background
	go func() {
		ticker := time.NewTicker(cfg.CacheTTL)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := monthCache.Purge(); n > 0 {
					log.Debug("Purged expired month cache entries", "count", n)
				}
			}
		}
	}()

	// Set up HTTP server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = cfg.ReadTimeout
	e.Server.WriteTimeout = cfg.WriteTimeout
	e.Use(middleware.Recover(), httpapi.RequestLogger(log))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	httpapi.NewHandler(service, cfg.AppVersion, log).Register(e)

	// Start HTTP server in a goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Port)
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info("Received signal", "signal", sig)

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	// Stop active runs; each records itself as cancelled
	if err := pipeline.Close(shutdownCtx); err != nil {
		log.Error("Collection runs did not stop in time", "error", err)
	}

	cancel()

	// Disconnect from MongoDB
	if mongoClient != nil {
		if err := mongoClient.Disconnect(shutdownCtx); err != nil {
			log.Error("MongoDB disconnect error", "error", err)
		}
	}

	log.Info("Flight schedule service stopped")
}
