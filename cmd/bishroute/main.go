package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"bishroute/internal/cache"
	"bishroute/internal/config"
	"bishroute/internal/handler"
	"bishroute/internal/hub"
	"bishroute/internal/middleware"
	"bishroute/internal/predict"
	"bishroute/internal/refresher"
	"bishroute/internal/route"
	"bishroute/internal/streets"
	"bishroute/internal/traffic"
	"bishroute/pkg/graphhopper"
	"bishroute/pkg/osrm"
	"bishroute/pkg/overpass"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("starting bishroute server",
		"log_level", cfg.LogLevel.String(),
		"http_addr", cfg.HTTPAddr,
		"osrm_mirrors", len(cfg.OSRMMirrors),
		"graphhopper", cfg.GraphHopperKey != "",
		"redis", cfg.RedisEnabled,
	)

	var snapshot streets.SnapshotStore
	if cfg.RedisEnabled {
		redisCache, err := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, logger)
		if err != nil {
			logger.Warn("redis unavailable, street snapshots disabled", "error", err)
		} else {
			defer redisCache.Close()
			snapshot = cache.NewStreetSnapshot(redisCache, cfg.StreetTTL*2)
		}
	}

	fetcher := overpass.New(cfg.OverpassURL)
	streetCache := streets.NewCache(fetcher, snapshot, cfg.Region, cfg.StreetTTL, cfg.FetchTimeout, logger)
	estimator := traffic.NewEstimator(cfg.TrafficSeed)
	predictor := predict.New(nil, logger)

	primaries := make([]route.Provider, 0, len(cfg.OSRMMirrors))
	for _, mirror := range cfg.OSRMMirrors {
		primaries = append(primaries, osrm.New(mirror))
	}
	var secondary route.Provider
	if cfg.GraphHopperKey != "" {
		secondary = graphhopper.New(cfg.GraphHopperURL, cfg.GraphHopperKey)
	}

	orchestrator := route.NewOrchestrator(streetCache, estimator, predictor, primaries, secondary, route.Options{
		Region:           cfg.Region,
		PrimaryAttempts:  cfg.OSRMAttempts,
		ProviderTimeout:  cfg.ProviderTimeout,
		NodeMergeRadiusM: cfg.NodeMergeRadiusM,
		SnapRadiusM:      cfg.SnapRadiusM,
		MatchRadiusM:     cfg.TrafficMatchRadiusM,
		SampleIntervalM:  cfg.TrafficSampleM,
		MaxAlternatives:  cfg.MaxAlternatives,
		EnhanceWorkers:   cfg.EnhanceWorkers,
	}, logger)

	wsHub := hub.NewHub(logger)
	refr := refresher.New(streetCache, estimator, wsHub, cfg.TrafficRefreshInterval, logger)

	httpHandler := handler.NewHTTPHandler(orchestrator, streetCache, estimator)
	wsHandler := handler.NewWSHandler(wsHub, refr, logger)
	healthHandler := handler.NewHealthHandler(refr, streetCache)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /traffic/streets", httpHandler.TrafficStreets)
	mux.HandleFunc("GET /traffic/statistics", httpHandler.TrafficStatistics)
	mux.HandleFunc("POST /routes/calculate", httpHandler.CalculateRoute)
	mux.HandleFunc("/traffic/ws", wsHandler.ServeWS)

	mux.HandleFunc("GET /healthz", healthHandler.Healthz)
	mux.HandleFunc("GET /readyz", healthHandler.Readyz)

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitPerWindow, cfg.RateLimitWindow, cfg.RateLimitWhitelist, logger)

	var root http.Handler = mux
	root = handler.GzipMiddleware(root)
	root = handler.CORSMiddleware(root)
	root = rateLimiter.Middleware(root)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      root,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go wsHub.Run(ctx)
	go refr.Run(ctx)

	go func() {
		logger.Info("starting HTTP server", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			cancel()
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
