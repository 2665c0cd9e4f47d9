package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RogerJin0910/xredis/internal/api"
	"github.com/RogerJin0910/xredis/internal/config"
	"github.com/RogerJin0910/xredis/internal/log"
	"github.com/RogerJin0910/xredis/internal/metrics"
	"github.com/RogerJin0910/xredis/pkg/kv"
	"github.com/RogerJin0910/xredis/pkg/structure"

	// Import backends to register them
	_ "github.com/RogerJin0910/xredis/pkg/kv/memory"
	_ "github.com/RogerJin0910/xredis/pkg/kv/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	logger, err := log.NewSugar(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Infow("Starting xredis probe",
		"env", cfg.Env,
		"addr", cfg.HTTPAddr,
		"backend", cfg.Store.Backend,
		"namespace", cfg.Structure.Namespace,
	)

	// Setup metrics
	metricsObj, metricsHandler, err := metrics.Setup("xredis-probe")
	if err != nil {
		logger.Fatalw("Failed to setup metrics", "error", err)
	}

	// One store connection per process, dialed eagerly so a bad URL fails fast
	shared := kv.NewShared(cfg.KV(log.Component(logger, "store"), metricsObj))
	defer shared.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := shared.Acquire(ctx); err != nil {
		logger.Fatalw("Store connection failed", "error", err)
	}

	pool := structure.NewPool(shared,
		structure.WithNamespace(cfg.Structure.Namespace),
		structure.WithLogger(log.Component(logger, "pool")),
		structure.WithRecorder(metricsObj),
	)

	// Setup API handler and middleware
	httpLogger := log.Component(logger, "http")
	handler := api.NewHandler(shared, pool, httpLogger, metricsObj)
	middleware := api.NewMiddleware(httpLogger, metricsObj)
	router := handler.Routes(middleware, metricsHandler, api.RouteOptions{
		CORSOrigins:    cfg.Security.CORSAllowedOrigins,
		RateLimitRPM:   cfg.Security.RateLimitRPM,
		RequestTimeout: cfg.RequestTimeout,
	})

	// Setup HTTP server
	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	serverErrors := make(chan error, 1)
	go func() {
		logger.Infow("Probe server starting", "addr", server.Addr)
		serverErrors <- server.ListenAndServe()
	}()

	// Wait for interrupt signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Fatalw("Server startup failed", "error", err)
	case sig := <-shutdown:
		logger.Infow("Shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Errorw("Graceful shutdown failed", "error", err)
			server.Close()
		}

		logger.Infow("Server stopped")
	}
}
