package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/url"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/okailora/okailora/backend"
	"github.com/okailora/okailora/backend/api"
	"github.com/okailora/okailora/backend/middleware"
	"github.com/okailora/okailora/pkg/prometheus"
	"github.com/okailora/okailora/pkg/server"
	"github.com/okailora/okailora/pkg/storage"
	"github.com/okailora/okailora/pkg/tracing"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"
)

const (
	svcName       = "okailora-backend"
	defHTTPPort   = "8080"
	envPrefixHTTP = "BACKEND_HTTP_"
	envPrefixSim  = "BACKEND_SIM_"
	envPrefixDB   = "BACKEND_STORAGE_"
	pathEnv       = ".env"
)

type envConfig struct {
	LogLevel       string   `env:"BACKEND_LOG_LEVEL"       envDefault:"info"`
	InstanceID     string   `env:"BACKEND_INSTANCE_ID"`
	Deployments    string   `env:"BACKEND_DEPLOYMENTS"     envDefault:"deployments.yaml"`
	AllowedOrigins []string `env:"BACKEND_ALLOWED_ORIGINS" envDefault:"*"`
	OTELURL        url.URL  `env:"BACKEND_OTEL_URL"`
	TraceRatio     float64  `env:"BACKEND_TRACE_RATIO"     envDefault:"0"`
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	g, ctx := errgroup.WithContext(ctx)

	if _, err := os.Stat(pathEnv); err == nil {
		_ = godotenv.Load(pathEnv)
	}

	cfg := envConfig{}
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("failed to load configuration : %s", err.Error())
	}

	if cfg.InstanceID == "" {
		cfg.InstanceID = uuid.NewString()
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		log.Fatalf("failed to parse log level: %s", err.Error())
	}
	logHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})
	logger := slog.New(logHandler)
	slog.SetDefault(logger)

	var tp trace.TracerProvider
	switch {
	case cfg.OTELURL == (url.URL{}):
		tp = noop.NewTracerProvider()
	default:
		sdktp, err := tracing.NewProvider(ctx, svcName, cfg.OTELURL, cfg.InstanceID, cfg.TraceRatio)
		if err != nil {
			logger.Error("failed to initialize opentelemetry", slog.String("error", err.Error()))

			return
		}
		defer func() {
			if err := sdktp.Shutdown(context.Background()); err != nil {
				logger.Error("error shutting down tracer provider", slog.Any("error", err))
			}
		}()
		tp = sdktp
	}
	tracer := tp.Tracer(svcName)

	dbConfig := storage.Config{}
	if err := env.ParseWithOptions(&dbConfig, env.Options{Prefix: envPrefixDB}); err != nil {
		logger.Error(fmt.Sprintf("failed to load %s storage configuration : %s", svcName, err.Error()))

		return
	}
	db, err := storage.Open(dbConfig)
	if err != nil {
		logger.Error("failed to open storage", slog.String("type", dbConfig.Type), slog.String("error", err.Error()))

		return
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("error closing storage", slog.Any("error", err))
		}
	}()

	registry, err := backend.NewRegistry(ctx, db.Store("deployments", storage.DecodeJSON[backend.Deployment]()), cfg.Deployments)
	if err != nil {
		logger.Error("failed to load deployments", slog.String("error", err.Error()))

		return
	}

	simConfig := backend.Config{}
	if err := env.ParseWithOptions(&simConfig, env.Options{Prefix: envPrefixSim}); err != nil {
		logger.Error(fmt.Sprintf("failed to load %s simulator configuration : %s", svcName, err.Error()))

		return
	}
	sim := backend.NewSimulator(simConfig, registry, db.Store("uploads", storage.DecodeJSON[[]byte]()), logger)
	defer sim.Close()

	var svc backend.Service = sim
	svc = middleware.Logging(logger, svc)
	svc = middleware.Tracing(tracer, svc)
	counter, latency := prometheus.MakeMetrics("okailora", "backend")
	svc = middleware.Metrics(counter, latency, svc)

	httpServerConfig := server.Config{Port: defHTTPPort}
	if err := env.ParseWithOptions(&httpServerConfig, env.Options{Prefix: envPrefixHTTP}); err != nil {
		logger.Error(fmt.Sprintf("failed to load %s HTTP server configuration : %s", svcName, err.Error()))

		return
	}

	hs := server.NewHTTP(ctx, cancel, svcName, httpServerConfig, api.MakeHandler(svc, logger, cfg.InstanceID, cfg.AllowedOrigins), logger)

	g.Go(func() error {
		return hs.Start()
	})

	g.Go(func() error {
		return server.StopSignalHandler(ctx, cancel, logger, svcName, hs)
	})

	if err := g.Wait(); err != nil {
		logger.Error(fmt.Sprintf("%s service exited with error: %s", svcName, err))
	}
}
