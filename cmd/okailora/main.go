package main

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"log/slog"
	"net"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/okailora/okailora"
	"github.com/okailora/okailora/catalog"
	"github.com/okailora/okailora/cli"
	"github.com/okailora/okailora/dashboard"
	"github.com/okailora/okailora/dashboard/middleware"
	"github.com/okailora/okailora/pkg/prometheus"
	"github.com/okailora/okailora/pkg/sdk"
	"github.com/okailora/okailora/pkg/server"
	"github.com/okailora/okailora/pkg/storage"
	"github.com/okailora/okailora/pkg/tracing"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const (
	svcName = "okailora"
	pathEnv = ".env"
)

type envConfig struct {
	URL         string  `env:"OKAILORA_URL"`
	Config      string  `env:"OKAILORA_CONFIG"       envDefault:"okailora.toml"`
	LogLevel    string  `env:"OKAILORA_LOG_LEVEL"    envDefault:"warn"`
	MetricsAddr string  `env:"OKAILORA_METRICS_ADDR"`
	OTELURL     url.URL `env:"OKAILORA_OTEL_URL"`
	TraceRatio  float64 `env:"OKAILORA_TRACE_RATIO"  envDefault:"1"`
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if _, err := os.Stat(pathEnv); err == nil {
		_ = godotenv.Load(pathEnv)
	}

	cfg := envConfig{}
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("failed to load configuration : %s", err.Error())
	}

	var tp *sdktrace.TracerProvider

	rootCmd := &cobra.Command{
		Use:   "okailora",
		Short: "Okailora CLI",
		Long:  `Okailora CLI trains, fine-tunes, runs and shares healthcare models on the Okailora platform.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			conf, err := loadConfig(cfg.Config)
			if err != nil {
				return err
			}
			if cfg.URL != "" {
				conf.API.URL = cfg.URL
			}

			var level slog.Level
			if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
				return err
			}
			logger := slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
				Level: level,
			}))

			client := sdk.NewSDK(sdk.Config{
				URL:             conf.API.URL,
				TLSVerification: conf.API.TLSVerification,
				Timeout:         conf.API.TimeoutDuration(),
			})

			svc := dashboard.NewService(
				storage.NewInMemoryStorage(),
				client,
				catalog.New(),
				cli.Alerter(cmd),
				logger,
				dashboard.Config{
					PollInterval:     conf.Monitor.PollEvery(),
					TotalSteps:       conf.Monitor.TotalSteps,
					ProgressInterval: conf.Upload.ProgressEvery(),
					ProgressStep:     conf.Upload.ProgressStep,
					ProgressCap:      conf.Upload.ProgressCap,
					ShareBaseURL:     conf.Share.BaseURL,
				},
			)
			if cfg.OTELURL != (url.URL{}) {
				if tp, err = tracing.NewProvider(cmd.Context(), svcName, cfg.OTELURL, "", cfg.TraceRatio); err != nil {
					return err
				}
			}

			svc = middleware.Logging(logger, svc)
			svc = middleware.Tracing(otel.Tracer(svcName), svc)
			if cfg.MetricsAddr != "" {
				if svc, err = serveMetrics(cmd.Context(), cfg.MetricsAddr, svc, logger); err != nil {
					return err
				}
			}

			cli.SetConfig(conf)
			cli.SetSDK(client)
			cli.SetService(svc)

			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if tp == nil {
				return
			}
			if err := tp.Shutdown(context.Background()); err != nil {
				cli.Alerter(cmd).Alert("failed to flush traces: " + err.Error())
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfg.URL, "url", "u", cfg.URL, "Okailora API URL, overrides api.url")
	rootCmd.PersistentFlags().StringVarP(&cfg.Config, "config", "c", cfg.Config, "Path to the TOML config file")
	rootCmd.PersistentFlags().StringVarP(&cfg.LogLevel, "log-level", "l", cfg.LogLevel, "Log level")

	rootCmd.AddCommand(
		cli.NewModelsCmd(),
		cli.NewDeploymentsCmd(),
		cli.NewTrainCmd(),
		cli.NewInferenceCmd(),
		cli.NewRunCmd(),
		cli.NewWizardCmd(),
		cli.NewResourcesCmd(),
	)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Fatal(err)
	}
}

// loadConfig reads path over the defaults. A missing file leaves the defaults.
func loadConfig(path string) (okailora.Config, error) {
	conf, err := okailora.LoadConfig(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return okailora.DefaultConfig(), nil
	case err != nil:
		return okailora.Config{}, err
	default:
		return *conf, nil
	}
}

// serveMetrics exposes the dashboard request metrics at addr for as long as
// the command runs.
func serveMetrics(ctx context.Context, addr string, svc dashboard.Service, logger *slog.Logger) (dashboard.Service, error) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, err
	}

	counter, latency := prometheus.MakeMetrics(svcName, "dashboard")
	svc = middleware.Metrics(counter, latency, svc)

	ctx, cancel := context.WithCancel(ctx)
	hs := server.NewHTTP(ctx, cancel, svcName, server.Config{Host: host, Port: port}, promhttp.Handler(), logger)
	go func() {
		if err := hs.Start(); err != nil {
			logger.Error("metrics server stopped", slog.Any("error", err))
		}
	}()

	return svc, nil
}
