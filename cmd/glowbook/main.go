package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"glowbook/internal/amqp"
	"glowbook/internal/backend"
	"glowbook/internal/cli"
	apphttp "glowbook/internal/http"
	"glowbook/internal/insights"
	"glowbook/internal/ledger"
	"glowbook/internal/log"
	"glowbook/internal/metrics"
	"glowbook/internal/middleware/ratelimit"
	"glowbook/internal/settings"
	"glowbook/internal/vault"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger, nil)

	ctx := context.Background()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	store, err := backend.NewFactory(logger.WithComponent(log.ComponentBackend)).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize data backend", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(reg)

	verifier, err := vault.NewVerifier(cfg.PasscodeMode)
	if err != nil {
		logger.Error("Invalid passcode mode", log.FieldError, err, "mode", cfg.PasscodeMode)
		os.Exit(1)
	}

	settingsStore, err := settings.Open(ctx, store.KV, verifier, logger.WithComponent(log.ComponentSettings))
	if err != nil {
		logger.Error("Failed to load settings", log.FieldError, err)
		os.Exit(1)
	}

	observers := []ledger.Observer{collector}
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger.WithComponent(log.ComponentAMQP))
		if err != nil {
			logger.Warn("AMQP unavailable, ledger changes will not be published", log.FieldError, err)
		} else {
			observers = append(observers, amqp.NewNotifier(amqpClient, logger.WithComponent(log.ComponentAMQP)))
		}
	}

	appointments, err := ledger.Open(ctx, store.KV, ledger.Options{
		Logger:    logger.WithComponent(log.ComponentLedger),
		Observers: observers,
		Seed:      cfg.SeedSample,
	})
	if err != nil {
		logger.Error("Failed to load appointments", log.FieldError, err)
		os.Exit(1)
	}

	var gen insights.Generator
	if cfg.GeminiAPIKey != "" {
		client, err := insights.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Warn("Insight generator unavailable, using fallback text", log.FieldError, err)
		} else {
			gen = client
		}
	}

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Ledger:         appointments,
		Settings:       settingsStore,
		Gate:           vault.NewGate(settingsStore, verifier, collector, logger.WithComponent(log.ComponentVault)),
		Insights:       insights.NewService(gen, cfg.InsightsTimeout, collector, logger.WithComponent(log.ComponentInsights)),
		Recorder:       collector,
		MetricsHandler: metrics.Handler(reg),
		RateLimit: ratelimit.Config{
			RequestsPerSecond: cfg.RateLimitRPS,
			Burst:             cfg.RateLimitBurst,
			CleanupInterval:   ratelimit.DefaultConfig().CleanupInterval,
		},
		Logger: logger.WithComponent(log.ComponentHTTP),
	})
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	shutdownCtx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Error("AMQP close error", log.FieldError, err)
			}
		}
		if err := store.Close(); err != nil {
			logger.Error("Backend close error", log.FieldError, err)
		}
	})

	logger.Info("Starting glowbook server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"appointments", appointments.Len(),
		"vault_locked", settingsStore.View().HasPasscode)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(shutdownCtx, done)
	logger.Info("Server stopped gracefully")
}
