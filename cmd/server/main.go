package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/meshscope/backend-go/internal/analysis"
	"github.com/meshscope/backend-go/internal/config"
	"github.com/meshscope/backend-go/internal/diagram"
	"github.com/meshscope/backend-go/internal/handler"
	"github.com/meshscope/backend-go/internal/health"
	"github.com/meshscope/backend-go/internal/observability"
	"github.com/meshscope/backend-go/internal/registry"
	"github.com/meshscope/backend-go/internal/topology"
)

func main() {
	dotenvErr := config.LoadDotEnv()
	cfg := config.Load()

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if dotenvErr != nil {
		logger.Debug("no .env file loaded, using environment variables", zap.Error(dotenvErr))
	}

	logger.Info("starting meshscope",
		zap.String("port", cfg.ServerPort),
		zap.String("registry_backend", cfg.RegistryBackend),
	)

	gw, err := registry.Open(cfg.RegistryBackend, registry.Options{
		Consul: registry.ConsulConfig{
			Address:    cfg.ConsulAddr,
			Token:      cfg.ConsulToken,
			Datacenter: cfg.ConsulDatacenter,
		},
		KubeConfig:    cfg.KubeConfig,
		KubeNamespace: cfg.KubeNamespace,
		File:          cfg.RegistryFile,
	})
	if err != nil {
		logger.Fatal("failed to open registry backend", zap.Error(err))
	}

	opts := []topology.Option{topology.WithConcurrency(cfg.GatewayConcurrency)}
	if cfg.NamingRulesFile != "" {
		rules, err := topology.LoadNamingRules(cfg.NamingRulesFile)
		if err != nil {
			logger.Fatal("failed to load naming rules", zap.Error(err))
		}
		logger.Info("loaded naming rules", zap.String("file", cfg.NamingRulesFile), zap.Int("rules", len(rules)))
		opts = append(opts, topology.WithNamingRules(rules))
	}

	metrics := observability.NewMetrics()
	reader := registry.NewReader(gw, logger, metrics,
		registry.WithRateLimit(cfg.GatewayRateLimit, cfg.GatewayRateBurst))
	builder := topology.NewBuilder(reader, logger, metrics, opts...)
	classifier := health.NewClassifier(reader, logger)
	analyzer := analysis.NewAnalyzer(builder, classifier, logger, metrics)

	gin.SetMode(gin.ReleaseMode)
	router := handler.SetupRouter(
		handler.NewTopologyHandler(builder, classifier, analyzer, diagram.NewRenderer()),
		handler.NewHealthHandler(classifier),
		handler.NewAnalysisHandler(analyzer),
		metrics,
		logger,
		cfg.CORSAllowOrigin,
	)

	httpServer := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errCh:
		logger.Error("server startup error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}
	logger.Info("meshscope stopped")
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse LOG_LEVEL: %w", err)
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}
