// Package di wires the application components together.
package di

import (
	"fmt"
	"log/slog"

	"github.com/verifact/verifact-server-go/internal/config"
	"github.com/verifact/verifact-server-go/internal/cost"
	"github.com/verifact/verifact-server-go/internal/gemini"
	"github.com/verifact/verifact-server-go/internal/handler"
	"github.com/verifact/verifact-server-go/internal/identity"
	"github.com/verifact/verifact-server-go/internal/logging"
	"github.com/verifact/verifact-server-go/internal/metrics"
	"github.com/verifact/verifact-server-go/internal/quota"
	"github.com/verifact/verifact-server-go/internal/server"
	"github.com/verifact/verifact-server-go/internal/verdict"
)

// InitializeApp: builds the dependency graph and returns the App.
func InitializeApp() (*App, error) {
	cfg, err := config.ProvideConfig()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	logger, err := ProvideLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	metricsStore := metrics.NewStore()

	geminiClient, err := gemini.NewClient(cfg.LLM, metricsStore)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}

	identityResolver := identity.NewResolver(cfg.Identity)
	quotaTracker := quota.NewTracker(quota.NewMemoryStore(), cfg.Quota.MaxPerDay, cfg.Quota.Window())
	normalizer := verdict.NewNormalizer(cfg.LLM.FallbackScore)
	rates := cost.Rates(cfg.Cost)

	verifyHandler := handler.NewVerifyHandler(
		cfg,
		geminiClient,
		identityResolver,
		quotaTracker,
		normalizer,
		rates,
		metricsStore,
		logger,
	)

	router := handler.NewRouter(cfg, logger, verifyHandler)
	httpServer := server.NewHTTPServer(cfg, router)

	return NewApp(httpServer, logger, cfg), nil
}

// ProvideLogger: configures and returns the logger.
func ProvideLogger(cfg *config.Config) (*slog.Logger, error) {
	logger, err := logging.NewLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return logger, nil
}
