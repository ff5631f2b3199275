// Package app assembles the application from configuration.
package app

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"newsintel/internal/config"
	"newsintel/internal/infrastructure/cache"
	"newsintel/internal/infrastructure/chat"
	"newsintel/internal/infrastructure/credibility"
	"newsintel/internal/infrastructure/httpapi"
	"newsintel/internal/infrastructure/llm"
	"newsintel/internal/infrastructure/model"
	"newsintel/internal/infrastructure/sentiment"
	"newsintel/internal/infrastructure/source"
	"newsintel/internal/infrastructure/summary"
	"newsintel/internal/logging"
	"newsintel/internal/ports"
	"newsintel/internal/usecase"
)

const shutdownGrace = 10 * time.Second

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg    config.Config
	logger *slog.Logger
	server *httpapi.Server
}

// New builds a runnable application instance. Missing model artifacts
// and absent API keys degrade the affected stage instead of failing
// startup.
func New(cfg config.Config, baseLogger *slog.Logger) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit.RequestsPerSecond), cfg.RateLimit.Burst)

	sentimentModel, err := model.LoadTextClassifier(cfg.Models.SentimentPath)
	if err != nil {
		baseLogger.Warn("sentiment model not loaded, lexicon fallback only", "err", err)
	}
	credibilityModel, err := model.LoadLinear(cfg.Models.CredibilityPath)
	if err != nil {
		baseLogger.Warn("credibility model not loaded, stage degraded", "err", err)
	}

	var generator ports.Generator
	var generatorPing httpapi.Pinger
	if cfg.OpenRouter.APIKey != "" {
		client := llm.NewOpenRouterClient(cfg.OpenRouter)
		generator = client
		generatorPing = client
	} else {
		baseLogger.Warn("no openrouter key, summaries use extractive fallback")
	}

	newsSource := source.NewNewsAPIClient(cfg.NewsAPI, limiter, logging.Component(baseLogger, "source"))

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:      newsSource,
		Sentiment:   sentiment.NewStage(sentimentModel, sentiment.NewLexicon(), logging.Component(baseLogger, "sentiment")),
		Credibility: credibility.NewStage(credibilityModel, logging.Component(baseLogger, "credibility")),
		Summary:     summary.NewStage(generator, limiter, logging.Component(baseLogger, "summary")),
		Cache:       cache.NewMemory(cfg.Cache.Size, cfg.Cache.TTL()),
		Logger:      baseLogger,
	}, usecase.Options{
		RequestTimeout:    cfg.Pipeline.RequestTimeout(),
		MaxContentBytes:   cfg.Pipeline.MaxContentBytes,
		MaxSummaryLength:  cfg.Pipeline.MaxSummaryLength,
		MaxBatchArticles:  cfg.Pipeline.MaxBatchArticles,
		BatchConcurrency:  cfg.Pipeline.BatchConcurrency,
		NearThresholdBand: cfg.Pipeline.NearThresholdBand,
		EnableSentiment:   cfg.Stages.Sentiment,
		EnableCredibility: cfg.Stages.Credibility,
		EnableSummary:     cfg.Stages.Summary,
	})

	handler := httpapi.NewHandler(pipeline, chat.NewResponder(), generatorPing, newsSource, httpapi.HealthInfo{
		SentimentModelLoaded:   sentimentModel != nil,
		CredibilityModelLoaded: credibilityModel != nil,
	})
	server := httpapi.NewServer(cfg.Server.Addr, handler, logging.Component(baseLogger, "http"))

	return &Application{cfg: cfg, logger: baseLogger, server: server}
}

// Run serves HTTP until the context is cancelled, then drains.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- a.server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	return a.server.Shutdown(shutdownCtx)
}
