// Package usecase orchestrates the analysis pipeline: it fans an
// article out to the independent stages, merges the results into a
// single record, and derives the aggregate risk assessment.
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"newsintel/internal/domain"
	"newsintel/internal/logging"
	"newsintel/internal/ports"
)

const (
	stageSentiment   = "sentiment"
	stageCredibility = "credibility"
	stageSummary     = "summary"
)

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Source      ports.ArticleSource
	Sentiment   ports.SentimentStage
	Credibility ports.CredibilityStage
	Summary     ports.SummaryStage
	Cache       ports.StageCache
	Logger      *slog.Logger
}

// Options bounds a processing request. Stage toggles let any one stage
// be disabled without touching the others.
type Options struct {
	RequestTimeout    time.Duration
	MaxContentBytes   int
	MaxSummaryLength  int
	MaxBatchArticles  int
	BatchConcurrency  int
	NearThresholdBand float64
	EnableSentiment   bool
	EnableCredibility bool
	EnableSummary     bool
}

// Pipeline implements the article-processing workflow.
type Pipeline struct {
	source      ports.ArticleSource
	sentiment   ports.SentimentStage
	credibility ports.CredibilityStage
	summary     ports.SummaryStage
	cache       ports.StageCache
	logger      *slog.Logger
	opts        Options
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps, opts Options) *Pipeline {
	if opts.BatchConcurrency <= 0 {
		opts.BatchConcurrency = 4
	}
	if opts.MaxBatchArticles <= 0 {
		opts.MaxBatchArticles = 20
	}
	return &Pipeline{
		source:      deps.Source,
		sentiment:   deps.Sentiment,
		credibility: deps.Credibility,
		summary:     deps.Summary,
		cache:       deps.Cache,
		logger:      logging.Component(deps.Logger, "pipeline"),
		opts:        opts,
	}
}

// MaxBatchArticles exposes the batch cap to the transport layer.
func (p *Pipeline) MaxBatchArticles() int {
	return p.opts.MaxBatchArticles
}

// ProcessOne validates the article and runs all enabled stages
// concurrently. Stage failures degrade that stage to unavailable; only
// boundary validation produces an error.
func (p *Pipeline) ProcessOne(ctx context.Context, article domain.RawArticle) (domain.ProcessedArticle, error) {
	if err := p.validate(article); err != nil {
		return domain.ProcessedArticle{}, err
	}
	return p.process(ctx, article), nil
}

func (p *Pipeline) validate(article domain.RawArticle) error {
	if strings.TrimSpace(article.Title) == "" && strings.TrimSpace(article.Content) == "" {
		return fmt.Errorf("%w: empty title and content", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(article.Content) == "" {
		return fmt.Errorf("%w: empty content", domain.ErrInvalidInput)
	}
	if p.opts.MaxContentBytes > 0 && len(article.Content) > p.opts.MaxContentBytes {
		return fmt.Errorf("%w: %d bytes exceeds cap %d",
			domain.ErrContentTooLarge, len(article.Content), p.opts.MaxContentBytes)
	}
	return nil
}

func (p *Pipeline) process(ctx context.Context, article domain.RawArticle) domain.ProcessedArticle {
	if p.opts.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.opts.RequestTimeout)
		defer cancel()
	}

	fingerprint := article.Fingerprint()
	record := domain.ProcessedArticle{Article: article}

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		record.Sentiment = runStage(p, ctx, stageSentiment, fingerprint,
			p.opts.EnableSentiment && p.sentiment != nil,
			domain.SentimentNeutral,
			func() (domain.StageResult[domain.Sentiment], error) {
				return p.sentiment.Classify(ctx, article)
			})
	}()
	go func() {
		defer wg.Done()
		record.Credibility = runStage(p, ctx, stageCredibility, fingerprint,
			p.opts.EnableCredibility && p.credibility != nil,
			domain.CredibilityUnknown,
			func() (domain.StageResult[domain.Credibility], error) {
				return p.credibility.Classify(ctx, article)
			})
	}()
	go func() {
		defer wg.Done()
		record.Summary = runStage(p, ctx, stageSummary, fingerprint,
			p.opts.EnableSummary && p.summary != nil,
			"",
			func() (domain.StageResult[string], error) {
				return p.summary.Summarize(ctx, article, p.opts.MaxSummaryLength)
			})
	}()
	wg.Wait()

	record.Risk = AssessRisk(record.Sentiment, record.Credibility, p.opts.NearThresholdBand)
	record.ProcessedAt = time.Now().UTC()
	record.Partial = record.Sentiment.Origin != domain.OriginPrimary ||
		record.Credibility.Origin != domain.OriginPrimary ||
		record.Summary.Origin != domain.OriginPrimary
	return record
}

// runStage applies the shared stage policy: disabled stages short out,
// cached results are reused, and panics or errors degrade to
// unavailable rather than failing the request. Only results that carry a
// real value are cached.
func runStage[T any](p *Pipeline, ctx context.Context, stage, fingerprint string, enabled bool, neutral T, invoke func() (domain.StageResult[T], error)) domain.StageResult[T] {
	if !enabled {
		return domain.Unavailable(neutral)
	}

	if p.cache != nil {
		if cached, ok := p.cache.Get(stage, fingerprint); ok {
			if result, ok := cached.(domain.StageResult[T]); ok {
				return result
			}
		}
	}
	if ctx.Err() != nil {
		return domain.Unavailable(neutral)
	}

	result, err := safeInvoke(p.logger, stage, neutral, invoke)
	if err != nil {
		p.logger.Warn("stage degraded", "stage", stage, "err", err)
	}

	if p.cache != nil && result.Origin != domain.OriginUnavailable {
		p.cache.Put(stage, fingerprint, result)
	}
	return result
}

func safeInvoke[T any](logger *slog.Logger, stage string, neutral T, invoke func() (domain.StageResult[T], error)) (result domain.StageResult[T], err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("stage panicked", "stage", stage, "panic", r)
			result = domain.Unavailable(neutral)
			err = fmt.Errorf("stage %s panicked: %v", stage, r)
		}
	}()
	return invoke()
}

// ProcessBatch runs the pipeline over each article with bounded
// concurrency, preserving input order. A malformed article yields a
// fully degraded record instead of failing its neighbors.
func (p *Pipeline) ProcessBatch(ctx context.Context, articles []domain.RawArticle) []domain.ProcessedArticle {
	results := make([]domain.ProcessedArticle, len(articles))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.BatchConcurrency)
	for i, article := range articles {
		g.Go(func() error {
			if err := p.validate(article); err != nil {
				p.logger.Warn("skipping malformed batch article", "index", i, "err", err)
				results[i] = p.UnavailableRecord(article)
				return nil
			}
			results[i] = p.process(gctx, article)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// Passthrough validates the article and returns the record shape with
// every stage marked unavailable, for callers that opt out of analysis.
func (p *Pipeline) Passthrough(article domain.RawArticle) (domain.ProcessedArticle, error) {
	if err := p.validate(article); err != nil {
		return domain.ProcessedArticle{}, err
	}
	return p.UnavailableRecord(article), nil
}

// UnavailableRecord builds the fully degraded record shape for an
// article that could not be analyzed at all. Every stage field carries a
// real origin so the response stays structurally complete.
func (p *Pipeline) UnavailableRecord(article domain.RawArticle) domain.ProcessedArticle {
	sentiment := domain.Unavailable(domain.SentimentNeutral)
	credibility := domain.Unavailable(domain.CredibilityUnknown)
	return domain.ProcessedArticle{
		Article:     article,
		Sentiment:   sentiment,
		Credibility: credibility,
		Summary:     domain.Unavailable(""),
		Risk:        AssessRisk(sentiment, credibility, p.opts.NearThresholdBand),
		ProcessedAt: time.Now().UTC(),
		Partial:     true,
	}
}

// FetchAndProcess pulls articles from the provider and runs the batch
// pipeline over them. An empty provider response is not an error.
func (p *Pipeline) FetchAndProcess(ctx context.Context, query string, pageSize int) ([]domain.ProcessedArticle, error) {
	if p.source == nil {
		return nil, fmt.Errorf("no article source configured")
	}
	if pageSize <= 0 || pageSize > p.opts.MaxBatchArticles {
		pageSize = p.opts.MaxBatchArticles
	}

	articles, err := p.source.Fetch(ctx, query, pageSize)
	if err != nil {
		return nil, fmt.Errorf("fetch articles: %w", err)
	}
	if len(articles) == 0 {
		p.logger.Info("provider returned no articles", "query", query)
		return []domain.ProcessedArticle{}, nil
	}

	p.logger.Info("processing fetched articles", "query", query, "count", len(articles))
	return p.ProcessBatch(ctx, articles), nil
}

// FetchTopHeadlines pulls the provider's current headlines for a
// category and country and runs the batch pipeline over them.
func (p *Pipeline) FetchTopHeadlines(ctx context.Context, category, country string, pageSize int) ([]domain.ProcessedArticle, error) {
	if p.source == nil {
		return nil, fmt.Errorf("no article source configured")
	}
	if pageSize <= 0 || pageSize > p.opts.MaxBatchArticles {
		pageSize = p.opts.MaxBatchArticles
	}

	articles, err := p.source.TopHeadlines(ctx, category, country, pageSize)
	if err != nil {
		return nil, fmt.Errorf("fetch top headlines: %w", err)
	}
	if len(articles) == 0 {
		p.logger.Info("provider returned no headlines", "category", category, "country", country)
		return []domain.ProcessedArticle{}, nil
	}

	p.logger.Info("processing fetched headlines",
		"category", category, "country", country, "count", len(articles))
	return p.ProcessBatch(ctx, articles), nil
}
