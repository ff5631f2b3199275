package ports

import (
	"context"

	"newsintel/internal/domain"
)

// ArticleSource fetches ranked articles from the upstream news provider.
// The pipeline consumes whatever subset the provider returns.
type ArticleSource interface {
	Fetch(ctx context.Context, query string, pageSize int) ([]domain.RawArticle, error)
	TopHeadlines(ctx context.Context, category, country string, pageSize int) ([]domain.RawArticle, error)
	Ping(ctx context.Context) error
}

// SentimentStage classifies text polarity with a primary/fallback policy.
type SentimentStage interface {
	Classify(ctx context.Context, article domain.RawArticle) (domain.StageResult[domain.Sentiment], error)
}

// CredibilityStage classifies text authenticity. It has no statistical
// fallback; degraded mode reports unknown rather than guessing.
type CredibilityStage interface {
	Classify(ctx context.Context, article domain.RawArticle) (domain.StageResult[domain.Credibility], error)
}

// SummaryStage produces a length-bounded abstract of the article.
type SummaryStage interface {
	Summarize(ctx context.Context, article domain.RawArticle, maxLength int) (domain.StageResult[string], error)
}

// Generator pushes prompts to a remote generative-text service.
type Generator interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Ping(ctx context.Context) error
}

// StageCache memoizes stage output by (stage, fingerprint) with a TTL.
// Expired entries behave as absent. Concurrent writers follow
// last-write-wins; stage computations are idempotent.
type StageCache interface {
	Get(stage, fingerprint string) (any, bool)
	Put(stage, fingerprint string, result any)
}
