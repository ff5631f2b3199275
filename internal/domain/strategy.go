package domain

import "context"

// Tier is one attempt at producing a stage value: a primary model call
// or a degraded fallback. It reports the value and its confidence.
type Tier[T any] func(ctx context.Context) (T, float64, error)

// RunTiered applies the uniform primary-then-fallback policy shared by
// the analysis stages. A nil tier is treated as absent; when both tiers
// are absent or fail the result collapses to Unavailable(neutral).
// Stages without a statistical fallback simply pass a nil fallback.
func RunTiered[T any](ctx context.Context, neutral T, primary, fallback Tier[T]) StageResult[T] {
	if primary != nil {
		if value, confidence, err := primary(ctx); err == nil {
			return StageResult[T]{Value: value, Confidence: confidence, Origin: OriginPrimary}
		}
	}
	if fallback != nil {
		if value, confidence, err := fallback(ctx); err == nil {
			return StageResult[T]{Value: value, Confidence: confidence, Origin: OriginFallback}
		}
	}
	return Unavailable(neutral)
}
