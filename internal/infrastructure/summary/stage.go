// Package summary produces a length-bounded abstract of an article. The
// primary path is a remote generative model behind a shared rate
// limiter; the fallback is local extractive selection, so summaries stay
// available when the provider is down or the quota is spent.
package summary

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/time/rate"

	"newsintel/internal/domain"
	"newsintel/internal/ports"
)

const (
	primaryConfidence  = 0.9
	fallbackConfidence = 0.5
)

// Stage implements ports.SummaryStage.
type Stage struct {
	generator ports.Generator
	limiter   *rate.Limiter
	logger    *slog.Logger
}

var _ ports.SummaryStage = (*Stage)(nil)

// NewStage wires the remote generator (nil disables the primary path)
// and the shared outbound limiter.
func NewStage(generator ports.Generator, limiter *rate.Limiter, logger *slog.Logger) *Stage {
	return &Stage{generator: generator, limiter: limiter, logger: logger}
}

// Summarize runs the two-tier policy. When the result collapses to
// unavailable it still carries a plain truncation of the content so the
// response is never empty, and the error explains why.
func (s *Stage) Summarize(ctx context.Context, article domain.RawArticle, maxLength int) (domain.StageResult[string], error) {
	var primary domain.Tier[string]
	if s.generator != nil {
		primary = func(ctx context.Context) (string, float64, error) {
			text, err := s.remote(ctx, article, maxLength)
			if err != nil {
				s.warn("remote summary failed, degrading", "err", err, "url", article.URL)
				return "", 0, err
			}
			return text, primaryConfidence, nil
		}
	}
	fallback := func(context.Context) (string, float64, error) {
		text, err := extract(article.Content, maxLength)
		if err != nil {
			return "", 0, err
		}
		return text, fallbackConfidence, nil
	}

	result := domain.RunTiered(ctx, truncate(article.Content, maxLength), primary, fallback)
	if result.Origin == domain.OriginUnavailable {
		return result, fmt.Errorf("summarize: %w", domain.ErrModelUnavailable)
	}
	return result, nil
}

func (s *Stage) remote(ctx context.Context, article domain.RawArticle, maxLength int) (string, error) {
	if s.limiter != nil && !s.limiter.Allow() {
		return "", domain.ErrQuotaExceeded
	}

	prompt := fmt.Sprintf(
		"Summarize the following news article in at most %d characters. "+
			"Respond with the summary only.\n\nTitle: %s\n\n%s",
		maxLength, article.Title, article.Content)

	text, err := s.generator.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}

	text = cleanCompletion(text)
	if text == "" {
		return "", fmt.Errorf("empty completion")
	}
	return truncate(text, maxLength), nil
}

// cleanCompletion strips the boilerplate prefixes chat models like to
// prepend despite the prompt asking for the summary only.
func cleanCompletion(text string) string {
	text = strings.TrimSpace(text)
	for _, prefix := range []string{"Summary:", "summary:", "Here is a summary:", "Here's a summary:"} {
		if strings.HasPrefix(text, prefix) {
			text = strings.TrimSpace(strings.TrimPrefix(text, prefix))
		}
	}
	return strings.Trim(text, "\"")
}

func (s *Stage) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
