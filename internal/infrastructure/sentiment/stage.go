// Package sentiment classifies article polarity. The primary path is a
// trained classifier over a bag-of-words vector; the fallback is a
// lexicon scorer whose confidence is pinned at a conservative constant
// to signal it is not model-grade.
package sentiment

import (
	"context"
	"fmt"
	"log/slog"

	"newsintel/internal/domain"
	"newsintel/internal/infrastructure/model"
	"newsintel/internal/ports"
)

const (
	positiveThreshold  = 0.05
	negativeThreshold  = -0.05
	fallbackConfidence = 0.5
)

// Stage implements ports.SentimentStage.
type Stage struct {
	classifier *model.TextClassifier
	lexicon    *Lexicon
	logger     *slog.Logger
}

var _ ports.SentimentStage = (*Stage)(nil)

// NewStage wires the primary classifier (nil when the artifact failed to
// load) and the lexicon fallback.
func NewStage(classifier *model.TextClassifier, lexicon *Lexicon, logger *slog.Logger) *Stage {
	return &Stage{classifier: classifier, lexicon: lexicon, logger: logger}
}

// Classify runs the two-tier policy. It returns ErrModelUnavailable only
// when neither path can execute.
func (s *Stage) Classify(ctx context.Context, article domain.RawArticle) (domain.StageResult[domain.Sentiment], error) {
	var primary, fallback domain.Tier[domain.Sentiment]

	if s.classifier != nil {
		primary = func(context.Context) (domain.Sentiment, float64, error) {
			class, confidence := s.classifier.PredictText(article.Content)
			value, err := parseSentiment(class)
			if err != nil {
				return domain.SentimentNeutral, 0, err
			}
			return value, confidence, nil
		}
	}
	if s.lexicon != nil {
		fallback = func(context.Context) (domain.Sentiment, float64, error) {
			return mapCompound(s.lexicon.Compound(article.Content)), fallbackConfidence, nil
		}
	}

	result := domain.RunTiered(ctx, domain.SentimentNeutral, primary, fallback)
	if result.Origin == domain.OriginUnavailable {
		return result, domain.ErrModelUnavailable
	}

	s.debug("sentiment classified",
		"value", result.Value, "origin", result.Origin, "confidence", result.Confidence)
	return result, nil
}

func mapCompound(compound float64) domain.Sentiment {
	switch {
	case compound >= positiveThreshold:
		return domain.SentimentPositive
	case compound <= negativeThreshold:
		return domain.SentimentNegative
	default:
		return domain.SentimentNeutral
	}
}

func parseSentiment(class string) (domain.Sentiment, error) {
	switch domain.Sentiment(class) {
	case domain.SentimentPositive, domain.SentimentNegative, domain.SentimentNeutral:
		return domain.Sentiment(class), nil
	default:
		return domain.SentimentNeutral, fmt.Errorf("unknown sentiment class %q", class)
	}
}

func (s *Stage) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
