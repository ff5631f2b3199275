// Package credibility detects likely fabricated articles from stylistic
// features and source reputation. There is no rule-based fallback; when
// the model cannot run the stage degrades to unknown so downstream risk
// scoring never confuses "no signal" with "authentic".
package credibility

import (
	"context"
	"fmt"
	"log/slog"

	"newsintel/internal/domain"
	"newsintel/internal/infrastructure/model"
	"newsintel/internal/ports"
)

// Stage implements ports.CredibilityStage.
type Stage struct {
	model  *model.Linear
	logger *slog.Logger
}

var _ ports.CredibilityStage = (*Stage)(nil)

// NewStage wires the feature model. A nil model, or one whose weight
// rows do not match the feature vector width, yields a permanently
// degraded stage.
func NewStage(m *model.Linear, logger *slog.Logger) *Stage {
	if m != nil {
		for _, row := range m.Weights {
			if len(row) != featureCount {
				if logger != nil {
					logger.Warn("discarding credibility model",
						"reason", "weight row width mismatch",
						"want", featureCount, "got", len(row))
				}
				m = nil
				break
			}
		}
	}
	return &Stage{model: m, logger: logger}
}

// Classify scores the article. It returns ErrModelUnavailable alongside
// the degraded result when no model is loaded.
func (s *Stage) Classify(ctx context.Context, article domain.RawArticle) (domain.StageResult[domain.Credibility], error) {
	var primary domain.Tier[domain.Credibility]
	if s.model != nil {
		primary = func(context.Context) (domain.Credibility, float64, error) {
			features := extractFeatures(article.Title, article.Content, article.Source)
			class, confidence := s.model.Predict(features)
			value, err := parseCredibility(class)
			if err != nil {
				return domain.CredibilityUnknown, 0, err
			}
			return value, confidence, nil
		}
	}

	result := domain.RunTiered(ctx, domain.CredibilityUnknown, primary, nil)
	if result.Origin == domain.OriginUnavailable {
		return result, domain.ErrModelUnavailable
	}

	s.debug("credibility classified",
		"value", result.Value, "confidence", result.Confidence, "source", article.Source)
	return result, nil
}

func parseCredibility(class string) (domain.Credibility, error) {
	switch domain.Credibility(class) {
	case domain.CredibilityAuthentic, domain.CredibilityFake:
		return domain.Credibility(class), nil
	default:
		return domain.CredibilityUnknown, fmt.Errorf("unknown credibility class %q", class)
	}
}

func (s *Stage) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
