package usecase

import "newsintel/internal/domain"

const (
	fakeWeight            = 0.4
	negativeWeight        = 0.1
	strongSentimentCutoff = 0.7
	mediumRiskFloor       = 0.2
	highRiskFloor         = 0.5
)

// AssessRisk merges the classification results into one score. Fabricated
// content dominates the score; strongly negative framing nudges it up.
// Degraded stages contribute an explicit factor instead of a guess, and a
// credibility confidence inside the band around the decision boundary is
// flagged without changing the score.
func AssessRisk(sentiment domain.StageResult[domain.Sentiment], credibility domain.StageResult[domain.Credibility], nearThresholdBand float64) domain.RiskAssessment {
	var score float64
	factors := make([]string, 0, 2)

	switch {
	case credibility.Origin == domain.OriginUnavailable:
		factors = append(factors, "credibility check unavailable")
	case credibility.Value == domain.CredibilityFake:
		score += fakeWeight
		factors = append(factors, "content classified as likely fake")
	}
	if credibility.Origin != domain.OriginUnavailable &&
		credibility.Confidence <= 0.5+nearThresholdBand {
		factors = append(factors, "credibility score near decision threshold")
	}

	switch {
	case sentiment.Origin == domain.OriginUnavailable:
		factors = append(factors, "sentiment analysis unavailable")
	case sentiment.Value == domain.SentimentNegative && sentiment.Confidence >= strongSentimentCutoff:
		score += negativeWeight
		factors = append(factors, "strongly negative framing")
	}

	level := domain.RiskLow
	switch {
	case score >= highRiskFloor:
		level = domain.RiskHigh
	case score >= mediumRiskFloor:
		level = domain.RiskMedium
	}

	return domain.RiskAssessment{Level: level, Score: score, Factors: factors}
}
