package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// RawArticle is a core entity describing an article as fetched from a
// provider or submitted directly by a user. It is never mutated after
// creation; identity is the content fingerprint.
type RawArticle struct {
	Title       string
	Content     string
	Source      string
	URL         string
	PublishedAt time.Time
}

// Fingerprint returns a stable hash of the normalized title and content,
// used as the cache and identity key.
func (a RawArticle) Fingerprint() string {
	sum := sha256.Sum256([]byte(normalize(a.Title) + "\n" + normalize(a.Content)))
	return hex.EncodeToString(sum[:])
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Origin tags the provenance of a stage result.
type Origin string

const (
	OriginPrimary     Origin = "primary"
	OriginFallback    Origin = "fallback"
	OriginUnavailable Origin = "unavailable"
)

// Sentiment enumerates text polarity classes.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// Credibility enumerates authenticity classes.
type Credibility string

const (
	CredibilityAuthentic Credibility = "authentic"
	CredibilityFake      Credibility = "fake"
	CredibilityUnknown   Credibility = "unknown"
)

// StageResult wraps every analysis stage output so callers can tell a
// confident primary result from a degraded guess. Stages never return a
// bare value.
type StageResult[T any] struct {
	Value      T
	Confidence float64
	Origin     Origin
}

// Unavailable builds the degraded result every stage collapses to when
// neither its primary nor its fallback path could execute.
func Unavailable[T any](neutral T) StageResult[T] {
	return StageResult[T]{Value: neutral, Confidence: 0, Origin: OriginUnavailable}
}

// RiskLevel buckets the aggregate risk score of a processed article.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// RiskAssessment is derived from the merged stage results.
type RiskAssessment struct {
	Level   RiskLevel
	Score   float64
	Factors []string
}

// ProcessedArticle is the merged record produced once per processing
// request. Partial is true when any stage degraded below primary.
type ProcessedArticle struct {
	Article     RawArticle
	Sentiment   StageResult[Sentiment]
	Credibility StageResult[Credibility]
	Summary     StageResult[string]
	Risk        RiskAssessment
	ProcessedAt time.Time
	Partial     bool
}
