package httpapi

import (
	"time"

	"newsintel/internal/domain"
	"newsintel/internal/usecase"
)

type articleDTO struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	Source      string `json:"source,omitempty"`
	URL         string `json:"url,omitempty"`
	PublishedAt string `json:"published_at,omitempty"`
}

type sentimentDTO struct {
	Sentiment  string  `json:"sentiment"`
	Confidence float64 `json:"confidence"`
	Origin     string  `json:"origin"`
}

type credibilityDTO struct {
	Prediction string  `json:"prediction"`
	Confidence float64 `json:"confidence"`
	Origin     string  `json:"origin"`
}

type summaryDTO struct {
	Summary    string  `json:"summary"`
	Confidence float64 `json:"confidence"`
	Origin     string  `json:"origin"`
}

type riskDTO struct {
	Level   string   `json:"risk_level"`
	Score   float64  `json:"risk_score"`
	Factors []string `json:"risk_factors"`
}

type recordDTO struct {
	OriginalArticle articleDTO     `json:"original_article"`
	Sentiment       sentimentDTO   `json:"sentiment_analysis"`
	FakeNewsVerdict credibilityDTO `json:"fake_news_detection"`
	Summary         summaryDTO     `json:"summary"`
	Risk            riskDTO        `json:"risk_assessment"`
	Partial         bool           `json:"partial"`
	ProcessedAt     string         `json:"processed_at"`
}

type fetchInfoDTO struct {
	Query     string `json:"query"`
	Count     int    `json:"count"`
	FetchedAt string `json:"fetched_at"`
}

type batchDTO struct {
	ProcessedArticles []recordDTO             `json:"processed_articles"`
	Statistics        usecase.BatchStatistics `json:"statistics"`
	FetchInfo         *fetchInfoDTO           `json:"fetch_info,omitempty"`
}

func toRecordDTO(r domain.ProcessedArticle) recordDTO {
	factors := r.Risk.Factors
	if factors == nil {
		factors = []string{}
	}
	return recordDTO{
		OriginalArticle: articleDTO{
			Title:       r.Article.Title,
			Content:     r.Article.Content,
			Source:      r.Article.Source,
			URL:         r.Article.URL,
			PublishedAt: formatTime(r.Article.PublishedAt),
		},
		Sentiment: sentimentDTO{
			Sentiment:  string(r.Sentiment.Value),
			Confidence: r.Sentiment.Confidence,
			Origin:     string(r.Sentiment.Origin),
		},
		FakeNewsVerdict: credibilityDTO{
			Prediction: string(r.Credibility.Value),
			Confidence: r.Credibility.Confidence,
			Origin:     string(r.Credibility.Origin),
		},
		Summary: summaryDTO{
			Summary:    r.Summary.Value,
			Confidence: r.Summary.Confidence,
			Origin:     string(r.Summary.Origin),
		},
		Risk: riskDTO{
			Level:   string(r.Risk.Level),
			Score:   r.Risk.Score,
			Factors: factors,
		},
		Partial:     r.Partial,
		ProcessedAt: formatTime(r.ProcessedAt),
	}
}

func toBatchDTO(records []domain.ProcessedArticle) batchDTO {
	dtos := make([]recordDTO, len(records))
	for i, r := range records {
		dtos[i] = toRecordDTO(r)
	}
	return batchDTO{
		ProcessedArticles: dtos,
		Statistics:        usecase.SummarizeBatch(records),
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
