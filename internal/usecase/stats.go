package usecase

import "newsintel/internal/domain"

// BatchStatistics aggregates a batch run for the API response envelope.
type BatchStatistics struct {
	Total                   int                        `json:"total"`
	Partial                 int                        `json:"partial"`
	SentimentDistribution   map[domain.Sentiment]int   `json:"sentiment_distribution"`
	CredibilityDistribution map[domain.Credibility]int `json:"credibility_distribution"`
	RiskDistribution        map[domain.RiskLevel]int   `json:"risk_distribution"`
	OriginDistribution      map[string]map[string]int  `json:"origin_distribution"`
}

// SummarizeBatch builds the distribution counters over processed records.
func SummarizeBatch(records []domain.ProcessedArticle) BatchStatistics {
	stats := BatchStatistics{
		Total:                   len(records),
		SentimentDistribution:   map[domain.Sentiment]int{},
		CredibilityDistribution: map[domain.Credibility]int{},
		RiskDistribution:        map[domain.RiskLevel]int{},
		OriginDistribution: map[string]map[string]int{
			stageSentiment:   {},
			stageCredibility: {},
			stageSummary:     {},
		},
	}

	for _, r := range records {
		if r.Partial {
			stats.Partial++
		}
		stats.SentimentDistribution[r.Sentiment.Value]++
		stats.CredibilityDistribution[r.Credibility.Value]++
		stats.RiskDistribution[r.Risk.Level]++
		stats.OriginDistribution[stageSentiment][string(r.Sentiment.Origin)]++
		stats.OriginDistribution[stageCredibility][string(r.Credibility.Origin)]++
		stats.OriginDistribution[stageSummary][string(r.Summary.Origin)]++
	}
	return stats
}
