package sentiment

import (
	"math"
	"strings"
)

// Lexicon scores polarity from fixed word valences. The compound score
// is normalized into [-1, 1] and mapped to the three classes at the
// +-0.05 thresholds.
type Lexicon struct {
	valences map[string]float64
}

const normalizationAlpha = 15.0

// NewLexicon builds the default rule-based scorer.
func NewLexicon() *Lexicon {
	valences := make(map[string]float64, len(positiveWords)+len(negativeWords))
	for _, w := range positiveWords {
		valences[w] = 1
	}
	for _, w := range negativeWords {
		valences[w] = -1
	}
	return &Lexicon{valences: valences}
}

// Compound returns the normalized polarity score of the text.
func (l *Lexicon) Compound(text string) float64 {
	var raw float64
	for _, token := range strings.Fields(strings.ToLower(text)) {
		token = strings.Trim(token, ".,!?;:\"'()[]")
		raw += l.valences[token]
	}
	if raw == 0 {
		return 0
	}
	return raw / math.Sqrt(raw*raw+normalizationAlpha)
}

var positiveWords = []string{
	"good", "great", "excellent", "amazing", "wonderful", "fantastic",
	"positive", "success", "successful", "improve", "improved",
	"benefit", "beneficial", "outstanding", "brilliant", "superb",
	"remarkable", "impressive", "promising", "thrilled", "excited",
	"happy", "pleased", "satisfied", "optimistic", "rally", "rallies",
	"gain", "gains", "beat", "surge", "record", "breakthrough",
}

var negativeWords = []string{
	"bad", "terrible", "awful", "horrible", "disappointing",
	"negative", "fail", "failed", "problem", "issue", "concern",
	"worry", "worried", "dangerous", "risk", "threat", "crisis",
	"disaster", "catastrophe", "devastating", "alarming", "shocking",
	"outrageous", "scandal", "corruption", "scandalous", "tragic",
	"plunge", "slump", "loss", "losses", "crash", "collapse",
}
