package credibility

import (
	"strings"
	"unicode"
)

// featureCount matches the width the credibility model was trained on.
const featureCount = 8

var reputableSources = map[string]struct{}{
	"reuters":             {},
	"associated press":    {},
	"bbc":                 {},
	"bbc news":            {},
	"the new york times":  {},
	"the washington post": {},
	"the guardian":        {},
	"npr":                 {},
	"bloomberg":           {},
	"financial times":     {},
}

var suspiciousSources = map[string]struct{}{
	"beforeitsnews":  {},
	"infowars":       {},
	"naturalnews":    {},
	"worldtruth":     {},
	"yournewswire":   {},
	"realfarmacy":    {},
	"dailybuzzlive":  {},
	"empirenews":     {},
	"nationalreport": {},
}

// extractFeatures derives the stylistic and provenance signals the
// credibility model scores. Order is fixed by the trained artifact.
func extractFeatures(title, content, source string) []float64 {
	text := strings.TrimSpace(title + " " + content)
	words := strings.Fields(text)

	var exclamations, questions, upper, letters float64
	for _, r := range text {
		switch {
		case r == '!':
			exclamations++
		case r == '?':
			questions++
		case unicode.IsUpper(r):
			upper++
			letters++
		case unicode.IsLetter(r):
			letters++
		}
	}

	capsRatio := 0.0
	if letters > 0 {
		capsRatio = upper / letters
	}

	var totalWordLen float64
	seen := make(map[string]int, len(words))
	for _, w := range words {
		totalWordLen += float64(len(w))
		seen[strings.ToLower(w)]++
	}

	avgWordLen := 0.0
	repetition := 0.0
	if len(words) > 0 {
		avgWordLen = totalWordLen / float64(len(words))
		repetition = 1 - float64(len(seen))/float64(len(words))
	}

	return []float64{
		float64(len(text)),
		exclamations,
		questions,
		capsRatio,
		float64(len(words)),
		avgWordLen,
		repetition,
		sourceReputation(source),
	}
}

// sourceReputation maps known outlets to a prior in [0, 1]; unknown
// outlets sit at the midpoint.
func sourceReputation(source string) float64 {
	name := strings.ToLower(strings.TrimSpace(source))
	if name == "" {
		return 0.5
	}
	if _, ok := reputableSources[name]; ok {
		return 1.0
	}
	for s := range suspiciousSources {
		if strings.Contains(name, s) {
			return 0.0
		}
	}
	return 0.5
}
