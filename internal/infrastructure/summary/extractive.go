package summary

import (
	"errors"
	"math"
	"sort"
	"strings"
	"unicode/utf8"
)

// errNoSentences means the content had nothing worth extracting; the
// stage then reports unavailable with a plain truncation of the content.
var errNoSentences = errors.New("no scorable sentences")

const topSentences = 3

// extract ranks sentences by term-frequency weighted against how many
// sentences share each term, then rebuilds the top ones in original
// order so the summary reads as prose rather than a scrambled digest.
func extract(content string, maxLength int) (string, error) {
	sentences := splitSentences(content)
	if len(sentences) == 0 {
		return "", errNoSentences
	}

	tokenized := make([][]string, len(sentences))
	sentenceFreq := map[string]int{}
	for i, s := range sentences {
		tokens := tokenize(s)
		tokenized[i] = tokens
		for _, t := range uniqueTokens(tokens) {
			sentenceFreq[t]++
		}
	}

	type ranked struct {
		index int
		score float64
	}
	scores := make([]ranked, len(sentences))
	for i, tokens := range tokenized {
		var score float64
		for _, t := range tokens {
			// Terms in every sentence carry no selective weight.
			score += math.Log(float64(len(sentences)+1) / float64(sentenceFreq[t]))
		}
		if len(tokens) > 0 {
			score /= float64(len(tokens))
		}
		scores[i] = ranked{index: i, score: score}
	}

	sort.SliceStable(scores, func(a, b int) bool { return scores[a].score > scores[b].score })

	keep := topSentences
	if keep > len(scores) {
		keep = len(scores)
	}
	chosen := make([]int, 0, keep)
	for _, r := range scores[:keep] {
		chosen = append(chosen, r.index)
	}
	sort.Ints(chosen)

	var b strings.Builder
	for _, idx := range chosen {
		candidate := sentences[idx]
		if b.Len() > 0 {
			candidate = " " + candidate
		}
		if b.Len()+len(candidate) > maxLength {
			break
		}
		b.WriteString(candidate)
	}
	if b.Len() == 0 {
		// The single best sentence did not fit; hard-truncate it.
		return truncate(sentences[chosen[0]], maxLength), nil
	}
	return b.String(), nil
}

// splitSentences breaks content at terminal punctuation and drops
// fragments too short to stand alone as a sentence.
func splitSentences(content string) []string {
	raw := strings.FieldsFunc(content, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})
	sentences := make([]string, 0, len(raw))
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if len(strings.Fields(s)) < 2 {
			continue
		}
		sentences = append(sentences, s+".")
	}
	return sentences
}

func tokenize(s string) []string {
	fields := strings.Fields(strings.ToLower(s))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".,!?;:\"'()[]")
		if f != "" {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

func uniqueTokens(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	unique := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		unique = append(unique, t)
	}
	return unique
}

// truncate cuts at a rune boundary so a multibyte character straddling
// the limit is dropped whole instead of leaving invalid UTF-8.
func truncate(s string, maxLength int) string {
	if len(s) <= maxLength {
		return s
	}
	cut := maxLength
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
