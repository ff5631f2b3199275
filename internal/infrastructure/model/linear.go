// Package model loads the linear classifier artifacts produced by the
// offline training scripts. Artifacts are JSON: a vocabulary (for text
// models), per-class weight rows, and intercepts. Models are read-only
// after loading and safe to share across concurrent stage invocations.
package model

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"
)

// Linear is a multinomial linear classifier over a feature vector.
type Linear struct {
	Classes    []string    `json:"classes"`
	Weights    [][]float64 `json:"weights"`
	Intercepts []float64   `json:"intercepts"`
}

// TextClassifier pairs a bag-of-words vectorizer with a linear layer.
type TextClassifier struct {
	Vocabulary map[string]int `json:"vocabulary"`
	Linear
}

// LoadLinear reads a feature-model artifact from disk.
func LoadLinear(path string) (*Linear, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model artifact: %w", err)
	}

	var m Linear
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parse model artifact %s: %w", path, err)
	}
	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("model artifact %s: %w", path, err)
	}
	return &m, nil
}

// LoadTextClassifier reads a text-model artifact from disk.
func LoadTextClassifier(path string) (*TextClassifier, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model artifact: %w", err)
	}

	var m TextClassifier
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parse model artifact %s: %w", path, err)
	}
	if len(m.Vocabulary) == 0 {
		return nil, fmt.Errorf("model artifact %s: empty vocabulary", path)
	}
	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("model artifact %s: %w", path, err)
	}
	return &m, nil
}

func (m *Linear) validate() error {
	if len(m.Classes) == 0 {
		return fmt.Errorf("no classes")
	}
	if len(m.Weights) != len(m.Classes) || len(m.Intercepts) != len(m.Classes) {
		return fmt.Errorf("weights/intercepts do not match %d classes", len(m.Classes))
	}
	return nil
}

// Predict scores the feature vector and returns the winning class with
// its softmax probability.
func (m *Linear) Predict(features []float64) (string, float64) {
	scores := make([]float64, len(m.Classes))
	for i, row := range m.Weights {
		score := m.Intercepts[i]
		for j, w := range row {
			if j < len(features) {
				score += w * features[j]
			}
		}
		scores[i] = score
	}

	best, probs := softmax(scores)
	return m.Classes[best], probs[best]
}

// PredictText vectorizes the text by vocabulary term counts and scores it.
func (m *TextClassifier) PredictText(text string) (string, float64) {
	features := make([]float64, vectorWidth(m.Vocabulary))
	for _, token := range strings.Fields(strings.ToLower(text)) {
		token = strings.Trim(token, ".,!?;:\"'()[]")
		if idx, ok := m.Vocabulary[token]; ok && idx < len(features) {
			features[idx]++
		}
	}
	return m.Predict(features)
}

func vectorWidth(vocab map[string]int) int {
	width := 0
	for _, idx := range vocab {
		if idx+1 > width {
			width = idx + 1
		}
	}
	return width
}

func softmax(scores []float64) (int, []float64) {
	best := 0
	maxScore := math.Inf(-1)
	for i, s := range scores {
		if s > maxScore {
			maxScore = s
			best = i
		}
	}

	var sum float64
	probs := make([]float64, len(scores))
	for i, s := range scores {
		probs[i] = math.Exp(s - maxScore)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return best, probs
}
