// Package chat answers small-talk messages on the API so the frontend
// has something friendly to show without a round trip to the generative
// provider.
package chat

import (
	"math/rand"
	"strings"
)

// Responder picks canned replies by intent. The pick function is
// injectable so tests get deterministic output.
type Responder struct {
	pick func(n int) int
}

// NewResponder uses a random pick.
func NewResponder() *Responder {
	return &Responder{pick: rand.Intn}
}

// NewResponderWithPick fixes the selection, for tests.
func NewResponderWithPick(pick func(n int) int) *Responder {
	return &Responder{pick: pick}
}

var (
	greetings = []string{
		"Hello! Ask me to analyze an article or fetch the latest news.",
		"Hi there! Paste an article and I will check its sentiment and credibility.",
		"Hey! Ready to process some news for you.",
	}
	thanks = []string{
		"You're welcome!",
		"Glad to help.",
		"Anytime!",
	}
	capabilities = []string{
		"I analyze news articles: sentiment, credibility, a short summary, and an overall risk level.",
		"Send me an article and I will score its sentiment, check whether it looks fabricated, and summarize it.",
	}
	fallbacks = []string{
		"I'm focused on news analysis. Try sending an article or asking me to fetch headlines.",
		"Not sure about that one. I can analyze articles or fetch recent news for you.",
	}
)

// Reply maps the message to a reply category and returns one of its
// canned answers.
func (r *Responder) Reply(message string) string {
	lower := strings.ToLower(strings.TrimSpace(message))
	switch {
	case lower == "":
		return r.choose(fallbacks)
	case containsAny(lower, "hello", "hi", "hey", "good morning", "good evening"):
		return r.choose(greetings)
	case containsAny(lower, "thank", "thanks", "thx"):
		return r.choose(thanks)
	case containsAny(lower, "what can you do", "help", "how do you work", "capabilities"):
		return r.choose(capabilities)
	default:
		return r.choose(fallbacks)
	}
}

func (r *Responder) choose(options []string) string {
	return options[r.pick(len(options))]
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
