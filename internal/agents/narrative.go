package agents

import (
	"strings"
	"unicode"
)

// Problem areas a sleep narrative can surface, checked in this order.
var narrativeBuckets = []struct {
	area     string
	keywords []string
}{
	{"stress", []string{"stress", "anxiety", "worried", "restless", "tense"}},
	{"schedule", []string{"schedule", "routine", "irregular", "inconsistent", "late", "early"}},
	{"environment", []string{"noise", "light", "temperature", "uncomfortable", "room"}},
	{"quality", []string{"quality", "deep", "light", "interrupted", "wake", "waking"}},
	{"duration", []string{"hours", "long", "short", "enough", "oversleep", "undersleep"}},
}

var narrativeRecommendations = map[string]string{
	"stress":      "Consider incorporating relaxation techniques like deep breathing or meditation before bedtime.",
	"schedule":    "Try to maintain a consistent sleep schedule, even on weekends.",
	"environment": "Optimize your sleep environment by controlling light, noise, and temperature.",
	"quality":     "Focus on sleep hygiene practices and avoid screens before bedtime.",
	"duration":    "Aim for 7-9 hours of sleep per night for optimal health.",
	"general":     "Consider keeping a sleep diary to identify patterns affecting your sleep quality.",
}

// Signed word weights for narrative sentiment. Polarity is the mean weight of
// matched words, landing in [-1, 1].
var sentimentLexicon = map[string]float64{
	"good": 0.7, "great": 0.8, "excellent": 1.0, "amazing": 0.8,
	"well": 0.4, "better": 0.5, "best": 1.0, "fine": 0.3,
	"rested": 0.6, "refreshed": 0.7, "energized": 0.7, "soundly": 0.5,
	"calm": 0.4, "relaxed": 0.5, "peaceful": 0.6, "happy": 0.8,
	"improved": 0.5, "improving": 0.4, "easy": 0.4,

	"bad": -0.7, "terrible": -0.9, "awful": -0.9, "horrible": -0.9,
	"poor": -0.6, "worse": -0.6, "worst": -1.0, "miserable": -0.9,
	"exhausted": -0.8, "exhausting": -0.7, "tired": -0.5, "groggy": -0.5,
	"struggle": -0.5, "struggling": -0.5, "difficult": -0.5, "hard": -0.4,
	"frustrated": -0.6, "frustrating": -0.6, "anxious": -0.6,
	"problem": -0.3, "problems": -0.3, "trouble": -0.4,
	"worried": -0.5, "restless": -0.4, "tense": -0.4, "uncomfortable": -0.5,
	"irregular": -0.3, "inconsistent": -0.3,
}

// Words carrying no signal on their own; dropped before matching. Negators
// are deliberately kept.
var narrativeStopwords = map[string]bool{
	"a": true, "an": true, "the": true, "i": true, "im": true, "me": true,
	"my": true, "myself": true, "we": true, "our": true, "you": true,
	"your": true, "it": true, "its": true, "is": true, "am": true,
	"are": true, "was": true, "were": true, "be": true, "been": true,
	"being": true, "have": true, "has": true, "had": true, "do": true,
	"does": true, "did": true, "and": true, "or": true, "but": true,
	"if": true, "at": true, "by": true, "for": true, "with": true,
	"about": true, "to": true, "from": true, "up": true, "down": true,
	"in": true, "out": true, "on": true, "off": true, "over": true,
	"under": true, "then": true, "once": true, "here": true, "there": true,
	"when": true, "where": true, "all": true, "any": true, "both": true,
	"each": true, "few": true, "more": true, "most": true, "other": true,
	"some": true, "such": true, "only": true, "own": true, "same": true,
	"so": true, "than": true, "too": true, "very": true, "just": true,
	"of": true, "this": true, "that": true, "these": true, "those": true,
	"s": true, "t": true, "get": true, "getting": true, "feel": true,
	"feeling": true, "really": true,
}

var negators = map[string]bool{
	"not": true, "no": true, "never": true, "cannot": true,
}

// AnalyzeSleepNarrative extracts the dominant problem area from a free-text
// sleep narrative and pairs it with a recommendation, shaded by the
// narrative's overall sentiment.
func AnalyzeSleepNarrative(text string) NarrativeInsight {
	if strings.TrimSpace(text) == "" {
		return NarrativeInsight{
			Area:           "unknown",
			Recommendation: "Please provide more details about your sleep patterns for personalized recommendations.",
		}
	}

	tokens := narrativeTokens(text)

	area := "general"
	bestCount := 0
	for _, bucket := range narrativeBuckets {
		count := 0
		for _, token := range tokens {
			for _, kw := range bucket.keywords {
				if token == kw {
					count++
					break
				}
			}
		}
		if count > bestCount {
			bestCount = count
			area = bucket.area
		}
	}

	sentiment := sentimentPolarity(tokens)

	recommendation := narrativeRecommendations[area]
	switch {
	case sentiment < -0.2:
		recommendation += " It seems you're experiencing some challenges. Start with small changes and be patient with yourself."
	case sentiment > 0.2:
		recommendation += " You're on the right track! Keep building on your positive habits."
	}

	return NarrativeInsight{Area: area, Recommendation: recommendation, Sentiment: sentiment}
}

func narrativeTokens(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if !narrativeStopwords[f] {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// sentimentPolarity averages lexicon weights over the tokens. A negator
// directly before a sentiment word flips its sign.
func sentimentPolarity(tokens []string) float64 {
	total := 0.0
	matches := 0
	for i, token := range tokens {
		weight, ok := sentimentLexicon[token]
		if !ok {
			continue
		}
		if i > 0 && negators[tokens[i-1]] {
			weight = -weight
		}
		total += weight
		matches++
	}
	if matches == 0 {
		return 0
	}
	return total / float64(matches)
}
