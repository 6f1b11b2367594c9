package core

import (
	"fmt"
	"log"
	"strings"

	"github.com/pkoukk/tiktoken-go"

	"github.com/jpmellow/longevity-snap-02/internal/agents"
)

// historyTokenBudget caps the token count of the conversation sent to the
// provider. Oldest turns are dropped first; the system message never is.
const historyTokenBudget = 3500

// fallbackEncoding is used when the configured model is unknown to the
// tokenizer (e.g. gemini models, custom base-URL deployments).
const fallbackEncoding = "cl100k_base"

// Category order for the summary, matching the dashboard display.
var summaryCategories = []string{"sleep", "exercise", "nutrition", "stress", "biometrics"}

// assessmentContext renders a stored result as a compact plain-text summary
// for the coach prompt. An empty string means there is nothing to ground on.
func assessmentContext(result *agents.Result) string {
	if result == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString("Latest assessment summary for this user:\n")
	fmt.Fprintf(&b, "- Longevity score: %d/100 (confidence: %s)\n", result.LongevityScore, result.Confidence)
	for _, category := range summaryCategories {
		if score, ok := result.CategoryScores[category]; ok {
			fmt.Fprintf(&b, "- %s score: %d/100\n", category, score)
		}
	}
	if result.MotivationDriver != "" && result.MotivationDriver != agents.DriverUnknown {
		fmt.Fprintf(&b, "- Motivation driver: %s\n", result.MotivationDriver)
	}
	for i, rec := range result.Recommendations {
		if i == 3 {
			break
		}
		description := rec.PersonalizedAction
		if description == "" {
			description = rec.Description
		}
		fmt.Fprintf(&b, "- Recommendation (%s priority): %s\n", rec.Priority, description)
	}

	return strings.TrimSpace(b.String())
}

// trimToTokenBudget drops the oldest conversation turns until the prompt fits
// the token budget. The system message at index 0 and the latest turn are
// always kept.
func trimToTokenBudget(messages []ChatMessage, model string) []ChatMessage {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding(fallbackEncoding)
		if err != nil {
			log.Printf("Failed to load token encoding, sending untrimmed history: %v", err)
			return messages
		}
	}

	countTokens := func() int {
		total := 0
		for _, m := range messages {
			total += len(enc.Encode(m.Content, nil, nil))
		}
		return total
	}

	for len(messages) > 2 && countTokens() >= historyTokenBudget {
		messages = append(messages[:1], messages[2:]...)
	}
	return messages
}
