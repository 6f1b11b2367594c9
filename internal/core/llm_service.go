package core

import (
	"context"
	"fmt"
	"log"

	"github.com/jpmellow/longevity-snap-02/internal/config"
)

// Chat roles shared by both providers. They match the wire roles of the
// OpenAI-compatible chat-completions contract.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

const (
	coachSystemInstruction = "You are the Longevity Snap health coach. " +
		"Ground your advice in the user's latest assessment summary when one is provided. " +
		"Keep your answers practical, encouraging, and concise. " +
		"You are not a medical professional; for medical concerns, advise the user to consult a clinician. " +
		"Do not make up assessment data you were not given."

	titleSystemInstruction = "You are a helpful assistant that generates concise titles for chat conversations. " +
		"The title should be 3-5 words maximum. Just return the title itself, nothing else."
)

// ChatMessage is one role-tagged turn of a coach conversation.
type ChatMessage struct {
	Role    string
	Content string
}

// LLMService is the provider-neutral surface the coach talks to. Chat sends a
// full role-tagged conversation and returns the assistant reply; Title
// produces a short session title from the opening message.
type LLMService interface {
	Chat(ctx context.Context, messages []ChatMessage) (string, error)
	Title(ctx context.Context, firstMessage string) (string, error)
}

// NewLLMService builds the provider selected by configuration. Callers are
// expected to check config.AppConfig.CoachEnabled() first.
func NewLLMService() LLMService {
	switch config.AppConfig.LLMProvider {
	case config.ProviderGemini:
		return NewGeminiService()
	case config.ProviderOpenAI:
		return NewOpenAIService()
	default:
		log.Fatalf("Unknown LLM provider: %s", config.AppConfig.LLMProvider)
		return nil
	}
}

func titlePrompt(firstMessage string) string {
	return fmt.Sprintf("Generate a very concise title (3-5 words maximum) for a conversation that starts with or is about: \"%s\".", firstMessage)
}
