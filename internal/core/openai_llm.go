package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/jpmellow/longevity-snap-02/internal/config"
)

// OpenAIService talks to an OpenAI-compatible chat-completions endpoint:
// bearer API key, model name, role-tagged messages. A base URL override
// points it at any compatible provider.
type OpenAIService struct {
	client *openai.Client
	model  string
}

func NewOpenAIService() *OpenAIService {
	clientConfig := openai.DefaultConfig(config.AppConfig.OpenAIAPIKey)
	if config.AppConfig.OpenAIBaseURL != "" {
		clientConfig.BaseURL = config.AppConfig.OpenAIBaseURL
	}
	return &OpenAIService{
		client: openai.NewClientWithConfig(clientConfig),
		model:  config.AppConfig.OpenAIModel,
	}
}

func (s *OpenAIService) Chat(ctx context.Context, messages []ChatMessage) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       s.model,
		Temperature: 0.7,
		TopP:        1,
		N:           1,
		Messages:    toOpenAIMessages(messages),
	}

	resp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("openai chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func (s *OpenAIService) Title(ctx context.Context, firstMessage string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       s.model,
		Temperature: 0.3,
		TopP:        1,
		N:           1,
		MaxTokens:   20,
		Messages: []openai.ChatCompletionMessage{
			{Role: RoleSystem, Content: titleSystemInstruction},
			{Role: RoleUser, Content: titlePrompt(firstMessage)},
		},
	}

	resp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("openai title generation failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices for title")
	}
	return strings.Trim(resp.Choices[0].Message.Content, "\"'\n\r\t ."), nil
}

func toOpenAIMessages(messages []ChatMessage) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		out = append(out, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}
	return out
}
