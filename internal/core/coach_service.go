package core

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/jpmellow/longevity-snap-02/internal/agents"
	"github.com/jpmellow/longevity-snap-02/internal/config"
	"github.com/jpmellow/longevity-snap-02/internal/store"
)

// coachErrorMessage is stored and shown inline when the provider call fails.
// The call is never retried.
const coachErrorMessage = "LLM service error. Please try again later."

// historyWindow is how many stored turns are replayed into the prompt before
// token trimming.
const historyWindow = 20

type CoachService struct {
	dbStore    *store.SQLiteStore
	llmService LLMService
}

// NewCoachService wires the coach against an LLM provider. A nil llmService
// disables the coach: session creation and messaging return ErrCoachDisabled.
func NewCoachService(db *store.SQLiteStore, llm LLMService) *CoachService {
	return &CoachService{
		dbStore:    db,
		llmService: llm,
	}
}

func (s *CoachService) Enabled() bool {
	return s.llmService != nil
}

// CreateSession opens a coach session. A non-empty first message is answered
// synchronously; the session title is generated in the background.
func (s *CoachService) CreateSession(ctx context.Context, userID string, firstMessage string) (*store.CoachSession, []store.CoachMessage, error) {
	if !s.Enabled() {
		return nil, nil, ErrCoachDisabled
	}

	session, err := s.dbStore.CreateCoachSession(userID, nil) // Title will be generated later
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create coach session: %w", err)
	}

	var messages []store.CoachMessage

	if strings.TrimSpace(firstMessage) != "" {
		userMsg := store.CoachMessage{
			SessionID: session.ID,
			Role:      store.RoleUser,
			Content:   firstMessage,
		}
		if err := s.dbStore.CreateCoachMessage(&userMsg); err != nil {
			// The session stays usable, it just starts out empty.
			log.Printf("Failed to store first user message for new session %s: %v", session.ID, err)
		} else {
			messages = append(messages, userMsg)

			assistantMsg := store.CoachMessage{
				SessionID: session.ID,
				Role:      store.RoleAssistant,
				Content:   s.generateReply(ctx, session.ID, userID),
			}
			if err := s.dbStore.CreateCoachMessage(&assistantMsg); err != nil {
				log.Printf("Failed to store assistant message for new session %s: %v", session.ID, err)
			} else {
				messages = append(messages, assistantMsg)
			}

			go s.generateAndSaveSessionTitle(session.ID, userID, firstMessage)
		}
	}

	return session, messages, nil
}

func (s *CoachService) ListSessions(userID string) ([]store.CoachSession, error) {
	return s.dbStore.ListCoachSessionsByUserID(userID)
}

// GetSession returns an owned session with its full message history.
func (s *CoachService) GetSession(sessionID, userID string) (*store.CoachSession, []store.CoachMessage, error) {
	session, err := s.dbStore.GetCoachSessionByID(sessionID, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get coach session: %w", err)
	}
	if session == nil {
		return nil, nil, ErrNotFound
	}

	messages, err := s.dbStore.ListCoachMessagesBySessionID(sessionID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get messages for session: %w", err)
	}
	return session, messages, nil
}

// PostMessage appends a user turn to an owned session and returns the
// assistant reply together with the full message list.
func (s *CoachService) PostMessage(ctx context.Context, userID, sessionID, content string) (*store.CoachMessage, []store.CoachMessage, error) {
	if !s.Enabled() {
		return nil, nil, ErrCoachDisabled
	}

	session, err := s.dbStore.GetCoachSessionByID(sessionID, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to verify coach session: %w", err)
	}
	if session == nil {
		return nil, nil, ErrNotFound
	}

	userMsg := store.CoachMessage{
		SessionID: sessionID,
		Role:      store.RoleUser,
		Content:   content,
	}
	if err := s.dbStore.CreateCoachMessage(&userMsg); err != nil {
		return nil, nil, fmt.Errorf("failed to store user message: %w", err)
	}

	assistantMsg := store.CoachMessage{
		SessionID: sessionID,
		Role:      store.RoleAssistant,
		Content:   s.generateReply(ctx, sessionID, userID),
	}
	if err := s.dbStore.CreateCoachMessage(&assistantMsg); err != nil {
		return nil, nil, fmt.Errorf("failed to store assistant message: %w", err)
	}

	// Sessions opened without a first message still need a title.
	if session.Title == nil || *session.Title == "" {
		go s.generateAndSaveSessionTitle(sessionID, userID, content)
	}

	messages, err := s.dbStore.ListCoachMessagesBySessionID(sessionID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list session messages: %w", err)
	}
	return &assistantMsg, messages, nil
}

// generateReply makes exactly one provider call over the assembled prompt.
// Any failure surfaces as the canned inline message.
func (s *CoachService) generateReply(ctx context.Context, sessionID, userID string) string {
	messages, err := s.buildPrompt(sessionID, userID)
	if err != nil {
		log.Printf("Failed to assemble coach prompt for session %s: %v", sessionID, err)
		return coachErrorMessage
	}

	reply, err := s.llmService.Chat(ctx, messages)
	if err != nil {
		log.Printf("LLM chat failed for session %s: %v", sessionID, err)
		return coachErrorMessage
	}
	return reply
}

// buildPrompt assembles system instruction + latest assessment summary +
// recent session history, trimmed to the token budget.
func (s *CoachService) buildPrompt(sessionID, userID string) ([]ChatMessage, error) {
	system := coachSystemInstruction
	if summary := s.latestResultSummary(userID); summary != "" {
		system = system + "\n\n" + summary
	}

	history, err := s.dbStore.GetLastNCoachMessages(sessionID, historyWindow)
	if err != nil {
		return nil, fmt.Errorf("failed to load session history: %w", err)
	}

	messages := make([]ChatMessage, 0, len(history)+1)
	messages = append(messages, ChatMessage{Role: RoleSystem, Content: system})
	// GetLastNCoachMessages returns newest first; replay chronologically.
	for i := len(history) - 1; i >= 0; i-- {
		messages = append(messages, ChatMessage{
			Role:    history[i].Role,
			Content: history[i].Content,
		})
	}
	if len(messages) == 1 {
		return nil, fmt.Errorf("session %s has no messages to prompt with", sessionID)
	}

	return trimToTokenBudget(messages, s.promptModel()), nil
}

// latestResultSummary loads the user's most recent stored result for prompt
// grounding. Failures degrade to an ungrounded prompt, never an error.
func (s *CoachService) latestResultSummary(userID string) string {
	a, err := s.dbStore.GetLatestAssessmentByUserID(userID)
	if err != nil {
		log.Printf("Failed to load latest assessment for coach context: %v", err)
		return ""
	}
	if a == nil {
		return ""
	}

	var result agents.Result
	if err := json.Unmarshal([]byte(a.ResultJSON), &result); err != nil {
		log.Printf("Failed to unmarshal stored result for coach context: %v", err)
		return ""
	}
	return assessmentContext(&result)
}

func (s *CoachService) promptModel() string {
	if config.AppConfig.LLMProvider == config.ProviderGemini {
		return config.AppConfig.GeminiModel
	}
	return config.AppConfig.OpenAIModel
}

func (s *CoachService) generateAndSaveSessionTitle(sessionID, userID, basisContent string) {
	log.Printf("Attempting to generate title for session %s", sessionID)
	title, err := s.llmService.Title(context.Background(), basisContent)
	if err != nil {
		log.Printf("Failed to generate title for session %s: %v", sessionID, err)
		return
	}
	title = strings.Trim(title, "\"'\n\r\t .")
	if title == "" {
		return
	}

	if err := s.dbStore.UpdateCoachSessionTitle(sessionID, userID, title); err != nil {
		log.Printf("Failed to save generated title '%s' for session %s: %v", title, sessionID, err)
	} else {
		log.Printf("Successfully generated and saved title '%s' for session %s", title, sessionID)
	}
}
