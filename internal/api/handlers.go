package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/jpmellow/longevity-snap-02/internal/assessment"
	"github.com/jpmellow/longevity-snap-02/internal/auth"
	"github.com/jpmellow/longevity-snap-02/internal/core"
	"github.com/jpmellow/longevity-snap-02/internal/store"
)

type APIHandler struct {
	dbStore           *store.SQLiteStore
	assessmentService *core.AssessmentService
	coachService      *core.CoachService
}

func NewAPIHandler(db *store.SQLiteStore, as *core.AssessmentService, cs *core.CoachService) *APIHandler {
	return &APIHandler{
		dbStore:           db,
		assessmentService: as,
		coachService:      cs,
	}
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

func (h *APIHandler) JWTAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			respondError(w, http.StatusUnauthorized, "Authorization header is required")
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := auth.ValidateJWT(tokenString)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		user, err := h.dbStore.GetUserByID(claims.UserID)
		if err != nil {
			log.Printf("Error in JWTAuthMiddleware for user %s: %v", claims.UserID, err)
			respondError(w, http.StatusInternalServerError, "Failed to process user identity")
			return
		}
		if user == nil {
			respondError(w, http.StatusUnauthorized, "User not found")
			return
		}

		ctx := context.WithValue(r.Context(), "userID", user.ID)
		ctx = context.WithValue(ctx, "email", user.Email)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name,omitempty"`
	Password string `json:"password"`
}

func (h *APIHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	existing, err := h.dbStore.GetUserByEmail(req.Email)
	if err != nil {
		log.Printf("Error checking existing user %s: %v", req.Email, err)
		respondError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}
	if existing != nil {
		respondError(w, http.StatusConflict, "Email already registered")
		return
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		log.Printf("Error hashing password for %s: %v", req.Email, err)
		respondError(w, http.StatusInternalServerError, "Failed to process password")
		return
	}

	user, err := h.dbStore.CreateUser(req.Email, req.Name, hashedPassword)
	if err != nil {
		log.Printf("Error creating user %s: %v", req.Email, err)
		respondError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	respondJSON(w, http.StatusCreated, user)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string      `json:"token"`
	User  *store.User `json:"user"`
}

func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, err := h.dbStore.GetUserByEmail(req.Email)
	if err != nil {
		log.Printf("Error getting user %s: %v", req.Email, err)
		respondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if user == nil || !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		respondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := auth.GenerateJWT(user.ID, user.Email)
	if err != nil {
		log.Printf("Error generating JWT for user %s: %v", user.ID, err)
		respondError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	respondJSON(w, http.StatusOK, LoginResponse{Token: token, User: user})
}

func (h *APIHandler) MeHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(string)

	user, err := h.dbStore.GetUserByID(userID)
	if err != nil {
		log.Printf("Error getting user %s: %v", userID, err)
		respondError(w, http.StatusInternalServerError, "Failed to get user")
		return
	}
	if user == nil {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// ValidationErrorResponse reports every incomplete form step with its field
// errors so the client can route the user back to the right step.
type ValidationErrorResponse struct {
	Error string                  `json:"error"`
	Steps []assessment.StepErrors `json:"steps"`
}

func (h *APIHandler) SubmitAssessmentHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(string)

	var payload assessment.Payload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.assessmentService.Submit(r.Context(), userID, &payload)
	if err != nil {
		var vErr *core.ValidationError
		if errors.As(err, &vErr) {
			respondJSON(w, http.StatusBadRequest, ValidationErrorResponse{
				Error: "Assessment is incomplete",
				Steps: vErr.Steps,
			})
			return
		}
		log.Printf("Error processing assessment for user %s: %v", userID, err)
		respondError(w, http.StatusUnprocessableEntity, "Failed to process assessment")
		return
	}

	respondJSON(w, http.StatusCreated, result)
}

func (h *APIHandler) ListAssessmentsHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(string)

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	assessments, err := h.assessmentService.List(userID, limit, offset)
	if err != nil {
		log.Printf("Error listing assessments for user %s: %v", userID, err)
		respondError(w, http.StatusInternalServerError, "Failed to list assessments")
		return
	}
	if assessments == nil {
		assessments = []store.Assessment{}
	}
	respondJSON(w, http.StatusOK, assessments)
}

// AssessmentResponse re-emits the stored payload JSON alongside the record.
type AssessmentResponse struct {
	*store.Assessment
	Payload json.RawMessage `json:"payload"`
}

func (h *APIHandler) GetAssessmentHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(string)
	assessmentID := chi.URLParam(r, "assessmentID")

	a, err := h.assessmentService.Get(userID, assessmentID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Assessment not found")
			return
		}
		log.Printf("Error getting assessment %s for user %s: %v", assessmentID, userID, err)
		respondError(w, http.StatusInternalServerError, "Failed to get assessment")
		return
	}

	respondJSON(w, http.StatusOK, AssessmentResponse{
		Assessment: a,
		Payload:    json.RawMessage(a.PayloadJSON),
	})
}

func (h *APIHandler) DeleteAssessmentHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(string)
	assessmentID := chi.URLParam(r, "assessmentID")

	if err := h.assessmentService.Delete(r.Context(), userID, assessmentID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Assessment not found")
			return
		}
		log.Printf("Error deleting assessment %s for user %s: %v", assessmentID, userID, err)
		respondError(w, http.StatusInternalServerError, "Failed to delete assessment")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) GetResultHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(string)
	assessmentID := chi.URLParam(r, "assessmentID")

	result, err := h.assessmentService.Result(userID, assessmentID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Assessment not found")
			return
		}
		log.Printf("Error getting result for assessment %s, user %s: %v", assessmentID, userID, err)
		respondError(w, http.StatusInternalServerError, "Failed to get result")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *APIHandler) DashboardHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(string)

	view, err := h.assessmentService.Dashboard(r.Context(), userID)
	if err != nil {
		log.Printf("Error building dashboard for user %s: %v", userID, err)
		respondError(w, http.StatusInternalServerError, "Failed to build dashboard")
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (h *APIHandler) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(string)
	metric := r.URL.Query().Get("metric")

	view, err := h.assessmentService.History(userID, metric)
	if err != nil {
		if errors.Is(err, core.ErrUnknownMetric) {
			respondError(w, http.StatusBadRequest, "Unknown metric type: "+metric)
			return
		}
		log.Printf("Error getting %s history for user %s: %v", metric, userID, err)
		respondError(w, http.StatusInternalServerError, "Failed to get metric history")
		return
	}
	respondJSON(w, http.StatusOK, view)
}

type CreateSessionRequest struct {
	FirstMessage *string `json:"first_message,omitempty"`
}

type SessionResponse struct {
	*store.CoachSession
	Messages []store.CoachMessage `json:"messages"`
}

func (h *APIHandler) CreateCoachSessionHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(string)

	var req CreateSessionRequest
	if r.Body != http.NoBody {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
			return
		}
	}

	firstMessage := ""
	if req.FirstMessage != nil {
		firstMessage = *req.FirstMessage
	}

	session, messages, err := h.coachService.CreateSession(r.Context(), userID, firstMessage)
	if err != nil {
		if errors.Is(err, core.ErrCoachDisabled) {
			respondError(w, http.StatusServiceUnavailable, "Health coach is not configured")
			return
		}
		log.Printf("Error creating coach session for user %s: %v", userID, err)
		respondError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}
	if messages == nil {
		messages = []store.CoachMessage{}
	}

	respondJSON(w, http.StatusCreated, SessionResponse{CoachSession: session, Messages: messages})
}

func (h *APIHandler) ListCoachSessionsHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(string)

	sessions, err := h.coachService.ListSessions(userID)
	if err != nil {
		log.Printf("Error listing coach sessions for user %s: %v", userID, err)
		respondError(w, http.StatusInternalServerError, "Failed to list sessions")
		return
	}
	if sessions == nil {
		sessions = []store.CoachSession{}
	}
	respondJSON(w, http.StatusOK, sessions)
}

func (h *APIHandler) GetCoachSessionHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(string)
	sessionID := chi.URLParam(r, "sessionID")

	session, messages, err := h.coachService.GetSession(sessionID, userID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Session not found")
			return
		}
		log.Printf("Error getting coach session %s for user %s: %v", sessionID, userID, err)
		respondError(w, http.StatusInternalServerError, "Failed to get session")
		return
	}
	if messages == nil {
		messages = []store.CoachMessage{}
	}

	respondJSON(w, http.StatusOK, SessionResponse{CoachSession: session, Messages: messages})
}

type PostCoachMessageRequest struct {
	Content string `json:"content"`
}

type PostCoachMessageResponse struct {
	Reply    *store.CoachMessage  `json:"reply"`
	Messages []store.CoachMessage `json:"messages"`
}

func (h *APIHandler) PostCoachMessageHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(string)
	sessionID := chi.URLParam(r, "sessionID")

	var req PostCoachMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		respondError(w, http.StatusBadRequest, "Message content cannot be empty")
		return
	}

	reply, messages, err := h.coachService.PostMessage(r.Context(), userID, sessionID, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrCoachDisabled):
			respondError(w, http.StatusServiceUnavailable, "Health coach is not configured")
		case errors.Is(err, core.ErrNotFound):
			respondError(w, http.StatusNotFound, "Session not found")
		default:
			log.Printf("Error posting coach message for user %s, session %s: %v", userID, sessionID, err)
			respondError(w, http.StatusInternalServerError, "Failed to post message")
		}
		return
	}

	respondJSON(w, http.StatusCreated, PostCoachMessageResponse{Reply: reply, Messages: messages})
}
