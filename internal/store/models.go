package store

import "time"

// Coach message roles as stored in coach_messages.role.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type User struct {
	ID           string    `json:"id"` // UUID
	Email        string    `json:"email"`
	Name         string    `json:"name,omitempty"`
	PasswordHash string    `json:"-"` // Do not expose this in JSON responses
	CreatedAt    time.Time `json:"created_at"`
}

// Assessment is one submitted questionnaire together with its computed
// result. Payload and result are stored as JSON documents; the score,
// confidence, and driver columns are denormalized for listing without
// unmarshaling.
type Assessment struct {
	ID               string    `json:"id"` // UUID
	UserID           string    `json:"user_id"`
	PayloadJSON      string    `json:"-"`
	ResultJSON       string    `json:"-"`
	LongevityScore   int       `json:"longevity_score"`
	Confidence       string    `json:"confidence"`
	MotivationDriver string    `json:"motivation_driver,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// HealthMetric is a single point on a metric's history, recorded when an
// assessment is processed.
type HealthMetric struct {
	ID           string    `json:"id"` // UUID
	UserID       string    `json:"user_id"`
	AssessmentID string    `json:"assessment_id"`
	MetricType   string    `json:"metric_type"`
	MetricValue  float64   `json:"metric_value"`
	MetricUnit   string    `json:"metric_unit,omitempty"`
	RecordedAt   time.Time `json:"recorded_at"`
}

type CoachSession struct {
	ID        string    `json:"id"` // UUID
	UserID    string    `json:"user_id"`
	Title     *string   `json:"title"` // Nullable until generated
	CreatedAt time.Time `json:"created_at"`
}

type CoachMessage struct {
	ID        string    `json:"id"` // UUID
	SessionID string    `json:"session_id"`
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
