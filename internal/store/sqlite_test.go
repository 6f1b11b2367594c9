package store_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/jpmellow/longevity-snap-02/internal/store"
)

func newTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	dbStore, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { dbStore.Close() })
	return dbStore
}

func TestCreateAndGetUser(t *testing.T) {
	s := newTestStore(t)

	user, err := s.CreateUser("ana@example.com", "Ana", "hashed-password")
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	if user.ID == "" {
		t.Fatalf("expected user ID to be set")
	}

	byEmail, err := s.GetUserByEmail("ana@example.com")
	if err != nil {
		t.Fatalf("failed to get user by email: %v", err)
	}
	if byEmail == nil {
		t.Fatalf("expected user, got nil")
	}
	if byEmail.ID != user.ID {
		t.Fatalf("expected ID %s, got %s", user.ID, byEmail.ID)
	}
	if byEmail.Name != "Ana" {
		t.Fatalf("expected name Ana, got %q", byEmail.Name)
	}
	if byEmail.PasswordHash != "hashed-password" {
		t.Fatalf("expected stored password hash, got %q", byEmail.PasswordHash)
	}

	byID, err := s.GetUserByID(user.ID)
	if err != nil {
		t.Fatalf("failed to get user by id: %v", err)
	}
	if byID == nil || byID.Email != "ana@example.com" {
		t.Fatalf("expected ana@example.com, got %+v", byID)
	}
}

func TestGetUserNotFoundReturnsNil(t *testing.T) {
	s := newTestStore(t)

	user, err := s.GetUserByEmail("missing@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user != nil {
		t.Fatalf("expected nil for missing user, got %+v", user)
	}

	user, err = s.GetUserByID("no-such-id")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user != nil {
		t.Fatalf("expected nil for missing user, got %+v", user)
	}
}

func TestCreateUserRejectsDuplicateEmail(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.CreateUser("dup@example.com", "", "h1"); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	if _, err := s.CreateUser("dup@example.com", "", "h2"); err == nil {
		t.Fatalf("expected error for duplicate email, got nil")
	}
}

func TestAssessmentLifecycle(t *testing.T) {
	s := newTestStore(t)
	user, err := s.CreateUser("bo@example.com", "Bo", "h")
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	first := &store.Assessment{
		UserID:         user.ID,
		PayloadJSON:    `{"demographics":{"age":30}}`,
		ResultJSON:     `{"longevity_score":70}`,
		LongevityScore: 70,
		Confidence:     "medium",
	}
	if err := s.CreateAssessment(first); err != nil {
		t.Fatalf("failed to create assessment: %v", err)
	}
	if first.ID == "" {
		t.Fatalf("expected assessment ID to be set")
	}

	time.Sleep(5 * time.Millisecond)
	second := &store.Assessment{
		UserID:           user.ID,
		PayloadJSON:      `{"demographics":{"age":31}}`,
		ResultJSON:       `{"longevity_score":78}`,
		LongevityScore:   78,
		Confidence:       "high",
		MotivationDriver: "longevity",
	}
	if err := s.CreateAssessment(second); err != nil {
		t.Fatalf("failed to create second assessment: %v", err)
	}

	got, err := s.GetAssessmentByID(first.ID)
	if err != nil {
		t.Fatalf("failed to get assessment: %v", err)
	}
	if got == nil || got.LongevityScore != 70 || got.Confidence != "medium" {
		t.Fatalf("unexpected assessment: %+v", got)
	}
	if got.PayloadJSON != first.PayloadJSON {
		t.Fatalf("payload JSON did not round-trip: %q", got.PayloadJSON)
	}

	list, err := s.ListAssessmentsByUserID(user.ID, 10, 0)
	if err != nil {
		t.Fatalf("failed to list assessments: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 assessments, got %d", len(list))
	}
	if list[0].ID != second.ID {
		t.Fatalf("expected newest assessment first, got %s", list[0].ID)
	}

	limited, err := s.ListAssessmentsByUserID(user.ID, 1, 0)
	if err != nil {
		t.Fatalf("failed to list with limit: %v", err)
	}
	if len(limited) != 1 || limited[0].ID != second.ID {
		t.Fatalf("expected only the newest assessment, got %+v", limited)
	}

	latest, err := s.GetLatestAssessmentByUserID(user.ID)
	if err != nil {
		t.Fatalf("failed to get latest assessment: %v", err)
	}
	if latest == nil || latest.ID != second.ID {
		t.Fatalf("expected latest assessment %s, got %+v", second.ID, latest)
	}
}

func TestDeleteAssessmentOwnership(t *testing.T) {
	s := newTestStore(t)
	user, _ := s.CreateUser("cat@example.com", "", "h")

	a := &store.Assessment{UserID: user.ID, PayloadJSON: "{}", ResultJSON: "{}", LongevityScore: 50, Confidence: "low"}
	if err := s.CreateAssessment(a); err != nil {
		t.Fatalf("failed to create assessment: %v", err)
	}
	if err := s.RecordMetric(&store.HealthMetric{
		UserID: user.ID, AssessmentID: a.ID, MetricType: "longevity_score", MetricValue: 50,
	}); err != nil {
		t.Fatalf("failed to record metric: %v", err)
	}

	if err := s.DeleteAssessment(a.ID, "someone-else"); err == nil {
		t.Fatalf("expected error deleting another user's assessment")
	}

	if err := s.DeleteAssessment(a.ID, user.ID); err != nil {
		t.Fatalf("failed to delete assessment: %v", err)
	}
	got, err := s.GetAssessmentByID(a.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected assessment to be gone, got %+v", got)
	}

	metrics, err := s.GetMetricHistory(user.ID, "longevity_score")
	if err != nil {
		t.Fatalf("failed to get metric history: %v", err)
	}
	if len(metrics) != 0 {
		t.Fatalf("expected metric points to be deleted, got %d", len(metrics))
	}

	if err := s.DeleteAssessment(a.ID, user.ID); err == nil {
		t.Fatalf("expected error deleting twice")
	}
}

func TestMetricHistoryIsChronological(t *testing.T) {
	s := newTestStore(t)
	user, _ := s.CreateUser("dee@example.com", "", "h")

	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	// Insert out of order; history must come back oldest first.
	for _, offset := range []int{2, 0, 1} {
		err := s.RecordMetric(&store.HealthMetric{
			UserID:      user.ID,
			MetricType:  "bmi",
			MetricValue: 22.0 + float64(offset),
			MetricUnit:  "kg/m2",
			RecordedAt:  base.AddDate(0, 0, offset),
		})
		if err != nil {
			t.Fatalf("failed to record metric: %v", err)
		}
	}
	if err := s.RecordMetric(&store.HealthMetric{
		UserID: user.ID, MetricType: "stress_level", MetricValue: 4, RecordedAt: base,
	}); err != nil {
		t.Fatalf("failed to record metric: %v", err)
	}

	history, err := s.GetMetricHistory(user.ID, "bmi")
	if err != nil {
		t.Fatalf("failed to get metric history: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("expected 3 bmi points, got %d", len(history))
	}
	for i, want := range []float64{22, 23, 24} {
		if history[i].MetricValue != want {
			t.Fatalf("expected point %d to be %v, got %v", i, want, history[i].MetricValue)
		}
	}
	if history[0].MetricUnit != "kg/m2" {
		t.Fatalf("expected unit kg/m2, got %q", history[0].MetricUnit)
	}

	other, err := s.GetMetricHistory("nobody", "bmi")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("expected empty history for unknown user, got %d", len(other))
	}
}

func TestCoachSessionsAndMessages(t *testing.T) {
	s := newTestStore(t)
	user, _ := s.CreateUser("eli@example.com", "", "h")

	session, err := s.CreateCoachSession(user.ID, nil)
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	if session.ID == "" {
		t.Fatalf("expected session ID to be set")
	}
	if session.Title != nil {
		t.Fatalf("expected nil title, got %q", *session.Title)
	}

	got, err := s.GetCoachSessionByID(session.ID, user.ID)
	if err != nil {
		t.Fatalf("failed to get session: %v", err)
	}
	if got == nil {
		t.Fatalf("expected session, got nil")
	}

	foreign, err := s.GetCoachSessionByID(session.ID, "someone-else")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if foreign != nil {
		t.Fatalf("expected nil for foreign session read, got %+v", foreign)
	}

	if err := s.UpdateCoachSessionTitle(session.ID, "someone-else", "Nope"); err == nil {
		t.Fatalf("expected error updating title of foreign session")
	}
	if err := s.UpdateCoachSessionTitle(session.ID, user.ID, "Sleep help"); err != nil {
		t.Fatalf("failed to update title: %v", err)
	}
	got, _ = s.GetCoachSessionByID(session.ID, user.ID)
	if got.Title == nil || *got.Title != "Sleep help" {
		t.Fatalf("expected title 'Sleep help', got %+v", got.Title)
	}

	contents := []struct {
		role    string
		content string
	}{
		{store.RoleUser, "How do I sleep better?"},
		{store.RoleAssistant, "Keep a consistent schedule."},
		{store.RoleUser, "What about caffeine?"},
	}
	for _, c := range contents {
		msg := &store.CoachMessage{SessionID: session.ID, Role: c.role, Content: c.content}
		if err := s.CreateCoachMessage(msg); err != nil {
			t.Fatalf("failed to create message: %v", err)
		}
		time.Sleep(5 * time.Millisecond)
	}

	messages, err := s.ListCoachMessagesBySessionID(session.ID)
	if err != nil {
		t.Fatalf("failed to list messages: %v", err)
	}
	if len(messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(messages))
	}
	for i, c := range contents {
		if messages[i].Role != c.role || messages[i].Content != c.content {
			t.Fatalf("message %d out of order: %+v", i, messages[i])
		}
	}

	lastTwo, err := s.GetLastNCoachMessages(session.ID, 2)
	if err != nil {
		t.Fatalf("failed to get last messages: %v", err)
	}
	if len(lastTwo) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(lastTwo))
	}
	if lastTwo[0].Content != "What about caffeine?" {
		t.Fatalf("expected newest message first, got %q", lastTwo[0].Content)
	}

	sessions, err := s.ListCoachSessionsByUserID(user.ID)
	if err != nil {
		t.Fatalf("failed to list sessions: %v", err)
	}
	if len(sessions) != 1 || sessions[0].ID != session.ID {
		t.Fatalf("unexpected session list: %+v", sessions)
	}
}
