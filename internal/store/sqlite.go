package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dataSourceName string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err = store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS users (
        id TEXT PRIMARY KEY, -- UUID
        email TEXT UNIQUE NOT NULL,
        name TEXT,
        password_hash TEXT NOT NULL,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );

    CREATE TABLE IF NOT EXISTS assessments (
        id TEXT PRIMARY KEY, -- UUID
        user_id TEXT NOT NULL,
        payload TEXT NOT NULL, -- submitted questionnaire JSON
        result TEXT NOT NULL,  -- computed result JSON
        longevity_score INTEGER NOT NULL,
        confidence TEXT NOT NULL,
        motivation_driver TEXT,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
        FOREIGN KEY (user_id) REFERENCES users (id)
    );

    CREATE TABLE IF NOT EXISTS health_metrics (
        id TEXT PRIMARY KEY, -- UUID
        user_id TEXT NOT NULL,
        assessment_id TEXT NOT NULL,
        metric_type TEXT NOT NULL,
        metric_value REAL NOT NULL,
        metric_unit TEXT,
        recorded_at DATETIME DEFAULT CURRENT_TIMESTAMP,
        FOREIGN KEY (user_id) REFERENCES users (id),
        FOREIGN KEY (assessment_id) REFERENCES assessments (id)
    );

    CREATE TABLE IF NOT EXISTS coach_sessions (
        id TEXT PRIMARY KEY, -- UUID
        user_id TEXT NOT NULL,
        title TEXT,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
        FOREIGN KEY (user_id) REFERENCES users (id)
    );

    CREATE TABLE IF NOT EXISTS coach_messages (
        id TEXT PRIMARY KEY, -- UUID
        session_id TEXT NOT NULL,
        role TEXT NOT NULL CHECK (role IN ('user', 'assistant')),
        content TEXT NOT NULL,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
        FOREIGN KEY (session_id) REFERENCES coach_sessions (id)
    );
    `
	_, err := s.db.Exec(schema)
	return err
}

// User methods

func (s *SQLiteStore) CreateUser(email, name, passwordHash string) (*User, error) {
	user := &User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}

	stmt, err := s.db.Prepare("INSERT INTO users (id, email, name, password_hash, created_at) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return nil, fmt.Errorf("failed to prepare user insert: %w", err)
	}
	defer stmt.Close()

	if _, err = stmt.Exec(user.ID, user.Email, user.Name, user.PasswordHash, user.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to execute user insert: %w", err)
	}
	return user, nil
}

func (s *SQLiteStore) GetUserByEmail(email string) (*User, error) {
	var user User
	var name sql.NullString
	err := s.db.QueryRow("SELECT id, email, name, password_hash, created_at FROM users WHERE email = ?", email).
		Scan(&user.ID, &user.Email, &name, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // User not found
		}
		return nil, fmt.Errorf("failed to query user by email: %w", err)
	}
	user.Name = name.String
	return &user, nil
}

func (s *SQLiteStore) GetUserByID(id string) (*User, error) {
	var user User
	var name sql.NullString
	err := s.db.QueryRow("SELECT id, email, name, password_hash, created_at FROM users WHERE id = ?", id).
		Scan(&user.ID, &user.Email, &name, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // User not found
		}
		return nil, fmt.Errorf("failed to query user by id: %w", err)
	}
	user.Name = name.String
	return &user, nil
}

// Assessment methods

// CreateAssessment inserts a processed assessment. The caller may preset the
// ID so the stored result JSON can reference it; otherwise one is generated.
func (s *SQLiteStore) CreateAssessment(a *Assessment) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	a.CreatedAt = time.Now()

	stmt, err := s.db.Prepare(`INSERT INTO assessments
        (id, user_id, payload, result, longevity_score, confidence, motivation_driver, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare assessment insert: %w", err)
	}
	defer stmt.Close()

	_, err = stmt.Exec(a.ID, a.UserID, a.PayloadJSON, a.ResultJSON,
		a.LongevityScore, a.Confidence, a.MotivationDriver, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to execute assessment insert: %w", err)
	}
	return nil
}

const assessmentColumns = "id, user_id, payload, result, longevity_score, confidence, motivation_driver, created_at"

func scanAssessment(row interface{ Scan(...any) error }) (*Assessment, error) {
	var a Assessment
	var driver sql.NullString
	err := row.Scan(&a.ID, &a.UserID, &a.PayloadJSON, &a.ResultJSON,
		&a.LongevityScore, &a.Confidence, &driver, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	a.MotivationDriver = driver.String
	return &a, nil
}

func (s *SQLiteStore) GetAssessmentByID(id string) (*Assessment, error) {
	row := s.db.QueryRow("SELECT "+assessmentColumns+" FROM assessments WHERE id = ?", id)
	a, err := scanAssessment(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get assessment: %w", err)
	}
	return a, nil
}

func (s *SQLiteStore) GetLatestAssessmentByUserID(userID string) (*Assessment, error) {
	row := s.db.QueryRow("SELECT "+assessmentColumns+" FROM assessments WHERE user_id = ? ORDER BY created_at DESC LIMIT 1", userID)
	a, err := scanAssessment(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // No assessments yet
		}
		return nil, fmt.Errorf("failed to get latest assessment: %w", err)
	}
	return a, nil
}

func (s *SQLiteStore) ListAssessmentsByUserID(userID string, limit, offset int) ([]Assessment, error) {
	rows, err := s.db.Query("SELECT "+assessmentColumns+" FROM assessments WHERE user_id = ? ORDER BY created_at DESC LIMIT ? OFFSET ?",
		userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query assessments: %w", err)
	}
	defer rows.Close()

	var assessments []Assessment
	for rows.Next() {
		a, err := scanAssessment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan assessment row: %w", err)
		}
		assessments = append(assessments, *a)
	}
	return assessments, nil
}

// DeleteAssessment removes an assessment owned by the user together with the
// metric points it recorded.
func (s *SQLiteStore) DeleteAssessment(id, userID string) error {
	res, err := s.db.Exec("DELETE FROM assessments WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete assessment: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("assessment not found or not owned by user")
	}

	if _, err := s.db.Exec("DELETE FROM health_metrics WHERE assessment_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete assessment metrics: %w", err)
	}
	return nil
}

// HealthMetric methods

func (s *SQLiteStore) RecordMetric(m *HealthMetric) error {
	m.ID = uuid.NewString()
	if m.RecordedAt.IsZero() {
		m.RecordedAt = time.Now()
	}

	stmt, err := s.db.Prepare(`INSERT INTO health_metrics
        (id, user_id, assessment_id, metric_type, metric_value, metric_unit, recorded_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare metric insert: %w", err)
	}
	defer stmt.Close()

	_, err = stmt.Exec(m.ID, m.UserID, m.AssessmentID, m.MetricType, m.MetricValue, m.MetricUnit, m.RecordedAt)
	if err != nil {
		return fmt.Errorf("failed to execute metric insert: %w", err)
	}
	return nil
}

// GetMetricHistory returns the points oldest first so the series can be
// plotted directly.
func (s *SQLiteStore) GetMetricHistory(userID, metricType string) ([]HealthMetric, error) {
	rows, err := s.db.Query(`SELECT id, user_id, assessment_id, metric_type, metric_value, metric_unit, recorded_at
        FROM health_metrics WHERE user_id = ? AND metric_type = ? ORDER BY recorded_at ASC`,
		userID, metricType)
	if err != nil {
		return nil, fmt.Errorf("failed to query metric history: %w", err)
	}
	defer rows.Close()

	var metrics []HealthMetric
	for rows.Next() {
		var m HealthMetric
		var unit sql.NullString
		if err := rows.Scan(&m.ID, &m.UserID, &m.AssessmentID, &m.MetricType, &m.MetricValue, &unit, &m.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan metric row: %w", err)
		}
		m.MetricUnit = unit.String
		metrics = append(metrics, m)
	}
	return metrics, nil
}

// CoachSession methods

func (s *SQLiteStore) CreateCoachSession(userID string, title *string) (*CoachSession, error) {
	sessionID := uuid.NewString()
	stmt, err := s.db.Prepare("INSERT INTO coach_sessions (id, user_id, title, created_at) VALUES (?, ?, ?, ?)")
	if err != nil {
		return nil, fmt.Errorf("failed to prepare session insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	if _, err = stmt.Exec(sessionID, userID, title, now); err != nil {
		return nil, fmt.Errorf("failed to execute session insert: %w", err)
	}
	return &CoachSession{ID: sessionID, UserID: userID, Title: title, CreatedAt: now}, nil
}

func (s *SQLiteStore) GetCoachSessionByID(sessionID, userID string) (*CoachSession, error) {
	var session CoachSession
	var title sql.NullString
	err := s.db.QueryRow("SELECT id, user_id, title, created_at FROM coach_sessions WHERE id = ? AND user_id = ?",
		sessionID, userID).Scan(&session.ID, &session.UserID, &title, &session.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if title.Valid {
		session.Title = &title.String
	}
	return &session, nil
}

func (s *SQLiteStore) ListCoachSessionsByUserID(userID string) ([]CoachSession, error) {
	rows, err := s.db.Query("SELECT id, user_id, title, created_at FROM coach_sessions WHERE user_id = ? ORDER BY created_at DESC", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []CoachSession
	for rows.Next() {
		var session CoachSession
		var title sql.NullString
		if err := rows.Scan(&session.ID, &session.UserID, &title, &session.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		if title.Valid {
			session.Title = &title.String
		}
		sessions = append(sessions, session)
	}
	return sessions, nil
}

func (s *SQLiteStore) UpdateCoachSessionTitle(sessionID, userID, title string) error {
	stmt, err := s.db.Prepare("UPDATE coach_sessions SET title = ? WHERE id = ? AND user_id = ?")
	if err != nil {
		return fmt.Errorf("failed to prepare session title update: %w", err)
	}
	defer stmt.Close()

	res, err := stmt.Exec(title, sessionID, userID)
	if err != nil {
		return fmt.Errorf("failed to execute session title update: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("session not found or not owned by user, title not updated")
	}
	return nil
}

// CoachMessage methods

func (s *SQLiteStore) CreateCoachMessage(msg *CoachMessage) error {
	msg.ID = uuid.NewString()
	msg.CreatedAt = time.Now()

	stmt, err := s.db.Prepare("INSERT INTO coach_messages (id, session_id, role, content, created_at) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare message insert: %w", err)
	}
	defer stmt.Close()

	if _, err = stmt.Exec(msg.ID, msg.SessionID, msg.Role, msg.Content, msg.CreatedAt); err != nil {
		return fmt.Errorf("failed to execute message insert: %w", err)
	}
	return nil
}

// ListCoachMessagesBySessionID returns the full conversation in
// chronological order.
func (s *SQLiteStore) ListCoachMessagesBySessionID(sessionID string) ([]CoachMessage, error) {
	rows, err := s.db.Query("SELECT id, session_id, role, content, created_at FROM coach_messages WHERE session_id = ? ORDER BY created_at ASC", sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var messages []CoachMessage
	for rows.Next() {
		var msg CoachMessage
		if err := rows.Scan(&msg.ID, &msg.SessionID, &msg.Role, &msg.Content, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message row: %w", err)
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// GetLastNCoachMessages returns up to n most recent messages, newest first.
func (s *SQLiteStore) GetLastNCoachMessages(sessionID string, n int) ([]CoachMessage, error) {
	rows, err := s.db.Query(`SELECT id, session_id, role, content, created_at
        FROM coach_messages WHERE session_id = ? ORDER BY created_at DESC LIMIT ?`, sessionID, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var messages []CoachMessage
	for rows.Next() {
		var msg CoachMessage
		if err := rows.Scan(&msg.ID, &msg.SessionID, &msg.Role, &msg.Content, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message row: %w", err)
		}
		messages = append(messages, msg)
	}
	return messages, nil
}
