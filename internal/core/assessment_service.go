package core

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/jpmellow/longevity-snap-02/internal/agents"
	"github.com/jpmellow/longevity-snap-02/internal/assessment"
	"github.com/jpmellow/longevity-snap-02/internal/cache"
	"github.com/jpmellow/longevity-snap-02/internal/config"
	"github.com/jpmellow/longevity-snap-02/internal/store"
)

// Metric types recorded for each submitted assessment.
const (
	MetricBMI              = "bmi"
	MetricSleepDuration    = "sleep_duration"
	MetricStressLevel      = "stress_level"
	MetricWeeklyExercise   = "weekly_exercise_sessions"
	MetricLongevityScore   = "longevity_score"
	MetricSystolicBP       = "systolic_bp"
	MetricDiastolicBP      = "diastolic_bp"
	MetricRestingHeartRate = "resting_heart_rate"
)

// metricUnits doubles as the catalog of metric types the history view serves.
var metricUnits = map[string]string{
	MetricBMI:              "kg/m2",
	MetricSleepDuration:    "hours",
	MetricStressLevel:      "scale_1_10",
	MetricWeeklyExercise:   "sessions/week",
	MetricLongevityScore:   "points",
	MetricSystolicBP:       "mmHg",
	MetricDiastolicBP:      "mmHg",
	MetricRestingHeartRate: "bpm",
}

type AssessmentService struct {
	dbStore     *store.SQLiteStore
	processor   *agents.Processor
	resultCache *cache.ResultCache
}

func NewAssessmentService(db *store.SQLiteStore, resultCache *cache.ResultCache) *AssessmentService {
	return &AssessmentService{
		dbStore:     db,
		processor:   agents.NewProcessor(),
		resultCache: resultCache,
	}
}

// Submit validates a questionnaire payload, runs the analysis engine, and
// persists the assessment together with its result and metric points.
// Incomplete payloads return a *ValidationError listing every failing step.
func (s *AssessmentService) Submit(ctx context.Context, userID string, p *assessment.Payload) (*agents.Result, error) {
	if v := assessment.Validate(p); !v.Complete() {
		return nil, &ValidationError{Steps: v.Steps}
	}

	eval := s.processor.Process(p)
	assessmentID := uuid.NewString()
	result := agents.NewResult(assessmentID, p, eval)

	payloadJSON, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal assessment payload: %w", err)
	}
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal assessment result: %w", err)
	}

	a := &store.Assessment{
		ID:               assessmentID,
		UserID:           userID,
		PayloadJSON:      string(payloadJSON),
		ResultJSON:       string(resultJSON),
		LongevityScore:   result.LongevityScore,
		Confidence:       string(result.Confidence),
		MotivationDriver: result.MotivationDriver,
	}
	if err := s.dbStore.CreateAssessment(a); err != nil {
		return nil, fmt.Errorf("failed to persist assessment: %w", err)
	}

	s.recordMetrics(a, p, result)
	s.resultCache.InvalidateDashboard(ctx, userID)

	return result, nil
}

// recordMetrics writes the trackable points of one assessment. Failures are
// logged rather than returned: the assessment itself is already persisted.
func (s *AssessmentService) recordMetrics(a *store.Assessment, p *assessment.Payload, result *agents.Result) {
	var points []store.HealthMetric
	add := func(metricType string, value float64) {
		points = append(points, store.HealthMetric{
			UserID:       a.UserID,
			AssessmentID: a.ID,
			MetricType:   metricType,
			MetricValue:  value,
			MetricUnit:   metricUnits[metricType],
			RecordedAt:   a.CreatedAt,
		})
	}

	if bmi := p.Demographics.BMI(); bmi > 0 {
		add(MetricBMI, math.Round(bmi*10)/10)
	}
	if p.Sleep != nil {
		add(MetricSleepDuration, p.Sleep.AverageDuration)
	}
	if p.MentalHealth != nil {
		add(MetricStressLevel, float64(p.MentalHealth.StressLevel))
	}
	if p.Exercise != nil {
		add(MetricWeeklyExercise, float64(p.Exercise.WeeklySessions()))
	}
	add(MetricLongevityScore, float64(result.LongevityScore))
	if b := p.Biometrics; b != nil {
		if b.SystolicBP != nil {
			add(MetricSystolicBP, float64(*b.SystolicBP))
		}
		if b.DiastolicBP != nil {
			add(MetricDiastolicBP, float64(*b.DiastolicBP))
		}
		if b.RestingHeartRate != nil {
			add(MetricRestingHeartRate, float64(*b.RestingHeartRate))
		}
	}

	for i := range points {
		if err := s.dbStore.RecordMetric(&points[i]); err != nil {
			log.Printf("Failed to record metric %s for assessment %s: %v", points[i].MetricType, a.ID, err)
		}
	}
}

// Get returns one assessment owned by userID. Foreign or missing IDs read as
// ErrNotFound.
func (s *AssessmentService) Get(userID, assessmentID string) (*store.Assessment, error) {
	a, err := s.dbStore.GetAssessmentByID(assessmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get assessment: %w", err)
	}
	if a == nil || a.UserID != userID {
		return nil, ErrNotFound
	}
	return a, nil
}

// Result unmarshals the stored result of one owned assessment.
func (s *AssessmentService) Result(userID, assessmentID string) (*agents.Result, error) {
	a, err := s.Get(userID, assessmentID)
	if err != nil {
		return nil, err
	}

	var result agents.Result
	if err := json.Unmarshal([]byte(a.ResultJSON), &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stored result for assessment %s: %w", assessmentID, err)
	}
	return &result, nil
}

// List returns the user's assessments newest first.
func (s *AssessmentService) List(userID string, limit, offset int) ([]store.Assessment, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	return s.dbStore.ListAssessmentsByUserID(userID, limit, offset)
}

// Delete removes an owned assessment and its metric points.
func (s *AssessmentService) Delete(ctx context.Context, userID, assessmentID string) error {
	if _, err := s.Get(userID, assessmentID); err != nil {
		return err
	}
	if err := s.dbStore.DeleteAssessment(assessmentID, userID); err != nil {
		return fmt.Errorf("failed to delete assessment: %w", err)
	}
	s.resultCache.InvalidateDashboard(ctx, userID)
	return nil
}

// DashboardView backs the dashboard screen: the latest assessment summary,
// the longevity score trend, and whether the coach is available.
type DashboardView struct {
	Latest       *ScoreSummary `json:"latest,omitempty"`
	ScoreTrend   []MetricPoint `json:"score_trend"`
	CoachEnabled bool          `json:"coach_enabled"`
}

// ScoreSummary condenses a stored result for dashboard display.
type ScoreSummary struct {
	AssessmentID       string                  `json:"assessment_id"`
	LongevityScore     int                     `json:"longevity_score"`
	Confidence         string                  `json:"confidence"`
	MotivationDriver   string                  `json:"motivation_driver,omitempty"`
	CategoryScores     map[string]int          `json:"category_scores"`
	TopRecommendations []agents.Recommendation `json:"top_recommendations"`
	CreatedAt          time.Time               `json:"created_at"`
}

// MetricPoint is one point of a metric history series.
type MetricPoint struct {
	Value      float64   `json:"value"`
	Unit       string    `json:"unit,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Dashboard assembles the dashboard view, serving from the result cache when
// a fresh copy exists.
func (s *AssessmentService) Dashboard(ctx context.Context, userID string) (*DashboardView, error) {
	var cached DashboardView
	if s.resultCache.GetDashboard(ctx, userID, &cached) {
		return &cached, nil
	}

	view := &DashboardView{
		ScoreTrend:   []MetricPoint{},
		CoachEnabled: config.AppConfig.CoachEnabled(),
	}

	latest, err := s.dbStore.GetLatestAssessmentByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest assessment: %w", err)
	}
	if latest != nil {
		summary, err := summarizeAssessment(latest)
		if err != nil {
			return nil, err
		}
		view.Latest = summary

		trend, err := s.dbStore.GetMetricHistory(userID, MetricLongevityScore)
		if err != nil {
			return nil, fmt.Errorf("failed to get longevity score history: %w", err)
		}
		view.ScoreTrend = toMetricPoints(trend)
	}

	s.resultCache.SetDashboard(ctx, userID, view)
	return view, nil
}

// HistoryView is the chronological series of one metric type.
type HistoryView struct {
	Metric string        `json:"metric"`
	Unit   string        `json:"unit,omitempty"`
	Points []MetricPoint `json:"points"`
}

// History returns the recorded points of one metric type, oldest first.
func (s *AssessmentService) History(userID, metricType string) (*HistoryView, error) {
	unit, ok := metricUnits[metricType]
	if !ok {
		return nil, ErrUnknownMetric
	}

	history, err := s.dbStore.GetMetricHistory(userID, metricType)
	if err != nil {
		return nil, fmt.Errorf("failed to get metric history: %w", err)
	}
	return &HistoryView{
		Metric: metricType,
		Unit:   unit,
		Points: toMetricPoints(history),
	}, nil
}

func summarizeAssessment(a *store.Assessment) (*ScoreSummary, error) {
	var result agents.Result
	if err := json.Unmarshal([]byte(a.ResultJSON), &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stored result for assessment %s: %w", a.ID, err)
	}

	top := result.Recommendations
	if len(top) > 3 {
		top = top[:3]
	}
	return &ScoreSummary{
		AssessmentID:       a.ID,
		LongevityScore:     result.LongevityScore,
		Confidence:         string(result.Confidence),
		MotivationDriver:   result.MotivationDriver,
		CategoryScores:     result.CategoryScores,
		TopRecommendations: top,
		CreatedAt:          a.CreatedAt,
	}, nil
}

func toMetricPoints(history []store.HealthMetric) []MetricPoint {
	points := make([]MetricPoint, 0, len(history))
	for _, m := range history {
		points = append(points, MetricPoint{
			Value:      m.MetricValue,
			Unit:       m.MetricUnit,
			RecordedAt: m.RecordedAt,
		})
	}
	return points
}
