package agents

import (
	"math"
	"time"

	"github.com/jpmellow/longevity-snap-02/internal/assessment"
)

// Score categories.
const (
	CategorySleep      = "sleep"
	CategoryExercise   = "exercise"
	CategoryNutrition  = "nutrition"
	CategoryStress     = "stress"
	CategoryBiometrics = "biometrics"
)

// Weights for the overall longevity score. When a category cannot be scored
// the remaining weights are renormalized.
var categoryWeights = map[string]float64{
	CategorySleep:      0.25,
	CategoryExercise:   0.25,
	CategoryNutrition:  0.20,
	CategoryStress:     0.15,
	CategoryBiometrics: 0.15,
}

// Result is the stored outcome of processing one assessment.
type Result struct {
	AssessmentID       string                  `json:"assessment_id"`
	CategoryScores     map[string]int          `json:"category_scores"`
	LongevityScore     int                     `json:"longevity_score"`
	Confidence         Confidence              `json:"confidence"`
	Recommendations    []Recommendation        `json:"recommendations"`
	Insights           []Insight               `json:"insights"`
	AgentContributions map[string]Contribution `json:"agent_contributions"`
	NarrativeInsight   *NarrativeInsight       `json:"narrative_insight,omitempty"`
	MotivationDriver   string                  `json:"motivation_driver"`
	CreatedAt          time.Time               `json:"created_at"`
}

// NewResult combines the category scores for a payload with a processor
// evaluation.
func NewResult(assessmentID string, p *assessment.Payload, eval *Evaluation) *Result {
	scores := CategoryScores(p)
	return &Result{
		AssessmentID:       assessmentID,
		CategoryScores:     scores,
		LongevityScore:     LongevityScore(scores),
		Confidence:         eval.Confidence,
		Recommendations:    eval.Recommendations,
		Insights:           eval.Insights,
		AgentContributions: eval.Contributions,
		NarrativeInsight:   eval.Narrative,
		MotivationDriver:   eval.MotivationDriver,
		CreatedAt:          time.Now().UTC(),
	}
}

// CategoryScores grades each lifestyle category 0-100 against the guideline
// bands. Categories without enough data are omitted.
func CategoryScores(p *assessment.Payload) map[string]int {
	scores := make(map[string]int)
	if p == nil {
		return scores
	}

	if v, ok := sleepScore(p.Sleep); ok {
		scores[CategorySleep] = v
	}
	if v, ok := exerciseScore(p.Exercise); ok {
		scores[CategoryExercise] = v
	}

	weightKG := 70.0
	if p.Demographics != nil && p.Demographics.WeightKG > 0 {
		weightKG = p.Demographics.WeightKG
	}
	if v, ok := nutritionScore(p.Nutrition, weightKG); ok {
		scores[CategoryNutrition] = v
	}

	if v, ok := stressScore(p.MentalHealth); ok {
		scores[CategoryStress] = v
	}
	if v, ok := biometricsScore(p); ok {
		scores[CategoryBiometrics] = v
	}
	return scores
}

// LongevityScore collapses category scores into one 0-100 number using the
// category weights, renormalized over the categories present.
func LongevityScore(scores map[string]int) int {
	totalWeight := 0.0
	weighted := 0.0
	for category, score := range scores {
		w := categoryWeights[category]
		totalWeight += w
		weighted += w * float64(score)
	}
	if totalWeight == 0 {
		return 0
	}
	return int(math.Round(weighted / totalWeight))
}

// sleepScore: duration is worth 60 points with full credit inside the 7-9
// hour band, quality and consistency 20 points each.
func sleepScore(s *assessment.Sleep) (int, bool) {
	if s == nil || s.AverageDuration <= 0 {
		return 0, false
	}
	points := sleepDurationPoints(s.AverageDuration)
	points += ratingFraction(s.Quality) * 20
	points += ratingFraction(s.BedtimeConsistency) * 20
	return clampScore(points), true
}

// sleepDurationPoints walks down 15 points per hour outside the 7-9 band.
func sleepDurationPoints(hours float64) float64 {
	var deficit float64
	switch {
	case hours < 7:
		deficit = 7 - hours
	case hours > 9:
		deficit = hours - 9
	}
	points := 60 - deficit*15
	if points < 0 {
		points = 0
	}
	return points
}

var ratingFractions = map[string]float64{
	"excellent": 1.0,
	"high":      0.9,
	"good":      0.75,
	"medium":    0.6,
	"fair":      0.5,
	"poor":      0.25,
	"low":       0.25,
}

func ratingFraction(rating string) float64 {
	return ratingFractions[rating]
}

// exerciseScore: weekly volume 60 points against the 150/225 minute targets,
// strength frequency 25, variety 15.
func exerciseScore(e *assessment.Exercise) (int, bool) {
	if e == nil {
		return 0, false
	}

	duration := 30
	if e.AvgDurationMin != nil && *e.AvgDurationMin > 0 {
		duration = *e.AvgDurationMin
	}
	minutes := float64(e.WeeklySessions() * duration)

	var points float64
	switch {
	case minutes >= cardioMinutesOptimal:
		points = 60
	case minutes >= cardioMinutesMin:
		points = 45 + 15*(minutes-cardioMinutesMin)/(cardioMinutesOptimal-cardioMinutesMin)
	default:
		points = 45 * minutes / cardioMinutesMin
	}

	switch {
	case e.StrengthSessions >= strengthSessionsTarget:
		points += 25
	case e.StrengthSessions >= strengthSessionsMin:
		points += 20
	case e.StrengthSessions == 1:
		points += 10
	}

	switch {
	case len(e.Types) >= 3:
		points += 15
	case len(e.Types) == 2:
		points += 10
	case len(e.Types) == 1:
		points += 5
	}

	return clampScore(points), true
}

// nutritionScore: protein 40 points against the g/kg bands, fiber (or plant
// servings as a fallback signal) 30, macro balance 30. Only measurable
// components count toward the denominator.
func nutritionScore(n *assessment.Nutrition, weightKG float64) (int, bool) {
	if n == nil || n.Calories <= 0 {
		return 0, false
	}

	earned := 0.0
	possible := 40.0

	switch perKG := n.ProteinGrams / weightKG; {
	case perKG >= proteinOptimalPerKG:
		earned += 40
	case perKG >= proteinMinPerKG:
		earned += 28
	case n.ProteinGrams > 0:
		earned += 14
	}

	if n.FiberGrams != nil {
		possible += 30
		switch {
		case *n.FiberGrams >= fiberOptimalGrams:
			earned += 30
		case *n.FiberGrams >= fiberMinGrams:
			earned += 24
		case *n.FiberGrams >= 15:
			earned += 15
		case *n.FiberGrams > 0:
			earned += 6
		}
	} else if n.PlantServings != nil {
		possible += 30
		switch {
		case *n.PlantServings >= 5:
			earned += 30
		case *n.PlantServings >= 3:
			earned += 20
		case *n.PlantServings >= 1:
			earned += 10
		}
	}

	if protein, carbs, fat, ok := MacroPercentages(n.ProteinGrams, n.CarbGrams, n.FatGrams); ok {
		possible += 30
		if protein >= 15 && protein <= 35 {
			earned += 15
		}
		if carbs <= 60 {
			earned += 8
		}
		if fat <= 40 {
			earned += 7
		}
	}

	return clampScore(earned / possible * 100), true
}

// stressScore: a banded base from the reported level plus 20 points for
// having coping mechanisms in place.
func stressScore(m *assessment.MentalHealth) (int, bool) {
	if m == nil || m.StressLevel < 1 {
		return 0, false
	}

	var points float64
	switch {
	case m.StressLevel < 4:
		points = 80
	case m.StressLevel < 7:
		points = 55
	case m.StressLevel < 9:
		points = 30
	default:
		points = 10
	}
	if len(m.CopingMechanisms) > 0 {
		points += 20
	}
	return clampScore(points), true
}

// biometricsScore grades the vitals that were actually reported: BMI 25
// points, blood pressure 30, resting heart rate 20, VO2max 25, renormalized
// over what is present.
func biometricsScore(p *assessment.Payload) (int, bool) {
	earned := 0.0
	possible := 0.0

	if bmi := p.Demographics.BMI(); bmi > 0 {
		possible += 25
		switch bmiCategory(bmi) {
		case "normal":
			earned += 25
		case "overweight":
			earned += 15
		case "underweight":
			earned += 12
		case "obese_class_1":
			earned += 8
		case "obese_class_2":
			earned += 4
		}
	}

	if b := p.Biometrics; b != nil {
		if b.SystolicBP != nil && b.DiastolicBP != nil {
			possible += 30
			switch bloodPressureCategory(*b.SystolicBP, *b.DiastolicBP) {
			case "normal":
				earned += 30
			case "elevated":
				earned += 21
			case "hypertension_stage_1":
				earned += 12
			case "hypertension_stage_2":
				earned += 3
			}
		}

		if b.RestingHeartRate != nil {
			possible += 20
			switch hr := *b.RestingHeartRate; {
			case hr >= 60 && hr < 100:
				earned += 20
			case hr >= 40 && hr < 60:
				earned += 16
			case hr >= 100 && hr <= 120:
				earned += 8
			default:
				earned += 2
			}
		}

		if b.VO2Max != nil {
			possible += 25
			gender := ""
			if p.Demographics != nil {
				gender = p.Demographics.Gender
			}
			switch vo2Category(*b.VO2Max, gender) {
			case "superior":
				earned += 25
			case "excellent":
				earned += 22
			case "good":
				earned += 18
			case "fair":
				earned += 10
			case "poor":
				earned += 4
			}
		}
	}

	if possible == 0 {
		return 0, false
	}
	return clampScore(earned / possible * 100), true
}

func clampScore(points float64) int {
	if points < 0 {
		return 0
	}
	if points > 100 {
		return 100
	}
	return int(math.Round(points))
}
