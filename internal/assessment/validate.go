package assessment

import "fmt"

// Form steps in presentation order. Biometrics is the only optional step.
const (
	StepDemographics = "demographics"
	StepGoals        = "goals"
	StepSleep        = "sleep"
	StepNutrition    = "nutrition"
	StepExercise     = "exercise"
	StepMentalHealth = "mental_health"
	StepBiometrics   = "biometrics"
)

var Steps = []string{
	StepDemographics,
	StepGoals,
	StepSleep,
	StepNutrition,
	StepExercise,
	StepMentalHealth,
	StepBiometrics,
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type StepErrors struct {
	Step   string       `json:"step"`
	Errors []FieldError `json:"errors"`
}

type ValidationResult struct {
	Steps []StepErrors `json:"steps,omitempty"`
}

// Complete reports whether every step passed validation.
func (r *ValidationResult) Complete() bool {
	return len(r.Steps) == 0
}

// Validate walks every form step in order and collects the errors of each
// incomplete step. A payload is submittable only when the result is complete.
func Validate(p *Payload) *ValidationResult {
	result := &ValidationResult{}
	for _, step := range Steps {
		if errs := ValidateStep(step, p); len(errs) > 0 {
			result.Steps = append(result.Steps, StepErrors{Step: step, Errors: errs})
		}
	}
	return result
}

// ValidateStep checks a single form step against the payload.
func ValidateStep(step string, p *Payload) []FieldError {
	if p == nil {
		p = &Payload{}
	}
	switch step {
	case StepDemographics:
		return validateDemographics(p.Demographics)
	case StepGoals:
		return validateGoals(p.Goals)
	case StepSleep:
		return validateSleep(p.Sleep)
	case StepNutrition:
		return validateNutrition(p.Nutrition)
	case StepExercise:
		return validateExercise(p.Exercise)
	case StepMentalHealth:
		return validateMentalHealth(p.MentalHealth)
	case StepBiometrics:
		return validateBiometrics(p.Biometrics)
	default:
		return []FieldError{{Field: step, Message: "unknown step"}}
	}
}

func sectionRequired(name string) []FieldError {
	return []FieldError{{Field: name, Message: "section is required"}}
}

func validateDemographics(d *Demographics) []FieldError {
	if d == nil {
		return sectionRequired(StepDemographics)
	}
	var errs []FieldError
	if d.Age < 1 || d.Age > 120 {
		errs = append(errs, FieldError{"age", "must be between 1 and 120"})
	}
	if d.Gender == "" {
		errs = append(errs, FieldError{"gender", "is required"})
	}
	if d.HeightCM <= 0 {
		errs = append(errs, FieldError{"height_cm", "must be greater than 0"})
	}
	if d.WeightKG <= 0 {
		errs = append(errs, FieldError{"weight_kg", "must be greater than 0"})
	}
	return errs
}

func validateGoals(g *Goals) []FieldError {
	if g == nil {
		return sectionRequired(StepGoals)
	}
	var errs []FieldError
	if len(g.Goals) == 0 {
		errs = append(errs, FieldError{"goals", "at least one goal is required"})
	}
	return errs
}

var ratingScale = map[string]bool{
	"low": true, "poor": true, "fair": true, "medium": true,
	"good": true, "high": true, "excellent": true,
}

func validateSleep(s *Sleep) []FieldError {
	if s == nil {
		return sectionRequired(StepSleep)
	}
	var errs []FieldError
	if s.AverageDuration <= 0 || s.AverageDuration > 24 {
		errs = append(errs, FieldError{"average_duration", "must be between 0 and 24 hours"})
	}
	if !ratingScale[s.Quality] {
		errs = append(errs, FieldError{"quality", "must be one of low, poor, fair, medium, good, high, excellent"})
	}
	if !ratingScale[s.BedtimeConsistency] {
		errs = append(errs, FieldError{"bedtime_consistency", "must be one of low, poor, fair, medium, good, high, excellent"})
	}
	return errs
}

func validateNutrition(n *Nutrition) []FieldError {
	if n == nil {
		return sectionRequired(StepNutrition)
	}
	var errs []FieldError
	if n.Calories <= 0 {
		errs = append(errs, FieldError{"calories", "must be greater than 0"})
	}
	if n.ProteinGrams < 0 {
		errs = append(errs, FieldError{"protein_grams", "must not be negative"})
	}
	if n.CarbGrams < 0 {
		errs = append(errs, FieldError{"carb_grams", "must not be negative"})
	}
	if n.FatGrams < 0 {
		errs = append(errs, FieldError{"fat_grams", "must not be negative"})
	}
	if n.FiberGrams != nil && *n.FiberGrams < 0 {
		errs = append(errs, FieldError{"fiber_grams", "must not be negative"})
	}
	if n.SugarGrams != nil && *n.SugarGrams < 0 {
		errs = append(errs, FieldError{"sugar_grams", "must not be negative"})
	}
	if n.PlantServings != nil && *n.PlantServings < 0 {
		errs = append(errs, FieldError{"plant_servings", "must not be negative"})
	}
	return errs
}

var intensityScale = map[string]bool{"low": true, "medium": true, "high": true}

func validateExercise(e *Exercise) []FieldError {
	if e == nil {
		return sectionRequired(StepExercise)
	}
	var errs []FieldError
	if e.StrengthSessions < 0 {
		errs = append(errs, FieldError{"strength_sessions", "must not be negative"})
	}
	if e.CardioSessions < 0 {
		errs = append(errs, FieldError{"cardio_sessions", "must not be negative"})
	}
	if !intensityScale[e.Intensity] {
		errs = append(errs, FieldError{"intensity", "must be one of low, medium, high"})
	}
	if e.AvgDurationMin != nil && *e.AvgDurationMin <= 0 {
		errs = append(errs, FieldError{"avg_duration_minutes", "must be greater than 0"})
	}
	return errs
}

func validateMentalHealth(m *MentalHealth) []FieldError {
	if m == nil {
		return sectionRequired(StepMentalHealth)
	}
	var errs []FieldError
	if m.StressLevel < 1 || m.StressLevel > 10 {
		errs = append(errs, FieldError{"stress_level", "must be between 1 and 10"})
	}
	return errs
}

func validateBiometrics(b *Biometrics) []FieldError {
	if b == nil {
		return nil // optional step
	}
	var errs []FieldError
	checkRange := func(field string, v *int, lo, hi int) {
		if v != nil && (*v < lo || *v > hi) {
			errs = append(errs, FieldError{field, fmt.Sprintf("must be between %d and %d", lo, hi)})
		}
	}
	checkRange("systolic_bp", b.SystolicBP, 50, 300)
	checkRange("diastolic_bp", b.DiastolicBP, 30, 200)
	checkRange("resting_heart_rate", b.RestingHeartRate, 20, 250)
	checkRange("cholesterol_total", b.CholesterolTotal, 50, 500)
	checkRange("cholesterol_hdl", b.CholesterolHDL, 10, 150)
	checkRange("cholesterol_ldl", b.CholesterolLDL, 10, 400)
	checkRange("triglycerides", b.Triglycerides, 10, 1000)
	// Blood pressure is measured as a pair; one half alone is a form error.
	if (b.SystolicBP == nil) != (b.DiastolicBP == nil) {
		errs = append(errs, FieldError{"diastolic_bp", "systolic and diastolic must be provided together"})
	}
	if b.BloodGlucose != nil && (*b.BloodGlucose < 20 || *b.BloodGlucose > 600) {
		errs = append(errs, FieldError{"blood_glucose", "must be between 20 and 600"})
	}
	if b.VO2Max != nil && (*b.VO2Max <= 0 || *b.VO2Max > 100) {
		errs = append(errs, FieldError{"vo2_max", "must be between 0 and 100"})
	}
	return errs
}
