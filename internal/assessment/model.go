package assessment

// Payload is a submitted questionnaire. Each section maps to one step of the
// intake form; optional sections are pointers so an omitted step is
// distinguishable from a zero-valued one.
type Payload struct {
	Demographics   *Demographics `json:"demographics"`
	Goals          *Goals        `json:"goals"`
	Sleep          *Sleep        `json:"sleep"`
	Nutrition      *Nutrition    `json:"nutrition"`
	Exercise       *Exercise     `json:"exercise"`
	MentalHealth   *MentalHealth `json:"mental_health"`
	Biometrics     *Biometrics   `json:"biometrics,omitempty"`
	MedicalHistory []string      `json:"medical_history,omitempty"`
}

type Demographics struct {
	Age      int     `json:"age"`
	Gender   string  `json:"gender"`
	HeightCM float64 `json:"height_cm"`
	WeightKG float64 `json:"weight_kg"`
}

// BMI returns weight/height² or 0 when demographics are incomplete.
func (d *Demographics) BMI() float64 {
	if d == nil || d.HeightCM <= 0 || d.WeightKG <= 0 {
		return 0
	}
	heightM := d.HeightCM / 100
	return d.WeightKG / (heightM * heightM)
}

type Goals struct {
	Goals            []string `json:"goals"`
	MotivationDriver string   `json:"motivation_driver,omitempty"`
	Diet             string   `json:"diet,omitempty"`
	ExerciseTime     string   `json:"exercise_time,omitempty"`
	SleepTime        string   `json:"sleep_time,omitempty"`
	WakeTime         string   `json:"wake_time,omitempty"`
}

type Sleep struct {
	AverageDuration    float64  `json:"average_duration"`
	Quality            string   `json:"quality"`
	BedtimeConsistency string   `json:"bedtime_consistency"`
	Issues             []string `json:"issues,omitempty"`
	Narrative          string   `json:"narrative,omitempty"`
}

type Nutrition struct {
	Calories       int      `json:"calories"`
	ProteinGrams   float64  `json:"protein_grams"`
	CarbGrams      float64  `json:"carb_grams"`
	FatGrams       float64  `json:"fat_grams"`
	DetailedMacros bool     `json:"detailed_macros"`
	FiberGrams     *float64 `json:"fiber_grams,omitempty"`
	SugarGrams     *float64 `json:"sugar_grams,omitempty"`
	WaterLiters    *float64 `json:"water_liters,omitempty"`
	PlantServings  *int     `json:"plant_servings,omitempty"`
}

type Exercise struct {
	StrengthSessions int      `json:"strength_sessions"`
	CardioSessions   int      `json:"cardio_sessions"`
	Intensity        string   `json:"intensity"`
	AvgDurationMin   *int     `json:"avg_duration_minutes,omitempty"`
	Types            []string `json:"types,omitempty"`
}

// WeeklySessions is strength plus cardio sessions per week.
func (e *Exercise) WeeklySessions() int {
	if e == nil {
		return 0
	}
	return e.StrengthSessions + e.CardioSessions
}

type MentalHealth struct {
	StressLevel      int      `json:"stress_level"`
	StressSources    []string `json:"stress_sources,omitempty"`
	CopingMechanisms []string `json:"coping_mechanisms,omitempty"`
}

// Biometrics is the optional vitals/labs step. Every field is optional but
// range-checked when present.
type Biometrics struct {
	SystolicBP       *int     `json:"systolic_bp,omitempty"`
	DiastolicBP      *int     `json:"diastolic_bp,omitempty"`
	RestingHeartRate *int     `json:"resting_heart_rate,omitempty"`
	BloodGlucose     *float64 `json:"blood_glucose,omitempty"`
	CholesterolTotal *int     `json:"cholesterol_total,omitempty"`
	CholesterolHDL   *int     `json:"cholesterol_hdl,omitempty"`
	CholesterolLDL   *int     `json:"cholesterol_ldl,omitempty"`
	Triglycerides    *int     `json:"triglycerides,omitempty"`
	VO2Max           *float64 `json:"vo2_max,omitempty"`
}
