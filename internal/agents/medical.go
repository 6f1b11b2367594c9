package agents

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/jpmellow/longevity-snap-02/internal/assessment"
)

// MedicalReasoningAgent covers internal medicine, sleep, and weight management.
// It grades the payload against clinical reference ranges, assesses algorithm
// bias and app-usage risk, and is the only agent that runs on every submission.
type MedicalReasoningAgent struct{}

func NewMedicalReasoningAgent() *MedicalReasoningAgent {
	return &MedicalReasoningAgent{}
}

func (a *MedicalReasoningAgent) Name() string { return AgentMedicalReasoning }

func (a *MedicalReasoningAgent) Analyze(p *assessment.Payload) Report {
	an := a.analyze(p)
	return Report{
		Agent:           AgentMedicalReasoning,
		Confidence:      a.confidence(an),
		Recommendations: a.recommendations(an),
		Insights:        a.insights(an),
		KeyFindings:     a.keyFindings(an),
	}
}

// healthFactor is a single identified risk or strength.
type healthFactor struct {
	Type        string
	Description string
	Evidence    string
}

type biasRisk struct {
	Type        string
	Level       string
	Description string
}

type biasAssessment struct {
	OverallRisk string
	Summary     string
	Risks       []biasRisk
}

type usageRisk struct {
	Type        string
	Level       string
	Description string
}

type completenessAssessment struct {
	Level            string
	Confidence       Confidence
	OverallPercent   int
	MissingRequired  []string
	MissingImportant []string
	Reasoning        string
}

type medicalAnalysis struct {
	completeness completenessAssessment
	risks        []healthFactor
	strengths    []healthFactor
	bias         biasAssessment
	usageRisks   []usageRisk

	bmi              float64
	hasBMI           bool
	sleepDuration    float64
	hasSleep         bool
	sleepQuality     string
	sleepConsistency string
	sleepMetricCount int
	stressLevel      int
	hasStress        bool
	weeklySessions   int
	strengthSessions int
	cardioSessions   int
	hasExercise      bool
	vo2Max           float64
	hasVO2           bool
	bloodPressure    string
	hasBP            bool
	heartRate        int
	hasHR            bool
}

func (an *medicalAnalysis) addRisk(typ, description, evidence string) {
	an.risks = append(an.risks, healthFactor{Type: typ, Description: description, Evidence: evidence})
}

func (an *medicalAnalysis) addStrength(typ, description, evidence string) {
	an.strengths = append(an.strengths, healthFactor{Type: typ, Description: description, Evidence: evidence})
}

func (an *medicalAnalysis) hasRisk(types ...string) bool {
	for _, r := range an.risks {
		for _, t := range types {
			if r.Type == t {
				return true
			}
		}
	}
	return false
}

func (a *MedicalReasoningAgent) analyze(p *assessment.Payload) *medicalAnalysis {
	an := &medicalAnalysis{
		completeness: assessCompleteness(p),
	}

	if bmi := p.Demographics.BMI(); bmi > 0 {
		an.bmi = math.Round(bmi*10) / 10
		an.hasBMI = true
		category := bmiCategory(an.bmi)
		if category == "normal" {
			an.addStrength("healthy_weight", "BMI within healthy range", EvidenceClinicalGuidelines)
		} else {
			an.addRisk(category, bmiDescription(category, an.bmi), EvidenceClinicalGuidelines)
		}
	}

	if p.Sleep != nil {
		a.analyzeSleep(p, an)
	}
	if p.MentalHealth != nil {
		a.analyzeStress(p.MentalHealth, an)
	}
	if p.Exercise != nil {
		a.analyzeActivity(p.Exercise, an)
	}
	if p.Biometrics != nil && p.Biometrics.VO2Max != nil {
		a.analyzeVO2Max(p, an)
	}
	if hasClinicalMetrics(p.Biometrics) {
		a.analyzeVitals(p.Biometrics, an)
	}

	an.bias = assessBiasRisks(p, an.completeness)
	an.usageRisks = assessAppUsageRisks(p, an.completeness)

	return an
}

func (a *MedicalReasoningAgent) analyzeSleep(p *assessment.Payload, an *medicalAnalysis) {
	s := p.Sleep
	age := 35
	if p.Demographics != nil && p.Demographics.Age > 0 {
		age = p.Demographics.Age
	}
	ageCategory := "adult"
	if age >= 65 {
		ageCategory = "older_adult"
	}
	guide := sleepDurationGuidelines[ageCategory]

	if s.AverageDuration > 0 {
		an.sleepDuration = s.AverageDuration
		an.hasSleep = true
		an.sleepMetricCount++

		switch {
		case s.AverageDuration >= guide.recommended[0] && s.AverageDuration < guide.recommended[1]:
			an.addStrength("optimal_sleep_duration",
				fmt.Sprintf("Sleep duration of %s hours is within the optimal range for %ss.", formatFloat(s.AverageDuration), ageCategory),
				EvidenceClinicalGuidelines)
		case inAnyRange(s.AverageDuration, guide.acceptable):
			// Acceptable but not optimal; neither a risk nor a strength.
		case s.AverageDuration < guide.recommended[0]:
			an.addRisk("insufficient_sleep",
				"Insufficient sleep duration increases risk of cognitive impairment, mood disorders, cardiovascular disease, and metabolic dysfunction.",
				EvidenceClinicalGuidelines)
		default:
			an.addRisk("excessive_sleep",
				"Excessive sleep duration may be associated with increased mortality risk and could indicate underlying health conditions.",
				EvidenceClinicalGuidelines)
		}
	}

	if s.Quality != "" {
		an.sleepQuality = s.Quality
		an.sleepMetricCount++
		switch s.Quality {
		case "low", "poor":
			an.addRisk("poor_sleep_quality",
				"Poor sleep quality is associated with daytime fatigue, cognitive impairment, and increased stress reactivity.",
				EvidenceSystematicReview)
		case "high", "excellent":
			an.addStrength("good_sleep_quality",
				"Good sleep quality supports cognitive function, emotional regulation, and physical recovery.",
				EvidenceSystematicReview)
		}
	}

	if s.BedtimeConsistency != "" {
		an.sleepConsistency = s.BedtimeConsistency
		an.sleepMetricCount++
		switch s.BedtimeConsistency {
		case "low", "poor":
			an.addRisk("irregular_sleep_schedule",
				"Irregular sleep schedule disrupts circadian rhythms and is associated with metabolic dysfunction and mood disorders.",
				EvidenceObservationalStudy)
		case "high", "excellent":
			an.addStrength("consistent_sleep_schedule",
				"Consistent sleep schedule supports healthy circadian rhythms and optimal hormone regulation.",
				EvidenceObservationalStudy)
		}
	}
}

func (a *MedicalReasoningAgent) analyzeStress(m *assessment.MentalHealth, an *medicalAnalysis) {
	an.stressLevel = m.StressLevel
	an.hasStress = m.StressLevel > 0

	switch {
	case m.StressLevel >= 7:
		an.addRisk("high_stress",
			"High stress levels are associated with increased risk of cardiovascular disease, immune dysfunction, and mental health disorders.",
			EvidenceExpertOpinion)
	case an.hasStress && m.StressLevel < 4:
		an.addStrength("low_stress",
			"Low stress levels support overall health and reduce risk of stress-related disorders.",
			EvidenceExpertOpinion)
	}

	if m.StressLevel >= 4 && hasAnyOf(m.StressSources, "financial", "work", "chronic_illness", "caregiving") {
		an.addRisk("chronic_stress",
			"Chronic stressors can lead to allostatic load and increased risk of stress-related disorders.",
			EvidenceSystematicReview)
	}

	if hasAnyOf(m.CopingMechanisms, "meditation", "exercise", "social_support", "therapy", "mindfulness") {
		an.addStrength("healthy_stress_coping",
			"Healthy stress coping mechanisms can buffer the negative effects of stress.",
			EvidenceSystematicReview)
	}
}

func (a *MedicalReasoningAgent) analyzeActivity(e *assessment.Exercise, an *medicalAnalysis) {
	an.hasExercise = true
	an.strengthSessions = e.StrengthSessions
	an.cardioSessions = e.CardioSessions
	an.weeklySessions = e.WeeklySessions()

	switch {
	case an.weeklySessions < 3:
		an.addRisk("insufficient_physical_activity",
			"Insufficient physical activity increases risk of cardiovascular disease, type 2 diabetes, and all-cause mortality.",
			EvidenceClinicalGuidelines)
	case an.weeklySessions >= 5:
		an.addStrength("regular_physical_activity",
			"Regular physical activity reduces risk of chronic diseases and supports overall health.",
			EvidenceClinicalGuidelines)
	default:
		an.addStrength("moderate_physical_activity",
			"Moderate physical activity provides health benefits, though increased frequency may offer additional benefits.",
			EvidenceClinicalGuidelines)
	}

	switch {
	case e.StrengthSessions >= 2 && e.CardioSessions >= 2:
		an.addStrength("balanced_exercise_routine",
			"Balanced exercise routine with both strength and cardiovascular components supports overall fitness.",
			EvidenceClinicalGuidelines)
	case e.StrengthSessions < 2 && e.CardioSessions >= 2:
		an.addRisk("insufficient_strength_training",
			"Insufficient strength training may lead to reduced muscle mass, bone density, and metabolic health.",
			EvidenceClinicalGuidelines)
	case e.StrengthSessions >= 2 && e.CardioSessions < 2:
		an.addRisk("insufficient_cardiovascular_exercise",
			"Insufficient cardiovascular exercise may lead to reduced cardiorespiratory fitness and increased cardiovascular risk.",
			EvidenceClinicalGuidelines)
	}
}

func (a *MedicalReasoningAgent) analyzeVO2Max(p *assessment.Payload, an *medicalAnalysis) {
	vo2 := *p.Biometrics.VO2Max
	an.vo2Max = vo2
	an.hasVO2 = true

	gender := ""
	if p.Demographics != nil {
		gender = p.Demographics.Gender
	}
	category := vo2Category(vo2, gender)
	description := vo2Description(category, vo2)

	switch category {
	case "poor", "fair":
		an.addRisk("low_cardiorespiratory_fitness", description, EvidenceSystematicReview)
	default:
		an.addStrength("good_cardiorespiratory_fitness", description, EvidenceSystematicReview)
	}
}

func (a *MedicalReasoningAgent) analyzeVitals(b *assessment.Biometrics, an *medicalAnalysis) {
	if b.SystolicBP != nil && b.DiastolicBP != nil {
		systolic, diastolic := *b.SystolicBP, *b.DiastolicBP
		an.bloodPressure = fmt.Sprintf("%d/%d mmHg", systolic, diastolic)
		an.hasBP = true

		category := bloodPressureCategory(systolic, diastolic)
		if category == "normal" {
			an.addStrength("normal_blood_pressure",
				"Normal blood pressure is associated with reduced cardiovascular risk.",
				EvidenceClinicalGuidelines)
		} else {
			an.addRisk(category,
				fmt.Sprintf("Blood pressure in the %s range increases risk of cardiovascular disease.", strings.ReplaceAll(category, "_", " ")),
				EvidenceClinicalGuidelines)
		}
	}

	if b.RestingHeartRate != nil {
		hr := *b.RestingHeartRate
		an.heartRate = hr
		an.hasHR = true

		category := heartRateCategory(hr)
		if category == "normal" {
			an.addStrength("normal_heart_rate",
				"Normal resting heart rate indicates good cardiovascular function.",
				EvidenceClinicalGuidelines)
		} else {
			an.addRisk(category,
				fmt.Sprintf("Resting heart rate in the %s range may indicate underlying cardiovascular issues.", category),
				EvidenceClinicalGuidelines)
		}
	}
}

func (a *MedicalReasoningAgent) recommendations(an *medicalAnalysis) []Recommendation {
	var recs []Recommendation

	if an.hasBMI {
		switch {
		case an.bmi < 18.5:
			recs = append(recs, Recommendation{
				Action:      "healthy_weight_gain",
				Category:    "weight_management",
				Priority:    PriorityMedium,
				Description: "Consult with a healthcare provider about healthy weight gain strategies",
				Reasoning:   "BMI below 18.5 indicates underweight status, which may be associated with nutritional deficiencies",
				Evidence:    EvidenceClinicalGuidelines,
			})
		case an.bmi >= 30:
			recs = append(recs, Recommendation{
				Action:      "obesity_management",
				Category:    "weight_management",
				Priority:    PriorityHigh,
				Description: "Consult with a healthcare provider about evidence-based weight management strategies",
				Reasoning:   "BMI of 30 or higher indicates obesity, which significantly increases risk of multiple chronic diseases",
				Evidence:    EvidenceClinicalGuidelines,
			})
		case an.bmi >= 25:
			recs = append(recs, Recommendation{
				Action:      "weight_management",
				Category:    "weight_management",
				Priority:    PriorityMedium,
				Description: "Consider implementing a moderate weight management plan focusing on balanced nutrition and regular physical activity",
				Reasoning:   "BMI between 25-30 indicates overweight status, which moderately increases risk of chronic diseases",
				Evidence:    EvidenceClinicalGuidelines,
			})
		}
	}

	if an.hasSleep && an.sleepDuration < 7 {
		recs = append(recs, Recommendation{
			Action:      "improve_sleep_duration",
			Category:    "sleep",
			Priority:    PriorityHigh,
			Description: "Aim for 7-9 hours of quality sleep per night for optimal health",
			Reasoning:   "Insufficient sleep duration increases risk of cognitive impairment, mood disorders, and metabolic dysfunction",
			Evidence:    EvidenceClinicalGuidelines,
		})
	}
	if an.sleepConsistency == "low" || an.sleepConsistency == "poor" {
		recs = append(recs, Recommendation{
			Action:      "improve_sleep_consistency",
			Category:    "sleep",
			Priority:    PriorityHigh,
			Description: "Maintain a consistent sleep and wake schedule, even on weekends",
			Reasoning:   "Irregular sleep schedules disrupt circadian rhythms and are associated with metabolic dysfunction",
			Evidence:    EvidenceObservationalStudy,
		})
	}

	if an.hasStress && an.stressLevel >= 7 {
		recs = append(recs, Recommendation{
			Action:      "stress_reduction",
			Category:    "stress_management",
			Priority:    PriorityHigh,
			Description: "Implement evidence-based stress management techniques such as mindfulness meditation, deep breathing exercises, or professional counseling",
			Reasoning:   "High stress levels are associated with increased risk of cardiovascular disease, immune dysfunction, and mental health disorders",
			Evidence:    EvidenceSystematicReview,
		})
	}

	if an.hasExercise {
		if an.weeklySessions < 3 {
			recs = append(recs, Recommendation{
				Action:      "increase_physical_activity",
				Category:    "physical_activity",
				Priority:    PriorityHigh,
				Description: "Gradually increase physical activity to at least 150 minutes of moderate-intensity exercise per week",
				Reasoning:   "Insufficient physical activity increases risk of cardiovascular disease, type 2 diabetes, and all-cause mortality",
				Evidence:    EvidenceClinicalGuidelines,
			})
		}
		if an.strengthSessions < 2 {
			recs = append(recs, Recommendation{
				Action:      "add_strength_training",
				Category:    "physical_activity",
				Priority:    PriorityMedium,
				Description: "Incorporate strength training exercises at least twice per week",
				Reasoning:   "Strength training improves muscle mass, bone density, and metabolic health",
				Evidence:    EvidenceClinicalGuidelines,
			})
		}
		if an.cardioSessions < 2 {
			recs = append(recs, Recommendation{
				Action:      "add_cardiovascular_exercise",
				Category:    "physical_activity",
				Priority:    PriorityMedium,
				Description: "Incorporate cardiovascular exercise at least twice per week",
				Reasoning:   "Cardiovascular exercise improves cardiorespiratory fitness and reduces cardiovascular risk",
				Evidence:    EvidenceClinicalGuidelines,
			})
		}
	}

	if an.hasRisk("low_cardiorespiratory_fitness") {
		recs = append(recs, Recommendation{
			Action:      "improve_cardiorespiratory_fitness",
			Category:    "cardiorespiratory_fitness",
			Priority:    PriorityHigh,
			Description: "Gradually increase aerobic exercise frequency and intensity to improve cardiorespiratory fitness",
			Reasoning:   "Low cardiorespiratory fitness is associated with increased mortality risk",
			Evidence:    EvidenceSystematicReview,
		})
	}

	if an.hasBP && an.hasRisk("elevated", "hypertension_stage_1", "hypertension_stage_2") {
		recs = append(recs,
			Recommendation{
				Action:      "monitor_blood_pressure",
				Category:    "cardiovascular_health",
				Priority:    PriorityHigh,
				Description: "Regularly monitor blood pressure and consult with a healthcare provider if consistently elevated",
				Reasoning:   "Elevated blood pressure increases risk of cardiovascular disease, stroke, and kidney disease",
				Evidence:    EvidenceClinicalGuidelines,
			},
			Recommendation{
				Action:      "dash_diet",
				Category:    "cardiovascular_health",
				Priority:    PriorityMedium,
				Description: "Consider following the DASH diet (Dietary Approaches to Stop Hypertension), which emphasizes fruits, vegetables, whole grains, and low-fat dairy",
				Reasoning:   "The DASH diet has been shown to reduce blood pressure in clinical trials",
				Evidence:    EvidenceRandomizedTrial,
			})
	}

	recs = append(recs, Recommendation{
		Action:      "regular_checkup",
		Category:    "preventive_care",
		Priority:    PriorityMedium,
		Description: "Schedule a regular health check-up with your primary care physician",
		Reasoning:   "Regular preventive care can identify health issues early when they are most treatable",
		Evidence:    EvidenceClinicalGuidelines,
	})

	if an.completeness.Level == "minimal" || an.completeness.Level == "partial" {
		recs = append(recs, Recommendation{
			Action:      "complete_health_profile",
			Category:    "data_collection",
			Priority:    PriorityHigh,
			Description: "Complete your health profile with additional metrics for more accurate assessment",
			Reasoning:   fmt.Sprintf("Current data completeness is %s (%d%%)", an.completeness.Level, an.completeness.OverallPercent),
			Evidence:    EvidenceExpertOpinion,
		})
	}

	for _, risk := range an.usageRisks {
		if risk.Level == "high" {
			recs = append(recs, Recommendation{
				Action:      "seek_medical_advice",
				Category:    "medical_consultation",
				Priority:    PriorityHigh,
				Description: "Consult with a healthcare provider before implementing any health recommendations from this app",
				Reasoning:   "Your health profile indicates conditions that require professional medical evaluation",
				Evidence:    EvidenceExpertOpinion,
			})
			break
		}
	}

	return recs
}

func (a *MedicalReasoningAgent) insights(an *medicalAnalysis) []Insight {
	var insights []Insight

	riskCount, strengthCount := len(an.risks), len(an.strengths)
	var status string
	switch {
	case riskCount == 0 && strengthCount >= 3:
		status = "excellent"
	case riskCount <= 1 && strengthCount >= 2:
		status = "good"
	case riskCount <= 3:
		status = "fair"
	default:
		status = "concerning"
	}
	insights = append(insights, Insight{
		Type:        "overall_health_status",
		Description: fmt.Sprintf("Overall health status appears to be %s based on available data", status),
		Confidence:  an.completeness.Confidence,
		Reasoning:   fmt.Sprintf("Assessment based on %d identified health risks and %d health strengths", riskCount, strengthCount),
		Evidence:    EvidenceExpertOpinion,
	})

	if an.hasBMI {
		var category string
		switch {
		case an.bmi < 18.5:
			category = "underweight"
		case an.bmi < 25:
			category = "healthy weight"
		case an.bmi < 30:
			category = "overweight"
		default:
			category = "obese"
		}
		insights = append(insights, Insight{
			Type:        "bmi",
			Description: fmt.Sprintf("BMI of %s indicates %s", formatFloat(an.bmi), category),
			Confidence:  ConfidenceHigh,
			Reasoning:   "BMI calculation based on reported height and weight",
			Evidence:    EvidenceClinicalGuidelines,
		})
	}

	if an.hasSleep || an.sleepQuality != "" || an.sleepConsistency != "" {
		var issues []string
		if an.hasSleep && an.sleepDuration < 7 {
			issues = append(issues, "insufficient duration")
		}
		if an.sleepQuality == "low" || an.sleepQuality == "poor" {
			issues = append(issues, "poor quality")
		}
		if an.sleepConsistency == "low" || an.sleepConsistency == "poor" {
			issues = append(issues, "irregular schedule")
		}
		conf := ConfidenceLow
		if an.sleepMetricCount >= 2 {
			conf = ConfidenceMedium
		}
		if len(issues) > 0 {
			insights = append(insights, Insight{
				Type:        "sleep_pattern",
				Description: fmt.Sprintf("Sleep pattern shows %s", strings.Join(issues, ", ")),
				Confidence:  conf,
				Reasoning:   "Sleep quality and consistency significantly impact overall health and longevity",
				Evidence:    EvidenceSystematicReview,
			})
		} else {
			insights = append(insights, Insight{
				Type:        "sleep_pattern",
				Description: "Sleep pattern appears healthy",
				Confidence:  conf,
				Reasoning:   "Adequate sleep duration and quality support cognitive function and physical recovery",
				Evidence:    EvidenceSystematicReview,
			})
		}
	}

	if an.hasExercise {
		var level string
		switch {
		case an.weeklySessions < 3:
			level = "insufficient"
		case an.weeklySessions < 5:
			level = "adequate"
		default:
			level = "optimal"
		}
		insights = append(insights, Insight{
			Type:        "physical_activity",
			Description: fmt.Sprintf("Physical activity level is %s with %d sessions per week", level, an.weeklySessions),
			Confidence:  ConfidenceMedium,
			Reasoning:   "Regular physical activity reduces risk of chronic diseases and supports longevity",
			Evidence:    EvidenceClinicalGuidelines,
		})
	}

	if an.hasStress {
		var impact string
		switch {
		case an.stressLevel >= 7:
			impact = "significant negative"
		case an.stressLevel >= 4:
			impact = "moderate"
		default:
			impact = "minimal"
		}
		insights = append(insights, Insight{
			Type:        "stress_impact",
			Description: fmt.Sprintf("Stress appears to have a %s impact on health", impact),
			Confidence:  ConfidenceMedium,
			Reasoning:   "Chronic stress affects cardiovascular, immune, and metabolic health",
			Evidence:    EvidenceSystematicReview,
		})
	}

	if an.hasBP || an.hasHR || an.hasVO2 {
		var cardioRisks []string
		if an.hasBP && an.hasRisk("elevated", "hypertension_stage_1", "hypertension_stage_2") {
			cardioRisks = append(cardioRisks, "elevated blood pressure")
		}
		if an.hasHR && an.hasRisk("bradycardia", "tachycardia") {
			cardioRisks = append(cardioRisks, "abnormal resting heart rate")
		}
		if an.hasVO2 && an.hasRisk("low_cardiorespiratory_fitness") {
			cardioRisks = append(cardioRisks, "low cardiorespiratory fitness")
		}
		if len(cardioRisks) > 0 {
			insights = append(insights, Insight{
				Type:        "cardiovascular_health",
				Description: fmt.Sprintf("Cardiovascular health shows risk factors: %s", strings.Join(cardioRisks, ", ")),
				Confidence:  ConfidenceMedium,
				Reasoning:   "Cardiovascular health is a key determinant of longevity",
				Evidence:    EvidenceClinicalGuidelines,
			})
		} else {
			insights = append(insights, Insight{
				Type:        "cardiovascular_health",
				Description: "Cardiovascular health indicators appear within normal ranges",
				Confidence:  ConfidenceMedium,
				Reasoning:   "Healthy cardiovascular metrics are associated with reduced disease risk and increased longevity",
				Evidence:    EvidenceClinicalGuidelines,
			})
		}
	}

	if an.bias.OverallRisk != "low" {
		insights = append(insights, Insight{
			Type:        "algorithm_bias",
			Description: an.bias.Summary,
			Confidence:  ConfidenceMedium,
			Reasoning:   "Health algorithms may have limitations when applied to certain populations or unusual health profiles",
			Evidence:    EvidenceExpertOpinion,
		})
	}

	insights = append(insights, Insight{
		Type:        "data_completeness",
		Description: fmt.Sprintf("Data completeness is %s (%d%%)", an.completeness.Level, an.completeness.OverallPercent),
		Confidence:  ConfidenceHigh,
		Reasoning:   an.completeness.Reasoning,
		Evidence:    EvidenceExpertOpinion,
	})

	return insights
}

func (a *MedicalReasoningAgent) keyFindings(an *medicalAnalysis) []string {
	findings := []string{
		fmt.Sprintf("Data completeness: %s (%d%%)", an.completeness.Level, an.completeness.OverallPercent),
	}
	if an.hasBMI {
		findings = append(findings, fmt.Sprintf("BMI: %s", formatFloat(an.bmi)))
	}
	if an.hasSleep {
		findings = append(findings, fmt.Sprintf("Sleep duration: %s hours", formatFloat(an.sleepDuration)))
	}
	if an.hasExercise {
		findings = append(findings, fmt.Sprintf("Physical activity: %d sessions/week", an.weeklySessions))
	}
	if an.hasStress {
		findings = append(findings, fmt.Sprintf("Stress level: %d/10", an.stressLevel))
	}
	if an.hasVO2 {
		findings = append(findings, fmt.Sprintf("VO2 max: %s ml/kg/min", formatFloat(an.vo2Max)))
	}
	if an.hasBP {
		findings = append(findings, fmt.Sprintf("Blood pressure: %s", an.bloodPressure))
	}
	if an.hasHR {
		findings = append(findings, fmt.Sprintf("Heart rate: %d bpm", an.heartRate))
	}
	for _, r := range an.risks {
		findings = append(findings, fmt.Sprintf("Health risk: %s", r.Type))
	}
	for _, s := range an.strengths {
		findings = append(findings, fmt.Sprintf("Health strength: %s", s.Type))
	}
	findings = append(findings, fmt.Sprintf("Algorithm bias risk: %s", an.bias.OverallRisk))
	for _, risk := range an.usageRisks {
		if risk.Level == "high" {
			findings = append(findings, fmt.Sprintf("App usage high risk: %s", risk.Type))
			break
		}
	}
	return findings
}

func (a *MedicalReasoningAgent) confidence(an *medicalAnalysis) Confidence {
	var base Confidence
	switch an.completeness.Level {
	case "complete":
		base = ConfidenceHigh
	case "substantial", "partial":
		base = ConfidenceMedium
	default:
		base = ConfidenceLow
	}

	switch {
	case an.bias.OverallRisk == "high" && base == ConfidenceHigh:
		return ConfidenceMedium
	case an.bias.OverallRisk == "high" && base == ConfidenceMedium:
		return ConfidenceLow
	case an.bias.OverallRisk == "medium" && base == ConfidenceHigh:
		return ConfidenceMedium
	}
	return base
}

// Shared clinical reference ranges.

type sleepGuideline struct {
	recommended [2]float64
	acceptable  [][2]float64
}

var sleepDurationGuidelines = map[string]sleepGuideline{
	"adult":       {recommended: [2]float64{7, 9}, acceptable: [][2]float64{{6, 7}, {9, 10}}},
	"older_adult": {recommended: [2]float64{7, 8}, acceptable: [][2]float64{{5, 7}, {8, 9}}},
}

func inAnyRange(v float64, ranges [][2]float64) bool {
	for _, r := range ranges {
		if v >= r[0] && v < r[1] {
			return true
		}
	}
	return false
}

func bmiCategory(bmi float64) string {
	switch {
	case bmi < 18.5:
		return "underweight"
	case bmi < 25:
		return "normal"
	case bmi < 30:
		return "overweight"
	case bmi < 35:
		return "obese_class_1"
	case bmi < 40:
		return "obese_class_2"
	default:
		return "obese_class_3"
	}
}

func bmiDescription(category string, bmi float64) string {
	v := formatFloat(bmi)
	switch category {
	case "underweight":
		return fmt.Sprintf("BMI of %s indicates underweight status, which may be associated with nutritional deficiencies and reduced immune function.", v)
	case "normal":
		return fmt.Sprintf("BMI of %s is within the healthy weight range, associated with lower risk of weight-related health issues.", v)
	case "overweight":
		return fmt.Sprintf("BMI of %s indicates overweight status, which may increase risk for conditions like type 2 diabetes and cardiovascular disease.", v)
	case "obese_class_1":
		return fmt.Sprintf("BMI of %s indicates class 1 obesity, associated with increased risk of cardiovascular disease, type 2 diabetes, and all-cause mortality.", v)
	case "obese_class_2":
		return fmt.Sprintf("BMI of %s indicates class 2 obesity, associated with high risk of metabolic syndrome, sleep apnea, and joint problems.", v)
	default:
		return fmt.Sprintf("BMI of %s indicates class 3 obesity (severe), associated with very high risk of multiple comorbidities and reduced life expectancy.", v)
	}
}

// bloodPressureCategory classifies per AHA cut points. When systolic and
// diastolic disagree, the higher category wins.
func bloodPressureCategory(systolic, diastolic int) string {
	switch {
	case systolic >= 140 || diastolic >= 90:
		return "hypertension_stage_2"
	case systolic >= 130 || diastolic >= 80:
		return "hypertension_stage_1"
	case systolic >= 120:
		return "elevated"
	default:
		return "normal"
	}
}

func heartRateCategory(bpm int) string {
	switch {
	case bpm < 60:
		return "bradycardia"
	case bpm < 100:
		return "normal"
	default:
		return "tachycardia"
	}
}

func vo2Category(vo2 float64, gender string) string {
	var cuts [4]float64
	switch normalizeGender(gender) {
	case "male":
		cuts = [4]float64{35, 42, 46, 56}
	case "female":
		cuts = [4]float64{28, 34, 40, 50}
	default:
		// Unknown gender: midpoint of the male and female cut points.
		cuts = [4]float64{31.5, 38, 43, 53}
	}
	switch {
	case vo2 < cuts[0]:
		return "poor"
	case vo2 < cuts[1]:
		return "fair"
	case vo2 < cuts[2]:
		return "good"
	case vo2 < cuts[3]:
		return "excellent"
	default:
		return "superior"
	}
}

func vo2Description(category string, vo2 float64) string {
	v := formatFloat(vo2)
	switch category {
	case "poor":
		return fmt.Sprintf("VO2 max of %s ml/kg/min indicates poor cardiorespiratory fitness, associated with increased mortality risk.", v)
	case "fair":
		return fmt.Sprintf("VO2 max of %s ml/kg/min indicates fair cardiorespiratory fitness, with room for improvement.", v)
	case "good":
		return fmt.Sprintf("VO2 max of %s ml/kg/min indicates good cardiorespiratory fitness, associated with reduced health risks.", v)
	case "excellent":
		return fmt.Sprintf("VO2 max of %s ml/kg/min indicates excellent cardiorespiratory fitness, associated with significant health benefits.", v)
	default:
		return fmt.Sprintf("VO2 max of %s ml/kg/min indicates superior cardiorespiratory fitness, associated with optimal health outcomes.", v)
	}
}

func normalizeGender(g string) string {
	switch strings.ToLower(strings.TrimSpace(g)) {
	case "male", "m":
		return "male"
	case "female", "f":
		return "female"
	default:
		return ""
	}
}

// Completeness and risk screens.

func assessCompleteness(p *assessment.Payload) completenessAssessment {
	type presence struct {
		name    string
		present bool
	}

	d := p.Demographics
	required := []presence{
		{"age", d != nil && d.Age > 0},
		{"gender", d != nil && d.Gender != ""},
		{"height", d != nil && d.HeightCM > 0},
		{"weight", d != nil && d.WeightKG > 0},
	}
	important := []presence{
		{"health_metrics", hasClinicalMetrics(p.Biometrics)},
		{"sleep_data", p.Sleep != nil},
		{"exercise_data", p.Exercise != nil},
		{"stress_data", p.MentalHealth != nil},
	}

	var requiredCount, importantCount int
	var missingRequired, missingImportant []string
	for _, f := range required {
		if f.present {
			requiredCount++
		} else {
			missingRequired = append(missingRequired, f.name)
		}
	}
	for _, f := range important {
		if f.present {
			importantCount++
		} else {
			missingImportant = append(missingImportant, f.name)
		}
	}

	requiredPct := float64(requiredCount) / float64(len(required)) * 100
	importantPct := float64(importantCount) / float64(len(important)) * 100
	overallPct := int(math.Round(float64(requiredCount+importantCount) / float64(len(required)+len(important)) * 100))

	var level string
	var conf Confidence
	switch {
	case requiredPct == 100 && importantPct >= 75:
		level = "complete"
		conf = ConfidenceHigh
	case requiredPct >= 75 && importantPct >= 50:
		level = "substantial"
		conf = ConfidenceMedium
	case requiredPct >= 50:
		level = "partial"
		conf = ConfidenceMedium
	default:
		level = "minimal"
		conf = ConfidenceLow
	}

	reasoning := fmt.Sprintf("Data completeness assessment: %s (%d%%). ", level, overallPct)
	if len(missingRequired) > 0 {
		reasoning += fmt.Sprintf("Missing required fields: %s. ", strings.Join(missingRequired, ", "))
	}
	if len(missingImportant) > 0 {
		reasoning += fmt.Sprintf("Missing important fields: %s. ", strings.Join(missingImportant, ", "))
	}

	return completenessAssessment{
		Level:            level,
		Confidence:       conf,
		OverallPercent:   overallPct,
		MissingRequired:  missingRequired,
		MissingImportant: missingImportant,
		Reasoning:        reasoning,
	}
}

func assessBiasRisks(p *assessment.Payload, completeness completenessAssessment) biasAssessment {
	var risks []biasRisk

	if p.Demographics != nil {
		if p.Demographics.Gender != "" && normalizeGender(p.Demographics.Gender) == "" {
			risks = append(risks, biasRisk{
				Type:        "gender_representation",
				Level:       "medium",
				Description: "Non-binary gender data may not be well-represented in medical reference ranges and guidelines.",
			})
		}
		if age := p.Demographics.Age; age > 0 && (age < 18 || age > 80) {
			risks = append(risks, biasRisk{
				Type:        "age_representation",
				Level:       "medium",
				Description: fmt.Sprintf("Age %d may be under-represented in reference data for some health metrics.", age),
			})
		}
	}

	if bmi := p.Demographics.BMI(); bmi > 0 {
		if bmi < 18.5 || bmi > 35 {
			risks = append(risks, biasRisk{
				Type:        "bmi_representation",
				Level:       "medium",
				Description: "Extreme BMI values may not be well-represented in reference data for some health metrics.",
			})
		}
		if p.Exercise != nil && (p.Exercise.StrengthSessions >= 4 || p.Exercise.CardioSessions >= 5) && bmi >= 25 {
			risks = append(risks, biasRisk{
				Type:        "athletic_body_composition",
				Level:       "high",
				Description: "BMI may overestimate health risks in athletic individuals with high muscle mass.",
			})
		}
	}

	if completeness.Level == "minimal" || completeness.Level == "partial" {
		risks = append(risks, biasRisk{
			Type:        "incomplete_data",
			Level:       "high",
			Description: "Incomplete data may lead to biased assessments due to missing context.",
		})
	}

	result := biasAssessment{Risks: risks}
	switch {
	case len(risks) == 0:
		result.OverallRisk = "low"
		result.Summary = "No significant algorithm bias risks identified based on available data."
	case anyBiasLevel(risks, "high"):
		result.OverallRisk = "high"
		result.Summary = "High risk of algorithm bias detected. Recommendations should be interpreted with caution."
	case anyBiasLevel(risks, "medium"):
		result.OverallRisk = "medium"
		result.Summary = "Moderate risk of algorithm bias detected. Consider individual context when interpreting recommendations."
	default:
		result.OverallRisk = "low"
		result.Summary = "Low risk of algorithm bias detected."
	}
	return result
}

func anyBiasLevel(risks []biasRisk, level string) bool {
	for _, r := range risks {
		if r.Level == level {
			return true
		}
	}
	return false
}

func assessAppUsageRisks(p *assessment.Payload, completeness completenessAssessment) []usageRisk {
	var risks []usageRisk

	if b := p.Biometrics; b != nil {
		if (b.SystolicBP != nil && *b.SystolicBP >= 180) || (b.DiastolicBP != nil && *b.DiastolicBP >= 120) {
			risks = append(risks, usageRisk{
				Type:        "severe_hypertension",
				Level:       "high",
				Description: "Severe hypertension detected. User should seek immediate medical attention rather than relying on app recommendations.",
			})
		}
		if b.RestingHeartRate != nil && (*b.RestingHeartRate < 40 || *b.RestingHeartRate > 120) {
			risks = append(risks, usageRisk{
				Type:        "abnormal_heart_rate",
				Level:       "high",
				Description: "Abnormal resting heart rate detected. User should consult a healthcare provider rather than relying on app recommendations.",
			})
		}
	}

	if bmi := p.Demographics.BMI(); bmi > 0 && (bmi < 16 || bmi > 40) {
		risks = append(risks, usageRisk{
			Type:        "extreme_bmi",
			Level:       "high",
			Description: "Extreme BMI detected. Weight management should be supervised by healthcare professionals rather than app recommendations alone.",
		})
	}

	if s := p.Sleep; s != nil {
		if s.AverageDuration > 0 && s.AverageDuration < 4 {
			risks = append(risks, usageRisk{
				Type:        "severe_sleep_deprivation",
				Level:       "medium",
				Description: "Severe sleep deprivation detected. User should consult a healthcare provider for proper evaluation.",
			})
		}
		if hasAnyOf(s.Issues, "sleep_apnea", "insomnia", "narcolepsy") {
			risks = append(risks, usageRisk{
				Type:        "sleep_disorder",
				Level:       "medium",
				Description: "Potential sleep disorder detected. User should consult a sleep specialist for proper diagnosis and treatment.",
			})
		}
	}

	if p.MentalHealth != nil && p.MentalHealth.StressLevel >= 9 {
		risks = append(risks, usageRisk{
			Type:        "severe_stress",
			Level:       "medium",
			Description: "Severe stress detected. User may benefit from professional mental health support in addition to app recommendations.",
		})
	}

	if completeness.Level == "minimal" {
		risks = append(risks, usageRisk{
			Type:        "insufficient_data",
			Level:       "medium",
			Description: "Insufficient data for reliable recommendations. User should provide more complete health information or consult healthcare providers.",
		})
	}

	return risks
}

func hasClinicalMetrics(b *assessment.Biometrics) bool {
	if b == nil {
		return false
	}
	return b.SystolicBP != nil || b.DiastolicBP != nil || b.RestingHeartRate != nil ||
		b.BloodGlucose != nil || b.CholesterolTotal != nil || b.CholesterolHDL != nil ||
		b.CholesterolLDL != nil || b.Triglycerides != nil
}

func hasAnyOf(values []string, wanted ...string) bool {
	for _, v := range values {
		for _, w := range wanted {
			if v == w {
				return true
			}
		}
	}
	return false
}

// formatFloat renders v without trailing zeros ("7.5", "25").
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
