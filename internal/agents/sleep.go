package agents

import (
	"fmt"
	"strings"

	"github.com/jpmellow/longevity-snap-02/internal/assessment"
)

// SleepAgent analyzes sleep patterns and their interaction with stress and
// exercise habits.
type SleepAgent struct{}

func NewSleepAgent() *SleepAgent { return &SleepAgent{} }

func (a *SleepAgent) Name() string { return AgentSleep }

func (a *SleepAgent) Analyze(p *assessment.Payload) Report {
	an := a.analyze(p)
	return Report{
		Agent:           AgentSleep,
		Confidence:      a.confidence(an),
		Recommendations: a.recommendations(an),
		Insights:        a.insights(an),
		KeyFindings:     a.keyFindings(an),
	}
}

type sleepAnalysis struct {
	duration     float64
	hasDuration  bool
	quality      string
	consistency  string
	issues       []string
	strengths    []string
	completeness string
}

func (a *SleepAgent) analyze(p *assessment.Payload) *sleepAnalysis {
	an := &sleepAnalysis{completeness: "partial"}

	s := p.Sleep
	if s == nil {
		an.completeness = "minimal"
		return an
	}

	if s.AverageDuration > 0 {
		an.duration = s.AverageDuration
		an.hasDuration = true
		switch {
		case s.AverageDuration < 6:
			an.issues = append(an.issues, "severe_sleep_deprivation")
		case s.AverageDuration < 7:
			an.issues = append(an.issues, "mild_sleep_deprivation")
		case s.AverageDuration > 9:
			an.issues = append(an.issues, "excessive_sleep")
		default:
			an.strengths = append(an.strengths, "optimal_sleep_duration")
		}
	}

	if s.Quality != "" {
		an.quality = s.Quality
		switch s.Quality {
		case "low", "poor":
			an.issues = append(an.issues, "poor_sleep_quality")
		case "high", "excellent":
			an.strengths = append(an.strengths, "high_sleep_quality")
		}
	}

	if s.BedtimeConsistency != "" {
		an.consistency = s.BedtimeConsistency
		switch s.BedtimeConsistency {
		case "low", "poor":
			an.issues = append(an.issues, "irregular_sleep_schedule")
		case "high", "excellent":
			an.strengths = append(an.strengths, "consistent_sleep_schedule")
		}
	}

	an.issues = append(an.issues, s.Issues...)

	if p.MentalHealth != nil && p.MentalHealth.StressLevel >= 7 {
		an.issues = append(an.issues, "stress_related_sleep_issues")
	}

	if p.Exercise != nil {
		if p.Exercise.WeeklySessions() >= 3 {
			an.strengths = append(an.strengths, "exercise_supported_sleep")
		} else {
			an.issues = append(an.issues, "insufficient_exercise_for_sleep")
		}
	}

	requiredCount := 0
	if s.AverageDuration > 0 {
		requiredCount++
	}
	if s.Quality != "" {
		requiredCount++
	}
	if s.BedtimeConsistency != "" {
		requiredCount++
	}
	optionalCount := 0
	if len(s.Issues) > 0 {
		optionalCount++
	}
	if hasSleepPreferences(p.Goals) {
		optionalCount++
	}
	if p.MentalHealth != nil {
		optionalCount++
	}
	if p.Exercise != nil {
		optionalCount++
	}

	switch {
	case requiredCount == 3 && optionalCount >= 2:
		an.completeness = "complete"
	case requiredCount >= 2 && optionalCount >= 1:
		an.completeness = "substantial"
	case requiredCount < 2:
		an.completeness = "minimal"
	}

	return an
}

func (a *SleepAgent) recommendations(an *sleepAnalysis) []Recommendation {
	if an.completeness == "minimal" {
		return []Recommendation{{
			Action:      "track_sleep_data",
			Category:    "sleep",
			Priority:    PriorityHigh,
			Description: "Start tracking your sleep duration, quality, and consistency for better insights",
		}}
	}

	var recs []Recommendation

	if an.hasDuration {
		switch {
		case an.duration < 6:
			recs = append(recs, Recommendation{
				Action:      "increase_sleep_duration",
				Category:    "sleep",
				Priority:    PriorityHigh,
				Description: "Significantly increase sleep duration to at least 7 hours per night",
			})
		case an.duration < 7:
			recs = append(recs, Recommendation{
				Action:      "increase_sleep_duration",
				Category:    "sleep",
				Priority:    PriorityMedium,
				Description: "Slightly increase sleep duration to reach 7-8 hours per night",
			})
		case an.duration > 9:
			recs = append(recs, Recommendation{
				Action:      "optimize_sleep_duration",
				Category:    "sleep",
				Priority:    PriorityLow,
				Description: "Consider reducing sleep duration to 7-9 hours for optimal rest",
			})
		}
	}

	if hasAnyOf(an.issues, "irregular_sleep_schedule") {
		recs = append(recs, Recommendation{
			Action:      "maintain_consistent_sleep_schedule",
			Category:    "sleep",
			Priority:    PriorityHigh,
			Description: "Maintain a consistent sleep and wake time, even on weekends",
		})
	}

	if hasAnyOf(an.issues, "poor_sleep_quality") {
		recs = append(recs,
			Recommendation{
				Action:      "improve_sleep_environment",
				Category:    "sleep",
				Priority:    PriorityHigh,
				Description: "Optimize your bedroom for sleep: dark, quiet, cool, and comfortable",
			},
			Recommendation{
				Action:      "establish_bedtime_routine",
				Category:    "sleep",
				Priority:    PriorityMedium,
				Description: "Establish a relaxing pre-sleep routine to signal your body it's time to rest",
			})
	}

	if hasAnyOf(an.issues, "stress_related_sleep_issues") {
		recs = append(recs, Recommendation{
			Action:      "stress_management_for_sleep",
			Category:    "sleep",
			Priority:    PriorityHigh,
			Description: "Practice relaxation techniques before bed such as deep breathing or meditation",
		})
	}

	if hasAnyOf(an.issues, "insufficient_exercise_for_sleep") {
		recs = append(recs, Recommendation{
			Action:      "exercise_for_sleep",
			Category:    "sleep",
			Priority:    PriorityMedium,
			Description: "Incorporate regular physical activity, but avoid vigorous exercise close to bedtime",
		})
	}

	recs = append(recs,
		Recommendation{
			Action:      "limit_screen_time",
			Category:    "sleep",
			Priority:    PriorityMedium,
			Description: "Avoid screens (phones, tablets, computers) at least 1 hour before bedtime",
		},
		Recommendation{
			Action:      "limit_stimulants",
			Category:    "sleep",
			Priority:    PriorityMedium,
			Description: "Avoid caffeine and alcohol close to bedtime",
		})

	return recs
}

func (a *SleepAgent) insights(an *sleepAnalysis) []Insight {
	var insights []Insight

	status := "optimal"
	switch {
	case len(an.issues) > 2:
		status = "poor"
	case len(an.issues) > 0:
		status = "suboptimal"
	}
	patternConf := ConfidenceHigh
	if an.completeness == "partial" {
		patternConf = ConfidenceMedium
	}
	insights = append(insights, Insight{
		Type:        "sleep_pattern",
		Description: fmt.Sprintf("Overall sleep pattern is %s", status),
		Confidence:  patternConf,
	})

	if an.hasDuration {
		category := "optimal"
		switch {
		case an.duration < 6:
			category = "severely insufficient"
		case an.duration < 7:
			category = "slightly insufficient"
		case an.duration > 9:
			category = "excessive"
		}
		insights = append(insights, Insight{
			Type:        "sleep_duration",
			Description: fmt.Sprintf("Average sleep duration of %s hours is %s", formatFloat(an.duration), category),
			Confidence:  ConfidenceHigh,
		})
	}

	if an.consistency != "" {
		insights = append(insights, Insight{
			Type:        "sleep_consistency",
			Description: fmt.Sprintf("Sleep schedule consistency is %s", an.consistency),
			Confidence:  ConfidenceHigh,
		})
	}

	if len(an.issues) > 0 {
		insights = append(insights, Insight{
			Type:        "sleep_issues",
			Description: fmt.Sprintf("Identified sleep issues: %s", strings.Join(an.issues, ", ")),
			Confidence:  ConfidenceMedium,
		})
	}

	if len(an.strengths) > 0 {
		insights = append(insights, Insight{
			Type:        "sleep_strengths",
			Description: fmt.Sprintf("Positive sleep aspects: %s", strings.Join(an.strengths, ", ")),
			Confidence:  ConfidenceMedium,
		})
	}

	return insights
}

func (a *SleepAgent) keyFindings(an *sleepAnalysis) []string {
	var findings []string
	if an.hasDuration {
		findings = append(findings, fmt.Sprintf("Average sleep duration: %s hours", formatFloat(an.duration)))
	}
	if an.quality != "" {
		findings = append(findings, fmt.Sprintf("Sleep quality: %s", an.quality))
	}
	if an.consistency != "" {
		findings = append(findings, fmt.Sprintf("Sleep schedule consistency: %s", an.consistency))
	}
	for _, issue := range an.issues {
		findings = append(findings, fmt.Sprintf("Sleep issue: %s", issue))
	}
	for _, strength := range an.strengths {
		findings = append(findings, fmt.Sprintf("Sleep strength: %s", strength))
	}
	findings = append(findings, fmt.Sprintf("Data completeness: %s", an.completeness))
	return findings
}

func (a *SleepAgent) confidence(an *sleepAnalysis) Confidence {
	switch an.completeness {
	case "complete":
		return ConfidenceHigh
	case "substantial", "partial":
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

func hasSleepPreferences(g *assessment.Goals) bool {
	return g != nil && (g.SleepTime != "" || g.WakeTime != "")
}
