package agents

import (
	"fmt"
	"strings"

	"github.com/jpmellow/longevity-snap-02/internal/assessment"
)

// Weekly exercise targets for longevity.
const (
	cardioMinutesMin       = 150
	cardioMinutesOptimal   = 225
	strengthSessionsMin    = 2
	strengthSessionsTarget = 3
)

// Benefits each exercise type contributes to the fitness profile.
var exerciseBenefits = map[string][]string{
	"walking":           {"accessibility", "joint-friendly", "cardiovascular", "metabolic"},
	"running":           {"cardiovascular", "bone density", "metabolic", "efficiency"},
	"cycling":           {"joint-friendly", "cardiovascular", "metabolic", "lower body"},
	"swimming":          {"joint-friendly", "full-body", "cardiovascular", "low-impact"},
	"strength_training": {"muscle maintenance", "bone density", "metabolic", "functional"},
	"yoga":              {"flexibility", "balance", "stress reduction", "mindfulness"},
	"hiit":              {"time-efficiency", "metabolic", "cardiovascular", "adaptability"},
	"pilates":           {"core strength", "posture", "balance", "low-impact"},
}

// ExerciseAgent analyzes physical activity volume, balance, and variety
// against longevity-oriented exercise guidelines.
type ExerciseAgent struct{}

func NewExerciseAgent() *ExerciseAgent { return &ExerciseAgent{} }

func (a *ExerciseAgent) Name() string { return AgentExercise }

func (a *ExerciseAgent) Analyze(p *assessment.Payload) Report {
	an := a.analyze(p)
	return Report{
		Agent:           AgentExercise,
		Confidence:      a.confidence(an),
		Recommendations: a.recommendations(an),
		Insights:        a.insights(an),
		KeyFindings:     a.keyFindings(an),
	}
}

type exerciseAnalysis struct {
	level            string
	weeklySessions   int
	estimatedMinutes int
	strengthSessions int
	cardioSessions   int
	balance          string
	types            []string
	strengths        []string
	areas            []string
	alignment        string
}

func (a *ExerciseAgent) analyze(p *assessment.Payload) *exerciseAnalysis {
	an := &exerciseAnalysis{}

	e := p.Exercise
	if e == nil {
		an.level = "Unknown"
		an.areas = append(an.areas, "Begin with light activity and gradually build exercise habits")
		an.alignment = "Needs improvement"
		return an
	}

	an.strengthSessions = e.StrengthSessions
	an.cardioSessions = e.CardioSessions
	an.weeklySessions = e.WeeklySessions()

	duration := 30
	if e.AvgDurationMin != nil && *e.AvgDurationMin > 0 {
		duration = *e.AvgDurationMin
	}
	an.estimatedMinutes = an.weeklySessions * duration

	switch {
	case an.estimatedMinutes >= cardioMinutesOptimal:
		an.level = "High"
	case an.estimatedMinutes >= cardioMinutesMin:
		an.level = "Moderate"
	case an.estimatedMinutes > 0:
		an.level = "Low"
	default:
		an.level = "Sedentary"
	}

	switch {
	case an.cardioSessions > 0 && an.strengthSessions > 0:
		an.balance = "Balanced"
	case an.cardioSessions > 0:
		an.balance = "Cardio-dominant"
	case an.strengthSessions > 0:
		an.balance = "Strength-dominant"
	default:
		an.balance = "Insufficient data"
	}

	an.types = e.Types

	switch {
	case an.estimatedMinutes >= cardioMinutesOptimal:
		an.strengths = append(an.strengths, "Optimal cardio volume for longevity benefits")
	case an.estimatedMinutes >= cardioMinutesMin:
		an.strengths = append(an.strengths, "Adequate cardio volume")
	default:
		an.areas = append(an.areas, "Increase cardio volume to at least 150 minutes weekly")
	}

	switch {
	case an.strengthSessions >= strengthSessionsTarget:
		an.strengths = append(an.strengths, "Optimal strength training frequency for muscle maintenance and longevity")
	case an.strengthSessions >= strengthSessionsMin:
		an.strengths = append(an.strengths, "Adequate strength training frequency")
	default:
		an.areas = append(an.areas, "Include at least 2 strength training sessions weekly")
	}

	switch an.balance {
	case "Balanced":
		an.strengths = append(an.strengths, "Well-balanced exercise routine including both cardio and strength")
	case "Cardio-dominant":
		an.areas = append(an.areas, "Add strength training for muscle preservation and metabolic health")
	case "Strength-dominant":
		an.areas = append(an.areas, "Add cardio for cardiovascular and metabolic benefits")
	}

	if len(an.types) >= 3 {
		an.strengths = append(an.strengths, "Good exercise variety supporting multiple fitness domains")
	} else if len(an.types) > 0 {
		an.areas = append(an.areas, "Increase exercise variety to support multiple fitness domains")
	}

	if e.Intensity != "" {
		switch strings.ToLower(e.Intensity) {
		case "medium", "high":
			an.strengths = append(an.strengths, fmt.Sprintf("%s intensity supporting fitness adaptations", capitalize(e.Intensity)))
		default:
			an.areas = append(an.areas, "Gradually incorporate some moderate-intensity exercise")
		}
	}

	switch {
	case len(an.strengths) > len(an.areas):
		an.alignment = "Strong"
	case len(an.strengths) == len(an.areas):
		an.alignment = "Moderate"
	default:
		an.alignment = "Needs improvement"
	}

	return an
}

func (a *ExerciseAgent) recommendations(an *exerciseAnalysis) []Recommendation {
	var recs []Recommendation

	for _, area := range an.areas {
		lower := strings.ToLower(area)

		if strings.Contains(lower, "cardio volume") {
			recs = append(recs, Recommendation{
				Action:      "increase_cardio_volume",
				Category:    "physical_activity",
				Subcategory: "cardio",
				Priority:    PriorityHigh,
				Description: "Gradually increase cardiovascular exercise to at least 150 minutes of moderate-intensity activity weekly",
				Reasoning:   "Regular cardiovascular exercise is strongly associated with reduced all-cause mortality and extended healthspan in longitudinal studies",
				Evidence:    EvidenceClinicalGuidelines,
				Implementation: []string{
					"Start with 10-minute sessions if currently inactive",
					"Gradually increase duration by 10% each week",
					"Choose activities you enjoy for better adherence",
					"Break up sessions throughout the week (e.g., 5 x 30 minutes)",
				},
			})
		}

		if strings.Contains(lower, "strength training") {
			recs = append(recs, Recommendation{
				Action:      "incorporate_strength_training",
				Category:    "physical_activity",
				Subcategory: "strength",
				Priority:    PriorityHigh,
				Description: "Include at least 2 strength training sessions weekly targeting major muscle groups",
				Reasoning:   "Resistance training preserves muscle mass and function with aging, supports metabolic health, and is associated with reduced mortality risk independent of aerobic exercise",
				Evidence:    EvidenceSystematicReview,
				Implementation: []string{
					"Start with bodyweight exercises if new to strength training",
					"Focus on compound movements (squats, push-ups, rows)",
					"Aim for 2-3 sets of 8-12 repetitions per exercise",
					"Allow 48 hours between sessions for the same muscle group",
				},
			})
		}

		if strings.Contains(lower, "exercise variety") {
			recs = append(recs, Recommendation{
				Action:      "increase_exercise_variety",
				Category:    "physical_activity",
				Subcategory: "variety",
				Priority:    PriorityMedium,
				Description: "Incorporate a wider variety of movement patterns to support multiple fitness domains",
				Reasoning:   "Exercise variety supports comprehensive fitness development, reduces injury risk, and enhances adherence through reduced monotony",
				Evidence:    EvidenceExpertConsensus,
				Implementation: []string{
					"Include at least one activity focused on cardiovascular fitness",
					"Include at least one activity focused on strength development",
					"Add activities that enhance flexibility and balance",
					"Consider both weight-bearing and non-weight-bearing options",
				},
			})
		}

		if strings.Contains(lower, "intensity") {
			recs = append(recs, Recommendation{
				Action:      "incorporate_moderate_intensity",
				Category:    "physical_activity",
				Subcategory: "intensity",
				Priority:    PriorityMedium,
				Description: "Gradually introduce moderate-intensity exercise periods within your current activity",
				Reasoning:   "Moderate-intensity exercise provides substantial health benefits with minimal injury risk, while supporting cardiovascular and metabolic adaptations",
				Evidence:    EvidenceRandomizedControlledTrial,
				Implementation: []string{
					"Start with brief intervals (30-60 seconds) of increased effort",
					"Use the talk test (able to talk but not sing) to gauge moderate intensity",
					"Gradually increase the duration of moderate-intensity periods",
					"Consider structured interval training as fitness improves",
				},
			})
		}

		if strings.Contains(lower, "begin with light activity") {
			recs = append(recs, Recommendation{
				Action:      "start_exercise_habit",
				Category:    "physical_activity",
				Subcategory: "beginner",
				Priority:    PriorityHigh,
				Description: "Begin a progressive physical activity program starting with light, enjoyable activities",
				Reasoning:   "Even small amounts of physical activity provide health benefits, with the dose-response curve being steepest at the lower end of activity levels",
				Evidence:    EvidenceClinicalGuidelines,
				Implementation: []string{
					"Start with daily walking, gradually increasing from 5 to 30 minutes",
					"Focus on consistency rather than intensity initially",
					"Choose activities you genuinely enjoy to build sustainable habits",
					"Consider tracking steps with a goal of eventually reaching 7,000-10,000 daily",
				},
			})
		}
	}

	if len(recs) < 2 {
		recs = append(recs, Recommendation{
			Action:      "optimize_longevity_exercise",
			Category:    "physical_activity",
			Subcategory: "longevity",
			Priority:    PriorityHigh,
			Description: "Optimize your exercise routine for longevity benefits",
			Reasoning:   "Specific exercise patterns are consistently associated with extended healthspan and reduced mortality risk in longitudinal studies",
			Evidence:    EvidenceSystematicReview,
			Implementation: []string{
				"Maintain 150-300 minutes of moderate cardiovascular activity weekly",
				"Include 2-3 strength training sessions weekly targeting major muscle groups",
				"Add flexibility and balance work, especially important with advancing age",
				"Break up sedentary time with movement breaks throughout the day",
			},
		})
	}

	return recs
}

func (a *ExerciseAgent) insights(an *exerciseAnalysis) []Insight {
	var insights []Insight

	if an.level != "" {
		insights = append(insights, Insight{
			Type:        "activity_level",
			Title:       fmt.Sprintf("Activity Level: %s", an.level),
			Description: activityLevelDescription(an.level),
			Relevance:   "high",
		})
	}

	if an.balance != "" && an.balance != "Insufficient data" {
		insights = append(insights, Insight{
			Type:        "exercise_balance",
			Title:       fmt.Sprintf("Exercise Balance: %s", an.balance),
			Description: exerciseBalanceDescription(an.balance),
			Relevance:   "medium",
		})
	}

	if benefits := collectExerciseBenefits(an.types); len(benefits) > 0 {
		insights = append(insights, Insight{
			Type:        "exercise_benefits",
			Title:       "Your Exercise Benefits Profile",
			Description: fmt.Sprintf("Your current activities provide benefits for: %s", strings.Join(benefits, ", ")),
			Relevance:   "medium",
		})
	}

	if an.alignment != "" {
		insights = append(insights, Insight{
			Type:        "longevity_alignment",
			Title:       fmt.Sprintf("Longevity Exercise Alignment: %s", an.alignment),
			Description: exerciseAlignmentDescription(an.alignment),
			Relevance:   "high",
		})
	}

	return insights
}

func (a *ExerciseAgent) keyFindings(an *exerciseAnalysis) []string {
	var findings []string

	if an.level != "" {
		findings = append(findings, fmt.Sprintf("Activity level: %s", an.level))
	}
	if an.weeklySessions > 0 || an.estimatedMinutes > 0 {
		findings = append(findings, fmt.Sprintf("Weekly exercise: %d sessions, ~%d minutes", an.weeklySessions, an.estimatedMinutes))
	}
	if an.balance != "" && an.balance != "Insufficient data" {
		findings = append(findings, fmt.Sprintf("Exercise balance: %s", an.balance))
	}
	if an.strengthSessions > 0 {
		switch {
		case an.strengthSessions >= strengthSessionsTarget:
			findings = append(findings, fmt.Sprintf("Optimal strength training: %d sessions/week", an.strengthSessions))
		case an.strengthSessions >= strengthSessionsMin:
			findings = append(findings, fmt.Sprintf("Adequate strength training: %d sessions/week", an.strengthSessions))
		default:
			findings = append(findings, fmt.Sprintf("Suboptimal strength training: %d sessions/week", an.strengthSessions))
		}
	}
	if an.estimatedMinutes > 0 {
		switch {
		case an.estimatedMinutes >= cardioMinutesOptimal:
			findings = append(findings, fmt.Sprintf("Optimal cardio volume: ~%d minutes/week", an.estimatedMinutes))
		case an.estimatedMinutes >= cardioMinutesMin:
			findings = append(findings, fmt.Sprintf("Adequate cardio volume: ~%d minutes/week", an.estimatedMinutes))
		default:
			findings = append(findings, fmt.Sprintf("Suboptimal cardio volume: ~%d minutes/week", an.estimatedMinutes))
		}
	}
	if an.alignment != "" {
		findings = append(findings, fmt.Sprintf("Longevity exercise alignment: %s", an.alignment))
	}

	return findings
}

func (a *ExerciseAgent) confidence(an *exerciseAnalysis) Confidence {
	hasDetail := an.level != "Unknown"
	hasTypes := len(an.types) > 0
	switch {
	case hasDetail && hasTypes:
		return ConfidenceHigh
	case !hasDetail && !hasTypes:
		return ConfidenceLow
	default:
		return ConfidenceMedium
	}
}

// collectExerciseBenefits maps reported exercise types onto their benefit
// tags, deduplicated in first-seen order.
func collectExerciseBenefits(types []string) []string {
	var benefits []string
	seen := map[string]bool{}
	for _, t := range types {
		for _, b := range exerciseBenefits[strings.ToLower(t)] {
			if !seen[b] {
				seen[b] = true
				benefits = append(benefits, b)
			}
		}
	}
	return benefits
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

func activityLevelDescription(level string) string {
	descriptions := map[string]string{
		"High": "Your current activity level exceeds general exercise guidelines, providing substantial " +
			"health benefits. Research shows that this level of activity is associated with significant " +
			"reductions in all-cause mortality and extended healthspan.",
		"Moderate": "Your current activity level meets general exercise guidelines, providing important " +
			"health benefits. This level of activity is associated with reduced risk of chronic " +
			"disease and improved longevity outcomes.",
		"Low": "Your current activity level provides some health benefits but falls below general exercise " +
			"guidelines. Gradually increasing your activity could provide substantial additional benefits " +
			"for longevity and healthspan.",
		"Sedentary": "Your current activity level is primarily sedentary, which research associates with " +
			"increased health risks. Even small increases in physical activity can provide meaningful " +
			"benefits, with the greatest relative gains coming from moving from sedentary to light activity.",
	}
	if d, ok := descriptions[level]; ok {
		return d
	}
	return "Your activity level has been analyzed based on your reported exercise patterns."
}

func exerciseBalanceDescription(balance string) string {
	descriptions := map[string]string{
		"Balanced": "Your exercise routine includes both cardiovascular and strength components, creating " +
			"a well-rounded approach that supports multiple aspects of fitness and longevity. This " +
			"balanced approach is optimal for healthy aging.",
		"Cardio-dominant": "Your exercise routine emphasizes cardiovascular activities, which provide excellent " +
			"benefits for heart health, metabolic function, and endurance. Adding strength training " +
			"would create a more balanced approach to support muscle maintenance and bone health with aging.",
		"Strength-dominant": "Your exercise routine emphasizes strength training, which provides excellent benefits " +
			"for muscle maintenance, bone health, and metabolic function. Adding cardiovascular " +
			"activities would create a more balanced approach to support heart health and endurance.",
	}
	if d, ok := descriptions[balance]; ok {
		return d
	}
	return "Your exercise balance has been analyzed based on your reported activities."
}

func exerciseAlignmentDescription(alignment string) string {
	descriptions := map[string]string{
		"Strong": "Your current exercise pattern strongly aligns with evidence-based approaches for " +
			"promoting longevity and healthspan. Your routine includes key elements associated with " +
			"reduced mortality risk and extended healthy years.",
		"Moderate": "Your current exercise pattern includes several elements associated with longevity, " +
			"along with some opportunities for optimization. Implementing the suggested " +
			"recommendations could further enhance the longevity-promoting aspects of your routine.",
		"Needs improvement": "Your current exercise pattern has significant opportunities for alignment " +
			"with evidence-based approaches for promoting longevity. Implementing the " +
			"suggested recommendations could substantially enhance your physical activity " +
			"foundation for healthy aging.",
	}
	if d, ok := descriptions[alignment]; ok {
		return d
	}
	return "Your exercise pattern has been analyzed for alignment with longevity research."
}
