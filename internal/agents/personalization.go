package agents

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jpmellow/longevity-snap-02/internal/assessment"
)

// Motivation drivers recognized by the personalization agent.
const (
	DriverHealthScare = "health_scare"
	DriverLongevity   = "longevity"
	DriverPerformance = "performance"
	DriverAppearance  = "appearance"
	DriverEnergy      = "energy"
	DriverCognitive   = "cognitive"
	DriverMood        = "mood"
	DriverSocial      = "social"
	DriverUnknown     = "unknown"
)

// communicationStyle shapes how recommendations are phrased for a driver.
type communicationStyle struct {
	tone      string
	focus     string
	framing   string
	timeframe string
}

var motivationStyles = map[string]communicationStyle{
	DriverHealthScare: {
		tone:      "supportive but direct",
		focus:     "risk reduction and prevention",
		framing:   "avoiding negative health outcomes",
		timeframe: "immediate and short-term benefits",
	},
	DriverLongevity: {
		tone:      "informative and encouraging",
		focus:     "long-term health optimization",
		framing:   "adding healthy years to life",
		timeframe: "long-term benefits and cumulative effects",
	},
	DriverPerformance: {
		tone:      "energetic and goal-oriented",
		focus:     "optimization and measurable improvements",
		framing:   "enhancing capabilities and performance",
		timeframe: "progressive improvements with clear milestones",
	},
	DriverAppearance: {
		tone:      "positive and affirming",
		focus:     "visible results and aesthetic benefits",
		framing:   "looking and feeling better",
		timeframe: "noticeable changes within specific timeframes",
	},
	DriverEnergy: {
		tone:      "uplifting and practical",
		focus:     "daily energy and vitality",
		framing:   "feeling more energetic and productive",
		timeframe: "immediate and daily benefits",
	},
	DriverCognitive: {
		tone:      "intellectually engaging and precise",
		focus:     "brain health and cognitive function",
		framing:   "optimizing mental performance and clarity",
		timeframe: "both immediate effects and long-term protection",
	},
	DriverMood: {
		tone:      "empathetic and supportive",
		focus:     "emotional wellbeing and resilience",
		framing:   "feeling better emotionally and psychologically",
		timeframe: "consistent improvement in daily mood states",
	},
	DriverSocial: {
		tone:      "warm and community-oriented",
		focus:     "connection and shared experiences",
		framing:   "enhancing relationships and social wellbeing",
		timeframe: "building meaningful connections over time",
	},
}

// Goal keywords per driver. Groups are checked in order and the first group
// with a hit wins.
var driverKeywords = []struct {
	driver   string
	keywords []string
}{
	{DriverHealthScare, []string{"prevent", "disease", "condition", "risk", "doctor", "medical", "health issue", "avoid", "family history"}},
	{DriverLongevity, []string{"longevity", "lifespan", "long life", "healthy aging", "live longer", "aging well", "vitality"}},
	{DriverPerformance, []string{"performance", "athletic", "fitness", "strength", "endurance", "competition", "personal best", "training"}},
	{DriverAppearance, []string{"appearance", "look", "weight loss", "toning", "muscle definition", "physique", "body composition"}},
	{DriverEnergy, []string{"energy", "fatigue", "tired", "productivity", "focus", "mental clarity", "stamina", "vitality"}},
	{DriverCognitive, []string{"brain", "memory", "cognitive", "focus", "concentration", "mental", "thinking", "clarity", "alzheimer's", "dementia"}},
	{DriverMood, []string{"mood", "happiness", "depression", "anxiety", "stress", "emotional", "mental health", "wellbeing", "feel better"}},
	{DriverSocial, []string{"social", "connection", "relationships", "community", "family", "friends", "belonging", "loneliness"}},
}

// Recommendation categories that align with each driver. Strong alignment
// adds 0.2 to feasibility, moderate 0.1.
var driverAlignment = map[string]struct{ strong, moderate []string }{
	DriverHealthScare: {
		strong:   []string{"cardiovascular_health", "weight_management", "preventive_care"},
		moderate: []string{"stress_management", "sleep"},
	},
	DriverLongevity: {
		strong:   []string{"physical_activity", "nutrition", "sleep", "stress_management"},
		moderate: []string{"preventive_care", "cardiovascular_health"},
	},
	DriverPerformance: {
		strong:   []string{"physical_activity", "cardiorespiratory_fitness"},
		moderate: []string{"nutrition", "sleep", "recovery"},
	},
	DriverAppearance: {
		strong:   []string{"weight_management", "physical_activity"},
		moderate: []string{"nutrition", "sleep"},
	},
	DriverEnergy: {
		strong:   []string{"sleep", "stress_management", "nutrition"},
		moderate: []string{"physical_activity", "recovery"},
	},
	DriverCognitive: {
		strong:   []string{"sleep", "physical_activity", "stress_management", "nutrition"},
		moderate: []string{"cognitive_training"},
	},
	DriverMood: {
		strong:   []string{"stress_management", "sleep", "physical_activity", "nutrition"},
		moderate: []string{"mindfulness", "relaxation"},
	},
	DriverSocial: {
		strong:   []string{"social_connections", "community_engagement"},
		moderate: []string{"physical_activity", "group_fitness"},
	},
}

// PersonalizationAgent adapts the other agents' recommendations to the user's
// motivation driver, stated preferences, and current habits.
type PersonalizationAgent struct{}

func NewPersonalizationAgent() *PersonalizationAgent { return &PersonalizationAgent{} }

func (a *PersonalizationAgent) Name() string { return AgentPersonalization }

// Analyze satisfies Agent. Without recommendations to adapt it reports the
// motivation profile alone.
func (a *PersonalizationAgent) Analyze(p *assessment.Payload) Report {
	rep, _ := a.Personalize(p, nil)
	return rep
}

// Personalize re-ranks recommendations by combined priority and feasibility
// and rewrites each one in the voice matching the user's motivation driver.
// The second return value is the resolved driver.
func (a *PersonalizationAgent) Personalize(p *assessment.Payload, recs []Recommendation) (Report, string) {
	an := a.analyze(p, recs)
	return Report{
		Agent:           AgentPersonalization,
		Confidence:      a.confidence(an),
		Recommendations: a.personalized(an),
		Insights:        a.insights(an),
		KeyFindings:     a.keyFindings(an),
	}, an.driver
}

type feasibility struct {
	score        float64
	barriers     []string
	facilitators []string
}

type rankedRecommendation struct {
	rec         Recommendation
	feasibility feasibility
	combined    float64
}

type personalizationFactor struct {
	kind  string
	value string
}

type personalizationAnalysis struct {
	payload *assessment.Payload
	driver  string
	style   communicationStyle
	factors []personalizationFactor
	ranked  []rankedRecommendation
}

func (a *PersonalizationAgent) analyze(p *assessment.Payload, recs []Recommendation) *personalizationAnalysis {
	if p == nil {
		p = &assessment.Payload{}
	}
	an := &personalizationAnalysis{payload: p}
	an.driver = resolveDriver(p)
	an.style = styleFor(an.driver)
	an.factors = personalizationFactors(p)

	for _, rec := range recs {
		f := assessFeasibility(rec, p, an.driver)
		an.ranked = append(an.ranked, rankedRecommendation{
			rec:         rec,
			feasibility: f,
			combined:    priorityValue(rec.Priority)*0.6 + f.score*0.4,
		})
	}
	sort.SliceStable(an.ranked, func(i, j int) bool {
		return an.ranked[i].combined > an.ranked[j].combined
	})

	return an
}

// resolveDriver prefers an explicit motivation preference and otherwise
// infers the driver from the stated goals.
func resolveDriver(p *assessment.Payload) string {
	if p.Goals == nil {
		return DriverUnknown
	}
	if p.Goals.MotivationDriver != "" {
		return p.Goals.MotivationDriver
	}
	if len(p.Goals.Goals) == 0 {
		return DriverUnknown
	}
	return inferDriverFromGoals(p.Goals.Goals)
}

// inferDriverFromGoals matches goal text against each driver's keyword group
// in order. Longevity is the default when nothing matches.
func inferDriverFromGoals(goals []string) string {
	joined := strings.ToLower(strings.Join(goals, " "))
	for _, group := range driverKeywords {
		for _, kw := range group.keywords {
			if strings.Contains(joined, kw) {
				return group.driver
			}
		}
	}
	return DriverLongevity
}

func styleFor(driver string) communicationStyle {
	if s, ok := motivationStyles[driver]; ok {
		return s
	}
	return motivationStyles[DriverLongevity]
}

func personalizationFactors(p *assessment.Payload) []personalizationFactor {
	var factors []personalizationFactor
	if g := p.Goals; g != nil {
		if g.Diet != "" {
			factors = append(factors, personalizationFactor{"dietary_preference", g.Diet})
		}
		if g.ExerciseTime != "" {
			factors = append(factors, personalizationFactor{"exercise_time_preference", g.ExerciseTime})
		}
		if g.SleepTime != "" {
			factors = append(factors, personalizationFactor{"sleep_time_preference", g.SleepTime})
		}
	}
	if d := p.Demographics; d != nil && d.Age > 0 {
		group := "adult"
		if d.Age >= 65 {
			group = "older_adult"
		}
		factors = append(factors, personalizationFactor{"age_group", group})
	}
	if e := p.Exercise; e != nil {
		level := "beginner"
		switch sessions := e.WeeklySessions(); {
		case sessions >= 5:
			level = "advanced"
		case sessions >= 3:
			level = "intermediate"
		}
		factors = append(factors, personalizationFactor{"exercise_experience", level})
	}
	return factors
}

// assessFeasibility scores how realistic a recommendation is for this user
// given current habits, preferences, priority, and motivation alignment.
func assessFeasibility(rec Recommendation, p *assessment.Payload, driver string) feasibility {
	f := feasibility{}
	score := 0.5

	switch rec.Category {
	case "sleep":
		if s := p.Sleep; s != nil {
			if s.AverageDuration >= 6.5 {
				score += 0.2
				f.facilitators = append(f.facilitators, "Already close to recommended sleep duration")
			} else if s.AverageDuration > 0 && s.AverageDuration < 5.5 {
				score -= 0.1
				f.barriers = append(f.barriers, "Currently far from recommended sleep duration")
			}
			switch s.BedtimeConsistency {
			case "high", "excellent":
				score += 0.1
				f.facilitators = append(f.facilitators, "Already has consistent sleep schedule")
			case "low", "poor":
				score -= 0.1
				f.barriers = append(f.barriers, "Irregular sleep schedule may make implementation challenging")
			}
		}
		if p.Goals != nil && p.Goals.SleepTime != "" {
			score += 0.1
			f.facilitators = append(f.facilitators, "Has established sleep time preference")
		}

	case "physical_activity":
		if e := p.Exercise; e != nil {
			if sessions := e.WeeklySessions(); sessions >= 2 {
				score += 0.2
				f.facilitators = append(f.facilitators, "Already somewhat active, easier to increase")
			} else if sessions == 0 {
				score -= 0.2
				f.barriers = append(f.barriers, "Currently inactive, may face initial resistance")
			}
			if e.Intensity == "medium" || e.Intensity == "high" {
				score += 0.1
				f.facilitators = append(f.facilitators, "Comfortable with moderate intensity exercise")
			}
		}
		if p.Goals != nil && p.Goals.ExerciseTime != "" {
			score += 0.1
			f.facilitators = append(f.facilitators, "Has established exercise time preference")
		}

	case "stress_management":
		if m := p.MentalHealth; m != nil {
			if len(m.CopingMechanisms) > 0 {
				score += 0.2
				f.facilitators = append(f.facilitators, "Already uses some stress management techniques")
			}
			// Very high stress cuts both ways: harder to build habits,
			// stronger urgency to change.
			if m.StressLevel >= 8 {
				score -= 0.1
				f.barriers = append(f.barriers, "Very high stress levels may make new habits challenging")
				f.facilitators = append(f.facilitators, "High stress creates urgency for change")
			}
		}

	case "nutrition":
		if p.Nutrition != nil {
			score += 0.1
			f.facilitators = append(f.facilitators, "Already tracks nutrition data")
		}
		if p.Goals != nil && p.Goals.Diet != "" {
			score += 0.1
			f.facilitators = append(f.facilitators, "Has established dietary preferences")
		}
	}

	if rec.Priority == PriorityHigh {
		score += 0.1
	}
	score += motivationAlignment(rec.Category, driver)

	f.score = clamp01(score)
	return f
}

func motivationAlignment(category, driver string) float64 {
	al, ok := driverAlignment[driver]
	if !ok {
		return 0
	}
	for _, c := range al.strong {
		if c == category {
			return 0.2
		}
	}
	for _, c := range al.moderate {
		if c == category {
			return 0.1
		}
	}
	return 0
}

func priorityValue(priority string) float64 {
	switch priority {
	case PriorityHigh:
		return 1.0
	case PriorityLow:
		return 0.3
	default:
		return 0.5
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func (a *PersonalizationAgent) personalized(an *personalizationAnalysis) []Recommendation {
	recs := make([]Recommendation, 0, len(an.ranked))
	for _, item := range an.ranked {
		rec := item.rec
		rec.PersonalizedAction = personalizeAction(rec, an.payload)
		rec.Description = personalizeDescription(rec, an.style, an.payload)
		rec.Reasoning = alignmentMessage(rec.Category, an.driver)
		if steps := implementationSteps(rec, item.feasibility, an.payload); len(steps) > 0 {
			rec.Implementation = steps
		}
		recs = append(recs, rec)
	}
	return recs
}

// personalizeAction rewrites the action headline around the user's current
// numbers where they are known.
func personalizeAction(rec Recommendation, p *assessment.Payload) string {
	switch rec.Category {
	case "sleep":
		switch rec.Action {
		case "improve_sleep_duration", "increase_sleep_duration", "optimize_sleep_duration":
			if s := p.Sleep; s != nil && s.AverageDuration > 0 {
				switch {
				case s.AverageDuration < 6:
					return fmt.Sprintf("Gradually increase sleep duration from %s to 7-8 hours", formatFloat(s.AverageDuration))
				case s.AverageDuration > 9:
					return fmt.Sprintf("Optimize sleep duration from %s to 7-9 hours", formatFloat(s.AverageDuration))
				default:
					return "Maintain consistent 7-9 hour sleep schedule"
				}
			}
			return "Establish a consistent 7-9 hour sleep schedule"
		case "improve_sleep_environment", "improve_sleep_quality":
			return "Create an optimal sleep environment and pre-sleep routine"
		}

	case "physical_activity":
		switch rec.Action {
		case "increase_physical_activity", "increase_cardio_volume", "start_exercise_habit":
			if e := p.Exercise; e != nil {
				switch sessions := e.WeeklySessions(); {
				case sessions == 0:
					return "Begin with 10-minute daily walks and gradually build up activity"
				case sessions < 3:
					return fmt.Sprintf("Build on your current %d weekly sessions to reach 150 minutes of activity", sessions)
				default:
					return "Optimize your current exercise routine for balanced fitness"
				}
			}
			return "Begin a progressive physical activity program"
		}

	case "stress_management":
		if rec.Action == "stress_reduction" {
			if m := p.MentalHealth; m != nil && len(m.CopingMechanisms) > 0 {
				return fmt.Sprintf("Enhance your stress management toolkit by building on %s", m.CopingMechanisms[0])
			}
			return "Develop a personalized stress management toolkit"
		}
	}

	return "Personalized " + strings.ReplaceAll(rec.Action, "_", " ")
}

// personalizeDescription rewrites the recommendation body with a tone opener,
// a framing matched to the driver, and a timeframe closer.
func personalizeDescription(rec Recommendation, style communicationStyle, p *assessment.Payload) string {
	description := rec.Description
	opener := toneOpener(style.tone)

	switch rec.Category {
	case "sleep":
		if s := p.Sleep; s != nil && s.AverageDuration > 0 {
			description = sleepFraming(opener, style.framing, s.AverageDuration)
		}
	case "physical_activity":
		description = activityFraming(opener, style.framing)
	case "stress_management":
		description = stressFraming(opener, style.framing)
	}

	if closer := timeframeCloser(style.timeframe, description); closer != "" {
		description += closer
	}
	return description
}

func toneOpener(tone string) string {
	switch tone {
	case "supportive but direct":
		return "It's important that you "
	case "informative and encouraging":
		return "Research shows that you can optimize your longevity by "
	case "energetic and goal-oriented":
		return "To maximize your performance, focus on "
	case "positive and affirming":
		return "You'll look and feel your best when you "
	case "uplifting and practical":
		return "To boost your daily energy, "
	case "intellectually engaging and precise":
		return "To optimize your cognitive function, "
	case "empathetic and supportive":
		return "To improve your emotional wellbeing, "
	case "warm and community-oriented":
		return "To enhance your social connections, "
	default:
		return "Consider "
	}
}

func sleepFraming(opener, framing string, currentDuration float64) string {
	const target = "7-9 hours"
	switch framing {
	case "avoiding negative health outcomes":
		return fmt.Sprintf("%sprioritizing %s of quality sleep. Consistently sleeping less than %s hours is linked to increased risk of cognitive decline, metabolic disorders, and immune dysfunction.", opener, target, formatFloat(currentDuration))
	case "adding healthy years to life":
		return fmt.Sprintf("%soptimizing your sleep to %s per night. Quality sleep is a cornerstone of longevity, supporting cellular repair, brain health, and metabolic function.", opener, target)
	case "enhancing capabilities and performance":
		return fmt.Sprintf("%sgetting %s of quality sleep. Optimal sleep dramatically improves cognitive performance, reaction time, and physical recovery.", opener, target)
	case "looking and feeling better":
		return fmt.Sprintf("%sgetting %s of quality sleep. Proper sleep reduces under-eye circles, improves skin clarity, and helps maintain a healthy weight.", opener, target)
	case "feeling more energetic and productive":
		return fmt.Sprintf("%sachieving %s of quality sleep. Proper sleep is your foundation for all-day energy, mood stability, and productivity.", opener, target)
	case "optimizing mental performance and clarity":
		return fmt.Sprintf("%sgetting %s of quality sleep. Quality sleep is essential for cognitive function, memory consolidation, and mental clarity.", opener, target)
	case "feeling better emotionally and psychologically":
		return fmt.Sprintf("%sprioritizing %s of quality sleep. Proper sleep regulates emotional processing and significantly improves mood stability.", opener, target)
	case "enhancing relationships and social wellbeing":
		return fmt.Sprintf("%sgetting %s of quality sleep. Quality sleep improves emotional regulation and social interactions.", opener, target)
	default:
		return fmt.Sprintf("%saiming for %s of quality sleep for optimal health.", opener, target)
	}
}

func activityFraming(opener, framing string) string {
	switch framing {
	case "avoiding negative health outcomes":
		return opener + "incorporating regular physical activity into your routine. A sedentary lifestyle significantly increases risk of cardiovascular disease, diabetes, and premature mortality."
	case "adding healthy years to life":
		return opener + "making consistent physical activity a cornerstone of your longevity strategy. Regular exercise is one of the most powerful predictors of healthy lifespan."
	case "enhancing capabilities and performance":
		return opener + "following a structured exercise program. Proper training progressively enhances your strength, endurance, and functional capabilities."
	case "looking and feeling better":
		return opener + "engaging in regular physical activity. Exercise sculpts your physique, improves posture, and gives you a healthy, vibrant appearance."
	case "feeling more energetic and productive":
		return opener + "moving your body consistently. Regular physical activity boosts energy levels, improves mood, and enhances focus throughout the day."
	case "optimizing mental performance and clarity":
		return opener + "engaging in regular physical activity. Exercise enhances brain blood flow, neurogenesis, and cognitive function."
	case "feeling better emotionally and psychologically":
		return opener + "engaging in regular physical activity. Exercise releases endorphins and improves mood both acutely and chronically."
	case "enhancing relationships and social wellbeing":
		return opener + "engaging in group fitness activities. Exercise can be a social opportunity and enhances your energy for meaningful connections."
	default:
		return opener + "incorporating regular physical activity for overall health."
	}
}

func stressFraming(opener, framing string) string {
	switch framing {
	case "avoiding negative health outcomes":
		return opener + "implementing effective stress management techniques. Chronic unmanaged stress accelerates aging and increases risk of cardiovascular disease and immune dysfunction."
	case "adding healthy years to life":
		return opener + "developing a comprehensive stress management practice. Effective stress regulation is a key longevity pathway that protects cellular health and brain function."
	case "enhancing capabilities and performance":
		return opener + "mastering stress management techniques. Optimal stress regulation improves decision-making, focus, and recovery between training sessions."
	case "looking and feeling better":
		return opener + "prioritizing stress management. Reduced stress improves skin clarity, reduces tension in your face and body, and helps maintain a healthy weight."
	case "feeling more energetic and productive":
		return opener + "implementing daily stress management practices. Effective stress regulation prevents energy depletion and mental fatigue."
	case "optimizing mental performance and clarity":
		return opener + "protecting your brain from chronic stress. Stress management optimizes cognitive performance and protects against neurodegenerative diseases."
	case "feeling better emotionally and psychologically":
		return opener + "enhancing your emotional regulation. Stress management improves emotional wellbeing and psychological resilience."
	case "enhancing relationships and social wellbeing":
		return opener + "improving your capacity for positive social engagement. Stress management enhances your emotional regulation and social interactions."
	default:
		return opener + "developing effective stress management techniques for better health."
	}
}

// timeframeCloser appends a closing sentence unless the description already
// speaks to the timeframe.
func timeframeCloser(timeframe, description string) string {
	lower := strings.ToLower(description)
	switch timeframe {
	case "immediate and short-term benefits":
		if !strings.Contains(lower, "immediate") {
			return " You may notice improvements within days of implementing this change."
		}
	case "long-term benefits and cumulative effects":
		if !strings.Contains(lower, "long-term") {
			return " The benefits compound over time, contributing significantly to your long-term health."
		}
	case "progressive improvements with clear milestones":
		if !strings.Contains(lower, "progress") {
			return " Track your progress weekly to see measurable improvements."
		}
	case "noticeable changes within specific timeframes":
		if !strings.Contains(lower, "notice") {
			return " Most people notice visible changes within 3-4 weeks of consistent implementation."
		}
	case "immediate and daily benefits":
		if !strings.Contains(lower, "daily") {
			return " You'll likely experience day-to-day improvements in how you feel."
		}
	case "both immediate effects and long-term protection":
		if !strings.Contains(lower, "immediate") {
			return " You may notice both immediate cognitive improvements and long-term protection against neurodegenerative diseases."
		}
	case "consistent improvement in daily mood states":
		if !strings.Contains(lower, "consistent") {
			return " You can expect consistent improvement in your daily mood states with regular practice."
		}
	case "building meaningful connections over time":
		if !strings.Contains(lower, "building") {
			return " You'll build meaningful connections over time as you engage in social activities and strengthen your relationships."
		}
	}
	return ""
}

// implementationSteps builds a step plan tuned to the user's starting point.
// Returns nil for categories without a specific plan so the source agent's
// steps survive.
func implementationSteps(rec Recommendation, f feasibility, p *assessment.Payload) []string {
	switch rec.Category {
	case "sleep":
		switch rec.Action {
		case "improve_sleep_duration", "increase_sleep_duration", "optimize_sleep_duration":
			steps := []string{
				"Set a consistent bedtime and wake time, even on weekends",
				"Create a relaxing pre-sleep routine (e.g., reading, gentle stretching)",
				"Make your bedroom dark, quiet, and cool",
			}
			for _, barrier := range f.barriers {
				if strings.Contains(strings.ToLower(barrier), "irregular") {
					steps = append(steps, "Use a sleep tracking app to monitor your progress")
					break
				}
			}
			if p.Goals != nil && p.Goals.SleepTime != "" {
				steps = append(steps, fmt.Sprintf("Align your schedule with your preferred %s sleep time", p.Goals.SleepTime))
			}
			return steps
		}

	case "physical_activity":
		switch rec.Action {
		case "increase_physical_activity", "increase_cardio_volume", "start_exercise_habit":
			beginner := true
			if e := p.Exercise; e != nil {
				beginner = e.WeeklySessions() < 2
			}
			var steps []string
			if beginner {
				steps = []string{
					"Start with 10-15 minute walks daily",
					"Gradually increase duration by 5 minutes each week",
					"Add simple bodyweight exercises (squats, wall push-ups) twice weekly",
					"Focus on consistency rather than intensity initially",
				}
			} else {
				steps = []string{
					"Ensure your weekly activity includes both cardio and strength training",
					"Gradually increase duration or intensity of current workouts",
					"Add one additional activity session per week",
					"Include recovery days between intense workouts",
				}
			}
			if p.Goals != nil && p.Goals.ExerciseTime != "" {
				steps = append(steps, fmt.Sprintf("Schedule workouts during your preferred %s time", p.Goals.ExerciseTime))
			}
			return steps
		}

	case "stress_management":
		if rec.Action == "stress_reduction" {
			if m := p.MentalHealth; m != nil && len(m.CopingMechanisms) > 0 {
				return []string{
					fmt.Sprintf("Continue your practice of %s", m.CopingMechanisms[0]),
					"Add a 5-minute breathing exercise to your morning routine",
					"Identify your top 3 stress triggers and create specific plans for each",
					"Schedule short breaks throughout your day for stress reset",
				}
			}
			return []string{
				"Begin with a simple 5-minute daily breathing practice",
				"Identify your top 3 stress triggers",
				"Try a guided meditation app for 10 minutes before bed",
				"Consider a weekly nature walk or other pleasant activity",
			}
		}
	}

	return nil
}

// alignmentMessage explains how a category serves the user's driver.
func alignmentMessage(category, driver string) string {
	switch driver {
	case DriverHealthScare:
		switch category {
		case "cardiovascular_health", "weight_management":
			return "This change directly addresses your health concerns by reducing disease risk factors"
		case "sleep":
			return "Improving sleep significantly reduces your risk of developing serious health conditions"
		case "physical_activity":
			return "Regular physical activity is one of the most effective ways to prevent disease progression"
		case "stress_management":
			return "Managing stress effectively reduces inflammation and improves immune function"
		case "nutrition":
			return "These dietary changes directly support risk reduction for common health conditions"
		}
		return "This recommendation supports your goal of addressing health concerns"

	case DriverLongevity:
		switch category {
		case "sleep":
			return "Quality sleep is a fundamental pillar of longevity, supporting cellular repair and brain health"
		case "physical_activity":
			return "Regular physical activity is one of the strongest predictors of healthy lifespan"
		case "stress_management":
			return "Effective stress management protects your telomeres and slows biological aging"
		case "nutrition":
			return "This dietary pattern is consistently associated with exceptional longevity in population studies"
		}
		return "This recommendation supports your goal of optimizing longevity"

	case DriverPerformance:
		switch category {
		case "sleep":
			return "Optimal sleep dramatically improves reaction time, decision making, and physical recovery"
		case "physical_activity":
			return "A structured exercise program progressively enhances your strength, endurance, and capabilities"
		case "stress_management":
			return "Stress regulation improves focus, decision-making, and recovery between training sessions"
		case "nutrition":
			return "This nutrition strategy optimizes energy availability and recovery for enhanced performance"
		}
		return "This recommendation supports your goal of optimizing performance"

	case DriverAppearance:
		switch category {
		case "sleep":
			return "Quality sleep reduces under-eye circles, improves skin clarity, and helps maintain a healthy weight"
		case "physical_activity":
			return "Regular exercise sculpts your physique, improves posture, and gives you a healthy, vibrant appearance"
		case "stress_management":
			return "Stress management improves skin clarity, reduces tension in your face and body, and helps maintain weight"
		case "nutrition":
			return "This dietary approach supports healthy body composition and skin vitality"
		}
		return "This recommendation supports your goal of enhancing your appearance"

	case DriverEnergy:
		switch category {
		case "sleep":
			return "Quality sleep is your foundation for all-day energy, mood stability, and productivity"
		case "physical_activity":
			return "Regular physical activity boosts energy levels, improves mood, and enhances focus throughout the day"
		case "stress_management":
			return "Effective stress regulation prevents energy depletion and mental fatigue"
		case "nutrition":
			return "This eating pattern optimizes stable energy levels throughout the day"
		}
		return "This recommendation supports your goal of increasing daily energy"

	case DriverCognitive:
		switch category {
		case "sleep":
			return "Quality sleep is essential for memory consolidation, cognitive processing, and brain health"
		case "physical_activity":
			return "Regular exercise enhances brain blood flow, neurogenesis, and cognitive function"
		case "stress_management":
			return "Stress management protects brain structures and optimizes cognitive performance"
		case "nutrition":
			return "This dietary pattern includes key nutrients that support brain health and cognitive function"
		}
		return "This recommendation supports your goal of optimizing cognitive function"

	case DriverMood:
		switch category {
		case "sleep":
			return "Quality sleep regulates emotional processing and significantly improves mood stability"
		case "physical_activity":
			return "Regular exercise releases endorphins and improves mood both acutely and chronically"
		case "stress_management":
			return "These practices directly enhance emotional regulation and psychological wellbeing"
		case "nutrition":
			return "This dietary approach includes nutrients that support neurotransmitter production and mood regulation"
		}
		return "This recommendation supports your goal of enhancing emotional wellbeing"

	case DriverSocial:
		switch category {
		case "sleep":
			return "Quality sleep improves emotional regulation and social interactions"
		case "physical_activity":
			return "Regular activity can be a social opportunity and enhances your energy for meaningful connections"
		case "stress_management":
			return "Stress management improves your capacity for positive social engagement"
		case "nutrition":
			return "This approach supports energy and wellbeing for social activities and connections"
		}
		return "This recommendation supports your goal of enhancing social connections"
	}

	return "This recommendation is tailored to support your health goals"
}

// motivationDescription is the user-facing summary of how recommendations
// were framed.
func motivationDescription(driver string) string {
	switch driver {
	case DriverHealthScare:
		return "Your health recommendations focus on risk reduction and prevention, with emphasis on immediate and short-term benefits"
	case DriverLongevity:
		return "Your health recommendations emphasize long-term health optimization and adding healthy years to your life"
	case DriverPerformance:
		return "Your health recommendations focus on enhancing your capabilities and performance, with clear milestones for progress"
	case DriverAppearance:
		return "Your health recommendations highlight visible results and aesthetic benefits, with specific timeframes for noticeable changes"
	case DriverEnergy:
		return "Your health recommendations prioritize daily energy and vitality, with immediate and practical benefits"
	case DriverCognitive:
		return "Your health recommendations emphasize brain health and cognitive function, with strategies for both immediate clarity and long-term protection"
	case DriverMood:
		return "Your health recommendations focus on emotional wellbeing and psychological resilience, with practices to enhance daily mood states"
	case DriverSocial:
		return "Your health recommendations support social connection and relationship quality, enhancing your capacity for meaningful interactions"
	default:
		return "Your health recommendations have been personalized based on your profile"
	}
}

func (a *PersonalizationAgent) insights(an *personalizationAnalysis) []Insight {
	return []Insight{{
		Type:        "motivation_profile",
		Title:       "Motivation Profile",
		Description: motivationDescription(an.driver),
		Relevance:   "Recommendations framed around what drives you are easier to follow through on",
	}}
}

func (a *PersonalizationAgent) keyFindings(an *personalizationAnalysis) []string {
	var findings []string

	if an.driver != DriverUnknown {
		findings = append(findings, "Primary motivation driver: "+driverTitle(an.driver))
	}

	if len(an.factors) > 0 {
		seen := make(map[string]bool)
		var kinds []string
		for _, f := range an.factors {
			if !seen[f.kind] {
				seen[f.kind] = true
				kinds = append(kinds, f.kind)
			}
		}
		findings = append(findings, "Personalization based on: "+strings.Join(kinds, ", "))
	}

	if len(an.ranked) > 0 {
		total := 0.0
		for _, item := range an.ranked {
			total += item.feasibility.score
		}
		avg := total / float64(len(an.ranked))
		if avg > 0.7 {
			findings = append(findings, "High implementation readiness for recommendations")
		} else if avg < 0.4 {
			findings = append(findings, "Additional support needed for implementation")
		}
		findings = append(findings, "Top priority recommendation: "+an.ranked[0].rec.Action)
	}

	return findings
}

func (a *PersonalizationAgent) confidence(an *personalizationAnalysis) Confidence {
	if an.driver == DriverUnknown || len(an.factors) == 0 {
		return ConfidenceLow
	}

	sections := 0
	if an.payload.Goals != nil {
		sections++
	}
	if an.payload.Exercise != nil {
		sections++
	}
	if an.payload.Sleep != nil {
		sections++
	}
	if an.payload.MentalHealth != nil {
		sections++
	}
	if an.payload.Nutrition != nil {
		sections++
	}

	switch {
	case sections >= 4:
		return ConfidenceHigh
	case sections <= 1:
		return ConfidenceLow
	default:
		return ConfidenceMedium
	}
}

func driverTitle(driver string) string {
	parts := strings.Split(driver, "_")
	for i, p := range parts {
		parts[i] = capitalize(p)
	}
	return strings.Join(parts, " ")
}
