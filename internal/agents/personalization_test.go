package agents_test

import (
	"strings"
	"testing"

	"github.com/jpmellow/longevity-snap-02/internal/agents"
	"github.com/jpmellow/longevity-snap-02/internal/assessment"
)

func TestPersonalizationDriverResolution(t *testing.T) {
	agent := agents.NewPersonalizationAgent()

	// An explicit preference beats goal inference.
	_, driver := agent.Personalize(&assessment.Payload{
		Goals: &assessment.Goals{MotivationDriver: "energy", Goals: []string{"prevent disease"}},
	}, nil)
	if driver != agents.DriverEnergy {
		t.Fatalf("expected explicit driver to win, got %s", driver)
	}

	_, driver = agent.Personalize(&assessment.Payload{
		Goals: &assessment.Goals{Goals: []string{"improve athletic performance"}},
	}, nil)
	if driver != agents.DriverPerformance {
		t.Fatalf("expected performance inferred from goals, got %s", driver)
	}

	// Nothing matches: longevity is the default.
	_, driver = agent.Personalize(&assessment.Payload{
		Goals: &assessment.Goals{Goals: []string{"be healthier"}},
	}, nil)
	if driver != agents.DriverLongevity {
		t.Fatalf("expected longevity fallback, got %s", driver)
	}

	_, driver = agent.Personalize(&assessment.Payload{}, nil)
	if driver != agents.DriverUnknown {
		t.Fatalf("expected unknown driver without goals, got %s", driver)
	}
}

func TestPersonalizationReranksByFeasibility(t *testing.T) {
	p := &assessment.Payload{
		Demographics: &assessment.Demographics{Age: 34, Gender: "female", HeightCM: 168, WeightKG: 62},
		Goals:        &assessment.Goals{MotivationDriver: "longevity"},
		Sleep:        &assessment.Sleep{AverageDuration: 7, BedtimeConsistency: "high"},
		Exercise:     &assessment.Exercise{},
	}
	recs := []agents.Recommendation{
		{Action: "improve_sleep_duration", Category: "sleep", Priority: agents.PriorityLow},
		{Action: "increase_physical_activity", Category: "physical_activity", Priority: agents.PriorityHigh},
	}

	rep, _ := agents.NewPersonalizationAgent().Personalize(p, recs)

	if len(rep.Recommendations) != 2 {
		t.Fatalf("expected 2 recommendations, got %d", len(rep.Recommendations))
	}
	// The high-priority activity recommendation outranks the low-priority
	// sleep one despite its weaker feasibility.
	if rep.Recommendations[0].Action != "increase_physical_activity" {
		t.Fatalf("expected activity recommendation first, got %s", rep.Recommendations[0].Action)
	}
	if rep.Recommendations[0].PersonalizedAction != "Begin with 10-minute daily walks and gradually build up activity" {
		t.Fatalf("unexpected personalized action: %s", rep.Recommendations[0].PersonalizedAction)
	}
	if rep.Recommendations[0].Implementation[0] != "Start with 10-15 minute walks daily" {
		t.Fatalf("expected beginner steps, got %v", rep.Recommendations[0].Implementation)
	}
}

func TestPersonalizationRewritesForDriver(t *testing.T) {
	p := &assessment.Payload{
		Goals: &assessment.Goals{MotivationDriver: "health_scare"},
		Sleep: &assessment.Sleep{AverageDuration: 5.5, Quality: "poor", BedtimeConsistency: "low"},
	}
	recs := []agents.Recommendation{
		{Action: "improve_sleep_duration", Category: "sleep", Priority: agents.PriorityHigh, Description: "original"},
	}

	rep, _ := agents.NewPersonalizationAgent().Personalize(p, recs)

	rec := rep.Recommendations[0]
	if rec.PersonalizedAction != "Gradually increase sleep duration from 5.5 to 7-8 hours" {
		t.Fatalf("unexpected personalized action: %s", rec.PersonalizedAction)
	}
	if !strings.HasPrefix(rec.Description, "It's important that you ") {
		t.Fatalf("expected the direct tone opener, got %s", rec.Description)
	}
	if !strings.Contains(rec.Description, "within days") {
		t.Fatalf("expected the short-term timeframe closer, got %s", rec.Description)
	}
	if rec.Reasoning != "Improving sleep significantly reduces your risk of developing serious health conditions" {
		t.Fatalf("unexpected reasoning: %s", rec.Reasoning)
	}
	// The irregular schedule barrier adds a tracking step.
	joined := strings.Join(rec.Implementation, "\n")
	if !strings.Contains(joined, "sleep tracking app") {
		t.Fatalf("expected a tracking step for irregular sleepers, got %v", rec.Implementation)
	}
}

func TestPersonalizationProfileInsight(t *testing.T) {
	p := &assessment.Payload{
		Demographics: &assessment.Demographics{Age: 70, Gender: "male", HeightCM: 175, WeightKG: 72},
		Goals:        &assessment.Goals{MotivationDriver: "performance", Diet: "Mediterranean"},
		Exercise:     &assessment.Exercise{StrengthSessions: 2, CardioSessions: 3},
	}

	rep, _ := agents.NewPersonalizationAgent().Personalize(p, nil)

	if len(rep.Insights) != 1 || rep.Insights[0].Type != "motivation_profile" {
		t.Fatalf("expected a single motivation_profile insight, got %v", rep.Insights)
	}
	if !strings.Contains(rep.Insights[0].Description, "capabilities and performance") {
		t.Fatalf("insight not framed for the driver: %s", rep.Insights[0].Description)
	}
	if !hasFinding(rep.KeyFindings, "Primary motivation driver: Performance") {
		t.Fatalf("expected driver finding, got %v", rep.KeyFindings)
	}
	if !hasFinding(rep.KeyFindings, "dietary_preference") {
		t.Fatalf("expected factor kinds finding, got %v", rep.KeyFindings)
	}
}

func TestPersonalizationConfidence(t *testing.T) {
	agent := agents.NewPersonalizationAgent()

	rep, _ := agent.Personalize(&assessment.Payload{
		Demographics: &assessment.Demographics{Age: 30, Gender: "female", HeightCM: 165, WeightKG: 60},
	}, nil)
	if rep.Confidence != agents.ConfidenceLow {
		t.Fatalf("expected low confidence without a driver, got %s", rep.Confidence)
	}

	rep, _ = agent.Personalize(&assessment.Payload{
		Demographics: &assessment.Demographics{Age: 30, Gender: "female", HeightCM: 165, WeightKG: 60},
		Goals:        &assessment.Goals{Goals: []string{"longevity"}},
		Sleep:        &assessment.Sleep{AverageDuration: 7},
		Exercise:     &assessment.Exercise{CardioSessions: 3},
		MentalHealth: &assessment.MentalHealth{StressLevel: 4},
	}, nil)
	if rep.Confidence != agents.ConfidenceHigh {
		t.Fatalf("expected high confidence with four sections, got %s", rep.Confidence)
	}
}
