package agents_test

import (
	"testing"

	"github.com/jpmellow/longevity-snap-02/internal/agents"
	"github.com/jpmellow/longevity-snap-02/internal/assessment"
)

func fullPayload() *assessment.Payload {
	return &assessment.Payload{
		Demographics: &assessment.Demographics{Age: 34, Gender: "female", HeightCM: 168, WeightKG: 62},
		Sleep:        &assessment.Sleep{AverageDuration: 7.5, Quality: "good", BedtimeConsistency: "high"},
		Nutrition: &assessment.Nutrition{
			Calories:       2100,
			ProteinGrams:   100,
			CarbGrams:      240,
			FatGrams:       65,
			DetailedMacros: true,
		},
		Exercise: &assessment.Exercise{
			StrengthSessions: 2,
			CardioSessions:   3,
			Intensity:        "medium",
			Types:            []string{"running", "strength_training", "yoga"},
		},
		MentalHealth: &assessment.MentalHealth{StressLevel: 3, CopingMechanisms: []string{"meditation"}},
	}
}

func TestProcessorSelectsAgentsFromPayload(t *testing.T) {
	eval := agents.NewProcessor().Process(fullPayload())

	for _, name := range []string{
		agents.AgentMedicalReasoning,
		agents.AgentSleep,
		agents.AgentNutrition,
		agents.AgentExercise,
	} {
		if _, ok := eval.Contributions[name]; !ok {
			t.Fatalf("expected contribution from %s, got %v", name, eval.Contributions)
		}
	}
	if _, ok := eval.Contributions[agents.AgentPersonalization]; ok {
		t.Fatal("personalization should not run without goals")
	}
	for _, rec := range eval.Recommendations {
		if rec.SourceAgent == "" {
			t.Fatalf("recommendation %s missing source agent", rec.Action)
		}
	}
	for _, insight := range eval.Insights {
		if insight.SourceAgent == "" {
			t.Fatalf("insight %s missing source agent", insight.Type)
		}
	}
}

func TestProcessorSparsePayloadRunsMedicalOnly(t *testing.T) {
	eval := agents.NewProcessor().Process(&assessment.Payload{
		Demographics: &assessment.Demographics{Age: 40, Gender: "male", HeightCM: 180, WeightKG: 80},
	})

	if len(eval.Contributions) != 1 {
		t.Fatalf("expected a single contribution, got %v", eval.Contributions)
	}
	if _, ok := eval.Contributions[agents.AgentMedicalReasoning]; !ok {
		t.Fatal("medical reasoning must always run")
	}
	// The sparse profile leaves medical reasoning at low confidence, which
	// the critical evaluation reviews and confirms.
	if eval.Confidence != agents.ConfidenceLow {
		t.Fatalf("expected low overall confidence, got %s", eval.Confidence)
	}
	found := false
	for _, note := range eval.Notes {
		if note.Agent == agents.AgentMedicalReasoning &&
			note.Evaluation == "Reviewed low confidence analysis and confirmed findings" {
			found = true
			if note.ConfidenceAdjustment != "Confidence remains low due to insufficient data" {
				t.Fatalf("unexpected confidence adjustment: %s", note.ConfidenceAdjustment)
			}
		}
	}
	if !found {
		t.Fatalf("expected a low confidence review note, got %v", eval.Notes)
	}
}

func TestProcessorResolvesCalorieContradiction(t *testing.T) {
	p := &assessment.Payload{
		Demographics: &assessment.Demographics{Age: 45, Gender: "male", HeightCM: 180, WeightKG: 100},
		Nutrition: &assessment.Nutrition{
			Calories:     1200,
			ProteinGrams: 60,
			CarbGrams:    120,
			FatGrams:     40,
		},
	}

	eval := agents.NewProcessor().Process(p)

	// Medical wants weight management while nutrition wants more calories;
	// the medical recommendation wins and the calorie one is dropped.
	if !hasAction(eval.Recommendations, "obesity_management") {
		t.Fatal("expected obesity_management to survive synthesis")
	}
	if hasAction(eval.Recommendations, "increase_caloric_intake") {
		t.Fatal("increase_caloric_intake should be dropped after resolution")
	}
	if !hasAction(eval.Recommendations, "increase_protein_intake") {
		t.Fatal("unrelated nutrition recommendations should survive")
	}

	resolved := false
	for _, note := range eval.Notes {
		if note.Evaluation == "Resolved contradiction with other agent" {
			resolved = true
			if note.Resolution != "Prioritized medical recommendation over nutrition recommendation" {
				t.Fatalf("unexpected resolution: %s", note.Resolution)
			}
		}
	}
	if !resolved {
		t.Fatalf("expected contradiction notes, got %v", eval.Notes)
	}
}

func TestProcessorPersonalizationPass(t *testing.T) {
	p := fullPayload()
	p.Goals = &assessment.Goals{Goals: []string{"live longer"}, SleepTime: "22:30"}

	eval := agents.NewProcessor().Process(p)

	if eval.MotivationDriver != agents.DriverLongevity {
		t.Fatalf("expected longevity driver, got %s", eval.MotivationDriver)
	}
	if _, ok := eval.Contributions[agents.AgentPersonalization]; !ok {
		t.Fatal("expected a personalization contribution")
	}
	if len(eval.Recommendations) == 0 {
		t.Fatal("expected recommendations")
	}
	for _, rec := range eval.Recommendations {
		if rec.PersonalizedAction == "" {
			t.Fatalf("recommendation %s not personalized", rec.Action)
		}
		if rec.SourceAgent == "" {
			t.Fatalf("recommendation %s lost its source agent", rec.Action)
		}
	}
	if eval.Confidence != agents.ConfidenceHigh {
		t.Fatalf("expected high overall confidence, got %s", eval.Confidence)
	}
}

func TestProcessorOverallConfidenceIsLowest(t *testing.T) {
	p := fullPayload()
	// Without consistency data the sleep analysis is merely substantial
	// while the other agents stay high.
	p.Sleep = &assessment.Sleep{AverageDuration: 7.5, Quality: "good"}

	eval := agents.NewProcessor().Process(p)

	if eval.Confidence != agents.ConfidenceMedium {
		t.Fatalf("expected overall confidence pulled down to medium, got %s", eval.Confidence)
	}
}

func TestProcessorNarrativeAlwaysPresent(t *testing.T) {
	eval := agents.NewProcessor().Process(nil)
	if eval.Narrative == nil || eval.Narrative.Area != "unknown" {
		t.Fatalf("expected unknown narrative area, got %v", eval.Narrative)
	}
	if eval.MotivationDriver != agents.DriverUnknown {
		t.Fatalf("expected unknown driver, got %s", eval.MotivationDriver)
	}

	p := fullPayload()
	p.Sleep.Narrative = "Work stress keeps me tense and restless at night"
	eval = agents.NewProcessor().Process(p)
	if eval.Narrative == nil || eval.Narrative.Area != "stress" {
		t.Fatalf("expected stress narrative area, got %v", eval.Narrative)
	}
}
