package agents_test

import (
	"testing"

	"github.com/jpmellow/longevity-snap-02/internal/agents"
	"github.com/jpmellow/longevity-snap-02/internal/assessment"
)

func TestNutritionOptimalIntake(t *testing.T) {
	p := &assessment.Payload{
		Demographics: &assessment.Demographics{Age: 34, Gender: "female", HeightCM: 168, WeightKG: 70},
		Nutrition: &assessment.Nutrition{
			Calories:       2200,
			ProteinGrams:   110,
			CarbGrams:      250,
			FatGrams:       70,
			FiberGrams:     ptrFloat(32),
			DetailedMacros: true,
		},
	}

	rep := agents.NewNutritionAgent().Analyze(p)

	if rep.Agent != agents.AgentNutrition {
		t.Fatalf("unexpected agent name: %s", rep.Agent)
	}
	if rep.Confidence != agents.ConfidenceHigh {
		t.Fatalf("expected high confidence, got %s", rep.Confidence)
	}
	if hasAction(rep.Recommendations, "increase_protein_intake") {
		t.Fatal("1.6g/kg protein should not trigger increase_protein_intake")
	}
	if hasAction(rep.Recommendations, "increase_fiber_intake") {
		t.Fatal("32g fiber should not trigger increase_fiber_intake")
	}
	if !hasAction(rep.Recommendations, "optimize_longevity_nutrition") {
		t.Fatal("expected the general longevity nutrition recommendation")
	}
	if !hasFinding(rep.KeyFindings, "Longevity nutrition alignment: Strong") {
		t.Fatalf("expected strong alignment finding, got %v", rep.KeyFindings)
	}
}

func TestNutritionLowIntakeFlagsGaps(t *testing.T) {
	p := &assessment.Payload{
		Demographics: &assessment.Demographics{Age: 40, Gender: "male", HeightCM: 180, WeightKG: 70},
		Nutrition: &assessment.Nutrition{
			Calories:     1200,
			ProteinGrams: 40,
			CarbGrams:    150,
			FatGrams:     35,
		},
	}

	rep := agents.NewNutritionAgent().Analyze(p)

	if !hasAction(rep.Recommendations, "increase_protein_intake") {
		t.Fatal("0.6g/kg protein should trigger increase_protein_intake")
	}
	if !hasAction(rep.Recommendations, "increase_fiber_intake") {
		t.Fatal("missing fiber data should trigger increase_fiber_intake")
	}
	if !hasAction(rep.Recommendations, "adopt_plant_forward_diet") {
		t.Fatal("expected adopt_plant_forward_diet recommendation")
	}
	rec, ok := findAction(rep.Recommendations, "increase_caloric_intake")
	if !ok {
		t.Fatal("1200 kcal should trigger increase_caloric_intake")
	}
	if rec.Priority != agents.PriorityMedium {
		t.Fatalf("expected medium priority, got %s", rec.Priority)
	}
}

func TestNutritionLongevityPattern(t *testing.T) {
	p := &assessment.Payload{
		Demographics: &assessment.Demographics{Age: 55, Gender: "female", HeightCM: 165, WeightKG: 70},
		Goals:        &assessment.Goals{Diet: "Mediterranean"},
		Nutrition: &assessment.Nutrition{
			Calories:     2000,
			ProteinGrams: 100,
			CarbGrams:    220,
			FatGrams:     65,
			FiberGrams:   ptrFloat(28),
		},
	}

	rep := agents.NewNutritionAgent().Analyze(p)

	if rep.Confidence != agents.ConfidenceHigh {
		t.Fatalf("expected high confidence, got %s", rep.Confidence)
	}
	if !hasFinding(rep.KeyFindings, "Mediterranean") {
		t.Fatalf("expected the dietary pattern in key findings, got %v", rep.KeyFindings)
	}
}

func TestNutritionNoData(t *testing.T) {
	rep := agents.NewNutritionAgent().Analyze(&assessment.Payload{})

	if rep.Confidence != agents.ConfidenceLow {
		t.Fatalf("expected low confidence without nutrition data, got %s", rep.Confidence)
	}
	if !hasAction(rep.Recommendations, "optimize_longevity_nutrition") {
		t.Fatal("expected the general longevity nutrition recommendation")
	}
}

func TestMacroPercentages(t *testing.T) {
	protein, carbs, fat, ok := agents.MacroPercentages(110, 250, 70)
	if !ok {
		t.Fatal("expected ok for non-zero macros")
	}
	if protein+carbs+fat != 100 {
		t.Fatalf("percentages should sum to 100, got %d+%d+%d", protein, carbs, fat)
	}
	if protein != 21 || carbs != 48 || fat != 31 {
		t.Fatalf("unexpected split: %d/%d/%d", protein, carbs, fat)
	}

	if _, _, _, ok := agents.MacroPercentages(0, 0, 0); ok {
		t.Fatal("expected ok=false when no macros reported")
	}

	protein, carbs, fat, _ = agents.MacroPercentages(50, 50, 0)
	if protein != 50 || carbs != 50 || fat != 0 {
		t.Fatalf("even split distorted: %d/%d/%d", protein, carbs, fat)
	}
}
