package assessment_test

import (
	"testing"

	"github.com/jpmellow/longevity-snap-02/internal/assessment"
)

func validPayload() *assessment.Payload {
	return &assessment.Payload{
		Demographics: &assessment.Demographics{Age: 34, Gender: "female", HeightCM: 168, WeightKG: 62},
		Goals:        &assessment.Goals{Goals: []string{"healthy aging", "more energy"}},
		Sleep:        &assessment.Sleep{AverageDuration: 7.5, Quality: "good", BedtimeConsistency: "high"},
		Nutrition:    &assessment.Nutrition{Calories: 2000, ProteinGrams: 90, CarbGrams: 220, FatGrams: 70, DetailedMacros: true},
		Exercise:     &assessment.Exercise{StrengthSessions: 2, CardioSessions: 3, Intensity: "medium"},
		MentalHealth: &assessment.MentalHealth{StressLevel: 4},
	}
}

func TestValidateCompletePayload(t *testing.T) {
	result := assessment.Validate(validPayload())
	if !result.Complete() {
		t.Fatalf("expected complete payload, got step errors: %+v", result.Steps)
	}
}

func TestValidateMissingSection(t *testing.T) {
	p := validPayload()
	p.Sleep = nil

	result := assessment.Validate(p)
	if result.Complete() {
		t.Fatal("expected incomplete payload")
	}
	if len(result.Steps) != 1 {
		t.Fatalf("expected 1 incomplete step, got %d", len(result.Steps))
	}
	if result.Steps[0].Step != assessment.StepSleep {
		t.Fatalf("expected sleep step, got %s", result.Steps[0].Step)
	}
	if result.Steps[0].Errors[0].Message != "section is required" {
		t.Fatalf("unexpected message: %s", result.Steps[0].Errors[0].Message)
	}
}

func TestValidateRejectsInvalidFields(t *testing.T) {
	p := validPayload()
	p.Demographics.Age = 0
	p.Demographics.HeightCM = -3

	result := assessment.Validate(p)
	if result.Complete() {
		t.Fatal("expected incomplete payload")
	}
	if result.Steps[0].Step != assessment.StepDemographics {
		t.Fatalf("expected demographics step, got %s", result.Steps[0].Step)
	}
	if len(result.Steps[0].Errors) != 2 {
		t.Fatalf("expected 2 field errors, got %d", len(result.Steps[0].Errors))
	}
}

func TestValidateReportsStepsInFormOrder(t *testing.T) {
	p := validPayload()
	p.Goals = nil
	p.MentalHealth = &assessment.MentalHealth{StressLevel: 11}

	result := assessment.Validate(p)
	if len(result.Steps) != 2 {
		t.Fatalf("expected 2 incomplete steps, got %d", len(result.Steps))
	}
	if result.Steps[0].Step != assessment.StepGoals || result.Steps[1].Step != assessment.StepMentalHealth {
		t.Fatalf("steps out of order: %s, %s", result.Steps[0].Step, result.Steps[1].Step)
	}
}

func TestValidateStepUnknown(t *testing.T) {
	errs := assessment.ValidateStep("biomarkers", validPayload())
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d", len(errs))
	}
	if errs[0].Message != "unknown step" {
		t.Fatalf("unexpected message: %s", errs[0].Message)
	}
}

func TestValidateBiometricsOptional(t *testing.T) {
	p := validPayload()
	p.Biometrics = nil

	if errs := assessment.ValidateStep(assessment.StepBiometrics, p); len(errs) != 0 {
		t.Fatalf("expected no errors for omitted biometrics, got %+v", errs)
	}
}

func TestValidateBiometricsHalfBloodPressure(t *testing.T) {
	systolic := 120
	p := validPayload()
	p.Biometrics = &assessment.Biometrics{SystolicBP: &systolic}

	errs := assessment.ValidateStep(assessment.StepBiometrics, p)
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d", len(errs))
	}
	if errs[0].Field != "diastolic_bp" {
		t.Fatalf("unexpected field: %s", errs[0].Field)
	}
}

func TestValidateBiometricsOutOfRange(t *testing.T) {
	hr := 400
	p := validPayload()
	p.Biometrics = &assessment.Biometrics{RestingHeartRate: &hr}

	errs := assessment.ValidateStep(assessment.StepBiometrics, p)
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d", len(errs))
	}
	if errs[0].Field != "resting_heart_rate" {
		t.Fatalf("unexpected field: %s", errs[0].Field)
	}
}

func TestBMI(t *testing.T) {
	d := &assessment.Demographics{HeightCM: 180, WeightKG: 81}
	bmi := d.BMI()
	if bmi < 24.9 || bmi > 25.1 {
		t.Fatalf("expected BMI near 25, got %f", bmi)
	}

	var missing *assessment.Demographics
	if missing.BMI() != 0 {
		t.Fatal("expected 0 BMI for nil demographics")
	}
}
