package agents

import (
	"github.com/sourcegraph/conc"

	"github.com/jpmellow/longevity-snap-02/internal/assessment"
)

// Flag types raised while reviewing agent reports.
const (
	flagLowConfidence = "low_confidence"
	flagContradiction = "contradiction"
)

// Processor coordinates the specialist agents: it selects which ones a
// payload warrants, fans them out, reviews the collected reports, and
// synthesizes a single evaluation.
type Processor struct {
	medical         *MedicalReasoningAgent
	nutrition       *NutritionAgent
	sleep           *SleepAgent
	exercise        *ExerciseAgent
	personalization *PersonalizationAgent
}

func NewProcessor() *Processor {
	return &Processor{
		medical:         NewMedicalReasoningAgent(),
		nutrition:       NewNutritionAgent(),
		sleep:           NewSleepAgent(),
		exercise:        NewExerciseAgent(),
		personalization: NewPersonalizationAgent(),
	}
}

// Process runs the full pipeline over one payload.
func (pr *Processor) Process(p *assessment.Payload) *Evaluation {
	if p == nil {
		p = &assessment.Payload{}
	}

	selected := pr.selectAgents(p)

	reports := make([]Report, len(selected))
	wg := conc.NewWaitGroup()
	for i, agent := range selected {
		// With the go directive at 1.21, range variables are shared across
		// iterations; copy them so each goroutine sees its own pair.
		i, agent := i, agent
		wg.Go(func() {
			reports[i] = agent.Analyze(p)
		})
	}
	wg.Wait()

	flags := flagReports(reports)
	notes, dropped := criticalEvaluation(flags)

	return pr.synthesize(p, reports, notes, dropped)
}

// selectAgents picks the fan-out set. Medical reasoning always runs; the
// others join when their section carries enough signal.
func (pr *Processor) selectAgents(p *assessment.Payload) []Agent {
	selected := []Agent{pr.medical}
	if p.Sleep != nil {
		selected = append(selected, pr.sleep)
	}
	if hasNutritionSignal(p.Nutrition) {
		selected = append(selected, pr.nutrition)
	}
	if p.Exercise != nil {
		selected = append(selected, pr.exercise)
	}
	return selected
}

// hasNutritionSignal requires detailed macro tracking or more than three
// reported nutrition values.
func hasNutritionSignal(n *assessment.Nutrition) bool {
	if n == nil {
		return false
	}
	if n.DetailedMacros {
		return true
	}
	signals := 0
	if n.Calories > 0 {
		signals++
	}
	if n.ProteinGrams > 0 {
		signals++
	}
	if n.CarbGrams > 0 {
		signals++
	}
	if n.FatGrams > 0 {
		signals++
	}
	if n.FiberGrams != nil {
		signals++
	}
	if n.SugarGrams != nil {
		signals++
	}
	if n.WaterLiters != nil {
		signals++
	}
	if n.PlantServings != nil {
		signals++
	}
	return signals > 3
}

func wantsPersonalization(p *assessment.Payload) bool {
	g := p.Goals
	if g == nil {
		return false
	}
	return len(g.Goals) > 0 || g.MotivationDriver != "" || g.Diet != "" ||
		g.ExerciseTime != "" || g.SleepTime != "" || g.WakeTime != ""
}

// flagReports marks reports needing critical evaluation: low or uncertain
// confidence, and the calorie contradiction where medical advises weight
// loss while nutrition advises eating more.
func flagReports(reports []Report) []Flag {
	var flags []Flag
	for _, rep := range reports {
		if rep.Confidence == ConfidenceLow || rep.Confidence == ConfidenceUncertain {
			flags = append(flags, Flag{Agent: rep.Agent, Type: flagLowConfidence})
		}
	}

	if hasAction(reports, AgentMedicalReasoning, "weight_management", "obesity_management") &&
		hasAction(reports, AgentNutrition, "increase_caloric_intake") {
		const detail = "Conflicting recommendations about calorie intake"
		flags = append(flags,
			Flag{Agent: AgentMedicalReasoning, Type: flagContradiction, Detail: detail},
			Flag{Agent: AgentNutrition, Type: flagContradiction, Detail: detail},
		)
	}

	return flags
}

func hasAction(reports []Report, agent string, actions ...string) bool {
	for _, rep := range reports {
		if rep.Agent != agent {
			continue
		}
		for _, rec := range rep.Recommendations {
			for _, action := range actions {
				if rec.Action == action {
					return true
				}
			}
		}
	}
	return false
}

// criticalEvaluation reviews each flag. Low-confidence reports are confirmed
// as-is; the calorie contradiction is resolved in favor of the medical
// recommendation, dropping the nutrition calorie recommendation from the
// final set.
func criticalEvaluation(flags []Flag) ([]EvaluationNote, map[string]bool) {
	var notes []EvaluationNote
	dropped := make(map[string]bool)

	for _, flag := range flags {
		switch flag.Type {
		case flagLowConfidence:
			notes = append(notes, EvaluationNote{
				Agent:                flag.Agent,
				Evaluation:           "Reviewed low confidence analysis and confirmed findings",
				ConfidenceAdjustment: "Confidence remains low due to insufficient data",
			})
		case flagContradiction:
			notes = append(notes, EvaluationNote{
				Agent:      flag.Agent,
				Evaluation: "Resolved contradiction with other agent",
				Resolution: "Prioritized medical recommendation over nutrition recommendation",
			})
			if flag.Agent == AgentNutrition {
				dropped["increase_caloric_intake"] = true
			}
		}
	}

	return notes, dropped
}

func (pr *Processor) synthesize(p *assessment.Payload, reports []Report, notes []EvaluationNote, dropped map[string]bool) *Evaluation {
	eval := &Evaluation{
		Confidence:       ConfidenceHigh,
		Contributions:    make(map[string]Contribution),
		Notes:            notes,
		MotivationDriver: DriverUnknown,
	}

	var merged []Recommendation
	for _, rep := range reports {
		for _, rec := range rep.Recommendations {
			if rep.Agent == AgentNutrition && dropped[rec.Action] {
				continue
			}
			rec.SourceAgent = rep.Agent
			merged = append(merged, rec)
		}
		for _, insight := range rep.Insights {
			insight.SourceAgent = rep.Agent
			eval.Insights = append(eval.Insights, insight)
		}
		eval.Contributions[rep.Agent] = Contribution{
			Confidence:  rep.Confidence,
			KeyFindings: rep.KeyFindings,
		}
	}

	if wantsPersonalization(p) {
		persReport, driver := pr.personalization.Personalize(p, merged)
		eval.MotivationDriver = driver
		// Source agents on the personalized set stay the original authors.
		merged = persReport.Recommendations
		for _, insight := range persReport.Insights {
			insight.SourceAgent = AgentPersonalization
			eval.Insights = append(eval.Insights, insight)
		}
		eval.Contributions[AgentPersonalization] = Contribution{
			Confidence:  persReport.Confidence,
			KeyFindings: persReport.KeyFindings,
		}
		reports = append(reports, persReport)
	}
	eval.Recommendations = merged

	// Overall confidence is the lowest across all contributing agents.
	for _, rep := range reports {
		if rep.Confidence.Lower(eval.Confidence) {
			eval.Confidence = rep.Confidence
		}
	}

	narrative := ""
	if p.Sleep != nil {
		narrative = p.Sleep.Narrative
	}
	insight := AnalyzeSleepNarrative(narrative)
	eval.Narrative = &insight

	return eval
}
