package agents

import "github.com/jpmellow/longevity-snap-02/internal/assessment"

// Confidence grades how much weight an agent places on its own analysis.
// Levels are ordered: uncertain < low < medium < high.
type Confidence string

const (
	ConfidenceUncertain Confidence = "uncertain"
	ConfidenceLow       Confidence = "low"
	ConfidenceMedium    Confidence = "medium"
	ConfidenceHigh      Confidence = "high"
)

var confidenceRank = map[Confidence]int{
	ConfidenceUncertain: 0,
	ConfidenceLow:       1,
	ConfidenceMedium:    2,
	ConfidenceHigh:      3,
}

// Lower reports whether c ranks strictly below other.
func (c Confidence) Lower(other Confidence) bool {
	return confidenceRank[c] < confidenceRank[other]
}

// Agent names as they appear in agent_contributions and source_agent tags.
const (
	AgentMedicalReasoning = "medical_reasoning"
	AgentNutrition        = "nutrition"
	AgentSleep            = "sleep"
	AgentExercise         = "exercise"
	AgentPersonalization  = "personalization"
)

// Recommendation priorities.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Evidence categories attached to recommendations and insights.
const (
	EvidenceClinicalGuidelines        = "clinical_guidelines"
	EvidenceSystematicReview          = "systematic_review"
	EvidenceMetaAnalysis              = "meta_analysis"
	EvidenceRandomizedTrial           = "randomized_trial"
	EvidenceRandomizedControlledTrial = "randomized_controlled_trial"
	EvidenceObservationalStudy        = "observational_study"
	EvidenceExpertOpinion             = "expert_opinion"
	EvidenceExpertConsensus           = "expert_consensus"
)

// Recommendation is a single actionable item produced by an agent.
// PersonalizedAction is filled in only by the personalization pass.
type Recommendation struct {
	Action             string   `json:"action"`
	PersonalizedAction string   `json:"personalized_action,omitempty"`
	Category           string   `json:"category"`
	Subcategory        string   `json:"subcategory,omitempty"`
	Priority           string   `json:"priority"`
	Description        string   `json:"description"`
	Reasoning          string   `json:"reasoning,omitempty"`
	Evidence           string   `json:"evidence,omitempty"`
	Implementation     []string `json:"implementation,omitempty"`
	SourceAgent        string   `json:"source_agent,omitempty"`
}

// Insight is an observation about the user's data rather than an action.
type Insight struct {
	Type        string     `json:"type"`
	Title       string     `json:"title,omitempty"`
	Description string     `json:"description"`
	Relevance   string     `json:"relevance,omitempty"`
	Confidence  Confidence `json:"confidence,omitempty"`
	Reasoning   string     `json:"reasoning,omitempty"`
	Evidence    string     `json:"evidence,omitempty"`
	SourceAgent string     `json:"source_agent,omitempty"`
}

// Report is the complete output of a single agent run.
type Report struct {
	Agent           string           `json:"agent"`
	Confidence      Confidence       `json:"confidence"`
	Recommendations []Recommendation `json:"recommendations"`
	Insights        []Insight        `json:"insights"`
	KeyFindings     []string         `json:"key_findings"`
}

// Agent analyzes an assessment payload from one specialist perspective.
type Agent interface {
	Name() string
	Analyze(p *assessment.Payload) Report
}

// NarrativeInsight is the outcome of free-text sleep narrative analysis.
type NarrativeInsight struct {
	Area           string  `json:"area"`
	Recommendation string  `json:"recommendation"`
	Sentiment      float64 `json:"sentiment"`
}

// Flag marks an agent report that needs critical evaluation before synthesis.
type Flag struct {
	Agent  string `json:"agent"`
	Type   string `json:"type"`
	Detail string `json:"detail,omitempty"`
}

// EvaluationNote records the outcome of critically evaluating a flagged report.
type EvaluationNote struct {
	Agent                string `json:"agent"`
	Evaluation           string `json:"evaluation"`
	ConfidenceAdjustment string `json:"confidence_adjustment,omitempty"`
	Resolution           string `json:"resolution,omitempty"`
}

// Contribution summarizes what one agent added to the final evaluation.
type Contribution struct {
	Confidence  Confidence `json:"confidence"`
	KeyFindings []string   `json:"key_findings"`
}

// Evaluation is the synthesized result of a full processor run across all
// selected agents.
type Evaluation struct {
	Recommendations  []Recommendation        `json:"recommendations"`
	Insights         []Insight               `json:"insights"`
	Confidence       Confidence              `json:"confidence"`
	Contributions    map[string]Contribution `json:"agent_contributions"`
	Notes            []EvaluationNote        `json:"evaluation_notes,omitempty"`
	Narrative        *NarrativeInsight       `json:"narrative_insight,omitempty"`
	MotivationDriver string                  `json:"motivation_driver"`
}
