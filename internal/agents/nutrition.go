package agents

import (
	"fmt"
	"math"
	"strings"

	"github.com/jpmellow/longevity-snap-02/internal/assessment"
)

// Dietary patterns with established longevity evidence.
var longevityDietaryPatterns = []string{
	"Mediterranean",
	"DASH",
	"Plant-forward",
	"Blue Zone inspired",
	"MIND",
}

// Daily intake targets, protein in g/kg and fiber in g.
const (
	proteinMinPerKG     = 0.8
	proteinOptimalPerKG = 1.2
	fiberMinGrams       = 25.0
	fiberOptimalGrams   = 30.0

	// Reported intake below this suggests under-fueling for most adults.
	lowCalorieThreshold = 1500
)

// NutritionAgent analyzes macronutrient distribution and dietary pattern
// alignment with longevity-promoting diets.
type NutritionAgent struct{}

func NewNutritionAgent() *NutritionAgent { return &NutritionAgent{} }

func (a *NutritionAgent) Name() string { return AgentNutrition }

func (a *NutritionAgent) Analyze(p *assessment.Payload) Report {
	an := a.analyze(p)
	return Report{
		Agent:           AgentNutrition,
		Confidence:      a.confidence(an),
		Recommendations: a.recommendations(an),
		Insights:        a.insights(an),
		KeyFindings:     a.keyFindings(an),
	}
}

type nutritionAnalysis struct {
	hasMacros    bool
	proteinPct   int
	carbsPct     int
	fatPct       int
	proteinPerKG float64
	fiberGrams   float64
	pattern      string
	aligned      bool
	strengths    []string
	areas        []string
	alignment    string
}

func (a *NutritionAgent) analyze(p *assessment.Payload) *nutritionAnalysis {
	an := &nutritionAnalysis{}

	n := p.Nutrition
	if n != nil && n.Calories > 0 {
		if protein, carbs, fat, ok := MacroPercentages(n.ProteinGrams, n.CarbGrams, n.FatGrams); ok {
			an.hasMacros = true
			an.proteinPct, an.carbsPct, an.fatPct = protein, carbs, fat
		}

		weightKG := 70.0
		if p.Demographics != nil && p.Demographics.WeightKG > 0 {
			weightKG = p.Demographics.WeightKG
		}
		an.proteinPerKG = math.Round(n.ProteinGrams/weightKG*10) / 10

		if n.FiberGrams != nil {
			an.fiberGrams = *n.FiberGrams
		}

		switch {
		case an.proteinPerKG >= proteinOptimalPerKG:
			an.strengths = append(an.strengths, "Optimal protein intake for muscle maintenance and longevity")
		case an.proteinPerKG >= proteinMinPerKG:
			an.strengths = append(an.strengths, "Adequate protein intake")
		default:
			an.areas = append(an.areas, "Increase protein intake for optimal muscle maintenance")
		}

		switch {
		case an.fiberGrams >= fiberOptimalGrams:
			an.strengths = append(an.strengths, "Excellent fiber intake supporting gut health and longevity")
		case an.fiberGrams >= fiberMinGrams:
			an.strengths = append(an.strengths, "Adequate fiber intake")
		default:
			an.areas = append(an.areas, "Increase fiber intake from diverse plant sources")
		}

		if n.Calories < lowCalorieThreshold {
			an.areas = append(an.areas, "Increase caloric intake to meet daily energy needs")
		}

		dietPreference := ""
		if p.Goals != nil {
			dietPreference = p.Goals.Diet
		}
		if isLongevityPattern(dietPreference) {
			an.pattern = dietPreference
			an.aligned = true
			an.strengths = append(an.strengths, fmt.Sprintf("Following %s dietary pattern associated with longevity", dietPreference))
		} else {
			switch {
			case an.proteinPct > 25 && an.carbsPct < 40:
				an.pattern = "High protein, lower carb"
			case an.fatPct > 40:
				an.pattern = "High fat"
			case an.carbsPct > 60:
				an.pattern = "High carbohydrate"
			default:
				an.pattern = "Mixed/balanced"
			}

			if n.DetailedMacros {
				an.aligned = true
				an.strengths = append(an.strengths, "Diet includes diverse plant foods supporting longevity")
			} else {
				an.areas = append(an.areas, "Increase plant diversity for longevity benefits")
			}
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

func (a *NutritionAgent) recommendations(an *nutritionAnalysis) []Recommendation {
	var recs []Recommendation

	for _, area := range an.areas {
		lower := strings.ToLower(area)

		if strings.Contains(lower, "protein") {
			recs = append(recs, Recommendation{
				Action:      "increase_protein_intake",
				Category:    "nutrition",
				Subcategory: "protein",
				Priority:    PriorityHigh,
				Description: "Gradually increase protein intake to 1.2-1.6g per kg of body weight daily",
				Reasoning:   "Optimal protein intake supports muscle maintenance, immune function, and metabolic health - all critical factors in longevity",
				Evidence:    EvidenceSystematicReview,
				Implementation: []string{
					"Include a protein source with each meal (20-30g)",
					"Consider protein distribution throughout the day rather than single large doses",
					"Focus on high-quality protein sources (lean meats, fish, legumes, dairy)",
				},
			})
		}

		if strings.Contains(lower, "fiber") {
			recs = append(recs, Recommendation{
				Action:      "increase_fiber_intake",
				Category:    "nutrition",
				Subcategory: "fiber",
				Priority:    PriorityHigh,
				Description: "Gradually increase fiber intake to 30+ grams daily from diverse plant sources",
				Reasoning:   "Dietary fiber supports gut microbiome diversity, reduces inflammation, and is consistently associated with longevity in population studies",
				Evidence:    EvidenceMetaAnalysis,
				Implementation: []string{
					"Add an additional serving of vegetables to lunch and dinner",
					"Include legumes (beans, lentils) 3+ times weekly",
					"Choose whole grains over refined options",
					"Aim for 30+ different plant foods weekly for microbiome diversity",
				},
			})
		}

		if strings.Contains(lower, "caloric") {
			recs = append(recs, Recommendation{
				Action:      "increase_caloric_intake",
				Category:    "nutrition",
				Subcategory: "energy",
				Priority:    PriorityMedium,
				Description: "Increase daily caloric intake toward your estimated energy needs",
				Reasoning:   "Sustained very low energy intake risks micronutrient shortfalls, lean mass loss, and reduced energy availability",
				Evidence:    EvidenceExpertConsensus,
				Implementation: []string{
					"Add an energy-dense snack (nuts, yogurt, nut butter) between meals",
					"Increase portion sizes gradually at one meal per day",
					"Track intake for a week to confirm you are meeting your needs",
				},
			})
		}

		if strings.Contains(lower, "plant") {
			recs = append(recs, Recommendation{
				Action:      "adopt_plant_forward_diet",
				Category:    "nutrition",
				Subcategory: "dietary_pattern",
				Priority:    PriorityMedium,
				Description: "Shift toward a more plant-forward dietary pattern while maintaining adequate protein",
				Reasoning:   "Plant-forward dietary patterns are consistently associated with longevity and reduced chronic disease risk in population studies",
				Evidence:    EvidenceClinicalGuidelines,
				Implementation: []string{
					"Make vegetables the center of your plate",
					"Include a wide variety of colorful plant foods",
					"Limit ultra-processed foods",
					"Consider a Mediterranean or MIND dietary pattern",
				},
			})
		}
	}

	if len(recs) < 2 {
		recs = append(recs, Recommendation{
			Action:      "optimize_longevity_nutrition",
			Category:    "nutrition",
			Subcategory: "dietary_pattern",
			Priority:    PriorityHigh,
			Description: "Adopt key nutritional practices associated with longevity and healthspan",
			Reasoning:   "Specific dietary patterns and practices are consistently associated with exceptional longevity in population studies",
			Evidence:    EvidenceSystematicReview,
			Implementation: []string{
				"Emphasize plant diversity (30+ different plant foods weekly)",
				"Include adequate protein (1.2-1.6g/kg/day) distributed throughout the day",
				"Consume omega-3 rich foods regularly (fatty fish, walnuts, flax)",
				"Consider time-restricted eating (8-10 hour eating window)",
			},
		})
	}

	return recs
}

func (a *NutritionAgent) insights(an *nutritionAnalysis) []Insight {
	var insights []Insight

	if an.pattern != "" {
		insights = append(insights, Insight{
			Type:        "dietary_pattern",
			Title:       fmt.Sprintf("Current Dietary Pattern: %s", an.pattern),
			Description: dietaryPatternDescription(an.pattern),
			Relevance:   "high",
		})
	}

	if an.hasMacros {
		insights = append(insights, Insight{
			Type:  "macronutrient_distribution",
			Title: "Macronutrient Balance",
			Description: fmt.Sprintf("Your current diet consists of approximately %d%% protein, %d%% carbohydrates, and %d%% fat.",
				an.proteinPct, an.carbsPct, an.fatPct),
			Relevance: "medium",
		})
	}

	if an.alignment != "" {
		insights = append(insights, Insight{
			Type:        "longevity_alignment",
			Title:       fmt.Sprintf("Longevity Nutrition Alignment: %s", an.alignment),
			Description: longevityAlignmentDescription(an.alignment),
			Relevance:   "high",
		})
	}

	return insights
}

func (a *NutritionAgent) keyFindings(an *nutritionAnalysis) []string {
	var findings []string

	if an.pattern != "" {
		findings = append(findings, fmt.Sprintf("Current dietary pattern: %s", an.pattern))
	}
	if an.hasMacros {
		findings = append(findings, fmt.Sprintf("Macronutrient ratio: %d%% protein, %d%% carbs, %d%% fat",
			an.proteinPct, an.carbsPct, an.fatPct))
	}
	if an.proteinPerKG > 0 {
		switch {
		case an.proteinPerKG >= proteinOptimalPerKG:
			findings = append(findings, fmt.Sprintf("Optimal protein intake: %sg/kg", formatFloat(an.proteinPerKG)))
		case an.proteinPerKG >= proteinMinPerKG:
			findings = append(findings, fmt.Sprintf("Adequate protein intake: %sg/kg", formatFloat(an.proteinPerKG)))
		default:
			findings = append(findings, fmt.Sprintf("Suboptimal protein intake: %sg/kg", formatFloat(an.proteinPerKG)))
		}
	}
	if an.fiberGrams > 0 {
		switch {
		case an.fiberGrams >= fiberOptimalGrams:
			findings = append(findings, fmt.Sprintf("Excellent fiber intake: %sg", formatFloat(an.fiberGrams)))
		case an.fiberGrams >= fiberMinGrams:
			findings = append(findings, fmt.Sprintf("Adequate fiber intake: %sg", formatFloat(an.fiberGrams)))
		default:
			findings = append(findings, fmt.Sprintf("Suboptimal fiber intake: %sg", formatFloat(an.fiberGrams)))
		}
	}
	if an.alignment != "" {
		findings = append(findings, fmt.Sprintf("Longevity nutrition alignment: %s", an.alignment))
	}

	return findings
}

func (a *NutritionAgent) confidence(an *nutritionAnalysis) Confidence {
	hasDetail := an.hasMacros || an.proteinPerKG > 0
	hasPattern := an.pattern != ""
	switch {
	case hasDetail && hasPattern:
		return ConfidenceHigh
	case !hasDetail && !hasPattern:
		return ConfidenceLow
	default:
		return ConfidenceMedium
	}
}

// MacroPercentages splits the calories contributed by protein, carbohydrate,
// and fat (4/4/9 kcal per gram) into integer percentages that sum to exactly
// 100, distributing rounding leftovers by largest remainder. ok is false when
// no macro grams are reported.
func MacroPercentages(proteinG, carbG, fatG float64) (protein, carbs, fat int, ok bool) {
	cals := [3]float64{proteinG * 4, carbG * 4, fatG * 9}
	total := cals[0] + cals[1] + cals[2]
	if total <= 0 {
		return 0, 0, 0, false
	}

	var parts [3]int
	var remainders [3]float64
	sum := 0
	for i, c := range cals {
		exact := c / total * 100
		parts[i] = int(math.Floor(exact))
		remainders[i] = exact - float64(parts[i])
		sum += parts[i]
	}
	for sum < 100 {
		best := 0
		for i := 1; i < len(parts); i++ {
			if remainders[i] > remainders[best] {
				best = i
			}
		}
		parts[best]++
		remainders[best] = -1
		sum++
	}
	return parts[0], parts[1], parts[2], true
}

func isLongevityPattern(diet string) bool {
	for _, p := range longevityDietaryPatterns {
		if diet == p {
			return true
		}
	}
	return false
}

func dietaryPatternDescription(pattern string) string {
	descriptions := map[string]string{
		"Mediterranean": "Your diet resembles the Mediterranean pattern, characterized by abundant plant foods, " +
			"olive oil, moderate fish and dairy, and limited red meat. This pattern is strongly " +
			"associated with longevity and reduced chronic disease risk.",
		"DASH": "Your diet aligns with the DASH (Dietary Approaches to Stop Hypertension) pattern, " +
			"which emphasizes fruits, vegetables, whole grains, lean proteins, and limited sodium. " +
			"This pattern supports cardiovascular health and longevity.",
		"Plant-forward": "Your diet emphasizes plant foods while not necessarily eliminating animal products. " +
			"This flexible approach is associated with longevity benefits while maintaining " +
			"nutritional adequacy.",
		"Blue Zone inspired": "Your diet reflects patterns observed in Blue Zones (regions with exceptional longevity), " +
			"including abundant plant foods, limited meat, and moderate caloric intake.",
		"MIND": "Your diet follows the MIND (Mediterranean-DASH Intervention for Neurodegenerative Delay) pattern, " +
			"which combines elements of Mediterranean and DASH diets with specific emphasis on foods " +
			"that support brain health and cognitive function.",
		"High protein, lower carb": "Your diet emphasizes protein with moderate fat and limited carbohydrates. " +
			"While protein adequacy supports muscle maintenance with aging, consider " +
			"plant diversity and quality of carbohydrate sources for optimal longevity.",
		"High fat": "Your diet contains a higher proportion of fat. The quality and sources of fat " +
			"(e.g., olive oil, avocados, nuts vs. processed foods) significantly impact " +
			"how this pattern affects longevity.",
		"High carbohydrate": "Your diet emphasizes carbohydrates. The quality of carbohydrate sources " +
			"(whole vs. refined, fiber content) significantly impacts how this pattern " +
			"affects longevity and metabolic health.",
		"Mixed/balanced": "Your diet contains a balanced mix of macronutrients without strong emphasis " +
			"in any particular direction. Focus on food quality and plant diversity to " +
			"optimize this pattern for longevity.",
	}
	if d, ok := descriptions[pattern]; ok {
		return d
	}
	return "Your dietary pattern has been analyzed based on your reported intake."
}

func longevityAlignmentDescription(alignment string) string {
	descriptions := map[string]string{
		"Strong": "Your current dietary pattern strongly aligns with evidence-based approaches for " +
			"promoting longevity and healthspan. Continue these beneficial practices while " +
			"making minor optimizations as suggested.",
		"Moderate": "Your current dietary pattern includes several elements associated with longevity, " +
			"along with some opportunities for optimization. Implementing the suggested " +
			"recommendations could further enhance the longevity-promoting aspects of your diet.",
		"Needs improvement": "Your current dietary pattern has significant opportunities for alignment " +
			"with evidence-based approaches for promoting longevity. Implementing the " +
			"suggested recommendations could substantially enhance your nutritional " +
			"foundation for healthy aging.",
	}
	if d, ok := descriptions[alignment]; ok {
		return d
	}
	return "Your dietary pattern has been analyzed for alignment with longevity research."
}
