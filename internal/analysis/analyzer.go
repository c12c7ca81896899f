package analysis

import (
	"slices"

	"github.com/soaringjerry/mindscope/internal/models"
)

// Analyzer turns an assessment and its answers into a DetailedResult. It is safe for concurrent use.
type Analyzer struct {
	tables   *Tables
	registry *Registry
}

// NewAnalyzer builds an analyzer over t with the built-in instruments. A nil t uses the embedded tables.
func NewAnalyzer(t *Tables) *Analyzer {
	if t == nil {
		t = DefaultTables()
	}
	return &Analyzer{tables: t, registry: DefaultRegistry(t)}
}

// Family reports which instrument family the analyzer resolves for assessment.
func (a *Analyzer) Family(assessment *models.Assessment) Family {
	return a.registry.Resolve(assessment).Family
}

// Analyze scores the answers, classifies the result, and builds the narrative. The returned
// result shares no slices with the tables or the inputs.
func (a *Analyzer) Analyze(assessment *models.Assessment, answers []models.Answer) *models.DetailedResult {
	in := &Input{
		Assessment: assessment,
		Answers:    answers,
		Scores:     ScoreDimensions(assessment, answers),
		Tables:     a.tables,
	}
	instrument := a.registry.Resolve(assessment)
	c := instrument.Classifier.Classify(in)
	n := instrument.Narrator.Narrate(in, &c)

	scores := in.Scores
	if c.Scores != nil {
		scores = c.Scores
	}
	advice := make([]string, 0, len(n.ActionableAdvice)+len(a.tables.GeneralAdvice))
	advice = append(advice, n.ActionableAdvice...)
	advice = append(advice, a.tables.GeneralAdvice...)

	return &models.DetailedResult{
		OverallType:       c.OverallType,
		TypeName:          c.TypeName,
		TypeDescription:   c.TypeDescription,
		DimensionScores:   slices.Clone(scores),
		Characteristics:   nonNil(n.Characteristics),
		Strengths:         nonNil(n.Strengths),
		GrowthAreas:       nonNil(n.GrowthAreas),
		CareerSuggestions: nonNil(n.CareerSuggestions),
		RelationshipTips:  nonNil(n.RelationshipTips),
		ActionableAdvice:  advice,
		Clinical:          c.Clinical,
		Warnings:          slices.Clone(c.Warnings),
	}
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return slices.Clone(in)
}
