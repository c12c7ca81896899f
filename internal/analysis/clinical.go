package analysis

import (
	"fmt"
	"slices"
	"strings"

	"github.com/soaringjerry/mindscope/internal/models"
)

// ClinicalInstrument scores an assessment against the clinical table registered under scaleID.
func ClinicalInstrument(scaleID string) Instrument {
	return Instrument{
		Family: Family(scaleID),
		Classifier: ClassifierFunc(func(in *Input) Classification {
			return classifyClinical(scaleID, in)
		}),
		Narrator: NarratorFunc(narrateClinical),
	}
}

// classifyClinical sums the raw answer scores and bands the total. The clinical result always
// carries the official maximum. The primary dimension score takes it only when the questionnaire
// has the official length; otherwise a warning is attached and the generic maximum stands there.
func classifyClinical(scaleID string, in *Input) Classification {
	scale, ok := in.Tables.Clinical[scaleID]
	if !ok || len(scale.Bands) == 0 {
		return Classification{}
	}

	var total float64
	for _, a := range in.Answers {
		if a.Score != nil {
			total += *a.Score
		}
	}

	var warnings []string
	if n := len(in.Assessment.Questions); n != scale.ExpectedQuestions {
		warnings = append(warnings, fmt.Sprintf(
			"The question bank has %d questions but the official %s has %d; treat this result as indicative only.",
			n, strings.ToUpper(scaleID), scale.ExpectedQuestions))
	}
	official := len(warnings) == 0

	band := scale.Band(total)
	result := &models.ClinicalResult{
		ScaleID:          scaleID,
		DimensionID:      scale.DimensionID,
		DimensionName:    scale.Label,
		TotalScore:       total,
		MaxScore:         scale.MaxScore,
		Percentage:       Percentage(total, scale.MaxScore),
		OfficialMaxScore: scale.MaxScore,
		Level:            band.Level,
		Severity:         band.Severity,
		SeverityName:     band.Name,
		SeverityNameZh:   band.NameZh,
		Cutoffs:          scale.Cutoffs(),
	}
	// A non-official bank keeps its generic maximum on the primary dimension.
	primaryMax, primaryPct := result.MaxScore, result.Percentage
	if !official && len(in.Scores) > 0 {
		primaryMax, primaryPct = in.Scores[0].MaxScore, in.Scores[0].Percentage
	}

	c := Classification{Clinical: result, Band: &band, Warnings: warnings}
	if len(in.Scores) > 0 {
		scores := make([]models.DimensionScore, 0, len(in.Scores))
		scores = append(scores, models.DimensionScore{
			DimensionID:    scale.DimensionID,
			DimensionName:  scale.Label,
			Score:          total,
			MaxScore:       primaryMax,
			Percentage:     primaryPct,
			Level:          band.Level,
			Interpretation: primaryInterpretation(in.Assessment, band.Level),
		})
		c.Scores = append(scores, in.Scores[1:]...)
	}
	return c
}

func primaryInterpretation(a *models.Assessment, level models.Level) string {
	if len(a.Dimensions) == 0 {
		return ""
	}
	return a.Dimensions[0].Interpretation.For(level)
}

func narrateClinical(_ *Input, c *Classification) Narrative {
	if c.Band == nil {
		return Narrative{}
	}
	return Narrative{ActionableAdvice: slices.Clone(c.Band.Advice)}
}
