package analysis

import (
	"math"

	"github.com/soaringjerry/mindscope/internal/models"
)

const (
	lowCeiling  = 33
	highFloor   = 66
	neutralMark = 50
)

// Percentage rounds score/max to the nearest whole percent, halves rounding up. A zero max yields 0.
func Percentage(score, max float64) int {
	if max <= 0 {
		return 0
	}
	return int(math.Floor(score/max*100 + 0.5))
}

// LevelFor bands a percentage: below 33 is low, above 66 is high, otherwise medium.
func LevelFor(percentage int) models.Level {
	switch {
	case percentage < lowCeiling:
		return models.LevelLow
	case percentage > highFloor:
		return models.LevelHigh
	default:
		return models.LevelMedium
	}
}

// ScoreDimensions aggregates scored answers per dimension, in the assessment's dimension order.
// Questions without an answer are skipped; answers whose value is not in the scoring map add 0
// but still count toward the maximum.
func ScoreDimensions(a *models.Assessment, answers []models.Answer) []models.DimensionScore {
	if a == nil || len(a.Dimensions) == 0 {
		return []models.DimensionScore{}
	}
	byQuestion := make(map[string]string, len(answers))
	for _, ans := range answers {
		if _, seen := byQuestion[ans.QuestionID]; !seen {
			byQuestion[ans.QuestionID] = ans.Value
		}
	}

	type tally struct{ total, max float64 }
	sums := make(map[string]*tally, len(a.Dimensions))
	for _, d := range a.Dimensions {
		sums[d.ID] = &tally{}
	}
	for i := range a.Questions {
		q := &a.Questions[i]
		if q.Dimension == "" || len(q.Scoring) == 0 {
			continue
		}
		t, ok := sums[q.Dimension]
		if !ok {
			continue
		}
		value, answered := byQuestion[q.ID]
		if !answered {
			continue
		}
		score, _ := q.ScoreFor(value)
		t.total += score
		t.max += q.MaxScore()
	}

	out := make([]models.DimensionScore, 0, len(a.Dimensions))
	for _, d := range a.Dimensions {
		t := sums[d.ID]
		pct := Percentage(t.total, t.max)
		level := LevelFor(pct)
		out = append(out, models.DimensionScore{
			DimensionID:    d.ID,
			DimensionName:  d.Name,
			Score:          t.total,
			MaxScore:       t.max,
			Percentage:     pct,
			Level:          level,
			Interpretation: d.Interpretation.For(level),
		})
	}
	return out
}

func percentageOf(scores []models.DimensionScore, dimensionID string) (int, bool) {
	for _, s := range scores {
		if s.DimensionID == dimensionID {
			return s.Percentage, true
		}
	}
	return 0, false
}

func levelOf(scores []models.DimensionScore, dimensionID string) (models.Level, bool) {
	for _, s := range scores {
		if s.DimensionID == dimensionID {
			return s.Level, true
		}
	}
	return "", false
}
