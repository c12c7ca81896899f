package analysis

import "github.com/soaringjerry/mindscope/internal/models"

func narrateBigFive(in *Input, c *Classification) Narrative {
	n := narrateGeneric(in, c)
	t := in.Tables.BigFive
	n.Strengths = linesAt(in.Scores, t.HighStrengths, models.LevelHigh)
	n.GrowthAreas = append(linesAt(in.Scores, t.HighGrowth, models.LevelHigh), linesAt(in.Scores, t.LowGrowth, models.LevelLow)...)
	n.CareerSuggestions = linesAt(in.Scores, t.HighCareers, models.LevelHigh)
	return n
}

// linesAt returns, in table order, the text of every line whose dimension scored at level.
func linesAt(scores []models.DimensionScore, lines []DimensionLine, level models.Level) []string {
	var out []string
	for _, l := range lines {
		if got, ok := levelOf(scores, l.Dimension); ok && got == level {
			out = append(out, l.Text)
		}
	}
	return out
}
