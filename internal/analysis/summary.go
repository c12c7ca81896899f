package analysis

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/soaringjerry/mindscope/internal/models"
)

// Summary renders the one-line result summary. Clinical framing always wins, then the type,
// then high dimensions, then a plain completion message.
func Summary(a *models.Assessment, r *models.DetailedResult) string {
	name := a.DisplayName()
	if r == nil {
		return fmt.Sprintf("You have completed the %s assessment. See the detailed result for more.", name)
	}
	if c := r.Clinical; c != nil {
		line := fmt.Sprintf("%s total score %s/%s, severity: %s.", name, formatScore(c.TotalScore), formatScore(c.MaxScore), c.SeverityName)
		if len(r.Warnings) > 0 {
			line += " (Note: " + r.Warnings[0] + ")"
		}
		return line
	}
	if r.OverallType != "" && r.TypeName != "" {
		return strings.TrimSpace(fmt.Sprintf("Your %s result is %s (%s). %s", name, r.OverallType, r.TypeName, r.TypeDescription))
	}
	var high []string
	for _, s := range r.DimensionScores {
		if s.Level == models.LevelHigh {
			high = append(high, s.DimensionName)
		}
	}
	if len(high) > 0 {
		return fmt.Sprintf("In the %s assessment you stood out on: %s.", name, strings.Join(high, ", "))
	}
	return fmt.Sprintf("You have completed the %s assessment. See the detailed result for more.", name)
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
