package analysis

import "strings"

// classifyMBTI derives a four-letter code. A missing dimension counts as 50%, which resolves to
// the high letter like any other tie.
func classifyMBTI(in *Input) Classification {
	var code strings.Builder
	for _, d := range in.Tables.MBTI.Dichotomies {
		pct, ok := percentageOf(in.Scores, d.Dimension)
		if !ok {
			pct = neutralMark
		}
		if pct >= neutralMark {
			code.WriteString(d.High)
		} else {
			code.WriteString(d.Low)
		}
	}
	profile := in.Tables.Profile(code.String())
	return Classification{
		OverallType:     code.String(),
		TypeName:        profile.Name,
		TypeDescription: profile.Description,
		Profile:         &profile,
	}
}

func narrateMBTI(_ *Input, c *Classification) Narrative {
	if c.Profile == nil {
		return Narrative{}
	}
	p := c.Profile.clone()
	return Narrative{
		Characteristics:   p.Characteristics,
		Strengths:         p.Strengths,
		GrowthAreas:       p.GrowthAreas,
		CareerSuggestions: p.CareerSuggestions,
		RelationshipTips:  p.RelationshipTips,
	}
}
