package analysis

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/soaringjerry/mindscope/internal/models"
)

// classifyDISC picks the dimension with the highest percentage; the earliest dimension wins ties.
// The type code is the first character of the winning dimension id, upper-cased.
func classifyDISC(in *Input) Classification {
	code := in.Tables.DISC.DefaultType
	best := -1
	for _, s := range in.Scores {
		if s.Percentage > best {
			best = s.Percentage
			if s.DimensionID != "" {
				r, _ := utf8.DecodeRuneInString(s.DimensionID)
				code = string(unicode.ToUpper(r))
			} else {
				code = in.Tables.DISC.DefaultType
			}
		}
	}
	name, ok := in.Tables.DISC.Names[code]
	if !ok {
		name = code
	}
	return Classification{OverallType: code, TypeName: name}
}

func narrateDISC(in *Input, _ *Classification) Narrative {
	var n Narrative
	format := in.Tables.DISC.CharacteristicFormat
	if format == "" {
		format = "%s"
	}
	for _, s := range in.Scores {
		if s.Level != models.LevelHigh {
			continue
		}
		n.Characteristics = append(n.Characteristics, fmt.Sprintf(format, s.DimensionName))
		if trait, ok := in.Tables.DISC.Traits[s.DimensionID]; ok {
			if trait.Strength != "" {
				n.Strengths = append(n.Strengths, trait.Strength)
			}
			if trait.Growth != "" {
				n.GrowthAreas = append(n.GrowthAreas, trait.Growth)
			}
		}
	}
	return n
}
