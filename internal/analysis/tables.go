package analysis

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/soaringjerry/mindscope/internal/models"
)

//go:embed tables.yaml
var embeddedTables []byte

// Profile is the narrative attached to a type code (MBTI) or to the fallback.
type Profile struct {
	Name              string   `yaml:"name"`
	Description       string   `yaml:"description"`
	Characteristics   []string `yaml:"characteristics"`
	Strengths         []string `yaml:"strengths"`
	GrowthAreas       []string `yaml:"growth_areas"`
	CareerSuggestions []string `yaml:"career_suggestions"`
	RelationshipTips  []string `yaml:"relationship_tips"`
}

// Dichotomy maps one dimension to the letter chosen at or above 50% (High) or below (Low).
type Dichotomy struct {
	Dimension string `yaml:"dimension"`
	High      string `yaml:"high"`
	Low       string `yaml:"low"`
}

type MBTITable struct {
	Dichotomies []Dichotomy        `yaml:"dichotomies"`
	Fallback    Profile            `yaml:"fallback"`
	Types       map[string]Profile `yaml:"types"`
}

type DISCTrait struct {
	Strength string `yaml:"strength"`
	Growth   string `yaml:"growth"`
}

type DISCTable struct {
	DefaultType          string               `yaml:"default_type"`
	Names                map[string]string    `yaml:"names"`
	Traits               map[string]DISCTrait `yaml:"traits"`
	CharacteristicFormat string               `yaml:"characteristic_format"`
}

// DimensionLine is a narrative line keyed by dimension id.
type DimensionLine struct {
	Dimension string `yaml:"dimension"`
	Text      string `yaml:"text"`
}

type BigFiveTable struct {
	HighStrengths []DimensionLine `yaml:"high_strengths"`
	HighGrowth    []DimensionLine `yaml:"high_growth"`
	LowGrowth     []DimensionLine `yaml:"low_growth"`
	HighCareers   []DimensionLine `yaml:"high_careers"`
}

// SeverityBand covers totals up to and including Max. Bands are ordered ascending.
type SeverityBand struct {
	Severity models.Severity `yaml:"severity"`
	Max      float64         `yaml:"max"`
	Name     string          `yaml:"name"`
	NameZh   string          `yaml:"name_zh"`
	Level    models.Level    `yaml:"level"`
	Advice   []string        `yaml:"advice"`
}

type ClinicalScale struct {
	Label             string         `yaml:"label"`
	DimensionID       string         `yaml:"dimension_id"`
	ExpectedQuestions int            `yaml:"expected_questions"`
	MaxScore          float64        `yaml:"max_score"`
	Bands             []SeverityBand `yaml:"bands"`
}

// Band returns the severity band containing total. Totals above the last band clamp to it.
func (c *ClinicalScale) Band(total float64) SeverityBand {
	for _, b := range c.Bands {
		if total <= b.Max {
			return b
		}
	}
	return c.Bands[len(c.Bands)-1]
}

// Cutoffs returns the lower bound of every band.
func (c *ClinicalScale) Cutoffs() []float64 {
	out := make([]float64, 0, len(c.Bands))
	lower := 0.0
	for _, b := range c.Bands {
		out = append(out, lower)
		lower = b.Max + 1
	}
	return out
}

// Tables holds the instrument lookup data used by classifiers and narrative builders.
type Tables struct {
	Version       int                      `yaml:"version"`
	MBTI          MBTITable                `yaml:"mbti"`
	DISC          DISCTable                `yaml:"disc"`
	BigFive       BigFiveTable             `yaml:"big_five"`
	Clinical      map[string]ClinicalScale `yaml:"clinical"`
	GeneralAdvice []string                 `yaml:"general_advice"`
}

var (
	defaultOnce   sync.Once
	defaultTables *Tables
)

// DefaultTables returns the embedded tables, parsed once.
func DefaultTables() *Tables {
	defaultOnce.Do(func() {
		t, err := ParseTables(embeddedTables)
		if err != nil {
			panic(fmt.Sprintf("analysis: embedded tables invalid: %v", err))
		}
		defaultTables = t
	})
	return defaultTables
}

// LoadTables reads tables from path. An empty path yields the embedded defaults.
func LoadTables(path string) (*Tables, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return DefaultTables(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read instrument tables: %w", err)
	}
	t, err := ParseTables(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// ParseTables decodes and validates a tables document.
func ParseTables(raw []byte) (*Tables, error) {
	var t Tables
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("decode instrument tables: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

func (t *Tables) Validate() error {
	var errs []error
	if len(t.MBTI.Dichotomies) == 0 {
		errs = append(errs, errors.New("mbti.dichotomies is empty"))
	}
	for i, d := range t.MBTI.Dichotomies {
		if d.Dimension == "" || d.High == "" || d.Low == "" {
			errs = append(errs, fmt.Errorf("mbti.dichotomies[%d] is incomplete", i))
		}
	}
	if strings.TrimSpace(t.MBTI.Fallback.Description) == "" {
		errs = append(errs, errors.New("mbti.fallback.description is required"))
	}
	if t.DISC.DefaultType == "" {
		errs = append(errs, errors.New("disc.default_type is required"))
	}
	if _, ok := t.DISC.Names[t.DISC.DefaultType]; !ok && t.DISC.DefaultType != "" {
		errs = append(errs, fmt.Errorf("disc.names has no entry for default type %q", t.DISC.DefaultType))
	}
	for id, scale := range t.Clinical {
		if scale.DimensionID == "" || scale.Label == "" {
			errs = append(errs, fmt.Errorf("clinical.%s needs label and dimension_id", id))
		}
		if scale.ExpectedQuestions <= 0 || scale.MaxScore <= 0 {
			errs = append(errs, fmt.Errorf("clinical.%s needs expected_questions and max_score", id))
		}
		if len(scale.Bands) == 0 {
			errs = append(errs, fmt.Errorf("clinical.%s has no bands", id))
			continue
		}
		if !slices.IsSortedFunc(scale.Bands, func(a, b SeverityBand) int {
			switch {
			case a.Max < b.Max:
				return -1
			case a.Max > b.Max:
				return 1
			}
			return 0
		}) {
			errs = append(errs, fmt.Errorf("clinical.%s bands must be ordered by max", id))
		}
		for i, b := range scale.Bands {
			switch b.Level {
			case models.LevelLow, models.LevelMedium, models.LevelHigh:
			default:
				errs = append(errs, fmt.Errorf("clinical.%s.bands[%d] has invalid level %q", id, i, b.Level))
			}
		}
	}
	return errors.Join(errs...)
}

// Profile returns the MBTI profile for code, or the fallback named after the code itself.
func (t *Tables) Profile(code string) Profile {
	if p, ok := t.MBTI.Types[code]; ok {
		return p.clone()
	}
	p := t.MBTI.Fallback.clone()
	p.Name = code
	return p
}

func (p Profile) clone() Profile {
	p.Characteristics = slices.Clone(p.Characteristics)
	p.Strengths = slices.Clone(p.Strengths)
	p.GrowthAreas = slices.Clone(p.GrowthAreas)
	p.CareerSuggestions = slices.Clone(p.CareerSuggestions)
	p.RelationshipTips = slices.Clone(p.RelationshipTips)
	return p
}
