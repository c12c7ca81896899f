// Package catalog holds the assessments bundled with the server.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/soaringjerry/mindscope/internal/models"
	"github.com/soaringjerry/mindscope/internal/services"
)

//go:embed catalog.yaml
var bundled []byte

type frequencyOption struct {
	Label string  `yaml:"label"`
	Score float64 `yaml:"score"`
}

type question struct {
	ID        string             `yaml:"id"`
	Prompt    string             `yaml:"prompt"`
	Type      string             `yaml:"type"`
	Dimension string             `yaml:"dimension"`
	Options   []string           `yaml:"options"`
	Scoring   map[string]float64 `yaml:"scoring"`
	Reverse   bool               `yaml:"reverse"`
}

type dimension struct {
	ID             string `yaml:"id"`
	Name           string `yaml:"name"`
	Description    string `yaml:"description"`
	LowLabel       string `yaml:"low_label"`
	HighLabel      string `yaml:"high_label"`
	Interpretation struct {
		Low    string `yaml:"low"`
		Medium string `yaml:"medium"`
		High   string `yaml:"high"`
	} `yaml:"interpretation"`
}

type reference struct {
	ID      string   `yaml:"id"`
	Authors []string `yaml:"authors"`
	Year    int      `yaml:"year"`
	Title   string   `yaml:"title"`
	Journal string   `yaml:"journal"`
	DOI     string   `yaml:"doi"`
}

type entry struct {
	ID               string      `yaml:"id"`
	Instrument       string      `yaml:"instrument"`
	Name             string      `yaml:"name"`
	NameZh           string      `yaml:"name_zh"`
	Duration         string      `yaml:"duration"`
	Description      string      `yaml:"description"`
	DescriptionZh    string      `yaml:"description_zh"`
	Category         string      `yaml:"category"`
	Focus            []string    `yaml:"focus"`
	IsPremium        bool        `yaml:"is_premium"`
	ScientificBasis  string      `yaml:"scientific_basis"`
	Reliability      *float64    `yaml:"reliability"`
	References       []reference `yaml:"references"`
	Dimensions       []dimension `yaml:"dimensions"`
	FrequencyOptions bool        `yaml:"frequency_options"`
	Questions        []question  `yaml:"questions"`
}

type file struct {
	Assessments    []entry           `yaml:"assessments"`
	FrequencyScale []frequencyOption `yaml:"frequency_scale"`
}

// Load returns the bundled assessments, validated and normalized.
func Load() ([]*models.Assessment, error) {
	return Parse(bundled)
}

// Parse decodes a catalog document. Every entry must pass assessment validation.
func Parse(raw []byte) ([]*models.Assessment, error) {
	var f file
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	out := make([]*models.Assessment, 0, len(f.Assessments))
	seen := make(map[string]bool, len(f.Assessments))
	var errs []error
	for i := range f.Assessments {
		a, err := services.ValidateAssessment(f.Assessments[i].toModel(f.FrequencyScale))
		if err != nil {
			errs = append(errs, fmt.Errorf("catalog entry %d (%s): %w", i, f.Assessments[i].ID, err))
			continue
		}
		if seen[a.ID] {
			errs = append(errs, fmt.Errorf("catalog entry %d: duplicate id %q", i, a.ID))
			continue
		}
		seen[a.ID] = true
		out = append(out, a)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return out, nil
}

func (e *entry) toModel(scale []frequencyOption) *models.Assessment {
	a := &models.Assessment{
		ID:              e.ID,
		Name:            e.Name,
		NameZh:          e.NameZh,
		Duration:        e.Duration,
		Description:     e.Description,
		DescriptionZh:   e.DescriptionZh,
		Focus:           e.Focus,
		Category:        models.Category(e.Category),
		IsPremium:       e.IsPremium,
		Instrument:      e.Instrument,
		ScientificBasis: e.ScientificBasis,
		Reliability:     e.Reliability,
	}
	for _, d := range e.Dimensions {
		a.Dimensions = append(a.Dimensions, models.Dimension{
			ID:          d.ID,
			Name:        d.Name,
			Description: d.Description,
			LowLabel:    d.LowLabel,
			HighLabel:   d.HighLabel,
			Interpretation: models.Interpretation{
				Low:    d.Interpretation.Low,
				Medium: d.Interpretation.Medium,
				High:   d.Interpretation.High,
			},
		})
	}
	for _, r := range e.References {
		a.References = append(a.References, models.ScientificReference{
			ID: r.ID, Authors: r.Authors, Year: r.Year, Title: r.Title, Journal: r.Journal, DOI: r.DOI,
		})
	}
	for _, q := range e.Questions {
		a.Questions = append(a.Questions, e.question(q, scale))
	}
	return a
}

func (e *entry) question(q question, scale []frequencyOption) models.Question {
	out := models.Question{
		ID:        q.ID,
		Prompt:    q.Prompt,
		Type:      models.QuestionType(q.Type),
		Dimension: q.Dimension,
		Options:   q.Options,
		Scoring:   q.Scoring,
	}
	if e.FrequencyOptions && q.Type == "" {
		out.Type = models.QuestionSingleChoice
		out.Options = make([]string, 0, len(scale))
		out.Scoring = make(map[string]float64, len(scale))
		for _, opt := range scale {
			out.Options = append(out.Options, opt.Label)
			out.Scoring[opt.Label] = opt.Score
		}
	}
	if points := out.Type.LikertPoints(); points > 0 && len(out.Scoring) == 0 {
		out.Scoring = services.LikertScoring(points, q.Reverse)
	}
	return out
}

// Seed writes the bundled catalog into store when it holds no assessments yet.
// It returns how many assessments were created.
func Seed(store services.AssessmentStore, log *zap.Logger) (int, error) {
	if log == nil {
		log = zap.NewNop()
	}
	existing, err := store.ListAssessments()
	if err != nil {
		return 0, fmt.Errorf("list assessments: %w", err)
	}
	if len(existing) > 0 {
		log.Debug("catalog seed skipped", zap.Int("existing", len(existing)))
		return 0, nil
	}
	items, err := Load()
	if err != nil {
		return 0, err
	}
	created := 0
	for _, a := range items {
		if err := store.CreateAssessment(a); err != nil {
			if errors.Is(err, services.ErrAlreadyExists) {
				continue
			}
			return created, fmt.Errorf("seed %s: %w", a.ID, err)
		}
		created++
	}
	log.Info("catalog seeded", zap.Int("assessments", created))
	return created, nil
}
