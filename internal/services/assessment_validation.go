package services

import (
	"fmt"
	"slices"
	"strings"

	"github.com/soaringjerry/mindscope/internal/models"
)

// AssessmentPatch carries the fields supplied on update. Nil means "keep the current value".
type AssessmentPatch struct {
	ID              *string                      `json:"id"`
	Name            *string                      `json:"name"`
	NameZh          *string                      `json:"nameZh"`
	Duration        *string                      `json:"duration"`
	Description     *string                      `json:"description"`
	DescriptionZh   *string                      `json:"descriptionZh"`
	Focus           []string                     `json:"focus"`
	Category        *models.Category             `json:"category"`
	IsPremium       *bool                        `json:"isPremium"`
	Instrument      *string                      `json:"instrument"`
	Questions       []models.Question            `json:"questions"`
	Dimensions      []models.Dimension           `json:"dimensions"`
	ResultTypes     []models.ResultType          `json:"resultTypes"`
	ScientificBasis *string                      `json:"scientificBasis"`
	References      []models.ScientificReference `json:"references"`
	Reliability     *float64                     `json:"reliability"`
	Validity        *float64                     `json:"validity"`
}

type assessmentHeader struct {
	Name        string   `validate:"nonblank"`
	Duration    string   `validate:"nonblank"`
	Description string   `validate:"nonblank"`
	Focus       []string `validate:"min=1,dive,nonblank"`
	Questions   int      `validate:"min=1"`
}

var assessmentMessages = map[string]string{
	"Name":        "`name` is required.",
	"Duration":    "`duration` is required.",
	"Description": "`description` is required.",
	"Focus":       "`focus` must be a non-empty array of strings.",
	"Questions":   "At least one question is required.",
}

const msgEmptyID = "`id` must contain at least one letter or digit."

// ValidateAssessment checks a complete payload and returns the normalized assessment.
// The id comes from the payload id when given, otherwise from the name.
func ValidateAssessment(in *models.Assessment) (*models.Assessment, error) {
	if in == nil {
		return nil, NewInvalidError("Assessment payload is required.")
	}
	a := in.Clone()
	raw := a.ID
	if strings.TrimSpace(raw) == "" {
		raw = a.Name
	}
	a.ID = NormalizeID(raw)
	normalizeAssessment(a)

	errs := assessmentViolations(a)
	if a.ID == "" && strings.TrimSpace(a.Name) != "" {
		errs = append(errs, msgEmptyID)
	}
	if err := NewValidationError(errs); err != nil {
		return nil, err
	}
	return a, nil
}

// ValidateAssessmentUpdate merges patch onto current and validates the merged record.
// current is never modified.
func ValidateAssessmentUpdate(current *models.Assessment, patch *AssessmentPatch) (*models.Assessment, error) {
	if current == nil {
		return nil, NewNotFoundError("assessment not found")
	}
	a := current.Clone()
	if patch != nil {
		applyPatch(a, patch)
	}
	normalizeAssessment(a)

	errs := assessmentViolations(a)
	if patch != nil && patch.ID != nil {
		a.ID = NormalizeID(*patch.ID)
		if a.ID == "" {
			errs = append(errs, msgEmptyID)
		}
	}
	if err := NewValidationError(errs); err != nil {
		return nil, err
	}
	return a, nil
}

func applyPatch(a *models.Assessment, p *AssessmentPatch) {
	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	setString(&a.Name, p.Name)
	setString(&a.NameZh, p.NameZh)
	setString(&a.Duration, p.Duration)
	setString(&a.Description, p.Description)
	setString(&a.DescriptionZh, p.DescriptionZh)
	setString(&a.Instrument, p.Instrument)
	setString(&a.ScientificBasis, p.ScientificBasis)
	if p.Category != nil {
		a.Category = *p.Category
	}
	if p.IsPremium != nil {
		a.IsPremium = *p.IsPremium
	}
	if p.Focus != nil {
		a.Focus = slices.Clone(p.Focus)
	}
	if p.Questions != nil {
		a.Questions = (&models.Assessment{Questions: p.Questions}).Clone().Questions
	}
	if p.Dimensions != nil {
		a.Dimensions = slices.Clone(p.Dimensions)
	}
	if p.ResultTypes != nil {
		a.ResultTypes = (&models.Assessment{ResultTypes: p.ResultTypes}).Clone().ResultTypes
	}
	if p.References != nil {
		a.References = (&models.Assessment{References: p.References}).Clone().References
	}
	if p.Reliability != nil {
		v := *p.Reliability
		a.Reliability = &v
	}
	if p.Validity != nil {
		v := *p.Validity
		a.Validity = &v
	}
}

// normalizeAssessment trims focus entries and drops options from questions that are not single-choice.
func normalizeAssessment(a *models.Assessment) {
	for i, f := range a.Focus {
		a.Focus[i] = strings.TrimSpace(f)
	}
	for i := range a.Questions {
		q := &a.Questions[i]
		q.ID = strings.TrimSpace(q.ID)
		if q.Type != models.QuestionSingleChoice {
			q.Options = nil
		}
	}
}

func assessmentViolations(a *models.Assessment) []string {
	errs := fieldViolations(assessmentHeader{
		Name:        a.Name,
		Duration:    a.Duration,
		Description: a.Description,
		Focus:       a.Focus,
		Questions:   len(a.Questions),
	}, assessmentMessages)
	seen := make(map[string]bool, len(a.Questions))
	for i := range a.Questions {
		errs = append(errs, questionViolations(&a.Questions[i], seen)...)
	}
	return errs
}

func questionViolations(q *models.Question, seen map[string]bool) []string {
	var errs []string
	label := q.ID
	if label == "" {
		errs = append(errs, "Each question requires a stable string `id`.")
		label = "unknown"
	} else if seen[q.ID] {
		errs = append(errs, fmt.Sprintf("Question id `%s` is used more than once.", q.ID))
	}
	seen[q.ID] = true
	if strings.TrimSpace(q.Prompt) == "" {
		errs = append(errs, fmt.Sprintf("Question `%s` is missing a prompt.", label))
	}
	switch q.Type {
	case models.QuestionSingleChoice:
		if len(q.Options) < 2 {
			errs = append(errs, fmt.Sprintf("Question `%s` must provide at least two options.", label))
		}
	case models.QuestionText, models.QuestionLikert5, models.QuestionLikert7:
	default:
		errs = append(errs, fmt.Sprintf("Question `%s` has unsupported type `%s`.", label, q.Type))
	}
	return errs
}
