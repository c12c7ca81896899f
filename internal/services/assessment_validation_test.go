package services

import (
	"slices"
	"testing"

	"github.com/soaringjerry/mindscope/internal/models"
)

func detailsOf(t *testing.T, err error) []string {
	t.Helper()
	se, ok := AsServiceError(err)
	if !ok || se.Code != ErrorInvalid {
		t.Fatalf("expected invalid error, got %v", err)
	}
	return se.Details
}

func TestValidateAssessment_NormalizesIDAndOptions(t *testing.T) {
	in := &models.Assessment{
		Name:        "My Test! 2024",
		Duration:    "10 min",
		Description: "desc",
		Focus:       []string{"  calm  "},
		Questions: []models.Question{
			{ID: "q1", Prompt: "p", Type: models.QuestionSingleChoice, Options: []string{"a", "b"}},
			{ID: "q2", Prompt: "p", Type: models.QuestionText, Options: []string{"ignored"}},
		},
	}
	got, err := ValidateAssessment(in)
	if err != nil {
		t.Fatalf("ValidateAssessment: %v", err)
	}
	if got.ID != "my-test-2024" {
		t.Fatalf("id = %q, want %q", got.ID, "my-test-2024")
	}
	if got.Focus[0] != "calm" {
		t.Fatalf("focus = %q", got.Focus[0])
	}
	if got.Questions[1].Options != nil {
		t.Fatalf("text question kept options %v", got.Questions[1].Options)
	}
	if in.Questions[1].Options == nil || in.Focus[0] != "  calm  " {
		t.Fatalf("input was modified")
	}
}

func TestValidateAssessment_CollectsEveryViolation(t *testing.T) {
	in := &models.Assessment{
		Questions: []models.Question{
			{Prompt: "p", Type: models.QuestionText},
			{ID: "q2", Type: models.QuestionSingleChoice, Options: []string{"only"}},
		},
	}
	_, err := ValidateAssessment(in)
	got := detailsOf(t, err)
	want := []string{
		"`name` is required.",
		"`duration` is required.",
		"`description` is required.",
		"`focus` must be a non-empty array of strings.",
		"Each question requires a stable string `id`.",
		"Question `q2` is missing a prompt.",
		"Question `q2` must provide at least two options.",
	}
	if !slices.Equal(got, want) {
		t.Fatalf("details = %q\nwant %q", got, want)
	}
}

func TestValidateAssessment_NoQuestions(t *testing.T) {
	a := sampleAssessment()
	a.Questions = nil
	got := detailsOf(t, func() error { _, err := ValidateAssessment(a); return err }())
	if !slices.Contains(got, "At least one question is required.") {
		t.Fatalf("details = %q", got)
	}
}

func TestValidateAssessment_DuplicateQuestionID(t *testing.T) {
	a := sampleAssessment()
	a.Questions[1].ID = "q1"
	got := detailsOf(t, func() error { _, err := ValidateAssessment(a); return err }())
	if !slices.Contains(got, "Question id `q1` is used more than once.") {
		t.Fatalf("details = %q", got)
	}
}

func TestValidateAssessmentUpdate_MergesSuppliedFields(t *testing.T) {
	current := sampleAssessment()
	name := "Renamed"
	newID := "New Sample"
	got, err := ValidateAssessmentUpdate(current, &AssessmentPatch{Name: &name, ID: &newID})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Name != "Renamed" || got.ID != "new-sample" || got.Duration != current.Duration {
		t.Fatalf("merged = %+v", got)
	}
	if current.Name != "Sample" {
		t.Fatalf("current was modified")
	}

	empty := ""
	_, err = ValidateAssessmentUpdate(current, &AssessmentPatch{Duration: &empty, Focus: []string{}})
	details := detailsOf(t, err)
	if len(details) != 2 {
		t.Fatalf("details = %q", details)
	}
}
