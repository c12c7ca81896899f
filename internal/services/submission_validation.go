package services

import (
	"fmt"
	"strings"

	"github.com/soaringjerry/mindscope/internal/models"
)

// SubmissionInput is the create-submission request body.
type SubmissionInput struct {
	AssessmentID string             `json:"assessmentId"`
	UserID       string             `json:"-"` // set from the authenticated caller
	Respondent   *models.Respondent `json:"respondent"`
	Answers      []models.Answer    `json:"answers"`
}

type respondentFields struct {
	Name  string `validate:"nonblank"`
	Email string `validate:"simple_email"`
}

var respondentMessages = map[string]string{
	"Name":  "Respondent name is required.",
	"Email": "A valid respondent email is required.",
}

const (
	msgAssessmentIDRequired = "`assessmentId` is required."
	msgAssessmentMissing    = "The referenced assessment could not be found."
	msgRespondentRequired   = "Respondent details are required."
	msgAnswersRequired      = "At least one answer is required."
	msgIncomplete           = "All questions must be answered before submitting."
)

// ValidateSubmission checks in against assessment, which is nil when the id did not resolve.
// Every violation is collected. The answer set must match the question set one to one.
func ValidateSubmission(in *SubmissionInput, assessment *models.Assessment) []string {
	var errs []string
	if in == nil {
		in = &SubmissionInput{}
	}
	if strings.TrimSpace(in.AssessmentID) == "" {
		errs = append(errs, msgAssessmentIDRequired)
	}
	if assessment == nil {
		errs = append(errs, msgAssessmentMissing)
	}

	var r models.Respondent
	if in.Respondent == nil {
		errs = append(errs, msgRespondentRequired)
	} else {
		r = *in.Respondent
	}
	errs = append(errs, fieldViolations(respondentFields{Name: r.Name, Email: r.Email}, respondentMessages)...)

	if len(in.Answers) == 0 {
		errs = append(errs, msgAnswersRequired)
	}
	if assessment == nil {
		return errs
	}

	questionIDs := make(map[string]bool, len(assessment.Questions))
	for _, q := range assessment.Questions {
		questionIDs[q.ID] = true
	}
	answered := make(map[string]int, len(in.Answers))
	for _, ans := range in.Answers {
		if !questionIDs[ans.QuestionID] {
			errs = append(errs, fmt.Sprintf("Question id `%s` is not part of assessment `%s`.", ans.QuestionID, in.AssessmentID))
		}
		if strings.TrimSpace(ans.Value) == "" {
			errs = append(errs, fmt.Sprintf("Answer for question `%s` must be a non-empty string.", ans.QuestionID))
		}
		answered[ans.QuestionID]++
		if answered[ans.QuestionID] == 2 && questionIDs[ans.QuestionID] {
			errs = append(errs, fmt.Sprintf("Question `%s` was answered more than once.", ans.QuestionID))
		}
	}

	complete := len(in.Answers) == len(assessment.Questions)
	for id := range questionIDs {
		if answered[id] == 0 {
			complete = false
			break
		}
	}
	if len(in.Answers) > 0 && !complete {
		errs = append(errs, msgIncomplete)
	}
	return errs
}
