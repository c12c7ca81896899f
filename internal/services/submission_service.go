package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/soaringjerry/mindscope/internal/analysis"
	"github.com/soaringjerry/mindscope/internal/models"
)

type AssessmentReader interface {
	GetAssessment(id string) (*models.Assessment, error)
}

type HistoryStore interface {
	GetUser(id string) (*models.User, error)
	AppendTestHistory(userID, submissionID string) error
}

type SubmissionService struct {
	assessments AssessmentReader
	submissions SubmissionStore
	users       HistoryStore
	analyzer    *analysis.Analyzer
	now         func() time.Time
	idGen       func() string
}

func NewSubmissionService(assessments AssessmentReader, submissions SubmissionStore, users HistoryStore, analyzer *analysis.Analyzer) *SubmissionService {
	if analyzer == nil {
		analyzer = analysis.NewAnalyzer(nil)
	}
	return &SubmissionService{
		assessments: assessments,
		submissions: submissions,
		users:       users,
		analyzer:    analyzer,
		now:         func() time.Time { return time.Now().UTC() },
		idGen:       uuid.NewString,
	}
}

// Create validates, scores, and stores a submission. Validation failures carry every message.
func (s *SubmissionService) Create(in *SubmissionInput) (*models.Submission, error) {
	if in == nil {
		in = &SubmissionInput{}
	}
	var assessment *models.Assessment
	if id := NormalizeID(in.AssessmentID); id != "" {
		a, err := s.assessments.GetAssessment(id)
		if err != nil {
			return nil, fmt.Errorf("get assessment %s: %w", id, err)
		}
		assessment = a
	}
	errs := ValidateSubmission(in, assessment)
	if in.UserID != "" && s.users != nil {
		u, err := s.users.GetUser(in.UserID)
		if err != nil {
			return nil, fmt.Errorf("get user %s: %w", in.UserID, err)
		}
		if u == nil {
			errs = append(errs, fmt.Sprintf("User `%s` does not exist.", in.UserID))
		}
	}
	if err := NewValidationError(errs); err != nil {
		return nil, err
	}

	answers := ScoreAnswers(assessment, in.Answers)
	result := s.analyzer.Analyze(assessment, answers)
	now := s.now()
	completed := now
	sub := &models.Submission{
		ID:           s.idGen(),
		AssessmentID: assessment.ID,
		UserID:       in.UserID,
		Respondent: models.Respondent{
			Name:  strings.TrimSpace(in.Respondent.Name),
			Email: strings.TrimSpace(in.Respondent.Email),
		},
		Answers:        answers,
		ResultSummary:  analysis.Summary(assessment, result),
		DetailedResult: result,
		CreatedAt:      now,
		CompletedAt:    &completed,
	}
	if err := s.submissions.CreateSubmission(sub); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return nil, NewConflictError("A submission with this id already exists.")
		}
		return nil, fmt.Errorf("create submission: %w", err)
	}
	if sub.UserID != "" && s.users != nil {
		if err := s.users.AppendTestHistory(sub.UserID, sub.ID); err != nil {
			return nil, fmt.Errorf("record history for %s: %w", sub.UserID, err)
		}
	}
	return sub, nil
}

// ScoreAnswers trims each value and attaches the question's score for it, when one exists.
func ScoreAnswers(a *models.Assessment, answers []models.Answer) []models.Answer {
	out := make([]models.Answer, 0, len(answers))
	for _, ans := range answers {
		value := strings.TrimSpace(ans.Value)
		scored := models.Answer{QuestionID: ans.QuestionID, Value: value}
		if q, ok := a.Question(ans.QuestionID); ok {
			if v, ok := q.ScoreFor(value); ok {
				scored.Score = &v
			}
		}
		out = append(out, scored)
	}
	return out
}

func (s *SubmissionService) Get(id string) (*models.Submission, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, NewInvalidError("Invalid submission id.")
	}
	sub, err := s.submissions.GetSubmission(id)
	if err != nil {
		return nil, fmt.Errorf("get submission %s: %w", id, err)
	}
	if sub == nil {
		return nil, NewNotFoundError("Submission not found.")
	}
	return sub, nil
}

func (s *SubmissionService) List(filter SubmissionFilter) ([]*models.Submission, error) {
	if filter.AssessmentID != "" {
		filter.AssessmentID = NormalizeID(filter.AssessmentID)
	}
	list, err := s.submissions.ListSubmissions(filter)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return list, nil
}
