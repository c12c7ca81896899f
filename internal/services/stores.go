package services

import "github.com/soaringjerry/mindscope/internal/models"

// Stores return (nil, nil) for a missing record and ErrAlreadyExists when a create finds the id taken.

type AssessmentStore interface {
	ListAssessments() ([]*models.Assessment, error)
	GetAssessment(id string) (*models.Assessment, error)
	CreateAssessment(a *models.Assessment) error
	UpsertAssessment(a *models.Assessment) error
	DeleteAssessment(id string) error
}

// SubmissionFilter narrows ListSubmissions. Empty fields match everything.
type SubmissionFilter struct {
	AssessmentID string
	UserID       string
}

func (f SubmissionFilter) Match(s *models.Submission) bool {
	if f.AssessmentID != "" && s.AssessmentID != f.AssessmentID {
		return false
	}
	if f.UserID != "" && s.UserID != f.UserID {
		return false
	}
	return true
}

type SubmissionStore interface {
	CreateSubmission(s *models.Submission) error
	GetSubmission(id string) (*models.Submission, error)
	// ListSubmissions returns matches newest first.
	ListSubmissions(filter SubmissionFilter) ([]*models.Submission, error)
	CountSubmissions(assessmentID string) (int, error)
}

type UserStore interface {
	FindUserByEmail(email string) (*models.User, error)
	GetUser(id string) (*models.User, error)
	AddUser(u *models.User) error
	UpdateUser(u *models.User) error
	// AppendTestHistory adds submissionID to the user's history unless already present.
	AppendTestHistory(userID, submissionID string) error
}
