package services

import (
	"errors"
	"fmt"

	"github.com/soaringjerry/mindscope/internal/models"
)

const msgAssessmentExists = "An assessment with this id already exists."

type SubmissionCounter interface {
	CountSubmissions(assessmentID string) (int, error)
}

type AssessmentService struct {
	store       AssessmentStore
	submissions SubmissionCounter
}

func NewAssessmentService(store AssessmentStore, submissions SubmissionCounter) *AssessmentService {
	return &AssessmentService{store: store, submissions: submissions}
}

func (s *AssessmentService) List() ([]*models.Assessment, error) {
	list, err := s.store.ListAssessments()
	if err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}
	return list, nil
}

func (s *AssessmentService) Get(rawID string) (*models.Assessment, error) {
	id, ok := NormalizeIDParam(rawID)
	if !ok {
		return nil, NewInvalidError("Invalid assessment id.")
	}
	a, err := s.store.GetAssessment(id)
	if err != nil {
		return nil, fmt.Errorf("get assessment %s: %w", id, err)
	}
	if a == nil {
		return nil, NewNotFoundError("Assessment not found.")
	}
	return a, nil
}

func (s *AssessmentService) Create(in *models.Assessment) (*models.Assessment, error) {
	a, err := ValidateAssessment(in)
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateAssessment(a); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return nil, NewConflictError(msgAssessmentExists)
		}
		return nil, fmt.Errorf("create assessment %s: %w", a.ID, err)
	}
	return a, nil
}

// Update merges patch onto the stored record. Renaming onto a taken id, or renaming an assessment
// that already has submissions, is a conflict. A rename creates the new record before deleting the
// old one and removes the new record again if that delete fails.
func (s *AssessmentService) Update(rawID string, patch *AssessmentPatch) (*models.Assessment, error) {
	current, err := s.Get(rawID)
	if err != nil {
		return nil, err
	}
	updated, err := ValidateAssessmentUpdate(current, patch)
	if err != nil {
		return nil, err
	}
	if updated.ID == current.ID {
		if err := s.store.UpsertAssessment(updated); err != nil {
			return nil, fmt.Errorf("update assessment %s: %w", updated.ID, err)
		}
		return updated, nil
	}

	n, err := s.submissions.CountSubmissions(current.ID)
	if err != nil {
		return nil, fmt.Errorf("count submissions for %s: %w", current.ID, err)
	}
	if n > 0 {
		return nil, NewConflictError("Assessments with submissions cannot change their id.")
	}
	if err := s.store.CreateAssessment(updated); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return nil, NewConflictError(msgAssessmentExists)
		}
		return nil, fmt.Errorf("create assessment %s: %w", updated.ID, err)
	}
	if err := s.store.DeleteAssessment(current.ID); err != nil {
		// Roll the rename back so the old record stays the only copy.
		if rerr := s.store.DeleteAssessment(updated.ID); rerr != nil {
			return nil, fmt.Errorf("delete assessment %s: %w (rollback of %s failed: %v)", current.ID, err, updated.ID, rerr)
		}
		return nil, fmt.Errorf("delete assessment %s: %w", current.ID, err)
	}
	return updated, nil
}

func (s *AssessmentService) Delete(rawID string) error {
	current, err := s.Get(rawID)
	if err != nil {
		return err
	}
	n, err := s.submissions.CountSubmissions(current.ID)
	if err != nil {
		return fmt.Errorf("count submissions for %s: %w", current.ID, err)
	}
	if n > 0 {
		return NewConflictError("Assessments with submissions cannot be deleted.")
	}
	if err := s.store.DeleteAssessment(current.ID); err != nil {
		return fmt.Errorf("delete assessment %s: %w", current.ID, err)
	}
	return nil
}
