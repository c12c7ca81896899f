package services

import (
	"errors"
	"slices"
	"strings"

	"github.com/soaringjerry/mindscope/internal/models"
)

type stubStore struct {
	assessments map[string]*models.Assessment
	submissions []*models.Submission
	users       map[string]*models.User
	failWith    error
}

func newStubStore(assessments ...*models.Assessment) *stubStore {
	s := &stubStore{assessments: map[string]*models.Assessment{}, users: map[string]*models.User{}}
	for _, a := range assessments {
		s.assessments[a.ID] = a.Clone()
	}
	return s
}

func (s *stubStore) ListAssessments() ([]*models.Assessment, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}
	out := []*models.Assessment{}
	for _, a := range s.assessments {
		out = append(out, a.Clone())
	}
	slices.SortFunc(out, func(a, b *models.Assessment) int { return strings.Compare(a.ID, b.ID) })
	return out, nil
}

func (s *stubStore) GetAssessment(id string) (*models.Assessment, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}
	return s.assessments[id].Clone(), nil
}

func (s *stubStore) CreateAssessment(a *models.Assessment) error {
	if _, ok := s.assessments[a.ID]; ok {
		return ErrAlreadyExists
	}
	s.assessments[a.ID] = a.Clone()
	return nil
}

func (s *stubStore) UpsertAssessment(a *models.Assessment) error {
	s.assessments[a.ID] = a.Clone()
	return nil
}

func (s *stubStore) DeleteAssessment(id string) error {
	delete(s.assessments, id)
	return nil
}

func (s *stubStore) CreateSubmission(sub *models.Submission) error {
	if s.failWith != nil {
		return s.failWith
	}
	for _, existing := range s.submissions {
		if existing.ID == sub.ID {
			return ErrAlreadyExists
		}
	}
	s.submissions = append(s.submissions, sub.Clone())
	return nil
}

func (s *stubStore) GetSubmission(id string) (*models.Submission, error) {
	for _, sub := range s.submissions {
		if sub.ID == id {
			return sub.Clone(), nil
		}
	}
	return nil, nil
}

func (s *stubStore) ListSubmissions(filter SubmissionFilter) ([]*models.Submission, error) {
	out := []*models.Submission{}
	for i := len(s.submissions) - 1; i >= 0; i-- {
		if filter.Match(s.submissions[i]) {
			out = append(out, s.submissions[i].Clone())
		}
	}
	return out, nil
}

func (s *stubStore) CountSubmissions(assessmentID string) (int, error) {
	n := 0
	for _, sub := range s.submissions {
		if sub.AssessmentID == assessmentID {
			n++
		}
	}
	return n, nil
}

func (s *stubStore) FindUserByEmail(email string) (*models.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return u.Clone(), nil
		}
	}
	return nil, nil
}

func (s *stubStore) GetUser(id string) (*models.User, error) {
	return s.users[id].Clone(), nil
}

func (s *stubStore) AddUser(u *models.User) error {
	if existing, _ := s.FindUserByEmail(u.Email); existing != nil {
		return ErrAlreadyExists
	}
	s.users[u.ID] = u.Clone()
	return nil
}

func (s *stubStore) UpdateUser(u *models.User) error {
	if _, ok := s.users[u.ID]; !ok {
		return errors.New("no such user")
	}
	s.users[u.ID] = u.Clone()
	return nil
}

func (s *stubStore) AppendTestHistory(userID, submissionID string) error {
	u, ok := s.users[userID]
	if !ok {
		return errors.New("no such user")
	}
	if !slices.Contains(u.TestHistory, submissionID) {
		u.TestHistory = append(u.TestHistory, submissionID)
	}
	return nil
}

func yesNoQuestion(id, dim string) models.Question {
	return models.Question{
		ID:        id,
		Prompt:    "Prompt " + id,
		Type:      models.QuestionSingleChoice,
		Options:   []string{"yes", "no"},
		Dimension: dim,
		Scoring:   map[string]float64{"yes": 1, "no": 0},
	}
}

func sampleAssessment() *models.Assessment {
	return &models.Assessment{
		ID:          "sample",
		Name:        "Sample",
		Duration:    "5 min",
		Description: "A sample assessment",
		Focus:       []string{"focus"},
		Questions:   []models.Question{yesNoQuestion("q1", "d"), yesNoQuestion("q2", "d")},
		Dimensions: []models.Dimension{{
			ID:             "d",
			Name:           "Drive",
			Interpretation: models.Interpretation{Low: "low", Medium: "medium", High: "high"},
		}},
	}
}
