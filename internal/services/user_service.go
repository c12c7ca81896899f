package services

import (
	"fmt"
	"slices"
	"strings"

	"github.com/soaringjerry/mindscope/internal/models"
)

// UserPatch holds the profile fields a caller may change. Nil leaves the field as is.
type UserPatch struct {
	Name                *string                `json:"name"`
	Avatar              *string                `json:"avatar"`
	Preferences         *models.Preferences    `json:"preferences"`
	FavoriteAssessments []string               `json:"favoriteAssessments"`
	MembershipTier      *models.MembershipTier `json:"membershipTier"`
}

type UserService struct {
	users       UserStore
	submissions SubmissionStore
}

func NewUserService(users UserStore, submissions SubmissionStore) *UserService {
	return &UserService{users: users, submissions: submissions}
}

func (s *UserService) Get(id string) (*models.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, NewInvalidError("Invalid user id.")
	}
	u, err := s.users.GetUser(id)
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}
	if u == nil {
		return nil, NewNotFoundError("User not found.")
	}
	return u, nil
}

func (s *UserService) Update(id string, patch *UserPatch) (*models.User, error) {
	u, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if patch == nil {
		return u, nil
	}
	var errs []string
	if patch.Name != nil {
		if name := strings.TrimSpace(*patch.Name); name == "" {
			errs = append(errs, "Name is required.")
		} else {
			u.Name = name
		}
	}
	if patch.Avatar != nil {
		u.Avatar = strings.TrimSpace(*patch.Avatar)
	}
	if patch.Preferences != nil {
		u.Preferences = *patch.Preferences
	}
	if patch.FavoriteAssessments != nil {
		favs := make([]string, 0, len(patch.FavoriteAssessments))
		for _, raw := range patch.FavoriteAssessments {
			if fid := NormalizeID(raw); fid != "" && !slices.Contains(favs, fid) {
				favs = append(favs, fid)
			}
		}
		u.FavoriteAssessments = favs
	}
	if patch.MembershipTier != nil {
		if !IsKnownTier(*patch.MembershipTier) {
			errs = append(errs, fmt.Sprintf("Unknown membership tier `%s`.", *patch.MembershipTier))
		} else {
			u.MembershipTier = *patch.MembershipTier
		}
	}
	if err := NewValidationError(errs); err != nil {
		return nil, err
	}
	if err := s.users.UpdateUser(u); err != nil {
		return nil, fmt.Errorf("update user %s: %w", u.ID, err)
	}
	return u, nil
}

// History returns the user's submissions, newest first.
func (s *UserService) History(id string) ([]*models.Submission, error) {
	u, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	list, err := s.submissions.ListSubmissions(SubmissionFilter{UserID: u.ID})
	if err != nil {
		return nil, fmt.Errorf("list history for %s: %w", u.ID, err)
	}
	return list, nil
}
