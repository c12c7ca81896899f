package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/soaringjerry/mindscope/internal/models"
)

type AuthStore interface {
	FindUserByEmail(email string) (*models.User, error)
	AddUser(u *models.User) error
	UpdateUser(u *models.User) error
}

type TokenSigner func(uid string, tier models.MembershipTier, email string, ttl time.Duration) (string, error)

type AuthService struct {
	store     AuthStore
	now       func() time.Time
	idGen     func(prefix string, n int) string
	signToken TokenSigner
	tokenTTL  time.Duration
}

type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type registerFields struct {
	Name     string `validate:"nonblank"`
	Email    string `validate:"simple_email"`
	Password string `validate:"min=6"`
}

var registerMessages = map[string]string{
	"Name":     "Name is required.",
	"Email":    "A valid email address is required.",
	"Password": "Password must be at least 6 characters.",
}

const msgInvalidCredentials = "Invalid email or password."

func NewAuthService(store AuthStore, signer TokenSigner, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &AuthService{
		store:     store,
		now:       func() time.Time { return time.Now().UTC() },
		idGen:     func(prefix string, n int) string { return prefix + shortID(n) },
		signToken: signer,
		tokenTTL:  ttl,
	}
}

func (s *AuthService) Register(name, email, password string) (*AuthResult, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if err := NewValidationError(fieldViolations(registerFields{Name: name, Email: email, Password: password}, registerMessages)); err != nil {
		return nil, err
	}
	existing, err := s.store.FindUserByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if existing != nil {
		return nil, NewConflictError("This email is already registered.")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := s.now()
	u := &models.User{
		ID:                  s.idGen("u", 12),
		Email:               email,
		Name:                name,
		MembershipTier:      models.TierFree,
		PassHash:            hash,
		CreatedAt:           now,
		LastLoginAt:         now,
		TestHistory:         []string{},
		FavoriteAssessments: []string{},
		Preferences:         models.Preferences{Language: "en", Notifications: true},
	}
	if err := s.store.AddUser(u); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return nil, NewConflictError("This email is already registered.")
		}
		return nil, fmt.Errorf("add user: %w", err)
	}
	return s.issue(u)
}

func (s *AuthService) Login(email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, NewInvalidError("Email and password are required.")
	}
	u, err := s.store.FindUserByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if u == nil {
		return nil, NewUnauthorizedError(msgInvalidCredentials)
	}
	if err := bcrypt.CompareHashAndPassword(u.PassHash, []byte(password)); err != nil {
		return nil, NewUnauthorizedError(msgInvalidCredentials)
	}
	u.LastLoginAt = s.now()
	if err := s.store.UpdateUser(u); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return s.issue(u)
}

func (s *AuthService) issue(u *models.User) (*AuthResult, error) {
	if s.signToken == nil {
		return nil, errors.New("token signer not configured")
	}
	token, err := s.signToken(u.ID, u.MembershipTier, u.Email, s.tokenTTL)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: u}, nil
}

func (s *AuthService) TokenTTL() time.Duration {
	return s.tokenTTL
}
