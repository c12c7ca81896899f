package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/soaringjerry/mindscope/internal/models"
	"github.com/soaringjerry/mindscope/internal/services"
)

// memoryStore keeps everything in process. Every read and write clones, so callers never share state with it.
type memoryStore struct {
	mu           sync.RWMutex
	assessments  map[string]*models.Assessment
	submissions  []*models.Submission
	users        map[string]*models.User
	usersByEmail map[string]string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		assessments:  map[string]*models.Assessment{},
		submissions:  []*models.Submission{},
		users:        map[string]*models.User{},
		usersByEmail: map[string]string{},
	}
}

// NewMemoryStore returns an empty in-process store.
func NewMemoryStore() Store { return newMemoryStore() }

func (s *memoryStore) ListAssessments() ([]*models.Assessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Assessment, 0, len(s.assessments))
	for _, a := range s.assessments {
		out = append(out, a.Clone())
	}
	slices.SortFunc(out, func(a, b *models.Assessment) int { return strings.Compare(a.ID, b.ID) })
	return out, nil
}

func (s *memoryStore) GetAssessment(id string) (*models.Assessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.assessments[id].Clone(), nil
}

func (s *memoryStore) CreateAssessment(a *models.Assessment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.assessments[a.ID]; ok {
		return services.ErrAlreadyExists
	}
	s.assessments[a.ID] = a.Clone()
	return nil
}

func (s *memoryStore) UpsertAssessment(a *models.Assessment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assessments[a.ID] = a.Clone()
	return nil
}

func (s *memoryStore) DeleteAssessment(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.assessments, id)
	return nil
}

func (s *memoryStore) CreateSubmission(sub *models.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.submissions {
		if existing.ID == sub.ID {
			return services.ErrAlreadyExists
		}
	}
	s.submissions = append(s.submissions, sub.Clone())
	return nil
}

func (s *memoryStore) GetSubmission(id string) (*models.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sub := range s.submissions {
		if sub.ID == id {
			return sub.Clone(), nil
		}
	}
	return nil, nil
}

// ListSubmissions walks insertion order backwards so the newest submission comes first.
func (s *memoryStore) ListSubmissions(filter services.SubmissionFilter) ([]*models.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*models.Submission{}
	for i := len(s.submissions) - 1; i >= 0; i-- {
		if filter.Match(s.submissions[i]) {
			out = append(out, s.submissions[i].Clone())
		}
	}
	slices.SortStableFunc(out, func(a, b *models.Submission) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}

func (s *memoryStore) CountSubmissions(assessmentID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, sub := range s.submissions {
		if sub.AssessmentID == assessmentID {
			n++
		}
	}
	return n, nil
}

func (s *memoryStore) FindUserByEmail(email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.usersByEmail[strings.ToLower(email)]
	if !ok {
		return nil, nil
	}
	return s.users[id].Clone(), nil
}

func (s *memoryStore) GetUser(id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.users[id].Clone(), nil
}

func (s *memoryStore) AddUser(u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	email := strings.ToLower(u.Email)
	if _, ok := s.users[u.ID]; ok {
		return services.ErrAlreadyExists
	}
	if _, ok := s.usersByEmail[email]; ok {
		return services.ErrAlreadyExists
	}
	s.users[u.ID] = u.Clone()
	s.usersByEmail[email] = u.ID
	return nil
}

func (s *memoryStore) UpdateUser(u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.users[u.ID]
	if !ok {
		return services.ErrNotFound
	}
	email := strings.ToLower(u.Email)
	if owner, taken := s.usersByEmail[email]; taken && owner != u.ID {
		return services.ErrAlreadyExists
	}
	delete(s.usersByEmail, strings.ToLower(current.Email))
	s.users[u.ID] = u.Clone()
	s.usersByEmail[email] = u.ID
	return nil
}

func (s *memoryStore) AppendTestHistory(userID, submissionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return services.ErrNotFound
	}
	if !slices.Contains(u.TestHistory, submissionID) {
		u.TestHistory = append(u.TestHistory, submissionID)
	}
	return nil
}

// Snapshot is the on-disk form of a memory store.
type Snapshot struct {
	Assessments []*models.Assessment `json:"assessments"`
	Submissions []*models.Submission `json:"submissions"`
	Users       []*snapshotUser      `json:"users"`
}

// snapshotUser keeps the password hash, which models.User hides from JSON.
type snapshotUser struct {
	*models.User
	PassHash []byte `json:"passHash"`
}

// MemoryStoreSnapshot copies the current contents of a memory store. It returns nil for other store kinds.
func MemoryStoreSnapshot(st Store) *Snapshot {
	s, ok := st.(*memoryStore)
	if !ok {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := &Snapshot{}
	for _, a := range s.assessments {
		snap.Assessments = append(snap.Assessments, a.Clone())
	}
	slices.SortFunc(snap.Assessments, func(a, b *models.Assessment) int { return strings.Compare(a.ID, b.ID) })
	for _, sub := range s.submissions {
		snap.Submissions = append(snap.Submissions, sub.Clone())
	}
	for _, u := range s.users {
		c := u.Clone()
		snap.Users = append(snap.Users, &snapshotUser{User: c, PassHash: c.PassHash})
	}
	slices.SortFunc(snap.Users, func(a, b *snapshotUser) int { return strings.Compare(a.ID, b.ID) })
	return snap
}

// NewMemoryStoreFromPath loads a snapshot written by SaveMemoryStore.
// A missing file yields os.ErrNotExist so callers can start empty.
func NewMemoryStoreFromPath(path string) (Store, error) {
	if path == "" {
		return nil, os.ErrNotExist
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	s := newMemoryStore()
	if err := CopySnapshot(&snap, s); err != nil {
		return nil, err
	}
	return s, nil
}

// SaveMemoryStore writes st to path atomically via a temp file and rename.
func SaveMemoryStore(st Store, path string) error {
	snap := MemoryStoreSnapshot(st)
	if snap == nil {
		return errors.New("only memory stores can be snapshotted")
	}
	raw, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// CopySnapshot writes every record in snap into dst. Records already present are left alone.
func CopySnapshot(snap *Snapshot, dst Store) error {
	for _, a := range snap.Assessments {
		if a == nil {
			continue
		}
		if err := dst.CreateAssessment(a); err != nil && !errors.Is(err, services.ErrAlreadyExists) {
			return fmt.Errorf("copy assessment %s: %w", a.ID, err)
		}
	}
	for _, su := range snap.Users {
		if su == nil || su.User == nil {
			continue
		}
		u := su.User.Clone()
		u.PassHash = su.PassHash
		if err := dst.AddUser(u); err != nil && !errors.Is(err, services.ErrAlreadyExists) {
			return fmt.Errorf("copy user %s: %w", u.ID, err)
		}
	}
	for _, sub := range snap.Submissions {
		if sub == nil {
			continue
		}
		if err := dst.CreateSubmission(sub); err != nil && !errors.Is(err, services.ErrAlreadyExists) {
			return fmt.Errorf("copy submission %s: %w", sub.ID, err)
		}
	}
	return nil
}
