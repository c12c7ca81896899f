package api

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/soaringjerry/mindscope/internal/models"
	"github.com/soaringjerry/mindscope/internal/services"
)

func TestMemoryStore_AssessmentsAreCloned(t *testing.T) {
	s := NewMemoryStore()
	a := sampleAssessment("sample", false)
	if err := s.CreateAssessment(a); err != nil {
		t.Fatalf("create: %v", err)
	}
	a.Questions[0].Prompt = "mutated"
	got, _ := s.GetAssessment("sample")
	if got.Questions[0].Prompt == "mutated" {
		t.Fatalf("store aliases caller data")
	}
	if err := s.CreateAssessment(a); !errors.Is(err, services.ErrAlreadyExists) {
		t.Fatalf("second create = %v", err)
	}
	if missing, err := s.GetAssessment("nope"); missing != nil || err != nil {
		t.Fatalf("missing = %v, %v", missing, err)
	}
}

func TestMemoryStore_ConcurrentCreateIsAtomic(t *testing.T) {
	s := NewMemoryStore()
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.CreateSubmission(&models.Submission{ID: "same"}); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if wins != 1 {
		t.Fatalf("%d concurrent creates succeeded", wins)
	}
}

func TestMemoryStore_SubmissionsNewestFirst(t *testing.T) {
	s := NewMemoryStore()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		_ = s.CreateSubmission(&models.Submission{ID: id, AssessmentID: "x", CreatedAt: base.Add(time.Duration(i) * time.Minute)})
	}
	_ = s.CreateSubmission(&models.Submission{ID: "d", AssessmentID: "y", CreatedAt: base})
	list, _ := s.ListSubmissions(services.SubmissionFilter{AssessmentID: "x"})
	if len(list) != 3 || list[0].ID != "c" || list[2].ID != "a" {
		t.Fatalf("list = %v", list)
	}
	if n, _ := s.CountSubmissions("x"); n != 3 {
		t.Fatalf("count = %d", n)
	}
}

func TestMemoryStore_Users(t *testing.T) {
	s := NewMemoryStore()
	if err := s.AddUser(&models.User{ID: "u1", Email: "Ada@Example.com"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.AddUser(&models.User{ID: "u2", Email: "ada@example.com"}); !errors.Is(err, services.ErrAlreadyExists) {
		t.Fatalf("duplicate email = %v", err)
	}
	u, _ := s.FindUserByEmail("ada@example.com")
	if u == nil || u.ID != "u1" {
		t.Fatalf("find = %+v", u)
	}
	if err := s.UpdateUser(&models.User{ID: "ghost"}); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("update missing = %v", err)
	}
	_ = s.AppendTestHistory("u1", "s1")
	_ = s.AppendTestHistory("u1", "s1")
	u, _ = s.GetUser("u1")
	if len(u.TestHistory) != 1 {
		t.Fatalf("history = %v", u.TestHistory)
	}
	u.Email = "new@example.com"
	if err := s.UpdateUser(u); err != nil {
		t.Fatalf("update: %v", err)
	}
	if old, _ := s.FindUserByEmail("ada@example.com"); old != nil {
		t.Fatalf("old email still indexed")
	}
}

func TestMemoryStore_SnapshotRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	_ = s.CreateAssessment(sampleAssessment("sample", false))
	_ = s.AddUser(&models.User{ID: "u1", Email: "a@b.co", PassHash: []byte("hash"), TestHistory: []string{"s1"}})
	_ = s.CreateSubmission(&models.Submission{ID: "s1", AssessmentID: "sample", UserID: "u1"})

	path := filepath.Join(t.TempDir(), "nested", "snapshot.json")
	if err := SaveMemoryStore(s, path); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := NewMemoryStoreFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	u, _ := loaded.GetUser("u1")
	if u == nil || string(u.PassHash) != "hash" || len(u.TestHistory) != 1 {
		t.Fatalf("user = %+v", u)
	}
	if sub, _ := loaded.GetSubmission("s1"); sub == nil {
		t.Fatalf("submission missing after load")
	}

	if _, err := NewMemoryStoreFromPath(filepath.Join(t.TempDir(), "none.json")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("missing snapshot = %v", err)
	}
}
