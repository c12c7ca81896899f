package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/soaringjerry/mindscope/internal/middleware"
	"github.com/soaringjerry/mindscope/internal/models"
)

func sampleAssessment(id string, premium bool) *models.Assessment {
	q := func(qid string) models.Question {
		return models.Question{
			ID: qid, Prompt: "Prompt " + qid, Type: models.QuestionSingleChoice, Dimension: "drive",
			Options: []string{"yes", "no"}, Scoring: map[string]float64{"yes": 1, "no": 0},
		}
	}
	return &models.Assessment{
		ID: id, Name: "Sample " + id, Duration: "1 min", Description: "d", Focus: []string{"f"},
		IsPremium: premium,
		Dimensions: []models.Dimension{{ID: "drive", Name: "Drive",
			Interpretation: models.Interpretation{Low: "calm", Medium: "steady", High: "driven"}}},
		Questions: []models.Question{q("q1"), q("q2")},
	}
}

type testServer struct {
	t       *testing.T
	handler http.Handler
	store   Store
	auth    *middleware.TokenAuth
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := NewMemoryStore()
	for _, a := range []*models.Assessment{sampleAssessment("sample", false), sampleAssessment("deluxe", true)} {
		if err := store.CreateAssessment(a); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	auth := middleware.NewTokenAuth("test-secret")
	mux := http.NewServeMux()
	NewRouter(store, Options{Auth: auth, TokenTTL: time.Hour, Commit: "abc"}).Register(mux)
	return &testServer{t: t, handler: auth.WithAuth(middleware.LocaleMiddleware(mux)), store: store, auth: auth}
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			s.t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return out
}

type authResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

func (s *testServer) register(email string) authResponse {
	s.t.Helper()
	rr := s.do(http.MethodPost, "/api/auth/register", "", map[string]string{"name": "Ada", "email": email, "password": "secret1"})
	if rr.Code != http.StatusCreated {
		s.t.Fatalf("register = %d %s", rr.Code, rr.Body.String())
	}
	return decode[authResponse](s.t, rr)
}

func TestHealthAndVersion(t *testing.T) {
	s := newTestServer(t)
	rr := s.do(http.MethodGet, "/health?lang=zh", "", nil)
	body := decode[map[string]any](t, rr)
	if rr.Code != http.StatusOK || body["ok"] != true || body["msg"] != "好的" {
		t.Fatalf("health = %d %v", rr.Code, body)
	}
	rr = s.do(http.MethodGet, "/version", "", nil)
	if decode[map[string]any](t, rr)["commit"] != "abc" {
		t.Fatalf("version = %s", rr.Body.String())
	}
}

func TestAssessmentCRUD(t *testing.T) {
	s := newTestServer(t)
	tok := s.register("ada@example.com").Token

	in := sampleAssessment("", false)
	in.Name = "My Quiz!"
	if rr := s.do(http.MethodPost, "/api/assessments", "", in); rr.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous create = %d", rr.Code)
	}
	rr := s.do(http.MethodPost, "/api/assessments", tok, in)
	if rr.Code != http.StatusCreated || decode[models.Assessment](t, rr).ID != "my-quiz" {
		t.Fatalf("create = %d %s", rr.Code, rr.Body.String())
	}
	rr = s.do(http.MethodPost, "/api/assessments", tok, in)
	if rr.Code != http.StatusConflict || len(decode[map[string][]string](t, rr)["errors"]) != 1 {
		t.Fatalf("duplicate create = %d %s", rr.Code, rr.Body.String())
	}

	bad := &models.Assessment{Name: "Broken"}
	rr = s.do(http.MethodPost, "/api/assessments", tok, bad)
	if rr.Code != http.StatusBadRequest || len(decode[map[string][]string](t, rr)["errors"]) < 3 {
		t.Fatalf("invalid create = %d %s", rr.Code, rr.Body.String())
	}
	if rr := s.do(http.MethodPost, "/api/assessments", tok, "{not json"); rr.Code != http.StatusBadRequest {
		t.Fatalf("malformed body = %d", rr.Code)
	}

	rr = s.do(http.MethodGet, "/api/assessments/My-Quiz", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("get normalized = %d", rr.Code)
	}

	rr = s.do(http.MethodPut, "/api/assessments/my-quiz", tok, map[string]any{"description": "updated"})
	if rr.Code != http.StatusOK || decode[models.Assessment](t, rr).Description != "updated" {
		t.Fatalf("update = %d %s", rr.Code, rr.Body.String())
	}

	if rr := s.do(http.MethodDelete, "/api/assessments/my-quiz", tok, nil); rr.Code != http.StatusNoContent {
		t.Fatalf("delete = %d", rr.Code)
	}
	if rr := s.do(http.MethodGet, "/api/assessments/my-quiz", "", nil); rr.Code != http.StatusNotFound {
		t.Fatalf("get deleted = %d", rr.Code)
	}
}

func TestListAssessments_LockedFlag(t *testing.T) {
	s := newTestServer(t)
	type listed struct {
		Assessments []struct {
			ID     string `json:"id"`
			Locked bool   `json:"locked"`
		} `json:"assessments"`
	}
	locked := func(token string) map[string]bool {
		out := map[string]bool{}
		for _, a := range decode[listed](t, s.do(http.MethodGet, "/api/assessments", token, nil)).Assessments {
			out[a.ID] = a.Locked
		}
		return out
	}
	if got := locked(""); !got["deluxe"] || got["sample"] {
		t.Fatalf("anonymous locks = %v", got)
	}
	tok, _ := s.auth.SignToken("u-premium", models.TierPremium, "", time.Hour)
	if got := locked(tok); got["deluxe"] {
		t.Fatalf("premium locks = %v", got)
	}
}

func TestSubmissionFlow(t *testing.T) {
	s := newTestServer(t)
	ada := s.register("ada@example.com")
	bob := s.register("bob@example.com")

	payload := map[string]any{
		"assessmentId": "Sample",
		"respondent":   map[string]string{"name": "Ada", "email": "ada@example.com"},
		"answers": []map[string]string{
			{"questionId": "q1", "value": "yes"},
			{"questionId": "q2", "value": " yes "},
		},
	}
	rr := s.do(http.MethodPost, "/api/submissions", ada.Token, payload)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create submission = %d %s", rr.Code, rr.Body.String())
	}
	sub := decode[models.Submission](t, rr)
	if sub.UserID != ada.User.ID || sub.DetailedResult == nil || sub.ResultSummary == "" {
		t.Fatalf("submission = %+v", sub)
	}
	if ds := sub.DetailedResult.DimensionScores; len(ds) != 1 || ds[0].Percentage != 100 || ds[0].Level != models.LevelHigh {
		t.Fatalf("scores = %+v", ds)
	}

	if rr := s.do(http.MethodGet, "/api/submissions/"+sub.ID, ada.Token, nil); rr.Code != http.StatusOK {
		t.Fatalf("owner get = %d", rr.Code)
	}
	if rr := s.do(http.MethodGet, "/api/submissions/"+sub.ID, bob.Token, nil); rr.Code != http.StatusNotFound {
		t.Fatalf("other user get = %d", rr.Code)
	}
	if rr := s.do(http.MethodGet, "/api/submissions/"+sub.ID, "", nil); rr.Code != http.StatusNotFound {
		t.Fatalf("anonymous get = %d", rr.Code)
	}

	rr = s.do(http.MethodGet, "/api/users/"+ada.User.ID+"/history", ada.Token, nil)
	if got := decode[map[string][]models.Submission](t, rr)["submissions"]; len(got) != 1 || got[0].ID != sub.ID {
		t.Fatalf("history = %s", rr.Body.String())
	}
	if rr := s.do(http.MethodGet, "/api/users/"+ada.User.ID+"/history", bob.Token, nil); rr.Code != http.StatusForbidden {
		t.Fatalf("foreign history = %d", rr.Code)
	}
	rr = s.do(http.MethodGet, "/api/users/"+ada.User.ID, ada.Token, nil)
	if u := decode[map[string]models.User](t, rr)["user"]; len(u.TestHistory) != 1 {
		t.Fatalf("user = %s", rr.Body.String())
	}
	rr = s.do(http.MethodGet, "/api/submissions?assessmentId=sample", bob.Token, nil)
	if got := decode[map[string][]models.Submission](t, rr)["submissions"]; len(got) != 0 {
		t.Fatalf("bob sees %d submissions", len(got))
	}
}

func TestSubmissionValidationErrors(t *testing.T) {
	s := newTestServer(t)
	rr := s.do(http.MethodPost, "/api/submissions", "", map[string]any{
		"assessmentId": "sample",
		"respondent":   map[string]string{"name": "", "email": "nope"},
		"answers":      []map[string]string{{"questionId": "q9", "value": "yes"}},
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rr.Code)
	}
	errs := decode[map[string][]string](t, rr)["errors"]
	if len(errs) < 3 {
		t.Fatalf("errors = %q", errs)
	}
}

func TestAuthEndpoints(t *testing.T) {
	s := newTestServer(t)
	s.register("ada@example.com")
	rr := s.do(http.MethodPost, "/api/auth/register", "", map[string]string{"name": "A", "email": "ADA@example.com", "password": "secret1"})
	if rr.Code != http.StatusConflict {
		t.Fatalf("duplicate register = %d", rr.Code)
	}
	rr = s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ada@example.com", "password": "wrong!"})
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("bad login = %d", rr.Code)
	}
	rr = s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "Ada@Example.com", "password": "secret1"})
	if rr.Code != http.StatusOK || decode[authResponse](t, rr).Token == "" {
		t.Fatalf("login = %d %s", rr.Code, rr.Body.String())
	}
	if strings.Contains(rr.Body.String(), "passHash") || strings.Contains(rr.Body.String(), "PassHash") {
		t.Fatalf("password hash leaked: %s", rr.Body.String())
	}
}

func TestExportRequiresPlan(t *testing.T) {
	s := newTestServer(t)
	ada := s.register("ada@example.com")
	s.do(http.MethodPost, "/api/submissions", "", map[string]any{
		"assessmentId": "sample",
		"respondent":   map[string]string{"name": "Anon", "email": "anon@example.com"},
		"answers":      []map[string]string{{"questionId": "q1", "value": "yes"}, {"questionId": "q2", "value": "no"}},
	})

	if rr := s.do(http.MethodGet, "/api/assessments/sample/export", ada.Token, nil); rr.Code != http.StatusForbidden {
		t.Fatalf("free export = %d", rr.Code)
	}
	rr := s.do(http.MethodPatch, "/api/users/"+ada.User.ID, ada.Token, map[string]string{"membershipTier": "premium"})
	if rr.Code != http.StatusOK {
		t.Fatalf("upgrade = %d %s", rr.Code, rr.Body.String())
	}
	rr = s.do(http.MethodGet, "/api/assessments/sample/export?format=wide", ada.Token, nil)
	if rr.Code != http.StatusOK || !strings.HasPrefix(rr.Header().Get("Content-Type"), "text/csv") {
		t.Fatalf("export = %d %s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Header().Get("Content-Disposition"), "sample-wide.csv") {
		t.Fatalf("disposition = %q", rr.Header().Get("Content-Disposition"))
	}
	if rr := s.do(http.MethodGet, "/api/assessments/sample/export?format=pdf", ada.Token, nil); rr.Code != http.StatusBadRequest {
		t.Fatalf("bad format = %d", rr.Code)
	}

	rr = s.do(http.MethodGet, "/api/assessments/sample/analytics", ada.Token, nil)
	if rr.Code != http.StatusOK || decode[map[string]any](t, rr)["totalSubmissions"] != float64(1) {
		t.Fatalf("analytics = %d %s", rr.Code, rr.Body.String())
	}
}

func TestMembershipPlans(t *testing.T) {
	s := newTestServer(t)
	rr := s.do(http.MethodGet, "/api/membership/plans", "", nil)
	if got := decode[map[string][]models.MembershipPlan](t, rr)["plans"]; len(got) != 4 || got[0].ID != models.TierFree {
		t.Fatalf("plans = %s", rr.Body.String())
	}
}
