package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/soaringjerry/mindscope/internal/api"
	"github.com/soaringjerry/mindscope/internal/models"
	"github.com/soaringjerry/mindscope/internal/services"
)

// SQLiteStore keeps each record as a JSON document next to the columns it is queried by.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if db == nil {
		return nil, errors.New("nil db")
	}
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, stmt := range pragmas {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("apply sqlite pragma %q: %w", stmt, err)
		}
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

func NewStore(db *sql.DB) (api.Store, error) {
	return NewSQLiteStore(db)
}

var _ api.Store = (*SQLiteStore)(nil)

func contextBg() context.Context { return context.Background() }

// isConstraint reports a primary key or unique violation.
func isConstraint(err error) bool {
	var se sqlite3.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey || se.ExtendedCode == sqlite3.ErrConstraintUnique
}

func encodeJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (s *SQLiteStore) ListAssessments() ([]*models.Assessment, error) {
	rows, err := s.db.QueryContext(contextBg(), `SELECT data FROM assessments ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*models.Assessment{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var a models.Assessment
		if err := json.Unmarshal([]byte(raw), &a); err != nil {
			return nil, fmt.Errorf("decode assessment: %w", err)
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) GetAssessment(id string) (*models.Assessment, error) {
	var raw string
	err := s.db.QueryRowContext(contextBg(), `SELECT data FROM assessments WHERE id = ?`, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var a models.Assessment
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		return nil, fmt.Errorf("decode assessment %s: %w", id, err)
	}
	return &a, nil
}

func (s *SQLiteStore) CreateAssessment(a *models.Assessment) error {
	data, err := encodeJSON(a)
	if err != nil {
		return err
	}
	now := s.now().UnixNano()
	_, err = s.db.ExecContext(contextBg(),
		`INSERT INTO assessments (id, data, created_at, updated_at) VALUES (?, ?, ?, ?)`, a.ID, data, now, now)
	if isConstraint(err) {
		return services.ErrAlreadyExists
	}
	return err
}

func (s *SQLiteStore) UpsertAssessment(a *models.Assessment) error {
	data, err := encodeJSON(a)
	if err != nil {
		return err
	}
	now := s.now().UnixNano()
	_, err = s.db.ExecContext(contextBg(), `INSERT INTO assessments (id, data, created_at, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`, a.ID, data, now, now)
	return err
}

func (s *SQLiteStore) DeleteAssessment(id string) error {
	_, err := s.db.ExecContext(contextBg(), `DELETE FROM assessments WHERE id = ?`, id)
	return err
}

func (s *SQLiteStore) CreateSubmission(sub *models.Submission) error {
	data, err := encodeJSON(sub)
	if err != nil {
		return err
	}
	var userID sql.NullString
	if sub.UserID != "" {
		userID = sql.NullString{String: sub.UserID, Valid: true}
	}
	_, err = s.db.ExecContext(contextBg(),
		`INSERT INTO submissions (id, assessment_id, user_id, created_at, data) VALUES (?, ?, ?, ?, ?)`,
		sub.ID, sub.AssessmentID, userID, sub.CreatedAt.UnixNano(), data)
	if isConstraint(err) {
		return services.ErrAlreadyExists
	}
	return err
}

func (s *SQLiteStore) GetSubmission(id string) (*models.Submission, error) {
	var raw string
	err := s.db.QueryRowContext(contextBg(), `SELECT data FROM submissions WHERE id = ?`, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var sub models.Submission
	if err := json.Unmarshal([]byte(raw), &sub); err != nil {
		return nil, fmt.Errorf("decode submission %s: %w", id, err)
	}
	return &sub, nil
}

func (s *SQLiteStore) ListSubmissions(filter services.SubmissionFilter) ([]*models.Submission, error) {
	var (
		where []string
		args  []any
	)
	if filter.AssessmentID != "" {
		where = append(where, "assessment_id = ?")
		args = append(args, filter.AssessmentID)
	}
	if filter.UserID != "" {
		where = append(where, "user_id = ?")
		args = append(args, filter.UserID)
	}
	q := `SELECT data FROM submissions`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY created_at DESC, rowid DESC"

	rows, err := s.db.QueryContext(contextBg(), q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*models.Submission{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var sub models.Submission
		if err := json.Unmarshal([]byte(raw), &sub); err != nil {
			return nil, fmt.Errorf("decode submission: %w", err)
		}
		out = append(out, &sub)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) CountSubmissions(assessmentID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(contextBg(), `SELECT COUNT(*) FROM submissions WHERE assessment_id = ?`, assessmentID).Scan(&n)
	return n, err
}

// userDoc drops the test history, which lives in user_history.
func userDoc(u *models.User) (string, error) {
	c := u.Clone()
	c.TestHistory = nil
	return encodeJSON(c)
}

func (s *SQLiteStore) loadUser(where string, arg any) (*models.User, error) {
	var (
		raw  string
		hash []byte
	)
	err := s.db.QueryRowContext(contextBg(), `SELECT data, pass_hash FROM users WHERE `+where, arg).Scan(&raw, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var u models.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	u.PassHash = hash
	u.TestHistory, err = s.history(u.ID)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *SQLiteStore) history(userID string) ([]string, error) {
	rows, err := s.db.QueryContext(contextBg(),
		`SELECT submission_id FROM user_history WHERE user_id = ? ORDER BY added_at, rowid`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) FindUserByEmail(email string) (*models.User, error) {
	return s.loadUser("email = ?", strings.ToLower(email))
}

func (s *SQLiteStore) GetUser(id string) (*models.User, error) {
	return s.loadUser("id = ?", id)
}

func (s *SQLiteStore) AddUser(u *models.User) error {
	data, err := userDoc(u)
	if err != nil {
		return err
	}
	tx, err := s.db.BeginTx(contextBg(), nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	_, err = tx.Exec(`INSERT INTO users (id, email, pass_hash, data) VALUES (?, ?, ?, ?)`,
		u.ID, strings.ToLower(u.Email), u.PassHash, data)
	if isConstraint(err) {
		return services.ErrAlreadyExists
	}
	if err != nil {
		return err
	}
	for _, sid := range u.TestHistory {
		if _, err := tx.Exec(`INSERT OR IGNORE INTO user_history (user_id, submission_id, added_at) VALUES (?, ?, ?)`,
			u.ID, sid, s.now().UnixNano()); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) UpdateUser(u *models.User) error {
	data, err := userDoc(u)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(contextBg(), `UPDATE users SET email = ?, pass_hash = ?, data = ? WHERE id = ?`,
		strings.ToLower(u.Email), u.PassHash, data, u.ID)
	if isConstraint(err) {
		return services.ErrAlreadyExists
	}
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return services.ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) AppendTestHistory(userID, submissionID string) error {
	_, err := s.db.ExecContext(contextBg(),
		`INSERT OR IGNORE INTO user_history (user_id, submission_id, added_at) VALUES (?, ?, ?)`,
		userID, submissionID, s.now().UnixNano())
	var se sqlite3.Error
	if errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintForeignKey {
		return services.ErrNotFound
	}
	return err
}
