package db

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormLogger "gorm.io/gorm/logger"

	"github.com/soaringjerry/mindscope/internal/api"
	"github.com/soaringjerry/mindscope/internal/models"
	"github.com/soaringjerry/mindscope/internal/services"
)

type assessmentRow struct {
	ID        string         `gorm:"primaryKey;size:128"`
	Data      datatypes.JSON `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (assessmentRow) TableName() string { return "assessments" }

type submissionRow struct {
	ID           string         `gorm:"primaryKey;size:64"`
	AssessmentID string         `gorm:"size:128;not null;index:idx_submissions_assessment"`
	UserID       *string        `gorm:"size:64;index:idx_submissions_user"`
	CreatedAt    time.Time      `gorm:"not null;index"`
	Data         datatypes.JSON `gorm:"not null"`
}

func (submissionRow) TableName() string { return "submissions" }

type userRow struct {
	ID       string `gorm:"primaryKey;size:64"`
	Email    string `gorm:"size:320;not null;uniqueIndex"`
	PassHash []byte
	Data     datatypes.JSON `gorm:"not null"`
}

func (userRow) TableName() string { return "users" }

type historyRow struct {
	UserID       string    `gorm:"primaryKey;size:64"`
	SubmissionID string    `gorm:"primaryKey;size:64"`
	AddedAt      time.Time `gorm:"not null"`
}

func (historyRow) TableName() string { return "user_history" }

// GormStore is the relational store used with Postgres. Documents are kept in JSON columns.
type GormStore struct {
	db  *gorm.DB
	now func() time.Time
}

var _ api.Store = (*GormStore)(nil)

// OpenPostgres connects with duplicate-key errors translated to gorm.ErrDuplicatedKey.
func OpenPostgres(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormLogger.Default.LogMode(gormLogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return db, nil
}

// NewGormStore migrates the schema and returns the store. db should be opened with TranslateError.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if db == nil {
		return nil, errors.New("nil db")
	}
	if err := db.AutoMigrate(&assessmentRow{}, &submissionRow{}, &userRow{}, &historyRow{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &GormStore{db: db, now: time.Now}, nil
}

func decodeRow[T any](raw datatypes.JSON) (*T, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *GormStore) ListAssessments() ([]*models.Assessment, error) {
	var rows []assessmentRow
	if err := s.db.Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*models.Assessment, 0, len(rows))
	for _, r := range rows {
		a, err := decodeRow[models.Assessment](r.Data)
		if err != nil {
			return nil, fmt.Errorf("decode assessment %s: %w", r.ID, err)
		}
		out = append(out, a)
	}
	return out, nil
}

func (s *GormStore) GetAssessment(id string) (*models.Assessment, error) {
	var row assessmentRow
	err := s.db.Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeRow[models.Assessment](row.Data)
}

func (s *GormStore) CreateAssessment(a *models.Assessment) error {
	data, err := json.Marshal(a)
	if err != nil {
		return err
	}
	err = s.db.Create(&assessmentRow{ID: a.ID, Data: datatypes.JSON(data)}).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return services.ErrAlreadyExists
	}
	return err
}

func (s *GormStore) UpsertAssessment(a *models.Assessment) error {
	data, err := json.Marshal(a)
	if err != nil {
		return err
	}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&assessmentRow{ID: a.ID, Data: datatypes.JSON(data)}).Error
}

func (s *GormStore) DeleteAssessment(id string) error {
	return s.db.Where("id = ?", id).Delete(&assessmentRow{}).Error
}

func (s *GormStore) CreateSubmission(sub *models.Submission) error {
	data, err := json.Marshal(sub)
	if err != nil {
		return err
	}
	row := submissionRow{ID: sub.ID, AssessmentID: sub.AssessmentID, CreatedAt: sub.CreatedAt, Data: datatypes.JSON(data)}
	if sub.UserID != "" {
		uid := sub.UserID
		row.UserID = &uid
	}
	err = s.db.Create(&row).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return services.ErrAlreadyExists
	}
	return err
}

func (s *GormStore) GetSubmission(id string) (*models.Submission, error) {
	var row submissionRow
	err := s.db.Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeRow[models.Submission](row.Data)
}

func (s *GormStore) ListSubmissions(filter services.SubmissionFilter) ([]*models.Submission, error) {
	q := s.db.Model(&submissionRow{})
	if filter.AssessmentID != "" {
		q = q.Where("assessment_id = ?", filter.AssessmentID)
	}
	if filter.UserID != "" {
		q = q.Where("user_id = ?", filter.UserID)
	}
	var rows []submissionRow
	if err := q.Order("created_at DESC").Order("id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*models.Submission, 0, len(rows))
	for _, r := range rows {
		sub, err := decodeRow[models.Submission](r.Data)
		if err != nil {
			return nil, fmt.Errorf("decode submission %s: %w", r.ID, err)
		}
		out = append(out, sub)
	}
	return out, nil
}

func (s *GormStore) CountSubmissions(assessmentID string) (int, error) {
	var n int64
	err := s.db.Model(&submissionRow{}).Where("assessment_id = ?", assessmentID).Count(&n).Error
	return int(n), err
}

func (s *GormStore) loadUser(row *userRow) (*models.User, error) {
	u, err := decodeRow[models.User](row.Data)
	if err != nil {
		return nil, fmt.Errorf("decode user %s: %w", row.ID, err)
	}
	u.PassHash = row.PassHash
	var hist []historyRow
	if err := s.db.Where("user_id = ?", row.ID).Order("added_at").Order("submission_id").Find(&hist).Error; err != nil {
		return nil, err
	}
	u.TestHistory = make([]string, 0, len(hist))
	for _, h := range hist {
		u.TestHistory = append(u.TestHistory, h.SubmissionID)
	}
	return u, nil
}

func (s *GormStore) findUser(query string, arg any) (*models.User, error) {
	var row userRow
	err := s.db.Where(query, arg).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s.loadUser(&row)
}

func (s *GormStore) FindUserByEmail(email string) (*models.User, error) {
	return s.findUser("email = ?", strings.ToLower(email))
}

func (s *GormStore) GetUser(id string) (*models.User, error) {
	return s.findUser("id = ?", id)
}

func (s *GormStore) AddUser(u *models.User) error {
	data, err := userDoc(u)
	if err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Create(&userRow{ID: u.ID, Email: strings.ToLower(u.Email), PassHash: u.PassHash, Data: datatypes.JSON(data)}).Error
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return services.ErrAlreadyExists
		}
		if err != nil {
			return err
		}
		for _, sid := range u.TestHistory {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
				Create(&historyRow{UserID: u.ID, SubmissionID: sid, AddedAt: s.now()}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *GormStore) UpdateUser(u *models.User) error {
	data, err := userDoc(u)
	if err != nil {
		return err
	}
	res := s.db.Model(&userRow{}).Where("id = ?", u.ID).Updates(map[string]any{
		"email":     strings.ToLower(u.Email),
		"pass_hash": u.PassHash,
		"data":      datatypes.JSON(data),
	})
	if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
		return services.ErrAlreadyExists
	}
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return services.ErrNotFound
	}
	return nil
}

func (s *GormStore) AppendTestHistory(userID, submissionID string) error {
	var n int64
	if err := s.db.Model(&userRow{}).Where("id = ?", userID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return services.ErrNotFound
	}
	return s.db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&historyRow{UserID: userID, SubmissionID: submissionID, AddedAt: s.now()}).Error
}
