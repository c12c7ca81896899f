package services

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/soaringjerry/mindscope/internal/models"
)

type ExportStore interface {
	GetAssessment(id string) (*models.Assessment, error)
	ListSubmissions(filter SubmissionFilter) ([]*models.Submission, error)
}

type ExportParams struct {
	AssessmentID string
	Format       string
}

type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
}

type ExportService struct {
	store ExportStore
}

func NewExportService(store ExportStore) *ExportService {
	return &ExportService{store: store}
}

const csvContentType = "text/csv; charset=utf-8"

// ExportCSV renders an assessment's submissions as long, wide, or score CSV, oldest first.
func (s *ExportService) ExportCSV(params ExportParams) (*ExportResult, error) {
	id, ok := NormalizeIDParam(params.AssessmentID)
	if !ok {
		return nil, NewInvalidError("Invalid assessment id.")
	}
	format := params.Format
	if format == "" {
		format = "long"
	}
	if format != "long" && format != "wide" && format != "score" {
		return nil, NewInvalidError(fmt.Sprintf("Unsupported export format `%s`.", format))
	}
	a, err := s.store.GetAssessment(id)
	if err != nil {
		return nil, fmt.Errorf("get assessment %s: %w", id, err)
	}
	if a == nil {
		return nil, NewNotFoundError("Assessment not found.")
	}
	subs, err := s.store.ListSubmissions(SubmissionFilter{AssessmentID: id})
	if err != nil {
		return nil, fmt.Errorf("list submissions for %s: %w", id, err)
	}
	subs = slices.Clone(subs)
	slices.Reverse(subs)

	var data []byte
	switch format {
	case "long":
		data, err = ExportLongCSV(buildLongRows(subs))
	case "wide":
		columns := make([]string, 0, len(a.Questions))
		for _, q := range a.Questions {
			columns = append(columns, q.ID)
		}
		data, err = ExportWideCSV(columns, buildWideRows(subs))
	case "score":
		columns, rows := buildScoreRows(subs)
		data, err = ExportWideCSV(columns, rows)
	}
	if err != nil {
		return nil, err
	}
	return &ExportResult{Filename: id + "-" + format + ".csv", ContentType: csvContentType, Data: data}, nil
}

func buildLongRows(subs []*models.Submission) []LongRow {
	var rows []LongRow
	for _, sub := range subs {
		for _, ans := range sub.Answers {
			rows = append(rows, LongRow{
				SubmissionID: sub.ID,
				QuestionID:   ans.QuestionID,
				Value:        ans.Value,
				Score:        ans.Score,
				SubmittedAt:  sub.CreatedAt,
			})
		}
	}
	return rows
}

func buildWideRows(subs []*models.Submission) []WideRow {
	rows := make([]WideRow, 0, len(subs))
	for _, sub := range subs {
		cells := make(map[string]string, len(sub.Answers))
		for _, ans := range sub.Answers {
			cells[ans.QuestionID] = ans.Value
		}
		rows = append(rows, WideRow{SubmissionID: sub.ID, SubmittedAt: sub.CreatedAt, Cells: cells})
	}
	return rows
}

// buildScoreRows emits dimension percentages plus type and severity. Dimension columns follow
// first appearance across submissions.
func buildScoreRows(subs []*models.Submission) ([]string, []WideRow) {
	var dims []string
	rows := make([]WideRow, 0, len(subs))
	for _, sub := range subs {
		cells := map[string]string{}
		if r := sub.DetailedResult; r != nil {
			for _, ds := range r.DimensionScores {
				if !slices.Contains(dims, ds.DimensionID) {
					dims = append(dims, ds.DimensionID)
				}
				cells[ds.DimensionID] = strconv.Itoa(ds.Percentage)
			}
			cells["overall_type"] = r.OverallType
			if r.Clinical != nil {
				cells["severity"] = string(r.Clinical.Severity)
			}
		}
		rows = append(rows, WideRow{SubmissionID: sub.ID, SubmittedAt: sub.CreatedAt, Cells: cells})
	}
	return append(dims, "overall_type", "severity"), rows
}
