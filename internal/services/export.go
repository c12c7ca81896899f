package services

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"time"
)

type LongRow struct {
	SubmissionID string
	QuestionID   string
	Value        string
	Score        *float64
	SubmittedAt  time.Time
}

// WideRow is one submission with a cell per column key.
type WideRow struct {
	SubmissionID string
	SubmittedAt  time.Time
	Cells        map[string]string
}

// ExportLongCSV renders one line per answer.
func ExportLongCSV(rows []LongRow) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	_ = w.Write([]string{"submission_id", "question_id", "value", "score", "submitted_at"})
	for _, r := range rows {
		rec := []string{
			csvSafe(r.SubmissionID),
			csvSafe(r.QuestionID),
			csvSafe(r.Value),
			formatOptionalScore(r.Score),
			r.SubmittedAt.UTC().Format(time.RFC3339),
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// ExportWideCSV renders one line per submission with the given columns in order.
// Missing cells are left empty.
func ExportWideCSV(columns []string, rows []WideRow) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := []string{"submission_id", "submitted_at"}
	for _, c := range columns {
		header = append(header, csvSafe(c))
	}
	_ = w.Write(header)
	for _, r := range rows {
		rec := make([]string, 0, len(header))
		rec = append(rec, csvSafe(r.SubmissionID), r.SubmittedAt.UTC().Format(time.RFC3339))
		for _, c := range columns {
			rec = append(rec, csvSafe(r.Cells[c]))
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// csvSafe prefixes cells that a spreadsheet would evaluate as a formula.
func csvSafe(v string) string {
	if v == "" {
		return v
	}
	switch v[0] {
	case '=', '+', '-', '@', '\t', '\r':
		if _, err := strconv.ParseFloat(v, 64); err == nil {
			return v
		}
		return "'" + v
	}
	return v
}

func formatOptionalScore(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
