package services

import (
	"encoding/csv"
	"strings"
	"testing"
	"time"
)

func readCSV(b []byte) ([][]string, error) {
	r := csv.NewReader(strings.NewReader(string(b)))
	return r.ReadAll()
}

func TestExportLongCSV(t *testing.T) {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	two := 2.0
	rows := []LongRow{
		{SubmissionID: "S1", QuestionID: "q1", Value: "yes", Score: &two, SubmittedAt: at},
		{SubmissionID: "S1", QuestionID: "q2", Value: "free text, with comma", SubmittedAt: at},
	}
	b, err := ExportLongCSV(rows)
	if err != nil {
		t.Fatalf("export long: %v", err)
	}
	recs, err := readCSV(b)
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(recs) != 1+len(rows) {
		t.Fatalf("want %d rows, got %d", 1+len(rows), len(recs))
	}
	if got := strings.Join(recs[0], ","); got != "submission_id,question_id,value,score,submitted_at" {
		t.Fatalf("bad header: %s", got)
	}
	if recs[1][3] != "2" || recs[2][3] != "" || recs[2][2] != "free text, with comma" {
		t.Fatalf("bad rows: %v", recs[1:])
	}
	if recs[1][4] != "2024-01-01T00:00:00Z" {
		t.Fatalf("bad timestamp: %s", recs[1][4])
	}
}

func TestExportWideCSV(t *testing.T) {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := []WideRow{
		{SubmissionID: "S1", SubmittedAt: at, Cells: map[string]string{"q2": "b", "q1": "a"}},
		{SubmissionID: "S2", SubmittedAt: at, Cells: map[string]string{"q1": "c"}},
	}
	b, err := ExportWideCSV([]string{"q2", "q1"}, rows)
	if err != nil {
		t.Fatalf("export wide: %v", err)
	}
	recs, err := readCSV(b)
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if strings.Join(recs[0], ",") != "submission_id,submitted_at,q2,q1" {
		t.Fatalf("header mismatch: %v", recs[0])
	}
	if recs[1][2] != "b" || recs[2][2] != "" || recs[2][3] != "c" {
		t.Fatalf("rows mismatch: %v", recs[1:])
	}
}

func TestCSVSafe(t *testing.T) {
	cases := map[string]string{
		"":              "",
		"plain":         "plain",
		"=SUM(A1:A9)":   "'=SUM(A1:A9)",
		"@cmd":          "'@cmd",
		"+1 phone":      "'+1 phone",
		"-3":            "-3",
		"+2.5":          "+2.5",
		"mid=equals ok": "mid=equals ok",
	}
	for in, want := range cases {
		if got := csvSafe(in); got != want {
			t.Fatalf("csvSafe(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestExportCSV_GuardsIdentifiers(t *testing.T) {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	evil := `=HYPERLINK("http://x.test","click")`

	long, err := ExportLongCSV([]LongRow{{SubmissionID: "@S1", QuestionID: evil, Value: "yes", SubmittedAt: at}})
	if err != nil {
		t.Fatalf("export long: %v", err)
	}
	recs, err := readCSV(long)
	if err != nil {
		t.Fatalf("parse long: %v", err)
	}
	if recs[1][0] != "'@S1" || recs[1][1] != "'"+evil {
		t.Fatalf("long ids unguarded: %v", recs[1])
	}

	wide, err := ExportWideCSV([]string{evil}, []WideRow{{SubmissionID: "S1", SubmittedAt: at, Cells: map[string]string{evil: "a"}}})
	if err != nil {
		t.Fatalf("export wide: %v", err)
	}
	recs, err = readCSV(wide)
	if err != nil {
		t.Fatalf("parse wide: %v", err)
	}
	if recs[0][2] != "'"+evil || recs[1][2] != "a" {
		t.Fatalf("wide header unguarded: %v / %v", recs[0], recs[1])
	}
}
