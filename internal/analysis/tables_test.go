package analysis

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/soaringjerry/mindscope/internal/models"
)

func TestDefaultTables(t *testing.T) {
	tables := DefaultTables()
	if len(tables.MBTI.Types) != 16 {
		t.Fatalf("mbti types = %d, want 16", len(tables.MBTI.Types))
	}
	for _, id := range []string{"phq9", "gad7"} {
		if _, ok := tables.Clinical[id]; !ok {
			t.Fatalf("missing clinical scale %s", id)
		}
	}
	if len(tables.GeneralAdvice) != 3 {
		t.Fatalf("general advice = %d, want 3", len(tables.GeneralAdvice))
	}
}

func TestClinicalScale_Band(t *testing.T) {
	phq := DefaultTables().Clinical["phq9"]
	cases := []struct {
		total float64
		want  models.Severity
		level models.Level
	}{
		{0, models.SeverityMinimal, models.LevelLow},
		{4, models.SeverityMinimal, models.LevelLow},
		{5, models.SeverityMild, models.LevelLow},
		{10, models.SeverityModerate, models.LevelMedium},
		{15, models.SeverityModeratelySevere, models.LevelHigh},
		{20, models.SeveritySevere, models.LevelHigh},
		{40, models.SeveritySevere, models.LevelHigh},
	}
	for _, c := range cases {
		b := phq.Band(c.total)
		if b.Severity != c.want || b.Level != c.level {
			t.Fatalf("Band(%v) = %q/%q, want %q/%q", c.total, b.Severity, b.Level, c.want, c.level)
		}
	}
	gad := DefaultTables().Clinical["gad7"]
	if got := gad.Cutoffs(); len(got) != 4 || got[3] != 15 {
		t.Fatalf("gad7 cutoffs = %v", got)
	}
}

func TestParseTables_Invalid(t *testing.T) {
	_, err := ParseTables([]byte("version: 1\nclinical:\n  x:\n    label: X\n"))
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"mbti.dichotomies", "disc.default_type", "clinical.x"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q does not mention %q", err, want)
		}
	}
}

func TestLoadTables_File(t *testing.T) {
	if got, err := LoadTables(""); err != nil || got != DefaultTables() {
		t.Fatalf("LoadTables(\"\") = %p, %v", got, err)
	}
	path := filepath.Join(t.TempDir(), "tables.yaml")
	if err := os.WriteFile(path, embeddedTables, 0o600); err != nil {
		t.Fatal(err)
	}
	got, err := LoadTables(path)
	if err != nil {
		t.Fatalf("LoadTables: %v", err)
	}
	if got == DefaultTables() || got.DISC.DefaultType != "S" {
		t.Fatalf("unexpected tables %+v", got.DISC)
	}
	if _, err := LoadTables(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestProfileFallbackEchoesCode(t *testing.T) {
	p := DefaultTables().Profile("XXXX")
	if p.Name != "XXXX" {
		t.Fatalf("name = %q", p.Name)
	}
	p.Characteristics[0] = "mutated"
	if DefaultTables().MBTI.Fallback.Characteristics[0] == "mutated" {
		t.Fatal("profile shares slices with tables")
	}
}
