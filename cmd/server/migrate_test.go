package main

import (
	"path/filepath"
	"testing"

	"github.com/soaringjerry/mindscope/internal/api"
	"github.com/soaringjerry/mindscope/internal/config"
	dbstore "github.com/soaringjerry/mindscope/internal/db"
	"github.com/soaringjerry/mindscope/internal/logger"
	"github.com/soaringjerry/mindscope/internal/models"
)

func writeSnapshot(t *testing.T, path string) {
	t.Helper()
	mem := api.NewMemoryStore()
	if err := mem.CreateAssessment(&models.Assessment{ID: "legacy", Name: "Legacy"}); err != nil {
		t.Fatal(err)
	}
	if err := mem.AddUser(&models.User{ID: "u1", Email: "a@b.co", PassHash: []byte("hash"), TestHistory: []string{"s1"}}); err != nil {
		t.Fatal(err)
	}
	if err := mem.CreateSubmission(&models.Submission{ID: "s1", AssessmentID: "legacy", UserID: "u1"}); err != nil {
		t.Fatal(err)
	}
	if err := api.SaveMemoryStore(mem, path); err != nil {
		t.Fatal(err)
	}
}

func TestMigrateIfNeeded_CopiesSnapshot(t *testing.T) {
	dir := t.TempDir()
	snap := filepath.Join(dir, "snapshot.json")
	sqlitePath := filepath.Join(dir, "db", "mindscope.db")
	writeSnapshot(t, snap)

	if err := MigrateIfNeeded(snap, sqlitePath, "", logger.NewNop()); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	conn, err := dbstore.OpenSQLite(sqlitePath)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	st, err := dbstore.NewSQLiteStore(conn)
	if err != nil {
		t.Fatal(err)
	}
	if a, _ := st.GetAssessment("legacy"); a == nil || a.Name != "Legacy" {
		t.Fatalf("assessment = %+v", a)
	}
	u, _ := st.GetUser("u1")
	if u == nil || string(u.PassHash) != "hash" || len(u.TestHistory) != 1 {
		t.Fatalf("user = %+v", u)
	}
	if sub, _ := st.GetSubmission("s1"); sub == nil {
		t.Fatal("submission missing")
	}
}

func TestMigrateIfNeeded_NoSnapshot(t *testing.T) {
	dir := t.TempDir()
	sqlitePath := filepath.Join(dir, "mindscope.db")
	if err := MigrateIfNeeded(filepath.Join(dir, "missing.json"), sqlitePath, "", logger.NewNop()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := MigrateIfNeeded("", sqlitePath, "", logger.NewNop()); err != nil {
		t.Fatalf("migrate without snapshot: %v", err)
	}
	if err := MigrateIfNeeded("x", "", "", logger.NewNop()); err == nil {
		t.Fatal("expected error for empty sqlite path")
	}
}

func TestOpenStore_MemorySnapshotRoundTrip(t *testing.T) {
	snap := filepath.Join(t.TempDir(), "snapshot.json")
	cfg := &config.Config{Store: config.StoreMemory, SnapshotPath: snap}

	st, closeStore, err := openStore(cfg, logger.NewNop())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := st.CreateAssessment(&models.Assessment{ID: "kept", Name: "Kept"}); err != nil {
		t.Fatal(err)
	}
	if err := closeStore(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, closeAgain, err := openStore(cfg, logger.NewNop())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer closeAgain()
	if a, _ := reopened.GetAssessment("kept"); a == nil {
		t.Fatal("assessment lost across restart")
	}
}

func TestOpenStore_SQLite(t *testing.T) {
	cfg := &config.Config{Store: config.StoreSQLite, SQLitePath: filepath.Join(t.TempDir(), "mindscope.db")}
	st, closeStore, err := openStore(cfg, logger.NewNop())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer closeStore()
	if err := st.CreateAssessment(&models.Assessment{ID: "one", Name: "One"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	list, err := st.ListAssessments()
	if err != nil || len(list) != 1 {
		t.Fatalf("list = %v, %v", list, err)
	}
}
