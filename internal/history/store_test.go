package history

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestStore_OpenInitializesSchemaAndSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "history.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	base := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	first := Run{
		ID:                "run-1",
		StartedAt:         base,
		Root:              "/work/proj",
		FilesProcessed:    12,
		FilesChanged:      4,
		WildcardsSeen:     7,
		WildcardsReplaced: 5,
		WildcardsRemoved:  1,
		WildcardsKept:     1,
		DiagnosticCount:   2,
		Duration:          1500 * time.Millisecond,
	}
	second := Run{
		ID:             "run-2",
		StartedAt:      base.Add(2 * time.Hour),
		Root:           "/work/proj",
		DryRun:         true,
		FilesProcessed: 12,
		WildcardsSeen:  7,
	}

	if err := store.SaveRun(first); err != nil {
		t.Fatalf("save first run: %v", err)
	}
	if err := store.SaveRun(second); err != nil {
		t.Fatalf("save second run: %v", err)
	}

	runs, err := store.RecentRuns(10)
	if err != nil {
		t.Fatalf("load runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != "run-2" {
		t.Fatalf("expected newest run first, got %q", runs[0].ID)
	}
	if !runs[0].DryRun {
		t.Fatal("expected dry_run to roundtrip")
	}
	if runs[1].WildcardsReplaced != 5 || runs[1].Duration != 1500*time.Millisecond {
		t.Fatalf("expected counters to roundtrip, got %+v", runs[1])
	}
	if !runs[1].StartedAt.Equal(base) {
		t.Fatalf("expected started_at %v, got %v", base, runs[1].StartedAt)
	}
}

func TestStore_SaveRunUpserts(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	run := NewRun("/work/proj", false)
	run.FilesProcessed = 3
	if err := store.SaveRun(run); err != nil {
		t.Fatal(err)
	}

	run.FilesProcessed = 9
	run.FilesChanged = 2
	if err := store.SaveRun(run); err != nil {
		t.Fatal(err)
	}

	runs, err := store.RecentRuns(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 deduplicated run, got %d", len(runs))
	}
	if runs[0].FilesProcessed != 9 || runs[0].FilesChanged != 2 {
		t.Fatalf("expected upserted counters, got %+v", runs[0])
	}
}

func TestStore_RecentRunsLimit(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	base := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		run := NewRun("/work/proj", false)
		run.StartedAt = base.Add(time.Duration(i) * time.Minute)
		if err := store.SaveRun(run); err != nil {
			t.Fatal(err)
		}
	}

	runs, err := store.RecentRuns(3)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(runs))
	}
	if !runs[0].StartedAt.After(runs[2].StartedAt) {
		t.Fatalf("expected newest-first ordering, got %v then %v", runs[0].StartedAt, runs[2].StartedAt)
	}
}

func TestStore_OpenRejectsDirectoryPath(t *testing.T) {
	tmpDir := t.TempDir()
	_, err := Open(tmpDir)
	if err == nil {
		t.Fatal("expected open error for directory path")
	}
	if !strings.Contains(err.Error(), "is a directory") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestStore_OpenCorruptDBPath(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "history.db")
	if err := os.WriteFile(path, []byte("this is not sqlite"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Open(path)
	if err == nil {
		t.Fatal("expected sqlite open error")
	}
	lower := strings.ToLower(err.Error())
	if !strings.Contains(lower, "not a database") && !strings.Contains(lower, "schema") {
		t.Fatalf("expected schema/open error, got: %v", err)
	}
}

func TestEnsureSchema_DetectsNewerVersionDrift(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "history.db")
	store, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	_, err = store.db.Exec(`INSERT OR REPLACE INTO schema_migrations(version) VALUES (?)`, SchemaVersion+1)
	if err != nil {
		t.Fatal(err)
	}

	db, err := sql.Open(driverName, "file:"+path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	err = EnsureSchema(db)
	if err == nil {
		t.Fatal("expected drift error")
	}
	if !strings.Contains(err.Error(), "newer than supported") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNewRunAssignsID(t *testing.T) {
	a := NewRun("/work/proj", true)
	b := NewRun("/work/proj", true)
	if a.ID == "" || b.ID == "" {
		t.Fatal("expected generated run ids")
	}
	if a.ID == b.ID {
		t.Fatal("expected unique run ids")
	}
	if a.SchemaVersion != SchemaVersion {
		t.Fatalf("expected schema version %d, got %d", SchemaVersion, a.SchemaVersion)
	}
	if !a.DryRun {
		t.Fatal("expected dry_run flag to carry")
	}
}
