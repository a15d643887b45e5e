package storage

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"collectrip/models"
)

func testStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRunLifecycle(t *testing.T) {
	store := testStore(t)

	run := &models.ImportRun{
		Selection: "area=1 ct=39 cat2=",
		StartedAt: time.Now(),
		Status:    models.RunStatusRunning,
	}
	id, err := store.CreateRun(run)
	if err != nil {
		t.Fatalf("create run: %v", err)
	}
	if id == 0 {
		t.Fatalf("expected a run id")
	}

	now := time.Now()
	run.ID = id
	run.FinishedAt = &now
	run.Status = models.RunStatusCompleted
	run.Attempted = 12
	run.Created = 10
	run.Skipped = 2
	run.DetailsStored = 7
	if err := store.UpdateRun(run); err != nil {
		t.Fatalf("update run: %v", err)
	}

	runs, err := store.GetRecentRuns(10)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	got := runs[0]
	if got.Status != models.RunStatusCompleted || got.Attempted != 12 || got.DetailsStored != 7 {
		t.Fatalf("unexpected run row: %+v", got)
	}
	if got.FinishedAt == nil {
		t.Fatalf("finished_at not persisted")
	}
}

func TestRunLogs(t *testing.T) {
	store := testStore(t)

	run := &models.ImportRun{Selection: "area=1 ct=12 cat2=", StartedAt: time.Now(), Status: models.RunStatusRunning}
	id, err := store.CreateRun(run)
	if err != nil {
		t.Fatalf("create run: %v", err)
	}

	store.Log(&id, models.LogLevelInfo, "starting import", "area=1 ct=12 cat2=")
	store.Log(&id, models.LogLevelError, "listing fetch failed at page 3", "area=1 ct=12 cat2=")
	store.Log(nil, models.LogLevelInfo, "unscoped message", "badges")

	logs, err := store.GetRunLogs(id, 0)
	if err != nil {
		t.Fatalf("get logs: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("expected 2 run-scoped logs, got %d", len(logs))
	}
	if logs[1].Level != models.LogLevelError {
		t.Fatalf("second log level = %s", logs[1].Level)
	}
}

func TestCommandQueue(t *testing.T) {
	store := testStore(t)

	params, _ := json.Marshal(models.CommandParams{AreaCode: 1, ContentTypeID: 39})
	if err := store.EnqueueCommand(models.CmdImportSelection, params); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := store.EnqueueCommand(models.CmdRunBadges, nil); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	cmds, err := store.GetPendingCommands()
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(cmds) != 2 {
		t.Fatalf("expected 2 pending commands, got %d", len(cmds))
	}

	parsed, err := store.ParseCommandParams(&cmds[0])
	if err != nil {
		t.Fatalf("parse params: %v", err)
	}
	if parsed.AreaCode != 1 || parsed.ContentTypeID != 39 {
		t.Fatalf("params = %+v", parsed)
	}

	// A command without params parses to the zero value.
	empty, err := store.ParseCommandParams(&cmds[1])
	if err != nil {
		t.Fatalf("parse empty params: %v", err)
	}
	if empty.AreaCode != 0 {
		t.Fatalf("empty params = %+v", empty)
	}

	if err := store.MarkCommandProcessed(cmds[0].ID); err != nil {
		t.Fatalf("mark processed: %v", err)
	}
	cmds, err = store.GetPendingCommands()
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(cmds) != 1 {
		t.Fatalf("expected 1 pending command after processing, got %d", len(cmds))
	}
	if cmds[0].Command != models.CmdRunBadges {
		t.Fatalf("remaining command = %s", cmds[0].Command)
	}
}

func TestResetAllData(t *testing.T) {
	store := testStore(t)

	if _, err := store.CreateRun(&models.ImportRun{Selection: "x", StartedAt: time.Now(), Status: models.RunStatusRunning}); err != nil {
		t.Fatalf("create run: %v", err)
	}
	if err := store.EnqueueCommand(models.CmdImportNow, nil); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	if err := store.ResetAllData(); err != nil {
		t.Fatalf("reset: %v", err)
	}

	runs, _ := store.GetRecentRuns(10)
	cmds, _ := store.GetPendingCommands()
	if len(runs) != 0 || len(cmds) != 0 {
		t.Fatalf("reset left %d runs, %d commands", len(runs), len(cmds))
	}
}
