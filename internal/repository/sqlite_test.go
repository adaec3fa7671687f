package repository

import (
	"context"
	"path/filepath"
	"testing"
)

func TestSQLiteTaskRepository(t *testing.T) {
	ctx := context.Background()
	repo, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "tasks.db"), quietLogger())
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })

	runRegistryContract(t, repo)
}

func TestSQLiteTaskRepository_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "tasks.db")

	repo, err := OpenSQLite(ctx, path, quietLogger())
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	task := newTask()
	if err := repo.Create(ctx, task); err != nil {
		t.Fatal(err)
	}
	_ = repo.Close()

	repo, err = OpenSQLite(ctx, path, quietLogger())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer repo.Close()
	if _, err := repo.Get(ctx, task.ID); err != nil {
		t.Fatalf("task lost after reopen: %v", err)
	}
}
