package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/joseph-ayodele/apl-diff/internal/common"
)

func TestOpenRegistry(t *testing.T) {
	ctx := context.Background()

	repo, closeFn, err := OpenRegistry(ctx, common.RegistryConfig{Driver: common.RegistryMemory}, quietLogger())
	if err != nil {
		t.Fatalf("memory: %v", err)
	}
	closeFn()
	if _, ok := repo.(*MemoryTaskRepository); !ok {
		t.Fatalf("expected memory repo, got %T", repo)
	}

	dsn := filepath.Join(t.TempDir(), "r.db")
	repo, closeFn, err = OpenRegistry(ctx, common.RegistryConfig{Driver: common.RegistrySQLite, DSN: dsn}, quietLogger())
	if err != nil {
		t.Fatalf("sqlite: %v", err)
	}
	defer closeFn()
	if _, ok := repo.(*SQLiteTaskRepository); !ok {
		t.Fatalf("expected sqlite repo, got %T", repo)
	}

	if _, _, err := OpenRegistry(ctx, common.RegistryConfig{Driver: "mongo"}, quietLogger()); err == nil {
		t.Fatal("expected unknown driver error")
	}
}
