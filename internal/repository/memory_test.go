package repository

import (
	"context"
	"testing"

	"github.com/joseph-ayodele/apl-diff/internal/entity"
)

func TestMemoryTaskRepository(t *testing.T) {
	runRegistryContract(t, NewMemoryTaskRepository(quietLogger()))
}

func TestMemoryTaskRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryTaskRepository(quietLogger())
	task := newTask()
	if err := repo.Create(ctx, task); err != nil {
		t.Fatal(err)
	}
	report := sampleReport()
	if err := repo.SetTerminal(ctx, task.ID, entity.Completed(report)); err != nil {
		t.Fatal(err)
	}

	// mutating the caller's report or a read copy must not leak into the store
	report.Bullets[0].Score = 1
	got, _ := repo.Get(ctx, task.ID)
	got.Result.Bullets[0].Citations["APL25"].Page = 99

	again, _ := repo.Get(ctx, task.ID)
	if again.Result.Bullets[0].Score != 8 || again.Result.Bullets[0].Citations["APL25"].Page != 3 {
		t.Fatalf("stored task was mutated: %+v", again.Result.Bullets[0])
	}
}
