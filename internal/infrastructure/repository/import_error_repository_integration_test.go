package repository_test

import (
	"context"
	"testing"

	domain "github.com/mohammadpnp/crm-import/internal/domain/organization"
	"github.com/mohammadpnp/crm-import/internal/infrastructure/repository"
)

func TestImportErrorRepositorySaveAndListIntegration(t *testing.T) {
	db := openTestDB(t)
	pool := openTestPool(t)
	ctx := context.Background()

	jobID, err := repository.NewImportJobRepository(db).Enqueue(ctx, domain.ImportJobSpec{SourcePath: "orgs.csv"})
	if err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}

	repo := repository.NewImportErrorRepository(pool)

	first := []domain.ImportError{{Row: 9, Data: map[string]string{"name": "Old"}, Errors: []domain.FieldError{{Field: "general", Message: "boom"}}}}
	if err := repo.SaveErrors(ctx, jobID, first); err != nil {
		t.Fatalf("first save failed: %v", err)
	}

	errs := []domain.ImportError{
		{
			Row:    5,
			Data:   map[string]string{"name": "Globex", "priority": "Z"},
			Errors: []domain.FieldError{{Field: "priority", Message: "must be one of: A, B, C, D"}},
		},
		{
			Row:    3,
			Data:   map[string]string{"name": "Initech"},
			Errors: []domain.FieldError{{Field: "name", Message: "already exists"}},
		},
	}
	if err := repo.SaveErrors(ctx, jobID, errs); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, err := repo.ListErrors(ctx, jobID, 10)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected earlier attempt to be replaced, got %d rows", len(got))
	}
	if got[0].Row != 3 || got[1].Row != 5 {
		t.Fatalf("expected rows ordered by number, got %d and %d", got[0].Row, got[1].Row)
	}
	if got[1].Data["priority"] != "Z" || got[1].Errors[0].Field != "priority" {
		t.Fatalf("unexpected decoded row: %#v", got[1])
	}

	limited, err := repo.ListErrors(ctx, jobID, 1)
	if err != nil {
		t.Fatalf("limited list failed: %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("expected limit to apply, got %d", len(limited))
	}
}
