package repository_test

import (
	"context"
	"errors"
	"testing"

	domain "github.com/mohammadpnp/crm-import/internal/domain/organization"
	"github.com/mohammadpnp/crm-import/internal/infrastructure/repository"
)

func TestOrganizationQueryRepositoryGetByIDIntegration(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	store := repository.NewRecordStore(db)

	tag, err := store.Create(ctx, domain.ResourceTags, domain.CreateParams{Data: domain.Record{"name": uniqueName("VIP")}})
	if err != nil {
		t.Fatalf("create tag failed: %v", err)
	}
	created, err := store.Create(ctx, domain.ResourceOrganizations, domain.CreateParams{Data: domain.Record{
		"name":              uniqueName("Umbrella"),
		"organization_type": "principal",
		"priority":          "B",
		"website":           "https://umbrella.example",
		"tags":              []string{tag["id"].(string)},
	}})
	if err != nil {
		t.Fatalf("create organization failed: %v", err)
	}

	repo := repository.NewOrganizationQueryRepository(db)

	org, err := repo.GetByID(ctx, created["id"].(string))
	if err != nil {
		t.Fatalf("get by id failed: %v", err)
	}
	if org.OrganizationType != domain.TypePrincipal || org.Priority != domain.PriorityB {
		t.Fatalf("unexpected enums: %q %q", org.OrganizationType, org.Priority)
	}
	if org.Website != "https://umbrella.example" {
		t.Fatalf("unexpected website: %s", org.Website)
	}
	if len(org.Tags) != 1 || org.Tags[0].ID != tag["id"] {
		t.Fatalf("unexpected tags: %#v", org.Tags)
	}

	_, err = repo.GetByID(ctx, "0b6c0f52-5d8a-4f87-9a6e-1a2b3c4d5e6f")
	if !errors.Is(err, domain.ErrOrganizationNotFound) {
		t.Fatalf("expected ErrOrganizationNotFound, got %v", err)
	}
}
