package turso_test

import (
	"context"
	"errors"
	"testing"

	"github.com/emiliopalmerini/abadmin/internal/adapters/turso"
	"github.com/emiliopalmerini/abadmin/internal/domain"
)

func TestOrganizationRepository_CreateWithOwner(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repos, roleIDs := seedOrg(t, db, "acme")

	org, err := repos.Organizations.GetByID(ctx, "acme")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if org == nil || org.Slug != "org-acme" || !org.CreatedAt.Equal(fixedNow) {
		t.Fatalf("unexpected organization: %+v", org)
	}

	roles, err := repos.Roles.ListByOrganization(ctx, "acme")
	if err != nil {
		t.Fatalf("ListByOrganization failed: %v", err)
	}
	if len(roles) != 4 {
		t.Errorf("expected 4 seeded roles, got %d", len(roles))
	}

	owner, err := repos.Members.Get(ctx, "acme", "owner-acme")
	if err != nil {
		t.Fatalf("Get member failed: %v", err)
	}
	if owner == nil || owner.RoleID != roleIDs[domain.RoleOwner] || owner.RoleName != domain.RoleOwner {
		t.Errorf("unexpected owner: %+v", owner)
	}

	orgs, err := repos.Organizations.ListForUser(ctx, "owner-acme")
	if err != nil {
		t.Fatalf("ListForUser failed: %v", err)
	}
	if len(orgs) != 1 || orgs[0].ID != "acme" {
		t.Errorf("unexpected orgs for user: %+v", orgs)
	}
}

func TestOrganizationRepository_CreateWithOwnerRollsBack(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := turso.NewOrganizationRepository(db)

	org := &domain.Organization{ID: "broken", Name: "Broken", Slug: "broken", CreatedAt: fixedNow}
	owner := &domain.Member{OrganizationID: "broken", UserID: "u1", Email: "u1@test", RoleID: "missing-role", JoinedAt: fixedNow}

	if err := repo.CreateWithOwner(ctx, org, nil, owner); err == nil {
		t.Fatal("expected foreign key failure for unknown role")
	}

	got, err := repo.GetByID(ctx, "broken")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got != nil {
		t.Error("organization insert should have been rolled back")
	}
}

func TestOrganizationRepository_SlugConflict(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := turso.NewOrganizationRepository(db)

	if err := repo.Create(ctx, &domain.Organization{ID: "a", Name: "A", Slug: "same", CreatedAt: fixedNow}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	err := repo.Create(ctx, &domain.Organization{ID: "b", Name: "B", Slug: "same", CreatedAt: fixedNow})
	if !errors.Is(err, domain.ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
}

func TestOrganizationRepository_UpdateDelete(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repos, _ := seedOrg(t, db, "acme")

	org, _ := repos.Organizations.GetByID(ctx, "acme")
	org.Name = "Acme Renamed"
	if err := repos.Organizations.Update(ctx, org); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	bySlug, err := repos.Organizations.GetBySlug(ctx, org.Slug)
	if err != nil || bySlug == nil || bySlug.Name != "Acme Renamed" {
		t.Fatalf("GetBySlug after update = %+v, %v", bySlug, err)
	}

	if err := repos.Organizations.Delete(ctx, "acme"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	members, err := repos.Members.ListByOrganization(ctx, "acme")
	if err != nil {
		t.Fatalf("ListByOrganization failed: %v", err)
	}
	if len(members) != 0 {
		t.Errorf("members should cascade on organization delete, got %d", len(members))
	}

	if err := repos.Organizations.Delete(ctx, "acme"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound deleting twice, got %v", err)
	}
}
