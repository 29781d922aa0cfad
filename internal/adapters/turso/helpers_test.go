package turso_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/tursodatabase/go-libsql"

	"github.com/emiliopalmerini/abadmin/internal/adapters/turso"
	"github.com/emiliopalmerini/abadmin/internal/domain"
	"github.com/emiliopalmerini/abadmin/internal/migrate"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()

	// One connection per handle keeps the in-memory database private to the test.
	db, err := sql.Open("libsql", "file::memory:")
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		t.Fatalf("Failed to enable foreign keys: %v", err)
	}

	ctx := context.Background()
	if err := migrate.RunAll(ctx, db); err != nil {
		_ = db.Close()
		t.Fatalf("Failed to run migrations: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })
	return db
}

var fixedNow = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

// seedOrg creates an organization with the default roles and an owner.
// It returns the repositories and the role ids by name.
func seedOrg(t *testing.T, db *sql.DB, orgID string) (*turso.Repositories, map[string]string) {
	t.Helper()
	repos := turso.NewRepositories(db)

	org := &domain.Organization{ID: orgID, Name: "Org " + orgID, Slug: "org-" + orgID, CreatedAt: fixedNow}
	roleIDs := make(map[string]string)
	var roles []*domain.Role
	for _, r := range domain.DefaultRoles() {
		role := r
		role.ID = orgID + "-" + r.Name
		role.OrganizationID = orgID
		role.CreatedAt = fixedNow
		roles = append(roles, &role)
		roleIDs[r.Name] = role.ID
	}
	owner := &domain.Member{
		OrganizationID: orgID,
		UserID:         "owner-" + orgID,
		Email:          "owner@" + orgID + ".test",
		RoleID:         roleIDs[domain.RoleOwner],
		JoinedAt:       fixedNow,
	}

	if err := repos.Organizations.CreateWithOwner(context.Background(), org, roles, owner); err != nil {
		t.Fatalf("failed to seed organization: %v", err)
	}
	return repos, roleIDs
}

func seedTest(t *testing.T, repos *turso.Repositories, orgID, id, name string) *domain.ABTestSummary {
	t.Helper()
	test := &domain.ABTestSummary{
		ID:             id,
		OrganizationID: orgID,
		Name:           name,
		Status:         domain.StatusDraft,
		PrimaryMetric:  "conversion_rate",
		CreatedBy:      "owner-" + orgID,
		CreatedAt:      fixedNow,
		UpdatedAt:      fixedNow,
	}
	if err := repos.Tests.Create(context.Background(), test); err != nil {
		t.Fatalf("failed to seed test: %v", err)
	}
	return test
}
