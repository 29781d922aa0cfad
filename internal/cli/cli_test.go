package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/emiliopalmerini/abadmin/internal/adapters/otel"
	"github.com/emiliopalmerini/abadmin/internal/domain"
	"github.com/emiliopalmerini/abadmin/internal/service"
)

func createOrg(t *testing.T) {
	t.Helper()
	out, err := execute(t, "org", "create", "Acme", "--owner-id", "user-1", "--owner-email", "ada@acme.io")
	if err != nil {
		t.Fatalf("org create failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "slug acme") {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestOrgCreateAndList(t *testing.T) {
	testDB(t)
	createOrg(t)

	out, err := execute(t, "org", "list")
	if err != nil {
		t.Fatalf("org list failed: %v", err)
	}
	if !strings.Contains(out, "acme") || !strings.Contains(out, "Acme") {
		t.Errorf("org list output missing organization:\n%s", out)
	}

	app := openApp(t)
	org, err := app.Repos.Organizations.GetBySlug(context.Background(), "acme")
	if err != nil || org == nil {
		t.Fatalf("organization not stored: %v", err)
	}
	owner, err := app.Repos.Members.Get(context.Background(), org.ID, "user-1")
	if err != nil || owner == nil {
		t.Fatalf("owner not stored: %v", err)
	}
	if owner.RoleName != domain.RoleOwner {
		t.Errorf("owner role = %q, want %q", owner.RoleName, domain.RoleOwner)
	}
}

func TestOrgList_Empty(t *testing.T) {
	testDB(t)

	out, err := execute(t, "org", "list")
	if err != nil {
		t.Fatalf("org list failed: %v", err)
	}
	if !strings.Contains(out, "No organizations found") {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestRoleList(t *testing.T) {
	testDB(t)
	createOrg(t)

	out, err := execute(t, "role", "list", "--org", "acme")
	if err != nil {
		t.Fatalf("role list failed: %v", err)
	}
	for _, name := range []string{domain.RoleOwner, domain.RoleAdmin, domain.RoleEditor, domain.RoleViewer} {
		if !strings.Contains(out, name) {
			t.Errorf("role list missing %s:\n%s", name, out)
		}
	}
}

func TestRoleAssign(t *testing.T) {
	testDB(t)
	createOrg(t)

	ctx := context.Background()
	app := openApp(t)
	org, err := app.Repos.Organizations.GetBySlug(ctx, "acme")
	if err != nil {
		t.Fatalf("GetBySlug failed: %v", err)
	}
	roles, err := app.Repos.Roles.ListByOrganization(ctx, org.ID)
	if err != nil {
		t.Fatalf("ListByOrganization failed: %v", err)
	}
	var viewerID string
	for _, r := range roles {
		if r.Name == domain.RoleViewer {
			viewerID = r.ID
		}
	}
	if err := app.Repos.Members.Add(ctx, &domain.Member{
		OrganizationID: org.ID,
		UserID:         "user-2",
		Email:          "bob@acme.io",
		RoleID:         viewerID,
		JoinedAt:       time.Now().UTC(),
	}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	tests := []struct {
		name     string
		args     []string
		wantErr  string
		wantRole string
	}{
		{
			name:     "by name",
			args:     []string{"role", "assign", "user-2", "admin", "--org", "acme"},
			wantRole: domain.RoleAdmin,
		},
		{
			name:    "unknown role",
			args:    []string{"role", "assign", "user-2", "superuser", "--org", "acme"},
			wantErr: "not found",
		},
		{
			name:    "last owner",
			args:    []string{"role", "assign", "user-1", "viewer", "--org", "acme"},
			wantErr: "failed to assign role",
		},
		{
			name:    "missing org",
			args:    []string{"role", "assign", "user-2", "viewer"},
			wantErr: "--org is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			m, err := app.Repos.Members.Get(ctx, org.ID, "user-2")
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if m.RoleName != tt.wantRole {
				t.Errorf("role = %q, want %q", m.RoleName, tt.wantRole)
			}
		})
	}

	owner, err := app.Repos.Members.Get(ctx, org.ID, "user-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if owner.RoleName != domain.RoleOwner {
		t.Errorf("last owner was demoted to %q", owner.RoleName)
	}
}

// seedTest creates a draft test in acme and returns its id.
func seedTest(t *testing.T, name string) string {
	t.Helper()
	ctx := context.Background()
	app := openApp(t)
	ws, err := openOrg(ctx, app.Services, "acme")
	if err != nil {
		t.Fatalf("openOrg failed: %v", err)
	}
	test, err := app.Services.Tests.Create(ctx, operator(), ws.Org.ID, service.TestInput{
		Name:          name,
		PrimaryMetric: "conversion_rate",
		Variations:    []string{"control", "treatment"},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	return test.ID
}

func TestTestList(t *testing.T) {
	testDB(t)
	createOrg(t)
	seedTest(t, "Checkout button")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "all", args: []string{"test", "list", "--org", "acme"}, want: "Checkout button"},
		{name: "draft", args: []string{"test", "list", "--org", "acme", "--status", "draft"}, want: "Checkout button"},
		{name: "running", args: []string{"test", "list", "--org", "acme", "--status", "running"}, want: "No tests found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.args...)
			if err != nil {
				t.Fatalf("test list failed: %v", err)
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("output missing %q:\n%s", tt.want, out)
			}
		})
	}

	if _, err := execute(t, "test", "list", "--org", "acme", "--status", "bogus"); err == nil {
		t.Error("expected error for unknown status")
	}
}

func TestMetricsImport(t *testing.T) {
	testDB(t)
	createOrg(t)
	testID := seedTest(t, "Pricing page")

	path := filepath.Join(t.TempDir(), "rows.csv")
	csv := "variation,date,visitors,conversions,revenue\n" +
		"control,2026-05-01,1000,50,1200.50\n" +
		"treatment,2026-05-01,1000,65,1500\n"
	if err := os.WriteFile(path, []byte(csv), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	out, err := execute(t, "metrics", "import", testID, path, "--org", "acme")
	if err != nil {
		t.Fatalf("metrics import failed: %v", err)
	}
	if !strings.Contains(out, "Imported 2 rows") {
		t.Errorf("unexpected output: %s", out)
	}

	out, err = execute(t, "metrics", "import", testID, path, "--org", "acme", "--replace")
	if err != nil {
		t.Fatalf("metrics import --replace failed: %v", err)
	}
	if !strings.Contains(out, "Replaced previous rows") {
		t.Errorf("unexpected output: %s", out)
	}

	app := openApp(t)
	n, err := app.Repos.MetricRows.CountByTest(context.Background(), testID)
	if err != nil {
		t.Fatalf("CountByTest failed: %v", err)
	}
	if n != 2 {
		t.Errorf("stored rows = %d, want 2", n)
	}
}

func TestMetricsImport_Errors(t *testing.T) {
	testDB(t)
	createOrg(t)
	testID := seedTest(t, "Pricing page")

	bad := filepath.Join(t.TempDir(), "bad.csv")
	if err := os.WriteFile(bad, []byte("variation,visitors\ncontrol,10\n"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	tests := []struct {
		name   string
		args   []string
		target error
	}{
		{name: "missing columns", args: []string{"metrics", "import", testID, bad, "--org", "acme"}, target: domain.ErrInvalidInput},
		{name: "unknown test", args: []string{"metrics", "import", "nope", bad, "--org", "acme"}, target: domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			if !errors.Is(err, tt.target) {
				t.Errorf("expected %v, got %v", tt.target, err)
			}
		})
	}

	if _, err := execute(t, "metrics", "import", testID, filepath.Join(t.TempDir(), "missing.csv"), "--org", "acme"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestMigrateStatus(t *testing.T) {
	testDB(t)

	out, err := execute(t, "migrate", "status")
	if err != nil {
		t.Fatalf("migrate status failed: %v", err)
	}
	if !strings.Contains(out, "No pending migrations") {
		t.Errorf("unexpected output: %s", out)
	}

	out, err = execute(t, "migrate")
	if err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	if !strings.Contains(out, "No migrations to run") {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestMigrate_RejectsUnknownDirection(t *testing.T) {
	testDB(t)

	if _, err := execute(t, "migrate", "sideways"); err == nil {
		t.Error("expected error for unknown direction")
	}
}

func TestAppContext_OptionalIntegrations(t *testing.T) {
	testDB(t)
	app := openApp(t)

	if app.Services.Analysis.Available() {
		t.Error("analysis should be unavailable without ABADMIN_ANALYSIS_URL")
	}
	if app.Services.Hypotheses.Available() {
		t.Error("hypotheses should be unavailable without ABADMIN_GENAI_API_KEY")
	}
	if _, ok := app.Metrics.(*otel.NoOpRecorder); !ok {
		t.Errorf("Metrics = %T, want *otel.NoOpRecorder", app.Metrics)
	}
}

func TestAppContextClose_NilDB(t *testing.T) {
	a := &AppContext{}
	if err := a.Close(); err != nil {
		t.Errorf("Close() on empty context should not error, got: %v", err)
	}
}
