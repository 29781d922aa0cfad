package templates

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"

	"github.com/emiliopalmerini/abadmin/internal/domain"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	return buf.String()
}

var acme = &domain.Organization{ID: "org-1", Name: "Acme", Slug: "acme"}

func TestSidebar_GatesByPermission(t *testing.T) {
	tests := []struct {
		name    string
		perms   domain.PermissionSet
		want    []string
		notWant []string
	}{
		{
			name:    "viewer",
			perms:   domain.PermissionSet{ViewTests: true},
			want:    []string{"/orgs/acme/tests", "/orgs/acme/members"},
			notWant: []string{"/orgs/acme/roles", "/orgs/acme/settings"},
		},
		{
			name:  "owner",
			perms: domain.FullPermissions(),
			want:  []string{"/orgs/acme/tests", "/orgs/acme/roles", "/orgs/acme/settings"},
		},
		{
			name:    "no test access",
			perms:   domain.PermissionSet{},
			want:    []string{"/orgs/acme/members"},
			notWant: []string{"/orgs/acme/tests"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := render(t, Sidebar(Nav{Org: acme, Perms: tt.perms, UserEmail: "a@example.com"}))
			for _, s := range tt.want {
				if !strings.Contains(out, "href=\""+s+"\"") {
					t.Errorf("expected link %s", s)
				}
			}
			for _, s := range tt.notWant {
				if strings.Contains(out, "href=\""+s+"\"") {
					t.Errorf("unexpected link %s", s)
				}
			}
		})
	}
}

func TestTestsTable_EscapesNames(t *testing.T) {
	tests := []*domain.ABTestSummary{{
		ID:     "t1",
		Name:   "<script>alert(1)</script>",
		Status: domain.StatusDraft,
	}}
	out := render(t, TestsTable(Nav{Org: acme}, tests))

	if strings.Contains(out, "<script>") {
		t.Fatal("test name was not escaped")
	}
	if !strings.Contains(out, "&lt;script&gt;") {
		t.Errorf("expected escaped name in %s", out)
	}
}

func TestTestDetailPage_Actions(t *testing.T) {
	test := &domain.ABTestSummary{
		ID:            "t1",
		Name:          "Checkout button",
		Status:        domain.StatusDraft,
		PrimaryMetric: "conversion_rate",
		CreatedAt:     time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC),
	}

	t.Run("editor sees start and version form", func(t *testing.T) {
		nav := Nav{Org: acme, Perms: domain.PermissionSet{ViewTests: true, EditTests: true}}
		out := render(t, TestDetailPage(nav, TestDetailData{Test: test}))
		if !strings.Contains(out, `"status": "running"`) {
			t.Error("expected start action")
		}
		if !strings.Contains(out, "/orgs/acme/tests/t1/versions") {
			t.Error("expected version form")
		}
		if strings.Contains(out, "hx-delete=\"/orgs/acme/tests/t1\"") {
			t.Error("delete should need tests.delete")
		}
		if strings.Contains(out, "/orgs/acme/tests/t1/analyze") {
			t.Error("analysis form should need analysis.run")
		}
	})

	t.Run("viewer sees no actions", func(t *testing.T) {
		nav := Nav{Org: acme, Perms: domain.PermissionSet{ViewTests: true}}
		out := render(t, TestDetailPage(nav, TestDetailData{Test: test, AnalysisAvailable: true}))
		for _, s := range []string{"hx-post", "hx-delete"} {
			if strings.Contains(out, s+"=\"/orgs") {
				t.Errorf("viewer page contains %s", s)
			}
		}
	})
}

func TestAnalysisResults(t *testing.T) {
	result := &domain.AnalysisResult{
		Metric: "conversion_rate",
		Results: []domain.VariationResult{
			{Variation: "Control", IsControl: true, Visitors: 1000, Conversions: 100, ConversionRate: 0.1},
			{Variation: "Green", Visitors: 1000, Conversions: 120, ConversionRate: 0.12, Uplift: 0.2,
				Confidence: 0.975, ConfidenceLevel: domain.ConfidenceHigh, UpliftColor: domain.UpliftPositive},
		},
		Unmatched: []string{"variant_z"},
	}
	out := render(t, AnalysisResults(result))

	for _, want := range []string{"uplift-positive", "+20.0%", "97.5%", "variant_z", "baseline"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output", want)
		}
	}
}

func TestNav_OrgPath(t *testing.T) {
	nav := Nav{Org: acme}
	if got := nav.OrgPath("tests", "t1", "status"); got != "/orgs/acme/tests/t1/status" {
		t.Errorf("OrgPath = %q", got)
	}
	if got := (Nav{}).OrgPath("tests"); got != "/" {
		t.Errorf("OrgPath without org = %q", got)
	}
}

func TestNextStatuses(t *testing.T) {
	got := nextStatuses(domain.StatusRunning)
	want := []domain.TestStatus{domain.StatusPaused, domain.StatusCompleted, domain.StatusArchived}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
