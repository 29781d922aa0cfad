package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/emiliopalmerini/abadmin/internal/domain"
)

var adminPerms = domain.PermissionSet{
	ViewTests:     true,
	EditTests:     true,
	DeleteTests:   true,
	RunAnalysis:   true,
	ManageMembers: true,
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, adminPerms)
	env.token = ""

	rec := env.do(t, http.MethodGet, "/health", nil, false)
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Errorf("health returned %d %q", rec.Code, rec.Body.String())
	}
}

func TestStaticFiles(t *testing.T) {
	env := newTestEnv(t, adminPerms)
	rec := env.do(t, http.MethodGet, "/static/app.css", nil, false)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 for stylesheet, got %d", rec.Code)
	}
}

func TestProtectedRoutes_RequireSession(t *testing.T) {
	env := newTestEnv(t, adminPerms)
	env.token = ""

	rec := env.do(t, http.MethodGet, "/orgs/acme", nil, false)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect to login, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); !strings.HasPrefix(loc, "https://auth.example.com/login") {
		t.Errorf("unexpected redirect %q", loc)
	}

	rec = env.do(t, http.MethodPost, "/orgs/acme/invitations", url.Values{"email": {"bob@example.com"}}, true)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for htmx request, got %d", rec.Code)
	}
}

func TestInviteForm_CallsInviteOnce(t *testing.T) {
	env := newTestEnv(t, adminPerms)

	var (
		calls   int
		created *domain.Invitation
	)
	env.invitations.CreateFunc = func(ctx context.Context, inv *domain.Invitation) error {
		calls++
		created = inv
		return nil
	}
	env.invitations.ListPendingFunc = func(ctx context.Context, oid string) ([]*domain.Invitation, error) {
		if created == nil {
			return nil, nil
		}
		return []*domain.Invitation{created}, nil
	}

	rec := env.do(t, http.MethodPost, "/orgs/acme/invitations", url.Values{"email": {"Bob@Example.com"}}, true)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if calls != 1 {
		t.Fatalf("expected invitation create to be called once, got %d", calls)
	}
	if created.OrganizationID != orgID {
		t.Errorf("invitation organization = %q, want %q", created.OrganizationID, orgID)
	}
	if created.Email != "bob@example.com" {
		t.Errorf("invitation email = %q", created.Email)
	}
	if created.RoleName != domain.RoleViewer {
		t.Errorf("default role = %q, want Viewer", created.RoleName)
	}
	if !strings.Contains(rec.Body.String(), "https://admin.example.com/invitations/"+created.Token) {
		t.Error("expected invitation link in the refreshed table")
	}
	if toast := rec.Header().Get("HX-Trigger"); !strings.Contains(toast, `"level":"success"`) {
		t.Errorf("expected success toast, got %q", toast)
	}
}

func TestInviteForm_Rejections(t *testing.T) {
	tests := []struct {
		name       string
		perms      domain.PermissionSet
		email      string
		wantStatus int
	}{
		{"invalid email", adminPerms, "not-an-email", http.StatusBadRequest},
		{"existing member", adminPerms, "alice@example.com", http.StatusConflict},
		{"missing permission", domain.PermissionSet{ViewTests: true}, "bob@example.com", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, tt.perms)
			calls := 0
			env.invitations.CreateFunc = func(ctx context.Context, inv *domain.Invitation) error {
				calls++
				return nil
			}

			rec := env.do(t, http.MethodPost, "/orgs/acme/invitations", url.Values{"email": {tt.email}}, true)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rec.Code)
			}
			if calls != 0 {
				t.Errorf("invitation create called %d times", calls)
			}
			var ev toastEvent
			if err := json.Unmarshal([]byte(rec.Header().Get("HX-Trigger")), &ev); err != nil {
				t.Fatalf("HX-Trigger is not a toast event: %v", err)
			}
			if ev.ShowToast.Level != toastError || ev.ShowToast.Message == "" {
				t.Errorf("unexpected toast %+v", ev.ShowToast)
			}
		})
	}
}

func TestDashboard(t *testing.T) {
	env := newTestEnv(t, adminPerms)
	env.tests.CountByStatusFunc = func(ctx context.Context, oid string) (map[domain.TestStatus]int64, error) {
		return map[domain.TestStatus]int64{domain.StatusRunning: 2, domain.StatusDraft: 1}, nil
	}
	env.tests.ListByOrganizationFunc = func(ctx context.Context, oid string, filter domain.TestFilter) ([]*domain.ABTestSummary, error) {
		return []*domain.ABTestSummary{{ID: "t1", Name: "Checkout button", Status: domain.StatusRunning}}, nil
	}
	env.tests.CountFunc = func(ctx context.Context, oid string, status *domain.TestStatus) (int64, error) {
		return 1, nil
	}

	rec := env.do(t, http.MethodGet, "/orgs/acme", nil, false)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"Checkout button", "/orgs/acme/tests/t1", `<span class="stat-value">3</span>`} {
		if !strings.Contains(body, want) {
			t.Errorf("dashboard missing %q", want)
		}
	}
}

func TestDashboard_LoadFailure(t *testing.T) {
	env := newTestEnv(t, adminPerms)
	env.tests.CountByStatusFunc = func(ctx context.Context, oid string) (map[domain.TestStatus]int64, error) {
		return nil, errors.New("stream not found")
	}

	rec := env.do(t, http.MethodGet, "/orgs/acme", nil, false)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "stream not found") {
		t.Error("internal error leaked to the page")
	}
}

func TestUnknownOrganization(t *testing.T) {
	env := newTestEnv(t, adminPerms)
	rec := env.do(t, http.MethodGet, "/orgs/globex/tests", nil, false)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestCreateTest(t *testing.T) {
	env := newTestEnv(t, adminPerms)
	var (
		mu      sync.Mutex
		created *domain.ABTestSummary
		version *domain.TestVersion
	)
	env.tests.CreateFunc = func(ctx context.Context, test *domain.ABTestSummary) error {
		mu.Lock()
		defer mu.Unlock()
		created = test
		return nil
	}
	env.versions.CreateFunc = func(ctx context.Context, v *domain.TestVersion) error {
		mu.Lock()
		defer mu.Unlock()
		version = v
		return nil
	}

	form := url.Values{
		"name":           {"Checkout button"},
		"primary_metric": {"Conversion_Rate"},
		"start_date":     {"2026-06-01"},
		"variations":     {"Control\nGreen button\n"},
	}
	rec := env.do(t, http.MethodPost, "/orgs/acme/tests", form, true)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if created == nil {
		t.Fatal("test was not created")
	}
	if got := rec.Header().Get("HX-Redirect"); got != "/orgs/acme/tests/"+created.ID {
		t.Errorf("HX-Redirect = %q", got)
	}
	if created.OrganizationID != orgID || created.PrimaryMetric != "conversion_rate" {
		t.Errorf("unexpected test %+v", created)
	}
	if created.StartDate == nil || !created.StartDate.Equal(time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("start date = %v", created.StartDate)
	}
	if version == nil || len(version.Variations) != 2 || !version.Variations[0].IsControl {
		t.Errorf("unexpected initial version %+v", version)
	}
}

func TestCreateTest_BadDate(t *testing.T) {
	env := newTestEnv(t, adminPerms)
	form := url.Values{"name": {"x"}, "primary_metric": {"m"}, "start_date": {"June 1st"}}
	rec := env.do(t, http.MethodPost, "/orgs/acme/tests", form, true)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestChangeStatus(t *testing.T) {
	tests := []struct {
		name       string
		current    domain.TestStatus
		latest     int
		target     string
		wantStatus int
	}{
		{"start draft with version", domain.StatusDraft, 1, "running", http.StatusOK},
		{"start draft without version", domain.StatusDraft, 0, "running", http.StatusBadRequest},
		{"complete a draft", domain.StatusDraft, 1, "completed", http.StatusConflict},
		{"unknown status", domain.StatusRunning, 1, "exploded", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, adminPerms)
			env.tests.GetByIDFunc = func(ctx context.Context, oid, id string) (*domain.ABTestSummary, error) {
				return &domain.ABTestSummary{ID: id, OrganizationID: oid, Name: "T", Status: tt.current, LatestVersion: tt.latest}, nil
			}

			rec := env.do(t, http.MethodPost, "/orgs/acme/tests/t1/status", url.Values{"status": {tt.target}}, true)

			if rec.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d", tt.wantStatus, rec.Code)
			}
		})
	}
}

func TestDeleteTest_NeedsPermission(t *testing.T) {
	env := newTestEnv(t, domain.PermissionSet{ViewTests: true, EditTests: true})
	deleted := false
	env.tests.DeleteFunc = func(ctx context.Context, oid, id string) error {
		deleted = true
		return nil
	}

	rec := env.do(t, http.MethodDelete, "/orgs/acme/tests/t1", nil, true)

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", rec.Code)
	}
	if deleted {
		t.Error("test was deleted without permission")
	}
}

func TestCreateVersion_EvenWeights(t *testing.T) {
	env := newTestEnv(t, adminPerms)
	env.tests.GetByIDFunc = func(ctx context.Context, oid, id string) (*domain.ABTestSummary, error) {
		return &domain.ABTestSummary{ID: id, OrganizationID: oid, Status: domain.StatusDraft}, nil
	}
	var saved *domain.TestVersion
	env.versions.CreateFunc = func(ctx context.Context, v *domain.TestVersion) error {
		v.VersionNumber = 2
		saved = v
		return nil
	}

	form := url.Values{
		"control":               {"0"},
		"variation_name":        {"Control", "Blue", "Green", ""},
		"variation_description": {"", "", "", ""},
		"variation_weight":      {"", "", "", ""},
		"notes":                 {"three arms"},
	}
	rec := env.do(t, http.MethodPost, "/orgs/acme/tests/t1/versions", form, true)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if saved == nil || len(saved.Variations) != 3 {
		t.Fatalf("unexpected version %+v", saved)
	}
	total := 0
	for _, v := range saved.Variations {
		total += v.TrafficWeight
	}
	if total != 100 {
		t.Errorf("weights sum to %d", total)
	}
	if !saved.Variations[0].IsControl || saved.Variations[1].IsControl {
		t.Error("control flag not taken from the radio button")
	}
}

func TestImportMetrics(t *testing.T) {
	env := newTestEnv(t, adminPerms)
	env.tests.GetByIDFunc = func(ctx context.Context, oid, id string) (*domain.ABTestSummary, error) {
		return &domain.ABTestSummary{ID: id, OrganizationID: oid, Status: domain.StatusRunning}, nil
	}
	var inserted []domain.MetricRow
	env.rows.InsertBatchFunc = func(ctx context.Context, rows []domain.MetricRow) error {
		inserted = rows
		return nil
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "metrics.csv")
	if err != nil {
		t.Fatal(err)
	}
	fw.Write([]byte("variation,date,visitors,conversions\ncontrol,2026-05-01,100,10\nB,2026-05-01,100,12\n"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/orgs/acme/tests/t1/metrics", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("HX-Request", "true")
	req.AddCookie(&http.Cookie{Name: cookieName, Value: env.token})
	rec := httptest.NewRecorder()
	env.server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(inserted) != 2 {
		t.Errorf("expected 2 rows inserted, got %d", len(inserted))
	}
	if !strings.Contains(rec.Body.String(), "Imported 2 rows") {
		t.Errorf("unexpected body %q", rec.Body.String())
	}
}

func TestAnalyze_RendersResults(t *testing.T) {
	env := newTestEnv(t, adminPerms)
	env.tests.GetByIDFunc = func(ctx context.Context, oid, id string) (*domain.ABTestSummary, error) {
		return &domain.ABTestSummary{ID: id, OrganizationID: oid, Status: domain.StatusRunning, PrimaryMetric: "conversion_rate"}, nil
	}
	env.versions.GetLatestFunc = func(ctx context.Context, testID string) (*domain.TestVersion, error) {
		return &domain.TestVersion{VersionNumber: 1, Variations: []domain.Variation{
			{ID: "v1", Name: "Control", IsControl: true},
			{ID: "v2", Name: "Green Button"},
		}}, nil
	}
	env.rows.ListByTestFunc = func(ctx context.Context, testID string, filters domain.AnalysisFilters) ([]domain.MetricRow, error) {
		return []domain.MetricRow{{TestID: testID, Variation: "control", Visitors: 100}}, nil
	}
	var gotReq *domain.AnalysisRequest
	env.analysis.AnalyzeFunc = func(ctx context.Context, req *domain.AnalysisRequest) (*domain.AnalysisResult, error) {
		gotReq = req
		return &domain.AnalysisResult{
			Metric: req.Metric,
			Results: []domain.VariationResult{
				{Variation: "baseline", Visitors: 100},
				{Variation: "B", Visitors: 100, Uplift: 0.1, Confidence: 0.99},
			},
		}, nil
	}

	form := url.Values{"segment": {"mobile"}, "start_date": {"2026-05-01"}}
	rec := env.do(t, http.MethodPost, "/orgs/acme/tests/t1/analyze", form, true)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotReq == nil || gotReq.Metric != "conversion_rate" || gotReq.Filters.Segment != "mobile" {
		t.Fatalf("unexpected analysis request %+v", gotReq)
	}
	if !strings.Contains(rec.Body.String(), "uplift-positive") {
		t.Error("expected significant positive uplift to be colored")
	}
}

func TestHypotheses_Unavailable(t *testing.T) {
	env := newTestEnv(t, adminPerms)
	env.tests.GetByIDFunc = func(ctx context.Context, oid, id string) (*domain.ABTestSummary, error) {
		return &domain.ABTestSummary{ID: id, OrganizationID: oid}, nil
	}
	rec := env.do(t, http.MethodPost, "/orgs/acme/tests/t1/hypotheses", url.Values{"count": {"3"}}, true)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 without a generator, got %d", rec.Code)
	}
}

func TestAuthCallback(t *testing.T) {
	env := newTestEnv(t, adminPerms)
	token := env.token
	env.token = ""

	tests := []struct {
		name       string
		token      string
		redirectTo string
		wantStatus int
		wantLoc    string
		wantCookie bool
	}{
		{"valid token", token, "/orgs/acme", http.StatusSeeOther, "/orgs/acme", true},
		{"open redirect is ignored", token, "//evil.example.com", http.StatusSeeOther, "/", true},
		{"bad token", "garbage", "/", http.StatusUnauthorized, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/auth/callback", url.Values{
				"access_token": {tt.token},
				"redirect_to":  {tt.redirectTo},
			}, false)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rec.Code)
			}
			if tt.wantLoc != "" && rec.Header().Get("Location") != tt.wantLoc {
				t.Errorf("Location = %q, want %q", rec.Header().Get("Location"), tt.wantLoc)
			}
			hasCookie := false
			for _, c := range rec.Result().Cookies() {
				if c.Name == cookieName && c.Value == tt.token {
					hasCookie = true
				}
			}
			if hasCookie != tt.wantCookie {
				t.Errorf("session cookie set = %v, want %v", hasCookie, tt.wantCookie)
			}
		})
	}
}

func TestSignOut(t *testing.T) {
	env := newTestEnv(t, adminPerms)
	rec := env.do(t, http.MethodPost, "/auth/signout", nil, true)

	if rec.Header().Get("HX-Redirect") != "/auth/login" {
		t.Errorf("HX-Redirect = %q", rec.Header().Get("HX-Redirect"))
	}
	cleared := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == cookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("session cookie was not cleared")
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.ErrNotFound, http.StatusNotFound},
		{domain.ErrForbidden, http.StatusForbidden},
		{domain.NewValidationError("name", "is required"), http.StatusBadRequest},
		{errors.Join(errors.New("ctx"), domain.ErrConflict), http.StatusConflict},
		{domain.ErrUnauthenticated, http.StatusUnauthorized},
		{domain.ErrUnavailable, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestSafeRedirect(t *testing.T) {
	tests := map[string]string{
		"":                     "/",
		"/orgs/acme":           "/orgs/acme",
		"https://evil.example": "/",
		"//evil.example":       "/",
		"/\\evil.example":      "/",
	}
	for in, want := range tests {
		if got := safeRedirect(in); got != want {
			t.Errorf("safeRedirect(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRoleForm(t *testing.T) {
	perms := adminPerms
	perms.ManageRoles = true

	t.Run("creates the role", func(t *testing.T) {
		env := newTestEnv(t, perms)
		var created *domain.Role
		env.roles.CreateFunc = func(ctx context.Context, role *domain.Role) error {
			created = role
			return nil
		}

		form := url.Values{"name": {"Analyst"}, "permissions": {string(domain.PermViewTests), string(domain.PermRunAnalysis)}}
		rec := env.do(t, http.MethodPost, "/orgs/acme/roles", form, false)

		if rec.Code != http.StatusSeeOther {
			t.Fatalf("expected 303, got %d: %s", rec.Code, rec.Body.String())
		}
		if created == nil || created.Name != "Analyst" || !created.Permissions.Has(domain.PermRunAnalysis) {
			t.Errorf("unexpected role %+v", created)
		}
	})

	t.Run("malformed body is a bad request", func(t *testing.T) {
		env := newTestEnv(t, perms)
		env.roles.CreateFunc = func(ctx context.Context, role *domain.Role) error {
			t.Error("create must not be called")
			return nil
		}

		req := httptest.NewRequest(http.MethodPost, "/orgs/acme/roles", strings.NewReader("name=%zz&permissions=tests.view"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("HX-Request", "true")
		req.AddCookie(&http.Cookie{Name: cookieName, Value: env.token})
		rec := httptest.NewRecorder()
		env.server.Handler().ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}
