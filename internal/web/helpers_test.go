package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/emiliopalmerini/abadmin/internal/auth"
	"github.com/emiliopalmerini/abadmin/internal/domain"
	"github.com/emiliopalmerini/abadmin/internal/ports"
	"github.com/emiliopalmerini/abadmin/internal/service"
)

const (
	testSecret = "web-test-secret"
	cookieName = "abadmin_session"
	orgID      = "org-1"
	orgSlug    = "acme"
	aliceID    = "user-alice"
	roleID     = "role-alice"
)

// testEnv wires a Server to mock repositories. Alice belongs to acme with
// a role whose permissions each test chooses.
type testEnv struct {
	server      *Server
	orgs        *ports.MockOrganizationRepository
	roles       *ports.MockRoleRepository
	members     *ports.MockMemberRepository
	invitations *ports.MockInvitationRepository
	tests       *ports.MockABTestRepository
	versions    *ports.MockTestVersionRepository
	rows        *ports.MockMetricRowRepository
	analysis    *ports.MockAnalysisClient
	token       string
}

func newTestEnv(t *testing.T, perms domain.PermissionSet) *testEnv {
	t.Helper()

	org := &domain.Organization{ID: orgID, Name: "Acme", Slug: orgSlug}
	role := &domain.Role{ID: roleID, OrganizationID: orgID, Name: "Custom", Permissions: perms}
	alice := &domain.Member{OrganizationID: orgID, UserID: aliceID, Email: "alice@example.com", RoleID: roleID, RoleName: "Custom"}

	env := &testEnv{
		orgs: &ports.MockOrganizationRepository{
			GetBySlugFunc: func(ctx context.Context, slug string) (*domain.Organization, error) {
				if slug == orgSlug {
					return org, nil
				}
				return nil, nil
			},
			GetByIDFunc: func(ctx context.Context, id string) (*domain.Organization, error) {
				if id == orgID {
					return org, nil
				}
				return nil, nil
			},
			ListForUserFunc: func(ctx context.Context, userID string) ([]*domain.Organization, error) {
				return []*domain.Organization{org}, nil
			},
		},
		roles: &ports.MockRoleRepository{
			GetByIDFunc: func(ctx context.Context, oid, id string) (*domain.Role, error) {
				if oid == orgID && id == roleID {
					return role, nil
				}
				return nil, nil
			},
			GetByNameFunc: func(ctx context.Context, oid, name string) (*domain.Role, error) {
				if name == domain.RoleViewer {
					return &domain.Role{ID: "role-viewer", OrganizationID: oid, Name: domain.RoleViewer, IsSystem: true}, nil
				}
				return nil, nil
			},
			ListByOrganizationFunc: func(ctx context.Context, oid string) ([]*domain.Role, error) {
				return []*domain.Role{role}, nil
			},
		},
		members: &ports.MockMemberRepository{
			GetFunc: func(ctx context.Context, oid, userID string) (*domain.Member, error) {
				if oid == orgID && userID == aliceID {
					return alice, nil
				}
				return nil, nil
			},
			ListByOrganizationFunc: func(ctx context.Context, oid string) ([]*domain.Member, error) {
				return []*domain.Member{alice}, nil
			},
		},
		invitations: &ports.MockInvitationRepository{},
		tests:       &ports.MockABTestRepository{},
		versions:    &ports.MockTestVersionRepository{},
		rows:        &ports.MockMetricRowRepository{},
		analysis:    &ports.MockAnalysisClient{},
	}

	services := service.New(service.Config{
		Organizations:  env.orgs,
		Roles:          env.roles,
		Members:        env.members,
		Invitations:    env.invitations,
		Tests:          env.tests,
		Versions:       env.versions,
		MetricRows:     env.rows,
		AnalysisClient: env.analysis,
		Metrics:        &ports.MockMetricsRecorder{},
	})

	verifier := auth.NewVerifier(auth.VerifierConfig{Secret: testSecret, Audience: "authenticated"})
	authn := auth.NewAuthenticator(verifier, cookieName, "https://auth.example.com/login", nil)

	env.server = NewServer(Options{
		BaseURL:       "https://admin.example.com",
		Services:      services,
		Authenticator: authn,
		Metrics:       &ports.MockMetricsRecorder{},
	})
	env.token = signTestToken(t, aliceID, "alice@example.com")
	return env
}

func signTestToken(t *testing.T, subject, email string) string {
	t.Helper()
	claims := auth.Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Audience:  jwt.ClaimStrings{"authenticated"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

// do sends an authenticated request. A non-nil form is sent urlencoded.
func (e *testEnv) do(t *testing.T, method, target string, form url.Values, htmx bool) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	if e.token != "" {
		req.AddCookie(&http.Cookie{Name: cookieName, Value: e.token})
	}
	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)
	return rec
}
