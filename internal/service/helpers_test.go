package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/emiliopalmerini/abadmin/internal/auth"
	"github.com/emiliopalmerini/abadmin/internal/domain"
	"github.com/emiliopalmerini/abadmin/internal/ports"
)

const testOrg = "org-1"

var testNow = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

var alice = &auth.Principal{UserID: "user-alice", Email: "alice@example.com"}

type fixture struct {
	orgs        *ports.MockOrganizationRepository
	roles       *ports.MockRoleRepository
	members     *ports.MockMemberRepository
	invitations *ports.MockInvitationRepository
	tests       *ports.MockABTestRepository
	versions    *ports.MockTestVersionRepository
	rows        *ports.MockMetricRowRepository
	client      *ports.MockAnalysisClient
	generator   *ports.MockHypothesisGenerator
	metrics     *ports.MockMetricsRecorder

	operations []string
	svc        *Services
}

// newFixture wires mocks where alice is a member of testOrg holding a role
// with the given permissions.
func newFixture(t *testing.T, roleName string, perms domain.PermissionSet) *fixture {
	t.Helper()
	f := &fixture{
		orgs:        &ports.MockOrganizationRepository{},
		roles:       &ports.MockRoleRepository{},
		members:     &ports.MockMemberRepository{},
		invitations: &ports.MockInvitationRepository{},
		tests:       &ports.MockABTestRepository{},
		versions:    &ports.MockTestVersionRepository{},
		rows:        &ports.MockMetricRowRepository{},
		client:      &ports.MockAnalysisClient{},
		generator:   &ports.MockHypothesisGenerator{},
	}
	f.metrics = &ports.MockMetricsRecorder{
		RecordOperationFunc: func(ctx context.Context, operation string, err error) {
			f.operations = append(f.operations, operation)
		},
	}

	aliceRole := &domain.Role{ID: "role-alice", OrganizationID: testOrg, Name: roleName, Permissions: perms}
	f.members.GetFunc = func(ctx context.Context, orgID, userID string) (*domain.Member, error) {
		if orgID == testOrg && userID == alice.UserID {
			return &domain.Member{
				OrganizationID: testOrg,
				UserID:         alice.UserID,
				Email:          alice.Email,
				RoleID:         aliceRole.ID,
				RoleName:       aliceRole.Name,
			}, nil
		}
		return nil, nil
	}
	f.roles.GetByIDFunc = func(ctx context.Context, orgID, id string) (*domain.Role, error) {
		if id == aliceRole.ID {
			return aliceRole, nil
		}
		return nil, nil
	}

	f.svc = New(Config{
		Organizations:  f.orgs,
		Roles:          f.roles,
		Members:        f.members,
		Invitations:    f.invitations,
		Tests:          f.tests,
		Versions:       f.versions,
		MetricRows:     f.rows,
		AnalysisClient: f.client,
		Generator:      f.generator,
		Metrics:        f.metrics,
	})

	// All services share one common value.
	seq := 0
	common := f.svc.Tests.common
	common.now = func() time.Time { return testNow }
	common.newID = func() string {
		seq++
		return fmt.Sprintf("id-%d", seq)
	}
	return f
}

func ownerFixture(t *testing.T) *fixture {
	return newFixture(t, domain.RoleOwner, domain.FullPermissions())
}

func viewerFixture(t *testing.T) *fixture {
	return newFixture(t, domain.RoleViewer, domain.PermissionSetFrom([]domain.Permission{domain.PermViewTests}))
}
