package turso

import (
	"database/sql"

	"github.com/emiliopalmerini/abadmin/internal/ports"
)

// Repositories holds all turso repository implementations as port interfaces.
type Repositories struct {
	Organizations ports.OrganizationRepository
	Roles         ports.RoleRepository
	Members       ports.MemberRepository
	Invitations   ports.InvitationRepository
	Tests         ports.ABTestRepository
	Versions      ports.TestVersionRepository
	MetricRows    ports.MetricRowRepository
}

// NewRepositories creates all turso repository implementations from a database connection.
func NewRepositories(db *sql.DB) *Repositories {
	return &Repositories{
		Organizations: NewOrganizationRepository(db),
		Roles:         NewRoleRepository(db),
		Members:       NewMemberRepository(db),
		Invitations:   NewInvitationRepository(db),
		Tests:         NewABTestRepository(db),
		Versions:      NewTestVersionRepository(db),
		MetricRows:    NewMetricRowRepository(db),
	}
}
