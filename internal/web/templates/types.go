package templates

import (
	"strings"

	"github.com/emiliopalmerini/abadmin/internal/domain"
	"github.com/emiliopalmerini/abadmin/internal/service"
)

// Nav carries what the shell needs: who is signed in, which organization
// is open and which sidebar entries to show.
type Nav struct {
	UserEmail string
	Org       *domain.Organization
	Perms     domain.PermissionSet
	Active    string
}

func (n Nav) Can(p domain.Permission) bool {
	return n.Perms.Has(p)
}

// OrgPath builds a path under the open organization.
func (n Nav) OrgPath(parts ...string) string {
	if n.Org == nil {
		return "/"
	}
	p := "/orgs/" + n.Org.Slug
	if len(parts) > 0 {
		p += "/" + strings.Join(parts, "/")
	}
	return p
}

type DashboardData struct {
	Counts      map[domain.TestStatus]int64
	Total       int64
	Recent      []*domain.ABTestSummary
	MemberCount int
	RoleCount   int
}

type TestsData struct {
	Page   *service.TestPage
	Counts map[domain.TestStatus]int64
}

// TestForm holds the values of the create/edit form.
type TestForm struct {
	Test   *domain.ABTestSummary
	Errors map[string]string
}

type TestDetailData struct {
	Test                *domain.ABTestSummary
	Versions            []*domain.TestVersion
	Latest              *domain.TestVersion
	AnalysisAvailable   bool
	HypothesesAvailable bool
}

type VersionData struct {
	Test    *domain.ABTestSummary
	Version *domain.TestVersion
}

type MembersData struct {
	Members     []*domain.Member
	Invitations []*domain.Invitation
	Roles       []*domain.Role
	// BaseURL prefixes invitation links shown to the inviter.
	BaseURL string
}

type RolesData struct {
	Roles  []*domain.Role
	Counts map[string]int
}
