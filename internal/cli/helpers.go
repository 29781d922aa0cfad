package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/emiliopalmerini/abadmin/internal/auth"
	"github.com/emiliopalmerini/abadmin/internal/service"
)

// operatorID is the user id recorded for changes made from the command line.
const operatorID = "cli-operator"

// operator is the principal every CLI command acts as. Shell access to the
// database already implies full control, so it is a super-admin.
func operator() *auth.Principal {
	return &auth.Principal{UserID: operatorID, Email: "operator@localhost", IsSuperAdmin: true}
}

// openOrg resolves an organization slug for the operator.
func openOrg(ctx context.Context, svc *service.Services, slug string) (*service.Workspace, error) {
	if slug == "" {
		return nil, fmt.Errorf("--org is required")
	}
	return svc.Organizations.Open(ctx, operator(), slug)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
