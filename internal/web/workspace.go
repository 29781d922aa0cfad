package web

import (
	"net/http"
	"strings"
	"time"

	"github.com/emiliopalmerini/abadmin/internal/auth"
	"github.com/emiliopalmerini/abadmin/internal/domain"
	"github.com/emiliopalmerini/abadmin/internal/service"
	"github.com/emiliopalmerini/abadmin/internal/web/templates"
)

// orgRequest is the resolved context of a request under /orgs/{org}.
type orgRequest struct {
	principal *auth.Principal
	ws        *service.Workspace
	nav       templates.Nav
}

func (o *orgRequest) orgID() string {
	return o.ws.Org.ID
}

func userNav(p *auth.Principal) templates.Nav {
	if p == nil {
		return templates.Nav{}
	}
	return templates.Nav{UserEmail: p.Email}
}

// openOrg resolves the {org} slug and the caller's permissions in it.
// The returned request is never nil so its nav can render error pages.
func (s *Server) openOrg(r *http.Request, active string) (*orgRequest, error) {
	p, err := auth.MustPrincipal(r.Context())
	if err != nil {
		return &orgRequest{}, err
	}
	req := &orgRequest{principal: p, nav: userNav(p)}
	ws, err := s.services.Organizations.Open(r.Context(), p, r.PathValue("org"))
	if err != nil {
		return req, err
	}
	req.ws = ws
	req.nav.Org = ws.Org
	req.nav.Perms = ws.Access.Permissions
	req.nav.Active = active
	return req, nil
}

// parseFormDate reads an optional YYYY-MM-DD form value.
func parseFormDate(r *http.Request, field string) (*time.Time, error) {
	v := strings.TrimSpace(r.FormValue(field))
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return nil, domain.NewValidationError(field, "must be a date (YYYY-MM-DD)")
	}
	return &t, nil
}

// splitLines returns the non-blank lines of a textarea value.
func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// safeRedirect only allows local absolute paths.
func safeRedirect(target string) string {
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return "/"
	}
	return target
}
