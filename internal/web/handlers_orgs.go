package web

import (
	"context"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/emiliopalmerini/abadmin/internal/auth"
	"github.com/emiliopalmerini/abadmin/internal/domain"
	"github.com/emiliopalmerini/abadmin/internal/service"
	"github.com/emiliopalmerini/abadmin/internal/web/templates"
)

const recentTests = 5

func (s *Server) handleOrgPicker(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, err := auth.MustPrincipal(ctx)
	if err != nil {
		s.fail(w, r, templates.Nav{}, err)
		return
	}
	orgs, err := s.services.Organizations.ListForUser(ctx, p)
	if err != nil {
		s.fail(w, r, userNav(p), err)
		return
	}
	s.render(w, r, templates.OrgPicker(userNav(p), orgs))
}

func (s *Server) handleCreateOrg(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, err := auth.MustPrincipal(ctx)
	if err != nil {
		s.fail(w, r, templates.Nav{}, err)
		return
	}
	org, err := s.services.Organizations.Create(ctx, p, service.OrganizationInput{Name: r.FormValue("name")})
	if err != nil {
		s.fail(w, r, userNav(p), err)
		return
	}
	redirect(w, r, "/orgs/"+org.Slug)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	req, err := s.openOrg(r, "dashboard")
	if err != nil {
		s.fail(w, r, req.nav, err)
		return
	}
	data, err := s.fetchDashboardData(r.Context(), req)
	if err != nil {
		s.fail(w, r, req.nav, err)
		return
	}
	s.render(w, r, templates.Dashboard(req.nav, data))
}

// fetchDashboardData loads the dashboard panels concurrently. Panels the
// caller may not see are left empty.
func (s *Server) fetchDashboardData(ctx context.Context, req *orgRequest) (templates.DashboardData, error) {
	var (
		data    templates.DashboardData
		page    *service.TestPage
		members []*domain.Member
		roles   []*domain.Role
	)
	p, orgID := req.principal, req.orgID()
	canView := req.ws.Can(domain.PermViewTests)

	g, gctx := errgroup.WithContext(ctx)

	if canView {
		g.Go(func() error {
			counts, err := s.services.Tests.StatusCounts(gctx, p, orgID)
			data.Counts = counts
			return err
		})
		g.Go(func() error {
			var err error
			page, err = s.services.Tests.List(gctx, p, orgID, "", 1)
			return err
		})
	}
	g.Go(func() error {
		var err error
		members, err = s.services.Members.List(gctx, p, orgID)
		return err
	})
	g.Go(func() error {
		var err error
		roles, err = s.services.Roles.List(gctx, p, orgID)
		return err
	})

	if err := g.Wait(); err != nil {
		return data, err
	}

	for _, n := range data.Counts {
		data.Total += n
	}
	if page != nil {
		data.Recent = page.Tests
		if len(data.Recent) > recentTests {
			data.Recent = data.Recent[:recentTests]
		}
	}
	data.MemberCount = len(members)
	data.RoleCount = len(roles)
	return data, nil
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	req, err := s.openOrg(r, "settings")
	if err != nil {
		s.fail(w, r, req.nav, err)
		return
	}
	if !req.ws.Can(domain.PermManageOrg) {
		s.fail(w, r, req.nav, domain.ErrForbidden)
		return
	}
	s.render(w, r, templates.Settings(req.nav))
}

func (s *Server) handleRenameOrg(w http.ResponseWriter, r *http.Request) {
	req, err := s.openOrg(r, "settings")
	if err != nil {
		s.fail(w, r, req.nav, err)
		return
	}
	org, err := s.services.Organizations.Rename(r.Context(), req.principal, req.orgID(), service.OrganizationInput{Name: r.FormValue("name")})
	if err != nil {
		s.fail(w, r, req.nav, err)
		return
	}
	redirect(w, r, "/orgs/"+org.Slug+"/settings")
}

func (s *Server) handleDeleteOrg(w http.ResponseWriter, r *http.Request) {
	req, err := s.openOrg(r, "settings")
	if err != nil {
		s.fail(w, r, req.nav, err)
		return
	}
	if err := s.services.Organizations.Delete(r.Context(), req.principal, req.orgID()); err != nil {
		s.fail(w, r, req.nav, err)
		return
	}
	redirect(w, r, "/")
}
