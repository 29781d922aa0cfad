package web

import (
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/emiliopalmerini/abadmin/internal/auth"
	"github.com/emiliopalmerini/abadmin/internal/domain"
	"github.com/emiliopalmerini/abadmin/internal/service"
	"github.com/emiliopalmerini/abadmin/internal/web/templates"
)

func (s *Server) handleMembers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, err := s.openOrg(r, "members")
	if err != nil {
		s.fail(w, r, req.nav, err)
		return
	}

	data := templates.MembersData{BaseURL: s.baseURL}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		data.Members, err = s.services.Members.List(gctx, req.principal, req.orgID())
		return err
	})
	g.Go(func() error {
		var err error
		data.Roles, err = s.services.Roles.List(gctx, req.principal, req.orgID())
		return err
	})
	if req.ws.Can(domain.PermManageMembers) {
		g.Go(func() error {
			var err error
			data.Invitations, err = s.services.Members.ListInvitations(gctx, req.principal, req.orgID())
			return err
		})
	}
	if err := g.Wait(); err != nil {
		s.fail(w, r, req.nav, err)
		return
	}

	s.render(w, r, templates.MembersPage(req.nav, data))
}

func (s *Server) handleInvite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, err := s.openOrg(r, "members")
	if err != nil {
		s.fail(w, r, req.nav, err)
		return
	}

	in := service.InviteInput{
		Email:  r.FormValue("email"),
		RoleID: r.FormValue("role_id"),
	}
	inv, err := s.services.Members.Invite(ctx, req.principal, req.orgID(), in)
	if err != nil {
		s.fail(w, r, req.nav, err)
		return
	}

	s.renderInvitations(w, r, req, "Invitation created for "+inv.Email)
}

func (s *Server) handleRevokeInvitation(w http.ResponseWriter, r *http.Request) {
	req, err := s.openOrg(r, "members")
	if err != nil {
		s.fail(w, r, req.nav, err)
		return
	}
	if err := s.services.Members.RevokeInvitation(r.Context(), req.principal, req.orgID(), r.PathValue("id")); err != nil {
		s.fail(w, r, req.nav, err)
		return
	}
	s.renderInvitations(w, r, req, "Invitation revoked")
}

// renderInvitations answers a mutation with the refreshed invitations table.
func (s *Server) renderInvitations(w http.ResponseWriter, r *http.Request, req *orgRequest, message string) {
	invitations, err := s.services.Members.ListInvitations(r.Context(), req.principal, req.orgID())
	if err != nil {
		s.fail(w, r, req.nav, err)
		return
	}
	setToast(w, toastSuccess, message)
	s.render(w, r, templates.InvitationsTable(req.nav, invitations, s.baseURL))
}

func (s *Server) handleAssignRole(w http.ResponseWriter, r *http.Request) {
	req, err := s.openOrg(r, "members")
	if err != nil {
		s.fail(w, r, req.nav, err)
		return
	}
	if err := s.services.Members.AssignRole(r.Context(), req.principal, req.orgID(), r.PathValue("user"), r.FormValue("role_id")); err != nil {
		s.fail(w, r, req.nav, err)
		return
	}
	setToast(w, toastSuccess, "Role updated")
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleRemoveMember(w http.ResponseWriter, r *http.Request) {
	req, err := s.openOrg(r, "members")
	if err != nil {
		s.fail(w, r, req.nav, err)
		return
	}
	userID := r.PathValue("user")
	if err := s.services.Members.Remove(r.Context(), req.principal, req.orgID(), userID); err != nil {
		s.fail(w, r, req.nav, err)
		return
	}
	if userID == req.principal.UserID {
		redirect(w, r, "/")
		return
	}
	redirect(w, r, req.nav.OrgPath("members"))
}

func (s *Server) handleInvitation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, err := auth.MustPrincipal(ctx)
	if err != nil {
		s.fail(w, r, templates.Nav{}, err)
		return
	}
	pending, err := s.services.Members.GetInvitation(ctx, r.PathValue("token"))
	if err != nil {
		s.fail(w, r, userNav(p), err)
		return
	}
	s.render(w, r, templates.InvitationPage(userNav(p), pending))
}

func (s *Server) handleAcceptInvitation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, err := auth.MustPrincipal(ctx)
	if err != nil {
		s.fail(w, r, templates.Nav{}, err)
		return
	}
	org, err := s.services.Members.AcceptInvitation(ctx, p, r.PathValue("token"))
	if err != nil {
		s.fail(w, r, userNav(p), err)
		return
	}
	redirect(w, r, "/orgs/"+org.Slug)
}

func (s *Server) handleRoles(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, err := s.openOrg(r, "roles")
	if err != nil {
		s.fail(w, r, req.nav, err)
		return
	}

	var (
		roles   []*domain.Role
		members []*domain.Member
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		roles, err = s.services.Roles.List(gctx, req.principal, req.orgID())
		return err
	})
	g.Go(func() error {
		var err error
		members, err = s.services.Members.List(gctx, req.principal, req.orgID())
		return err
	})
	if err := g.Wait(); err != nil {
		s.fail(w, r, req.nav, err)
		return
	}

	counts := make(map[string]int, len(roles))
	for _, m := range members {
		counts[m.RoleID]++
	}
	s.render(w, r, templates.RolesPage(req.nav, templates.RolesData{Roles: roles, Counts: counts}))
}

func roleInputFromForm(r *http.Request) (service.RoleInput, error) {
	if err := r.ParseForm(); err != nil {
		return service.RoleInput{}, domain.NewValidationError("form", "could not read the submitted form")
	}
	in := service.RoleInput{
		Name:        r.PostFormValue("name"),
		Description: r.PostFormValue("description"),
	}
	for _, p := range r.PostForm["permissions"] {
		in.Permissions = append(in.Permissions, domain.Permission(p))
	}
	return in, nil
}

func (s *Server) handleCreateRole(w http.ResponseWriter, r *http.Request) {
	req, err := s.openOrg(r, "roles")
	if err != nil {
		s.fail(w, r, req.nav, err)
		return
	}
	in, err := roleInputFromForm(r)
	if err != nil {
		s.fail(w, r, req.nav, err)
		return
	}
	if _, err := s.services.Roles.Create(r.Context(), req.principal, req.orgID(), in); err != nil {
		s.fail(w, r, req.nav, err)
		return
	}
	redirect(w, r, req.nav.OrgPath("roles"))
}

func (s *Server) handleUpdateRole(w http.ResponseWriter, r *http.Request) {
	req, err := s.openOrg(r, "roles")
	if err != nil {
		s.fail(w, r, req.nav, err)
		return
	}
	in, err := roleInputFromForm(r)
	if err != nil {
		s.fail(w, r, req.nav, err)
		return
	}
	if _, err := s.services.Roles.Update(r.Context(), req.principal, req.orgID(), r.PathValue("id"), in); err != nil {
		s.fail(w, r, req.nav, err)
		return
	}
	redirect(w, r, req.nav.OrgPath("roles"))
}

func (s *Server) handleDeleteRole(w http.ResponseWriter, r *http.Request) {
	req, err := s.openOrg(r, "roles")
	if err != nil {
		s.fail(w, r, req.nav, err)
		return
	}
	if err := s.services.Roles.Delete(r.Context(), req.principal, req.orgID(), r.PathValue("id")); err != nil {
		s.fail(w, r, req.nav, err)
		return
	}
	redirect(w, r, req.nav.OrgPath("roles"))
}
