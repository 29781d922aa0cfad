package templates

import (
	"context"

	"github.com/a-h/templ"

	"github.com/emiliopalmerini/abadmin/internal/domain"
	"github.com/emiliopalmerini/abadmin/internal/service"
)

func MembersPage(nav Nav, data MembersData) templ.Component {
	manage := nav.Can(domain.PermManageMembers)
	return Layout("Members", nav, component(func(ctx context.Context, h *htmlWriter) {
		h.raw("<header class=\"page-header\"><h1>Members</h1></header>\n")
		h.raw("<section class=\"panel\">\n<table class=\"data-table\">\n<thead><tr><th>Email</th><th>Role</th><th>Joined</th>")
		if manage {
			h.raw("<th></th>")
		}
		h.raw("</tr></thead>\n<tbody>\n")
		for _, m := range data.Members {
			h.printf("<tr><td>%s</td>", m.Email)
			if manage {
				h.printf("<td><select name=\"role_id\" hx-post=\"%s\" hx-trigger=\"change\" hx-swap=\"none\">", nav.OrgPath("members", m.UserID, "role"))
				for _, r := range data.Roles {
					h.printf("<option value=\"%s\"%s>%s</option>", r.ID, selected(r.ID == m.RoleID), r.Name)
				}
				h.raw("</select></td>")
			} else {
				h.printf("<td>%s</td>", m.RoleName)
			}
			h.printf("<td>%s</td>", formatDateTime(m.JoinedAt))
			if manage {
				h.printf("<td><button class=\"danger small\" hx-delete=\"%s\" hx-confirm=\"Remove %s from the organization?\">Remove</button></td>",
					nav.OrgPath("members", m.UserID), m.Email)
			}
			h.raw("</tr>\n")
		}
		h.raw("</tbody>\n</table>\n</section>\n")

		if manage {
			h.raw("<section class=\"panel\">\n<h2>Invite</h2>\n")
			h.printf("<form hx-post=\"%s\" hx-target=\"#invitations\" hx-swap=\"outerHTML\" class=\"inline-form\" hx-on::after-request=\"if(event.detail.successful) this.reset()\">\n",
				nav.OrgPath("invitations"))
			h.raw("<input type=\"email\" name=\"email\" placeholder=\"name@example.com\" maxlength=\"254\" required>\n")
			h.raw("<select name=\"role_id\">\n")
			for _, r := range data.Roles {
				h.printf("<option value=\"%s\"%s>%s</option>\n", r.ID, selected(r.Name == domain.RoleViewer), r.Name)
			}
			h.raw("</select>\n<button type=\"submit\" class=\"primary\">Send invite</button>\n</form>\n")
			h.render(ctx, InvitationsTable(nav, data.Invitations, data.BaseURL))
			h.raw("</section>\n")
		}
	}))
}

// InvitationsTable is also returned on its own after an invite or revoke.
func InvitationsTable(nav Nav, invitations []*domain.Invitation, baseURL string) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw("<div id=\"invitations\">\n")
		if len(invitations) == 0 {
			h.raw("<p class=\"empty\">No pending invitations.</p>\n</div>\n")
			return
		}
		h.raw("<h3>Pending invitations</h3>\n<table class=\"data-table\">\n<thead><tr><th>Email</th><th>Role</th><th>Sent</th><th>Link</th><th></th></tr></thead>\n<tbody>\n")
		for _, inv := range invitations {
			h.printf("<tr><td>%s</td><td>%s</td><td>%s</td>", inv.Email, inv.RoleName, formatDateTime(inv.CreatedAt))
			h.printf("<td><input class=\"copy\" type=\"text\" readonly value=\"%s/invitations/%s\"></td>", baseURL, inv.Token)
			h.printf("<td><button class=\"small\" hx-delete=\"%s\" hx-target=\"#invitations\" hx-swap=\"outerHTML\" hx-confirm=\"Revoke the invitation for %s?\">Revoke</button></td></tr>\n",
				nav.OrgPath("invitations", inv.ID), inv.Email)
		}
		h.raw("</tbody>\n</table>\n</div>\n")
	})
}

// InvitationPage asks the signed-in user to accept an invitation.
func InvitationPage(nav Nav, pending *service.PendingInvitation) templ.Component {
	inv := pending.Invitation
	return Layout("Invitation", nav, component(func(ctx context.Context, h *htmlWriter) {
		h.raw("<section class=\"panel narrow\">\n")
		h.printf("<h1>Join %s</h1>\n", pending.Organization.Name)
		h.printf("<p>You were invited as <strong>%s</strong> with the %s role.</p>\n", inv.Email, inv.RoleName)
		if nav.UserEmail != "" && nav.UserEmail != inv.Email {
			h.printf("<p class=\"warning\">You are signed in as %s. Sign in with the invited address to accept.</p>\n", nav.UserEmail)
		}
		h.printf("<button class=\"primary\" hx-post=\"/invitations/%s/accept\">Accept invitation</button>\n", inv.Token)
		h.raw("</section>\n")
	}))
}
