package templates

import (
	"context"

	"github.com/a-h/templ"

	"github.com/emiliopalmerini/abadmin/internal/domain"
)

func RolesPage(nav Nav, data RolesData) templ.Component {
	return Layout("Roles", nav, component(func(ctx context.Context, h *htmlWriter) {
		h.raw("<header class=\"page-header\"><h1>Roles</h1></header>\n")
		h.raw("<section class=\"panel\">\n<table class=\"data-table\">\n<thead><tr><th>Role</th><th>Permissions</th><th>Members</th><th></th></tr></thead>\n<tbody>\n")
		for _, r := range data.Roles {
			h.printf("<tr><td><strong>%s</strong>", r.Name)
			if r.IsSystem {
				h.raw(" <span class=\"badge\">System</span>")
			}
			if r.Description != "" {
				h.printf("<div class=\"muted\">%s</div>", r.Description)
			}
			h.raw("</td><td><ul class=\"perm-list\">")
			for _, p := range r.Permissions.List() {
				h.printf("<li>%s</li>", p.Label())
			}
			h.printf("</ul></td><td>%d</td><td>", data.Counts[r.ID])
			if !r.IsSystem {
				h.render(ctx, roleEditor(nav, r))
				if data.Counts[r.ID] == 0 {
					h.printf("<button class=\"danger small\" hx-delete=\"%s\" hx-confirm=\"Delete the %s role?\">Delete</button>",
						nav.OrgPath("roles", r.ID), r.Name)
				}
			}
			h.raw("</td></tr>\n")
		}
		h.raw("</tbody>\n</table>\n</section>\n")

		h.raw("<section class=\"panel\">\n<h2>New role</h2>\n")
		h.render(ctx, roleForm(nav.OrgPath("roles"), nil, "Create role"))
		h.raw("</section>\n")
	}))
}

func roleEditor(nav Nav, r *domain.Role) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw("<details class=\"inline-editor\"><summary>Edit</summary>\n")
		h.render(ctx, roleForm(nav.OrgPath("roles", r.ID), r, "Save"))
		h.raw("</details>\n")
	})
}

func roleForm(action string, r *domain.Role, submit string) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		var (
			name, desc string
			perms      domain.PermissionSet
		)
		if r != nil {
			name, desc, perms = r.Name, r.Description, r.Permissions
		}
		h.printf("<form hx-post=\"%s\" class=\"stacked-form\">\n", action)
		h.printf("<input type=\"text\" name=\"name\" value=\"%s\" placeholder=\"Role name\" maxlength=\"50\" required>\n", name)
		h.printf("<input type=\"text\" name=\"description\" value=\"%s\" placeholder=\"Description\" maxlength=\"200\">\n", desc)
		h.raw("<fieldset class=\"perm-grid\">\n")
		for _, p := range domain.AllPermissions {
			h.printf("<label class=\"checkbox\"><input type=\"checkbox\" name=\"permissions\" value=\"%s\"%s> %s</label>\n",
				string(p), checked(perms.Has(p)), p.Label())
		}
		h.printf("</fieldset>\n<button type=\"submit\" class=\"primary\">%s</button>\n</form>\n", submit)
	})
}
