package templates

import (
	"context"

	"github.com/a-h/templ"

	"github.com/emiliopalmerini/abadmin/internal/domain"
)

// OrgPicker lists the organizations the user can open.
func OrgPicker(nav Nav, orgs []*domain.Organization) templ.Component {
	return Layout("Organizations", nav, component(func(ctx context.Context, h *htmlWriter) {
		h.raw("<header class=\"page-header\"><h1>Organizations</h1></header>\n")
		if len(orgs) == 0 {
			h.raw("<p class=\"empty\">You are not a member of any organization yet. Create one or accept an invitation.</p>\n")
		} else {
			h.raw("<ul class=\"card-list\">\n")
			for _, o := range orgs {
				h.printf("<li class=\"card\"><a href=\"/orgs/%s\"><strong>%s</strong><span class=\"muted\">/%s</span></a></li>\n",
					o.Slug, o.Name, o.Slug)
			}
			h.raw("</ul>\n")
		}
		h.raw("<section class=\"panel\">\n<h2>New organization</h2>\n")
		h.raw("<form hx-post=\"/orgs\" class=\"inline-form\">\n")
		h.raw("<input type=\"text\" name=\"name\" placeholder=\"Organization name\" maxlength=\"100\" required>\n")
		h.raw("<button type=\"submit\" class=\"primary\">Create</button>\n</form>\n</section>\n")
	}))
}

// Settings lets owners rename or delete the organization.
func Settings(nav Nav) templ.Component {
	return Layout("Settings", nav, component(func(ctx context.Context, h *htmlWriter) {
		h.raw("<header class=\"page-header\"><h1>Settings</h1></header>\n")
		h.raw("<section class=\"panel\">\n<h2>Organization name</h2>\n")
		h.printf("<form hx-post=\"%s\" class=\"inline-form\">\n", nav.OrgPath("settings"))
		h.printf("<input type=\"text\" name=\"name\" value=\"%s\" maxlength=\"100\" required>\n", nav.Org.Name)
		h.raw("<button type=\"submit\" class=\"primary\">Rename</button>\n</form>\n</section>\n")
		h.raw("<section class=\"panel danger\">\n<h2>Delete organization</h2>\n")
		h.raw("<p>Deleting removes every test, version, member and role in this organization.</p>\n")
		h.printf("<button class=\"danger\" hx-delete=\"%s\" hx-confirm=\"Delete %s and everything in it?\">Delete organization</button>\n",
			nav.OrgPath(), nav.Org.Name)
		h.raw("</section>\n")
	}))
}
