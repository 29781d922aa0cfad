package templates

import (
	"context"

	"github.com/a-h/templ"

	"github.com/emiliopalmerini/abadmin/internal/domain"
)

type navItem struct {
	key   string
	label string
	path  string
	perm  domain.Permission
}

func navItems(n Nav) []navItem {
	return []navItem{
		{"dashboard", "Dashboard", n.OrgPath(), ""},
		{"tests", "A/B tests", n.OrgPath("tests"), domain.PermViewTests},
		{"members", "Members", n.OrgPath("members"), ""},
		{"roles", "Roles", n.OrgPath("roles"), domain.PermManageRoles},
		{"settings", "Settings", n.OrgPath("settings"), domain.PermManageOrg},
	}
}

// Layout renders the page shell: sidebar, toast container and body.
func Layout(title string, nav Nav, body templ.Component) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
		h.raw("<meta charset=\"utf-8\">\n<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n")
		h.printf("<title>%s · abadmin</title>\n", title)
		h.raw("<link rel=\"stylesheet\" href=\"/static/app.css\">\n")
		h.raw("<script src=\"https://unpkg.com/htmx.org@2.0.4\" defer></script>\n")
		h.raw("<script src=\"/static/app.js\" defer></script>\n")
		h.raw("</head>\n<body hx-headers='{\"Accept\": \"text/html\"}'>\n<div class=\"shell\">\n")
		h.render(ctx, Sidebar(nav))
		h.raw("<main class=\"content\">\n")
		h.render(ctx, body)
		h.raw("</main>\n</div>\n<div id=\"toasts\" class=\"toasts\" aria-live=\"polite\"></div>\n</body>\n</html>\n")
	})
}

// Sidebar shows navigation for the open organization; entries the user
// lacks permission for are left out.
func Sidebar(nav Nav) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw("<nav class=\"sidebar\">\n<a class=\"brand\" href=\"/\">abadmin</a>\n")
		if nav.Org != nil {
			h.printf("<div class=\"org-name\">%s</div>\n<ul>\n", nav.Org.Name)
			for _, item := range navItems(nav) {
				if item.perm != "" && !nav.Can(item.perm) {
					continue
				}
				if item.key == nav.Active {
					h.printf("<li><a href=\"%s\" class=\"active\">%s</a></li>\n", item.path, item.label)
					continue
				}
				h.printf("<li><a href=\"%s\">%s</a></li>\n", item.path, item.label)
			}
			h.raw("</ul>\n")
		}
		h.raw("<div class=\"sidebar-footer\">\n")
		if nav.UserEmail != "" {
			h.printf("<div class=\"user\">%s</div>\n", nav.UserEmail)
			h.raw("<button class=\"link\" hx-post=\"/auth/signout\">Sign out</button>\n")
		}
		h.raw("<a href=\"/\">Switch organization</a>\n</div>\n</nav>\n")
	})
}
