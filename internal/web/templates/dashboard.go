package templates

import (
	"context"

	"github.com/a-h/templ"

	"github.com/emiliopalmerini/abadmin/internal/domain"
)

func Dashboard(nav Nav, data DashboardData) templ.Component {
	return Layout(nav.Org.Name, nav, component(func(ctx context.Context, h *htmlWriter) {
		h.printf("<header class=\"page-header\"><h1>%s</h1>", nav.Org.Name)
		if nav.Can(domain.PermEditTests) {
			h.printf("<a class=\"button primary\" href=\"%s\">New test</a>", nav.OrgPath("tests", "new"))
		}
		h.raw("</header>\n")

		h.raw("<section class=\"stats\">\n")
		h.printf("<div class=\"stat\"><span class=\"stat-value\">%d</span><span class=\"stat-label\">Tests</span></div>\n", data.Total)
		for _, st := range domain.AllStatuses {
			h.printf("<div class=\"stat\"><span class=\"stat-value\">%d</span><span class=\"stat-label\">%s</span></div>\n",
				data.Counts[st], statusLabel(st))
		}
		h.printf("<div class=\"stat\"><span class=\"stat-value\">%d</span><span class=\"stat-label\">Members</span></div>\n", data.MemberCount)
		h.printf("<div class=\"stat\"><span class=\"stat-value\">%d</span><span class=\"stat-label\">Roles</span></div>\n", data.RoleCount)
		h.raw("</section>\n")

		if nav.Can(domain.PermViewTests) {
			h.raw("<section class=\"panel\">\n<h2>Recent tests</h2>\n")
			h.render(ctx, TestsTable(nav, data.Recent))
			h.raw("</section>\n")
		}
	}))
}
