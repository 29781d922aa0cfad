package templates

import (
	"context"
	"fmt"

	"github.com/a-h/templ"

	"github.com/emiliopalmerini/abadmin/internal/domain"
	"github.com/emiliopalmerini/abadmin/internal/util"
)

// TestsTable renders a table of test summaries.
func TestsTable(nav Nav, tests []*domain.ABTestSummary) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		if len(tests) == 0 {
			h.raw("<p class=\"empty\">No tests yet.</p>\n")
			return
		}
		h.raw("<table class=\"data-table\">\n<thead><tr><th>Name</th><th>Status</th><th>Primary metric</th><th>Version</th><th>Start</th><th>End</th><th>Updated</th></tr></thead>\n<tbody>\n")
		for _, t := range tests {
			h.printf("<tr><td><a href=\"%s\">%s</a>", nav.OrgPath("tests", t.ID), t.Name)
			if t.Hypothesis != "" {
				h.printf("<div class=\"muted small\">%s</div>", util.Truncate(t.Hypothesis, 80))
			}
			h.raw("</td>")
			h.printf("<td><span class=\"%s\">%s</span></td>", statusClass(t.Status), statusLabel(t.Status))
			h.printf("<td>%s</td>", t.PrimaryMetric)
			if t.LatestVersion > 0 {
				h.printf("<td>v%d</td>", t.LatestVersion)
			} else {
				h.raw("<td class=\"muted\">-</td>")
			}
			h.printf("<td>%s</td><td>%s</td><td>%s</td></tr>\n",
				formatDate(t.StartDate), formatDate(t.EndDate), formatDateTime(t.UpdatedAt))
		}
		h.raw("</tbody>\n</table>\n")
	})
}

func TestsPage(nav Nav, data TestsData) templ.Component {
	return Layout("A/B tests", nav, component(func(ctx context.Context, h *htmlWriter) {
		page := data.Page
		h.raw("<header class=\"page-header\"><h1>A/B tests</h1>")
		if nav.Can(domain.PermEditTests) {
			h.printf("<a class=\"button primary\" href=\"%s\">New test</a>", nav.OrgPath("tests", "new"))
		}
		h.raw("</header>\n")

		base := nav.OrgPath("tests")
		h.raw("<nav class=\"tabs\">\n")
		var total int64
		for _, n := range data.Counts {
			total += n
		}
		tabClass := func(active bool) string {
			if active {
				return "tab active"
			}
			return "tab"
		}
		h.printf("<a class=\"%s\" href=\"%s\">All <span class=\"count\">%d</span></a>\n", tabClass(page.Status == ""), base, total)
		for _, st := range domain.AllStatuses {
			h.printf("<a class=\"%s\" href=\"%s?status=%s\">%s <span class=\"count\">%d</span></a>\n",
				tabClass(page.Status == string(st)), base, string(st), statusLabel(st), data.Counts[st])
		}
		h.raw("</nav>\n")

		h.render(ctx, TestsTable(nav, page.Tests))

		if page.TotalPages > 1 {
			query := func(p int) string {
				if page.Status != "" {
					return fmt.Sprintf("?status=%s&page=%d", page.Status, p)
				}
				return fmt.Sprintf("?page=%d", p)
			}
			h.raw("<nav class=\"pagination\">\n")
			if page.Page > 1 {
				h.printf("<a href=\"%s%s\">Previous</a>\n", base, query(page.Page-1))
			}
			h.printf("<span>Page %d of %d</span>\n", page.Page, page.TotalPages)
			if page.Page < page.TotalPages {
				h.printf("<a href=\"%s%s\">Next</a>\n", base, query(page.Page+1))
			}
			h.raw("</nav>\n")
		}
	}))
}

// TestFormPage renders the create form, or the edit form when form.Test has an ID.
func TestFormPage(nav Nav, form TestForm) templ.Component {
	t := form.Test
	if t == nil {
		t = &domain.ABTestSummary{}
	}
	editing := t.ID != ""
	title := "New test"
	action := nav.OrgPath("tests")
	if editing {
		title = "Edit " + t.Name
		action = nav.OrgPath("tests", t.ID)
	}

	return Layout(title, nav, component(func(ctx context.Context, h *htmlWriter) {
		h.printf("<header class=\"page-header\"><h1>%s</h1></header>\n", title)
		h.printf("<form class=\"stacked-form panel\" hx-post=\"%s\">\n", action)

		field := func(name, label, input string) {
			h.printf("<label for=\"%s\">%s</label>\n", name, label)
			h.raw(input)
			if msg, ok := form.Errors[name]; ok {
				h.printf("<p class=\"field-error\">%s</p>\n", msg)
			}
		}

		field("name", "Name", fmt.Sprintf("<input id=\"name\" type=\"text\" name=\"name\" value=\"%s\" maxlength=\"120\" required>\n",
			templ.EscapeString(t.Name)))
		field("primary_metric", "Primary metric", fmt.Sprintf("<input id=\"primary_metric\" type=\"text\" name=\"primary_metric\" value=\"%s\" placeholder=\"conversion_rate\" maxlength=\"64\" required>\n",
			templ.EscapeString(t.PrimaryMetric)))
		field("hypothesis", "Hypothesis", fmt.Sprintf("<textarea id=\"hypothesis\" name=\"hypothesis\" rows=\"3\" maxlength=\"2000\">%s</textarea>\n",
			templ.EscapeString(t.Hypothesis)))
		field("description", "Description", fmt.Sprintf("<textarea id=\"description\" name=\"description\" rows=\"5\" maxlength=\"5000\">%s</textarea>\n",
			templ.EscapeString(t.Description)))
		field("start_date", "Start date", fmt.Sprintf("<input id=\"start_date\" type=\"date\" name=\"start_date\" value=\"%s\">\n", dateValue(t.StartDate)))
		field("end_date", "End date", fmt.Sprintf("<input id=\"end_date\" type=\"date\" name=\"end_date\" value=\"%s\">\n", dateValue(t.EndDate)))
		if !editing {
			field("variations", "Variations (one per line, control first)",
				"<textarea id=\"variations\" name=\"variations\" rows=\"4\" placeholder=\"Control&#10;Variant B\"></textarea>\n")
		}

		h.raw("<div class=\"form-actions\">\n")
		if editing {
			h.printf("<a class=\"button\" href=\"%s\">Cancel</a>\n", nav.OrgPath("tests", t.ID))
			h.raw("<button type=\"submit\" class=\"primary\">Save</button>\n")
		} else {
			h.printf("<a class=\"button\" href=\"%s\">Cancel</a>\n", nav.OrgPath("tests"))
			h.raw("<button type=\"submit\" class=\"primary\">Create test</button>\n")
		}
		h.raw("</div>\n</form>\n")
	}))
}

func TestDetailPage(nav Nav, data TestDetailData) templ.Component {
	t := data.Test
	return Layout(t.Name, nav, component(func(ctx context.Context, h *htmlWriter) {
		h.printf("<header class=\"page-header\"><h1>%s <span class=\"%s\">%s</span></h1>\n<div class=\"actions\">\n",
			t.Name, statusClass(t.Status), statusLabel(t.Status))
		if nav.Can(domain.PermEditTests) {
			for _, to := range nextStatuses(t.Status) {
				h.printf("<button hx-post=\"%s\" hx-vals='{\"status\": \"%s\"}' hx-confirm=\"%s this test?\">%s</button>\n",
					nav.OrgPath("tests", t.ID, "status"), string(to), statusAction(to), statusAction(to))
			}
			if t.Status != domain.StatusArchived {
				h.printf("<a class=\"button\" href=\"%s\">Edit</a>\n", nav.OrgPath("tests", t.ID, "edit"))
			}
		}
		if nav.Can(domain.PermDeleteTests) {
			h.printf("<button class=\"danger\" hx-delete=\"%s\" hx-confirm=\"Delete %s? This cannot be undone.\">Delete</button>\n",
				nav.OrgPath("tests", t.ID), t.Name)
		}
		h.raw("</div>\n</header>\n")

		h.raw("<section class=\"panel\">\n<dl class=\"details\">\n")
		h.printf("<dt>Primary metric</dt><dd>%s</dd>\n", t.PrimaryMetric)
		h.printf("<dt>Start</dt><dd>%s</dd>\n<dt>End</dt><dd>%s</dd>\n", formatDate(t.StartDate), formatDate(t.EndDate))
		h.printf("<dt>Created</dt><dd>%s</dd>\n", formatDateTime(t.CreatedAt))
		if t.Hypothesis != "" {
			h.printf("<dt>Hypothesis</dt><dd>%s</dd>\n", t.Hypothesis)
		}
		if t.Description != "" {
			h.printf("<dt>Description</dt><dd class=\"prose\">%s</dd>\n", t.Description)
		}
		h.raw("</dl>\n</section>\n")

		h.raw("<section class=\"panel\">\n")
		if data.Latest != nil {
			h.printf("<h2>Variations <span class=\"muted\">v%d</span></h2>\n", data.Latest.VersionNumber)
			h.render(ctx, VariationsTable(data.Latest))
		} else {
			h.raw("<h2>Variations</h2>\n<p class=\"empty\">No version yet. Add one before starting the test.</p>\n")
		}
		if len(data.Versions) > 1 {
			h.raw("<h3>History</h3>\n<ul class=\"versions\">\n")
			for _, v := range data.Versions {
				h.printf("<li><a href=\"%s\">v%d</a> <span class=\"muted\">%s</span> %s</li>\n",
					nav.OrgPath("tests", t.ID, "versions", fmt.Sprint(v.VersionNumber)),
					v.VersionNumber, formatDateTime(v.CreatedAt), v.Notes)
			}
			h.raw("</ul>\n")
		}
		acceptsVersions := t.Status != domain.StatusCompleted && t.Status != domain.StatusArchived
		if nav.Can(domain.PermEditTests) && acceptsVersions {
			h.render(ctx, VersionForm(nav, t, data.Latest))
		}
		h.raw("</section>\n")

		if nav.Can(domain.PermEditTests) {
			h.raw("<section class=\"panel\">\n<h2>Metrics</h2>\n")
			h.printf("<form hx-post=\"%s\" hx-encoding=\"multipart/form-data\" hx-target=\"#import-result\" class=\"inline-form\">\n",
				nav.OrgPath("tests", t.ID, "metrics"))
			h.raw("<input type=\"file\" name=\"file\" accept=\".csv,text/csv\" required>\n")
			h.raw("<label class=\"checkbox\"><input type=\"checkbox\" name=\"replace\" value=\"true\"> Replace existing rows</label>\n")
			h.raw("<button type=\"submit\">Upload CSV</button>\n</form>\n")
			h.raw("<p class=\"muted\">Columns: variation, date, visitors, conversions, revenue, segment.</p>\n")
			h.raw("<div id=\"import-result\"></div>\n</section>\n")
		}

		if nav.Can(domain.PermRunAnalysis) && data.AnalysisAvailable {
			h.raw("<section class=\"panel\">\n<h2>Analysis</h2>\n")
			h.printf("<form hx-post=\"%s\" hx-target=\"#analysis\" hx-indicator=\"#analysis-spinner\" class=\"inline-form\">\n",
				nav.OrgPath("tests", t.ID, "analyze"))
			h.printf("<input type=\"text\" name=\"metric\" value=\"%s\" placeholder=\"metric\">\n", t.PrimaryMetric)
			h.printf("<input type=\"date\" name=\"start_date\" value=\"%s\">\n", dateValue(t.StartDate))
			h.printf("<input type=\"date\" name=\"end_date\" value=\"%s\">\n", dateValue(t.EndDate))
			h.raw("<input type=\"text\" name=\"segment\" placeholder=\"segment (optional)\">\n")
			h.raw("<button type=\"submit\" class=\"primary\">Run analysis</button>\n")
			h.raw("<span id=\"analysis-spinner\" class=\"htmx-indicator\">Running…</span>\n</form>\n")
			h.raw("<div id=\"analysis\"></div>\n</section>\n")
		}

		if nav.Can(domain.PermEditTests) && data.HypothesesAvailable {
			h.raw("<section class=\"panel\">\n<h2>Hypothesis ideas</h2>\n")
			h.printf("<form hx-post=\"%s\" hx-target=\"#hypotheses\" class=\"inline-form\">\n", nav.OrgPath("tests", t.ID, "hypotheses"))
			h.raw("<input type=\"number\" name=\"count\" value=\"3\" min=\"1\" max=\"10\">\n")
			h.raw("<button type=\"submit\">Suggest</button>\n</form>\n")
			h.raw("<div id=\"hypotheses\"></div>\n</section>\n")
		}
	}))
}

func VariationsTable(v *domain.TestVersion) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw("<table class=\"data-table\">\n<thead><tr><th>Name</th><th>Description</th><th>Traffic</th><th></th></tr></thead>\n<tbody>\n")
		for _, vr := range v.Variations {
			h.printf("<tr><td>%s</td><td>%s</td><td>%d%%</td>", vr.Name, vr.Description, vr.TrafficWeight)
			if vr.IsControl {
				h.raw("<td><span class=\"badge\">Control</span></td>")
			} else {
				h.raw("<td></td>")
			}
			h.raw("</tr>\n")
		}
		h.raw("</tbody>\n</table>\n")
	})
}

const versionFormRows = 4

// VersionForm starts from the latest variations so small edits stay small.
func VersionForm(nav Nav, t *domain.ABTestSummary, latest *domain.TestVersion) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		var existing []domain.Variation
		if latest != nil {
			existing = latest.Variations
		}
		rows := versionFormRows
		if len(existing)+1 > rows {
			rows = len(existing) + 1
		}

		h.raw("<details class=\"new-version\">\n<summary>New version</summary>\n")
		h.printf("<form hx-post=\"%s\" class=\"stacked-form\">\n", nav.OrgPath("tests", t.ID, "versions"))
		h.raw("<table class=\"data-table\">\n<thead><tr><th>Control</th><th>Name</th><th>Description</th><th>Traffic %</th></tr></thead>\n<tbody>\n")
		for i := 0; i < rows; i++ {
			var vr domain.Variation
			if i < len(existing) {
				vr = existing[i]
			}
			isControl := vr.IsControl || (latest == nil && i == 0)
			h.printf("<tr><td><input type=\"radio\" name=\"control\" value=\"%d\"%s></td>", i, checked(isControl))
			h.printf("<td><input type=\"text\" name=\"variation_name\" value=\"%s\" maxlength=\"80\"></td>", vr.Name)
			h.printf("<td><input type=\"text\" name=\"variation_description\" value=\"%s\" maxlength=\"500\"></td>", vr.Description)
			weight := ""
			if vr.Name != "" {
				weight = fmt.Sprint(vr.TrafficWeight)
			}
			h.printf("<td><input type=\"number\" name=\"variation_weight\" value=\"%s\" min=\"0\" max=\"100\"></td></tr>\n", weight)
		}
		h.raw("</tbody>\n</table>\n")
		h.raw("<p class=\"muted\">Leave weights empty to split traffic evenly. Empty rows are ignored.</p>\n")
		h.raw("<label for=\"notes\">Notes</label>\n<input id=\"notes\" type=\"text\" name=\"notes\" maxlength=\"500\">\n")
		h.raw("<div class=\"form-actions\"><button type=\"submit\" class=\"primary\">Save version</button></div>\n")
		h.raw("</form>\n</details>\n")
	})
}

func VersionPage(nav Nav, data VersionData) templ.Component {
	t, v := data.Test, data.Version
	title := fmt.Sprintf("%s v%d", t.Name, v.VersionNumber)
	return Layout(title, nav, component(func(ctx context.Context, h *htmlWriter) {
		h.printf("<header class=\"page-header\"><h1><a href=\"%s\">%s</a> <span class=\"muted\">v%d</span></h1></header>\n",
			nav.OrgPath("tests", t.ID), t.Name, v.VersionNumber)
		h.raw("<section class=\"panel\">\n<dl class=\"details\">\n")
		h.printf("<dt>Created</dt><dd>%s</dd>\n", formatDateTime(v.CreatedAt))
		if v.Notes != "" {
			h.printf("<dt>Notes</dt><dd>%s</dd>\n", v.Notes)
		}
		h.raw("</dl>\n")
		h.render(ctx, VariationsTable(v))
		h.raw("</section>\n")
	}))
}
