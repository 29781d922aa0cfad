package templates

import (
	"context"

	"github.com/a-h/templ"

	"github.com/emiliopalmerini/abadmin/internal/domain"
	"github.com/emiliopalmerini/abadmin/internal/service"
)

// AnalysisResults is swapped into the test page after a run.
func AnalysisResults(result *domain.AnalysisResult) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.printf("<p class=\"muted\">Metric <strong>%s</strong>, generated %s</p>\n", result.Metric, formatDateTime(result.GeneratedAt))
		if len(result.Results) == 0 {
			h.raw("<p class=\"empty\">The analysis service returned no results.</p>\n")
			return
		}
		h.raw("<table class=\"data-table\">\n<thead><tr><th>Variation</th><th>Visitors</th><th>Conversions</th><th>Rate</th><th>Uplift</th><th>Confidence</th><th>p-value</th></tr></thead>\n<tbody>\n")
		for _, r := range result.Results {
			h.printf("<tr><td>%s", r.Variation)
			if r.IsControl {
				h.raw(" <span class=\"badge\">Control</span>")
			}
			h.raw("</td>")
			h.printf("<td>%s</td><td>%s</td><td>%s</td>", formatInt(r.Visitors), formatInt(r.Conversions), formatRate(r.ConversionRate))
			if r.IsControl {
				h.raw("<td class=\"muted\">baseline</td>")
			} else {
				h.printf("<td class=\"%s\">%s</td>", upliftClass(r.UpliftColor), formatUplift(r.Uplift))
			}
			h.printf("<td><span class=\"confidence confidence-%s\">%s</span> <span class=\"muted\">%s</span></td>",
				string(r.ConfidenceLevel), r.ConfidenceLevel.Label(), formatConfidence(r.Confidence))
			h.printf("<td>%.4f</td></tr>\n", r.PValue)
		}
		h.raw("</tbody>\n</table>\n")
		if len(result.Unmatched) > 0 {
			h.raw("<p class=\"warning\">Not matched to a defined variation: ")
			for i, name := range result.Unmatched {
				if i > 0 {
					h.raw(", ")
				}
				h.text(name)
			}
			h.raw("</p>\n")
		}
	})
}

func ImportSummary(res *service.ImportResult) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		if res.Replaced {
			h.printf("<p class=\"success\">Imported %d rows, replacing earlier data.</p>\n", res.Imported)
			return
		}
		h.printf("<p class=\"success\">Imported %d rows.</p>\n", res.Imported)
	})
}

func Hypotheses(items []string) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		if len(items) == 0 {
			h.raw("<p class=\"empty\">No suggestions came back. Try again.</p>\n")
			return
		}
		h.raw("<ol class=\"hypotheses\">\n")
		for _, item := range items {
			h.printf("<li>%s</li>\n", item)
		}
		h.raw("</ol>\n")
	})
}
