package templates

import (
	"context"
	"net/http"

	"github.com/a-h/templ"
)

// ErrorPage is rendered for failed full-page loads.
func ErrorPage(nav Nav, status int, message string) templ.Component {
	title := http.StatusText(status)
	return Layout(title, nav, component(func(ctx context.Context, h *htmlWriter) {
		h.printf("<section class=\"panel narrow error-page\">\n<h1>%d %s</h1>\n<p>%s</p>\n", status, title, message)
		if nav.Org != nil {
			h.printf("<a class=\"button\" href=\"%s\">Back to %s</a>\n", nav.OrgPath(), nav.Org.Name)
		} else {
			h.raw("<a class=\"button\" href=\"/\">Back to organizations</a>\n")
		}
		h.raw("</section>\n")
	}))
}
