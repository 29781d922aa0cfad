package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"go.uber.org/zap"

	"github.com/emiliopalmerini/abadmin/internal/auth"
	"github.com/emiliopalmerini/abadmin/internal/domain"
	"github.com/emiliopalmerini/abadmin/internal/web/middleware"
	"github.com/emiliopalmerini/abadmin/internal/web/templates"
)

const (
	toastSuccess = "success"
	toastError   = "error"
)

type toastEvent struct {
	ShowToast toastMessage `json:"showToast"`
}

type toastMessage struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// setToast asks htmx to raise a showToast event on the client.
func setToast(w http.ResponseWriter, level, message string) {
	b, err := json.Marshal(toastEvent{ShowToast: toastMessage{Level: level, Message: message}})
	if err != nil {
		return
	}
	w.Header().Set("HX-Trigger", string(b))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// userMessage is what the toast or error page shows. Internal errors are
// never echoed back.
func userMessage(err error, status int) string {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		msgs := make([]string, 0, len(verr.Fields))
		for _, f := range verr.Fields {
			msgs = append(msgs, f.Message)
		}
		return strings.Join(msgs, "; ")
	}
	switch status {
	case http.StatusUnauthorized:
		return "Your session has expired. Please sign in again."
	case http.StatusForbidden:
		return "You do not have permission to do that."
	case http.StatusNotFound:
		return "Not found."
	case http.StatusServiceUnavailable:
		return "This feature is not configured."
	case http.StatusConflict:
		return conflictMessage(err)
	default:
		return "Something went wrong. Please try again."
	}
}

func conflictMessage(err error) string {
	msg := strings.TrimSuffix(err.Error(), ": "+domain.ErrConflict.Error())
	if msg == "" || msg == domain.ErrConflict.Error() {
		return "That conflicts with existing data."
	}
	return strings.ToUpper(msg[:1]) + msg[1:] + "."
}

// fail logs err and answers with a toast for htmx requests or an error page
// otherwise.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, nav templates.Nav, err error) {
	status := statusFor(err)
	fields := []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.Error(err),
	}
	if p, ok := auth.PrincipalFrom(r.Context()); ok {
		fields = append(fields, zap.String("user_id", p.UserID))
	}
	if status >= 500 {
		s.logger.Error("request failed", fields...)
	} else {
		s.logger.Info("request rejected", fields...)
	}

	msg := userMessage(err, status)
	if middleware.IsHTMX(r) {
		setToast(w, toastError, msg)
		if status == http.StatusUnauthorized {
			w.Header().Set("HX-Redirect", s.authn.LoginURL(r.Header.Get("HX-Current-URL")))
		}
		w.WriteHeader(status)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, msg, status)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	s.render(w, r, templates.ErrorPage(nav, status, msg))
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, c templ.Component) {
	if err := c.Render(r.Context(), w); err != nil {
		s.logger.Error("failed to render", zap.String("path", r.URL.Path), zap.Error(err))
	}
}

// redirect sends htmx clients to url with HX-Redirect and everyone else with a 303.
func redirect(w http.ResponseWriter, r *http.Request, url string) {
	if middleware.IsHTMX(r) {
		w.Header().Set("HX-Redirect", url)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}
