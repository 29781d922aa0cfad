package auth

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/emiliopalmerini/abadmin/internal/domain"
)

// Authenticator moves tokens between requests, cookies and contexts.
type Authenticator struct {
	verifier   *Verifier
	cookieName string
	loginURL   string
	logger     *zap.Logger
}

func NewAuthenticator(verifier *Verifier, cookieName, loginURL string, logger *zap.Logger) *Authenticator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Authenticator{
		verifier:   verifier,
		cookieName: cookieName,
		loginURL:   loginURL,
		logger:     logger,
	}
}

// tokensFromRequest returns the session cookie and the Bearer header
// token, in that order, skipping whichever is absent.
func (a *Authenticator) tokensFromRequest(r *http.Request) []string {
	var tokens []string
	if c, err := r.Cookie(a.cookieName); err == nil && c.Value != "" {
		tokens = append(tokens, c.Value)
	}
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		if t := strings.TrimSpace(h[7:]); t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

// authenticate returns the principal of the first token that verifies. A
// stale cookie does not hide a valid Bearer header.
func (a *Authenticator) authenticate(r *http.Request) (*Principal, error) {
	err := fmt.Errorf("missing token: %w", domain.ErrUnauthenticated)
	for _, token := range a.tokensFromRequest(r) {
		var principal *Principal
		principal, _, err = a.verifier.Verify(token)
		if err == nil {
			return principal, nil
		}
	}
	return nil, err
}

// Identify attaches the principal when the request carries a valid session
// and lets every request through.
func (a *Authenticator) Identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, err := a.authenticate(r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
	})
}

// Middleware rejects requests without a valid session. Page loads are sent
// to the provider login page; HTMX and API calls get 401.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := PrincipalFrom(r.Context()); ok {
			next.ServeHTTP(w, r)
			return
		}
		principal, err := a.authenticate(r)
		if err != nil {
			a.logger.Debug("unauthenticated request",
				zap.String("path", r.URL.Path),
				zap.Error(err),
			)
			a.deny(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
	})
}

func (a *Authenticator) deny(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", a.LoginURL(r.Header.Get("HX-Current-URL")))
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	if r.Method != http.MethodGet || strings.Contains(r.Header.Get("Accept"), "application/json") {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	http.Redirect(w, r, a.LoginURL(r.URL.RequestURI()), http.StatusSeeOther)
}

// LoginURL returns the provider sign-in page, asking it to come back to returnTo.
func (a *Authenticator) LoginURL(returnTo string) string {
	if returnTo == "" {
		return a.loginURL
	}
	u, err := url.Parse(a.loginURL)
	if err != nil {
		return a.loginURL
	}
	q := u.Query()
	q.Set("redirect_to", returnTo)
	u.RawQuery = q.Encode()
	return u.String()
}

// SetSession stores a verified token as an HttpOnly cookie that expires with it.
func (a *Authenticator) SetSession(w http.ResponseWriter, r *http.Request, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     a.cookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   isSecure(r),
		SameSite: http.SameSiteLaxMode,
	})
}

func (a *Authenticator) ClearSession(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     a.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   isSecure(r),
		SameSite: http.SameSiteLaxMode,
	})
}

// Verifier exposes the token verifier for the session handoff handler.
func (a *Authenticator) Verifier() *Verifier {
	return a.verifier
}

func isSecure(r *http.Request) bool {
	return r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https"
}
