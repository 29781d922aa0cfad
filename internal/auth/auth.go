// Package auth verifies sessions issued by the external auth provider and
// carries the signed-in principal through request contexts.
package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/emiliopalmerini/abadmin/internal/domain"
)

// Principal is the signed-in user as asserted by the provider's token.
type Principal struct {
	UserID       string
	Email        string
	IsSuperAdmin bool
}

// Claims is the subset of provider claims we read.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type VerifierConfig struct {
	Secret   string
	Audience string
	Issuer   string
	// SuperAdmin reports whether an email gets unrestricted access.
	SuperAdmin func(email string) bool
}

// Verifier validates HS256 access tokens signed with the provider project secret.
type Verifier struct {
	secret     []byte
	audience   string
	issuer     string
	superAdmin func(string) bool
	now        func() time.Time
}

func NewVerifier(cfg VerifierConfig) *Verifier {
	superAdmin := cfg.SuperAdmin
	if superAdmin == nil {
		superAdmin = func(string) bool { return false }
	}
	return &Verifier{
		secret:     []byte(cfg.Secret),
		audience:   cfg.Audience,
		issuer:     cfg.Issuer,
		superAdmin: superAdmin,
		now:        time.Now,
	}
}

// Verify parses token and returns its principal, or an error wrapping
// domain.ErrUnauthenticated.
func (v *Verifier) Verify(token string) (*Principal, *Claims, error) {
	if token == "" {
		return nil, nil, fmt.Errorf("missing token: %w", domain.ErrUnauthenticated)
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid token: %w: %v", domain.ErrUnauthenticated, err)
	}
	if claims.Subject == "" {
		return nil, nil, fmt.Errorf("token has no subject: %w", domain.ErrUnauthenticated)
	}

	email := strings.ToLower(strings.TrimSpace(claims.Email))
	return &Principal{
		UserID:       claims.Subject,
		Email:        email,
		IsSuperAdmin: v.superAdmin(email),
	}, claims, nil
}

type contextKey struct{}

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

// PrincipalFrom returns the principal attached by the middleware, if any.
func PrincipalFrom(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(contextKey{}).(*Principal)
	return p, ok && p != nil
}

// MustPrincipal is PrincipalFrom for handlers mounted behind Middleware.
func MustPrincipal(ctx context.Context) (*Principal, error) {
	p, ok := PrincipalFrom(ctx)
	if !ok {
		return nil, fmt.Errorf("no principal in context: %w", domain.ErrUnauthenticated)
	}
	return p, nil
}
