package domain

import (
	"regexp"
	"strings"
	"time"
)

// Organization is the tenant boundary for tests, members and roles.
type Organization struct {
	ID        string
	Name      string
	Slug      string
	CreatedAt time.Time
}

var slugInvalid = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a URL-safe slug from an organization name.
func Slugify(name string) string {
	s := slugInvalid.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
	s = strings.Trim(s, "-")
	if len(s) > 48 {
		s = strings.TrimRight(s[:48], "-")
	}
	return s
}
