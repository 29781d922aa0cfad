package util

import (
	"database/sql"
	"time"
)

// NullTime converts a *time.Time to an RFC3339 sql.NullString.
func NullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: FormatTime(*t), Valid: true}
}

// NullTimeToPtr parses an RFC3339 sql.NullString. Invalid or unparsable values are nil.
func NullTimeToPtr(ns sql.NullString) *time.Time {
	if !ns.Valid {
		return nil
	}
	t, err := time.Parse(time.RFC3339, ns.String)
	if err != nil {
		return nil
	}
	return &t
}

// FormatTime renders a timestamp the way every table stores it.
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// ParseTime parses a stored timestamp, returning the zero time on failure.
func ParseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

// BoolToInt64 converts a bool to int64 (true=1, false=0).
// SQLite has no native boolean type.
func BoolToInt64(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
