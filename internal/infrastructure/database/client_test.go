package database

import (
	"context"
	"errors"
	"testing"
)

func TestConnString(t *testing.T) {
	tests := []struct {
		url, token, want string
	}{
		{"libsql://db.turso.io", "tok", "libsql://db.turso.io?authToken=tok"},
		{"libsql://db.turso.io?tls=1", "tok", "libsql://db.turso.io?tls=1&authToken=tok"},
		{"file:local.db", "tok", "file:local.db"},
		{"libsql://db.turso.io", "", "libsql://db.turso.io"},
	}
	for _, tt := range tests {
		if got := ConnString(tt.url, tt.token); got != tt.want {
			t.Errorf("ConnString(%q, %q) = %q, want %q", tt.url, tt.token, got, tt.want)
		}
	}
}

func TestWithRetry(t *testing.T) {
	ctx := context.Background()

	t.Run("retries stream errors", func(t *testing.T) {
		calls := 0
		got, err := WithRetry(ctx, 2, func() (int, error) {
			calls++
			if calls < 3 {
				return 0, errors.New("hrana: stream not found")
			}
			return 42, nil
		})
		if err != nil || got != 42 {
			t.Fatalf("got %d, %v", got, err)
		}
		if calls != 3 {
			t.Errorf("expected 3 calls, got %d", calls)
		}
	})

	t.Run("does not retry other errors", func(t *testing.T) {
		calls := 0
		_, err := WithRetry(ctx, 5, func() (int, error) {
			calls++
			return 0, errors.New("syntax error")
		})
		if err == nil || calls != 1 {
			t.Errorf("expected single failing call, got %d calls, err %v", calls, err)
		}
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		calls := 0
		_, err := WithRetry(ctx, 1, func() (string, error) {
			calls++
			return "", errors.New("stream not found")
		})
		if !IsStreamError(err) || calls != 2 {
			t.Errorf("expected 2 calls ending in stream error, got %d calls, err %v", calls, err)
		}
	})
}
