package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/emiliopalmerini/abadmin/internal/infrastructure/config"
	"github.com/emiliopalmerini/abadmin/internal/infrastructure/database"
	"github.com/emiliopalmerini/abadmin/internal/migrate"
)

// testDB creates a file-backed SQLite database with all migrations applied
// and points newApp at it. Every command opens and closes its own
// connection, so the database must outlive a single handle.
func testDB(t *testing.T) {
	t.Helper()

	url := "file:" + filepath.Join(t.TempDir(), "abadmin.db")
	db, err := database.NewWithOptions(url, "", database.Options{Ping: true})
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	if err := migrate.RunAll(context.Background(), db.DB); err != nil {
		_ = db.Close()
		t.Fatalf("Failed to run migrations: %v", err)
	}
	_ = db.Close()

	prev := newApp
	newApp = func(ctx context.Context) (*AppContext, error) {
		db, err := database.NewWithOptions(url, "", database.Options{})
		if err != nil {
			return nil, err
		}
		cfg := &config.Config{
			LogFormat: "json",
			Database:  config.Database{URL: url},
			Analysis:  config.Analysis{Timeout: time.Second},
		}
		return newAppContext(ctx, cfg, zap.NewNop(), db)
	}
	t.Cleanup(func() { newApp = prev })
}

// openApp returns an AppContext on the test database for setup and assertions.
func openApp(t *testing.T) *AppContext {
	t.Helper()
	app, err := newApp(context.Background())
	if err != nil {
		t.Fatalf("Failed to open app: %v", err)
	}
	t.Cleanup(func() { _ = app.Close() })
	return app
}

// execute runs the root command with args and returns what it printed.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

// resetFlags restores flag variables, which outlive a single execution.
func resetFlags() {
	orgOwnerID, orgOwnerEmail = "", ""
	roleOrg = ""
	testOrg, testStatus, testPage = "", "", 1
	metricsOrg, metricsReplace = "", false
	migrateTo = -1
}
