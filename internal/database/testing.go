package database

import (
	"context"
	"os"
	"testing"
	"time"
)

// TestDSNEnv names the variable holding a disposable database for integration tests
const TestDSNEnv = "CHASE_PREDICTOR_TEST_DSN"

// SetupTestDB connects to the integration database and ensures the schema,
// skipping the test when no database is configured
func SetupTestDB(t *testing.T) *DB {
	t.Helper()

	dsn := os.Getenv(TestDSNEnv)
	if dsn == "" {
		t.Skipf("Integration test - set %s to run", TestDSNEnv)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := Open(ctx, dsn, 2)
	if err != nil {
		t.Fatalf("failed to create test database connection: %v", err)
	}
	if err := db.EnsureSchema(ctx); err != nil {
		db.Close()
		t.Fatalf("failed to create test schema: %v", err)
	}

	t.Cleanup(func() {
		cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cleanupCancel()
		if _, err := db.pool.Exec(cleanupCtx, "TRUNCATE prediction_log"); err != nil {
			t.Logf("warning: failed to truncate prediction log: %v", err)
		}
		db.Close()
	})

	return db
}
