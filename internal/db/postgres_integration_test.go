//go:build integration

package db

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func getTestDB(t *testing.T) *PostgresStore {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	store, err := NewPostgresStore(context.Background(), dsn)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	// Clean up test data before each test
	_, err = store.pool.Exec(context.Background(), "DELETE FROM candidates")
	require.NoError(t, err)
	return store
}

func TestIntegration_PostgresStore(t *testing.T) {
	store := getTestDB(t)
	defer func() { _ = store.Close() }()

	runStoreContract(t, store)
}
