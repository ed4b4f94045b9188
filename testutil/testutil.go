package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Tomoya-Sonok/aikinote-sub000/internal/db"
	"github.com/stretchr/testify/require"
)

// SetupTestDB creates a test database and returns it.
func SetupTestDB(t *testing.T) *db.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	database, err := db.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database
}

// SetupPostgresDB connects to the database named by AIKINOTE_TEST_POSTGRES_URL
// and skips the test when it is unset.
func SetupPostgresDB(t *testing.T) *db.DB {
	t.Helper()
	url := os.Getenv("AIKINOTE_TEST_POSTGRES_URL")
	if url == "" {
		t.Skip("AIKINOTE_TEST_POSTGRES_URL not set")
	}
	database, err := db.OpenPostgres(url)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database
}

// Ptr returns a pointer to the value.
func Ptr[T any](v T) *T {
	return &v
}
