// Package dbtest provides an in-memory SQLite repository for tests.
package dbtest

import (
	"testing"

	"github.com/Alexistodj124/kiarasoftwareback/internal/kiara/db"
	"github.com/stretchr/testify/require"
)

// NewRepository opens a fresh, migrated in-memory database that is closed
// when the test ends.
func NewRepository(t testing.TB) *db.Repository {
	t.Helper()
	repo, err := db.NewRepository(&db.Config{Driver: db.DriverSQLite, DSN: "file::memory:"})
	require.NoError(t, err, "failed to open test database")
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}
