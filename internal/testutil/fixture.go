package testutil

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// CreateDatabase writes a fresh sqlite file in a temp dir, runs stmts
// against it and returns its path. The file is closed before returning.
func CreateDatabase(t *testing.T, stmts ...string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "data.db")
	sqldb, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer sqldb.Close()

	// Force the file into existence even with no statements.
	_, err = sqldb.Exec("PRAGMA user_version = 1;")
	require.NoError(t, err)

	for _, stmt := range stmts {
		_, err := sqldb.Exec(stmt)
		require.NoError(t, err, "exec %q", stmt)
	}
	return path
}

// CreateSampleDatabase creates a database with a two-column table t(a, b)
// holding (1, 'x') and (2, 'y').
func CreateSampleDatabase(t *testing.T) string {
	t.Helper()
	return CreateDatabase(t,
		`CREATE TABLE t (a INTEGER, b TEXT);`,
		`INSERT INTO t (a, b) VALUES (1, 'x'), (2, 'y');`,
	)
}

// CreateGarbageFile writes a file that is not a sqlite database.
func CreateGarbageFile(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "garbage.db")
	data := []byte("this is definitely not a sqlite database, just some plain text padding it out\n")
	for len(data) < 4096 {
		data = append(data, data...)
	}
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// MissingPath returns a path inside a temp dir that does not exist.
func MissingPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "nope", "data.db")
}
