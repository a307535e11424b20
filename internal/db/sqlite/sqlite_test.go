package sqlite

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bgunnarsson/dbpeek/internal/db"
	"github.com/bgunnarsson/dbpeek/internal/testutil"
)

func openFixture(t *testing.T, stmts ...string) *SqliteDB {
	t.Helper()
	sdb, err := Open(context.Background(), testutil.CreateDatabase(t, stmts...))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sdb.Close() })
	return sdb
}

func TestDSN(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{"data/data.db", "file:data/data.db?mode=ro&_pragma=query_only(1)"},
		{"odd?name#1%.db", "file:odd%3fname%231%25.db?mode=ro&_pragma=query_only(1)"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, DSN(tt.path))
		})
	}
}

func TestListTables(t *testing.T) {
	ctx := context.Background()

	t.Run("empty database", func(t *testing.T) {
		sdb := openFixture(t)
		tables, err := sdb.ListTables(ctx)
		require.NoError(t, err)
		assert.Empty(t, tables)
	})

	t.Run("catalog order without internal tables", func(t *testing.T) {
		sdb := openFixture(t,
			`CREATE TABLE zeta (id INTEGER PRIMARY KEY AUTOINCREMENT);`,
			`CREATE TABLE alpha (id INTEGER);`,
			`CREATE VIEW alpha_view AS SELECT * FROM alpha;`,
			`CREATE INDEX alpha_id ON alpha (id);`,
			`INSERT INTO zeta DEFAULT VALUES;`,
		)
		tables, err := sdb.ListTables(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"zeta", "alpha"}, tables)
	})
}

func TestDescribeTable(t *testing.T) {
	ctx := context.Background()
	sdb := openFixture(t, `CREATE TABLE "odd ""name""" (id INTEGER NOT NULL, label TEXT DEFAULT 'x', payload BLOB, score);`)

	cols, err := sdb.DescribeTable(ctx, `odd "name"`)
	require.NoError(t, err)
	assert.Equal(t, []db.Column{
		{Name: "id", Type: "INTEGER"},
		{Name: "label", Type: "TEXT"},
		{Name: "payload", Type: "BLOB"},
		{Name: "score", Type: ""},
	}, cols)

	cols, err = sdb.DescribeTable(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, cols)
}

func TestSelectAll(t *testing.T) {
	ctx := context.Background()
	sdb := openFixture(t,
		`CREATE TABLE t (i INTEGER, r REAL, s TEXT, b BLOB, n TEXT);`,
		`INSERT INTO t VALUES (1, 1.5, 'x', x'00ff', NULL);`,
		`INSERT INTO t VALUES (2, 2.0, 'y', x'', NULL);`,
	)

	rows, err := sdb.SelectAll(ctx, "t")
	require.NoError(t, err)
	assert.Equal(t, []string{"i", "r", "s", "b", "n"}, db.ColumnNames(rows.Columns))
	require.Len(t, rows.Data, 2)
	assert.Equal(t, db.Row{int64(1), 1.5, "x", []byte{0x00, 0xff}, nil}, rows.Data[0])
	assert.Equal(t, int64(2), rows.Data[1][0])
	assert.Equal(t, 2.0, rows.Data[1][1])
}

func TestSelectAllKeepsStoredText(t *testing.T) {
	sdb := openFixture(t,
		`CREATE TABLE ev (d DATE, ts DATETIME, at TIMESTAMP, flag BOOLEAN, big INTEGER);`,
		`INSERT INTO ev VALUES ('2024-01-01', '2024-01-01T10:00:00Z', 1700000000, 1, 9223372036854775807);`,
		`INSERT INTO ev VALUES ('not a date', NULL, '2024-02-30', 0, -1);`,
	)

	rows, err := sdb.SelectAll(context.Background(), "ev")
	require.NoError(t, err)
	assert.Equal(t, []db.Column{
		{Name: "d", Type: "DATE"},
		{Name: "ts", Type: "DATETIME"},
		{Name: "at", Type: "TIMESTAMP"},
		{Name: "flag", Type: "BOOLEAN"},
		{Name: "big", Type: "INTEGER"},
	}, rows.Columns)
	assert.Equal(t, []db.Row{
		{"2024-01-01", "2024-01-01T10:00:00Z", int64(1700000000), int64(1), int64(9223372036854775807)},
		{"not a date", nil, "2024-02-30", int64(0), int64(-1)},
	}, rows.Data)
}

func TestSelectAllGeneratedColumn(t *testing.T) {
	sdb := openFixture(t,
		`CREATE TABLE g (a INTEGER, b INTEGER GENERATED ALWAYS AS (a * 2) VIRTUAL);`,
		`INSERT INTO g (a) VALUES (3);`,
	)

	rows, err := sdb.SelectAll(context.Background(), "g")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, db.ColumnNames(rows.Columns))
	assert.Equal(t, []db.Row{{int64(3), int64(6)}}, rows.Data)
}

func TestSelectAllInvalidUTF8(t *testing.T) {
	sdb := openFixture(t,
		`CREATE TABLE bad (id INTEGER, label TEXT);`,
		`INSERT INTO bad VALUES (1, CAST(x'61ff' AS TEXT));`,
	)

	_, err := sdb.SelectAll(context.Background(), "bad")
	require.Error(t, err)

	var se *db.StoreError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "bad", se.Table)
	assert.EqualError(t, err, "could not decode to UTF-8 column 'label'")
}

func TestSelectStored(t *testing.T) {
	assert.Equal(t, `SELECT * FROM "t";`, selectStored("t", nil))
	assert.Equal(t,
		`SELECT +"a" AS "a", +"b ""c""" AS "b ""c""" FROM "t x";`,
		selectStored("t x", []db.Column{{Name: "a"}, {Name: `b "c"`}}))
}

func TestSelectAllMissingTable(t *testing.T) {
	sdb := openFixture(t)

	_, err := sdb.SelectAll(context.Background(), "ghost")
	require.Error(t, err)

	var se *db.StoreError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, db.OpSelectRows, se.Op)
	assert.Equal(t, "ghost", se.Table)
	assert.Contains(t, err.Error(), "no such table")
}

func TestOpenIsReadOnly(t *testing.T) {
	path := testutil.CreateSampleDatabase(t)
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	sdb, err := Open(context.Background(), path)
	require.NoError(t, err)

	_, err = sdb.db.ExecContext(context.Background(), `INSERT INTO t (a, b) VALUES (3, 'z');`)
	assert.Error(t, err)
	_, err = sdb.db.ExecContext(context.Background(), `CREATE TABLE extra (x);`)
	assert.Error(t, err)
	require.NoError(t, sdb.Close())

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestOpenMissingFile(t *testing.T) {
	path := testutil.MissingPath(t)

	_, err := Open(context.Background(), path)
	require.Error(t, err)
	assert.ErrorAs(t, err, new(*db.StoreError))

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "open must not create the file")
}

func TestOpenEmptyPath(t *testing.T) {
	_, err := Open(context.Background(), "")
	require.Error(t, err)
	assert.ErrorAs(t, err, new(*db.StoreError))
}

func TestGarbageFile(t *testing.T) {
	sdb, err := Open(context.Background(), testutil.CreateGarbageFile(t))
	if err == nil {
		defer sdb.Close()
		_, err = sdb.ListTables(context.Background())
	}
	require.Error(t, err)
	assert.ErrorAs(t, err, new(*db.StoreError))
}
