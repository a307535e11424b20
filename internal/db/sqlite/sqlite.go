package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "modernc.org/sqlite" // register driver

	"github.com/bgunnarsson/dbpeek/internal/db"
)

type SqliteDB struct {
	db *sql.DB
}

// Open opens the database file at path read-only. A missing file is an
// error rather than a new empty database.
func Open(ctx context.Context, path string) (*SqliteDB, error) {
	if path == "" {
		return nil, db.Wrap(db.OpOpen, "", fmt.Errorf("empty sqlite path"))
	}

	sqldb, err := sql.Open("sqlite", DSN(path))
	if err != nil {
		return nil, db.Wrap(db.OpOpen, "", err)
	}

	// One connection is all a single dump needs.
	sqldb.SetMaxOpenConns(1)

	if err := sqldb.PingContext(ctx); err != nil {
		_ = sqldb.Close()
		return nil, db.Wrap(db.OpOpen, "", err)
	}

	return &SqliteDB{db: sqldb}, nil
}

// DSN builds the read-only URI filename for path. query_only is set per
// connection so a recycled connection keeps it.
func DSN(path string) string {
	return "file:" + uriEscaper.Replace(path) + "?mode=ro&_pragma=query_only(1)"
}

var uriEscaper = strings.NewReplacer("%", "%25", "?", "%3f", "#", "%23")

func (s *SqliteDB) Close() error {
	return s.db.Close()
}

func (s *SqliteDB) ListTables(ctx context.Context) ([]string, error) {
	// Catalog order; internal sqlite_% objects are hidden.
	const q = `
		SELECT name
		FROM sqlite_master
		WHERE type = 'table'
		  AND name NOT LIKE 'sqlite_%';
	`

	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, db.Wrap(db.OpListTables, "", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, db.Wrap(db.OpListTables, "", err)
		}
		out = append(out, name)
	}
	return out, db.Wrap(db.OpListTables, "", rows.Err())
}

func (s *SqliteDB) DescribeTable(ctx context.Context, table string) ([]db.Column, error) {
	cols, err := s.storedColumns(ctx, table)
	return cols, db.Wrap(db.OpDescribeTable, table, err)
}

// SelectAll returns the rows of table with every value in its storage
// class. Each column is selected as +"col" so the driver sees no declared
// type and does not turn DATE or DATETIME text into time.Time.
func (s *SqliteDB) SelectAll(ctx context.Context, table string) (*db.Rows, error) {
	cols, err := s.storedColumns(ctx, table)
	if err != nil {
		return nil, db.Wrap(db.OpSelectRows, table, err)
	}

	rows, err := s.db.QueryContext(ctx, selectStored(table, cols))
	if err != nil {
		return nil, db.Wrap(db.OpSelectRows, table, err)
	}
	defer rows.Close()

	colNames, err := rows.Columns()
	if err != nil {
		return nil, db.Wrap(db.OpSelectRows, table, err)
	}

	var data []db.Row
	for rows.Next() {
		raw := make([]any, len(colNames))
		ptrs := make([]any, len(colNames))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, db.Wrap(db.OpSelectRows, table, err)
		}
		for i, v := range raw {
			if text, ok := v.(string); ok && !utf8.ValidString(text) {
				return nil, db.Wrap(db.OpSelectRows, table,
					fmt.Errorf("could not decode to UTF-8 column '%s'", colNames[i]))
			}
		}
		data = append(data, db.Row(raw))
	}
	if err := rows.Err(); err != nil {
		return nil, db.Wrap(db.OpSelectRows, table, err)
	}

	return &db.Rows{
		Columns: cols,
		Data:    data,
	}, nil
}

// storedColumns lists the columns SELECT * would return, including
// generated ones. Hidden virtual table columns are skipped.
func (s *SqliteDB) storedColumns(ctx context.Context, table string) ([]db.Column, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_xinfo(%s);", quoteIdent(table)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []db.Column
	for rows.Next() {
		var cid, notnull, pk, hidden int
		var name, ctype string
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk, &hidden); err != nil {
			return nil, err
		}
		if hidden == 1 {
			continue
		}
		cols = append(cols, db.Column{Name: name, Type: ctype})
	}
	return cols, rows.Err()
}

// selectStored falls back to SELECT * when cols is empty, which lets
// sqlite report a missing table itself.
func selectStored(table string, cols []db.Column) string {
	if len(cols) == 0 {
		return "SELECT * FROM " + quoteIdent(table) + ";"
	}
	list := make([]string, len(cols))
	for i, c := range cols {
		list[i] = "+" + quoteIdent(c.Name) + " AS " + quoteIdent(c.Name)
	}
	return "SELECT " + strings.Join(list, ", ") + " FROM " + quoteIdent(table) + ";"
}

// very basic identifier quoting, enough for sqlite
func quoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}
