package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx stdlib driver

	"github.com/bgunnarsson/dbpeek/internal/db"
)

type PostgresDB struct {
	db *sql.DB
}

func Open(ctx context.Context, dsn string) (*PostgresDB, error) {
	if dsn == "" {
		return nil, db.Wrap(db.OpOpen, "", fmt.Errorf("empty postgres DSN"))
	}

	sqldb, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, db.Wrap(db.OpOpen, "", err)
	}

	// One connection is enough for a dump.
	sqldb.SetMaxOpenConns(1)
	sqldb.SetMaxIdleConns(1)
	sqldb.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := sqldb.PingContext(ctx); err != nil {
		sqldb.Close()
		return nil, db.Wrap(db.OpOpen, "", err)
	}

	return &PostgresDB{db: sqldb}, nil
}

func (p *PostgresDB) Close() error {
	if p.db == nil {
		return nil
	}
	return p.db.Close()
}

func (p *PostgresDB) ListTables(ctx context.Context) ([]string, error) {
	const q = `
SELECT table_schema || '.' || table_name AS name
FROM information_schema.tables
WHERE table_type = 'BASE TABLE'
  AND table_schema NOT IN ('pg_catalog', 'information_schema')
ORDER BY table_schema, table_name;
`
	rows, err := p.db.QueryContext(ctx, q)
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
	if err := rows.Err(); err != nil {
		return nil, db.Wrap(db.OpListTables, "", err)
	}
	return out, nil
}

// DescribeTable returns column name + data type.
// Accepts either "table" or "schema.table".
func (p *PostgresDB) DescribeTable(ctx context.Context, table string) ([]db.Column, error) {
	schema := "public"
	name := table
	if dot := strings.Index(table, "."); dot != -1 {
		schema = table[:dot]
		name = table[dot+1:]
	}

	const q = `
SELECT column_name, data_type
FROM information_schema.columns
WHERE table_schema = $1
  AND table_name = $2
ORDER BY ordinal_position;
`
	rows, err := p.db.QueryContext(ctx, q, schema, name)
	if err != nil {
		return nil, db.Wrap(db.OpDescribeTable, table, err)
	}
	defer rows.Close()

	var cols []db.Column
	for rows.Next() {
		var colName, dataType string
		if err := rows.Scan(&colName, &dataType); err != nil {
			return nil, db.Wrap(db.OpDescribeTable, table, err)
		}
		cols = append(cols, db.Column{
			Name: colName,
			Type: dataType,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, db.Wrap(db.OpDescribeTable, table, err)
	}
	return cols, nil
}

func (p *PostgresDB) SelectAll(ctx context.Context, table string) (*db.Rows, error) {
	return p.selectRows(ctx, table, "SELECT * FROM "+quoteIdent(table))
}

func (p *PostgresDB) selectRows(ctx context.Context, table, sqlQuery string) (*db.Rows, error) {
	rows, err := p.db.QueryContext(ctx, sqlQuery)
	if err != nil {
		return nil, db.Wrap(db.OpSelectRows, table, err)
	}
	defer rows.Close()

	colNames, err := rows.Columns()
	if err != nil {
		return nil, db.Wrap(db.OpSelectRows, table, err)
	}

	colTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, db.Wrap(db.OpSelectRows, table, err)
	}

	header := make([]db.Column, len(colNames))
	for i, name := range colNames {
		typ := ""
		if i < len(colTypes) && colTypes[i] != nil {
			typ = strings.ToLower(colTypes[i].DatabaseTypeName())
		}
		header[i] = db.Column{
			Name: name,
			Type: typ,
		}
	}

	var data []db.Row
	for rows.Next() {
		values := make([]any, len(colNames))
		ptrs := make([]any, len(colNames))
		for i := range values {
			ptrs[i] = &values[i]
		}

		if err := rows.Scan(ptrs...); err != nil {
			return nil, db.Wrap(db.OpSelectRows, table, err)
		}

		for i, v := range values {
			if x, ok := v.([]byte); ok && header[i].Type != "bytea" {
				values[i] = string(x)
			}
		}

		data = append(data, db.Row(values))
	}
	if err := rows.Err(); err != nil {
		return nil, db.Wrap(db.OpSelectRows, table, err)
	}

	return &db.Rows{
		Columns: header,
		Data:    data,
	}, nil
}

// quoteIdent quotes "schema.table" as "schema"."table".
func quoteIdent(id string) string {
	parts := strings.SplitN(id, ".", 2)
	for i, p := range parts {
		parts[i] = `"` + strings.ReplaceAll(p, `"`, `""`) + `"`
	}
	return strings.Join(parts, ".")
}
