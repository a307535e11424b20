package inspect

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"

	"github.com/bgunnarsson/dbpeek/internal/db"
	"github.com/bgunnarsson/dbpeek/internal/print"
)

// NoTablesMessage is the whole report for a database without tables.
const NoTablesMessage = "No tables found in the database."

type Format string

const (
	FormatPlain Format = "plain"
	FormatTable Format = "table"
)

type Options struct {
	Format   Format
	MaxWidth int  // column width cap for FormatTable
	Styled   bool // bold table headings; only for terminals
}

// Table is one table as read at inspection time.
type Table struct {
	Name    string
	Columns []string
	Rows    []db.Row
}

// Inspector dumps every table of a database to w. It only reads from
// the store.
type Inspector struct {
	db      db.DB
	w       io.Writer
	opts    Options
	heading lipgloss.Style
}

func New(sdb db.DB, w io.Writer, opts Options) *Inspector {
	if opts.Format == "" {
		opts.Format = FormatPlain
	}
	heading := lipgloss.NewStyle()
	if opts.Styled {
		heading = lipgloss.NewRenderer(w).NewStyle().Bold(true)
	}
	return &Inspector{
		db:      sdb,
		w:       w,
		opts:    opts,
		heading: heading,
	}
}

// Run writes the report table by table in catalog order. Output already
// written stays written when a later table fails.
func (i *Inspector) Run(ctx context.Context) error {
	tables, err := i.db.ListTables(ctx)
	if err != nil {
		return err
	}
	log.Debug().Int("tables", len(tables)).Msg("Listed tables")

	if len(tables) == 0 {
		fmt.Fprintln(i.w, NoTablesMessage)
		return nil
	}

	for _, name := range tables {
		fmt.Fprintln(i.w)
		fmt.Fprintln(i.w, i.renderHeading("Table: "+name))

		t, err := i.ReadTable(ctx, name)
		if err != nil {
			return err
		}
		i.writeTable(t)
	}
	return nil
}

// ReadTable selects all rows of name, then reads its column names.
func (i *Inspector) ReadTable(ctx context.Context, name string) (*Table, error) {
	rows, err := i.db.SelectAll(ctx, name)
	if err != nil {
		return nil, err
	}

	cols, err := i.db.DescribeTable(ctx, name)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("table", name).
		Int("columns", len(cols)).
		Int("rows", len(rows.Data)).
		Msg("Read table")

	return &Table{
		Name:    name,
		Columns: db.ColumnNames(cols),
		Rows:    rows.Data,
	}, nil
}

func (i *Inspector) writeTable(t *Table) {
	if i.opts.Format == FormatTable {
		print.RenderTable(i.w, t.Columns, t.Rows, print.Options{MaxWidth: i.opts.MaxWidth})
		return
	}

	fmt.Fprintln(i.w, "Columns:", print.List(t.Columns))
	fmt.Fprintln(i.w, "Rows:")
	for _, row := range t.Rows {
		fmt.Fprintln(i.w, print.Tuple(row))
	}
}

func (i *Inspector) renderHeading(s string) string {
	if !i.opts.Styled {
		return s
	}
	return i.heading.Render(s)
}
