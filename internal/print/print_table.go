package print

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"

	"github.com/bgunnarsson/dbpeek/internal/db"
)

type Options struct {
	MaxWidth int // max width for each column, 0 = default of 40
}

// RenderTable writes rows as a boxed grid. Column headers come from cols
// so an empty table still shows its shape.
func RenderTable(w io.Writer, cols []string, data []db.Row, opts Options) {
	if opts.MaxWidth <= 0 {
		opts.MaxWidth = 40
	}

	if len(cols) == 0 {
		fmt.Fprintln(w, "(no columns)")
		return
	}

	// compute widths
	widths := make([]int, len(cols))
	for i, name := range cols {
		widths[i] = min(runewidth.StringWidth(name), opts.MaxWidth)
	}

	cells := make([][]string, len(data))
	for r, row := range data {
		cells[r] = make([]string, len(cols))
		for i := range cols {
			var v any
			if i < len(row) {
				v = row[i]
			}
			s := formatCell(v)
			cells[r][i] = s
			if l := runewidth.StringWidth(s); l > widths[i] {
				widths[i] = min(l, opts.MaxWidth)
			}
		}
	}

	sep := func(ch string) string {
		var b strings.Builder
		b.WriteString("+")
		for i := range widths {
			b.WriteString(strings.Repeat(ch, widths[i]+2))
			b.WriteString("+")
		}
		return b.String()
	}

	writeRow := func(row []string) {
		var b strings.Builder
		b.WriteString("|")
		for i, c := range row {
			b.WriteString(" ")
			b.WriteString(runewidth.FillRight(truncate(c, widths[i]), widths[i]))
			b.WriteString(" |")
		}
		fmt.Fprintln(w, b.String())
	}

	fmt.Fprintln(w, sep("-"))
	writeRow(cols)
	fmt.Fprintln(w, sep("="))
	for _, row := range cells {
		writeRow(row)
	}
	fmt.Fprintln(w, sep("-"))

	if len(data) == 1 {
		fmt.Fprintln(w, "(1 row)")
	} else {
		fmt.Fprintf(w, "(%d rows)\n", len(data))
	}
}

func formatCell(v any) string {
	if v == nil {
		return "NULL"
	}
	switch t := v.(type) {
	case []byte:
		// heuristic: treat as string if printable, else show len
		if s := string(t); isPrintable(s) {
			return formatCell(s)
		}
		return fmt.Sprintf("<blob %d bytes>", len(t))
	case string:
		return strings.NewReplacer("\n", `\n`, "\t", " ").Replace(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case time.Time:
		return FormatTime(t)
	default:
		return fmt.Sprint(t)
	}
}

func isPrintable(s string) bool {
	for _, r := range s {
		if r == utf8.RuneError || (r < 32 && r != '\n' && r != '\t') {
			return false
		}
	}
	return true
}

func truncate(s string, w int) string {
	if runewidth.StringWidth(s) <= w {
		return s
	}
	if w <= 3 {
		return runewidth.Truncate(s, w, "")
	}
	return runewidth.Truncate(s, w, "...")
}
