package memory

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"text/tabwriter"

	ports "goszakup/internal/sheets"
)

// Store keeps written sheets by title and optionally prints each one.
type Store struct {
	mu     sync.Mutex
	out    io.Writer
	sheets map[string]ports.Sheet
	order  []string
}

var _ ports.ReportWriter = (*Store)(nil)

// New returns a store that renders every written sheet to out. A nil out
// only keeps the sheets.
func New(out io.Writer) *Store {
	return &Store{out: out, sheets: make(map[string]ports.Sheet)}
}

// WriteSheet stores the sheet, replacing one with the same title.
func (s *Store) WriteSheet(_ context.Context, sheet ports.Sheet) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sheets[sheet.Title]; !ok {
		s.order = append(s.order, sheet.Title)
	}
	s.sheets[sheet.Title] = sheet
	if s.out != nil {
		if err := Render(s.out, sheet); err != nil {
			return "", fmt.Errorf("render %q: %w", sheet.Title, err)
		}
	}
	return "mem:" + sheet.Title, nil
}

// Sheet returns a stored sheet.
func (s *Store) Sheet(title string) (ports.Sheet, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sh, ok := s.sheets[title]
	return sh, ok
}

// Titles lists stored sheets in first-write order.
func (s *Store) Titles() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.order...)
}

// Render prints a sheet as aligned text columns.
func Render(w io.Writer, sheet ports.Sheet) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "== %s ==\n", sheet.Title)
	for _, row := range sheet.Rows {
		cells := make([]string, len(row.Cells))
		for i, c := range row.Cells {
			cells[i] = formatCell(c)
		}
		line := strings.Join(cells, "\t")
		if row.Kind == ports.RowHeader || row.Kind == ports.RowTotal {
			line += "\t"
		}
		fmt.Fprintln(tw, line)
		if row.Kind == ports.RowHeader {
			rule := make([]string, len(cells))
			for i, c := range cells {
				rule[i] = strings.Repeat("-", min(len([]rune(c)), 40))
			}
			fmt.Fprintln(tw, strings.Join(rule, "\t")+"\t")
		}
	}
	fmt.Fprintln(tw)
	return tw.Flush()
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return fmt.Sprintf("%.2f", x)
	default:
		return fmt.Sprint(x)
	}
}
