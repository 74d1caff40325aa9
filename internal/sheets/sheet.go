// Package sheets turns reports into plain row tables and defines the port
// through which the tables are published.
package sheets

// RowKind tells a writer how a row is meant to look.
type RowKind int

const (
	RowBlank RowKind = iota
	RowTitle
	RowText
	RowBold
	RowHeader
	RowData
	RowGroup
	RowTotal
	RowNote
	RowWarning
)

func (k RowKind) String() string {
	switch k {
	case RowTitle:
		return "title"
	case RowText:
		return "text"
	case RowBold:
		return "bold"
	case RowHeader:
		return "header"
	case RowData:
		return "data"
	case RowGroup:
		return "group"
	case RowTotal:
		return "total"
	case RowNote:
		return "note"
	case RowWarning:
		return "warning"
	default:
		return "blank"
	}
}

// Row is one line of a sheet. Cells hold strings, ints or floats.
type Row struct {
	Kind  RowKind
	Cells []any
}

// Sheet is a titled table ready to be written.
type Sheet struct {
	Title string
	Rows  []Row
}

// Width returns the widest row.
func (s Sheet) Width() int {
	w := 0
	for _, r := range s.Rows {
		w = max(w, len(r.Cells))
	}
	return w
}

// Values returns the cell grid, padding short rows with "".
func (s Sheet) Values() [][]any {
	width := s.Width()
	out := make([][]any, len(s.Rows))
	for i, r := range s.Rows {
		row := make([]any, width)
		for j := range row {
			if j < len(r.Cells) {
				row[j] = r.Cells[j]
			} else {
				row[j] = ""
			}
		}
		out[i] = row
	}
	return out
}

type builder struct {
	rows []Row
}

func (b *builder) add(kind RowKind, cells ...any) {
	b.rows = append(b.rows, Row{Kind: kind, Cells: cells})
}

func (b *builder) blank() {
	b.rows = append(b.rows, Row{Kind: RowBlank})
}
