package google

import (
	"fmt"
	"strings"

	ports "goszakup/internal/sheets"

	gsheet "google.golang.org/api/sheets/v4"
)

var (
	headerFill = rgb(0x44, 0x72, 0xC4)
	totalFill  = rgb(0xD9, 0xE2, 0xF3)
	white      = rgb(0xFF, 0xFF, 0xFF)
	warningRed = rgb(0xC0, 0x00, 0x00)
)

func rgb(r, g, b int) *gsheet.Color {
	return &gsheet.Color{Red: float64(r) / 255, Green: float64(g) / 255, Blue: float64(b) / 255}
}

// rowFormat returns the cell format for a row kind, or nil for plain rows.
func rowFormat(kind ports.RowKind) *gsheet.CellFormat {
	switch kind {
	case ports.RowTitle:
		return &gsheet.CellFormat{TextFormat: &gsheet.TextFormat{Bold: true, FontSize: 14}}
	case ports.RowHeader:
		return &gsheet.CellFormat{
			BackgroundColor:     headerFill,
			HorizontalAlignment: "CENTER",
			WrapStrategy:        "WRAP",
			TextFormat:          &gsheet.TextFormat{Bold: true, ForegroundColor: white},
		}
	case ports.RowTotal:
		return &gsheet.CellFormat{BackgroundColor: totalFill, TextFormat: &gsheet.TextFormat{Bold: true}}
	case ports.RowBold, ports.RowGroup:
		return &gsheet.CellFormat{TextFormat: &gsheet.TextFormat{Bold: true}}
	case ports.RowNote:
		return &gsheet.CellFormat{TextFormat: &gsheet.TextFormat{Italic: true, FontSize: 10}}
	case ports.RowWarning:
		return &gsheet.CellFormat{TextFormat: &gsheet.TextFormat{Bold: true, ForegroundColor: warningRed}}
	default:
		return nil
	}
}

// formatRequests resets the formatting of the written area and styles
// every non-plain row.
func formatRequests(sheetID int64, sheet ports.Sheet) []*gsheet.Request {
	width := int64(max(sheet.Width(), 1))
	reqs := []*gsheet.Request{{
		RepeatCell: &gsheet.RepeatCellRequest{
			Range:  &gsheet.GridRange{SheetId: sheetID, StartRowIndex: 0, EndRowIndex: int64(len(sheet.Rows)), StartColumnIndex: 0, EndColumnIndex: width},
			Cell:   &gsheet.CellData{UserEnteredFormat: &gsheet.CellFormat{}},
			Fields: "userEnteredFormat",
		},
	}}
	for i, row := range sheet.Rows {
		f := rowFormat(row.Kind)
		if f == nil {
			continue
		}
		reqs = append(reqs, &gsheet.Request{
			RepeatCell: &gsheet.RepeatCellRequest{
				Range:  &gsheet.GridRange{SheetId: sheetID, StartRowIndex: int64(i), EndRowIndex: int64(i + 1), StartColumnIndex: 0, EndColumnIndex: width},
				Cell:   &gsheet.CellData{UserEnteredFormat: f},
				Fields: "userEnteredFormat(backgroundColor,textFormat,horizontalAlignment,wrapStrategy)",
			},
		})
	}
	// The label column carries method and subject names.
	reqs = append(reqs, &gsheet.Request{
		UpdateDimensionProperties: &gsheet.UpdateDimensionPropertiesRequest{
			Range:      &gsheet.DimensionRange{SheetId: sheetID, Dimension: "COLUMNS", StartIndex: 1, EndIndex: 2},
			Properties: &gsheet.DimensionProperties{PixelSize: 360},
			Fields:     "pixelSize",
		},
	})
	return reqs
}

// columnLetter converts a 1-based column number into A1 notation.
func columnLetter(n int) string {
	var b []byte
	for n > 0 {
		n--
		b = append([]byte{byte('A' + n%26)}, b...)
		n /= 26
	}
	return string(b)
}

// quoteSheet quotes a sheet title for A1 ranges.
func quoteSheet(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

func a1Range(title string, width, height int) string {
	return fmt.Sprintf("%s!A1:%s%d", quoteSheet(title), columnLetter(max(width, 1)), max(height, 1))
}
