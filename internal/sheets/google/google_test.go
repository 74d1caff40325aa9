package google

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goszakup/internal/log"
	ports "goszakup/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type call struct {
	method string
	path   string
	query  string
	body   []byte
}

type fakeSheets struct {
	mu       sync.Mutex
	calls    []call
	existing map[string]int64
	failFmt  bool
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.calls = append(f.calls, call{method: r.Method, path: r.URL.Path, query: r.URL.RawQuery, body: body})
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodGet:
		var sheets []map[string]any
		for title, id := range f.existing {
			sheets = append(sheets, map[string]any{"properties": map[string]any{"sheetId": id, "title": title}})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"spreadsheetId": "sheet-id", "sheets": sheets})
	case strings.HasSuffix(r.URL.Path, ":batchUpdate"):
		var req gsheet.BatchUpdateSpreadsheetRequest
		_ = json.Unmarshal(body, &req)
		if len(req.Requests) > 0 && req.Requests[0].AddSheet != nil {
			_ = json.NewEncoder(w).Encode(map[string]any{"replies": []any{
				map[string]any{"addSheet": map[string]any{"properties": map[string]any{"sheetId": 42, "title": req.Requests[0].AddSheet.Properties.Title}}},
			}})
			return
		}
		if f.failFmt {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error": {"code": 400, "message": "bad format"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"replies": []}`))
	case strings.HasSuffix(r.URL.Path, ":clear"):
		_, _ = w.Write([]byte(`{}`))
	case r.Method == http.MethodPut:
		_, _ = w.Write([]byte(`{"updatedCells": 1}`))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeSheets) find(pred func(call) bool) []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []call
	for _, c := range f.calls {
		if pred(c) {
			out = append(out, c)
		}
	}
	return out
}

func newTestClient(t *testing.T, fake *fakeSheets) *Client {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	c, err := New(context.Background(), Options{
		SpreadsheetID: "sheet-id",
		ClientOptions: []goption.ClientOption{
			goption.WithEndpoint(srv.URL + "/"),
			goption.WithoutAuthentication(),
			goption.WithHTTPClient(srv.Client()),
		},
	}, log.Discard())
	require.NoError(t, err)
	return c
}

func sampleSheet() ports.Sheet {
	return ports.Sheet{Title: "Итоги закупок 2024", Rows: []ports.Row{
		{Kind: ports.RowTitle, Cells: []any{"ИТОГИ"}},
		{Kind: ports.RowBlank},
		{Kind: ports.RowHeader, Cells: []any{"№", "Способ закупок", "Фактическая сумма"}},
		{Kind: ports.RowData, Cells: []any{1, "Открытый конкурс", int64(1450)}},
		{Kind: ports.RowTotal, Cells: []any{"", "ИТОГО:", int64(1450)}},
	}}
}

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Options{}, log.Discard())
	require.Error(t, err)
	assert.Equal(t, "missing GOOGLE_SPREADSHEET_ID", err.Error())
}

func TestNew_MissingCredentials(t *testing.T) {
	_, err := New(context.Background(), Options{SpreadsheetID: "x"}, log.Discard())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing service account credentials")
}

func TestNew_UnreadableCredentialsFile(t *testing.T) {
	_, err := New(context.Background(), Options{SpreadsheetID: "x", CredentialsFile: "/non/existent.json"}, log.Discard())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read service account file")
}

func TestWriteSheet_CreatesTabAndWritesValues(t *testing.T) {
	fake := &fakeSheets{existing: map[string]int64{"Other": 1}}
	c := newTestClient(t, fake)

	ref, err := c.WriteSheet(context.Background(), sampleSheet())

	require.NoError(t, err)
	assert.Equal(t, "'Итоги закупок 2024'!A1:C5", ref)

	clears := fake.find(func(c call) bool { return strings.HasSuffix(c.path, ":clear") })
	require.Len(t, clears, 1)
	assert.Contains(t, clears[0].path, "'Итоги закупок 2024'")

	puts := fake.find(func(c call) bool { return c.method == http.MethodPut })
	require.Len(t, puts, 1)
	assert.Contains(t, puts[0].query, "valueInputOption=RAW")
	var vr gsheet.ValueRange
	require.NoError(t, json.Unmarshal(puts[0].body, &vr))
	require.Len(t, vr.Values, 5)
	assert.Equal(t, []any{"", "", ""}, vr.Values[1])
	assert.Equal(t, "Открытый конкурс", vr.Values[3][1])
	assert.EqualValues(t, 1450, vr.Values[3][2])

	batches := fake.find(func(c call) bool { return strings.HasSuffix(c.path, ":batchUpdate") })
	require.Len(t, batches, 2)
	var format gsheet.BatchUpdateSpreadsheetRequest
	require.NoError(t, json.Unmarshal(batches[1].body, &format))
	// reset + title + header + total + column width
	require.Len(t, format.Requests, 5)
	assert.Equal(t, int64(42), format.Requests[0].RepeatCell.Range.SheetId)
	header := format.Requests[2].RepeatCell
	assert.Equal(t, int64(2), header.Range.StartRowIndex)
	assert.True(t, header.Cell.UserEnteredFormat.TextFormat.Bold)
	assert.InDelta(t, 0x44/255.0, header.Cell.UserEnteredFormat.BackgroundColor.Red, 1e-9)
}

func TestWriteSheet_ReusesExistingTab(t *testing.T) {
	fake := &fakeSheets{existing: map[string]int64{"Итоги закупок 2024": 7}}
	c := newTestClient(t, fake)

	_, err := c.WriteSheet(context.Background(), sampleSheet())

	require.NoError(t, err)
	batches := fake.find(func(c call) bool { return strings.HasSuffix(c.path, ":batchUpdate") })
	require.Len(t, batches, 1, "only the formatting batch is sent")
	var format gsheet.BatchUpdateSpreadsheetRequest
	require.NoError(t, json.Unmarshal(batches[0].body, &format))
	assert.Equal(t, int64(7), format.Requests[0].RepeatCell.Range.SheetId)
}

func TestWriteSheet_FormattingFailureIsNotFatal(t *testing.T) {
	fake := &fakeSheets{existing: map[string]int64{"Итоги закупок 2024": 7}, failFmt: true}
	c := newTestClient(t, fake)

	_, err := c.WriteSheet(context.Background(), sampleSheet())

	assert.NoError(t, err)
}

func TestWriteSheet_EmptyTitle(t *testing.T) {
	c := NewWithService(&gsheet.Service{}, "sheet-id", log.Discard())
	_, err := c.WriteSheet(context.Background(), ports.Sheet{})
	assert.Error(t, err)

	c = &Client{}
	_, err = c.WriteSheet(context.Background(), sampleSheet())
	assert.EqualError(t, err, "sheets service not initialized")
}

func TestColumnLetter(t *testing.T) {
	tests := map[int]string{1: "A", 5: "E", 14: "N", 26: "Z", 27: "AA", 52: "AZ", 53: "BA"}
	for n, want := range tests {
		assert.Equal(t, want, columnLetter(n), "column %d", n)
	}
}

func TestQuoteSheet(t *testing.T) {
	assert.Equal(t, "'Q1'", quoteSheet("Q1"))
	assert.Equal(t, "'It''s'", quoteSheet("It's"))
	assert.Equal(t, "'Договоры 2024'!A1:N10", a1Range("Договоры 2024", 14, 10))
}

func TestRowFormat(t *testing.T) {
	assert.Nil(t, rowFormat(ports.RowData))
	assert.Nil(t, rowFormat(ports.RowBlank))
	assert.True(t, rowFormat(ports.RowGroup).TextFormat.Bold)
	assert.True(t, rowFormat(ports.RowNote).TextFormat.Italic)
	assert.NotNil(t, rowFormat(ports.RowTotal).BackgroundColor)
}
