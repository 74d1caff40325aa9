package memory

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	ports "goszakup/internal/sheets"
)

func sample(title string) ports.Sheet {
	return ports.Sheet{Title: title, Rows: []ports.Row{
		{Kind: ports.RowTitle, Cells: []any{"ОБЪЯВЛЕНИЯ О ЗАКУПКАХ"}},
		{Kind: ports.RowBlank},
		{Kind: ports.RowHeader, Cells: []any{"№", "Способ закупки", "Количество"}},
		{Kind: ports.RowData, Cells: []any{1, "Открытый конкурс", 5}},
		{Kind: ports.RowData, Cells: []any{2, "Из одного источника", 12.5}},
		{Kind: ports.RowTotal, Cells: []any{"", "ИТОГО", 17}},
	}}
}

func TestStoreWriteSheet(t *testing.T) {
	s := New(nil)

	ref, err := s.WriteSheet(context.Background(), sample("A"))
	if err != nil || ref != "mem:A" {
		t.Fatalf("unexpected write: ref=%q err=%v", ref, err)
	}
	if _, err := s.WriteSheet(context.Background(), sample("B")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.WriteSheet(context.Background(), sample("A")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	titles := s.Titles()
	if len(titles) != 2 || titles[0] != "A" || titles[1] != "B" {
		t.Fatalf("unexpected titles: %v", titles)
	}
	got, ok := s.Sheet("A")
	if !ok || len(got.Rows) != 6 {
		t.Fatalf("unexpected sheet: %+v ok=%v", got, ok)
	}
	if _, ok := s.Sheet("missing"); ok {
		t.Fatal("expected missing sheet")
	}
}

func TestStoreRendersToOutput(t *testing.T) {
	var buf bytes.Buffer
	s := New(&buf)

	if _, err := s.WriteSheet(context.Background(), sample("Объявления")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"== Объявления ==", "ОБЪЯВЛЕНИЯ О ЗАКУПКАХ", "Открытый конкурс", "12.50", "ИТОГО"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	lines := strings.Split(out, "\n")
	var header, total string
	for _, l := range lines {
		if strings.HasPrefix(l, "№") {
			header = l
		}
		if strings.Contains(l, "ИТОГО") {
			total = l
		}
	}
	col := func(line, word string) int {
		i := strings.Index(line, word)
		if i < 0 {
			return -1
		}
		return utf8.RuneCountInString(line[:i])
	}
	if col(header, "Способ") != col(total, "ИТОГО") {
		t.Errorf("columns not aligned:\n%s\n%s", header, total)
	}
}
