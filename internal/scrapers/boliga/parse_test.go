package boliga

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/ps-vitor/salgspriser/internal/config"
	"github.com/ps-vitor/salgspriser/internal/domain"
	"github.com/ps-vitor/salgspriser/internal/scrapers/boliga/boligatest"
)

func newSchema(t *testing.T) *RowSchema {
	t.Helper()
	s, err := NewRowSchema(config.SelectorConfig{}, 40)
	if err != nil {
		t.Fatalf("NewRowSchema: %v", err)
	}
	return s
}

func docFrom(t *testing.T, body string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}

func TestParseRows_Fixture(t *testing.T) {
	body, err := os.ReadFile("testdata/results_page.html")
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	s := newSchema(t)
	doc := docFrom(t, string(body))

	total, err := s.ParseResultCount(doc)
	if err != nil || total != 2 {
		t.Fatalf("ParseResultCount = %d, %v", total, err)
	}

	rows, err := s.ParseRows(doc, 1)
	if err != nil {
		t.Fatalf("ParseRows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows=%d want 2 (header row must be skipped)", len(rows))
	}

	first := rows[0]
	want := domain.Address{Street: "Grundtvigs Alle", HouseNumber: "7", PostalCode: "6700", City: "Esbjerg"}
	if first.Address != want {
		t.Errorf("address=%+v want %+v", first.Address, want)
	}
	if first.PricePerArea != 1234567 {
		t.Errorf("price=%v want 1234567", first.PricePerArea)
	}
	if first.Page != 1 || first.Index != 1 {
		t.Errorf("provenance page=%d index=%d", first.Page, first.Index)
	}

	second := rows[1]
	if second.Address.Street != "Vestergade" || second.Address.HouseNumber != "12" || second.Address.PostalCode != "8000" {
		t.Errorf("nested span address=%+v", second.Address)
	}
	if second.PricePerArea != 28400 {
		t.Errorf("price=%v want 28400", second.PricePerArea)
	}
}

func TestParseResultCount(t *testing.T) {
	s := newSchema(t)

	total, err := s.ParseResultCount(docFrom(t, boligatest.Page(1234)))
	if err != nil || total != 1234 {
		t.Fatalf("ParseResultCount = %d, %v; want 1234", total, err)
	}

	bad := `<table class="searchResultSummary"><tr><td><label>Ingen resultater</label></td></tr></table>`
	_, err = s.ParseResultCount(docFrom(t, bad))
	var pe *domain.ParseError
	if !errors.As(err, &pe) || pe.Field != "result_count" {
		t.Fatalf("expected result_count ParseError, got %v", err)
	}

	_, err = s.ParseResultCount(docFrom(t, `<p>maintenance</p>`))
	if !errors.As(err, &pe) {
		t.Fatalf("missing label: expected ParseError, got %v", err)
	}
}

func TestParseResultCount_FirstIntegerToken(t *testing.T) {
	s := newSchema(t)
	tests := []struct {
		label string
		want  int
	}{
		{"Viser 1-40 af 1.234 resultater", 1234},
		{"Viser 1-0 af 0 resultater", 0},
		{"1.234 resultater", 1234},
		// a plain integer before the total wins
		{"Side 2 af 1.234 resultater", 2},
	}
	for _, tt := range tests {
		body := `<table class="searchResultSummary"><tr><td class="text-right"><label>` + tt.label + `</label></td></tr></table>`
		got, err := s.ParseResultCount(docFrom(t, body))
		if err != nil {
			t.Fatalf("%q: %v", tt.label, err)
		}
		if got != tt.want {
			t.Errorf("%q: got %d want %d", tt.label, got, tt.want)
		}
	}
}

func TestParseRows_TooManyRows(t *testing.T) {
	s, err := NewRowSchema(config.SelectorConfig{}, 2)
	if err != nil {
		t.Fatal(err)
	}
	row := boligatest.Row{Street: "Algade 1", Locality: "9000 Aalborg", Price: "10.000"}
	_, err = s.ParseRows(docFrom(t, boligatest.Page(3, row, row, row)), 1)
	var pe *domain.ParseError
	if !errors.As(err, &pe) || pe.Field != "rows" {
		t.Fatalf("expected rows ParseError, got %v", err)
	}
}

func TestParseRows_ShortPageIsFine(t *testing.T) {
	s := newSchema(t)
	row := boligatest.Row{Street: "Algade 1", Locality: "9000 Aalborg", Price: "10.000"}
	rows, err := s.ParseRows(docFrom(t, boligatest.Page(41, row)), 2)
	if err != nil || len(rows) != 1 {
		t.Fatalf("rows=%d err=%v", len(rows), err)
	}
}

func TestParseRows_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{
			name:  "missing cells",
			body:  `<table class="searchResultTable"><tbody><tr><td><a>Algade 1<br>9000 Aalborg</a></td><td>1</td></tr></tbody></table>`,
			field: "cells",
		},
		{
			name:  "no anchor",
			body:  `<table class="searchResultTable"><tbody><tr><td>Algade 1</td><td>1</td><td>2</td><td>3</td></tr></tbody></table>`,
			field: "address",
		},
		{
			name:  "no locality",
			body:  `<table class="searchResultTable"><tbody><tr><td><a>Algade 1</a></td><td>1</td><td>2</td><td>3</td></tr></tbody></table>`,
			field: "address",
		},
		{
			name:  "bad price",
			body:  `<table class="searchResultTable"><tbody><tr><td><a>Algade 1<br>9000 Aalborg</a></td><td>1</td><td>2</td><td>n/a</td></tr></tbody></table>`,
			field: "price",
		},
	}
	s := newSchema(t)
	for _, tt := range tests {
		_, err := s.ParseRows(docFrom(t, tt.body), 3)
		var pe *domain.ParseError
		if !errors.As(err, &pe) {
			t.Errorf("%s: expected ParseError, got %v", tt.name, err)
			continue
		}
		if pe.Field != tt.field || pe.Page != 3 || pe.Row != 1 {
			t.Errorf("%s: got %+v", tt.name, pe)
		}
	}
}

func TestNewRowSchema_BadSelector(t *testing.T) {
	if _, err := NewRowSchema(config.SelectorConfig{Row: "tr[["}, 40); err == nil {
		t.Fatal("expected compile error")
	}
	if _, err := NewRowSchema(config.SelectorConfig{}, 0); err == nil {
		t.Fatal("expected page size error")
	}
}
