package boliga

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/ps-vitor/salgspriser/internal/config"
	"github.com/ps-vitor/salgspriser/internal/domain"
)

// RowSchema describes where the fields of one result row live.
type RowSchema struct {
	Count       cascadia.Selector
	Row         cascadia.Selector
	Address     cascadia.Selector
	AddressCell int // 1-based
	PriceCell   int // 1-based
	PageSize    int
}

// NewRowSchema compiles the selectors, falling back to the defaults for empty values.
func NewRowSchema(sel config.SelectorConfig, pageSize int) (*RowSchema, error) {
	compile := func(name, s, def string) (cascadia.Selector, error) {
		if strings.TrimSpace(s) == "" {
			s = def
		}
		m, err := cascadia.Compile(s)
		if err != nil {
			return nil, fmt.Errorf("compile %s selector %q: %w", name, s, err)
		}
		return m, nil
	}

	count, err := compile("result_count", sel.ResultCount, ResultCountSelector)
	if err != nil {
		return nil, err
	}
	row, err := compile("row", sel.Row, RowSelector)
	if err != nil {
		return nil, err
	}
	addr, err := compile("address", sel.Address, AddressSelector)
	if err != nil {
		return nil, err
	}

	price := sel.PriceCell
	if price <= 0 {
		price = PriceCell
	}
	if pageSize <= 0 {
		return nil, fmt.Errorf("page size must be positive, got %d", pageSize)
	}
	return &RowSchema{
		Count:       count,
		Row:         row,
		Address:     addr,
		AddressCell: AddressCell,
		PriceCell:   price,
		PageSize:    pageSize,
	}, nil
}

func (s *RowSchema) minCells() int {
	return max(s.AddressCell, s.PriceCell)
}

// ParseResultCount reads the total number of results from the count label.
// The first whitespace-separated token that is an integer wins.
func (s *RowSchema) ParseResultCount(doc *goquery.Document) (int, error) {
	label := doc.FindMatcher(s.Count).First()
	if label.Length() == 0 {
		return 0, &domain.ParseError{Field: "result_count", Reason: "count label not found"}
	}
	text := label.Text()
	for _, tok := range strings.Fields(text) {
		if n, ok := ParseCountToken(tok); ok {
			return n, nil
		}
	}
	return 0, &domain.ParseError{
		Field:  "result_count",
		Reason: fmt.Sprintf("no integer in %q", collapseSpace(text)),
	}
}

// ParseRows extracts the listings of one page. Rows without td cells are
// header rows and are skipped.
func (s *RowSchema) ParseRows(doc *goquery.Document, page int) ([]domain.Listing, error) {
	var rows []*goquery.Selection
	doc.FindMatcher(s.Row).Each(func(_ int, tr *goquery.Selection) {
		if tr.ChildrenFiltered("td").Length() > 0 {
			rows = append(rows, tr)
		}
	})
	if len(rows) > s.PageSize {
		return nil, &domain.ParseError{
			Page:   page,
			Field:  "rows",
			Reason: fmt.Sprintf("%d rows exceed page size %d", len(rows), s.PageSize),
		}
	}

	out := make([]domain.Listing, 0, len(rows))
	for i, tr := range rows {
		l, err := s.parseRow(tr, page, i+1)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

func (s *RowSchema) parseRow(tr *goquery.Selection, page, row int) (domain.Listing, error) {
	fail := func(field, reason string) (domain.Listing, error) {
		return domain.Listing{}, &domain.ParseError{Page: page, Row: row, Field: field, Reason: reason}
	}

	cells := tr.ChildrenFiltered("td")
	if cells.Length() < s.minCells() {
		return fail("cells", fmt.Sprintf("got %d cells, want at least %d", cells.Length(), s.minCells()))
	}

	anchor := cells.Eq(s.AddressCell - 1).FindMatcher(s.Address).First()
	if anchor.Length() == 0 {
		return fail("address", "address anchor not found")
	}
	texts := textNodes(anchor)
	if len(texts) < 2 {
		return fail("address", fmt.Sprintf("want street and locality text, got %q", texts))
	}

	street, number, err := SplitStreet(texts[0])
	if err != nil {
		return fail("street", err.Error())
	}
	postal, city, err := SplitLocality(texts[1])
	if err != nil {
		return fail("postal_code", err.Error())
	}

	rawPrice := cells.Eq(s.PriceCell - 1).Text()
	price, err := ParsePrice(rawPrice)
	if err != nil {
		return fail("price", fmt.Sprintf("%q: %v", collapseSpace(rawPrice), err))
	}

	return domain.Listing{
		Page:         page,
		Index:        row,
		RawAddress:   texts[0],
		RawLocality:  texts[1],
		PricePerArea: price,
		Address: domain.Address{
			Street:      street,
			HouseNumber: number,
			PostalCode:  postal,
			City:        city,
		},
	}, nil
}

// textNodes returns the non-blank text nodes below sel in document order.
func textNodes(sel *goquery.Selection) []string {
	var out []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := collapseSpace(n.Data); t != "" {
				out = append(out, t)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return out
}
