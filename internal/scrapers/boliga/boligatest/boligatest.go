// Package boligatest serves fake sold-listing result pages for tests.
package boligatest

import (
	"fmt"
	"html"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"

	"github.com/gorilla/mux"
)

// SearchPath is the path the fake site serves results on.
const SearchPath = "/salg/resultater"

// Row is one listing row. Price is written verbatim into the fourth cell.
type Row struct {
	Street   string
	Locality string
	Price    string
}

// Page renders a results page with the given total in the count label.
// The label carries the shown range first, as the live site does.
func Page(total int, rows ...Row) string {
	var b strings.Builder
	b.WriteString(`<html><body><div id="searchresult">`)
	fmt.Fprintf(&b, `<table class="searchResultSummary"><tr><td class="text-right"><label>Viser 1-%d af %s resultater</label></td></tr></table>`,
		len(rows), thousands(total))
	b.WriteString(`<table class="searchResultTable"><thead><tr><th>Adresse</th><th>Købesum</th><th>Dato</th><th>Kr/m²</th></tr></thead><tbody>`)
	for i, r := range rows {
		fmt.Fprintf(&b, `<tr><td><a href="/salg/info/%d">%s<br>%s</a></td><td>1.000.000</td><td>01-01-2015</td><td>%s</td></tr>`,
			i+1, html.EscapeString(r.Street), html.EscapeString(r.Locality), html.EscapeString(r.Price))
	}
	b.WriteString(`</tbody></table></div></body></html>`)
	return b.String()
}

// Site serves Pages[p] for ?p=<p> and Count for requests without p.
type Site struct {
	Total int
	Pages map[int][]Row
	// Status, when set, is returned for every request.
	Status int

	mu       sync.Mutex
	requests []string
}

// Requests returns the raw query strings received so far.
func (s *Site) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// Register mounts the search route on r.
func (s *Site) Register(r *mux.Router) {
	r.HandleFunc(SearchPath, s.serve).Methods(http.MethodGet)
}

// NewServer starts an httptest server for the site.
func (s *Site) NewServer() *httptest.Server {
	r := mux.NewRouter()
	s.Register(r)
	return httptest.NewServer(r)
}

func (s *Site) serve(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.requests = append(s.requests, r.URL.RawQuery)
	s.mu.Unlock()

	if s.Status != 0 {
		w.WriteHeader(s.Status)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	p := r.URL.Query().Get("p")
	if p == "" {
		_, _ = w.Write([]byte(Page(s.Total)))
		return
	}
	n, err := strconv.Atoi(p)
	if err != nil {
		http.Error(w, "bad page", http.StatusBadRequest)
		return
	}
	_, _ = w.Write([]byte(Page(s.Total, s.Pages[n]...)))
}

func thousands(n int) string {
	s := strconv.Itoa(n)
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "." + s[i:]
	}
	return s
}
