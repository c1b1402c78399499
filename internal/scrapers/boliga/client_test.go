package boliga

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strconv"
	"testing"

	"github.com/gorilla/mux"

	"github.com/ps-vitor/salgspriser/internal/config"
	"github.com/ps-vitor/salgspriser/internal/domain"
	"github.com/ps-vitor/salgspriser/internal/metrics"
	"github.com/ps-vitor/salgspriser/internal/scrapers/boliga/boligatest"
	"github.com/ps-vitor/salgspriser/pkg/logger"
)

func newClient(t *testing.T, baseURL string, m *metrics.Pipeline) *Client {
	t.Helper()
	cfg := config.Default().Scraping.Boliga
	cfg.BaseURL = baseURL
	cfg.SearchPath = boligatest.SearchPath
	cfg.RateLimit.RequestsPerSecond = 0
	c, err := New(Options{Config: cfg, Logger: logger.Nop(), Metrics: m})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

var query = domain.Query{StartYear: 2010, EndYear: domain.Today, Type: domain.House}

func TestSearchURL(t *testing.T) {
	c := newClient(t, "http://example.test/", nil)

	u, err := url.Parse(c.SearchURL(query, 0))
	if err != nil {
		t.Fatal(err)
	}
	if u.Path != boligatest.SearchPath {
		t.Errorf("path=%q", u.Path)
	}
	want := map[string]string{
		"so": "1", "type": "Villa", "fraPostnr": "1000", "tilPostnr": "9990",
		"minsaledate": "2010", "maxsaledate": "today",
	}
	for k, v := range want {
		if got := u.Query().Get(k); got != v {
			t.Errorf("param %s=%q want %q", k, got, v)
		}
	}
	if u.Query().Has("p") {
		t.Error("count request must not carry a page number")
	}

	u, _ = url.Parse(c.SearchURL(domain.Query{StartYear: 2010, EndYear: 2012, Type: domain.OwnerFlat}, 3))
	if u.Query().Get("p") != "3" || u.Query().Get("maxsaledate") != "2012" || u.Query().Get("type") != "Ejerlejlighed" {
		t.Errorf("paged query=%v", u.Query())
	}
}

func TestPageCount(t *testing.T) {
	tests := []struct{ total, pages int }{{0, 0}, {40, 1}, {41, 2}}
	for _, tt := range tests {
		site := &boligatest.Site{Total: tt.total}
		srv := site.NewServer()
		c := newClient(t, srv.URL, nil)

		pages, total, err := c.PageCount(context.Background(), query)
		srv.Close()
		if err != nil {
			t.Fatalf("PageCount: %v", err)
		}
		if pages != tt.pages || total != tt.total {
			t.Errorf("total %d: pages=%d total=%d; want %d", tt.total, pages, total, tt.pages)
		}
	}
}

func TestPageCount_Fixture(t *testing.T) {
	body, err := os.ReadFile("testdata/results_page.html")
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	r := mux.NewRouter()
	r.HandleFunc(boligatest.SearchPath, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(body)
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	c := newClient(t, srv.URL, nil)
	pages, total, err := c.PageCount(context.Background(), query)
	if err != nil {
		t.Fatalf("PageCount: %v", err)
	}
	if pages != 1 || total != 2 {
		t.Fatalf("pages=%d total=%d; want 1 and 2", pages, total)
	}

	listings, err := c.FetchPage(context.Background(), query, 1, true)
	if err != nil {
		t.Fatalf("FetchPage: %v", err)
	}
	if len(listings) != total {
		t.Fatalf("listings=%d want %d", len(listings), total)
	}
}

func TestPageCount_StatusError(t *testing.T) {
	site := &boligatest.Site{Status: http.StatusServiceUnavailable}
	srv := site.NewServer()
	defer srv.Close()

	_, _, err := newClient(t, srv.URL, nil).PageCount(context.Background(), query)
	var se *domain.StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected StatusError 503, got %v", err)
	}
}

func TestFetchAll_InOrder(t *testing.T) {
	site := &boligatest.Site{
		Total: 3,
		Pages: map[int][]boligatest.Row{
			1: {{Street: "Algade 1", Locality: "9000 Aalborg", Price: "10.000"}, {Street: "Algade 2", Locality: "9000 Aalborg", Price: "11.000"}},
			2: {{Street: "Bredgade 3", Locality: "1260 København K", Price: "60.000"}},
		},
	}
	srv := site.NewServer()
	defer srv.Close()

	m := metrics.NewPipeline()
	c := newClient(t, srv.URL, m)
	// pretend the site uses two-row pages
	c.schema.PageSize = 2

	var got []string
	err := c.FetchAll(context.Background(), query, 2, func(page int, ls []domain.Listing) error {
		for _, l := range ls {
			got = append(got, l.Address.Street+" "+l.Address.HouseNumber)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	want := []string{"Algade 1", "Algade 2", "Bredgade 3"}
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d = %q want %q", i, got[i], want[i])
		}
	}

	reqs := site.Requests()
	if len(reqs) != 2 {
		t.Fatalf("requests=%v", reqs)
	}
	for i, raw := range reqs {
		v, _ := url.ParseQuery(raw)
		if v.Get("p") != strconv.Itoa(i+1) {
			t.Errorf("request %d page=%q", i, v.Get("p"))
		}
	}
}

func TestFetchAll_StopsOnCallbackError(t *testing.T) {
	site := &boligatest.Site{Total: 80, Pages: map[int][]boligatest.Row{}}
	srv := site.NewServer()
	defer srv.Close()

	stop := errors.New("stop")
	calls := 0
	err := newClient(t, srv.URL, nil).FetchAll(context.Background(), query, 2, func(int, []domain.Listing) error {
		calls++
		return stop
	})
	if !errors.Is(err, stop) || calls != 1 {
		t.Fatalf("err=%v calls=%d", err, calls)
	}
}
