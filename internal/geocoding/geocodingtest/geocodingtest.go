// Package geocodingtest serves a fake address geocoder for tests.
package geocodingtest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"

	"github.com/gorilla/mux"
)

const (
	Login    = "tester"
	Password = "s3cret:pw"
)

// Point is a hit in GeoJSON order.
type Point struct {
	Lon float64
	Lat float64
}

// Key identifies an address the way the fake service looks it up.
func Key(street, number, postal string) string {
	return strings.ToLower(street) + "|" + strings.ToLower(number) + "|" + postal
}

// Service answers lookups from Hits. Unknown addresses get an empty
// FeatureCollection.
type Service struct {
	Hits map[string]Point
	// GeometryType is written as-is; it defaults to the lowercase "point"
	// the real service sends.
	GeometryType string
	// Status, when set, is returned for every request.
	Status int

	mu       sync.Mutex
	requests []url.Values
}

// Requests returns the query parameters received so far.
func (s *Service) Requests() []url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]url.Values(nil), s.requests...)
}

func (s *Service) Register(r *mux.Router) {
	r.HandleFunc("/", s.serve).Methods(http.MethodGet)
}

// NewServer starts the fake; use its URL plus "/" as the base URL.
func (s *Service) NewServer() *httptest.Server {
	r := mux.NewRouter()
	s.Register(r)
	return httptest.NewServer(r)
}

func (s *Service) serve(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	s.mu.Lock()
	s.requests = append(s.requests, q)
	s.mu.Unlock()

	if s.Status != 0 {
		w.WriteHeader(s.Status)
		return
	}
	if q.Get("login") != Login || q.Get("password") != Password {
		http.Error(w, "bad credentials", http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	p, ok := s.Hits[Key(q.Get("vejnavn"), q.Get("husnr"), q.Get("postnr"))]
	if !ok {
		_, _ = fmt.Fprint(w, `{"type":"FeatureCollection","crs":{"type":"name","properties":{"name":"EPSG:4326"}},"features":[]}`)
		return
	}
	typ := s.GeometryType
	if typ == "" {
		typ = "point"
	}
	_, _ = fmt.Fprintf(w, `{"type":"FeatureCollection","crs":{"type":"name","properties":{"name":"EPSG:4326"}},`+
		`"features":[{"type":"Feature","geometry":{"type":%q,"coordinates":[%g,%g]},`+
		`"properties":{"vejnavn":%q,"husnr":%q,"postnr":%q}}]}`,
		typ, p.Lon, p.Lat, q.Get("vejnavn"), q.Get("husnr"), q.Get("postnr"))
}
