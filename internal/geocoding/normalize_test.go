package geocoding

import (
	"errors"
	"testing"

	"github.com/ps-vitor/salgspriser/internal/domain"
)

func TestNormalizeGeoJSON(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`{"type":"point","coordinates":[1,2]}`, `{"type":"Point","coordinates":[1,2]}`},
		{`{"type" : "POINT"}`, `{"type" : "Point"}`},
		{`{"type":"featurecollection"}`, `{"type":"FeatureCollection"}`},
		{`{"type":"multipolygon"}`, `{"type":"MultiPolygon"}`},
		{`{"type":"name"}`, `{"type":"name"}`},
		{`{"type":"Point"}`, `{"type":"Point"}`},
	}
	for _, tt := range tests {
		if got := string(NormalizeGeoJSON([]byte(tt.in))); got != tt.want {
			t.Errorf("NormalizeGeoJSON(%s) = %s; want %s", tt.in, got, tt.want)
		}
	}
}

func TestParseResponse(t *testing.T) {
	body := `{"type":"FeatureCollection","features":[{"type":"Feature","geometry":{"type":"point","coordinates":[8.4521,55.4703]},"properties":{}}]}`
	got, err := ParseResponse([]byte(body))
	if err != nil {
		t.Fatalf("ParseResponse: %v", err)
	}
	if got.Latitude != 55.4703 || got.Longitude != 8.4521 {
		t.Fatalf("lon/lat must be swapped into named fields, got %+v", got)
	}

	_, err = ParseResponse([]byte(`{"type":"FeatureCollection","features":[]}`))
	if !errors.Is(err, domain.ErrNoMatch) {
		t.Fatalf("empty collection: got %v", err)
	}

	single := `{"type":"feature","geometry":{"type":"Point","coordinates":[12.5,55.6]},"properties":null}`
	got, err = ParseResponse([]byte(single))
	if err != nil || got.Latitude != 55.6 {
		t.Fatalf("bare feature: %+v, %v", got, err)
	}

	_, err = ParseResponse([]byte(`<html>login required</html>`))
	var pe *domain.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError, got %v", err)
	}
}
