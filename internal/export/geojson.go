package export

import (
	"fmt"
	"io"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/ps-vitor/salgspriser/internal/domain"
)

// FeatureCollection maps each record to a Point feature at [lon, lat].
func FeatureCollection(records []domain.EnrichedRecord) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, r := range records {
		f := geojson.NewFeature(orb.Point{r.Longitude, r.Latitude})
		f.Properties["address"] = r.Address
		f.Properties["price"] = r.Price
		f.Properties["page"] = r.Page
		f.Properties["index"] = r.Index
		fc.Append(f)
	}
	return fc
}

func WriteGeoJSON(w io.Writer, records []domain.EnrichedRecord) error {
	b, err := FeatureCollection(records).MarshalJSON()
	if err != nil {
		return fmt.Errorf("geojson: marshal: %w", err)
	}
	if _, err := w.Write(b); err != nil {
		return fmt.Errorf("geojson: write: %w", err)
	}
	return nil
}
