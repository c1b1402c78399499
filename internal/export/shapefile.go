package export

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/jonas-p/go-shp"

	"github.com/ps-vitor/salgspriser/internal/domain"
)

const (
	addressWidth = 254
	// WGS 84, written next to the .shp so GIS tools pick the right CRS
	wgs84PRJ = `GEOGCS["GCS_WGS_1984",DATUM["D_WGS_1984",SPHEROID["WGS_1984",6378137.0,298.257223563]],PRIMEM["Greenwich",0.0],UNIT["Degree",0.0174532925199433]]`
)

var shapeFields = []shp.Field{
	shp.StringField("ADDRESS", addressWidth),
	shp.FloatField("PRICE", 18, 2),
}

// WriteShapefile writes a POINT shapefile (.shp, .shx, .dbf, .prj) at path.
func WriteShapefile(path string, records []domain.EnrichedRecord) error {
	base := path
	if strings.HasSuffix(strings.ToLower(base), ".shp") {
		base = base[:len(base)-len(".shp")]
	}

	if err := writeShapes(path, records); err != nil {
		_ = os.Remove(base + "dbf")
		return err
	}
	// go-shp v0.1.1 names the attribute table <base>dbf
	if err := os.Rename(base+"dbf", base+".dbf"); err != nil {
		return fmt.Errorf("shapefile: attribute table: %w", err)
	}
	if err := os.WriteFile(base+".prj", []byte(wgs84PRJ), 0o644); err != nil {
		return fmt.Errorf("shapefile: write projection: %w", err)
	}
	return nil
}

func writeShapes(path string, records []domain.EnrichedRecord) error {
	w, err := shp.Create(path, shp.POINT)
	if err != nil {
		return fmt.Errorf("shapefile: create %q: %w", path, err)
	}
	defer w.Close()

	if err := w.SetFields(shapeFields); err != nil {
		return fmt.Errorf("shapefile: fields: %w", err)
	}
	for _, r := range records {
		row := int(w.Write(&shp.Point{X: r.Longitude, Y: r.Latitude}))
		if err := w.WriteAttribute(row, 0, truncate(r.Address, addressWidth)); err != nil {
			return fmt.Errorf("shapefile: row %d address: %w", row, err)
		}
		if err := w.WriteAttribute(row, 1, r.Price); err != nil {
			return fmt.Errorf("shapefile: row %d price: %w", row, err)
		}
	}
	return nil
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	s = s[:n]
	for !utf8.ValidString(s) {
		s = s[:len(s)-1]
	}
	return s
}
