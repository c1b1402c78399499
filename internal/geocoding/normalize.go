package geocoding

import (
	"bytes"
	"regexp"
	"strings"
)

var (
	typeMember = regexp.MustCompile(`("type"\s*:\s*")([A-Za-z]+)(")`)

	canonicalTypes = map[string]string{}
)

func init() {
	for _, t := range []string{
		"Point", "MultiPoint", "LineString", "MultiLineString",
		"Polygon", "MultiPolygon", "GeometryCollection",
		"Feature", "FeatureCollection",
	} {
		canonicalTypes[strings.ToLower(t)] = t
	}
}

// NormalizeGeoJSON rewrites type members such as "point" or "POINT" to the
// GeoJSON names. Unknown type values (a crs "name", say) are left alone.
func NormalizeGeoJSON(b []byte) []byte {
	return typeMember.ReplaceAllFunc(b, func(m []byte) []byte {
		sub := typeMember.FindSubmatch(m)
		name, ok := canonicalTypes[strings.ToLower(string(sub[2]))]
		if !ok || name == string(sub[2]) {
			return m
		}
		return bytes.Join([][]byte{sub[1], []byte(name), sub[3]}, nil)
	})
}
