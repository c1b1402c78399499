// Package export hands the dataset over to mapping and plotting tools.
package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ps-vitor/salgspriser/internal/domain"
)

const (
	FormatCSV       = "csv"
	FormatGeoJSON   = "geojson"
	FormatShapefile = "shp"
)

// ErrUnknownFormat is returned by Write for an unsupported format name.
var ErrUnknownFormat = errors.New("unknown export format")

// Formats lists the accepted format names.
func Formats() []string {
	return []string{FormatCSV, FormatGeoJSON, FormatShapefile}
}

// FormatFromPath guesses the format from the file extension.
func FormatFromPath(path string) (string, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, true
	case ".geojson", ".json":
		return FormatGeoJSON, true
	case ".shp":
		return FormatShapefile, true
	}
	return "", false
}

// Write stores records at path in the given format, creating parent
// directories as needed.
func Write(format, path string, records []domain.EnrichedRecord) error {
	format = strings.ToLower(strings.TrimSpace(format))
	switch format {
	case FormatCSV, FormatGeoJSON, FormatShapefile:
	default:
		return fmt.Errorf("%w %q (want one of %s)", ErrUnknownFormat, format, strings.Join(Formats(), ", "))
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("export: create output dir: %w", err)
		}
	}

	if format == FormatShapefile {
		return WriteShapefile(path, records)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: create %q: %w", path, err)
	}
	if format == FormatCSV {
		err = WriteCSV(f, records)
	} else {
		err = WriteGeoJSON(f, records)
	}
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("export: close %q: %w", path, cerr)
	}
	return err
}
