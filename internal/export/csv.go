package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/ps-vitor/salgspriser/internal/domain"
)

var csvHeader = []string{"address", "price", "latitude", "longitude"}

// WriteCSV writes one row per record in dataset order.
func WriteCSV(w io.Writer, records []domain.EnrichedRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}
	for i, r := range records {
		row := []string{
			r.Address,
			strconv.FormatFloat(r.Price, 'f', -1, 64),
			strconv.FormatFloat(r.Latitude, 'f', -1, 64),
			strconv.FormatFloat(r.Longitude, 'f', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("csv: write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("csv: flush: %w", err)
	}
	return nil
}
