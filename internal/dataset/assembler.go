package dataset

import (
	"github.com/ps-vitor/salgspriser/internal/domain"
)

// Assembler turns listings and their coordinates into records.
type Assembler struct {
	ds *Dataset
}

func NewAssembler(ds *Dataset) *Assembler {
	if ds == nil {
		ds = New()
	}
	return &Assembler{ds: ds}
}

// Record builds the record for a placed listing.
func Record(l domain.Listing, c domain.GeoCoordinate) domain.EnrichedRecord {
	return domain.EnrichedRecord{
		Address:   l.Address.String(),
		Price:     l.PricePerArea,
		Latitude:  c.Latitude,
		Longitude: c.Longitude,
		Page:      l.Page,
		Index:     l.Index,
	}
}

func (a *Assembler) Add(l domain.Listing, c domain.GeoCoordinate) domain.EnrichedRecord {
	r := Record(l, c)
	a.ds.Append(r)
	return r
}

// Skip records a listing that will not appear in the table.
func (a *Assembler) Skip(l domain.Listing, reason string) {
	a.ds.appendUnresolved(domain.Unresolved{Listing: l, Reason: reason})
}

func (a *Assembler) Dataset() *Dataset { return a.ds }
