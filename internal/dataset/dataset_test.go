package dataset

import (
	"testing"

	"github.com/ps-vitor/salgspriser/internal/domain"
)

func listing(page, idx int, street, number string, price float64) domain.Listing {
	return domain.Listing{
		Page:         page,
		Index:        idx,
		PricePerArea: price,
		Address:      domain.Address{Street: street, HouseNumber: number, PostalCode: "6700", City: "Esbjerg"},
	}
}

func TestAssembler_KeepsInsertionOrder(t *testing.T) {
	a := NewAssembler(nil)
	a.Add(listing(1, 1, "Grundtvigs Alle", "7", 1234567), domain.GeoCoordinate{Latitude: 55.47, Longitude: 8.45})
	a.Skip(listing(1, 2, "Nowhere", "1", 10), "no match")
	a.Add(listing(2, 1, "Algade", "3", 20000), domain.GeoCoordinate{Latitude: 55.5, Longitude: 8.5})
	// duplicates stay
	a.Add(listing(2, 1, "Algade", "3", 20000), domain.GeoCoordinate{Latitude: 55.5, Longitude: 8.5})

	ds := a.Dataset()
	if ds.Len() != 3 {
		t.Fatalf("len=%d want 3", ds.Len())
	}
	recs := ds.Records()
	if recs[0].Address != "Grundtvigs Alle 7, 6700 Esbjerg" || recs[0].Price != 1234567 {
		t.Errorf("first record=%+v", recs[0])
	}
	if recs[0].Latitude != 55.47 || recs[0].Longitude != 8.45 {
		t.Errorf("coordinates=%+v", recs[0])
	}
	if recs[1].Page != 2 || recs[1].Index != 1 {
		t.Errorf("provenance=%+v", recs[1])
	}

	un := ds.Unresolved()
	if len(un) != 1 || un[0].Reason != "no match" || un[0].Listing.Index != 2 {
		t.Fatalf("unresolved=%+v", un)
	}
}

func TestRecords_ReturnsCopy(t *testing.T) {
	ds := New()
	ds.Append(domain.EnrichedRecord{Address: "a"})
	recs := ds.Records()
	recs[0].Address = "changed"
	if ds.Records()[0].Address != "a" {
		t.Fatal("Records must not expose the backing slice")
	}
}
