// internal/domain/scraper.go
package domain

// Listing is one result row as scraped from a results page.
type Listing struct {
	Page         int
	Index        int
	RawAddress   string
	RawLocality  string
	PricePerArea float64
	Address      Address
}

// Address is the geocodable part of a listing address.
type Address struct {
	Street      string
	HouseNumber string
	PostalCode  string
	City        string
}

func (a Address) String() string {
	s := a.Street
	if a.HouseNumber != "" {
		s += " " + a.HouseNumber
	}
	if a.PostalCode != "" {
		s += ", " + a.PostalCode
		if a.City != "" {
			s += " " + a.City
		}
	}
	return s
}

type GeoCoordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Bounds is a latitude/longitude box.
type Bounds struct {
	MinLat float64
	MinLon float64
	MaxLat float64
	MaxLon float64
}

// Denmark is the box the geocoder's answers must fall in.
var Denmark = Bounds{MinLat: 54.5, MinLon: 8.0, MaxLat: 57.8, MaxLon: 15.2}

func (b Bounds) Contains(c GeoCoordinate) bool {
	return c.Latitude >= b.MinLat && c.Latitude <= b.MaxLat &&
		c.Longitude >= b.MinLon && c.Longitude <= b.MaxLon
}

// EnrichedRecord is one row of the final dataset.
type EnrichedRecord struct {
	Address   string  `json:"address"`
	Price     float64 `json:"price"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Page      int     `json:"page"`
	Index     int     `json:"index"`
}

// Unresolved is a listing the geocoder could not place.
type Unresolved struct {
	Listing Listing
	Reason  string
}
