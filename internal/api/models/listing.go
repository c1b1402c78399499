// internal/api/models/listing.go

package models

import "github.com/ps-vitor/salgspriser/internal/domain"

type Listing struct {
	Address   string  `json:"address"`
	Price     float64 `json:"price"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Page      int     `json:"page"`
	Row       int     `json:"row"`
}

func FromRecords(records []domain.EnrichedRecord) []Listing {
	out := make([]Listing, 0, len(records))
	for _, r := range records {
		out = append(out, Listing{
			Address:   r.Address,
			Price:     r.Price,
			Latitude:  r.Latitude,
			Longitude: r.Longitude,
			Page:      r.Page,
			Row:       r.Index,
		})
	}
	return out
}

type Unresolved struct {
	Page    int    `json:"page"`
	Row     int    `json:"row"`
	Address string `json:"address"`
	Reason  string `json:"reason"`
}

func FromUnresolved(un []domain.Unresolved) []Unresolved {
	out := make([]Unresolved, 0, len(un))
	for _, u := range un {
		out = append(out, Unresolved{
			Page:    u.Listing.Page,
			Row:     u.Listing.Index,
			Address: u.Listing.Address.String(),
			Reason:  u.Reason,
		})
	}
	return out
}

type ScrapeResponse struct {
	Message    string       `json:"message"`
	Warning    string       `json:"warning,omitempty"`
	StartYear  int          `json:"start_year"`
	EndYear    string       `json:"end_year"`
	Type       string       `json:"type"`
	Records    int          `json:"records"`
	Unresolved []Unresolved `json:"unresolved"`
}

type Error struct {
	Error string `json:"error"`
}
