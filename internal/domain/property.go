// internal/domain/property.go
package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// MinYear is the first year the listing site has sale data for.
const MinYear = 1992

// PropertyType is one of the fixed property categories the search endpoint accepts.
type PropertyType string

const (
	House     PropertyType = "house"
	Terraced  PropertyType = "terraced"
	OwnerFlat PropertyType = "owner-flat"
	Holiday   PropertyType = "holiday"
	Farm      PropertyType = "farm"
	AllTypes  PropertyType = "all"
)

var propertyTokens = map[PropertyType]string{
	House:     "Villa",
	Terraced:  "Rækkehus",
	OwnerFlat: "Ejerlejlighed",
	Holiday:   "Fritidshus",
	Farm:      "Landejendom",
	AllTypes:  "Alle",
}

// PropertyTypes lists the supported types in display order.
func PropertyTypes() []PropertyType {
	return []PropertyType{House, Terraced, OwnerFlat, Holiday, Farm, AllTypes}
}

// Token returns the value sent as the "type" query parameter.
func (t PropertyType) Token() string {
	return propertyTokens[t]
}

// ParsePropertyType accepts either the slug ("owner-flat") or the site token ("Ejerlejlighed").
func ParsePropertyType(s string) (PropertyType, error) {
	s = strings.TrimSpace(s)
	for t, token := range propertyTokens {
		if strings.EqualFold(s, string(t)) || strings.EqualFold(s, token) {
			return t, nil
		}
	}
	return "", &ValidationError{
		Field:   "type",
		Message: fmt.Sprintf("Unknown property type %q.", s),
	}
}

// EndYear is either an explicit year or Today.
type EndYear int

// Today means "up to and including the current date".
const Today EndYear = 0

func (e EndYear) IsToday() bool { return e == Today }

func (e EndYear) String() string {
	if e.IsToday() {
		return "today"
	}
	return strconv.Itoa(int(e))
}

// Query describes one scrape run. It is not modified after creation.
type Query struct {
	StartYear int
	EndYear   EndYear
	Type      PropertyType
}

// Validate checks the invariants of a query built outside the interactive prompts.
func (q Query) Validate(currentYear int) error {
	if q.StartYear < MinYear || q.StartYear > currentYear {
		return &ValidationError{
			Field:   "start",
			Message: fmt.Sprintf("Please enter a year between %d and %d.", MinYear, currentYear),
		}
	}
	if !q.EndYear.IsToday() && int(q.EndYear) <= q.StartYear {
		return &ValidationError{
			Field:   "end",
			Message: fmt.Sprintf("End year must be greater than starting year (%d).", q.StartYear),
		}
	}
	if _, ok := propertyTokens[q.Type]; !ok {
		return &ValidationError{Field: "type", Message: fmt.Sprintf("Unknown property type %q.", q.Type)}
	}
	return nil
}

func (q Query) String() string {
	return fmt.Sprintf("%s %d-%s", q.Type, q.StartYear, q.EndYear)
}
