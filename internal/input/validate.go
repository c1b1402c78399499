// Package input turns user-entered year strings into a domain.Query.
package input

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ps-vitor/salgspriser/internal/domain"
)

// ParseStartYear accepts an integer year in [domain.MinYear, currentYear].
func ParseStartYear(in string, currentYear int) (int, error) {
	year, err := strconv.Atoi(strings.TrimSpace(in))
	if err != nil || year < domain.MinYear || year > currentYear {
		return 0, &domain.ValidationError{
			Field:   "start",
			Message: fmt.Sprintf("Please enter a year between %d and %d.", domain.MinYear, currentYear),
		}
	}
	return year, nil
}

// NeedsEndYear is false when the start year is the current year; the end is then always today.
func NeedsEndYear(start, currentYear int) bool {
	return start != currentYear
}

// ParseEndYear resolves the end year for a validated start year. Blank input
// and "today" mean domain.Today. A year after currentYear is coerced to
// domain.Today and reported through the coerced flag.
func ParseEndYear(in string, start, currentYear int) (end domain.EndYear, coerced bool, err error) {
	in = strings.TrimSpace(in)
	if in == "" || strings.EqualFold(in, "today") {
		return domain.Today, false, nil
	}

	year, convErr := strconv.Atoi(in)
	switch {
	case convErr != nil:
		return 0, false, &domain.ValidationError{
			Field:   "end",
			Message: fmt.Sprintf("Please enter a year between %d and %d.", start+1, currentYear),
		}
	case year <= start:
		return 0, false, &domain.ValidationError{
			Field:   "end",
			Message: fmt.Sprintf("End year must be greater than starting year (%d).", start),
		}
	case year > currentYear:
		return domain.Today, true, nil
	}
	return domain.EndYear(year), false, nil
}

// BuildQuery validates both years in one go, for non-interactive callers.
// Prompting rules apply: a start in the current year ignores end.
func BuildQuery(start, end string, t domain.PropertyType, currentYear int) (domain.Query, bool, error) {
	s, err := ParseStartYear(start, currentYear)
	if err != nil {
		return domain.Query{}, false, err
	}
	q := domain.Query{StartYear: s, EndYear: domain.Today, Type: t}
	var coerced bool
	if NeedsEndYear(s, currentYear) {
		if q.EndYear, coerced, err = ParseEndYear(end, s, currentYear); err != nil {
			return domain.Query{}, false, err
		}
	}
	if err := q.Validate(currentYear); err != nil {
		return domain.Query{}, false, err
	}
	return q, coerced, nil
}

// Confirmation is printed once the query is known.
func Confirmation(q domain.Query) string {
	return fmt.Sprintf("This program should fetch prices from %d until %s.", q.StartYear, q.EndYear)
}
