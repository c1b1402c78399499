package boliga

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

var (
	errEmpty = errors.New("empty value")

	// everything except digits, the decimal comma and a sign
	priceJunk = regexp.MustCompile(`[^\d,\-]`)
)

// SplitStreet splits "Grundtvigs Alle 7" on the last space into street and
// house number. Floor and door designations after a comma are dropped first.
// A value without a space is returned as street with an empty house number.
func SplitStreet(s string) (street, number string, err error) {
	s = collapseSpace(s)
	if i := strings.IndexByte(s, ','); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	if s == "" {
		return "", "", errEmpty
	}
	i := strings.LastIndexByte(s, ' ')
	if i < 0 {
		return s, "", nil
	}
	return s[:i], s[i+1:], nil
}

// SplitLocality takes "6700 Esbjerg" apart; the first token is the postal code.
func SplitLocality(s string) (postalCode, city string, err error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return "", "", errEmpty
	}
	return fields[0], strings.Join(fields[1:], " "), nil
}

// ParsePrice converts "1.234.567" or "12.345 kr/m²" into a number. Dots and
// spaces are thousands separators, a comma is the decimal mark.
func ParsePrice(s string) (float64, error) {
	cleaned := priceJunk.ReplaceAllString(strings.TrimSpace(s), "")
	if cleaned == "" {
		return 0, errEmpty
	}
	return strconv.ParseFloat(strings.Replace(cleaned, ",", ".", 1), 64)
}

// ParseCountToken reads a result-count token such as "1.234".
func ParseCountToken(tok string) (int, bool) {
	tok = strings.ReplaceAll(tok, ".", "")
	if tok == "" {
		return 0, false
	}
	n, err := strconv.Atoi(tok)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
