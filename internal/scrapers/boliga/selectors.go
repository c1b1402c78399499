package boliga

// Default selectors for the sold-listings search page.
const (
	ResultCountSelector = `table.searchResultSummary td label`
	RowSelector         = `table.searchResultTable tbody tr`
	AddressSelector     = `a`

	// 1-based cell holding the price per square metre.
	PriceCell = 4
	// 1-based cell holding the address anchor.
	AddressCell = 1
)
