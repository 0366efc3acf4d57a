package models

// Listing is one normalized marketplace offer ready for presentation.
// Derived from heterogeneous upstream shapes, never mutated after the
// enrichment pass, not persisted beyond the response cycle.
type Listing struct {
	Title       string
	Price       string  // display form, empty when the upstream carried none
	PriceValue  float64 // numeric form, 0 when unknown
	City        string
	Date        string
	URL         string
	Description string
}

// PriceStats holds aggregate statistics over listings with a known
// positive price. The all-zero value is a sentinel meaning "insufficient
// data" — it is produced whenever fewer than two listings qualify.
type PriceStats struct {
	Mean float64
	Min  float64
	Max  float64
}

// Insufficient reports whether the stats are the "no analysis" sentinel.
func (s PriceStats) Insufficient() bool {
	return s.Mean == 0 && s.Min == 0 && s.Max == 0
}
