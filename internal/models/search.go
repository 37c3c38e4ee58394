package models

// SortKey selects the client-side ordering of search results.
type SortKey string

const (
	SortNewest    SortKey = "newest"
	SortPriceLow  SortKey = "price-low"
	SortPriceHigh SortKey = "price-high"
	SortSqftHigh  SortKey = "sqft-high"
)

// TypeFilterAll disables the property-type filter.
const TypeFilterAll PropertyType = "ALL"

// SearchFilterState is the user-edited filter input driving the search
// pipeline. MinSquareFeet of zero means no minimum.
type SearchFilterState struct {
	SearchTerm    string       `json:"searchTerm"`
	TypeFilter    PropertyType `json:"typeFilter"`
	MinSquareFeet int          `json:"minSquareFeet"`
	SortKey       SortKey      `json:"sortKey"`
}

// HasServerFilter reports whether any filter is active that the search
// endpoint should receive. When false the plain listing endpoint is used.
func (s SearchFilterState) HasServerFilter() bool {
	return s.SearchTerm != "" || (s.TypeFilter != "" && s.TypeFilter != TypeFilterAll) || s.MinSquareFeet > 0
}
