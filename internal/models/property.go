package models

import "fmt"

// PropertyType categorizes a listing.
type PropertyType string

const (
	PropertyTypeApartment PropertyType = "APARTMENT"
	PropertyTypeVilla     PropertyType = "VILLA"
	PropertyTypeLand      PropertyType = "LAND"
)

func (t PropertyType) IsValid() bool {
	switch t {
	case PropertyTypeApartment, PropertyTypeVilla, PropertyTypeLand:
		return true
	default:
		return false
	}
}

type Property struct {
	ID          int64        `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Location    string       `json:"location"`
	Price       float64      `json:"price"`
	SquareFeet  int          `json:"squareFeet"`
	Bedrooms    int          `json:"bedrooms"`
	Bathrooms   int          `json:"bathrooms"`
	YearBuilt   int          `json:"yearBuilt"`
	Type        PropertyType `json:"type"`
	Images      []string     `json:"images"`
	OwnerID     int64        `json:"ownerId"`
}

// Validate checks the listing bounds before it is sent to the backend.
func (p *Property) Validate() error {
	if p.Title == "" {
		return fmt.Errorf("title is required")
	}
	if p.Location == "" {
		return fmt.Errorf("location is required")
	}
	if p.Price <= 0 {
		return fmt.Errorf("price must be greater than zero")
	}
	if p.SquareFeet <= 0 {
		return fmt.Errorf("square feet must be greater than zero")
	}
	if p.Bedrooms < 0 {
		return fmt.Errorf("bedrooms cannot be negative")
	}
	if p.Bathrooms < 0 {
		return fmt.Errorf("bathrooms cannot be negative")
	}
	if p.YearBuilt < 1800 {
		return fmt.Errorf("year built must be 1800 or later")
	}
	if !p.Type.IsValid() {
		return fmt.Errorf("unknown property type: %s", p.Type)
	}
	return nil
}
