package domain

import "fmt"

// ProductKind is a purchasable pass type.
type ProductKind string

const (
	KindWeekly  ProductKind = "Weekly"
	KindMonthly ProductKind = "Monthly"
)

// CatalogEntry fixes the ride allotment and validity window for a kind.
type CatalogEntry struct {
	Kind      ProductKind
	Rides     int
	ValidDays int
}

var catalog = map[ProductKind]CatalogEntry{
	KindWeekly:  {Kind: KindWeekly, Rides: 10, ValidDays: 14},
	KindMonthly: {Kind: KindMonthly, Rides: 48, ValidDays: 37},
}

// LookupKind resolves a purchase request's product type against the catalog.
func LookupKind(kind ProductKind) (CatalogEntry, error) {
	entry, ok := catalog[kind]
	if !ok {
		return CatalogEntry{}, ErrInvalidProduct
	}
	return entry, nil
}

// Label is the display name stored on the product row, e.g. "Weekly (10 Rides)".
func (e CatalogEntry) Label() string {
	return fmt.Sprintf("%s (%d Rides)", e.Kind, e.Rides)
}
