package domain

import "time"

type ProductStatus string

const (
	ProductStatusActive    ProductStatus = "ACTIVE"
	ProductStatusQueued    ProductStatus = "QUEUED"
	ProductStatusExhausted ProductStatus = "EXHAUSTED"
)

// Product is a purchased ride pass. Rows are never deleted; an exhausted
// product stays behind as the purchase history.
//
// At most one product per card is ACTIVE and at most one is QUEUED at any
// instant. Only Promote and Debit on the product ledger may change
// RidesRemaining or Status after insert.
type Product struct {
	ID             string
	CardNumber     string
	Type           string // display label, e.g. "Weekly (10 Rides)"
	RidesRemaining int
	Status         ProductStatus
	PurchaseDate   time.Time
	ExpiryDate     time.Time
}
