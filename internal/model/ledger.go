package model

import "time"

// LedgerEntry is the denormalized copy of a completed payment joined with
// its user, as written to the Lunas sheet.  PaymentID points back at the
// source payment; it is zero on rows written by older versions of the
// system, which are identified by their (CreatedAt, Amount) pair instead.
type LedgerEntry struct {
	PaymentID     int
	FullName      string
	Email         string
	Phone         string
	Amount        float64
	Items         string // items of the source payment, as serialized JSON
	PaymentMethod string
	Status        string
	CreatedAt     time.Time
	Shipping      ShippingAddress
}
