package model

// PendingOrder is an order the client has accepted locally but the server
// has not acknowledged yet.  It is structurally identical to the payment
// creation request body and carries no server-assigned ID; the Payments
// table becomes the source of truth the moment the server accepts it.
type PendingOrder struct {
	Amount        float64         `json:"amount"`
	Items         []Item          `json:"items"`
	PaymentMethod string          `json:"paymentMethod"`
	BankAccount   string          `json:"bankAccount,omitempty"`
	BankName      string          `json:"bankName,omitempty"`
	Shipping      ShippingAddress `json:"shippingAddress"`
}
