package model

import "time"

// Payment status and delivery status only ever take these values; the
// checkout flow records every accepted order as completed/processing.
const (
	StatusCompleted    = "completed"
	DeliveryProcessing = "processing"
)

// Item is one purchased line of an order.
type Item struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// ShippingAddress carries the delivery details of an order.  RT and RW are
// the Indonesian neighborhood and hamlet unit numbers.  ShippingDays is the
// courier estimate chosen at checkout; zero means the server picks one.
type ShippingAddress struct {
	FullName     string `json:"fullName"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	RT           string `json:"rt"`
	RW           string `json:"rw"`
	PostalCode   string `json:"postalCode"`
	ShippingDays int    `json:"shippingDays,omitempty"`
}

// Payment mirrors a row of the Payments sheet.
type Payment struct {
	ID                int             `json:"id"`
	UserID            int             `json:"userId"`
	Amount            float64         `json:"amount"`
	Items             []Item          `json:"items"`
	PaymentMethod     string          `json:"paymentMethod"`
	BankAccount       string          `json:"bankAccount,omitempty"`
	BankName          string          `json:"bankName,omitempty"`
	Status            string          `json:"status"`
	DeliveryStatus    string          `json:"deliveryStatus"`
	DeliveryDays      int             `json:"deliveryDays"`
	EstimatedDelivery time.Time       `json:"estimatedDelivery"`
	CreatedAt         time.Time       `json:"createdAt"`
	Shipping          ShippingAddress `json:"shippingAddress"`
}
