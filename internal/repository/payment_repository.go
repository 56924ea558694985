package repository

import (
	"encoding/json"
	"path/filepath"
	"time"

	"github.com/jagatstore/jagat-backend/internal/model"
	"github.com/jagatstore/jagat-backend/internal/store"
)

const paymentsSheet = "Payments"

var paymentHeaders = []string{
	"id", "user_id", "amount", "items", "payment_method",
	"bank_account", "bank_name", "status", "delivery_status",
	"delivery_days", "estimated_delivery", "created_at",
	"shipping_full_name", "shipping_phone", "shipping_address",
	"shipping_rt", "shipping_rw", "shipping_postal_code",
}

// PaymentRepo stores payments in payments.xlsx.
type PaymentRepo struct {
	Store *store.Store
	Path  string
}

func NewPaymentRepo(s *store.Store, dataDir string) *PaymentRepo {
	return &PaymentRepo{Store: s, Path: filepath.Join(dataDir, "payments.xlsx")}
}

// All returns every payment in table order.
func (r *PaymentRepo) All() []model.Payment {
	rows := r.Store.Load(r.Path, paymentsSheet)
	payments := make([]model.Payment, 0, len(rows))
	for _, row := range rows {
		payments = append(payments, decodePayment(row))
	}
	return payments
}

// ForUser returns the caller's payments in table order.
func (r *PaymentRepo) ForUser(userID int) []model.Payment {
	var out []model.Payment
	for _, p := range r.All() {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out
}

// FindForUser returns the payment only if it belongs to the user, so a
// caller can never read another customer's receipt by guessing IDs.
func (r *PaymentRepo) FindForUser(id, userID int) (model.Payment, bool) {
	for _, p := range r.All() {
		if p.ID == id && p.UserID == userID {
			return p, true
		}
	}
	return model.Payment{}, false
}

// Create assigns the next ID, appends the payment and rewrites the table.
func (r *PaymentRepo) Create(p model.Payment) (model.Payment, error) {
	rows := r.Store.Load(r.Path, paymentsSheet)
	p.ID = NextID(rows)
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	rows = append(rows, encodePayment(p))
	return p, r.Store.Save(r.Path, paymentsSheet, paymentHeaders, rows)
}

func encodePayment(p model.Payment) store.Row {
	items, _ := json.Marshal(p.Items)
	return store.Row{
		"id":                   itoa(p.ID),
		"user_id":              itoa(p.UserID),
		"amount":               ftoa(p.Amount),
		"items":                string(items),
		"payment_method":       p.PaymentMethod,
		"bank_account":         p.BankAccount,
		"bank_name":            p.BankName,
		"status":               p.Status,
		"delivery_status":      p.DeliveryStatus,
		"delivery_days":        itoa(p.DeliveryDays),
		"estimated_delivery":   formatTime(p.EstimatedDelivery),
		"created_at":           formatTime(p.CreatedAt),
		"shipping_full_name":   p.Shipping.FullName,
		"shipping_phone":       p.Shipping.Phone,
		"shipping_address":     p.Shipping.Address,
		"shipping_rt":          p.Shipping.RT,
		"shipping_rw":          p.Shipping.RW,
		"shipping_postal_code": p.Shipping.PostalCode,
	}
}

func decodePayment(row store.Row) model.Payment {
	var items []model.Item
	if raw := row["items"]; raw != "" {
		_ = json.Unmarshal([]byte(raw), &items)
	}
	return model.Payment{
		ID:                atoi(row["id"]),
		UserID:            atoi(row["user_id"]),
		Amount:            atof(row["amount"]),
		Items:             items,
		PaymentMethod:     row["payment_method"],
		BankAccount:       row["bank_account"],
		BankName:          row["bank_name"],
		Status:            row["status"],
		DeliveryStatus:    row["delivery_status"],
		DeliveryDays:      atoi(row["delivery_days"]),
		EstimatedDelivery: parseTime(row["estimated_delivery"]),
		CreatedAt:         parseTime(row["created_at"]),
		Shipping: model.ShippingAddress{
			FullName:   row["shipping_full_name"],
			Phone:      row["shipping_phone"],
			Address:    row["shipping_address"],
			RT:         row["shipping_rt"],
			RW:         row["shipping_rw"],
			PostalCode: row["shipping_postal_code"],
		},
	}
}
