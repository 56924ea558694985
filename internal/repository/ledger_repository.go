package repository

import (
	"path/filepath"

	"github.com/jagatstore/jagat-backend/internal/model"
	"github.com/jagatstore/jagat-backend/internal/store"
)

const ledgerSheet = "Lunas"

// ledgerHeaders keep the historical Lunas layout; payment_id was added
// later so rows written by older versions simply lack the column.
var ledgerHeaders = []string{
	"payment_id", "fullName", "email", "phone", "amount", "items",
	"payment_method", "status", "created_at",
	"shipping_full_name", "shipping_phone", "shipping_address",
	"shipping_rt", "shipping_rw", "shipping_postal_code",
}

// LedgerRepo stores the reconciled-payments ledger in lunas.xlsx.  Unlike
// the other tables the ledger has no id column of its own; its rows are
// identified by the source payment (see service.Reconciler).
type LedgerRepo struct {
	Store *store.Store
	Path  string
}

func NewLedgerRepo(s *store.Store, dataDir string) *LedgerRepo {
	return &LedgerRepo{Store: s, Path: filepath.Join(dataDir, "lunas.xlsx")}
}

// All returns every ledger entry in table order.
func (r *LedgerRepo) All() []model.LedgerEntry {
	rows := r.Store.Load(r.Path, ledgerSheet)
	entries := make([]model.LedgerEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, decodeLedgerEntry(row))
	}
	return entries
}

// Save rewrites the whole ledger.
func (r *LedgerRepo) Save(entries []model.LedgerEntry) error {
	rows := make([]store.Row, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, encodeLedgerEntry(e))
	}
	return r.Store.Save(r.Path, ledgerSheet, ledgerHeaders, rows)
}

func encodeLedgerEntry(e model.LedgerEntry) store.Row {
	row := store.Row{
		"fullName":             e.FullName,
		"email":                e.Email,
		"phone":                e.Phone,
		"amount":               ftoa(e.Amount),
		"items":                e.Items,
		"payment_method":       e.PaymentMethod,
		"status":               e.Status,
		"created_at":           formatTime(e.CreatedAt),
		"shipping_full_name":   e.Shipping.FullName,
		"shipping_phone":       e.Shipping.Phone,
		"shipping_address":     e.Shipping.Address,
		"shipping_rt":          e.Shipping.RT,
		"shipping_rw":          e.Shipping.RW,
		"shipping_postal_code": e.Shipping.PostalCode,
	}
	if e.PaymentID != 0 {
		row["payment_id"] = itoa(e.PaymentID)
	}
	return row
}

func decodeLedgerEntry(row store.Row) model.LedgerEntry {
	return model.LedgerEntry{
		PaymentID:     atoi(row["payment_id"]),
		FullName:      row["fullName"],
		Email:         row["email"],
		Phone:         row["phone"],
		Amount:        atof(row["amount"]),
		Items:         row["items"],
		PaymentMethod: row["payment_method"],
		Status:        row["status"],
		CreatedAt:     parseTime(row["created_at"]),
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
