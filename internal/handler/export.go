package handler

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/jagatstore/jagat-backend/internal/model"
)

// exportHeaders is the column layout of the download: the payment joined
// with its user, shaped like the ledger rather than the raw table.
var exportHeaders = []string{
	"fullName", "email", "phone", "amount", "items", "payment_method",
	"status", "created_at", "shipping_full_name", "shipping_phone",
	"shipping_address", "shipping_rt", "shipping_rw", "shipping_postal_code",
}

// buildExportWorkbook renders payments joined with their users into an
// in-memory xlsx workbook.
func buildExportWorkbook(payments []model.Payment, users map[int]model.User) ([]byte, error) {
	f := excelize.NewFile()
	// WriteTo needs the file open; close only after writing or on error.

	const sheet = "Payments"
	index, err := f.NewSheet(sheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	for col, header := range exportHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			f.Close()
			return nil, err
		}
	}

	for i, p := range payments {
		u := users[p.UserID]
		items, _ := json.Marshal(p.Items)
		values := []any{
			u.FullName, u.Email, u.Phone, p.Amount, string(items),
			p.PaymentMethod, p.Status, p.CreatedAt.Format("2006-01-02 15:04:05"),
			p.Shipping.FullName, p.Shipping.Phone, p.Shipping.Address,
			p.Shipping.RT, p.Shipping.RW, p.Shipping.PostalCode,
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				f.Close()
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				f.Close()
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
