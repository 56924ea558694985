package handler

import (
	"fmt"
	"math/rand/v2"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/jagatstore/jagat-backend/internal/config"
	"github.com/jagatstore/jagat-backend/internal/model"
	"github.com/jagatstore/jagat-backend/internal/repository"
	"github.com/jagatstore/jagat-backend/internal/service"
)

// PaymentHandler bundles dependencies for checkout, order history,
// receipts and the export download.
type PaymentHandler struct {
	Cfg        config.Config
	Payments   *repository.PaymentRepo
	Users      *repository.UserRepo
	Reconciler *service.Reconciler
	Log        *zap.Logger
}

func NewPaymentHandler(cfg config.Config, p *repository.PaymentRepo, u *repository.UserRepo, rec *service.Reconciler, log *zap.Logger) *PaymentHandler {
	return &PaymentHandler{Cfg: cfg, Payments: p, Users: u, Reconciler: rec, Log: log}
}

// orderNumber renders a payment ID as the customer-facing order number.
func orderNumber(paymentID int) string {
	return fmt.Sprintf("JGT-%06d", paymentID)
}

// Create records a payment for the authenticated caller.  The request body
// is the same shape the client queues offline (model.PendingOrder), so a
// replayed pending order and a live checkout hit the same path.
//
// The ledger copy runs synchronously after the insert; its failure is
// logged and never rolls back or fails the already-committed payment.
func (h *PaymentHandler) Create(c echo.Context) error {
	var req model.PendingOrder
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request body"})
	}
	if req.Amount <= 0 || len(req.Items) == 0 || req.PaymentMethod == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Amount, items, and payment method are required"})
	}
	userID, _ := c.Get("user_id").(int)

	days := req.Shipping.ShippingDays
	if days < 1 {
		days = rand.IntN(5) + 1
	}
	now := time.Now().UTC()
	estimated := now.AddDate(0, 0, days)

	p, err := h.Payments.Create(model.Payment{
		UserID:            userID,
		Amount:            req.Amount,
		Items:             req.Items,
		PaymentMethod:     req.PaymentMethod,
		BankAccount:       req.BankAccount,
		BankName:          req.BankName,
		Status:            model.StatusCompleted,
		DeliveryStatus:    model.DeliveryProcessing,
		DeliveryDays:      days,
		EstimatedDelivery: estimated,
		CreatedAt:         now,
		Shipping:          req.Shipping,
	})
	if err != nil {
		h.Log.Error("payment not persisted", zap.Int("user_id", userID), zap.Error(err))
	}

	if _, err := h.Reconciler.Run(); err != nil {
		h.Log.Error("ledger reconcile failed after payment", zap.Int("payment_id", p.ID), zap.Error(err))
	}

	message := fmt.Sprintf(
		"Pembayaran berhasil! Pesanan Anda akan dikirim dalam %d hari. Estimasi tiba: %s. Terima kasih atas pembelian Anda!",
		days, estimated.Format("02/01/2006"))
	return c.JSON(http.StatusCreated, echo.Map{
		"message":           message,
		"paymentId":         p.ID,
		"deliveryDays":      days,
		"estimatedDelivery": estimated.Format(time.RFC3339),
		"orderNumber":       orderNumber(p.ID),
	})
}

// List returns the caller's payments.
func (h *PaymentHandler) List(c echo.Context) error {
	userID, _ := c.Get("user_id").(int)
	payments := h.Payments.ForUser(userID)
	if payments == nil {
		payments = []model.Payment{}
	}
	return c.JSON(http.StatusOK, payments)
}

// Receipt returns the joined payment+user view for one of the caller's
// payments.
func (h *PaymentHandler) Receipt(c echo.Context) error {
	userID, _ := c.Get("user_id").(int)
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Payment not found"})
	}
	p, ok := h.Payments.FindForUser(id, userID)
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Payment not found"})
	}
	u, _ := h.Users.FindByID(p.UserID)

	items := p.Items
	if items == nil {
		items = []model.Item{}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"orderNumber":       orderNumber(p.ID),
		"customerName":      u.FullName,
		"customerEmail":     u.Email,
		"customerPhone":     u.Phone,
		"amount":            p.Amount,
		"items":             items,
		"paymentMethod":     p.PaymentMethod,
		"bankAccount":       p.BankAccount,
		"bankName":          p.BankName,
		"status":            p.Status,
		"deliveryStatus":    p.DeliveryStatus,
		"deliveryDays":      p.DeliveryDays,
		"estimatedDelivery": p.EstimatedDelivery.Format(time.RFC3339),
		"createdAt":         p.CreatedAt.Format(time.RFC3339),
		"shippingAddress":   p.Shipping,
	})
}

// Export streams the payments table joined with users as an xlsx download.
func (h *PaymentHandler) Export(c echo.Context) error {
	users := make(map[int]model.User)
	for _, u := range h.Users.All() {
		users[u.ID] = u
	}
	buf, err := buildExportWorkbook(h.Payments.All(), users)
	if err != nil {
		h.Log.Error("export workbook build failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Server error during export"})
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename=payments.xlsx`)
	return c.Blob(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf)
}
