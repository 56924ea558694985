package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jagatstore/jagat-backend/internal/model"
	"github.com/jagatstore/jagat-backend/internal/repository"
	"github.com/jagatstore/jagat-backend/internal/store"
)

type reconcileFixture struct {
	users    *repository.UserRepo
	payments *repository.PaymentRepo
	ledger   *repository.LedgerRepo
	rec      *Reconciler
}

func newReconcileFixture(t *testing.T) *reconcileFixture {
	t.Helper()
	st := store.New(zap.NewNop())
	st.Sleep = func(time.Duration) {}
	dir := t.TempDir()
	f := &reconcileFixture{
		users:    repository.NewUserRepo(st, dir),
		payments: repository.NewPaymentRepo(st, dir),
		ledger:   repository.NewLedgerRepo(st, dir),
	}
	f.rec = NewReconciler(f.payments, f.users, f.ledger, zap.NewNop())
	return f
}

func TestReconcileJoinsUserAndIsIdempotent(t *testing.T) {
	f := newReconcileFixture(t)

	user, err := f.users.Create(model.User{
		FullName: "Budi Santoso",
		Email:    "budi@example.com",
		Phone:    "081234567890",
		Identity: model.LocalIdentity("hash"),
	})
	require.NoError(t, err)

	payment, err := f.payments.Create(model.Payment{
		UserID:        user.ID,
		Amount:        150000,
		Items:         []model.Item{{Name: "Kaos", Price: 150000, Quantity: 1}},
		PaymentMethod: "transfer",
		Status:        model.StatusCompleted,
		CreatedAt:     time.Date(2026, 5, 2, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	added, err := f.rec.Run()
	require.NoError(t, err)
	require.Equal(t, 1, added)

	entries := f.ledger.All()
	require.Len(t, entries, 1)
	require.Equal(t, payment.ID, entries[0].PaymentID)
	require.Equal(t, "Budi Santoso", entries[0].FullName)
	require.Equal(t, "budi@example.com", entries[0].Email)
	require.Equal(t, payment.Amount, entries[0].Amount)

	// A second run must find nothing new.
	added, err = f.rec.Run()
	require.NoError(t, err)
	require.Zero(t, added)
	require.Len(t, f.ledger.All(), 1)
}

func TestReconcileSkipsIncompletePayments(t *testing.T) {
	f := newReconcileFixture(t)

	_, err := f.payments.Create(model.Payment{UserID: 1, Amount: 100, Status: "pending"})
	require.NoError(t, err)

	added, err := f.rec.Run()
	require.NoError(t, err)
	require.Zero(t, added)
	require.Empty(t, f.ledger.All())
}

func TestReconcileMatchesLegacyRowsByContent(t *testing.T) {
	f := newReconcileFixture(t)

	createdAt := time.Date(2026, 5, 2, 10, 0, 0, 0, time.UTC)
	_, err := f.payments.Create(model.Payment{
		UserID:    1,
		Amount:    99000,
		Status:    model.StatusCompleted,
		CreatedAt: createdAt,
	})
	require.NoError(t, err)

	// Pre-seed a ledger row the way older versions wrote it: same payment,
	// no payment_id column.
	require.NoError(t, f.ledger.Save([]model.LedgerEntry{{
		FullName:  "Budi Santoso",
		Amount:    99000,
		Status:    model.StatusCompleted,
		CreatedAt: createdAt,
	}}))

	added, err := f.rec.Run()
	require.NoError(t, err)
	require.Zero(t, added)
	require.Len(t, f.ledger.All(), 1)
}

func TestReconcilePicksUpNewPaymentsOnly(t *testing.T) {
	f := newReconcileFixture(t)

	_, err := f.payments.Create(model.Payment{UserID: 1, Amount: 100, Status: model.StatusCompleted})
	require.NoError(t, err)
	_, err = f.rec.Run()
	require.NoError(t, err)

	_, err = f.payments.Create(model.Payment{UserID: 1, Amount: 200, Status: model.StatusCompleted})
	require.NoError(t, err)

	added, err := f.rec.Run()
	require.NoError(t, err)
	require.Equal(t, 1, added)
	require.Len(t, f.ledger.All(), 2)
}
