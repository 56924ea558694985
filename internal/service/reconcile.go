package service

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/jagatstore/jagat-backend/internal/model"
	"github.com/jagatstore/jagat-backend/internal/repository"
)

// Reconciler copies completed payments into the ledger table.  It runs
// inline after every payment insert and as the out-of-band `jagatctl
// reconcile` job; both paths go through Run, which is idempotent, so a
// crash between the payment insert and the ledger write is recovered on
// the next run.
//
// Ledger rows written here carry the source payment ID and are matched by
// it.  Rows from older files carry no ID and are matched by their
// (created_at, amount) pair, the only identifying content the historical
// layout kept.  The double scan is O(payments × ledger); fine at this
// scale, and the dedup semantics must survive any future indexing.
type Reconciler struct {
	Payments *repository.PaymentRepo
	Users    *repository.UserRepo
	Ledger   *repository.LedgerRepo
	Log      *zap.Logger
}

func NewReconciler(p *repository.PaymentRepo, u *repository.UserRepo, l *repository.LedgerRepo, log *zap.Logger) *Reconciler {
	return &Reconciler{Payments: p, Users: u, Ledger: l, Log: log}
}

// Run appends every completed payment that is not yet in the ledger and
// returns how many entries it added.  A write failure is returned for
// logging; the payments table is never touched, so the run can simply be
// repeated.
func (r *Reconciler) Run() (int, error) {
	payments := r.Payments.All()
	ledger := r.Ledger.All()

	users := make(map[int]model.User)
	for _, u := range r.Users.All() {
		users[u.ID] = u
	}

	added := 0
	for _, p := range payments {
		if p.Status != model.StatusCompleted {
			continue
		}
		if ledgerContains(ledger, p) {
			continue
		}
		entry := buildLedgerEntry(p, users[p.UserID])
		ledger = append(ledger, entry)
		added++
	}
	if added == 0 {
		return 0, nil
	}
	if err := r.Ledger.Save(ledger); err != nil {
		return added, err
	}
	r.Log.Info("ledger reconciled", zap.Int("added", added), zap.Int("total", len(ledger)))
	return added, nil
}

func ledgerContains(entries []model.LedgerEntry, p model.Payment) bool {
	for _, e := range entries {
		if e.PaymentID != 0 {
			if e.PaymentID == p.ID {
				return true
			}
			continue
		}
		// Legacy row without a payment id: content match.
		if e.CreatedAt.Equal(p.CreatedAt) && e.Amount == p.Amount {
			return true
		}
	}
	return false
}

func buildLedgerEntry(p model.Payment, u model.User) model.LedgerEntry {
	items, _ := json.Marshal(p.Items)
	return model.LedgerEntry{
		PaymentID:     p.ID,
		FullName:      u.FullName,
		Email:         u.Email,
		Phone:         u.Phone,
		Amount:        p.Amount,
		Items:         string(items),
		PaymentMethod: p.PaymentMethod,
		Status:        p.Status,
		CreatedAt:     p.CreatedAt,
		Shipping:      p.Shipping,
	}
}
