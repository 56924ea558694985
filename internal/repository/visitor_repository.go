package repository

import (
	"path/filepath"
	"time"

	"github.com/jagatstore/jagat-backend/internal/model"
	"github.com/jagatstore/jagat-backend/internal/store"
)

const visitorsSheet = "Visitors"

var visitorHeaders = []string{"id", "ip", "country", "visited_at"}

// VisitorRepo stores visitor analytics in visitors.xlsx.
type VisitorRepo struct {
	Store *store.Store
	Path  string
}

func NewVisitorRepo(s *store.Store, dataDir string) *VisitorRepo {
	return &VisitorRepo{Store: s, Path: filepath.Join(dataDir, "visitors.xlsx")}
}

// All returns every visitor record in table order.
func (r *VisitorRepo) All() []model.Visitor {
	rows := r.Store.Load(r.Path, visitorsSheet)
	visitors := make([]model.Visitor, 0, len(rows))
	for _, row := range rows {
		visitors = append(visitors, decodeVisitor(row))
	}
	return visitors
}

// SeenSince reports whether the IP already has a visit after the cutoff.
// The tracker uses a one-hour cutoff to collapse repeat visits.
func (r *VisitorRepo) SeenSince(ip string, cutoff time.Time) bool {
	for _, v := range r.All() {
		if v.IP == ip && v.VisitedAt.After(cutoff) {
			return true
		}
	}
	return false
}

// Create assigns the next ID, appends the visitor and rewrites the table.
func (r *VisitorRepo) Create(v model.Visitor) (model.Visitor, error) {
	rows := r.Store.Load(r.Path, visitorsSheet)
	v.ID = NextID(rows)
	if v.VisitedAt.IsZero() {
		v.VisitedAt = time.Now().UTC()
	}
	rows = append(rows, encodeVisitor(v))
	return v, r.Store.Save(r.Path, visitorsSheet, visitorHeaders, rows)
}

func encodeVisitor(v model.Visitor) store.Row {
	return store.Row{
		"id":         itoa(v.ID),
		"ip":         v.IP,
		"country":    v.Country,
		"visited_at": formatTime(v.VisitedAt),
	}
}

func decodeVisitor(row store.Row) model.Visitor {
	return model.Visitor{
		ID:        atoi(row["id"]),
		IP:        row["ip"],
		Country:   row["country"],
		VisitedAt: parseTime(row["visited_at"]),
	}
}
