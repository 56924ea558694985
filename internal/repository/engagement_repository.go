package repository

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/jagatstore/jagat-backend/internal/model"
	"github.com/jagatstore/jagat-backend/internal/store"
)

const (
	newsletterSheet = "Newsletter"
	contactSheet    = "Contact"
)

var (
	newsletterHeaders = []string{"id", "email", "subscribed_at"}
	contactHeaders    = []string{"id", "name", "email", "subject", "message", "submitted_at"}
)

// NewsletterRepo stores subscriptions in newsletter.xlsx.
type NewsletterRepo struct {
	Store *store.Store
	Path  string
}

func NewNewsletterRepo(s *store.Store, dataDir string) *NewsletterRepo {
	return &NewsletterRepo{Store: s, Path: filepath.Join(dataDir, "newsletter.xlsx")}
}

func (r *NewsletterRepo) All() []model.Subscription {
	rows := r.Store.Load(r.Path, newsletterSheet)
	subs := make([]model.Subscription, 0, len(rows))
	for _, row := range rows {
		subs = append(subs, model.Subscription{
			ID:           atoi(row["id"]),
			Email:        row["email"],
			SubscribedAt: parseTime(row["subscribed_at"]),
		})
	}
	return subs
}

func (r *NewsletterRepo) FindByEmail(email string) (model.Subscription, bool) {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, s := range r.All() {
		if strings.ToLower(s.Email) == email {
			return s, true
		}
	}
	return model.Subscription{}, false
}

func (r *NewsletterRepo) Create(sub model.Subscription) (model.Subscription, error) {
	rows := r.Store.Load(r.Path, newsletterSheet)
	sub.ID = NextID(rows)
	sub.Email = strings.ToLower(strings.TrimSpace(sub.Email))
	if sub.SubscribedAt.IsZero() {
		sub.SubscribedAt = time.Now().UTC()
	}
	rows = append(rows, store.Row{
		"id":            itoa(sub.ID),
		"email":         sub.Email,
		"subscribed_at": formatTime(sub.SubscribedAt),
	})
	return sub, r.Store.Save(r.Path, newsletterSheet, newsletterHeaders, rows)
}

// ContactRepo stores contact-form messages in contact.xlsx.
type ContactRepo struct {
	Store *store.Store
	Path  string
}

func NewContactRepo(s *store.Store, dataDir string) *ContactRepo {
	return &ContactRepo{Store: s, Path: filepath.Join(dataDir, "contact.xlsx")}
}

func (r *ContactRepo) Create(m model.ContactMessage) (model.ContactMessage, error) {
	rows := r.Store.Load(r.Path, contactSheet)
	m.ID = NextID(rows)
	if m.SubmittedAt.IsZero() {
		m.SubmittedAt = time.Now().UTC()
	}
	rows = append(rows, store.Row{
		"id":           itoa(m.ID),
		"name":         m.Name,
		"email":        strings.ToLower(strings.TrimSpace(m.Email)),
		"subject":      m.Subject,
		"message":      m.Message,
		"submitted_at": formatTime(m.SubmittedAt),
	})
	return m, r.Store.Save(r.Path, contactSheet, contactHeaders, rows)
}
