package repository

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/jagatstore/jagat-backend/internal/model"
	"github.com/jagatstore/jagat-backend/internal/store"
)

const usersSheet = "Users"

// userHeaders fixes the column order of users.xlsx.  The names match the
// files written by earlier versions of the system so existing workbooks
// keep loading.
var userHeaders = []string{
	"id", "fullName", "email", "phone", "password",
	"provider", "providerId", "created_at",
}

// UserRepo stores users in users.xlsx.  Email uniqueness is enforced by
// the registration handler, not here.
type UserRepo struct {
	Store *store.Store
	Path  string
}

func NewUserRepo(s *store.Store, dataDir string) *UserRepo {
	return &UserRepo{Store: s, Path: filepath.Join(dataDir, "users.xlsx")}
}

// All returns every user in table order.
func (r *UserRepo) All() []model.User {
	rows := r.Store.Load(r.Path, usersSheet)
	users := make([]model.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, decodeUser(row))
	}
	return users
}

// FindByEmail looks a user up by email, case-insensitively.
func (r *UserRepo) FindByEmail(email string) (model.User, bool) {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range r.All() {
		if strings.ToLower(u.Email) == email {
			return u, true
		}
	}
	return model.User{}, false
}

func (r *UserRepo) FindByID(id int) (model.User, bool) {
	for _, u := range r.All() {
		if u.ID == id {
			return u, true
		}
	}
	return model.User{}, false
}

// FindByProvider looks a federated account up by its provider identity.
func (r *UserRepo) FindByProvider(provider model.AuthProvider, providerID string) (model.User, bool) {
	for _, u := range r.All() {
		if u.Identity.Provider == provider && u.Identity.ProviderID == providerID {
			return u, true
		}
	}
	return model.User{}, false
}

// Create assigns the next ID, appends the user and rewrites the table.
// The returned user carries the assigned ID even when persistence fell
// back; the error is for logging, not for failing the request.
func (r *UserRepo) Create(u model.User) (model.User, error) {
	rows := r.Store.Load(r.Path, usersSheet)
	u.ID = NextID(rows)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	rows = append(rows, encodeUser(u))
	return u, r.Store.Save(r.Path, usersSheet, userHeaders, rows)
}

func encodeUser(u model.User) store.Row {
	row := store.Row{
		"id":         itoa(u.ID),
		"fullName":   u.FullName,
		"email":      u.Email,
		"phone":      u.Phone,
		"created_at": formatTime(u.CreatedAt),
	}
	if u.Identity.IsLocal() {
		row["password"] = u.Identity.PasswordHash
		row["provider"] = string(model.ProviderLocal)
	} else {
		row["provider"] = string(u.Identity.Provider)
		row["providerId"] = u.Identity.ProviderID
	}
	return row
}

func decodeUser(row store.Row) model.User {
	identity := model.LocalIdentity(row["password"])
	if p := model.AuthProvider(row["provider"]); p != "" && p != model.ProviderLocal {
		identity = model.FederatedIdentity(p, row["providerId"])
	}
	return model.User{
		ID:        atoi(row["id"]),
		FullName:  row["fullName"],
		Email:     row["email"],
		Phone:     row["phone"],
		Identity:  identity,
		CreatedAt: parseTime(row["created_at"]),
	}
}
