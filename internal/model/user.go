package model

import "time"

// AuthProvider names the source of a user's credentials.
type AuthProvider string

const (
	ProviderLocal    AuthProvider = "local"
	ProviderFacebook AuthProvider = "facebook"
	ProviderGoogle   AuthProvider = "google"
)

// Identity is the tagged credential variant shared by the users table.
// Local accounts carry a bcrypt hash and no provider ID; federated
// accounts carry a provider ID and no hash.  Constructors keep the two
// shapes from mixing.
type Identity struct {
	Provider     AuthProvider
	PasswordHash string // populated only for local accounts
	ProviderID   string // populated only for federated accounts
}

// LocalIdentity returns the credential variant for a password account.
func LocalIdentity(passwordHash string) Identity {
	return Identity{Provider: ProviderLocal, PasswordHash: passwordHash}
}

// FederatedIdentity returns the credential variant for an OAuth account.
func FederatedIdentity(provider AuthProvider, providerID string) Identity {
	return Identity{Provider: provider, ProviderID: providerID}
}

// IsLocal reports whether the account authenticates with a password.
func (i Identity) IsLocal() bool {
	return i.Provider == ProviderLocal || i.Provider == ""
}

// User mirrors a row of the Users sheet.
type User struct {
	ID        int
	FullName  string
	Email     string // stored lowercase; uniqueness is case-insensitive
	Phone     string
	Identity  Identity
	CreatedAt time.Time
}
