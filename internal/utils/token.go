package utils // package utils provides helper functions for token creation and hashing

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthToken represents a signed JWT along with its expiry.  Tokens are
// issued on register and login, live for the configured TTL (24h by
// default) and carry the user's id and email as claims.
type AuthToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// NewAuthToken builds and signs an HS256 JWT for a user.  The claims are
// the user ID and email plus the standard exp and iat timestamps; the
// bearer middleware reads id and email back out on every protected
// request.
func NewAuthToken(secret string, userID int, email string, ttl time.Duration) (AuthToken, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := jwt.MapClaims{
		"id":    userID,
		"email": email,
		"exp":   exp.Unix(),
		"iat":   now.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AuthToken{}, err
	}
	return AuthToken{Token: signed, Exp: exp}, nil
}
