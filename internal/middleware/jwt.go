package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// JWTAuth returns an Echo middleware that validates a Bearer token and
// injects the id and email claims into the request context.  The provided
// secret must match the one used when issuing tokens.  Handlers behind
// this middleware read the caller via `c.Get("user_id")` (an int) and
// `c.Get("email")`.
//
// A missing token answers 401; a present but invalid or expired token
// answers 403.  Clients rely on the distinction: 401 sends them to login,
// 403 tells them to drop the stored token.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Access token required"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				// Reject tokens signed with anything but HMAC.
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "Invalid or expired token"})
			}

			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "Invalid or expired token"})
			}
			// Numeric claims come back as float64 from the decoder.
			id, _ := claims["id"].(float64)
			email, _ := claims["email"].(string)
			if id <= 0 {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "Invalid or expired token"})
			}
			c.Set("user_id", int(id))
			c.Set("email", email)
			return next(c)
		}
	}
}
