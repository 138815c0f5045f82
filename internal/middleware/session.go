package middleware // middleware provides reusable HTTP middleware for the API

import (
	"net/http" // HTTP status codes for responses
	"strings"  // prefix checking and trimming

	"github.com/golang-jwt/jwt/v5" // JWT library for parsing and validating tokens
	"github.com/labstack/echo/v4"  // Echo framework used for defining middleware

	"github.com/iliyamo/flight-reservation/internal/session"
)

// SessionAuth returns an Echo middleware that validates a Bearer
// session token and resolves it to the live session it was minted for.
// The token's sub claim carries the username and the sid claim keys the
// server-side session registry, where the search state lives. Requests
// whose session has been dropped (logout, restart) are rejected even if
// the token itself has not expired yet. Handlers access the session via
// c.Get("session").
func SessionAuth(secret string, sessions *session.Registry) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
			}
			sid, _ := claims["sid"].(string)
			sess, ok := sessions.Get(sid)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "session expired"})
			}

			// Handlers read the session itself; sid is kept for logout
			// and the username for rate-limit keying.
			c.Set("session", sess)
			c.Set("sid", sid)
			c.Set("username", sess.Username)
			return next(c)
		}
	}
}
