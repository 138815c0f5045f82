package utils

import (
	"time" // expiration handling

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
	"github.com/google/uuid"       // random session identifiers
)

// SessionToken represents a signed HS256 JWT bound to one logical
// connection. The Token field is handed to the client; SID is the
// session identifier minted at login and used as the key into the
// server-side session registry, so the token carries identity while
// search state stays on the server.
type SessionToken struct {
	Token string    // the serialized JWT string
	SID   string    // session id embedded in the "sid" claim
	Exp   time.Time // the UTC expiration time
}

// NewSessionToken builds and signs a session JWT for an authenticated
// user. Claims: sub (username), sid (fresh UUID), exp and iat.
func NewSessionToken(secret, username string, ttlMin int) (SessionToken, error) {
	sid := uuid.NewString()
	exp := time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"sub": username,
		"sid": sid,
		"exp": exp.Unix(),
		"iat": time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return SessionToken{}, err
	}
	return SessionToken{Token: signed, SID: sid, Exp: exp}, nil
}
