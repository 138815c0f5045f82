// Package auth implements the credential gate: account creation and
// username/password authentication against the transactional store.
// The gate only guards session creation; it never touches the booking
// engine's invariants.
package auth

import (
	"context"
	"errors"

	"github.com/iliyamo/flight-reservation/internal/model"
	"github.com/iliyamo/flight-reservation/internal/session"
	"github.com/iliyamo/flight-reservation/internal/store"
	"github.com/iliyamo/flight-reservation/internal/utils"
)

// ErrInvalidCredentials covers both unknown usernames and wrong
// passwords. Callers must not distinguish the two cases, which would
// otherwise allow username enumeration.
var ErrInvalidCredentials = errors.New("login failed")

// ErrAlreadyLoggedIn is returned when a connection that already holds
// an authenticated identity attempts to authenticate again. Identity is
// never silently replaced.
var ErrAlreadyLoggedIn = errors.New("user already logged in")

// ErrUsernameTaken is returned by CreateAccount for duplicate usernames.
var ErrUsernameTaken = errors.New("username already taken")

// ErrNegativeBalance rejects account creation with a negative initial
// balance.
var ErrNegativeBalance = errors.New("initial balance must be non-negative")

// Params fixes the credential-derivation parameters process-wide.
// Changing them invalidates stored hashes, so they are configuration
// constants, not per-request inputs.
type Params struct {
	Iterations int // PBKDF2 work factor
	KeyLen     int // derived key length in bytes
	SaltLen    int // random salt length in bytes
}

// Gate authenticates users and creates accounts.
type Gate struct {
	store  store.Store
	params Params
}

// NewGate returns a Gate over the given store.
func NewGate(st store.Store, p Params) *Gate {
	return &Gate{store: st, params: p}
}

// Authenticate verifies a username/password pair and returns a fresh
// session on success. Unknown user and wrong password are reported
// identically as ErrInvalidCredentials.
func (g *Gate) Authenticate(ctx context.Context, username, password string) (*session.Session, error) {
	tx, err := g.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }() // read-only, nothing to commit

	u, err := tx.UserByName(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	derived := utils.DeriveKey(password, u.Salt, g.params.Iterations, g.params.KeyLen)
	if !utils.CredentialsEqual(derived, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return session.New(u.Username), nil
}

// CreateAccount registers a new user with the given starting balance.
// The insert runs in its own transaction and is retried on transient
// store conflicts like every other store mutation in the system.
func (g *Gate) CreateAccount(ctx context.Context, username, password string, initialBalance int) error {
	if initialBalance < 0 {
		return ErrNegativeBalance
	}
	salt, err := utils.NewSalt(g.params.SaltLen)
	if err != nil {
		return err
	}
	u := &model.User{
		Username:     username,
		Salt:         salt,
		PasswordHash: utils.DeriveKey(password, salt, g.params.Iterations, g.params.KeyLen),
		Balance:      initialBalance,
	}
	for {
		err := g.createOnce(ctx, u)
		if store.IsConflict(err) {
			continue
		}
		if errors.Is(err, store.ErrDuplicate) {
			return ErrUsernameTaken
		}
		return err
	}
}

func (g *Gate) createOnce(ctx context.Context, u *model.User) error {
	tx, err := g.store.Begin(ctx)
	if err != nil {
		return err
	}
	if err := tx.InsertUser(ctx, u); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		_ = tx.Rollback()
		return err
	}
	return nil
}
