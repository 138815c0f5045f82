// Sentinel errors shared by all store implementations. Higher layers
// compare against these with errors.Is; implementation-specific causes
// (driver error codes and the like) are wrapped so they stay visible
// in logs without leaking into control flow.
package store

import "errors"

// ErrNotFound is returned by point reads when no row matches.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert violates a uniqueness
// constraint, such as registering a username that is already taken.
var ErrDuplicate = errors.New("duplicate key")

// ErrConflict is the transient serialization-conflict signal: the
// store aborted the transaction because committing it would violate
// serializable isolation. Callers roll back and retry the whole
// operation; ErrConflict must never surface to users.
var ErrConflict = errors.New("transaction conflict")

// ErrDanglingTx indicates a transaction was left open after an
// operation finished. This is an internal invariant violation, not a
// business failure: an open transaction would silently hold locks and
// block every other session's bookings.
var ErrDanglingTx = errors.New("dangling open transaction")

// IsConflict reports whether err is (or wraps) the transient conflict
// signal and is therefore safe to retry.
func IsConflict(err error) bool { return errors.Is(err, ErrConflict) }
