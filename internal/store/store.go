// Package store defines the boundary to the transactional data store
// used by the booking engine. The store is assumed to provide ACID
// transactions with serializable isolation, atomic commit/rollback and
// a conflict signal (ErrConflict) distinguishable from other failures.
// Implementations live in subpackages: mysql for production, memstore
// for tests and local development.
package store

import (
	"context"

	"github.com/iliyamo/flight-reservation/internal/model"
)

// Catalog exposes read-only lookups of the static flight catalog.
// Catalog reads have no conflict potential and may run outside of any
// transaction.
type Catalog interface {
	// FlightByID returns the flight with the given id or ErrNotFound.
	FlightByID(ctx context.Context, fid int64) (*model.Flight, error)
	// FlightsByRoute returns up to limit non-canceled direct flights
	// from origin to dest on the given day, ordered by
	// (actual_time, fid) ascending.
	FlightsByRoute(ctx context.Context, origin, dest string, day, limit int) ([]model.Flight, error)
	// ConnectingFlights returns up to limit one-stop itineraries
	// (F1, F2) where F1 departs origin, F2 arrives at dest, F1's
	// destination is F2's origin and differs from dest, both legs are
	// on the given day and neither is canceled, ordered by
	// (total duration, first fid) ascending.
	ConnectingFlights(ctx context.Context, origin, dest string, day, limit int) ([]model.Itinerary, error)
}

// Store is the full store boundary: catalog reads plus transactions.
type Store interface {
	Catalog

	// Begin opens a new serializable transaction. The caller owns the
	// returned Tx exclusively and must resolve it with exactly one
	// Commit or Rollback.
	Begin(ctx context.Context) (Tx, error)

	// OpenTx reports the number of transactions currently open on this
	// store. The booking engine checks it after every entry point; a
	// non-zero count there means a transaction was leaked, which would
	// silently hold locks against other sessions.
	OpenTx() int64
}

// Tx is one open transaction. All reads observe a state consistent
// with serializable isolation; Commit may fail with ErrConflict when
// the store aborts the transaction to preserve that guarantee, as may
// any individual read or write.
type Tx interface {
	// UserByName returns the user row or ErrNotFound.
	UserByName(ctx context.Context, username string) (*model.User, error)
	// InsertUser creates a new account. A username collision yields
	// ErrDuplicate.
	InsertUser(ctx context.Context, u *model.User) error
	// UpdateBalance sets the user's balance to the given value.
	UpdateBalance(ctx context.Context, username string, balance int) error

	// FlightByID returns catalog data for a flight within the
	// transaction, so capacity is read under the same isolation as the
	// reservation counts it is compared against.
	FlightByID(ctx context.Context, fid int64) (*model.Flight, error)

	// ActiveLegCount returns how many non-canceled reservations
	// reference fid as either leg.
	ActiveLegCount(ctx context.Context, fid int64) (int, error)
	// HasActiveOnDate reports whether the user already holds a
	// non-canceled reservation with the given flight date.
	HasActiveOnDate(ctx context.Context, username string, day int) (bool, error)
	// NextRID reads and advances the reservation-id counter. The
	// returned id is committed together with the reservation insert or
	// not at all.
	NextRID(ctx context.Context) (int64, error)
	// InsertReservation adds a new reservation row.
	InsertReservation(ctx context.Context, r *model.Reservation) error
	// ReservationByID returns the reservation row or ErrNotFound.
	ReservationByID(ctx context.Context, rid int64) (*model.Reservation, error)
	// SetPaid marks the reservation as paid.
	SetPaid(ctx context.Context, rid int64) error
	// SetCanceled marks the reservation as canceled, permanently
	// retiring its rid.
	SetCanceled(ctx context.Context, rid int64) error
	// ActiveReservationsByUser returns the user's non-canceled
	// reservations ordered by rid ascending.
	ActiveReservationsByUser(ctx context.Context, username string) ([]model.Reservation, error)

	Commit() error
	Rollback() error

	// Resolved reports whether the transaction has been committed or
	// rolled back. The engine's dangling-transaction guard checks it
	// after every attempt; an unresolved transaction there is a fatal
	// internal bug (ErrDanglingTx), never a business failure.
	Resolved() bool
}
