// Package booking implements the booking transaction engine: the
// capacity-checked reservation, payment, cancellation and listing
// operations. Every entry point executes as one atomic unit against
// the shared store (begin, validate, conditional write, commit) and
// survives serialization conflicts by retrying the whole body against
// a fresh view of the store.
package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/iliyamo/flight-reservation/internal/model"
	"github.com/iliyamo/flight-reservation/internal/session"
	"github.com/iliyamo/flight-reservation/internal/store"
)

// Engine runs booking operations against a transactional store. It
// holds no mutable state of its own; all shared state lives in the
// store and all per-connection state in the session, so one Engine
// serves every session concurrently.
type Engine struct {
	store store.Store
}

// NewEngine returns an Engine over the given store.
func NewEngine(st store.Store) *Engine { return &Engine{store: st} }

// runTx executes fn inside a serializable transaction and commits it.
// On a transient conflict the whole body is re-run from the top: the
// world may have changed, so every validation re-reads current state.
// The loop is conflict-driven, not count-driven; boundedness comes from
// the store's own deadlock and lock-wait detection, which aborts one of
// two conflicting transactions rather than stalling both forever.
func (e *Engine) runTx(ctx context.Context, op string, fn func(tx store.Tx) error) error {
	for {
		err := e.attempt(ctx, op, fn)
		if store.IsConflict(err) {
			continue
		}
		return err
	}
}

// attempt runs fn in one transaction with exactly one resolution on
// every exit path. A transaction still open after commit/rollback is a
// fatal internal invariant violation: it would silently hold locks and
// block every other session, so it is reported as ErrDanglingTx after
// forcing a reset, never as a business failure.
func (e *Engine) attempt(ctx context.Context, op string, fn func(tx store.Tx) error) error {
	tx, err := e.store.Begin(ctx)
	if err != nil {
		return err
	}
	err = fn(tx)
	if err == nil {
		err = tx.Commit()
	}
	if err != nil {
		_ = tx.Rollback()
	}
	if !tx.Resolved() {
		_ = tx.Rollback()
		return fmt.Errorf("%w after %s", store.ErrDanglingTx, op)
	}
	return err
}

// Book reserves the itinerary at the given display index of the
// session's current search result and returns the new reservation id.
// Inside the transaction it re-checks the one-booking-per-day rule and
// every leg's remaining capacity against committed state, allocates the
// next rid from the shared counter, and inserts the reservation unpaid.
func (e *Engine) Book(ctx context.Context, sess *session.Session, index int) (int64, error) {
	if sess == nil {
		return 0, ErrNotLoggedIn
	}
	it, ok := sess.ItineraryAt(index)
	if !ok {
		return 0, ErrNoSuchItinerary
	}
	var rid int64
	err := e.runTx(ctx, "book", func(tx store.Tx) error {
		dup, err := tx.HasActiveOnDate(ctx, sess.Username, it.FlightDate())
		if err != nil {
			return err
		}
		if dup {
			return ErrDuplicateDateBooking
		}
		for _, leg := range it.Legs {
			if leg == nil {
				continue
			}
			// Capacity is re-read inside the transaction rather than
			// trusted from the search snapshot, so the comparison and
			// the insert commit against the same view.
			f, err := tx.FlightByID(ctx, leg.FID)
			if err != nil {
				return err
			}
			taken, err := tx.ActiveLegCount(ctx, leg.FID)
			if err != nil {
				return err
			}
			if taken >= f.Capacity {
				return ErrCapacityExceeded
			}
		}
		rid, err = tx.NextRID(ctx)
		if err != nil {
			return err
		}
		r := &model.Reservation{
			RID:        rid,
			Username:   sess.Username,
			FID1:       it.Legs[0].FID,
			FlightDate: it.FlightDate(),
			TotalPrice: it.TotalPrice(),
		}
		if it.Legs[1] != nil {
			fid2 := it.Legs[1].FID
			r.FID2 = &fid2
		}
		return tx.InsertReservation(ctx, r)
	})
	if err != nil {
		return 0, err
	}
	return rid, nil
}

// Pay settles a pending-unpaid reservation owned by the caller,
// debiting the balance and flipping the paid flag in one transaction.
// A reservation that is missing, foreign, already paid or canceled is
// reported uniformly as ErrReservationNotFound.
func (e *Engine) Pay(ctx context.Context, sess *session.Session, rid int64) (int, error) {
	if sess == nil {
		return 0, ErrNotLoggedIn
	}
	var remaining int
	err := e.runTx(ctx, "pay", func(tx store.Tx) error {
		r, err := tx.ReservationByID(ctx, rid)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrReservationNotFound
			}
			return err
		}
		if r.Username != sess.Username || r.Paid || r.Canceled {
			return ErrReservationNotFound
		}
		u, err := tx.UserByName(ctx, sess.Username)
		if err != nil {
			return err
		}
		if r.TotalPrice > u.Balance {
			return &InsufficientFundsError{Balance: u.Balance, Cost: r.TotalPrice}
		}
		remaining = u.Balance - r.TotalPrice
		if err := tx.UpdateBalance(ctx, sess.Username, remaining); err != nil {
			return err
		}
		return tx.SetPaid(ctx, rid)
	})
	if err != nil {
		return 0, err
	}
	return remaining, nil
}

// Cancel marks the caller's reservation canceled and refunds its price
// when it had been paid, in the same transaction. Canceling an unpaid
// reservation simply skips the refund. The rid is permanently retired:
// the counter never moves backwards, so it can never be handed out
// again. The returned amount is what was credited back, zero for an
// unpaid reservation.
func (e *Engine) Cancel(ctx context.Context, sess *session.Session, rid int64) (int, error) {
	if sess == nil {
		return 0, ErrNotLoggedIn
	}
	refund := 0
	err := e.runTx(ctx, "cancel", func(tx store.Tx) error {
		refund = 0 // retries recompute the refund
		r, err := tx.ReservationByID(ctx, rid)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrReservationNotFound
			}
			return err
		}
		if r.Username != sess.Username {
			return ErrReservationNotFound
		}
		if r.Canceled {
			return ErrAlreadyCanceled
		}
		if err := tx.SetCanceled(ctx, rid); err != nil {
			return err
		}
		if r.Paid {
			u, err := tx.UserByName(ctx, sess.Username)
			if err != nil {
				return err
			}
			if err := tx.UpdateBalance(ctx, sess.Username, u.Balance+r.TotalPrice); err != nil {
				return err
			}
			refund = r.TotalPrice
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return refund, nil
}

// ListReservations returns the caller's active reservations ordered by
// rid ascending, with each leg resolved to full flight details inside
// the same transaction so the listing is a consistent snapshot. An
// empty slice is a valid outcome, distinct from having no session.
func (e *Engine) ListReservations(ctx context.Context, sess *session.Session) ([]model.ReservationDetail, error) {
	if sess == nil {
		return nil, ErrNotLoggedIn
	}
	var out []model.ReservationDetail
	err := e.runTx(ctx, "reservations", func(tx store.Tx) error {
		out = out[:0] // retries rebuild the listing from scratch
		rs, err := tx.ActiveReservationsByUser(ctx, sess.Username)
		if err != nil {
			return err
		}
		for _, r := range rs {
			det := model.ReservationDetail{RID: r.RID, Paid: r.Paid, Price: r.TotalPrice}
			f1, err := tx.FlightByID(ctx, r.FID1)
			if err != nil {
				return err
			}
			det.Legs = append(det.Legs, *f1)
			if r.FID2 != nil {
				f2, err := tx.FlightByID(ctx, *r.FID2)
				if err != nil {
					return err
				}
				det.Legs = append(det.Legs, *f2)
			}
			out = append(out, det)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
