package mysql

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/flight-reservation/internal/model"
	"github.com/iliyamo/flight-reservation/internal/store"
)

// Tx wraps one *sql.Tx. A Tx is owned exclusively by the request that
// began it and must be resolved exactly once; the done flag keeps the
// open-transaction count honest when a failed Commit is followed by
// the caller's unconditional Rollback.
type Tx struct {
	tx    *sql.Tx
	store *Store
	done  bool
}

// Resolved reports whether Commit or Rollback has run.
func (t *Tx) Resolved() bool { return t.done }

func (t *Tx) finish() {
	if !t.done {
		t.done = true
		t.store.open.Add(-1)
	}
}

// Commit commits the transaction. A serialization failure detected at
// commit time is reported as store.ErrConflict like any other.
func (t *Tx) Commit() error {
	if t.done {
		return nil
	}
	err := t.tx.Commit()
	t.finish()
	return wrapErr(err)
}

// Rollback aborts the transaction. Rolling back an already-resolved
// transaction is a no-op so callers can defer it unconditionally.
func (t *Tx) Rollback() error {
	if t.done {
		return nil
	}
	err := t.tx.Rollback()
	t.finish()
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return wrapErr(err)
}

func (t *Tx) UserByName(ctx context.Context, username string) (*model.User, error) {
	const q = `SELECT username, salt, password_hash, balance FROM users WHERE username = ?`
	var u model.User
	err := t.tx.QueryRowContext(ctx, q, username).Scan(&u.Username, &u.Salt, &u.PasswordHash, &u.Balance)
	if err != nil {
		return nil, wrapErr(err)
	}
	return &u, nil
}

func (t *Tx) InsertUser(ctx context.Context, u *model.User) error {
	const q = `INSERT INTO users (username, salt, password_hash, balance) VALUES (?, ?, ?, ?)`
	_, err := t.tx.ExecContext(ctx, q, u.Username, u.Salt, u.PasswordHash, u.Balance)
	return wrapErr(err)
}

func (t *Tx) UpdateBalance(ctx context.Context, username string, balance int) error {
	const q = `UPDATE users SET balance = ? WHERE username = ?`
	_, err := t.tx.ExecContext(ctx, q, balance, username)
	return wrapErr(err)
}

// FlightByID reads catalog data inside the transaction so the capacity
// value is consistent with the leg counts compared against it.
func (t *Tx) FlightByID(ctx context.Context, fid int64) (*model.Flight, error) {
	const q = `SELECT ` + flightColumns + ` FROM flights WHERE fid = ?`
	f, err := scanFlight(t.tx.QueryRowContext(ctx, q, fid))
	if err != nil {
		return nil, wrapErr(err)
	}
	return f, nil
}

// ActiveLegCount counts non-canceled reservations holding a seat on
// the flight, whether as first or second leg. The count, the capacity
// comparison and the insert all run inside the same transaction;
// anything weaker would not be a real invariant.
func (t *Tx) ActiveLegCount(ctx context.Context, fid int64) (int, error) {
	const q = `SELECT COUNT(*) FROM reservations WHERE (fid1 = ? OR fid2 = ?) AND canceled = 0`
	var n int
	if err := t.tx.QueryRowContext(ctx, q, fid, fid).Scan(&n); err != nil {
		return 0, wrapErr(err)
	}
	return n, nil
}

func (t *Tx) HasActiveOnDate(ctx context.Context, username string, day int) (bool, error) {
	const q = `SELECT COUNT(*) FROM reservations WHERE username = ? AND flight_date = ? AND canceled = 0`
	var n int
	if err := t.tx.QueryRowContext(ctx, q, username, day).Scan(&n); err != nil {
		return false, wrapErr(err)
	}
	return n > 0, nil
}

// NextRID reads and advances the single-row reservation counter. The
// first booking ever seeds the row. Because this mutation commits with
// the reservation insert, two bookers racing for the counter conflict
// and one retries, so rids stay unique and strictly increasing.
func (t *Tx) NextRID(ctx context.Context) (int64, error) {
	var rid int64
	err := t.tx.QueryRowContext(ctx, `SELECT next_rid FROM reservation_counter`).Scan(&rid)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := t.tx.ExecContext(ctx, `INSERT INTO reservation_counter (next_rid) VALUES (2)`); err != nil {
			return 0, wrapErr(err)
		}
		return 1, nil
	case err != nil:
		return 0, wrapErr(err)
	}
	if _, err := t.tx.ExecContext(ctx, `UPDATE reservation_counter SET next_rid = ?`, rid+1); err != nil {
		return 0, wrapErr(err)
	}
	return rid, nil
}

func (t *Tx) InsertReservation(ctx context.Context, r *model.Reservation) error {
	const q = `INSERT INTO reservations (rid, username, fid1, fid2, flight_date, total_price, paid, canceled)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	var fid2 sql.NullInt64
	if r.FID2 != nil {
		fid2 = sql.NullInt64{Int64: *r.FID2, Valid: true}
	}
	_, err := t.tx.ExecContext(ctx, q, r.RID, r.Username, r.FID1, fid2, r.FlightDate, r.TotalPrice, r.Paid, r.Canceled)
	return wrapErr(err)
}

func (t *Tx) ReservationByID(ctx context.Context, rid int64) (*model.Reservation, error) {
	const q = `SELECT rid, username, fid1, fid2, flight_date, total_price, paid, canceled
	           FROM reservations WHERE rid = ?`
	r, err := scanReservation(t.tx.QueryRowContext(ctx, q, rid))
	if err != nil {
		return nil, wrapErr(err)
	}
	return r, nil
}

func (t *Tx) SetPaid(ctx context.Context, rid int64) error {
	_, err := t.tx.ExecContext(ctx, `UPDATE reservations SET paid = 1 WHERE rid = ?`, rid)
	return wrapErr(err)
}

func (t *Tx) SetCanceled(ctx context.Context, rid int64) error {
	_, err := t.tx.ExecContext(ctx, `UPDATE reservations SET canceled = 1 WHERE rid = ?`, rid)
	return wrapErr(err)
}

func (t *Tx) ActiveReservationsByUser(ctx context.Context, username string) ([]model.Reservation, error) {
	const q = `SELECT rid, username, fid1, fid2, flight_date, total_price, paid, canceled
	           FROM reservations WHERE username = ? AND canceled = 0
	           ORDER BY rid ASC`
	rows, err := t.tx.QueryContext(ctx, q, username)
	if err != nil {
		return nil, wrapErr(err)
	}
	defer rows.Close()
	var out []model.Reservation
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, wrapErr(err)
		}
		out = append(out, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr(err)
	}
	return out, nil
}

func scanReservation(sc scanner) (*model.Reservation, error) {
	var r model.Reservation
	var fid2 sql.NullInt64
	err := sc.Scan(&r.RID, &r.Username, &r.FID1, &fid2, &r.FlightDate, &r.TotalPrice, &r.Paid, &r.Canceled)
	if err != nil {
		return nil, err
	}
	if fid2.Valid {
		v := fid2.Int64
		r.FID2 = &v
	}
	return &r, nil
}

var _ store.Tx = (*Tx)(nil)
