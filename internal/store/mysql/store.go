// Package mysql implements the store boundary on top of MySQL via
// database/sql. Transactions are opened with serializable isolation;
// the server's deadlock detection (error 1213) and lock-wait timeout
// (error 1205) provide the transient conflict signal that the booking
// engine's retry loop consumes.
//
// Expected schema:
//
//	users(username PK, salt VARBINARY, password_hash VARBINARY, balance INT)
//	flights(fid PK, day_of_month, carrier_id, flight_num, origin_city,
//	        dest_city, actual_time, capacity, price, canceled)
//	reservations(rid PK, username, fid1, fid2 NULL, flight_date,
//	             total_price, paid, canceled)
//	reservation_counter(next_rid INT) -- single row
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/flight-reservation/internal/store"
)

// Store implements store.Store over a MySQL connection pool.
type Store struct {
	db   *sql.DB
	open atomic.Int64
}

// New returns a Store bound to the given database pool.
func New(db *sql.DB) *Store { return &Store{db: db} }

// DB exposes the underlying pool for health checks.
func (s *Store) DB() *sql.DB { return s.db }

// Begin opens a serializable transaction and registers it in the
// open-transaction count used by the dangling-transaction guard.
func (s *Store) Begin(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, wrapErr(err)
	}
	s.open.Add(1)
	return &Tx{tx: tx, store: s}, nil
}

// OpenTx reports how many transactions are currently open on this store.
func (s *Store) OpenTx() int64 { return s.open.Load() }

// wrapErr maps driver failures onto the store's sentinel errors while
// keeping the original error in the chain. MySQL 1213 (deadlock) and
// 1205 (lock wait timeout) both mean the server aborted one of two
// conflicting transactions and the operation is safe to retry.
func wrapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case 1213, 1205:
			return fmt.Errorf("%w: %v", store.ErrConflict, err)
		case 1062:
			return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
		}
	}
	return err
}
