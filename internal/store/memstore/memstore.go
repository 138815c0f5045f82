// Package memstore is an in-memory implementation of the store
// boundary. It holds one big lock for the lifetime of each transaction,
// which makes every schedule trivially serializable; writes are staged
// in the transaction and applied atomically at commit. It backs the
// engine's tests and local development without a MySQL server, and can
// inject commit-time conflicts to exercise the engine's retry loop.
package memstore

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/iliyamo/flight-reservation/internal/model"
	"github.com/iliyamo/flight-reservation/internal/store"
)

// Store implements store.Store entirely in memory.
type Store struct {
	mu   sync.Mutex // held from Begin until Commit/Rollback
	open atomic.Int64

	users        map[string]model.User
	flights      map[int64]model.Flight
	reservations map[int64]model.Reservation
	nextRID      int64 // 0 until the first booking seeds the counter

	conflicts int // pending commit-time conflicts to inject
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		users:        make(map[string]model.User),
		flights:      make(map[int64]model.Flight),
		reservations: make(map[int64]model.Reservation),
	}
}

// AddFlight seeds a catalog row. The catalog is read-only to the
// engine, so seeding happens outside any transaction.
func (s *Store) AddFlight(f model.Flight) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flights[f.FID] = f
}

// InjectConflicts makes the next n Commit calls fail with
// store.ErrConflict, discarding their staged writes. Tests use it to
// verify that the engine retries transparently.
func (s *Store) InjectConflicts(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conflicts = n
}

// Begin acquires the store lock until the transaction is resolved.
func (s *Store) Begin(ctx context.Context) (store.Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.open.Add(1)
	return &Tx{
		s:     s,
		users: make(map[string]model.User),
		res:   make(map[int64]model.Reservation),
	}, nil
}

// OpenTx reports the number of unresolved transactions.
func (s *Store) OpenTx() int64 { return s.open.Load() }

// FlightByID implements the catalog read outside a transaction.
func (s *Store) FlightByID(ctx context.Context, fid int64) (*model.Flight, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.flights[fid]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &f, nil
}

// FlightsByRoute returns direct flights ordered by (actual_time, fid).
func (s *Store) FlightsByRoute(ctx context.Context, origin, dest string, day, limit int) ([]model.Flight, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Flight
	for _, f := range s.flights {
		if f.OriginCity == origin && f.DestCity == dest && f.DayOfMonth == day && !f.Canceled {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ActualTime != out[j].ActualTime {
			return out[i].ActualTime < out[j].ActualTime
		}
		return out[i].FID < out[j].FID
	})
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ConnectingFlights returns one-stop itineraries ordered by
// (total duration, first fid).
func (s *Store) ConnectingFlights(ctx context.Context, origin, dest string, day, limit int) ([]model.Itinerary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Itinerary
	for _, f1 := range s.flights {
		if f1.OriginCity != origin || f1.DestCity == dest || f1.DayOfMonth != day || f1.Canceled {
			continue
		}
		for _, f2 := range s.flights {
			if f2.OriginCity != f1.DestCity || f2.DestCity != dest || f2.DayOfMonth != day || f2.Canceled {
				continue
			}
			leg1, leg2 := f1, f2
			out = append(out, model.Itinerary{Legs: [2]*model.Flight{&leg1, &leg2}})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		ti, tj := out[i].TotalTime(), out[j].TotalTime()
		if ti != tj {
			return ti < tj
		}
		return out[i].Legs[0].FID < out[j].Legs[0].FID
	})
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

var _ store.Store = (*Store)(nil)
