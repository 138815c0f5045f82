package memstore

import (
	"context"
	"sort"

	"github.com/iliyamo/flight-reservation/internal/model"
	"github.com/iliyamo/flight-reservation/internal/store"
)

// Tx stages writes in overlay maps while holding the store lock. Reads
// consult the overlay first so the transaction observes its own
// writes; the overlay is merged into the store at Commit or discarded
// at Rollback.
type Tx struct {
	s    *Store
	done bool

	users   map[string]model.User       // staged user upserts
	res     map[int64]model.Reservation // staged reservation upserts
	nextRID *int64                      // staged counter value
}

// Resolved reports whether Commit or Rollback has run.
func (t *Tx) Resolved() bool { return t.done }

func (t *Tx) finish() {
	if !t.done {
		t.done = true
		t.s.open.Add(-1)
		t.s.mu.Unlock()
	}
}

// Commit applies staged writes, or fails with store.ErrConflict when a
// conflict injection is pending (the staged writes are discarded, as a
// real store would discard an aborted transaction's effects).
func (t *Tx) Commit() error {
	if t.done {
		return nil
	}
	if t.s.conflicts > 0 {
		t.s.conflicts--
		t.finish()
		return store.ErrConflict
	}
	for name, u := range t.users {
		t.s.users[name] = u
	}
	for rid, r := range t.res {
		t.s.reservations[rid] = r
	}
	if t.nextRID != nil {
		t.s.nextRID = *t.nextRID
	}
	t.finish()
	return nil
}

// Rollback discards staged writes; resolving twice is a no-op.
func (t *Tx) Rollback() error {
	t.finish()
	return nil
}

func (t *Tx) UserByName(ctx context.Context, username string) (*model.User, error) {
	if u, ok := t.users[username]; ok {
		return &u, nil
	}
	if u, ok := t.s.users[username]; ok {
		return &u, nil
	}
	return nil, store.ErrNotFound
}

func (t *Tx) InsertUser(ctx context.Context, u *model.User) error {
	if _, err := t.UserByName(ctx, u.Username); err == nil {
		return store.ErrDuplicate
	}
	t.users[u.Username] = *u
	return nil
}

func (t *Tx) UpdateBalance(ctx context.Context, username string, balance int) error {
	u, err := t.UserByName(ctx, username)
	if err != nil {
		return err
	}
	u.Balance = balance
	t.users[username] = *u
	return nil
}

func (t *Tx) FlightByID(ctx context.Context, fid int64) (*model.Flight, error) {
	f, ok := t.s.flights[fid]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &f, nil
}

func (t *Tx) ActiveLegCount(ctx context.Context, fid int64) (int, error) {
	n := 0
	for _, r := range t.visible() {
		if r.Canceled {
			continue
		}
		if r.FID1 == fid || (r.FID2 != nil && *r.FID2 == fid) {
			n++
		}
	}
	return n, nil
}

func (t *Tx) HasActiveOnDate(ctx context.Context, username string, day int) (bool, error) {
	for _, r := range t.visible() {
		if r.Username == username && r.FlightDate == day && !r.Canceled {
			return true, nil
		}
	}
	return false, nil
}

func (t *Tx) NextRID(ctx context.Context) (int64, error) {
	cur := t.s.nextRID
	if t.nextRID != nil {
		cur = *t.nextRID
	}
	if cur == 0 {
		cur = 1
	}
	next := cur + 1
	t.nextRID = &next
	return cur, nil
}

func (t *Tx) InsertReservation(ctx context.Context, r *model.Reservation) error {
	t.res[r.RID] = *r
	return nil
}

func (t *Tx) ReservationByID(ctx context.Context, rid int64) (*model.Reservation, error) {
	if r, ok := t.res[rid]; ok {
		return &r, nil
	}
	if r, ok := t.s.reservations[rid]; ok {
		return &r, nil
	}
	return nil, store.ErrNotFound
}

func (t *Tx) SetPaid(ctx context.Context, rid int64) error {
	r, err := t.ReservationByID(ctx, rid)
	if err != nil {
		return err
	}
	r.Paid = true
	t.res[rid] = *r
	return nil
}

func (t *Tx) SetCanceled(ctx context.Context, rid int64) error {
	r, err := t.ReservationByID(ctx, rid)
	if err != nil {
		return err
	}
	r.Canceled = true
	t.res[rid] = *r
	return nil
}

func (t *Tx) ActiveReservationsByUser(ctx context.Context, username string) ([]model.Reservation, error) {
	var out []model.Reservation
	for _, r := range t.visible() {
		if r.Username == username && !r.Canceled {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RID < out[j].RID })
	return out, nil
}

// visible merges committed reservations with this transaction's staged
// writes, staged rows winning.
func (t *Tx) visible() map[int64]model.Reservation {
	merged := make(map[int64]model.Reservation, len(t.s.reservations)+len(t.res))
	for rid, r := range t.s.reservations {
		merged[rid] = r
	}
	for rid, r := range t.res {
		merged[rid] = r
	}
	return merged
}

var _ store.Tx = (*Tx)(nil)
