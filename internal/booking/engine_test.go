package booking

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/flight-reservation/internal/model"
	"github.com/iliyamo/flight-reservation/internal/session"
	"github.com/iliyamo/flight-reservation/internal/store"
	"github.com/iliyamo/flight-reservation/internal/store/memstore"
)

func seedUser(t *testing.T, st *memstore.Store, username string, balance int) {
	t.Helper()
	ctx := context.Background()
	tx, err := st.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.InsertUser(ctx, &model.User{Username: username, Balance: balance}))
	require.NoError(t, tx.Commit())
}

func balanceOf(t *testing.T, st *memstore.Store, username string) int {
	t.Helper()
	ctx := context.Background()
	tx, err := st.Begin(ctx)
	require.NoError(t, err)
	defer func() { _ = tx.Rollback() }()
	u, err := tx.UserByName(ctx, username)
	require.NoError(t, err)
	return u.Balance
}

func testFlight(fid int64, day int, origin, dest string, duration, capacity, price int) model.Flight {
	return model.Flight{
		FID: fid, DayOfMonth: day, CarrierID: "AA", FlightNum: fmt.Sprintf("%d", 100+fid),
		OriginCity: origin, DestCity: dest, ActualTime: duration, Capacity: capacity, Price: price,
	}
}

func direct(f model.Flight) model.Itinerary {
	return model.Itinerary{Legs: [2]*model.Flight{&f, nil}}
}

func oneStop(f1, f2 model.Flight) model.Itinerary {
	return model.Itinerary{Legs: [2]*model.Flight{&f1, &f2}}
}

func sessionWith(username string, items ...model.Itinerary) *session.Session {
	s := session.New(username)
	s.SetSearchResult(items)
	return s
}

func TestBookAssignsSequentialRIDs(t *testing.T) {
	st := memstore.New()
	f1 := testFlight(1, 5, "Seattle WA", "Boston MA", 300, 10, 100)
	f2 := testFlight(2, 6, "Seattle WA", "Boston MA", 300, 10, 100)
	st.AddFlight(f1)
	st.AddFlight(f2)
	seedUser(t, st, "alice", 1000)
	seedUser(t, st, "bob", 1000)
	e := NewEngine(st)
	ctx := context.Background()

	rid1, err := e.Book(ctx, sessionWith("alice", direct(f1)), 0)
	require.NoError(t, err)
	rid2, err := e.Book(ctx, sessionWith("bob", direct(f2)), 0)
	require.NoError(t, err)

	assert.Equal(t, int64(1), rid1)
	assert.Equal(t, int64(2), rid2)
	assert.EqualValues(t, 0, st.OpenTx())
}

func TestBookRequiresSession(t *testing.T) {
	e := NewEngine(memstore.New())
	_, err := e.Book(context.Background(), nil, 0)
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestBookRejectsStaleOrMissingIndex(t *testing.T) {
	st := memstore.New()
	f := testFlight(1, 5, "Seattle WA", "Boston MA", 300, 10, 100)
	st.AddFlight(f)
	seedUser(t, st, "alice", 1000)
	e := NewEngine(st)
	ctx := context.Background()

	sess := session.New("alice")
	_, err := e.Book(ctx, sess, 0) // no search has run yet
	assert.ErrorIs(t, err, ErrNoSuchItinerary)

	sess.SetSearchResult([]model.Itinerary{direct(f)})
	_, err = e.Book(ctx, sess, 1)
	assert.ErrorIs(t, err, ErrNoSuchItinerary)

	// A new search replaces the list; old indices beyond it are gone.
	sess.SetSearchResult(nil)
	_, err = e.Book(ctx, sess, 0)
	assert.ErrorIs(t, err, ErrNoSuchItinerary)
}

func TestBookRejectsSecondBookingSameDay(t *testing.T) {
	st := memstore.New()
	f1 := testFlight(1, 5, "Seattle WA", "Boston MA", 300, 10, 100)
	f2 := testFlight(2, 5, "Seattle WA", "New York NY", 250, 10, 80)
	st.AddFlight(f1)
	st.AddFlight(f2)
	seedUser(t, st, "alice", 1000)
	e := NewEngine(st)
	ctx := context.Background()

	sess := sessionWith("alice", direct(f1), direct(f2))
	_, err := e.Book(ctx, sess, 0)
	require.NoError(t, err)

	_, err = e.Book(ctx, sess, 1)
	assert.ErrorIs(t, err, ErrDuplicateDateBooking)

	// The failed attempt must leave no trace.
	list, err := e.ListReservations(ctx, sess)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.EqualValues(t, 0, st.OpenTx())
}

func TestBookRejectsFullFlight(t *testing.T) {
	st := memstore.New()
	f := testFlight(1, 5, "Seattle WA", "Boston MA", 300, 1, 100)
	st.AddFlight(f)
	seedUser(t, st, "alice", 1000)
	seedUser(t, st, "bob", 1000)
	e := NewEngine(st)
	ctx := context.Background()

	_, err := e.Book(ctx, sessionWith("alice", direct(f)), 0)
	require.NoError(t, err)

	_, err = e.Book(ctx, sessionWith("bob", direct(f)), 0)
	assert.ErrorIs(t, err, ErrCapacityExceeded)
}

func TestBookCountsBothLegsAgainstCapacity(t *testing.T) {
	st := memstore.New()
	a := testFlight(1, 5, "Seattle WA", "Denver CO", 150, 5, 60)
	b := testFlight(2, 5, "Denver CO", "Boston MA", 200, 1, 90)
	c := testFlight(3, 5, "Boston MA", "Denver CO", 210, 5, 90)
	st.AddFlight(a)
	st.AddFlight(b)
	st.AddFlight(c)
	seedUser(t, st, "alice", 1000)
	seedUser(t, st, "bob", 1000)
	e := NewEngine(st)
	ctx := context.Background()

	// Alice takes the only seat on flight b as her second leg.
	_, err := e.Book(ctx, sessionWith("alice", oneStop(a, b)), 0)
	require.NoError(t, err)

	// Bob wants b as a first leg; the seat is gone either way.
	_, err = e.Book(ctx, sessionWith("bob", oneStop(b, c)), 0)
	assert.ErrorIs(t, err, ErrCapacityExceeded)
}

func TestConcurrentBookingOfLastSeat(t *testing.T) {
	st := memstore.New()
	f := testFlight(1, 5, "Seattle WA", "Boston MA", 300, 1, 100)
	st.AddFlight(f)
	const n = 10
	for i := 0; i < n; i++ {
		seedUser(t, st, fmt.Sprintf("user%d", i), 1000)
	}
	e := NewEngine(st)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = e.Book(ctx, sessionWith(fmt.Sprintf("user%d", i), direct(f)), 0)
		}(i)
	}
	wg.Wait()

	booked := 0
	for _, err := range errs {
		if err == nil {
			booked++
		} else {
			assert.ErrorIs(t, err, ErrCapacityExceeded)
		}
	}
	assert.Equal(t, 1, booked)
	assert.EqualValues(t, 0, st.OpenTx())
}

func TestRetriesOnConflict(t *testing.T) {
	st := memstore.New()
	f := testFlight(1, 5, "Seattle WA", "Boston MA", 300, 10, 100)
	st.AddFlight(f)
	seedUser(t, st, "alice", 1000)
	e := NewEngine(st)
	ctx := context.Background()

	st.InjectConflicts(2)
	rid, err := e.Book(ctx, sessionWith("alice", direct(f)), 0)
	require.NoError(t, err)
	// The aborted attempts' counter advances rolled back with them, so
	// the surviving booking still gets the first rid.
	assert.Equal(t, int64(1), rid)
	assert.EqualValues(t, 0, st.OpenTx())
}

// leakyStore hands out transactions that never report themselves
// resolved, simulating a store bug that would leak open transactions.
type leakyStore struct{ *memstore.Store }

type leakyTx struct{ store.Tx }

func (leakyTx) Resolved() bool { return false }

func (s leakyStore) Begin(ctx context.Context) (store.Tx, error) {
	tx, err := s.Store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return leakyTx{tx}, nil
}

func TestDanglingTransactionIsFatal(t *testing.T) {
	st := memstore.New()
	seedUser(t, st, "alice", 100)
	e := NewEngine(leakyStore{st})

	_, err := e.ListReservations(context.Background(), session.New("alice"))
	assert.ErrorIs(t, err, store.ErrDanglingTx)
}

func TestPayDebitsBalanceOnce(t *testing.T) {
	st := memstore.New()
	f := testFlight(1, 5, "Seattle WA", "Boston MA", 300, 10, 100)
	st.AddFlight(f)
	seedUser(t, st, "alice", 250)
	e := NewEngine(st)
	ctx := context.Background()

	sess := sessionWith("alice", direct(f))
	rid, err := e.Book(ctx, sess, 0)
	require.NoError(t, err)

	remaining, err := e.Pay(ctx, sess, rid)
	require.NoError(t, err)
	assert.Equal(t, 150, remaining)
	assert.Equal(t, 150, balanceOf(t, st, "alice"))

	// A paid reservation is no longer payable.
	_, err = e.Pay(ctx, sess, rid)
	assert.ErrorIs(t, err, ErrReservationNotFound)
	assert.Equal(t, 150, balanceOf(t, st, "alice"))
}

func TestPayInsufficientFunds(t *testing.T) {
	st := memstore.New()
	f := testFlight(1, 5, "Seattle WA", "Boston MA", 300, 10, 100)
	st.AddFlight(f)
	seedUser(t, st, "alice", 40)
	e := NewEngine(st)
	ctx := context.Background()

	sess := sessionWith("alice", direct(f))
	rid, err := e.Book(ctx, sess, 0)
	require.NoError(t, err)

	_, err = e.Pay(ctx, sess, rid)
	var funds *InsufficientFundsError
	require.ErrorAs(t, err, &funds)
	assert.Equal(t, 40, funds.Balance)
	assert.Equal(t, 100, funds.Cost)

	// Nothing was debited and the reservation is still payable later.
	assert.Equal(t, 40, balanceOf(t, st, "alice"))
	list, err := e.ListReservations(ctx, sess)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.False(t, list[0].Paid)
}

func TestPayForeignReservation(t *testing.T) {
	st := memstore.New()
	f := testFlight(1, 5, "Seattle WA", "Boston MA", 300, 10, 100)
	st.AddFlight(f)
	seedUser(t, st, "alice", 1000)
	seedUser(t, st, "bob", 1000)
	e := NewEngine(st)
	ctx := context.Background()

	rid, err := e.Book(ctx, sessionWith("alice", direct(f)), 0)
	require.NoError(t, err)

	_, err = e.Pay(ctx, session.New("bob"), rid)
	assert.ErrorIs(t, err, ErrReservationNotFound)

	_, err = e.Pay(ctx, session.New("alice"), 999)
	assert.ErrorIs(t, err, ErrReservationNotFound)
}

func TestCancelRefundsPaidReservation(t *testing.T) {
	st := memstore.New()
	f := testFlight(1, 5, "Seattle WA", "Boston MA", 300, 10, 100)
	st.AddFlight(f)
	seedUser(t, st, "alice", 300)
	e := NewEngine(st)
	ctx := context.Background()

	sess := sessionWith("alice", direct(f))
	rid, err := e.Book(ctx, sess, 0)
	require.NoError(t, err)
	_, err = e.Pay(ctx, sess, rid)
	require.NoError(t, err)

	refund, err := e.Cancel(ctx, sess, rid)
	require.NoError(t, err)
	assert.Equal(t, 100, refund)
	assert.Equal(t, 300, balanceOf(t, st, "alice"))

	// Double cancel must not double refund.
	_, err = e.Cancel(ctx, sess, rid)
	assert.ErrorIs(t, err, ErrAlreadyCanceled)
	assert.Equal(t, 300, balanceOf(t, st, "alice"))
}

func TestCancelUnpaidSkipsRefund(t *testing.T) {
	st := memstore.New()
	f := testFlight(1, 5, "Seattle WA", "Boston MA", 300, 10, 100)
	st.AddFlight(f)
	seedUser(t, st, "alice", 300)
	e := NewEngine(st)
	ctx := context.Background()

	sess := sessionWith("alice", direct(f))
	rid, err := e.Book(ctx, sess, 0)
	require.NoError(t, err)

	refund, err := e.Cancel(ctx, sess, rid)
	require.NoError(t, err)
	assert.Zero(t, refund)
	assert.Equal(t, 300, balanceOf(t, st, "alice"))
}

func TestCancelFreesSeatAndRetiresRID(t *testing.T) {
	st := memstore.New()
	f := testFlight(1, 5, "Seattle WA", "Boston MA", 300, 1, 100)
	st.AddFlight(f)
	seedUser(t, st, "alice", 1000)
	seedUser(t, st, "bob", 1000)
	e := NewEngine(st)
	ctx := context.Background()

	sessA := sessionWith("alice", direct(f))
	rid1, err := e.Book(ctx, sessA, 0)
	require.NoError(t, err)
	_, err = e.Cancel(ctx, sessA, rid1)
	require.NoError(t, err)

	// The seat and the day are free again, but the rid is not reused.
	rid2, err := e.Book(ctx, sessionWith("bob", direct(f)), 0)
	require.NoError(t, err)
	assert.Greater(t, rid2, rid1)

	// Canceled reservations disappear from the listing.
	list, err := e.ListReservations(ctx, sessA)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCancelForeignReservation(t *testing.T) {
	st := memstore.New()
	f := testFlight(1, 5, "Seattle WA", "Boston MA", 300, 10, 100)
	st.AddFlight(f)
	seedUser(t, st, "alice", 1000)
	seedUser(t, st, "bob", 1000)
	e := NewEngine(st)
	ctx := context.Background()

	rid, err := e.Book(ctx, sessionWith("alice", direct(f)), 0)
	require.NoError(t, err)

	_, err = e.Cancel(ctx, session.New("bob"), rid)
	assert.ErrorIs(t, err, ErrReservationNotFound)
}

func TestListReservationsResolvesLegs(t *testing.T) {
	st := memstore.New()
	a := testFlight(1, 5, "Seattle WA", "Denver CO", 150, 5, 60)
	b := testFlight(2, 5, "Denver CO", "Boston MA", 200, 5, 90)
	c := testFlight(3, 7, "Seattle WA", "Boston MA", 300, 5, 120)
	st.AddFlight(a)
	st.AddFlight(b)
	st.AddFlight(c)
	seedUser(t, st, "alice", 1000)
	e := NewEngine(st)
	ctx := context.Background()

	sess := sessionWith("alice", oneStop(a, b), direct(c))
	rid1, err := e.Book(ctx, sess, 0)
	require.NoError(t, err)
	rid2, err := e.Book(ctx, sess, 1)
	require.NoError(t, err)

	list, err := e.ListReservations(ctx, sess)
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, rid1, list[0].RID)
	require.Len(t, list[0].Legs, 2)
	assert.Equal(t, a.FID, list[0].Legs[0].FID)
	assert.Equal(t, b.FID, list[0].Legs[1].FID)
	assert.Equal(t, 150, list[0].Price)

	assert.Equal(t, rid2, list[1].RID)
	require.Len(t, list[1].Legs, 1)
	assert.Equal(t, c.FID, list[1].Legs[0].FID)

	_, err = e.ListReservations(ctx, nil)
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}
