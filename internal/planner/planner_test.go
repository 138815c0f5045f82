package planner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/flight-reservation/internal/model"
)

// fakeCatalog serves canned results and records how it was queried.
type fakeCatalog struct {
	direct  []model.Flight
	oneStop []model.Itinerary

	routeLimit      int
	connectingCalls int
	connectingLimit int
}

func (f *fakeCatalog) FlightByID(ctx context.Context, fid int64) (*model.Flight, error) {
	panic("not used by the planner")
}

func (f *fakeCatalog) FlightsByRoute(ctx context.Context, origin, dest string, day, limit int) ([]model.Flight, error) {
	f.routeLimit = limit
	if limit < len(f.direct) {
		return f.direct[:limit], nil
	}
	return f.direct, nil
}

func (f *fakeCatalog) ConnectingFlights(ctx context.Context, origin, dest string, day, limit int) ([]model.Itinerary, error) {
	f.connectingCalls++
	f.connectingLimit = limit
	if limit < len(f.oneStop) {
		return f.oneStop[:limit], nil
	}
	return f.oneStop, nil
}

func flightWithTime(fid int64, duration int) model.Flight {
	return model.Flight{
		FID: fid, DayOfMonth: 5, CarrierID: "AA", FlightNum: "100",
		OriginCity: "Seattle WA", DestCity: "Boston MA",
		ActualTime: duration, Capacity: 10, Price: 100,
	}
}

func directItin(fid int64, duration int) model.Itinerary {
	f := flightWithTime(fid, duration)
	return model.Itinerary{Legs: [2]*model.Flight{&f, nil}}
}

func oneStopItin(fid1, fid2 int64, d1, d2 int) model.Itinerary {
	f1 := flightWithTime(fid1, d1)
	f2 := flightWithTime(fid2, d2)
	return model.Itinerary{Legs: [2]*model.Flight{&f1, &f2}}
}

func totalTimes(items []model.Itinerary) []int {
	out := make([]int, len(items))
	for i, it := range items {
		out[i] = it.TotalTime()
	}
	return out
}

func TestSearchInterleavesByTotalDuration(t *testing.T) {
	cat := &fakeCatalog{
		direct: []model.Flight{flightWithTime(1, 200), flightWithTime(2, 500)},
		oneStop: []model.Itinerary{
			oneStopItin(10, 11, 100, 200), // 300
			oneStopItin(12, 13, 200, 200), // 400
		},
	}
	p := New(cat)

	got, err := p.Search(context.Background(), "Seattle WA", "Boston MA", false, 5, 10)
	require.NoError(t, err)
	assert.Equal(t, []int{200, 300, 400, 500}, totalTimes(got))
	assert.False(t, got[0].Direct() && got[1].Direct(), "one-stop results must interleave, not trail")
}

func TestSearchTieGoesToOneStop(t *testing.T) {
	cat := &fakeCatalog{
		direct:  []model.Flight{flightWithTime(1, 300)},
		oneStop: []model.Itinerary{oneStopItin(10, 11, 100, 200)}, // also 300
	}
	p := New(cat)

	got, err := p.Search(context.Background(), "Seattle WA", "Boston MA", false, 5, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.False(t, got[0].Direct())
	assert.True(t, got[1].Direct())
}

func TestSearchDirectOnlySkipsConnecting(t *testing.T) {
	cat := &fakeCatalog{
		direct:  []model.Flight{flightWithTime(1, 200)},
		oneStop: []model.Itinerary{oneStopItin(10, 11, 50, 50)},
	}
	p := New(cat)

	got, err := p.Search(context.Background(), "Seattle WA", "Boston MA", true, 5, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Direct())
	assert.Zero(t, cat.connectingCalls)
}

func TestSearchFillsRemainderWithOneStop(t *testing.T) {
	cat := &fakeCatalog{
		direct: []model.Flight{flightWithTime(1, 200)},
		oneStop: []model.Itinerary{
			oneStopItin(10, 11, 100, 100),
			oneStopItin(12, 13, 150, 150),
			oneStopItin(14, 15, 200, 200),
		},
	}
	p := New(cat)

	got, err := p.Search(context.Background(), "Seattle WA", "Boston MA", false, 5, 3)
	require.NoError(t, err)
	assert.Len(t, got, 3)
	// Only the remainder after direct matches is requested.
	assert.Equal(t, 2, cat.connectingLimit)
	assert.Equal(t, 3, cat.routeLimit)
}

func TestSearchCapsAtLimitAcrossBothKinds(t *testing.T) {
	cat := &fakeCatalog{
		direct: []model.Flight{flightWithTime(1, 250), flightWithTime(2, 400)},
		oneStop: []model.Itinerary{
			oneStopItin(10, 11, 100, 200), // 300
			oneStopItin(12, 13, 150, 200), // 350
			oneStopItin(14, 15, 200, 250), // 450
			oneStopItin(16, 17, 250, 250), // 500
			oneStopItin(18, 19, 300, 250), // 550
		},
	}
	p := New(cat)

	got, err := p.Search(context.Background(), "Seattle WA", "Boston MA", false, 5, 3)
	require.NoError(t, err)
	// Two direct matches leave room for one one-stop; the three are
	// ordered strictly by duration, not grouped by kind.
	assert.Equal(t, []int{250, 300, 400}, totalTimes(got))
	assert.Equal(t, 1, cat.connectingLimit)
}

func TestSearchLimitSatisfiedByDirect(t *testing.T) {
	cat := &fakeCatalog{
		direct:  []model.Flight{flightWithTime(1, 200), flightWithTime(2, 300)},
		oneStop: []model.Itinerary{oneStopItin(10, 11, 50, 50)},
	}
	p := New(cat)

	got, err := p.Search(context.Background(), "Seattle WA", "Boston MA", false, 5, 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Zero(t, cat.connectingCalls, "no room left for one-stop itineraries")
}

func TestSearchNoMatches(t *testing.T) {
	p := New(&fakeCatalog{})
	_, err := p.Search(context.Background(), "Seattle WA", "Boston MA", false, 5, 10)
	assert.ErrorIs(t, err, ErrNoFlights)
}

func TestSearchNonPositiveLimit(t *testing.T) {
	p := New(&fakeCatalog{direct: []model.Flight{flightWithTime(1, 200)}})
	_, err := p.Search(context.Background(), "Seattle WA", "Boston MA", false, 5, 0)
	assert.ErrorIs(t, err, ErrNoFlights)
}
