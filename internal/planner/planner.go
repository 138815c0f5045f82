// Package planner builds ranked itinerary lists from the flight
// catalog. It is pure lookup-and-merge logic: the planner never touches
// reservation state, so its reads need no transaction.
package planner

import (
	"context"
	"errors"

	"github.com/iliyamo/flight-reservation/internal/model"
	"github.com/iliyamo/flight-reservation/internal/store"
)

// ErrNoFlights is returned when neither direct nor one-stop itineraries
// match the query.
var ErrNoFlights = errors.New("no flights match your selection")

// Planner answers itinerary searches against a flight catalog.
type Planner struct {
	catalog store.Catalog
}

// New returns a Planner reading from the given catalog.
func New(c store.Catalog) *Planner { return &Planner{catalog: c} }

// Search returns up to limit itineraries from origin to dest on the
// given day, ordered by ascending total duration. Direct flights are
// fetched first; when directOnly is false and fewer than limit direct
// flights exist, one-stop itineraries fill the remainder. The two
// ordered lists are merged strictly by total duration, so direct and
// one-stop results interleave rather than group by type. On equal
// total duration the one-stop itinerary is taken first, preserving the
// ranking users of the original service see.
func (p *Planner) Search(ctx context.Context, origin, dest string, directOnly bool, day, limit int) ([]model.Itinerary, error) {
	if limit <= 0 {
		return nil, ErrNoFlights
	}
	flights, err := p.catalog.FlightsByRoute(ctx, origin, dest, day, limit)
	if err != nil {
		return nil, err
	}
	direct := make([]model.Itinerary, 0, len(flights))
	for i := range flights {
		f := flights[i]
		direct = append(direct, model.Itinerary{Legs: [2]*model.Flight{&f, nil}})
	}

	var oneStop []model.Itinerary
	if !directOnly && len(direct) < limit {
		oneStop, err = p.catalog.ConnectingFlights(ctx, origin, dest, day, limit-len(direct))
		if err != nil {
			return nil, err
		}
	}

	if len(direct) == 0 && len(oneStop) == 0 {
		return nil, ErrNoFlights
	}
	return merge(direct, oneStop, limit), nil
}

// merge interleaves two duration-ordered lists into one, capped at
// limit. Both inputs are already sorted, so a single pass suffices.
func merge(direct, oneStop []model.Itinerary, limit int) []model.Itinerary {
	out := make([]model.Itinerary, 0, min(limit, len(direct)+len(oneStop)))
	d, o := 0, 0
	for len(out) < limit && (d < len(direct) || o < len(oneStop)) {
		switch {
		case o >= len(oneStop):
			out = append(out, direct[d])
			d++
		case d >= len(direct):
			out = append(out, oneStop[o])
			o++
		case direct[d].TotalTime() < oneStop[o].TotalTime():
			out = append(out, direct[d])
			d++
		default:
			out = append(out, oneStop[o])
			o++
		}
	}
	return out
}
