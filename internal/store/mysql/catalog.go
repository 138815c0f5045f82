package mysql

import (
	"context"
	"database/sql"

	"github.com/iliyamo/flight-reservation/internal/model"
	"github.com/iliyamo/flight-reservation/internal/store"
)

const flightColumns = `fid, day_of_month, carrier_id, flight_num, origin_city, dest_city, actual_time, capacity, price, canceled`

// FlightByID returns a single catalog row or store.ErrNotFound.
func (s *Store) FlightByID(ctx context.Context, fid int64) (*model.Flight, error) {
	const q = `SELECT ` + flightColumns + ` FROM flights WHERE fid = ?`
	f, err := scanFlight(s.db.QueryRowContext(ctx, q, fid))
	if err != nil {
		return nil, wrapErr(err)
	}
	return f, nil
}

// FlightsByRoute returns up to limit non-canceled direct flights for
// the route and day, ordered by (actual_time, fid) ascending so search
// output is deterministic.
func (s *Store) FlightsByRoute(ctx context.Context, origin, dest string, day, limit int) ([]model.Flight, error) {
	const q = `SELECT ` + flightColumns + `
	           FROM flights
	           WHERE origin_city = ? AND dest_city = ? AND day_of_month = ? AND canceled = 0
	           ORDER BY actual_time, fid ASC
	           LIMIT ?`
	rows, err := s.db.QueryContext(ctx, q, origin, dest, day, limit)
	if err != nil {
		return nil, wrapErr(err)
	}
	defer rows.Close()
	var flights []model.Flight
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return nil, wrapErr(err)
		}
		flights = append(flights, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr(err)
	}
	return flights, nil
}

// ConnectingFlights returns up to limit one-stop itineraries ordered by
// (total duration, first fid) ascending. The stopover city must differ
// from the final destination and both legs share the requested day.
func (s *Store) ConnectingFlights(ctx context.Context, origin, dest string, day, limit int) ([]model.Itinerary, error) {
	const q = `SELECT
	             f1.fid, f1.day_of_month, f1.carrier_id, f1.flight_num, f1.origin_city, f1.dest_city, f1.actual_time, f1.capacity, f1.price, f1.canceled,
	             f2.fid, f2.day_of_month, f2.carrier_id, f2.flight_num, f2.origin_city, f2.dest_city, f2.actual_time, f2.capacity, f2.price, f2.canceled
	           FROM flights f1
	           JOIN flights f2 ON f2.origin_city = f1.dest_city
	           WHERE f1.origin_city = ? AND f2.dest_city = ? AND f1.dest_city != ?
	             AND f1.day_of_month = ? AND f2.day_of_month = ?
	             AND f1.canceled = 0 AND f2.canceled = 0
	           ORDER BY f1.actual_time + f2.actual_time, f1.fid
	           LIMIT ?`
	rows, err := s.db.QueryContext(ctx, q, origin, dest, dest, day, day, limit)
	if err != nil {
		return nil, wrapErr(err)
	}
	defer rows.Close()
	var its []model.Itinerary
	for rows.Next() {
		var f1, f2 model.Flight
		if err := rows.Scan(
			&f1.FID, &f1.DayOfMonth, &f1.CarrierID, &f1.FlightNum, &f1.OriginCity, &f1.DestCity, &f1.ActualTime, &f1.Capacity, &f1.Price, &f1.Canceled,
			&f2.FID, &f2.DayOfMonth, &f2.CarrierID, &f2.FlightNum, &f2.OriginCity, &f2.DestCity, &f2.ActualTime, &f2.Capacity, &f2.Price, &f2.Canceled,
		); err != nil {
			return nil, wrapErr(err)
		}
		leg1, leg2 := f1, f2
		its = append(its, model.Itinerary{Legs: [2]*model.Flight{&leg1, &leg2}})
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr(err)
	}
	return its, nil
}

// scanner covers *sql.Row and *sql.Rows so flight scanning is shared.
type scanner interface {
	Scan(dest ...any) error
}

func scanFlight(sc scanner) (*model.Flight, error) {
	var f model.Flight
	err := sc.Scan(&f.FID, &f.DayOfMonth, &f.CarrierID, &f.FlightNum,
		&f.OriginCity, &f.DestCity, &f.ActualTime, &f.Capacity, &f.Price, &f.Canceled)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// compile-time interface checks
var (
	_ store.Store   = (*Store)(nil)
	_ store.Catalog = (*Store)(nil)
	_ scanner       = (*sql.Row)(nil)
)
