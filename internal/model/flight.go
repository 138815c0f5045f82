package model

import "fmt"

// Flight mirrors a row of the read-only `flights` catalog table. The
// catalog is loaded out of band and never mutated by this service;
// Capacity is the maximum number of active reservation legs that may
// reference the flight at any time.
//
// Fields:
//
//	FID        – primary key identifier of the flight.
//	DayOfMonth – calendar day the flight departs.
//	CarrierID  – operating carrier code (e.g. "AS").
//	FlightNum  – carrier-local flight number.
//	OriginCity – departure city.
//	DestCity   – arrival city.
//	ActualTime – flight duration in minutes.
//	Capacity   – seat capacity enforced by the booking engine.
//	Price      – ticket price in whole currency units.
//	Canceled   – whether the airline canceled the flight.
type Flight struct {
	FID        int64  // flights.fid
	DayOfMonth int    // flights.day_of_month
	CarrierID  string // flights.carrier_id
	FlightNum  string // flights.flight_num
	OriginCity string // flights.origin_city
	DestCity   string // flights.dest_city
	ActualTime int    // flights.actual_time (minutes)
	Capacity   int    // flights.capacity
	Price      int    // flights.price
	Canceled   bool   // flights.canceled
}

// String renders the flight in the single-line display format used by
// search results and reservation listings.
func (f Flight) String() string {
	return fmt.Sprintf("ID: %d Day: %d Carrier: %s Number: %s Origin: %s Dest: %s Duration: %d Capacity: %d Price: %d",
		f.FID, f.DayOfMonth, f.CarrierID, f.FlightNum, f.OriginCity, f.DestCity, f.ActualTime, f.Capacity, f.Price)
}
