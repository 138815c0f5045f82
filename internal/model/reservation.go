package model

// Reservation records a user's booking of one itinerary. Reservation
// identifiers are allocated from a monotonic counter inside the booking
// transaction and are never reused, including after cancellation.
//
// State machine: a reservation starts unpaid and active; Paid flips to
// true exactly once via pay, Canceled flips to true exactly once via
// cancel and is terminal. A canceled reservation can never become paid.
//
// Fields:
//
//	RID        – reservation identifier, strictly increasing system-wide.
//	Username   – owner of the reservation.
//	FID1       – first (or only) flight leg.
//	FID2       – second leg; nil for a direct itinerary.
//	FlightDate – first-leg day of month, used by the one-per-day rule.
//	TotalPrice – summed leg prices at booking time.
//	Paid       – whether the reservation has been paid for.
//	Canceled   – whether the reservation was canceled (terminal).
type Reservation struct {
	RID        int64  // reservations.rid
	Username   string // reservations.username
	FID1       int64  // reservations.fid1
	FID2       *int64 // reservations.fid2 (nullable)
	FlightDate int    // reservations.flight_date
	TotalPrice int    // reservations.total_price
	Paid       bool   // reservations.paid
	Canceled   bool   // reservations.canceled
}

// ReservationDetail is a reservation joined with its resolved flight
// legs, as returned by the listing operation. Legs holds one entry for
// a direct itinerary and two for a one-stop itinerary.
type ReservationDetail struct {
	RID   int64    `json:"rid"`
	Paid  bool     `json:"paid"`
	Legs  []Flight `json:"legs"`
	Price int      `json:"total_price"`
}
