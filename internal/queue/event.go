// Package queue defines message payloads exchanged over the message broker.
package queue

// Event kinds carried on the reservation.events queue.
const (
	KindReservationBooked   = "reservation.booked"
	KindReservationCanceled = "reservation.canceled"
)

// ReservationEvent is published after a booking transaction commits.
// It carries enough information for downstream consumers to log or
// trigger notifications without querying the primary database.
type ReservationEvent struct {
	Kind       string   `json:"kind"`
	RID        int64    `json:"reservation_id"`
	Username   string   `json:"username"`
	FlightDate int      `json:"flight_date,omitempty"`
	Legs       []string `json:"legs,omitempty"`
	TotalPrice int      `json:"total_price,omitempty"`
	Refund     int      `json:"refund,omitempty"`
	OccurredAt string   `json:"occurred_at"`
}
