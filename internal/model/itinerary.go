package model

// Itinerary is one bookable unit produced by the search planner: either
// a single direct flight or an ordered pair of connecting flights on the
// same calendar day. Itineraries are ephemeral; they live only in the
// session that produced them and are addressed by their display index.
type Itinerary struct {
	Legs [2]*Flight // Legs[1] is nil for a direct itinerary
}

// Direct reports whether the itinerary has a single leg.
func (it Itinerary) Direct() bool { return it.Legs[1] == nil }

// TotalTime returns the summed duration of all legs in minutes.
func (it Itinerary) TotalTime() int {
	t := it.Legs[0].ActualTime
	if it.Legs[1] != nil {
		t += it.Legs[1].ActualTime
	}
	return t
}

// TotalPrice returns the summed price of all legs.
func (it Itinerary) TotalPrice() int {
	p := it.Legs[0].Price
	if it.Legs[1] != nil {
		p += it.Legs[1].Price
	}
	return p
}

// FlightDate is the travel date used by the one-booking-per-day rule.
// For one-stop itineraries this is the first leg's day, matching the
// duplicate-booking policy of the engine.
func (it Itinerary) FlightDate() int { return it.Legs[0].DayOfMonth }
