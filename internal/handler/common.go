package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/flight-reservation/internal/model"
	"github.com/iliyamo/flight-reservation/internal/session"
)

// flightView is the JSON shape of a single flight leg as shown in
// search results, reservation listings and catalog lookups.
type flightView struct {
	FID       int64  `json:"fid"`
	Day       int    `json:"day_of_month"`
	Carrier   string `json:"carrier_id"`
	FlightNum string `json:"flight_num"`
	Origin    string `json:"origin_city"`
	Dest      string `json:"dest_city"`
	Duration  int    `json:"actual_time"`
	Capacity  int    `json:"capacity"`
	Price     int    `json:"price"`
	Display   string `json:"display"`
}

func viewOf(f model.Flight) flightView {
	return flightView{
		FID:       f.FID,
		Day:       f.DayOfMonth,
		Carrier:   f.CarrierID,
		FlightNum: f.FlightNum,
		Origin:    f.OriginCity,
		Dest:      f.DestCity,
		Duration:  f.ActualTime,
		Capacity:  f.Capacity,
		Price:     f.Price,
		Display:   f.String(),
	}
}

// currentSession returns the live session placed in the context by the
// session middleware, or nil when the request is unauthenticated.
func currentSession(c echo.Context) *session.Session {
	if s, ok := c.Get("session").(*session.Session); ok {
		return s
	}
	return nil
}
