package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/flight-reservation/internal/booking"
	"github.com/iliyamo/flight-reservation/internal/model"
	"github.com/iliyamo/flight-reservation/internal/planner"
	"github.com/iliyamo/flight-reservation/internal/queue"
	queue_publisher "github.com/iliyamo/flight-reservation/internal/service"
	"github.com/iliyamo/flight-reservation/internal/session"
)

// BookingHandler serves itinerary search and the reservation lifecycle.
// All routes sit behind the session middleware.
type BookingHandler struct {
	Planner *planner.Planner
	Engine  *booking.Engine
}

func NewBookingHandler(p *planner.Planner, e *booking.Engine) *BookingHandler {
	return &BookingHandler{Planner: p, Engine: e}
}

type itineraryView struct {
	Index     int          `json:"index"`
	Direct    bool         `json:"direct"`
	TotalTime int          `json:"total_time"`
	Price     int          `json:"price"`
	Legs      []flightView `json:"legs"`
}

type bookRequest struct {
	Itinerary int `json:"itinerary"`
}

// Search runs an itinerary search and replaces the session's numbered
// result list. The replacement happens even when nothing matches, so a
// stale index from an earlier search can never be booked.
func (h *BookingHandler) Search(c echo.Context) error {
	sess := currentSession(c)
	if sess == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not logged in"})
	}

	origin := c.QueryParam("origin")
	dest := c.QueryParam("dest")
	if origin == "" || dest == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "origin and dest are required"})
	}
	day, err := strconv.Atoi(c.QueryParam("day"))
	if err != nil || day < 1 || day > 31 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "day must be a day of month"})
	}
	limit := 10
	if v := c.QueryParam("count"); v != "" {
		limit, err = strconv.Atoi(v)
		if err != nil || limit <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "count must be a positive integer"})
		}
	}
	directOnly := false
	if v := c.QueryParam("direct"); v != "" {
		directOnly, err = strconv.ParseBool(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "direct must be a boolean"})
		}
	}

	items, err := h.Planner.Search(c.Request().Context(), origin, dest, directOnly, day, limit)
	if errors.Is(err, planner.ErrNoFlights) {
		sess.SetSearchResult(nil)
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no flights match your selection"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "search failed"})
	}

	res := sess.SetSearchResult(items)
	views := make([]itineraryView, 0, len(res.Items))
	for i, it := range res.Items {
		views = append(views, itineraryOf(i, it))
	}
	return c.JSON(http.StatusOK, echo.Map{"itineraries": views})
}

// Book reserves the itinerary at the given index of the caller's most
// recent search. On success it publishes a reservation.booked event;
// publish failures never fail the booking itself.
func (h *BookingHandler) Book(c echo.Context) error {
	sess := currentSession(c)
	if sess == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not logged in"})
	}
	var req bookRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	rid, err := h.Engine.Book(c.Request().Context(), sess, req.Itinerary)
	switch {
	case errors.Is(err, booking.ErrNoSuchItinerary):
		return c.JSON(http.StatusNotFound, echo.Map{"error": fmt.Sprintf("no such itinerary %d", req.Itinerary)})
	case errors.Is(err, booking.ErrDuplicateDateBooking):
		return c.JSON(http.StatusConflict, echo.Map{"error": "you cannot book two flights in the same day"})
	case errors.Is(err, booking.ErrCapacityExceeded):
		return c.JSON(http.StatusConflict, echo.Map{"error": "booking failed: flight is fully booked"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "booking failed"})
	}

	if it, ok := sess.ItineraryAt(req.Itinerary); ok {
		publishBooked(c, sess, rid, it)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message":        fmt.Sprintf("booked flights, reservation id: %d", rid),
		"reservation_id": rid,
	})
}

// Pay settles an unpaid reservation against the caller's balance.
func (h *BookingHandler) Pay(c echo.Context) error {
	sess := currentSession(c)
	if sess == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not logged in"})
	}
	rid, err := strconv.ParseInt(c.Param("rid"), 10, 64)
	if err != nil || rid <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "rid must be a positive integer"})
	}

	remaining, err := h.Engine.Pay(c.Request().Context(), sess, rid)
	var funds *booking.InsufficientFundsError
	switch {
	case errors.Is(err, booking.ErrReservationNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": fmt.Sprintf("cannot find unpaid reservation %d under user: %s", rid, sess.Username),
		})
	case errors.As(err, &funds):
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": fmt.Sprintf("user has only %d in account but itinerary costs %d", funds.Balance, funds.Cost),
		})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": fmt.Sprintf("failed to pay for reservation %d", rid)})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":           fmt.Sprintf("paid reservation: %d remaining balance: %d", rid, remaining),
		"remaining_balance": remaining,
	})
}

// List returns the caller's active reservations with resolved legs.
func (h *BookingHandler) List(c echo.Context) error {
	sess := currentSession(c)
	if sess == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not logged in"})
	}

	details, err := h.Engine.ListReservations(c.Request().Context(), sess)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list reservations"})
	}

	out := make([]echo.Map, 0, len(details))
	for _, d := range details {
		legs := make([]flightView, 0, len(d.Legs))
		for _, f := range d.Legs {
			legs = append(legs, viewOf(f))
		}
		out = append(out, echo.Map{
			"reservation_id": d.RID,
			"paid":           d.Paid,
			"price":          d.Price,
			"legs":           legs,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": out})
}

// Cancel retires a reservation and refunds it when it had been paid.
// On success it publishes a reservation.canceled event.
func (h *BookingHandler) Cancel(c echo.Context) error {
	sess := currentSession(c)
	if sess == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not logged in"})
	}
	rid, err := strconv.ParseInt(c.Param("rid"), 10, 64)
	if err != nil || rid <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "rid must be a positive integer"})
	}

	refund, err := h.Engine.Cancel(c.Request().Context(), sess, rid)
	switch {
	case errors.Is(err, booking.ErrAlreadyCanceled):
		return c.JSON(http.StatusConflict, echo.Map{"error": fmt.Sprintf("reservation %d is already canceled", rid)})
	case errors.Is(err, booking.ErrReservationNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": fmt.Sprintf("failed to cancel reservation %d", rid)})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": fmt.Sprintf("failed to cancel reservation %d", rid)})
	}

	publishCanceled(c, sess, rid, refund)
	return c.JSON(http.StatusOK, echo.Map{
		"message": fmt.Sprintf("canceled reservation %d", rid),
		"refund":  refund,
	})
}

func itineraryOf(index int, it model.Itinerary) itineraryView {
	v := itineraryView{
		Index:     index,
		Direct:    it.Direct(),
		TotalTime: it.TotalTime(),
		Price:     it.TotalPrice(),
	}
	for _, leg := range it.Legs {
		if leg == nil {
			break
		}
		v.Legs = append(v.Legs, viewOf(*leg))
	}
	return v
}

func publishBooked(c echo.Context, sess *session.Session, rid int64, it model.Itinerary) {
	ev := queue.ReservationEvent{
		Kind:       queue.KindReservationBooked,
		RID:        rid,
		Username:   sess.Username,
		FlightDate: it.FlightDate(),
		TotalPrice: it.TotalPrice(),
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
	for _, leg := range it.Legs {
		if leg == nil {
			break
		}
		ev.Legs = append(ev.Legs, leg.String())
	}
	// Best effort: the reservation is already committed.
	_ = queue_publisher.PublishReservationEvent(c.Request().Context(), ev)
}

func publishCanceled(c echo.Context, sess *session.Session, rid int64, refund int) {
	_ = queue_publisher.PublishReservationEvent(c.Request().Context(), queue.ReservationEvent{
		Kind:       queue.KindReservationCanceled,
		RID:        rid,
		Username:   sess.Username,
		Refund:     refund,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	})
}
