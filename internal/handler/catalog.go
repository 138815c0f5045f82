package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/flight-reservation/internal/store"
)

// CatalogHandler serves public, read-only flight catalog lookups.
// These are the only routes that sit behind the response cache; they
// never expose reservation or balance state.
type CatalogHandler struct {
	Catalog store.Catalog
}

func NewCatalogHandler(cat store.Catalog) *CatalogHandler {
	return &CatalogHandler{Catalog: cat}
}

// GetFlight returns one flight by id.
func (h *CatalogHandler) GetFlight(c echo.Context) error {
	fid, err := strconv.ParseInt(c.Param("fid"), 10, 64)
	if err != nil || fid <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "fid must be a positive integer"})
	}

	f, err := h.Catalog.FlightByID(c.Request().Context(), fid)
	if errors.Is(err, store.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "flight not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load flight"})
	}
	return c.JSON(http.StatusOK, echo.Map{"flight": viewOf(*f)})
}
