package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"flightsched-service/internal/domain/entity"
	"flightsched-service/internal/usecase"
	"flightsched-service/pkg/logger"

	"github.com/labstack/echo/v4"
)

// FlightService is the application surface the HTTP API exposes
type FlightService interface {
	RequestCollection(ctx context.Context, airportCode, startDate, endDate string) (string, error)
	GetRunStatus(ctx context.Context, runID string) (*entity.CollectionRequest, error)
	CancelRun(runID string) bool
	GetFlights(ctx context.Context, route, date string) ([]*entity.FlightSchedule, error)
	GetFlightsForMonth(ctx context.Context, route string, year int, month time.Month) ([]*entity.FlightSchedule, error)
}

type CollectionRequestBody struct {
	AirportCode string `json:"airportCode"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
}

type CollectionAccepted struct {
	RunID string `json:"runId"`
}

type FlightsResponse struct {
	Route   string                   `json:"route"`
	Date    string                   `json:"date,omitempty"`
	Year    int                      `json:"year,omitempty"`
	Month   int                      `json:"month,omitempty"`
	Count   int                      `json:"count"`
	Flights []*entity.FlightSchedule `json:"flights"`
}

type Handler struct {
	service FlightService
	version string
	logger  logger.Logger
}

func NewHandler(service FlightService, version string, logger logger.Logger) *Handler {
	return &Handler{
		service: service,
		version: version,
		logger:  logger,
	}
}

// Register mounts the API routes on e
func (h *Handler) Register(e *echo.Echo) {
	e.GET("/health", h.Health)

	group := e.Group("/api/v1")
	group.POST("/collections", h.RequestCollection)
	group.GET("/collections/:id", h.GetRunStatus)
	group.DELETE("/collections/:id", h.CancelRun)
	group.GET("/routes/:route/flights", h.GetFlights)
	group.GET("/routes/:route/months/:year/:month", h.GetFlightsForMonth)
}

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"version": h.version,
	})
}

func (h *Handler) RequestCollection(c echo.Context) error {
	var body CollectionRequestBody
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body").SetInternal(err)
	}

	runID, err := h.service.RequestCollection(c.Request().Context(), body.AirportCode, body.StartDate, body.EndDate)
	if err != nil {
		return h.toHTTPError(err)
	}

	return c.JSON(http.StatusAccepted, CollectionAccepted{RunID: runID})
}

func (h *Handler) GetRunStatus(c echo.Context) error {
	req, err := h.service.GetRunStatus(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.toHTTPError(err)
	}

	return c.JSON(http.StatusOK, req)
}

func (h *Handler) CancelRun(c echo.Context) error {
	if !h.service.CancelRun(c.Param("id")) {
		return echo.NewHTTPError(http.StatusNotFound, "no active run with this id")
	}

	return c.NoContent(http.StatusAccepted)
}

func (h *Handler) GetFlights(c echo.Context) error {
	route := c.Param("route")
	date := c.QueryParam("date")

	flights, err := h.service.GetFlights(c.Request().Context(), route, date)
	if err != nil {
		return h.toHTTPError(err)
	}

	return c.JSON(http.StatusOK, FlightsResponse{
		Route:   route,
		Date:    date,
		Count:   len(flights),
		Flights: nonNil(flights),
	})
}

func (h *Handler) GetFlightsForMonth(c echo.Context) error {
	route := c.Param("route")

	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid year")
	}
	month, err := strconv.Atoi(c.Param("month"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid month")
	}

	flights, err := h.service.GetFlightsForMonth(c.Request().Context(), route, year, time.Month(month))
	if err != nil {
		return h.toHTTPError(err)
	}

	return c.JSON(http.StatusOK, FlightsResponse{
		Route:   route,
		Year:    year,
		Month:   month,
		Count:   len(flights),
		Flights: nonNil(flights),
	})
}

func (h *Handler) toHTTPError(err error) error {
	switch {
	case errors.Is(err, usecase.ErrInvalidRequest):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, entity.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	default:
		h.logger.Error("Request failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError).SetInternal(err)
	}
}

func nonNil(flights []*entity.FlightSchedule) []*entity.FlightSchedule {
	if flights == nil {
		return []*entity.FlightSchedule{}
	}
	return flights
}
