package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"safar/internal/apperrors"
	"safar/internal/logger"
	"safar/internal/metrics"
	"safar/internal/model"
	"safar/internal/service"
)

// TripHandler handles the trip lifecycle endpoint
type TripHandler struct {
	trips   *service.TripService
	metrics *metrics.Metrics
	logger  *zap.Logger
	actions map[string]tripAction
}

type tripAction func(ctx context.Context, req *model.TripRequest) (any, error)

// NewTripHandler creates a new trip handler
func NewTripHandler(trips *service.TripService, m *metrics.Metrics, log *zap.Logger) *TripHandler {
	h := &TripHandler{
		trips:   trips,
		metrics: m,
		logger:  logger.OrNop(log).Named("trip_handler"),
	}
	h.actions = map[string]tripAction{
		model.ActionCreateIntent: func(ctx context.Context, req *model.TripRequest) (any, error) {
			return trips.CreateIntent(ctx, req)
		},
		model.ActionGetBudget: func(ctx context.Context, req *model.TripRequest) (any, error) {
			return trips.GetBudget(ctx, req)
		},
		model.ActionGetCandidates: func(ctx context.Context, req *model.TripRequest) (any, error) {
			return trips.GetCandidates(ctx, req)
		},
		model.ActionCreateBooking: func(ctx context.Context, req *model.TripRequest) (any, error) {
			return trips.CreateBooking(ctx, req)
		},
	}
	return h
}

// Dispatch handles POST /api/trips
func (h *TripHandler) Dispatch(c *gin.Context) {
	var req model.TripRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, h.logger, err)
		return
	}

	action, ok := h.actions[req.Action]
	if !ok {
		h.metrics.ObserveTripAction("unknown", "invalid")
		respondError(c, h.logger, apperrors.Validation("Invalid action"))
		return
	}

	result, err := action(c.Request.Context(), &req)
	if err != nil {
		h.metrics.ObserveTripAction(req.Action, "error")
		respondError(c, h.logger, err)
		return
	}

	h.metrics.ObserveTripAction(req.Action, "ok")
	c.JSON(http.StatusOK, result)
}

// GetTrip handles GET /api/trips/:tripId
func (h *TripHandler) GetTrip(c *gin.Context) {
	intent, err := h.trips.GetTrip(c.Request.Context(), c.Param("tripId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, intent)
}

// GetBooking handles GET /api/bookings/:bookingId
func (h *TripHandler) GetBooking(c *gin.Context) {
	booking, err := h.trips.GetBooking(c.Request.Context(), c.Param("bookingId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}
