package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/runpool/runpool-backend/internal/models"
	"github.com/runpool/runpool-backend/internal/services"
)

// TripHandler exposes the trip booking endpoints.
type TripHandler struct {
	tripService *services.TripService
}

// NewTripHandler creates a new TripHandler
func NewTripHandler(tripService *services.TripService) *TripHandler {
	return &TripHandler{tripService: tripService}
}

// CreateTrip publishes a new trip for a race
// POST /api/v1/trips
func (h *TripHandler) CreateTrip(c *gin.Context) {
	var req models.CreateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	trip, err := h.tripService.Create(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, trip)
}

// GetTrip retrieves one trip with its derived seat availability
// GET /api/v1/trips/:id
func (h *TripHandler) GetTrip(c *gin.Context) {
	trip, err := h.tripService.FindOne(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, trip)
}

// ListTripsByRace lists a race's live trips
// GET /api/v1/trips?raceId=
func (h *TripHandler) ListTripsByRace(c *gin.Context) {
	raceID := c.Query("raceId")
	if raceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "raceId query parameter is required"})
		return
	}

	trips, err := h.tripService.FindByRace(raceID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, trips)
}

// ListTripsByPassenger lists the trips where the user holds a seat
// GET /api/v1/trips/passenger/:passengerId
func (h *TripHandler) ListTripsByPassenger(c *gin.Context) {
	trips, err := h.tripService.FindByPassenger(c.Param("passengerId"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, trips)
}

// UpdateTrip partially updates a trip
// PATCH /api/v1/trips/:id
func (h *TripHandler) UpdateTrip(c *gin.Context) {
	var req models.UpdateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	trip, err := h.tripService.Update(c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, trip)
}

// DeleteTrip cancels a trip and releases every seat
// DELETE /api/v1/trips/:id
func (h *TripHandler) DeleteTrip(c *gin.Context) {
	if err := h.tripService.Remove(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Trip deleted"})
}

// JoinTrip reserves a seat on a trip
// POST /api/v1/trips/join
func (h *TripHandler) JoinTrip(c *gin.Context) {
	var req models.JoinTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	trip, err := h.tripService.Join(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, trip)
}

// LeaveTrip gives up a passenger's seat
// DELETE /api/v1/trips/:id/passengers/:passengerId
func (h *TripHandler) LeaveTrip(c *gin.Context) {
	if err := h.tripService.Leave(c.Param("id"), c.Param("passengerId")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Left trip"})
}

// GetTripPassengers lists a trip's active passengers, oldest first
// GET /api/v1/trips/:id/passengers
func (h *TripHandler) GetTripPassengers(c *gin.Context) {
	passengers, err := h.tripService.GetPassengers(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, passengers)
}
