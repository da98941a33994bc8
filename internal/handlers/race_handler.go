package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/runpool/runpool-backend/internal/models"
	"github.com/runpool/runpool-backend/internal/services"
)

// RaceHandler exposes the race endpoints.
type RaceHandler struct {
	raceService *services.RaceService
}

// NewRaceHandler creates a new RaceHandler
func NewRaceHandler(raceService *services.RaceService) *RaceHandler {
	return &RaceHandler{raceService: raceService}
}

// ListRaces lists all live races
// GET /api/v1/races
func (h *RaceHandler) ListRaces(c *gin.Context) {
	races, err := h.raceService.FindAll()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, races)
}

// GetRace retrieves one race with its active distances
// GET /api/v1/races/:id
func (h *RaceHandler) GetRace(c *gin.Context) {
	race, err := h.raceService.FindOne(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, race)
}

// CreateRace creates a race with its initial distances
// POST /api/v1/races
func (h *RaceHandler) CreateRace(c *gin.Context) {
	var req models.CreateRaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	race, err := h.raceService.Create(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, race)
}

// UpdateRace partially updates a race, reconciling its distance set when
// the request carries one
// PATCH /api/v1/races/:id
func (h *RaceHandler) UpdateRace(c *gin.Context) {
	var req models.UpdateRaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	race, err := h.raceService.Update(c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, race)
}
