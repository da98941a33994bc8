package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/runpool/runpool-backend/internal/database"
	"github.com/runpool/runpool-backend/internal/models"
)

// ProfileHandler exposes the runner profile endpoints. Profiles are plain
// CRUD, so the handler talks to the repository directly.
type ProfileHandler struct {
	profileRepo *database.ProfileRepository
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(profileRepo *database.ProfileRepository) *ProfileHandler {
	return &ProfileHandler{profileRepo: profileRepo}
}

// CreateProfile creates a complete runner profile with its cars
// POST /api/v1/profiles
func (h *ProfileHandler) CreateProfile(c *gin.Context) {
	var req models.CreateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, err := h.profileRepo.CreateComplete(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, profile)
}

// GetProfile retrieves a user's profile with their cars and preferences
// GET /api/v1/users/:id/profile
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	profile, err := h.profileRepo.GetByUserID(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// DeleteProfile removes a user's profile together with its cars and
// preferences
// DELETE /api/v1/users/:id/profile
func (h *ProfileHandler) DeleteProfile(c *gin.Context) {
	if err := h.profileRepo.SoftDelete(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Profile deleted"})
}
