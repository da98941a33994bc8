package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/runpool/runpool-backend/internal/database"
	"github.com/runpool/runpool-backend/internal/models"
)

// TripRatingHandler exposes the trip rating endpoints.
type TripRatingHandler struct {
	ratingRepo *database.RatingRepository
	tripRepo   *database.TripRepository
}

// NewTripRatingHandler creates a new TripRatingHandler
func NewTripRatingHandler(ratingRepo *database.RatingRepository, tripRepo *database.TripRepository) *TripRatingHandler {
	return &TripRatingHandler{ratingRepo: ratingRepo, tripRepo: tripRepo}
}

// CreateRating submits a rating for a trip participant
// POST /api/v1/trip-ratings
func (h *TripRatingHandler) CreateRating(c *gin.Context) {
	var req models.CreateTripRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := req.Validate(); err != nil {
		respondError(c, err)
		return
	}

	if _, err := h.tripRepo.GetByID(req.TripID); err != nil {
		respondError(c, err)
		return
	}

	exists, err := h.ratingRepo.Exists(req.TripID, req.RaterID, req.RatedID)
	if err != nil {
		respondError(c, err)
		return
	}
	if exists {
		respondError(c, models.ErrDuplicateRating)
		return
	}

	rating := &models.TripRating{
		TripID:  req.TripID,
		RaterID: req.RaterID,
		RatedID: req.RatedID,
		Type:    req.Type,
		Rating:  req.Rating,
		Comment: req.Comment,
	}
	if err := h.ratingRepo.Create(rating); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, rating)
}

// ListTripRatings lists all ratings left on a trip
// GET /api/v1/trips/:id/ratings
func (h *TripRatingHandler) ListTripRatings(c *gin.Context) {
	if _, err := h.tripRepo.GetByID(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	ratings, err := h.ratingRepo.ListByTrip(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ratings)
}

// ListUserRatings lists all ratings a user has received
// GET /api/v1/users/:id/ratings
func (h *TripRatingHandler) ListUserRatings(c *gin.Context) {
	ratings, err := h.ratingRepo.ListByRatedUser(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ratings)
}
