package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/runpool/runpool-backend/internal/models"
)

// respondError maps the domain error taxonomy onto HTTP statuses: missing
// entities are 404, rule violations are 400, everything else is 500.
func respondError(c *gin.Context, err error) {
	switch {
	case models.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case models.IsInvalidState(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
