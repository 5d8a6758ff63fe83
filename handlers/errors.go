package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"patchbay/services"
)

// respondError maps service errors onto HTTP statuses. Not-found never
// reaches here: the stores model it as a nil return.
func respondError(c *gin.Context, err error) {
	var validationErr *services.ValidationError
	var transitionErr *services.InvalidTransitionError
	var policyErr *services.PathPolicyError

	switch {
	case errors.Is(err, services.ErrReadOnly):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	case errors.As(err, &transitionErr):
		c.JSON(http.StatusConflict, gin.H{"error": transitionErr.Error()})
	case errors.As(err, &policyErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":      policyErr.Error(),
			"violations": policyErr.Violations,
		})
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}
