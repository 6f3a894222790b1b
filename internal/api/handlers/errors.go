package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/muthii-lawrence/nyumba-hub.backend/internal/services"
)

// respondError translates a service error into the API error envelope.
// Errors outside the service taxonomy are treated as upstream failures;
// their detail is hidden in release mode.
func respondError(c *gin.Context, environment string, err error) {
	switch {
	case errors.Is(err, services.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Authentication required",
			"code":  "unauthenticated",
		})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{
			"error": "You are not allowed to perform this action",
			"code":  "forbidden",
		})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Resource not found",
			"code":  "not_found",
		})
	case errors.Is(err, services.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{
			"error": "Resource already exists",
			"code":  "conflict",
		})
	case errors.Is(err, services.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"code":    "invalid_input",
			"details": err.Error(),
		})
	case errors.Is(err, services.ErrInvalidState):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "Resource is not in a usable state",
			"code":    "invalid_state",
			"details": err.Error(),
		})
	default:
		log.Printf("upstream failure: %v", err)
		body := gin.H{
			"error": "Upstream failure",
			"code":  "upstream_failure",
		}
		if environment != "release" {
			body["details"] = err.Error()
		}
		c.JSON(http.StatusBadGateway, body)
	}
}
