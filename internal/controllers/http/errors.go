package http

import (
	"errors"
	"log/slog"
	"net/http"

	"storefront/internal/services"

	"github.com/gin-gonic/gin"
)

var notFoundErrors = []error{
	services.ErrOrderNotFound,
	services.ErrProductNotFound,
	services.ErrUserNotFound,
	services.ErrBrandNotFound,
	services.ErrPromotionNotFound,
	services.ErrPaymentNotFound,
}

// respondError maps service errors onto status codes. Anything unclassified
// is logged and answered with a generic 500.
func respondError(c *gin.Context, err error) {
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error(), "details": verr.Problems})
		return
	}
	for _, nf := range notFoundErrors {
		if errors.Is(err, nf) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
	}
	switch {
	case errors.Is(err, services.ErrInvalidCredentials), errors.Is(err, services.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrEmailTaken):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		slog.Error("request failed", "method", c.Request.Method, "path", c.Request.URL.Path, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
