// internal/interfaces/http/handlers/respond.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/ambika-backend/internal/pkg/apperrors"
)

// respondError maps domain errors onto HTTP status codes. Business rule
// rejections surface as 400 with the exact reason, missing resources as
// 404, anything else as 500 with a generic message so internals never
// leak to clients.
func respondError(c *gin.Context, err error, fallback string) {
	var validationErr *apperrors.ValidationError
	var stockErr *apperrors.InsufficientStockError
	var couponErr *apperrors.CouponIneligibleError
	var transitionErr *apperrors.InvalidTransitionError
	var notFoundErr *apperrors.NotFoundError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": validationErr.Message,
		})
	case errors.As(err, &stockErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     stockErr.Error(),
			"available": stockErr.Available,
			"requested": stockErr.Requested,
		})
	case errors.As(err, &couponErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": couponErr.Reason,
			"code":  couponErr.Code,
		})
	case errors.As(err, &transitionErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": transitionErr.Error(),
		})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, gin.H{
			"error": notFoundErr.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": fallback,
		})
	}
}

// respondBindError reports a request body or query binding failure
func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid request data",
		"details": err.Error(),
	})
}

// respondUnauthorized reports a missing authenticated user
func respondUnauthorized(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"error": "User not authenticated",
	})
}
