package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/zvenigorodok/internal/domain/review"
	"github.com/GriffinCanCode/zvenigorodok/internal/infrastructure/resilience"
)

// maxReviewBody bounds add_review request bodies.
const maxReviewBody = 64 * 1024

// GetReviews lists reviews, optionally filtered by the target query parameter
func (h *Handlers) GetReviews(c *gin.Context) {
	reviews, err := h.reviews.List(c.Request.Context(), c.Query("target"))
	if err != nil {
		_ = c.Error(err)
		c.JSON(reviewStatus(err), gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	if reviews == nil {
		reviews = []review.Review{}
	}
	c.JSON(http.StatusOK, reviews)
}

// AddReview stores the review in the request body
func (h *Handlers) AddReview(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxReviewBody)

	var req review.Review
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request: " + err.Error(),
		})
		return
	}

	if _, err := h.reviews.Add(c.Request.Context(), req); err != nil {
		_ = c.Error(err)
		c.JSON(reviewStatus(err), gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.String(http.StatusOK, "review added")
}

func reviewStatus(err error) int {
	switch {
	case errors.Is(err, review.ErrUnknownTarget), errors.Is(err, review.ErrInvalidReview):
		return http.StatusBadRequest
	case errors.Is(err, resilience.ErrCircuitOpen), errors.Is(err, resilience.ErrTooManyRequests):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
