package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"stayfind/internal/model"
	"stayfind/internal/repository"
)

// FeedbackHandler handles feedback-related HTTP requests
type FeedbackHandler struct {
	repo   *repository.PostgresRepository
	logger *zap.Logger
}

// NewFeedbackHandler creates a new feedback handler. The repository may be
// nil when no database is configured; feedback is then accepted and
// dropped so clients need no special casing.
func NewFeedbackHandler(repo *repository.PostgresRepository, logger *zap.Logger) *FeedbackHandler {
	return &FeedbackHandler{repo: repo, logger: logger}
}

// Submit handles POST /api/v1/feedback
func (h *FeedbackHandler) Submit(c *gin.Context) {
	var req model.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	validActions := map[string]bool{
		"click":   true,
		"contact": true,
		"book":    true,
	}
	if !validActions[req.Action] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid action. Must be one of: click, contact, book"})
		return
	}

	if h.repo != nil {
		if err := h.repo.SaveFeedback(c.Request.Context(), req.SearchID, req.ListingURL, req.Action); err != nil {
			h.logger.Error("failed to log feedback", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log feedback"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Feedback logged successfully"})
}
