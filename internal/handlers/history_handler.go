package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"quizbox/internal/history"
	"quizbox/internal/stats"
)

type HistoryHandler struct {
	Store *history.Store
}

func NewHistoryHandler(s *history.Store) *HistoryHandler {
	return &HistoryHandler{Store: s}
}

// List returns the active user's results, newest first.
func (h *HistoryHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"loading": h.Store.Loading(),
		"results": h.Store.Results(),
	})
}

// GetResult returns one persisted attempt with its per-question detail.
func (h *HistoryHandler) GetResult(c *gin.Context) {
	result, err := h.Store.Result(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Result not found"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// Clear deletes the active user's history. No-op when signed out.
func (h *HistoryHandler) Clear(c *gin.Context) {
	h.Store.ClearHistory()
	c.JSON(http.StatusOK, gin.H{"message": "History cleared"})
}

// Stats summarizes the active user's history for the profile screen.
func (h *HistoryHandler) Stats(c *gin.Context) {
	summary := stats.Summarize(h.Store.Results())
	c.JSON(http.StatusOK, gin.H{
		"summary": summary,
		"band":    stats.Band(summary.AverageScore),
	})
}
