package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"quizbox/internal/models"
	"quizbox/internal/session"
)

type SessionHandler struct {
	Engine *session.Engine
	Data   *models.QuizData
}

func NewSessionHandler(e *session.Engine, data *models.QuizData) *SessionHandler {
	return &SessionHandler{Engine: e, Data: data}
}

// Info describes the loaded dataset for the start screen.
func (h *SessionHandler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"title":          h.Data.Title,
		"question_count": h.Data.QuestionCount,
	})
}

// StartQuiz begins a new attempt. Limit 0 means the full dataset.
func (h *SessionHandler) StartQuiz(c *gin.Context) {
	var req struct {
		Shuffle bool `json:"shuffle"`
		Limit   int  `json:"limit"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "details": err.Error()})
		return
	}

	if err := h.Engine.Start(req.Shuffle, req.Limit); err != nil {
		switch {
		case errors.Is(err, session.ErrNotInState):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, h.Engine.View())
}

// Answer records the option chosen for the current question. Repeated
// answers for the same question are accepted but ignored.
func (h *SessionHandler) Answer(c *gin.Context) {
	var req struct {
		Option models.Option `json:"option" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "details": err.Error()})
		return
	}

	if err := h.Engine.Answer(req.Option); err != nil {
		switch {
		case errors.Is(err, session.ErrNotInState):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, h.Engine.View())
}

// Next advances to the following question or finishes the attempt.
func (h *SessionHandler) Next(c *gin.Context) {
	if err := h.Engine.Next(); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.Engine.View())
}

// Review enters review mode over the wrong questions. With zero wrong
// answers this is informational only and the session stays in end.
func (h *SessionHandler) Review(c *gin.Context) {
	if err := h.Engine.Review(); err != nil {
		if errors.Is(err, session.ErrEmptyReview) {
			c.JSON(http.StatusOK, gin.H{
				"message": "You answered all questions correctly!",
				"state":   h.Engine.State(),
			})
			return
		}
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.Engine.View())
}

// MainMenu abandons the attempt and returns to start. The client is
// expected to have confirmed the destructive action.
func (h *SessionHandler) MainMenu(c *gin.Context) {
	h.Engine.Reset()
	c.JSON(http.StatusOK, h.Engine.View())
}

// GetState snapshots the session for rendering.
func (h *SessionHandler) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, h.Engine.View())
}
