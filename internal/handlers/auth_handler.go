package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"quizbox/internal/auth"
)

type AuthHandler struct {
	Store *auth.Store
}

func NewAuthHandler(s *auth.Store) *AuthHandler {
	return &AuthHandler{Store: s}
}

// SignUp registers a new account and signs it in. Overwrites any
// previously stored account.
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
		Name     string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "details": err.Error()})
		return
	}

	user, err := h.Store.SignUp(context.Background(), req.Email, req.Password, req.Name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *AuthHandler) SignIn(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "details": err.Error()})
		return
	}

	user, err := h.Store.SignIn(context.Background(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sign in"})
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) SignInWithApple(c *gin.Context) {
	user, err := h.Store.SignInWithApple(context.Background())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sign in"})
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) SignInWithGoogle(c *gin.Context) {
	user, err := h.Store.SignInWithGoogle(context.Background())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sign in"})
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) SignOut(c *gin.Context) {
	if err := h.Store.SignOut(context.Background()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sign out"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Signed out"})
}

// Me reports the current user. While the initial load is in flight the
// state is "loading" rather than signed-out.
func (h *AuthHandler) Me(c *gin.Context) {
	if h.Store.Loading() {
		c.JSON(http.StatusOK, gin.H{"loading": true})
		return
	}
	user := h.Store.User()
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not signed in"})
		return
	}
	c.JSON(http.StatusOK, user)
}
