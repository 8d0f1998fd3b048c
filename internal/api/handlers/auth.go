package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/codyseavey/textify/internal/errs"
	"github.com/codyseavey/textify/internal/middleware"
	"github.com/codyseavey/textify/internal/services"
)

type AuthHandler struct {
	auth *services.AuthService
	log  *zap.Logger
}

func NewAuthHandler(auth *services.AuthService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, log: log}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register creates an account and returns a session token
// POST /api/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.log, fmt.Errorf("%w: invalid request body", errs.ErrValidation))
		return
	}

	res, err := h.auth.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"token": res.Token,
		"user":  res.User,
	})
}

// Login exchanges credentials for a session token
// POST /api/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.log, fmt.Errorf("%w: invalid request body", errs.ErrValidation))
		return
	}

	res, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": res.Token,
		"user":  res.User,
	})
}

// Verify reports the user behind the caller's token. Runs behind JWTAuth.
// Used by clients to check if their stored token is still valid.
// GET /api/auth/verify
func (h *AuthHandler) Verify(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		respondError(c, h.log, errs.ErrUnauthorized)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid": true,
		"user":  user,
	})
}
