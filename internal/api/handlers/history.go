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

// HistoryHandler serves the caller's saved translations. Every route runs behind JWTAuth.
type HistoryHandler struct {
	history *services.HistoryService
	log     *zap.Logger
}

func NewHistoryHandler(history *services.HistoryService, log *zap.Logger) *HistoryHandler {
	return &HistoryHandler{history: history, log: log}
}

type saveHistoryRequest struct {
	Text           string `json:"text"`
	TranslatedText string `json:"translatedText"`
	Source         string `json:"source"`
	Target         string `json:"target"`
}

// Save stores a translation in the caller's history
// POST /api/history
func (h *HistoryHandler) Save(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		respondError(c, h.log, errs.ErrUnauthorized)
		return
	}

	var req saveHistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.log, fmt.Errorf("%w: invalid request body", errs.ErrValidation))
		return
	}

	entry, err := h.history.Save(c.Request.Context(), user.ID, services.SaveRequest{
		Text:           req.Text,
		TranslatedText: req.TranslatedText,
		Source:         req.Source,
		Target:         req.Target,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"entry": entry})
}

// List returns the caller's history, newest first
// GET /api/history
func (h *HistoryHandler) List(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		respondError(c, h.log, errs.ErrUnauthorized)
		return
	}

	list, err := h.history.List(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"history": list})
}

// Delete removes one of the caller's records
// DELETE /api/history/:id
func (h *HistoryHandler) Delete(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		respondError(c, h.log, errs.ErrUnauthorized)
		return
	}

	if err := h.history.Delete(c.Request.Context(), user.ID, c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Clear removes all of the caller's records
// DELETE /api/history
func (h *HistoryHandler) Clear(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		respondError(c, h.log, errs.ErrUnauthorized)
		return
	}

	if err := h.history.Clear(c.Request.Context(), user.ID); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.Status(http.StatusNoContent)
}
