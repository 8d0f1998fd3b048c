package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/codyseavey/textify/internal/services"
)

type TranslateHandler struct {
	translator *services.Translator
	log        *zap.Logger
}

func NewTranslateHandler(translator *services.Translator, log *zap.Logger) *TranslateHandler {
	return &TranslateHandler{translator: translator, log: log}
}

// Translate translates text, detecting the source language when it is "auto"
// GET /api/translate?text=...&source=auto&target=en
func (h *TranslateHandler) Translate(c *gin.Context) {
	text := c.Query("text")
	source := c.DefaultQuery("source", services.AutoDetect)
	target := c.DefaultQuery("target", services.FallbackLanguage)

	res, err := h.translator.Translate(c.Request.Context(), text, source, target)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

// GetCacheStats returns translation cache counters
// GET /api/translate/stats
func (h *TranslateHandler) GetCacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.translator.CacheStats())
}
