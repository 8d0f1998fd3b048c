package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/codyseavey/textify/internal/errs"
)

// respondError maps a service error to a status code and a JSON body.
// Unexpected errors are logged and hidden behind a generic message.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	status, code, msg := classify(err)
	if status == http.StatusInternalServerError {
		log.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		msg = "Internal server error"
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg, "code": code})
}

func classify(err error) (int, string, string) {
	switch {
	case errors.Is(err, errs.ErrValidation):
		return http.StatusBadRequest, "VALIDATION_FAILED", err.Error()
	case errors.Is(err, errs.ErrUnauthorized):
		return http.StatusUnauthorized, "UNAUTHORIZED", "Invalid credentials"
	case errors.Is(err, errs.ErrAlreadyExists):
		return http.StatusConflict, "ALREADY_EXISTS", "Username already exists"
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "Not found"
	case errors.Is(err, errs.ErrUpstream):
		return http.StatusBadGateway, "UPSTREAM_FAILURE", "Translation service unavailable"
	case errors.Is(err, errs.ErrRateLimited):
		return http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests, try again later"
	default:
		return http.StatusInternalServerError, "INTERNAL", err.Error()
	}
}
