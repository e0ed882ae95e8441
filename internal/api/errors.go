package api

import (
	"errors"
	"net/http"

	"fittrack/workout-api/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondWithError maps service errors to HTTP responses. It is the only
// place handlers translate errors.
func respondWithError(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.AbortWithStatus(http.StatusNotFound)
	case errors.Is(err, service.ErrAccessDenied):
		abortWithError(c, http.StatusForbidden, service.ErrAccessDenied.Error())
	case errors.Is(err, service.ErrValidationFailed):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrUserAlreadyExists):
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrAuthenticationFailed), errors.Is(err, service.ErrInvalidToken):
		abortWithError(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrStorageUnavailable):
		abortWithError(c, http.StatusServiceUnavailable, err.Error())
	default:
		logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, "internal server error")
	}
}
