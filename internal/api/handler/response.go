package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Mo-Ibra/next-fullstack-jobs/internal/api/domain"
	"github.com/Mo-Ibra/next-fullstack-jobs/internal/api/dto"
)

const msgJobNotFound = "Job not found"

// statusFor maps an error onto the HTTP status and the message the client sees.
// Anything unrecognised is a store failure and gets the fallback message.
func statusFor(err error, fallback string) (int, string) {
	var de *domain.DomainError
	if errors.As(err, &de) {
		switch de.Type {
		case domain.ErrTypeInvalidInput:
			return http.StatusBadRequest, de.Message
		case domain.ErrTypeUnauthorized:
			return http.StatusUnauthorized, de.Message
		case domain.ErrTypeNotFound:
			return http.StatusNotFound, de.Message
		case domain.ErrTypeRateLimit:
			return http.StatusTooManyRequests, de.Message
		}
		return http.StatusInternalServerError, fallback
	}

	if errors.Is(err, domain.ErrJobNotFound) {
		return http.StatusNotFound, msgJobNotFound
	}
	if errors.Is(err, domain.ErrUnauthorized) {
		return http.StatusUnauthorized, "Unauthorized"
	}
	return http.StatusInternalServerError, fallback
}

// respondError writes the {"error": "..."} body. Server-side failures are logged with their stack.
func respondError(c *gin.Context, logger *slog.Logger, err error, fallback string) {
	status, msg := statusFor(err, fallback)

	if status >= http.StatusInternalServerError {
		attrs := []any{
			slog.String("path", c.Request.URL.Path),
			slog.String("error", err.Error()),
		}
		var de *domain.DomainError
		if errors.As(err, &de) && len(de.Stack) > 0 {
			attrs = append(attrs, slog.String("stack", string(de.Stack)))
		}
		logger.Error(fallback, attrs...)
	}

	c.AbortWithStatusJSON(status, dto.ErrorResponse{Error: msg})
}
