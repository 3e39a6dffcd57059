package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"sales-order-backend/internal/domain"
	"sales-order-backend/internal/models"
	"sales-order-backend/internal/query"
)

const validationFailedMessage = "Request payload validation failed."

func respondOK(c *gin.Context, status int, result any) {
	c.JSON(status, models.Response{Success: true, Result: result})
}

func fail(c *gin.Context, status int, message string, result any) {
	c.JSON(status, models.Response{Success: false, Result: result, Message: &message})
}

// respondError is the only place an error is turned into an HTTP status.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	var (
		invalid  domain.ValidationError
		mismatch domain.IDMismatchError
		notFound domain.NotFoundError
		unknown  *query.UnknownFieldError
	)
	switch {
	case errors.As(err, &invalid):
		fail(c, http.StatusBadRequest, validationFailedMessage, invalid.Fields)
	case errors.As(err, &mismatch):
		fail(c, http.StatusBadRequest, mismatch.Error(), nil)
	case errors.As(err, &unknown):
		fail(c, http.StatusBadRequest, unknown.Error(), nil)
	case errors.As(err, &notFound):
		fail(c, http.StatusNotFound, notFound.Error(), nil)
	default:
		logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		fail(c, http.StatusInternalServerError, "internal server error", nil)
	}
}
