package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tradingzen/backend/internal/models"
	"github.com/tradingzen/backend/internal/repository"
	"github.com/tradingzen/backend/internal/service"
	"github.com/tradingzen/backend/pkg/logger"
	"go.uber.org/zap"
)

const msgInternal = "Internal server error"

// respondError maps an error from the service or storage layer to a status
// and a JSON body. invalidMsg is the message used for validation failures.
func respondError(c *gin.Context, err error, invalidMsg string) {
	var validationErr *models.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   invalidMsg,
			"details": validationErr.Fields,
		})
		return
	}

	status, msg := classify(err)
	if status >= http.StatusInternalServerError {
		logger.Log.Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}
	c.JSON(status, gin.H{"error": msg})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrUsernameTaken):
		return http.StatusBadRequest, "Username is already taken"
	case errors.Is(err, service.ErrEmailTaken):
		return http.StatusBadRequest, "Email is already registered"
	case errors.Is(err, repository.ErrDuplicateKey):
		return http.StatusBadRequest, "A record with these values already exists"
	case errors.Is(err, service.ErrUserNotFound):
		return http.StatusBadRequest, "User not found"
	case errors.Is(err, service.ErrCourseNotFound):
		return http.StatusBadRequest, "Course not found"
	case errors.Is(err, service.ErrBrokerInfoRequired):
		return http.StatusBadRequest, "Broker information is required"
	case errors.Is(err, repository.ErrInvalidIdentifier):
		return http.StatusBadRequest, "Invalid identifier"
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid credentials"
	}
	return http.StatusInternalServerError, msgInternal
}

// bindBody reads the request body as a generic JSON object for the schema
// parsers. It writes the 400 itself and returns false on malformed JSON.
func bindBody(c *gin.Context) (map[string]any, bool) {
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		logger.Log.Warn("Request body parsing failed",
			zap.String("path", c.FullPath()),
			zap.String("ip", c.ClientIP()),
			zap.Error(err),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return nil, false
	}
	return body, true
}
