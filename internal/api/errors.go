// Package api exposes the ledger over HTTP with gin.
package api

import (
	"errors"   // Unwrapping service errors
	"net/http" // HTTP status codes

	"finance_tracker/internal/middleware" // Request ID
	"finance_tracker/internal/service"    // Error kinds

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

var kindStatus = map[service.Kind]int{
	service.KindValidation:   http.StatusBadRequest,
	service.KindUnauthorized: http.StatusUnauthorized,
	service.KindForbidden:    http.StatusForbidden,
	service.KindNotFound:     http.StatusNotFound,
	service.KindConflict:     http.StatusConflict,
}

// respondError renders err as {error, message} with the status of its kind
func respondError(c *gin.Context, err error) {
	_ = c.Error(err) // Picked up by the access log
	status, ok := kindStatus[service.KindOf(err)]
	if !ok {
		logrus.WithFields(logrus.Fields{
			"request_id": c.GetString(middleware.RequestIDKey),
			"path":       c.Request.URL.Path,
			"error":      err.Error(),
		}).Error("Internal error")
		respondStatus(c, http.StatusInternalServerError, "An unexpected error occurred")
		return
	}
	msg := err.Error()
	var se *service.Error
	if errors.As(err, &se) {
		msg = se.Message
	}
	respondStatus(c, status, msg)
}

// respondStatus writes an error body for a status the handler decided itself
func respondStatus(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": http.StatusText(status), "message": msg})
}

func badRequest(c *gin.Context, msg string) {
	respondStatus(c, http.StatusBadRequest, msg)
}
