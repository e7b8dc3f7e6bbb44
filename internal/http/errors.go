package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/OverlayPicker/backend/internal/manager"
	"github.com/GriffinCanCode/OverlayPicker/backend/internal/overlay"
	"github.com/GriffinCanCode/OverlayPicker/backend/internal/selection"
)

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, overlay.ErrPackageNotFound), errors.Is(err, overlay.ErrAssetNotFound):
		return http.StatusNotFound
	case errors.Is(err, manager.ErrBusy), errors.Is(err, selection.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, manager.ErrInvalidOption), errors.Is(err, selection.ErrParseFailure):
		return http.StatusUnprocessableEntity
	case errors.Is(err, selection.ErrUnderlyingStore), errors.Is(err, overlay.ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return statusClientClosedRequest
	default:
		return http.StatusInternalServerError
	}
}

// statusClientClosedRequest is the de facto code for abandoned requests
const statusClientClosedRequest = 499

// fail writes an error response and records err on the context
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(statusFor(err), gin.H{"error": err.Error()})
}

func notFound(c *gin.Context, what, id string) {
	c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": what + " not found", what: id})
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
