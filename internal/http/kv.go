package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/OverlayPicker/backend/internal/selection"
	"github.com/GriffinCanCode/OverlayPicker/backend/internal/shared/utils"
)

// GetDocument serves a stored document with its version as ETag
func (h *Handlers) GetDocument(c *gin.Context) {
	key, ok := validKey(c)
	if !ok {
		return
	}

	data, version, err := h.kv.Get(c.Request.Context(), key)
	if err != nil {
		h.logger.Error("document read failed", zap.String("key", key), zap.Error(err))
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	if version == selection.NoVersion && data == nil {
		notFound(c, "key", key)
		return
	}

	c.Header("ETag", selection.FormatETag(version))
	c.Data(http.StatusOK, "application/json", data)
}

// PutDocument writes a document conditionally. If-Match names the version
// being replaced; If-None-Match: * creates a new key. Stale preconditions
// get 412 with the current ETag.
func (h *Handlers) PutDocument(c *gin.Context) {
	key, ok := validKey(c)
	if !ok {
		return
	}

	expected, ok := precondition(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusPreconditionRequired, gin.H{
			"error": "If-Match or If-None-Match: * is required",
		})
		return
	}

	data, err := io.ReadAll(io.LimitReader(c.Request.Body, utils.MaxDocumentSize+1))
	if err != nil {
		badRequest(c, err)
		return
	}
	if err := utils.ValidateSize(data, utils.MaxDocumentSize); err != nil {
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
		return
	}

	version, err := h.kv.CompareAndSwap(c.Request.Context(), key, expected, data)
	switch {
	case errors.Is(err, selection.ErrVersionMismatch):
		if version != selection.NoVersion {
			c.Header("ETag", selection.FormatETag(version))
		}
		c.AbortWithStatusJSON(http.StatusPreconditionFailed, gin.H{"error": "version mismatch", "key": key})
		return
	case err != nil:
		h.logger.Error("document write failed", zap.String("key", key), zap.Error(err))
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}

	status := http.StatusOK
	if expected == selection.NoVersion {
		status = http.StatusCreated
	}
	c.Header("ETag", selection.FormatETag(version))
	c.Status(status)
}

func validKey(c *gin.Context) (string, bool) {
	key := c.Param("key")
	if err := utils.ValidateKey(key); err != nil {
		badRequest(c, fmt.Errorf("invalid key: %w", err))
		return "", false
	}
	return key, true
}

// precondition returns the expected version named by the request headers
func precondition(c *gin.Context) (selection.Version, bool) {
	if match := c.GetHeader("If-Match"); match != "" {
		return selection.ParseETag(match), true
	}
	if c.GetHeader("If-None-Match") == "*" {
		return selection.NoVersion, true
	}
	return selection.NoVersion, false
}
