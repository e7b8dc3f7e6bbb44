package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/OverlayPicker/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/OverlayPicker/backend/internal/manager"
	"github.com/GriffinCanCode/OverlayPicker/backend/internal/selection"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	registry *manager.Registry
	kv       selection.Backend
	metrics  *monitoring.Metrics
	logger   *zap.Logger
}

// NewHandlers creates a new handler set. kv serves the document protocol
// under /kv and may be nil to disable it; metrics may be nil.
func NewHandlers(
	registry *manager.Registry,
	kv selection.Backend,
	metrics *monitoring.Metrics,
	logger *zap.Logger,
) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		registry: registry,
		kv:       kv,
		metrics:  metrics,
		logger:   logger,
	}
}

// Register mounts every route on router
func (h *Handlers) Register(router gin.IRouter) {
	router.GET("/", h.Root)
	router.GET("/health", h.Health)

	domains := router.Group("/domains")
	domains.GET("", h.ListDomains)
	domains.GET("/:domain/options", h.ListOptions)
	domains.POST("/:domain/apply", h.Apply)
	domains.GET("/:domain/options/:option/previews/:index", h.Preview)

	if h.kv != nil {
		router.GET("/kv/:key", h.GetDocument)
		router.PUT("/kv/:key", h.PutDocument)
	}
}

// Root handles health check
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "Overlay Picker (Go)",
		"version": "0.1.0",
	})
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	body := gin.H{
		"status":  "healthy",
		"domains": h.registry.Stats(),
	}
	if h.kv != nil {
		body["document_backend"] = h.kv.Name()
	}
	if h.metrics != nil {
		body["metrics"] = h.metrics.Snapshot()
	}
	c.JSON(http.StatusOK, body)
}
