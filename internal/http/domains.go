package http

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/OverlayPicker/backend/internal/catalog"
	"github.com/GriffinCanCode/OverlayPicker/backend/internal/manager"
	"github.com/GriffinCanCode/OverlayPicker/backend/internal/overlay"
	"github.com/GriffinCanCode/OverlayPicker/backend/internal/shared/types"
	"github.com/GriffinCanCode/OverlayPicker/backend/internal/shared/utils"
)

// OptionView is the wire form of a catalog option
type OptionView struct {
	ID          string                              `json:"id"`
	Title       string                              `json:"title"`
	IsDefault   bool                                `json:"is_default"`
	Active      bool                                `json:"active"`
	Packages    map[types.Category]*types.PackageID `json:"packages"`
	Previews    []overlay.Asset                     `json:"previews"`
	Resolutions []catalog.Resolution                `json:"resolutions,omitempty"`
}

func newOptionView(o catalog.Option, activeID string) OptionView {
	return OptionView{
		ID:          o.ID(),
		Title:       o.Title(),
		IsDefault:   o.IsDefault(),
		Active:      o.ID() == activeID,
		Packages:    o.Packages(),
		Previews:    o.Previews(),
		Resolutions: o.Resolutions(),
	}
}

// ApplyRequest selects an option by id
type ApplyRequest struct {
	OptionID string `json:"option_id" binding:"required"`
}

// ListDomains lists every domain with its runtime state
func (h *Handlers) ListDomains(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"domains": h.registry.Statuses(),
		"stats":   h.registry.Stats(),
	})
}

// ListOptions returns the catalog of a domain and the active option
func (h *Handlers) ListOptions(c *gin.Context) {
	m, ok := h.domain(c)
	if !ok {
		return
	}

	reload, _ := strconv.ParseBool(c.Query("reload"))
	options, err := m.Fetch(c.Request.Context(), reload).Wait(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}

	var activeID *string
	if active, ok := m.Active(); ok {
		id := active.ID()
		activeID = &id
	}

	views := make([]OptionView, 0, len(options))
	for _, o := range options {
		views = append(views, newOptionView(o, deref(activeID)))
	}

	c.JSON(http.StatusOK, gin.H{
		"domain":    m.ID(),
		"state":     m.State().String(),
		"active_id": activeID,
		"options":   views,
	})
}

// Apply persists and enables an option
func (h *Handlers) Apply(c *gin.Context) {
	m, ok := h.domain(c)
	if !ok {
		return
	}

	var req ApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := utils.ValidateString(req.OptionID, "option_id", 1, utils.MaxIDLength*2, true); err != nil {
		badRequest(c, err)
		return
	}

	option, ok, err := h.option(c.Request.Context(), m, req.OptionID)
	if err != nil {
		fail(c, err)
		return
	}
	if !ok {
		notFound(c, "option", req.OptionID)
		return
	}

	// The apply runs to completion even if the client goes away
	task := m.Apply(context.WithoutCancel(c.Request.Context()), option)
	if _, err := task.Wait(c.Request.Context()); err != nil {
		h.logger.Warn("apply failed",
			zap.String("domain", m.ID()),
			zap.String("option", option.ID()),
			zap.Error(err))
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"domain":    m.ID(),
		"active_id": option.ID(),
		"option":    newOptionView(option, option.ID()),
	})
}

// Preview serves the raw bytes of one preview asset
func (h *Handlers) Preview(c *gin.Context) {
	m, ok := h.domain(c)
	if !ok {
		return
	}

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		badRequest(c, fmt.Errorf("invalid preview index %q", c.Param("index")))
		return
	}

	option, ok, err := h.option(c.Request.Context(), m, c.Param("option"))
	if err != nil {
		fail(c, err)
		return
	}
	if !ok {
		notFound(c, "option", c.Param("option"))
		return
	}

	previews := option.Previews()
	if index >= len(previews) {
		notFound(c, "preview", c.Param("index"))
		return
	}

	asset := previews[index]
	c.Header("Cache-Control", "public, max-age=300")
	c.Data(http.StatusOK, asset.ContentType, asset.Data)
}

// domain resolves the :domain parameter or writes a 404
func (h *Handlers) domain(c *gin.Context) (*manager.Manager, bool) {
	domainID := c.Param("domain")
	if err := utils.ValidateID(domainID, "domain", true); err != nil {
		badRequest(c, err)
		return nil, false
	}

	m, ok := h.registry.Get(domainID)
	if !ok {
		notFound(c, "domain", domainID)
		return nil, false
	}
	return m, true
}

// option looks up optionID in the last fetched catalog, fetching once if
// the domain has not been loaded yet
func (h *Handlers) option(ctx context.Context, m *manager.Manager, optionID string) (catalog.Option, bool, error) {
	if option, ok := m.Option(optionID); ok {
		return option, true, nil
	}
	if m.State() != manager.StateUninitialized {
		return catalog.Option{}, false, nil
	}

	options, err := m.Fetch(ctx, false).Wait(ctx)
	if err != nil {
		return catalog.Option{}, false, err
	}
	option, ok := catalog.Find(options, optionID)
	return option, ok, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
