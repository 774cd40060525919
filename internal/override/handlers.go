package override

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/riskdesk/riskdesk/internal/logging"
	"github.com/riskdesk/riskdesk/internal/metrics"
	"github.com/riskdesk/riskdesk/internal/pagination"
	"github.com/riskdesk/riskdesk/internal/traces"
	"github.com/riskdesk/riskdesk/internal/validation"
)

// RecordRequest is the body for POST /api/review/override. Every field is
// optional; a bare {} records an anonymous confirm.
type RecordRequest struct {
	CaseID    *string        `json:"caseId"`
	BookingID *string        `json:"bookingId"`
	Label     *string        `json:"label"`
	Rationale string         `json:"rationale"`
	Meta      map[string]any `json:"meta"`
}

// Handler provides HTTP endpoints for the override ledger.
type Handler struct {
	store Store
}

// NewHandler creates an override ledger handler.
func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes sets up review routes on the given group.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/review/override", h.RecordOverride)
	r.GET("/review/overrides", h.ListOverrides)
}

// RecordOverride handles POST /api/review/override.
func (h *Handler) RecordOverride(c *gin.Context) {
	var req RecordRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": err.Error(),
		})
		return
	}

	rec := &Record{
		CaseID:    req.CaseID,
		BookingID: req.BookingID,
		Label:     req.Label,
		Rationale: validation.SanitizeString(req.Rationale, validation.MaxStringLength),
		Meta:      req.Meta,
	}
	if rec.Meta == nil {
		rec.Meta = map[string]any{}
	}

	ctx, span := traces.StartSpan(c.Request.Context(), "override.Append")
	saved, err := h.store.Append(ctx, rec)
	span.End()
	if err != nil {
		logging.L(c.Request.Context()).Error("failed to append override", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": err.Error(),
		})
		return
	}

	metrics.OverridesTotal.Inc()

	c.JSON(http.StatusOK, gin.H{"ok": true, "override": saved})
}

// ListOverrides handles GET /api/review/overrides.
// The dashboard takes the default 50; limit is accepted and capped at 200.
func (h *Handler) ListOverrides(c *gin.Context) {
	limit := pagination.Limit(c.Query("limit"), DefaultListLimit)

	records, err := h.store.List(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": err.Error(),
		})
		return
	}
	if records == nil {
		records = []*Record{}
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "overrides": records})
}
