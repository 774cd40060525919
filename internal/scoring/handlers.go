package scoring

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/riskdesk/riskdesk/internal/logging"
	"github.com/riskdesk/riskdesk/internal/metrics"
	"github.com/riskdesk/riskdesk/internal/pagination"
	"github.com/riskdesk/riskdesk/internal/signal"
	"github.com/riskdesk/riskdesk/internal/traces"
)

// defaultListLimit is the decisions page size when the caller names none.
const defaultListLimit = 50

// ScoreRequest is the body for POST /api/risk/score. bookingId is carried
// through to the audit trail and realtime feed; the engine itself ignores it.
type ScoreRequest struct {
	BookingID string        `json:"bookingId"`
	Signals   signal.Bundle `json:"signals"`
}

// DecisionEmitter receives scored decisions for realtime streaming.
type DecisionEmitter interface {
	DecisionScored(bookingID string, d *Decision)
}

// Handler provides HTTP endpoints for risk scoring.
type Handler struct {
	engine *Engine
	store  Store // nil disables the audit trail
	events DecisionEmitter
}

// NewHandler creates a scoring handler.
func NewHandler(engine *Engine, store Store) *Handler {
	return &Handler{engine: engine, store: store}
}

// WithEvents attaches a realtime decision emitter.
func (h *Handler) WithEvents(events DecisionEmitter) *Handler {
	h.events = events
	return h
}

// RegisterRoutes sets up scoring routes on the given group.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/risk/score", h.ScoreBooking)
	r.GET("/risk/decisions", h.ListDecisions)
}

// ScoreBooking handles POST /api/risk/score.
func (h *Handler) ScoreBooking(c *gin.Context) {
	var req ScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		// Empty bodies score an empty bundle; anything unparseable is a 400
		// with the parse error surfaced verbatim.
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": err.Error(),
		})
		return
	}

	ctx, span := traces.StartSpan(c.Request.Context(), "scoring.Score")
	start := time.Now()
	decision := h.engine.Score(req.Signals)
	metrics.ScoringDuration.Observe(time.Since(start).Seconds())
	span.End()

	metrics.DecisionsTotal.WithLabelValues(string(decision.Decision)).Inc()

	if h.events != nil {
		h.events.DecisionScored(req.BookingID, decision)
	}

	// Best-effort audit write off the request path.
	if h.store != nil {
		rec := &Record{
			BookingID:  req.BookingID,
			Verdict:    decision.Decision,
			RiskScore:  decision.RiskScore,
			Confidence: decision.Confidence,
			Subscores:  decision.Subscores,
		}
		logger := logging.L(ctx)
		go func() {
			if err := h.store.Record(context.Background(), rec); err != nil {
				logger.Warn("failed to record decision", "error", err)
			}
		}()
	}

	c.JSON(http.StatusOK, decision)
}

// ListDecisions handles GET /api/risk/decisions.
// Optional query params: bookingId, limit (default 50, capped at 200).
func (h *Handler) ListDecisions(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusOK, gin.H{"ok": true, "decisions": []*Record{}})
		return
	}

	limit := pagination.Limit(c.Query("limit"), defaultListLimit)

	records, err := h.store.List(c.Request.Context(), c.Query("bookingId"), limit)
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

	c.JSON(http.StatusOK, gin.H{"ok": true, "decisions": records})
}
