package creditpolicy

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/riskdesk/riskdesk/internal/metrics"
)

// RecommendRequest is the body for POST /api/credit/recommend. Fields are
// untyped so numeric strings and percentage-form values flow through the
// normalizer instead of failing the bind.
type RecommendRequest struct {
	CurrentCreditLimit any `json:"currentCreditLimit"`
	TrustScore         any `json:"trustScore"`
	RiskScore          any `json:"riskScore"`
}

// Handler provides the HTTP endpoint for credit recommendations.
type Handler struct{}

// NewHandler creates a credit policy handler.
func NewHandler() *Handler {
	return &Handler{}
}

// RegisterRoutes sets up credit policy routes on the given group.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/credit/recommend", h.RecommendAction)
}

// RecommendAction handles POST /api/credit/recommend.
func (h *Handler) RecommendAction(c *gin.Context) {
	var req RecommendRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": err.Error(),
		})
		return
	}

	rec := Recommend(req.TrustScore, req.RiskScore, req.CurrentCreditLimit)
	metrics.CreditActionsTotal.WithLabelValues(string(rec.Action)).Inc()

	c.JSON(http.StatusOK, rec)
}
