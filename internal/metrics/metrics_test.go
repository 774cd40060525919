package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	dto "github.com/prometheus/client_model/go"
)

func TestStatusBucket(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{100, "1xx"},
		{200, "2xx"},
		{204, "2xx"},
		{301, "3xx"},
		{400, "4xx"},
		{404, "4xx"},
		{429, "4xx"},
		{500, "5xx"},
		{503, "5xx"},
	}

	for _, tt := range tests {
		if got := statusBucket(tt.code); got != tt.want {
			t.Errorf("statusBucket(%d) = %s, want %s", tt.code, got, tt.want)
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/metrics", Handler())

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}

	body := w.Body.String()
	if len(body) == 0 {
		t.Error("Expected non-empty metrics response")
	}

	// Gauges are always exported, even at their default 0.
	for _, name := range []string{
		"riskdesk_active_websocket_clients",
		"riskdesk_goroutines",
	} {
		if !strings.Contains(body, name) {
			t.Errorf("Expected metrics output to contain %s", name)
		}
	}

	// Counters appear only after the first observation.
	DecisionsTotal.WithLabelValues("REVIEW").Inc()
	CreditActionsTotal.WithLabelValues("HOLD").Inc()
	OverridesTotal.Inc()

	w = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/metrics", nil)
	r.ServeHTTP(w, req)
	body = w.Body.String()

	for _, name := range []string{
		"riskdesk_decisions_total",
		"riskdesk_credit_actions_total",
		"riskdesk_overrides_recorded_total",
	} {
		if !strings.Contains(body, name) {
			t.Errorf("Expected metrics output to contain %s", name)
		}
	}
}

func TestDecisionCounterIncrements(t *testing.T) {
	counter := DecisionsTotal.WithLabelValues("APPROVE")

	var before dto.Metric
	if err := counter.Write(&before); err != nil {
		t.Fatalf("failed to read counter: %v", err)
	}

	counter.Inc()
	counter.Inc()

	var after dto.Metric
	if err := counter.Write(&after); err != nil {
		t.Fatalf("failed to read counter: %v", err)
	}
	if got := after.GetCounter().GetValue() - before.GetCounter().GetValue(); got != 2 {
		t.Errorf("counter delta = %v, want 2", got)
	}
}

func TestMiddlewareRecordsRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.GET("/api/risk/decisions", func(c *gin.Context) {
		c.String(200, "ok")
	})
	r.GET("/metrics", Handler())

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/risk/decisions", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/metrics", nil)
	r.ServeHTTP(w, req)
	body := w.Body.String()

	// Route pattern label, not the raw path.
	if !strings.Contains(body, `path="/api/risk/decisions"`) {
		t.Error("Expected request counter labeled with route pattern")
	}
	if !strings.Contains(body, `status="2xx"`) {
		t.Error("Expected status bucket label")
	}
}
