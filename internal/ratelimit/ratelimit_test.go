package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestAllow_BurstThenDeny(t *testing.T) {
	l := New(Config{
		RequestsPerMinute: 60,
		BurstSize:         5,
		CleanupInterval:   time.Minute,
	})
	defer l.Stop()

	for i := 0; i < 5; i++ {
		if !l.Allow("client1") {
			t.Fatalf("request %d should be allowed within burst", i)
		}
	}
	if l.Allow("client1") {
		t.Error("request past burst should be denied")
	}
}

func TestAllow_IndependentClients(t *testing.T) {
	l := New(Config{
		RequestsPerMinute: 60,
		BurstSize:         2,
		CleanupInterval:   time.Minute,
	})
	defer l.Stop()

	for i := 0; i < 2; i++ {
		l.Allow("client1")
	}
	if l.Allow("client1") {
		t.Error("client1 should be exhausted")
	}
	if !l.Allow("client2") {
		t.Error("client2 should have its own bucket")
	}
}

func TestAllow_Refills(t *testing.T) {
	// 6000 rpm = 100 tokens/sec, so a short sleep refills the bucket.
	l := New(Config{
		RequestsPerMinute: 6000,
		BurstSize:         2,
		CleanupInterval:   time.Minute,
	})
	defer l.Stop()

	l.Allow("client1")
	l.Allow("client1")
	if l.Allow("client1") {
		t.Fatal("bucket should be empty")
	}

	time.Sleep(50 * time.Millisecond)
	if !l.Allow("client1") {
		t.Error("bucket should have refilled")
	}
}

func TestMiddleware_429(t *testing.T) {
	gin.SetMode(gin.TestMode)

	l := New(Config{
		RequestsPerMinute: 60,
		BurstSize:         2,
		CleanupInterval:   time.Minute,
	})
	defer l.Stop()

	router := gin.New()
	router.Use(l.Middleware())
	router.GET("/test", func(c *gin.Context) {
		c.String(200, "ok")
	})

	get := func() int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/test", nil)
		router.ServeHTTP(w, req)
		return w.Code
	}

	if code := get(); code != http.StatusOK {
		t.Fatalf("first request: expected 200, got %d", code)
	}
	if code := get(); code != http.StatusOK {
		t.Fatalf("second request: expected 200, got %d", code)
	}
	if code := get(); code != http.StatusTooManyRequests {
		t.Errorf("third request: expected 429, got %d", code)
	}
}
