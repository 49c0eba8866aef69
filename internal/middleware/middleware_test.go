package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRateLimiter_PerRouteBuckets(t *testing.T) {
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	rl := &RateLimiter{
		buckets:  make(map[bucketKey]*bucket),
		rate:     2,
		interval: time.Minute,
		now:      func() time.Time { return now },
	}

	r := gin.New()
	r.POST("/import", rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/distribute", rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	call := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, path, nil))
		return w
	}

	for i := 0; i < 2; i++ {
		if w := call("/import"); w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, w.Code)
		}
	}
	w := call("/import")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 once the bucket is empty, got %d", w.Code)
	}
	if w.Header().Get("Retry-After") != "60" {
		t.Errorf("expected Retry-After 60, got %q", w.Header().Get("Retry-After"))
	}

	if w := call("/distribute"); w.Code != http.StatusOK {
		t.Errorf("expected a separate budget per route, got %d", w.Code)
	}

	now = now.Add(time.Minute)
	if w := call("/import"); w.Code != http.StatusOK {
		t.Errorf("expected bucket to refill after one interval, got %d", w.Code)
	}
}

func TestBrotli_CompressesLargeResponses(t *testing.T) {
	body := strings.Repeat("question bank ", 200)

	r := gin.New()
	r.Use(Brotli())
	r.GET("/big", func(c *gin.Context) { c.String(http.StatusOK, body) })
	r.GET("/small", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	req := httptest.NewRequest(http.MethodGet, "/big", nil)
	req.Header.Set("Accept-Encoding", "gzip, br")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Header().Get("Content-Encoding") != "br" {
		t.Fatalf("expected br encoding, got %q", w.Header().Get("Content-Encoding"))
	}
	decoded, err := io.ReadAll(brotli.NewReader(w.Body))
	if err != nil {
		t.Fatalf("expected valid brotli stream, got: %v", err)
	}
	if string(decoded) != body {
		t.Errorf("decoded body does not match the original")
	}

	req = httptest.NewRequest(http.MethodGet, "/small", nil)
	req.Header.Set("Accept-Encoding", "br")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Header().Get("Content-Encoding") != "" || w.Body.String() != "ok" {
		t.Errorf("expected small body to pass through, got %q / %q", w.Header().Get("Content-Encoding"), w.Body.String())
	}
}

func TestBrotli_SkipsClientsWithoutBr(t *testing.T) {
	body := strings.Repeat("distribution report ", 200)

	r := gin.New()
	r.Use(Brotli())
	r.GET("/big", func(c *gin.Context) { c.String(http.StatusOK, body) })

	tests := []struct {
		name     string
		encoding string
		wantBr   bool
	}{
		{"no header", "", false},
		{"gzip only", "gzip", false},
		{"br with quality", "gzip;q=0.5, br;q=1.0", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/big", nil)
			if tt.encoding != "" {
				req.Header.Set("Accept-Encoding", tt.encoding)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			gotBr := w.Header().Get("Content-Encoding") == "br"
			if gotBr != tt.wantBr {
				t.Fatalf("expected br=%v, got %v", tt.wantBr, gotBr)
			}
			if !tt.wantBr && w.Body.String() != body {
				t.Errorf("expected uncompressed body to pass through")
			}
		})
	}
}
