package middleware

import (
	"net/http"
	"strings"
	"sync"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
)

// BrotliConfig tunes response compression. Bodies shorter than MinLength are
// sent as-is; bank listings and distribution reports usually exceed it.
type BrotliConfig struct {
	Quality   int
	MinLength int
}

const defaultBrotliMinLength = 1024

// compressWriter holds the body back until it reaches minLength, then
// switches to a pooled brotli stream for the rest of the response.
type compressWriter struct {
	gin.ResponseWriter
	pool      *sync.Pool
	br        *brotli.Writer
	pending   []byte
	minLength int
}

func (w *compressWriter) Write(data []byte) (int, error) {
	if w.br != nil {
		return w.br.Write(data)
	}

	w.pending = append(w.pending, data...)
	if len(w.pending) < w.minLength {
		return len(data), nil
	}

	h := w.ResponseWriter.Header()
	h.Set("Content-Encoding", "br")
	h.Del("Content-Length")
	w.br = w.pool.Get().(*brotli.Writer)
	w.br.Reset(w.ResponseWriter)

	if _, err := w.br.Write(w.pending); err != nil {
		return 0, err
	}
	w.pending = w.pending[:0]
	return len(data), nil
}

func (w *compressWriter) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

// finish writes a short body uncompressed or closes the brotli stream.
func (w *compressWriter) finish() error {
	if w.br == nil {
		if len(w.pending) == 0 {
			return nil
		}
		_, err := w.ResponseWriter.Write(w.pending)
		return err
	}
	err := w.br.Close()
	w.pool.Put(w.br)
	w.br = nil
	return err
}

// Brotli compresses responses for clients that accept "br".
func Brotli() gin.HandlerFunc {
	return BrotliWithConfig(BrotliConfig{Quality: brotli.DefaultCompression})
}

func BrotliWithConfig(cfg BrotliConfig) gin.HandlerFunc {
	if cfg.Quality < brotli.BestSpeed || cfg.Quality > brotli.BestCompression {
		cfg.Quality = brotli.DefaultCompression
	}
	if cfg.MinLength <= 0 {
		cfg.MinLength = defaultBrotliMinLength
	}
	pool := &sync.Pool{New: func() any {
		return brotli.NewWriterLevel(nil, cfg.Quality)
	}}

	return func(c *gin.Context) {
		if skipCompression(c.Request) {
			c.Next()
			return
		}

		c.Header("Vary", "Accept-Encoding")
		w := &compressWriter{
			ResponseWriter: c.Writer,
			pool:           pool,
			minLength:      cfg.MinLength,
		}
		c.Writer = w
		defer func() {
			if err := w.finish(); err != nil {
				_ = c.Error(err)
			}
		}()
		c.Next()
	}
}

func skipCompression(r *http.Request) bool {
	if r.Method == http.MethodHead || strings.Contains(r.Header.Get("Accept"), "text/event-stream") {
		return true
	}
	for _, enc := range strings.Split(r.Header.Get("Accept-Encoding"), ",") {
		if name, _, _ := strings.Cut(strings.TrimSpace(enc), ";"); strings.EqualFold(name, "br") {
			return false
		}
	}
	return true
}
