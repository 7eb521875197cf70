package middleware

import (
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
)

// BrotliConfig tunes response compression.
type BrotliConfig struct {
	Quality int
	// MinLength is the smallest body worth compressing.
	MinLength int
	// Skipper, when set, exempts extra requests.
	Skipper func(c *gin.Context) bool
}

var DefaultBrotliConfig = BrotliConfig{
	Quality:   brotli.DefaultCompression,
	MinLength: 1024,
}

// Content types that are already compressed or must stream.
var incompressible = []string{
	"image/", "video/", "audio/",
	"application/pdf", "application/zip", "application/octet-stream",
	"application/vnd.openxmlformats-officedocument.",
	"text/event-stream",
}

// brotliWriter holds back the first MinLength bytes, then decides once
// whether the body is compressed.
type brotliWriter struct {
	gin.ResponseWriter
	quality   int
	minLength int
	buf       []byte
	decided   bool
	br        *brotli.Writer
}

func (w *brotliWriter) Write(data []byte) (int, error) {
	if w.decided {
		return w.out(data)
	}
	if !compressible(w.Header()) {
		w.decide(false)
		return w.out(data)
	}
	w.buf = append(w.buf, data...)
	if len(w.buf) < w.minLength {
		return len(data), nil
	}
	w.decide(true)
	if err := w.drain(); err != nil {
		return 0, err
	}
	return len(data), nil
}

func (w *brotliWriter) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

// Flush commits to an uncompressed body when nothing was decided yet.
func (w *brotliWriter) Flush() {
	if !w.decided {
		w.decide(false)
		_ = w.drain()
	}
	if w.br != nil {
		_ = w.br.Flush()
	}
	w.ResponseWriter.Flush()
}

func (w *brotliWriter) decide(compress bool) {
	w.decided = true
	if !compress {
		return
	}
	h := w.Header()
	h.Set("Content-Encoding", "br")
	h.Del("Content-Length")
	w.br = brotli.NewWriterLevel(w.ResponseWriter, w.quality)
}

func (w *brotliWriter) out(data []byte) (int, error) {
	if w.br != nil {
		return w.br.Write(data)
	}
	return w.ResponseWriter.Write(data)
}

func (w *brotliWriter) drain() error {
	if len(w.buf) == 0 {
		return nil
	}
	_, err := w.out(w.buf)
	w.buf = nil
	return err
}

// finish writes a short pending body as is and closes the encoder.
func (w *brotliWriter) finish() error {
	if !w.decided {
		w.decide(false)
	}
	if err := w.drain(); err != nil {
		return err
	}
	if w.br != nil {
		return w.br.Close()
	}
	return nil
}

// Brotli compresses responses for clients that accept "br".
func Brotli() gin.HandlerFunc {
	return BrotliWithConfig(DefaultBrotliConfig)
}

func BrotliWithConfig(cfg BrotliConfig) gin.HandlerFunc {
	if cfg.Quality < brotli.BestSpeed || cfg.Quality > brotli.BestCompression {
		cfg.Quality = brotli.DefaultCompression
	}
	if cfg.MinLength <= 0 {
		cfg.MinLength = DefaultBrotliConfig.MinLength
	}

	return func(c *gin.Context) {
		if !acceptsBrotli(c.Request) || (cfg.Skipper != nil && cfg.Skipper(c)) {
			c.Next()
			return
		}

		c.Header("Vary", "Accept-Encoding")
		bw := &brotliWriter{
			ResponseWriter: c.Writer,
			quality:        cfg.Quality,
			minLength:      cfg.MinLength,
		}
		c.Writer = bw
		defer func() {
			if err := bw.finish(); err != nil {
				_ = c.Error(err)
			}
		}()
		c.Next()
	}
}

func compressible(h http.Header) bool {
	if h.Get("Content-Encoding") != "" {
		return false
	}
	ct := strings.ToLower(h.Get("Content-Type"))
	for _, prefix := range incompressible {
		if strings.HasPrefix(ct, prefix) {
			return false
		}
	}
	return true
}

func acceptsBrotli(r *http.Request) bool {
	for _, enc := range strings.Split(r.Header.Get("Accept-Encoding"), ",") {
		name, _, _ := strings.Cut(strings.TrimSpace(enc), ";")
		if strings.EqualFold(name, "br") {
			return true
		}
	}
	return false
}
