package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// CacheControl marks successful GET and HEAD responses as publicly cacheable
// for maxAge. Redirects and error responses get no-store, so a missing asset
// or a directory redirect is not cached.
func CacheControl(maxAge time.Duration) gin.HandlerFunc {
	value := fmt.Sprintf("public, max-age=%d", int64(maxAge.Seconds()))

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.Next()
			return
		}

		c.Writer = &cacheWriter{ResponseWriter: c.Writer, value: value}
		c.Next()
	}
}

// NoStore forbids caching; rendered pages depend on live data.
func NoStore() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		c.Next()
	}
}

// cacheWriter sets Cache-Control once the status code is known.
type cacheWriter struct {
	gin.ResponseWriter
	value   string
	applied bool
}

func (w *cacheWriter) apply(code int) {
	if w.applied {
		return
	}
	w.applied = true
	if cacheable(code) {
		w.Header().Set("Cache-Control", w.value)
	} else {
		w.Header().Set("Cache-Control", "no-store")
	}
}

// cacheable reports whether a response may carry the long max-age. A 304
// repeats the headers of the 200 it revalidates; redirects and errors are
// never cached.
func cacheable(code int) bool {
	return code >= 200 && code < 300 || code == http.StatusNotModified
}

func (w *cacheWriter) WriteHeader(code int) {
	w.apply(code)
	w.ResponseWriter.WriteHeader(code)
}

func (w *cacheWriter) WriteHeaderNow() {
	w.apply(w.Status())
	w.ResponseWriter.WriteHeaderNow()
}

func (w *cacheWriter) Write(data []byte) (int, error) {
	w.apply(w.Status())
	return w.ResponseWriter.Write(data)
}

func (w *cacheWriter) WriteString(s string) (int, error) {
	w.apply(w.Status())
	return w.ResponseWriter.WriteString(s)
}
