package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzhttp"
)

// DefaultCompressMinSize is the smallest response worth compressing.
const DefaultCompressMinSize = 1024

// Compress gzips responses of at least minSize bytes for clients whose
// Accept-Encoding allows gzip. Smaller responses are sent as is.
func Compress(minSize int) gin.HandlerFunc {
	wrap, err := gzhttp.NewWrapper(gzhttp.MinSize(minSize))
	if err != nil {
		panic(fmt.Sprintf("compress middleware: %v", err))
	}

	return func(c *gin.Context) {
		orig := c.Writer
		defer func() { c.Writer = orig }()

		wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c.Writer = &compressWriter{ResponseWriter: orig, w: w}
			c.Request = r
			c.Next()
		})).ServeHTTP(orig, c.Request)
	}
}

// compressWriter routes the body through the gzhttp writer. Status and size
// are still tracked by the wrapped gin writer once gzhttp flushes.
type compressWriter struct {
	gin.ResponseWriter
	w http.ResponseWriter
}

func (cw *compressWriter) Header() http.Header {
	return cw.w.Header()
}

func (cw *compressWriter) WriteHeader(code int) {
	cw.w.WriteHeader(code)
}

func (cw *compressWriter) Write(data []byte) (int, error) {
	return cw.w.Write(data)
}

func (cw *compressWriter) WriteString(s string) (int, error) {
	return cw.w.Write([]byte(s))
}

func (cw *compressWriter) Flush() {
	if f, ok := cw.w.(http.Flusher); ok {
		f.Flush()
	}
}
