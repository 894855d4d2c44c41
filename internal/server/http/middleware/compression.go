package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// DefaultMaxBodyBytes caps request bodies after decompression.
const DefaultMaxBodyBytes int64 = 1 << 20

// DecompressRequest transparently handles gzip encoded requests and caps the
// decoded body at maxBytes. A non-positive maxBytes uses DefaultMaxBodyBytes.
func DecompressRequest(maxBytes int64) gin.HandlerFunc {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}
	return func(c *gin.Context) {
		if c.Request.Body == nil || c.Request.Body == http.NoBody {
			c.Next()
			return
		}
		if !strings.Contains(c.GetHeader("Content-Encoding"), "gzip") {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
			c.Next()
			return
		}

		originalBody := c.Request.Body
		reader, err := gzip.NewReader(originalBody)
		if err != nil {
			abort(c, http.StatusBadRequest, "validation_error", "malformed gzip body")
			return
		}
		defer reader.Close()
		defer originalBody.Close()

		// The limit applies to decoded bytes so a small archive cannot expand unbounded.
		c.Request.Body = http.MaxBytesReader(c.Writer, io.NopCloser(reader), maxBytes)
		c.Request.Header.Del("Content-Encoding")
		c.Request.ContentLength = -1
		c.Next()
	}
}
