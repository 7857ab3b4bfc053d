package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// RedirectHTTPS sends plain HTTP requests to the HTTPS listener on tlsPort.
// Requests that arrived through a TLS-terminating proxy (X-Forwarded-Proto:
// https) pass through.
func RedirectHTTPS(tlsPort int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.TLS != nil || strings.EqualFold(c.GetHeader("X-Forwarded-Proto"), "https") {
			c.Next()
			return
		}

		c.Redirect(http.StatusMovedPermanently, HTTPSURL(c.Request, tlsPort))
		c.Abort()
	}
}

// HTTPSURL builds the https URL of r on tlsPort.
func HTTPSURL(r *http.Request, tlsPort int) string {
	host := r.Host
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	if tlsPort != 0 && tlsPort != 443 {
		host = net.JoinHostPort(host, strconv.Itoa(tlsPort))
	}
	return "https://" + host + r.URL.RequestURI()
}
