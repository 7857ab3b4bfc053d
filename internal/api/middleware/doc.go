// Package middleware holds the gin middleware shared by every route: CORS,
// per-client rate limiting, cache headers for static assets, the HTTPS
// redirect and zap request logging with panic recovery.
package middleware
