// Package http contains the gin handlers: server-side rendered pages, the
// reviews API and the health endpoint.
package http
