// Package review implements the customer reviews shown on the rendered
// pages: the Review model, the Target enum with its legacy aliases, the
// Store interface with an in-memory implementation, and the Service used by
// the HTTP handlers.
package review
