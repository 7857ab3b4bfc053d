// Package server wires configuration, the render engine, the review store
// and the gin router into HTTP(S) listeners with graceful shutdown.
package server
