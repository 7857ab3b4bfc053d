/*
Package monitoring provides Prometheus metrics for the server.

# Overview

Metrics live on a per-instance registry and cover HTTP traffic, page renders
(duration and outcome), failing render functions by export name, render slot
occupancy and stored reviews. Metrics implements ssr.Observer so the renderer
reports to it directly.

# Usage

	metrics := monitoring.NewMetrics()
	metrics.WatchLimiter(limiter)

	renderer, err := ssr.New(bundle, ssr.WithObserver(metrics), ssr.WithLimiter(limiter))

	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
*/
package monitoring
