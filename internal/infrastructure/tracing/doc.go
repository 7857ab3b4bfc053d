/*
Package tracing provides lightweight request tracing.

# Overview

Every HTTP request gets a trace id (reused from the X-Trace-ID header when a
proxy already assigned one) and a span covering the handler. Finished spans
are queued and written to the log by a background collector, so render
latency and failures can be correlated with the access log.

# Usage

	tracer := tracing.New("ssr", logger)
	defer tracer.Close()

	router.Use(tracing.HTTPMiddleware(tracer))

	// Manual span creation
	span, ctx := tracer.StartSpan(ctx, "render")
	defer func() {
		span.Finish()
		tracer.Submit(span)
	}()

# Trace Format

Traces use standard HTTP headers for propagation:
  - X-Trace-ID: identifier for the entire request flow
  - X-Span-ID: identifier for the current operation
*/
package tracing
