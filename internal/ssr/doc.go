/*
Package ssr renders HTML by executing a pre-built JavaScript bundle inside
the goja virtual machine.

# Overview

A render bundle is a trusted build artifact. Executed as a script it must
evaluate to an object whose own enumerable properties include one or more
render functions with the signature

	function (params) -> string-convertible value

Every render call concatenates the string-converted results of all callable
exports, in the object's own-property (insertion) order. Keeping that order
stable is the bundle producer's responsibility.

# Lifecycle

 1. Platform: Initialize runs once per process before any render traffic.
 2. Bundle: NewBundle or LoadBundle builds the immutable source text.
 3. Renderer: New compiles the bundle once and fails fast on invalid source.
 4. Render: every RenderToString call runs inside a brand-new goja runtime
    (the isolate), so no globals or side effects survive between calls and
    concurrent renders never share VM state.

# Failures

Startup-class failures (ErrInvalidBundle, ErrNoExports, ErrNotInitialized)
surface from New. A render function that throws is reported as an
*ExportError; the remaining exports still run and all failures are returned
together. A cancelled or expired context interrupts the VM and yields
ErrRenderInterrupted.

# Usage Example

	ssr.MustInitialize(ssr.WithConsoleLogger(logger))

	bundle, err := ssr.LoadBundle("./client/dist", ssr.DefaultEntrypoint)
	if err != nil {
		log.Fatal(err)
	}

	renderer, err := ssr.New(bundle, ssr.WithLimiter(ssr.NewLimiter(0, 0)))
	if err != nil {
		log.Fatal(err)
	}

	params, _ := ssr.NewPageParams("/cleaning").Encode()
	html, err := renderer.RenderToString(ctx, params)
*/
package ssr
