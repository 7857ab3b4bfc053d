// Package main is the entry point of the server-side rendering backend.
//
// The server executes the client's prebuilt SSR bundle for every page
// request and serves the static assets and the reviews API next to it.
//
// Architecture:
//
//	Browser → gin router → page handler → ssr.Renderer (goja) → HTML
//	                     → /api/*       → review.Service → PostgreSQL / memory
//	                     → /styles, /images, /scripts → client build output
//
// Configuration:
//   - .env file in the working directory (optional)
//   - Environment variables (12-factor)
//   - CLI flags (override env vars)
//
// Usage:
//
//	# Serve the build in ./client/dist on port 8080
//	./server
//
//	# Another build directory and port
//	./server serve --dir /srv/site --port 9000
//
//	# Render one page to stdout
//	./server render --dir ./client/dist --location /catalog
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
