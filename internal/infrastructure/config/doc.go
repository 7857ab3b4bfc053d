// Package config provides 12-factor configuration management for the
// rendering server.
//
// Configuration is loaded from environment variables with sensible defaults.
// A .env file is read by the bootstrap before Load, and CLI flags override
// the port and client directory.
//
// Configuration Sections:
//   - Server: HTTP listener and client dist directory
//   - TLS: HTTPS listener, certificate paths and redirect
//   - Render: bundle entrypoint, render timeout and concurrency
//   - Store: review persistence (PostgreSQL or in-memory)
//   - Static: cache lifetime of static assets
//   - Logging: Log level and output format
//   - RateLimit: Per-IP rate limiting configuration
//
// Example Usage:
//
//	cfg, err := config.Load()
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Printf("Server running on %s:%s\n", cfg.Server.Host, cfg.Server.Port)
//
// Environment Variables:
//   - PORT, HOST, CLIENT_DIR, SHUTDOWN_TIMEOUT
//   - SSL_KEY, SSL_CERT, TLS_PORT, TLS_REDIRECT
//   - SSR_ENTRYPOINT, RENDER_TIMEOUT, RENDER_MAX_CONCURRENT, RENDER_WAIT_TIMEOUT
//   - DATABASE_URL, DB_TABLE, STATIC_MAX_AGE
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
package config
