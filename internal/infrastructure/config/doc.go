// Package config loads service configuration from environment variables.
//
// Variables:
//
//	PORT, HOST, SHUTDOWN_TIMEOUT                  HTTP server
//	LOG_LEVEL, LOG_DEV                            logging
//	RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
//	STORE_BACKEND (memory|file|http), STORE_DIR, STORE_URL,
//	STORE_KEY, STORE_MAX_ATTEMPTS, STORE_TIMEOUT  selection document
//	OVERLAY_PACKS_DIR, CATALOG_CONFIG             overlay packs and naming strategies
//
// Command-line flags in cmd/server override the environment.
package config
