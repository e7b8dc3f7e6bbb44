// Package main is the entry point for the overlay picker server.
//
// The server builds option catalogs for each theming domain (Wi-Fi icons,
// status bar icons, lock screen font) from the overlay packs on disk and
// applies a chosen option by merging it into the shared selection document
// and enabling its overlays.
//
// The server provides:
//   - REST API for domains, options, previews and apply
//   - The /kv document protocol for other instances using the http store
//   - WebSocket stream of apply events
//   - Prometheus metrics
//
// Configuration:
//   - Environment variables (12-factor)
//   - CLI flags (override env vars)
//   - Defaults for development
//
// Usage:
//
//	# Shared document in a directory
//	./server -port 8000 -store file -store-dir ./data -packs ./packs
//
//	# Development mode (colored logs, debug level)
//	./server -dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
