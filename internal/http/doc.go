// Package http provides HTTP handlers and routing for the overlay picker API.
//
// Endpoints:
//   - Health: / and /health
//   - Domains: /domains, /domains/:domain/options, /domains/:domain/apply
//   - Previews: /domains/:domain/options/:option/previews/:index
//   - Documents: /kv/:key (GET, and PUT with If-Match / If-None-Match: *)
//
// Domain errors map to status codes: unknown domains, options and assets
// are 404, a concurrent apply or exhausted write retries are 409, an
// unreadable stored document is 422 and store or overlay outages are 503.
//
// Example Usage:
//
//	handlers := http.NewHandlers(registry, backend, metrics, logger)
//	handlers.Register(router)
package http
