// Package ws streams option apply events to WebSocket clients.
//
// Every connection subscribes to the apply event bus and receives one
// "applied" message per successful apply, across all domains. A single
// writer goroutine owns the socket; events for a client whose buffer is
// full are dropped and logged.
//
// Message Types (Client → Server):
//   - ping: Keep-alive ping
//   - status: Request the current domain states
//
// Message Types (Server → Client):
//   - system: Welcome message with domain states
//   - applied: An option was persisted and enabled
//   - status: Domain states
//   - pong: Reply to ping
//   - error: Error occurred
//
// Example Usage:
//
//	handler := ws.NewHandler(events, registry, metrics, logger)
//	router.GET("/stream", handler.HandleConnection)
package ws
