// Package server wires the overlay picker together.
//
// Server Lifecycle:
//  1. Load configuration from environment/flags
//  2. Initialize logger, metrics and tracer
//  3. Open the selection document backend (memory, file or http) behind a circuit breaker
//  4. Scan the overlay packs directory into an index and resource store
//  5. Register one option manager per domain
//  6. Setup HTTP routes, middleware and the event stream
//  7. Build every catalog once, then serve until the context ends
//  8. Graceful shutdown
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	srv, err := server.NewServer(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer srv.Close()
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
