/*
Package resilience provides the circuit breaker that guards selection document backends.

# Overview

Every Get and CompareAndSwap against a document backend (memory, file or remote
HTTP) runs through a Breaker. When a backend keeps failing the breaker opens and
merges fail fast with an underlying store error instead of stacking up retries.

# Features

- Three-state circuit breaker (Closed, Open, Half-Open)
- Configurable failure thresholds and timeouts
- Automatic state transitions
- Result classification: lost compare-and-swap races are not failures
- Context aware: cancelled calls do not count
- State change callbacks for monitoring
- Thread-safe operations

# Usage

	// Create a circuit breaker
	breaker := resilience.New("selection-store", resilience.Settings{
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to resilience.State) {
			logger.Warn("breaker state change", zap.String("name", name),
				zap.Stringer("from", from), zap.Stringer("to", to))
		},
	})

	// Run a backend call through the breaker
	data, err := resilience.Call(ctx, breaker, func(ctx context.Context) ([]byte, error) {
		return backend.Get(ctx, key)
	})

# States

- Closed: Normal operation, requests pass through
- Open: Service unavailable, requests fail immediately
- Half-Open: Testing if service recovered, limited requests allowed

# Pattern

The circuit breaker transitions between states based on success/failure rates:

	Closed --[failures]-> Open --[timeout]-> Half-Open --[successes]-> Closed
	                                           |
	                                    [failure]
	                                           |
	                                           v
	                                         Open
*/
package resilience
