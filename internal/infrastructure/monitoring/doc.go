/*
Package monitoring collects Prometheus metrics for the service.

Each Metrics value owns its registry, so tests and multiple servers in one
process never collide on registration. Metrics implements the observer
interfaces of the selection store, the catalog builder and the option
managers, and feeds the circuit breaker's state-change hook.

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	store := selection.NewStore(backend, cfg, breaker, logger, metrics)
*/
package monitoring
