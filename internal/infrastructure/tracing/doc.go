/*
Package tracing provides lightweight request tracing.

A trace starts at the HTTP edge, or continues one named by the X-Trace-ID and
X-Span-ID request headers, and travels in the request context. The remote
document backend forwards the same headers, so a trace spans the picker
service and the key-value service behind it.

Finished spans are buffered and written to the log by a collector goroutine;
when the buffer is full spans are dropped with a warning.

# Usage

	tracer := tracing.New("overlay-picker", logger)
	defer tracer.Close()

	router.Use(tracing.HTTPMiddleware(tracer))

	span, ctx := tracer.StartSpan(ctx, "operation")
	defer func() {
		span.Finish()
		tracer.Submit(span)
	}()
*/
package tracing
