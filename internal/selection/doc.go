/*
Package selection persists the shared selection document.

Every option manager (wifi icons, status bar icons, lock-screen font) stores
its choice in one document mapping categories to overlay packages. Managers
run independently, so writes go through a read-patch-compare-and-swap cycle:

	current, version := backend.Get(key)
	next := current.Patch(updates)    // only the caller's categories
	backend.CompareAndSwap(key, version, next)

A swap that loses the race is retried from a fresh read with jittered
exponential backoff, so a manager never overwrites categories it did not
touch.

# Backends

  - MemoryBackend: in-process, ULID revisions
  - FileBackend: one JSON file per key, content-hash versions, lock file
  - HTTPBackend: remote GET/PUT with ETag and If-Match

# Errors

Merge failures are reported as *WriteError carrying one of ErrParseFailure,
ErrConflict or ErrUnderlyingStore:

	var werr *selection.WriteError
	if errors.As(err, &werr) && errors.Is(err, selection.ErrConflict) {
		log.Printf("gave up after %d attempts", werr.Attempts)
	}
*/
package selection
