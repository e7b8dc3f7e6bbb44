package selection

import "context"

// Version identifies one stored revision of a key. Backends choose the
// representation (ULID, content hash, ETag); callers only compare them.
type Version string

// NoVersion is the version of a key that does not exist yet
const NoVersion Version = ""

// Backend is a versioned key-value store
type Backend interface {
	// Get returns the stored bytes and their version. A missing key
	// returns nil data and NoVersion without error.
	Get(ctx context.Context, key string) ([]byte, Version, error)

	// CompareAndSwap writes value only if the key is still at expected.
	// Passing NoVersion requires the key to be absent. A stale expected
	// version returns ErrVersionMismatch.
	CompareAndSwap(ctx context.Context, key string, expected Version, value []byte) (Version, error)

	// Name identifies the backend in logs and metrics
	Name() string
}
