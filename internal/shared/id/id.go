// Package id provides centralized ID generation for the backend.
//
// This package offers ULID generation with:
//   - Lexicographic sortability: newer revisions sort after older ones
//   - Prefixed types: rev_*, apply_*, req_* are readable in logs
//   - Type safety: separate types prevent mixing a revision with an apply ID
//
// Revisions identify one written version of a selection document; the memory
// backend compares them to detect concurrent writers.
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// RevisionID identifies one stored version of a document
type RevisionID string

// ApplyID identifies a single apply operation across logs and events
type ApplyID string

// RequestID identifies an API request
type RequestID string

const (
	RevisionPrefix = "rev"
	ApplyPrefix    = "apply"
	RequestPrefix  = "req"
)

// Generator generates ULIDs with optional prefixes
type Generator struct {
	entropy   io.Reader
	entropyMu sync.Mutex
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the process-wide generator
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a ULID generator backed by crypto/rand
func NewGenerator() *Generator {
	return &Generator{
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// NewGeneratorWithEntropy creates a generator with a custom entropy source.
// Useful for deterministic tests.
func NewGeneratorWithEntropy(entropy io.Reader) *Generator {
	return &Generator{
		entropy: entropy,
	}
}

// Generate creates a new ULID
func (g *Generator) Generate() ulid.ULID {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// GenerateString creates a new ULID as a string
func (g *Generator) GenerateString() string {
	return g.Generate().String()
}

// GenerateWithPrefix creates a prefixed ULID string
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.GenerateString())
}

// NewRevisionID generates a new document revision
func NewRevisionID() RevisionID {
	return RevisionID(Default().GenerateWithPrefix(RevisionPrefix))
}

// NewApplyID generates a new apply operation ID
func NewApplyID() ApplyID {
	return ApplyID(Default().GenerateWithPrefix(ApplyPrefix))
}

// NewRequestID generates a new request ID
func NewRequestID() RequestID {
	return RequestID(Default().GenerateWithPrefix(RequestPrefix))
}

func (id RevisionID) String() string { return string(id) }
func (id ApplyID) String() string    { return string(id) }
func (id RequestID) String() string  { return string(id) }

// IsValid checks if an ID string is a valid ULID
func IsValid(id string) bool {
	_, err := ulid.Parse(id)
	return err == nil
}

// IsValidPrefixed checks a "prefix_ULID" string
func IsValidPrefixed(id, prefix string) bool {
	rest, ok := strings.CutPrefix(id, prefix+"_")
	return ok && IsValid(rest)
}
