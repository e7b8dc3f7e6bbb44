package id

import (
	"strings"
	"sync"
	"testing"
)

func TestGenerate(t *testing.T) {
	gen := NewGenerator()

	id1 := gen.Generate()
	id2 := gen.Generate()

	if id1.String() == id2.String() {
		t.Error("Generated IDs should be unique")
	}
}

func TestGenerateWithPrefix(t *testing.T) {
	gen := NewGenerator()

	for _, prefix := range []string{RevisionPrefix, ApplyPrefix, RequestPrefix} {
		id := gen.GenerateWithPrefix(prefix)

		if !strings.HasPrefix(id, prefix+"_") {
			t.Errorf("ID should start with '%s_', got: %s", prefix, id)
		}
		if !IsValidPrefixed(id, prefix) {
			t.Errorf("ID should be a valid prefixed ULID: %s", id)
		}
	}
}

func TestTypedIDGeneration(t *testing.T) {
	rev := NewRevisionID()
	apply := NewApplyID()
	req := NewRequestID()

	if !strings.HasPrefix(rev.String(), "rev_") {
		t.Errorf("RevisionID should start with 'rev_', got: %s", rev)
	}
	if !strings.HasPrefix(apply.String(), "apply_") {
		t.Errorf("ApplyID should start with 'apply_', got: %s", apply)
	}
	if !strings.HasPrefix(req.String(), "req_") {
		t.Errorf("RequestID should start with 'req_', got: %s", req)
	}
}

func TestIsValid(t *testing.T) {
	if !IsValid(NewGenerator().GenerateString()) {
		t.Error("Generated ULID should be valid")
	}

	for _, id := range []string{"", "invalid", "1234567890", "zzzzzzzzzzzzzzzzzzzzzzzzzzz"} {
		if IsValid(id) {
			t.Errorf("ID should be invalid: %s", id)
		}
	}

	if IsValidPrefixed("rev_notaulid", RevisionPrefix) {
		t.Error("prefixed ID with a bad ULID should be invalid")
	}
}

func TestRevisionsAreOrdered(t *testing.T) {
	gen := NewGenerator()

	prev := gen.GenerateString()
	for i := 0; i < 50; i++ {
		next := gen.GenerateString()
		if next <= prev {
			t.Fatalf("revisions should increase: %s should be > %s", next, prev)
		}
		prev = next
	}
}

func TestConcurrentGeneration(t *testing.T) {
	gen := NewGenerator()

	const goroutines = 50
	const idsPerGoroutine = 100

	var wg sync.WaitGroup
	idChan := make(chan string, goroutines*idsPerGoroutine)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < idsPerGoroutine; j++ {
				idChan <- gen.GenerateString()
			}
		}()
	}

	wg.Wait()
	close(idChan)

	seen := make(map[string]bool)
	for id := range idChan {
		if seen[id] {
			t.Errorf("Duplicate ID found in concurrent generation: %s", id)
		}
		seen[id] = true
	}

	if len(seen) != goroutines*idsPerGoroutine {
		t.Errorf("Expected %d unique IDs, got %d", goroutines*idsPerGoroutine, len(seen))
	}
}

func TestDefaultGenerator(t *testing.T) {
	if Default() != Default() {
		t.Error("Default() should return the same instance")
	}
}

func BenchmarkNewRevisionID(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = NewRevisionID()
	}
}
