package selection

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"sort"

	"github.com/bytedance/sonic"

	"github.com/GriffinCanCode/OverlayPicker/backend/internal/shared/types"
)

// Document maps categories to the overlay package chosen for them.
// A nil package, or a missing key, means no override.
type Document map[types.Category]*types.PackageID

// Get returns the package stored for a category
func (d Document) Get(category types.Category) *types.PackageID {
	if p := d[category]; p != nil {
		return types.PackagePtr(*p)
	}
	return nil
}

// Clone returns a deep copy
func (d Document) Clone() Document {
	out := make(Document, len(d))
	for k, v := range d {
		if v != nil {
			v = types.PackagePtr(*v)
		}
		out[k] = v
	}
	return out
}

// Patch returns a copy of d with the given keys overwritten.
// Keys absent from updates are left untouched.
func (d Document) Patch(updates Document) Document {
	out := d.Clone()
	maps.Copy(out, updates.Clone())
	return out
}

// Equal reports whether both documents hold the same entries.
// Explicit nil entries and missing keys are equal.
func (d Document) Equal(other Document) bool {
	for _, k := range d.union(other) {
		if !types.SamePackage(d[k], other[k]) {
			return false
		}
	}
	return true
}

// Categories returns the keys in sorted order
func (d Document) Categories() []types.Category {
	keys := make([]types.Category, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func (d Document) union(other Document) []types.Category {
	seen := make(map[types.Category]struct{}, len(d)+len(other))
	for k := range d {
		seen[k] = struct{}{}
	}
	for k := range other {
		seen[k] = struct{}{}
	}
	out := make([]types.Category, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	return out
}

// Raw is a stored document with every value kept as encoded JSON. Keys
// written by other clients, whatever their type, survive a merge unchanged.
type Raw map[string]json.RawMessage

// DecodeRaw parses a stored document without interpreting its values.
// Empty input and a literal null are an empty document.
func DecodeRaw(data []byte) (Raw, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Raw{}, nil
	}

	var raw Raw
	if err := sonic.ConfigStd.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseFailure, err)
	}
	if raw == nil {
		return Raw{}, nil
	}
	return raw, nil
}

// Document returns the package selections held in r. Only string and null
// values are selections; other values belong to other writers.
func (r Raw) Document() Document {
	doc := make(Document, len(r))
	for k, v := range r {
		value := bytes.TrimSpace(v)
		if bytes.Equal(value, null) {
			doc[types.Category(k)] = nil
			continue
		}
		if len(value) == 0 || value[0] != '"' {
			continue
		}
		var s string
		if err := sonic.ConfigStd.Unmarshal(value, &s); err != nil {
			continue
		}
		doc[types.Category(k)] = types.PackagePtr(types.PackageID(s))
	}
	return doc
}

// Patch returns a copy of r with the keys of updates overwritten
func (r Raw) Patch(updates Document) (Raw, error) {
	out := maps.Clone(r)
	if out == nil {
		out = make(Raw, len(updates))
	}
	for k, v := range updates {
		if v == nil {
			out[k.String()] = slices.Clone(null)
			continue
		}
		encoded, err := sonic.ConfigStd.Marshal(v.String())
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", k, err)
		}
		out[k.String()] = encoded
	}
	return out, nil
}

// Encode serializes r with sorted keys
func (r Raw) Encode() ([]byte, error) {
	data, err := sonic.ConfigStd.Marshal(map[string]json.RawMessage(r))
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return data, nil
}

var null = []byte("null")

// Decode parses a stored document. Empty input is an empty document.
func Decode(data []byte) (Document, error) {
	raw, err := DecodeRaw(data)
	if err != nil {
		return nil, err
	}
	return raw.Document(), nil
}

// Encode serializes a document with sorted keys, keeping explicit nulls
func Encode(d Document) ([]byte, error) {
	raw, err := Raw{}.Patch(d)
	if err != nil {
		return nil, err
	}
	return raw.Encode()
}
