package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasherDeterministic(t *testing.T) {
	h := DefaultHasher()

	a := h.Hash([]byte(`{"k":"v"}`))
	b := h.Hash([]byte(`{"k":"v"}`))
	c := h.Hash([]byte(`{"k":"w"}`))

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}

func TestValidateKey(t *testing.T) {
	tests := []struct {
		key     string
		wantErr bool
	}{
		{"theme", false},
		{"theme.selection", false},
		{"theme_selection-1", false},
		{"", true},
		{"../etc/passwd", true},
		{"a/b", true},
		{".hidden", true},
		{"a..b", true},
		{strings.Repeat("k", MaxKeyLength+1), true},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			err := ValidateKey(tt.key)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateID(t *testing.T) {
	assert.NoError(t, ValidateID("wifi_icons", "domain", true))
	assert.NoError(t, ValidateID("", "domain", false))
	assert.Error(t, ValidateID("", "domain", true))
	assert.Error(t, ValidateID("wifi icons", "domain", true))
}

func TestValidatePackage(t *testing.T) {
	assert.NoError(t, ValidatePackage("android"))
	assert.NoError(t, ValidatePackage("com.pack.a.wifi"))
	assert.Error(t, ValidatePackage("com..pack"))
	assert.Error(t, ValidatePackage("com.pack."))
	assert.Error(t, ValidatePackage(""))
}

func TestValidateSize(t *testing.T) {
	assert.NoError(t, ValidateSize(make([]byte, 10), 10))
	assert.Error(t, ValidateSize(make([]byte, 11), 10))
}
