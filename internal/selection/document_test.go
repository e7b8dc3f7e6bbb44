package selection

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/OverlayPicker/backend/internal/shared/types"
)

func pkg(s string) *types.PackageID {
	return types.PackagePtr(types.PackageID(s))
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Document
		wantErr bool
	}{
		{name: "empty input", input: "", want: Document{}},
		{name: "whitespace", input: "  \n", want: Document{}},
		{name: "null", input: "null", want: Document{}},
		{
			name:  "values and nulls",
			input: `{"android.theme.customization.icon_pack.wifi":"com.pack.a","android.theme.customization.icon_pack.signal":null}`,
			want: Document{
				types.CategoryIconWifi:   pkg("com.pack.a"),
				types.CategoryIconSignal: nil,
			},
		},
		{name: "not an object", input: `["a"]`, wantErr: true},
		{name: "truncated", input: `{"a":`, wantErr: true},
		{
			name:  "values of other writers are not selections",
			input: `{"a":1,"b":true,"c":{"x":"y"},"android.theme.customization.lockscreen_clock_font":"com.font.x"}`,
			want:  Document{types.CategoryLockFont: pkg("com.font.x")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode([]byte(tt.input))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrParseFailure)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeSortsKeysAndKeepsNulls(t *testing.T) {
	data, err := Encode(Document{
		types.CategoryIconWifi:   pkg("com.pack.a"),
		types.CategoryIconSignal: nil,
	})
	require.NoError(t, err)

	assert.JSONEq(t,
		`{"android.theme.customization.icon_pack.signal":null,"android.theme.customization.icon_pack.wifi":"com.pack.a"}`,
		string(data))
	assert.Less(t,
		strings.Index(string(data), "icon_pack.signal"),
		strings.Index(string(data), "icon_pack.wifi"))
}

func TestPatchLeavesOtherKeys(t *testing.T) {
	base := Document{
		types.CategoryIconWifi: pkg("com.pack.a"),
		types.CategoryLockFont: pkg("com.font.x"),
	}

	next := base.Patch(Document{types.CategoryIconWifi: nil})

	assert.Nil(t, next[types.CategoryIconWifi])
	assert.Contains(t, next, types.CategoryIconWifi)
	assert.Equal(t, pkg("com.font.x"), next[types.CategoryLockFont])
	assert.Equal(t, pkg("com.pack.a"), base[types.CategoryIconWifi], "patch must not mutate the receiver")
}

func TestCloneIsDeep(t *testing.T) {
	base := Document{types.CategoryIconWifi: pkg("com.pack.a")}
	clone := base.Clone()

	*clone[types.CategoryIconWifi] = "com.pack.b"
	assert.Equal(t, types.PackageID("com.pack.a"), *base[types.CategoryIconWifi])
}

func TestEqualTreatsMissingAsNil(t *testing.T) {
	a := Document{types.CategoryIconWifi: nil, types.CategoryLockFont: pkg("f")}
	b := Document{types.CategoryLockFont: pkg("f")}

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(Document{}))
}

func TestRawPatchKeepsForeignValues(t *testing.T) {
	raw, err := DecodeRaw([]byte(`{"_applied_timestamp":1700000000000,"color_both":true,"nested":{"a":[1,2]},"android.theme.customization.icon_pack.wifi":"com.pack.a"}`))
	require.NoError(t, err)

	next, err := raw.Patch(Document{
		types.CategoryIconWifi: nil,
		types.CategoryLockFont: pkg("com.font.x"),
	})
	require.NoError(t, err)
	assert.Equal(t, `true`, string(raw["color_both"]), "patch must not mutate the receiver")

	data, err := next.Encode()
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"_applied_timestamp": 1700000000000,
		"color_both": true,
		"nested": {"a": [1, 2]},
		"android.theme.customization.icon_pack.wifi": null,
		"android.theme.customization.lockscreen_clock_font": "com.font.x"
	}`, string(data))
}

func TestDecodeRawRejectsNonObjects(t *testing.T) {
	for _, input := range []string{`["a"]`, `"a"`, `{"a":`} {
		_, err := DecodeRaw([]byte(input))
		assert.ErrorIs(t, err, ErrParseFailure, input)
	}
}
