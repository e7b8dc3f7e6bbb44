package selection

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/OverlayPicker/backend/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/OverlayPicker/backend/internal/shared/types"
)

// kvServer serves the /kv protocol from a memory backend
func kvServer(t *testing.T, backend Backend) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimPrefix(r.URL.Path, "/kv/")
		switch r.Method {
		case http.MethodGet:
			data, version, err := backend.Get(r.Context(), key)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			if version == NoVersion {
				http.NotFound(w, r)
				return
			}
			w.Header().Set("ETag", FormatETag(version))
			_, _ = w.Write(data)
		case http.MethodPut:
			expected := NoVersion
			if m := r.Header.Get("If-Match"); m != "" {
				expected = ParseETag(m)
			}
			body, _ := io.ReadAll(r.Body)
			version, err := backend.CompareAndSwap(r.Context(), key, expected, body)
			if errors.Is(err, ErrVersionMismatch) {
				w.WriteHeader(http.StatusPreconditionFailed)
				return
			}
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			w.Header().Set("ETag", FormatETag(version))
			w.WriteHeader(http.StatusOK)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testHTTPConfig(url string) HTTPConfig {
	cfg := DefaultHTTPConfig(url)
	cfg.RetryMax = 1
	cfg.RetryWaitMin = time.Millisecond
	cfg.RetryWaitMax = 2 * time.Millisecond
	return cfg
}

func TestHTTPBackendProtocol(t *testing.T) {
	srv := kvServer(t, NewMemoryBackend())
	backend := NewHTTPBackend(testHTTPConfig(srv.URL))
	ctx := context.Background()

	data, version, err := backend.Get(ctx, "doc")
	require.NoError(t, err)
	assert.Nil(t, data)
	assert.Equal(t, NoVersion, version)

	v1, err := backend.CompareAndSwap(ctx, "doc", NoVersion, []byte(`{"a":"b"}`))
	require.NoError(t, err)
	assert.NotEqual(t, NoVersion, v1)

	_, err = backend.CompareAndSwap(ctx, "doc", NoVersion, []byte(`{}`))
	assert.ErrorIs(t, err, ErrVersionMismatch)

	data, version, err = backend.Get(ctx, "doc")
	require.NoError(t, err)
	assert.Equal(t, `{"a":"b"}`, string(data))
	assert.Equal(t, v1, version)
}

func TestHTTPStoreMerge(t *testing.T) {
	shared := NewMemoryBackend()
	shared.Put("doc", []byte(`{"android.theme.customization.lockscreen_clock_font":"com.font.x"}`))
	srv := kvServer(t, shared)

	store := NewStore(NewHTTPBackend(testHTTPConfig(srv.URL)), testConfig(), nil, nil, nil)
	require.NoError(t, store.Merge(context.Background(), Document{types.CategoryIconWifi: pkg("com.pack.a")}))

	data, _, err := shared.Get(context.Background(), "doc")
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"android.theme.customization.icon_pack.wifi":"com.pack.a","android.theme.customization.lockscreen_clock_font":"com.font.x"}`,
		string(data))
}

func TestHTTPBackendServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	store := NewStore(NewHTTPBackend(testHTTPConfig(srv.URL)), testConfig(), nil, nil, nil)
	err := store.Merge(context.Background(), Document{types.CategoryIconWifi: nil})
	assert.ErrorIs(t, err, ErrUnderlyingStore)
}

func TestParseETag(t *testing.T) {
	assert.Equal(t, Version("abc"), ParseETag(`"abc"`))
	assert.Equal(t, Version("abc"), ParseETag(`W/"abc"`))
	assert.Equal(t, Version(""), ParseETag(""))
	assert.Equal(t, `"abc"`, FormatETag("abc"))
}

func TestHTTPBackendForwardsTraceHeaders(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		http.NotFound(w, r)
	}))
	defer srv.Close()

	tracer := tracing.New("test", nil)
	defer tracer.Close()
	span, ctx := tracer.StartSpan(context.Background(), "merge")

	_, _, err := NewHTTPBackend(testHTTPConfig(srv.URL)).Get(ctx, "doc")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, string(span.TraceID), got.Get(tracing.TraceHeader))
	assert.Equal(t, string(span.SpanID), got.Get(tracing.SpanHeader))
}
