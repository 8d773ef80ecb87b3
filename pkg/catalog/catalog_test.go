//go:build !integration

package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aihub-tools/aihub-export/pkg/constants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalogJSON = `{"checkpoints": ["sdxl.safetensors", "sd15.ckpt"], "diffusion_models": ["flux.safetensors"], "loras": ["detail.safetensors"]}`

func TestDecode(t *testing.T) {
	c, err := Decode([]byte(catalogJSON))
	require.NoError(t, err)
	assert.True(t, c.Checkpoints.Has("sd15.ckpt"))
	assert.True(t, c.DiffusionModels.Has("flux.safetensors"))
	assert.True(t, c.LoRAs.Has("detail.safetensors"))
	assert.False(t, c.Checkpoints.Has("flux.safetensors"), "sets are kept apart")

	_, err = Decode([]byte(`{"checkpoints": "nope"}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestDecode_MissingKeys(t *testing.T) {
	c, err := Decode([]byte(`{}`))
	require.NoError(t, err)
	assert.Empty(t, c.Checkpoints)
	assert.Empty(t, c.LoRAs)
}

func TestModelCatalog_MarshalJSON(t *testing.T) {
	c := New([]string{"b", "a"}, nil, []string{"l"})
	out, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `{"checkpoints": ["a", "b"], "diffusion_models": [], "loras": ["l"]}`, string(out))
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "catalog.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(catalogJSON), 0o644))
	c, err := FileSource{Path: jsonPath}.Catalog(context.Background())
	require.NoError(t, err)
	assert.True(t, c.Checkpoints.Has("sdxl.safetensors"))

	yamlPath := filepath.Join(dir, "catalog.yaml")
	yamlBody := "checkpoints:\n  - base.safetensors\ndiffusion_models: []\nloras:\n  - style.safetensors\n"
	require.NoError(t, os.WriteFile(yamlPath, []byte(yamlBody), 0o644))
	c, err = FileSource{Path: yamlPath}.Catalog(context.Background())
	require.NoError(t, err)
	assert.True(t, c.Checkpoints.Has("base.safetensors"))
	assert.True(t, c.LoRAs.Has("style.safetensors"))

	_, err = FileSource{Path: filepath.Join(dir, "missing.json")}.Catalog(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestHTTPSource(t *testing.T) {
	var requestID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, constants.CatalogPath, r.URL.Path)
		requestID = r.Header.Get(constants.RequestIDHeader)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(catalogJSON))
	}))
	defer server.Close()

	src := NewHTTPSource(server.URL+"/", time.Second)
	c, err := src.Catalog(context.Background())
	require.NoError(t, err)
	assert.True(t, c.LoRAs.Has("detail.safetensors"))
	assert.NotEmpty(t, requestID, "requests carry a request id")
}

func TestHTTPSource_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := NewHTTPSource(server.URL, time.Second).Catalog(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Contains(t, err.Error(), "500")
	assert.Contains(t, err.Error(), "boom")
}

type countingSource struct {
	calls atomic.Int32
	err   error
}

func (s *countingSource) Catalog(ctx context.Context) (*ModelCatalog, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return New([]string{"a"}, nil, nil), nil
}

func TestCachedSource(t *testing.T) {
	inner := &countingSource{}
	src := NewCachedSource(inner, time.Minute)

	for range 3 {
		c, err := src.Catalog(context.Background())
		require.NoError(t, err)
		assert.True(t, c.Checkpoints.Has("a"))
	}
	assert.Equal(t, int32(1), inner.calls.Load(), "catalog should be fetched once within the TTL")

	src.Invalidate()
	_, err := src.Catalog(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), inner.calls.Load(), "invalidate forces a refetch")
}

func TestCachedSource_ErrorsAreNotCached(t *testing.T) {
	inner := &countingSource{err: errors.New("offline")}
	src := NewCachedSource(inner, time.Minute)

	_, err := src.Catalog(context.Background())
	require.Error(t, err)
	_, err = src.Catalog(context.Background())
	require.Error(t, err)
	assert.Equal(t, int32(2), inner.calls.Load())
}

func TestCachedSource_Disabled(t *testing.T) {
	inner := &countingSource{}
	src := NewCachedSource(inner, 0)
	_, _ = src.Catalog(context.Background())
	_, _ = src.Catalog(context.Background())
	assert.Equal(t, int32(2), inner.calls.Load(), "zero TTL passes every call through")
}

func TestStatic(t *testing.T) {
	c, err := Static{}.Catalog(context.Background())
	require.NoError(t, err)
	assert.Empty(t, c.Checkpoints)
}
