package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aihub-tools/aihub-export/pkg/constants"
	"github.com/aihub-tools/aihub-export/pkg/logger"
	"github.com/aihub-tools/aihub-export/pkg/stringutil"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

var sourceLog = logger.New("catalog:source")

// maxCatalogBytes bounds the catalog response body.
const maxCatalogBytes = 16 << 20

// Source supplies a catalog snapshot for one validation run.
type Source interface {
	Catalog(ctx context.Context) (*ModelCatalog, error)
}

// Static serves a fixed catalog.
type Static struct {
	C *ModelCatalog
}

func (s Static) Catalog(ctx context.Context) (*ModelCatalog, error) {
	if s.C == nil {
		return Empty(), nil
	}
	return s.C, nil
}

// FileSource reads a catalog from a JSON or YAML file.
type FileSource struct {
	Path string
}

func (s FileSource) Catalog(ctx context.Context) (*ModelCatalog, error) {
	sourceLog.Printf("Reading catalog file: %s", s.Path)
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	switch strings.ToLower(filepath.Ext(s.Path)) {
	case ".yaml", ".yml":
		return DecodeYAML(data)
	default:
		return Decode(data)
	}
}

// HTTPSource fetches the catalog from the server's model listing endpoint.
type HTTPSource struct {
	BaseURL string
	Client  *http.Client
}

// NewHTTPSource creates a source for the server at baseURL.
func NewHTTPSource(baseURL string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: timeout},
	}
}

func (s *HTTPSource) Catalog(ctx context.Context) (*ModelCatalog, error) {
	url := s.BaseURL + constants.CatalogPath
	requestID := uuid.NewString()
	sourceLog.Printf("Fetching catalog: url=%s request_id=%s", url, requestID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(constants.RequestIDHeader, requestID)

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxCatalogBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: server returned %d: %s", ErrUnavailable, resp.StatusCode, stringutil.Truncate(strings.TrimSpace(string(body)), 200))
	}
	return Decode(body)
}

// CachedSource reuses a fetched catalog for the TTL so that watch mode and
// the MCP server do not hit the server on every validation.
type CachedSource struct {
	inner Source
	cache *cache.Cache
}

const cacheKey = "catalog"

// NewCachedSource wraps inner with a TTL cache. A non-positive ttl disables caching.
func NewCachedSource(inner Source, ttl time.Duration) *CachedSource {
	s := &CachedSource{inner: inner}
	if ttl > 0 {
		s.cache = cache.New(ttl, 2*ttl)
	}
	return s
}

func (s *CachedSource) Catalog(ctx context.Context) (*ModelCatalog, error) {
	if s.cache == nil {
		return s.inner.Catalog(ctx)
	}
	if cached, found := s.cache.Get(cacheKey); found {
		if c, ok := cached.(*ModelCatalog); ok {
			sourceLog.Print("Catalog cache hit")
			return c, nil
		}
	}
	c, err := s.inner.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.Set(cacheKey, c, cache.DefaultExpiration)
	return c, nil
}

// Invalidate drops the cached catalog.
func (s *CachedSource) Invalidate() {
	if s.cache != nil {
		s.cache.Delete(cacheKey)
	}
}
