package ontology

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultLRUSize = 4096

type cachedTerm struct {
	class Class
	ref   ResourceRef
}

// RemoteSource resolves terms against an OLS-style search endpoint. Results
// are memoized in an in-process LRU and, when configured, an append-only
// on-disk query cache, so repeated runs over the same cohort stay offline.
type RemoteSource struct {
	name     string
	prefix   string
	ontology string
	baseURL  string
	version  string

	client *http.Client
	logger *slog.Logger
	memo   *lru.Cache[string, cachedTerm]
	disk   *QueryCache
}

// RemoteSourceConfig configures a RemoteSource.
type RemoteSourceConfig struct {
	// Name identifies the source in logs and cache keys.
	Name string
	// Prefix is the CURIE prefix the source serves, e.g. "HP".
	Prefix string
	// Ontology is the endpoint's ontology identifier, e.g. "hp".
	Ontology string
	// BaseURL is the search endpoint root.
	BaseURL string
	// Version is stamped on resource references; empty means "latest".
	Version string
	// Timeout bounds each HTTP request. Zero means 30s.
	Timeout time.Duration
	// Cache is an optional on-disk query cache.
	Cache *QueryCache
}

// NewRemoteSource builds a remote term source.
func NewRemoteSource(cfg RemoteSourceConfig, logger *slog.Logger) (*RemoteSource, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("remote source %q: base URL is required", cfg.Name)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	memo, err := lru.New[string, cachedTerm](defaultLRUSize)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RemoteSource{
		name:     cfg.Name,
		prefix:   cfg.Prefix,
		ontology: cfg.Ontology,
		baseURL:  cfg.BaseURL,
		version:  cfg.Version,
		client:   &http.Client{Timeout: cfg.Timeout},
		logger:   logger,
		memo:     memo,
		disk:     cfg.Cache,
	}, nil
}

// Name implements TermSource.
func (s *RemoteSource) Name() string { return s.name }

// Resolve implements TermSource.
func (s *RemoteSource) Resolve(ctx context.Context, query string) (Class, ResourceRef, error) {
	if hit, ok := s.memo.Get(query); ok {
		return hit.class, hit.ref, nil
	}
	if s.disk != nil {
		class, ref, ok, err := s.disk.Get(ctx, s.name, query)
		if err != nil {
			return Class{}, ResourceRef{}, err
		}
		if ok {
			s.memo.Add(query, cachedTerm{class, ref})
			return class, ref, nil
		}
	}

	class, err := s.search(ctx, query)
	if err != nil {
		return Class{}, ResourceRef{}, err
	}
	ref := NewResourceRef(s.prefix, s.version)
	s.memo.Add(query, cachedTerm{class, ref})
	if s.disk != nil {
		if err := s.disk.Put(ctx, s.name, query, class, ref); err != nil {
			s.logger.Warn("term cache write failed",
				slog.String("source", s.name),
				slog.String("query", query),
				slog.String("error", err.Error()))
		}
	}
	return class, ref, nil
}

type searchResponse struct {
	Response struct {
		Docs []struct {
			OboID string `json:"obo_id"`
			Label string `json:"label"`
		} `json:"docs"`
	} `json:"response"`
}

func (s *RemoteSource) search(ctx context.Context, query string) (Class, error) {
	u, err := url.Parse(s.baseURL)
	if err != nil {
		return Class{}, fmt.Errorf("remote source %q: invalid base URL: %w", s.name, err)
	}
	q := u.Query()
	q.Set("q", query)
	q.Set("ontology", s.ontology)
	q.Set("exact", "true")
	q.Set("rows", "1")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Class{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return Class{}, fmt.Errorf("remote source %q: %w", s.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return Class{}, ErrTermNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return Class{}, fmt.Errorf("remote source %q: unexpected status %d", s.name, resp.StatusCode)
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Class{}, fmt.Errorf("remote source %q: decode response: %w", s.name, err)
	}
	if len(body.Response.Docs) == 0 {
		return Class{}, ErrTermNotFound
	}
	doc := body.Response.Docs[0]
	if doc.OboID == "" || doc.Label == "" {
		return Class{}, ErrTermNotFound
	}
	return NewClass(doc.OboID, doc.Label), nil
}
