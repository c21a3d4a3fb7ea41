package genetics

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	defaultHGNCBaseURL = "https://rest.genenames.org"
	geneCacheSize      = 2048
)

// HGNCClient resolves gene symbols and HGNC ids against the HGNC REST
// service. Responses are memoized in an LRU so a cohort referencing the same
// genes repeatedly costs one request per gene.
type HGNCClient struct {
	baseURL string
	client  *http.Client
	memo    *lru.Cache[string, Gene]
}

// NewHGNCClient builds a client. An empty baseURL uses the public service;
// a zero timeout defaults to 30s.
func NewHGNCClient(baseURL string, timeout time.Duration) (*HGNCClient, error) {
	if baseURL == "" {
		baseURL = defaultHGNCBaseURL
	}
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	memo, err := lru.New[string, Gene](geneCacheSize)
	if err != nil {
		return nil, err
	}
	return &HGNCClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		memo:    memo,
	}, nil
}

type hgncResponse struct {
	Response struct {
		Docs []struct {
			Symbol string `json:"symbol"`
			HgncID string `json:"hgnc_id"`
		} `json:"docs"`
	} `json:"response"`
}

// ResolveGene implements GeneService. Queries shaped "HGNC:n" are fetched by
// id, everything else by symbol.
func (c *HGNCClient) ResolveGene(ctx context.Context, query string) (Gene, error) {
	q := strings.TrimSpace(query)
	if hit, ok := c.memo.Get(q); ok {
		return hit, nil
	}

	field := "symbol"
	if strings.HasPrefix(strings.ToUpper(q), "HGNC:") {
		field = "hgnc_id"
	}
	endpoint := fmt.Sprintf("%s/fetch/%s/%s", c.baseURL, field, url.PathEscape(q))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Gene{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Gene{}, fmt.Errorf("hgnc fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return Gene{}, fmt.Errorf("%w: %q", ErrGeneNotFound, query)
	}
	if resp.StatusCode != http.StatusOK {
		return Gene{}, fmt.Errorf("hgnc fetch: unexpected status %d", resp.StatusCode)
	}

	var body hgncResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Gene{}, fmt.Errorf("hgnc fetch: decode response: %w", err)
	}
	if len(body.Response.Docs) == 0 {
		return Gene{}, fmt.Errorf("%w: %q", ErrGeneNotFound, query)
	}
	gene := Gene{Symbol: body.Response.Docs[0].Symbol, ID: body.Response.Docs[0].HgncID}
	c.memo.Add(q, gene)
	return gene, nil
}

// VariantClient validates HGVS expressions against a variant validation
// service that answers GET {base}/validate?hgvs=... with a JSON variant.
type VariantClient struct {
	baseURL string
	client  *http.Client
	memo    *lru.Cache[string, Variant]
}

// NewVariantClient builds a client for the given validator endpoint.
func NewVariantClient(baseURL string, timeout time.Duration) (*VariantClient, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("variant validator base URL is required")
	}
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	memo, err := lru.New[string, Variant](geneCacheSize)
	if err != nil {
		return nil, err
	}
	return &VariantClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		memo:    memo,
	}, nil
}

// ValidateVariant implements VariantService.
func (c *VariantClient) ValidateVariant(ctx context.Context, hgvs string) (Variant, error) {
	if err := CheckHgvsSyntax(hgvs); err != nil {
		return Variant{}, err
	}
	q := strings.TrimSpace(hgvs)
	if hit, ok := c.memo.Get(q); ok {
		return hit, nil
	}

	endpoint := fmt.Sprintf("%s/validate?hgvs=%s", c.baseURL, url.QueryEscape(q))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Variant{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Variant{}, fmt.Errorf("variant validation: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound, http.StatusUnprocessableEntity:
		return Variant{}, fmt.Errorf("%w: %q", ErrVariantNotFound, hgvs)
	default:
		return Variant{}, fmt.Errorf("variant validation: unexpected status %d", resp.StatusCode)
	}

	var v Variant
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		return Variant{}, fmt.Errorf("variant validation: decode response: %w", err)
	}
	if v.Hgvs == "" {
		v.Hgvs = q
	}
	if v.ID == "" {
		v.ID = v.Hgvs
	}
	v.Chromosome = ParseChromosome(string(v.Chromosome))
	c.memo.Add(q, v)
	return v, nil
}
