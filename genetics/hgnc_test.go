package genetics

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHGNCClientResolveGene(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		docs := []map[string]string{}
		switch r.URL.Path {
		case "/fetch/symbol/FBN1", "/fetch/hgnc_id/HGNC:3603":
			docs = append(docs, map[string]string{"symbol": "FBN1", "hgnc_id": "HGNC:3603"})
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"response": map[string]any{"docs": docs},
		})
	}))
	defer server.Close()

	client, err := NewHGNCClient(server.URL, 0)
	require.NoError(t, err)

	g, err := client.ResolveGene(context.Background(), "FBN1")
	require.NoError(t, err)
	assert.Equal(t, Gene{Symbol: "FBN1", ID: "HGNC:3603"}, g)

	// Memoized: the repeat does not hit the server.
	_, err = client.ResolveGene(context.Background(), "FBN1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), calls.Load())

	g, err = client.ResolveGene(context.Background(), "HGNC:3603")
	require.NoError(t, err)
	assert.Equal(t, "FBN1", g.Symbol)

	_, err = client.ResolveGene(context.Background(), "NOT_A_GENE")
	assert.ErrorIs(t, err, ErrGeneNotFound)
}

func TestVariantClientValidate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hgvs := r.URL.Query().Get("hgvs")
		if hgvs != "NM_000132.4:c.6046C>T" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(Variant{
			ID:         "vv-42",
			Hgvs:       hgvs,
			Gene:       Gene{Symbol: "F8", ID: "HGNC:3546"},
			Chromosome: "chrX",
		})
	}))
	defer server.Close()

	client, err := NewVariantClient(server.URL, 0)
	require.NoError(t, err)

	v, err := client.ValidateVariant(context.Background(), "NM_000132.4:c.6046C>T")
	require.NoError(t, err)
	assert.Equal(t, "vv-42", v.ID)
	assert.Equal(t, ChromosomeX, v.Chromosome)

	_, err = client.ValidateVariant(context.Background(), "NM_999999.1:c.1A>G")
	assert.ErrorIs(t, err, ErrVariantNotFound)

	_, err = client.ValidateVariant(context.Background(), "malformed")
	require.Error(t, err)
}
