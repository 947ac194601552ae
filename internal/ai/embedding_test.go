package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func embeddingServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestEmbedSuccess(t *testing.T) {
	srv := embeddingServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req struct {
			Model string `json:"model"`
			Input string `json:"input"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-embed", req.Model)
		assert.Equal(t, "hello", req.Input)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]interface{}{
				{"embedding": []float32{0.1, 0.2, 0.3}},
			},
		})
	})

	ec := NewEmbeddingClient(NewClient(srv.URL, "test-key"), "test-embed", 3)
	vec, err := ec.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
}

func TestEmbedBatchPreservesOrder(t *testing.T) {
	srv := embeddingServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Input []string `json:"input"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		data := make([]map[string]interface{}, len(req.Input))
		for i := range req.Input {
			data[i] = map[string]interface{}{
				"embedding": []float32{float32(i), float32(i), float32(i)},
			}
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"data": data})
	})

	ec := NewEmbeddingClient(NewClient(srv.URL, ""), "test-embed", 3)
	vecs, err := ec.EmbedBatch(context.Background(), []string{"one", "two", "three"})
	require.NoError(t, err)
	require.Len(t, vecs, 3)
	assert.Equal(t, []float32{0, 0, 0}, vecs[0])
	assert.Equal(t, []float32{1, 1, 1}, vecs[1])
	assert.Equal(t, []float32{2, 2, 2}, vecs[2])
}

func TestEmbedDimensionMismatch(t *testing.T) {
	srv := embeddingServer(t, func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]interface{}{
				{"embedding": []float32{0.1, 0.2}},
			},
		})
	})

	ec := NewEmbeddingClient(NewClient(srv.URL, ""), "test-embed", 3)
	_, err := ec.Embed(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrDimensionMismatch)
	assert.NotErrorIs(t, err, ErrEmbeddingBackend)
}

func TestEmbedBackendFailure(t *testing.T) {
	srv := embeddingServer(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "overloaded", http.StatusInternalServerError)
	})

	ec := NewEmbeddingClient(NewClient(srv.URL, ""), "test-embed", 3)
	_, err := ec.Embed(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrEmbeddingBackend)
}

func TestEmbedBatchCountMismatch(t *testing.T) {
	srv := embeddingServer(t, func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]interface{}{
				{"embedding": []float32{0.1, 0.2, 0.3}},
			},
		})
	})

	ec := NewEmbeddingClient(NewClient(srv.URL, ""), "test-embed", 3)
	_, err := ec.EmbedBatch(context.Background(), []string{"one", "two"})
	assert.ErrorIs(t, err, ErrEmbeddingBackend)
}

func TestEmbedEmptyInput(t *testing.T) {
	ec := NewEmbeddingClient(NewClient("http://127.0.0.1:1", ""), "test-embed", 3)
	_, err := ec.Embed(context.Background(), "  ")
	assert.Error(t, err)
}

func TestEmbedBatchEmptySlice(t *testing.T) {
	ec := NewEmbeddingClient(NewClient("http://127.0.0.1:1", ""), "test-embed", 3)
	vecs, err := ec.EmbedBatch(context.Background(), nil)
	assert.NoError(t, err)
	assert.Nil(t, vecs)
}
