package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// EmbeddingClient turns text into fixed-dimension vectors via the
// OpenAI-compatible /embeddings endpoint. Every returned vector is checked
// against the configured dimension before it leaves this package.
type EmbeddingClient struct {
	client    *Client
	model     string
	dimension int
}

func NewEmbeddingClient(client *Client, model string, dimension int) *EmbeddingClient {
	return &EmbeddingClient{
		client:    client,
		model:     model,
		dimension: dimension,
	}
}

// Dimension returns the configured vector dimension D.
func (c *EmbeddingClient) Dimension() int {
	return c.dimension
}

// Embed returns the embedding vector for a single text.
func (c *EmbeddingClient) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("embedding input is empty")
	}
	vectors, err := c.request(ctx, text)
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("%w: empty embedding in response", ErrEmbeddingBackend)
	}
	return vectors[0], nil
}

// EmbedBatch returns one vector per input text, order-preserving.
func (c *EmbeddingClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	vectors, err := c.request(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d texts", ErrEmbeddingBackend, len(vectors), len(texts))
	}
	return vectors, nil
}

func (c *EmbeddingClient) request(ctx context.Context, input interface{}) ([][]float32, error) {
	reqBody := map[string]interface{}{
		"model": c.model,
		"input": input,
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal embedding request failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.client.endpoint("/embeddings"), bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("build embedding request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.client.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.client.apiKey)
	}

	resp, err := c.client.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingBackend, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response failed: %v", ErrEmbeddingBackend, err)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d: %s", ErrEmbeddingBackend, resp.StatusCode, string(raw))
	}

	var parsed struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("%w: parse embedding json failed: %v", ErrEmbeddingBackend, err)
	}

	vectors := make([][]float32, len(parsed.Data))
	for i := range parsed.Data {
		vec := parsed.Data[i].Embedding
		if len(vec) != c.dimension {
			return nil, fmt.Errorf("%w: expected %d, got %d", ErrDimensionMismatch, c.dimension, len(vec))
		}
		vectors[i] = vec
	}
	return vectors, nil
}
