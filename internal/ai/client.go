package ai

import (
	"errors"
	"net/http"
	"strings"
	"time"
)

var (
	// ErrEmbeddingBackend marks transport or backend failures from the
	// embedding endpoint. Idempotent, so callers may retry.
	ErrEmbeddingBackend = errors.New("embedding backend unavailable")

	// ErrGenerationBackend marks failures from the chat completion
	// endpoint. Generation is not guaranteed side-effect free on the
	// backend, so callers must not retry automatically.
	ErrGenerationBackend = errors.New("generation backend unavailable")

	// ErrDimensionMismatch means the backend returned a vector of the
	// wrong length. Configuration drift between model and storage schema;
	// always fatal, never padded or truncated.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

// Client is a thin OpenAI-compatible HTTP client shared by the embedding
// and chat wrappers.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 90 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
	}
}

func (c *Client) endpoint(path string) string {
	return c.baseURL + path
}
