package app

import (
	"context"
	"errors"
	"time"

	"ragdocs/internal/ai"
)

const (
	embedMaxRetries   = 2
	embedRetryBackoff = 500 * time.Millisecond
)

// retryEmbed runs fn, retrying only transient embedding-backend failures.
// Embedding is idempotent, so a bounded retry with linear backoff is safe.
// Dimension mismatches and every other error kind propagate immediately.
func retryEmbed(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if !errors.Is(err, ai.ErrEmbeddingBackend) || attempt >= embedMaxRetries {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt+1) * embedRetryBackoff):
		}
	}
}
