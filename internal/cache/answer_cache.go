package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"ragdocs/internal/app"
)

// AnswerCache keeps recent answers keyed by question and candidate set, so
// an identical query within the TTL skips embedding and generation.
type AnswerCache struct {
	client *redisv9.Client
	ttl    time.Duration
}

func NewAnswerCache(client *redisv9.Client, ttl time.Duration) *AnswerCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &AnswerCache{client: client, ttl: ttl}
}

func (c *AnswerCache) Get(ctx context.Context, question string, documentIDs []uint, allDocuments bool) (*app.AskResult, bool, error) {
	raw, err := c.client.Get(ctx, c.key(question, documentIDs, allDocuments)).Result()
	if err == redisv9.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get answer failed: %w", err)
	}

	var result app.AskResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached answer failed: %w", err)
	}
	return &result, true, nil
}

func (c *AnswerCache) Set(ctx context.Context, question string, documentIDs []uint, allDocuments bool, result *app.AskResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal answer cache failed: %w", err)
	}
	if err := c.client.Set(ctx, c.key(question, documentIDs, allDocuments), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set answer failed: %w", err)
	}
	return nil
}

// key hashes the question together with the sorted candidate set so id
// order does not fragment the cache.
func (c *AnswerCache) key(question string, documentIDs []uint, allDocuments bool) string {
	ids := make([]uint, len(documentIDs))
	copy(ids, documentIDs)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var b strings.Builder
	b.WriteString(question)
	b.WriteByte('|')
	if allDocuments {
		b.WriteString("all")
	}
	for _, id := range ids {
		fmt.Fprintf(&b, "%d,", id)
	}

	sum := sha256.Sum256([]byte(b.String()))
	return "qa:answer:" + hex.EncodeToString(sum[:])
}
