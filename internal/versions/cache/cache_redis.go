// Package cache keeps computed version diffs in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"statedeck/internal/versions/diff"
	"statedeck/internal/versions/models"
	"statedeck/pkg/platform/sentinel"
)

const diffKeyPrefix = "diff:"

// DefaultTTL applies when the cache is built with a non-positive TTL.
const DefaultTTL = 10 * time.Minute

// RedisDiffCache stores diffs as JSON under diff:<from>:<to>.
type RedisDiffCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisDiffCache constructs a Redis-backed diff cache. The client lifecycle
// is managed by the caller.
func NewRedisDiffCache(client *redis.Client, ttl time.Duration) *RedisDiffCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisDiffCache{client: client, ttl: ttl}
}

// Key identifies a diff by content checksums, falling back to ids when a
// checksum is missing.
func Key(from, to models.StateVersion) string {
	return diffKeyPrefix + identity(from) + ":" + identity(to)
}

func identity(v models.StateVersion) string {
	if v.Checksum != "" {
		return v.Checksum
	}
	return v.ID
}

// Get returns sentinel.ErrNotFound on a miss.
func (c *RedisDiffCache) Get(ctx context.Context, from, to models.StateVersion) (*diff.Diff, error) {
	raw, err := c.client.Get(ctx, Key(from, to)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get cached diff: %w", err)
	}

	var cached cachedDiff
	if err := json.Unmarshal(raw, &cached); err != nil {
		return nil, fmt.Errorf("decode cached diff: %w", err)
	}
	d := cached.toDiff()
	// ids differ when two versions share checksums
	d.From, d.To = from.ID, to.ID
	return &d, nil
}

// Put stores d with the configured TTL.
func (c *RedisDiffCache) Put(ctx context.Context, from, to models.StateVersion, d diff.Diff) error {
	raw, err := json.Marshal(fromDiff(d))
	if err != nil {
		return fmt.Errorf("encode diff: %w", err)
	}
	if err := c.client.Set(ctx, Key(from, to), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("set cached diff: %w", err)
	}
	return nil
}

// cachedChunk keeps leaf values as raw JSON so they round-trip byte for byte.
type cachedChunk struct {
	Path       string            `json:"path"`
	OldValue   json.RawMessage   `json:"oldValue,omitempty"`
	NewValue   json.RawMessage   `json:"newValue,omitempty"`
	LineNumber *int              `json:"lineNumber,omitempty"`
	Type       models.ChangeType `json:"type"`
}

type cachedDiff struct {
	Additions     []cachedChunk `json:"additions"`
	Deletions     []cachedChunk `json:"deletions"`
	Modifications []cachedChunk `json:"modifications"`
}

func fromDiff(d diff.Diff) cachedDiff {
	return cachedDiff{
		Additions:     encodeChunks(d.Additions),
		Deletions:     encodeChunks(d.Deletions),
		Modifications: encodeChunks(d.Modifications),
	}
}

func (c cachedDiff) toDiff() diff.Diff {
	return diff.Diff{
		Additions:     decodeChunks(c.Additions),
		Deletions:     decodeChunks(c.Deletions),
		Modifications: decodeChunks(c.Modifications),
	}
}

func encodeChunks(chunks []models.DiffChunk) []cachedChunk {
	out := make([]cachedChunk, 0, len(chunks))
	for _, ch := range chunks {
		out = append(out, cachedChunk{
			Path:       ch.Path,
			OldValue:   rawValue(ch.OldValue),
			NewValue:   rawValue(ch.NewValue),
			LineNumber: ch.LineNumber,
			Type:       ch.Type,
		})
	}
	return out
}

func decodeChunks(chunks []cachedChunk) []models.DiffChunk {
	out := make([]models.DiffChunk, 0, len(chunks))
	for _, ch := range chunks {
		dc := models.DiffChunk{Path: ch.Path, LineNumber: ch.LineNumber, Type: ch.Type}
		if len(ch.OldValue) > 0 {
			dc.OldValue = ch.OldValue
		}
		if len(ch.NewValue) > 0 {
			dc.NewValue = ch.NewValue
		}
		out = append(out, dc)
	}
	return out
}

func rawValue(v any) json.RawMessage {
	switch val := v.(type) {
	case nil:
		return nil
	case json.RawMessage:
		return val
	default:
		raw, err := json.Marshal(val)
		if err != nil {
			return nil
		}
		return raw
	}
}
