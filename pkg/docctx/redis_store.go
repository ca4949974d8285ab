package docctx

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	contextKeyPrefix = "assistant:context:"
	contextTTL       = 24 * time.Hour
)

// RedisStore is the durable Store implementation. The whole record is
// serialized and written with a single SET so readers never observe a
// partial-field update.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Load(ctx context.Context, owner string) (*DocumentContext, error) {
	raw, err := s.rdb.Get(ctx, contextKeyPrefix+owner).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read document context: %w", err)
	}

	var doc DocumentContext
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("decode document context: %w", err)
	}
	if doc.Fingerprint == "" {
		return nil, fmt.Errorf("document context missing fingerprint")
	}
	return &doc, nil
}

func (s *RedisStore) Save(ctx context.Context, owner string, doc *DocumentContext) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document context: %w", err)
	}
	if err := s.rdb.Set(ctx, contextKeyPrefix+owner, data, contextTTL).Err(); err != nil {
		return fmt.Errorf("write document context: %w", err)
	}
	return nil
}
