package game

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultQuestionCacheTTL = 30 * time.Second

// QuestionCache keeps answer-stripped question lists per round in Redis to
// offload repeated listings during an active round. Only representations
// that already passed the visibility gate may be stored here.
type QuestionCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ questionCache = (*QuestionCache)(nil)

// NewQuestionCache builds a Redis-backed question list cache.
func NewQuestionCache(client *redis.Client, ttl time.Duration) *QuestionCache {
	if ttl <= 0 {
		ttl = defaultQuestionCacheTTL
	}
	return &QuestionCache{client: client, ttl: ttl}
}

func (c *QuestionCache) key(roundID uuid.UUID) string {
	return fmt.Sprintf("round:questions:%s", roundID.String())
}

// Get returns the cached list for a round, or nil on a miss.
func (c *QuestionCache) Get(ctx context.Context, roundID uuid.UUID) ([]Question, error) {
	data, err := c.client.Get(ctx, c.key(roundID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	var questions []Question
	if err := json.Unmarshal(data, &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

// Set stores a stripped question list for a round.
func (c *QuestionCache) Set(ctx context.Context, roundID uuid.UUID, questions []Question) error {
	data, err := json.Marshal(questions)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(roundID), data, c.ttl).Err()
}

// Invalidate drops the cached list after a round's question set changes.
func (c *QuestionCache) Invalidate(ctx context.Context, roundID uuid.UUID) error {
	return c.client.Del(ctx, c.key(roundID)).Err()
}
