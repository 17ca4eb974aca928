package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Binding is the player identity a session holds within one room.
type Binding struct {
	PlayerID uuid.UUID  `json:"player_id"`
	RoomID   uuid.UUID  `json:"room_id"`
	Username string     `json:"username"`
	IsHost   bool       `json:"is_host"`
	TeamID   *uuid.UUID `json:"team_id,omitempty"`
}

const defaultBindingTTL = 12 * time.Hour

// Binder associates a session with a player per room, backed by Redis.
// A single SET per (session, room) key is the only write path, so concurrent
// writers to the same room binding serialize on Redis itself; reads never
// block writes.
type Binder struct {
	redis  *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewBinder creates a Redis-backed identity binder.
func NewBinder(redisClient *redis.Client, ttl time.Duration, logger zerolog.Logger) *Binder {
	if ttl <= 0 {
		ttl = defaultBindingTTL
	}
	return &Binder{
		redis:  redisClient,
		ttl:    ttl,
		logger: logger,
	}
}

func bindingKey(sessionID, roomID uuid.UUID) string {
	return fmt.Sprintf("session:%s:room:%s", sessionID.String(), roomID.String())
}

// Bind associates the calling session with a player for the given room,
// overwriting any prior binding for that room.
func (b *Binder) Bind(ctx context.Context, roomID uuid.UUID, binding Binding) error {
	sessionID, ok := IDFromContext(ctx)
	if !ok {
		return fmt.Errorf("no session in context")
	}

	data, err := json.Marshal(binding)
	if err != nil {
		return fmt.Errorf("marshal binding: %w", err)
	}

	if err := b.redis.Set(ctx, bindingKey(sessionID, roomID), data, b.ttl).Err(); err != nil {
		return fmt.Errorf("store binding: %w", err)
	}

	b.logger.Debug().
		Str("room_id", roomID.String()).
		Str("player_id", binding.PlayerID.String()).
		Bool("is_host", binding.IsHost).
		Msg("session bound to player")
	return nil
}

// Resolve returns the player bound to this session for the room, or nil when
// no binding exists.
func (b *Binder) Resolve(ctx context.Context, roomID uuid.UUID) (*Binding, error) {
	sessionID, ok := IDFromContext(ctx)
	if !ok {
		return nil, nil
	}

	data, err := b.redis.Get(ctx, bindingKey(sessionID, roomID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get binding: %w", err)
	}

	var binding Binding
	if err := json.Unmarshal(data, &binding); err != nil {
		return nil, fmt.Errorf("unmarshal binding: %w", err)
	}
	return &binding, nil
}
