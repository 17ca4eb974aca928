package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Authorization failures. All of them map to HTTP 403.
var (
	ErrNoIdentity = errors.New("no identity bound for room")
	ErrNotHost    = errors.New("caller is not the host")
	ErrNotSubject = errors.New("caller is not the subject player")
)

// Forbidden reports whether an error is one of the guard failures.
func Forbidden(err error) bool {
	return errors.Is(err, ErrNoIdentity) || errors.Is(err, ErrNotHost) || errors.Is(err, ErrNotSubject)
}

// Resolver is the read side of the binder, what guards need.
type Resolver interface {
	Resolve(ctx context.Context, roomID uuid.UUID) (*Binding, error)
}

// Guard evaluates authorization checks against the caller's room binding.
// Checks are evaluated per request; nothing is cached here.
type Guard struct {
	resolver Resolver
}

// NewGuard builds a guard on top of a binding resolver.
func NewGuard(resolver Resolver) *Guard {
	return &Guard{resolver: resolver}
}

// RequireBound ensures the caller holds any binding for the room.
func (g *Guard) RequireBound(ctx context.Context, roomID uuid.UUID) (*Binding, error) {
	binding, err := g.resolver.Resolve(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("resolve identity: %w", err)
	}
	if binding == nil {
		return nil, ErrNoIdentity
	}
	return binding, nil
}

// HostOnly ensures the caller is bound to the room as its host.
func (g *Guard) HostOnly(ctx context.Context, roomID uuid.UUID) (*Binding, error) {
	binding, err := g.RequireBound(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !binding.IsHost {
		return nil, ErrNotHost
	}
	return binding, nil
}

// SubjectOnly ensures the caller is bound to the room as the given player.
func (g *Guard) SubjectOnly(ctx context.Context, roomID, playerID uuid.UUID) (*Binding, error) {
	binding, err := g.RequireBound(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if binding.PlayerID != playerID {
		return nil, ErrNotSubject
	}
	return binding, nil
}
