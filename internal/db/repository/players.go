package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/andresmv/trivia-rooms/internal/room"
	"github.com/andresmv/trivia-rooms/internal/storage"
)

// Players persists room membership and team assignment.
type Players struct {
	pool *pgxpool.Pool
}

// NewPlayers constructs a player repository.
func NewPlayers(pool *pgxpool.Pool) *Players {
	return &Players{pool: pool}
}

// Join inserts a player, electing the host inside a per-room critical
// section: an advisory transaction lock on the room ID serializes concurrent
// joins, so "room was empty" and the insert observe the same state. The
// partial unique index on (room_id) WHERE is_host backstops the invariant.
func (r *Players) Join(ctx context.Context, p room.Player) (room.Player, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return room.Player{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`,
		p.RoomID.String()); err != nil {
		return room.Player{}, fmt.Errorf("lock room: %w", err)
	}

	var count int
	if err := tx.QueryRow(ctx,
		`SELECT count(*) FROM players WHERE room_id = $1`,
		pgUUID(p.RoomID)).Scan(&count); err != nil {
		return room.Player{}, fmt.Errorf("count players: %w", err)
	}
	p.IsHost = count == 0

	if _, err := tx.Exec(ctx,
		`INSERT INTO players (player_id, room_id, username, is_host) VALUES ($1, $2, $3, $4)`,
		pgUUID(p.ID), pgUUID(p.RoomID), p.Username, p.IsHost); err != nil {
		return room.Player{}, fmt.Errorf("insert player: %w", mapError(err))
	}

	if err := tx.Commit(ctx); err != nil {
		return room.Player{}, fmt.Errorf("commit: %w", err)
	}
	return p, nil
}

// List returns the room's players.
func (r *Players) List(ctx context.Context, roomID uuid.UUID) ([]room.Player, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT player_id, room_id, username, is_host, team_id FROM players WHERE room_id = $1`,
		pgUUID(roomID))
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var players []room.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

// Get fetches a player by primary key.
func (r *Players) Get(ctx context.Context, playerID uuid.UUID) (room.Player, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT player_id, room_id, username, is_host, team_id FROM players WHERE player_id = $1`,
		pgUUID(playerID))
	p, err := scanPlayer(row)
	if err != nil {
		return room.Player{}, mapError(err)
	}
	return p, nil
}

// AssignTeam moves a player onto a team unless the team is already at
// capacity. The membership count and the update run under an advisory lock
// on the team ID so concurrent assignments cannot overfill it.
func (r *Players) AssignTeam(ctx context.Context, playerID, teamID uuid.UUID, maxPerTeam int) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`,
		teamID.String()); err != nil {
		return fmt.Errorf("lock team: %w", err)
	}

	var members int
	if err := tx.QueryRow(ctx,
		`SELECT count(*) FROM players WHERE team_id = $1 AND player_id <> $2`,
		pgUUID(teamID), pgUUID(playerID)).Scan(&members); err != nil {
		return fmt.Errorf("count members: %w", err)
	}
	if members >= maxPerTeam {
		return fmt.Errorf("team %s is full: %w", teamID, storage.ErrConflict)
	}

	tag, err := tx.Exec(ctx,
		`UPDATE players SET team_id = $2 WHERE player_id = $1`,
		pgUUID(playerID), pgUUID(teamID))
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}

	return tx.Commit(ctx)
}

func scanPlayer(row pgx.Row) (room.Player, error) {
	var (
		p      room.Player
		id     pgtype.UUID
		roomID pgtype.UUID
		teamID pgtype.UUID
	)
	if err := row.Scan(&id, &roomID, &p.Username, &p.IsHost, &teamID); err != nil {
		return room.Player{}, err
	}
	p.ID = fromPG(id)
	p.RoomID = fromPG(roomID)
	p.TeamID = fromPGPtr(teamID)
	return p, nil
}
