package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/andresmv/trivia-rooms/internal/game"
	"github.com/andresmv/trivia-rooms/internal/storage"
)

// Games persists games and their round schedules.
type Games struct {
	pool *pgxpool.Pool
}

// NewGames constructs a game repository.
func NewGames(pool *pgxpool.Pool) *Games {
	return &Games{pool: pool}
}

// CreateGameWithRounds commits the game and every round as one transaction.
// Any failed insert aborts the whole batch, so readers never observe a game
// with a partial round set.
func (r *Games) CreateGameWithRounds(ctx context.Context, g game.Game, rounds []game.Round) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO games (game_id, room_id, created_at, ended_at, settings_id, round_count, seconds_per_round)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		pgUUID(g.ID), pgUUID(g.RoomID), g.CreatedAt, g.EndedAt, pgUUID(g.SettingsID), g.RoundCount, g.SecondsPerRound)
	if err != nil {
		return fmt.Errorf("insert game: %w", mapError(err))
	}

	batch := &pgx.Batch{}
	for _, rnd := range rounds {
		batch.Queue(
			`INSERT INTO rounds (round_id, game_id, round_number, created_at, ended_at)
			 VALUES ($1, $2, $3, $4, $5)`,
			pgUUID(rnd.ID), pgUUID(rnd.GameID), rnd.RoundNumber, rnd.CreatedAt, rnd.EndedAt)
	}
	results := tx.SendBatch(ctx, batch)
	for range rounds {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("insert round: %w", mapError(err))
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("close batch: %w", err)
	}

	return tx.Commit(ctx)
}

// Get fetches a game by primary key.
func (r *Games) Get(ctx context.Context, gameID uuid.UUID) (game.Game, error) {
	var (
		g          game.Game
		id         pgtype.UUID
		roomID     pgtype.UUID
		settingsID pgtype.UUID
	)
	err := r.pool.QueryRow(ctx,
		`SELECT game_id, room_id, created_at, ended_at, settings_id, round_count, seconds_per_round
		 FROM games WHERE game_id = $1`,
		pgUUID(gameID)).Scan(&id, &roomID, &g.CreatedAt, &g.EndedAt, &settingsID, &g.RoundCount, &g.SecondsPerRound)
	if err != nil {
		return game.Game{}, mapError(err)
	}
	g.ID = fromPG(id)
	g.RoomID = fromPG(roomID)
	g.SettingsID = fromPG(settingsID)
	return g, nil
}

// Delete removes a game; rounds go with it via the cascade.
func (r *Games) Delete(ctx context.Context, gameID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM games WHERE game_id = $1`, pgUUID(gameID))
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ListRounds returns a game's rounds in schedule order.
func (r *Games) ListRounds(ctx context.Context, gameID uuid.UUID) ([]game.Round, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT round_id, game_id, round_number, created_at, ended_at
		 FROM rounds WHERE game_id = $1 ORDER BY round_number`,
		pgUUID(gameID))
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var rounds []game.Round
	for rows.Next() {
		rnd, err := scanRound(rows)
		if err != nil {
			return nil, err
		}
		rounds = append(rounds, rnd)
	}
	return rounds, rows.Err()
}

// GetRound fetches a round by primary key.
func (r *Games) GetRound(ctx context.Context, roundID uuid.UUID) (game.Round, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT round_id, game_id, round_number, created_at, ended_at FROM rounds WHERE round_id = $1`,
		pgUUID(roundID))
	rnd, err := scanRound(row)
	if err != nil {
		return game.Round{}, mapError(err)
	}
	return rnd, nil
}

func scanRound(row pgx.Row) (game.Round, error) {
	var (
		rnd    game.Round
		id     pgtype.UUID
		gameID pgtype.UUID
	)
	if err := row.Scan(&id, &gameID, &rnd.RoundNumber, &rnd.CreatedAt, &rnd.EndedAt); err != nil {
		return game.Round{}, err
	}
	rnd.ID = fromPG(id)
	rnd.GameID = fromPG(gameID)
	return rnd, nil
}
