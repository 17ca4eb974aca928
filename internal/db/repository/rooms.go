package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/andresmv/trivia-rooms/internal/room"
	"github.com/andresmv/trivia-rooms/internal/storage"
)

// Rooms persists rooms and their settings.
type Rooms struct {
	pool *pgxpool.Pool
}

// NewRooms constructs a room repository.
func NewRooms(pool *pgxpool.Pool) *Rooms {
	return &Rooms{pool: pool}
}

// CreateRoomWithSettings inserts the settings and the room in one
// transaction; a room never exists without its settings.
func (r *Rooms) CreateRoomWithSettings(ctx context.Context, rm room.Room, st room.Settings) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO settings (settings_id, round_count, seconds_per_round, questions_per_round, difficulty, max_players_per_team)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		pgUUID(st.ID), st.RoundCount, st.SecondsPerRound, st.QuestionsPerRound, st.Difficulty, st.MaxPlayersPerTeam)
	if err != nil {
		return fmt.Errorf("insert settings: %w", mapError(err))
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO rooms (room_id, created_at, settings_id) VALUES ($1, $2, $3)`,
		pgUUID(rm.ID), rm.CreatedAt, pgUUID(rm.SettingsID))
	if err != nil {
		return fmt.Errorf("insert room: %w", mapError(err))
	}

	return tx.Commit(ctx)
}

// GetRoom fetches a room by primary key.
func (r *Rooms) GetRoom(ctx context.Context, roomID uuid.UUID) (room.Room, error) {
	var (
		rm         room.Room
		id         pgtype.UUID
		settingsID pgtype.UUID
	)
	err := r.pool.QueryRow(ctx,
		`SELECT room_id, created_at, settings_id FROM rooms WHERE room_id = $1`,
		pgUUID(roomID)).Scan(&id, &rm.CreatedAt, &settingsID)
	if err != nil {
		return room.Room{}, mapError(err)
	}
	rm.ID = fromPG(id)
	rm.SettingsID = fromPG(settingsID)
	return rm, nil
}

// GetSettings fetches a settings record by primary key.
func (r *Rooms) GetSettings(ctx context.Context, settingsID uuid.UUID) (room.Settings, error) {
	var (
		st room.Settings
		id pgtype.UUID
	)
	err := r.pool.QueryRow(ctx,
		`SELECT settings_id, round_count, seconds_per_round, questions_per_round, difficulty, max_players_per_team
		 FROM settings WHERE settings_id = $1`,
		pgUUID(settingsID)).Scan(&id, &st.RoundCount, &st.SecondsPerRound, &st.QuestionsPerRound, &st.Difficulty, &st.MaxPlayersPerTeam)
	if err != nil {
		return room.Settings{}, mapError(err)
	}
	st.ID = fromPG(id)
	return st, nil
}

// UpdateSettings replaces all mutable settings fields.
func (r *Rooms) UpdateSettings(ctx context.Context, st room.Settings) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE settings
		 SET round_count = $2, seconds_per_round = $3, questions_per_round = $4, difficulty = $5, max_players_per_team = $6
		 WHERE settings_id = $1`,
		pgUUID(st.ID), st.RoundCount, st.SecondsPerRound, st.QuestionsPerRound, st.Difficulty, st.MaxPlayersPerTeam)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
