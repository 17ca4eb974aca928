package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/andresmv/trivia-rooms/internal/room"
)

// Teams persists room teams.
type Teams struct {
	pool *pgxpool.Pool
}

// NewTeams constructs a team repository.
func NewTeams(pool *pgxpool.Pool) *Teams {
	return &Teams{pool: pool}
}

// Create inserts a team.
func (r *Teams) Create(ctx context.Context, t room.Team) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO teams (team_id, room_id, name) VALUES ($1, $2, $3)`,
		pgUUID(t.ID), pgUUID(t.RoomID), t.Name)
	return mapError(err)
}

// List returns the room's teams.
func (r *Teams) List(ctx context.Context, roomID uuid.UUID) ([]room.Team, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT team_id, room_id, name FROM teams WHERE room_id = $1`,
		pgUUID(roomID))
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var teams []room.Team
	for rows.Next() {
		var (
			t      room.Team
			id     pgtype.UUID
			roomID pgtype.UUID
		)
		if err := rows.Scan(&id, &roomID, &t.Name); err != nil {
			return nil, err
		}
		t.ID = fromPG(id)
		t.RoomID = fromPG(roomID)
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

// Get fetches a team by primary key.
func (r *Teams) Get(ctx context.Context, teamID uuid.UUID) (room.Team, error) {
	var (
		t      room.Team
		id     pgtype.UUID
		roomID pgtype.UUID
	)
	err := r.pool.QueryRow(ctx,
		`SELECT team_id, room_id, name FROM teams WHERE team_id = $1`,
		pgUUID(teamID)).Scan(&id, &roomID, &t.Name)
	if err != nil {
		return room.Team{}, mapError(err)
	}
	t.ID = fromPG(id)
	t.RoomID = fromPG(roomID)
	return t, nil
}
