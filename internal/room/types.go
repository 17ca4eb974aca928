package room

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Difficulty levels a room's settings may select.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// ValidDifficulty reports whether s names a known difficulty.
func ValidDifficulty(s string) bool {
	switch s {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Settings governs round count, duration, and difficulty for games created
// in a room.
type Settings struct {
	ID                uuid.UUID `json:"settings_id"`
	RoundCount        int       `json:"round_count"`
	SecondsPerRound   int       `json:"seconds_per_round"`
	QuestionsPerRound int       `json:"questions_per_round"`
	Difficulty        string    `json:"difficulty"`
	MaxPlayersPerTeam int       `json:"max_players_per_team"`
}

// Validate checks the field invariants for settings writes.
func (s Settings) Validate() error {
	if s.RoundCount < 1 {
		return &ValidationError{Field: "round_count", Message: "round_count must be at least 1"}
	}
	if s.SecondsPerRound < 1 {
		return &ValidationError{Field: "seconds_per_round", Message: "seconds_per_round must be at least 1"}
	}
	if s.QuestionsPerRound < 0 {
		return &ValidationError{Field: "questions_per_round", Message: "questions_per_round must not be negative"}
	}
	if !ValidDifficulty(s.Difficulty) {
		return &ValidationError{Field: "difficulty", Message: "difficulty must be easy, medium, or hard"}
	}
	if s.MaxPlayersPerTeam < 1 {
		return &ValidationError{Field: "max_players_per_team", Message: "max_players_per_team must be at least 1"}
	}
	return nil
}

// Room is a lobby grouping players under one settings configuration.
type Room struct {
	ID         uuid.UUID `json:"room_id"`
	CreatedAt  time.Time `json:"created_at"`
	SettingsID uuid.UUID `json:"settings_id"`
}

// Player is a participant in one room. IsHost is assigned once, at join
// time, and never re-derived.
type Player struct {
	ID       uuid.UUID  `json:"player_id"`
	RoomID   uuid.UUID  `json:"room_id"`
	Username string     `json:"username"`
	IsHost   bool       `json:"is_host"`
	TeamID   *uuid.UUID `json:"team_id,omitempty"`
}

// Team groups players within a room.
type Team struct {
	ID     uuid.UUID `json:"team_id"`
	RoomID uuid.UUID `json:"room_id"`
	Name   string    `json:"name"`
}

// ValidationError describes a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
