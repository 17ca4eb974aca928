package game

import (
	"time"

	"github.com/google/uuid"
)

// Game is one playthrough generated from a room's settings. The scheduling
// fields (RoundCount, SecondsPerRound) are value-frozen at creation so later
// settings edits never disagree with the materialized rounds.
type Game struct {
	ID              uuid.UUID `json:"game_id"`
	RoomID          uuid.UUID `json:"room_id"`
	CreatedAt       time.Time `json:"created_at"`
	EndedAt         time.Time `json:"ended_at"`
	SettingsID      uuid.UUID `json:"settings_id"`
	RoundCount      int       `json:"round_count"`
	SecondsPerRound int       `json:"seconds_per_round"`
}

// Round is one time-boxed segment of a game. For a game created at T with
// per-round duration d, round n spans [T+d*(n-1), T+d*n).
type Round struct {
	ID          uuid.UUID `json:"round_id"`
	GameID      uuid.UUID `json:"game_id"`
	RoundNumber int       `json:"round_number"`
	CreatedAt   time.Time `json:"created_at"`
	EndedAt     time.Time `json:"ended_at"`
}

// Question is a prompt with an authoritative set of accepted answers.
// CorrectAnswers is never serialized through the listing path; it is stripped
// before any representation leaves the service.
type Question struct {
	ID             uuid.UUID `json:"question_id"`
	RoundID        uuid.UUID `json:"round_id"`
	Type           string    `json:"type"`
	Text           string    `json:"text"`
	CorrectAnswers []string  `json:"correct_answers,omitempty"`
	MediaURL       *string   `json:"media_url,omitempty"`
}

/// Answer is one player's graded submission for one question. Terminal:
// created exactly once, never updated, IsCorrect never recomputed.
type Answer struct {
	ID         uuid.UUID `json:"answer_id"`
	QuestionID uuid.UUID `json:"question_id"`
	PlayerID   uuid.UUID `json:"player_id"`
	Text       string    `json:"text"`
	IsCorrect  bool      `json:"is_correct"`
}

// InvalidStateError rejects an operation outside its round's time window.
// Callers may retry once the window condition changes.
type InvalidStateError struct {
	Code    string
	Message string
}

func (e *InvalidStateError) Error() string {
	return e.Message
}

// ValidationError describes a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
