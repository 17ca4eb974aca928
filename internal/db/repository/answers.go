package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/andresmv/trivia-rooms/internal/game"
)

// Answers persists graded submissions. Answers are insert-only; there is no
// update path by design of the grading model.
type Answers struct {
	pool *pgxpool.Pool
}

// NewAnswers constructs an answer repository.
func NewAnswers(pool *pgxpool.Pool) *Answers {
	return &Answers{pool: pool}
}

// Create inserts one answer. The (question_id, player_id) unique constraint
// makes the duplicate check and the insert a single atomic step; a violation
// surfaces as storage.ErrConflict.
func (r *Answers) Create(ctx context.Context, a game.Answer) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO answers (answer_id, question_id, player_id, text, is_correct)
		 VALUES ($1, $2, $3, $4, $5)`,
		pgUUID(a.ID), pgUUID(a.QuestionID), pgUUID(a.PlayerID), a.Text, a.IsCorrect)
	if err != nil {
		return fmt.Errorf("insert answer: %w", mapError(err))
	}
	return nil
}

// GetByQuestionAndPlayer fetches the single answer for a (question, player)
// pair.
func (r *Answers) GetByQuestionAndPlayer(ctx context.Context, questionID, playerID uuid.UUID) (game.Answer, error) {
	var (
		a   game.Answer
		id  pgtype.UUID
		qID pgtype.UUID
		pID pgtype.UUID
	)
	err := r.pool.QueryRow(ctx,
		`SELECT answer_id, question_id, player_id, text, is_correct
		 FROM answers WHERE question_id = $1 AND player_id = $2`,
		pgUUID(questionID), pgUUID(playerID)).Scan(&id, &qID, &pID, &a.Text, &a.IsCorrect)
	if err != nil {
		return game.Answer{}, mapError(err)
	}
	a.ID = fromPG(id)
	a.QuestionID = fromPG(qID)
	a.PlayerID = fromPG(pID)
	return a, nil
}
