package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/andresmv/trivia-rooms/internal/game"
)

// Questions persists question content. Questions reference their round but
// are not owned by it; dropping a round detaches them instead of deleting.
type Questions struct {
	pool *pgxpool.Pool
}

// NewQuestions constructs a question repository.
func NewQuestions(pool *pgxpool.Pool) *Questions {
	return &Questions{pool: pool}
}

// Create inserts a question assigned to a round.
func (r *Questions) Create(ctx context.Context, q game.Question) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO questions (question_id, round_id, type, text, correct_answers, media_url)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		pgUUID(q.ID), pgUUID(q.RoundID), q.Type, q.Text, q.CorrectAnswers, q.MediaURL)
	return mapError(err)
}

// ListByRound returns all questions assigned to a round, including the
// accepted answers; stripping for exposure is the service's job.
func (r *Questions) ListByRound(ctx context.Context, roundID uuid.UUID) ([]game.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT question_id, round_id, type, text, correct_answers, media_url
		 FROM questions WHERE round_id = $1`,
		pgUUID(roundID))
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var questions []game.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// Get fetches a question by primary key.
func (r *Questions) Get(ctx context.Context, questionID uuid.UUID) (game.Question, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT question_id, round_id, type, text, correct_answers, media_url
		 FROM questions WHERE question_id = $1`,
		pgUUID(questionID))
	q, err := scanQuestion(row)
	if err != nil {
		return game.Question{}, mapError(err)
	}
	return q, nil
}

func scanQuestion(row pgx.Row) (game.Question, error) {
	var (
		q       game.Question
		id      pgtype.UUID
		roundID pgtype.UUID
	)
	if err := row.Scan(&id, &roundID, &q.Type, &q.Text, &q.CorrectAnswers, &q.MediaURL); err != nil {
		return game.Question{}, err
	}
	q.ID = fromPG(id)
	q.RoundID = fromPG(roundID)
	return q, nil
}
