package game

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/andresmv/trivia-rooms/internal/metrics"
	"github.com/andresmv/trivia-rooms/internal/room"
	"github.com/andresmv/trivia-rooms/internal/session"
	"github.com/andresmv/trivia-rooms/internal/storage"
)

type gameStore interface {
	// CreateGameWithRounds commits the game and its full round set as one
	// transaction; a partial schedule is never observable.
	CreateGameWithRounds(ctx context.Context, g Game, rounds []Round) error
	Get(ctx context.Context, gameID uuid.UUID) (Game, error)
	Delete(ctx context.Context, gameID uuid.UUID) error
	ListRounds(ctx context.Context, gameID uuid.UUID) ([]Round, error)
	GetRound(ctx context.Context, roundID uuid.UUID) (Round, error)
}

type questionStore interface {
	Create(ctx context.Context, q Question) error
	ListByRound(ctx context.Context, roundID uuid.UUID) ([]Question, error)
	Get(ctx context.Context, questionID uuid.UUID) (Question, error)
}

type answerStore interface {
	// Create fails with storage.ErrConflict when an answer already exists
	// for the (question, player) pair.
	Create(ctx context.Context, a Answer) error
	GetByQuestionAndPlayer(ctx context.Context, questionID, playerID uuid.UUID) (Answer, error)
}

type roomInfo interface {
	GetRoom(ctx context.Context, roomID uuid.UUID) (room.Room, error)
	GetSettings(ctx context.Context, settingsID uuid.UUID) (room.Settings, error)
}

type questionCache interface {
	Get(ctx context.Context, roundID uuid.UUID) ([]Question, error)
	Set(ctx context.Context, roundID uuid.UUID, questions []Question) error
	Invalidate(ctx context.Context, roundID uuid.UUID) error
}

// Service runs the game-session lifecycle: scheduling, the round clock, the
// question visibility gate, and answer grading.
type Service struct {
	games     gameStore
	questions questionStore
	answers   answerStore
	rooms     roomInfo
	guard     *session.Guard
	cache     questionCache
	logger    zerolog.Logger
	now       func() time.Time
}

// NewService wires the game service. cache may be nil.
func NewService(games gameStore, questions questionStore, answers answerStore, rooms roomInfo, guard *session.Guard, cache questionCache, logger zerolog.Logger) *Service {
	return &Service{
		games:     games,
		questions: questions,
		answers:   answers,
		rooms:     rooms,
		guard:     guard,
		cache:     cache,
		logger:    logger.With().Str("component", "game_service").Logger(),
		now:       time.Now,
	}
}

// CreateGame generates a game plus its contiguous round schedule from the
// room's current settings. Host only. The round windows partition
// [createdAt, endedAt) without gaps or overlap.
func (s *Service) CreateGame(ctx context.Context, roomID uuid.UUID) (Game, []Round, error) {
	rm, err := s.rooms.GetRoom(ctx, roomID)
	if err != nil {
		return Game{}, nil, err
	}
	if _, err := s.guard.HostOnly(ctx, roomID); err != nil {
		return Game{}, nil, err
	}
	settings, err := s.rooms.GetSettings(ctx, rm.SettingsID)
	if err != nil {
		// The settings reference is mandatory; a dangling one is a data
		// problem with the room, not a missing game resource.
		if errors.Is(err, storage.ErrNotFound) {
			return Game{}, nil, &ValidationError{Field: "settings", Message: "room settings are missing"}
		}
		return Game{}, nil, fmt.Errorf("room settings: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return Game{}, nil, &ValidationError{Field: "settings", Message: err.Error()}
	}

	createdAt := s.now().UTC()
	perRound := time.Duration(settings.SecondsPerRound) * time.Second

	g := Game{
		ID:              uuid.New(),
		RoomID:          roomID,
		CreatedAt:       createdAt,
		EndedAt:         createdAt.Add(time.Duration(settings.RoundCount) * perRound),
		SettingsID:      settings.ID,
		RoundCount:      settings.RoundCount,
		SecondsPerRound: settings.SecondsPerRound,
	}

	rounds := make([]Round, 0, settings.RoundCount)
	for n := 1; n <= settings.RoundCount; n++ {
		start := createdAt.Add(time.Duration(n-1) * perRound)
		rounds = append(rounds, Round{
			ID:          uuid.New(),
			GameID:      g.ID,
			RoundNumber: n,
			CreatedAt:   start,
			EndedAt:     start.Add(perRound),
		})
	}

	if err := s.games.CreateGameWithRounds(ctx, g, rounds); err != nil {
		return Game{}, nil, fmt.Errorf("create game: %w", err)
	}

	metrics.GamesCreated.Inc()
	s.logger.Info().
		Str("game_id", g.ID.String()).
		Str("room_id", roomID.String()).
		Int("rounds", len(rounds)).
		Msg("game created")
	return g, rounds, nil
}

// GetGame fetches one game.
func (s *Service) GetGame(ctx context.Context, gameID uuid.UUID) (Game, error) {
	return s.games.Get(ctx, gameID)
}

// DeleteGame removes a game and, by cascade, its rounds. Host only.
func (s *Service) DeleteGame(ctx context.Context, gameID uuid.UUID) error {
	g, err := s.games.Get(ctx, gameID)
	if err != nil {
		return err
	}
	if _, err := s.guard.HostOnly(ctx, g.RoomID); err != nil {
		return err
	}
	return s.games.Delete(ctx, gameID)
}

// Rounds lists the game's rounds.
func (s *Service) Rounds(ctx context.Context, gameID uuid.UUID) ([]Round, error) {
	if _, err := s.games.Get(ctx, gameID); err != nil {
		return nil, err
	}
	return s.games.ListRounds(ctx, gameID)
}

// AddQuestion assigns a question to a round before it opens. Host only.
func (s *Service) AddQuestion(ctx context.Context, gameID, roundID uuid.UUID, q Question) (Question, error) {
	g, err := s.games.Get(ctx, gameID)
	if err != nil {
		return Question{}, err
	}
	rnd, err := s.games.GetRound(ctx, roundID)
	if err != nil {
		return Question{}, err
	}
	if _, err := s.guard.HostOnly(ctx, g.RoomID); err != nil {
		return Question{}, err
	}
	if q.Text == "" {
		return Question{}, &ValidationError{Field: "text", Message: "text is required"}
	}
	if len(q.CorrectAnswers) == 0 {
		return Question{}, &ValidationError{Field: "correct_answers", Message: "at least one accepted answer is required"}
	}
	if RoundPhase(rnd, s.now()) != PhaseNotStarted {
		return Question{}, &InvalidStateError{Code: "round_already_started", Message: "round already started"}
	}

	q.ID = uuid.New()
	q.RoundID = roundID
	if err := s.questions.Create(ctx, q); err != nil {
		return Question{}, fmt.Errorf("create question: %w", err)
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, roundID); err != nil {
			s.logger.Warn().Err(err).Str("round_id", roundID.String()).Msg("question cache invalidation failed")
		}
	}
	return q, nil
}

// Questions lists a round's questions with correct answers stripped. The
// answer set stays stripped even after the round ends; graded answers are
// the only path that discloses correctness.
func (s *Service) Questions(ctx context.Context, gameID, roundID uuid.UUID) ([]Question, error) {
	if _, err := s.games.Get(ctx, gameID); err != nil {
		return nil, err
	}
	rnd, err := s.games.GetRound(ctx, roundID)
	if err != nil {
		return nil, err
	}
	if RoundPhase(rnd, s.now()) == PhaseNotStarted {
		return nil, &InvalidStateError{Code: "round_not_started", Message: "round not started"}
	}

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, roundID)
		if err != nil {
			s.logger.Warn().Err(err).Str("round_id", roundID.String()).Msg("question cache read failed")
		} else if cached != nil {
			return cached, nil
		}
	}

	questions, err := s.questions.ListByRound(ctx, roundID)
	if err != nil {
		return nil, err
	}
	stripped := make([]Question, 0, len(questions))
	for _, q := range questions {
		q.CorrectAnswers = nil
		stripped = append(stripped, q)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, roundID, stripped); err != nil {
			s.logger.Warn().Err(err).Str("round_id", roundID.String()).Msg("question cache write failed")
		}
	}
	return stripped, nil
}

// SubmitAnswer grades and persists one answer inside the round's active
// window. Graded at creation; correctness is not echoed back here.
func (s *Service) SubmitAnswer(ctx context.Context, gameID, roundID, questionID, playerID uuid.UUID, text string) error {
	g, err := s.games.Get(ctx, gameID)
	if err != nil {
		return err
	}
	rnd, err := s.games.GetRound(ctx, roundID)
	if err != nil {
		return err
	}
	q, err := s.questions.Get(ctx, questionID)
	if err != nil {
		return err
	}
	if RoundPhase(rnd, s.now()) != PhaseActive {
		return &InvalidStateError{Code: "round_not_active", Message: "round not active"}
	}
	if _, err := s.guard.SubjectOnly(ctx, g.RoomID, playerID); err != nil {
		return err
	}

	answer := Answer{
		ID:         uuid.New(),
		QuestionID: questionID,
		PlayerID:   playerID,
		Text:       text,
		IsCorrect:  grade(text, q.CorrectAnswers),
	}
	if err := s.answers.Create(ctx, answer); err != nil {
		return err
	}

	metrics.AnswersSubmitted.Inc()
	if answer.IsCorrect {
		metrics.AnswersCorrect.Inc()
	}
	return nil
}

// GetAnswer returns a graded answer once the round has ended. Any player
// bound to the game's room may read it, not only the subject.
func (s *Service) GetAnswer(ctx context.Context, gameID, roundID, questionID, playerID uuid.UUID) (Answer, error) {
	g, err := s.games.Get(ctx, gameID)
	if err != nil {
		return Answer{}, err
	}
	rnd, err := s.games.GetRound(ctx, roundID)
	if err != nil {
		return Answer{}, err
	}
	if _, err := s.questions.Get(ctx, questionID); err != nil {
		return Answer{}, err
	}
	answer, err := s.answers.GetByQuestionAndPlayer(ctx, questionID, playerID)
	if err != nil {
		return Answer{}, err
	}
	if RoundPhase(rnd, s.now()) != PhaseEnded {
		return Answer{}, &InvalidStateError{Code: "round_not_ended", Message: "round not ended"}
	}
	if _, err := s.guard.RequireBound(ctx, g.RoomID); err != nil {
		return Answer{}, err
	}
	return answer, nil
}

// grade compares case-insensitively against the accepted answers. Exact
// match after case folding: no trimming, no partial credit.
func grade(text string, accepted []string) bool {
	for _, candidate := range accepted {
		if strings.EqualFold(text, candidate) {
			return true
		}
	}
	return false
}
