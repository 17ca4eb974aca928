package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/andresmv/trivia-rooms/internal/config"
	"github.com/andresmv/trivia-rooms/internal/db/repository"
	"github.com/andresmv/trivia-rooms/internal/game"
	"github.com/andresmv/trivia-rooms/internal/logging"
	"github.com/andresmv/trivia-rooms/internal/room"
	"github.com/andresmv/trivia-rooms/internal/server"
	"github.com/andresmv/trivia-rooms/internal/session"
)

// Application aggregates shared infrastructure (DB, Redis, HTTP server).
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	pool  *pgxpool.Pool
	redis *redis.Client
	http  *http.Server
}

// New bootstraps config, logger, Postgres, Redis and the HTTP server.
func New(ctx context.Context, cfg *config.App) (*Application, error) {
	logger := logging.New(cfg.Name, cfg.Env)
	logger.Info().Msg("starting application bootstrap")

	connString := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s pool_max_conns=10",
		cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.User, cfg.Postgres.Password, cfg.Postgres.Database, cfg.Postgres.SSLMode)

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})

	if cfg.Session.Secret == "" {
		return nil, fmt.Errorf("SESSION_SECRET must be configured")
	}

	tokens := session.NewTokenManager(session.TokenConfig{
		Secret: []byte(cfg.Session.Secret),
		TTL:    cfg.Session.TTL,
		Issuer: cfg.Name,
	})
	binder := session.NewBinder(redisClient, cfg.Session.TTL, logging.Component(logger, "binder"))
	guard := session.NewGuard(binder)

	rooms := repository.NewRooms(pool)
	players := repository.NewPlayers(pool)
	teams := repository.NewTeams(pool)
	games := repository.NewGames(pool)
	questions := repository.NewQuestions(pool)
	answers := repository.NewAnswers(pool)

	defaults := room.Settings{
		RoundCount:        cfg.Defaults.RoundCount,
		SecondsPerRound:   cfg.Defaults.SecondsPerRound,
		QuestionsPerRound: cfg.Defaults.QuestionsPerRound,
		Difficulty:        cfg.Defaults.Difficulty,
		MaxPlayersPerTeam: cfg.Defaults.MaxPlayersPerTeam,
	}

	roomSvc := room.NewService(rooms, players, teams, binder, guard, defaults, logger)
	questionCache := game.NewQuestionCache(redisClient, 0)
	gameSvc := game.NewService(games, questions, answers, rooms, guard, questionCache, logger)

	roomHandlers := room.NewHTTPHandlers(roomSvc, logger)
	gameHandlers := game.NewHTTPHandlers(gameSvc, logger)

	apiServer := server.NewHTTPServer(cfg, logger, pool, redisClient, tokens, roomHandlers, gameHandlers)

	return &Application{
		cfg:    cfg,
		logger: logger,
		pool:   pool,
		redis:  redisClient,
		http:   apiServer,
	}, nil
}

// Run starts the HTTP server and waits for termination signals.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")
		if err := a.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		a.logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		a.logger.Warn().Msg("context canceled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GracefulShutdownTimeout)
	defer cancel()

	if err := a.http.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("http shutdown error")
	}

	a.pool.Close()
	if err := a.redis.Close(); err != nil {
		a.logger.Error().Err(err).Msg("redis shutdown error")
	}

	a.logger.Info().Msg("shutdown complete")
	return nil
}
