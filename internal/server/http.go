package server

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/andresmv/trivia-rooms/internal/config"
	"github.com/andresmv/trivia-rooms/internal/game"
	"github.com/andresmv/trivia-rooms/internal/logging"
	"github.com/andresmv/trivia-rooms/internal/room"
	"github.com/andresmv/trivia-rooms/internal/session"
)

// NewHTTPServer wires all routes: rooms, games, health, and metrics. Every
// room/game route runs behind the session middleware so guards can resolve
// the caller's binding.
func NewHTTPServer(
	cfg *config.App,
	logger zerolog.Logger,
	pool *pgxpool.Pool,
	redisClient *redis.Client,
	tokens *session.TokenManager,
	roomHandlers *room.HTTPHandlers,
	gameHandlers *game.HTTPHandlers,
) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /v1/ping", func(w http.ResponseWriter, r *http.Request) {
		ctx := logging.IntoContext(r.Context(), logger)
		if err := pingDependencies(ctx, pool, redisClient); err != nil {
			logger.Error().Err(err).Msg("dependency ping failed")
			http.Error(w, "upstream error", http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"pong":true}`))
	})

	// Room endpoints
	mux.HandleFunc("POST /rooms", roomHandlers.CreateRoom)
	mux.HandleFunc("GET /rooms/{roomID}", roomHandlers.GetRoom)
	mux.HandleFunc("POST /rooms/{roomID}/players", roomHandlers.Join)
	mux.HandleFunc("GET /rooms/{roomID}/players", roomHandlers.ListPlayers)
	mux.HandleFunc("PUT /rooms/{roomID}/players/{playerID}/team", roomHandlers.AssignTeam)
	mux.HandleFunc("GET /rooms/{roomID}/settings", roomHandlers.GetSettings)
	mux.HandleFunc("PUT /rooms/{roomID}/settings", roomHandlers.UpdateSettings)
	mux.HandleFunc("POST /rooms/{roomID}/teams", roomHandlers.CreateTeam)
	mux.HandleFunc("GET /rooms/{roomID}/teams", roomHandlers.ListTeams)

	// Game endpoints
	mux.HandleFunc("POST /games", gameHandlers.CreateGame)
	mux.HandleFunc("GET /games/{gameID}", gameHandlers.GetGame)
	mux.HandleFunc("DELETE /games/{gameID}", gameHandlers.DeleteGame)
	mux.HandleFunc("GET /games/{gameID}/rounds", gameHandlers.ListRounds)
	mux.HandleFunc("GET /games/{gameID}/rounds/{roundID}/questions", gameHandlers.ListQuestions)
	mux.HandleFunc("POST /games/{gameID}/rounds/{roundID}/questions", gameHandlers.AddQuestion)
	mux.HandleFunc("POST /games/{gameID}/rounds/{roundID}/questions/{questionID}/players/{playerID}", gameHandlers.SubmitAnswer)
	mux.HandleFunc("GET /games/{gameID}/rounds/{roundID}/questions/{questionID}/players/{playerID}", gameHandlers.GetAnswer)

	sessionMW := session.Middleware(tokens, cfg.Session.CookieName, logger)
	handler := corsMiddleware(cfg.CORS)(sessionMW(mux))

	return &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: handler,
	}
}

func pingDependencies(ctx context.Context, pool *pgxpool.Pool, redisClient *redis.Client) error {
	if err := pool.Ping(ctx); err != nil {
		return err
	}
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return err
	}
	return nil
}

func corsMiddleware(cfg config.CORS) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(cfg.AllowedOrigins))
	for _, origin := range cfg.AllowedOrigins {
		allowed[origin] = true
	}
	methods := strings.Join(cfg.AllowedMethods, ", ")
	headers := strings.Join(cfg.AllowedHeaders, ", ")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && allowed[origin] {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Vary", "Origin")
				if cfg.AllowCredentials {
					w.Header().Set("Access-Control-Allow-Credentials", "true")
				}
			}
			if r.Method == http.MethodOptions {
				w.Header().Set("Access-Control-Allow-Methods", methods)
				w.Header().Set("Access-Control-Allow-Headers", headers)
				w.Header().Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
