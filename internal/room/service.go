package room

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/andresmv/trivia-rooms/internal/metrics"
	"github.com/andresmv/trivia-rooms/internal/session"
	"github.com/andresmv/trivia-rooms/internal/storage"
)

type roomStore interface {
	CreateRoomWithSettings(ctx context.Context, rm Room, st Settings) error
	GetRoom(ctx context.Context, roomID uuid.UUID) (Room, error)
	GetSettings(ctx context.Context, settingsID uuid.UUID) (Settings, error)
	UpdateSettings(ctx context.Context, st Settings) error
}

type playerStore interface {
	// Join inserts the player and elects the host atomically: the player
	// becomes host exactly when the room held no players at insert time.
	Join(ctx context.Context, p Player) (Player, error)
	List(ctx context.Context, roomID uuid.UUID) ([]Player, error)
	Get(ctx context.Context, playerID uuid.UUID) (Player, error)
	AssignTeam(ctx context.Context, playerID, teamID uuid.UUID, maxPerTeam int) error
}

type teamStore interface {
	Create(ctx context.Context, t Team) error
	List(ctx context.Context, roomID uuid.UUID) ([]Team, error)
	Get(ctx context.Context, teamID uuid.UUID) (Team, error)
}

type identityBinder interface {
	Bind(ctx context.Context, roomID uuid.UUID, binding session.Binding) error
}

// Service implements room lifecycle: creation, joining with host election,
// settings management, and team assignment.
type Service struct {
	rooms    roomStore
	players  playerStore
	teams    teamStore
	binder   identityBinder
	guard    *session.Guard
	defaults Settings
	logger   zerolog.Logger
}

// NewService wires the room service.
func NewService(rooms roomStore, players playerStore, teams teamStore, binder identityBinder, guard *session.Guard, defaults Settings, logger zerolog.Logger) *Service {
	return &Service{
		rooms:    rooms,
		players:  players,
		teams:    teams,
		binder:   binder,
		guard:    guard,
		defaults: defaults,
		logger:   logger.With().Str("component", "room_service").Logger(),
	}
}

// CreateRoom creates a room together with its default settings.
func (s *Service) CreateRoom(ctx context.Context) (Room, error) {
	settings := s.defaults
	settings.ID = uuid.New()
	if err := settings.Validate(); err != nil {
		return Room{}, fmt.Errorf("default settings: %w", err)
	}

	rm := Room{
		ID:         uuid.New(),
		CreatedAt:  time.Now().UTC(),
		SettingsID: settings.ID,
	}
	if err := s.rooms.CreateRoomWithSettings(ctx, rm, settings); err != nil {
		return Room{}, fmt.Errorf("create room: %w", err)
	}

	metrics.RoomsCreated.Inc()
	s.logger.Info().Str("room_id", rm.ID.String()).Msg("room created")
	return rm, nil
}

// GetRoom fetches one room.
func (s *Service) GetRoom(ctx context.Context, roomID uuid.UUID) (Room, error) {
	return s.rooms.GetRoom(ctx, roomID)
}

// Join adds a player to the room and binds the calling session to it. The
// first joiner of an empty room becomes host; the election happens inside
// the player store's per-room critical section.
func (s *Service) Join(ctx context.Context, roomID uuid.UUID, username string) (Player, error) {
	if username == "" {
		return Player{}, &ValidationError{Field: "username", Message: "username is required"}
	}

	if _, err := s.rooms.GetRoom(ctx, roomID); err != nil {
		return Player{}, err
	}

	player := Player{
		ID:       uuid.New(),
		RoomID:   roomID,
		Username: username,
	}
	player, err := s.players.Join(ctx, player)
	if err != nil {
		return Player{}, fmt.Errorf("join room: %w", err)
	}

	if err := s.binder.Bind(ctx, roomID, session.Binding{
		PlayerID: player.ID,
		RoomID:   roomID,
		Username: player.Username,
		IsHost:   player.IsHost,
	}); err != nil {
		return Player{}, fmt.Errorf("bind identity: %w", err)
	}

	metrics.PlayersJoined.Inc()
	s.logger.Info().
		Str("room_id", roomID.String()).
		Str("player_id", player.ID.String()).
		Bool("is_host", player.IsHost).
		Msg("player joined")
	return player, nil
}

// Players lists the room's players.
func (s *Service) Players(ctx context.Context, roomID uuid.UUID) ([]Player, error) {
	if _, err := s.rooms.GetRoom(ctx, roomID); err != nil {
		return nil, err
	}
	return s.players.List(ctx, roomID)
}

// Settings returns the room's current settings.
func (s *Service) Settings(ctx context.Context, roomID uuid.UUID) (Settings, error) {
	rm, err := s.rooms.GetRoom(ctx, roomID)
	if err != nil {
		return Settings{}, err
	}
	return s.rooms.GetSettings(ctx, rm.SettingsID)
}

// UpdateSettings replaces the room's settings. Host only. Games generated
// before the update keep the values frozen on their game record, so editing
// settings never rewrites an existing schedule.
func (s *Service) UpdateSettings(ctx context.Context, roomID uuid.UUID, updated Settings) (Settings, error) {
	rm, err := s.rooms.GetRoom(ctx, roomID)
	if err != nil {
		return Settings{}, err
	}
	if _, err := s.guard.HostOnly(ctx, roomID); err != nil {
		return Settings{}, err
	}
	if err := updated.Validate(); err != nil {
		return Settings{}, err
	}

	updated.ID = rm.SettingsID
	if err := s.rooms.UpdateSettings(ctx, updated); err != nil {
		return Settings{}, fmt.Errorf("update settings: %w", err)
	}
	return updated, nil
}

// CreateTeam adds a team to the room. Requires a bound identity.
func (s *Service) CreateTeam(ctx context.Context, roomID uuid.UUID, name string) (Team, error) {
	if name == "" {
		return Team{}, &ValidationError{Field: "name", Message: "name is required"}
	}
	if _, err := s.rooms.GetRoom(ctx, roomID); err != nil {
		return Team{}, err
	}
	if _, err := s.guard.RequireBound(ctx, roomID); err != nil {
		return Team{}, err
	}

	team := Team{ID: uuid.New(), RoomID: roomID, Name: name}
	if err := s.teams.Create(ctx, team); err != nil {
		return Team{}, fmt.Errorf("create team: %w", err)
	}
	return team, nil
}

// Teams lists the room's teams.
func (s *Service) Teams(ctx context.Context, roomID uuid.UUID) ([]Team, error) {
	if _, err := s.rooms.GetRoom(ctx, roomID); err != nil {
		return nil, err
	}
	return s.teams.List(ctx, roomID)
}

// AssignTeam places a player on a team, respecting max_players_per_team.
// Only the subject player may move themselves.
func (s *Service) AssignTeam(ctx context.Context, roomID, playerID, teamID uuid.UUID) error {
	rm, err := s.rooms.GetRoom(ctx, roomID)
	if err != nil {
		return err
	}
	if _, err := s.guard.SubjectOnly(ctx, roomID, playerID); err != nil {
		return err
	}

	team, err := s.teams.Get(ctx, teamID)
	if err != nil {
		return err
	}
	if team.RoomID != roomID {
		// A team from another room does not exist from this room's view.
		return fmt.Errorf("team %s: %w", teamID, storage.ErrNotFound)
	}

	settings, err := s.rooms.GetSettings(ctx, rm.SettingsID)
	if err != nil {
		return err
	}
	return s.players.AssignTeam(ctx, playerID, teamID, settings.MaxPlayersPerTeam)
}
