package room

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresmv/trivia-rooms/internal/session"
	"github.com/andresmv/trivia-rooms/internal/storage"
)

type memRoomStore struct {
	mu       sync.Mutex
	rooms    map[uuid.UUID]Room
	settings map[uuid.UUID]Settings
}

func newMemRoomStore() *memRoomStore {
	return &memRoomStore{
		rooms:    map[uuid.UUID]Room{},
		settings: map[uuid.UUID]Settings{},
	}
}

func (s *memRoomStore) CreateRoomWithSettings(_ context.Context, rm Room, st Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[rm.ID] = rm
	s.settings[st.ID] = st
	return nil
}

func (s *memRoomStore) GetRoom(_ context.Context, roomID uuid.UUID) (Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rm, ok := s.rooms[roomID]
	if !ok {
		return Room{}, storage.ErrNotFound
	}
	return rm, nil
}

func (s *memRoomStore) GetSettings(_ context.Context, settingsID uuid.UUID) (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.settings[settingsID]
	if !ok {
		return Settings{}, storage.ErrNotFound
	}
	return st, nil
}

func (s *memRoomStore) UpdateSettings(_ context.Context, st Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.settings[st.ID]; !ok {
		return storage.ErrNotFound
	}
	s.settings[st.ID] = st
	return nil
}

// memPlayerStore mirrors the repository's contract: Join holds a per-store
// critical section so host election observes a consistent count.
type memPlayerStore struct {
	mu      sync.Mutex
	players map[uuid.UUID]Player
}

func newMemPlayerStore() *memPlayerStore {
	return &memPlayerStore{players: map[uuid.UUID]Player{}}
}

func (s *memPlayerStore) Join(_ context.Context, p Player) (Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	empty := true
	for _, existing := range s.players {
		if existing.RoomID == p.RoomID {
			empty = false
			break
		}
	}
	p.IsHost = empty
	s.players[p.ID] = p
	return p, nil
}

func (s *memPlayerStore) List(_ context.Context, roomID uuid.UUID) ([]Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Player
	for _, p := range s.players {
		if p.RoomID == roomID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *memPlayerStore) Get(_ context.Context, playerID uuid.UUID) (Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[playerID]
	if !ok {
		return Player{}, storage.ErrNotFound
	}
	return p, nil
}

func (s *memPlayerStore) AssignTeam(_ context.Context, playerID, teamID uuid.UUID, maxPerTeam int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[playerID]
	if !ok {
		return storage.ErrNotFound
	}
	count := 0
	for _, other := range s.players {
		if other.ID != playerID && other.TeamID != nil && *other.TeamID == teamID {
			count++
		}
	}
	if count >= maxPerTeam {
		return storage.ErrConflict
	}
	p.TeamID = &teamID
	s.players[playerID] = p
	return nil
}

type memTeamStore struct {
	teams map[uuid.UUID]Team
}

func newMemTeamStore() *memTeamStore {
	return &memTeamStore{teams: map[uuid.UUID]Team{}}
}

func (s *memTeamStore) Create(_ context.Context, t Team) error {
	s.teams[t.ID] = t
	return nil
}

func (s *memTeamStore) List(_ context.Context, roomID uuid.UUID) ([]Team, error) {
	var out []Team
	for _, t := range s.teams {
		if t.RoomID == roomID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *memTeamStore) Get(_ context.Context, teamID uuid.UUID) (Team, error) {
	t, ok := s.teams[teamID]
	if !ok {
		return Team{}, storage.ErrNotFound
	}
	return t, nil
}

type memBinder struct {
	mu       sync.Mutex
	bindings map[uuid.UUID]session.Binding
}

func newMemBinder() *memBinder {
	return &memBinder{bindings: map[uuid.UUID]session.Binding{}}
}

func (b *memBinder) Bind(_ context.Context, roomID uuid.UUID, binding session.Binding) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.bindings[roomID] = binding
	return nil
}

type stubResolver struct {
	binding *session.Binding
}

func (s *stubResolver) Resolve(_ context.Context, _ uuid.UUID) (*session.Binding, error) {
	return s.binding, nil
}

func testDefaults() Settings {
	return Settings{
		RoundCount:        10,
		SecondsPerRound:   60,
		QuestionsPerRound: 5,
		Difficulty:        DifficultyEasy,
		MaxPlayersPerTeam: 5,
	}
}

type fixture struct {
	svc      *Service
	rooms    *memRoomStore
	players  *memPlayerStore
	teams    *memTeamStore
	binder   *memBinder
	resolver *stubResolver
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		rooms:    newMemRoomStore(),
		players:  newMemPlayerStore(),
		teams:    newMemTeamStore(),
		binder:   newMemBinder(),
		resolver: &stubResolver{},
	}
	f.svc = NewService(f.rooms, f.players, f.teams, f.binder, session.NewGuard(f.resolver), testDefaults(), zerolog.Nop())
	return f
}

func TestCreateRoomUsesDefaults(t *testing.T) {
	f := newFixture(t)

	rm, err := f.svc.CreateRoom(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, rm.ID)

	settings, err := f.svc.Settings(context.Background(), rm.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, settings.RoundCount)
	assert.Equal(t, 60, settings.SecondsPerRound)
	assert.Equal(t, 5, settings.QuestionsPerRound)
	assert.Equal(t, DifficultyEasy, settings.Difficulty)
	assert.Equal(t, 5, settings.MaxPlayersPerTeam)
	assert.Equal(t, rm.SettingsID, settings.ID)
}

func TestJoinFirstPlayerBecomesHost(t *testing.T) {
	f := newFixture(t)
	rm, err := f.svc.CreateRoom(context.Background())
	require.NoError(t, err)

	first, err := f.svc.Join(context.Background(), rm.ID, "alice")
	require.NoError(t, err)
	assert.True(t, first.IsHost)

	second, err := f.svc.Join(context.Background(), rm.ID, "bob")
	require.NoError(t, err)
	assert.False(t, second.IsHost)

	// The binding follows the latest join on this session.
	binding := f.binder.bindings[rm.ID]
	assert.Equal(t, second.ID, binding.PlayerID)
	assert.False(t, binding.IsHost)
}

func TestJoinValidatesUsername(t *testing.T) {
	f := newFixture(t)
	rm, err := f.svc.CreateRoom(context.Background())
	require.NoError(t, err)

	_, err = f.svc.Join(context.Background(), rm.ID, "")
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "username", vErr.Field)
}

func TestJoinUnknownRoom(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Join(context.Background(), uuid.New(), "alice")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestJoinConcurrentElectsSingleHost(t *testing.T) {
	f := newFixture(t)
	rm, err := f.svc.CreateRoom(context.Background())
	require.NoError(t, err)

	const joiners = 20
	results := make([]Player, joiners)
	errs := make([]error, joiners)
	var wg sync.WaitGroup
	for i := 0; i < joiners; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = f.svc.Join(context.Background(), rm.ID, "player")
		}(i)
	}
	wg.Wait()

	hosts := 0
	for i, p := range results {
		require.NoError(t, errs[i])
		if p.IsHost {
			hosts++
		}
	}
	assert.Equal(t, 1, hosts, "exactly one host per room")
}

func TestSettingsValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Settings)
		field  string
	}{
		{"zero rounds", func(s *Settings) { s.RoundCount = 0 }, "round_count"},
		{"negative seconds", func(s *Settings) { s.SecondsPerRound = -1 }, "seconds_per_round"},
		{"negative questions", func(s *Settings) { s.QuestionsPerRound = -1 }, "questions_per_round"},
		{"bad difficulty", func(s *Settings) { s.Difficulty = "brutal" }, "difficulty"},
		{"zero team cap", func(s *Settings) { s.MaxPlayersPerTeam = 0 }, "max_players_per_team"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st := testDefaults()
			tc.mutate(&st)
			err := st.Validate()
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tc.field, vErr.Field)
		})
	}

	assert.NoError(t, testDefaults().Validate())
}

func TestUpdateSettingsHostOnly(t *testing.T) {
	f := newFixture(t)
	rm, err := f.svc.CreateRoom(context.Background())
	require.NoError(t, err)
	host, err := f.svc.Join(context.Background(), rm.ID, "alice")
	require.NoError(t, err)

	updated := testDefaults()
	updated.RoundCount = 7

	f.resolver.binding = &session.Binding{PlayerID: uuid.New(), RoomID: rm.ID}
	_, err = f.svc.UpdateSettings(context.Background(), rm.ID, updated)
	assert.ErrorIs(t, err, session.ErrNotHost)

	f.resolver.binding = &session.Binding{PlayerID: host.ID, RoomID: rm.ID, IsHost: true}
	got, err := f.svc.UpdateSettings(context.Background(), rm.ID, updated)
	require.NoError(t, err)
	assert.Equal(t, 7, got.RoundCount)
	assert.Equal(t, rm.SettingsID, got.ID)

	settings, err := f.svc.Settings(context.Background(), rm.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, settings.RoundCount)
}

func TestUpdateSettingsRejectsInvalid(t *testing.T) {
	f := newFixture(t)
	rm, err := f.svc.CreateRoom(context.Background())
	require.NoError(t, err)
	host, err := f.svc.Join(context.Background(), rm.ID, "alice")
	require.NoError(t, err)
	f.resolver.binding = &session.Binding{PlayerID: host.ID, RoomID: rm.ID, IsHost: true}

	updated := testDefaults()
	updated.Difficulty = "impossible"
	_, err = f.svc.UpdateSettings(context.Background(), rm.ID, updated)
	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestCreateTeamRequiresBinding(t *testing.T) {
	f := newFixture(t)
	rm, err := f.svc.CreateRoom(context.Background())
	require.NoError(t, err)

	_, err = f.svc.CreateTeam(context.Background(), rm.ID, "reds")
	assert.ErrorIs(t, err, session.ErrNoIdentity)

	player, err := f.svc.Join(context.Background(), rm.ID, "alice")
	require.NoError(t, err)
	f.resolver.binding = &session.Binding{PlayerID: player.ID, RoomID: rm.ID, IsHost: true}

	team, err := f.svc.CreateTeam(context.Background(), rm.ID, "reds")
	require.NoError(t, err)
	assert.Equal(t, rm.ID, team.RoomID)
	assert.Equal(t, "reds", team.Name)
}

func TestAssignTeamSubjectOnly(t *testing.T) {
	f := newFixture(t)
	rm, err := f.svc.CreateRoom(context.Background())
	require.NoError(t, err)
	alice, err := f.svc.Join(context.Background(), rm.ID, "alice")
	require.NoError(t, err)
	bob, err := f.svc.Join(context.Background(), rm.ID, "bob")
	require.NoError(t, err)

	f.resolver.binding = &session.Binding{PlayerID: alice.ID, RoomID: rm.ID, IsHost: true}
	team, err := f.svc.CreateTeam(context.Background(), rm.ID, "reds")
	require.NoError(t, err)

	// Alice cannot move Bob.
	err = f.svc.AssignTeam(context.Background(), rm.ID, bob.ID, team.ID)
	assert.ErrorIs(t, err, session.ErrNotSubject)

	err = f.svc.AssignTeam(context.Background(), rm.ID, alice.ID, team.ID)
	require.NoError(t, err)

	got, err := f.players.Get(context.Background(), alice.ID)
	require.NoError(t, err)
	require.NotNil(t, got.TeamID)
	assert.Equal(t, team.ID, *got.TeamID)
}

func TestAssignTeamForeignTeamIsNotFound(t *testing.T) {
	f := newFixture(t)
	rm, err := f.svc.CreateRoom(context.Background())
	require.NoError(t, err)
	other, err := f.svc.CreateRoom(context.Background())
	require.NoError(t, err)

	alice, err := f.svc.Join(context.Background(), rm.ID, "alice")
	require.NoError(t, err)
	f.resolver.binding = &session.Binding{PlayerID: alice.ID, RoomID: rm.ID, IsHost: true}

	foreign := Team{ID: uuid.New(), RoomID: other.ID, Name: "blues"}
	require.NoError(t, f.teams.Create(context.Background(), foreign))

	err = f.svc.AssignTeam(context.Background(), rm.ID, alice.ID, foreign.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestAssignTeamEnforcesCapacity(t *testing.T) {
	f := newFixture(t)
	rm, err := f.svc.CreateRoom(context.Background())
	require.NoError(t, err)

	host, err := f.svc.Join(context.Background(), rm.ID, "host")
	require.NoError(t, err)
	f.resolver.binding = &session.Binding{PlayerID: host.ID, RoomID: rm.ID, IsHost: true}
	team, err := f.svc.CreateTeam(context.Background(), rm.ID, "reds")
	require.NoError(t, err)

	updated := testDefaults()
	updated.MaxPlayersPerTeam = 2
	_, err = f.svc.UpdateSettings(context.Background(), rm.ID, updated)
	require.NoError(t, err)

	join := func(name string) Player {
		p, err := f.svc.Join(context.Background(), rm.ID, name)
		require.NoError(t, err)
		return p
	}
	assign := func(p Player) error {
		f.resolver.binding = &session.Binding{PlayerID: p.ID, RoomID: rm.ID}
		return f.svc.AssignTeam(context.Background(), rm.ID, p.ID, team.ID)
	}

	require.NoError(t, assign(join("p1")))
	require.NoError(t, assign(join("p2")))
	assert.ErrorIs(t, assign(join("p3")), storage.ErrConflict)
}
