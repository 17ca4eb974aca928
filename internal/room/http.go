package room

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/andresmv/trivia-rooms/internal/session"
	"github.com/andresmv/trivia-rooms/internal/storage"
	httperrors "github.com/andresmv/trivia-rooms/pkg/http/errors"
)

// HTTPHandlers provides REST endpoints for room operations.
type HTTPHandlers struct {
	service *Service
	logger  zerolog.Logger
}

// NewHTTPHandlers creates HTTP handlers for room endpoints.
func NewHTTPHandlers(service *Service, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{
		service: service,
		logger:  logger.With().Str("component", "room_http").Logger(),
	}
}

// CreateRoom handles POST /rooms
func (h *HTTPHandlers) CreateRoom(w http.ResponseWriter, r *http.Request) {
	rm, err := h.service.CreateRoom(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	w.Header().Set("Location", "/rooms/"+rm.ID.String())
	respondJSON(w, http.StatusCreated, rm)
}

// GetRoom handles GET /rooms/{roomID}
func (h *HTTPHandlers) GetRoom(w http.ResponseWriter, r *http.Request) {
	roomID, ok := pathUUID(w, r, "roomID")
	if !ok {
		return
	}
	rm, err := h.service.GetRoom(r.Context(), roomID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, rm)
}

// Join handles POST /rooms/{roomID}/players
func (h *HTTPHandlers) Join(w http.ResponseWriter, r *http.Request) {
	roomID, ok := pathUUID(w, r, "roomID")
	if !ok {
		return
	}

	var req struct {
		Username string `json:"username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "invalid JSON payload")
		return
	}

	player, err := h.service.Join(r.Context(), roomID, req.Username)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	w.Header().Set("Location", "/rooms/"+roomID.String()+"/players/"+player.ID.String())
	respondJSON(w, http.StatusCreated, player)
}

// ListPlayers handles GET /rooms/{roomID}/players
func (h *HTTPHandlers) ListPlayers(w http.ResponseWriter, r *http.Request) {
	roomID, ok := pathUUID(w, r, "roomID")
	if !ok {
		return
	}
	players, err := h.service.Players(r.Context(), roomID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	if players == nil {
		players = []Player{}
	}
	respondJSON(w, http.StatusOK, players)
}

// GetSettings handles GET /rooms/{roomID}/settings
func (h *HTTPHandlers) GetSettings(w http.ResponseWriter, r *http.Request) {
	roomID, ok := pathUUID(w, r, "roomID")
	if !ok {
		return
	}
	settings, err := h.service.Settings(r.Context(), roomID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, settings)
}

// UpdateSettings handles PUT /rooms/{roomID}/settings
func (h *HTTPHandlers) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	roomID, ok := pathUUID(w, r, "roomID")
	if !ok {
		return
	}

	var req Settings
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "invalid JSON payload")
		return
	}

	settings, err := h.service.UpdateSettings(r.Context(), roomID, req)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, settings)
}

// CreateTeam handles POST /rooms/{roomID}/teams
func (h *HTTPHandlers) CreateTeam(w http.ResponseWriter, r *http.Request) {
	roomID, ok := pathUUID(w, r, "roomID")
	if !ok {
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "invalid JSON payload")
		return
	}

	team, err := h.service.CreateTeam(r.Context(), roomID, req.Name)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, team)
}

// ListTeams handles GET /rooms/{roomID}/teams
func (h *HTTPHandlers) ListTeams(w http.ResponseWriter, r *http.Request) {
	roomID, ok := pathUUID(w, r, "roomID")
	if !ok {
		return
	}
	teams, err := h.service.Teams(r.Context(), roomID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	if teams == nil {
		teams = []Team{}
	}
	respondJSON(w, http.StatusOK, teams)
}

// AssignTeam handles PUT /rooms/{roomID}/players/{playerID}/team
func (h *HTTPHandlers) AssignTeam(w http.ResponseWriter, r *http.Request) {
	roomID, ok := pathUUID(w, r, "roomID")
	if !ok {
		return
	}
	playerID, ok := pathUUID(w, r, "playerID")
	if !ok {
		return
	}

	var req struct {
		TeamID uuid.UUID `json:"team_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TeamID == uuid.Nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "team_id is required")
		return
	}

	if err := h.service.AssignTeam(r.Context(), roomID, playerID, req.TeamID); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandlers) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *ValidationError
	switch {
	case errors.Is(err, storage.ErrNotFound):
		httperrors.RespondNotFound(w, httperrors.ErrCodeNotFound, "resource not found")
	case session.Forbidden(err):
		httperrors.RespondForbidden(w, httperrors.ErrCodeForbidden, err.Error())
	case errors.Is(err, storage.ErrConflict):
		httperrors.RespondConflict(w, httperrors.ErrCodeConflict, err.Error())
	case errors.As(err, &vErr):
		httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, vErr.Message, vErr.Field)
	default:
		h.logger.Error().Err(err).Str("path", r.URL.Path).Msg("room operation failed")
		httperrors.RespondInternalError(w, "internal error")
	}
}

func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, name+" must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
