package game

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

// HTTPHandlers provides REST endpoints for game operations.
type HTTPHandlers struct {
	service *Service
	logger  zerolog.Logger
}

// NewHTTPHandlers creates HTTP handlers for game endpoints.
func NewHTTPHandlers(service *Service, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{
		service: service,
		logger:  logger.With().Str("component", "game_http").Logger(),
	}
}

type createGameResponse struct {
	Game   Game    `json:"game"`
	Rounds []Round `json:"rounds"`
}

// CreateGame handles POST /games
func (h *HTTPHandlers) CreateGame(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RoomID uuid.UUID `json:"room_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RoomID == uuid.Nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "room_id is required")
		return
	}

	g, rounds, err := h.service.CreateGame(r.Context(), req.RoomID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	w.Header().Set("Location", "/games/"+g.ID.String())
	respondJSON(w, http.StatusCreated, createGameResponse{Game: g, Rounds: rounds})
}

// GetGame handles GET /games/{gameID}
func (h *HTTPHandlers) GetGame(w http.ResponseWriter, r *http.Request) {
	gameID, ok := pathUUID(w, r, "gameID")
	if !ok {
		return
	}
	g, err := h.service.GetGame(r.Context(), gameID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, g)
}

// DeleteGame handles DELETE /games/{gameID}
func (h *HTTPHandlers) DeleteGame(w http.ResponseWriter, r *http.Request) {
	gameID, ok := pathUUID(w, r, "gameID")
	if !ok {
		return
	}
	if err := h.service.DeleteGame(r.Context(), gameID); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListRounds handles GET /games/{gameID}/rounds
func (h *HTTPHandlers) ListRounds(w http.ResponseWriter, r *http.Request) {
	gameID, ok := pathUUID(w, r, "gameID")
	if !ok {
		return
	}
	rounds, err := h.service.Rounds(r.Context(), gameID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	if rounds == nil {
		rounds = []Round{}
	}
	respondJSON(w, http.StatusOK, rounds)
}

// ListQuestions handles GET /games/{gameID}/rounds/{roundID}/questions
func (h *HTTPHandlers) ListQuestions(w http.ResponseWriter, r *http.Request) {
	gameID, ok := pathUUID(w, r, "gameID")
	if !ok {
		return
	}
	roundID, ok := pathUUID(w, r, "roundID")
	if !ok {
		return
	}

	questions, err := h.service.Questions(r.Context(), gameID, roundID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	if questions == nil {
		questions = []Question{}
	}
	respondJSON(w, http.StatusOK, questions)
}

// AddQuestion handles POST /games/{gameID}/rounds/{roundID}/questions
func (h *HTTPHandlers) AddQuestion(w http.ResponseWriter, r *http.Request) {
	gameID, ok := pathUUID(w, r, "gameID")
	if !ok {
		return
	}
	roundID, ok := pathUUID(w, r, "roundID")
	if !ok {
		return
	}

	var req struct {
		Type           string   `json:"type"`
		Text           string   `json:"text"`
		CorrectAnswers []string `json:"correct_answers"`
		MediaURL       *string  `json:"media_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "invalid JSON payload")
		return
	}

	q, err := h.service.AddQuestion(r.Context(), gameID, roundID, Question{
		Type:           req.Type,
		Text:           req.Text,
		CorrectAnswers: req.CorrectAnswers,
		MediaURL:       req.MediaURL,
	})
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	// The creator is the host; echoing the accepted answers back to the
	// creating request leaks nothing.
	respondJSON(w, http.StatusCreated, q)
}

// SubmitAnswer handles
// POST /games/{gameID}/rounds/{roundID}/questions/{questionID}/players/{playerID}
func (h *HTTPHandlers) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	gameID, ok := pathUUID(w, r, "gameID")
	if !ok {
		return
	}
	roundID, ok := pathUUID(w, r, "roundID")
	if !ok {
		return
	}
	questionID, ok := pathUUID(w, r, "questionID")
	if !ok {
		return
	}
	playerID, ok := pathUUID(w, r, "playerID")
	if !ok {
		return
	}

	var req struct {
		Answer string `json:"answer"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "invalid JSON payload")
		return
	}

	if err := h.service.SubmitAnswer(r.Context(), gameID, roundID, questionID, playerID, req.Answer); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// GetAnswer handles
// GET /games/{gameID}/rounds/{roundID}/questions/{questionID}/players/{playerID}
func (h *HTTPHandlers) GetAnswer(w http.ResponseWriter, r *http.Request) {
	gameID, ok := pathUUID(w, r, "gameID")
	if !ok {
		return
	}
	roundID, ok := pathUUID(w, r, "roundID")
	if !ok {
		return
	}
	questionID, ok := pathUUID(w, r, "questionID")
	if !ok {
		return
	}
	playerID, ok := pathUUID(w, r, "playerID")
	if !ok {
		return
	}

	answer, err := h.service.GetAnswer(r.Context(), gameID, roundID, questionID, playerID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, answer)
}

func (h *HTTPHandlers) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var stateErr *InvalidStateError
	var vErr *ValidationError
	switch {
	case errors.Is(err, storage.ErrNotFound):
		httperrors.RespondNotFound(w, httperrors.ErrCodeNotFound, "resource not found")
	case session.Forbidden(err):
		httperrors.RespondForbidden(w, httperrors.ErrCodeForbidden, err.Error())
	case errors.Is(err, storage.ErrConflict):
		httperrors.RespondConflict(w, httperrors.ErrCodeConflict, "answer already submitted")
	case errors.As(err, &stateErr):
		httperrors.RespondBadRequest(w, stateErr.Code, stateErr.Message)
	case errors.As(err, &vErr):
		httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, vErr.Message, vErr.Field)
	default:
		h.logger.Error().Err(err).Str("path", r.URL.Path).Msg("game operation failed")
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
