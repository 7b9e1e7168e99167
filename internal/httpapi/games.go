package httpapi

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/jason-s-yu/anotador/internal/models"
)

type gameStateResponse struct {
	Game   *models.Game         `json:"game"`
	Scores []models.ScoreRecord `json:"scores"`
}

func (s *Server) handleStartGame(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req struct {
		GameType  models.GameType   `json:"game_type"`
		Config    models.GameConfig `json:"config"`
		PlayerIDs []uuid.UUID       `json:"player_ids"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	game, err := s.ctrl.Start(r.Context(), req.GameType, req.Config, req.PlayerIDs)
	if err != nil {
		writeError(w, err)
		return
	}
	_, scores, err := s.ctrl.Scores(r.Context(), game.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, gameStateResponse{Game: game, Scores: scores})
}

func (s *Server) handleActiveGame(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	game, err := s.ctrl.Active(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if game == nil {
		writeJSON(w, http.StatusOK, gameStateResponse{})
		return
	}
	game, scores, err := s.ctrl.Scores(r.Context(), game.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, gameStateResponse{Game: game, Scores: scores})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	games, err := s.ctrl.History(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, games)
}

func (s *Server) handleScores(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	gameID, ok := parseGameID(w, r.URL.Query().Get("game_id"))
	if !ok {
		return
	}
	game, scores, err := s.ctrl.Scores(r.Context(), gameID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, gameStateResponse{Game: game, Scores: scores})
}

// entryRequest is the variant-dispatched entry payload; exactly one of the
// optional blocks should be present, matching the game's type.
type entryRequest struct {
	GameID uuid.UUID `json:"game_id"`

	// diez mil
	Turn *struct {
		PlayerID uuid.UUID `json:"player_id"`
		Points   int       `json:"points"`
		Fumble   bool      `json:"fumble"`
	} `json:"turn,omitempty"`

	// generala
	Category *struct {
		PlayerID uuid.UUID               `json:"player_id"`
		Category models.GeneralaCategory `json:"category"`
		Value    *int                    `json:"value"` // nil clears the cell
		Servida  bool                    `json:"servida"`
	} `json:"category,omitempty"`

	// chinchón / universal
	Round *struct {
		Points   map[uuid.UUID]int `json:"points"`
		Chinchon *uuid.UUID        `json:"chinchon,omitempty"` // outright-win claim
	} `json:"round,omitempty"`

	// truco
	Point *struct {
		Team models.Team `json:"team"`
	} `json:"point,omitempty"`
}

func (s *Server) handleEntry(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req entryRequest
	if !decodeBody(w, r, &req) {
		return
	}

	game, err := s.st.GetGame(r.Context(), req.GameID)
	if err != nil {
		writeError(w, err)
		return
	}

	var scores []models.ScoreRecord
	switch game.GameType {
	case models.GameDiezMil:
		if req.Turn == nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "turn entry required"})
			return
		}
		if req.Turn.Fumble {
			scores, err = s.ctrl.Fumble(r.Context(), game.ID, req.Turn.PlayerID)
		} else {
			scores, err = s.ctrl.BankTurn(r.Context(), game.ID, req.Turn.PlayerID, req.Turn.Points)
		}
	case models.GameGenerala:
		if req.Category == nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "category entry required"})
			return
		}
		if req.Category.Servida {
			scores, err = s.ctrl.ServidaWin(r.Context(), game.ID, req.Category.PlayerID, req.Category.Category)
		} else {
			scores, err = s.ctrl.FillCategory(r.Context(), game.ID, req.Category.PlayerID, req.Category.Category, req.Category.Value)
		}
	case models.GameChinchon:
		if req.Round == nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "round entry required"})
			return
		}
		if req.Round.Chinchon != nil {
			err = s.ctrl.ChinchonWin(r.Context(), game.ID, *req.Round.Chinchon)
		} else {
			scores, err = s.ctrl.RecordRound(r.Context(), game.ID, req.Round.Points)
		}
	case models.GameTruco:
		if req.Point == nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "point entry required"})
			return
		}
		scores, err = s.ctrl.AddPoint(r.Context(), game.ID, req.Point.Team)
	case models.GameUniversal:
		if req.Round == nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "round entry required"})
			return
		}
		scores, err = s.ctrl.RecordUniversalRound(r.Context(), game.ID, req.Round.Points)
	default:
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "unknown game type"})
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}

	game, scores, err = s.ctrl.Scores(r.Context(), game.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, gameStateResponse{Game: game, Scores: scores})
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req struct {
		GameID   uuid.UUID  `json:"game_id"`
		PlayerID *uuid.UUID `json:"player_id,omitempty"` // diez mil only
	}
	if !decodeBody(w, r, &req) {
		return
	}

	game, err := s.st.GetGame(r.Context(), req.GameID)
	if err != nil {
		writeError(w, err)
		return
	}

	switch game.GameType {
	case models.GameDiezMil:
		if req.PlayerID == nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "player_id required for diez mil undo"})
			return
		}
		_, err = s.ctrl.UndoTurn(r.Context(), game.ID, *req.PlayerID)
	case models.GameChinchon:
		_, err = s.ctrl.UndoRound(r.Context(), game.ID)
	case models.GameTruco:
		_, err = s.ctrl.UndoPoint(r.Context(), game.ID)
	case models.GameUniversal:
		_, err = s.ctrl.UndoUniversalRound(r.Context(), game.ID)
	default:
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "undo is not supported for this game type"})
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}

	game, scores, err := s.ctrl.Scores(r.Context(), game.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, gameStateResponse{Game: game, Scores: scores})
}

func (s *Server) handleAbandon(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req struct {
		GameID uuid.UUID `json:"game_id"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.ctrl.Abandon(r.Context(), req.GameID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func parseGameID(w http.ResponseWriter, raw string) (uuid.UUID, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid game_id"})
		return uuid.Nil, false
	}
	return id, true
}
