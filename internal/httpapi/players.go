package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jason-s-yu/anotador/internal/models"
)

const maxPlayerName = 30

func (s *Server) handleCreatePlayer(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" || len([]rune(name)) > maxPlayerName {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "name must be 1-30 characters"})
		return
	}

	p := &models.Player{ID: uuid.New(), Name: name, CreatedAt: time.Now()}
	if err := s.st.CreatePlayer(r.Context(), p); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleListPlayers(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	players, err := s.st.ListPlayers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, players)
}

func (s *Server) handleRenamePlayer(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req struct {
		ID   uuid.UUID `json:"id"`
		Name string    `json:"name"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" || len([]rune(name)) > maxPlayerName {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "name must be 1-30 characters"})
		return
	}
	if err := s.st.UpdatePlayerName(r.Context(), req.ID, name); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleDeletePlayer removes a roster entry. Historical games keep their
// player ids; a deleted player renders as a placeholder in the UI.
func (s *Server) handleDeletePlayer(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req struct {
		ID uuid.UUID `json:"id"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.st.DeletePlayer(r.Context(), req.ID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
