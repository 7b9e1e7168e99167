// Package httpapi exposes the session controller to a local UI as a small
// JSON surface plus a websocket change feed.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/anotador/internal/session"
	"github.com/jason-s-yu/anotador/internal/store"
)

// Server bundles the controller and its HTTP adapters.
type Server struct {
	ctrl *session.Controller
	st   store.Store
	log  *logrus.Logger
	feed *Feed
}

// New builds the server. The feed may be shared with the controller's
// notifier so commits reach subscribers.
func New(ctrl *session.Controller, st store.Store, log *logrus.Logger, feed *Feed) *Server {
	return &Server{ctrl: ctrl, st: st, log: log, feed: feed}
}

// Routes assembles the mux with logging middleware applied.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/players/create", s.handleCreatePlayer)
	mux.HandleFunc("/players/list", s.handleListPlayers)
	mux.HandleFunc("/players/rename", s.handleRenamePlayer)
	mux.HandleFunc("/players/delete", s.handleDeletePlayer)

	mux.HandleFunc("/games/start", s.handleStartGame)
	mux.HandleFunc("/games/active", s.handleActiveGame)
	mux.HandleFunc("/games/history", s.handleHistory)
	mux.HandleFunc("/games/scores", s.handleScores)
	mux.HandleFunc("/games/entry", s.handleEntry)
	mux.HandleFunc("/games/undo", s.handleUndo)
	mux.HandleFunc("/games/abandon", s.handleAbandon)

	mux.HandleFunc("/ws", s.feed.Handler())

	return LogMiddleware(s.log)(mux)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps controller refusals onto HTTP statuses: invariant
// violations are 409, bad values 422, missing records 404.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, session.ErrActiveGame),
		errors.Is(err, session.ErrGameFinished),
		errors.Is(err, session.ErrNotOpened),
		errors.Is(err, session.ErrExceedsTarget),
		errors.Is(err, session.ErrNothingToUndo),
		errors.Is(err, session.ErrWrongVariant):
		status = http.StatusConflict
	case errors.Is(err, session.ErrBadConfig),
		errors.Is(err, session.ErrNoPlayers),
		errors.Is(err, session.ErrPlayerNotIn),
		errors.Is(err, session.ErrBadValue):
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return false
	}
	return true
}

func requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}
