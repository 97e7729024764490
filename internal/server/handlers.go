package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/agbru/coinsim/internal/coin"
	apperrors "github.com/agbru/coinsim/internal/errors"
	"github.com/agbru/coinsim/internal/orchestration"
	"github.com/agbru/coinsim/internal/store"
)

const defaultHistoryLimit = 50

var errSessionExists = errors.New("session already exists")

type errorResponse struct {
	Error string `json:"error"`
}

type createRequest struct {
	ID string `json:"id"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.metrics.WritePrometheus(w, r)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.store.List(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	if sessions == nil {
		sessions = []store.Session{}
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	sess, err := s.createSession(r.Context(), req.ID)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sess.Snapshot())
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	sess, err := s.session(r.Context(), id)
	if err != nil {
		s.fail(w, err)
		return
	}
	if err := sess.Delete(r.Context()); err != nil {
		s.fail(w, err)
		return
	}
	s.forget(id)
	w.WriteHeader(http.StatusNoContent)
}

// handleFlip flips one coin, or n coins when the query carries n.
func (s *Server) handleFlip(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("n")
	if raw == "" {
		s.execute(w, r, orchestration.FlipOnce())
		return
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "n must be an integer")
		return
	}
	if n < 0 || n > s.cfg.Security.MaxFlips {
		writeError(w, http.StatusBadRequest,
			"n must be between 0 and "+strconv.Itoa(s.cfg.Security.MaxFlips))
		return
	}
	s.execute(w, r, orchestration.FlipN(n))
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	s.execute(w, r, orchestration.FlipBatch())
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.execute(w, r, orchestration.Reset())
}

func (s *Server) execute(w http.ResponseWriter, r *http.Request, cmd orchestration.Command) {
	sess, err := s.session(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	snap, err := sess.Execute(r.Context(), cmd)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = v
	}
	sess, err := s.session(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	history, err := sess.History(r.Context(), limit)
	if err != nil {
		s.fail(w, err)
		return
	}
	if history == nil {
		history = []store.Command{}
	}
	writeJSON(w, http.StatusOK, history)
}

// fail maps err to an HTTP status and writes it as a JSON error.
func (s *Server) fail(w http.ResponseWriter, err error) {
	var validation apperrors.ValidationError
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "session not found")
	case errors.Is(err, errSessionExists):
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &validation), errors.Is(err, coin.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, err.Error())
	case apperrors.IsContextError(err):
		writeError(w, http.StatusServiceUnavailable, "request canceled")
	default:
		s.logger.Error("request failed", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
