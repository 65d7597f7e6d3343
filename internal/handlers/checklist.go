// Package handlers provides HTTP handlers for the checklist API
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"energy-checklist-bot/internal/services"
)

// Reader is the read-only slice of the sheet client used by the
// pass-through endpoints
type Reader interface {
	GetRecords(ctx context.Context, date string) []json.RawMessage
	GetScores(ctx context.Context) []json.RawMessage
	GetTodayStatus(ctx context.Context, date string) map[string]json.RawMessage
}

// ChecklistHandler serves the form flow and the pass-through reads
type ChecklistHandler struct {
	manager *services.Manager
	reader  Reader
	logger  *zap.Logger
}

// NewChecklistHandler creates a checklist handler
func NewChecklistHandler(manager *services.Manager, reader Reader, logger *zap.Logger) *ChecklistHandler {
	return &ChecklistHandler{manager: manager, reader: reader, logger: logger}
}

// Register wires all routes onto the mux
func (h *ChecklistHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/sessions", h.HandleCreateSession)
	mux.HandleFunc("GET /api/sessions/{id}", h.HandleView)
	mux.HandleFunc("POST /api/sessions/{id}/select", h.HandleSelect)
	mux.HandleFunc("POST /api/sessions/{id}/toggle", h.HandleToggle)
	mux.HandleFunc("POST /api/sessions/{id}/submit-room", h.HandleSubmitRoom)
	mux.HandleFunc("POST /api/sessions/{id}/submit-all", h.HandleSubmitAll)
	mux.HandleFunc("POST /api/sessions/{id}/reset", h.HandleReset)
	mux.HandleFunc("GET /api/records", h.HandleRecords)
	mux.HandleFunc("GET /api/scores", h.HandleScores)
	mux.HandleFunc("GET /api/status", h.HandleStatus)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// session resolves the {id} path value, writing a 404 on a miss
func (h *ChecklistHandler) session(w http.ResponseWriter, r *http.Request) (*services.Session, bool) {
	session, ok := h.manager.Get(r.PathValue("id"))
	if !ok {
		http.Error(w, "Session not found", http.StatusNotFound)
		return nil, false
	}
	return session, true
}

// HandleCreateSession starts a new form session
func (h *ChecklistHandler) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	session := h.manager.Create()
	writeJSON(w, http.StatusCreated, map[string]any{
		"sessionId": session.ID(),
		"view":      session.View(),
	})
}

// HandleView returns the current rendered state of a session
func (h *ChecklistHandler) HandleView(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, session.View())
}

// HandleSelect picks the inspector for a session
func (h *ChecklistHandler) HandleSelect(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	var req struct {
		Inspector string `json:"inspector"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Inspector == "" {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	session.SelectInspector(req.Inspector)
	writeJSON(w, http.StatusOK, session.View())
}

// HandleToggle flips one checklist flag
func (h *ChecklistHandler) HandleToggle(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	var req struct {
		RoomID string `json:"roomId"`
		ItemID string `json:"itemId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RoomID == "" || req.ItemID == "" {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	session.Toggle(req.RoomID, req.ItemID)
	writeJSON(w, http.StatusOK, session.View())
}

// HandleSubmitRoom saves a single room. The updated view carries the
// outcome; an upstream failure is part of the view, not an HTTP error.
func (h *ChecklistHandler) HandleSubmitRoom(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	var req struct {
		RoomID string `json:"roomId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RoomID == "" {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	err := session.SubmitRoom(r.Context(), req.RoomID)
	h.writeSubmitOutcome(w, session, err)
}

// HandleSubmitAll saves every room of the assigned building
func (h *ChecklistHandler) HandleSubmitAll(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	err := session.SubmitAll(r.Context())
	h.writeSubmitOutcome(w, session, err)
}

func (h *ChecklistHandler) writeSubmitOutcome(w http.ResponseWriter, session *services.Session, err error) {
	switch {
	case errors.Is(err, services.ErrSubmitInFlight):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, services.ErrNoAssignment), errors.Is(err, services.ErrUnknownRoom):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		if err != nil {
			h.logger.Warn("submit failed", zap.String("session_id", session.ID()), zap.Error(err))
		}
		writeJSON(w, http.StatusOK, session.View())
	}
}

// HandleReset wipes a session back to inspector selection
func (h *ChecklistHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	session.Reset()
	writeJSON(w, http.StatusOK, session.View())
}

// HandleRecords passes through the raw record rows for a date
func (h *ChecklistHandler) HandleRecords(w http.ResponseWriter, r *http.Request) {
	records := h.reader.GetRecords(r.Context(), r.URL.Query().Get("date"))
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "records": records})
}

// HandleScores passes through the accumulated score rows
func (h *ChecklistHandler) HandleScores(w http.ResponseWriter, r *http.Request) {
	scores := h.reader.GetScores(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "scores": scores})
}

// HandleStatus passes through the per-building status for a date
func (h *ChecklistHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	status := h.reader.GetTodayStatus(r.Context(), r.URL.Query().Get("date"))
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "status": status})
}
