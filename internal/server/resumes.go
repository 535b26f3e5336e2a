package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"resumeforge/internal/schema"
	"resumeforge/internal/state"
)

// defaultUserID backs requests from clients that do not identify a user.
const defaultUserID = "default"

// userID resolves the acting user from the X-User-ID header.
func userID(r *http.Request) string {
	if id := r.Header.Get("X-User-ID"); id != "" {
		return id
	}
	return defaultUserID
}

// listResumesHandler returns the user's saved resume variants, most
// recently updated first.
func (s *Server) listResumesHandler(w http.ResponseWriter, r *http.Request) {
	records, err := s.Store.List(r.Context(), userID(r))
	if err != nil {
		writeAppError(w, s.Logger, err, "Failed to list resumes")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{"resumes": records}); err != nil {
		s.Logger.LogError(err, "Failed to encode resume list")
	}
}

// saveResumeHandler persists a resume document, replacing any variant with
// the same id wholesale. The document is normalized before it is stored so
// the store only ever holds canonical documents.
func (s *Server) saveResumeHandler(w http.ResponseWriter, r *http.Request) {
	var raw json.RawMessage
	if err := parseJSONRequest(r, &raw); err != nil {
		writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}

	doc, err := schema.Normalize(raw)
	if err != nil {
		writeAppError(w, s.Logger, err, "Failed to save resume")
		return
	}

	record, err := s.Store.Save(r.Context(), userID(r), doc)
	if err != nil {
		writeAppError(w, s.Logger, err, "Failed to save resume")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(record); err != nil {
		s.Logger.LogError(err, "Failed to encode saved resume")
	}
}

// getResumeHandler loads a single saved variant.
func (s *Server) getResumeHandler(w http.ResponseWriter, r *http.Request) {
	record, err := s.Store.Get(r.Context(), userID(r), r.PathValue("id"))
	if err != nil {
		writeAppError(w, s.Logger, err, "Failed to load resume")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(record); err != nil {
		s.Logger.LogError(err, "Failed to encode resume")
	}
}

// deleteResumeHandler removes a saved variant.
func (s *Server) deleteResumeHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.Store.Delete(r.Context(), userID(r), r.PathValue("id")); err != nil {
		writeAppError(w, s.Logger, err, "Failed to delete resume")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// resumeEventsHandler streams workspace snapshots over server-sent events.
// Each connected client gets its own workspace kept current by the store's
// change feed, so an edit saved on one device shows up on the others.
func (s *Server) resumeEventsHandler(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeErrorResponse(w, "Streaming unsupported", "server-sent events require a streaming connection", http.StatusInternalServerError)
		return
	}

	ctx := r.Context()
	workspace := state.NewWorkspace(s.Store, userID(r))
	if err := workspace.Load(ctx); err != nil {
		writeAppError(w, s.Logger, err, "Failed to load resumes")
		return
	}
	if err := workspace.Sync(ctx); err != nil {
		writeAppError(w, s.Logger, err, "Failed to start resume sync")
		return
	}
	updates := workspace.Subscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// The client starts from the current state, then receives deltas as
	// full snapshots.
	if err := writeSSEEvent(w, workspace.Snapshot()); err != nil {
		return
	}
	flusher.Flush()

	for {
		select {
		case snapshot := <-updates:
			if err := writeSSEEvent(w, snapshot); err != nil {
				return
			}
			flusher.Flush()
		case <-ctx.Done():
			return
		}
	}
}

func writeSSEEvent(w http.ResponseWriter, snapshot state.Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: snapshot\ndata: %s\n\n", data)
	return err
}
