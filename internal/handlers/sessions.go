package handlers

import (
	"net/http"
	"strings"
)

func (h *Handler) HandleSessions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.writeJSON(w, h.sessionStore.GetAll())
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleSessionDetail serves /api/sessions/{id} and the per-session
// operations under /api/sessions/{id}/{extract,translate,improve}.
func (h *Handler) HandleSessionDetail(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/sessions/"), "/")
	sessionID, action, _ := strings.Cut(rest, "/")
	if sessionID == "" {
		h.writeError(w, "Session not found", http.StatusNotFound)
		return
	}

	if action != "" {
		if r.Method != http.MethodPost {
			h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		switch action {
		case "extract":
			h.handleExtract(w, r, sessionID)
		case "translate":
			h.handleTranslate(w, r, sessionID)
		case "improve":
			h.handleImprove(w, r, sessionID)
		default:
			h.writeError(w, "Unknown action: "+action, http.StatusNotFound)
		}
		return
	}

	switch r.Method {
	case http.MethodGet:
		session, ok := h.getSessionOrError(w, sessionID)
		if !ok {
			return
		}
		h.writeJSON(w, session)
	case http.MethodDelete:
		if !h.sessionStore.Delete(sessionID) {
			h.writeError(w, "Session not found", http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
