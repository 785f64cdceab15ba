package handlers

import (
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
)

func (h *Handler) HandleStatic(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(strings.TrimPrefix(r.URL.Path, "/static/"), "/")

	// ?image=<url> opens a session for a remote image
	imageURL := r.URL.Query().Get("image")
	if imageURL != "" {
		sessionID, err := h.createSessionFromURL(r.Context(), imageURL)
		if err != nil {
			slog.Error("Failed to create session from URL", "url", imageURL, "err", err)
			http.Error(w, "Failed to process image URL: "+err.Error(), http.StatusBadRequest)
			return
		}

		http.Redirect(w, r, "/?session="+sessionID, http.StatusFound)
		return
	}

	if path == "" {
		path = "index.html"
	}

	// Prevent directory traversal attacks
	if strings.Contains(path, "..") {
		http.Error(w, "Invalid file path", http.StatusBadRequest)
		return
	}

	switch {
	case strings.HasSuffix(path, ".css"):
		w.Header().Set("Content-Type", "text/css")
	case strings.HasSuffix(path, ".js"):
		w.Header().Set("Content-Type", "application/javascript")
	case strings.HasSuffix(path, ".html"):
		w.Header().Set("Content-Type", "text/html")
	}

	http.ServeFile(w, r, filepath.Join(h.staticDir, filepath.FromSlash(path)))
}
