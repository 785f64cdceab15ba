package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/lehigh-university-libraries/imagetranslator/internal/i18n"
	"github.com/lehigh-university-libraries/imagetranslator/internal/languages"
)

// HandleLanguages lists translation targets grouped by category, or the
// languages of one category with ?category=.
func (h *Handler) HandleLanguages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if category := r.URL.Query().Get("category"); category != "" {
		h.writeJSON(w, languages.Group{Category: category, Languages: languages.ByCategory(category)})
		return
	}
	h.writeJSON(w, map[string]any{
		"categories": languages.Grouped(),
	})
}

type i18nResponse struct {
	Language  string            `json:"language"`
	Languages []string          `json:"languages"`
	Messages  map[string]string `json:"messages"`
}

// HandleI18n reports the interface language and its messages, and switches
// it on PUT.
func (h *Handler) HandleI18n(w http.ResponseWriter, r *http.Request) {
	if h.i18n == nil {
		h.writeError(w, "Localization not configured", http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
	case http.MethodPut, http.MethodPost:
		var request struct {
			Language string `json:"language"`
		}
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
			return
		}
		if err := h.i18n.SetLanguage(r.Context(), request.Language); err != nil {
			if errors.Is(err, i18n.ErrUnsupportedLanguage) {
				h.writeError(w, err.Error(), http.StatusBadRequest)
				return
			}
			slog.Error("Failed to change interface language", "err", err)
			h.writeError(w, "Failed to save language preference", http.StatusInternalServerError)
			return
		}
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, i18nResponse{
		Language:  h.i18n.Language(),
		Languages: h.i18n.Languages(),
		Messages:  h.i18n.Messages(),
	})
}
