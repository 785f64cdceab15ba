package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/lehigh-university-libraries/imagetranslator/internal/apperr"
	"github.com/lehigh-university-libraries/imagetranslator/internal/languages"
	"github.com/lehigh-university-libraries/imagetranslator/internal/models"
)

func (h *Handler) handleExtract(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, ok := h.getSessionOrError(w, sessionID)
	if !ok {
		return
	}
	if session.DataURI == "" {
		h.writeAppError(w, apperr.Invalid("error.noImage"))
		return
	}

	text, err := h.extractor.Extract(r.Context(), session.DataURI)
	if err != nil {
		h.writeAppError(w, err)
		return
	}

	detected := ""
	if h.detector != nil {
		if lang, ok := h.detector.Detect(text); ok {
			detected = lang.Name
			slog.Debug("Detected source language", "session_id", sessionID, "language", lang.Code)
		}
	}

	h.settle(w, sessionID, "success.extracted", func(s *models.Session) {
		s.ExtractedText = text
		s.DetectedLanguage = detected
	})
}

func (h *Handler) handleTranslate(w http.ResponseWriter, r *http.Request, sessionID string) {
	var request struct {
		Language string `json:"language"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil && !errors.Is(err, io.EOF) {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	session, ok := h.getSessionOrError(w, sessionID)
	if !ok {
		return
	}
	if strings.TrimSpace(session.ExtractedText) == "" {
		h.writeAppError(w, apperr.Invalid("error.noText"))
		return
	}
	target := strings.TrimSpace(request.Language)
	if target == "" {
		h.writeAppError(w, apperr.Invalid("error.noLanguage"))
		return
	}
	// codes resolve to display names; anything else goes to the model as given
	if lang, ok := languages.Resolve(target); ok {
		target = lang.Name
	}

	translated, err := h.translator.Translate(r.Context(), session.ExtractedText, target)
	if err != nil {
		h.writeAppError(w, err)
		return
	}

	h.settle(w, sessionID, "success.translated", func(s *models.Session) {
		s.TranslatedText = translated
		s.TargetLanguage = target
		s.Improved = false
	})
}

func (h *Handler) handleImprove(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, ok := h.getSessionOrError(w, sessionID)
	if !ok {
		return
	}
	if strings.TrimSpace(session.TranslatedText) == "" {
		h.writeAppError(w, apperr.Invalid("error.noTranslation"))
		return
	}

	improved, err := h.translator.Improve(r.Context(), session.TranslatedText, session.TargetLanguage)
	if err != nil {
		h.writeAppError(w, err)
		return
	}

	h.settle(w, sessionID, "success.improved", func(s *models.Session) {
		s.TranslatedText = improved
		s.Improved = true
	})
}

// settle writes a finished operation's result into the session and
// answers with the updated session.
func (h *Handler) settle(w http.ResponseWriter, sessionID, successKey string, fn func(*models.Session)) {
	session, err := h.sessionStore.Update(sessionID, fn)
	if err != nil {
		// deleted while the operation was running
		h.writeError(w, "Session not found", http.StatusNotFound)
		return
	}
	h.writeJSON(w, sessionResponse{Session: session, Notification: h.notify(successKey)})
}
