package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/lehigh-university-libraries/imagetranslator/internal/apperr"
	"github.com/lehigh-university-libraries/imagetranslator/internal/i18n"
	"github.com/lehigh-university-libraries/imagetranslator/internal/images"
	"github.com/lehigh-university-libraries/imagetranslator/internal/languages"
	"github.com/lehigh-university-libraries/imagetranslator/internal/models"
	"github.com/lehigh-university-libraries/imagetranslator/internal/storage"
)

// Extractor pulls text out of an image data URI.
type Extractor interface {
	Extract(ctx context.Context, dataURI string) (string, error)
}

// Translator translates text and improves translations.
type Translator interface {
	Translate(ctx context.Context, text, targetLang string) (string, error)
	Improve(ctx context.Context, text, lang string) (string, error)
}

// Detector guesses the language of extracted text.
type Detector interface {
	Detect(text string) (languages.Language, bool)
}

type Options struct {
	Extractor  Extractor
	Translator Translator
	// Detector is optional.
	Detector Detector
	I18n     *i18n.Store
	Fetcher  *images.Fetcher
	// StaticDir is served at /. Defaults to "static".
	StaticDir string
}

type Handler struct {
	sessionStore *storage.SessionStore
	extractor    Extractor
	translator   Translator
	detector     Detector
	i18n         *i18n.Store
	fetcher      *images.Fetcher
	staticDir    string
}

// Notification is the localized title and body shown to the user after an
// operation settles.
type Notification struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type errorResponse struct {
	Error       string `json:"error"`
	Description string `json:"description"`
	Kind        string `json:"kind"`
}

type sessionResponse struct {
	Session      *models.Session `json:"session"`
	Notification Notification    `json:"notification"`
}

func New(opts Options) *Handler {
	if opts.Fetcher == nil {
		opts.Fetcher = images.NewFetcher()
	}
	if opts.StaticDir == "" {
		opts.StaticDir = "static"
	}
	return &Handler{
		sessionStore: storage.New(),
		extractor:    opts.Extractor,
		translator:   opts.Translator,
		detector:     opts.Detector,
		i18n:         opts.I18n,
		fetcher:      opts.Fetcher,
		staticDir:    opts.StaticDir,
	}
}

// Routes registers every endpoint on a new mux.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/sessions", h.HandleSessions)
	mux.HandleFunc("/api/sessions/", h.HandleSessionDetail)
	mux.HandleFunc("/api/upload", h.HandleUpload)
	mux.HandleFunc("/api/languages", h.HandleLanguages)
	mux.HandleFunc("/api/i18n", h.HandleI18n)
	mux.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			slog.Error("Unable to write healthcheck", "err", err)
		}
	})
	mux.HandleFunc("/", h.HandleStatic)
	return mux
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	h.writeJSONStatus(w, http.StatusOK, data)
}

func (h *Handler) writeJSONStatus(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message)
	http.Error(w, message, code)
}

// writeAppError renders err as a localized notification with the status
// its kind maps to.
func (h *Handler) writeAppError(w http.ResponseWriter, err error) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		appErr = apperr.New(apperr.OperationFailed, "", err)
	}
	if appErr.Kind == apperr.InvalidInput {
		slog.Warn("Rejected request", "key", appErr.Key)
	}
	h.writeJSONStatus(w, appErr.Kind.HTTPStatus(), errorResponse{
		Error:       h.t(appErr.Key),
		Description: h.t(appErr.DescriptionKey()),
		Kind:        appErr.Kind.String(),
	})
}

func (h *Handler) notify(key string) Notification {
	return Notification{
		Title:       h.t(key),
		Description: h.t("success.description"),
	}
}

func (h *Handler) t(key string) string {
	if h.i18n == nil {
		return key
	}
	return h.i18n.T(key)
}

// Session helpers
func (h *Handler) getSessionOrError(w http.ResponseWriter, sessionID string) (*models.Session, bool) {
	session, exists := h.sessionStore.Get(sessionID)
	if !exists {
		h.writeError(w, "Session not found", http.StatusNotFound)
		return nil, false
	}
	return session, true
}
