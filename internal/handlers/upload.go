package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/lehigh-university-libraries/imagetranslator/internal/apperr"
	"github.com/lehigh-university-libraries/imagetranslator/internal/images"
	"github.com/lehigh-university-libraries/imagetranslator/internal/models"
	"github.com/lehigh-university-libraries/imagetranslator/internal/storage"
)

type uploadResponse struct {
	SessionID string        `json:"session_id"`
	Image     *images.Image `json:"image"`
	Message   string        `json:"message"`
}

func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Check if this is a JSON request with a data URI or image URL
	contentType := r.Header.Get("Content-Type")
	if strings.Contains(contentType, "application/json") {
		h.handleJSONUpload(w, r)
		return
	}

	h.handleFileUpload(w, r)
}

func (h *Handler) handleJSONUpload(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Image     string `json:"image"`
		ImageURL  string `json:"image_url"`
		SessionID string `json:"session_id"`
	}

	body := http.MaxBytesReader(w, r.Body, 2*images.MaxSize)
	if err := json.NewDecoder(body).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	var (
		img *images.Image
		err error
	)
	switch {
	case request.Image != "":
		img, err = images.ParseDataURI(request.Image)
	case request.ImageURL != "":
		img, err = h.fetcher.Download(r.Context(), request.ImageURL)
	default:
		h.writeAppError(w, apperr.Invalid("error.noImage"))
		return
	}
	if err != nil {
		slog.Error("Failed to load image", "url", request.ImageURL, "err", err)
		h.writeAppError(w, apperr.Invalid("error.invalidFile"))
		return
	}

	h.storeImage(w, request.SessionID, img)
}

func (h *Handler) handleFileUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, images.MaxSize+1<<20)

	file, header, err := r.FormFile("files")
	if err != nil {
		file, header, err = r.FormFile("file")
		if err != nil {
			h.writeAppError(w, apperr.Invalid("error.noImage"))
			return
		}
	}
	defer file.Close()

	// the client's declared type is checked first, then the content is sniffed
	if ct := header.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "image/") {
		slog.Warn("Rejected upload", "filename", header.Filename, "content_type", ct)
		h.writeAppError(w, apperr.Invalid("error.invalidFile"))
		return
	}

	// Limit file size to 10MB
	fileData, err := io.ReadAll(io.LimitReader(file, images.MaxSize))
	if err != nil {
		h.writeError(w, "Failed to read file contents: "+err.Error(), http.StatusInternalServerError)
		return
	}

	img, err := images.FromBytes(fileData)
	if err != nil {
		slog.Warn("Rejected upload", "filename", header.Filename, "err", err)
		h.writeAppError(w, apperr.Invalid("error.invalidFile"))
		return
	}

	h.storeImage(w, r.FormValue("session_id"), img)
}

// storeImage puts img in a new session, or replaces the image of an
// existing one when sessionID names it.
func (h *Handler) storeImage(w http.ResponseWriter, sessionID string, img *images.Image) {
	if sessionID != "" {
		_, err := h.sessionStore.Update(sessionID, func(s *models.Session) { s.SetImage(img) })
		if errors.Is(err, storage.ErrNotFound) {
			h.writeError(w, "Session not found", http.StatusNotFound)
			return
		}
		slog.Info("Image replaced", "session_id", sessionID, "mime_type", img.MIMEType, "size", img.Size)
		h.writeJSON(w, uploadResponse{SessionID: sessionID, Image: img, Message: "Image replaced"})
		return
	}

	session := &models.Session{ID: uuid.NewString()}
	session.SetImage(img)
	h.sessionStore.Set(session)

	slog.Info("Session created", "session_id", session.ID, "mime_type", img.MIMEType, "width", img.Width, "height", img.Height)
	h.writeJSON(w, uploadResponse{SessionID: session.ID, Image: img, Message: "Successfully uploaded 1 image"})
}

// createSessionFromURL downloads imageURL into a new session.
func (h *Handler) createSessionFromURL(ctx context.Context, imageURL string) (string, error) {
	img, err := h.fetcher.Download(ctx, imageURL)
	if err != nil {
		return "", err
	}

	session := &models.Session{ID: uuid.NewString()}
	session.SetImage(img)
	h.sessionStore.Set(session)

	slog.Info("Session created from URL", "session_id", session.ID, "url", imageURL)
	return session.ID, nil
}
