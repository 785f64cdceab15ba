package handlers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lehigh-university-libraries/imagetranslator/internal/apperr"
	"github.com/lehigh-university-libraries/imagetranslator/internal/i18n"
	"github.com/lehigh-university-libraries/imagetranslator/internal/languages"
	"github.com/lehigh-university-libraries/imagetranslator/internal/models"
	"github.com/lehigh-university-libraries/imagetranslator/internal/prefs"
)

type fakeServices struct {
	mu             sync.Mutex
	extractCalls   int
	translateCalls int
	improveCalls   int
	lastDataURI    string
	lastTarget     string
	extractErr     error
	translateErr   error
}

func (f *fakeServices) Extract(_ context.Context, dataURI string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.extractCalls++
	f.lastDataURI = dataURI
	if f.extractErr != nil {
		return "", f.extractErr
	}
	return "Hello world", nil
}

func (f *fakeServices) Translate(_ context.Context, text, target string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.translateCalls++
	f.lastTarget = target
	if f.translateErr != nil {
		return "", f.translateErr
	}
	return "Bonjour le monde", nil
}

func (f *fakeServices) Improve(_ context.Context, text, lang string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.improveCalls++
	return text + " !", nil
}

type fakeDetector struct{}

func (fakeDetector) Detect(string) (languages.Language, bool) {
	return languages.ByCode("en")
}

func newTestHandler(t *testing.T, f *fakeServices) (*Handler, http.Handler) {
	t.Helper()
	store, err := i18n.NewStore(context.Background(), prefs.NewMemory(), func() (string, error) { return "en-US", nil })
	require.NoError(t, err)

	h := New(Options{
		Extractor:  f,
		Translator: f,
		Detector:   fakeDetector{},
		I18n:       store,
		StaticDir:  t.TempDir(),
	})
	return h, h.Routes()
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.Set(0, 0, color.White)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func uploadSession(t *testing.T, h http.Handler) string {
	t.Helper()
	dataURI := "data:image/png;base64," + base64Std(pngBytes(t))
	rec := do(t, h, http.MethodPost, "/api/upload", map[string]string{"image": dataURI})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp uploadResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotEmpty(t, resp.SessionID)
	return resp.SessionID
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func decodeSession(t *testing.T, rec *httptest.ResponseRecorder) sessionResponse {
	t.Helper()
	var resp sessionResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestHealthcheck(t *testing.T) {
	_, h := newTestHandler(t, &fakeServices{})
	rec := do(t, h, http.MethodGet, "/healthcheck", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestFullPipeline(t *testing.T) {
	f := &fakeServices{}
	_, h := newTestHandler(t, f)
	id := uploadSession(t, h)

	rec := do(t, h, http.MethodPost, "/api/sessions/"+id+"/extract", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decodeSession(t, rec)
	assert.Equal(t, "Hello world", resp.Session.ExtractedText)
	assert.Equal(t, "English", resp.Session.DetectedLanguage)
	assert.Equal(t, "Text extracted", resp.Notification.Title)
	assert.True(t, strings.HasPrefix(f.lastDataURI, "data:image/png;base64,"))

	rec = do(t, h, http.MethodPost, "/api/sessions/"+id+"/translate", map[string]string{"language": "fr"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp = decodeSession(t, rec)
	assert.Equal(t, "Bonjour le monde", resp.Session.TranslatedText)
	assert.Equal(t, "French", resp.Session.TargetLanguage)
	assert.Equal(t, "French", f.lastTarget)

	rec = do(t, h, http.MethodPost, "/api/sessions/"+id+"/improve", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp = decodeSession(t, rec)
	assert.Equal(t, "Bonjour le monde !", resp.Session.TranslatedText)
	assert.True(t, resp.Session.Improved)
	assert.Equal(t, "Translation improved", resp.Notification.Title)

	rec = do(t, h, http.MethodGet, "/api/sessions/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var session models.Session
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&session))
	assert.Equal(t, "Hello world", session.ExtractedText)
	assert.Equal(t, 4, session.Image.Width)
}

func TestPreconditionsSkipModelCalls(t *testing.T) {
	f := &fakeServices{}
	_, h := newTestHandler(t, f)
	id := uploadSession(t, h)

	rec := do(t, h, http.MethodPost, "/api/sessions/"+id+"/translate", map[string]string{"language": "French"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	errResp := decodeError(t, rec)
	assert.Equal(t, "No text", errResp.Error)
	assert.Equal(t, "Please extract text from the image first", errResp.Description)
	assert.Equal(t, "invalid_input", errResp.Kind)

	rec = do(t, h, http.MethodPost, "/api/sessions/"+id+"/improve", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "No translation", decodeError(t, rec).Error)

	require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/api/sessions/"+id+"/extract", nil).Code)

	rec = do(t, h, http.MethodPost, "/api/sessions/"+id+"/translate", map[string]string{"language": " "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "No language selected", decodeError(t, rec).Error)

	assert.Zero(t, f.translateCalls)
	assert.Zero(t, f.improveCalls)
}

func TestOperationErrorLeavesSessionIntact(t *testing.T) {
	f := &fakeServices{}
	_, h := newTestHandler(t, f)
	id := uploadSession(t, h)
	require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/api/sessions/"+id+"/extract", nil).Code)

	f.translateErr = apperr.New(apperr.RateLimitExceeded, apperr.OpTranslate, errors.New("429"))
	rec := do(t, h, http.MethodPost, "/api/sessions/"+id+"/translate", map[string]string{"language": "German"})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	errResp := decodeError(t, rec)
	assert.Equal(t, "Quota exceeded", errResp.Error)
	assert.Equal(t, "rate_limit_exceeded", errResp.Kind)

	f.extractErr = apperr.New(apperr.ModelUnavailable, apperr.OpExtract, errors.New("404"))
	rec = do(t, h, http.MethodPost, "/api/sessions/"+id+"/extract", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "Model unavailable", decodeError(t, rec).Error)

	rec = do(t, h, http.MethodGet, "/api/sessions/"+id, nil)
	var session models.Session
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&session))
	assert.Equal(t, "Hello world", session.ExtractedText)
	assert.Empty(t, session.TranslatedText)
}

func TestUploadMultipart(t *testing.T) {
	_, h := newTestHandler(t, &fakeServices{})

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="sign.png"`)
	header.Set("Content-Type", "image/png")
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(pngBytes(t))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp uploadResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "image/png", resp.Image.MIMEType)
	assert.Equal(t, 3, resp.Image.Height)
}

func TestUploadRejectsNonImage(t *testing.T) {
	_, h := newTestHandler(t, &fakeServices{})

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "notes.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("just some text"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid file", decodeError(t, rec).Error)

	rec = do(t, h, http.MethodPost, "/api/upload", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "No image", decodeError(t, rec).Error)
}

func TestUploadFromURLReplacesImage(t *testing.T) {
	data := pngBytes(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	f := &fakeServices{}
	_, h := newTestHandler(t, f)
	id := uploadSession(t, h)
	require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/api/sessions/"+id+"/extract", nil).Code)

	rec := do(t, h, http.MethodPost, "/api/upload", map[string]string{"image_url": srv.URL + "/sign.png", "session_id": id})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/sessions/"+id, nil)
	var session models.Session
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&session))
	assert.Empty(t, session.ExtractedText)
	assert.NotNil(t, session.Image)
}

func TestSessionsListAndDelete(t *testing.T) {
	_, h := newTestHandler(t, &fakeServices{})
	id := uploadSession(t, h)

	rec := do(t, h, http.MethodGet, "/api/sessions", nil)
	var sessions []models.Session
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&sessions))
	require.Len(t, sessions, 1)
	assert.Equal(t, id, sessions[0].ID)

	assert.Equal(t, http.StatusNoContent, do(t, h, http.MethodDelete, "/api/sessions/"+id, nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/api/sessions/"+id, nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodPost, "/api/sessions/"+id+"/extract", nil).Code)
}

func TestLanguages(t *testing.T) {
	_, h := newTestHandler(t, &fakeServices{})

	rec := do(t, h, http.MethodGet, "/api/languages", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Categories []languages.Group `json:"categories"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Categories, len(languages.Categories()))
	assert.Equal(t, "African", resp.Categories[0].Category)

	rec = do(t, h, http.MethodGet, "/api/languages?category=European", nil)
	var group languages.Group
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&group))
	assert.Equal(t, "English", group.Languages[0].Name)
}

func TestI18nSwitch(t *testing.T) {
	f := &fakeServices{}
	_, h := newTestHandler(t, f)

	rec := do(t, h, http.MethodGet, "/api/i18n", nil)
	var resp i18nResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "en", resp.Language)
	assert.Equal(t, "Translate", resp.Messages["translate"])

	rec = do(t, h, http.MethodPut, "/api/i18n", map[string]string{"language": "zh"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "zh", resp.Language)

	id := uploadSession(t, h)
	rec = do(t, h, http.MethodPost, "/api/sessions/"+id+"/improve", nil)
	assert.Equal(t, "没有译文", decodeError(t, rec).Error)

	rec = do(t, h, http.MethodPut, "/api/i18n", map[string]string{"language": "fr"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatic(t *testing.T) {
	h, routes := newTestHandler(t, &fakeServices{})
	require.NoError(t, os.WriteFile(filepath.Join(h.staticDir, "index.html"), []byte("<html>ok</html>"), 0o644))

	rec := do(t, routes, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")

	rec = do(t, routes, http.MethodGet, "/static/../secret", nil)
	assert.NotEqual(t, http.StatusOK, rec.Code)
}

func base64Std(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}
