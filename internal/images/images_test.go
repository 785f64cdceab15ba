package images

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.White)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestFromBytes(t *testing.T) {
	img, err := FromBytes(pngBytes(t, 4, 3))
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.MIMEType)
	assert.Equal(t, 4, img.Width)
	assert.Equal(t, 3, img.Height)
}

func TestFromBytesRejectsText(t *testing.T) {
	_, err := FromBytes([]byte("just some text"))
	assert.ErrorIs(t, err, ErrNotImage)
}

func TestFromBytesRejectsLarge(t *testing.T) {
	_, err := FromBytes(make([]byte, MaxSize))
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestSplitDataURI(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		wantMIME string
		wantData string
		wantErr  bool
	}{
		{"png", "data:image/png;base64,AAAA", "image/png", "AAAA", false},
		{"no mime", "data:;base64,AAAA", "image/jpeg", "AAAA", false},
		{"non image mime", "data:text/plain;base64,AAAA", "image/jpeg", "AAAA", false},
		{"no comma", "AAAA", "", "", true},
		{"empty payload", "data:image/png;base64,", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mimeType, payload, err := SplitDataURI(tt.uri)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedDataURI)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantMIME, mimeType)
			assert.Equal(t, tt.wantData, payload)
		})
	}
}

func TestDataURIRoundTrip(t *testing.T) {
	raw := pngBytes(t, 2, 2)
	img, err := FromBytes(raw)
	require.NoError(t, err)

	parsed, err := ParseDataURI(img.DataURI())
	require.NoError(t, err)
	assert.Equal(t, raw, parsed.Data)
	assert.Equal(t, "image/png", parsed.MIMEType)
}

func TestParseDataURIBadBase64(t *testing.T) {
	_, err := ParseDataURI("data:image/png;base64,@@@")
	assert.ErrorIs(t, err, ErrMalformedDataURI)
}

func TestFetcherLoad(t *testing.T) {
	raw := pngBytes(t, 5, 5)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.png" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(raw)
	}))
	defer server.Close()

	path := filepath.Join(t.TempDir(), "page.png")
	require.NoError(t, os.WriteFile(path, raw, 0644))

	f := NewFetcher()
	for _, src := range []string{server.URL + "/page.png", path, "data:image/png;base64," + base64.StdEncoding.EncodeToString(raw)} {
		img, err := f.Load(context.Background(), src)
		require.NoError(t, err, src)
		assert.Equal(t, 5, img.Width, src)
	}

	_, err := f.Load(context.Background(), server.URL+"/missing.png")
	assert.Error(t, err)

	_, err = f.Load(context.Background(), filepath.Join(t.TempDir(), "nope.png"))
	assert.Error(t, err)
}
