package ocr

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/lehigh-university-libraries/imagetranslator/internal/apperr"
	"github.com/lehigh-university-libraries/imagetranslator/internal/providers"
	"github.com/lehigh-university-libraries/imagetranslator/internal/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	calls   int
	configs []providers.Config
	errs    []error
	text    string
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Generate(_ context.Context, config providers.Config) (string, error) {
	f.calls++
	f.configs = append(f.configs, config)
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return "", err
		}
	}
	return f.text, nil
}

func noSleep(context.Context, time.Duration) error { return nil }

func newService(p providers.Provider) *Service {
	policy := retry.DefaultPolicy(nil)
	policy.Sleep = noSleep
	return NewService(p, "gemini-2.0-flash", policy)
}

var rateLimited = &providers.StatusError{Provider: "fake", Code: http.StatusTooManyRequests}

func TestExtractStripsPrefix(t *testing.T) {
	p := &fakeProvider{text: "Hello 你好"}

	got, err := newService(p).Extract(context.Background(), "data:image/png;base64,aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, "Hello 你好", got)

	require.Len(t, p.configs, 1)
	sent := p.configs[0]
	require.NotNil(t, sent.Image)
	assert.Equal(t, []byte("hello"), sent.Image.Data)
	assert.NotContains(t, string(sent.Image.Data), "base64")
	assert.Equal(t, "image/png", sent.Image.MIMEType)
	assert.Equal(t, "gemini-2.0-flash", sent.Model)
	assert.Contains(t, sent.Prompt, "multiple languages")
}

func TestExtractRetriesRateLimit(t *testing.T) {
	p := &fakeProvider{text: "ok", errs: []error{rateLimited, rateLimited}}

	got, err := newService(p).Extract(context.Background(), "data:image/jpeg;base64,aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 3, p.calls)
}

func TestExtractErrorMapping(t *testing.T) {
	tests := []struct {
		name      string
		errs      []error
		wantKind  apperr.Kind
		wantCalls int
	}{
		{"quota exhausted", []error{rateLimited, rateLimited, rateLimited, rateLimited}, apperr.RateLimitExceeded, 4},
		{"model missing", []error{&providers.StatusError{Provider: "fake", Code: http.StatusNotFound}}, apperr.ModelUnavailable, 1},
		{"deprecated", []error{errors.New("model gemini-pro is deprecated")}, apperr.ModelUnavailable, 1},
		{"other", []error{errors.New("connection reset")}, apperr.OperationFailed, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &fakeProvider{errs: tt.errs}
			_, err := newService(p).Extract(context.Background(), "data:image/jpeg;base64,aGVsbG8=")

			var appErr *apperr.Error
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.wantKind, appErr.Kind)
			assert.Equal(t, apperr.OpExtract, appErr.Op)
			assert.ErrorIs(t, err, tt.errs[0])
			assert.Equal(t, tt.wantCalls, p.calls)
		})
	}
}

func TestExtractMalformedDataURI(t *testing.T) {
	p := &fakeProvider{}
	_, err := newService(p).Extract(context.Background(), "not-a-data-uri")
	assert.Equal(t, apperr.InvalidInput, apperr.KindOf(err))
	assert.Zero(t, p.calls)
}
