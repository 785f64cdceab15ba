package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/lehigh-university-libraries/imagetranslator/internal/providers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
)

func TestNewRequiresKey(t *testing.T) {
	_, err := New(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
}

func TestClassifyGoogleAPIError(t *testing.T) {
	err := classify(fmt.Errorf("rpc: %w", &googleapi.Error{Code: http.StatusTooManyRequests, Message: "quota"}))
	assert.True(t, providers.IsRateLimit(err))

	err = classify(&googleapi.Error{Code: http.StatusNotFound, Message: "models/gemini-pro is not found"})
	assert.True(t, providers.IsModelUnavailable(err))
	assert.False(t, providers.IsRateLimit(err))
}

func TestClassifyLeavesOtherErrors(t *testing.T) {
	plain := errors.New("connection reset by peer")
	assert.Same(t, plain, classify(plain))
}

func TestHTTPCodeFromGRPC(t *testing.T) {
	assert.Equal(t, 429, httpCodeFromGRPC(codes.ResourceExhausted))
	assert.Equal(t, 404, httpCodeFromGRPC(codes.NotFound))
	assert.Equal(t, 0, httpCodeFromGRPC(codes.Internal))
}
