package providers

import (
	"errors"
	"net/http"
	"strings"
)

// IsRateLimit reports whether err is the provider throttling signal (429).
func IsRateLimit(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == http.StatusTooManyRequests
}

// IsModelUnavailable reports whether the requested model was rejected as
// missing or deprecated.
func IsModelUnavailable(err error) bool {
	if err == nil {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) && se.Code == http.StatusNotFound {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "not found") || strings.Contains(msg, "deprecated")
}
