package testutil

import (
	"net/http"
	"time"

	"statedeck/pkg/requestcontext"
)

// WithRequestTime pins the request-scoped "now", as the request time
// middleware would.
func WithRequestTime(req *http.Request, now time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), now))
}

// WithClientMetadata sets the client IP and User-Agent seen by services.
func WithClientMetadata(req *http.Request, clientIP, userAgent string) *http.Request {
	return req.WithContext(requestcontext.WithClientMetadata(req.Context(), clientIP, userAgent))
}
