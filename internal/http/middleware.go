package http

import (
	"context"
	"net"
	"net/http"

	"github.com/google/uuid"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	visitorIDKey
)

const visitorCookieMaxAge = 365 * 24 * 60 * 60

const maxRequestIDLength = 64

// RequestIDMiddleware tags each request with an id for log correlation. An
// inbound X-Request-ID from a proxy is kept when it is short and printable.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if !validRequestID(requestID) {
			requestID = uuid.NewString()
		}

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLength {
		return false
	}
	for _, c := range id {
		if c < '!' || c > '~' {
			return false
		}
	}
	return true
}

// VisitorMiddleware identifies the visitor by cookie, issuing a new id when
// the cookie is missing or malformed. The id scopes all durable state.
func VisitorMiddleware(cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			visitorID := ""
			if c, err := r.Cookie(cookieName); err == nil {
				if _, errParse := uuid.Parse(c.Value); errParse == nil {
					visitorID = c.Value
				}
			}
			if visitorID == "" {
				visitorID = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     cookieName,
					Value:    visitorID,
					Path:     "/",
					MaxAge:   visitorCookieMaxAge,
					HttpOnly: true,
					Secure:   r.TLS != nil,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := context.WithValue(r.Context(), visitorIDKey, visitorID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func getVisitorID(ctx context.Context) string {
	if visitorID, ok := ctx.Value(visitorIDKey).(string); ok {
		return visitorID
	}
	return ""
}

func getRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(requestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// clientIP expects chi's RealIP middleware to have rewritten RemoteAddr.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
