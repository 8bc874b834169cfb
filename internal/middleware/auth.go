package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/buddyai/buddy-server-go/internal/audit"
	apperrors "github.com/buddyai/buddy-server-go/internal/errors"
	"github.com/buddyai/buddy-server-go/internal/httputil"
	"github.com/buddyai/buddy-server-go/internal/model"
)

type contextKey string

const (
	UserContextKey    contextKey = "user"
	SessionContextKey contextKey = "session"
)

func GetUser(ctx context.Context) *model.User {
	if user, ok := ctx.Value(UserContextKey).(*model.User); ok {
		return user
	}
	return nil
}

func GetSession(ctx context.Context) *model.Session {
	if session, ok := ctx.Value(SessionContextKey).(*model.Session); ok {
		return session
	}
	return nil
}

// WithUser attaches the authenticated user and session to ctx.
func WithUser(ctx context.Context, user *model.User, session *model.Session) context.Context {
	ctx = context.WithValue(ctx, UserContextKey, user)
	return context.WithValue(ctx, SessionContextKey, session)
}

// SessionValidator resolves a raw session token. Unknown tokens yield nils.
type SessionValidator interface {
	ValidateSession(ctx context.Context, token string) (*model.Session, *model.User, error)
}

// SessionMiddleware attaches the caller to the request context when a valid
// session token is presented. Anonymous requests pass through untouched.
type SessionMiddleware struct {
	validator SessionValidator
}

func NewSessionMiddleware(validator SessionValidator) *SessionMiddleware {
	return &SessionMiddleware{validator: validator}
}

func (m *SessionMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := RequestToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		session, user, err := m.validator.ValidateSession(r.Context(), token)
		if err != nil {
			log.Error().Err(err).Msg("session middleware: database error")
			httputil.WriteError(w, apperrors.Internal("Session validation failed").WithCause(err))
			return
		}

		if session == nil || user == nil {
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user, session)))
	})
}

// RequireUser rejects requests without an authenticated user.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetUser(r.Context()) == nil {
			audit.LogFromRequest(r, audit.Event{
				Type:    audit.EventAuthFailure,
				Details: map[string]interface{}{"path": r.URL.Path},
			})
			httputil.WriteError(w, apperrors.Unauthorized("Unauthorized"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequestToken reads the session cookie, falling back to a bearer token for
// non-browser clients.
func RequestToken(r *http.Request) string {
	if token := SessionToken(r); token != "" {
		return token
	}

	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	return ""
}
