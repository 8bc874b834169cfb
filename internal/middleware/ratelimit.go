package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/buddyai/buddy-server-go/internal/audit"
	apperrors "github.com/buddyai/buddy-server-go/internal/errors"
	"github.com/buddyai/buddy-server-go/internal/httputil"
	"github.com/buddyai/buddy-server-go/internal/service"
)

// Limiter is satisfied by service.RateLimiter.
type Limiter interface {
	Check(ctx context.Context, scope, subject string, limit int, window time.Duration) (service.RateLimitDecision, error)
}

// KeyFunc picks the subject a request is counted against. An empty subject
// skips limiting.
type KeyFunc func(r *http.Request) string

// ByIP counts requests per client address.
func ByIP(r *http.Request) string {
	return audit.ClientIP(r)
}

// ByUser counts requests per signed-in user.
func ByUser(r *http.Request) string {
	if user := GetUser(r.Context()); user != nil {
		return user.ID
	}
	return ""
}

type RateLimitMiddleware struct {
	limiter  Limiter
	scope    string
	limit    int
	window   time.Duration
	key      KeyFunc
	failOpen bool
}

// NewRateLimitMiddleware builds a limiter for one scope. With failOpen the
// request proceeds when Redis is unavailable; otherwise it is rejected.
func NewRateLimitMiddleware(limiter Limiter, scope string, limit int, window time.Duration, key KeyFunc, failOpen bool) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		limiter:  limiter,
		scope:    scope,
		limit:    limit,
		window:   window,
		key:      key,
		failOpen: failOpen,
	}
}

func (m *RateLimitMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject := m.key(r)
		if subject == "" {
			next.ServeHTTP(w, r)
			return
		}

		decision, err := m.limiter.Check(r.Context(), m.scope, subject, m.limit, m.window)
		if err != nil {
			if m.failOpen {
				log.Warn().Err(err).Str("scope", m.scope).Msg("rate limit check failed, allowing request")
				next.ServeHTTP(w, r)
				return
			}
			log.Warn().Err(err).Str("scope", m.scope).Msg("rate limit check failed, denying request")
			w.Header().Set("Retry-After", strconv.Itoa(int(m.window.Seconds())))
			httputil.WriteError(w, apperrors.RateLimitExceeded())
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(decision.ResetAt.Unix(), 10))

		if !decision.Allowed {
			secondsLeft := int(time.Until(decision.ResetAt).Seconds()) + 1
			if secondsLeft < 1 {
				secondsLeft = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(secondsLeft))
			audit.LogFromRequest(r, audit.Event{
				Type:    audit.EventRateLimitExceed,
				Details: map[string]interface{}{"scope": m.scope, "subject": subject},
			})
			httputil.WriteError(w, apperrors.RateLimitExceeded())
			return
		}

		next.ServeHTTP(w, r)
	})
}
