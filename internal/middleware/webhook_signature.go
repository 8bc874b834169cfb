package middleware

import (
	"bytes"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/buddyai/buddy-server-go/internal/audit"
	apperrors "github.com/buddyai/buddy-server-go/internal/errors"
	"github.com/buddyai/buddy-server-go/internal/httputil"
	"github.com/buddyai/buddy-server-go/internal/util"
)

const WebhookSignatureHeader = "X-Signature"

// WebhookSignatureMiddleware verifies the hex HMAC-SHA256 of the raw body,
// keyed with the video platform secret. The body is restored for the handler.
type WebhookSignatureMiddleware struct {
	secret string
}

func NewWebhookSignatureMiddleware(secret string) *WebhookSignatureMiddleware {
	return &WebhookSignatureMiddleware{secret: secret}
}

func (m *WebhookSignatureMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.secret == "" {
			log.Warn().Msg("webhook rejected: video platform secret is not configured")
			httputil.WriteError(w, apperrors.NotConfigured("Video webhooks"))
			return
		}

		signature := r.Header.Get(WebhookSignatureHeader)
		if signature == "" {
			m.reject(w, r, "missing signature header")
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			log.Error().Err(err).Msg("webhook signature middleware: failed to read body")
			httputil.WriteError(w, apperrors.ValidationError("Failed to read request body").WithCause(err))
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		computed := util.HmacSHA256Bytes(m.secret, body)
		if !util.ConstantTimeEqual(computed, signature) {
			m.reject(w, r, "invalid signature")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (m *WebhookSignatureMiddleware) reject(w http.ResponseWriter, r *http.Request, reason string) {
	audit.LogFromRequest(r, audit.Event{
		Type:    audit.EventWebhookSignatureFailure,
		Details: map[string]interface{}{"reason": reason},
	})
	httputil.WriteError(w, apperrors.InvalidSignature())
}
