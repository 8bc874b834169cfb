package handler

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	apperrors "github.com/buddyai/buddy-server-go/internal/errors"
	"github.com/buddyai/buddy-server-go/internal/model"
	"github.com/buddyai/buddy-server-go/internal/service"
)

type CallEventHandler interface {
	Handle(ctx context.Context, event model.CallEvent) (string, error)
}

var _ CallEventHandler = (*service.CallEventService)(nil)

// WebhookHandler receives call platform events. The signature is checked by
// middleware before the body reaches it.
type WebhookHandler struct {
	events CallEventHandler
}

func NewWebhookHandler(events CallEventHandler) *WebhookHandler {
	return &WebhookHandler{events: events}
}

type webhookResponse struct {
	Status string `json:"status"`
}

func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var event model.CallEvent
	if err := decodeBody(r, &event); err != nil {
		writeError(w, err)
		return
	}
	if event.Type == "" {
		writeError(w, apperrors.MissingRequired("type"))
		return
	}

	outcome, err := h.events.Handle(r.Context(), event)
	if err != nil {
		log.Error().Err(err).
			Str("type", event.Type).
			Str("callCid", event.CallCID).
			Msg("failed to handle call event")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, webhookResponse{Status: outcome})
}
