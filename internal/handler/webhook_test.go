package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/buddyai/buddy-server-go/internal/model"
	"github.com/buddyai/buddy-server-go/internal/service"
)

func TestWebhookHandler(t *testing.T) {
	t.Run("applies event", func(t *testing.T) {
		events := new(mockCallEvents)
		h := NewWebhookHandler(events)
		events.On("Handle", mock.Anything, mock.MatchedBy(func(e model.CallEvent) bool {
			return e.Type == model.CallEventSessionStarted && e.MeetingID() == "m1"
		})).Return(service.CallEventApplied, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/webhooks/stream",
			strings.NewReader(`{"type":"call.session_started","call_cid":"default:m1"}`))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"applied"}`, rec.Body.String())
		events.AssertExpectations(t)
	})

	t.Run("acknowledges ignored event", func(t *testing.T) {
		events := new(mockCallEvents)
		h := NewWebhookHandler(events)
		events.On("Handle", mock.Anything, mock.Anything).Return(service.CallEventIgnored, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/webhooks/stream",
			strings.NewReader(`{"type":"call.session_ended","call_cid":"default:m1"}`))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ignored"}`, rec.Body.String())
	})

	t.Run("rejects malformed payload", func(t *testing.T) {
		events := new(mockCallEvents)
		h := NewWebhookHandler(events)

		req := httptest.NewRequest(http.MethodPost, "/api/webhooks/stream", strings.NewReader(`not json`))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		events.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
	})

	t.Run("rejects missing type", func(t *testing.T) {
		h := NewWebhookHandler(new(mockCallEvents))

		req := httptest.NewRequest(http.MethodPost, "/api/webhooks/stream", strings.NewReader(`{"call_cid":"default:m1"}`))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("storage failure asks for retry", func(t *testing.T) {
		events := new(mockCallEvents)
		h := NewWebhookHandler(events)
		events.On("Handle", mock.Anything, mock.Anything).Return("", errors.New("connection refused"))

		req := httptest.NewRequest(http.MethodPost, "/api/webhooks/stream",
			strings.NewReader(`{"type":"call.session_ended","call_cid":"default:m1"}`))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "connection refused")
	})
}
