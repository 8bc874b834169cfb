package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSRFMiddleware(t *testing.T) {
	handler := NewCSRFMiddleware(false).Handler(okHandler())

	t.Run("issues cookie on safe request", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/trpc/agents.getMany", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, CSRFCookieName, cookies[0].Name)
		assert.False(t, cookies[0].HttpOnly)
	})

	t.Run("rejects mutation without header", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/trpc/agents.create", nil)
		req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: "abc"})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("rejects mismatched header", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/trpc/agents.create", nil)
		req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: "abc"})
		req.Header.Set(CSRFHeaderName, "xyz")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("accepts matching header", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/trpc/agents.create", nil)
		req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: "abc"})
		req.Header.Set(CSRFHeaderName, "abc")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("bearer clients are exempt", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/trpc/agents.create", nil)
		req.Header.Set("Authorization", "Bearer tok")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestBodyLimitMiddleware(t *testing.T) {
	handler := NewBodyLimitMiddleware(8).Handler(okHandler())

	req := httptest.NewRequest("POST", "/", nil)
	req.ContentLength = 100
	req.Body = http.NoBody
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Contains(t, rec.Body.String(), "PAYLOAD_TOO_LARGE")
}
