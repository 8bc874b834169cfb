package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	apperrors "github.com/buddyai/buddy-server-go/internal/errors"
	"github.com/buddyai/buddy-server-go/internal/httputil"
	"github.com/buddyai/buddy-server-go/internal/schema"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	httputil.WriteJSON(w, status, data)
}

func writeError(w http.ResponseWriter, err error) {
	httputil.WriteError(w, err)
}

// decodeBody reads a JSON body into dst and validates it.
func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return apperrors.PayloadTooLarge()
		case errors.Is(err, io.EOF):
			return apperrors.ValidationError("request body is required")
		default:
			return apperrors.ValidationError("invalid JSON body").WithCause(err)
		}
	}
	return schema.Validate(dst)
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
