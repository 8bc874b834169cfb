package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/buddyai/buddy-server-go/internal/audit"
	apperrors "github.com/buddyai/buddy-server-go/internal/errors"
	"github.com/buddyai/buddy-server-go/internal/middleware"
	"github.com/buddyai/buddy-server-go/internal/model"
	"github.com/buddyai/buddy-server-go/internal/schema"
	"github.com/buddyai/buddy-server-go/internal/service"
)

type Authenticator interface {
	SignUp(ctx context.Context, params service.SignUpParams) (*service.AuthResult, error)
	SignIn(ctx context.Context, params service.SignInParams) (*service.AuthResult, error)
	SignOut(ctx context.Context, token string) error
	VerifyEmail(ctx context.Context, email, token string) error
}

var _ Authenticator = (*service.AuthService)(nil)

type AuthHandler struct {
	auth         Authenticator
	isProduction bool
}

func NewAuthHandler(auth Authenticator, isProduction bool) *AuthHandler {
	return &AuthHandler{
		auth:         auth,
		isProduction: isProduction,
	}
}

func (h *AuthHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/sign-up/email", h.SignUp)
	r.Post("/sign-in/email", h.SignIn)
	r.Post("/sign-out", h.SignOut)
	r.Get("/get-session", h.GetSession)
	r.Post("/verify-email", h.VerifyEmail)

	return r
}

type authResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

type sessionResponse struct {
	Session *model.Session `json:"session"`
	User    *model.User    `json:"user"`
}

func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req schema.SignUp
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	ip, ua := clientMeta(r)
	result, err := h.auth.SignUp(r.Context(), service.SignUpParams{
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
		Image:     req.Image,
		IPAddress: ip,
		UserAgent: ua,
	})
	if err != nil {
		if errors.Is(err, service.ErrEmailExists) {
			writeError(w, apperrors.AlreadyExists("User"))
			return
		}
		writeError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{
		Type:      audit.EventSignUp,
		UserID:    result.User.ID,
		SessionID: result.Session.ID,
		Email:     result.User.Email,
	})

	middleware.SetSessionCookie(w, result.Token, h.isProduction)
	writeJSON(w, http.StatusOK, authResponse{Token: result.Token, User: result.User})
}

func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req schema.SignIn
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	ip, ua := clientMeta(r)
	result, err := h.auth.SignIn(r.Context(), service.SignInParams{
		Email:     req.Email,
		Password:  req.Password,
		IPAddress: ip,
		UserAgent: ua,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			audit.LogFromRequest(r, audit.Event{
				Type:  audit.EventSignInFailure,
				Email: req.Email,
			})
			writeError(w, apperrors.InvalidCredentials())
			return
		}
		writeError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{
		Type:      audit.EventSignInSuccess,
		UserID:    result.User.ID,
		SessionID: result.Session.ID,
		Email:     result.User.Email,
	})

	middleware.SetSessionCookie(w, result.Token, h.isProduction)
	writeJSON(w, http.StatusOK, authResponse{Token: result.Token, User: result.User})
}

func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	token := middleware.RequestToken(r)
	if token != "" {
		if err := h.auth.SignOut(r.Context(), token); err != nil {
			log.Error().Err(err).Msg("failed to delete session")
		}
	}

	var userID, sessionID string
	if user := middleware.GetUser(r.Context()); user != nil {
		userID = user.ID
	}
	if session := middleware.GetSession(r.Context()); session != nil {
		sessionID = session.ID
	}
	audit.LogFromRequest(r, audit.Event{
		Type:      audit.EventSignOut,
		UserID:    userID,
		SessionID: sessionID,
	})

	middleware.ClearSessionCookie(w, h.isProduction)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// GetSession returns null for anonymous callers rather than 401 so clients
// can probe their login state.
func (h *AuthHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	session := middleware.GetSession(r.Context())
	if user == nil || session == nil {
		writeJSON(w, http.StatusOK, nil)
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{Session: session, User: user})
}

func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req schema.VerifyEmail
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.auth.VerifyEmail(r.Context(), req.Email, req.Token); err != nil {
		if errors.Is(err, service.ErrInvalidVerification) {
			audit.LogFromRequest(r, audit.Event{
				Type:  audit.EventEmailVerifyFailure,
				Email: req.Email,
			})
			writeError(w, apperrors.ValidationError("Invalid or expired verification token"))
			return
		}
		writeError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{
		Type:  audit.EventEmailVerified,
		Email: req.Email,
	})
	writeJSON(w, http.StatusOK, map[string]bool{"status": true})
}

func clientMeta(r *http.Request) (*string, *string) {
	return optionalString(audit.ClientIP(r)), optionalString(r.UserAgent())
}
