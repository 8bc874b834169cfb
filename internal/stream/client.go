// Package stream talks to the Stream video and chat REST APIs.
package stream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
)

const maxErrorBody = 4 << 10

type Config struct {
	APIKey  string
	Secret  string
	BaseURL string
	Timeout time.Duration
}

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role,omitempty"`
	Image string `json:"image,omitempty"`
}

// APIError is returned for any non-2xx response.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("stream api returned %d: %s", e.StatusCode, e.Body)
}

// UserClaims are the claims Stream expects in a client token.
type UserClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

type client struct {
	name       string
	apiKey     string
	secret     string
	baseURL    string
	usersPath  string
	httpClient *http.Client
}

func newClient(name string, cfg Config, usersPath string) *client {
	return &client{
		name:      name,
		apiKey:    cfg.APIKey,
		secret:    cfg.Secret,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		usersPath: usersPath,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// CreateToken mints a client token for userID. Zero times omit the claim.
func (c *client) CreateToken(userID string, expiresAt, issuedAt time.Time) (string, error) {
	claims := UserClaims{UserID: userID}
	if !expiresAt.IsZero() {
		claims.ExpiresAt = jwt.NewNumericDate(expiresAt)
	}
	if !issuedAt.IsZero() {
		claims.IssuedAt = jwt.NewNumericDate(issuedAt)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(c.secret))
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", c.name, err)
	}
	return signed, nil
}

func (c *client) serverToken() (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"server": true})
	return token.SignedString([]byte(c.secret))
}

// UpsertUsers creates or replaces the given users on the platform.
func (c *client) UpsertUsers(ctx context.Context, users ...User) error {
	if len(users) == 0 {
		return nil
	}
	byID := make(map[string]User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	return c.do(ctx, http.MethodPost, c.usersPath, map[string]any{"users": byID}, nil)
}

func (c *client) do(ctx context.Context, method, path string, body, out any) error {
	if c.apiKey == "" || c.secret == "" {
		return fmt.Errorf("%s credentials are not configured", c.name)
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	endpoint := c.baseURL + path + "?api_key=" + url.QueryEscape(c.apiKey)
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	token, err := c.serverToken()
	if err != nil {
		return fmt.Errorf("sign server token: %w", err)
	}
	req.Header.Set("Authorization", token)
	req.Header.Set("Stream-Auth-Type", "jwt")
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		log.Error().
			Err(err).
			Str("client", c.name).
			Str("path", path).
			Dur("elapsed", elapsed).
			Msg("stream request error")
		return fmt.Errorf("%s request failed: %w", c.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		log.Error().
			Str("client", c.name).
			Str("path", path).
			Int("status", resp.StatusCode).
			Dur("elapsed", elapsed).
			Msg("stream request failed")
		return &APIError{StatusCode: resp.StatusCode, Body: string(snippet)}
	}

	log.Debug().
		Str("client", c.name).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", elapsed).
		Msg("stream request successful")

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode %s response: %w", c.name, err)
		}
	}
	return nil
}
