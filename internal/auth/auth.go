// Package auth resolves the caller of a request to a user identity.
package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/christopherklint97/hourly/internal/config"
)

// ErrUnauthenticated is returned when no identity can be established.
var ErrUnauthenticated = errors.New("unauthenticated")

type User struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}

// Authenticator turns a bearer token into a User.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*User, error)
}

// Static authenticates every caller as the same user. It backs local
// development and the terminal surfaces, which have no session token.
type Static struct {
	User User
}

func NewStatic(userID string) *Static {
	return &Static{User: User{ID: userID}}
}

func (s *Static) Authenticate(ctx context.Context, token string) (*User, error) {
	if s.User.ID == "" {
		return nil, ErrUnauthenticated
	}
	u := s.User
	return &u, nil
}

// DefaultDevUserID is the local identity when dev_user_id is not set.
const DefaultDevUserID = "local-user"

// DevUserID returns the configured dev user or DefaultDevUserID.
func DevUserID(cfg config.AuthConfig) string {
	if id := strings.TrimSpace(cfg.DevUserID); id != "" {
		return id
	}
	return DefaultDevUserID
}

// FromConfig selects the authenticator for the HTTP API. Supabase wins when
// configured; otherwise callers are accepted as the dev user only in dev
// mode, and rejected in every other case.
func FromConfig(cfg config.AuthConfig, logger *slog.Logger) Authenticator {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	switch {
	case cfg.SupabaseURL != "":
		return NewSupabase(cfg.SupabaseURL, cfg.SupabaseAnonKey, logger)
	case cfg.DevMode:
		id := DevUserID(cfg)
		logger.Warn("dev mode: every request runs as the dev user", "user", id)
		return NewStatic(id)
	default:
		logger.Warn("no supabase_url configured and dev mode off, authenticated routes will answer 401")
		return NewStatic("")
	}
}

// BearerToken extracts the token from an "Authorization: Bearer ..." header.
func BearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}
