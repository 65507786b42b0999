// Package session resolves the signed-in user for a request. The report
// controller only asks whether a session exists; signing in is handled
// elsewhere.
package session

import (
	"context"
	"errors"
	"time"
)

var ErrNoSession = errors.New("no active session")

type Session struct {
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Role      int       `json:"role"`
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
}

// Expired reports whether s has an expiry that is not after now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !s.ExpiresAt.After(now)
}

// Provider is the current-session capability injected into the controller.
type Provider interface {
	Current(ctx context.Context) (Session, error)
}

type tokenKey struct{}

// WithToken stores the caller's session token in ctx.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func TokenFrom(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

// Static always returns the same session. Used by the CLI where the
// operator is trusted.
type Static struct {
	Session Session
}

func (s Static) Current(context.Context) (Session, error) {
	return s.Session, nil
}

// Tokens resolves sessions from a fixed token table.
type Tokens map[string]Session

func (t Tokens) Current(ctx context.Context) (Session, error) {
	token := TokenFrom(ctx)
	if token == "" {
		return Session{}, ErrNoSession
	}
	s, ok := t[token]
	if !ok || s.Expired(time.Now()) {
		return Session{}, ErrNoSession
	}
	return s, nil
}
