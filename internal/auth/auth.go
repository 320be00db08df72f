// Package auth verifies caller identity against a Supabase project. The
// middleware is optional: when disabled in config, requests pass through
// untouched.
package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/supabase-community/supabase-go"

	"github.com/chatkurd/chatkurd/internal/config"
	errs "github.com/chatkurd/chatkurd/internal/errors"
)

// Verifier checks bearer tokens against Supabase's auth endpoint.
type Verifier struct {
	client *supabase.Client
	log    *slog.Logger
}

func NewVerifier(cfg config.AuthConfig, log *slog.Logger) (*Verifier, error) {
	client, err := supabase.NewClient(cfg.URL, cfg.AnonKey, nil)
	if err != nil {
		return nil, errs.NewConfigError("failed to create supabase client", err)
	}

	return &Verifier{
		client: client,
		log:    log.With("component", "auth"),
	}, nil
}

// Verify confirms the token belongs to a live Supabase session.
func (v *Verifier) Verify(token string) error {
	if _, err := v.client.Auth.WithToken(token).GetUser(); err != nil {
		return errs.NewUnauthorizedError("token verification failed", err)
	}
	return nil
}

// Middleware rejects requests without a valid bearer token. It sits between
// the request logger and the chat handler, so rejected requests are still
// logged with their request ID.
func (v *Verifier) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			v.log.DebugContext(r.Context(), "missing bearer token")
			writeUnauthorized(w)
			return
		}

		if err := v.Verify(token); err != nil {
			v.log.WarnContext(r.Context(), "rejected request", "error", err)
			writeUnauthorized(w)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	const prefix = "Bearer "

	header := r.Header.Get("Authorization")
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"message":"Unauthorized"}` + "\n"))
}
