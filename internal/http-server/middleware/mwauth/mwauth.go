// Package mwauth resolves the bearer token into the caller's identity.
package mwauth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/render"

	"ticketBooker/internal/lib/api/response"
	"ticketBooker/internal/lib/logger/sl"
	"ticketBooker/internal/models"
)

type ctxKey struct{}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=TokenParser
type TokenParser interface {
	Parse(raw string) (models.Identity, error)
}

// New rejects requests without a valid bearer token with 401.
func New(log *slog.Logger, parser TokenParser) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		log := log.With(slog.String("component", "middleware/auth"))

		fn := func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(raw) == "" {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("missing bearer token"))
				return
			}

			who, err := parser.Parse(strings.TrimSpace(raw))
			if err != nil {
				log.Info("token rejected", sl.Err(err))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("invalid token"))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), who)))
		}

		return http.HandlerFunc(fn)
	}
}

// RequireAdmin must run after New.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		who, ok := IdentityFrom(r.Context())
		if !ok {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, response.Error("missing bearer token"))
			return
		}
		if !who.IsAdmin {
			render.Status(r, http.StatusForbidden)
			render.JSON(w, r, response.Error("admin only"))
			return
		}

		next.ServeHTTP(w, r)
	})
}

func WithIdentity(ctx context.Context, who models.Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, who)
}

func IdentityFrom(ctx context.Context) (models.Identity, bool) {
	who, ok := ctx.Value(ctxKey{}).(models.Identity)
	return who, ok
}
