package register

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"ticketBooker/internal/lib/api/response"
	"ticketBooker/internal/lib/auth"
	"ticketBooker/internal/lib/logger/sl"
	"ticketBooker/internal/storage"
)

type Request struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	IsAdmin  bool   `json:"is_admin"`
}

type Response struct {
	response.Response
	UserID int64 `json:"user_id"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=UserRegistrar
type UserRegistrar interface {
	CreateUser(ctx context.Context, username, passwordHash string, isAdmin bool) (int64, error)
}

// New registers users. Requests with is_admin set are refused with 403 unless
// allowAdmin is true.
func New(log *slog.Logger, users UserRegistrar, allowAdmin bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.user.register.New"

		log := log.With(slog.String("op", op))

		var req Request

		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			log.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("failed to decode request"))
			return
		}

		log.Info("request body decoded", slog.String("username", req.Username), slog.Bool("is_admin", req.IsAdmin))

		if err = validator.New().Struct(req); err != nil {
			var validateErr validator.ValidationErrors
			errors.As(err, &validateErr)

			log.Error("invalid request", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.ValidationError(validateErr))
			return
		}

		if req.IsAdmin && !allowAdmin {
			log.Warn("admin sign-up refused", slog.String("username", req.Username))
			render.Status(r, http.StatusForbidden)
			render.JSON(w, r, response.Error("admin sign-up is disabled"))
			return
		}

		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			log.Error("failed to hash password", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to register user"))
			return
		}

		userID, err := users.CreateUser(r.Context(), req.Username, hash, req.IsAdmin)
		if errors.Is(err, storage.ErrUserExists) {
			log.Info("username taken", slog.String("username", req.Username))
			render.Status(r, http.StatusConflict)
			render.JSON(w, r, response.Error("username already exists"))
			return
		}
		if err != nil {
			log.Error("failed to add user", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to register user"))
			return
		}

		log.Info("user registered", slog.Int64("user_id", userID))

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, Response{
			Response: response.OK(),
			UserID:   userID,
		})
	}
}
