package getAllUsers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"ticketBooker/internal/lib/api/response"
	"ticketBooker/internal/lib/logger/sl"
	"ticketBooker/internal/models"
)

type UsersResponse struct {
	response.Response
	Users []models.User `json:"users"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=UsersGetter
type UsersGetter interface {
	ListUsers(ctx context.Context) ([]models.User, error)
}

func New(log *slog.Logger, usersGetter UsersGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.user.getAllUsers.New"

		log := log.With(slog.String("op", op))

		users, err := usersGetter.ListUsers(r.Context())
		if err != nil {
			log.Error("failed to get users", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to get users"))
			return
		}

		if users == nil {
			users = []models.User{}
		}

		render.JSON(w, r, UsersResponse{
			Response: response.OK(),
			Users:    users,
		})
	}
}
