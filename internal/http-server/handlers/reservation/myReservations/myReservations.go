package myReservations

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"ticketBooker/internal/http-server/middleware/mwauth"
	"ticketBooker/internal/lib/api/response"
	"ticketBooker/internal/lib/logger/sl"
	"ticketBooker/internal/models"
)

type Response struct {
	response.Response
	Reservations []models.UserReservation `json:"reservations"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=UserReservationsGetter
type UserReservationsGetter interface {
	ListUserReservations(ctx context.Context, userID int64) ([]models.UserReservation, error)
}

func New(log *slog.Logger, getter UserReservationsGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.reservation.myReservations.New"

		log := log.With(slog.String("op", op))

		who, ok := mwauth.IdentityFrom(r.Context())
		if !ok {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, response.Error("login required"))
			return
		}

		reservations, err := getter.ListUserReservations(r.Context(), who.UserID)
		if err != nil {
			log.Error("failed to list reservations", slog.Int64("user_id", who.UserID), sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to get reservations"))
			return
		}

		if reservations == nil {
			reservations = []models.UserReservation{}
		}

		render.JSON(w, r, Response{
			Response:     response.OK(),
			Reservations: reservations,
		})
	}
}
