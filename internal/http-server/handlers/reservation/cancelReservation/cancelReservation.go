package cancelReservation

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"ticketBooker/internal/http-server/middleware/mwauth"
	"ticketBooker/internal/lib/api/response"
	"ticketBooker/internal/lib/logger/sl"
	"ticketBooker/internal/models"
	"ticketBooker/internal/reservation"
)

type Response struct {
	response.Response
	Cancelled   int64 `json:"cancelled"`
	TicketsLeft int   `json:"tickets_left"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=ReservationCanceller
type ReservationCanceller interface {
	Cancel(ctx context.Context, who models.Identity, eventID int64) (reservation.CancelResult, error)
}

func New(log *slog.Logger, canceller ReservationCanceller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.reservation.cancelReservation.New"

		log := log.With(slog.String("op", op))

		who, ok := mwauth.IdentityFrom(r.Context())
		if !ok {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, response.Error("login required"))
			return
		}

		eventID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			log.Error("invalid event id format", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid event id format"))
			return
		}

		res, err := canceller.Cancel(r.Context(), who, eventID)
		switch {
		case err == nil:
		case errors.Is(err, reservation.ErrNoSuchReservation):
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error("no reservation for this event"))
			return
		case errors.Is(err, reservation.ErrUnknownUser):
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, response.Error("user does not exist"))
			return
		case errors.Is(err, reservation.ErrTimeout):
			render.Status(r, http.StatusServiceUnavailable)
			render.JSON(w, r, response.Error("cancellation timed out, try again"))
			return
		default:
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to cancel reservation"))
			return
		}

		render.JSON(w, r, Response{
			Response:    response.OK(),
			Cancelled:   res.Cancelled,
			TicketsLeft: res.TicketsLeft,
		})
	}
}
