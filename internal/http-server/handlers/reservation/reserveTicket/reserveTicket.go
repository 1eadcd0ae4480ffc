package reserveTicket

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
	Message       string `json:"message,omitempty"`
	ReservationID int64  `json:"reservation_id,omitempty"`
	TicketsLeft   int    `json:"tickets_left"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=TicketReserver
type TicketReserver interface {
	Reserve(ctx context.Context, who models.Identity, eventID int64) (reservation.ReserveResult, error)
}

func New(log *slog.Logger, reserver TicketReserver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.reservation.reserveTicket.New"

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

		res, err := reserver.Reserve(r.Context(), who, eventID)
		if err != nil {
			status, msg := statusFor(err)
			render.Status(r, status)
			render.JSON(w, r, response.Error(msg))
			return
		}

		responseOK(w, r, res)
	}
}

// statusFor maps engine outcomes to HTTP; the engine has already logged them.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, reservation.ErrNotFound):
		return http.StatusNotFound, "event not found"
	case errors.Is(err, reservation.ErrSoldOut):
		return http.StatusConflict, "tickets sold out"
	case errors.Is(err, reservation.ErrAlreadyReserved):
		return http.StatusConflict, "event already reserved"
	case errors.Is(err, reservation.ErrUnknownUser):
		return http.StatusUnauthorized, "user does not exist"
	case errors.Is(err, reservation.ErrTimeout):
		return http.StatusServiceUnavailable, "reservation timed out, try again"
	default:
		return http.StatusInternalServerError, "failed to reserve ticket"
	}
}

func responseOK(w http.ResponseWriter, r *http.Request, res reservation.ReserveResult) {
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, Response{
		Response:      response.OK(),
		Message:       "ticket reserved",
		ReservationID: res.Reservation.ID,
		TicketsLeft:   res.TicketsLeft,
	})
}
