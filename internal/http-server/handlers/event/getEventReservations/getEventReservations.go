package getEventReservations

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"ticketBooker/internal/lib/api/response"
	"ticketBooker/internal/lib/logger/sl"
	"ticketBooker/internal/models"
	"ticketBooker/internal/storage"
)

type Response struct {
	response.Response
	Event        models.Event              `json:"event"`
	Reservations []models.EventReservation `json:"reservations"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=ReservationsGetter
type ReservationsGetter interface {
	GetEvent(ctx context.Context, id int64) (models.Event, error)
	ListEventReservations(ctx context.Context, eventID int64) ([]models.EventReservation, error)
}

func New(log *slog.Logger, getter ReservationsGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.event.getEventReservations.New"

		log := log.With(slog.String("op", op))

		eventID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			log.Error("invalid event id format", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid event id format"))
			return
		}

		log = log.With(slog.Int64("event_id", eventID))

		event, err := getter.GetEvent(r.Context(), eventID)
		if errors.Is(err, storage.ErrEventNotFound) {
			log.Info("event not found")
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error("event not found"))
			return
		}
		if err != nil {
			log.Error("failed to get event", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to get reservations"))
			return
		}

		reservations, err := getter.ListEventReservations(r.Context(), eventID)
		if err != nil {
			log.Error("failed to list reservations", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to get reservations"))
			return
		}

		responseOK(w, r, event, reservations)
	}
}

func responseOK(w http.ResponseWriter, r *http.Request, event models.Event, reservations []models.EventReservation) {
	if reservations == nil {
		reservations = []models.EventReservation{}
	}

	render.JSON(w, r, Response{
		Response:     response.OK(),
		Event:        event,
		Reservations: reservations,
	})
}
