package updateEvent

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"ticketBooker/internal/lib/api/response"
	"ticketBooker/internal/lib/logger/sl"
	"ticketBooker/internal/models"
	"ticketBooker/internal/storage"
)

// Request carries the fields to change. Omitted fields keep their value.
type Request struct {
	Name    *string `json:"name,omitempty" validate:"omitempty,max=200"`
	Tickets *int    `json:"tickets,omitempty" validate:"omitempty,min=0"`
}

type Response struct {
	response.Response
	Event models.Event `json:"event"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=EventUpdater
type EventUpdater interface {
	UpdateEvent(ctx context.Context, id int64, name *string, capacity *int) (models.Event, error)
}

func New(log *slog.Logger, events EventUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.event.updateEvent.New"

		log := log.With(slog.String("op", op))

		eventID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			log.Error("invalid event id format", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid event id format"))
			return
		}

		log = log.With(slog.Int64("event_id", eventID))

		var req Request

		if err = render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("failed to decode request"))
			return
		}

		if err = validator.New().Struct(req); err != nil {
			var validateErr validator.ValidationErrors
			errors.As(err, &validateErr)

			log.Error("invalid request", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.ValidationError(validateErr))
			return
		}

		if req.Name == nil && req.Tickets == nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("nothing to update"))
			return
		}
		if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("field name must not be empty"))
			return
		}

		event, err := events.UpdateEvent(r.Context(), eventID, req.Name, req.Tickets)
		switch {
		case errors.Is(err, storage.ErrEventNotFound):
			log.Info("event not found")
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error("event not found"))
			return
		case errors.Is(err, storage.ErrInvalidCapacity):
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid ticket count"))
			return
		case errors.Is(err, storage.ErrCapacityTooLow):
			log.Info("capacity below reserved tickets", slog.Int("tickets", *req.Tickets))
			render.Status(r, http.StatusConflict)
			render.JSON(w, r, response.Error("capacity below reserved tickets"))
			return
		case err != nil:
			log.Error("failed to update event", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to update event"))
			return
		}

		log.Info("event updated",
			slog.Int("capacity", event.Capacity),
			slog.Int("tickets_left", event.TicketsLeft),
		)

		render.JSON(w, r, Response{
			Response: response.OK(),
			Event:    event,
		})
	}
}
