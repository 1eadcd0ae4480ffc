package createEvent

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"ticketBooker/internal/lib/api/response"
	"ticketBooker/internal/lib/logger/sl"
	"ticketBooker/internal/storage"
)

type Request struct {
	Name    string `json:"name" validate:"required,max=200"`
	Tickets *int   `json:"tickets" validate:"required,min=0"`
}

type Response struct {
	response.Response
	EventID int64 `json:"event_id"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=EventCreator
type EventCreator interface {
	CreateEvent(ctx context.Context, name string, capacity int) (int64, error)
}

func New(log *slog.Logger, events EventCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.event.createEvent.New"

		log := log.With(
			slog.String("op", op),
		)

		var req Request

		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			log.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("failed to decode request"))

			return
		}

		log.Info("request body decoded", slog.Any("request", req))

		if err = validator.New().Struct(req); err != nil {
			var validateErr validator.ValidationErrors
			errors.As(err, &validateErr)

			log.Error("invalid request", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.ValidationError(validateErr))

			return
		}

		eventID, err := events.CreateEvent(r.Context(), req.Name, *req.Tickets)
		if errors.Is(err, storage.ErrInvalidCapacity) {
			log.Info("invalid capacity", slog.Int("tickets", *req.Tickets))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid ticket count"))

			return
		}
		if err != nil {
			log.Error("failed to add event", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to add event"))

			return
		}

		log.Info("event added", slog.Int64("id", eventID))

		render.Status(r, http.StatusCreated)
		responseOK(w, r, eventID)
	}
}

func responseOK(w http.ResponseWriter, r *http.Request, eventID int64) {
	render.JSON(w, r, Response{
		Response: response.OK(),
		EventID:  eventID,
	})
}
