package getEventInfo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ticketBooker/internal/http-server/handlers/event/getEventInfo/mocks"
	"ticketBooker/internal/lib/logger/handlers/slogdiscard"
	"ticketBooker/internal/models"
	"ticketBooker/internal/storage"
)

func TestGetEventInfoHandler(t *testing.T) {
	t.Parallel()

	logger := slogdiscard.NewDiscardLogger()

	testEvent := models.Event{
		ID:          1,
		Name:        "Concert",
		Capacity:    2,
		TicketsLeft: 1,
		CreatedAt:   time.Date(2024, 12, 25, 18, 0, 0, 0, time.UTC),
	}

	testCases := []struct {
		name           string
		eventID        string
		mockSetup      func(m *mocks.EventGetter)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:    "Success",
			eventID: "1",
			mockSetup: func(m *mocks.EventGetter) {
				m.On("GetEvent", mock.Anything, int64(1)).Return(testEvent, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody: `{"status":"OK","event":{"id":1,"name":"Concert","capacity":2,` +
				`"tickets_left":1,"created_at":"2024-12-25T18:00:00Z"}}`,
		},
		{
			name:           "Invalid event ID format",
			eventID:        "abc",
			mockSetup:      func(m *mocks.EventGetter) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"invalid event id format"}`,
		},
		{
			name:    "Event not found",
			eventID: "999",
			mockSetup: func(m *mocks.EventGetter) {
				m.On("GetEvent", mock.Anything, int64(999)).
					Return(models.Event{}, fmt.Errorf("storage.postgres.GetEvent: %w", storage.ErrEventNotFound))
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"status":"Error","error":"event not found"}`,
		},
		{
			name:    "Storage error",
			eventID: "1",
			mockSetup: func(m *mocks.EventGetter) {
				m.On("GetEvent", mock.Anything, int64(1)).Return(models.Event{}, errors.New("connection refused"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"failed to get event information"}`,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			getter := mocks.NewEventGetter(t)
			tc.mockSetup(getter)

			router := chi.NewRouter()
			router.Get("/events/{id}", New(logger, getter))

			req, err := http.NewRequest(http.MethodGet, "/events/"+tc.eventID, nil)
			require.NoError(t, err)

			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			assert.Equal(t, tc.expectedStatus, rr.Code)
			assert.JSONEq(t, tc.expectedBody, rr.Body.String())
		})
	}
}

func TestHandlerWithoutChiContext(t *testing.T) {
	t.Parallel()

	handler := New(slogdiscard.NewDiscardLogger(), mocks.NewEventGetter(t))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rctx := chi.NewRouteContext()
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "event id is required")
}
