package myReservations

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"ticketBooker/internal/http-server/handlers/reservation/myReservations/mocks"
	"ticketBooker/internal/http-server/middleware/mwauth"
	"ticketBooker/internal/lib/logger/handlers/slogdiscard"
	"ticketBooker/internal/models"
)

func TestMyReservationsHandler(t *testing.T) {
	t.Parallel()

	logger := slogdiscard.NewDiscardLogger()
	carol := models.Identity{UserID: 3, Username: "carol"}
	ts := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	testCases := []struct {
		name           string
		anonymous      bool
		mockSetup      func(m *mocks.UserReservationsGetter)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "Success",
			mockSetup: func(m *mocks.UserReservationsGetter) {
				m.On("ListUserReservations", mock.Anything, int64(3)).Return([]models.UserReservation{
					{ReservationID: 1, EventID: 4, EventName: "Concert", CreatedAt: ts},
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody: `{"status":"OK","reservations":[{"reservation_id":1,"event_id":4,` +
				`"event_name":"Concert","created_at":"2025-01-02T03:04:05Z"}]}`,
		},
		{
			name: "Nothing reserved",
			mockSetup: func(m *mocks.UserReservationsGetter) {
				m.On("ListUserReservations", mock.Anything, int64(3)).Return(nil, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"OK","reservations":[]}`,
		},
		{
			name:           "Anonymous",
			anonymous:      true,
			mockSetup:      func(m *mocks.UserReservationsGetter) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"status":"Error","error":"login required"}`,
		},
		{
			name: "Storage error",
			mockSetup: func(m *mocks.UserReservationsGetter) {
				m.On("ListUserReservations", mock.Anything, int64(3)).Return(nil, errors.New("timeout"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"failed to get reservations"}`,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			getter := mocks.NewUserReservationsGetter(t)
			tc.mockSetup(getter)

			req := httptest.NewRequest(http.MethodGet, "/my_reservations", nil)
			if !tc.anonymous {
				req = req.WithContext(mwauth.WithIdentity(req.Context(), carol))
			}

			rr := httptest.NewRecorder()
			New(logger, getter).ServeHTTP(rr, req)

			assert.Equal(t, tc.expectedStatus, rr.Code)
			assert.JSONEq(t, tc.expectedBody, rr.Body.String())
		})
	}
}
