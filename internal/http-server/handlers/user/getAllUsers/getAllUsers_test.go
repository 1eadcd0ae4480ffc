package getAllUsers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"ticketBooker/internal/http-server/handlers/user/getAllUsers/mocks"
	"ticketBooker/internal/lib/logger/handlers/slogdiscard"
	"ticketBooker/internal/models"
)

func TestGetAllUsersHandler(t *testing.T) {
	t.Parallel()

	logger := slogdiscard.NewDiscardLogger()
	ts := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	testCases := []struct {
		name           string
		mockSetup      func(m *mocks.UsersGetter)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "Success hides password hashes",
			mockSetup: func(m *mocks.UsersGetter) {
				m.On("ListUsers", mock.Anything).Return([]models.User{
					{ID: 1, Username: "root", PasswordHash: "$2a$10$secret", IsAdmin: true, CreatedAt: ts},
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody: `{"status":"OK","users":[{"id":1,"username":"root","is_admin":true,` +
				`"created_at":"2025-03-01T00:00:00Z"}]}`,
		},
		{
			name: "Storage error",
			mockSetup: func(m *mocks.UsersGetter) {
				m.On("ListUsers", mock.Anything).Return(nil, errors.New("db down"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"failed to get users"}`,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			getter := mocks.NewUsersGetter(t)
			tc.mockSetup(getter)

			rr := httptest.NewRecorder()
			New(logger, getter).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/users", nil))

			assert.Equal(t, tc.expectedStatus, rr.Code)
			assert.JSONEq(t, tc.expectedBody, rr.Body.String())
		})
	}
}
