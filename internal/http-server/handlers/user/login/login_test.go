package login

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ticketBooker/internal/http-server/handlers/user/login/mocks"
	"ticketBooker/internal/lib/auth"
	"ticketBooker/internal/lib/logger/handlers/slogdiscard"
	"ticketBooker/internal/models"
	"ticketBooker/internal/storage"
)

func TestLoginHandler(t *testing.T) {
	t.Parallel()

	logger := slogdiscard.NewDiscardLogger()

	hash, err := auth.HashPassword("secret1")
	require.NoError(t, err)

	admin := models.User{ID: 4, Username: "root", PasswordHash: hash, IsAdmin: true}

	testCases := []struct {
		name           string
		requestBody    string
		mockSetup      func(users *mocks.UserProvider, tokens *mocks.TokenIssuer)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:        "Success",
			requestBody: `{"username": "root", "password": "secret1"}`,
			mockSetup: func(users *mocks.UserProvider, tokens *mocks.TokenIssuer) {
				users.On("GetUserByUsername", mock.Anything, "root").Return(admin, nil)
				tokens.On("Issue", models.Identity{UserID: 4, Username: "root", IsAdmin: true}).Return("jwt-token", nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"OK","token":"jwt-token","is_admin":true}`,
		},
		{
			name:        "Wrong password",
			requestBody: `{"username": "root", "password": "nope"}`,
			mockSetup: func(users *mocks.UserProvider, tokens *mocks.TokenIssuer) {
				users.On("GetUserByUsername", mock.Anything, "root").Return(admin, nil)
			},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"status":"Error","error":"invalid username or password"}`,
		},
		{
			name:        "Unknown user",
			requestBody: `{"username": "ghost", "password": "secret1"}`,
			mockSetup: func(users *mocks.UserProvider, tokens *mocks.TokenIssuer) {
				users.On("GetUserByUsername", mock.Anything, "ghost").Return(models.User{}, storage.ErrUserNotFound)
			},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"status":"Error","error":"invalid username or password"}`,
		},
		{
			name:        "Storage error",
			requestBody: `{"username": "root", "password": "secret1"}`,
			mockSetup: func(users *mocks.UserProvider, tokens *mocks.TokenIssuer) {
				users.On("GetUserByUsername", mock.Anything, "root").Return(models.User{}, errors.New("db down"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"failed to log in"}`,
		},
		{
			name:        "Token failure",
			requestBody: `{"username": "root", "password": "secret1"}`,
			mockSetup: func(users *mocks.UserProvider, tokens *mocks.TokenIssuer) {
				users.On("GetUserByUsername", mock.Anything, "root").Return(admin, nil)
				tokens.On("Issue", mock.Anything).Return("", errors.New("no key"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"failed to log in"}`,
		},
		{
			name:           "Missing password",
			requestBody:    `{"username": "root"}`,
			mockSetup:      func(users *mocks.UserProvider, tokens *mocks.TokenIssuer) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"field Password is a required field"}`,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			users := mocks.NewUserProvider(t)
			tokens := mocks.NewTokenIssuer(t)
			tc.mockSetup(users, tokens)

			req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString(tc.requestBody))
			rr := httptest.NewRecorder()

			New(logger, users, tokens).ServeHTTP(rr, req)

			assert.Equal(t, tc.expectedStatus, rr.Code)
			assert.JSONEq(t, tc.expectedBody, rr.Body.String())
		})
	}
}
