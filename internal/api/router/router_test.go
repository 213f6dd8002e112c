package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hourdesk/appointments-api/internal/jobs"
	"github.com/hourdesk/appointments-api/internal/notifications"
	"github.com/hourdesk/appointments-api/internal/scheduling"
	"github.com/hourdesk/appointments-api/internal/users"
	"github.com/hourdesk/appointments-api/pkg/logging"
)

const testSecret = "router-test-secret"

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()

	logger := logging.New("error")
	usersRepo := users.NewInMemoryRepository()
	notificationsRepo := notifications.NewInMemoryRepository()

	service := scheduling.NewService(scheduling.ServiceConfig{
		Repo:          scheduling.NewInMemoryRepository(),
		Users:         usersRepo,
		Notifications: notificationsRepo,
		Dispatcher:    jobs.NewPublisher(jobs.NewMemoryQueue(1), logger),
		Logger:        logger,
	})

	return New(&Config{
		Logger:               logger,
		SchedulingHandler:    scheduling.NewHandler(service, logger),
		NotificationsHandler: notifications.NewHandler(notificationsRepo, logger),
		AuthJWTSecret:        testSecret,
	})
}

func bearerToken(t *testing.T) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   uuid.NewString(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + signed
}

func TestHealthIsPublic(t *testing.T) {
	handler := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAppointmentsRequireAuth(t *testing.T) {
	handler := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/appointments", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	authed := httptest.NewRequest(http.MethodGet, "/appointments", nil)
	authed.Header.Set("Authorization", bearerToken(t))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, authed)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNotificationsRequireAuth(t *testing.T) {
	handler := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/notifications", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	authed := httptest.NewRequest(http.MethodGet, "/notifications", nil)
	authed.Header.Set("Authorization", bearerToken(t))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, authed)
	assert.Equal(t, http.StatusOK, rec.Code)
}
