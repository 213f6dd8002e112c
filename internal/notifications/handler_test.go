package notifications

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hourdesk/appointments-api/internal/http/middleware"
	"github.com/hourdesk/appointments-api/pkg/logging"
)

func newTestRouter(repo Repository, userID uuid.UUID) http.Handler {
	handler := NewHandler(repo, logging.New("error"))

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(middleware.WithUserID(req.Context(), userID)))
		})
	})
	r.Get("/notifications", handler.List)
	r.Patch("/notifications/{id}/read", handler.MarkRead)
	return r
}

func TestHandlerList(t *testing.T) {
	repo := NewInMemoryRepository()
	userID := uuid.New()
	require.NoError(t, repo.Create(context.Background(), &Notification{
		RecipientID: userID,
		Content:     "New booking from Cleiton Souza",
	}))

	router := newTestRouter(repo, userID)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/notifications", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got []Notification
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "New booking from Cleiton Souza", got[0].Content)
}

func TestHandlerMarkRead(t *testing.T) {
	repo := NewInMemoryRepository()
	userID := uuid.New()
	n := &Notification{RecipientID: userID, Content: "New booking"}
	require.NoError(t, repo.Create(context.Background(), n))

	router := newTestRouter(repo, userID)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/notifications/"+n.ID.String()+"/read", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got Notification
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.True(t, got.Read)

	missing := httptest.NewRecorder()
	router.ServeHTTP(missing, httptest.NewRequest(http.MethodPatch, "/notifications/"+uuid.NewString()+"/read", nil))
	assert.Equal(t, http.StatusNotFound, missing.Code)

	garbage := httptest.NewRecorder()
	router.ServeHTTP(garbage, httptest.NewRequest(http.MethodPatch, "/notifications/nope/read", nil))
	assert.Equal(t, http.StatusBadRequest, garbage.Code)
}
