package scheduling

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hourdesk/appointments-api/internal/http/middleware"
	"github.com/hourdesk/appointments-api/pkg/logging"
)

// Handler exposes the scheduling operations over HTTP. Transport concerns
// only; all rules live in Service.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a scheduling handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if service == nil {
		panic("scheduling: service required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// CreateAppointmentRequest is the booking request body.
type CreateAppointmentRequest struct {
	ProviderID uuid.UUID `json:"provider_id"`
	Date       string    `json:"date"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// List handles GET /appointments?page=N for the authenticated user.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing user context", http.StatusUnauthorized)
		return
	}

	page := 1
	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		parsed, err := strconv.Atoi(pageStr)
		if err != nil || parsed < 1 {
			h.writeError(w, ErrInvalidDate, http.StatusBadRequest, "invalid page")
			return
		}
		page = parsed
	}

	views, err := h.service.List(r.Context(), userID, page)
	if err != nil {
		h.logger.Error("failed to list appointments", "error", err, "user_id", userID)
		http.Error(w, "failed to list appointments", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, views)
}

// Create handles POST /appointments.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing user context", http.StatusUnauthorized)
		return
	}

	var req CreateAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, err, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ProviderID == uuid.Nil {
		h.writeError(w, nil, http.StatusBadRequest, "provider_id is required")
		return
	}
	date, err := time.Parse(time.RFC3339, req.Date)
	if err != nil {
		h.writeError(w, ErrInvalidDate, http.StatusBadRequest, ErrInvalidDate.Error())
		return
	}

	appointment, err := h.service.Book(r.Context(), userID, req.ProviderID, date)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, appointment)
}

// Cancel handles DELETE /appointments/{id}.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing user context", http.StatusUnauthorized)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err, http.StatusBadRequest, "invalid appointment id")
		return
	}

	appointment, err := h.service.Cancel(r.Context(), userID, id)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, appointment)
}

// Availability handles GET /providers/{providerID}/availability?date=YYYY-MM-DD.
func (h *Handler) Availability(w http.ResponseWriter, r *http.Request) {
	providerID, err := uuid.Parse(chi.URLParam(r, "providerID"))
	if err != nil {
		h.writeError(w, err, http.StatusBadRequest, "invalid provider id")
		return
	}

	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		h.writeError(w, ErrInvalidDate, http.StatusBadRequest, ErrInvalidDate.Error())
		return
	}
	day, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		h.writeError(w, ErrInvalidDate, http.StatusBadRequest, ErrInvalidDate.Error())
		return
	}

	slots, err := h.service.Availability(r.Context(), providerID, day)
	if err != nil {
		h.logger.Error("failed to compute availability", "error", err, "provider_id", providerID)
		http.Error(w, "failed to compute availability", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, slots)
}

// Providers handles GET /providers.
func (h *Handler) Providers(w http.ResponseWriter, r *http.Request) {
	providers, err := h.service.Providers(r.Context())
	if err != nil {
		h.logger.Error("failed to list providers", "error", err)
		http.Error(w, "failed to list providers", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, providers)
}

// writeDomainError maps core sentinel errors to HTTP statuses.
func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidProvider), errors.Is(err, ErrPastDate), errors.Is(err, ErrInvalidDate):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, ErrSlotTaken):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, ErrNotOwner), errors.Is(err, ErrCancelWindowClosed):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: err.Error()})
	case errors.Is(err, ErrAppointmentNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	default:
		h.logger.Error("scheduling operation failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error, status int, msg string) {
	if err != nil {
		h.logger.Debug("request rejected", "error", err, "status", status)
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
