// Package handler provides HTTP handlers for the API.
package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/foxtrail/planner/internal/middleware"
	"github.com/foxtrail/planner/internal/model"
	"github.com/foxtrail/planner/internal/service"
	"github.com/foxtrail/planner/internal/store"
	"github.com/foxtrail/planner/pkg/logger"
)

const (
	msgItineraryNotFound = "itinerary not found"
	msgItemNotFound      = "item not found"
	msgUnexpected        = "unexpected server error"
)

// ItineraryHandler handles itinerary endpoints.
type ItineraryHandler struct {
	service *service.ItineraryService
	logger  *logger.Logger
}

// NewItineraryHandler creates a new itinerary handler.
func NewItineraryHandler(svc *service.ItineraryService, log *logger.Logger) *ItineraryHandler {
	return &ItineraryHandler{
		service: svc,
		logger:  log,
	}
}

// Routes mounts the itinerary endpoints on r.
func (h *ItineraryHandler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Post("/generate", h.Generate)

	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Put("/", h.Update)
		r.Delete("/", h.Delete)

		r.Post("/items", h.AddItem)
		r.Put("/items/{itemId}", h.UpdateItem)
		r.Delete("/items/{itemId}", h.RemoveItem)

		r.Post("/optimize", h.Optimize)
		r.Post("/sync", h.Sync)
	})
}

// List handles GET /api/itineraries
func (h *ItineraryHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.List(r.Context()))
}

// Create handles POST /api/itineraries
func (h *ItineraryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateItineraryRequest
	if err := decodeRequest(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	it, err := h.service.Create(r.Context(), &req)
	if err != nil {
		h.fail(w, r, err, msgItineraryNotFound)
		return
	}

	writeJSON(w, http.StatusCreated, it)
}

// Generate handles POST /api/itineraries/generate
func (h *ItineraryHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req model.GenerateItineraryRequest
	if err := decodeRequest(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	it, err := h.service.Generate(r.Context(), &req)
	if err != nil {
		h.fail(w, r, err, msgItineraryNotFound)
		return
	}

	writeJSON(w, http.StatusCreated, it)
}

// Get handles GET /api/itineraries/{id}
func (h *ItineraryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := itineraryID(w, r)
	if !ok {
		return
	}

	it, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, msgItineraryNotFound)
		return
	}

	writeJSON(w, http.StatusOK, it)
}

// Update handles PUT /api/itineraries/{id}
func (h *ItineraryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := itineraryID(w, r)
	if !ok {
		return
	}

	var req model.UpdateItineraryRequest
	if err := decodeRequest(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	it, err := h.service.Update(r.Context(), id, &req)
	if err != nil {
		h.fail(w, r, err, msgItineraryNotFound)
		return
	}

	writeJSON(w, http.StatusOK, it)
}

// Delete handles DELETE /api/itineraries/{id}
func (h *ItineraryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := itineraryID(w, r)
	if !ok {
		return
	}

	removed, err := h.service.Delete(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, msgItineraryNotFound)
		return
	}
	if !removed {
		writeError(w, http.StatusNotFound, msgItineraryNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Optimize handles POST /api/itineraries/{id}/optimize
func (h *ItineraryHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	id, ok := itineraryID(w, r)
	if !ok {
		return
	}

	result, err := h.service.Optimize(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, msgItineraryNotFound)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Sync handles POST /api/itineraries/{id}/sync
func (h *ItineraryHandler) Sync(w http.ResponseWriter, r *http.Request) {
	id, ok := itineraryID(w, r)
	if !ok {
		return
	}

	result, err := h.service.Sync(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, msgItineraryNotFound)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// fail maps a service error to a response: not-found errors become 404 with
// notFoundMsg, everything else is logged and reported as a generic 500.
func (h *ItineraryHandler) fail(w http.ResponseWriter, r *http.Request, err error, notFoundMsg string) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, notFoundMsg)
		return
	}

	ctx := r.Context()
	h.logger.WithRequest(middleware.GetCorrelationID(ctx), middleware.GetSubject(ctx)).Error("request failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	writeError(w, http.StatusInternalServerError, msgUnexpected)
}

func itineraryID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if err := middleware.ValidateID("itinerary", id); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	return id, true
}
