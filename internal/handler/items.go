package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/foxtrail/planner/internal/middleware"
	"github.com/foxtrail/planner/internal/model"
)

// AddItem handles POST /api/itineraries/{id}/items
func (h *ItineraryHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	id, ok := itineraryID(w, r)
	if !ok {
		return
	}

	var req model.CreateActivityRequest
	if err := decodeRequest(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	item, err := h.service.AddItem(r.Context(), id, &req)
	if err != nil {
		h.fail(w, r, err, msgItineraryNotFound)
		return
	}

	writeJSON(w, http.StatusCreated, item)
}

// UpdateItem handles PUT /api/itineraries/{id}/items/{itemId}
func (h *ItineraryHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, itemID, ok := itemIDs(w, r)
	if !ok {
		return
	}

	var req model.UpdateActivityRequest
	if err := decodeRequest(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	item, err := h.service.UpdateItem(r.Context(), id, itemID, &req)
	if err != nil {
		h.fail(w, r, err, msgItemNotFound)
		return
	}

	writeJSON(w, http.StatusOK, item)
}

// RemoveItem handles DELETE /api/itineraries/{id}/items/{itemId}
func (h *ItineraryHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, itemID, ok := itemIDs(w, r)
	if !ok {
		return
	}

	removed, err := h.service.RemoveItem(r.Context(), id, itemID)
	if err != nil {
		h.fail(w, r, err, msgItemNotFound)
		return
	}
	if !removed {
		writeError(w, http.StatusNotFound, msgItemNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func itemIDs(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	id, ok := itineraryID(w, r)
	if !ok {
		return "", "", false
	}
	itemID := chi.URLParam(r, "itemId")
	if err := middleware.ValidateID("item", itemID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return "", "", false
	}
	return id, itemID, true
}
