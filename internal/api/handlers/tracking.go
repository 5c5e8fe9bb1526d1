package handlers

import (
	"fuel-delivery-service/internal/api/dto"
	"fuel-delivery-service/internal/domain"
	"fuel-delivery-service/internal/ports"
	"net/http"
	"slices"
	"strconv"
)

type TrackingHandler struct {
	Tracker ports.TrackingReader
}

// List returns snapshots for every truck with a running simulation.
func (h *TrackingHandler) List(w http.ResponseWriter, r *http.Request) {
	ids := h.Tracker.TrackedTrucks()
	res := dto.TrackingResponse{Trucks: make([]domain.TrackedTruck, 0, len(ids))}
	for _, id := range ids {
		if info, ok := h.Tracker.TrackingInfo(id); ok {
			res.Trucks = append(res.Trucks, info)
		}
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (h *TrackingHandler) Get(w http.ResponseWriter, r *http.Request) {
	info, ok := h.Tracker.TrackingInfo(r.PathValue("truckID"))
	if !ok {
		writeError(w, r, http.StatusNotFound, "truck is not tracked")
		return
	}
	writeJSON(w, r, http.StatusOK, info)
}

type ActivityHandler struct {
	Log ports.ActivityLog
}

// List returns the audit trail newest first, capped by ?limit= (default 50).
func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 1000 {
			writeError(w, r, http.StatusBadRequest, "limit must be between 1 and 1000")
			return
		}
		limit = n
	}

	entries, err := h.Log.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	slices.Reverse(entries)
	if len(entries) > limit {
		entries = entries[:limit]
	}
	writeJSON(w, r, http.StatusOK, dto.ActivityResponse{Entries: entries})
}
