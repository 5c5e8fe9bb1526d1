package handlers

import (
	"context"
	"fuel-delivery-service/internal/api/dto"
	"fuel-delivery-service/internal/domain"
	"fuel-delivery-service/internal/services"
	"net/http"
	"strings"
)

type OffloadingOps interface {
	Record(ctx context.Context, req services.RecordOffloadingRequest) (*domain.OffloadingRecord, error)
	ForOrder(ctx context.Context, orderID string) (*domain.OffloadingRecord, error)
}

type OffloadingHandler struct {
	Service OffloadingOps
}

func (h *OffloadingHandler) Record(w http.ResponseWriter, r *http.Request) {
	var req dto.OffloadRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	tankID := strings.TrimSpace(req.TankID)
	if tankID == "" {
		writeError(w, r, http.StatusBadRequest, "tank_id is required")
		return
	}

	rec, err := h.Service.Record(r.Context(), services.RecordOffloadingRequest{
		OrderID:         r.PathValue("id"),
		TankID:          tankID,
		LoadedVolume:    req.LoadedVolume,
		DeliveredVolume: req.DeliveredVolume,
		MeasuredBy:      strings.TrimSpace(req.MeasuredBy),
		MeasuredByRole:  strings.TrimSpace(req.MeasuredByRole),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, dto.NewOffloadingResponse(rec))
}

func (h *OffloadingHandler) Get(w http.ResponseWriter, r *http.Request) {
	rec, err := h.Service.ForOrder(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.NewOffloadingResponse(rec))
}
