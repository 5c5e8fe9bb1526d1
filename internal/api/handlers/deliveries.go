package handlers

import (
	"context"
	"fuel-delivery-service/internal/api/dto"
	"fuel-delivery-service/internal/domain"
	"net/http"
	"strings"
)

type DeliveryOps interface {
	Assign(ctx context.Context, orderID, driverID, truckID string) (*domain.Delivery, error)
	Start(ctx context.Context, orderID string) (*domain.Delivery, error)
	Complete(ctx context.Context, orderID string) (*domain.Delivery, error)
	TagTruck(ctx context.Context, truckID, deviceID string) (*domain.Truck, error)
	Delivery(ctx context.Context, orderID string) (*domain.Delivery, error)
}

type DeliveryHandler struct {
	Service DeliveryOps
}

func (h *DeliveryHandler) Assign(w http.ResponseWriter, r *http.Request) {
	var req dto.AssignRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	driverID := strings.TrimSpace(req.DriverID)
	truckID := strings.TrimSpace(req.TruckID)
	if driverID == "" || truckID == "" {
		writeError(w, r, http.StatusBadRequest, "driver_id and truck_id are required")
		return
	}

	d, err := h.Service.Assign(r.Context(), r.PathValue("id"), driverID, truckID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, dto.NewDeliveryResponse(d))
}

func (h *DeliveryHandler) Start(w http.ResponseWriter, r *http.Request) {
	d, err := h.Service.Start(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.NewDeliveryResponse(d))
}

func (h *DeliveryHandler) Complete(w http.ResponseWriter, r *http.Request) {
	d, err := h.Service.Complete(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.NewDeliveryResponse(d))
}

func (h *DeliveryHandler) Get(w http.ResponseWriter, r *http.Request) {
	d, err := h.Service.Delivery(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.NewDeliveryResponse(d))
}

func (h *DeliveryHandler) TagTruck(w http.ResponseWriter, r *http.Request) {
	var req dto.TagTruckRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	deviceID := strings.TrimSpace(req.DeviceID)
	if deviceID == "" {
		writeError(w, r, http.StatusBadRequest, "device_id is required")
		return
	}

	truck, err := h.Service.TagTruck(r.Context(), r.PathValue("id"), deviceID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.NewTruckResponse(truck))
}
