package api

import (
	"fuel-delivery-service/internal/api/handlers"
	"fuel-delivery-service/internal/ports"
	"net/http"
)

type Deps struct {
	Deliveries handlers.DeliveryOps
	Offloading handlers.OffloadingOps
	Tracking   ports.TrackingReader
	Activity   ports.ActivityLog
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(deps Deps) http.Handler {
	mux := http.NewServeMux()

	deliveries := &handlers.DeliveryHandler{Service: deps.Deliveries}
	offloading := &handlers.OffloadingHandler{Service: deps.Offloading}
	tracking := &handlers.TrackingHandler{Tracker: deps.Tracking}
	activity := &handlers.ActivityHandler{Log: deps.Activity}

	mux.HandleFunc("GET /health", handlers.Health)

	mux.HandleFunc("POST /orders/{id}/assign", deliveries.Assign)
	mux.HandleFunc("POST /orders/{id}/start", deliveries.Start)
	mux.HandleFunc("POST /orders/{id}/complete", deliveries.Complete)
	mux.HandleFunc("GET /orders/{id}/delivery", deliveries.Get)
	mux.HandleFunc("POST /orders/{id}/offload", offloading.Record)
	mux.HandleFunc("GET /orders/{id}/offload", offloading.Get)
	mux.HandleFunc("POST /trucks/{id}/gps-tag", deliveries.TagTruck)

	mux.HandleFunc("GET /tracking", tracking.List)
	mux.HandleFunc("GET /tracking/{truckID}", tracking.Get)
	mux.HandleFunc("GET /activity", activity.List)

	return requestContext(loggingMiddleware(mux))
}
