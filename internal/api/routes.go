package api

import (
	"github.com/gorilla/mux"
)

// SetupRoutes configures all API routes
func SetupRoutes(handler *Handler) *mux.Router {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	// Monitoring routes
	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/monitor/run", handler.TriggerRun).Methods("POST")
	api.HandleFunc("/notifications", handler.GetNotifications).Methods("GET")

	return r
}
