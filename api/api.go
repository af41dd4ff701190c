package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/linesmerrill/relief-api/models"
)

// New creates the root router with the health check and request metrics
// installed. Application routes are added by the caller.
func New(mc *MetricsCollector) *mux.Router {
	r := mux.NewRouter()
	r.Use(mc.Middleware)
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")
	return r
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	b, _ := json.Marshal(models.HealthCheckResponse{Alive: true})
	_, _ = w.Write(b)
}
