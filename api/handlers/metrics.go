package handlers

import (
	"net/http"

	"github.com/linesmerrill/relief-api/api"
	"github.com/linesmerrill/relief-api/config"
)

// Metrics exposes the request timing collected by the router
type Metrics struct {
	Collector *api.MetricsCollector
}

// SummaryHandler returns per route timings, slowest first
func (m Metrics) SummaryHandler(w http.ResponseWriter, r *http.Request) {
	config.WriteData(w, http.StatusOK, m.Collector.Summary())
}
