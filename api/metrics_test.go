package api_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linesmerrill/relief-api/api"
)

func TestMetricsGroupsByRouteTemplate(t *testing.T) {
	mc := api.NewMetricsCollector(16)
	defer mc.Close()

	r := api.New(mc)
	r.HandleFunc("/{id}", func(w http.ResponseWriter, r *http.Request) {
		if mux.Vars(r)["id"] == "missing" {
			w.WriteHeader(http.StatusNotFound)
		}
	}).Methods("GET")

	for _, path := range []string{"/a1", "/b2", "/missing", "/health"} {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest("GET", path, nil))
		if path != "/health" {
			assert.NotEmpty(t, rr.Header().Get(api.RequestIDHeader))
		}
	}

	require.Eventually(t, func() bool {
		return mc.Summary().TotalRequests == 3
	}, time.Second, 5*time.Millisecond)

	s := mc.Summary()
	require.Len(t, s.Routes, 1)
	assert.Equal(t, "/{id}", s.Routes[0].Path)
	assert.Equal(t, int64(3), s.Routes[0].Count)
	assert.Equal(t, int64(1), s.Routes[0].ErrorCount)
	assert.Equal(t, int64(1), s.TotalErrors)
	assert.InDelta(t, 1.0/3.0, s.ErrorRate, 0.0001)
}

func TestMetricsKeepsIncomingRequestID(t *testing.T) {
	mc := api.NewMetricsCollector(4)
	defer mc.Close()
	r := api.New(mc)
	r.HandleFunc("/incidents", func(w http.ResponseWriter, r *http.Request) {}).Methods("GET")

	req := httptest.NewRequest("GET", "/incidents", nil)
	req.Header.Set(api.RequestIDHeader, "req-123")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, "req-123", rr.Header().Get(api.RequestIDHeader))
}

func TestHealthCheck(t *testing.T) {
	mc := api.NewMetricsCollector(4)
	defer mc.Close()

	rr := httptest.NewRecorder()
	api.New(mc).ServeHTTP(rr, httptest.NewRequest("GET", "/health", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"alive": true}`, rr.Body.String())
}
