package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/linesmerrill/relief-api/api"
)

func TestTimeoutMiddlewarePassesFastHandlers(t *testing.T) {
	h := api.TimeoutMiddleware(time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"status":201}`))
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/incidents", nil))

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.JSONEq(t, `{"status":201}`, rr.Body.String())
}

func TestTimeoutMiddlewareAnswersSlowHandlers(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	h := api.TimeoutMiddleware(20 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
		<-release
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/incidents", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Contains(t, rr.Body.String(), "took too long")
}

func TestTimeoutMiddlewareDropsWritesAfterClientCancel(t *testing.T) {
	returned := make(chan struct{})
	writeErr := make(chan error, 1)
	h := api.TimeoutMiddleware(time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
		<-returned
		_, err := w.Write([]byte(`{"status":200}`))
		writeErr <- err
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/incidents", nil).WithContext(ctx))
	close(returned)

	assert.ErrorIs(t, <-writeErr, http.ErrHandlerTimeout)
	assert.Zero(t, rr.Body.Len())
	assert.False(t, rr.Flushed)
}

func TestTimeoutMiddlewareDropsWritesAfterStartedResponseTimesOut(t *testing.T) {
	returned := make(chan struct{})
	writeErr := make(chan error, 1)
	h := api.TimeoutMiddleware(20 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		<-r.Context().Done()
		<-returned
		_, err := w.Write([]byte(`{"status":202}`))
		writeErr <- err
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/incidents", nil))
	close(returned)

	assert.ErrorIs(t, <-writeErr, http.ErrHandlerTimeout)
	assert.Equal(t, http.StatusAccepted, rr.Code)
	assert.Zero(t, rr.Body.Len())
}
