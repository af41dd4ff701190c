package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/linesmerrill/relief-api/services"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: type is required", services.ErrValidation), http.StatusBadRequest},
		{services.ErrUnauthorized, http.StatusUnauthorized},
		{services.ErrAuthExpired, http.StatusUnauthorized},
		{services.ErrForbidden, http.StatusForbidden},
		{services.ErrNotFound, http.StatusNotFound},
		{services.ErrAlreadyAssigned, http.StatusConflict},
		{services.ErrNotPending, http.StatusConflict},
		{services.ErrMissingPayoutDetails, http.StatusConflict},
		{services.ErrDuplicate, http.StatusConflict},
		{services.ErrVersionConflict, http.StatusConflict},
		{services.ErrInsufficientBalance, http.StatusUnprocessableEntity},
		{errors.New("server selection timeout"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

func TestWriteErrorHidesInternalErrors(t *testing.T) {
	rr := httptest.NewRecorder()
	writeError(rr, "failed to get emergency", errors.New("mongo: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "mongo")
	assert.Contains(t, rr.Body.String(), "failed to get emergency")
}

func TestDecodeJSON(t *testing.T) {
	var v struct {
		Name string `json:"name"`
	}
	assert.NoError(t, decodeJSON(httptest.NewRequest("POST", "/", strings.NewReader("")), &v))
	assert.NoError(t, decodeJSON(httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"a"}`)), &v))
	assert.Equal(t, "a", v.Name)
	assert.ErrorIs(t, decodeJSON(httptest.NewRequest("POST", "/", strings.NewReader(`{"name":`)), &v), services.ErrValidation)
}
