package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/linesmerrill/relief-api/api"
	"github.com/linesmerrill/relief-api/config"
	"github.com/linesmerrill/relief-api/services"
)

const maxJSONBody = 1 << 20

// statusFor maps a service error to its HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrUnauthorized), errors.Is(err, services.ErrAuthExpired):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrAlreadyAssigned),
		errors.Is(err, services.ErrInvalidState),
		errors.Is(err, services.ErrDuplicate),
		errors.Is(err, services.ErrVersionConflict):
		return http.StatusConflict
	case errors.Is(err, services.ErrInsufficientBalance):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// writeError logs err and answers with its mapped status. Internal errors get
// the fallback message so store details never reach the client.
func writeError(w http.ResponseWriter, fallback string, err error) {
	code := statusFor(err)
	msg := fallback
	if code != http.StatusInternalServerError {
		msg = err.Error()
	}
	config.ErrorStatus(msg, code, w, err)
}

// session returns the caller attached by the guard. Routes are only mounted
// behind the guard, so a missing session is answered as unauthorized.
func session(w http.ResponseWriter, r *http.Request) (services.Session, bool) {
	s, ok := api.SessionFromContext(r.Context())
	if !ok {
		config.ErrorStatus("unauthorized", http.StatusUnauthorized, w, services.ErrUnauthorized)
	}
	return s, ok
}

// decodeJSON reads a JSON body into v. An empty body leaves v untouched.
func decodeJSON(r *http.Request, v interface{}) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody)).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: failed to decode request body: %v", services.ErrValidation, err)
	}
	return nil
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}
