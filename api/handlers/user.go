package handlers

import (
	"net/http"
	"time"

	"github.com/linesmerrill/relief-api/api"
	"github.com/linesmerrill/relief-api/config"
	"github.com/linesmerrill/relief-api/models"
	"github.com/linesmerrill/relief-api/services"
)

// User exposes registration, login and the profile of the caller
type User struct {
	Auth *services.AuthService
}

// TokenResponse is returned by the basic auth token endpoint
type TokenResponse struct {
	Token     string    `json:"token"`
	ID        string    `json:"_id"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// RegisterHandler creates an account and returns a token for it
func (u User) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, "failed to register", err)
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	resp, err := u.Auth.Register(ctx, req)
	if err != nil {
		writeError(w, "failed to register", err)
		return
	}
	config.WriteData(w, http.StatusCreated, resp)
}

// LoginHandler logs in with email and password
func (u User) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, "failed to login", err)
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	resp, err := u.Auth.Login(ctx, req)
	if err != nil {
		writeError(w, "failed to login", err)
		return
	}
	config.WriteData(w, http.StatusOK, resp)
}

// LoginMetaHandler logs in with a wallet account
func (u User) LoginMetaHandler(w http.ResponseWriter, r *http.Request) {
	var req models.MetaLoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, "failed to login", err)
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	resp, err := u.Auth.LoginMeta(ctx, req)
	if err != nil {
		writeError(w, "failed to login", err)
		return
	}
	config.WriteData(w, http.StatusOK, resp)
}

// TokenHandler issues a bearer token to a caller that passed basic auth
func (u User) TokenHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r)
	if !ok {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	user, err := u.Auth.Profile(ctx, s.UserID)
	if err != nil {
		writeError(w, "failed to issue token", err)
		return
	}
	token, expiresAt, err := u.Auth.IssueToken(user)
	if err != nil {
		writeError(w, "failed to issue token", err)
		return
	}
	config.WriteData(w, http.StatusOK, TokenResponse{Token: token, ID: s.UserID, ExpiresAt: expiresAt})
}

// ProfileHandler returns the caller's account
func (u User) ProfileHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r)
	if !ok {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	user, err := u.Auth.Profile(ctx, s.UserID)
	if err != nil {
		writeError(w, "failed to get profile", err)
		return
	}
	config.WriteData(w, http.StatusOK, user)
}

// UpdateProfileHandler changes the caller's name, mobile or wallet account
func (u User) UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r)
	if !ok {
		return
	}
	var req models.UpdateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, "failed to update profile", err)
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	user, err := u.Auth.UpdateProfile(ctx, s.UserID, req)
	if err != nil {
		writeError(w, "failed to update profile", err)
		return
	}
	config.WriteData(w, http.StatusOK, user)
}
