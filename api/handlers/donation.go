package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/linesmerrill/relief-api/api"
	"github.com/linesmerrill/relief-api/config"
	"github.com/linesmerrill/relief-api/models"
	"github.com/linesmerrill/relief-api/services"
)

// Donation exposes checkout and the bank transfer details
type Donation struct {
	Service *services.DonationService
}

// CheckoutHandler opens a Stripe Checkout session for the caller
func (d Donation) CheckoutHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r)
	if !ok {
		return
	}
	var req models.DonationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, "failed to create checkout session", err)
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	donation, err := d.Service.Checkout(ctx, s.UserID, req)
	if err != nil {
		writeError(w, "failed to create checkout session", err)
		return
	}
	zap.S().Infow("checkout session created", "userId", s.UserID, "sessionId", donation.SessionID, "amount", donation.Amount)
	config.WriteData(w, http.StatusCreated, donation)
}

// BankDetailsHandler returns the account donors can transfer to directly
func (d Donation) BankDetailsHandler(w http.ResponseWriter, r *http.Request) {
	config.WriteData(w, http.StatusOK, d.Service.BankDetails)
}
