package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/linesmerrill/relief-api/api"
	"github.com/linesmerrill/relief-api/config"
	"github.com/linesmerrill/relief-api/models"
	"github.com/linesmerrill/relief-api/services"
)

// Incentive exposes the coin ledger and the payout details it pays out to
type Incentive struct {
	Ledger *services.Ledger
	Payout *services.PayoutService
}

// redeemRequest accepts {"redeemTo": "bank"} as well as the bare "bank"
// string older clients send.
type redeemRequest struct {
	RedeemTo string `json:"redeemTo"`
	Method   string `json:"method"`
}

func parseRedeemBody(r *http.Request) (models.RedeemDestination, error) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxJSONBody))
	if err != nil {
		return "", fmt.Errorf("%w: failed to read request body", services.ErrValidation)
	}
	raw = bytes.TrimSpace(raw)

	var choice string
	switch {
	case len(raw) == 0:
	case raw[0] == '"':
		if err := json.Unmarshal(raw, &choice); err != nil {
			return "", fmt.Errorf("%w: invalid redeem destination", services.ErrValidation)
		}
	case raw[0] == '{':
		var req redeemRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			return "", fmt.Errorf("%w: invalid redeem destination", services.ErrValidation)
		}
		choice = req.RedeemTo
		if choice == "" {
			choice = req.Method
		}
	default:
		choice = string(raw)
	}

	dest, ok := models.ParseRedeemDestination(choice)
	if !ok {
		return "", fmt.Errorf("%w: redeem destination must be bank or wallet", services.ErrValidation)
	}
	return dest, nil
}

// EligibilityHandler tells the caller whether a redemption is possible
func (i Incentive) EligibilityHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r)
	if !ok {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	eligibility, err := i.Ledger.Eligibility(ctx, s.UserID)
	if err != nil {
		writeError(w, "failed to check eligibility", err)
		return
	}
	config.WriteData(w, http.StatusOK, eligibility)
}

// RedeemHandler redeems every whole batch of coins to the destination named
// in the body
func (i Incentive) RedeemHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r)
	if !ok {
		return
	}
	dest, err := parseRedeemBody(r)
	if err != nil {
		writeError(w, "failed to redeem", err)
		return
	}
	i.redeem(w, r, s.UserID, dest)
}

// WithdrawBankHandler redeems to the caller's bank or UPI details
func (i Incentive) WithdrawBankHandler(w http.ResponseWriter, r *http.Request) {
	if s, ok := session(w, r); ok {
		i.redeem(w, r, s.UserID, models.DestinationBank)
	}
}

// WithdrawWalletHandler redeems to the caller's wallet
func (i Incentive) WithdrawWalletHandler(w http.ResponseWriter, r *http.Request) {
	if s, ok := session(w, r); ok {
		i.redeem(w, r, s.UserID, models.DestinationWallet)
	}
}

func (i Incentive) redeem(w http.ResponseWriter, r *http.Request, userID string, dest models.RedeemDestination) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	redemption, err := i.Ledger.Redeem(ctx, userID, dest)
	if err != nil {
		writeError(w, "failed to redeem", err)
		return
	}
	zap.S().Infow("coins redeemed", "userId", userID, "destination", dest, "coins", redemption.Debited)
	config.WriteData(w, http.StatusOK, redemption)
}

// TransactionsHandler returns the caller's statement, newest first
func (i Incentive) TransactionsHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r)
	if !ok {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	txs, err := i.Ledger.Transactions(ctx, s.UserID)
	if err != nil {
		writeError(w, "failed to get transactions", err)
		return
	}
	config.WriteData(w, http.StatusOK, txs)
}

// BalanceHandler returns the caller's coins
func (i Incentive) BalanceHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r)
	if !ok {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	balance, err := i.Ledger.Balance(ctx, s.UserID)
	if err != nil {
		writeError(w, "failed to get balance", err)
		return
	}
	config.WriteData(w, http.StatusOK, balance)
}

// PayoutDetailsHandler returns the caller's saved bank and wallet details
func (i Incentive) PayoutDetailsHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r)
	if !ok {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	details, err := i.Payout.Get(ctx, s.UserID)
	if err != nil {
		writeError(w, "failed to get payout details", err)
		return
	}
	config.WriteData(w, http.StatusOK, details)
}

// SaveBankDetailsHandler stores bank or UPI details for the caller
func (i Incentive) SaveBankDetailsHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r)
	if !ok {
		return
	}
	var req models.BankDetailsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, "failed to save bank details", err)
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	details, err := i.Payout.SaveBank(ctx, s.UserID, req)
	if err != nil {
		writeError(w, "failed to save bank details", err)
		return
	}
	config.WriteData(w, http.StatusOK, details)
}

// SaveWalletDetailsHandler stores the caller's wallet address
func (i Incentive) SaveWalletDetailsHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r)
	if !ok {
		return
	}
	var req models.WalletDetailsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, "failed to save wallet details", err)
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	details, err := i.Payout.SaveWallet(ctx, s.UserID, req)
	if err != nil {
		writeError(w, "failed to save wallet details", err)
		return
	}
	config.WriteData(w, http.StatusOK, details)
}
