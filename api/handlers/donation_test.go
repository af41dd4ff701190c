package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/linesmerrill/relief-api/api/handlers"
	"github.com/linesmerrill/relief-api/databases/mocks"
	"github.com/linesmerrill/relief-api/models"
	"github.com/linesmerrill/relief-api/services"
)

func TestDonation_BankDetailsHandler(t *testing.T) {
	bank := models.BankTransferDetails{
		AccountName:   "Relief Fund Trust",
		AccountNumber: "001122334455",
		IFSCCode:      "SBIN0000123",
		BankName:      "State Bank of India",
		UpiID:         "relief@sbi",
	}
	h := handlers.Donation{Service: services.NewDonationService(&mocks.DonationDatabase{}, "https://relief.example.org", bank)}

	rr := serve(h.BankDetailsHandler, asUser(httptest.NewRequest("GET", "/donation/bank-details", nil), reporterID))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{
		"accountName": "Relief Fund Trust",
		"accountNumber": "001122334455",
		"ifscCode": "SBIN0000123",
		"bankName": "State Bank of India",
		"upiId": "relief@sbi"
	}`, string(decodeEnvelope(t, rr).Data))
}

func TestDonation_CheckoutHandlerRejectsSmallAmounts(t *testing.T) {
	ddb := &mocks.DonationDatabase{}
	h := handlers.Donation{Service: services.NewDonationService(ddb, "https://relief.example.org", models.BankTransferDetails{})}

	req := httptest.NewRequest("POST", "/donation/checkout", strings.NewReader(`{"amount":99,"currency":"inr"}`))
	rr := serve(h.CheckoutHandler, asUser(req, reporterID))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, decodeEnvelope(t, rr).Message, "amount must be at least 100")
	ddb.AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything)
}

func TestDonation_CheckoutHandlerUnauthorized(t *testing.T) {
	h := handlers.Donation{Service: services.NewDonationService(&mocks.DonationDatabase{}, "", models.BankTransferDetails{})}

	rr := serve(h.CheckoutHandler, httptest.NewRequest("POST", "/donation/checkout", strings.NewReader(`{"amount":500}`)))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
