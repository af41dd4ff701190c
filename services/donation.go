package services

import (
	"context"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"

	"github.com/linesmerrill/relief-api/databases"
	"github.com/linesmerrill/relief-api/models"
)

const minDonationAmount = 100

// DonationService creates Stripe checkout sessions for donations
type DonationService struct {
	DB          databases.DonationDatabase
	BaseURL     string
	BankDetails models.BankTransferDetails
	newSession  func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
	now         func() time.Time
}

// NewDonationService returns a donation service redirecting back to baseURL
func NewDonationService(db databases.DonationDatabase, baseURL string, bank models.BankTransferDetails) *DonationService {
	return &DonationService{
		DB:          db,
		BaseURL:     strings.TrimRight(baseURL, "/"),
		BankDetails: bank,
		newSession:  session.New,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Checkout opens a payment session for req.Amount, in minor units of
// req.Currency, and records it against userID.
func (d *DonationService) Checkout(ctx context.Context, userID string, req models.DonationRequest) (*models.Donation, error) {
	if req.Amount < minDonationAmount {
		return nil, validationError("amount must be at least %d", minDonationAmount)
	}
	currency := strings.ToLower(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = "inr"
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(d.BaseURL + "/thanks"),
		CancelURL:         stripe.String(d.BaseURL + "/donate"),
		ClientReferenceID: stripe.String(userID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(currency),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String("Disaster relief donation"),
				},
				UnitAmount: stripe.Int64(req.Amount),
			},
			Quantity: stripe.Int64(1),
		}},
	}
	params.Context = ctx

	s, err := d.newSession(params)
	if err != nil {
		return nil, err
	}

	donation := &models.Donation{
		SessionID:   s.ID,
		UserID:      userID,
		Amount:      req.Amount,
		Currency:    currency,
		CheckoutURL: s.URL,
		CreatedAt:   d.now(),
	}
	id, err := d.DB.InsertOne(ctx, *donation)
	if err != nil {
		return nil, err
	}
	donation.ID = id
	return donation, nil
}
