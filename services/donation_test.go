package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/linesmerrill/relief-api/databases/mocks"
	"github.com/linesmerrill/relief-api/models"
)

func TestDonationCheckout(t *testing.T) {
	db := &mocks.DonationDatabase{}
	id := primitive.NewObjectID()
	db.On("InsertOne", mock.Anything, mock.AnythingOfType("models.Donation")).Return(id, nil)

	svc := NewDonationService(db, "https://relief.example.com/", models.BankTransferDetails{})
	svc.now = func() time.Time { return time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC) }
	var got *stripe.CheckoutSessionParams
	svc.newSession = func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
		got = params
		return &stripe.CheckoutSession{ID: "cs_test_1", URL: "https://checkout.stripe.com/pay/cs_test_1"}, nil
	}

	donation, err := svc.Checkout(context.Background(), "u1", models.DonationRequest{Amount: 50000})
	require.NoError(t, err)
	assert.Equal(t, id, donation.ID)
	assert.Equal(t, "cs_test_1", donation.SessionID)
	assert.Equal(t, "https://checkout.stripe.com/pay/cs_test_1", donation.CheckoutURL)
	assert.Equal(t, "inr", donation.Currency)

	require.NotNil(t, got)
	assert.Equal(t, "https://relief.example.com/thanks", *got.SuccessURL)
	assert.Equal(t, "u1", *got.ClientReferenceID)
	require.Len(t, got.LineItems, 1)
	assert.Equal(t, int64(50000), *got.LineItems[0].PriceData.UnitAmount)
	db.AssertExpectations(t)
}

func TestDonationCheckoutErrors(t *testing.T) {
	db := &mocks.DonationDatabase{}
	svc := NewDonationService(db, "https://relief.example.com", models.BankTransferDetails{})
	svc.newSession = func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
		return nil, errors.New("stripe unavailable")
	}

	_, err := svc.Checkout(context.Background(), "u1", models.DonationRequest{Amount: 10})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Checkout(context.Background(), "u1", models.DonationRequest{Amount: 1000, Currency: "USD"})
	assert.EqualError(t, err, "stripe unavailable")
	db.AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything)
}
