package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Donation records a checkout session opened by a donor
type Donation struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	SessionID   string             `json:"sessionId" bson:"sessionId"`
	UserID      string             `json:"userId" bson:"userId"`
	Amount      int64              `json:"amount" bson:"amount"`
	Currency    string             `json:"currency" bson:"currency"`
	CheckoutURL string             `json:"url" bson:"checkoutUrl"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
}

// DonationRequest is the body of the checkout endpoint. Amount is in the
// currency's minor unit.
type DonationRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// BankTransferDetails are the account details shown for direct donations
type BankTransferDetails struct {
	AccountName   string `json:"accountName"`
	AccountNumber string `json:"accountNumber"`
	IFSCCode      string `json:"ifscCode"`
	BankName      string `json:"bankName"`
	UpiID         string `json:"upiId"`
}
