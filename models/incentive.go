package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RedemptionUnit is the number of coins redeemed per payout batch
const RedemptionUnit int64 = 1000

// IncentiveEntry is the credit a volunteer earned for one approved emergency.
// There is at most one entry per (userId, emergencyId).
type IncentiveEntry struct {
	ID               primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	UserID           string             `json:"userId" bson:"userId"`
	EmergencyID      string             `json:"emergencyId" bson:"emergencyId"`
	IncentivesEarned int64              `json:"incentivesEarned" bson:"incentivesEarned"`
	CompletedAt      time.Time          `json:"completedAt" bson:"completedAt"`
}

// CoinAccount holds a user's spendable coin balance
type CoinAccount struct {
	UserID    string    `json:"userId" bson:"_id"`
	Coins     int64     `json:"coins" bson:"coins"`
	Credited  []string  `json:"-" bson:"credited,omitempty"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Eligibility tells the client whether a redemption is possible
type Eligibility struct {
	Eligible bool  `json:"eligible"`
	Coins    int64 `json:"coins"`
}

// CoinBalance is the balance response of the withdraw screens
type CoinBalance struct {
	Incentives int64 `json:"incentives"`
}

// TransactionKind distinguishes credits from redemptions
type TransactionKind string

// Transaction kinds
const (
	TransactionCredit TransactionKind = "credit"
	TransactionRedeem TransactionKind = "redeem"
)

// RedeemDestination is where redeemed coins are paid out
type RedeemDestination string

// Redemption destinations
const (
	DestinationBank   RedeemDestination = "bank"
	DestinationWallet RedeemDestination = "wallet"
)

// ParseRedeemDestination accepts "bank" or "wallet" in any case
func ParseRedeemDestination(s string) (RedeemDestination, bool) {
	switch RedeemDestination(strings.ToLower(strings.TrimSpace(s))) {
	case DestinationBank:
		return DestinationBank, true
	case DestinationWallet:
		return DestinationWallet, true
	}
	return "", false
}

// Payout returns the payout amount and currency for coins redeemed to d:
// 1000 coins are 10 INR to a bank and 0.01 ETH to a wallet.
func (d RedeemDestination) Payout(coins int64) (float64, string) {
	units := float64(coins / RedemptionUnit)
	if d == DestinationWallet {
		return units * 0.01, "ETH"
	}
	return units * 10, "INR"
}

// Transaction is an entry in a user's coin statement
type Transaction struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	UserID      string             `json:"userId" bson:"userId"`
	Kind        TransactionKind    `json:"kind" bson:"kind"`
	Destination RedeemDestination  `json:"method,omitempty" bson:"destination,omitempty"`
	Coins       int64              `json:"coins" bson:"coins"`
	Amount      float64            `json:"amount" bson:"amount"`
	Currency    string             `json:"currency,omitempty" bson:"currency,omitempty"`
	Status      string             `json:"status" bson:"status"`
	EmergencyID string             `json:"emergencyId,omitempty" bson:"emergencyId,omitempty"`
	CreatedAt   time.Time          `json:"date" bson:"createdAt"`
}

// TransactionCompleted is the status of every settled transaction
const TransactionCompleted = "Completed"

// Redemption is returned after a successful redeem
type Redemption struct {
	Message     string      `json:"message"`
	Debited     int64       `json:"debited"`
	Remaining   int64       `json:"remaining"`
	Transaction Transaction `json:"transaction"`
}
