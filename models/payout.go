package models

import "time"

// PayoutDetails holds where a user's redeemed coins are paid. A bank payout
// needs either the full bank account triple or a UPI id.
type PayoutDetails struct {
	UserID        string    `json:"userId" bson:"_id"`
	AccountNumber string    `json:"accountNumber,omitempty" bson:"accountNumber,omitempty"`
	IFSCCode      string    `json:"ifscCode,omitempty" bson:"ifscCode,omitempty"`
	BankName      string    `json:"bankName,omitempty" bson:"bankName,omitempty"`
	UpiID         string    `json:"upiId,omitempty" bson:"upiId,omitempty"`
	WalletAddress string    `json:"wallet,omitempty" bson:"walletAddress,omitempty"`
	UpdatedAt     time.Time `json:"updatedAt" bson:"updatedAt"`
}

// HasBank reports whether a bank or UPI payout is possible
func (p PayoutDetails) HasBank() bool {
	return p.UpiID != "" || (p.AccountNumber != "" && p.IFSCCode != "" && p.BankName != "")
}

// HasWallet reports whether a wallet payout is possible
func (p PayoutDetails) HasWallet() bool {
	return p.WalletAddress != ""
}

// BankDetailsRequest is the body of save-bank-details
type BankDetailsRequest struct {
	AccountNumber string `json:"accountNumber"`
	IFSCCode      string `json:"ifscCode"`
	BankName      string `json:"bankName"`
	UpiID         string `json:"upiId"`
}

// WalletDetailsRequest is the body of save-wallet-details
type WalletDetailsRequest struct {
	WalletAddress string `json:"walletAddress"`
}
