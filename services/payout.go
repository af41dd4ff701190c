package services

import (
	"context"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/linesmerrill/relief-api/databases"
	"github.com/linesmerrill/relief-api/models"
)

var walletAddressPattern = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)

// PayoutService manages where a user's redeemed coins are sent
type PayoutService struct {
	DB databases.PayoutDetailsDatabase
}

// NewPayoutService returns a payout service over db
func NewPayoutService(db databases.PayoutDetailsDatabase) *PayoutService {
	return &PayoutService{DB: db}
}

// Get returns the saved details, empty when nothing was saved yet.
func (p *PayoutService) Get(ctx context.Context, userID string) (*models.PayoutDetails, error) {
	return p.DB.FindOne(ctx, userID)
}

// SaveBank stores either a full bank account or a UPI id, keeping any other
// saved details.
func (p *PayoutService) SaveBank(ctx context.Context, userID string, req models.BankDetailsRequest) (*models.PayoutDetails, error) {
	fields := bson.M{}
	upi := strings.TrimSpace(req.UpiID)
	account := strings.TrimSpace(req.AccountNumber)
	ifsc := strings.ToUpper(strings.TrimSpace(req.IFSCCode))
	bank := strings.TrimSpace(req.BankName)

	switch {
	case account != "" || ifsc != "" || bank != "":
		if account == "" || ifsc == "" || bank == "" {
			return nil, validationError("accountNumber, ifscCode and bankName are all required")
		}
		fields["accountNumber"] = account
		fields["ifscCode"] = ifsc
		fields["bankName"] = bank
		if upi != "" {
			fields["upiId"] = upi
		}
	case upi != "":
		if !strings.Contains(upi, "@") {
			return nil, validationError("invalid UPI id %q", upi)
		}
		fields["upiId"] = upi
	default:
		return nil, validationError("bank account or UPI details are required")
	}

	if err := p.DB.Upsert(ctx, userID, fields); err != nil {
		return nil, err
	}
	return p.DB.FindOne(ctx, userID)
}

// SaveWallet stores the user's wallet address.
func (p *PayoutService) SaveWallet(ctx context.Context, userID string, req models.WalletDetailsRequest) (*models.PayoutDetails, error) {
	address := strings.TrimSpace(req.WalletAddress)
	if !walletAddressPattern.MatchString(address) {
		return nil, validationError("invalid wallet address")
	}
	if err := p.DB.Upsert(ctx, userID, bson.M{"walletAddress": address}); err != nil {
		return nil, err
	}
	return p.DB.FindOne(ctx, userID)
}
