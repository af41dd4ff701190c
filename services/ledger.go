package services

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/linesmerrill/relief-api/databases"
	"github.com/linesmerrill/relief-api/models"
)

const redeemAttempts = 3

// Ledger keeps volunteer incentive credits, coin balances and redemptions.
type Ledger struct {
	IDB    databases.IncentiveDatabase
	CADB   databases.CoinAccountDatabase
	TDB    databases.TransactionDatabase
	Payout *PayoutService
	locks  *KeyedLocker
	now    func() time.Time
}

// NewLedger returns a ledger over the given collections
func NewLedger(idb databases.IncentiveDatabase, cadb databases.CoinAccountDatabase, tdb databases.TransactionDatabase, payout *PayoutService) *Ledger {
	return &Ledger{
		IDB:    idb,
		CADB:   cadb,
		TDB:    tdb,
		Payout: payout,
		locks:  NewKeyedLocker(),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Credit records amount for userID's work on emergencyID and raises the
// balance once per pair. It reports true only when this call raised the
// balance. A pair whose balance update failed earlier is applied by the next
// call, so calling Credit again repairs it.
func (l *Ledger) Credit(ctx context.Context, userID, emergencyID string, amount int64) (bool, error) {
	if amount <= 0 {
		return false, validationError("credit amount must be positive")
	}
	now := l.now()
	created, err := l.IDB.InsertIfAbsent(ctx, models.IncentiveEntry{
		UserID:           userID,
		EmergencyID:      emergencyID,
		IncentivesEarned: amount,
		CompletedAt:      now,
	})
	if err != nil {
		return false, fmt.Errorf("failed to record incentive: %w", err)
	}
	applied, err := l.CADB.ApplyCredit(ctx, userID, emergencyID, amount)
	if err != nil {
		return false, fmt.Errorf("failed to apply credit: %w", err)
	}
	if !applied {
		zap.S().Debugw("incentive already credited", "userId", userID, "emergencyId", emergencyID)
		return false, nil
	}
	if !created {
		zap.S().Warnw("applied a credit recorded earlier", "userId", userID, "emergencyId", emergencyID, "amount", amount)
	}
	_, err = l.TDB.InsertOne(ctx, models.Transaction{
		ID:          primitive.NewObjectID(),
		UserID:      userID,
		Kind:        models.TransactionCredit,
		Coins:       amount,
		Status:      models.TransactionCompleted,
		EmergencyID: emergencyID,
		CreatedAt:   now,
	})
	if err != nil {
		zap.S().Errorw("failed to record credit transaction", "userId", userID, "emergencyId", emergencyID, "error", err)
	}
	return true, nil
}

// Eligibility reports whether userID can redeem at least one batch.
func (l *Ledger) Eligibility(ctx context.Context, userID string) (models.Eligibility, error) {
	account, err := l.CADB.FindOne(ctx, userID)
	if err != nil {
		return models.Eligibility{}, err
	}
	return models.Eligibility{
		Eligible: account.Coins >= models.RedemptionUnit,
		Coins:    account.Coins,
	}, nil
}

// Balance returns the user's current coins.
func (l *Ledger) Balance(ctx context.Context, userID string) (models.CoinBalance, error) {
	account, err := l.CADB.FindOne(ctx, userID)
	if err != nil {
		return models.CoinBalance{}, err
	}
	return models.CoinBalance{Incentives: account.Coins}, nil
}

// Redeem debits every whole batch of 1000 coins and pays it out to dest. The
// remainder stays on the balance. Redemptions for one user are serialized and
// the debit only applies if the balance is unchanged since it was read.
func (l *Ledger) Redeem(ctx context.Context, userID string, dest models.RedeemDestination) (models.Redemption, error) {
	unlock := l.locks.Lock(userID)
	defer unlock()

	for attempt := 0; attempt < redeemAttempts; attempt++ {
		account, err := l.CADB.FindOne(ctx, userID)
		if err != nil {
			return models.Redemption{}, err
		}
		if account.Coins < models.RedemptionUnit {
			return models.Redemption{}, ErrInsufficientBalance
		}
		if attempt == 0 {
			if err := l.requirePayoutDetails(ctx, userID, dest); err != nil {
				return models.Redemption{}, err
			}
		}

		debit := account.Coins / models.RedemptionUnit * models.RedemptionUnit
		ok, err := l.CADB.CompareAndDebit(ctx, userID, account.Coins, debit)
		if err != nil {
			return models.Redemption{}, fmt.Errorf("failed to debit balance: %w", err)
		}
		if !ok {
			zap.S().Debugw("balance changed during redeem, retrying", "userId", userID, "attempt", attempt)
			continue
		}

		amount, currency := dest.Payout(debit)
		tx := models.Transaction{
			ID:          primitive.NewObjectID(),
			UserID:      userID,
			Kind:        models.TransactionRedeem,
			Destination: dest,
			Coins:       debit,
			Amount:      amount,
			Currency:    currency,
			Status:      models.TransactionCompleted,
			CreatedAt:   l.now(),
		}
		if _, err := l.TDB.InsertOne(ctx, tx); err != nil {
			zap.S().Errorw("failed to record redeem transaction", "userId", userID, "coins", debit, "error", err)
		}
		return models.Redemption{
			Message:     fmt.Sprintf("Redeemed %d coins for %g %s", debit, amount, currency),
			Debited:     debit,
			Remaining:   account.Coins - debit,
			Transaction: tx,
		}, nil
	}
	return models.Redemption{}, ErrVersionConflict
}

// Transactions returns the user's coin statement, newest first.
func (l *Ledger) Transactions(ctx context.Context, userID string) ([]models.Transaction, error) {
	txs, err := l.TDB.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if txs == nil {
		txs = []models.Transaction{}
	}
	return txs, nil
}

// Earned returns the incentive credited to userID per emergency id.
func (l *Ledger) Earned(ctx context.Context, userID string) (map[string]int64, error) {
	entries, err := l.IDB.Find(ctx, bson.M{"userId": userID})
	if err != nil {
		return nil, err
	}
	earned := make(map[string]int64, len(entries))
	for _, e := range entries {
		earned[e.EmergencyID] = e.IncentivesEarned
	}
	return earned, nil
}

func (l *Ledger) requirePayoutDetails(ctx context.Context, userID string, dest models.RedeemDestination) error {
	if l.Payout == nil {
		return nil
	}
	details, err := l.Payout.Get(ctx, userID)
	if err != nil {
		return err
	}
	if dest == models.DestinationWallet && !details.HasWallet() {
		return fmt.Errorf("%w: save a wallet address first", ErrMissingPayoutDetails)
	}
	if dest == models.DestinationBank && !details.HasBank() {
		return fmt.Errorf("%w: save bank or UPI details first", ErrMissingPayoutDetails)
	}
	return nil
}
