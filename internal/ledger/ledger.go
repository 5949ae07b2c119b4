package ledger

import (
	"errors"

	"github.com/shopspring/decimal"

	"DogCoinBot/internal/model"
)

// ErrInsufficientBalance is returned when a trade or transfer would push a
// balance below zero. Clamping adjustments never return it.
var ErrInsufficientBalance = errors.New("insufficient balance")

// ErrInsufficientHoldings is returned when a trade would push holdings below zero.
var ErrInsufficientHoldings = errors.New("insufficient holdings")

// Store persists per-user accounts and the trade journal.
//
// Accounts are created implicitly: every mutating call upserts the row with
// the untouched field defaulted to zero. Missing accounts read as zero.
type Store interface {
	GetBalance(userID int64) (decimal.Decimal, error)
	GetHoldings(userID int64) (decimal.Decimal, error)
	GetAccount(userID int64) (model.Account, error)

	// AdjustBalance applies delta to the user's balance, flooring at zero and
	// rounding to 2 decimal places. Returns the new balance.
	AdjustBalance(userID int64, delta decimal.Decimal) (decimal.Decimal, error)
	// AdjustHoldings is symmetric to AdjustBalance, operating on holdings.
	AdjustHoldings(userID int64, delta decimal.Decimal) (decimal.Decimal, error)

	ResetBalance(userID int64) error
	ResetHoldings(userID int64) error

	// ExecuteTrade applies both deltas in a single transaction, rejecting the
	// whole trade if either field would go negative.
	ExecuteTrade(userID int64, balanceDelta, holdingsDelta decimal.Decimal) (model.Account, error)

	// Transfer moves fiat between users in a single transaction, validating
	// the sender's funds.
	Transfer(from, to int64, amount decimal.Decimal) error

	RecordTrade(rec *model.TradeRecord) error
	RecentTrades(userID int64, limit int) ([]model.TradeRecord, error)

	Close() error
}
