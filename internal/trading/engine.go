// Package trading computes trade legality and settlement at the current price.
package trading

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"DogCoinBot/internal/ledger"
	"DogCoinBot/internal/market"
	"DogCoinBot/internal/model"
)

var (
	// ErrInvalidAction rejects any action other than buy/sell.
	ErrInvalidAction = errors.New("invalid action, use buy or sell")
	// ErrInvalidAmount rejects an unparsable quantity specifier.
	ErrInvalidAmount = errors.New("invalid amount, specify a number, 'max', or 'all'")
	// ErrInsufficientFunds rejects a buy the balance cannot cover.
	ErrInsufficientFunds = errors.New("insufficient fiat balance")
	// ErrInsufficientHoldings rejects a sell exceeding current holdings.
	ErrInsufficientHoldings = errors.New("insufficient DogCoin holdings")
)

// Result describes a settled trade.
type Result struct {
	Action     model.TradeAction
	Quantity   decimal.Decimal
	Price      decimal.Decimal
	TotalValue decimal.Decimal
	Account    model.Account // post-trade state
}

// Engine executes trades against the ledger at the live quote.
type Engine struct {
	ledger ledger.Store
	quote  *market.Quote
}

// NewEngine creates a trading engine.
func NewEngine(l ledger.Store, q *market.Quote) *Engine {
	return &Engine{ledger: l, quote: q}
}

// ParseAction parses a case-insensitive buy/sell token.
func ParseAction(s string) (model.TradeAction, error) {
	switch strings.ToLower(s) {
	case "buy":
		return model.ActionBuy, nil
	case "sell":
		return model.ActionSell, nil
	default:
		return "", ErrInvalidAction
	}
}

// Execute runs one trade for the user. amountArg is a literal decimal or the
// token "max"/"all" meaning full capacity. Both ledger writes happen in a
// single transaction, so concurrent trades cannot over-spend.
func (e *Engine) Execute(userID int64, actionArg, amountArg string) (*Result, error) {
	action, err := ParseAction(actionArg)
	if err != nil {
		return nil, err
	}

	price := e.quote.Price()
	acct, err := e.ledger.GetAccount(userID)
	if err != nil {
		return nil, fmt.Errorf("read account: %w", err)
	}

	quantity, err := resolveQuantity(action, amountArg, acct, price)
	if err != nil {
		return nil, err
	}
	totalValue := quantity.Mul(price).Round(2)

	var after model.Account
	switch action {
	case model.ActionBuy:
		if !quantity.IsPositive() || acct.Balance.LessThan(totalValue) {
			return nil, ErrInsufficientFunds
		}
		after, err = e.ledger.ExecuteTrade(userID, totalValue.Neg(), quantity)
		if errors.Is(err, ledger.ErrInsufficientBalance) {
			return nil, ErrInsufficientFunds
		}
	case model.ActionSell:
		if !quantity.IsPositive() || acct.Holdings.LessThan(quantity) {
			return nil, ErrInsufficientHoldings
		}
		after, err = e.ledger.ExecuteTrade(userID, totalValue, quantity.Neg())
		if errors.Is(err, ledger.ErrInsufficientHoldings) {
			return nil, ErrInsufficientHoldings
		}
	}
	if err != nil {
		return nil, fmt.Errorf("settle trade: %w", err)
	}

	rec := &model.TradeRecord{
		ID:         uuid.New().String(),
		UserID:     userID,
		Action:     action,
		Quantity:   quantity,
		Price:      price,
		TotalValue: totalValue,
		ExecutedAt: time.Now(),
	}
	if err := e.ledger.RecordTrade(rec); err != nil {
		// The trade itself settled; a journal failure is logged, not surfaced.
		log.Printf("[ERROR] record trade %s: %v", rec.ID, err)
	}

	return &Result{
		Action:     action,
		Quantity:   quantity,
		Price:      price,
		TotalValue: totalValue,
		Account:    after,
	}, nil
}

// resolveQuantity turns the amount argument into a non-negative quantity
// rounded to 2 decimal places.
func resolveQuantity(action model.TradeAction, amountArg string, acct model.Account, price decimal.Decimal) (decimal.Decimal, error) {
	var raw decimal.Decimal
	switch strings.ToLower(amountArg) {
	case "max", "all":
		if action == model.ActionBuy {
			raw = acct.Balance.Div(price)
		} else {
			raw = acct.Holdings
		}
	default:
		var err error
		raw, err = decimal.NewFromString(amountArg)
		if err != nil {
			return decimal.Zero, ErrInvalidAmount
		}
	}

	if raw.IsNegative() {
		raw = decimal.Zero
	}
	return raw.Round(2), nil
}
