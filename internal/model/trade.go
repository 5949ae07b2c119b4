package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeAction is the direction of a trade.
type TradeAction string

const (
	ActionBuy  TradeAction = "buy"
	ActionSell TradeAction = "sell"
)

// TradeRecord is one settled trade, journaled for audit.
type TradeRecord struct {
	ID         string
	UserID     int64
	Action     TradeAction
	Quantity   decimal.Decimal
	Price      decimal.Decimal
	TotalValue decimal.Decimal
	ExecutedAt time.Time
}
