package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Symbol identifies the single tracked instrument. The schema supports
// multiple symbols but only this one is ever written.
const Symbol = "dogcoin"

// SeedPrice is the price of the first sample inserted into an empty series,
// and the fallback quote when no sample exists.
var SeedPrice = decimal.RequireFromString("500.00")

// MinPrice is the floor the evolution engine clamps new prices to.
var MinPrice = decimal.RequireFromString("0.01")

// PriceSample is one immutable point in the price history.
type PriceSample struct {
	Timestamp time.Time
	Price     decimal.Decimal
	Symbol    string
}
