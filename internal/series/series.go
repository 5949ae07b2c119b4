// Package series is the append-only price history store.
package series

import (
	"time"

	"github.com/shopspring/decimal"

	"DogCoinBot/internal/model"
)

// Store persists (timestamp, price, symbol) samples for one instrument.
// Samples are append-only, ordered by timestamp ascending.
type Store interface {
	// Append inserts a new immutable sample.
	Append(price decimal.Decimal, at time.Time) error

	// RecentPrices returns up to limit of the most recent prices, newest
	// first. This is the evolution engine's lookback view.
	RecentPrices(limit int) ([]decimal.Decimal, error)

	// History returns the series ascending by timestamp, truncated to the
	// last maxPoints if longer.
	History(maxPoints int) ([]model.PriceSample, error)

	// LastPrice returns the most recent sample's price, or ok=false on an
	// empty series.
	LastPrice() (price decimal.Decimal, ok bool, err error)

	// Seed inserts the initial sample iff the series is empty. Idempotent.
	Seed(price decimal.Decimal) error

	Close() error
}
