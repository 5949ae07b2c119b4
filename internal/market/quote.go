// Package market owns the live DogCoin price: the process-wide quote and the
// evolution engine that advances it.
package market

import (
	"sync"

	"github.com/shopspring/decimal"
)

// Quote is the process-wide current price. The evolution engine is the single
// writer; trade computations and display read it under the lock.
type Quote struct {
	mu    sync.RWMutex
	price decimal.Decimal
}

// NewQuote returns a quote initialized to the given price.
func NewQuote(initial decimal.Decimal) *Quote {
	return &Quote{price: initial}
}

// Price returns the current price.
func (q *Quote) Price() decimal.Decimal {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.price
}

func (q *Quote) set(p decimal.Decimal) {
	q.mu.Lock()
	q.price = p
	q.mu.Unlock()
}
