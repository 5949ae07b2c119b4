package market

import (
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"DogCoinBot/internal/model"
	"DogCoinBot/internal/series"
)

// Tunables of the simulated price walk.
const (
	momentumWeight   = 0.001
	investorRange    = 0.03 // investor activity drawn from [-0.03, 0.03]
	largeTradeImpact = 0.02
	largeTradeChance = 0.1
	maxAdjustment    = 0.10 // per-tick adjustment clamped to ±10%
	DefaultLookback  = 40
)

// Engine advances the price once per tick: a bounded stochastic adjustment
// derived from recent trend, random investor activity and occasional large
// trades.
type Engine struct {
	store    series.Store
	quote    *Quote
	lookback int

	mu  sync.Mutex
	rng *rand.Rand
}

// NewEngine creates an engine. rng may be seeded deterministically in tests;
// pass nil for a time-seeded source.
func NewEngine(store series.Store, quote *Quote, lookback int, rng *rand.Rand) *Engine {
	if lookback <= 0 {
		lookback = DefaultLookback
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Engine{store: store, quote: quote, lookback: lookback, rng: rng}
}

// Tick computes and applies one price adjustment. A storage failure aborts
// the tick; the next scheduled tick proceeds regardless.
func (e *Engine) Tick() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	prices, err := e.store.RecentPrices(e.lookback)
	if err != nil {
		return fmt.Errorf("read lookback: %w", err)
	}

	adjustment := e.adjustment(prices)

	current := e.quote.Price()
	next := current.Mul(decimal.NewFromFloat(1 + adjustment)).Round(2)
	if next.LessThan(model.MinPrice) {
		next = model.MinPrice
	}

	e.quote.set(next)
	if err := e.store.Append(next, time.Now()); err != nil {
		return fmt.Errorf("append sample: %w", err)
	}

	log.Printf("[INFO] price tick: %s -> %s (adj %+.4f)", current.StringFixed(2), next.StringFixed(2), adjustment)
	return nil
}

// adjustment computes the clamped relative price change for one tick.
// prices is the lookback window, newest first.
func (e *Engine) adjustment(prices []decimal.Decimal) float64 {
	// Relative trend across the window: newest vs the oldest value within
	// the lookback, which is both baseline and denominator.
	trend := 0.0
	if len(prices) >= 2 {
		oldest := prices[len(prices)-1]
		if !oldest.IsZero() {
			newestF, _ := prices[0].Float64()
			oldestF, _ := oldest.Float64()
			trend = (newestF - oldestF) / oldestF
		}
	}
	momentum := momentumWeight * trend

	investor := (e.rng.Float64()*2 - 1) * investorRange

	large := 0.0
	if e.rng.Float64() < largeTradeChance {
		switch e.rng.Intn(3) {
		case 0:
			large = largeTradeImpact
		case 1:
			large = -largeTradeImpact
		}
	}

	adj := investor + momentum + large
	if adj > maxAdjustment {
		adj = maxAdjustment
	} else if adj < -maxAdjustment {
		adj = -maxAdjustment
	}
	return adj
}
