package market

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"DogCoinBot/internal/model"
)

// fakeSeries is an in-memory series.Store holding prices newest first.
type fakeSeries struct {
	prices    []decimal.Decimal
	appendErr error
}

func (f *fakeSeries) Append(price decimal.Decimal, _ time.Time) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.prices = append([]decimal.Decimal{price}, f.prices...)
	return nil
}

func (f *fakeSeries) RecentPrices(limit int) ([]decimal.Decimal, error) {
	if len(f.prices) > limit {
		return f.prices[:limit], nil
	}
	return f.prices, nil
}

func (f *fakeSeries) History(maxPoints int) ([]model.PriceSample, error) {
	out := make([]model.PriceSample, 0, len(f.prices))
	for i := len(f.prices) - 1; i >= 0; i-- {
		out = append(out, model.PriceSample{Price: f.prices[i], Symbol: model.Symbol})
	}
	if maxPoints > 0 && len(out) > maxPoints {
		out = out[len(out)-maxPoints:]
	}
	return out, nil
}

func (f *fakeSeries) LastPrice() (decimal.Decimal, bool, error) {
	if len(f.prices) == 0 {
		return decimal.Zero, false, nil
	}
	return f.prices[0], true, nil
}

func (f *fakeSeries) Seed(price decimal.Decimal) error {
	if len(f.prices) == 0 {
		f.prices = []decimal.Decimal{price}
	}
	return nil
}

func (f *fakeSeries) Close() error { return nil }

func TestTick_BoundedStep(t *testing.T) {
	store := &fakeSeries{}
	if err := store.Seed(model.SeedPrice); err != nil {
		t.Fatalf("seed: %v", err)
	}
	quote := NewQuote(model.SeedPrice)
	eng := NewEngine(store, quote, DefaultLookback, rand.New(rand.NewSource(1)))

	bound := decimal.RequireFromString("0.10")
	prev := quote.Price()
	for i := 0; i < 500; i++ {
		if err := eng.Tick(); err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
		cur := quote.Price()

		if cur.LessThan(model.MinPrice) {
			t.Fatalf("tick %d: price %s below floor", i, cur)
		}
		// |cur - prev| / prev <= 0.10 unless the floor clamp fired.
		if !cur.Equal(model.MinPrice) {
			rel := cur.Sub(prev).Div(prev).Abs()
			// Rounding to 2dp may nudge the ratio past the bound by at
			// most half a cent of the previous price.
			slack := decimal.New(5, -3).Div(prev)
			if rel.GreaterThan(bound.Add(slack)) {
				t.Fatalf("tick %d: step %s exceeds bound (prev=%s cur=%s)", i, rel, prev, cur)
			}
		}
		prev = cur
	}
}

func TestTick_FloorAtMinPrice(t *testing.T) {
	store := &fakeSeries{}
	if err := store.Seed(model.MinPrice); err != nil {
		t.Fatalf("seed: %v", err)
	}
	quote := NewQuote(model.MinPrice)
	eng := NewEngine(store, quote, DefaultLookback, rand.New(rand.NewSource(7)))

	for i := 0; i < 100; i++ {
		if err := eng.Tick(); err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
		if quote.Price().LessThan(model.MinPrice) {
			t.Fatalf("tick %d: price %s below 0.01", i, quote.Price())
		}
	}
}

func TestTick_AppendsSample(t *testing.T) {
	store := &fakeSeries{}
	quote := NewQuote(model.SeedPrice)
	eng := NewEngine(store, quote, DefaultLookback, rand.New(rand.NewSource(3)))

	if err := eng.Tick(); err != nil {
		t.Fatalf("tick: %v", err)
	}
	last, ok, _ := store.LastPrice()
	if !ok {
		t.Fatal("expected a sample after tick")
	}
	if !last.Equal(quote.Price()) {
		t.Errorf("sample %s does not mirror quote %s", last, quote.Price())
	}
}

func TestTick_StorageFailureAborts(t *testing.T) {
	store := &fakeSeries{appendErr: errors.New("disk full")}
	quote := NewQuote(model.SeedPrice)
	eng := NewEngine(store, quote, DefaultLookback, rand.New(rand.NewSource(5)))

	if err := eng.Tick(); err == nil {
		t.Fatal("expected error when append fails")
	}
}

func TestAdjustment_ClampsRunawayMomentum(t *testing.T) {
	eng := NewEngine(&fakeSeries{}, NewQuote(model.SeedPrice), DefaultLookback, rand.New(rand.NewSource(11)))

	// Trend of +99900% forces the momentum term far past the clamp.
	prices := []decimal.Decimal{decimal.NewFromInt(1000), decimal.NewFromInt(1)}
	for i := 0; i < 100; i++ {
		adj := eng.adjustment(prices)
		if adj > maxAdjustment || adj < -maxAdjustment {
			t.Fatalf("adjustment %f outside clamp", adj)
		}
	}
}

func TestAdjustment_NoTrendWithSparseWindow(t *testing.T) {
	eng := NewEngine(&fakeSeries{}, NewQuote(model.SeedPrice), DefaultLookback, rand.New(rand.NewSource(13)))

	// With fewer than 2 samples, or a zero oldest value, the trend term is
	// zero and the adjustment is bounded by investor activity alone.
	for _, prices := range [][]decimal.Decimal{
		nil,
		{decimal.NewFromInt(500)},
		{decimal.NewFromInt(500), decimal.Zero},
	} {
		for i := 0; i < 200; i++ {
			adj := eng.adjustment(prices)
			// investor ±0.03 plus large trade ±0.02
			if adj > 0.05 || adj < -0.05 {
				t.Fatalf("adjustment %f exceeds trendless bound for window %v", adj, prices)
			}
		}
	}
}
