package series

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"DogCoinBot/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open storage: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	s, err := NewSQLiteStore(db, "dogcoin")
	if err != nil {
		t.Fatalf("init series: %v", err)
	}
	return s
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestSeed_Idempotent(t *testing.T) {
	s := newTestStore(t)

	if err := s.Seed(dec("500.00")); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := s.Seed(dec("500.00")); err != nil {
		t.Fatalf("second seed: %v", err)
	}

	hist, err := s.History(0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(hist) != 1 {
		t.Fatalf("expected exactly one seed sample, got %d", len(hist))
	}
	if !hist[0].Price.Equal(dec("500.00")) {
		t.Errorf("expected seed price 500.00, got %s", hist[0].Price)
	}
}

func TestSeed_SkippedWhenNonEmpty(t *testing.T) {
	s := newTestStore(t)

	if err := s.Append(dec("123.45"), time.Now()); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.Seed(dec("500.00")); err != nil {
		t.Fatalf("seed: %v", err)
	}

	hist, err := s.History(0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(hist) != 1 {
		t.Fatalf("expected 1 sample, got %d", len(hist))
	}
}

func TestRecentPrices_NewestFirst(t *testing.T) {
	s := newTestStore(t)

	base := time.Now().Add(-10 * time.Minute)
	for i, p := range []string{"100", "101", "102", "103"} {
		if err := s.Append(dec(p), base.Add(time.Duration(i)*time.Minute)); err != nil {
			t.Fatalf("append %s: %v", p, err)
		}
	}

	prices, err := s.RecentPrices(3)
	if err != nil {
		t.Fatalf("recent prices: %v", err)
	}
	if len(prices) != 3 {
		t.Fatalf("expected 3 prices, got %d", len(prices))
	}
	if !prices[0].Equal(dec("103")) {
		t.Errorf("expected newest first (103), got %s", prices[0])
	}
	if !prices[2].Equal(dec("101")) {
		t.Errorf("expected oldest of window last (101), got %s", prices[2])
	}
}

func TestHistory_AscendingAndTruncated(t *testing.T) {
	s := newTestStore(t)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		p := decimal.NewFromInt(int64(200 + i))
		if err := s.Append(p, base.Add(time.Duration(i)*time.Minute)); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	hist, err := s.History(3)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(hist) != 3 {
		t.Fatalf("expected truncation to 3, got %d", len(hist))
	}
	// Truncation keeps the most recent points, ascending.
	if !hist[0].Price.Equal(dec("202")) || !hist[2].Price.Equal(dec("204")) {
		t.Errorf("unexpected window: %s .. %s", hist[0].Price, hist[2].Price)
	}
	for i := 1; i < len(hist); i++ {
		if hist[i].Timestamp.Before(hist[i-1].Timestamp) {
			t.Errorf("history not ascending at %d", i)
		}
	}
}

func TestLastPrice(t *testing.T) {
	s := newTestStore(t)

	if _, ok, err := s.LastPrice(); err != nil || ok {
		t.Fatalf("expected empty series, ok=%v err=%v", ok, err)
	}

	if err := s.Append(dec("77.70"), time.Now()); err != nil {
		t.Fatalf("append: %v", err)
	}
	p, ok, err := s.LastPrice()
	if err != nil {
		t.Fatalf("last price: %v", err)
	}
	if !ok || !p.Equal(dec("77.70")) {
		t.Errorf("expected 77.70, got ok=%v p=%s", ok, p)
	}
}
