package series

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"DogCoinBot/internal/model"
)

// SQLiteStore persists price samples to SQLite.
type SQLiteStore struct {
	db     *sql.DB
	symbol string
	mu     sync.Mutex
}

// NewSQLiteStore runs migrations and returns a store scoped to one symbol.
func NewSQLiteStore(db *sql.DB, symbol string) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db, symbol: symbol}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate series: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS prices (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			price     TEXT NOT NULL,
			symbol    TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_prices_symbol_ts ON prices(symbol, timestamp)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

// Append inserts a new sample at second resolution.
func (s *SQLiteStore) Append(price decimal.Decimal, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`INSERT INTO prices (timestamp, price, symbol) VALUES (?,?,?)`,
		at.Unix(), price.String(), s.symbol,
	)
	if err != nil {
		return fmt.Errorf("append sample: %w", err)
	}
	return nil
}

// RecentPrices returns up to limit prices, newest first.
func (s *SQLiteStore) RecentPrices(limit int) ([]decimal.Decimal, error) {
	rows, err := s.db.Query(
		`SELECT price FROM prices WHERE symbol = ? ORDER BY timestamp DESC, id DESC LIMIT ?`,
		s.symbol, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query recent prices: %w", err)
	}
	defer rows.Close()

	var out []decimal.Decimal
	for rows.Next() {
		var raw sql.NullString
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan price: %w", err)
		}
		if !raw.Valid {
			continue // discard null samples
		}
		p, err := decimal.NewFromString(raw.String)
		if err != nil {
			return nil, fmt.Errorf("parse stored price %q: %w", raw.String, err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// History returns the full series ascending, truncated to the last maxPoints.
func (s *SQLiteStore) History(maxPoints int) ([]model.PriceSample, error) {
	rows, err := s.db.Query(
		`SELECT timestamp, price FROM prices WHERE symbol = ? ORDER BY timestamp ASC, id ASC`,
		s.symbol,
	)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []model.PriceSample
	for rows.Next() {
		var ts int64
		var raw string
		if err := rows.Scan(&ts, &raw); err != nil {
			return nil, fmt.Errorf("scan sample: %w", err)
		}
		p, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("parse stored price %q: %w", raw, err)
		}
		out = append(out, model.PriceSample{
			Timestamp: time.Unix(ts, 0),
			Price:     p,
			Symbol:    s.symbol,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if maxPoints > 0 && len(out) > maxPoints {
		out = out[len(out)-maxPoints:]
	}
	return out, nil
}

// LastPrice returns the most recent price if any sample exists.
func (s *SQLiteStore) LastPrice() (decimal.Decimal, bool, error) {
	var raw string
	err := s.db.QueryRow(
		`SELECT price FROM prices WHERE symbol = ? ORDER BY timestamp DESC, id DESC LIMIT 1`,
		s.symbol,
	).Scan(&raw)
	if err == sql.ErrNoRows {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("query last price: %w", err)
	}
	p, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("parse stored price %q: %w", raw, err)
	}
	return p, true, nil
}

// Seed inserts the initial sample when the series is empty. Running it twice
// never inserts a second seed row.
func (s *SQLiteStore) Seed(price decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback()

	var count int
	if err := tx.QueryRow(
		`SELECT COUNT(*) FROM prices WHERE symbol = ?`, s.symbol,
	).Scan(&count); err != nil {
		return fmt.Errorf("count samples: %w", err)
	}
	if count > 0 {
		return nil
	}

	if _, err := tx.Exec(
		`INSERT INTO prices (timestamp, price, symbol) VALUES (?,?,?)`,
		time.Now().Unix(), price.String(), s.symbol,
	); err != nil {
		return fmt.Errorf("insert seed: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}
	log.Printf("[INFO] seeded %s price series at %s", s.symbol, price.String())
	return nil
}

func (s *SQLiteStore) Close() error {
	return nil // db handle is shared, closed by the owner
}
