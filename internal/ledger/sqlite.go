package ledger

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"DogCoinBot/internal/model"
)

// SQLiteStore persists accounts and trades to SQLite. Monetary values are
// stored as TEXT to keep 2-decimal amounts exact.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore runs migrations on the given database and returns the store.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate ledger: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			user_id  INTEGER PRIMARY KEY,
			balance  TEXT NOT NULL DEFAULT '0',
			holdings TEXT NOT NULL DEFAULT '0'
		)`,

		`CREATE TABLE IF NOT EXISTS trades (
			id          TEXT PRIMARY KEY,
			user_id     INTEGER NOT NULL,
			action      TEXT NOT NULL,
			quantity    TEXT NOT NULL,
			price       TEXT NOT NULL,
			total_value TEXT NOT NULL,
			executed_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_trades_user ON trades(user_id, executed_at)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

// GetBalance returns the stored balance, or zero if the account is absent.
func (s *SQLiteStore) GetBalance(userID int64) (decimal.Decimal, error) {
	acct, err := s.GetAccount(userID)
	if err != nil {
		return decimal.Zero, err
	}
	return acct.Balance, nil
}

// GetHoldings returns the stored holdings, or zero if the account is absent.
func (s *SQLiteStore) GetHoldings(userID int64) (decimal.Decimal, error) {
	acct, err := s.GetAccount(userID)
	if err != nil {
		return decimal.Zero, err
	}
	return acct.Holdings, nil
}

// GetAccount returns the full account row, zero-valued if absent.
func (s *SQLiteStore) GetAccount(userID int64) (model.Account, error) {
	var balStr, holdStr string
	err := s.db.QueryRow(
		`SELECT balance, holdings FROM accounts WHERE user_id = ?`, userID,
	).Scan(&balStr, &holdStr)
	if err == sql.ErrNoRows {
		return model.EmptyAccount(userID), nil
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("query account %d: %w", userID, err)
	}
	return parseAccount(userID, balStr, holdStr)
}

// AdjustBalance applies delta to the balance, flooring at zero.
func (s *SQLiteStore) AdjustBalance(userID int64, delta decimal.Decimal) (decimal.Decimal, error) {
	return s.adjust(userID, "balance", delta)
}

// AdjustHoldings applies delta to the holdings, flooring at zero.
func (s *SQLiteStore) AdjustHoldings(userID int64, delta decimal.Decimal) (decimal.Decimal, error) {
	return s.adjust(userID, "holdings", delta)
}

// adjust performs the read-modify-write for one column in a transaction.
// column is one of the fixed names "balance" or "holdings".
func (s *SQLiteStore) adjust(userID int64, column string, delta decimal.Decimal) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return decimal.Zero, fmt.Errorf("begin adjust: %w", err)
	}
	defer tx.Rollback()

	var cur string
	exists := true
	err = tx.QueryRow(
		fmt.Sprintf(`SELECT %s FROM accounts WHERE user_id = ?`, column), userID,
	).Scan(&cur)
	if err == sql.ErrNoRows {
		exists = false
		cur = "0"
	} else if err != nil {
		return decimal.Zero, fmt.Errorf("query %s: %w", column, err)
	}

	old, err := decimal.NewFromString(cur)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse stored %s %q: %w", column, cur, err)
	}
	next := clampFloor(old.Add(delta))

	if exists {
		_, err = tx.Exec(
			fmt.Sprintf(`UPDATE accounts SET %s = ? WHERE user_id = ?`, column),
			next.String(), userID,
		)
	} else {
		_, err = tx.Exec(
			fmt.Sprintf(`INSERT INTO accounts (user_id, %s) VALUES (?, ?)`, column),
			userID, next.String(),
		)
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("write %s: %w", column, err)
	}
	if err := tx.Commit(); err != nil {
		return decimal.Zero, fmt.Errorf("commit adjust: %w", err)
	}
	return next, nil
}

// ResetBalance zeroes the user's balance by applying its negation.
func (s *SQLiteStore) ResetBalance(userID int64) error {
	bal, err := s.GetBalance(userID)
	if err != nil {
		return err
	}
	_, err = s.AdjustBalance(userID, bal.Neg())
	return err
}

// ResetHoldings zeroes the user's holdings by applying its negation.
func (s *SQLiteStore) ResetHoldings(userID int64) error {
	hold, err := s.GetHoldings(userID)
	if err != nil {
		return err
	}
	_, err = s.AdjustHoldings(userID, hold.Neg())
	return err
}

// ExecuteTrade applies the balance and holdings deltas of one trade in a
// single transaction. Unlike adjust, a delta that would push a field below
// zero rejects the whole trade.
func (s *SQLiteStore) ExecuteTrade(userID int64, balanceDelta, holdingsDelta decimal.Decimal) (model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return model.Account{}, fmt.Errorf("begin trade: %w", err)
	}
	defer tx.Rollback()

	acct, err := accountForUpdate(tx, userID)
	if err != nil {
		return model.Account{}, err
	}

	newBalance := acct.Balance.Add(balanceDelta).Round(2)
	if newBalance.IsNegative() {
		return model.Account{}, ErrInsufficientBalance
	}
	newHoldings := acct.Holdings.Add(holdingsDelta).Round(2)
	if newHoldings.IsNegative() {
		return model.Account{}, ErrInsufficientHoldings
	}

	if err := upsertAccount(tx, userID, newBalance, newHoldings); err != nil {
		return model.Account{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Account{}, fmt.Errorf("commit trade: %w", err)
	}

	return model.Account{UserID: userID, Balance: newBalance, Holdings: newHoldings}, nil
}

// Transfer moves fiat from one user to another in a single transaction.
// A self-transfer nets to zero: the sender's funds are still validated, but
// no balance changes.
func (s *SQLiteStore) Transfer(from, to int64, amount decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transfer: %w", err)
	}
	defer tx.Rollback()

	sender, err := accountForUpdate(tx, from)
	if err != nil {
		return err
	}
	if sender.Balance.LessThan(amount) {
		return ErrInsufficientBalance
	}
	if from == to {
		return nil
	}
	recipient, err := accountForUpdate(tx, to)
	if err != nil {
		return err
	}

	if err := upsertAccount(tx, from, sender.Balance.Sub(amount).Round(2), sender.Holdings); err != nil {
		return err
	}
	if err := upsertAccount(tx, to, recipient.Balance.Add(amount).Round(2), recipient.Holdings); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transfer: %w", err)
	}
	return nil
}

// RecordTrade appends one settled trade to the journal.
func (s *SQLiteStore) RecordTrade(rec *model.TradeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`INSERT INTO trades
		(id, user_id, action, quantity, price, total_value, executed_at)
		VALUES (?,?,?,?,?,?,?)`,
		rec.ID, rec.UserID, string(rec.Action),
		rec.Quantity.String(), rec.Price.String(), rec.TotalValue.String(),
		rec.ExecutedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("record trade: %w", err)
	}
	return nil
}

// RecentTrades returns up to limit of the user's trades, newest first.
func (s *SQLiteStore) RecentTrades(userID int64, limit int) ([]model.TradeRecord, error) {
	rows, err := s.db.Query(`SELECT id, action, quantity, price, total_value, executed_at
		FROM trades WHERE user_id = ? ORDER BY executed_at DESC LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query trades: %w", err)
	}
	defer rows.Close()

	var out []model.TradeRecord
	for rows.Next() {
		var rec model.TradeRecord
		var action, qty, price, total string
		var ts int64
		if err := rows.Scan(&rec.ID, &action, &qty, &price, &total, &ts); err != nil {
			return nil, fmt.Errorf("scan trade: %w", err)
		}
		rec.UserID = userID
		rec.Action = model.TradeAction(action)
		if rec.Quantity, err = decimal.NewFromString(qty); err != nil {
			return nil, fmt.Errorf("parse quantity %q: %w", qty, err)
		}
		if rec.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("parse price %q: %w", price, err)
		}
		if rec.TotalValue, err = decimal.NewFromString(total); err != nil {
			return nil, fmt.Errorf("parse total %q: %w", total, err)
		}
		rec.ExecutedAt = time.Unix(ts, 0)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	log.Println("[INFO] closing ledger store")
	return nil // db handle is shared, closed by the owner
}

func accountForUpdate(tx *sql.Tx, userID int64) (model.Account, error) {
	var balStr, holdStr string
	err := tx.QueryRow(
		`SELECT balance, holdings FROM accounts WHERE user_id = ?`, userID,
	).Scan(&balStr, &holdStr)
	if err == sql.ErrNoRows {
		return model.EmptyAccount(userID), nil
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("query account %d: %w", userID, err)
	}
	return parseAccount(userID, balStr, holdStr)
}

func upsertAccount(tx *sql.Tx, userID int64, balance, holdings decimal.Decimal) error {
	_, err := tx.Exec(`INSERT INTO accounts (user_id, balance, holdings) VALUES (?,?,?)
		ON CONFLICT(user_id) DO UPDATE SET balance = excluded.balance, holdings = excluded.holdings`,
		userID, balance.String(), holdings.String(),
	)
	if err != nil {
		return fmt.Errorf("upsert account %d: %w", userID, err)
	}
	return nil
}

func parseAccount(userID int64, balStr, holdStr string) (model.Account, error) {
	bal, err := decimal.NewFromString(balStr)
	if err != nil {
		return model.Account{}, fmt.Errorf("parse stored balance %q: %w", balStr, err)
	}
	hold, err := decimal.NewFromString(holdStr)
	if err != nil {
		return model.Account{}, fmt.Errorf("parse stored holdings %q: %w", holdStr, err)
	}
	return model.Account{UserID: userID, Balance: bal, Holdings: hold}, nil
}

// clampFloor rounds to 2 decimal places and floors at zero.
func clampFloor(v decimal.Decimal) decimal.Decimal {
	v = v.Round(2)
	if v.IsNegative() {
		return decimal.Zero
	}
	return v
}
