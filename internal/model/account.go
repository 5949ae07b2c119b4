package model

import "github.com/shopspring/decimal"

// Account holds one user's fiat balance and DogCoin holdings.
// Both fields are non-negative, rounded to 2 decimal places.
type Account struct {
	UserID   int64
	Balance  decimal.Decimal
	Holdings decimal.Decimal
}

// EmptyAccount returns the zero-valued account for a user without a row.
func EmptyAccount(userID int64) Account {
	return Account{
		UserID:   userID,
		Balance:  decimal.Zero,
		Holdings: decimal.Zero,
	}
}
