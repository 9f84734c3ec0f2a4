package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// User is a registered account holder.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash []byte
}

// TransactionType distinguishes money coming in from money going out.
type TransactionType string

const (
	TypeExpense TransactionType = "expense"
	TypeIncome  TransactionType = "income"
)

// Transaction is a single dated money movement recorded by a user.
type Transaction struct {
	ID       int64
	UserID   int64
	Amount   decimal.Decimal
	Category string
	Note     string
	Date     time.Time
	Type     TransactionType
}

// Goal is a savings target with optional deadline.
type Goal struct {
	ID            int64
	UserID        int64
	Name          string
	TargetAmount  decimal.Decimal
	CurrentAmount decimal.Decimal
	Deadline      time.Time
}

// SpendingSummary aggregates a user's expenses for one calendar month.
// Rising lists categories whose spend grew versus the previous month; it
// feeds the deal ranker's prompt context.
type SpendingSummary struct {
	Month      string
	TotalSpent decimal.Decimal
	ByCategory map[string]decimal.Decimal
	Rising     []string
}

// Recommendation is a savings tip shown alongside the user's goals.
type Recommendation struct {
	Text string `json:"text"`
}
