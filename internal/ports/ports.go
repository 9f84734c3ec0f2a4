package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"SpendScout/internal/domain"
)

// Fetcher issues one HTTP GET per call. A failed fetch reports
// domain.ErrFetchFailed; the caller decides whether to skip or abort.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// ProductSource samples candidates per category and resolves a candidate's
// store offers from its detail page.
type ProductSource interface {
	// Sample fetches each category's search page and returns a bounded random
	// subset of the products found. Categories that fetch or parse to nothing
	// contribute zero candidates and never abort the rest.
	Sample(ctx context.Context, categories []string) []domain.Candidate

	// Offers fetches the candidate's detail page and extracts its store
	// offers. A candidate without a detail reference yields no offers and no
	// error.
	Offers(ctx context.Context, c domain.Candidate) ([]domain.Offer, error)
}

// DealRanker asks a language model to select up to three deals from the
// priced products, justified against the user's spending summary.
type DealRanker interface {
	Rank(ctx context.Context, summary map[string]any, products []domain.PricedProduct) ([]domain.RankedDeal, error)
}

// ResultCache memoizes pipeline results for identical inputs. Concurrent
// calls with the same key may duplicate-compute; recomputation is idempotent.
type ResultCache interface {
	Get(ctx context.Context, key string) ([]domain.DealMessage, bool)
	Set(ctx context.Context, key string, value []domain.DealMessage, ttl time.Duration)
}

// UserRepository persists account holders.
type UserRepository interface {
	CreateUser(ctx context.Context, user domain.User) (int64, error)
	UserByID(ctx context.Context, id int64) (domain.User, error)
	UserByEmail(ctx context.Context, email string) (domain.User, error)
	UpdateUser(ctx context.Context, user domain.User) error
}

// TransactionRepository persists money movements.
type TransactionRepository interface {
	AddTransaction(ctx context.Context, tx domain.Transaction) (int64, error)
	TransactionsByUser(ctx context.Context, userID int64) ([]domain.Transaction, error)
	DeleteTransaction(ctx context.Context, id, userID int64) error
}

// GoalRepository persists savings goals.
type GoalRepository interface {
	CreateGoal(ctx context.Context, goal domain.Goal) (int64, error)
	GoalsByUser(ctx context.Context, userID int64) ([]domain.Goal, error)
	UpdateGoalProgress(ctx context.Context, id, userID int64, current decimal.Decimal) error
	DeleteGoal(ctx context.Context, id, userID int64) error
}
