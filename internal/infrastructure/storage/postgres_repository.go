package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"

	"SpendScout/internal/domain"
	"SpendScout/internal/ports"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PostgresRepository persists users, transactions, and savings goals.
type PostgresRepository struct {
	db *sql.DB
}

var (
	_ ports.UserRepository        = (*PostgresRepository)(nil)
	_ ports.TransactionRepository = (*PostgresRepository)(nil)
	_ ports.GoalRepository        = (*PostgresRepository)(nil)
)

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Open connects to Postgres and verifies the connection.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// CreateUser inserts an account and returns its generated id.
func (r *PostgresRepository) CreateUser(ctx context.Context, user domain.User) (int64, error) {
	query, args, err := psql.Insert("users").
		Columns("name", "email", "password").
		Values(user.Name, user.Email, user.PasswordHash).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert user: %w", err)
	}

	var id int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert user: %w", err)
	}
	return id, nil
}

// UserByID loads one account by id.
func (r *PostgresRepository) UserByID(ctx context.Context, id int64) (domain.User, error) {
	return r.user(ctx, sq.Eq{"id": id})
}

// UserByEmail loads one account by email.
func (r *PostgresRepository) UserByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.user(ctx, sq.Eq{"email": email})
}

func (r *PostgresRepository) user(ctx context.Context, where sq.Eq) (domain.User, error) {
	query, args, err := psql.Select("id", "name", "email", "password").
		From("users").
		Where(where).
		ToSql()
	if err != nil {
		return domain.User{}, fmt.Errorf("build select user: %w", err)
	}

	var user domain.User
	err = r.db.QueryRowContext(ctx, query, args...).
		Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("select user: %w", err)
	}
	return user, nil
}

// UpdateUser rewrites the mutable account fields.
func (r *PostgresRepository) UpdateUser(ctx context.Context, user domain.User) error {
	query, args, err := psql.Update("users").
		Set("name", user.Name).
		Set("password", user.PasswordHash).
		Where(sq.Eq{"id": user.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update user: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

// AddTransaction records a money movement and returns its id.
func (r *PostgresRepository) AddTransaction(ctx context.Context, tx domain.Transaction) (int64, error) {
	query, args, err := psql.Insert("transactions").
		Columns("user_id", "amount", "category", "note", "date", "type").
		Values(tx.UserID, tx.Amount, tx.Category, tx.Note, tx.Date, string(tx.Type)).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert transaction: %w", err)
	}

	var id int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}
	return id, nil
}

// TransactionsByUser lists a user's movements, newest first.
func (r *PostgresRepository) TransactionsByUser(ctx context.Context, userID int64) ([]domain.Transaction, error) {
	query, args, err := psql.Select("id", "amount", "category", "note", "date", "type").
		From("transactions").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("date DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select transactions: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select transactions: %w", err)
	}
	defer rows.Close()

	var transactions []domain.Transaction
	for rows.Next() {
		tx := domain.Transaction{UserID: userID}
		var txType string
		if err := rows.Scan(&tx.ID, &tx.Amount, &tx.Category, &tx.Note, &tx.Date, &txType); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		tx.Type = domain.TransactionType(txType)
		transactions = append(transactions, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return transactions, nil
}

// DeleteTransaction removes one movement owned by the user.
func (r *PostgresRepository) DeleteTransaction(ctx context.Context, id, userID int64) error {
	query, args, err := psql.Delete("transactions").
		Where(sq.Eq{"id": id, "user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete transaction: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return nil
}

// CreateGoal inserts a savings goal and returns its id.
func (r *PostgresRepository) CreateGoal(ctx context.Context, goal domain.Goal) (int64, error) {
	query, args, err := psql.Insert("goals").
		Columns("user_id", "name", "target_amount", "deadline").
		Values(goal.UserID, goal.Name, goal.TargetAmount, goal.Deadline).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert goal: %w", err)
	}

	var id int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert goal: %w", err)
	}
	return id, nil
}

// GoalsByUser lists a user's savings goals.
func (r *PostgresRepository) GoalsByUser(ctx context.Context, userID int64) ([]domain.Goal, error) {
	query, args, err := psql.Select("id", "name", "target_amount", "current_amount", "deadline").
		From("goals").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select goals: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select goals: %w", err)
	}
	defer rows.Close()

	var goals []domain.Goal
	for rows.Next() {
		goal := domain.Goal{UserID: userID}
		if err := rows.Scan(&goal.ID, &goal.Name, &goal.TargetAmount, &goal.CurrentAmount, &goal.Deadline); err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		goals = append(goals, goal)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return goals, nil
}

// UpdateGoalProgress sets a goal's saved-so-far amount.
func (r *PostgresRepository) UpdateGoalProgress(ctx context.Context, id, userID int64, current decimal.Decimal) error {
	query, args, err := psql.Update("goals").
		Set("current_amount", current).
		Where(sq.Eq{"id": id, "user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update goal: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update goal: %w", err)
	}
	return nil
}

// DeleteGoal removes one goal owned by the user.
func (r *PostgresRepository) DeleteGoal(ctx context.Context, id, userID int64) error {
	query, args, err := psql.Delete("goals").
		Where(sq.Eq{"id": id, "user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete goal: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	return nil
}
