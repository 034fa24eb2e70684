package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/trackwise/expense-voice/internal/domain/entity"
)

// ErrNotFound is returned when an expense does not exist.
var ErrNotFound = errors.New("expense not found")

// ExpenseRepository handles expense database operations
type ExpenseRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewExpenseRepository creates a new expense repository
func NewExpenseRepository(db *sql.DB, logger *zap.Logger) *ExpenseRepository {
	return &ExpenseRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts an expense and fills in its generated ID and timestamps.
func (r *ExpenseRepository) Create(ctx context.Context, expense *entity.Expense) error {
	query := `
		INSERT INTO expenses (username, amount, category, description, date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx, query,
		expense.Username,
		expense.Amount.String(),
		expense.Category,
		expense.Description,
		expense.Date,
		now,
		now,
	)
	if err != nil {
		r.logger.Error("Failed to create expense", zap.Error(err))
		return fmt.Errorf("failed to create expense: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	expense.ID = id
	expense.CreatedAt = now
	expense.UpdatedAt = now
	return nil
}

// GetByID retrieves one expense scoped to a username.
func (r *ExpenseRepository) GetByID(ctx context.Context, username string, id int64) (*entity.Expense, error) {
	query := `
		SELECT id, username, amount, category, description, date, created_at, updated_at
		FROM expenses
		WHERE id = ? AND username = ?
	`

	expense, err := scanExpense(r.db.QueryRowContext(ctx, query, id, username))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get expense", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	return expense, nil
}

// List returns expenses matching the filter, newest date first.
func (r *ExpenseRepository) List(ctx context.Context, filter entity.ExpenseFilter) ([]*entity.Expense, error) {
	query := `
		SELECT id, username, amount, category, description, date, created_at, updated_at
		FROM expenses
		WHERE username = ?
	`
	args := []any{filter.Username}

	if filter.StartDate != nil {
		query += " AND date >= ?"
		args = append(args, *filter.StartDate)
	}
	if filter.EndDate != nil {
		query += " AND date <= ?"
		args = append(args, *filter.EndDate)
	}
	if filter.Category != "" {
		query += " AND category = ?"
		args = append(args, filter.Category)
	}
	query += " ORDER BY date DESC, id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list expenses", zap.Error(err))
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	expenses := make([]*entity.Expense, 0)
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, expense)
	}
	return expenses, rows.Err()
}

// Update overwrites the mutable fields of an expense.
func (r *ExpenseRepository) Update(ctx context.Context, expense *entity.Expense) error {
	query := `
		UPDATE expenses
		SET amount = ?, category = ?, description = ?, date = ?, updated_at = ?
		WHERE id = ? AND username = ?
	`

	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx, query,
		expense.Amount.String(),
		expense.Category,
		expense.Description,
		expense.Date,
		now,
		expense.ID,
		expense.Username,
	)
	if err != nil {
		r.logger.Error("Failed to update expense", zap.Int64("id", expense.ID), zap.Error(err))
		return fmt.Errorf("failed to update expense: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	expense.UpdatedAt = now
	return nil
}

// Delete removes an expense scoped to a username.
func (r *ExpenseRepository) Delete(ctx context.Context, username string, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ? AND username = ?", id, username)
	if err != nil {
		r.logger.Error("Failed to delete expense", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to delete expense: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// CategorySummaries returns per-category totals for a user, largest total
// first. Totals are summed as decimals, not floats; SQLite would otherwise
// coerce the text amounts.
func (r *ExpenseRepository) CategorySummaries(ctx context.Context, username string) ([]entity.CategorySummary, error) {
	query := `
		SELECT category, amount
		FROM expenses
		WHERE username = ?
	`

	rows, err := r.db.QueryContext(ctx, query, username)
	if err != nil {
		r.logger.Error("Failed to query category summaries", zap.Error(err))
		return nil, fmt.Errorf("failed to query category summaries: %w", err)
	}
	defer rows.Close()

	totals := make(map[string]*entity.CategorySummary)
	order := make([]string, 0)
	for rows.Next() {
		var category, amountStr string
		if err := rows.Scan(&category, &amountStr); err != nil {
			return nil, fmt.Errorf("failed to scan summary row: %w", err)
		}

		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return nil, fmt.Errorf("stored amount %q is not a decimal: %w", amountStr, err)
		}

		summary, ok := totals[category]
		if !ok {
			summary = &entity.CategorySummary{Category: category}
			totals[category] = summary
			order = append(order, category)
		}
		summary.Total = summary.Total.Add(amount)
		summary.Count++
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	summaries := make([]entity.CategorySummary, 0, len(order))
	for _, category := range order {
		summaries = append(summaries, *totals[category])
	}
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].Total.GreaterThan(summaries[j].Total)
	})
	return summaries, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (*entity.Expense, error) {
	var (
		expense   entity.Expense
		amountStr string
	)
	err := row.Scan(
		&expense.ID,
		&expense.Username,
		&amountStr,
		&expense.Category,
		&expense.Description,
		&expense.Date,
		&expense.CreatedAt,
		&expense.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	expense.Amount, err = decimal.NewFromString(amountStr)
	if err != nil {
		return nil, fmt.Errorf("stored amount %q is not a decimal: %w", amountStr, err)
	}
	return &expense, nil
}
