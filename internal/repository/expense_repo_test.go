package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/trackwise/expense-voice/internal/domain/entity"
	"github.com/trackwise/expense-voice/pkg/database"
)

func newTestRepo(t *testing.T) *ExpenseRepository {
	t.Helper()

	db, err := database.New(database.Config{
		Path:            filepath.Join(t.TempDir(), "test.db"),
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Minute,
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.NewMigrator(db, zap.NewNop()).Run(Migrations))
	return NewExpenseRepository(db.DB, zap.NewNop())
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}

func TestExpenseRepository_CreateAndGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	expense := &entity.Expense{
		Username:    "asha",
		Amount:      mustDecimal(t, "249.99"),
		Category:    "Shopping",
		Description: "headphones",
		Date:        date(t, "2025-03-10"),
	}
	require.NoError(t, repo.Create(ctx, expense))
	assert.NotZero(t, expense.ID)

	got, err := repo.GetByID(ctx, "asha", expense.ID)
	require.NoError(t, err)
	assert.True(t, got.Amount.Equal(mustDecimal(t, "249.99")), "amount survives the round trip exactly")
	assert.Equal(t, "Shopping", got.Category)
	assert.Equal(t, "headphones", got.Description)
}

func TestExpenseRepository_GetScopedToUsername(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	expense := &entity.Expense{
		Username: "asha",
		Amount:   mustDecimal(t, "10"),
		Category: "Food",
		Date:     date(t, "2025-03-10"),
	}
	require.NoError(t, repo.Create(ctx, expense))

	_, err := repo.GetByID(ctx, "someone-else", expense.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExpenseRepository_ListFilters(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	seed := []struct {
		amount   string
		category string
		day      string
	}{
		{"100", "Food", "2025-01-05"},
		{"200", "Travel", "2025-01-15"},
		{"300", "Food", "2025-02-05"},
		{"400", "Housing", "2025-03-01"},
	}
	for _, s := range seed {
		require.NoError(t, repo.Create(ctx, &entity.Expense{
			Username: "asha",
			Amount:   mustDecimal(t, s.amount),
			Category: s.category,
			Date:     date(t, s.day),
		}))
	}

	t.Run("all newest first", func(t *testing.T) {
		expenses, err := repo.List(ctx, entity.ExpenseFilter{Username: "asha"})
		require.NoError(t, err)
		require.Len(t, expenses, 4)
		assert.Equal(t, "Housing", expenses[0].Category)
		assert.Equal(t, "Food", expenses[3].Category)
	})

	t.Run("date range", func(t *testing.T) {
		start := date(t, "2025-01-10")
		end := date(t, "2025-02-28")
		expenses, err := repo.List(ctx, entity.ExpenseFilter{
			Username:  "asha",
			StartDate: &start,
			EndDate:   &end,
		})
		require.NoError(t, err)
		require.Len(t, expenses, 2)
	})

	t.Run("category", func(t *testing.T) {
		expenses, err := repo.List(ctx, entity.ExpenseFilter{Username: "asha", Category: "Food"})
		require.NoError(t, err)
		require.Len(t, expenses, 2)
	})

	t.Run("other user sees nothing", func(t *testing.T) {
		expenses, err := repo.List(ctx, entity.ExpenseFilter{Username: "ravi"})
		require.NoError(t, err)
		assert.Empty(t, expenses)
	})
}

func TestExpenseRepository_Update(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	expense := &entity.Expense{
		Username: "asha",
		Amount:   mustDecimal(t, "50"),
		Category: "Food",
		Date:     date(t, "2025-03-10"),
	}
	require.NoError(t, repo.Create(ctx, expense))

	expense.Amount = mustDecimal(t, "55.50")
	expense.Category = "Entertainment"
	require.NoError(t, repo.Update(ctx, expense))

	got, err := repo.GetByID(ctx, "asha", expense.ID)
	require.NoError(t, err)
	assert.True(t, got.Amount.Equal(mustDecimal(t, "55.50")))
	assert.Equal(t, "Entertainment", got.Category)
}

func TestExpenseRepository_UpdateMissing(t *testing.T) {
	repo := newTestRepo(t)

	err := repo.Update(context.Background(), &entity.Expense{
		ID:       9999,
		Username: "asha",
		Amount:   mustDecimal(t, "1"),
		Category: "Food",
		Date:     date(t, "2025-03-10"),
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExpenseRepository_Delete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	expense := &entity.Expense{
		Username: "asha",
		Amount:   mustDecimal(t, "10"),
		Category: "Food",
		Date:     date(t, "2025-03-10"),
	}
	require.NoError(t, repo.Create(ctx, expense))

	require.NoError(t, repo.Delete(ctx, "asha", expense.ID))
	_, err := repo.GetByID(ctx, "asha", expense.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, "asha", expense.ID), ErrNotFound)
}

func TestExpenseRepository_CategorySummaries(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	seed := []struct {
		amount   string
		category string
	}{
		{"100.10", "Food"},
		{"200.20", "Food"},
		{"500", "Travel"},
		{"50", "Housing"},
	}
	for _, s := range seed {
		require.NoError(t, repo.Create(ctx, &entity.Expense{
			Username: "asha",
			Amount:   mustDecimal(t, s.amount),
			Category: s.category,
			Date:     date(t, "2025-03-10"),
		}))
	}

	summaries, err := repo.CategorySummaries(ctx, "asha")
	require.NoError(t, err)
	require.Len(t, summaries, 3)

	assert.Equal(t, "Travel", summaries[0].Category)
	assert.True(t, summaries[0].Total.Equal(mustDecimal(t, "500")))
	assert.Equal(t, "Food", summaries[1].Category)
	assert.True(t, summaries[1].Total.Equal(mustDecimal(t, "300.30")))
	assert.Equal(t, 2, summaries[1].Count)
	assert.Equal(t, "Housing", summaries[2].Category)
}
