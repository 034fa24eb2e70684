package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/trackwise/expense-voice/internal/domain/entity"
	"github.com/trackwise/expense-voice/pkg/utils"
)

// Validation failures surfaced to callers. Voice candidates and manual
// form input both hit these:  the extraction pipeline's output is a
// proposal, never a trusted record.
var (
	ErrUsernameRequired = errors.New("username is required")
	ErrInvalidAmount    = errors.New("amount must be a positive decimal")
	ErrInvalidCategory  = errors.New("category is not one of the known categories")
	ErrInvalidDate      = errors.New("date must be in YYYY-MM-DD format")
)

const dateLayout = "2006-01-02"

// ExpenseRepository is the persistence port used by the service.
type ExpenseRepository interface {
	Create(ctx context.Context, expense *entity.Expense) error
	GetByID(ctx context.Context, username string, id int64) (*entity.Expense, error)
	List(ctx context.Context, filter entity.ExpenseFilter) ([]*entity.Expense, error)
	Update(ctx context.Context, expense *entity.Expense) error
	Delete(ctx context.Context, username string, id int64) error
	CategorySummaries(ctx context.Context, username string) ([]entity.CategorySummary, error)
}

// CreateExpenseInput carries raw field values prior to validation. Amount
// and date stay strings so voice candidates and form input share the same
// shape.
type CreateExpenseInput struct {
	Amount      string
	Category    string
	Description string
	Date        string // YYYY-MM-DD, empty defaults to today
}

// UpdateExpenseInput carries partial updates; nil fields are unchanged.
type UpdateExpenseInput struct {
	Amount      *string
	Category    *string
	Description *string
	Date        *string
}

// ExpenseService owns expense validation and persistence. It is the one
// creation path: the manual form, the voice confirmation flow, and the API
// all go through it.
type ExpenseService struct {
	repo   ExpenseRepository
	logger *zap.Logger
	now    func() time.Time
}

// NewExpenseService creates an expense service.
func NewExpenseService(repo ExpenseRepository, logger *zap.Logger) *ExpenseService {
	return &ExpenseService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// Create validates the input and persists a new expense. A missing date
// defaults to today.
func (s *ExpenseService) Create(ctx context.Context, username string, in CreateExpenseInput) (*entity.Expense, error) {
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if err := utils.ValidateUsername(username); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUsernameRequired, err)
	}

	amount, err := parseAmount(in.Amount)
	if err != nil {
		return nil, err
	}
	if !entity.IsValidCategory(in.Category) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCategory, in.Category)
	}

	date, err := s.parseDate(in.Date)
	if err != nil {
		return nil, err
	}

	expense := &entity.Expense{
		Username:    username,
		Amount:      amount,
		Category:    in.Category,
		Description: in.Description,
		Date:        date,
	}
	if err := s.repo.Create(ctx, expense); err != nil {
		return nil, err
	}

	s.logger.Info("Expense created",
		zap.Int64("id", expense.ID),
		zap.String("username", username),
		zap.String("category", expense.Category),
		zap.String("amount", expense.Amount.String()))
	return expense, nil
}

// CreateFromCandidate routes a confirmed voice candidate through the same
// validation as manual input. Implements the voice session's creation port.
func (s *ExpenseService) CreateFromCandidate(ctx context.Context, username string, candidate entity.ExpenseCandidate) (*entity.Expense, error) {
	return s.Create(ctx, username, CreateExpenseInput{
		Amount:      candidate.Amount,
		Category:    candidate.Category,
		Description: candidate.Description,
		Date:        candidate.Date,
	})
}

// Get retrieves one expense for a user.
func (s *ExpenseService) Get(ctx context.Context, username string, id int64) (*entity.Expense, error) {
	if username == "" {
		return nil, ErrUsernameRequired
	}
	return s.repo.GetByID(ctx, username, id)
}

// List returns expenses matching the filter.
func (s *ExpenseService) List(ctx context.Context, filter entity.ExpenseFilter) ([]*entity.Expense, error) {
	if filter.Username == "" {
		return nil, ErrUsernameRequired
	}
	return s.repo.List(ctx, filter)
}

// Update applies a partial update after re-validating changed fields.
func (s *ExpenseService) Update(ctx context.Context, username string, id int64, in UpdateExpenseInput) (*entity.Expense, error) {
	if username == "" {
		return nil, ErrUsernameRequired
	}

	expense, err := s.repo.GetByID(ctx, username, id)
	if err != nil {
		return nil, err
	}

	if in.Amount != nil {
		amount, err := parseAmount(*in.Amount)
		if err != nil {
			return nil, err
		}
		expense.Amount = amount
	}
	if in.Category != nil {
		if !entity.IsValidCategory(*in.Category) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidCategory, *in.Category)
		}
		expense.Category = *in.Category
	}
	if in.Description != nil {
		expense.Description = *in.Description
	}
	if in.Date != nil {
		date, err := time.Parse(dateLayout, *in.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidDate, *in.Date)
		}
		expense.Date = date
	}

	if err := s.repo.Update(ctx, expense); err != nil {
		return nil, err
	}
	return expense, nil
}

// Delete removes an expense for a user.
func (s *ExpenseService) Delete(ctx context.Context, username string, id int64) error {
	if username == "" {
		return ErrUsernameRequired
	}
	return s.repo.Delete(ctx, username, id)
}

// CategorySummaries returns the per-category totals for the chart.
func (s *ExpenseService) CategorySummaries(ctx context.Context, username string) ([]entity.CategorySummary, error) {
	if username == "" {
		return nil, ErrUsernameRequired
	}
	return s.repo.CategorySummaries(ctx, username)
}

func parseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}
	if !amount.IsPositive() {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}
	return amount, nil
}

func (s *ExpenseService) parseDate(raw string) (time.Time, error) {
	if raw == "" {
		now := s.now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	date, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
	}
	return date, nil
}
