package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense is a validated, persisted expense record scoped to a username.
type Expense struct {
	ID          int64           `json:"id"`
	Username    string          `json:"username"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Description string          `json:"description,omitempty"`
	Date        time.Time       `json:"date"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ExpenseCandidate is the unvalidated proposal produced by voice extraction.
// All fields stay strings until the candidate passes through the same
// validation path as a manually entered expense; it is never persisted
// directly.
type ExpenseCandidate struct {
	Amount      string `json:"amount"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Date        string `json:"date"` // YYYY-MM-DD, empty means "today"
}

// IsZero reports whether no field of the candidate is set.
func (c ExpenseCandidate) IsZero() bool {
	return c.Amount == "" && c.Category == "" && c.Description == "" && c.Date == ""
}

// ExpenseFilter narrows expense listings.
type ExpenseFilter struct {
	Username  string
	Category  string
	StartDate *time.Time
	EndDate   *time.Time
}

// CategorySummary is the per-category total used by the spending chart.
type CategorySummary struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
	Count    int             `json:"count"`
}
