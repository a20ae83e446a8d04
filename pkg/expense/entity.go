package expense

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Category is one of the fixed set of spending categories.
type Category string

const (
	CategoryFood          Category = "Food"
	CategoryTransport     Category = "Transport"
	CategoryEntertainment Category = "Entertainment"
	CategoryHealthcare    Category = "Healthcare"
	CategoryShopping      Category = "Shopping"
	CategoryBills         Category = "Bills"
	CategoryOther         Category = "Other"
)

// Categories lists every accepted category, in presentation order.
var Categories = []Category{
	CategoryFood,
	CategoryTransport,
	CategoryEntertainment,
	CategoryHealthcare,
	CategoryShopping,
	CategoryBills,
	CategoryOther,
}

// Valid reports whether c is a member of the fixed category set.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Expense is a single spending record owned by exactly one user.
// OwnerID and CreatedAt are assigned at creation and never change.
type Expense struct {
	ID            uuid.UUID
	OwnerID       uuid.UUID
	OwnerUsername string
	Amount        decimal.Decimal
	Category      Category
	Description   string
	Date          time.Time
	CreatedAt     time.Time
}

// Filter narrows List results. Zero values mean "no constraint".
type Filter struct {
	Category  Category
	StartDate time.Time
	EndDate   time.Time
	Limit     int
	Offset    int
}

// Summary aggregates expenses over a period.
type Summary struct {
	TotalAmount  decimal.Decimal
	ExpenseCount int64
}

// ErrNotFound is returned both when an id does not exist and when it is
// owned by a different user, so callers cannot probe other users' records.
var ErrNotFound = errors.New("expense not found")

// Repository is the persistence port. Every method that addresses a single
// record takes the owner id and must treat absent and cross-owner rows
// identically.
type Repository interface {
	Create(ctx context.Context, e Expense) error
	GetForOwner(ctx context.Context, ownerID, id uuid.UUID) (Expense, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, f Filter) ([]Expense, error)
	UpdateForOwner(ctx context.Context, e Expense) error
	DeleteForOwner(ctx context.Context, ownerID, id uuid.UUID) error
	SummarizeForOwner(ctx context.Context, ownerID uuid.UUID, from, to time.Time) (Summary, error)
}
