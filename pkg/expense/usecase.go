package expense

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateInput carries the client-supplied fields of a new expense. The owner
// and creation timestamp are deliberately absent: the owner comes from the
// resolved caller identity and the timestamp from the server clock.
type CreateInput struct {
	Amount      decimal.Decimal
	Category    Category
	Description string
	Date        time.Time
}

// UpdateInput is a partial update; nil fields are left unchanged.
type UpdateInput struct {
	Amount      *decimal.Decimal
	Category    *Category
	Description *string
	Date        *time.Time
}

// UseCase encapsulates owner-scoped expense operations. ownerID is always an
// explicit parameter, never ambient request state.
type UseCase interface {
	Create(ctx context.Context, ownerID uuid.UUID, in CreateInput) (Expense, error)
	List(ctx context.Context, ownerID uuid.UUID, f Filter) ([]Expense, error)
	Get(ctx context.Context, ownerID, id uuid.UUID) (Expense, error)
	Update(ctx context.Context, ownerID, id uuid.UUID, in UpdateInput) (Expense, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
	MonthlySummary(ctx context.Context, ownerID uuid.UUID, year int, month time.Month) (Summary, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService returns the default implementation of UseCase.
func NewService(repo Repository) UseCase {
	return &service{repo: repo, now: time.Now}
}

func (s *service) Create(ctx context.Context, ownerID uuid.UUID, in CreateInput) (Expense, error) {
	var errs ValidationErrors
	if fe := validateAmount(in.Amount); fe != nil {
		errs = append(errs, *fe)
	}
	if fe := validateCategory(in.Category); fe != nil {
		errs = append(errs, *fe)
	}
	if fe := validateDate(in.Date); fe != nil {
		errs = append(errs, *fe)
	}
	if len(errs) > 0 {
		return Expense{}, errs
	}

	e := Expense{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Amount:      in.Amount,
		Category:    in.Category,
		Description: in.Description,
		Date:        truncateToDate(in.Date),
		CreatedAt:   s.now().UTC(),
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return Expense{}, err
	}
	// Re-read to pick up the denormalized owner username.
	return s.repo.GetForOwner(ctx, ownerID, e.ID)
}

func (s *service) List(ctx context.Context, ownerID uuid.UUID, f Filter) ([]Expense, error) {
	return s.repo.ListByOwner(ctx, ownerID, f)
}

func (s *service) Get(ctx context.Context, ownerID, id uuid.UUID) (Expense, error) {
	return s.repo.GetForOwner(ctx, ownerID, id)
}

func (s *service) Update(ctx context.Context, ownerID, id uuid.UUID, in UpdateInput) (Expense, error) {
	e, err := s.repo.GetForOwner(ctx, ownerID, id)
	if err != nil {
		return Expense{}, err
	}

	var errs ValidationErrors
	if in.Amount != nil {
		if fe := validateAmount(*in.Amount); fe != nil {
			errs = append(errs, *fe)
		} else {
			e.Amount = *in.Amount
		}
	}
	if in.Category != nil {
		if fe := validateCategory(*in.Category); fe != nil {
			errs = append(errs, *fe)
		} else {
			e.Category = *in.Category
		}
	}
	if in.Description != nil {
		e.Description = *in.Description
	}
	if in.Date != nil {
		if fe := validateDate(*in.Date); fe != nil {
			errs = append(errs, *fe)
		} else {
			e.Date = truncateToDate(*in.Date)
		}
	}
	if len(errs) > 0 {
		return Expense{}, errs
	}

	if err := s.repo.UpdateForOwner(ctx, e); err != nil {
		return Expense{}, err
	}
	return e, nil
}

func (s *service) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	return s.repo.DeleteForOwner(ctx, ownerID, id)
}

func (s *service) MonthlySummary(ctx context.Context, ownerID uuid.UUID, year int, month time.Month) (Summary, error) {
	if year == 0 {
		now := s.now().UTC()
		year, month = now.Year(), now.Month()
	}
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	return s.repo.SummarizeForOwner(ctx, ownerID, from, to)
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
