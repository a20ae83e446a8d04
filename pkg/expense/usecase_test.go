package expense

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRepo is a map-backed Repository that mimics the owner-blind behavior
// of the SQL implementation: any single-record access filters by owner.
type fakeRepo struct {
	rows      map[uuid.UUID]Expense
	usernames map[uuid.UUID]string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{rows: map[uuid.UUID]Expense{}, usernames: map[uuid.UUID]string{}}
}

func (f *fakeRepo) Create(ctx context.Context, e Expense) error {
	f.rows[e.ID] = e
	return nil
}

func (f *fakeRepo) GetForOwner(ctx context.Context, ownerID, id uuid.UUID) (Expense, error) {
	e, ok := f.rows[id]
	if !ok || e.OwnerID != ownerID {
		return Expense{}, ErrNotFound
	}
	e.OwnerUsername = f.usernames[e.OwnerID]
	return e, nil
}

func (f *fakeRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID, fl Filter) ([]Expense, error) {
	var res []Expense
	for _, e := range f.rows {
		if e.OwnerID != ownerID {
			continue
		}
		if fl.Category != "" && e.Category != fl.Category {
			continue
		}
		if !fl.StartDate.IsZero() && e.Date.Before(fl.StartDate) {
			continue
		}
		if !fl.EndDate.IsZero() && e.Date.After(fl.EndDate) {
			continue
		}
		e.OwnerUsername = f.usernames[e.OwnerID]
		res = append(res, e)
	}
	sort.Slice(res, func(i, j int) bool {
		if !res[i].Date.Equal(res[j].Date) {
			return res[i].Date.After(res[j].Date)
		}
		return res[i].CreatedAt.After(res[j].CreatedAt)
	})
	return res, nil
}

func (f *fakeRepo) UpdateForOwner(ctx context.Context, e Expense) error {
	old, ok := f.rows[e.ID]
	if !ok || old.OwnerID != e.OwnerID {
		return ErrNotFound
	}
	f.rows[e.ID] = e
	return nil
}

func (f *fakeRepo) DeleteForOwner(ctx context.Context, ownerID, id uuid.UUID) error {
	e, ok := f.rows[id]
	if !ok || e.OwnerID != ownerID {
		return ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeRepo) SummarizeForOwner(ctx context.Context, ownerID uuid.UUID, from, to time.Time) (Summary, error) {
	s := Summary{TotalAmount: decimal.Zero}
	for _, e := range f.rows {
		if e.OwnerID != ownerID {
			continue
		}
		if e.Date.Before(from) || !e.Date.Before(to) {
			continue
		}
		s.TotalAmount = s.TotalAmount.Add(e.Amount)
		s.ExpenseCount++
	}
	return s, nil
}

var serverNow = time.Date(2024, 1, 20, 15, 4, 5, 0, time.UTC)

func newTestService(repo Repository) UseCase {
	return &service{repo: repo, now: func() time.Time { return serverNow }}
}

func validInput() CreateInput {
	return CreateInput{
		Amount:      decimal.RequireFromString("42.50"),
		Category:    CategoryFood,
		Description: "lunch",
		Date:        time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
	}
}

func TestCreateAssignsServerFields(t *testing.T) {
	repo := newFakeRepo()
	owner := uuid.New()
	repo.usernames[owner] = "alice"
	svc := newTestService(repo)

	e, err := svc.Create(context.Background(), owner, validInput())
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, e.ID)
	assert.Equal(t, owner, e.OwnerID)
	assert.Equal(t, "alice", e.OwnerUsername)
	// created_at is the server clock, regardless of anything the client sent
	assert.True(t, e.CreatedAt.Equal(serverNow))
}

func TestCreateValidation(t *testing.T) {
	owner := uuid.New()

	tests := []struct {
		name     string
		mutate   func(*CreateInput)
		badField string
	}{
		{"valid", func(in *CreateInput) {}, ""},
		{"ten digits ok", func(in *CreateInput) { in.Amount = decimal.RequireFromString("12345678.99") }, ""},
		{"eleven digits", func(in *CreateInput) { in.Amount = decimal.RequireFromString("123456789.99") }, "amount"},
		{"three decimal places", func(in *CreateInput) { in.Amount = decimal.RequireFromString("1.005") }, "amount"},
		{"negative ok", func(in *CreateInput) { in.Amount = decimal.RequireFromString("-12.30") }, ""},
		{"unknown category", func(in *CreateInput) { in.Category = "Invalid" }, "category"},
		{"empty category", func(in *CreateInput) { in.Category = "" }, "category"},
		{"missing date", func(in *CreateInput) { in.Date = time.Time{} }, "date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(newFakeRepo())
			in := validInput()
			tt.mutate(&in)

			_, err := svc.Create(context.Background(), owner, in)
			if tt.badField == "" {
				assert.NoError(t, err)
				return
			}
			var verrs ValidationErrors
			require.ErrorAs(t, err, &verrs)
			require.Len(t, verrs, 1)
			assert.Equal(t, tt.badField, verrs[0].Field)
		})
	}
}

func TestAllCategoriesAccepted(t *testing.T) {
	svc := newTestService(newFakeRepo())
	owner := uuid.New()
	for _, cat := range Categories {
		in := validInput()
		in.Category = cat
		_, err := svc.Create(context.Background(), owner, in)
		assert.NoError(t, err, "category %s", cat)
	}
}

func TestListReturnsOnlyOwnRecords(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	alice, bob := uuid.New(), uuid.New()

	for i := 0; i < 3; i++ {
		_, err := svc.Create(context.Background(), alice, validInput())
		require.NoError(t, err)
	}
	_, err := svc.Create(context.Background(), bob, validInput())
	require.NoError(t, err)

	got, err := svc.List(context.Background(), alice, Filter{})
	require.NoError(t, err)
	require.Len(t, got, 3)
	for _, e := range got {
		assert.Equal(t, alice, e.OwnerID)
	}
}

func TestListOrdering(t *testing.T) {
	repo := newFakeRepo()
	owner := uuid.New()
	day := func(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }

	// Same date, different creation instants, plus an older and newer date.
	rows := []Expense{
		{ID: uuid.New(), OwnerID: owner, Date: day(10), CreatedAt: serverNow.Add(-2 * time.Hour), Amount: decimal.New(1, 0), Category: CategoryFood},
		{ID: uuid.New(), OwnerID: owner, Date: day(10), CreatedAt: serverNow.Add(-1 * time.Hour), Amount: decimal.New(2, 0), Category: CategoryFood},
		{ID: uuid.New(), OwnerID: owner, Date: day(5), CreatedAt: serverNow, Amount: decimal.New(3, 0), Category: CategoryFood},
		{ID: uuid.New(), OwnerID: owner, Date: day(12), CreatedAt: serverNow.Add(-3 * time.Hour), Amount: decimal.New(4, 0), Category: CategoryFood},
	}
	for _, e := range rows {
		require.NoError(t, repo.Create(context.Background(), e))
	}

	got, err := newTestService(repo).List(context.Background(), owner, Filter{})
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, rows[3].ID, got[0].ID) // newest date first
	assert.Equal(t, rows[1].ID, got[1].ID) // date tie broken by created_at desc
	assert.Equal(t, rows[0].ID, got[2].ID)
	assert.Equal(t, rows[2].ID, got[3].ID)
}

func TestOwnerBlindNotFound(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	alice, bob := uuid.New(), uuid.New()

	e, err := svc.Create(context.Background(), alice, validInput())
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), bob, e.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	amt := decimal.RequireFromString("1.00")
	_, err = svc.Update(context.Background(), bob, e.ID, UpdateInput{Amount: &amt})
	assert.ErrorIs(t, err, ErrNotFound)

	err = svc.Delete(context.Background(), bob, e.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// The record is untouched and still reachable by its owner.
	got, err := svc.Get(context.Background(), alice, e.ID)
	require.NoError(t, err)
	assert.True(t, got.Amount.Equal(decimal.RequireFromString("42.50")))
}

func TestUpdatePartial(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	owner := uuid.New()

	e, err := svc.Create(context.Background(), owner, validInput())
	require.NoError(t, err)

	amt := decimal.RequireFromString("99.99")
	got, err := svc.Update(context.Background(), owner, e.ID, UpdateInput{Amount: &amt})
	require.NoError(t, err)

	assert.True(t, got.Amount.Equal(amt))
	assert.Equal(t, CategoryFood, got.Category)
	assert.Equal(t, "lunch", got.Description)
	assert.True(t, got.Date.Equal(e.Date))
	assert.True(t, got.CreatedAt.Equal(e.CreatedAt))
	assert.Equal(t, e.OwnerID, got.OwnerID)
}

func TestUpdateRejectsInvalidFields(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	owner := uuid.New()

	e, err := svc.Create(context.Background(), owner, validInput())
	require.NoError(t, err)

	bad := Category("Groceries")
	_, err = svc.Update(context.Background(), owner, e.ID, UpdateInput{Category: &bad})
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "category", verrs[0].Field)

	// Nothing was persisted.
	got, err := svc.Get(context.Background(), owner, e.ID)
	require.NoError(t, err)
	assert.Equal(t, CategoryFood, got.Category)
}

func TestCreateGetRoundTrip(t *testing.T) {
	repo := newFakeRepo()
	owner := uuid.New()
	repo.usernames[owner] = "alice"
	svc := newTestService(repo)

	in := validInput()
	created, err := svc.Create(context.Background(), owner, in)
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), owner, created.ID)
	require.NoError(t, err)

	assert.True(t, got.Amount.Equal(in.Amount))
	assert.Equal(t, in.Category, got.Category)
	assert.Equal(t, in.Description, got.Description)
	assert.True(t, got.Date.Equal(in.Date))
	assert.Equal(t, created.ID, got.ID)
	assert.True(t, got.CreatedAt.Equal(created.CreatedAt))
}

func TestMonthlySummary(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	owner := uuid.New()

	mk := func(amount string, date time.Time) {
		in := validInput()
		in.Amount = decimal.RequireFromString(amount)
		in.Date = date
		_, err := svc.Create(context.Background(), owner, in)
		require.NoError(t, err)
	}
	mk("10.00", time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC))
	mk("5.50", time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC))
	mk("100.00", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)) // next month

	s, err := svc.MonthlySummary(context.Background(), owner, 2024, time.January)
	require.NoError(t, err)
	assert.Equal(t, int64(2), s.ExpenseCount)
	assert.True(t, s.TotalAmount.Equal(decimal.RequireFromString("15.50")))

	// Year zero means "current month" per the server clock.
	s, err = svc.MonthlySummary(context.Background(), owner, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), s.ExpenseCount)
}

func TestValidationErrorsMessage(t *testing.T) {
	err := ValidationErrors{{Field: "amount", Reason: "too big"}}
	assert.True(t, errors.As(error(err), &ValidationErrors{}))
	assert.Contains(t, err.Error(), "amount: too big")
}
