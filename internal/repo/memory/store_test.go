package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finanzcord/finanzcord/internal/domain/access"
	"github.com/finanzcord/finanzcord/internal/domain/category"
	"github.com/finanzcord/finanzcord/internal/domain/expense"
	"github.com/finanzcord/finanzcord/internal/domain/payment"
	"github.com/finanzcord/finanzcord/internal/domain/user"
)

func TestUsers_EmailUniquenessAndOwnership(t *testing.T) {
	ctx := context.Background()
	s := New()

	admin, err := s.Users.Create(ctx, "admin", "admin@x.test", "h")
	require.NoError(t, err)
	require.Equal(t, user.AdminID, admin)

	id, err := s.Users.Create(ctx, "ana", "ana@x.test", "h")
	require.NoError(t, err)

	_, err = s.Users.Create(ctx, "other", "ana@x.test", "h")
	require.ErrorIs(t, err, user.ErrEmailTaken)

	_, err = s.Users.Update(ctx, id, "admin@x.test", user.Changes{})
	require.ErrorIs(t, err, access.ErrForbidden)

	require.ErrorIs(t, s.Users.Delete(ctx, admin, "admin@x.test"), user.ErrAdminProtected)

	require.NoError(t, s.Users.Delete(ctx, id, "ana@x.test"))
	_, err = s.Users.GetByID(ctx, id)
	require.ErrorIs(t, err, user.ErrNotFound)

	// the address is free again once its owner is soft-deleted
	_, err = s.Users.Create(ctx, "ana2", "ana@x.test", "h")
	require.NoError(t, err)
}

func TestCategories_SoftDeleteAndLegacyRead(t *testing.T) {
	ctx := context.Background()
	s := New()

	id, err := s.Categories.Create(ctx, 1, category.CreateRequest{Description: "food"})
	require.NoError(t, err)

	_, err = s.Categories.Get(ctx, id, 2, true)
	require.ErrorIs(t, err, access.ErrForbidden)

	got, err := s.Categories.Get(ctx, id, 2, false)
	require.NoError(t, err)
	assert.Equal(t, "food", got.Description)

	require.ErrorIs(t, s.Categories.Delete(ctx, id, 2), access.ErrForbidden)
	require.NoError(t, s.Categories.Delete(ctx, id, 1))

	list, err := s.Categories.List(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = s.Categories.Get(ctx, id, 1, true)
	require.ErrorIs(t, err, access.ErrNotFound)
}

func TestEmptyUpdateLeavesRowUntouched(t *testing.T) {
	ctx := context.Background()
	s := New()

	clock := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	s.Categories.s.now = func() time.Time { return clock }

	meta := "monthly"
	catID, err := s.Categories.Create(ctx, 1, category.CreateRequest{Description: "rent", Meta: &meta})
	require.NoError(t, err)
	pmID, err := s.PaymentMethods.Create(ctx, 1, payment.CreateRequest{Name: "card"})
	require.NoError(t, err)

	catBefore, err := s.Categories.Get(ctx, catID, 1, true)
	require.NoError(t, err)
	pmBefore, err := s.PaymentMethods.Get(ctx, pmID, 1)
	require.NoError(t, err)

	clock = clock.Add(time.Hour)

	require.NoError(t, s.Categories.Update(ctx, catID, 1, category.UpdateRequest{}))
	require.NoError(t, s.PaymentMethods.Update(ctx, pmID, 1, payment.UpdateRequest{}))

	catAfter, err := s.Categories.Get(ctx, catID, 1, true)
	require.NoError(t, err)
	assert.Equal(t, catBefore, catAfter)

	pmAfter, err := s.PaymentMethods.Get(ctx, pmID, 1)
	require.NoError(t, err)
	assert.Equal(t, pmBefore, pmAfter)

	// a real change does move the timestamp
	desc := "housing"
	require.NoError(t, s.Categories.Update(ctx, catID, 1, category.UpdateRequest{Description: &desc}))
	catAfter, err = s.Categories.Get(ctx, catID, 1, true)
	require.NoError(t, err)
	assert.Equal(t, clock, catAfter.UpdatedAt)
	assert.Equal(t, catBefore.CreatedAt, catAfter.CreatedAt)
}

func TestExpenses_OrderWindowAndJoin(t *testing.T) {
	ctx := context.Background()
	s := New()

	catID, err := s.Categories.Create(ctx, 1, category.CreateRequest{Description: "rent"})
	require.NoError(t, err)
	pmID, err := s.PaymentMethods.Create(ctx, 1, payment.CreateRequest{Name: "card"})
	require.NoError(t, err)
	require.NoError(t, s.PaymentMethods.Delete(ctx, pmID, 1))

	amount := expense.Amount(1050)
	older := expense.NewDate(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	newer := expense.NewDate(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	missing := int64(999)

	_, err = s.Expenses.Create(ctx, 1, expense.CreateRequest{Concept: "undated", Amount: &amount})
	require.NoError(t, err)
	_, err = s.Expenses.Create(ctx, 1, expense.CreateRequest{Concept: "old", Amount: &amount, Date: &older, CategoryID: &catID})
	require.NoError(t, err)
	_, err = s.Expenses.Create(ctx, 1, expense.CreateRequest{Concept: "new", Amount: &amount, Date: &newer, PaymentID: &pmID, CategoryID: &missing})
	require.NoError(t, err)
	_, err = s.Expenses.Create(ctx, 2, expense.CreateRequest{Concept: "foreign", Amount: &amount})
	require.NoError(t, err)

	list, err := s.Expenses.List(ctx, 1, expense.PageWindow(1, 10))
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"new", "old", "undated"}, []string{list[0].Concept, list[1].Concept, list[2].Concept})

	page2, err := s.Expenses.List(ctx, 1, expense.PageWindow(2, 2))
	require.NoError(t, err)
	require.Len(t, page2, 1)
	assert.Equal(t, "undated", page2[0].Concept)

	empty, err := s.Expenses.List(ctx, 1, expense.Window{Limit: 0})
	require.NoError(t, err)
	assert.Empty(t, empty)

	detailed, err := s.Expenses.ListDetailed(ctx, 1, expense.PageWindow(1, 10))
	require.NoError(t, err)
	require.Len(t, detailed, 3)
	assert.Nil(t, detailed[0].Category)
	require.NotNil(t, detailed[0].Payment)
	assert.Equal(t, "card", detailed[0].Payment.Name)
	require.NotNil(t, detailed[1].Category)
	assert.Equal(t, "rent", detailed[1].Category.Description)
}

func TestExpenses_UpdateAndHardDelete(t *testing.T) {
	ctx := context.Background()
	s := New()

	amount := expense.Amount(500)
	id, err := s.Expenses.Create(ctx, 1, expense.CreateRequest{Concept: "coffee", Amount: &amount})
	require.NoError(t, err)

	concept := "tea"
	require.ErrorIs(t, s.Expenses.Update(ctx, id, 2, expense.UpdateRequest{Concept: &concept}), access.ErrForbidden)

	got, err := s.Expenses.Get(ctx, id, 1)
	require.NoError(t, err)
	assert.Equal(t, "coffee", got.Concept)

	require.NoError(t, s.Expenses.Update(ctx, id, 1, expense.UpdateRequest{}))
	require.NoError(t, s.Expenses.Update(ctx, id, 1, expense.UpdateRequest{Concept: &concept}))

	got, err = s.Expenses.Get(ctx, id, 1)
	require.NoError(t, err)
	assert.Equal(t, "tea", got.Concept)
	assert.Equal(t, amount, got.Amount)

	require.NoError(t, s.Expenses.Delete(ctx, id, 1))
	_, err = s.Expenses.Get(ctx, id, 1)
	require.ErrorIs(t, err, access.ErrNotFound)
}
