package memory

import (
	"context"
	"sort"

	"github.com/finanzcord/finanzcord/internal/domain/access"
	"github.com/finanzcord/finanzcord/internal/domain/expense"
)

type ExpensesRepo struct {
	s *state
}

// window mirrors ORDER BY date DESC NULLS LAST, id DESC.
func (r *ExpensesRepo) window(userID int64, w expense.Window) []expense.Expense {
	all := make([]expense.Expense, 0)
	for _, e := range r.s.expenses {
		if e.UserID == userID {
			all = append(all, e)
		}
	}

	sort.Slice(all, func(i, j int) bool {
		a, b := all[i], all[j]
		switch {
		case a.Date == nil && b.Date == nil:
			return a.ID > b.ID
		case a.Date == nil:
			return false
		case b.Date == nil:
			return true
		case !a.Date.Equal(b.Date.Time):
			return a.Date.After(b.Date.Time)
		default:
			return a.ID > b.ID
		}
	})

	if w.Limit <= 0 || w.Offset >= len(all) {
		return []expense.Expense{}
	}
	end := w.Offset + w.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[w.Offset:end]
}

func (r *ExpensesRepo) List(_ context.Context, userID int64, w expense.Window) ([]expense.Expense, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.window(userID, w), nil
}

func (r *ExpensesRepo) ListDetailed(_ context.Context, userID int64, w expense.Window) ([]expense.Detailed, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	cats := (&CategoriesRepo{r.s}).active(userID)
	methods := (&PaymentMethodsRepo{r.s}).owned(userID, true)

	return expense.Join(r.window(userID, w), cats, methods), nil
}

func (r *ExpensesRepo) check(id, callerID int64) (expense.Expense, error) {
	e, ok := r.s.expenses[id]
	return e, access.Check(ok, false, e.UserID, callerID)
}

func (r *ExpensesRepo) Get(_ context.Context, id, callerID int64) (expense.Expense, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	e, err := r.check(id, callerID)
	if err != nil {
		return expense.Expense{}, err
	}
	return e, nil
}

func (r *ExpensesRepo) Create(_ context.Context, userID int64, req expense.CreateRequest) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.nextExpense++
	now := r.s.now()
	e := expense.Expense{
		ID:          r.s.nextExpense,
		Concept:     req.Concept,
		CategoryID:  req.CategoryID,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
		Date:        req.Date,
		PaymentID:   req.PaymentID,
		Priority:    req.Priority,
		UserID:      userID,
	}
	if req.Amount != nil {
		e.Amount = *req.Amount
	}
	r.s.expenses[e.ID] = e
	return e.ID, nil
}

func (r *ExpensesRepo) Update(_ context.Context, id, callerID int64, req expense.UpdateRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	e, err := r.check(id, callerID)
	if err != nil {
		return err
	}
	if req.IsEmpty() {
		return nil
	}

	if req.Concept != nil {
		e.Concept = *req.Concept
	}
	if req.CategoryID != nil {
		e.CategoryID = ptr(*req.CategoryID)
	}
	if req.Amount != nil {
		e.Amount = *req.Amount
	}
	if req.Description != nil {
		e.Description = ptr(*req.Description)
	}
	if req.Date != nil {
		e.Date = ptr(*req.Date)
	}
	if req.PaymentID != nil {
		e.PaymentID = ptr(*req.PaymentID)
	}
	if req.Priority != nil {
		e.Priority = ptr(*req.Priority)
	}
	e.UpdatedAt = r.s.now()
	r.s.expenses[id] = e
	return nil
}

func (r *ExpensesRepo) Delete(_ context.Context, id, callerID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, err := r.check(id, callerID); err != nil {
		return err
	}
	delete(r.s.expenses, id)
	return nil
}
