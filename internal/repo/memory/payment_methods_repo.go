package memory

import (
	"context"

	"github.com/finanzcord/finanzcord/internal/domain/access"
	"github.com/finanzcord/finanzcord/internal/domain/payment"
)

type PaymentMethodsRepo struct {
	s *state
}

func (r *PaymentMethodsRepo) owned(userID int64, includeDeleted bool) []payment.Method {
	out := make([]payment.Method, 0)
	for _, id := range sortedKeys(r.s.methods) {
		row := r.s.methods[id]
		if row.UserID == userID && (includeDeleted || !row.deleted) {
			out = append(out, row.Method)
		}
	}
	return out
}

func (r *PaymentMethodsRepo) List(_ context.Context, userID int64) ([]payment.Method, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.owned(userID, false), nil
}

func (r *PaymentMethodsRepo) Catalog(_ context.Context, userID int64) ([]payment.CatalogItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rows := r.owned(userID, false)
	out := make([]payment.CatalogItem, 0, len(rows))
	for _, m := range rows {
		out = append(out, payment.CatalogItem{ID: m.ID, Name: m.Name})
	}
	return out, nil
}

func (r *PaymentMethodsRepo) check(id, callerID int64) (methodRow, error) {
	row, ok := r.s.methods[id]
	return row, access.Check(ok, row.deleted, row.UserID, callerID)
}

func (r *PaymentMethodsRepo) Get(_ context.Context, id, callerID int64) (payment.Method, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	row, err := r.check(id, callerID)
	if err != nil {
		return payment.Method{}, err
	}
	return row.Method, nil
}

func (r *PaymentMethodsRepo) Create(_ context.Context, userID int64, req payment.CreateRequest) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.nextMethod++
	now := r.s.now()
	m := payment.Method{
		ID:          r.s.nextMethod,
		Name:        req.Name,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
		UserID:      userID,
	}
	r.s.methods[m.ID] = methodRow{Method: m}
	return m.ID, nil
}

func (r *PaymentMethodsRepo) Update(_ context.Context, id, callerID int64, req payment.UpdateRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, err := r.check(id, callerID)
	if err != nil {
		return err
	}
	if req.IsEmpty() {
		return nil
	}

	if req.Name != nil {
		row.Name = *req.Name
	}
	if req.Description != nil {
		row.Description = ptr(*req.Description)
	}
	row.UpdatedAt = r.s.now()
	r.s.methods[id] = row
	return nil
}

func (r *PaymentMethodsRepo) Delete(_ context.Context, id, callerID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, err := r.check(id, callerID)
	if err != nil {
		return err
	}
	row.deleted = true
	r.s.methods[id] = row
	return nil
}
