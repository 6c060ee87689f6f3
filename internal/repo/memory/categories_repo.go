package memory

import (
	"context"

	"github.com/finanzcord/finanzcord/internal/domain/access"
	"github.com/finanzcord/finanzcord/internal/domain/category"
)

type CategoriesRepo struct {
	s *state
}

func (r *CategoriesRepo) active(userID int64) []category.Category {
	out := make([]category.Category, 0)
	for _, id := range sortedKeys(r.s.categories) {
		row := r.s.categories[id]
		if row.UserID == userID && !row.deleted {
			out = append(out, row.Category)
		}
	}
	return out
}

func (r *CategoriesRepo) List(_ context.Context, userID int64) ([]category.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.active(userID), nil
}

func (r *CategoriesRepo) Catalog(_ context.Context, userID int64) ([]category.CatalogItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rows := r.active(userID)
	out := make([]category.CatalogItem, 0, len(rows))
	for _, c := range rows {
		out = append(out, category.CatalogItem{ID: c.ID, Description: c.Description})
	}
	return out, nil
}

func (r *CategoriesRepo) check(id, callerID int64, enforceOwner bool) (categoryRow, error) {
	row, ok := r.s.categories[id]
	owner := callerID
	if enforceOwner {
		owner = row.UserID
	}
	return row, access.Check(ok, row.deleted, owner, callerID)
}

func (r *CategoriesRepo) Get(_ context.Context, id, callerID int64, enforceOwner bool) (category.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	row, err := r.check(id, callerID, enforceOwner)
	if err != nil {
		return category.Category{}, err
	}
	return row.Category, nil
}

func (r *CategoriesRepo) Create(_ context.Context, userID int64, req category.CreateRequest) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.nextCategory++
	now := r.s.now()
	c := category.Category{
		ID:          r.s.nextCategory,
		Description: req.Description,
		Relevance:   req.Relevance,
		Meta:        req.Meta,
		CreatedAt:   now,
		UpdatedAt:   now,
		UserID:      userID,
	}
	r.s.categories[c.ID] = categoryRow{Category: c}
	return c.ID, nil
}

func (r *CategoriesRepo) Update(_ context.Context, id, callerID int64, req category.UpdateRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, err := r.check(id, callerID, true)
	if err != nil {
		return err
	}
	if req.IsEmpty() {
		return nil
	}

	if req.Description != nil {
		row.Description = *req.Description
	}
	if req.Relevance != nil {
		row.Relevance = ptr(*req.Relevance)
	}
	if req.Meta != nil {
		row.Meta = ptr(*req.Meta)
	}
	row.UpdatedAt = r.s.now()
	r.s.categories[id] = row
	return nil
}

func (r *CategoriesRepo) Delete(_ context.Context, id, callerID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, err := r.check(id, callerID, true)
	if err != nil {
		return err
	}
	row.deleted = true
	r.s.categories[id] = row
	return nil
}
