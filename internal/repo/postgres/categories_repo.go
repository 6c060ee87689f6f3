package postgres

import (
	"context"
	"errors"

	"github.com/finanzcord/finanzcord/internal/domain/access"
	"github.com/finanzcord/finanzcord/internal/domain/category"
	"github.com/finanzcord/finanzcord/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CategoriesRepo struct {
	base
}

func NewCategoriesRepo(pool *pgxpool.Pool, prom *observability.Prom) *CategoriesRepo {
	return &CategoriesRepo{base{pool: pool, prom: prom}}
}

const categoryColumns = `id, description, relevance, meta, created_at, updated_at, iduser`

func scanCategory(row pgx.Row, c *category.Category) error {
	return row.Scan(&c.ID, &c.Description, &c.Relevance, &c.Meta, &c.CreatedAt, &c.UpdatedAt, &c.UserID)
}

func listCategories(ctx context.Context, q querier, userID int64) ([]category.Category, error) {
	rows, err := q.Query(ctx,
		`SELECT `+categoryColumns+`
		FROM categories
		WHERE iduser = $1 AND NOT is_delete
		ORDER BY id`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]category.Category, 0)
	for rows.Next() {
		var c category.Category
		if err := scanCategory(rows, &c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}

	return out, rows.Err()
}

// List returns the caller's active categories.
func (r *CategoriesRepo) List(ctx context.Context, userID int64) ([]category.Category, error) {
	var out []category.Category

	err := r.observe("categories.list", func() error {
		var err error
		out, err = listCategories(ctx, r.pool, userID)
		return err
	})

	return out, err
}

func (r *CategoriesRepo) Catalog(ctx context.Context, userID int64) ([]category.CatalogItem, error) {
	out := make([]category.CatalogItem, 0)

	err := r.observe("categories.catalog", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT id, description FROM categories WHERE iduser = $1 AND NOT is_delete ORDER BY id`,
			userID,
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var item category.CatalogItem
			if err := rows.Scan(&item.ID, &item.Description); err != nil {
				return err
			}
			out = append(out, item)
		}
		return rows.Err()
	})

	return out, err
}

// Get loads one category. With enforceOwner false any caller may read any
// active category.
func (r *CategoriesRepo) Get(ctx context.Context, id, callerID int64, enforceOwner bool) (category.Category, error) {
	var c category.Category

	err := r.observe("categories.get", func() error {
		var deleted bool
		err := r.pool.QueryRow(ctx,
			`SELECT `+categoryColumns+`, is_delete FROM categories WHERE id = $1`,
			id,
		).Scan(&c.ID, &c.Description, &c.Relevance, &c.Meta, &c.CreatedAt, &c.UpdatedAt, &c.UserID, &deleted)

		if errors.Is(err, pgx.ErrNoRows) {
			return access.ErrNotFound
		}
		if err != nil {
			return err
		}

		owner := callerID
		if enforceOwner {
			owner = c.UserID
		}
		return access.Check(true, deleted, owner, callerID)
	})

	if err != nil {
		return category.Category{}, err
	}
	return c, nil
}

func (r *CategoriesRepo) Create(ctx context.Context, userID int64, req category.CreateRequest) (int64, error) {
	var id int64

	err := r.observe("categories.create", func() error {
		return r.pool.QueryRow(ctx,
			`INSERT INTO categories (description, relevance, meta, iduser, is_delete)
			VALUES ($1, $2, $3, $4, FALSE)
			RETURNING id`,
			req.Description, req.Relevance, req.Meta, userID,
		).Scan(&id)
	})

	return id, err
}

// Update applies the non-nil fields. An empty request still checks access but
// writes nothing, so updated_at is untouched.
func (r *CategoriesRepo) Update(ctx context.Context, id, callerID int64, req category.UpdateRequest) error {
	return r.observe("categories.update", func() error {
		return r.inTx(ctx, func(tx pgx.Tx) error {
			if err := categoriesTable.lockOwned(ctx, tx, id, callerID); err != nil {
				return err
			}
			if req.IsEmpty() {
				return nil
			}

			_, err := tx.Exec(ctx,
				`UPDATE categories
				SET description = COALESCE($2, description),
					relevance = COALESCE($3, relevance),
					meta = COALESCE($4, meta),
					updated_at = NOW()
				WHERE id = $1`,
				id, req.Description, req.Relevance, req.Meta,
			)
			return err
		})
	})
}

func (r *CategoriesRepo) Delete(ctx context.Context, id, callerID int64) error {
	return r.observe("categories.delete", func() error {
		return r.inTx(ctx, func(tx pgx.Tx) error {
			if err := categoriesTable.lockOwned(ctx, tx, id, callerID); err != nil {
				return err
			}
			return categoriesTable.remove(ctx, tx, id)
		})
	})
}
