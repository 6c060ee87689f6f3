package postgres

import (
	"context"
	"errors"

	"github.com/finanzcord/finanzcord/internal/domain/access"
	"github.com/finanzcord/finanzcord/internal/domain/payment"
	"github.com/finanzcord/finanzcord/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PaymentMethodsRepo struct {
	base
}

func NewPaymentMethodsRepo(pool *pgxpool.Pool, prom *observability.Prom) *PaymentMethodsRepo {
	return &PaymentMethodsRepo{base{pool: pool, prom: prom}}
}

const paymentMethodColumns = `id, name, description, created_at, updated_at, iduser`

// listPaymentMethods returns the user's methods; includeDeleted keeps
// soft-deleted rows so old expenses still resolve their payment method.
func listPaymentMethods(ctx context.Context, q querier, userID int64, includeDeleted bool) ([]payment.Method, error) {
	rows, err := q.Query(ctx,
		`SELECT `+paymentMethodColumns+`
		FROM payment_methods
		WHERE iduser = $1 AND ($2 OR NOT is_delete)
		ORDER BY id`,
		userID, includeDeleted,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]payment.Method, 0)
	for rows.Next() {
		var m payment.Method
		if err := rows.Scan(&m.ID, &m.Name, &m.Description, &m.CreatedAt, &m.UpdatedAt, &m.UserID); err != nil {
			return nil, err
		}
		out = append(out, m)
	}

	return out, rows.Err()
}

func (r *PaymentMethodsRepo) List(ctx context.Context, userID int64) ([]payment.Method, error) {
	var out []payment.Method

	err := r.observe("payment_methods.list", func() error {
		var err error
		out, err = listPaymentMethods(ctx, r.pool, userID, false)
		return err
	})

	return out, err
}

func (r *PaymentMethodsRepo) Catalog(ctx context.Context, userID int64) ([]payment.CatalogItem, error) {
	out := make([]payment.CatalogItem, 0)

	err := r.observe("payment_methods.catalog", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT id, name FROM payment_methods WHERE iduser = $1 AND NOT is_delete ORDER BY id`,
			userID,
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var item payment.CatalogItem
			if err := rows.Scan(&item.ID, &item.Name); err != nil {
				return err
			}
			out = append(out, item)
		}
		return rows.Err()
	})

	return out, err
}

func (r *PaymentMethodsRepo) Get(ctx context.Context, id, callerID int64) (payment.Method, error) {
	var m payment.Method

	err := r.observe("payment_methods.get", func() error {
		var deleted bool
		err := r.pool.QueryRow(ctx,
			`SELECT `+paymentMethodColumns+`, is_delete FROM payment_methods WHERE id = $1`,
			id,
		).Scan(&m.ID, &m.Name, &m.Description, &m.CreatedAt, &m.UpdatedAt, &m.UserID, &deleted)

		if errors.Is(err, pgx.ErrNoRows) {
			return access.ErrNotFound
		}
		if err != nil {
			return err
		}
		return access.Check(true, deleted, m.UserID, callerID)
	})

	if err != nil {
		return payment.Method{}, err
	}
	return m, nil
}

func (r *PaymentMethodsRepo) Create(ctx context.Context, userID int64, req payment.CreateRequest) (int64, error) {
	var id int64

	err := r.observe("payment_methods.create", func() error {
		return r.pool.QueryRow(ctx,
			`INSERT INTO payment_methods (name, description, iduser, is_delete)
			VALUES ($1, $2, $3, FALSE)
			RETURNING id`,
			req.Name, req.Description, userID,
		).Scan(&id)
	})

	return id, err
}

func (r *PaymentMethodsRepo) Update(ctx context.Context, id, callerID int64, req payment.UpdateRequest) error {
	return r.observe("payment_methods.update", func() error {
		return r.inTx(ctx, func(tx pgx.Tx) error {
			if err := paymentMethodsTable.lockOwned(ctx, tx, id, callerID); err != nil {
				return err
			}
			if req.IsEmpty() {
				return nil
			}

			_, err := tx.Exec(ctx,
				`UPDATE payment_methods
				SET name = COALESCE($2, name),
					description = COALESCE($3, description),
					updated_at = NOW()
				WHERE id = $1`,
				id, req.Name, req.Description,
			)
			return err
		})
	})
}

func (r *PaymentMethodsRepo) Delete(ctx context.Context, id, callerID int64) error {
	return r.observe("payment_methods.delete", func() error {
		return r.inTx(ctx, func(tx pgx.Tx) error {
			if err := paymentMethodsTable.lockOwned(ctx, tx, id, callerID); err != nil {
				return err
			}
			return paymentMethodsTable.remove(ctx, tx, id)
		})
	})
}
