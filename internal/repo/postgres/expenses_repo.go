package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/finanzcord/finanzcord/internal/domain/access"
	"github.com/finanzcord/finanzcord/internal/domain/expense"
	"github.com/finanzcord/finanzcord/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ExpensesRepo struct {
	base
}

func NewExpensesRepo(pool *pgxpool.Pool, prom *observability.Prom) *ExpensesRepo {
	return &ExpensesRepo{base{pool: pool, prom: prom}}
}

// amounts travel as integer cents; the column is NUMERIC(10,2)
const expenseColumns = `id, concept, idcategory, ROUND(amount * 100)::BIGINT, description,
	created_at, updated_at, date, idpayment, priority, iduser`

func scanExpense(row pgx.Row, e *expense.Expense) error {
	var cents int64
	var date *time.Time

	err := row.Scan(&e.ID, &e.Concept, &e.CategoryID, &cents, &e.Description,
		&e.CreatedAt, &e.UpdatedAt, &date, &e.PaymentID, &e.Priority, &e.UserID)
	if err != nil {
		return err
	}

	e.Amount = expense.Amount(cents)
	if date != nil {
		d := expense.NewDate(*date)
		e.Date = &d
	}
	return nil
}

func dateArg(d *expense.Date) *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}

func centsArg(a *expense.Amount) *int64 {
	if a == nil {
		return nil
	}
	c := a.Cents()
	return &c
}

func listExpenses(ctx context.Context, q querier, userID int64, w expense.Window) ([]expense.Expense, error) {
	out := make([]expense.Expense, 0)
	if w.Limit <= 0 {
		return out, nil
	}

	rows, err := q.Query(ctx,
		`SELECT `+expenseColumns+`
		FROM expenses
		WHERE iduser = $1
		ORDER BY date DESC NULLS LAST, id DESC
		LIMIT $2 OFFSET $3`,
		userID, w.Limit, w.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var e expense.Expense
		if err := scanExpense(rows, &e); err != nil {
			return nil, err
		}
		out = append(out, e)
	}

	return out, rows.Err()
}

// List returns one window of the caller's expenses, newest date first.
func (r *ExpensesRepo) List(ctx context.Context, userID int64, w expense.Window) ([]expense.Expense, error) {
	var out []expense.Expense

	err := r.observe("expenses.list", func() error {
		var err error
		out, err = listExpenses(ctx, r.pool, userID, w)
		return err
	})

	return out, err
}

// ListDetailed returns a window of expenses joined with the caller's active
// categories and all of the caller's payment methods, read in one snapshot.
func (r *ExpensesRepo) ListDetailed(ctx context.Context, userID int64, w expense.Window) ([]expense.Detailed, error) {
	var out []expense.Detailed

	err := r.observe("expenses.list_detailed", func() error {
		tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback(ctx) }()

		expenses, err := listExpenses(ctx, tx, userID, w)
		if err != nil {
			return err
		}
		categories, err := listCategories(ctx, tx, userID)
		if err != nil {
			return err
		}
		methods, err := listPaymentMethods(ctx, tx, userID, true)
		if err != nil {
			return err
		}

		out = expense.Join(expenses, categories, methods)
		return tx.Commit(ctx)
	})

	return out, err
}

func (r *ExpensesRepo) Get(ctx context.Context, id, callerID int64) (expense.Expense, error) {
	var e expense.Expense

	err := r.observe("expenses.get", func() error {
		err := scanExpense(r.pool.QueryRow(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE id = $1`, id), &e)
		if errors.Is(err, pgx.ErrNoRows) {
			return access.ErrNotFound
		}
		if err != nil {
			return err
		}
		return access.Check(true, false, e.UserID, callerID)
	})

	if err != nil {
		return expense.Expense{}, err
	}
	return e, nil
}

func (r *ExpensesRepo) Create(ctx context.Context, userID int64, req expense.CreateRequest) (int64, error) {
	var id int64

	err := r.observe("expenses.create", func() error {
		return r.pool.QueryRow(ctx,
			`INSERT INTO expenses (concept, idcategory, amount, description, date, idpayment, priority, iduser)
			VALUES ($1, $2, $3::BIGINT::NUMERIC / 100, $4, $5, $6, $7, $8)
			RETURNING id`,
			req.Concept, req.CategoryID, centsArg(req.Amount), req.Description,
			dateArg(req.Date), req.PaymentID, req.Priority, userID,
		).Scan(&id)
	})

	return id, err
}

func (r *ExpensesRepo) Update(ctx context.Context, id, callerID int64, req expense.UpdateRequest) error {
	return r.observe("expenses.update", func() error {
		return r.inTx(ctx, func(tx pgx.Tx) error {
			if err := expensesTable.lockOwned(ctx, tx, id, callerID); err != nil {
				return err
			}
			if req.IsEmpty() {
				return nil
			}

			_, err := tx.Exec(ctx,
				`UPDATE expenses
				SET concept = COALESCE($2, concept),
					idcategory = COALESCE($3, idcategory),
					amount = COALESCE($4::BIGINT::NUMERIC / 100, amount),
					description = COALESCE($5, description),
					date = COALESCE($6::DATE, date),
					idpayment = COALESCE($7, idpayment),
					priority = COALESCE($8, priority),
					updated_at = NOW()
				WHERE id = $1`,
				id, req.Concept, req.CategoryID, centsArg(req.Amount), req.Description,
				dateArg(req.Date), req.PaymentID, req.Priority,
			)
			return err
		})
	})
}

// Delete removes the row outright; expenses have no soft-delete flag.
func (r *ExpensesRepo) Delete(ctx context.Context, id, callerID int64) error {
	return r.observe("expenses.delete", func() error {
		return r.inTx(ctx, func(tx pgx.Tx) error {
			if err := expensesTable.lockOwned(ctx, tx, id, callerID); err != nil {
				return err
			}
			return expensesTable.remove(ctx, tx, id)
		})
	})
}
