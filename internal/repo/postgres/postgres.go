package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/finanzcord/finanzcord/internal/domain/access"
	"github.com/finanzcord/finanzcord/internal/domain/user"
	"github.com/finanzcord/finanzcord/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type base struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

// observe records the call in the DB metrics. Domain outcomes such as
// not-found or forbidden are returned unchanged but counted as ok.
func (b base) observe(op string, fn func() error) error {
	var domainErr error

	err := b.prom.ObserveDB(op, func() error {
		err := fn()
		if isDomainErr(err) {
			domainErr = err
			return nil
		}
		return err
	})

	if domainErr != nil {
		return domainErr
	}
	return err
}

func isDomainErr(err error) bool {
	return errors.Is(err, access.ErrNotFound) ||
		errors.Is(err, access.ErrForbidden) ||
		errors.Is(err, user.ErrEmailTaken) ||
		errors.Is(err, user.ErrAdminProtected)
}

func (b base) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := b.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// Ping reports whether the pool can reach the database.
func (b base) Ping(ctx context.Context) error {
	return b.pool.Ping(ctx)
}

func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return false
}

// ownedTable describes a table whose rows belong to one user via iduser.
type ownedTable struct {
	name   string
	delete access.Strategy
}

var (
	categoriesTable     = ownedTable{name: "categories", delete: access.SoftDelete{Column: "is_delete"}}
	paymentMethodsTable = ownedTable{name: "payment_methods", delete: access.SoftDelete{Column: "is_delete"}}
	expensesTable       = ownedTable{name: "expenses", delete: access.HardDelete{}}
)

func (t ownedTable) deletedExpr() string {
	if s, ok := t.delete.(access.SoftDelete); ok {
		return s.Column
	}
	return "FALSE"
}

// lockOwned locks the row and checks existence, then ownership.
func (t ownedTable) lockOwned(ctx context.Context, tx pgx.Tx, id, callerID int64) error {
	var ownerID int64
	var deleted bool

	err := tx.QueryRow(ctx,
		fmt.Sprintf(`SELECT iduser, %s FROM %s WHERE id = $1 FOR UPDATE`, t.deletedExpr(), t.name),
		id,
	).Scan(&ownerID, &deleted)

	if errors.Is(err, pgx.ErrNoRows) {
		return access.Check(false, false, 0, callerID)
	}
	if err != nil {
		return err
	}

	return access.Check(true, deleted, ownerID, callerID)
}

func (t ownedTable) remove(ctx context.Context, q querier, id int64) error {
	return removeRow(ctx, q, t.name, id, t.delete)
}

func removeRow(ctx context.Context, q querier, table string, id int64, strategy access.Strategy) error {
	var sql string

	switch s := strategy.(type) {
	case access.SoftDelete:
		sql = fmt.Sprintf(`UPDATE %s SET %s = TRUE WHERE id = $1`, table, s.Column)
	case access.HardDelete:
		sql = fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, table)
	default:
		return fmt.Errorf("unknown delete strategy %T", strategy)
	}

	tag, err := q.Exec(ctx, sql, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return access.ErrNotFound
	}
	return nil
}
