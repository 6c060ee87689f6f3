package postgres

import (
	"context"
	"errors"

	"github.com/finanzcord/finanzcord/internal/domain/access"
	"github.com/finanzcord/finanzcord/internal/domain/user"
	"github.com/finanzcord/finanzcord/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var usersDelete = access.SoftDelete{Column: "is_delete"}

type UsersRepo struct {
	base
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{base{pool: pool, prom: prom}}
}

func (r *UsersRepo) Create(ctx context.Context, name, email, passwordHash string) (int64, error) {
	var id int64

	err := r.observe("users.create", func() error {
		return r.inTx(ctx, func(tx pgx.Tx) error {
			if err := ensureEmailFree(ctx, tx, email, 0); err != nil {
				return err
			}

			err := tx.QueryRow(ctx,
				`INSERT INTO users (name, email, password_hash, is_delete)
				VALUES ($1, $2, $3, FALSE)
				RETURNING id`,
				name, email, passwordHash,
			).Scan(&id)
			if IsUniqueViolation(err) {
				return user.ErrEmailTaken
			}
			return err
		})
	})

	return id, err
}

func ensureEmailFree(ctx context.Context, q querier, email string, exceptID int64) error {
	var taken bool
	err := q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 AND NOT is_delete AND id <> $2)`,
		email, exceptID,
	).Scan(&taken)
	if err != nil {
		return err
	}
	if taken {
		return user.ErrEmailTaken
	}
	return nil
}

// GetActiveByEmail returns the oldest active user with this email.
func (r *UsersRepo) GetActiveByEmail(ctx context.Context, email string) (user.User, error) {
	var u user.User

	err := r.observe("users.get_by_email", func() error {
		err := r.pool.QueryRow(ctx,
			`SELECT id, name, email, password_hash, is_delete
			FROM users
			WHERE email = $1 AND NOT is_delete
			ORDER BY id
			LIMIT 1`,
			email,
		).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.IsDeleted)

		if errors.Is(err, pgx.ErrNoRows) {
			return user.ErrNotFound
		}
		return err
	})

	if err != nil {
		return user.User{}, err
	}
	return u, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id int64) (user.User, error) {
	var u user.User

	err := r.observe("users.get", func() error {
		err := r.pool.QueryRow(ctx,
			`SELECT id, name, email, password_hash, is_delete FROM users WHERE id = $1 AND NOT is_delete`,
			id,
		).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.IsDeleted)

		if errors.Is(err, pgx.ErrNoRows) {
			return user.ErrNotFound
		}
		return err
	})

	if err != nil {
		return user.User{}, err
	}
	return u, nil
}

func (r *UsersRepo) List(ctx context.Context) ([]user.User, error) {
	out := make([]user.User, 0)

	err := r.observe("users.list", func() error {
		rows, err := r.pool.Query(ctx, `SELECT id, name, email FROM users WHERE NOT is_delete ORDER BY id`)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var u user.User
			if err := rows.Scan(&u.ID, &u.Name, &u.Email); err != nil {
				return err
			}
			out = append(out, u)
		}
		return rows.Err()
	})

	return out, err
}

// lockSelf locks an active user row and checks that it belongs to callerEmail.
// It returns the row's current email.
func lockSelf(ctx context.Context, tx pgx.Tx, id int64, callerEmail string) (string, error) {
	var email string
	var deleted bool

	err := tx.QueryRow(ctx, `SELECT email, is_delete FROM users WHERE id = $1 FOR UPDATE`, id).Scan(&email, &deleted)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", user.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	if deleted {
		return "", user.ErrNotFound
	}
	if email != callerEmail {
		return "", access.ErrForbidden
	}
	return email, nil
}

// Update changes the caller's own row and returns the email it had before.
func (r *UsersRepo) Update(ctx context.Context, id int64, callerEmail string, ch user.Changes) (string, error) {
	var previous string

	err := r.observe("users.update", func() error {
		return r.inTx(ctx, func(tx pgx.Tx) error {
			var err error
			previous, err = lockSelf(ctx, tx, id, callerEmail)
			if err != nil {
				return err
			}
			if ch.IsEmpty() {
				return nil
			}

			if ch.Email != nil && *ch.Email != previous {
				if err := ensureEmailFree(ctx, tx, *ch.Email, id); err != nil {
					return err
				}
			}

			_, err = tx.Exec(ctx,
				`UPDATE users
				SET name = COALESCE($2, name),
					email = COALESCE($3, email),
					password_hash = COALESCE($4, password_hash)
				WHERE id = $1`,
				id, ch.Name, ch.Email, ch.PasswordHash,
			)
			if IsUniqueViolation(err) {
				return user.ErrEmailTaken
			}
			return err
		})
	})

	return previous, err
}

// Delete soft-deletes the caller's own row. The admin row is never deleted.
func (r *UsersRepo) Delete(ctx context.Context, id int64, callerEmail string) error {
	return r.observe("users.delete", func() error {
		return r.inTx(ctx, func(tx pgx.Tx) error {
			if _, err := lockSelf(ctx, tx, id, callerEmail); err != nil {
				return err
			}
			if id == user.AdminID {
				return user.ErrAdminProtected
			}
			return removeRow(ctx, tx, "users", id, usersDelete)
		})
	})
}

// SetPasswordHash replaces a legacy hash after a successful login.
func (r *UsersRepo) SetPasswordHash(ctx context.Context, id int64, hash string) error {
	return r.observe("users.set_password_hash", func() error {
		_, err := r.pool.Exec(ctx, `UPDATE users SET password_hash = $2 WHERE id = $1`, id, hash)
		return err
	})
}
