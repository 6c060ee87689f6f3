package db

import (
	"context"
	"log/slog"

	"github.com/finanzcord/finanzcord/internal/config"
	"github.com/finanzcord/finanzcord/internal/domain/user"
	"github.com/finanzcord/finanzcord/internal/security"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureAdminUser creates the protected admin row (id 1) on an empty users table.
func EnsureAdminUser(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// two instances booting together must not both seed
	if _, err := tx.Exec(ctx, `LOCK TABLE users IN EXCLUSIVE MODE`); err != nil {
		return err
	}

	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users)`).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return nil
	}

	hash, err := security.HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO users (id, name, email, password_hash, is_delete)
		VALUES ($1, $2, $3, $4, FALSE)`,
		user.AdminID, cfg.AdminName, cfg.AdminEmail, hash,
	)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `SELECT setval(pg_get_serial_sequence('users', 'id'), $1)`, user.AdminID); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	slog.Info("admin user seeded", "email", cfg.AdminEmail)
	return nil
}
