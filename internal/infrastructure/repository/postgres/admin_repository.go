package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// AdminRepository backs destructive maintenance operations.
type AdminRepository struct {
	db *sqlx.DB
}

func NewAdminRepository(db *sqlx.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

// ResetAllData wipes every table in dependency order within one transaction.
func (r *AdminRepository) ResetAllData(ctx context.Context) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx reset data: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, table := range []string{"transfers", "matches", "players", "clubs"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("reset table %s: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reset data tx: %w", err)
	}

	return nil
}
