package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"ledgerd/internal/domain"
	"ledgerd/internal/port"
)

type stagingRepo struct {
	db *sqlx.DB
}

// NewStagingRepo creates a new PostgreSQL-backed StagingRepository.
func NewStagingRepo(db *sqlx.DB) port.StagingRepository {
	return &stagingRepo{db: db}
}

// Upsert inserts a staging row. ON CONFLICT DO NOTHING makes re-staging the
// same (import_id, hash) pair a no-op instead of an error.
func (r *stagingRepo) Upsert(ctx context.Context, row *domain.StagingRow) error {
	query := `INSERT INTO staging_rows (import_id, user_id, payload, hash)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (import_id, hash) DO NOTHING`

	_, err := r.db.ExecContext(ctx, query, row.ImportID, row.UserID, row.Payload, row.Hash)
	if err != nil {
		return fmt.Errorf("stagingRepo.Upsert: %w", err)
	}
	return nil
}

func (r *stagingRepo) ListByImport(ctx context.Context, importID uuid.UUID) ([]domain.StagingRow, error) {
	var rows []domain.StagingRow
	err := r.db.SelectContext(ctx, &rows,
		"SELECT * FROM staging_rows WHERE import_id = $1 ORDER BY hash", importID)
	if err != nil {
		return nil, fmt.Errorf("stagingRepo.ListByImport: %w", err)
	}
	return rows, nil
}

func (r *stagingRepo) DeleteByImport(ctx context.Context, importID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM staging_rows WHERE import_id = $1", importID)
	if err != nil {
		return fmt.Errorf("stagingRepo.DeleteByImport: %w", err)
	}
	return nil
}
