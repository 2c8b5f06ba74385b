package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"ledgerd/internal/domain"
	"ledgerd/internal/port"
)

type importRepo struct {
	db *sqlx.DB
}

// NewImportRepo creates a new PostgreSQL-backed ImportRepository.
func NewImportRepo(db *sqlx.DB) port.ImportRepository {
	return &importRepo{db: db}
}

func (r *importRepo) Create(ctx context.Context, imp *domain.Import) error {
	now := time.Now().UTC()
	imp.CreatedAt = now
	imp.UpdatedAt = now

	query := `INSERT INTO imports
		(id, user_id, document_id, status, error, committed_count, auto_commit, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.ExecContext(ctx, query,
		imp.ID, imp.UserID, imp.DocumentID, imp.Status, imp.Error,
		imp.CommittedCount, imp.AutoCommit, imp.CreatedAt, imp.UpdatedAt)
	if err != nil {
		return fmt.Errorf("importRepo.Create: %w", err)
	}
	return nil
}

func (r *importRepo) GetByID(ctx context.Context, userID, importID uuid.UUID) (*domain.Import, error) {
	var imp domain.Import
	err := r.db.GetContext(ctx, &imp,
		"SELECT * FROM imports WHERE id = $1 AND user_id = $2", importID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("importRepo.GetByID: %w", err)
	}
	return &imp, nil
}

// UpdateStatus persists a transition, enforcing the state machine against
// the currently stored status inside one transaction.
func (r *importRepo) UpdateStatus(ctx context.Context, imp *domain.Import) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("importRepo.UpdateStatus begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var current domain.ImportStatus
	err = tx.GetContext(ctx, &current,
		"SELECT status FROM imports WHERE id = $1 AND user_id = $2 FOR UPDATE",
		imp.ID, imp.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("importRepo.UpdateStatus read: %w", err)
	}

	if current != imp.Status && !current.CanTransition(imp.Status) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, current, imp.Status)
	}

	imp.UpdatedAt = time.Now().UTC()
	_, err = tx.ExecContext(ctx,
		`UPDATE imports SET status = $1, error = $2, committed_count = $3, updated_at = $4
		 WHERE id = $5 AND user_id = $6`,
		imp.Status, imp.Error, imp.CommittedCount, imp.UpdatedAt, imp.ID, imp.UserID)
	if err != nil {
		return fmt.Errorf("importRepo.UpdateStatus write: %w", err)
	}

	return tx.Commit()
}

func (r *importRepo) ListAutoCommittable(ctx context.Context, limit int) ([]domain.Import, error) {
	var imps []domain.Import
	err := r.db.SelectContext(ctx, &imps,
		`SELECT * FROM imports
		 WHERE status = $1 AND auto_commit = TRUE
		 ORDER BY updated_at ASC LIMIT $2`,
		domain.ImportStatusParsed, limit)
	if err != nil {
		return nil, fmt.Errorf("importRepo.ListAutoCommittable: %w", err)
	}
	return imps, nil
}
