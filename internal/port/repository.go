package port

import (
	"context"

	"github.com/google/uuid"

	"ledgerd/internal/domain"
)

// DocumentRepository defines the contract for document persistence.
// All query methods include userID to enforce per-user isolation.
type DocumentRepository interface {
	// Create inserts a document. If a document with the same
	// (user_id, content_hash) already exists, it returns
	// domain.ErrDuplicateDocument; concurrent uploads of the same content are
	// resolved by the store's unique constraint, and the loser must re-read
	// the winner via GetByContentHash.
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, userID, docID uuid.UUID) (*domain.Document, error)
	GetByContentHash(ctx context.Context, userID uuid.UUID, hash string) (*domain.Document, error)
	// GetByRawHash looks a document up by the hash of its uploaded bytes,
	// letting byte-identical re-uploads short-circuit before extraction.
	GetByRawHash(ctx context.Context, userID uuid.UUID, hash string) (*domain.Document, error)
	UpdateStatus(ctx context.Context, doc *domain.Document) error
	ListByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]domain.Document, int, error)
}

// ImportRepository defines the contract for import persistence.
type ImportRepository interface {
	Create(ctx context.Context, imp *domain.Import) error
	GetByID(ctx context.Context, userID, importID uuid.UUID) (*domain.Import, error)
	// UpdateStatus persists a status transition. Implementations reject
	// illegal transitions with domain.ErrInvalidTransition by comparing
	// against the currently stored status.
	UpdateStatus(ctx context.Context, imp *domain.Import) error
	ListAutoCommittable(ctx context.Context, limit int) ([]domain.Import, error)
}

// StagingRepository defines the contract for the staging area.
type StagingRepository interface {
	// Upsert inserts a staging row; a duplicate (import_id, hash) is a no-op.
	Upsert(ctx context.Context, row *domain.StagingRow) error
	ListByImport(ctx context.Context, importID uuid.UUID) ([]domain.StagingRow, error)
	DeleteByImport(ctx context.Context, importID uuid.UUID) error
}

// TransactionRepository defines the contract for the permanent ledger.
type TransactionRepository interface {
	CreateBatch(ctx context.Context, txs []domain.Transaction) error
	ListByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]domain.Transaction, int, error)
	CountByImport(ctx context.Context, importID uuid.UUID) (int, error)
}
