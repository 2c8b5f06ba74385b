package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"ledgerd/internal/domain"
	"ledgerd/internal/port"
)

type transactionRepo struct {
	db *sqlx.DB
}

// NewTransactionRepo creates a new PostgreSQL-backed TransactionRepository.
func NewTransactionRepo(db *sqlx.DB) port.TransactionRepository {
	return &transactionRepo{db: db}
}

// CreateBatch inserts committed transactions in one transaction. Each row
// carries a deterministic id derived upstream, so ON CONFLICT DO NOTHING
// keeps a re-commit from duplicating rows.
func (r *transactionRepo) CreateBatch(ctx context.Context, txs []domain.Transaction) error {
	if len(txs) == 0 {
		return nil
	}

	dbTx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("transactionRepo.CreateBatch begin: %w", err)
	}
	defer func() { _ = dbTx.Rollback() }()

	query := `INSERT INTO transactions
		(id, user_id, tx_date, merchant, description, amount, currency,
		 category, needs_amount_review, source, import_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO NOTHING`

	now := time.Now().UTC()
	for i := range txs {
		if txs[i].CreatedAt.IsZero() {
			txs[i].CreatedAt = now
		}
		_, err = dbTx.ExecContext(ctx, query,
			txs[i].ID, txs[i].UserID, txs[i].Date, txs[i].Merchant, txs[i].Description,
			txs[i].Amount, txs[i].Currency, txs[i].Category, txs[i].NeedsAmountReview,
			txs[i].Source, txs[i].ImportID, txs[i].CreatedAt)
		if err != nil {
			return fmt.Errorf("transactionRepo.CreateBatch: %w", err)
		}
	}

	return dbTx.Commit()
}

func (r *transactionRepo) ListByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]domain.Transaction, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM transactions WHERE user_id = $1", userID)
	if err != nil {
		return nil, 0, fmt.Errorf("transactionRepo.ListByUser count: %w", err)
	}

	var txs []domain.Transaction
	err = r.db.SelectContext(ctx, &txs,
		`SELECT * FROM transactions WHERE user_id = $1
		 ORDER BY tx_date DESC NULLS LAST, created_at DESC LIMIT $2 OFFSET $3`,
		userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("transactionRepo.ListByUser: %w", err)
	}
	return txs, total, nil
}

func (r *transactionRepo) CountByImport(ctx context.Context, importID uuid.UUID) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM transactions WHERE import_id = $1", importID)
	if err != nil {
		return 0, fmt.Errorf("transactionRepo.CountByImport: %w", err)
	}
	return count, nil
}
