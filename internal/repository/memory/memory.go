// Package memory holds in-memory repository implementations, selected by
// storage.driver=memory for development and tests. Semantics mirror the
// postgres implementations: duplicate content hashes, staging upserts and
// status transitions behave identically.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"ledgerd/internal/domain"
	"ledgerd/internal/port"
)

// Store is the shared backing state for all in-memory repositories.
type Store struct {
	mu           sync.RWMutex
	documents    map[uuid.UUID]domain.Document
	imports      map[uuid.UUID]domain.Import
	staging      map[uuid.UUID]map[string]domain.StagingRow
	transactions map[uuid.UUID]domain.Transaction
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		documents:    make(map[uuid.UUID]domain.Document),
		imports:      make(map[uuid.UUID]domain.Import),
		staging:      make(map[uuid.UUID]map[string]domain.StagingRow),
		transactions: make(map[uuid.UUID]domain.Transaction),
	}
}

type documentRepo struct{ s *Store }

// NewDocumentRepo creates an in-memory DocumentRepository.
func NewDocumentRepo(s *Store) port.DocumentRepository { return &documentRepo{s: s} }

func (r *documentRepo) Create(_ context.Context, doc *domain.Document) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, d := range r.s.documents {
		if d.UserID == doc.UserID && d.ContentHash == doc.ContentHash {
			return domain.ErrDuplicateDocument
		}
	}
	doc.CreatedAt = time.Now().UTC()
	r.s.documents[doc.ID] = *doc
	return nil
}

func (r *documentRepo) GetByID(_ context.Context, userID, docID uuid.UUID) (*domain.Document, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	doc, ok := r.s.documents[docID]
	if !ok || doc.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

func (r *documentRepo) GetByContentHash(_ context.Context, userID uuid.UUID, hash string) (*domain.Document, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, d := range r.s.documents {
		if d.UserID == userID && d.ContentHash == hash {
			doc := d
			return &doc, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *documentRepo) GetByRawHash(_ context.Context, userID uuid.UUID, hash string) (*domain.Document, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, d := range r.s.documents {
		if d.UserID == userID && d.RawHash == hash {
			doc := d
			return &doc, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *documentRepo) UpdateStatus(_ context.Context, doc *domain.Document) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.documents[doc.ID]
	if !ok || stored.UserID != doc.UserID {
		return domain.ErrNotFound
	}
	stored.Status = doc.Status
	stored.TransactionCount = doc.TransactionCount
	r.s.documents[doc.ID] = stored
	return nil
}

func (r *documentRepo) ListByUser(_ context.Context, userID uuid.UUID, offset, limit int) ([]domain.Document, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var docs []domain.Document
	for _, d := range r.s.documents {
		if d.UserID == userID {
			docs = append(docs, d)
		}
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].CreatedAt.After(docs[j].CreatedAt) })
	total := len(docs)
	return paginate(docs, offset, limit), total, nil
}

type importRepo struct{ s *Store }

// NewImportRepo creates an in-memory ImportRepository.
func NewImportRepo(s *Store) port.ImportRepository { return &importRepo{s: s} }

func (r *importRepo) Create(_ context.Context, imp *domain.Import) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := time.Now().UTC()
	imp.CreatedAt = now
	imp.UpdatedAt = now
	r.s.imports[imp.ID] = *imp
	return nil
}

func (r *importRepo) GetByID(_ context.Context, userID, importID uuid.UUID) (*domain.Import, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	imp, ok := r.s.imports[importID]
	if !ok || imp.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return &imp, nil
}

func (r *importRepo) UpdateStatus(_ context.Context, imp *domain.Import) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.imports[imp.ID]
	if !ok || stored.UserID != imp.UserID {
		return domain.ErrNotFound
	}
	if stored.Status != imp.Status && !stored.Status.CanTransition(imp.Status) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, stored.Status, imp.Status)
	}

	stored.Status = imp.Status
	stored.Error = imp.Error
	stored.CommittedCount = imp.CommittedCount
	stored.UpdatedAt = time.Now().UTC()
	r.s.imports[imp.ID] = stored
	imp.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *importRepo) ListAutoCommittable(_ context.Context, limit int) ([]domain.Import, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var imps []domain.Import
	for _, imp := range r.s.imports {
		if imp.Status == domain.ImportStatusParsed && imp.AutoCommit {
			imps = append(imps, imp)
		}
	}
	sort.Slice(imps, func(i, j int) bool { return imps[i].UpdatedAt.Before(imps[j].UpdatedAt) })
	if limit > 0 && len(imps) > limit {
		imps = imps[:limit]
	}
	return imps, nil
}

type stagingRepo struct{ s *Store }

// NewStagingRepo creates an in-memory StagingRepository.
func NewStagingRepo(s *Store) port.StagingRepository { return &stagingRepo{s: s} }

func (r *stagingRepo) Upsert(_ context.Context, row *domain.StagingRow) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rows, ok := r.s.staging[row.ImportID]
	if !ok {
		rows = make(map[string]domain.StagingRow)
		r.s.staging[row.ImportID] = rows
	}
	if _, exists := rows[row.Hash]; exists {
		return nil
	}
	rows[row.Hash] = *row
	return nil
}

func (r *stagingRepo) ListByImport(_ context.Context, importID uuid.UUID) ([]domain.StagingRow, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []domain.StagingRow
	for _, row := range r.s.staging[importID] {
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Hash < out[j].Hash })
	return out, nil
}

func (r *stagingRepo) DeleteByImport(_ context.Context, importID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.staging, importID)
	return nil
}

type transactionRepo struct{ s *Store }

// NewTransactionRepo creates an in-memory TransactionRepository.
func NewTransactionRepo(s *Store) port.TransactionRepository { return &transactionRepo{s: s} }

func (r *transactionRepo) CreateBatch(_ context.Context, txs []domain.Transaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := time.Now().UTC()
	for i := range txs {
		if _, exists := r.s.transactions[txs[i].ID]; exists {
			continue
		}
		if txs[i].CreatedAt.IsZero() {
			txs[i].CreatedAt = now
		}
		r.s.transactions[txs[i].ID] = txs[i]
	}
	return nil
}

func (r *transactionRepo) ListByUser(_ context.Context, userID uuid.UUID, offset, limit int) ([]domain.Transaction, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var txs []domain.Transaction
	for _, tx := range r.s.transactions {
		if tx.UserID == userID {
			txs = append(txs, tx)
		}
	}
	sort.Slice(txs, func(i, j int) bool {
		di, dj := txs[i].Date, txs[j].Date
		switch {
		case di == nil && dj == nil:
			return txs[i].CreatedAt.After(txs[j].CreatedAt)
		case di == nil:
			return false
		case dj == nil:
			return true
		case !di.Equal(*dj):
			return di.After(*dj)
		default:
			return txs[i].CreatedAt.After(txs[j].CreatedAt)
		}
	})
	total := len(txs)
	return paginate(txs, offset, limit), total, nil
}

func (r *transactionRepo) CountByImport(_ context.Context, importID uuid.UUID) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	count := 0
	for _, tx := range r.s.transactions {
		if tx.ImportID == importID {
			count++
		}
	}
	return count, nil
}

func paginate[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}
