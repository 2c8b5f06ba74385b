package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"ledgerd/internal/config"
	"ledgerd/internal/domain"
	"ledgerd/internal/pipeline"
	"ledgerd/internal/port"
)

// UploadInput is the DTO for document upload requests.
type UploadInput struct {
	UserID     uuid.UUID
	Data       []byte
	Filename   string
	MIMEHint   string
	AutoCommit bool
}

// UploadResult reports the outcome of an upload. IsDuplicate means the
// content matched an existing document and nothing new was created.
type UploadResult struct {
	Document    *domain.Document `json:"document"`
	Import      *domain.Import   `json:"import,omitempty"`
	IsDuplicate bool             `json:"is_duplicate"`
	Warnings    []string         `json:"warnings,omitempty"`
}

// ImportService runs the upload-extract-stage-commit flow.
type ImportService interface {
	Upload(ctx context.Context, input UploadInput) (*UploadResult, error)
	GetDocument(ctx context.Context, userID, docID uuid.UUID) (*domain.Document, error)
	ListDocuments(ctx context.Context, userID uuid.UUID, offset, limit int) ([]domain.Document, int, error)
	GetImport(ctx context.Context, userID, importID uuid.UUID) (*domain.Import, error)
	// Commit promotes an import's staged rows into the permanent ledger.
	// Re-committing an already-committed import is a no-op returning the
	// previously committed count.
	Commit(ctx context.Context, userID, importID uuid.UUID) (int, error)
}

type importService struct {
	docRepo     port.DocumentRepository
	importRepo  port.ImportRepository
	stagingRepo port.StagingRepository
	txRepo      port.TransactionRepository
	storage     port.ObjectStorage
	pipe        *pipeline.Pipeline
	cfg         *config.S3Config
}

// NewImportService creates a new ImportService implementation.
func NewImportService(
	docRepo port.DocumentRepository,
	importRepo port.ImportRepository,
	stagingRepo port.StagingRepository,
	txRepo port.TransactionRepository,
	storage port.ObjectStorage,
	pipe *pipeline.Pipeline,
	cfg *config.S3Config,
) ImportService {
	return &importService{
		docRepo:     docRepo,
		importRepo:  importRepo,
		stagingRepo: stagingRepo,
		txRepo:      txRepo,
		storage:     storage,
		pipe:        pipe,
		cfg:         cfg,
	}
}

func (s *importService) Upload(ctx context.Context, input UploadInput) (*UploadResult, error) {
	if len(input.Data) == 0 {
		return nil, domain.ErrEmptyDocument
	}
	maxBytes := s.cfg.MaxFileSizeMB * 1024 * 1024
	if maxBytes > 0 && int64(len(input.Data)) > maxBytes {
		return nil, domain.ErrFileTooLarge
	}
	if ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(input.Filename)), "."); ext != "" {
		if _, ok := domain.AllowedExtensions[ext]; !ok {
			return nil, domain.ErrUnsupportedFileType
		}
	}

	// Dedup is two-level. Byte-identical re-uploads are caught on the raw
	// hash before extraction runs, so they never pay the OCR or model
	// cost; re-encoded scans of the same statement are caught afterwards
	// on the text-preferred content hash.
	rawHash := domain.RawHash(input.Data)
	if existing, err := s.docRepo.GetByRawHash(ctx, input.UserID, rawHash); err == nil {
		log.Printf("importService.Upload: byte-identical re-upload for user %s (document %s)", input.UserID, existing.ID)
		return &UploadResult{Document: existing, IsDuplicate: true}, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("checking for duplicate bytes: %w", err)
	}

	doc := domain.RawDocument{Data: input.Data, Filename: input.Filename, MIMEHint: input.MIMEHint}
	pipeRes, pipeErr := s.pipe.Extract(ctx, doc)

	fullText := ""
	fileType := domain.FileTypeUnknown
	if pipeRes != nil {
		fullText = pipeRes.Extraction.FullText
		fileType = pipeRes.FileType
	}
	contentHash := domain.ContentHash(fullText, input.Data)

	if existing, err := s.docRepo.GetByContentHash(ctx, input.UserID, contentHash); err == nil {
		log.Printf("importService.Upload: duplicate content for user %s (document %s)", input.UserID, existing.ID)
		return &UploadResult{Document: existing, IsDuplicate: true}, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("checking for duplicate: %w", err)
	}

	docID := uuid.New()
	s3Key := fmt.Sprintf("users/%s/documents/%s%s", input.UserID, docID, strings.ToLower(filepath.Ext(input.Filename)))
	document := &domain.Document{
		ID:           docID,
		UserID:       input.UserID,
		ContentHash:  contentHash,
		RawHash:      rawHash,
		DocType:      fileType,
		Status:       domain.DocumentStatusPending,
		S3Bucket:     s.cfg.Bucket,
		S3Key:        s3Key,
		OriginalName: input.Filename,
	}

	if err := s.docRepo.Create(ctx, document); err != nil {
		if errors.Is(err, domain.ErrDuplicateDocument) {
			// Lost a concurrent race for the same content: the winner's
			// row is authoritative.
			existing, gerr := s.docRepo.GetByContentHash(ctx, input.UserID, contentHash)
			if gerr != nil {
				return nil, fmt.Errorf("re-reading duplicate winner: %w", gerr)
			}
			return &UploadResult{Document: existing, IsDuplicate: true}, nil
		}
		return nil, fmt.Errorf("creating document: %w", err)
	}

	if _, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.cfg.Bucket,
		Key:         s3Key,
		Body:        bytes.NewReader(input.Data),
		ContentType: input.MIMEHint,
		Size:        int64(len(input.Data)),
	}); err != nil {
		log.Printf("importService.Upload: S3 upload failed for document %s: %v", docID, err)
		document.Status = domain.DocumentStatusFailed
		_ = s.docRepo.UpdateStatus(ctx, document)
		return nil, domain.ErrUploadFailed
	}

	imp := &domain.Import{
		ID:         uuid.New(),
		UserID:     input.UserID,
		DocumentID: docID,
		Status:     domain.ImportStatusPending,
		AutoCommit: input.AutoCommit,
	}
	if err := s.importRepo.Create(ctx, imp); err != nil {
		return nil, fmt.Errorf("creating import: %w", err)
	}

	imp.Status = domain.ImportStatusParsing
	if err := s.importRepo.UpdateStatus(ctx, imp); err != nil {
		return nil, fmt.Errorf("starting parse: %w", err)
	}

	if pipeErr != nil {
		log.Printf("importService.Upload: extraction failed for document %s: %v", docID, pipeErr)
		imp.Status = domain.ImportStatusFailed
		imp.Error = pipeErr.Error()
		_ = s.importRepo.UpdateStatus(ctx, imp)
		document.Status = domain.DocumentStatusFailed
		_ = s.docRepo.UpdateStatus(ctx, document)
		return &UploadResult{Document: document, Import: imp}, nil
	}

	if err := s.stageTransactions(ctx, imp, pipeRes.Transactions); err != nil {
		imp.Status = domain.ImportStatusFailed
		imp.Error = err.Error()
		_ = s.importRepo.UpdateStatus(ctx, imp)
		return nil, fmt.Errorf("staging transactions: %w", err)
	}

	imp.Status = domain.ImportStatusParsed
	if err := s.importRepo.UpdateStatus(ctx, imp); err != nil {
		return nil, fmt.Errorf("finishing parse: %w", err)
	}

	document.Status = domain.DocumentStatusProcessed
	document.TransactionCount = len(pipeRes.Transactions)
	if err := s.docRepo.UpdateStatus(ctx, document); err != nil {
		return nil, fmt.Errorf("updating document: %w", err)
	}

	log.Printf("importService.Upload: document %s parsed, %d transactions staged (%d flagged)",
		docID, len(pipeRes.Transactions), pipeRes.FlaggedCount)

	return &UploadResult{Document: document, Import: imp, Warnings: pipeRes.Warnings}, nil
}

// stageTransactions is the normalize phase: every extracted transaction is
// upserted into staging, deduplicated on (importID, rowHash).
func (s *importService) stageTransactions(ctx context.Context, imp *domain.Import, txs []domain.StagedTransaction) error {
	for i := range txs {
		payload, err := json.Marshal(&txs[i])
		if err != nil {
			return fmt.Errorf("marshaling staged transaction: %w", err)
		}
		row := &domain.StagingRow{
			ImportID: imp.ID,
			UserID:   imp.UserID,
			Payload:  payload,
			Hash:     txs[i].RowHash(),
		}
		if err := s.stagingRepo.Upsert(ctx, row); err != nil {
			return err
		}
	}
	return nil
}

func (s *importService) GetDocument(ctx context.Context, userID, docID uuid.UUID) (*domain.Document, error) {
	return s.docRepo.GetByID(ctx, userID, docID)
}

func (s *importService) ListDocuments(ctx context.Context, userID uuid.UUID, offset, limit int) ([]domain.Document, int, error) {
	return s.docRepo.ListByUser(ctx, userID, offset, limit)
}

func (s *importService) GetImport(ctx context.Context, userID, importID uuid.UUID) (*domain.Import, error) {
	return s.importRepo.GetByID(ctx, userID, importID)
}

func (s *importService) Commit(ctx context.Context, userID, importID uuid.UUID) (int, error) {
	imp, err := s.importRepo.GetByID(ctx, userID, importID)
	if err != nil {
		return 0, err
	}

	switch imp.Status {
	case domain.ImportStatusCommitted:
		// Idempotent: re-commit is a safe no-op.
		return imp.CommittedCount, nil
	case domain.ImportStatusFailed:
		return 0, domain.ErrImportFailed
	case domain.ImportStatusParsed:
	default:
		return 0, domain.ErrImportNotParsed
	}

	rows, err := s.stagingRepo.ListByImport(ctx, importID)
	if err != nil {
		return 0, err
	}

	txs := make([]domain.Transaction, 0, len(rows))
	for _, row := range rows {
		var staged domain.StagedTransaction
		if err := json.Unmarshal(row.Payload, &staged); err != nil {
			return 0, fmt.Errorf("decoding staging row %s: %w", row.Hash, err)
		}
		txs = append(txs, toTransaction(imp, row.Hash, &staged))
	}

	// A commit-phase write failure surfaces to the caller but leaves the
	// import at parsed, so retrying is safe.
	if err := s.txRepo.CreateBatch(ctx, txs); err != nil {
		return 0, fmt.Errorf("committing transactions: %w", err)
	}

	imp.Status = domain.ImportStatusCommitted
	imp.CommittedCount = len(txs)
	if err := s.importRepo.UpdateStatus(ctx, imp); err != nil {
		return 0, fmt.Errorf("marking import committed: %w", err)
	}

	// Staging rows are no longer needed once the import is committed.
	if err := s.stagingRepo.DeleteByImport(ctx, importID); err != nil {
		log.Printf("importService.Commit: clearing staging for import %s: %v", importID, err)
	}

	log.Printf("importService.Commit: import %s committed %d transactions", importID, len(txs))
	return len(txs), nil
}

// toTransaction builds a ledger row from a staged payload. The id is
// derived deterministically from (importID, rowHash) so replays cannot
// duplicate rows.
func toTransaction(imp *domain.Import, rowHash string, staged *domain.StagedTransaction) domain.Transaction {
	tx := domain.Transaction{
		ID:                uuid.NewSHA1(uuid.NameSpaceOID, []byte(imp.ID.String()+":"+rowHash)),
		UserID:            imp.UserID,
		Description:       staged.Description,
		Amount:            staged.Amount,
		Currency:          staged.Currency,
		Category:          staged.Category,
		NeedsAmountReview: staged.NeedsAmountReview,
		Source:            staged.Source,
		ImportID:          imp.ID,
	}
	if staged.Merchant != nil {
		tx.Merchant = *staged.Merchant
	}
	if staged.Date != nil {
		if t, err := time.Parse("2006-01-02", *staged.Date); err == nil {
			tx.Date = &t
		}
	}
	return tx
}
