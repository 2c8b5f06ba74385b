package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RawDocument is an uploaded statement prior to any processing.
// It is consumed once by the extraction pipeline and never persisted directly.
type RawDocument struct {
	Data     []byte
	Filename string
	MIMEHint string
}

// PageText is the extracted text of a single page, in document order.
type PageText struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
}

// ExtractionMetadata describes how an extraction was performed.
type ExtractionMetadata struct {
	FileType         FileType `json:"file_type"`
	PageCount        int      `json:"page_count"`
	PrimaryMethod    string   `json:"primary_method"`
	FallbackMethod   string   `json:"fallback_method,omitempty"`
	ProcessingTimeMs int64    `json:"processing_time_ms"`
}

// ExtractionResult is the text output of the tiered extraction pipeline.
// Confidence is always clamped to [0,1]; FullText is the trimmed concatenation
// of Pages and is empty whenever Pages is empty.
type ExtractionResult struct {
	Pages       []PageText         `json:"pages"`
	FullText    string             `json:"full_text"`
	Source      ExtractionSource   `json:"source"`
	Confidence  float64            `json:"confidence"`
	HadFallback bool               `json:"had_fallback"`
	Warnings    []string           `json:"warnings,omitempty"`
	Metadata    ExtractionMetadata `json:"metadata"`
}

// ClampConfidence forces Confidence into [0,1].
func (r *ExtractionResult) ClampConfidence() {
	if r.Confidence < 0 {
		r.Confidence = 0
	}
	if r.Confidence > 1 {
		r.Confidence = 1
	}
}

// RebuildFullText recomputes FullText from Pages.
func (r *ExtractionResult) RebuildFullText() {
	if len(r.Pages) == 0 {
		r.FullText = ""
		return
	}
	parts := make([]string, 0, len(r.Pages))
	for _, p := range r.Pages {
		parts = append(parts, p.Text)
	}
	r.FullText = strings.TrimSpace(strings.Join(parts, "\n"))
}

// CandidateTransaction is a provisionally-extracted transaction produced by any
// extraction tier. Amounts follow the canonical sign convention: charges and
// purchases positive, credits/payments negative. NeedsAmountReview is assigned
// by amount validation and is never left ambiguous after the pipeline runs.
type CandidateTransaction struct {
	Date              *string         `json:"date,omitempty"`
	Merchant          *string         `json:"merchant,omitempty"`
	Description       string          `json:"description"`
	Amount            decimal.Decimal `json:"amount"`
	Currency          string          `json:"currency"`
	RawLineText       *string         `json:"raw_line_text,omitempty"`
	NeedsAmountReview bool            `json:"needs_amount_review"`
}

// RowHash returns the per-row dedup key over date, amount and merchant.
func (t *CandidateTransaction) RowHash() string {
	date := ""
	if t.Date != nil {
		date = *t.Date
	}
	merchant := ""
	if t.Merchant != nil {
		merchant = strings.ToLower(strings.TrimSpace(*t.Merchant))
	}
	sum := sha256.Sum256([]byte(date + "|" + t.Amount.String() + "|" + merchant))
	return hex.EncodeToString(sum[:])
}

// Document represents an uploaded statement file.
type Document struct {
	ID               uuid.UUID      `db:"id" json:"id"`
	UserID           uuid.UUID      `db:"user_id" json:"user_id"`
	ContentHash      string         `db:"content_hash" json:"content_hash"`
	RawHash          string         `db:"raw_hash" json:"-"`
	DocType          FileType       `db:"doc_type" json:"doc_type"`
	Status           DocumentStatus `db:"status" json:"status"`
	TransactionCount int            `db:"transaction_count" json:"transaction_count"`
	S3Bucket         string         `db:"s3_bucket" json:"-"`
	S3Key            string         `db:"s3_key" json:"-"`
	OriginalName     string         `db:"original_name" json:"original_name"`
	CreatedAt        time.Time      `db:"created_at" json:"created_at"`
}

// Import tracks one extraction run over a document.
type Import struct {
	ID             uuid.UUID    `db:"id" json:"id"`
	UserID         uuid.UUID    `db:"user_id" json:"user_id"`
	DocumentID     uuid.UUID    `db:"document_id" json:"document_id"`
	Status         ImportStatus `db:"status" json:"status"`
	Error          string       `db:"error" json:"error,omitempty"`
	CommittedCount int          `db:"committed_count" json:"committed_count"`
	AutoCommit     bool         `db:"auto_commit" json:"auto_commit"`
	CreatedAt      time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time    `db:"updated_at" json:"updated_at"`
}

// StagingRow is a provisionally-extracted transaction awaiting commit.
// Rows are unique on (ImportID, Hash); duplicate upserts are no-ops.
type StagingRow struct {
	ImportID uuid.UUID       `db:"import_id" json:"import_id"`
	UserID   uuid.UUID       `db:"user_id" json:"user_id"`
	Payload  json.RawMessage `db:"payload" json:"payload"`
	Hash     string          `db:"hash" json:"hash"`
}

// StagedTransaction is the payload stored inside a StagingRow.
type StagedTransaction struct {
	CandidateTransaction
	Category string           `json:"category"`
	Source   ExtractionSource `json:"source"`
}

// Transaction is a committed ledger entry.
type Transaction struct {
	ID                uuid.UUID        `db:"id" json:"id"`
	UserID            uuid.UUID        `db:"user_id" json:"user_id"`
	Date              *time.Time       `db:"tx_date" json:"date,omitempty"`
	Merchant          string           `db:"merchant" json:"merchant"`
	Description       string           `db:"description" json:"description"`
	Amount            decimal.Decimal  `db:"amount" json:"amount"`
	Currency          string           `db:"currency" json:"currency"`
	Category          string           `db:"category" json:"category"`
	NeedsAmountReview bool             `db:"needs_amount_review" json:"needs_amount_review"`
	Source            ExtractionSource `db:"source" json:"source"`
	ImportID          uuid.UUID        `db:"import_id" json:"import_id"`
	CreatedAt         time.Time        `db:"created_at" json:"created_at"`
}

// ContentHash fingerprints a document for user-scoped deduplication.
// Normalized extracted text is preferred over raw bytes because it is stable
// across re-uploads that re-encode the same scan; callers fall back to raw
// bytes when no text could be extracted.
func ContentHash(extractedText string, raw []byte) string {
	normalized := normalizeForHash(extractedText)
	if normalized != "" {
		sum := sha256.Sum256([]byte(normalized))
		return hex.EncodeToString(sum[:])
	}
	return RawHash(raw)
}

// RawHash fingerprints the uploaded bytes as received. It is checked before
// extraction runs, so a byte-identical re-upload never pays the OCR or
// model cost.
func RawHash(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

func normalizeForHash(text string) string {
	fields := strings.Fields(strings.ToLower(text))
	return strings.Join(fields, " ")
}
