package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"ledgerd/internal/domain"
	"ledgerd/internal/port"
)

// TransactionService exposes the committed ledger.
type TransactionService interface {
	List(ctx context.Context, userID uuid.UUID, offset, limit int) ([]domain.Transaction, int, error)
	// ExportXLSX renders all of a user's committed transactions as an XLSX
	// workbook.
	ExportXLSX(ctx context.Context, userID uuid.UUID) ([]byte, error)
}

type transactionService struct {
	txRepo port.TransactionRepository
}

// NewTransactionService creates a new TransactionService implementation.
func NewTransactionService(txRepo port.TransactionRepository) TransactionService {
	return &transactionService{txRepo: txRepo}
}

func (s *transactionService) List(ctx context.Context, userID uuid.UUID, offset, limit int) ([]domain.Transaction, int, error) {
	return s.txRepo.ListByUser(ctx, userID, offset, limit)
}

const exportPageSize = 500

func (s *transactionService) ExportXLSX(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	const sheet = "Transactions"
	if _, err := f.NewSheet(sheet); err != nil {
		return nil, fmt.Errorf("creating sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("removing default sheet: %w", err)
	}
	index, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(index)

	headers := []string{"Date", "Merchant", "Description", "Amount", "Currency", "Category", "Needs Review", "Source"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	total := 0
	for offset := 0; ; offset += exportPageSize {
		txs, _, err := s.txRepo.ListByUser(ctx, userID, offset, exportPageSize)
		if err != nil {
			return nil, fmt.Errorf("listing transactions: %w", err)
		}
		if len(txs) == 0 {
			break
		}
		for i := range txs {
			writeTransactionRow(f, sheet, row, &txs[i])
			row++
		}
		total += len(txs)
		if len(txs) < exportPageSize {
			break
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 12)
	_ = f.SetColWidth(sheet, "B", "C", 32)
	_ = f.SetColWidth(sheet, "D", "D", 12)
	_ = f.SetColWidth(sheet, "F", "F", 16)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("writing workbook: %w", err)
	}

	log.Printf("transactionService.ExportXLSX: exported %d transactions for user %s in %dms",
		total, userID, time.Since(start).Milliseconds())
	return buf.Bytes(), nil
}

func writeTransactionRow(f *excelize.File, sheet string, row int, tx *domain.Transaction) {
	write := func(col int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheet, cell, v)
	}

	date := ""
	if tx.Date != nil {
		date = tx.Date.Format("2006-01-02")
	}
	amount, _ := tx.Amount.Float64()

	write(1, date)
	write(2, tx.Merchant)
	write(3, tx.Description)
	write(4, amount)
	write(5, tx.Currency)
	write(6, tx.Category)
	write(7, tx.NeedsAmountReview)
	write(8, tx.Source)
}
