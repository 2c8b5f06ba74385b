package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ledgerd/internal/config"
	"ledgerd/internal/extract"
	"ledgerd/internal/handler"
	"ledgerd/internal/ocr"
	"ledgerd/internal/parser"
	"ledgerd/internal/parser/claude"
	"ledgerd/internal/parser/openai"
	"ledgerd/internal/pipeline"
	"ledgerd/internal/port"
	"ledgerd/internal/repository/memory"
	"ledgerd/internal/repository/postgres"
	"ledgerd/internal/router"
	"ledgerd/internal/service"
	s3storage "ledgerd/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	parser.RegisterProvider("openai", func(c *config.ParserProviderConfig) (port.ChatModel, error) {
		return openai.NewClient(c), nil
	})
	parser.RegisterProvider("claude", func(c *config.ParserProviderConfig) (port.ChatModel, error) {
		return claude.NewClient(c), nil
	})

	// Initialize repositories
	var (
		docRepo     port.DocumentRepository
		importRepo  port.ImportRepository
		stagingRepo port.StagingRepository
		txRepo      port.TransactionRepository
		pinger      handler.Pinger
	)
	switch cfg.Storage.Driver {
	case "memory":
		store := memory.NewStore()
		docRepo = memory.NewDocumentRepo(store)
		importRepo = memory.NewImportRepo(store)
		stagingRepo = memory.NewStagingRepo(store)
		txRepo = memory.NewTransactionRepo(store)
		log.Printf("using in-memory storage; data will not survive a restart")
	default:
		db, err := postgres.NewDB(&cfg.DB)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()
		docRepo = postgres.NewDocumentRepo(db)
		importRepo = postgres.NewImportRepo(db)
		stagingRepo = postgres.NewStagingRepo(db)
		txRepo = postgres.NewTransactionRepo(db)
		pinger = db
	}

	// Initialize storage
	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	// OCR stack: hosted engine first when configured, tesseract picks up
	// when it is unreachable.
	var engines []port.OCREngine
	if cfg.OCR.Hosted.Endpoint != "" {
		engines = append(engines, ocr.NewHostedEngine(&cfg.OCR.Hosted))
	}
	engines = append(engines, ocr.NewTesseractEngine(&cfg.OCR.Tesseract))
	ocrEngine := ocr.NewFailoverEngine(engines...)

	// Model tiers are optional; unconfigured tiers are skipped by the
	// pipeline with a warning.
	var visionTier pipeline.VisionTier
	var textTier pipeline.TextTier
	if cfg.Parser.Vision.APIKey != "" {
		model, err := parser.NewModel(&cfg.Parser.Vision)
		if err != nil {
			return fmt.Errorf("failed to initialize vision model: %w", err)
		}
		visionTier = parser.NewVisionParser(model)
	}
	if cfg.Parser.Text.APIKey != "" {
		model, err := parser.NewModel(&cfg.Parser.Text)
		if err != nil {
			return fmt.Errorf("failed to initialize text model: %w", err)
		}
		textTier = parser.NewTextParser(model)
	}

	pipe := pipeline.New(extract.Options{
		MinConfidence:  cfg.Extract.MinConfidence,
		MinTextLength:  cfg.Extract.MinTextLength,
		EnableFallback: cfg.Extract.EnableFallback,
	}, ocrEngine, visionTier, textTier)

	// Initialize services
	importSvc := service.NewImportService(docRepo, importRepo, stagingRepo, txRepo, s3Client, pipe, &cfg.S3)
	txSvc := service.NewTransactionService(txRepo)

	// Initialize handlers
	documentH := handler.NewDocumentHandler(importSvc)
	importH := handler.NewImportHandler(importSvc)
	transactionH := handler.NewTransactionHandler(txSvc)
	healthH := handler.NewHealthHandler(pinger)

	// Auto-commit worker
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	worker := service.NewCommitWorker(importRepo, importSvc, service.CommitWorkerConfig{
		PollInterval: time.Duration(cfg.Queue.PollIntervalSecs) * time.Second,
		Concurrency:  cfg.Queue.Concurrency,
	})
	go worker.Start(ctx)

	// Setup router
	r := router.Setup(cfg.CORS.AllowedOrigins, documentH, importH, transactionH, healthH)

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}
