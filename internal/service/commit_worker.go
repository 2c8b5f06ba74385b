package service

import (
	"context"
	"log"
	"sync"
	"time"

	"ledgerd/internal/port"
)

// CommitWorkerConfig holds settings for the auto-commit worker.
type CommitWorkerConfig struct {
	PollInterval time.Duration
	Concurrency  int
}

// CommitWorker polls for parsed imports flagged auto_commit and commits them.
type CommitWorker struct {
	importRepo port.ImportRepository
	importSvc  ImportService
	cfg        CommitWorkerConfig
	wg         sync.WaitGroup
}

// NewCommitWorker creates a new CommitWorker.
func NewCommitWorker(importRepo port.ImportRepository, importSvc ImportService, cfg CommitWorkerConfig) *CommitWorker {
	return &CommitWorker{
		importRepo: importRepo,
		importSvc:  importSvc,
		cfg:        cfg,
	}
}

// Start runs the polling loop until ctx is canceled. It blocks until all
// in-flight commits have finished.
func (w *CommitWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	sem := make(chan struct{}, w.cfg.Concurrency)

	log.Printf("commitWorker: started (poll=%s, concurrency=%d)", w.cfg.PollInterval, w.cfg.Concurrency)

	for {
		select {
		case <-ctx.Done():
			log.Printf("commitWorker: shutting down, waiting for in-flight commits...")
			w.wg.Wait()
			log.Printf("commitWorker: shutdown complete")
			return
		case <-ticker.C:
			available := w.cfg.Concurrency - len(sem)
			if available <= 0 {
				continue
			}

			imports, err := w.importRepo.ListAutoCommittable(ctx, available)
			if err != nil {
				if ctx.Err() != nil {
					continue
				}
				log.Printf("commitWorker: ListAutoCommittable error: %v", err)
				continue
			}

			for i := range imports {
				imp := imports[i] // copy for goroutine

				sem <- struct{}{} // acquire
				w.wg.Add(1)
				go func() {
					defer w.wg.Done()
					defer func() { <-sem }() // release

					// Use a fresh context independent of the poll context
					// so in-flight commits complete even during shutdown.
					commitCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
					defer cancel()

					n, err := w.importSvc.Commit(commitCtx, imp.UserID, imp.ID)
					if err != nil {
						// Commit is idempotent and the import stays parsed,
						// so a later poll retries it.
						log.Printf("commitWorker: commit of import %s failed: %v", imp.ID, err)
						return
					}
					log.Printf("commitWorker: import %s auto-committed %d transactions", imp.ID, n)
				}()
			}
		}
	}
}
