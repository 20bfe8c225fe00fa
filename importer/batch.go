package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/subseek/core"
	"github.com/poiesic/subseek/storage"
)

// BatchWriter loads a batch of source documents and writes them to a store.
type BatchWriter struct {
	store          storage.DocumentStore
	maxRetries     int
	retryBaseDelay time.Duration
	logger         *slog.Logger
}

// NewBatchWriter creates a writer for store.
func NewBatchWriter(store storage.DocumentStore, maxRetries int, retryBaseDelay time.Duration, logger *slog.Logger) *BatchWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &BatchWriter{
		store:          store,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
		logger:         logger,
	}
}

// Process imports every document of refs and returns the batch counts.
// Source documents that are unreadable or malformed are skipped. A write that
// still fails after all retries aborts the batch.
func (bw *BatchWriter) Process(ctx context.Context, refs []storage.DocumentRef) (Stats, error) {
	var stats Stats
	for _, ref := range refs {
		doc, err := ref.Load(ctx)
		if err != nil {
			if errors.Is(err, core.ErrDocumentUnreadable) || errors.Is(err, core.ErrDocumentMalformed) {
				bw.logger.Warn("skipping source document", "document", ref.Name(), "err", err)
				stats.Skipped++
				continue
			}
			return stats, err
		}

		var changed bool
		err = RetryWithBackoff(ctx, func() error {
			var err error
			changed, err = bw.store.PutDocument(ctx, doc)
			return err
		}, bw.maxRetries, bw.retryBaseDelay)
		if err != nil {
			return stats, fmt.Errorf("failed to store %s after %d attempts: %w", ref.Name(), bw.maxRetries, err)
		}

		if changed {
			stats.Imported++
		} else {
			stats.Unchanged++
		}
	}
	return stats, nil
}
