// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/poiesic/subseek/storage"
)

// Config holds configuration for an import.
type Config struct {
	// BatchSize is the number of documents loaded per batch
	BatchSize int

	// ReportInterval is how often to report progress (number of documents)
	ReportInterval int

	// MaxRetries is the maximum number of attempts for each write
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration

	// Prune removes stored documents that are no longer in the source
	Prune bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      DefaultBatchSize,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     100 * time.Millisecond,
	}
}

// Stats counts what an import did.
type Stats struct {
	Imported  int // Written because new or changed
	Unchanged int // Already stored with identical content
	Skipped   int // Unreadable or malformed in the source
	Removed   int // Pruned from the store
}

func (s *Stats) add(other Stats) {
	s.Imported += other.Imported
	s.Unchanged += other.Unchanged
	s.Skipped += other.Skipped
	s.Removed += other.Removed
}

// Importer copies every document of a source corpus into a store.
type Importer struct {
	source   storage.Corpus
	store    storage.DocumentStore
	config   *Config
	progress io.Writer
	writer   *BatchWriter
	logger   *slog.Logger
}

// Option configures an Importer.
type Option func(*Importer)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(imp *Importer) {
		if logger != nil {
			imp.logger = logger
		}
	}
}

// NewImporter creates a new importer.
// progress: where to write progress output (typically os.Stderr); nil disables it.
func NewImporter(source storage.Corpus, store storage.DocumentStore, config *Config, progress io.Writer, opts ...Option) (*Importer, error) {
	if source == nil {
		return nil, ErrSourceRequired
	}
	if store == nil {
		return nil, ErrStoreRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if config.MaxRetries <= 0 {
		return nil, ErrInvalidMaxAttempts
	}
	if progress == nil {
		progress = io.Discard
	}

	imp := &Importer{
		source:   source,
		store:    store,
		config:   config,
		progress: progress,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(imp)
	}
	imp.writer = NewBatchWriter(store, config.MaxRetries, config.RetryDelay, imp.logger)

	return imp, nil
}

// Run executes the import and returns what it did.
// On error the returned Stats cover the batches completed so far.
func (imp *Importer) Run(ctx context.Context) (Stats, error) {
	var stats Stats

	refs, err := imp.source.Documents(ctx)
	if err != nil {
		return stats, fmt.Errorf("failed to list source documents: %w", err)
	}

	total := len(refs)
	if total == 0 {
		fmt.Fprintf(imp.progress, "No documents found in source (0 documents)\n")
	} else {
		fmt.Fprintf(imp.progress, "Starting import of %d documents (batch size: %d)\n",
			total, imp.config.BatchSize)
	}

	tracker := NewProgressTracker(imp.progress, total, imp.config.ReportInterval)
	tracker.Start()

	iterator := NewDocumentIterator(refs, imp.config.BatchSize)
	err = iterator.ForEach(ctx, func(batch []storage.DocumentRef) error {
		batchStats, err := imp.writer.Process(ctx, batch)
		stats.add(batchStats)
		if err != nil {
			return fmt.Errorf("failed to import batch: %w", err)
		}
		tracker.Increment(len(batch))
		return nil
	})
	if err != nil {
		return stats, err
	}

	if imp.config.Prune {
		removed, err := imp.prune(ctx, refs)
		stats.Removed = removed
		if err != nil {
			return stats, err
		}
	}

	if total > 0 {
		tracker.Finish()
		elapsed := tracker.Elapsed()
		fmt.Fprintf(imp.progress, "Import complete. %d imported, %d unchanged, %d skipped, %d removed in %v\n",
			stats.Imported, stats.Unchanged, stats.Skipped, stats.Removed, elapsed.Round(time.Millisecond))
	}

	imp.logger.Info("import finished",
		"imported", stats.Imported,
		"unchanged", stats.Unchanged,
		"skipped", stats.Skipped,
		"removed", stats.Removed)
	return stats, nil
}

// prune deletes stored documents that the source no longer lists.
func (imp *Importer) prune(ctx context.Context, refs []storage.DocumentRef) (int, error) {
	present := make(map[string]struct{}, len(refs))
	for _, ref := range refs {
		present[ref.Name()] = struct{}{}
	}

	names, err := imp.store.DocumentNames(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list stored documents: %w", err)
	}

	removed := 0
	for _, name := range names {
		if _, ok := present[name]; ok {
			continue
		}
		if err := imp.store.DeleteDocument(ctx, name); err != nil {
			return removed, fmt.Errorf("failed to remove %s: %w", name, err)
		}
		removed++
	}
	return removed, nil
}
