package importer

import (
	"context"

	"github.com/poiesic/subseek/storage"
)

const (
	// DefaultBatchSize is the default number of documents read per batch
	DefaultBatchSize = 50
)

// DocumentIterator walks a corpus in fixed-size batches of refs.
type DocumentIterator struct {
	refs      []storage.DocumentRef
	batchSize int
}

// NewDocumentIterator creates an iterator over refs.
// A batchSize <= 0 means DefaultBatchSize.
func NewDocumentIterator(refs []storage.DocumentRef, batchSize int) *DocumentIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &DocumentIterator{
		refs:      refs,
		batchSize: batchSize,
	}
}

// ForEach calls fn for each batch in corpus order.
// Iteration stops at the first error from fn or when ctx is done.
func (it *DocumentIterator) ForEach(ctx context.Context, fn func([]storage.DocumentRef) error) error {
	for i := 0; i < len(it.refs); i += it.batchSize {
		if err := ctx.Err(); err != nil {
			return err
		}

		end := min(i+it.batchSize, len(it.refs))
		if err := fn(it.refs[i:end]); err != nil {
			return err
		}
	}

	return ctx.Err()
}
