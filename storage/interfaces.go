package storage

import (
	"context"

	"github.com/poiesic/subseek/core"
)

// Corpus is a read-only collection of documents.
type Corpus interface {
	// Documents lists the documents in the corpus without loading them.
	// Returns an error wrapping core.ErrCorpusUnavailable if the corpus
	// cannot be listed at all.
	Documents(ctx context.Context) ([]DocumentRef, error)

	// Close releases resources held by the corpus.
	Close() error
}

// DocumentRef names one document and loads it on demand.
type DocumentRef interface {
	// Name returns the document name.
	Name() string

	// Load reads and decodes the document.
	// Errors wrap core.ErrDocumentUnreadable or core.ErrDocumentMalformed.
	Load(ctx context.Context) (*core.Document, error)
}

// DocumentStore is a corpus that can be written to.
type DocumentStore interface {
	Corpus

	// PutDocument stores doc, replacing any document with the same name.
	// Returns false when the stored content was already identical.
	PutDocument(ctx context.Context, doc *core.Document) (bool, error)

	// DeleteDocument removes a document by name.
	// Returns ErrNotFound if the document doesn't exist.
	DeleteDocument(ctx context.Context, name string) error

	// GetDocument retrieves a single document by name.
	// Returns ErrNotFound if the document doesn't exist.
	GetDocument(ctx context.Context, name string) (*core.Document, error)

	// DocumentNames returns the names of all stored documents in key order.
	DocumentNames(ctx context.Context) ([]string, error)
}
