package badger

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/subseek/core"
	"github.com/poiesic/subseek/storage"
)

// DocumentStore implements storage.DocumentStore for BadgerDB.
//
// Each document is stored whole under docrec:<name>, mus-encoded, with the
// content ID of the encoding under dochash:<name>. Searches still load and
// score every document; nothing here is an index.
type DocumentStore struct {
	backend     *Backend
	ownsBackend bool
	logger      *slog.Logger
}

var _ storage.DocumentStore = (*DocumentStore)(nil)

// NewDocumentStore creates a store on an open backend.
// The caller keeps ownership of the backend and must close it.
func NewDocumentStore(backend *Backend) (*DocumentStore, error) {
	if backend == nil {
		return nil, errors.New("backend is required")
	}
	return &DocumentStore{
		backend: backend,
		logger:  backend.logger,
	}, nil
}

// OpenDocumentStore opens a store at path, creating it if needed.
// Closing the store closes the database.
func OpenDocumentStore(path string, opts ...BackendOption) (*DocumentStore, error) {
	backend, err := OpenBackend(path, false, opts...)
	if err != nil {
		return nil, err
	}
	store, err := NewDocumentStore(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}
	store.ownsBackend = true
	return store, nil
}

// Close closes the backend if the store opened it.
func (s *DocumentStore) Close() error {
	if !s.ownsBackend || s.backend.IsClosed() {
		return nil
	}
	return s.backend.Close()
}

// PutDocument stores doc, replacing any document with the same name.
// Returns false without writing when the stored encoding is identical.
func (s *DocumentStore) PutDocument(ctx context.Context, doc *core.Document) (bool, error) {
	if doc == nil || doc.Name == "" {
		return false, storage.ErrEmptyDocumentName
	}
	if s.backend.IsClosed() {
		return false, storage.ErrStorageClosed
	}

	value := storage.MarshalDocument(doc)
	hash := storage.MarshalID(core.IDFromContent(value))
	changed := true

	err := s.backend.WithTx(func(tx *badger.Txn) error {
		hashKey := makeDocumentHashKey(doc.Name)

		// Skip the write if the content ID matches
		item, err := tx.Get(hashKey)
		switch {
		case err == nil:
			same := false
			if err := item.Value(func(val []byte) error {
				same = bytes.Equal(val, hash)
				return nil
			}); err != nil {
				return err
			}
			if same {
				changed = false
				return nil
			}
		case !errors.Is(err, badger.ErrKeyNotFound):
			return err
		}

		if err := tx.Set(makeDocumentKey(doc.Name), value); err != nil {
			return err
		}
		if err := tx.Set(hashKey, hash); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return false, err
	}

	s.logger.Debug("stored document", "document", doc.Name, "changed", changed, "fragments", len(doc.Fragments))
	return changed, nil
}

// DeleteDocument removes a document by name.
func (s *DocumentStore) DeleteDocument(ctx context.Context, name string) error {
	if s.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	return s.backend.WithTx(func(tx *badger.Txn) error {
		key := makeDocumentKey(name)
		if _, err := tx.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}
		if err := tx.Delete(key); err != nil {
			return err
		}
		if err := tx.Delete(makeDocumentHashKey(name)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetDocument retrieves a single document by name.
// A stored value that cannot be decoded returns an error wrapping
// core.ErrDocumentMalformed.
func (s *DocumentStore) GetDocument(ctx context.Context, name string) (*core.Document, error) {
	if s.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	var doc *core.Document
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		doc, err = readDocument(tx, makeDocumentKey(name))
		if err != nil {
			return err
		}
		if doc == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// DocumentNames returns the names of all stored documents in key order.
func (s *DocumentStore) DocumentNames(ctx context.Context) ([]string, error) {
	if s.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	keys, err := s.backend.KeysWithPrefix([]byte(documentRecordPrefix))
	if err != nil {
		return nil, err
	}
	names := make([]string, len(keys))
	for i, key := range keys {
		names[i] = documentNameFromKey(key)
	}
	return names, nil
}

// Documents lists every stored document without decoding it.
func (s *DocumentStore) Documents(ctx context.Context) ([]storage.DocumentRef, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	names, err := s.DocumentNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrCorpusUnavailable, err)
	}

	refs := make([]storage.DocumentRef, len(names))
	for i, name := range names {
		refs[i] = &storeRef{store: s, name: name}
	}
	return refs, nil
}

type storeRef struct {
	store *DocumentStore
	name  string
}

func (r *storeRef) Name() string {
	return r.name
}

func (r *storeRef) Load(ctx context.Context) (*core.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", core.ErrDocumentUnreadable, r.name, err)
	}
	doc, err := r.store.GetDocument(ctx, r.name)
	switch {
	case err == nil:
		return doc, nil
	case errors.Is(err, core.ErrDocumentMalformed):
		return nil, err
	default:
		return nil, fmt.Errorf("%w: %s: %w", core.ErrDocumentUnreadable, r.name, err)
	}
}

// readDocument reads and decodes the document at key.
// Returns nil, nil if the key does not exist.
func readDocument(tx *badger.Txn, key []byte) (*core.Document, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var doc *core.Document
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		doc, unmarshalErr = storage.UnmarshalDocument(val)
		if unmarshalErr != nil {
			return fmt.Errorf("%w: %s: %w", core.ErrDocumentMalformed, documentNameFromKey(key), unmarshalErr)
		}
		return nil
	})
	return doc, err
}
