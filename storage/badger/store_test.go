package badger

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/subseek/core"
	"github.com/poiesic/subseek/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *DocumentStore {
	t.Helper()
	store, err := NewMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testDocument(name string, texts ...string) *core.Document {
	doc := &core.Document{Name: name}
	for _, text := range texts {
		doc.Fragments = append(doc.Fragments, core.Fragment{Timestamp: "00:00:01", Similarity: 0.5, Text: text})
	}
	return doc
}

func TestNewDocumentStore_NilBackend(t *testing.T) {
	_, err := NewDocumentStore(nil)
	assert.Error(t, err)
}

func TestPutAndGetDocument(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	doc := testDocument("ep1.json", "hello", "world")
	changed, err := store.PutDocument(ctx, doc)
	require.NoError(t, err)
	assert.True(t, changed)

	got, err := store.GetDocument(ctx, "ep1.json")
	require.NoError(t, err)
	assert.Equal(t, doc, got)
}

func TestPutDocument_Unchanged(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.PutDocument(ctx, testDocument("ep1.json", "hello"))
	require.NoError(t, err)

	changed, err := store.PutDocument(ctx, testDocument("ep1.json", "hello"))
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = store.PutDocument(ctx, testDocument("ep1.json", "hello again"))
	require.NoError(t, err)
	assert.True(t, changed)

	got, err := store.GetDocument(ctx, "ep1.json")
	require.NoError(t, err)
	assert.Equal(t, "hello again", got.Fragments[0].Text)
}

func TestPutDocument_EmptyName(t *testing.T) {
	store := newTestStore(t)

	_, err := store.PutDocument(context.Background(), &core.Document{})
	assert.ErrorIs(t, err, storage.ErrEmptyDocumentName)

	_, err = store.PutDocument(context.Background(), nil)
	assert.ErrorIs(t, err, storage.ErrEmptyDocumentName)
}

func TestGetDocument_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetDocument(context.Background(), "missing.json")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDeleteDocument(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.PutDocument(ctx, testDocument("ep1.json", "hello"))
	require.NoError(t, err)

	require.NoError(t, store.DeleteDocument(ctx, "ep1.json"))

	_, err = store.GetDocument(ctx, "ep1.json")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	err = store.DeleteDocument(ctx, "ep1.json")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// A deleted document is written again, not reported unchanged
	changed, err := store.PutDocument(ctx, testDocument("ep1.json", "hello"))
	require.NoError(t, err)
	assert.True(t, changed)
}

func TestDocumentNames(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"c.json", "a.json", "b.json"} {
		_, err := store.PutDocument(ctx, testDocument(name, "x"))
		require.NoError(t, err)
	}

	names, err := store.DocumentNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.json", "b.json", "c.json"}, names)
}

func TestDocuments_LoadsEachDocument(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.PutDocument(ctx, testDocument("a.json", "one"))
	require.NoError(t, err)
	_, err = store.PutDocument(ctx, testDocument("b.json", "two", "three"))
	require.NoError(t, err)

	refs, err := store.Documents(ctx)
	require.NoError(t, err)
	require.Len(t, refs, 2)

	assert.Equal(t, "a.json", refs[0].Name())
	doc, err := refs[1].Load(ctx)
	require.NoError(t, err)
	assert.Len(t, doc.Fragments, 2)
}

func TestDocuments_MalformedValueIsIsolated(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.PutDocument(ctx, testDocument("good.json", "fine"))
	require.NoError(t, err)
	err = store.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeDocumentKey("bad.json"), []byte{0xff, 0xff, 0xff}); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	require.NoError(t, err)

	refs, err := store.Documents(ctx)
	require.NoError(t, err)
	require.Len(t, refs, 2)

	_, err = refs[0].Load(ctx)
	assert.ErrorIs(t, err, core.ErrDocumentMalformed)

	doc, err := refs[1].Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "good.json", doc.Name)
}

func TestDocuments_DeletedAfterEnumeration(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.PutDocument(ctx, testDocument("a.json", "x"))
	require.NoError(t, err)
	refs, err := store.Documents(ctx)
	require.NoError(t, err)
	require.Len(t, refs, 1)

	require.NoError(t, store.DeleteDocument(ctx, "a.json"))

	_, err = refs[0].Load(ctx)
	assert.ErrorIs(t, err, core.ErrDocumentUnreadable)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestClosedStore(t *testing.T) {
	store, err := NewMemoryStore()
	require.NoError(t, err)
	require.NoError(t, store.Close())
	ctx := context.Background()

	_, err = store.Documents(ctx)
	assert.ErrorIs(t, err, core.ErrCorpusUnavailable)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)

	_, err = store.PutDocument(ctx, testDocument("a.json"))
	assert.ErrorIs(t, err, storage.ErrStorageClosed)

	_, err = store.GetDocument(ctx, "a.json")
	assert.ErrorIs(t, err, storage.ErrStorageClosed)

	assert.NoError(t, store.Close(), "closing twice is harmless")
}

func TestBorrowedBackendStaysOpen(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	store, err := NewDocumentStore(backend)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	assert.False(t, backend.IsClosed())
}

func TestOpenDocumentStore_Persists(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "db")
	ctx := context.Background()

	store, err := OpenDocumentStore(dir)
	require.NoError(t, err)
	_, err = store.PutDocument(ctx, testDocument("a.json", "persisted"))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := OpenDocumentStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	doc, err := reopened.GetDocument(ctx, "a.json")
	require.NoError(t, err)
	assert.Equal(t, "persisted", doc.Fragments[0].Text)
}
