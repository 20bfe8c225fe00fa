package badger

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenBackend_InMemory(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestOpenBackend_FileSystem(t *testing.T) {
	tmpDir := filepath.Join(t.TempDir(), "store")
	backend, err := OpenBackend(tmpDir, false, WithBackendLogger(slog.Default()))
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	info, err := os.Stat(tmpDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestOpenBackend_NotADirectory(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(tmpFile, []byte("x"), 0644))

	_, err := OpenBackend(tmpFile, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is not a directory")
}

func TestOpenBackend_WithoutCreate(t *testing.T) {
	t.Run("missing directory fails and is not created", func(t *testing.T) {
		tmpDir := filepath.Join(t.TempDir(), "typo-store")

		backend, err := OpenBackend(tmpDir, false, WithCreate(false))
		require.Error(t, err)
		assert.Nil(t, backend)
		assert.ErrorIs(t, err, fs.ErrNotExist)
		assert.NoDirExists(t, tmpDir)
	})

	t.Run("existing database opens", func(t *testing.T) {
		tmpDir := filepath.Join(t.TempDir(), "store")
		created, err := OpenBackend(tmpDir, false)
		require.NoError(t, err)
		require.NoError(t, created.Close())

		backend, err := OpenBackend(tmpDir, false, WithCreate(false))
		require.NoError(t, err)
		defer backend.Close()
		assert.False(t, backend.IsClosed())
	})
}

func TestBackendClose(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)

	assert.False(t, backend.IsClosed())
	require.NoError(t, backend.Close())
	assert.True(t, backend.IsClosed())
}

func TestKeysWithPrefix(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	err = backend.WithTx(func(tx *badger.Txn) error {
		for _, key := range []string{"docrec:b", "docrec:a", "dochash:a", "other"} {
			if err := tx.Set([]byte(key), []byte("v")); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	require.NoError(t, err)

	keys, err := backend.KeysWithPrefix([]byte(documentRecordPrefix))
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("docrec:a"), []byte("docrec:b")}, keys)

	keys, err = backend.KeysWithPrefix([]byte("missing"))
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestDocumentKeys(t *testing.T) {
	assert.Equal(t, []byte("docrec:ep1.json"), makeDocumentKey("ep1.json"))
	assert.Equal(t, []byte("dochash:ep1.json"), makeDocumentHashKey("ep1.json"))
	assert.Equal(t, "ep1.json", documentNameFromKey(makeDocumentKey("ep1.json")))
}
