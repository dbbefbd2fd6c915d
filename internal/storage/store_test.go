package storage

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSaveAndOpen(t *testing.T) {
	store, err := NewStore(t.TempDir(), 1024)
	require.NoError(t, err)

	key := NewKey("guincho.pdf")
	require.True(t, strings.HasSuffix(key, ".pdf"))

	written, err := store.Save(key, strings.NewReader("conteúdo"), 9)
	require.NoError(t, err)
	require.Equal(t, int64(len("conteúdo")), written)

	r, err := store.Open(key)
	require.NoError(t, err)
	defer r.Close()

	data, err := io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, "conteúdo", string(data))
}

func TestSaveRejectsOversize(t *testing.T) {
	store, err := NewStore(t.TempDir(), 8)
	require.NoError(t, err)

	// Declared size over the ceiling is rejected before any write.
	_, err = store.Save(NewKey("big.bin"), strings.NewReader("x"), 100)
	require.ErrorIs(t, err, ErrTooLarge)

	// A client that under-declares is caught by the capped copy.
	key := NewKey("liar.bin")
	_, err = store.Save(key, strings.NewReader(strings.Repeat("a", 32)), 4)
	require.ErrorIs(t, err, ErrTooLarge)

	_, err = store.Open(key)
	require.Error(t, err, "partial blob must not remain")
}

func TestSafePathRejectsTraversal(t *testing.T) {
	store, err := NewStore(t.TempDir(), 1024)
	require.NoError(t, err)

	_, err = store.Save("../escape.bin", strings.NewReader("x"), 1)
	require.Error(t, err)

	_, err = store.Open("/etc/passwd")
	require.Error(t, err)
}

func TestDeleteIsIdempotent(t *testing.T) {
	store, err := NewStore(t.TempDir(), 1024)
	require.NoError(t, err)

	key := NewKey("note.txt")
	_, err = store.Save(key, strings.NewReader("x"), 1)
	require.NoError(t, err)

	require.NoError(t, store.Delete(key))
	require.NoError(t, store.Delete(key), "deleting a missing blob is not an error")
}
