package filestore

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func newLocalForTest(t *testing.T) Store {
	t.Helper()
	store, err := New("local", map[string]interface{}{"dir": t.TempDir()})
	require.NoError(t, err)
	return store
}

func TestLocalStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newLocalForTest(t)

	content := []byte("original upload bytes")
	require.NoError(t, store.Save(ctx, "alice/doc1.txt", bytes.NewReader(content), int64(len(content))))

	rc, err := store.Open(ctx, "alice/doc1.txt")
	require.NoError(t, err)
	defer rc.Close()
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.Equal(t, content, got)

	require.NoError(t, store.Delete(ctx, "alice/doc1.txt"))
	_, err = store.Open(ctx, "alice/doc1.txt")
	require.Error(t, err)
}

func TestLocalStore_DeleteMissingIsNoop(t *testing.T) {
	store := newLocalForTest(t)
	require.NoError(t, store.Delete(context.Background(), "alice/never-existed.txt"))
}

func TestLocalStore_RejectsTraversalKeys(t *testing.T) {
	ctx := context.Background()
	store := newLocalForTest(t)
	err := store.Save(ctx, "../escape.txt", bytes.NewReader([]byte("x")), 1)
	require.Error(t, err)
	_, err = store.Open(ctx, "alice/../../etc/passwd")
	require.Error(t, err)
}

func TestNew_UnknownType(t *testing.T) {
	_, err := New("ftp", nil)
	require.Error(t, err)
}
