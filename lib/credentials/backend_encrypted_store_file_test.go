package credentials

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rustconn/rustconn/api/types"
	"github.com/rustconn/rustconn/lib/secret"
)

func TestFileEncryptedStoreLoaderRoundTripsThroughBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secrets.json")
	loader := NewFileEncryptedStoreLoader(path)
	backend := NewEncryptedStoreBackend(loader, secret.NewString("passphrase"))

	require.NoError(t, backend.Store("connection:c1", types.Credentials{
		Username: "alice", Password: secret.NewString("hunter2"),
	}))

	reopened := NewEncryptedStoreBackend(NewFileEncryptedStoreLoader(path), secret.NewString("passphrase"))
	creds, status, err := reopened.Lookup(context.Background(), "connection:c1")
	require.NoError(t, err)
	require.Equal(t, StatusFound, status)
	require.Equal(t, "alice", creds.Username)
	require.Equal(t, "hunter2", creds.Password.Reveal())
}

func TestFileEncryptedStoreLoaderMissingFileIsNotFound(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope", "secrets.json")
	loader := NewFileEncryptedStoreLoader(path)
	_, ok, err := loader.LoadRecord("anything")
	require.NoError(t, err)
	require.False(t, ok)
}
