package credentials

import (
	"context"
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/require"
)

func TestKeyringBackendLookupFound(t *testing.T) {
	entry := `{"username":"erin","password":"s3cret","domain":"CORP"}`
	ring := keyring.NewArrayKeyring([]keyring.Item{
		{Key: "connection:c1", Data: []byte(entry)},
	})
	backend := &KeyringBackend{ring: ring, serviceName: "rustconn-test"}

	creds, status, err := backend.Lookup(context.Background(), "connection:c1")
	require.NoError(t, err)
	require.Equal(t, StatusFound, status)
	require.Equal(t, "erin", creds.Username)
	require.Equal(t, "CORP", creds.Domain)
	require.Equal(t, "s3cret", creds.Password.Reveal())
}

func TestKeyringBackendLookupNotFound(t *testing.T) {
	ring := keyring.NewArrayKeyring(nil)
	backend := &KeyringBackend{ring: ring, serviceName: "rustconn-test"}

	_, status, err := backend.Lookup(context.Background(), "connection:missing")
	require.NoError(t, err)
	require.Equal(t, StatusNotFound, status)
}
