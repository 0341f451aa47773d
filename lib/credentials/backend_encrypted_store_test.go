package credentials

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rustconn/rustconn/api/types"
	"github.com/rustconn/rustconn/lib/secret"
)

// memLoader is an in-memory EncryptedStoreLoader for tests.
type memLoader struct {
	records map[string]encryptedRecord
}

func newMemLoader() *memLoader { return &memLoader{records: make(map[string]encryptedRecord)} }

func (m *memLoader) LoadRecord(key string) (encryptedRecord, bool, error) {
	rec, ok := m.records[key]
	return rec, ok, nil
}

func (m *memLoader) SaveRecord(key string, rec encryptedRecord) error {
	m.records[key] = rec
	return nil
}

func TestEncryptedStoreRoundTrip(t *testing.T) {
	loader := newMemLoader()
	backend := NewEncryptedStoreBackend(loader, secret.NewString("correct-horse-battery-staple"))

	err := backend.Store("connection:c1", types.Credentials{Username: "bob", Password: secret.NewString("p@ss")})
	require.NoError(t, err)

	creds, status, err := backend.Lookup(context.Background(), "connection:c1")
	require.NoError(t, err)
	require.Equal(t, StatusFound, status)
	require.Equal(t, "bob", creds.Username)
	require.Equal(t, "p@ss", creds.Password.Reveal())
}

func TestEncryptedStoreWrongPassphraseIsUnavailableNotNotFound(t *testing.T) {
	loader := newMemLoader()
	writer := NewEncryptedStoreBackend(loader, secret.NewString("right-passphrase"))
	require.NoError(t, writer.Store("connection:c1", types.Credentials{Username: "bob", Password: secret.NewString("p@ss")}))

	reader := NewEncryptedStoreBackend(loader, secret.NewString("wrong-passphrase"))
	_, status, err := reader.Lookup(context.Background(), "connection:c1")
	require.Error(t, err)
	require.Equal(t, StatusUnavailable, status)
}

func TestEncryptedStoreMissingKeyIsNotFound(t *testing.T) {
	backend := NewEncryptedStoreBackend(newMemLoader(), secret.NewString("pw"))
	_, status, err := backend.Lookup(context.Background(), "connection:none")
	require.NoError(t, err)
	require.Equal(t, StatusNotFound, status)
}
