package credentials

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBitwardenParseReplyExtractsLoginPassword(t *testing.T) {
	backend := NewBitwardenBackend().(*cliVault)
	creds, found, err := backend.parseReply([]byte(`{"login":{"username":"alice","password":"s3cret"}}`))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "alice", creds.Username)
	require.Equal(t, "s3cret", creds.Password.Reveal())
}

func TestBitwardenParseReplyEmptyStdoutIsNotFound(t *testing.T) {
	backend := NewBitwardenBackend().(*cliVault)
	_, found, err := backend.parseReply([]byte("   "))
	require.NoError(t, err)
	require.False(t, found)
}

func TestOnePasswordParseReplyExtractsFields(t *testing.T) {
	backend := NewOnePasswordBackend().(*cliVault)
	reply := `{"fields":[{"id":"username","label":"username","value":"carol"},{"id":"password","label":"password","value":"hunter2"}]}`
	creds, found, err := backend.parseReply([]byte(reply))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "carol", creds.Username)
	require.Equal(t, "hunter2", creds.Password.Reveal())
}

func TestOnePasswordParseReplyMissingPasswordFieldIsNotFound(t *testing.T) {
	backend := NewOnePasswordBackend().(*cliVault)
	_, found, err := backend.parseReply([]byte(`{"fields":[{"id":"username","label":"username","value":"carol"}]}`))
	require.NoError(t, err)
	require.False(t, found)
}

func TestPassboltParseReplyExtractsCredentials(t *testing.T) {
	backend := NewPassboltBackend().(*cliVault)
	creds, found, err := backend.parseReply([]byte(`{"username":"dave","password":"p@ss"}`))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "dave", creds.Username)
	require.Equal(t, "p@ss", creds.Password.Reveal())
}

func TestIsNotFoundReplyRecognizesCommonPhrasing(t *testing.T) {
	require.True(t, isNotFoundReply("Error: item not found."))
	require.True(t, isNotFoundReply("No item found matching the search term."))
	require.False(t, isNotFoundReply("vault is locked"))
}
