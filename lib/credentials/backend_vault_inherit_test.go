package credentials

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rustconn/rustconn/api/types"
	"github.com/rustconn/rustconn/lib/secret"
)

func TestVaultInheritBackendResolvesFromGroup(t *testing.T) {
	groups := map[string]types.Group{
		"g-vault": {
			ID:                   "g-vault",
			PasswordSource:       types.PasswordSourceVault,
			InheritedCredentials: &types.Credentials{Username: "svc", Password: secret.NewString("hunter2")},
		},
	}
	backend := NewVaultInheritBackend(func(id string) (types.Group, bool) {
		g, ok := groups[id]
		return g, ok
	})

	creds, status, err := backend.Lookup(context.Background(), "group:g-vault")
	require.NoError(t, err)
	require.Equal(t, StatusFound, status)
	require.Equal(t, "svc", creds.Username)
	require.Equal(t, "hunter2", creds.Password.Reveal())
}

func TestVaultInheritBackendNotFoundForConnectionScopedKey(t *testing.T) {
	backend := NewVaultInheritBackend(noGroups)
	_, status, err := backend.Lookup(context.Background(), "connection:c1")
	require.NoError(t, err)
	require.Equal(t, StatusNotFound, status)
}

func TestVaultInheritBackendNotFoundWhenGroupHasNoCredentials(t *testing.T) {
	groups := map[string]types.Group{"g-empty": {ID: "g-empty", PasswordSource: types.PasswordSourceVault}}
	backend := NewVaultInheritBackend(func(id string) (types.Group, bool) {
		g, ok := groups[id]
		return g, ok
	})
	_, status, err := backend.Lookup(context.Background(), "group:g-empty")
	require.NoError(t, err)
	require.Equal(t, StatusNotFound, status)
}
