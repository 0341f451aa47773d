package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rustconn/rustconn/api/types"
)

func sampleDocument(path string) DocumentData {
	return DocumentData{
		Document: types.Document{ID: "doc-1", Name: "work", Path: path},
		Connections: []types.Connection{
			{
				ID:       "c1",
				Name:     "prod-web",
				Host:     "web.example.com",
				Port:     22,
				Protocol: types.ProtocolSSH,
				Username: "deploy",
				Tags:     []string{"prod", "web"},
				Config: types.NewProtocolConfig(&types.SSHConfig{
					AuthMethod: types.AuthPublicKey,
					KeyPath:    "/home/deploy/.ssh/id_ed25519",
				}),
				Retry:     &types.RetryPolicy{Enabled: true, MaxAttempts: 3, InitialDelayMS: 500, MaxDelayMS: 5000, BackoffMultiplier: 2},
				CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
				UpdatedAt: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
			},
			{
				ID:       "c2",
				Name:     "lab-vnc",
				Host:     "lab.example.com",
				Port:     5900,
				Protocol: types.ProtocolVNC,
				Config:   types.NewProtocolConfig(&types.VNCConfig{Compression: 5, Quality: 7}),
			},
		},
		Groups: []types.Group{
			{ID: "g1", Name: "Production", PasswordSource: types.PasswordSourceVault},
		},
		Templates: []types.Template{
			{ID: "t1", Name: "default-ssh", Protocol: types.ProtocolSSH, Config: types.NewProtocolConfig(&types.SSHConfig{AuthMethod: types.AuthAgent})},
		},
		Clusters: []types.Cluster{
			{ID: "cl1", Name: "web-fleet", ConnectionIDs: []string{"c1"}},
		},
		Snippets: []types.Snippet{
			{ID: "sn1", Name: "disk usage", Command: "df -h"},
		},
		Variables: []types.Variable{
			{Name: "region", Value: "us-east-1", Scope: types.ScopeGlobal},
			{Name: "db_host", Value: "10.0.0.5", Scope: types.ScopeConnection, ScopeID: "c1"},
		},
	}
}

func TestSaveThenLoadRoundTripsConnectionsAndProtocolConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.toml")
	s := New(Config{})

	original := sampleDocument(path)
	require.NoError(t, s.Save(original))

	loaded, err := s.Load(path)
	require.NoError(t, err)

	require.Len(t, loaded.Connections, 2)
	require.Equal(t, "prod-web", loaded.Connections[0].Name)
	require.Equal(t, types.ProtocolSSH, loaded.Connections[0].Protocol)

	ssh, ok := loaded.Connections[0].Config.Variant().(*types.SSHConfig)
	require.True(t, ok)
	require.Equal(t, types.AuthPublicKey, ssh.AuthMethod)
	require.Equal(t, "/home/deploy/.ssh/id_ed25519", ssh.KeyPath)

	vnc, ok := loaded.Connections[1].Config.Variant().(*types.VNCConfig)
	require.True(t, ok)
	require.Equal(t, 5, vnc.Compression)

	require.Len(t, loaded.Groups, 1)
	require.Equal(t, types.PasswordSourceVault, loaded.Groups[0].PasswordSource)

	require.Len(t, loaded.Templates, 1)
	require.Len(t, loaded.Clusters, 1)
	require.Len(t, loaded.Snippets, 1)
	require.Len(t, loaded.Variables, 2)
}

func TestLoadMissingFileReturnsEmptyDocumentNotError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nonexistent.toml")
	s := New(Config{})

	loaded, err := s.Load(path)
	require.NoError(t, err)
	require.Empty(t, loaded.Connections)
	require.Equal(t, path, loaded.Document.Path)
}

func TestSaveRequiresAPath(t *testing.T) {
	s := New(Config{})
	err := s.Save(DocumentData{Document: types.Document{Name: "no-path"}})
	require.Error(t, err)
}

func TestDocumentDataLookupPrefersMostSpecificScope(t *testing.T) {
	d := DocumentData{
		Variables: []types.Variable{
			{Name: "host", Value: "global-value", Scope: types.ScopeGlobal},
			{Name: "host", Value: "conn-value", Scope: types.ScopeConnection, ScopeID: "c1"},
		},
	}

	v, ok := d.Lookup("host", "c1", "doc-1")
	require.True(t, ok)
	require.Equal(t, "conn-value", v.Value)

	v, ok = d.Lookup("host", "c2", "doc-1")
	require.True(t, ok)
	require.Equal(t, "global-value", v.Value)

	_, ok = d.Lookup("missing", "c1", "doc-1")
	require.False(t, ok)
}

func TestSecretVariablesAreExcludedFromTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.toml")
	s := New(Config{})

	d := DocumentData{
		Document: types.Document{Path: path},
		Variables: []types.Variable{
			{Name: "api_key", Value: "super-secret", IsSecret: true, Scope: types.ScopeGlobal},
			{Name: "region", Value: "us-east-1", Scope: types.ScopeGlobal},
		},
	}
	require.NoError(t, s.Save(d))

	loaded, err := s.Load(path)
	require.NoError(t, err)
	require.Len(t, loaded.Variables, 1)
	require.Equal(t, "region", loaded.Variables[0].Name)
}
