package session

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rustconn/rustconn/lib/split"
)

func TestPersistThenRestoreRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "restore.json")
	state := RestoreState{
		Sessions: []RestoreSession{
			{ConnectionID: "conn-1", Protocol: "ssh", PanelID: "panel-1"},
		},
	}

	require.NoError(t, PersistTo(path, state))

	got, err := RestoreFrom(path)
	require.NoError(t, err)
	require.Equal(t, CurrentRestoreVersion, got.Version)
	require.Equal(t, state.Sessions, got.Sessions)
}

// TestPersistThenRestoreRoundTripsActiveTabAndLayout exercises property
// §8.7 (from(to(s)) == s) against the active-tab and per-tab split
// layout fields, not just the session list.
func TestPersistThenRestoreRoundTripsActiveTabAndLayout(t *testing.T) {
	tr := split.NewTree(split.NewColorPool(8))
	second := tr.Split(split.Horizontal)
	_, err := tr.Place(second, "conn-2")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "restore.json")
	state := RestoreState{
		Sessions: []RestoreSession{
			{ConnectionID: "conn-1", Protocol: "ssh", PanelID: "panel-1"},
		},
		ActiveTab: "tab-1",
		Tabs: []RestoreTab{
			{ID: "tab-1", Layout: tr.Snapshot()},
		},
	}

	require.NoError(t, PersistTo(path, state))

	got, err := RestoreFrom(path)
	require.NoError(t, err)
	require.Equal(t, state.ActiveTab, got.ActiveTab)
	require.Equal(t, state.Tabs, got.Tabs)

	restored, err := split.NewTreeFromSnapshot(split.NewColorPool(8), got.Tabs[0].Layout)
	require.NoError(t, err)
	require.Equal(t, 2, restored.LeafCount())
	require.Equal(t, tr.FocusedPanelID(), restored.FocusedPanelID())
	sess, ok := restored.PanelSession(second)
	require.True(t, ok)
	require.Equal(t, "conn-2", sess)
}

func TestRestoreFromMissingFileReturnsEmptyState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist.json")
	got, err := RestoreFrom(path)
	require.NoError(t, err)
	require.Empty(t, got.Sessions)
}

func TestRestoreFromRejectsUnknownFutureVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "restore.json")
	require.NoError(t, PersistTo(path, RestoreState{Version: CurrentRestoreVersion + 1}))

	_, err := RestoreFrom(path)
	require.Error(t, err)
}
