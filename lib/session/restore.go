/*
Copyright 2026 RustConn Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package session

import (
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/gravitational/trace"
	jsoniter "github.com/json-iterator/go"

	"github.com/rustconn/rustconn/lib/split"
)

var restoreJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// CurrentRestoreVersion is the version this build writes and the
// highest version it knows how to read.
const CurrentRestoreVersion = 1

// RestoreSession is one session's worth of restorable state: enough to
// re-offer "reconnect" to the user, not enough to silently reconnect
// without their say-so.
type RestoreSession struct {
	ConnectionID string `json:"connection_id"`
	Protocol     string `json:"protocol"`
	PanelID      string `json:"panel_id"`
}

// RestoreTab is one tab's worth of restorable layout: its stable id and
// the panel tree shape captured by split.Tree.Snapshot.
type RestoreTab struct {
	ID     string             `json:"id"`
	Layout split.TreeSnapshot `json:"layout"`
}

// RestoreState is the versioned snapshot of what was open at last
// shutdown: the sessions worth re-offering a reconnect for, the tab
// that was focused, and every tab's split layout. Window geometry is a
// UI concern the management binary does not track.
type RestoreState struct {
	Version   int              `json:"version"`
	Sessions  []RestoreSession `json:"sessions"`
	ActiveTab string           `json:"active_tab,omitempty"`
	Tabs      []RestoreTab     `json:"tabs,omitempty"`
}

// PersistTo atomically writes state to path: marshal to a temp file in
// the same directory, flock a sidecar "<path>.lock" file for the
// duration of the swap, then rename over it. The rename is atomic on POSIX
// filesystems; the flock additionally serializes concurrent writers
// from two process instances racing to persist at once.
func PersistTo(path string, state RestoreState) error {
	if state.Version == 0 {
		state.Version = CurrentRestoreVersion
	}

	data, err := restoreJSON.MarshalIndent(state, "", "  ")
	if err != nil {
		return trace.Wrap(err, "session restore: failed to marshal state")
	}

	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return trace.Wrap(err, "session restore: failed to acquire lock on %q", path)
	}
	defer lock.Unlock()

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".restore-*.tmp")
	if err != nil {
		return trace.Wrap(err, "session restore: failed to create temp file")
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once the rename below succeeds

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return trace.Wrap(err, "session restore: failed to write temp file")
	}
	if err := tmp.Close(); err != nil {
		return trace.Wrap(err, "session restore: failed to close temp file")
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return trace.Wrap(err, "session restore: failed to rename into place")
	}
	return nil
}

// RestoreFrom reads and validates path. Unknown future versions (those
// greater than CurrentRestoreVersion) are rejected rather than
// best-effort parsed, per the spec's forward-compatibility rule.
func RestoreFrom(path string) (RestoreState, error) {
	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return RestoreState{}, trace.Wrap(err, "session restore: failed to acquire lock on %q", path)
	}
	defer lock.Unlock()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return RestoreState{Version: CurrentRestoreVersion}, nil
	}
	if err != nil {
		return RestoreState{}, trace.Wrap(err, "session restore: failed to read %q", path)
	}

	var state RestoreState
	if err := restoreJSON.Unmarshal(data, &state); err != nil {
		return RestoreState{}, trace.Wrap(err, "session restore: failed to parse %q", path)
	}
	if state.Version > CurrentRestoreVersion {
		return RestoreState{}, trace.BadParameter(
			"session restore: %q has version %d, newer than the %d this build supports",
			path, state.Version, CurrentRestoreVersion)
	}
	return state, nil
}
