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

package store

import (
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/gravitational/trace"
)

// writeFileAtomic flocks path+".lock", writes data to a temp file in the
// same directory, then renames it into place. Generalized from
// lib/session/restore.go's PersistTo so both the TOML document store and
// the encrypted JSON settings file share one atomic-write idiom.
func writeFileAtomic(path string, data []byte) error {
	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return trace.Wrap(err, "store: failed to acquire lock on %q", path)
	}
	defer lock.Unlock()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return trace.Wrap(err, "store: failed to create directory %q", dir)
	}

	tmp, err := os.CreateTemp(dir, ".store-*.tmp")
	if err != nil {
		return trace.Wrap(err, "store: failed to create temp file")
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once the rename below succeeds

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return trace.Wrap(err, "store: failed to write temp file")
	}
	if err := tmp.Close(); err != nil {
		return trace.Wrap(err, "store: failed to close temp file")
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return trace.Wrap(err, "store: failed to rename into place")
	}
	return nil
}

// readFileLocked flocks path+".lock" for the duration of the read, so a
// reader never observes a writer's temp file mid-rename.
func readFileLocked(path string) ([]byte, error) {
	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return nil, trace.Wrap(err, "store: failed to acquire lock on %q", path)
	}
	defer lock.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err // callers check os.IsNotExist themselves
	}
	return data, nil
}
