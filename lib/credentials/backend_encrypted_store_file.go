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

package credentials

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
	"github.com/gravitational/trace"
)

// FileEncryptedStoreLoader is the default EncryptedStoreLoader: every
// record lives in one JSON file, keyed by the same key Backend.Lookup and
// Store use, guarded by an flock and written atomically, matching the
// temp-file+rename idiom lib/session/restore.go uses for the other
// locally-persisted JSON state.
type FileEncryptedStoreLoader struct {
	mu   sync.Mutex
	path string
}

// NewFileEncryptedStoreLoader builds a loader backed by the file at path.
func NewFileEncryptedStoreLoader(path string) *FileEncryptedStoreLoader {
	return &FileEncryptedStoreLoader{path: path}
}

func (f *FileEncryptedStoreLoader) readAll() (map[string]encryptedRecord, error) {
	if _, err := os.Stat(f.path); os.IsNotExist(err) {
		// Nothing has ever been saved here -- skip locking so a
		// not-yet-created parent directory isn't treated as an error.
		return map[string]encryptedRecord{}, nil
	}

	lock := flock.New(f.path + ".lock")
	if err := lock.Lock(); err != nil {
		return nil, trace.Wrap(err, "encrypted store: failed to acquire lock on %q", f.path)
	}
	defer lock.Unlock()

	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return map[string]encryptedRecord{}, nil
	}
	if err != nil {
		return nil, trace.Wrap(err, "encrypted store: failed to read %q", f.path)
	}

	records := map[string]encryptedRecord{}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, trace.Wrap(err, "encrypted store: failed to parse %q", f.path)
	}
	return records, nil
}

func (f *FileEncryptedStoreLoader) writeAll(records map[string]encryptedRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return trace.Wrap(err, "encrypted store: failed to marshal records")
	}

	lock := flock.New(f.path + ".lock")
	if err := lock.Lock(); err != nil {
		return trace.Wrap(err, "encrypted store: failed to acquire lock on %q", f.path)
	}
	defer lock.Unlock()

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return trace.Wrap(err, "encrypted store: failed to create directory %q", dir)
	}

	tmp, err := os.CreateTemp(dir, ".encrypted-store-*.tmp")
	if err != nil {
		return trace.Wrap(err, "encrypted store: failed to create temp file")
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return trace.Wrap(err, "encrypted store: failed to write temp file")
	}
	if err := tmp.Close(); err != nil {
		return trace.Wrap(err, "encrypted store: failed to close temp file")
	}

	return trace.Wrap(os.Rename(tmpPath, f.path))
}

// LoadRecord implements EncryptedStoreLoader.
func (f *FileEncryptedStoreLoader) LoadRecord(key string) (encryptedRecord, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	records, err := f.readAll()
	if err != nil {
		return encryptedRecord{}, false, err
	}
	rec, ok := records[key]
	return rec, ok, nil
}

// SaveRecord implements EncryptedStoreLoader.
func (f *FileEncryptedStoreLoader) SaveRecord(key string, rec encryptedRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	records, err := f.readAll()
	if err != nil {
		return err
	}
	records[key] = rec
	return f.writeAll(records)
}
