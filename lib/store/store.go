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

// Package store is the persistence collaborator: it reads and writes the
// file-backed Documents (connections, groups, templates, clusters,
// snippets, non-secret variables) as TOML, and implements
// lib/variables.Store against whatever Document is currently loaded.
// Secret-valued settings and session-restore state are handled by
// lib/credentials and lib/session respectively, each over JSON -- this
// package owns only the TOML side named in the external-interfaces
// section.
package store

import (
	"os"

	"github.com/gravitational/trace"
	"github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"

	"github.com/rustconn/rustconn/api/types"
)

// Config configures a Store.
type Config struct {
	Log *logrus.Entry
}

func (c *Config) checkAndSetDefaults() {
	if c.Log == nil {
		c.Log = logrus.NewEntry(logrus.StandardLogger()).WithField(trace.Component, "store")
	}
}

// Store loads and saves Documents from disk. It is not safe for
// concurrent use on the same *Store value across goroutines that mutate
// the currently-loaded DocumentData without external synchronization --
// callers that need that should serialize their own access, matching
// how a single CLI/daemon process owns one Store.
type Store struct {
	Config
}

// New constructs a Store.
func New(cfg Config) *Store {
	cfg.checkAndSetDefaults()
	return &Store{Config: cfg}
}

// Load reads and parses the Document at path. A missing file is not an
// error: it returns an empty DocumentData whose Document.Path is path,
// ready to be populated and saved, matching restore.go's
// missing-file-is-a-fresh-start convention.
func (s *Store) Load(path string) (DocumentData, error) {
	data, err := readFileLocked(path)
	if os.IsNotExist(err) {
		return DocumentData{Document: types.Document{Path: path}}, nil
	}
	if err != nil {
		return DocumentData{}, trace.Wrap(err, "store: failed to read %q", path)
	}

	var rec documentRecord
	if err := toml.Unmarshal(data, &rec); err != nil {
		return DocumentData{}, trace.Wrap(err, "store: failed to parse %q", path)
	}

	doc, err := fromRecord(rec)
	if err != nil {
		return DocumentData{}, trace.Wrap(err, "store: %q", path)
	}
	doc.Document.Path = path
	return doc, nil
}

// Save serializes d as TOML and atomically writes it to d.Document.Path.
func (s *Store) Save(d DocumentData) error {
	if d.Document.Path == "" {
		return trace.BadParameter("store: document %q has no path to save to", d.Document.Name)
	}

	rec, err := toRecord(d)
	if err != nil {
		return trace.Wrap(err)
	}

	data, err := toml.Marshal(rec)
	if err != nil {
		return trace.Wrap(err, "store: failed to marshal document %q", d.Document.Path)
	}

	return writeFileAtomic(d.Document.Path, data)
}

// Lookup implements lib/variables.Store against d's in-memory variable
// set: global-scope variables match regardless of connectionID/documentID,
// document-scope variables must match documentID, and connection-scope
// variables must match connectionID.
func (d DocumentData) Lookup(name, connectionID, documentID string) (types.Variable, bool) {
	var global, document, connection *types.Variable
	for i, v := range d.Variables {
		if v.Name != name {
			continue
		}
		switch v.Scope {
		case types.ScopeGlobal:
			global = &d.Variables[i]
		case types.ScopeDocument:
			if v.ScopeID == documentID {
				document = &d.Variables[i]
			}
		case types.ScopeConnection:
			if v.ScopeID == connectionID {
				connection = &d.Variables[i]
			}
		}
	}
	switch {
	case connection != nil:
		return *connection, true
	case document != nil:
		return *document, true
	case global != nil:
		return *global, true
	default:
		return types.Variable{}, false
	}
}
