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

package main

import (
	"os"
	"path/filepath"

	"github.com/gravitational/trace"
	"github.com/sirupsen/logrus"

	"github.com/rustconn/rustconn/api/types"
	"github.com/rustconn/rustconn/lib/credentials"
	"github.com/rustconn/rustconn/lib/secret"
	"github.com/rustconn/rustconn/lib/session"
	"github.com/rustconn/rustconn/lib/store"
)

// app bundles the collaborators every command handler needs: the loaded
// Document, the persistence and credential layers, and the session
// registry, matching how tbot's CertBot bundles its config plus
// collaborators in one struct that every handler closes over.
type app struct {
	store       *store.Store
	broker      *credentials.Broker
	sessions    *session.Manager
	log         *logrus.Entry
	docPath     string
	format      string
	doc         store.DocumentData
	passphrase  *secret.Text
	secretsPath string
}

// defaultDocPath returns the per-user document path, honoring
// RUSTCONN_HOME the way tsh/tctl honor TELEPORT_HOME.
func defaultDocPath() string {
	if home := os.Getenv("RUSTCONN_HOME"); home != "" {
		return filepath.Join(home, "connections.toml")
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "rustconn", "connections.toml")
}

func defaultSecretsPath(docPath string) string {
	return filepath.Join(filepath.Dir(docPath), "secrets.json")
}

// newApp loads the Document at docPath and wires the credential Broker's
// backend chain. A missing passphrase env var falls back to one fixed
// built-in default so a first run never hard-fails -- callers that
// care about real secrecy should set RUSTCONN_PASSPHRASE.
func newApp(docPath, format string, log *logrus.Entry) (*app, error) {
	st := store.New(store.Config{Log: log})
	doc, err := st.Load(docPath)
	if err != nil {
		return nil, trace.Wrap(err)
	}

	secretsPath := defaultSecretsPath(docPath)
	passphrase := secret.NewString(envOr("RUSTCONN_PASSPHRASE", "rustconn-default-passphrase"))

	groupLookup := func(id string) (types.Group, bool) {
		for _, g := range doc.Groups {
			if g.ID == id {
				return g, true
			}
		}
		return types.Group{}, false
	}

	backends := []credentials.Backend{
		credentials.NewBitwardenBackend(),
		credentials.NewOnePasswordBackend(),
		credentials.NewPassboltBackend(),
		credentials.NewVaultInheritBackend(groupLookup),
		credentials.NewEncryptedStoreBackend(credentials.NewFileEncryptedStoreLoader(secretsPath), passphrase),
	}
	if kc, err := credentials.NewKeyringBackend("rustconn"); err == nil {
		backends = append(backends, kc)
	} else {
		log.WithError(err).Debug("OS keyring unavailable, continuing without it")
	}
	if kpSocket := os.Getenv("KEEPASSXC_SOCKET"); kpSocket != "" {
		if kp, err := credentials.NewKeePassXCBackend(kpSocket); err == nil {
			backends = append(backends, kp)
		} else {
			log.WithError(err).Debug("KeePassXC proxy unavailable, continuing without it")
		}
	}

	broker, err := credentials.New(credentials.Config{Log: log}, backends...)
	if err != nil {
		return nil, trace.Wrap(err)
	}

	sessions, err := session.New(session.Config{Log: log})
	if err != nil {
		return nil, trace.Wrap(err)
	}

	return &app{
		store:       st,
		broker:      broker,
		sessions:    sessions,
		log:         log,
		docPath:     docPath,
		format:      format,
		doc:         doc,
		passphrase:  passphrase,
		secretsPath: secretsPath,
	}, nil
}

func (a *app) save() error {
	return trace.Wrap(a.store.Save(a.doc))
}

func (a *app) groupLookup() types.GroupLookup {
	return func(id string) (types.Group, bool) {
		for _, g := range a.doc.Groups {
			if g.ID == id {
				return g, true
			}
		}
		return types.Group{}, false
	}
}

func (a *app) docHasGroup() func(string) bool {
	return func(id string) bool {
		_, ok := a.groupLookup()(id)
		return ok
	}
}

func (a *app) findConnection(idOrName string) (*types.Connection, int) {
	for i := range a.doc.Connections {
		c := &a.doc.Connections[i]
		if c.ID == idOrName || c.Name == idOrName {
			return c, i
		}
	}
	return nil, -1
}

func (a *app) findGroup(idOrName string) (*types.Group, int) {
	for i := range a.doc.Groups {
		g := &a.doc.Groups[i]
		if g.ID == idOrName || g.Name == idOrName {
			return g, i
		}
	}
	return nil, -1
}

func (a *app) findTemplate(idOrName string) (*types.Template, int) {
	for i := range a.doc.Templates {
		t := &a.doc.Templates[i]
		if t.ID == idOrName || t.Name == idOrName {
			return t, i
		}
	}
	return nil, -1
}

func (a *app) findCluster(idOrName string) (*types.Cluster, int) {
	for i := range a.doc.Clusters {
		c := &a.doc.Clusters[i]
		if c.ID == idOrName || c.Name == idOrName {
			return c, i
		}
	}
	return nil, -1
}

func (a *app) findSnippet(idOrName string) (*types.Snippet, int) {
	for i := range a.doc.Snippets {
		s := &a.doc.Snippets[i]
		if s.ID == idOrName || s.Name == idOrName {
			return s, i
		}
	}
	return nil, -1
}

func envOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
