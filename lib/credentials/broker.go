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

// Package credentials implements the Credential Broker: asynchronous,
// cancellation-aware resolution of a Connection's credentials across a
// layered chain of backends (KeePassXC, OS keyring, CLI-driven password
// managers, the in-process encrypted store, and group/vault inheritance).
package credentials

import (
	"context"
	"time"

	"github.com/gravitational/trace"
	"github.com/gravitational/ttlmap"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"github.com/rustconn/rustconn/api/types"
)

// BackendName names one configured backend in resolution order.
type BackendName string

const (
	BackendKeePassPrimary   BackendName = "keepass_primary"
	BackendKeyringFallback  BackendName = "keyring_fallback"
	BackendBitwarden        BackendName = "bitwarden"
	BackendOnePassword      BackendName = "one_password"
	BackendPassbolt         BackendName = "passbolt"
	BackendEncryptedStore   BackendName = "encrypted_store"
	BackendVaultGroupInherit BackendName = "vault_group_inherit"
)

// Policy enumerates the ordered backends the Broker should consult.
type Policy struct {
	Backends []BackendName
	// CacheTTL bounds how long a successful lookup is cached; zero
	// disables caching.
	CacheTTL time.Duration
}

// Status is a single backend's outcome for one lookup.
type Status int

const (
	StatusFound Status = iota
	StatusNotFound
	StatusUnavailable
	StatusCancelled
)

// Backend resolves a lookup key to credentials through one concrete
// store. Lookup must honor ctx cancellation: in-flight subprocess
// children are killed, in-flight socket/D-Bus calls are dropped.
type Backend interface {
	Name() BackendName
	Lookup(ctx context.Context, key string) (types.Credentials, Status, error)
}

// ResultKind tags a CredentialResult's outcome.
type ResultKind int

const (
	Resolved ResultKind = iota
	Cancelled
	Missing
	BackendErrorResult
)

// CredentialResult is the Broker's typed outcome for one resolve call.
type CredentialResult struct {
	Kind        ResultKind
	Credentials types.Credentials
	Reason      string
	Backend     BackendName
}

// Config configures a Broker.
type Config struct {
	Clock clockwork.Clock
	Log   *logrus.Entry
	// CacheCapacity bounds the number of distinct lookup keys cached at
	// once.
	CacheCapacity int
}

// CheckAndSetDefaults validates the configuration and fills in defaults.
func (c *Config) CheckAndSetDefaults() error {
	if c.Clock == nil {
		c.Clock = clockwork.NewRealClock()
	}
	if c.Log == nil {
		c.Log = logrus.NewEntry(logrus.StandardLogger()).WithField(trace.Component, "credentials")
	}
	if c.CacheCapacity == 0 {
		c.CacheCapacity = 256
	}
	return nil
}

// Broker resolves Connection credentials without ever blocking the UI
// thread -- every exported method is safe to call from a worker-domain
// goroutine and honors ctx cancellation throughout.
type Broker struct {
	Config
	backends map[BackendName]Backend
	cache    *ttlmap.TTLMap
}

// New constructs a Broker with the given backend registrations keyed by
// name; unknown policy backend names are simply skipped at resolve time
// (treated as NotFound), so a deployment without, say, Passbolt installed
// need not register it.
func New(cfg Config, backends ...Backend) (*Broker, error) {
	if err := cfg.CheckAndSetDefaults(); err != nil {
		return nil, trace.Wrap(err)
	}
	cache, err := ttlmap.New(cfg.CacheCapacity, ttlmap.Clock(cfg.Clock))
	if err != nil {
		return nil, trace.Wrap(err)
	}
	reg := make(map[BackendName]Backend, len(backends))
	for _, b := range backends {
		reg[b.Name()] = b
	}
	return &Broker{Config: cfg, backends: reg, cache: cache}, nil
}

// GroupLookup is the minimal view into a document's groups the broker
// needs to compute the lookup key.
type GroupLookup = types.GroupLookup

// ComputeLookupKey implements spec 4.B step 1: walk inherited-password
// ancestors until a Vault group is found; fall back to the connection's
// own identifier.
func ComputeLookupKey(conn *types.Connection, lookup GroupLookup) string {
	if conn.GroupID != "" {
		if g, ok := types.VaultAncestor(conn.GroupID, lookup); ok {
			return "group:" + g.ID
		}
	}
	return "connection:" + conn.ID
}

// Resolve runs the resolution algorithm in spec 4.B against conn, trying
// each backend named in policy.Backends in order, short-circuiting on the
// first Found result (or on Cancelled), and falling back to Missing /
// BackendErrorResult semantics otherwise.
func (b *Broker) Resolve(ctx context.Context, conn *types.Connection, lookup GroupLookup, policy Policy) CredentialResult {
	key := ComputeLookupKey(conn, lookup)

	if cached, ok := b.cacheGet(key); ok {
		return b.mergeOverrides(conn, cached)
	}

	var firstUnavailable BackendName
	sawUnavailable := false

	for _, name := range policy.Backends {
		select {
		case <-ctx.Done():
			return CredentialResult{Kind: Cancelled, Reason: "cancelled before backend " + string(name)}
		default:
		}

		backend, ok := b.backends[name]
		if !ok {
			continue
		}

		creds, status, err := backend.Lookup(ctx, key)
		switch status {
		case StatusFound:
			result := CredentialResult{Kind: Resolved, Credentials: creds, Backend: name}
			if policy.CacheTTL > 0 {
				b.cacheSet(key, result, policy.CacheTTL)
			}
			return b.mergeOverrides(conn, result)
		case StatusNotFound:
			continue
		case StatusUnavailable:
			if !sawUnavailable {
				firstUnavailable = name
				sawUnavailable = true
			}
			b.Log.WithError(err).WithField("backend", name).Warn("credential backend unavailable")
			continue
		case StatusCancelled:
			return CredentialResult{Kind: Cancelled, Backend: name}
		}
	}

	if sawUnavailable {
		return CredentialResult{Kind: BackendErrorResult, Backend: firstUnavailable, Reason: "backend unavailable"}
	}
	return CredentialResult{Kind: Missing, Reason: "no backend had credentials for " + key}
}

// mergeOverrides applies the connection's username/domain overrides onto a
// backend-sourced result, per spec's merge step: "password always comes
// from the backend".
func (b *Broker) mergeOverrides(conn *types.Connection, result CredentialResult) CredentialResult {
	if result.Kind != Resolved {
		return result
	}
	result.Credentials = result.Credentials.WithOverrides(conn.Username, conn.Domain)
	return result
}

func (b *Broker) cacheGet(key string) (CredentialResult, bool) {
	v, ok := b.cache.Get(key)
	if !ok {
		return CredentialResult{}, false
	}
	result, ok := v.(CredentialResult)
	return result, ok
}

func (b *Broker) cacheSet(key string, result CredentialResult, ttl time.Duration) {
	_ = b.cache.Set(key, result, ttl)
}

// Invalidate drops any cached entry for conn's lookup key, used on
// connection update or explicit logout.
func (b *Broker) Invalidate(conn *types.Connection, lookup GroupLookup) {
	key := ComputeLookupKey(conn, lookup)
	b.cache.Remove(key)
}
