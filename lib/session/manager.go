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
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/gravitational/trace"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"github.com/rustconn/rustconn/api/types"
)

// Config configures a Manager.
type Config struct {
	Clock clockwork.Clock
	Log   *logrus.Entry
}

// CheckAndSetDefaults validates the configuration and fills in defaults.
func (c *Config) CheckAndSetDefaults() error {
	if c.Clock == nil {
		c.Clock = clockwork.NewRealClock()
	}
	if c.Log == nil {
		c.Log = logrus.NewEntry(logrus.StandardLogger()).WithField(trace.Component, "session")
	}
	return nil
}

// entry pairs a serializable types.Session with its out-of-band worker
// handle and optional logger, neither of which belongs in the
// restorable value type.
type entry struct {
	session types.Session
	worker  Worker
	logger  *Logger
}

// Manager owns the registry of live Sessions, generalized from
// daemon.Service's slice-of-managed-objects registry and
// SessionTracker's sync.Cond broadcast pattern.
type Manager struct {
	Config

	// cond guards sessions and wakes WaitForState callers on every
	// change, mirroring SessionTracker's trackerCond.
	cond     *sync.Cond
	sessions map[string]*entry

	healthSubs []chan HealthCheckEvent

	nextID uint64
}

// New constructs a Manager.
func New(cfg Config) (*Manager, error) {
	if err := cfg.CheckAndSetDefaults(); err != nil {
		return nil, trace.Wrap(err)
	}
	return &Manager{
		Config:   cfg,
		cond:     sync.NewCond(&sync.Mutex{}),
		sessions: make(map[string]*entry),
	}, nil
}

// Register adds a new Session in SessionStarting for connectionID,
// backed by worker. It does not itself dial anything: the caller
// (credential resolution + protocol validation + worker spawn) is
// expected to have already happened, matching start()'s described
// sequence.
func (m *Manager) Register(connectionID string, embedded bool, worker Worker) types.Session {
	m.cond.L.Lock()
	defer m.cond.L.Unlock()

	m.nextID++
	sess := types.Session{
		ID:           connectionID + "-" + strconv.FormatUint(m.nextID, 10),
		ConnectionID: connectionID,
		State:        types.SessionStarting,
		StartedAt:    m.Clock.Now(),
		Embedded:     embedded,
	}
	m.sessions[sess.ID] = &entry{session: sess, worker: worker}
	m.cond.Broadcast()
	return sess
}

// AttachLogger associates a Logger with an already-registered session.
func (m *Manager) AttachLogger(id string, logger *Logger) error {
	m.cond.L.Lock()
	defer m.cond.L.Unlock()

	e, ok := m.sessions[id]
	if !ok {
		return trace.NotFound("session %q not found", id)
	}
	e.logger = logger
	return nil
}

// MarkActive transitions a session from Starting to Active on the first
// Connected event.
func (m *Manager) MarkActive(id string) error {
	m.cond.L.Lock()
	defer m.cond.L.Unlock()

	e, ok := m.sessions[id]
	if !ok {
		return trace.NotFound("session %q not found", id)
	}
	e.session.State = types.SessionActive
	m.cond.Broadcast()
	return nil
}

// markError transitions a session into Error with the given message.
func (m *Manager) markError(id string, message string) {
	m.cond.L.Lock()
	defer m.cond.L.Unlock()

	e, ok := m.sessions[id]
	if !ok {
		return
	}
	e.session.State = types.SessionError
	e.session.ErrorMessage = message
	m.cond.Broadcast()
}

// Stop initiates Disconnecting, waits up to grace for the worker to
// exit on its own, then kills it.
func (m *Manager) Stop(ctx context.Context, id string, grace time.Duration) error {
	m.cond.L.Lock()
	e, ok := m.sessions[id]
	if !ok {
		m.cond.L.Unlock()
		return trace.NotFound("session %q not found", id)
	}
	e.session.State = types.SessionDisconnecting
	m.cond.Broadcast()
	m.cond.L.Unlock()

	deadline := m.Clock.Now().Add(grace)
	if e.worker != nil {
		if err := e.worker.Stop(); err != nil {
			m.Log.WithError(err).Warnf("session %s: graceful stop request failed", id)
		}
		for e.worker.Alive() && m.Clock.Now().Before(deadline) {
			select {
			case <-ctx.Done():
				return trace.Wrap(ctx.Err())
			case <-m.Clock.After(50 * time.Millisecond):
			}
		}
		if e.worker.Alive() {
			if err := e.worker.Kill(); err != nil {
				m.Log.WithError(err).Warnf("session %s: kill failed", id)
			}
		}
	}

	m.cond.L.Lock()
	now := m.Clock.Now()
	e.session.State = types.SessionTerminated
	e.session.EndedAt = &now
	if e.logger != nil {
		e.logger.Close()
	}
	m.cond.Broadcast()
	m.cond.L.Unlock()
	return nil
}

func (m *Manager) remove(id string) {
	m.cond.L.Lock()
	defer m.cond.L.Unlock()
	delete(m.sessions, id)
	m.cond.Broadcast()
}

// List returns a snapshot of every known session.
func (m *Manager) List() []types.Session {
	m.cond.L.Lock()
	defer m.cond.L.Unlock()

	out := make([]types.Session, 0, len(m.sessions))
	for _, e := range m.sessions {
		out = append(out, e.session)
	}
	return out
}

// Get returns a copy of one session, or a NotFound error.
func (m *Manager) Get(id string) (types.Session, error) {
	m.cond.L.Lock()
	defer m.cond.L.Unlock()

	e, ok := m.sessions[id]
	if !ok {
		return types.Session{}, trace.NotFound("session %q not found", id)
	}
	return e.session, nil
}

// workerAlive reports whether session id's worker is still alive; used
// by the health-check sweep, which only has the Manager's view of
// liveness, never the worker directly.
func (m *Manager) workerAlive(id string) bool {
	m.cond.L.Lock()
	defer m.cond.L.Unlock()
	e, ok := m.sessions[id]
	if !ok || e.worker == nil {
		return true
	}
	return e.worker.Alive()
}

// WaitForState blocks until session id reaches wanted or ctx is
// canceled, mirroring SessionTracker.WaitOnState.
func (m *Manager) WaitForState(ctx context.Context, id string, wanted types.SessionState) error {
	go func() {
		<-ctx.Done()
		m.cond.Broadcast()
	}()

	m.cond.L.Lock()
	defer m.cond.L.Unlock()

	for {
		select {
		case <-ctx.Done():
			return trace.Wrap(ctx.Err())
		default:
			e, ok := m.sessions[id]
			if !ok {
				return trace.NotFound("session %q not found", id)
			}
			if e.session.State == wanted {
				return nil
			}
			m.cond.Wait()
		}
	}
}

// SubscribeHealth registers a channel that receives every
// HealthCheckEvent broadcast by the health-check sweep.
func (m *Manager) SubscribeHealth() <-chan HealthCheckEvent {
	m.cond.L.Lock()
	defer m.cond.L.Unlock()
	ch := make(chan HealthCheckEvent, 16)
	m.healthSubs = append(m.healthSubs, ch)
	return ch
}

func (m *Manager) broadcastHealth(ev HealthCheckEvent) {
	m.cond.L.Lock()
	defer m.cond.L.Unlock()
	for _, ch := range m.healthSubs {
		select {
		case ch <- ev:
		default:
		}
	}
}
