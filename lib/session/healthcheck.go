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
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"github.com/rustconn/rustconn/api/types"
)

// HealthCheckEventKind discriminates the health-check broadcast stream.
type HealthCheckEventKind string

const (
	HealthCheckEventFailed    HealthCheckEventKind = "failed"
	HealthCheckEventCleanedUp HealthCheckEventKind = "cleaned_up"
)

// HealthCheckEvent reports one session's outcome on a liveness sweep.
type HealthCheckEvent struct {
	SessionID string
	Kind      HealthCheckEventKind
}

// HealthCheckConfig configures the background liveness-check task.
type HealthCheckConfig struct {
	Interval    time.Duration
	Clock       clockwork.Clock
	Log         *logrus.Entry
	AutoCleanup bool
}

func (c *HealthCheckConfig) checkAndSetDefaults() {
	if c.Interval == 0 {
		c.Interval = 10 * time.Second
	}
	if c.Clock == nil {
		c.Clock = clockwork.NewRealClock()
	}
	if c.Log == nil {
		c.Log = logrus.NewEntry(logrus.StandardLogger())
	}
}

// StartHealthChecks runs a background task that, every interval, asks
// the Manager for a liveness snapshot and transitions failed sessions
// to Error, matching heartbeatv2's periodic-check idiom generalized from
// a single server's heartbeat to a sweep over every live session.
// Returns a stop function.
func (m *Manager) StartHealthChecks(cfg HealthCheckConfig) func() {
	cfg.checkAndSetDefaults()

	ctx, cancel := context.WithCancel(context.Background())
	ticker := cfg.Clock.NewTicker(cfg.Interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.Chan():
				m.sweepHealth(cfg)
			}
		}
	}()

	return cancel
}

func (m *Manager) sweepHealth(cfg HealthCheckConfig) {
	for _, sess := range m.List() {
		if sess.State == types.SessionTerminated || sess.State == types.SessionError {
			if cfg.AutoCleanup && sess.State == types.SessionTerminated {
				m.remove(sess.ID)
				m.broadcastHealth(HealthCheckEvent{SessionID: sess.ID, Kind: HealthCheckEventCleanedUp})
			}
			continue
		}
		if !m.workerAlive(sess.ID) {
			m.markError(sess.ID, "worker is no longer alive")
			cfg.Log.Warnf("session %s failed health check", sess.ID)
			m.broadcastHealth(HealthCheckEvent{SessionID: sess.ID, Kind: HealthCheckEventFailed})
		}
	}
}
