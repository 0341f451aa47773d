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

package monitor

import (
	"context"
	"time"

	"github.com/gravitational/trace"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
)

const (
	// MinInterval and MaxInterval clamp the configured poll interval.
	MinInterval = time.Second
	MaxInterval = 60 * time.Second

	// DefaultInterval is used when Config.Interval is unset.
	DefaultInterval = 5 * time.Second

	// DefaultTickTimeout bounds a single sample round-trip.
	DefaultTickTimeout = 10 * time.Second
)

// Sampler is anything that can produce one raw collector sample, the
// interface SSHExecTransport satisfies and tests fake.
type Sampler interface {
	Sample(ctx context.Context) (string, error)
}

// MetricsEventKind discriminates a Collector's output stream.
type MetricsEventKind string

const (
	MetricsEventSample MetricsEventKind = "sample"
	MetricsEventError  MetricsEventKind = "error"
)

// MetricsEvent is one tick's outcome.
type MetricsEvent struct {
	Kind    MetricsEventKind
	Metrics Metrics
	Err     error
	At      time.Time
}

// Config configures a Collector.
type Config struct {
	Sampler Sampler
	Clock   clockwork.Clock
	Log     *logrus.Entry

	// Interval between samples, clamped to [MinInterval, MaxInterval].
	Interval time.Duration
	// TickTimeout bounds a single Sample call.
	TickTimeout time.Duration

	EventBuffer int
}

// CheckAndSetDefaults validates the configuration and fills in defaults.
func (c *Config) CheckAndSetDefaults() error {
	if c.Sampler == nil {
		return trace.BadParameter("monitor collector config: Sampler is required")
	}
	if c.Clock == nil {
		c.Clock = clockwork.NewRealClock()
	}
	if c.Log == nil {
		c.Log = logrus.NewEntry(logrus.StandardLogger()).WithField(trace.Component, "monitor")
	}
	if c.Interval == 0 {
		c.Interval = DefaultInterval
	}
	if c.Interval < MinInterval {
		c.Interval = MinInterval
	}
	if c.Interval > MaxInterval {
		c.Interval = MaxInterval
	}
	if c.TickTimeout == 0 {
		c.TickTimeout = DefaultTickTimeout
	}
	if c.EventBuffer == 0 {
		c.EventBuffer = 8
	}
	return nil
}

// Collector polls one session's target on a clockwork ticker and emits
// a MetricsEvent per tick -- a sample error never tears the collector
// down, it is reported as MetricsEventError and polling continues,
// matching the "one bad tick doesn't kill monitoring" requirement.
type Collector struct {
	Config

	events chan MetricsEvent

	closeContext context.Context
	closeCancel  context.CancelFunc

	prev    Snapshot
	prevAt  time.Time
	havePrev bool
}

// NewCollector constructs a Collector. Call Start to begin polling.
func NewCollector(cfg Config) (*Collector, error) {
	if err := cfg.CheckAndSetDefaults(); err != nil {
		return nil, trace.Wrap(err)
	}
	closeContext, closeCancel := context.WithCancel(context.Background())
	return &Collector{
		Config:       cfg,
		events:       make(chan MetricsEvent, cfg.EventBuffer),
		closeContext: closeContext,
		closeCancel:  closeCancel,
	}, nil
}

// Events returns the collector's output stream.
func (c *Collector) Events() <-chan MetricsEvent { return c.events }

// Start begins polling in a background goroutine.
func (c *Collector) Start() {
	go c.run()
}

// Stop halts polling and closes Events.
func (c *Collector) Stop() {
	c.closeCancel()
}

func (c *Collector) run() {
	defer close(c.events)

	ticker := c.Clock.NewTicker(c.Interval)
	defer ticker.Stop()

	c.tick()
	for {
		select {
		case <-c.closeContext.Done():
			return
		case <-ticker.Chan():
			c.tick()
		}
	}
}

func (c *Collector) tick() {
	tickCtx, cancel := context.WithTimeout(c.closeContext, c.TickTimeout)
	defer cancel()

	now := c.Clock.Now()
	output, err := c.Sampler.Sample(tickCtx)
	if err != nil {
		c.emit(MetricsEvent{Kind: MetricsEventError, Err: trace.Wrap(err), At: now})
		return
	}

	snap, err := ParseSnapshot(output)
	if err != nil {
		c.emit(MetricsEvent{Kind: MetricsEventError, Err: trace.Wrap(err), At: now})
		return
	}

	if !c.havePrev {
		c.prev, c.prevAt, c.havePrev = snap, now, true
		return
	}

	interval := now.Sub(c.prevAt).Seconds()
	metrics := ComputeMetrics(c.prev, snap, interval)
	c.prev, c.prevAt = snap, now

	c.emit(MetricsEvent{Kind: MetricsEventSample, Metrics: metrics, At: now})
}

func (c *Collector) emit(ev MetricsEvent) {
	select {
	case c.events <- ev:
	case <-c.closeContext.Done():
	}
}
