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

package embedded

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gravitational/trace"
	"github.com/sirupsen/logrus"
)

// Transport is the protocol-specific driver a Worker wraps: dial the
// remote end, pump one inbound frame at a time, and send a command. RDP,
// VNC, and SPICE each provide one implementation; Worker itself is
// protocol-agnostic, matching the two-channel design note.
type Transport interface {
	// Dial establishes the connection and performs any handshake/auth up
	// to Connected. It must return promptly on ctx cancellation.
	Dial(ctx context.Context) error
	// ReadEvent blocks for the next protocol event (frame update, server
	// message, auth prompt, ...) and returns it, or an error when the
	// connection drops.
	ReadEvent(ctx context.Context) (Event, error)
	// Send delivers a UI Command to the remote end.
	Send(ctx context.Context, cmd Command) error
	// Close releases the transport's resources.
	Close() error
}

// Config configures a Worker.
type Config struct {
	Transport Transport
	Reconnect ReconnectPolicy
	Log       *logrus.Entry
	// EventBuffer/CommandBuffer size the worker's channels.
	EventBuffer   int
	CommandBuffer int
}

// CheckAndSetDefaults validates the configuration and fills in defaults.
func (c *Config) CheckAndSetDefaults() error {
	if c.Transport == nil {
		return trace.BadParameter("embedded worker config: Transport is required")
	}
	if c.Log == nil {
		c.Log = logrus.NewEntry(logrus.StandardLogger()).WithField(trace.Component, "protocol/embedded")
	}
	if c.EventBuffer == 0 {
		c.EventBuffer = 64
	}
	if c.CommandBuffer == 0 {
		c.CommandBuffer = 16
	}
	if c.Reconnect == (ReconnectPolicy{}) {
		c.Reconnect = DefaultReconnectPolicy()
	}
	return nil
}

// Worker owns one embedded session's transport, framebuffer, and state
// machine, and drives them from a single goroutine started by Open --
// generalized from the two-channel (Events out, Commands in) gateway
// pattern used for Teleport's local database proxies.
type Worker struct {
	Config

	events   chan Event
	commands chan Command

	closeContext context.Context
	closeCancel  context.CancelFunc

	mu    sync.Mutex
	state *machine
	fb    *Framebuffer
}

// New constructs a Worker. Open must be called to actually start it.
func New(cfg Config) (*Worker, error) {
	if err := cfg.CheckAndSetDefaults(); err != nil {
		return nil, trace.Wrap(err)
	}
	closeContext, closeCancel := context.WithCancel(context.Background())
	return &Worker{
		Config:       cfg,
		events:       make(chan Event, cfg.EventBuffer),
		commands:     make(chan Command, cfg.CommandBuffer),
		closeContext: closeContext,
		closeCancel:  closeCancel,
		state:        newMachine(),
		fb:           NewFramebuffer(0, 0),
	}, nil
}

// Events returns the worker's outbound event stream.
func (w *Worker) Events() <-chan Event { return w.events }

// Commands returns the worker's inbound command sink.
func (w *Worker) Commands() chan<- Command { return w.commands }

// State returns the worker's current lifecycle state.
func (w *Worker) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state.current
}

// Open starts the worker's background loop: dial, then alternate between
// reading transport events and draining UI commands until Disconnect or a
// fatal transport error.
func (w *Worker) Open() {
	go w.run()
}

// Close requests the worker stop, mirroring the gateway's Close: cancel
// the shared context, close the transport, let the goroutine exit.
func (w *Worker) Close() {
	w.closeCancel()
	w.Transport.Close()
}

// transportRead is one ReadEvent result, ferried from the reader goroutine
// to run's select loop.
type transportRead struct {
	event Event
	err   error
}

func (w *Worker) run() {
	w.Log.Info("embedded worker starting")
	w.setState(StateConnecting)

	if err := w.Transport.Dial(w.closeContext); err != nil {
		w.emitError(err, isFallbackEligible(err))
		w.setState(StateError)
		return
	}
	w.setState(StateConnected)
	w.emit(Event{Kind: EventConnected})
	w.setState(StateStreaming)

	reads := make(chan transportRead, 1)
	go w.readLoop(reads)

	attempt := 0
	for {
		select {
		case <-w.closeContext.Done():
			w.drainToTerminated()
			return

		case cmd, ok := <-w.commands:
			if !ok || cmd.Kind == CommandDisconnect {
				w.drainToTerminated()
				return
			}
			if err := w.Transport.Send(w.closeContext, cmd); err != nil {
				w.Log.WithError(err).Warn("failed to send command to transport")
			}

		case read, ok := <-reads:
			if !ok {
				w.drainToTerminated()
				return
			}
			if read.err != nil {
				if w.closeContext.Err() != nil {
					w.drainToTerminated()
					return
				}
				if !w.Reconnect.ShouldRetry(attempt) {
					w.emitError(read.err, isFallbackEligible(read.err))
					w.setState(StateError)
					return
				}
				if w.State() != StateReconnecting {
					w.setState(StateReconnecting)
				}
				w.Log.WithError(read.err).Warnf("transport error, reconnecting (attempt %d)", attempt+1)
				select {
				case <-w.closeContext.Done():
					w.drainToTerminated()
					return
				case <-time.After(w.Reconnect.Delay(attempt)):
				}
				if redialErr := w.Transport.Dial(w.closeContext); redialErr != nil {
					attempt++
					// no readLoop is running; feed the failure back so the
					// next iteration retries or gives up per the policy
					reads <- transportRead{err: redialErr}
					continue
				}
				attempt = 0
				w.setState(StateStreaming)
				reads = make(chan transportRead, 1)
				go w.readLoop(reads)
				continue
			}

			event := read.event
			if event.Kind == EventFrameUpdate || event.Kind == EventFullFrameUpdate {
				if !w.fb.ValidateFrameUpdate(event.Rect, event.Pixels) {
					w.Log.Warnf("dropped out-of-bounds frame update rect=%+v", event.Rect)
					continue
				}
			}
			if event.Kind == EventResolutionChanged {
				w.fb.Resize(event.Width, event.Height)
			}
			w.emit(event)
		}
	}
}

// readLoop pumps Transport.ReadEvent into reads until it errors or the
// worker's context is cancelled, then exits -- run() restarts a fresh
// readLoop after a successful reconnect dial.
func (w *Worker) readLoop(reads chan<- transportRead) {
	for {
		event, err := w.Transport.ReadEvent(w.closeContext)
		select {
		case reads <- transportRead{event: event, err: err}:
		case <-w.closeContext.Done():
			return
		}
		if err != nil {
			return
		}
	}
}

func (w *Worker) drainToTerminated() {
	w.setState(StateDisconnecting)
	if err := w.Transport.Close(); err != nil {
		w.Log.WithError(err).Warn("error closing transport")
	}
	w.emit(Event{Kind: EventDisconnected})
	w.setState(StateTerminated)
	// Cancel unconditionally, after the Disconnected event is queued, so a
	// lingering readLoop blocked in Transport.ReadEvent is released even
	// when termination was triggered by a Command rather than an external
	// Close call.
	w.closeCancel()
	close(w.events)
}

func (w *Worker) setState(s State) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.state.transition(s); err != nil {
		w.Log.Warn(err.Error())
		return
	}
}

func (w *Worker) emit(e Event) {
	select {
	case w.events <- e:
	case <-w.closeContext.Done():
	}
}

func (w *Worker) emitError(err error, fallback bool) {
	ev := Event{Kind: EventError, ErrorMessage: err.Error()}
	if fallback {
		ev.FallbackReason = err.Error()
	}
	w.emit(ev)
}

// isFallbackEligible reports whether err matches the fallback policy:
// UnsupportedSecurityType or NativeClientNotAvailable failures should
// signal the caller to retry via the external-client subprocess path.
func isFallbackEligible(err error) bool {
	var fe *FallbackError
	return errors.As(err, &fe)
}

// FallbackReason enumerates the embedded-backend failure modes that
// should trigger the external-client fallback policy.
type FallbackReason string

const (
	ReasonUnsupportedSecurityType  FallbackReason = "unsupported_security_type"
	ReasonNativeClientNotAvailable FallbackReason = "native_client_not_available"
)

// FallbackError wraps a transport failure that the fallback policy
// recognizes.
type FallbackError struct {
	Reason FallbackReason
	Err    error
}

func (f *FallbackError) Error() string {
	return string(f.Reason) + ": " + f.Err.Error()
}

func (f *FallbackError) Unwrap() error { return f.Err }
