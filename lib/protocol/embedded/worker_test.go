package embedded

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

// fakeTransport is a scripted Transport for worker tests.
type fakeTransport struct {
	mu       sync.Mutex
	events   []Event
	dialErr  error
	sendCalls []Command
	closed   bool
}

func (f *fakeTransport) Dial(ctx context.Context) error { return f.dialErr }

func (f *fakeTransport) ReadEvent(ctx context.Context) (Event, error) {
	f.mu.Lock()
	if len(f.events) > 0 {
		e := f.events[0]
		f.events = f.events[1:]
		f.mu.Unlock()
		return e, nil
	}
	f.mu.Unlock()

	<-ctx.Done()
	return Event{}, ctx.Err()
}

func (f *fakeTransport) Send(ctx context.Context, cmd Command) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sendCalls = append(f.sendCalls, cmd)
	return nil
}

func (f *fakeTransport) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func testLog() *logrus.Entry {
	return logrus.NewEntry(logrus.New())
}

func TestWorkerEmitsConnectedThenQueuedEvents(t *testing.T) {
	transport := &fakeTransport{events: []Event{
		{Kind: EventResolutionChanged, Width: 800, Height: 600},
		{Kind: EventFrameUpdate, Rect: Rect{0, 0, 10, 10}, Pixels: make([]byte, 10*10*4)},
	}}
	w, err := New(Config{Transport: transport, Log: testLog()})
	require.NoError(t, err)
	w.Open()

	require.Equal(t, EventConnected, (<-w.Events()).Kind)
	require.Equal(t, EventResolutionChanged, (<-w.Events()).Kind)
	require.Equal(t, EventFrameUpdate, (<-w.Events()).Kind)

	w.Close()
}

func TestWorkerDropsOutOfBoundsFrameUpdate(t *testing.T) {
	transport := &fakeTransport{events: []Event{
		{Kind: EventResolutionChanged, Width: 10, Height: 10},
		{Kind: EventFrameUpdate, Rect: Rect{X: 5, Y: 5, Width: 10, Height: 10}, Pixels: make([]byte, 10*10*4)},
		{Kind: EventCursorPosition, CursorX: 1, CursorY: 1},
	}}
	w, err := New(Config{Transport: transport, Log: testLog()})
	require.NoError(t, err)
	w.Open()

	require.Equal(t, EventConnected, (<-w.Events()).Kind)
	require.Equal(t, EventResolutionChanged, (<-w.Events()).Kind)
	// the out-of-bounds frame update must be dropped, not delivered
	require.Equal(t, EventCursorPosition, (<-w.Events()).Kind)

	w.Close()
}

func TestWorkerDisconnectCommandTerminates(t *testing.T) {
	transport := &fakeTransport{}
	w, err := New(Config{Transport: transport, Log: testLog()})
	require.NoError(t, err)
	w.Open()

	require.Equal(t, EventConnected, (<-w.Events()).Kind)
	w.Commands() <- Command{Kind: CommandDisconnect}

	var gotDisconnected bool
	for ev := range w.Events() {
		if ev.Kind == EventDisconnected {
			gotDisconnected = true
		}
	}
	require.True(t, gotDisconnected)
	require.Eventually(t, func() bool { return w.State() == StateTerminated }, time.Second, 10*time.Millisecond)
}

func TestWorkerDialFailureEntersErrorState(t *testing.T) {
	transport := &fakeTransport{dialErr: errors.New("connection refused")}
	w, err := New(Config{Transport: transport, Log: testLog()})
	require.NoError(t, err)
	w.Open()

	ev := <-w.Events()
	require.Equal(t, EventError, ev.Kind)
	require.Eventually(t, func() bool { return w.State() == StateError }, time.Second, 10*time.Millisecond)
}

func TestWorkerDialFailureSignalsFallbackForEligibleReasons(t *testing.T) {
	transport := &fakeTransport{dialErr: &FallbackError{Reason: ReasonNativeClientNotAvailable, Err: errors.New("no native client")}}
	w, err := New(Config{Transport: transport, Log: testLog()})
	require.NoError(t, err)
	w.Open()

	ev := <-w.Events()
	require.Equal(t, EventError, ev.Kind)
	require.NotEmpty(t, ev.FallbackReason)
}
