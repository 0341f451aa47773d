package monitor

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

// scriptedSampler returns a queued list of outputs (or errors) in order,
// repeating the last entry once exhausted.
type scriptedSampler struct {
	mu      sync.Mutex
	outputs []string
	errs    []error
	calls   int
}

func (s *scriptedSampler) Sample(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.calls
	if i >= len(s.outputs) {
		i = len(s.outputs) - 1
	}
	s.calls++
	var err error
	if i < len(s.errs) {
		err = s.errs[i]
	}
	return s.outputs[i], err
}

func collectorTestLog() *logrus.Entry {
	return logrus.NewEntry(logrus.New())
}

func TestCollectorClampsIntervalToBounds(t *testing.T) {
	sampler := &scriptedSampler{outputs: []string{""}}
	c, err := NewCollector(Config{Sampler: sampler, Interval: 100 * time.Millisecond})
	require.NoError(t, err)
	require.Equal(t, MinInterval, c.Interval)

	c2, err := NewCollector(Config{Sampler: sampler, Interval: time.Hour})
	require.NoError(t, err)
	require.Equal(t, MaxInterval, c2.Interval)
}

func TestCollectorFirstTickEstablishesBaselineWithoutEmitting(t *testing.T) {
	out := sampleOutput(
		"cpu  100 0 50 900 10 0 0 0\n",
		"MemTotal: 1000 kB\nMemAvailable: 500 kB\n",
		"Filesystem 1K-blocks Used Available Use% Mounted\n/dev/sda1 1000 500 500 50% /\n",
		"  eth0: 100 1 0 0 0 0 0 0 100 1 0 0 0 0 0 0\n",
	)
	sampler := &scriptedSampler{outputs: []string{out, out}}
	clock := clockwork.NewFakeClock()

	c, err := NewCollector(Config{Sampler: sampler, Clock: clock, Log: collectorTestLog(), Interval: time.Second})
	require.NoError(t, err)
	c.Start()
	defer c.Stop()

	clock.BlockUntil(1)
	clock.Advance(time.Second)

	ev := <-c.Events()
	require.Equal(t, MetricsEventSample, ev.Kind)
}

func TestCollectorEmitsErrorWithoutStoppingOnBadSample(t *testing.T) {
	good := sampleOutput(
		"cpu  100 0 50 900 10 0 0 0\n",
		"MemTotal: 1000 kB\nMemAvailable: 500 kB\n",
		"Filesystem 1K-blocks Used Available Use% Mounted\n/dev/sda1 1000 500 500 50% /\n",
		"  eth0: 100 1 0 0 0 0 0 0 100 1 0 0 0 0 0 0\n",
	)
	sampler := &scriptedSampler{outputs: []string{good, "garbage", good}}
	clock := clockwork.NewFakeClock()

	c, err := NewCollector(Config{Sampler: sampler, Clock: clock, Log: collectorTestLog(), Interval: time.Second})
	require.NoError(t, err)
	c.Start()
	defer c.Stop()

	clock.BlockUntil(1)
	clock.Advance(time.Second)
	ev := <-c.Events()
	require.Equal(t, MetricsEventError, ev.Kind)

	clock.Advance(time.Second)
	ev2 := <-c.Events()
	require.Equal(t, MetricsEventSample, ev2.Kind)
}

func TestCollectorStopClosesEvents(t *testing.T) {
	sampler := &scriptedSampler{outputs: []string{""}}
	c, err := NewCollector(Config{Sampler: sampler, Log: collectorTestLog()})
	require.NoError(t, err)
	c.Start()
	c.Stop()

	for range c.Events() {
	}
}
