package session

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/rustconn/rustconn/api/types"
)

func TestSweepHealthMarksDeadWorkerAsError(t *testing.T) {
	m, _ := newTestManager(t)
	worker := &fakeWorker{alive: false}
	sess := m.Register("conn-1", true, worker)
	require.NoError(t, m.MarkActive(sess.ID))

	ch := m.SubscribeHealth()
	m.sweepHealth(HealthCheckConfig{Log: logrus.NewEntry(logrus.New())})

	got, err := m.Get(sess.ID)
	require.NoError(t, err)
	require.Equal(t, types.SessionError, got.State)

	select {
	case ev := <-ch:
		require.Equal(t, HealthCheckEventFailed, ev.Kind)
	case <-time.After(time.Second):
		t.Fatal("expected a health check event")
	}
}

func TestSweepHealthAutoCleansTerminatedSessions(t *testing.T) {
	m, _ := newTestManager(t)
	worker := &fakeWorker{alive: true}
	sess := m.Register("conn-1", true, worker)
	require.NoError(t, m.Stop(context.Background(), sess.ID, time.Second))

	ch := m.SubscribeHealth()
	m.sweepHealth(HealthCheckConfig{Log: logrus.NewEntry(logrus.New()), AutoCleanup: true})

	_, err := m.Get(sess.ID)
	require.Error(t, err)

	select {
	case ev := <-ch:
		require.Equal(t, HealthCheckEventCleanedUp, ev.Kind)
	case <-time.After(time.Second):
		t.Fatal("expected a cleanup event")
	}
}

func TestSweepHealthLeavesLiveSessionsAlone(t *testing.T) {
	m, _ := newTestManager(t)
	sess := m.Register("conn-1", true, &fakeWorker{alive: true})
	require.NoError(t, m.MarkActive(sess.ID))

	m.sweepHealth(HealthCheckConfig{Log: logrus.NewEntry(logrus.New())})

	got, err := m.Get(sess.ID)
	require.NoError(t, err)
	require.Equal(t, types.SessionActive, got.State)
}
