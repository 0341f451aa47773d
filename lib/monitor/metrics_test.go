package monitor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func cpuSnapshot(total, idle int64) Snapshot {
	// Busy = total - idle (iowait left at zero), matching the scenario's
	// two-field total/idle framing.
	return Snapshot{CPU: CPUTimes{User: total - idle, Idle: idle}}
}

func TestComputeMetricsCPUPercentLiteralScenario(t *testing.T) {
	prev := cpuSnapshot(1000, 900)
	cur := cpuSnapshot(2000, 1700)

	m := ComputeMetrics(prev, cur, 1)
	require.InDelta(t, 20.0, m.CPUPercent, 0.01)
}

func TestComputeMetricsNetRatesUseWallClockInterval(t *testing.T) {
	prev := Snapshot{NetRXBytes: 1000, NetTXBytes: 2000}
	cur := Snapshot{NetRXBytes: 6000, NetTXBytes: 2500}

	m := ComputeMetrics(prev, cur, 5)
	require.InDelta(t, 1000, m.NetRXBytesPerSec, 0.001)
	require.InDelta(t, 100, m.NetTXBytesPerSec, 0.001)
}

func TestComputeMetricsZeroIntervalDoesNotDivideByZero(t *testing.T) {
	prev := Snapshot{NetRXBytes: 1000}
	cur := Snapshot{NetRXBytes: 2000}

	m := ComputeMetrics(prev, cur, 0)
	require.Zero(t, m.NetRXBytesPerSec)
}

func TestComputeMetricsMemAndDiskPercent(t *testing.T) {
	m := ComputeMetrics(Snapshot{}, Snapshot{
		MemTotalKB: 1000, MemAvailableKB: 250,
		DiskTotalKB: 2000, DiskUsedKB: 500,
	}, 1)

	require.Equal(t, int64(750), m.MemUsedKB)
	require.InDelta(t, 75.0, m.MemPercent(), 0.001)
	require.InDelta(t, 25.0, m.DiskPercent(), 0.001)
}

func TestMetricsPercentHelpersHandleZeroTotals(t *testing.T) {
	var m Metrics
	require.Zero(t, m.MemPercent())
	require.Zero(t, m.DiskPercent())
}
