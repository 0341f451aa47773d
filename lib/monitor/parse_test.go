package monitor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleOutput(stat, meminfo, df, netdev string) string {
	return SentinelStat + "\n" + stat + "\n" +
		SentinelMemInfo + "\n" + meminfo + "\n" +
		SentinelDF + "\n" + df + "\n" +
		SentinelNetDev + "\n" + netdev + "\n"
}

func TestParseSnapshotHappyPath(t *testing.T) {
	out := sampleOutput(
		"cpu  100 0 50 900 10 0 0 0\ncpu0 100 0 50 900 10 0 0 0\n",
		"MemTotal:       16384000 kB\nMemFree:         200000 kB\nMemAvailable:   12000000 kB\n",
		"Filesystem     1K-blocks     Used Available Use% Mounted on\n/dev/sda1      104857600 52428800  52428800  50% /\n",
		"Inter-|   Receive                                                |  Transmit\n face |bytes    packets errs drop fifo frame compressed multicast|bytes    packets errs drop fifo colls carrier compressed\n    lo: 1000       5    0    0    0     0          0         0     1000       5    0    0    0     0       0          0\n  eth0: 500000     100  0    0    0     0          0         0   200000      80    0    0    0     0       0          0\n",
	)

	snap, err := ParseSnapshot(out)
	require.NoError(t, err)
	require.Equal(t, int64(100), snap.CPU.User)
	require.Equal(t, int64(900), snap.CPU.Idle)
	require.Equal(t, int64(16384000), snap.MemTotalKB)
	require.Equal(t, int64(12000000), snap.MemAvailableKB)
	require.Equal(t, int64(104857600), snap.DiskTotalKB)
	require.Equal(t, int64(52428800), snap.DiskUsedKB)
	require.Equal(t, int64(500000), snap.NetRXBytes)
	require.Equal(t, int64(200000), snap.NetTXBytes)
}

func TestParseSnapshotMissingSectionReturnsPartialSnapshotAndError(t *testing.T) {
	out := SentinelStat + "\n" + "cpu  100 0 50 900 10 0 0 0\n" +
		SentinelMemInfo + "\n" + "MemTotal: 1000 kB\nMemAvailable: 500 kB\n" +
		SentinelDF + "\n" +
		SentinelNetDev + "\n"

	snap, err := ParseSnapshot(out)
	require.Error(t, err)
	// CPU and memory, which parsed fine, should still be populated.
	require.Equal(t, int64(100), snap.CPU.User)
	require.Equal(t, int64(1000), snap.MemTotalKB)
}

func TestParseSnapshotNoSentinelsIsAnError(t *testing.T) {
	_, err := ParseSnapshot("garbage\nmore garbage\n")
	require.Error(t, err)
}

func TestParseNetDevSkipsLoopback(t *testing.T) {
	section := "    lo: 9999  10  0 0 0 0 0 0   9999  10  0 0 0 0 0 0\n" +
		"  eth0: 111  1  0 0 0 0 0 0   222  1  0 0 0 0 0 0\n"
	rx, tx, err := parseNetDev(section)
	require.NoError(t, err)
	require.Equal(t, int64(111), rx)
	require.Equal(t, int64(222), tx)
}
