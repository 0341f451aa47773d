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

// Metrics is one tick's computed sample, derived from the delta between
// two consecutive Snapshots.
type Metrics struct {
	CPUPercent float64

	MemTotalKB     int64
	MemUsedKB      int64
	MemAvailableKB int64

	DiskTotalKB int64
	DiskUsedKB  int64

	NetRXBytesPerSec float64
	NetTXBytesPerSec float64
}

// ComputeMetrics derives a Metrics sample from the previous and current
// Snapshot, intervalSeconds apart. CPU percent is computed from the
// jiffy deltas: 100 * Δbusy / Δtotal, where busy excludes idle and
// iowait -- prev{total:1000,idle:900} -> cur{total:2000,idle:1700}
// yields exactly 20.0.
func ComputeMetrics(prev, cur Snapshot, intervalSeconds float64) Metrics {
	m := Metrics{
		MemTotalKB:     cur.MemTotalKB,
		MemUsedKB:      cur.MemTotalKB - cur.MemAvailableKB,
		MemAvailableKB: cur.MemAvailableKB,
		DiskTotalKB:    cur.DiskTotalKB,
		DiskUsedKB:     cur.DiskUsedKB,
	}

	deltaTotal := cur.CPU.Total() - prev.CPU.Total()
	if deltaTotal > 0 {
		deltaBusy := cur.CPU.Busy() - prev.CPU.Busy()
		m.CPUPercent = 100 * float64(deltaBusy) / float64(deltaTotal)
	}

	if intervalSeconds > 0 {
		if deltaRX := cur.NetRXBytes - prev.NetRXBytes; deltaRX >= 0 {
			m.NetRXBytesPerSec = float64(deltaRX) / intervalSeconds
		}
		if deltaTX := cur.NetTXBytes - prev.NetTXBytes; deltaTX >= 0 {
			m.NetTXBytesPerSec = float64(deltaTX) / intervalSeconds
		}
	}

	return m
}

// DiskPercent returns the fraction of disk capacity in use, or 0 when
// DiskTotalKB is zero.
func (m Metrics) DiskPercent() float64 {
	if m.DiskTotalKB == 0 {
		return 0
	}
	return 100 * float64(m.DiskUsedKB) / float64(m.DiskTotalKB)
}

// MemPercent returns the fraction of memory in use, or 0 when
// MemTotalKB is zero.
func (m Metrics) MemPercent() float64 {
	if m.MemTotalKB == 0 {
		return 0
	}
	return 100 * float64(m.MemUsedKB) / float64(m.MemTotalKB)
}
