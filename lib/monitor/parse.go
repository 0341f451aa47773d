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

// Package monitor implements the Monitoring Collector: an out-of-band SSH
// exec session that samples CPU, memory, disk, and network from a Linux
// host and emits deltas against the previous snapshot.
package monitor

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/gravitational/trace"
)

// Sentinels delimit the four sections the collector's remote shell
// command prints, in order.
const (
	SentinelStat    = "===RUSTCONN-STAT==="
	SentinelMemInfo = "===RUSTCONN-MEMINFO==="
	SentinelDF      = "===RUSTCONN-DF==="
	SentinelNetDev  = "===RUSTCONN-NETDEV==="
)

// RemoteCommand is the deterministic shell command executed on every tick.
const RemoteCommand = `echo '` + SentinelStat + `'; cat /proc/stat; ` +
	`echo '` + SentinelMemInfo + `'; cat /proc/meminfo; ` +
	`echo '` + SentinelDF + `'; df -k /; ` +
	`echo '` + SentinelNetDev + `'; cat /proc/net/dev`

// CPUTimes is the first "cpu" line of /proc/stat, in jiffies.
type CPUTimes struct {
	User, Nice, System, Idle, IOWait, IRQ, SoftIRQ, Steal int64
}

// Total returns the sum of every accounted CPU time.
func (c CPUTimes) Total() int64 {
	return c.User + c.Nice + c.System + c.Idle + c.IOWait + c.IRQ + c.SoftIRQ + c.Steal
}

// Busy returns total minus idle minus iowait, the "doing work" jiffies.
func (c CPUTimes) Busy() int64 {
	return c.Total() - c.Idle - c.IOWait
}

// Snapshot is one parsed sample.
type Snapshot struct {
	CPU CPUTimes

	MemTotalKB     int64
	MemAvailableKB int64

	DiskTotalKB int64
	DiskUsedKB  int64

	NetRXBytes int64
	NetTXBytes int64
}

// ParseSnapshot parses the sentinel-delimited output of RemoteCommand.
// Absence of an expected key is an error per-metric, not per-tick: a
// missing /proc/net/dev still yields a Snapshot with CPU and memory
// populated, plus a non-nil error naming what was missing, so the
// collector can decide whether to emit Sample or Error for the tick.
func ParseSnapshot(output string) (Snapshot, error) {
	sections, err := splitSections(output)
	if err != nil {
		return Snapshot{}, trace.Wrap(err)
	}

	var snap Snapshot
	var errs []string

	if cpu, err := parseProcStat(sections[SentinelStat]); err != nil {
		errs = append(errs, err.Error())
	} else {
		snap.CPU = cpu
	}

	if total, avail, err := parseMemInfo(sections[SentinelMemInfo]); err != nil {
		errs = append(errs, err.Error())
	} else {
		snap.MemTotalKB, snap.MemAvailableKB = total, avail
	}

	if totalKB, usedKB, err := parseDF(sections[SentinelDF]); err != nil {
		errs = append(errs, err.Error())
	} else {
		snap.DiskTotalKB, snap.DiskUsedKB = totalKB, usedKB
	}

	if rx, tx, err := parseNetDev(sections[SentinelNetDev]); err != nil {
		errs = append(errs, err.Error())
	} else {
		snap.NetRXBytes, snap.NetTXBytes = rx, tx
	}

	if len(errs) > 0 {
		return snap, trace.BadParameter("monitor: %s", strings.Join(errs, "; "))
	}
	return snap, nil
}

func splitSections(output string) (map[string]string, error) {
	sections := map[string]string{
		SentinelStat: "", SentinelMemInfo: "", SentinelDF: "", SentinelNetDev: "",
	}
	var current string
	found := false
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()
		if _, ok := sections[line]; ok {
			current = line
			found = true
			continue
		}
		if current != "" {
			sections[current] += line + "\n"
		}
	}
	if !found {
		return nil, fmt.Errorf("no recognized sentinel found in collector output")
	}
	return sections, nil
}

// parseProcStat reads the aggregate "cpu " line.
func parseProcStat(section string) (CPUTimes, error) {
	scanner := bufio.NewScanner(strings.NewReader(section))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 8 || fields[0] != "cpu" {
			continue
		}
		vals := make([]int64, 8)
		for i := 0; i < 8; i++ {
			v, err := strconv.ParseInt(fields[i+1], 10, 64)
			if err != nil {
				return CPUTimes{}, fmt.Errorf("/proc/stat: invalid cpu field %q", fields[i+1])
			}
			vals[i] = v
		}
		return CPUTimes{
			User: vals[0], Nice: vals[1], System: vals[2], Idle: vals[3],
			IOWait: vals[4], IRQ: vals[5], SoftIRQ: vals[6], Steal: vals[7],
		}, nil
	}
	return CPUTimes{}, fmt.Errorf("/proc/stat: no aggregate cpu line found")
}

func parseMemInfo(section string) (totalKB, availableKB int64, err error) {
	scanner := bufio.NewScanner(strings.NewReader(section))
	var haveTotal, haveAvailable bool
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "MemTotal:"):
			totalKB, err = parseMemInfoValue(line)
			haveTotal = err == nil
		case strings.HasPrefix(line, "MemAvailable:"):
			availableKB, err = parseMemInfoValue(line)
			haveAvailable = err == nil
		}
	}
	if !haveTotal {
		return 0, 0, fmt.Errorf("/proc/meminfo: MemTotal not found")
	}
	if !haveAvailable {
		return 0, 0, fmt.Errorf("/proc/meminfo: MemAvailable not found")
	}
	return totalKB, availableKB, nil
}

func parseMemInfoValue(line string) (int64, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return 0, fmt.Errorf("malformed meminfo line %q", line)
	}
	return strconv.ParseInt(fields[1], 10, 64)
}

// parseDF reads the single data row of `df -k /`.
func parseDF(section string) (totalKB, usedKB int64, err error) {
	scanner := bufio.NewScanner(strings.NewReader(section))
	var lines []string
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) < 2 {
		return 0, 0, fmt.Errorf("df: no data row found")
	}
	fields := strings.Fields(lines[1])
	if len(fields) < 3 {
		return 0, 0, fmt.Errorf("df: malformed data row %q", lines[1])
	}
	totalKB, err = strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("df: invalid total size %q", fields[1])
	}
	usedKB, err = strconv.ParseInt(fields[2], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("df: invalid used size %q", fields[2])
	}
	return totalKB, usedKB, nil
}

// parseNetDev sums receive/transmit bytes across every non-loopback
// interface.
func parseNetDev(section string) (rxBytes, txBytes int64, err error) {
	scanner := bufio.NewScanner(strings.NewReader(section))
	var sawInterface bool
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.Contains(line, ":") {
			continue
		}
		parts := strings.SplitN(line, ":", 2)
		iface := strings.TrimSpace(parts[0])
		if iface == "lo" || iface == "" {
			continue
		}
		fields := strings.Fields(parts[1])
		if len(fields) < 9 {
			continue
		}
		rx, err1 := strconv.ParseInt(fields[0], 10, 64)
		tx, err2 := strconv.ParseInt(fields[8], 10, 64)
		if err1 != nil || err2 != nil {
			continue
		}
		rxBytes += rx
		txBytes += tx
		sawInterface = true
	}
	if !sawInterface {
		return 0, 0, fmt.Errorf("/proc/net/dev: no non-loopback interface found")
	}
	return rxBytes, txBytes, nil
}
