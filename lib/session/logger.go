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
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gravitational/trace"
)

// LogMode selects what a Logger records.
type LogMode string

const (
	LogModeActivityCounts LogMode = "activity_counts"
	LogModeInput          LogMode = "input"
	LogModeOutput         LogMode = "output"
	LogModeTimestamps     LogMode = "timestamps"
)

// LoggerConfig configures a session Logger.
type LoggerConfig struct {
	// PathTemplate is expanded with ${connection_name}, ${protocol},
	// ${date}, ${time}, ${datetime}, ${HOME}, plus Vars.
	PathTemplate string
	Vars         map[string]string

	ConnectionName string
	Protocol       string

	Modes []LogMode

	// MaxSizeBytes rotates the log once exceeded; zero disables the cap.
	MaxSizeBytes int64
	// RetentionDays removes rotated logs older than this on open; zero
	// disables the sweep.
	RetentionDays int

	Now func() time.Time
}

// Logger writes session activity to a file at a templated path,
// rotating on open when the size cap or retention window requires it.
type Logger struct {
	cfg  LoggerConfig
	path string

	mu       sync.Mutex
	file     *os.File
	written  int64
	activity struct {
		events int64
		bytesIn,
		bytesOut int64
	}
}

// OpenLogger expands cfg.PathTemplate, sweeps expired rotated logs in
// its directory, rotates the current file if it is already over the
// size cap, and opens it for appending.
func OpenLogger(cfg LoggerConfig) (*Logger, error) {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	path, err := expandLogPath(cfg)
	if err != nil {
		return nil, trace.Wrap(err)
	}

	if cfg.RetentionDays > 0 {
		sweepExpiredLogs(filepath.Dir(path), cfg.RetentionDays, cfg.Now())
	}

	if cfg.MaxSizeBytes > 0 {
		if info, err := os.Stat(path); err == nil && info.Size() >= cfg.MaxSizeBytes {
			if err := rotateLog(path, cfg.Now()); err != nil {
				return nil, trace.Wrap(err)
			}
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, trace.Wrap(err, "session logger: failed to create log directory")
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, trace.Wrap(err, "session logger: failed to open %q", path)
	}

	var written int64
	if info, err := f.Stat(); err == nil {
		written = info.Size()
	}

	return &Logger{cfg: cfg, path: path, file: f, written: written}, nil
}

// Path returns the logger's resolved file path.
func (l *Logger) Path() string { return l.path }

func (l *Logger) hasMode(m LogMode) bool {
	for _, mode := range l.cfg.Modes {
		if mode == m {
			return true
		}
	}
	return false
}

// RecordInput logs outbound (user -> session) bytes, when LogModeInput
// is enabled.
func (l *Logger) RecordInput(data []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.activity.bytesOut += int64(len(data))
	if l.hasMode(LogModeInput) {
		l.writeLine("IN", data)
	}
}

// RecordOutput logs inbound (session -> user) bytes, when LogModeOutput
// is enabled.
func (l *Logger) RecordOutput(data []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.activity.bytesIn += int64(len(data))
	if l.hasMode(LogModeOutput) {
		l.writeLine("OUT", data)
	}
}

// RecordEvent logs a single activity-count tick, when
// LogModeActivityCounts is enabled.
func (l *Logger) RecordEvent(label string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.activity.events++
	if l.hasMode(LogModeActivityCounts) {
		l.writeLine("EVENT", []byte(label))
	}
}

func (l *Logger) writeLine(tag string, data []byte) {
	var prefix string
	if l.hasMode(LogModeTimestamps) {
		prefix = l.cfg.Now().UTC().Format(time.RFC3339Nano) + " "
	}
	line := fmt.Sprintf("%s[%s] %s\n", prefix, tag, string(data))
	n, err := l.file.WriteString(line)
	if err == nil {
		l.written += int64(n)
	}
}

// Close flushes and closes the underlying file.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}

// expandLogPath performs the ${var} substitution named in the spec:
// connection_name, protocol, date, time, datetime, HOME, plus user
// vars; any other ${...} reference is an undefined-variable error.
func expandLogPath(cfg LoggerConfig) (string, error) {
	now := cfg.Now()
	builtins := map[string]string{
		"connection_name": cfg.ConnectionName,
		"protocol":        cfg.Protocol,
		"date":            now.Format("2006-01-02"),
		"time":            now.Format("15-04-05"),
		"datetime":        now.Format("2006-01-02T15-04-05"),
		"HOME":            os.Getenv("HOME"),
	}

	var undefined []string
	result := substituteTemplate(cfg.PathTemplate, func(name string) (string, bool) {
		if v, ok := builtins[name]; ok {
			return v, true
		}
		if v, ok := cfg.Vars[name]; ok {
			return v, true
		}
		undefined = append(undefined, name)
		return "", false
	})
	if len(undefined) > 0 {
		sort.Strings(undefined)
		return "", trace.BadParameter("session logger: undefined template variable(s): %s", strings.Join(undefined, ", "))
	}
	return result, nil
}

// substituteTemplate expands every ${name} occurrence in tpl using
// lookup. Unresolved references are dropped from the output; the
// caller inspects lookup's side effects (the undefined slice above) to
// decide whether the whole expansion failed.
func substituteTemplate(tpl string, lookup func(name string) (string, bool)) string {
	var b strings.Builder
	i := 0
	for i < len(tpl) {
		start := strings.Index(tpl[i:], "${")
		if start < 0 {
			b.WriteString(tpl[i:])
			break
		}
		start += i
		b.WriteString(tpl[i:start])
		end := strings.Index(tpl[start:], "}")
		if end < 0 {
			b.WriteString(tpl[start:])
			break
		}
		end += start
		name := tpl[start+2 : end]
		if v, ok := lookup(name); ok {
			b.WriteString(v)
		}
		i = end + 1
	}
	return b.String()
}

func rotateLog(path string, now time.Time) error {
	rotated := path + "." + now.UTC().Format("20060102T150405")
	if err := os.Rename(path, rotated); err != nil && !os.IsNotExist(err) {
		return trace.Wrap(err, "session logger: failed to rotate %q", path)
	}
	return nil
}

// sweepExpiredLogs removes rotated logs in dir older than retentionDays.
// Failures are non-fatal: a blocked sweep should never prevent a session
// from starting.
func sweepExpiredLogs(dir string, retentionDays int, now time.Time) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	cutoff := now.Add(-time.Duration(retentionDays) * 24 * time.Hour)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		// only rotated logs (<name>.<timestamp>, see rotateLog) are swept
		name := entry.Name()
		dot := strings.LastIndexByte(name, '.')
		if dot < 0 {
			continue
		}
		if _, err := time.Parse("20060102T150405", name[dot+1:]); err != nil {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			_ = os.Remove(filepath.Join(dir, entry.Name()))
		}
	}
}
