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

package utils

import "github.com/sirupsen/logrus"

// NewDefaultTextFormatter returns the text formatter used for CLI/daemon
// output: component-tagged, full timestamps, colored when writing to a
// terminal.
func NewDefaultTextFormatter(enableColors bool) logrus.Formatter {
	return &logrus.TextFormatter{
		ForceColors:     enableColors,
		DisableColors:   !enableColors,
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	}
}

// NewTestJSONFormatter returns a JSON formatter for test output, so
// log lines interleave predictably with `go test -v`.
func NewTestJSONFormatter() logrus.Formatter {
	return &logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"}
}
