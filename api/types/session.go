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

package types

import "time"

// SessionState is a live Session's position in the Session Manager's
// lifecycle state machine.
type SessionState string

const (
	SessionStarting      SessionState = "starting"
	SessionActive        SessionState = "active"
	SessionDisconnecting SessionState = "disconnecting"
	SessionTerminated    SessionState = "terminated"
	SessionError         SessionState = "error"
)

// Session is a live instance of a Connection with an attached worker.
// The worker handle itself (subprocess or task) is not part of the value
// type -- Session Manager keeps it out-of-band keyed by ID, so Session
// stays a plain, serializable-for-restore value.
type Session struct {
	ID           string
	ConnectionID string
	State        SessionState
	StartedAt    time.Time
	EndedAt      *time.Time
	BytesIn      uint64
	BytesOut     uint64
	Embedded     bool
	ErrorMessage string
}
