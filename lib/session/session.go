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

// Package session implements the Session Manager: lifecycle tracking,
// health checks, restore-state serialization, and session logging for
// every live Session.
package session

// Worker is the handle a Session holds onto its running backend, either
// an embedded protocol worker or an external-client subprocess. Manager
// keeps it out-of-band, keyed by ID, so the serializable types.Session
// value stays a plain value type per its own doc comment.
type Worker interface {
	// Alive reports whether the underlying task/process is still running.
	Alive() bool
	// Stop requests graceful termination.
	Stop() error
	// Kill forces termination once the grace period has elapsed.
	Kill() error
}
