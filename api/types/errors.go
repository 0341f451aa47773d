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

import (
	"errors"
	"fmt"

	"github.com/gravitational/trace"
)

// Kind classifies a core error into one of the taxonomy buckets from the
// error handling design: Configuration, Credentials, Protocol, Connection,
// Session, Storage. The Kind never changes the underlying trace.Error
// semantics (IsBadParameter, IsNotFound, ...) -- it is additive, so the CLI
// can map a Kind to an exit code without inspecting error strings.
type Kind string

const (
	KindConfiguration Kind = "configuration"
	KindCredentials   Kind = "credentials"
	KindProtocol      Kind = "protocol"
	KindConnection    Kind = "connection"
	KindSession       Kind = "session"
	KindStorage       Kind = "storage"
)

// CoreError wraps an underlying error with a taxonomy Kind. Logs should
// always include the Kind; CoreError never stores secret-typed fields.
type CoreError struct {
	Kind    Kind
	Reason  string
	wrapped error
}

func (e *CoreError) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Reason, e.wrapped)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

// Unwrap lets errors.As/errors.Is and trace.Is* see through to the
// underlying error.
func (e *CoreError) Unwrap() error {
	return e.wrapped
}

// NewError builds a CoreError of the given kind wrapping err (which may be
// nil, e.g. for a plain validation message).
func NewError(kind Kind, err error, format string, args ...any) error {
	return trace.Wrap(&CoreError{
		Kind:    kind,
		Reason:  fmt.Sprintf(format, args...),
		wrapped: err,
	})
}

// InvalidConfig builds a Configuration-kind error, the result type
// consumed by the Protocol Engine's validate calls.
func InvalidConfig(format string, args ...any) error {
	return NewError(KindConfiguration, nil, format, args...)
}

// ErrorKind extracts the Kind from err if it (or something it wraps) is a
// *CoreError; the zero Kind ("") is returned otherwise.
func ErrorKind(err error) Kind {
	var ce *CoreError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ""
}
