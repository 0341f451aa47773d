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

package variables

import (
	"github.com/gravitational/trace"
)

// SubstituteString implements the "string substitution" mode: undefined
// variables expand to the empty string, secret variables expand to their
// plaintext value in the result.
func SubstituteString(store Store, template, connectionID, documentID string) (string, error) {
	return substitute(store, template, connectionID, documentID, false)
}

// SubstituteForCommand implements "command substitution" mode: identical
// to string substitution, except every substituted value is additionally
// validated with ValidateCommandValue; a violation aborts the whole
// substitution with UnsafeValueError.
func SubstituteForCommand(store Store, template, connectionID, documentID string) (string, error) {
	return substitute(store, template, connectionID, documentID, true)
}

func substitute(store Store, template, connectionID, documentID string, commandMode bool) (string, error) {
	var outerErr error
	out := refPattern.ReplaceAllStringFunc(template, func(m string) string {
		if outerErr != nil {
			return m
		}
		name := refPattern.FindStringSubmatch(m)[1]
		v, ok := store.Lookup(name, connectionID, documentID)
		if !ok {
			return ""
		}
		value, err := expandRefs(store, v.Value, connectionID, documentID, map[string]bool{name: true}, 1)
		if err != nil {
			outerErr = err
			return m
		}
		if commandMode {
			if reason := ValidateCommandValue(value); reason != "" {
				outerErr = trace.Wrap(&UnsafeValueError{Name: name, Reason: reason})
				return m
			}
		}
		return value
	})
	if outerErr != nil {
		return "", outerErr
	}
	return out, nil
}

// UnsafeValueError is returned by command-mode substitution when a
// substituted value contains a disallowed control character.
type UnsafeValueError struct {
	Name   string
	Reason string
}

func (e *UnsafeValueError) Error() string {
	return "unsafe value for " + e.Name + ": " + e.Reason
}
