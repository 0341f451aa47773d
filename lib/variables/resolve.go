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

// Package variables implements the hierarchical variable resolution chain
// (Connection -> Document -> Global) with cycle detection and the two
// substitution modes (string, command-safe) described in the spec.
package variables

import (
	"regexp"

	"github.com/gravitational/trace"

	"github.com/rustconn/rustconn/api/types"
)

// MaxDepth is the deepest a chain of ${...} references may recurse before
// resolution gives up with MaxDepthExceeded.
const MaxDepth = 10

var refPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Store is the read-only view the resolver needs into the three scopes.
// The persistence collaborator supplies the concrete implementation; core
// resolution logic never mutates it.
type Store interface {
	// Lookup returns the variable visible at scope/scopeID with the given
	// name, preferring the most specific scope: Connection, then
	// Document, then Global.
	Lookup(name string, connectionID, documentID string) (types.Variable, bool)
}

// CircularReferenceError is returned when resolving name recurses back
// into a variable already on the current resolution path.
type CircularReferenceError struct {
	Name string
}

func (e *CircularReferenceError) Error() string {
	return "circular reference: " + e.Name
}

// MaxDepthExceededError is returned when resolution recurses past MaxDepth.
type MaxDepthExceededError struct {
	Name string
}

func (e *MaxDepthExceededError) Error() string {
	return "max depth exceeded resolving: " + e.Name
}

// Resolve looks up name in store (Connection -> Document -> Global),
// recursively substituting any ${...} references the value itself
// contains. connectionID/documentID may be empty to resolve only at wider
// scopes.
func Resolve(store Store, name, connectionID, documentID string) (string, error) {
	return resolve(store, name, connectionID, documentID, map[string]bool{}, 0)
}

func resolve(store Store, name, connectionID, documentID string, visiting map[string]bool, depth int) (string, error) {
	if depth > MaxDepth {
		return "", trace.Wrap(&MaxDepthExceededError{Name: name})
	}
	if visiting[name] {
		return "", trace.Wrap(&CircularReferenceError{Name: name})
	}
	v, ok := store.Lookup(name, connectionID, documentID)
	if !ok {
		return "", trace.NotFound("variable %q not found", name)
	}

	visiting[name] = true
	defer delete(visiting, name)

	return expandRefs(store, v.Value, connectionID, documentID, visiting, depth+1)
}

// expandRefs substitutes every ${name} occurrence in value by recursively
// resolving name, propagating the visiting set so cycles anywhere in the
// expansion are caught.
func expandRefs(store Store, value, connectionID, documentID string, visiting map[string]bool, depth int) (string, error) {
	var outerErr error
	out := refPattern.ReplaceAllStringFunc(value, func(m string) string {
		if outerErr != nil {
			return m
		}
		name := refPattern.FindStringSubmatch(m)[1]
		resolved, err := resolve(store, name, connectionID, documentID, visiting, depth)
		if err != nil {
			outerErr = err
			return m
		}
		return resolved
	})
	if outerErr != nil {
		return "", outerErr
	}
	return out, nil
}
