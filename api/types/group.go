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

// PasswordSource tags how a Group's members should resolve credentials
// when they don't declare their own: inherit up the chain, read from a
// vault, or have none.
type PasswordSource string

const (
	PasswordSourceNone    PasswordSource = ""
	PasswordSourceInherit PasswordSource = "inherit"
	PasswordSourceVault   PasswordSource = "vault"
)

// Group is a hierarchical container for Connections. Per the design
// notes, groups avoid deep inheritance machinery: they are just
// (id, name, parent) records, and every operation that cares about
// ancestry walks the chain at resolution time rather than maintaining a
// materialized tree.
type Group struct {
	ID                  string
	Name                string
	ParentID            string
	InheritedCredentials *Credentials
	PasswordSource      PasswordSource
}

// GroupLookup resolves a group by id within a document; used by chain
// walks (acyclicity check, credential inheritance) that need more than one
// group at a time.
type GroupLookup func(id string) (Group, bool)

// WouldCycle reports whether reparenting group id under newParent would
// create a cycle in lookup's parent chain. Callers must reject the move
// when this returns true.
func WouldCycle(id, newParent string, lookup GroupLookup) bool {
	if id == newParent {
		return true
	}
	seen := map[string]bool{id: true}
	cur := newParent
	for cur != "" {
		if seen[cur] {
			return true
		}
		seen[cur] = true
		g, ok := lookup(cur)
		if !ok {
			return false
		}
		cur = g.ParentID
	}
	return false
}

// VaultAncestor walks up from startGroupID looking for the nearest
// ancestor (inclusive) whose PasswordSource is Vault. It is the building
// block for the Credential Broker's lookup-key computation (spec 4.B
// step 1): for each ancestor with PasswordSource=Inherit, keep walking
// until a Vault group is found.
func VaultAncestor(startGroupID string, lookup GroupLookup) (Group, bool) {
	cur := startGroupID
	depth := 0
	for cur != "" && depth < 64 {
		g, ok := lookup(cur)
		if !ok {
			return Group{}, false
		}
		if g.PasswordSource == PasswordSourceVault {
			return g, true
		}
		if g.PasswordSource != PasswordSourceInherit {
			return Group{}, false
		}
		cur = g.ParentID
		depth++
	}
	return Group{}, false
}
