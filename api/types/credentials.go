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

import "github.com/rustconn/rustconn/lib/secret"

// Credentials is the result of a successful Credential Broker resolution.
// Secret fields never appear in Debug output, serialization, or logs --
// that invariant is enforced structurally by secret.Text, not by
// discipline at each call site.
type Credentials struct {
	Username      string
	Domain        string
	Password      *secret.Text
	KeyPassphrase *secret.Text
}

// IsEmpty reports whether the credentials carry no identifying material
// at all (used to distinguish "no credentials were needed" from a
// resolved-but-blank username/password pair).
func (c Credentials) IsEmpty() bool {
	return c.Username == "" && c.Domain == "" && c.Password.IsEmpty() && c.KeyPassphrase.IsEmpty()
}

// WithOverrides returns a copy of c with username/domain replaced by the
// connection's per-connection overrides when set, implementing the
// broker's merge step: "password always comes from the backend".
func (c Credentials) WithOverrides(username, domain string) Credentials {
	out := c
	if username != "" {
		out.Username = username
	}
	if domain != "" {
		out.Domain = domain
	}
	return out
}
