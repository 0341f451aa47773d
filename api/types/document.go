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

// Document groups a set of Connections, Groups, and Variables under one
// file-backed unit -- the scope boundary used by Variable resolution's
// Document tier and by a Connection's optional DocumentID.
type Document struct {
	ID   string
	Name string
	Path string
}

// Template is a named, reusable Connection skeleton: most fields mirror
// Connection but every field is optional, since a Template is filled in
// (not validated) until instantiated into a concrete Connection.
type Template struct {
	ID          string
	Name        string
	Protocol    Protocol
	Config      ProtocolConfig
	Description string
}

// Instantiate produces a concrete Connection from the template, applying
// name/host overrides. The result still must pass Connection.Validate
// before it is usable.
func (t Template) Instantiate(name, host string) Connection {
	return Connection{
		Name:     name,
		Host:     host,
		Port:     t.Protocol.DefaultPort(),
		Protocol: t.Protocol,
		Config:   t.Config,
	}
}

// Cluster is a named set of Connection IDs that can be driven together
// (e.g. broadcast input), mirroring the CLI's "cluster" verb group.
type Cluster struct {
	ID            string
	Name          string
	ConnectionIDs []string
}

// Snippet is a reusable named command string, insertable into a terminal
// session by the UI collaborator; the core only stores and validates it.
type Snippet struct {
	ID      string
	Name    string
	Command string
}
