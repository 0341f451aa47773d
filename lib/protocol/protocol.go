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

// Package protocol implements the Protocol Engine: per-protocol
// validation and external-client argv construction, plus a registry
// exposing capability flags to the UI/CLI collaborators. Embedded
// RDP/VNC/SPICE worker logic lives in lib/protocol/embedded.
package protocol

import (
	"github.com/gravitational/trace"

	"github.com/rustconn/rustconn/api/types"
)

// Protocol is the per-protocol contract named in the data model: tag and
// port identity, deterministic validation, and external-client argv
// construction. Implementations take a *types.Connection and never touch
// the network.
type Protocol interface {
	ProtocolID() types.Protocol
	DefaultPort() int
	Validate(conn *types.Connection) error
	BuildCommand(conn *types.Connection) ([]string, []string, error)
	Capability() types.Capability
}

// Warning is a non-fatal note recorded while building an external
// command, e.g. a filtered dangerous argument.
type Warning struct {
	Message string
}

// registry maps a protocol tag to its Protocol implementation. Built once
// at init time; every entry is a pure, stateless value.
var registry = map[types.Protocol]Protocol{
	types.ProtocolSSH:        sshProtocol{},
	types.ProtocolSFTP:       sftpProtocol{},
	types.ProtocolRDP:        rdpProtocol{},
	types.ProtocolVNC:        vncProtocol{},
	types.ProtocolSPICE:      spiceProtocol{},
	types.ProtocolSerial:     serialProtocol{},
	types.ProtocolTelnet:     telnetProtocol{},
	types.ProtocolKubernetes: kubernetesProtocol{},
	types.ProtocolZeroTrust:  zerotrustProtocol{},
}

// Lookup returns the Protocol implementation registered for tag.
func Lookup(tag types.Protocol) (Protocol, error) {
	p, ok := registry[tag]
	if !ok {
		return nil, trace.BadParameter("unknown protocol %q", tag)
	}
	return p, nil
}

// Validate resolves conn's protocol and runs its validation rules; it is
// the Protocol Engine's entry point ahead of Connection.Validate's
// structural checks (callers typically run both).
func Validate(conn *types.Connection) error {
	p, err := Lookup(conn.Protocol)
	if err != nil {
		return trace.Wrap(err)
	}
	return p.Validate(conn)
}

// BuildCommand resolves conn's protocol and constructs its external-client
// argv, returning any filtering warnings alongside.
func BuildCommand(conn *types.Connection) (argv []string, warnings []string, err error) {
	p, err := Lookup(conn.Protocol)
	if err != nil {
		return nil, nil, trace.Wrap(err)
	}
	return p.BuildCommand(conn)
}
