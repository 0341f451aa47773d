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

import "fmt"

// ProtocolConfig is a tagged-variant sum type: exactly one concrete
// *XxxConfig struct populated, matching the Protocol tag on the owning
// Connection. Per the design notes, this plus a capability table is
// preferred over a class hierarchy: one Protocol interface (see
// lib/protocol) with four methods, and pure functions taking a Connection.
type ProtocolConfig struct {
	variant any
}

// NewProtocolConfig wraps a concrete per-protocol config value.
func NewProtocolConfig(v any) ProtocolConfig {
	return ProtocolConfig{variant: v}
}

// Variant returns the underlying concrete config, or nil if unset.
func (p ProtocolConfig) Variant() any {
	return p.variant
}

// checkTag verifies the populated variant matches the declared protocol
// tag, per the Connection invariant "protocol tag and protocol-config
// variant agree".
func (p ProtocolConfig) checkTag(tag Protocol) error {
	if p.variant == nil {
		return fmt.Errorf("protocol %q has no config", tag)
	}
	var gotTag Protocol
	switch p.variant.(type) {
	case *SSHConfig:
		gotTag = ProtocolSSH
	case *SFTPConfig:
		gotTag = ProtocolSFTP
	case *RDPConfig:
		gotTag = ProtocolRDP
	case *VNCConfig:
		gotTag = ProtocolVNC
	case *SPICEConfig:
		gotTag = ProtocolSPICE
	case *SerialConfig:
		gotTag = ProtocolSerial
	case *TelnetConfig:
		gotTag = ProtocolTelnet
	case *KubernetesConfig:
		gotTag = ProtocolKubernetes
	case *ZeroTrustConfig:
		gotTag = ProtocolZeroTrust
	default:
		return fmt.Errorf("unrecognized protocol config type %T", p.variant)
	}
	if gotTag != tag {
		return fmt.Errorf("protocol tag %q does not match config variant %q", tag, gotTag)
	}
	return nil
}

// SSHConfig carries SSH- (and SFTP-) specific validated fields.
type SSHConfig struct {
	AuthMethod AuthMethod
	KeyPath    string
	ProxyJump  string
	Port22Only bool
}

// SFTPConfig reuses the SSH transport contract verbatim (spec: "same
// checks as SSH (same transport)").
type SFTPConfig struct {
	SSHConfig
	RemotePath string
}

// RDPConfig carries RDP-specific validated fields.
type RDPConfig struct {
	Resolution     string // e.g. "1920x1080"
	ColorDepth     int    // one of 8,15,16,24,32
	Gateway        string
	SharedFolders  []string // host paths shared in; no path separators in the *name*
	CustomArgs     []string
	Domain         string
}

// VNCConfig carries VNC-specific validated fields.
type VNCConfig struct {
	Compression int // [0,9]
	Quality     int // [0,9]
	CustomArgs  []string
}

// SPICEConfig carries SPICE-specific validated fields.
type SPICEConfig struct {
	TLSPort           int
	ImageCompression  string // stored only; no builder or worker in this repository reads it
	EnableUSBRedirect bool
}

// SerialConfig carries serial-line specific validated fields.
type SerialConfig struct {
	Device       string
	BaudRate     int
	Parity       string // "none" | "even" | "odd"
	StopBits     int    // 1 | 2
	FlowControl  string // "none" | "xonxoff" | "rtscts"
}

// TelnetConfig carries telnet-specific validated fields.
type TelnetConfig struct{}

// KubernetesConfig carries kubernetes exec-specific validated fields.
type KubernetesConfig struct {
	Namespace string
	PodName   string
	Container string
	ShellPath string
}

// ZeroTrustConfig carries zero-trust tunnel fields (e.g. a Cloudflare- or
// Teleport-style brokered tunnel identifier).
type ZeroTrustConfig struct {
	TunnelID string
	Resource string
}

// Capability flags, one set per protocol, populated by the Protocol
// Engine's registry and consumed by the UI/CLI collaborators to decide
// what controls to expose.
type Capability struct {
	EmbeddedPossible bool
	ExternalFallback bool
	FileTransfer     bool
	Audio            bool
	Clipboard        bool
	TerminalBased    bool
}
