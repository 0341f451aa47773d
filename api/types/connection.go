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
	"os"
	"time"
)

// Protocol is the tag identifying which ProtocolConfig variant a
// Connection carries.
type Protocol string

const (
	ProtocolSSH        Protocol = "ssh"
	ProtocolRDP        Protocol = "rdp"
	ProtocolVNC        Protocol = "vnc"
	ProtocolSPICE      Protocol = "spice"
	ProtocolTelnet     Protocol = "telnet"
	ProtocolSerial     Protocol = "serial"
	ProtocolSFTP       Protocol = "sftp"
	ProtocolKubernetes Protocol = "kubernetes"
	ProtocolZeroTrust  Protocol = "zerotrust"
)

// AuthMethod enumerates how an SSH-family connection authenticates.
type AuthMethod string

const (
	AuthPassword    AuthMethod = "password"
	AuthPublicKey   AuthMethod = "publickey"
	AuthSecurityKey AuthMethod = "security-key"
	AuthAgent       AuthMethod = "agent"
	AuthKerberos    AuthMethod = "kerberos"
)

// PropertyKind tags a CustomProperty value's rendering/storage semantics.
type PropertyKind string

const (
	PropertyText      PropertyKind = "text"
	PropertyURL       PropertyKind = "url"
	PropertyProtected PropertyKind = "protected"
)

// CustomProperty is a user-defined name/value pair attached to a
// Connection, typed so the UI collaborator knows whether to mask it.
type CustomProperty struct {
	Name  string
	Value string
	Kind  PropertyKind
}

// WakeOnLAN is the magic-packet payload a Connection may carry so the
// Session Manager can wake a host before attempting a session.
type WakeOnLAN struct {
	MACAddress  string
	BroadcastIP string
	Port        int
}

// RetryPolicy configures Session Manager reconnect/backoff behavior. See
// lib/session.RetryPolicy for the delay/should_retry formulas.
type RetryPolicy struct {
	Enabled          bool
	MaxAttempts      int
	InitialDelayMS   int64
	MaxDelayMS       int64
	BackoffMultiplier float64
}

// DefaultRetryPolicy returns the conservative defaults used when a
// Connection does not declare one.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Enabled:           true,
		MaxAttempts:       5,
		InitialDelayMS:    500,
		MaxDelayMS:        30_000,
		BackoffMultiplier: 2.0,
	}
}

// MonitoringOverride lets a Connection opt in/out of the Monitoring
// Collector independent of the application-wide default.
type MonitoringOverride struct {
	// Set indicates the override is present; when false the global default
	// applies and Enabled/IntervalSeconds are ignored.
	Set             bool
	Enabled         bool
	IntervalSeconds int
}

// Connection is the central data-model entity: a named, addressable
// remote target plus its protocol-specific configuration. Connection is a
// pure value type -- it carries no handles, no IO, and Validate never
// touches the network.
type Connection struct {
	ID          string
	Name        string
	Host        string
	Port        int
	Protocol    Protocol
	Username    string
	Domain      string
	Description string
	Icon        string
	Pinned      bool
	Tags        []string
	GroupID     string
	DocumentID  string

	Config ProtocolConfig

	Monitoring MonitoringOverride
	WOL        *WakeOnLAN
	Retry      *RetryPolicy

	CustomProperties []CustomProperty

	CreatedAt       time.Time
	UpdatedAt       time.Time
	LastConnectedAt *time.Time
}

// Validate checks the invariants listed in the data model: port rules,
// protocol/config agreement, group-id existence within doc, and that a
// declared publickey path exists on disk. Validate is deterministic and
// never opens a network socket. docHasGroup reports whether groupID is a
// known group in the connection's document (nil means "skip the check",
// used by callers validating a standalone Connection).
func (c *Connection) Validate(docHasGroup func(groupID string) bool) error {
	if c.Host == "" && c.Protocol != ProtocolSerial {
		return InvalidConfig("connection %q: host must not be empty", c.Name)
	}
	if c.Protocol != ProtocolSerial && c.Port <= 0 {
		return InvalidConfig("connection %q: port must be > 0", c.Name)
	}
	if err := c.Config.checkTag(c.Protocol); err != nil {
		return InvalidConfig("connection %q: %v", c.Name, err)
	}
	if c.GroupID != "" && docHasGroup != nil && !docHasGroup(c.GroupID) {
		return InvalidConfig("connection %q: group %q does not exist in document", c.Name, c.GroupID)
	}
	if ssh, ok := c.Config.variant.(*SSHConfig); ok {
		if (ssh.AuthMethod == AuthPublicKey || ssh.AuthMethod == AuthSecurityKey) && ssh.KeyPath != "" {
			if _, err := os.Stat(ssh.KeyPath); err != nil {
				return InvalidConfig("connection %q: key path %q: %v", c.Name, ssh.KeyPath, err)
			}
		}
	}
	return nil
}

// DefaultPort returns protocol's conventional port, used to prefill new
// connections; it is also exposed per-protocol via Protocol Engine's
// Protocol.DefaultPort().
func (p Protocol) DefaultPort() int {
	switch p {
	case ProtocolSSH, ProtocolSFTP:
		return 22
	case ProtocolRDP:
		return 3389
	case ProtocolVNC:
		return 5900
	case ProtocolSPICE:
		return 5900
	case ProtocolTelnet:
		return 23
	case ProtocolKubernetes:
		return 0
	case ProtocolZeroTrust:
		return 443
	default:
		return 0
	}
}
