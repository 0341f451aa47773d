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

package protocol

import (
	"os"
	"strconv"

	"github.com/gravitational/trace"

	"github.com/rustconn/rustconn/api/types"
)

type sshProtocol struct{}

func (sshProtocol) ProtocolID() types.Protocol { return types.ProtocolSSH }
func (sshProtocol) DefaultPort() int           { return 22 }

func (sshProtocol) Capability() types.Capability {
	return types.Capability{ExternalFallback: true, FileTransfer: false, Clipboard: false, TerminalBased: true}
}

func (sshProtocol) Validate(conn *types.Connection) error {
	return validateSSHLike(conn)
}

// validateSSHLike implements the shared SSH/SFTP transport checks: host
// non-empty, port > 0, and when auth is publickey/security-key, the
// declared key path exists.
func validateSSHLike(conn *types.Connection) error {
	if conn.Host == "" {
		return types.InvalidConfig("ssh: host must not be empty")
	}
	if conn.Port <= 0 {
		return types.InvalidConfig("ssh: port must be > 0")
	}
	cfg, ok := sshConfigOf(conn)
	if !ok {
		return types.InvalidConfig("ssh: connection carries no SSH config")
	}
	if (cfg.AuthMethod == types.AuthPublicKey || cfg.AuthMethod == types.AuthSecurityKey) && cfg.KeyPath != "" {
		if _, err := os.Stat(cfg.KeyPath); err != nil {
			return types.InvalidConfig("ssh: key path %q: %v", cfg.KeyPath, err)
		}
	}
	return nil
}

// sshConfigOf extracts the embedded *SSHConfig from either an SSHConfig
// or SFTPConfig variant.
func sshConfigOf(conn *types.Connection) (*types.SSHConfig, bool) {
	switch v := conn.Config.Variant().(type) {
	case *types.SSHConfig:
		return v, true
	case *types.SFTPConfig:
		return &v.SSHConfig, true
	default:
		return nil, false
	}
}

// BuildCommand constructs a plain `ssh` argv: `ssh -p <port> [-l <user>]
// [-J <proxyjump>] [-i <keypath>] <host>`. Scenario 1 from the testable
// properties: host=example.com, port=22, auth=password yields
// `["ssh","-p","22","example.com"]` as a set (flag order may differ).
func (sshProtocol) BuildCommand(conn *types.Connection) ([]string, []string, error) {
	if err := validateSSHLike(conn); err != nil {
		return nil, nil, trace.Wrap(err)
	}
	cfg, _ := sshConfigOf(conn)

	argv := []string{"ssh", "-p", strconv.Itoa(conn.Port)}
	if conn.Username != "" {
		argv = append(argv, "-l", conn.Username)
	}
	if cfg.ProxyJump != "" {
		argv = append(argv, "-J", cfg.ProxyJump)
	}
	if cfg.KeyPath != "" {
		argv = append(argv, "-i", cfg.KeyPath)
	}
	argv = append(argv, conn.Host)
	return argv, nil, nil
}
