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
	"strconv"

	"github.com/gravitational/trace"

	"github.com/rustconn/rustconn/api/types"
)

// sftpProtocol reuses the SSH transport's validation verbatim (spec:
// "same checks as SSH (same transport)"), and an `sftp` instead of `ssh`
// external client.
type sftpProtocol struct{}

func (sftpProtocol) ProtocolID() types.Protocol { return types.ProtocolSFTP }
func (sftpProtocol) DefaultPort() int           { return 22 }

func (sftpProtocol) Capability() types.Capability {
	return types.Capability{ExternalFallback: true, FileTransfer: true, TerminalBased: false}
}

func (sftpProtocol) Validate(conn *types.Connection) error {
	return validateSSHLike(conn)
}

func (sftpProtocol) BuildCommand(conn *types.Connection) ([]string, []string, error) {
	if err := validateSSHLike(conn); err != nil {
		return nil, nil, trace.Wrap(err)
	}
	cfg, _ := sshConfigOf(conn)

	argv := []string{"sftp", "-P", strconv.Itoa(conn.Port)}
	if cfg.KeyPath != "" {
		argv = append(argv, "-i", cfg.KeyPath)
	}
	target := conn.Host
	if conn.Username != "" {
		target = conn.Username + "@" + conn.Host
	}
	argv = append(argv, target)
	return argv, nil, nil
}
