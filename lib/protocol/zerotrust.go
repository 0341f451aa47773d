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
	"github.com/gravitational/trace"

	"github.com/rustconn/rustconn/api/types"
)

// zerotrustProtocol covers brokered zero-trust tunnels (e.g. a
// Cloudflare- or Teleport-style identity-aware proxy identifier) named in
// the data model but not otherwise detailed by the distilled spec.
type zerotrustProtocol struct{}

func (zerotrustProtocol) ProtocolID() types.Protocol { return types.ProtocolZeroTrust }
func (zerotrustProtocol) DefaultPort() int           { return 443 }

func (zerotrustProtocol) Capability() types.Capability {
	return types.Capability{ExternalFallback: true, Clipboard: true}
}

func (zerotrustProtocol) Validate(conn *types.Connection) error {
	cfg, ok := conn.Config.Variant().(*types.ZeroTrustConfig)
	if !ok {
		return types.InvalidConfig("zerotrust: connection carries no zero-trust config")
	}
	if cfg.TunnelID == "" {
		return types.InvalidConfig("zerotrust: tunnel id must not be empty")
	}
	if conn.Host == "" {
		return types.InvalidConfig("zerotrust: host must not be empty")
	}
	return nil
}

func (p zerotrustProtocol) BuildCommand(conn *types.Connection) ([]string, []string, error) {
	if err := p.Validate(conn); err != nil {
		return nil, nil, trace.Wrap(err)
	}
	cfg := conn.Config.Variant().(*types.ZeroTrustConfig)

	argv := []string{"cloudflared", "access", "tcp", "--hostname", conn.Host, "--id", cfg.TunnelID}
	if cfg.Resource != "" {
		argv = append(argv, "--resource", cfg.Resource)
	}
	return argv, nil, nil
}
