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

type telnetProtocol struct{}

func (telnetProtocol) ProtocolID() types.Protocol { return types.ProtocolTelnet }
func (telnetProtocol) DefaultPort() int           { return 23 }

func (telnetProtocol) Capability() types.Capability {
	return types.Capability{ExternalFallback: true, TerminalBased: true}
}

func (telnetProtocol) Validate(conn *types.Connection) error {
	if conn.Host == "" {
		return types.InvalidConfig("telnet: host must not be empty")
	}
	if conn.Port <= 0 {
		return types.InvalidConfig("telnet: port must be > 0")
	}
	return nil
}

func (p telnetProtocol) BuildCommand(conn *types.Connection) ([]string, []string, error) {
	if err := p.Validate(conn); err != nil {
		return nil, nil, trace.Wrap(err)
	}
	return []string{"telnet", conn.Host, strconv.Itoa(conn.Port)}, nil, nil
}
