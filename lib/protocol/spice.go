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

type spiceProtocol struct{}

func (spiceProtocol) ProtocolID() types.Protocol { return types.ProtocolSPICE }
func (spiceProtocol) DefaultPort() int           { return 5900 }

func (spiceProtocol) Capability() types.Capability {
	return types.Capability{EmbeddedPossible: true, ExternalFallback: true, Audio: true, Clipboard: true}
}

func (spiceProtocol) Validate(conn *types.Connection) error {
	if conn.Host == "" {
		return types.InvalidConfig("spice: host must not be empty")
	}
	if conn.Port <= 0 {
		return types.InvalidConfig("spice: port must be > 0")
	}
	if _, ok := conn.Config.Variant().(*types.SPICEConfig); !ok {
		return types.InvalidConfig("spice: connection carries no SPICE config")
	}
	return nil
}

// BuildCommand constructs a remote-viewer-style argv carrying the host,
// port and TLS port; the image compression mode is not passed to the
// external viewer.
func (p spiceProtocol) BuildCommand(conn *types.Connection) ([]string, []string, error) {
	if err := p.Validate(conn); err != nil {
		return nil, nil, trace.Wrap(err)
	}
	cfg := conn.Config.Variant().(*types.SPICEConfig)

	argv := []string{"spice://" + conn.Host + "?port=" + strconv.Itoa(conn.Port)}
	if cfg.TLSPort != 0 {
		argv[0] += "&tls-port=" + strconv.Itoa(cfg.TLSPort)
	}
	return argv, nil, nil
}
