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

type vncProtocol struct{}

func (vncProtocol) ProtocolID() types.Protocol { return types.ProtocolVNC }
func (vncProtocol) DefaultPort() int           { return 5900 }

func (vncProtocol) Capability() types.Capability {
	return types.Capability{EmbeddedPossible: true, ExternalFallback: true, Clipboard: true}
}

func (vncProtocol) Validate(conn *types.Connection) error {
	if conn.Host == "" {
		return types.InvalidConfig("vnc: host must not be empty")
	}
	if conn.Port <= 0 {
		return types.InvalidConfig("vnc: port must be > 0")
	}
	cfg, ok := conn.Config.Variant().(*types.VNCConfig)
	if !ok {
		return types.InvalidConfig("vnc: connection carries no VNC config")
	}
	if cfg.Compression < 0 || cfg.Compression > 9 {
		return types.InvalidConfig("vnc: compression %d not in [0,9]", cfg.Compression)
	}
	if cfg.Quality < 0 || cfg.Quality > 9 {
		return types.InvalidConfig("vnc: quality %d not in [0,9]", cfg.Quality)
	}
	for _, arg := range cfg.CustomArgs {
		if containsControlBytes(arg) {
			return types.InvalidConfig("vnc: custom arg contains NUL or newline")
		}
	}
	return nil
}

// BuildCommand constructs a vncviewer-style argv. It runs Validate first,
// so a custom arg with NUL or newline makes it return an error; the loop
// below re-checks each arg defensively.
func (p vncProtocol) BuildCommand(conn *types.Connection) ([]string, []string, error) {
	if err := p.Validate(conn); err != nil {
		return nil, nil, trace.Wrap(err)
	}
	cfg := conn.Config.Variant().(*types.VNCConfig)

	argv := []string{conn.Host + ":" + strconv.Itoa(conn.Port)}
	argv = append(argv, "-compresslevel", strconv.Itoa(cfg.Compression))
	argv = append(argv, "-quality", strconv.Itoa(cfg.Quality))

	var warnings []string
	for _, arg := range cfg.CustomArgs {
		if containsControlBytes(arg) {
			warnings = append(warnings, "dropped unsafe custom argument containing control bytes")
			continue
		}
		argv = append(argv, arg)
	}
	return argv, warnings, nil
}
