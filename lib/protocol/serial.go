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

type serialProtocol struct{}

func (serialProtocol) ProtocolID() types.Protocol { return types.ProtocolSerial }
func (serialProtocol) DefaultPort() int           { return 0 }

func (serialProtocol) Capability() types.Capability {
	return types.Capability{ExternalFallback: true, TerminalBased: true}
}

func (serialProtocol) Validate(conn *types.Connection) error {
	cfg, ok := conn.Config.Variant().(*types.SerialConfig)
	if !ok {
		return types.InvalidConfig("serial: connection carries no serial config")
	}
	if cfg.Device == "" {
		return types.InvalidConfig("serial: device path must not be empty")
	}
	return nil
}

// BuildCommand constructs a picocom-style argv.
func (p serialProtocol) BuildCommand(conn *types.Connection) ([]string, []string, error) {
	if err := p.Validate(conn); err != nil {
		return nil, nil, trace.Wrap(err)
	}
	cfg := conn.Config.Variant().(*types.SerialConfig)

	baud := cfg.BaudRate
	if baud == 0 {
		baud = 9600
	}
	argv := []string{"picocom", "-b", strconv.Itoa(baud)}
	if cfg.Parity != "" {
		argv = append(argv, "-y", parityFlag(cfg.Parity))
	}
	if cfg.StopBits != 0 {
		argv = append(argv, "-s", strconv.Itoa(cfg.StopBits))
	}
	if cfg.FlowControl != "" {
		argv = append(argv, "-f", flowControlFlag(cfg.FlowControl))
	}
	argv = append(argv, cfg.Device)
	return argv, nil, nil
}

func parityFlag(p string) string {
	switch p {
	case "even":
		return "e"
	case "odd":
		return "o"
	default:
		return "n"
	}
}

func flowControlFlag(f string) string {
	switch f {
	case "xonxoff":
		return "x"
	case "rtscts":
		return "h"
	default:
		return "n"
	}
}
