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
	"fmt"
	"strconv"
	"strings"

	"github.com/gravitational/trace"

	"github.com/rustconn/rustconn/api/types"
)

type rdpProtocol struct{}

func (rdpProtocol) ProtocolID() types.Protocol { return types.ProtocolRDP }
func (rdpProtocol) DefaultPort() int           { return 3389 }

func (rdpProtocol) Capability() types.Capability {
	return types.Capability{
		EmbeddedPossible: true,
		ExternalFallback: true,
		FileTransfer:     true,
		Audio:            true,
		Clipboard:        true,
	}
}

var validColorDepths = map[int]bool{8: true, 15: true, 16: true, 24: true, 32: true}

func (rdpProtocol) Validate(conn *types.Connection) error {
	if conn.Host == "" {
		return types.InvalidConfig("rdp: host must not be empty")
	}
	if conn.Port <= 0 {
		return types.InvalidConfig("rdp: port must be > 0")
	}
	cfg, ok := conn.Config.Variant().(*types.RDPConfig)
	if !ok {
		return types.InvalidConfig("rdp: connection carries no RDP config")
	}
	if cfg.ColorDepth != 0 && !validColorDepths[cfg.ColorDepth] {
		return types.InvalidConfig("rdp: color depth %d not one of 8,15,16,24,32", cfg.ColorDepth)
	}
	if cfg.Resolution != "" {
		if _, _, err := parseResolution(cfg.Resolution); err != nil {
			return types.InvalidConfig("rdp: %v", err)
		}
	}
	for _, folder := range cfg.SharedFolders {
		if hasPathSeparator(folderName(folder)) {
			return types.InvalidConfig("rdp: shared folder name %q must not contain a path separator", folder)
		}
	}
	return nil
}

func parseResolution(res string) (width, height int, err error) {
	parts := strings.SplitN(res, "x", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("resolution %q must be WIDTHxHEIGHT", res)
	}
	width, err = strconv.Atoi(parts[0])
	if err != nil || width <= 0 {
		return 0, 0, fmt.Errorf("resolution %q has an invalid width", res)
	}
	height, err = strconv.Atoi(parts[1])
	if err != nil || height <= 0 {
		return 0, 0, fmt.Errorf("resolution %q has an invalid height", res)
	}
	return width, height, nil
}

// folderName extracts the share-name portion of a "name=hostpath" shared
// folder entry; a bare entry with no "=" is taken as the name itself.
func folderName(folder string) string {
	if idx := strings.IndexByte(folder, '='); idx >= 0 {
		return folder[:idx]
	}
	return folder
}

// BuildCommand constructs an xfreerdp-style argv. Scenario 2: custom args
// `["/p:secret", "/bpp:24"]` must exclude `/p:secret`, include `/bpp:24`,
// and record a warning for the dropped argument.
func (p rdpProtocol) BuildCommand(conn *types.Connection) ([]string, []string, error) {
	if err := p.Validate(conn); err != nil {
		return nil, nil, trace.Wrap(err)
	}
	cfg := conn.Config.Variant().(*types.RDPConfig)

	argv := []string{"/v:" + conn.Host + ":" + strconv.Itoa(conn.Port)}
	if conn.Username != "" {
		user := conn.Username
		if cfg.Domain != "" {
			argv = append(argv, "/d:"+cfg.Domain)
		}
		argv = append(argv, "/u:"+user)
	}
	if cfg.Resolution != "" {
		argv = append(argv, "/size:"+cfg.Resolution)
	}
	if cfg.ColorDepth != 0 {
		argv = append(argv, "/bpp:"+strconv.Itoa(cfg.ColorDepth))
	}
	if cfg.Gateway != "" {
		argv = append(argv, "/g:"+cfg.Gateway)
	}
	for _, folder := range cfg.SharedFolders {
		argv = append(argv, "/drive:"+folder)
	}

	filtered, warnings := filterDangerousArgs(cfg.CustomArgs)
	argv = append(argv, filtered...)

	return argv, warnings, nil
}
