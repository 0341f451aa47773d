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

import "strings"

// dangerousPrefixes are custom-argument prefixes that smuggle a password
// or shell command inline, or override the transport proxy; every
// protocol's custom-args filtering rejects these case-insensitively against
// the argument prefix (not a substring match, since that would also
// reject e.g. a window title containing "/p:").
var dangerousPrefixes = []string{
	"/p:", "/password:", "/shell:", "/proxy:", "--proxy=", "-proxy",
}

// filterDangerousArgs splits rawArgs into (kept, warnings), dropping any
// argument matching a dangerous prefix and recording a warning for each
// drop, per the spec's "filter dangerous arguments" requirement.
func filterDangerousArgs(rawArgs []string) (kept []string, warnings []string) {
	for _, arg := range rawArgs {
		if isDangerousArg(arg) {
			warnings = append(warnings, "dropped unsafe custom argument: "+arg)
			continue
		}
		kept = append(kept, arg)
	}
	return kept, warnings
}

func isDangerousArg(arg string) bool {
	lower := strings.ToLower(arg)
	for _, prefix := range dangerousPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

// containsControlBytes reports whether s contains a NUL byte or a
// newline, used to reject custom VNC/RDP arguments that could break out
// of a single argv element when later interpreted by a shell wrapper.
func containsControlBytes(s string) bool {
	for _, r := range s {
		if r == 0 || r == '\n' || r == '\r' {
			return true
		}
	}
	return false
}

// hasPathSeparator reports whether name contains a path separator,
// rejected for RDP shared-folder *names* (not the host path itself).
func hasPathSeparator(name string) bool {
	return strings.ContainsAny(name, "/\\")
}
