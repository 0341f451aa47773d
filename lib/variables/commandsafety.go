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

package variables

// ValidateCommandValue reports why value is unsafe to interpolate into a
// shell command, or "" if it is safe. It rejects NUL, CR, LF, and any C0
// control character other than TAB (0x09), which is explicitly permitted.
func ValidateCommandValue(value string) string {
	for _, r := range value {
		switch {
		case r == 0x00:
			return "contains NUL"
		case r == '\r':
			return "contains CR"
		case r == '\n':
			return "contains LF"
		case r == '\t':
			continue
		case r < 0x20:
			return "contains disallowed control character"
		}
	}
	return ""
}
