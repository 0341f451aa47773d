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

package embedded

import "github.com/rustconn/rustconn/lib/secret"

// CommandKind tags the concrete payload carried by a Command.
type CommandKind string

const (
	CommandDisconnect         CommandKind = "disconnect"
	CommandKeyEvent           CommandKind = "key_event"
	CommandPointerEvent       CommandKind = "pointer_event"
	CommandWheelEvent         CommandKind = "wheel_event"
	CommandClipboardText      CommandKind = "clipboard_text"
	CommandRefreshScreen      CommandKind = "refresh_screen"
	CommandSetDesktopSize     CommandKind = "set_desktop_size"
	CommandSendCtrlAltDel     CommandKind = "send_ctrl_alt_del"
	CommandAuthenticate       CommandKind = "authenticate"
	CommandSetUsbRedirection  CommandKind = "set_usb_redirection"
	CommandRedirectDevice     CommandKind = "redirect_device"
	CommandUnredirectDevice   CommandKind = "unredirect_device"
	CommandSetClipboardEnabled CommandKind = "set_clipboard_enabled"
)

// Command is everything the UI sends toward the worker over the Commands
// channel. Exactly one payload field is populated, matching Kind.
type Command struct {
	Kind CommandKind

	// CommandKeyEvent
	Scancode int
	Pressed  bool

	// CommandPointerEvent
	X, Y    int
	Buttons uint8

	// CommandWheelEvent
	DeltaX, DeltaY int

	// CommandClipboardText
	ClipboardText string

	// CommandSetDesktopSize
	Width, Height int

	// CommandAuthenticate
	Secret *secret.Text

	// CommandSetUsbRedirection
	Enabled bool

	// CommandRedirectDevice / CommandUnredirectDevice
	DeviceID string

	// CommandSetClipboardEnabled
	ClipboardEnabled bool
}
