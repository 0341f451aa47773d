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

// Package embedded implements the in-process RDP/VNC/SPICE worker: a
// background goroutine that owns the TCP connection, the pixel buffer,
// and all protocol state, communicating with the UI exclusively through
// two typed channels.
package embedded

// EventKind tags the concrete payload carried by an Event.
type EventKind string

const (
	EventConnected         EventKind = "connected"
	EventDisconnected      EventKind = "disconnected"
	EventResolutionChanged EventKind = "resolution_changed"
	EventFrameUpdate       EventKind = "frame_update"
	EventFullFrameUpdate   EventKind = "full_frame_update"
	EventCursorUpdate      EventKind = "cursor_update"
	EventCursorPosition    EventKind = "cursor_position"
	EventClipboardText     EventKind = "clipboard_text"
	EventAuthRequired      EventKind = "auth_required"
	EventError             EventKind = "error"
	EventServerMessage     EventKind = "server_message"
	EventChannelOpened     EventKind = "channel_opened"
	EventChannelClosed     EventKind = "channel_closed"
	EventUsbDeviceAdded    EventKind = "usb_device_added"
	EventUsbDeviceRemoved  EventKind = "usb_device_removed"
)

// Rect is a pixel-space rectangle within the current framebuffer.
type Rect struct {
	X, Y, Width, Height int
}

// Event is everything the worker emits toward the UI. Exactly one of the
// payload fields is populated, matching Kind; this mirrors the Rust
// source's enum-of-structs shape without needing a Go sum-type library.
type Event struct {
	Kind EventKind

	// EventResolutionChanged
	Width, Height int

	// EventFrameUpdate / EventFullFrameUpdate
	Rect  Rect
	Pixels []byte // BGRA bytes, Rect.Width*Rect.Height*4 long

	// EventCursorUpdate
	CursorRect   Rect
	CursorPixels []byte

	// EventCursorPosition
	CursorX, CursorY int

	// EventClipboardText
	ClipboardText string

	// EventError
	ErrorMessage string
	// Reconnectable distinguishes "retry makes sense" from a terminal
	// protocol failure.
	Reconnectable bool

	// EventServerMessage
	ServerMessage string

	// EventChannelOpened / EventChannelClosed
	ChannelName string

	// EventUsbDeviceAdded / EventUsbDeviceRemoved
	UsbDeviceID string

	// FallbackReason is set alongside EventError when the failure matches
	// the fallback policy (UnsupportedSecurityType, NativeClientNotAvailable):
	// the caller may retry with the external-client path.
	FallbackReason string
}
