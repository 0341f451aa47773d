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

package credentials

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net"
	"time"

	"golang.org/x/crypto/nacl/box"

	"github.com/rustconn/rustconn/api/types"
	"github.com/rustconn/rustconn/lib/secret"
)

// keepassxcMessage is the envelope shared by every KeePassXC-Browser
// protocol request and reply: a base64 nonce plus a base64
// nacl/box-sealed payload, alongside the unencrypted client/action
// identifiers the server needs to route the message.
type keepassxcMessage struct {
	Action    string `json:"action"`
	Message   string `json:"message,omitempty"`
	Nonce     string `json:"nonce"`
	ClientID  string `json:"clientID"`
	PublicKey string `json:"publicKey,omitempty"`
	Success   string `json:"success,omitempty"`
	Error     string `json:"error,omitempty"`
}

type keepassxcGetLoginsPayload struct {
	URL string `json:"url"`
}

type keepassxcLoginEntry struct {
	Login    string `json:"login"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type keepassxcGetLoginsReply struct {
	Entries []keepassxcLoginEntry `json:"entries"`
}

// KeePassXCBackend talks to a running KeePassXC instance over its local
// Unix domain socket using the browser-integration protocol: a NaCl box
// handshake establishes a shared key, after which every message is
// nacl/box-sealed with a fresh nonce.
type KeePassXCBackend struct {
	socketPath string
	clientID   string
	ourPub     *[32]byte
	ourPriv    *[32]byte
	dialTimeout time.Duration
}

// NewKeePassXCBackend prepares a backend that will dial socketPath
// (typically the org.keepassxc.KeePassXC.BrowserServer socket under
// XDG_RUNTIME_DIR) on each lookup; KeePassXC sockets are per-session and
// may not exist, which Lookup surfaces as StatusUnavailable.
func NewKeePassXCBackend(socketPath string) (*KeePassXCBackend, error) {
	pub, priv, err := box.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	id := make([]byte, 16)
	if _, err := rand.Read(id); err != nil {
		return nil, err
	}
	return &KeePassXCBackend{
		socketPath:  socketPath,
		clientID:    base64.StdEncoding.EncodeToString(id),
		ourPub:      pub,
		ourPriv:     priv,
		dialTimeout: 2 * time.Second,
	}, nil
}

// Name implements Backend.
func (k *KeePassXCBackend) Name() BackendName { return BackendKeePassPrimary }

// Lookup implements Backend: dial, change-public-keys handshake, then
// get-logins for key treated as a URL-shaped identifier. Any socket
// absence, handshake refusal, or database-locked reply is Unavailable,
// never NotFound; a reply with no matching entries is NotFound. Both let
// the broker move on to the next backend. Cancelling ctx closes the
// socket, so a pending read returns and the lookup reports Cancelled.
func (k *KeePassXCBackend) Lookup(ctx context.Context, key string) (types.Credentials, Status, error) {
	dialer := net.Dialer{Timeout: k.dialTimeout}
	conn, err := dialer.DialContext(ctx, "unix", k.socketPath)
	if err != nil {
		return types.Credentials{}, StatusUnavailable, err
	}
	defer conn.Close()
	stopClose := context.AfterFunc(ctx, func() { conn.Close() })
	defer stopClose()

	if ctx.Err() != nil {
		return types.Credentials{}, StatusCancelled, ctx.Err()
	}

	serverPub, err := k.handshake(conn)
	if err != nil {
		if ctx.Err() != nil {
			return types.Credentials{}, StatusCancelled, ctx.Err()
		}
		return types.Credentials{}, StatusUnavailable, err
	}

	reply, err := k.getLogins(conn, serverPub, key)
	if err != nil {
		if ctx.Err() != nil {
			return types.Credentials{}, StatusCancelled, ctx.Err()
		}
		if errors.Is(err, errKeepassNoEntries) {
			return types.Credentials{}, StatusNotFound, nil
		}
		return types.Credentials{}, StatusUnavailable, err
	}

	entry := reply.Entries[0]
	return types.Credentials{
		Username: entry.Login,
		Password: secret.NewString(entry.Password),
	}, StatusFound, nil
}

var errKeepassNoEntries = errors.New("keepassxc: no matching entries")

// handshake performs change-public-keys and returns the server's curve25519
// public key used to seal/open all subsequent messages.
func (k *KeePassXCBackend) handshake(conn net.Conn) (*[32]byte, error) {
	nonce, err := newNonce()
	if err != nil {
		return nil, err
	}
	req := keepassxcMessage{
		Action:    "change-public-keys",
		PublicKey: base64.StdEncoding.EncodeToString(k.ourPub[:]),
		Nonce:     base64.StdEncoding.EncodeToString(nonce[:]),
		ClientID:  k.clientID,
	}
	if err := writeJSONLine(conn, req); err != nil {
		return nil, err
	}
	var resp keepassxcMessage
	if err := readJSONLine(conn, &resp); err != nil {
		return nil, err
	}
	if resp.Success != "true" {
		return nil, errors.New("keepassxc: handshake refused: " + resp.Error)
	}
	rawPub, err := base64.StdEncoding.DecodeString(resp.PublicKey)
	if err != nil || len(rawPub) != 32 {
		return nil, errors.New("keepassxc: malformed server public key")
	}
	var serverPub [32]byte
	copy(serverPub[:], rawPub)
	return &serverPub, nil
}

// getLogins sends an encrypted get-logins request for the given
// identifier (used here as an opaque lookup key rather than a real URL)
// and returns the decrypted reply.
func (k *KeePassXCBackend) getLogins(conn net.Conn, serverPub *[32]byte, key string) (*keepassxcGetLoginsReply, error) {
	payload, err := json.Marshal(keepassxcGetLoginsPayload{URL: "rustconn://" + key})
	if err != nil {
		return nil, err
	}
	nonce, err := newNonce()
	if err != nil {
		return nil, err
	}
	sealed := box.Seal(nil, payload, &nonce, serverPub, k.ourPriv)

	req := keepassxcMessage{
		Action:   "get-logins",
		Message:  base64.StdEncoding.EncodeToString(sealed),
		Nonce:    base64.StdEncoding.EncodeToString(nonce[:]),
		ClientID: k.clientID,
	}
	if err := writeJSONLine(conn, req); err != nil {
		return nil, err
	}

	var resp keepassxcMessage
	if err := readJSONLine(conn, &resp); err != nil {
		return nil, err
	}
	if resp.Success != "true" {
		return nil, errors.New("keepassxc: get-logins refused: " + resp.Error)
	}

	replyNonceRaw, err := base64.StdEncoding.DecodeString(resp.Nonce)
	if err != nil || len(replyNonceRaw) != 24 {
		return nil, errors.New("keepassxc: malformed reply nonce")
	}
	var replyNonce [24]byte
	copy(replyNonce[:], replyNonceRaw)

	sealedReply, err := base64.StdEncoding.DecodeString(resp.Message)
	if err != nil {
		return nil, err
	}
	plain, ok := box.Open(nil, sealedReply, &replyNonce, serverPub, k.ourPriv)
	if !ok {
		return nil, errors.New("keepassxc: reply failed to decrypt")
	}

	var reply keepassxcGetLoginsReply
	if err := json.Unmarshal(plain, &reply); err != nil {
		return nil, err
	}
	if len(reply.Entries) == 0 {
		return nil, errKeepassNoEntries
	}
	return &reply, nil
}

func newNonce() ([24]byte, error) {
	var nonce [24]byte
	_, err := rand.Read(nonce[:])
	return nonce, err
}
