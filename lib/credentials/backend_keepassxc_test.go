package credentials

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/nacl/box"
)

// fakeKeepassServer simulates just enough of the KeePassXC-Browser socket
// protocol for one handshake plus one get-logins round trip.
func fakeKeepassServer(t *testing.T, conn net.Conn, entry keepassxcLoginEntry) {
	serverPub, serverPriv, err := box.GenerateKey(rand.Reader)
	require.NoError(t, err)

	var req keepassxcMessage
	require.NoError(t, readJSONLine(conn, &req))
	require.Equal(t, "change-public-keys", req.Action)

	clientPubRaw, err := base64.StdEncoding.DecodeString(req.PublicKey)
	require.NoError(t, err)
	var clientPub [32]byte
	copy(clientPub[:], clientPubRaw)

	require.NoError(t, writeJSONLine(conn, keepassxcMessage{
		Success:   "true",
		PublicKey: base64.StdEncoding.EncodeToString(serverPub[:]),
	}))

	var getLogins keepassxcMessage
	require.NoError(t, readJSONLine(conn, &getLogins))
	require.Equal(t, "get-logins", getLogins.Action)

	reqNonceRaw, err := base64.StdEncoding.DecodeString(getLogins.Nonce)
	require.NoError(t, err)
	var reqNonce [24]byte
	copy(reqNonce[:], reqNonceRaw)

	sealedReq, err := base64.StdEncoding.DecodeString(getLogins.Message)
	require.NoError(t, err)
	_, ok := box.Open(nil, sealedReq, &reqNonce, &clientPub, serverPriv)
	require.True(t, ok)

	replyPlain, err := json.Marshal(keepassxcGetLoginsReply{Entries: []keepassxcLoginEntry{entry}})
	require.NoError(t, err)

	var replyNonce [24]byte
	_, err = rand.Read(replyNonce[:])
	require.NoError(t, err)
	sealedReply := box.Seal(nil, replyPlain, &replyNonce, &clientPub, serverPriv)

	require.NoError(t, writeJSONLine(conn, keepassxcMessage{
		Success: "true",
		Nonce:   base64.StdEncoding.EncodeToString(replyNonce[:]),
		Message: base64.StdEncoding.EncodeToString(sealedReply),
	}))
}

func TestKeePassXCBackendLookupFoundOverUnixSocket(t *testing.T) {
	sockPath := filepath.Join(t.TempDir(), "keepassxc-test.sock")
	listener, err := net.Listen("unix", sockPath)
	require.NoError(t, err)
	defer listener.Close()
	defer os.Remove(sockPath)

	done := make(chan struct{})
	go func() {
		defer close(done)
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		fakeKeepassServer(t, conn, keepassxcLoginEntry{Login: "frank", Password: "open-sesame"})
	}()

	backend, err := NewKeePassXCBackend(sockPath)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	creds, status, err := backend.Lookup(ctx, "connection:c1")
	require.NoError(t, err)
	require.Equal(t, StatusFound, status)
	require.Equal(t, "frank", creds.Username)
	require.Equal(t, "open-sesame", creds.Password.Reveal())

	<-done
}

func TestKeePassXCBackendUnavailableWhenSocketAbsent(t *testing.T) {
	backend, err := NewKeePassXCBackend(filepath.Join(t.TempDir(), "does-not-exist.sock"))
	require.NoError(t, err)

	_, status, err := backend.Lookup(context.Background(), "connection:c1")
	require.Error(t, err)
	require.Equal(t, StatusUnavailable, status)
}
