package monitor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestClientConfigRequiresKeyPathWhenNoPassword(t *testing.T) {
	transport := NewSSHExecTransport(ExecTarget{Host: "example.com", Port: 22, User: "alice"})
	_, err := transport.clientConfig()
	require.Error(t, err)
}

func TestClientConfigLoadsSignerFromKeyPath(t *testing.T) {
	// Using a nonexistent path should surface a wrapped read error, not
	// panic, confirming loadSigner's error path is reachable through
	// clientConfig.
	transport := NewSSHExecTransport(ExecTarget{
		Host: "example.com", Port: 22, User: "alice", KeyPath: "/nonexistent/id_ed25519",
	})
	_, err := transport.clientConfig()
	require.Error(t, err)
}

func TestSampleInProcessFailsFastOnContextCancellation(t *testing.T) {
	transport := NewSSHExecTransport(ExecTarget{
		Host: "example.com", Port: 22, User: "alice", KeyPath: "/nonexistent/id_ed25519",
	})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := transport.Sample(ctx)
	require.Error(t, err)
}
