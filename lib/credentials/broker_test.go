package credentials

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/rustconn/rustconn/api/types"
	"github.com/rustconn/rustconn/lib/secret"
)

// fakeBackend is a scripted Backend for broker tests.
type fakeBackend struct {
	name     BackendName
	status   Status
	creds    types.Credentials
	err      error
	lookups  int
}

func (f *fakeBackend) Name() BackendName { return f.name }

func (f *fakeBackend) Lookup(ctx context.Context, key string) (types.Credentials, Status, error) {
	f.lookups++
	return f.creds, f.status, f.err
}

func testConn(id, groupID string) *types.Connection {
	return &types.Connection{ID: id, GroupID: groupID, Username: "alice"}
}

func noGroups(id string) (types.Group, bool) { return types.Group{}, false }

// Scenario 8: KeePassXC is unavailable, the OS keyring has the entry --
// resolution stops there and never consults the encrypted store.
func TestResolveStopsAtFirstFoundWithoutConsultingLaterBackends(t *testing.T) {
	keepass := &fakeBackend{name: BackendKeePassPrimary, status: StatusUnavailable, err: context.DeadlineExceeded}
	keyringB := &fakeBackend{
		name:   BackendKeyringFallback,
		status: StatusFound,
		creds:  types.Credentials{Username: "alice", Password: secret.NewString("s3cret")},
	}
	encStore := &fakeBackend{name: BackendEncryptedStore, status: StatusFound, creds: types.Credentials{Username: "nope"}}

	b, err := New(Config{Clock: clockwork.NewFakeClock()}, keepass, keyringB, encStore)
	require.NoError(t, err)

	policy := Policy{Backends: []BackendName{BackendKeePassPrimary, BackendKeyringFallback, BackendEncryptedStore}}
	result := b.Resolve(context.Background(), testConn("c1", ""), noGroups, policy)

	require.Equal(t, Resolved, result.Kind)
	require.Equal(t, BackendKeyringFallback, result.Backend)
	require.Equal(t, "s3cret", result.Credentials.Password.Reveal())
	require.Equal(t, 1, keepass.lookups)
	require.Equal(t, 1, keyringB.lookups)
	require.Equal(t, 0, encStore.lookups)
}

func TestResolveCachesAcrossCalls(t *testing.T) {
	keyringB := &fakeBackend{
		name:   BackendKeyringFallback,
		status: StatusFound,
		creds:  types.Credentials{Username: "alice", Password: secret.NewString("s3cret")},
	}
	b, err := New(Config{Clock: clockwork.NewFakeClock()}, keyringB)
	require.NoError(t, err)

	policy := Policy{Backends: []BackendName{BackendKeyringFallback}, CacheTTL: 60 * time.Second}
	conn := testConn("c1", "")

	first := b.Resolve(context.Background(), conn, noGroups, policy)
	second := b.Resolve(context.Background(), conn, noGroups, policy)

	require.Equal(t, Resolved, first.Kind)
	require.Equal(t, Resolved, second.Kind)
	require.Equal(t, 1, keyringB.lookups, "second resolve should be served from cache")
}

func TestResolveMissingWhenNoBackendHasIt(t *testing.T) {
	keyringB := &fakeBackend{name: BackendKeyringFallback, status: StatusNotFound}
	b, err := New(Config{Clock: clockwork.NewFakeClock()}, keyringB)
	require.NoError(t, err)

	result := b.Resolve(context.Background(), testConn("c1", ""), noGroups, Policy{Backends: []BackendName{BackendKeyringFallback}})
	require.Equal(t, Missing, result.Kind)
}

func TestResolveCancelledBeforeAnyBackend(t *testing.T) {
	keyringB := &fakeBackend{name: BackendKeyringFallback, status: StatusFound}
	b, err := New(Config{Clock: clockwork.NewFakeClock()}, keyringB)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := b.Resolve(ctx, testConn("c1", ""), noGroups, Policy{Backends: []BackendName{BackendKeyringFallback}})
	require.Equal(t, Cancelled, result.Kind)
	require.Equal(t, 0, keyringB.lookups)
}

func TestComputeLookupKeyWalksToVaultGroup(t *testing.T) {
	groups := map[string]types.Group{
		"g-leaf":  {ID: "g-leaf", ParentID: "g-vault", PasswordSource: types.PasswordSourceInherit},
		"g-vault": {ID: "g-vault", PasswordSource: types.PasswordSourceVault},
	}
	lookup := func(id string) (types.Group, bool) {
		g, ok := groups[id]
		return g, ok
	}

	key := ComputeLookupKey(testConn("c1", "g-leaf"), lookup)
	require.Equal(t, "group:g-vault", key)
}

func TestComputeLookupKeyFallsBackToConnectionID(t *testing.T) {
	key := ComputeLookupKey(testConn("c1", ""), noGroups)
	require.Equal(t, "connection:c1", key)
}

func TestResolveMergesUsernameOverride(t *testing.T) {
	keyringB := &fakeBackend{
		name:   BackendKeyringFallback,
		status: StatusFound,
		creds:  types.Credentials{Username: "vault-user", Password: secret.NewString("p")},
	}
	b, err := New(Config{Clock: clockwork.NewFakeClock()}, keyringB)
	require.NoError(t, err)

	conn := testConn("c1", "")
	conn.Username = "override-user"
	result := b.Resolve(context.Background(), conn, noGroups, Policy{Backends: []BackendName{BackendKeyringFallback}})

	require.Equal(t, "override-user", result.Credentials.Username)
	require.Equal(t, "p", result.Credentials.Password.Reveal())
}
