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

	"github.com/99designs/keyring"

	"github.com/rustconn/rustconn/api/types"
	"github.com/rustconn/rustconn/lib/secret"
)

// keyringEntry is the JSON shape stored under one keyring item.
type keyringEntry struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Domain   string `json:"domain,omitempty"`
}

// KeyringBackend resolves credentials from the host OS secret service
// (Secret Service / macOS Keychain / Windows Credential Manager) through
// the 99designs/keyring abstraction.
type KeyringBackend struct {
	ring        keyring.Keyring
	serviceName string
}

// NewKeyringBackend opens the OS keyring under serviceName, restricting
// the allowed backends to the platform-native secret stores (never the
// plaintext file fallback, which this broker chain has its own encrypted
// store for).
func NewKeyringBackend(serviceName string) (*KeyringBackend, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.SecretServiceBackend,
			keyring.KeychainBackend,
			keyring.WinCredBackend,
		},
	})
	if err != nil {
		return nil, err
	}
	return &KeyringBackend{ring: ring, serviceName: serviceName}, nil
}

// Name implements Backend.
func (b *KeyringBackend) Name() BackendName { return BackendKeyringFallback }

// Lookup implements Backend. The OS keyring has no notion of
// cancellation; ctx is checked only before the blocking call.
func (b *KeyringBackend) Lookup(ctx context.Context, key string) (types.Credentials, Status, error) {
	select {
	case <-ctx.Done():
		return types.Credentials{}, StatusCancelled, ctx.Err()
	default:
	}

	item, err := b.ring.Get(key)
	if err != nil {
		if err == keyring.ErrKeyNotFound {
			return types.Credentials{}, StatusNotFound, nil
		}
		return types.Credentials{}, StatusUnavailable, err
	}

	var entry keyringEntry
	if err := json.Unmarshal(item.Data, &entry); err != nil {
		return types.Credentials{}, StatusUnavailable, err
	}

	return types.Credentials{
		Username: entry.Username,
		Password: secret.NewString(entry.Password),
		Domain:   entry.Domain,
	}, StatusFound, nil
}

// Store writes or overwrites key's entry, used by the save-to-keyring UI
// action.
func (b *KeyringBackend) Store(key string, creds types.Credentials) error {
	data, err := json.Marshal(keyringEntry{
		Username: creds.Username,
		Password: creds.Password.Reveal(),
		Domain:   creds.Domain,
	})
	if err != nil {
		return err
	}
	return b.ring.Set(keyring.Item{
		Key:  key,
		Data: data,
	})
}
