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
	"crypto/sha256"
	"errors"
	"sync"

	"golang.org/x/crypto/nacl/secretbox"
	"golang.org/x/crypto/pbkdf2"

	"github.com/rustconn/rustconn/api/types"
	"github.com/rustconn/rustconn/lib/secret"
)

const (
	pbkdf2Iterations = 200_000
	saltSize         = 16
	keySize          = 32
)

// encryptedRecord is one at-rest entry in the store: a random per-entry
// salt plus a secretbox-sealed (nonce-prefixed) ciphertext of a JSON
// entryPlaintext.
type encryptedRecord struct {
	Salt       []byte `json:"salt"`
	Ciphertext []byte `json:"ciphertext"`
}

type entryPlaintext struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// EncryptedStoreLoader abstracts reading/writing the persisted records so
// this backend stays independent of lib/store's TOML/JSON file layout.
type EncryptedStoreLoader interface {
	LoadRecord(key string) (encryptedRecord, bool, error)
	SaveRecord(key string, rec encryptedRecord) error
}

// EncryptedStoreBackend is the last-resort, always-available credential
// backend: a passphrase-derived-key store that never leaves the local
// machine and requires no external process or service.
type EncryptedStoreBackend struct {
	mu         sync.Mutex
	loader     EncryptedStoreLoader
	passphrase *secret.Text
}

// NewEncryptedStoreBackend builds a backend unlocked with passphrase; the
// same passphrase must be supplied on every subsequent process start to
// decrypt previously stored entries.
func NewEncryptedStoreBackend(loader EncryptedStoreLoader, passphrase *secret.Text) *EncryptedStoreBackend {
	return &EncryptedStoreBackend{loader: loader, passphrase: passphrase}
}

// Name implements Backend.
func (e *EncryptedStoreBackend) Name() BackendName { return BackendEncryptedStore }

// Lookup implements Backend. Decryption failure (wrong passphrase, or
// corrupt record) is reported as StatusUnavailable rather than
// StatusNotFound, since a present-but-undecryptable record is not the
// same thing as "nothing was ever stored here".
func (e *EncryptedStoreBackend) Lookup(ctx context.Context, key string) (types.Credentials, Status, error) {
	select {
	case <-ctx.Done():
		return types.Credentials{}, StatusCancelled, ctx.Err()
	default:
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	rec, ok, err := e.loader.LoadRecord(key)
	if err != nil {
		return types.Credentials{}, StatusUnavailable, err
	}
	if !ok {
		return types.Credentials{}, StatusNotFound, nil
	}

	plain, err := e.decrypt(rec)
	if err != nil {
		return types.Credentials{}, StatusUnavailable, err
	}

	var entry entryPlaintext
	if err := json.Unmarshal(plain, &entry); err != nil {
		return types.Credentials{}, StatusUnavailable, err
	}

	return types.Credentials{
		Username: entry.Username,
		Password: secret.NewString(entry.Password),
	}, StatusFound, nil
}

// Store encrypts and persists creds under key, deriving a fresh key from
// the backend's passphrase and a new random salt on every write.
func (e *EncryptedStoreBackend) Store(key string, creds types.Credentials) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	plain, err := json.Marshal(entryPlaintext{
		Username: creds.Username,
		Password: creds.Password.Reveal(),
	})
	if err != nil {
		return err
	}

	rec, err := e.encrypt(plain)
	if err != nil {
		return err
	}
	return e.loader.SaveRecord(key, rec)
}

func (e *EncryptedStoreBackend) deriveKey(salt []byte) [keySize]byte {
	derived := pbkdf2.Key([]byte(e.passphrase.Reveal()), salt, pbkdf2Iterations, keySize, sha256.New)
	var key [keySize]byte
	copy(key[:], derived)
	return key
}

func (e *EncryptedStoreBackend) encrypt(plain []byte) (encryptedRecord, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return encryptedRecord{}, err
	}
	key := e.deriveKey(salt)

	var nonce [24]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return encryptedRecord{}, err
	}

	sealed := secretbox.Seal(nonce[:], plain, &nonce, &key)
	return encryptedRecord{Salt: salt, Ciphertext: sealed}, nil
}

func (e *EncryptedStoreBackend) decrypt(rec encryptedRecord) ([]byte, error) {
	if len(rec.Ciphertext) < 24 {
		return nil, errors.New("encrypted store: truncated record")
	}
	key := e.deriveKey(rec.Salt)

	var nonce [24]byte
	copy(nonce[:], rec.Ciphertext[:24])

	plain, ok := secretbox.Open(nil, rec.Ciphertext[24:], &nonce, &key)
	if !ok {
		return nil, errors.New("encrypted store: decryption failed (wrong passphrase or corrupt record)")
	}
	return plain, nil
}
