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
	"bytes"
	"context"
	"os/exec"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/rustconn/rustconn/api/types"
	"github.com/rustconn/rustconn/lib/secret"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// cliVault drives one password-manager CLI as a subprocess. The three
// concrete managers (Bitwarden, 1Password, Passbolt) differ only in their
// binary name, argv shape, and JSON response layout, so they all compose
// this shared runner.
type cliVault struct {
	name       BackendName
	binary     string
	buildArgs  func(key string) []string
	parseReply func(stdout []byte) (types.Credentials, bool, error)
}

// Name implements Backend.
func (c *cliVault) Name() BackendName { return c.name }

// Lookup runs the manager's CLI under ctx, killing the child if ctx is
// cancelled before it exits. A missing binary or nonzero exit with no
// parseable item is StatusUnavailable; a clean "item not found" reply is
// StatusNotFound.
func (c *cliVault) Lookup(ctx context.Context, key string) (types.Credentials, Status, error) {
	if _, err := exec.LookPath(c.binary); err != nil {
		return types.Credentials{}, StatusUnavailable, err
	}

	args := c.buildArgs(key)
	cmd := exec.CommandContext(ctx, c.binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctx.Err() != nil {
		return types.Credentials{}, StatusCancelled, ctx.Err()
	}
	if err != nil {
		if isNotFoundReply(stderr.String()) {
			return types.Credentials{}, StatusNotFound, nil
		}
		return types.Credentials{}, StatusUnavailable, err
	}

	creds, found, err := c.parseReply(stdout.Bytes())
	if err != nil {
		return types.Credentials{}, StatusUnavailable, err
	}
	if !found {
		return types.Credentials{}, StatusNotFound, nil
	}
	return creds, StatusFound, nil
}

func isNotFoundReply(stderr string) bool {
	lower := strings.ToLower(stderr)
	return strings.Contains(lower, "not found") || strings.Contains(lower, "no item")
}

// bitwardenItem mirrors the subset of `bw get item <id> --raw` output the
// broker needs.
type bitwardenItem struct {
	Login struct {
		Username string `json:"username"`
		Password string `json:"password"`
	} `json:"login"`
}

// NewBitwardenBackend drives the Bitwarden CLI (`bw`). The session token
// is expected in the process environment (BW_SESSION) -- the broker never
// prompts for or stores a vault master password itself.
func NewBitwardenBackend() Backend {
	return &cliVault{
		name:   BackendBitwarden,
		binary: "bw",
		buildArgs: func(key string) []string {
			return []string{"get", "item", key, "--raw"}
		},
		parseReply: func(stdout []byte) (types.Credentials, bool, error) {
			if len(bytes.TrimSpace(stdout)) == 0 {
				return types.Credentials{}, false, nil
			}
			var item bitwardenItem
			if err := json.Unmarshal(stdout, &item); err != nil {
				return types.Credentials{}, false, err
			}
			if item.Login.Password == "" {
				return types.Credentials{}, false, nil
			}
			return types.Credentials{
				Username: item.Login.Username,
				Password: secret.NewString(item.Login.Password),
			}, true, nil
		},
	}
}

// onePasswordItem mirrors `op item get <id> --format=json` field output.
type onePasswordItem struct {
	Fields []struct {
		ID    string `json:"id"`
		Label string `json:"label"`
		Value string `json:"value"`
	} `json:"fields"`
}

// NewOnePasswordBackend drives the 1Password CLI (`op`).
func NewOnePasswordBackend() Backend {
	return &cliVault{
		name:   BackendOnePassword,
		binary: "op",
		buildArgs: func(key string) []string {
			return []string{"item", "get", key, "--format=json"}
		},
		parseReply: func(stdout []byte) (types.Credentials, bool, error) {
			if len(bytes.TrimSpace(stdout)) == 0 {
				return types.Credentials{}, false, nil
			}
			var item onePasswordItem
			if err := json.Unmarshal(stdout, &item); err != nil {
				return types.Credentials{}, false, err
			}
			var creds types.Credentials
			var havePassword bool
			for _, f := range item.Fields {
				switch f.ID {
				case "username":
					creds.Username = f.Value
				case "password":
					creds.Password = secret.NewString(f.Value)
					havePassword = true
				}
			}
			if !havePassword {
				return types.Credentials{}, false, nil
			}
			return creds, true, nil
		},
	}
}

// passboltItem mirrors `passbolt get resource --id <id> --json` output.
type passboltItem struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// NewPassboltBackend drives the go-passbolt-cli binary (`passbolt`).
func NewPassboltBackend() Backend {
	return &cliVault{
		name:   BackendPassbolt,
		binary: "passbolt",
		buildArgs: func(key string) []string {
			return []string{"get", "resource", "--id", key, "--json"}
		},
		parseReply: func(stdout []byte) (types.Credentials, bool, error) {
			if len(bytes.TrimSpace(stdout)) == 0 {
				return types.Credentials{}, false, nil
			}
			var item passboltItem
			if err := json.Unmarshal(stdout, &item); err != nil {
				return types.Credentials{}, false, err
			}
			if item.Password == "" {
				return types.Credentials{}, false, nil
			}
			return types.Credentials{
				Username: item.Username,
				Password: secret.NewString(item.Password),
			}, true, nil
		},
	}
}
