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
	"strings"

	"github.com/rustconn/rustconn/api/types"
)

// VaultInheritBackend resolves credentials stored directly on a Vault
// group's InheritedCredentials field. Unlike the other backends it never
// touches an external process or store: it is pure logic over the
// document already loaded in memory, so it never reports Unavailable. The
// CLI's default policy tries it last.
type VaultInheritBackend struct {
	lookup types.GroupLookup
}

// NewVaultInheritBackend builds a backend that resolves group-inherited
// credentials via lookup.
func NewVaultInheritBackend(lookup types.GroupLookup) *VaultInheritBackend {
	return &VaultInheritBackend{lookup: lookup}
}

// Name implements Backend.
func (v *VaultInheritBackend) Name() BackendName { return BackendVaultGroupInherit }

// Lookup implements Backend. key is expected in the "group:<id>" shape
// ComputeLookupKey produces; any other shape is StatusNotFound since this
// backend has nothing to offer a bare connection-scoped key.
func (v *VaultInheritBackend) Lookup(ctx context.Context, key string) (types.Credentials, Status, error) {
	select {
	case <-ctx.Done():
		return types.Credentials{}, StatusCancelled, ctx.Err()
	default:
	}

	groupID, ok := strings.CutPrefix(key, "group:")
	if !ok {
		return types.Credentials{}, StatusNotFound, nil
	}

	g, ok := v.lookup(groupID)
	if !ok || g.InheritedCredentials == nil || g.InheritedCredentials.IsEmpty() {
		return types.Credentials{}, StatusNotFound, nil
	}
	return *g.InheritedCredentials, StatusFound, nil
}
