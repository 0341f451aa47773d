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

package main

import (
	"errors"
	"testing"

	"github.com/gravitational/trace"
	"github.com/stretchr/testify/require"

	"github.com/rustconn/rustconn/api/types"
)

func TestExitCodeForConnectionAndSessionFailures(t *testing.T) {
	require.Equal(t, 2, exitCodeFor(types.NewError(types.KindConnection, errors.New("refused"), "dial failed")))
	require.Equal(t, 2, exitCodeFor(types.NewError(types.KindSession, errors.New("gone"), "session lost")))
}

func TestExitCodeForGeneralFailures(t *testing.T) {
	require.Equal(t, 1, exitCodeFor(types.NewError(types.KindConfiguration, nil, "bad config")))
	require.Equal(t, 1, exitCodeFor(types.NewError(types.KindCredentials, nil, "no credentials")))
	require.Equal(t, 1, exitCodeFor(trace.NotFound("connection not found")))
	require.Equal(t, 1, exitCodeFor(errors.New("untagged error")))
}
