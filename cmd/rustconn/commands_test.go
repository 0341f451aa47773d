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
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rustconn/rustconn/api/types"
)

func TestBuildParserAddFlags(t *testing.T) {
	var f clf
	parser := buildParser(&f)

	cmd, err := parser.Parse([]string{
		"add", "web1",
		"--host", "10.0.0.5",
		"--protocol", "ssh",
		"--username", "alice",
		"--tags", "prod, web",
	})
	require.NoError(t, err)
	require.Equal(t, "add", cmd)
	require.Equal(t, "web1", f.targetName)
	require.Equal(t, "10.0.0.5", f.host)
	require.Equal(t, "ssh", f.protocolName)
	require.Equal(t, "alice", f.username)
	require.Equal(t, "prod, web", f.tags)
}

func TestBuildParserGroupAddFlags(t *testing.T) {
	var f clf
	parser := buildParser(&f)

	cmd, err := parser.Parse([]string{"group", "add", "servers", "--password-source", "vault"})
	require.NoError(t, err)
	require.Equal(t, "group add", cmd)
	require.Equal(t, "servers", f.targetName)
	require.Equal(t, "vault", f.groupPasswordSource)
}

func TestBuildParserVarSetFlags(t *testing.T) {
	var f clf
	parser := buildParser(&f)

	cmd, err := parser.Parse([]string{"var", "set", "region", "us-east", "--scope", "document", "--scope-id", "doc1"})
	require.NoError(t, err)
	require.Equal(t, "var set", cmd)
	require.Equal(t, "region", f.varName)
	require.Equal(t, "us-east", f.varValue)
	require.Equal(t, "document", f.varScope)
	require.Equal(t, "doc1", f.varScopeID)
}

func TestCmdAddAssignsDefaultPortAndConfig(t *testing.T) {
	a := newTestApp(t)
	f := &clf{targetName: "box1", host: "10.0.0.1", protocolName: "ssh", username: "root"}

	require.NoError(t, cmdAdd(a, f))
	require.Len(t, a.doc.Connections, 1)

	conn := a.doc.Connections[0]
	require.Equal(t, "box1", conn.Name)
	require.Equal(t, 22, conn.Port)
	require.NotEmpty(t, conn.ID)
}

func TestCmdAddRejectsUnknownProtocol(t *testing.T) {
	a := newTestApp(t)
	f := &clf{targetName: "box1", host: "10.0.0.1", protocolName: "carrier-pigeon"}

	err := cmdAdd(a, f)
	require.Error(t, err)
}

func TestCmdShowAndDeleteLifecycle(t *testing.T) {
	a := newTestApp(t)
	require.NoError(t, cmdAdd(a, &clf{targetName: "box1", host: "10.0.0.1", protocolName: "ssh"}))

	id := a.doc.Connections[0].ID

	out := captureStdout(t, func() {
		require.NoError(t, cmdShow(a, &clf{target: id}))
	})
	require.Contains(t, out, "box1")

	require.NoError(t, cmdDelete(a, &clf{target: id}))
	require.Empty(t, a.doc.Connections)

	err := cmdShow(a, &clf{target: id})
	require.Error(t, err)
}

func TestCmdDuplicateCreatesDistinctID(t *testing.T) {
	a := newTestApp(t)
	require.NoError(t, cmdAdd(a, &clf{targetName: "box1", host: "10.0.0.1", protocolName: "ssh"}))
	original := a.doc.Connections[0]

	require.NoError(t, cmdDuplicate(a, &clf{target: original.ID, second: "box1-copy"}))
	require.Len(t, a.doc.Connections, 2)

	dup := a.doc.Connections[1]
	require.Equal(t, "box1-copy", dup.Name)
	require.NotEqual(t, original.ID, dup.ID)
}

func TestCmdGroupAddRejectsUnknownParent(t *testing.T) {
	a := newTestApp(t)
	require.NoError(t, cmdGroupAdd(a, &clf{targetName: "parent"}))
	parentID := a.doc.Groups[0].ID

	require.NoError(t, cmdGroupAdd(a, &clf{targetName: "child", groupID: parentID}))
	require.Len(t, a.doc.Groups, 2)

	err := cmdGroupAdd(a, &clf{targetName: "grandchild", groupID: "does-not-exist"})
	require.Error(t, err)
}

func TestCmdGroupRemoveRejectsNonEmptyGroup(t *testing.T) {
	a := newTestApp(t)
	require.NoError(t, cmdGroupAdd(a, &clf{targetName: "servers"}))
	groupID := a.doc.Groups[0].ID

	require.NoError(t, cmdAdd(a, &clf{targetName: "box1", host: "10.0.0.1", protocolName: "ssh", groupID: groupID}))

	err := cmdGroupRemove(a, &clf{target: groupID})
	require.Error(t, err)
}

func TestCmdVarSetRequiresScopeID(t *testing.T) {
	a := newTestApp(t)
	err := cmdVarSet(a, &clf{varName: "region", varValue: "us-east", varScope: "connection"})
	require.Error(t, err)
}

func TestCmdVarSetAndUnset(t *testing.T) {
	a := newTestApp(t)
	require.NoError(t, cmdVarSet(a, &clf{varName: "region", varValue: "us-east", varScope: "global"}))
	require.Len(t, a.doc.Variables, 1)

	// Setting the same name/scope/scope-id again overwrites in place.
	require.NoError(t, cmdVarSet(a, &clf{varName: "region", varValue: "us-west", varScope: "global"}))
	require.Len(t, a.doc.Variables, 1)
	require.Equal(t, "us-west", a.doc.Variables[0].Value)

	require.NoError(t, cmdVarUnset(a, &clf{varName: "region"}))
	require.Empty(t, a.doc.Variables)

	err := cmdVarUnset(a, &clf{varName: "region"})
	require.Error(t, err)
}

func TestCmdClusterAddRequiresExistingConnections(t *testing.T) {
	a := newTestApp(t)
	f := &clf{targetName: "cluster1", tags: "missing-id"}
	require.Error(t, cmdClusterAdd(a, f))
}

func TestSendMagicPacketRejectsInvalidMAC(t *testing.T) {
	err := sendMagicPacket(types.WakeOnLAN{MACAddress: "not-a-mac", BroadcastIP: "255.255.255.255"})
	require.Error(t, err)
}

func TestResolveAndBuildNotFound(t *testing.T) {
	a := newTestApp(t)
	_, _, _, _, err := resolveAndBuild(context.Background(), a, "nope")
	require.Error(t, err)
}

func TestSplitTags(t *testing.T) {
	require.Nil(t, splitTags(""))
	require.Equal(t, []string{"prod", "web"}, splitTags("prod, web"))
	require.Equal(t, []string{"solo"}, splitTags("solo"))
}

func TestParseScopeAndLabel(t *testing.T) {
	s, err := parseScope("global")
	require.NoError(t, err)
	require.Equal(t, types.ScopeGlobal, s)
	require.Equal(t, "global", scopeLabel(s))

	_, err = parseScope("bogus")
	require.Error(t, err)
}

func TestDefaultConfigForEveryProtocol(t *testing.T) {
	protocols := []types.Protocol{
		types.ProtocolSSH, types.ProtocolSFTP, types.ProtocolRDP, types.ProtocolVNC,
		types.ProtocolSPICE, types.ProtocolSerial, types.ProtocolTelnet,
		types.ProtocolKubernetes, types.ProtocolZeroTrust,
	}
	for _, p := range protocols {
		_, err := defaultConfigFor(p)
		require.NoError(t, err, "protocol %s", p)
	}

	_, err := defaultConfigFor(types.Protocol("carrier-pigeon"))
	require.Error(t, err)
}
