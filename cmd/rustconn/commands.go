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
	"fmt"
	"net"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gravitational/kingpin"
	"github.com/gravitational/trace"

	"github.com/rustconn/rustconn/api/types"
	"github.com/rustconn/rustconn/lib/credentials"
	"github.com/rustconn/rustconn/lib/protocol"
	"github.com/rustconn/rustconn/lib/secret"
	"github.com/rustconn/rustconn/lib/utils"
	"github.com/rustconn/rustconn/lib/variables"
)

// defaultConnectTimeout bounds how long connect/test wait on credential
// resolution before giving up, matching the Broker's context-cancellation
// contract.
const defaultConnectTimeout = 15 * time.Second

// defaultPolicy is the backend resolution order used for every lookup:
// every configured backend, in the layered chain order (KeePassXC first,
// group/vault inheritance last). Connections carry no policy of their own.
var defaultPolicy = credentials.Policy{
	Backends: []credentials.BackendName{
		credentials.BackendKeePassPrimary,
		credentials.BackendKeyringFallback,
		credentials.BackendBitwarden,
		credentials.BackendOnePassword,
		credentials.BackendPassbolt,
		credentials.BackendEncryptedStore,
		credentials.BackendVaultGroupInherit,
	},
	CacheTTL: time.Minute,
}

// clf holds every flag/arg value kingpin populates, mirroring
// tbot/common.CommandLineFlags' one-struct-for-all-flags convention.
type clf struct {
	docPath string
	debug   bool
	format  string

	// list
	listGroup    string
	listProtocol string
	listTag      string

	// add / update
	targetName   string
	host         string
	port         int
	protocolName string
	username     string
	domain       string
	groupID      string
	tags         string

	// generic single-target verbs
	target string
	second string

	// connect / test
	dryRun bool

	// export / import
	path string

	// var
	varName      string
	varValue     string
	varScope     string
	varScopeID   string
	varSecret    bool

	// secret
	secretKey   string
	secretValue string

	// group add
	groupPasswordSource string
}

// buildParser wires every verb named in the CLI surface onto app, mirroring
// InitCLIParser + per-command Flag/Arg registration from tbot's Run.
func buildParser(f *clf) *kingpin.Application {
	app := utils.InitCLIParser("rustconn", "Multi-protocol remote connection manager.")
	app.Flag("config", "Path to the connections document").Short('c').StringVar(&f.docPath)
	app.Flag("debug", "Enable verbose logging to stderr").Short('d').BoolVar(&f.debug)
	app.Flag("format", "Output format: table, json, csv").Short('f').Default("table").EnumVar(&f.format, "table", "json", "csv")

	list := app.Command("list", "List connections.")
	list.Flag("group", "Filter by group id or name").StringVar(&f.listGroup)
	list.Flag("protocol", "Filter by protocol").StringVar(&f.listProtocol)
	list.Flag("tag", "Filter by tag").StringVar(&f.listTag)

	add := app.Command("add", "Add a new connection.")
	add.Arg("name", "Connection name").Required().StringVar(&f.targetName)
	add.Flag("host", "Target host").StringVar(&f.host)
	add.Flag("port", "Target port (defaults to the protocol's conventional port)").IntVar(&f.port)
	add.Flag("protocol", "ssh, rdp, vnc, spice, telnet, serial, sftp, kubernetes, zerotrust").Required().StringVar(&f.protocolName)
	add.Flag("username", "Username override").StringVar(&f.username)
	add.Flag("domain", "Domain override").StringVar(&f.domain)
	add.Flag("group", "Parent group id or name").StringVar(&f.groupID)
	add.Flag("tags", "Comma-separated tags").StringVar(&f.tags)

	update := app.Command("update", "Update fields of an existing connection.")
	update.Arg("target", "Connection id or name").Required().StringVar(&f.target)
	update.Flag("host", "Target host").StringVar(&f.host)
	update.Flag("port", "Target port").IntVar(&f.port)
	update.Flag("username", "Username override").StringVar(&f.username)
	update.Flag("domain", "Domain override").StringVar(&f.domain)
	update.Flag("group", "Parent group id or name").StringVar(&f.groupID)
	update.Flag("tags", "Comma-separated tags").StringVar(&f.tags)

	del := app.Command("delete", "Delete a connection.")
	del.Arg("target", "Connection id or name").Required().StringVar(&f.target)

	show := app.Command("show", "Show one connection's full detail.")
	show.Arg("target", "Connection id or name").Required().StringVar(&f.target)

	dup := app.Command("duplicate", "Duplicate a connection under a new name.")
	dup.Arg("target", "Connection id or name").Required().StringVar(&f.target)
	dup.Arg("newname", "Name for the duplicate").Required().StringVar(&f.second)

	connect := app.Command("connect", "Resolve credentials and launch a connection.")
	connect.Arg("target", "Connection id or name").Required().StringVar(&f.target)
	connect.Flag("dry-run", "Validate and build the command without launching it").BoolVar(&f.dryRun)

	test := app.Command("test", "Validate a connection and report what would run, without launching it.")
	test.Arg("target", "Connection id or name").Required().StringVar(&f.target)

	export := app.Command("export", "Export the document to a JSON file.")
	export.Arg("path", "Destination path").Required().StringVar(&f.path)

	imp := app.Command("import", "Import connections/groups from a JSON export, merging by id.")
	imp.Arg("path", "Source path").Required().StringVar(&f.path)

	sftp := app.Command("sftp", "Open an SFTP transfer session against a connection's SSH transport.")
	sftp.Arg("target", "Connection id or name").Required().StringVar(&f.target)

	wol := app.Command("wol", "Send a Wake-on-LAN magic packet for a connection.")
	wol.Arg("target", "Connection id or name").Required().StringVar(&f.target)

	snippet := app.Command("snippet", "Manage reusable command snippets.")
	snippet.Command("list", "List snippets.")
	snippetAdd := snippet.Command("add", "Add a snippet.")
	snippetAdd.Arg("name", "Snippet name").Required().StringVar(&f.targetName)
	snippetAdd.Arg("command", "Command text").Required().StringVar(&f.secretValue)
	snippetRemove := snippet.Command("remove", "Remove a snippet.")
	snippetRemove.Arg("target", "Snippet id or name").Required().StringVar(&f.target)

	group := app.Command("group", "Manage groups.")
	group.Command("list", "List groups.")
	groupAdd := group.Command("add", "Add a group.")
	groupAdd.Arg("name", "Group name").Required().StringVar(&f.targetName)
	groupAdd.Flag("parent", "Parent group id or name").StringVar(&f.groupID)
	groupAdd.Flag("password-source", "none, inherit, vault").StringVar(&f.groupPasswordSource)
	groupRemove := group.Command("remove", "Remove a group.")
	groupRemove.Arg("target", "Group id or name").Required().StringVar(&f.target)

	template := app.Command("template", "Manage connection templates.")
	template.Command("list", "List templates.")
	templateInst := template.Command("instantiate", "Create a connection from a template.")
	templateInst.Arg("target", "Template id or name").Required().StringVar(&f.target)
	templateInst.Arg("name", "New connection name").Required().StringVar(&f.targetName)
	templateInst.Flag("host", "Target host").Required().StringVar(&f.host)

	cluster := app.Command("cluster", "Manage clusters of connections.")
	cluster.Command("list", "List clusters.")
	clusterAdd := cluster.Command("add", "Add a cluster.")
	clusterAdd.Arg("name", "Cluster name").Required().StringVar(&f.targetName)
	clusterAdd.Arg("connections", "Comma-separated connection ids/names").Required().StringVar(&f.tags)

	v := app.Command("var", "Manage variables.")
	v.Command("list", "List variables.")
	varSet := v.Command("set", "Set a variable.")
	varSet.Arg("name", "Variable name").Required().StringVar(&f.varName)
	varSet.Arg("value", "Variable value").Required().StringVar(&f.varValue)
	varSet.Flag("scope", "global, document, connection").Default("global").EnumVar(&f.varScope, "global", "document", "connection")
	varSet.Flag("scope-id", "document or connection id, required unless scope=global").StringVar(&f.varScopeID)
	varSet.Flag("secret", "Mark the variable secret (excluded from the TOML document)").BoolVar(&f.varSecret)
	varUnset := v.Command("unset", "Remove a variable.")
	varUnset.Arg("name", "Variable name").Required().StringVar(&f.varName)

	sec := app.Command("secret", "Manage encrypted-store secrets directly.")
	secretSet := sec.Command("set", "Store a secret credential.")
	secretSet.Arg("key", "Lookup key, e.g. connection:<id>").Required().StringVar(&f.secretKey)
	secretSet.Arg("username", "Username").Required().StringVar(&f.username)
	secretSet.Arg("password", "Password").Required().StringVar(&f.secretValue)
	secretGet := sec.Command("get", "Look up a stored secret (the password is always redacted).")
	secretGet.Arg("key", "Lookup key").Required().StringVar(&f.secretKey)

	app.Command("stats", "Show session manager statistics.")
	app.Command("completions", "Print a bash completion script.")

	return app
}

// dispatch runs the selected command against a, returning the error whose
// types.ErrorKind decides the process exit code.
func dispatch(ctx context.Context, a *app, command string, f *clf) error {
	switch {
	case command == "list":
		return cmdList(a, f)
	case command == "add":
		return cmdAdd(a, f)
	case command == "update":
		return cmdUpdate(a, f)
	case command == "delete":
		return cmdDelete(a, f)
	case command == "show":
		return cmdShow(a, f)
	case command == "duplicate":
		return cmdDuplicate(a, f)
	case command == "connect":
		return cmdConnect(ctx, a, f)
	case command == "test":
		return cmdTest(ctx, a, f)
	case command == "export":
		return cmdExport(a, f)
	case command == "import":
		return cmdImport(a, f)
	case command == "sftp":
		return cmdSFTP(ctx, a, f)
	case command == "wol":
		return cmdWOL(a, f)
	case command == "snippet list":
		return cmdSnippetList(a, f)
	case command == "snippet add":
		return cmdSnippetAdd(a, f)
	case command == "snippet remove":
		return cmdSnippetRemove(a, f)
	case command == "group list":
		return cmdGroupList(a, f)
	case command == "group add":
		return cmdGroupAdd(a, f)
	case command == "group remove":
		return cmdGroupRemove(a, f)
	case command == "template list":
		return cmdTemplateList(a, f)
	case command == "template instantiate":
		return cmdTemplateInstantiate(a, f)
	case command == "cluster list":
		return cmdClusterList(a, f)
	case command == "cluster add":
		return cmdClusterAdd(a, f)
	case command == "var list":
		return cmdVarList(a, f)
	case command == "var set":
		return cmdVarSet(a, f)
	case command == "var unset":
		return cmdVarUnset(a, f)
	case command == "secret set":
		return cmdSecretSet(a, f)
	case command == "secret get":
		return cmdSecretGet(ctx, a, f)
	case command == "stats":
		return cmdStats(a, f)
	case command == "completions":
		return cmdCompletions(a, f)
	default:
		return trace.BadParameter("unknown command %q", command)
	}
}

func cmdList(a *app, f *clf) error {
	headers := []string{"ID", "Name", "Protocol", "Host", "Port", "Group", "Tags"}
	var rows []row
	var filtered []types.Connection
	for _, c := range a.doc.Connections {
		if f.listProtocol != "" && string(c.Protocol) != f.listProtocol {
			continue
		}
		if f.listGroup != "" {
			g, _ := a.findGroup(f.listGroup)
			if g == nil || c.GroupID != g.ID {
				continue
			}
		}
		if f.listTag != "" {
			found := false
			for _, t := range c.Tags {
				if t == f.listTag {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}
		filtered = append(filtered, c)
		rows = append(rows, row{Cells: []string{
			c.ID, c.Name, string(c.Protocol), c.Host, strconv.Itoa(c.Port), c.GroupID, strings.Join(c.Tags, ","),
		}})
	}
	return render(f.format, headers, rows, filtered)
}

func cmdAdd(a *app, f *clf) error {
	proto := types.Protocol(f.protocolName)
	port := f.port
	if port == 0 {
		port = proto.DefaultPort()
	}
	cfg, err := defaultConfigFor(proto)
	if err != nil {
		return trace.Wrap(err)
	}
	conn := types.Connection{
		ID:        uuid.NewString(),
		Name:      f.targetName,
		Host:      f.host,
		Port:      port,
		Protocol:  proto,
		Username:  f.username,
		Domain:    f.domain,
		GroupID:   f.groupID,
		Tags:      splitTags(f.tags),
		Config:    cfg,
		CreatedAt: now(),
		UpdatedAt: now(),
	}
	if err := conn.Validate(a.docHasGroup()); err != nil {
		return trace.Wrap(err)
	}
	a.doc.Connections = append(a.doc.Connections, conn)
	if err := a.save(); err != nil {
		return trace.Wrap(err)
	}
	return printJSON(conn)
}

func cmdUpdate(a *app, f *clf) error {
	c, _ := a.findConnection(f.target)
	if c == nil {
		return trace.NotFound("connection %q not found", f.target)
	}
	if f.host != "" {
		c.Host = f.host
	}
	if f.port != 0 {
		c.Port = f.port
	}
	if f.username != "" {
		c.Username = f.username
	}
	if f.domain != "" {
		c.Domain = f.domain
	}
	if f.groupID != "" {
		c.GroupID = f.groupID
	}
	if f.tags != "" {
		c.Tags = splitTags(f.tags)
	}
	c.UpdatedAt = now()
	if err := c.Validate(a.docHasGroup()); err != nil {
		return trace.Wrap(err)
	}
	if err := a.save(); err != nil {
		return trace.Wrap(err)
	}
	return printJSON(c)
}

func cmdDelete(a *app, f *clf) error {
	c, idx := a.findConnection(f.target)
	if c == nil {
		return trace.NotFound("connection %q not found", f.target)
	}
	a.broker.Invalidate(c, a.groupLookup())
	a.doc.Connections = append(a.doc.Connections[:idx], a.doc.Connections[idx+1:]...)
	return trace.Wrap(a.save())
}

func cmdShow(a *app, f *clf) error {
	c, _ := a.findConnection(f.target)
	if c == nil {
		return trace.NotFound("connection %q not found", f.target)
	}
	return printJSON(c)
}

func cmdDuplicate(a *app, f *clf) error {
	c, _ := a.findConnection(f.target)
	if c == nil {
		return trace.NotFound("connection %q not found", f.target)
	}
	dup := *c
	dup.ID = uuid.NewString()
	dup.Name = f.second
	dup.CreatedAt = now()
	dup.UpdatedAt = now()
	a.doc.Connections = append(a.doc.Connections, dup)
	if err := a.save(); err != nil {
		return trace.Wrap(err)
	}
	return printJSON(dup)
}

// resolveAndBuild runs the Protocol Engine and Credential Broker against
// target, the shared first half of connect/test/sftp.
func resolveAndBuild(ctx context.Context, a *app, target string) (*types.Connection, credentials.CredentialResult, []string, []string, error) {
	c, _ := a.findConnection(target)
	if c == nil {
		return nil, credentials.CredentialResult{}, nil, nil, trace.NotFound("connection %q not found", target)
	}
	if err := c.Validate(a.docHasGroup()); err != nil {
		return c, credentials.CredentialResult{}, nil, nil, trace.Wrap(err)
	}
	if err := protocol.Validate(c); err != nil {
		return c, credentials.CredentialResult{}, nil, nil, trace.Wrap(err)
	}

	resolveCtx, cancel := context.WithTimeout(ctx, defaultConnectTimeout)
	defer cancel()
	result := a.broker.Resolve(resolveCtx, c, a.groupLookup(), defaultPolicy)
	if result.Kind == credentials.Cancelled {
		return c, result, nil, nil, types.NewError(types.KindCredentials, resolveCtx.Err(), "credential resolution for %q cancelled", c.Name)
	}
	if result.Kind == credentials.BackendErrorResult {
		return c, result, nil, nil, types.NewError(types.KindCredentials, nil, "credential backend %q unavailable for %q", result.Backend, c.Name)
	}

	argv, warnings, err := protocol.BuildCommand(c)
	if err != nil {
		return c, result, nil, warnings, trace.Wrap(err)
	}
	return c, result, argv, warnings, nil
}

// execWorker adapts an *exec.Cmd to session.Worker, so the Session
// Manager's registry knows about external-client subprocesses the same
// way it would know about an embedded protocol worker.
type execWorker struct {
	cmd *exec.Cmd
}

func (w *execWorker) Alive() bool { return w.cmd.Process != nil && w.cmd.ProcessState == nil }
func (w *execWorker) Stop() error {
	if w.cmd.Process == nil {
		return nil
	}
	return w.cmd.Process.Signal(os.Interrupt)
}
func (w *execWorker) Kill() error {
	if w.cmd.Process == nil {
		return nil
	}
	return w.cmd.Process.Kill()
}

func cmdConnect(ctx context.Context, a *app, f *clf) error {
	c, _, argv, warnings, err := resolveAndBuild(ctx, a, f.target)
	if err != nil {
		return trace.Wrap(err)
	}
	for _, w := range warnings {
		a.log.Warnf("connect %s: %s", c.Name, w)
	}
	if f.dryRun || len(argv) == 0 {
		return printJSON(map[string]any{"connection": c.Name, "argv": argv, "warnings": warnings})
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr

	sess := a.sessions.Register(c.ID, false, &execWorker{cmd: cmd})
	if err := cmd.Start(); err != nil {
		return types.NewError(types.KindConnection, err, "failed to launch connection %q", c.Name)
	}
	if err := a.sessions.MarkActive(sess.ID); err != nil {
		a.log.WithError(err).Warn("failed to mark session active")
	}

	runErr := cmd.Wait()
	if err := a.sessions.Stop(ctx, sess.ID, 0); err != nil {
		a.log.WithError(err).Warn("failed to finalize session state")
	}
	if runErr != nil {
		return types.NewError(types.KindConnection, runErr, "connection %q failed", c.Name)
	}
	return nil
}

func cmdTest(ctx context.Context, a *app, f *clf) error {
	c, result, argv, warnings, err := resolveAndBuild(ctx, a, f.target)
	if err != nil {
		return trace.Wrap(err)
	}
	return printJSON(map[string]any{
		"connection":        c.Name,
		"protocol":          c.Protocol,
		"credential_backend": result.Backend,
		"argv":              argv,
		"warnings":          warnings,
	})
}

func cmdExport(a *app, f *clf) error {
	data, err := json.MarshalIndent(a.doc, "", "  ")
	if err != nil {
		return trace.Wrap(err)
	}
	return trace.Wrap(os.WriteFile(f.path, data, 0o600))
}

func cmdImport(a *app, f *clf) error {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return trace.Wrap(err)
	}
	var incoming struct {
		Connections []types.Connection
		Groups      []types.Group
	}
	if err := json.Unmarshal(data, &incoming); err != nil {
		return trace.Wrap(err)
	}
	for _, g := range incoming.Groups {
		if existing, _ := a.findGroup(g.ID); existing != nil {
			*existing = g
			continue
		}
		a.doc.Groups = append(a.doc.Groups, g)
	}
	for _, c := range incoming.Connections {
		if existing, _ := a.findConnection(c.ID); existing != nil {
			*existing = c
			continue
		}
		a.doc.Connections = append(a.doc.Connections, c)
	}
	return trace.Wrap(a.save())
}

func cmdSFTP(ctx context.Context, a *app, f *clf) error {
	c, _ := a.findConnection(f.target)
	if c == nil {
		return trace.NotFound("connection %q not found", f.target)
	}
	if c.Protocol != types.ProtocolSFTP && c.Protocol != types.ProtocolSSH {
		return trace.BadParameter("connection %q is not an SSH/SFTP connection", c.Name)
	}
	_, _, argv, warnings, err := resolveAndBuild(ctx, a, f.target)
	if err != nil {
		return trace.Wrap(err)
	}
	return printJSON(map[string]any{"connection": c.Name, "argv": argv, "warnings": warnings})
}

func cmdWOL(a *app, f *clf) error {
	c, _ := a.findConnection(f.target)
	if c == nil {
		return trace.NotFound("connection %q not found", f.target)
	}
	if c.WOL == nil {
		return trace.BadParameter("connection %q has no Wake-on-LAN configuration", c.Name)
	}
	if err := sendMagicPacket(*c.WOL); err != nil {
		return types.NewError(types.KindConnection, err, "failed to send Wake-on-LAN packet for %q", c.Name)
	}
	return nil
}

// sendMagicPacket builds and broadcasts the standard 6+16x6-byte
// Wake-on-LAN payload over UDP.
func sendMagicPacket(w types.WakeOnLAN) error {
	mac, err := net.ParseMAC(w.MACAddress)
	if err != nil {
		return trace.Wrap(err)
	}
	packet := make([]byte, 0, 102)
	for i := 0; i < 6; i++ {
		packet = append(packet, 0xFF)
	}
	for i := 0; i < 16; i++ {
		packet = append(packet, mac...)
	}
	port := w.Port
	if port == 0 {
		port = 9
	}
	conn, err := net.Dial("udp", fmt.Sprintf("%s:%d", w.BroadcastIP, port))
	if err != nil {
		return trace.Wrap(err)
	}
	defer conn.Close()
	_, err = conn.Write(packet)
	return trace.Wrap(err)
}

func cmdSnippetList(a *app, f *clf) error {
	headers := []string{"ID", "Name", "Command"}
	var rows []row
	for _, s := range a.doc.Snippets {
		rows = append(rows, row{Cells: []string{s.ID, s.Name, s.Command}})
	}
	return render(f.format, headers, rows, a.doc.Snippets)
}

func cmdSnippetAdd(a *app, f *clf) error {
	s := types.Snippet{ID: uuid.NewString(), Name: f.targetName, Command: f.secretValue}
	a.doc.Snippets = append(a.doc.Snippets, s)
	if err := a.save(); err != nil {
		return trace.Wrap(err)
	}
	return printJSON(s)
}

func cmdSnippetRemove(a *app, f *clf) error {
	s, idx := a.findSnippet(f.target)
	if s == nil {
		return trace.NotFound("snippet %q not found", f.target)
	}
	a.doc.Snippets = append(a.doc.Snippets[:idx], a.doc.Snippets[idx+1:]...)
	return trace.Wrap(a.save())
}

func cmdGroupList(a *app, f *clf) error {
	headers := []string{"ID", "Name", "Parent", "PasswordSource"}
	var rows []row
	for _, g := range a.doc.Groups {
		rows = append(rows, row{Cells: []string{g.ID, g.Name, g.ParentID, string(g.PasswordSource)}})
	}
	return render(f.format, headers, rows, a.doc.Groups)
}

func cmdGroupAdd(a *app, f *clf) error {
	parentID := ""
	if f.groupID != "" {
		p, _ := a.findGroup(f.groupID)
		if p == nil {
			return trace.NotFound("parent group %q not found", f.groupID)
		}
		parentID = p.ID
	}
	g := types.Group{
		ID:             uuid.NewString(),
		Name:           f.targetName,
		ParentID:       parentID,
		PasswordSource: types.PasswordSource(f.groupPasswordSource),
	}
	if parentID != "" && types.WouldCycle(g.ID, parentID, a.groupLookup()) {
		return trace.BadParameter("group %q would create a cycle under %q", g.Name, f.groupID)
	}
	a.doc.Groups = append(a.doc.Groups, g)
	if err := a.save(); err != nil {
		return trace.Wrap(err)
	}
	return printJSON(g)
}

func cmdGroupRemove(a *app, f *clf) error {
	g, idx := a.findGroup(f.target)
	if g == nil {
		return trace.NotFound("group %q not found", f.target)
	}
	for _, c := range a.doc.Connections {
		if c.GroupID == g.ID {
			return trace.BadParameter("group %q still has member connections", g.Name)
		}
	}
	a.doc.Groups = append(a.doc.Groups[:idx], a.doc.Groups[idx+1:]...)
	return trace.Wrap(a.save())
}

func cmdTemplateList(a *app, f *clf) error {
	headers := []string{"ID", "Name", "Protocol"}
	var rows []row
	for _, t := range a.doc.Templates {
		rows = append(rows, row{Cells: []string{t.ID, t.Name, string(t.Protocol)}})
	}
	return render(f.format, headers, rows, a.doc.Templates)
}

func cmdTemplateInstantiate(a *app, f *clf) error {
	t, _ := a.findTemplate(f.target)
	if t == nil {
		return trace.NotFound("template %q not found", f.target)
	}
	conn := t.Instantiate(f.targetName, f.host)
	conn.ID = uuid.NewString()
	conn.CreatedAt = now()
	conn.UpdatedAt = now()
	if err := conn.Validate(a.docHasGroup()); err != nil {
		return trace.Wrap(err)
	}
	a.doc.Connections = append(a.doc.Connections, conn)
	if err := a.save(); err != nil {
		return trace.Wrap(err)
	}
	return printJSON(conn)
}

func cmdClusterList(a *app, f *clf) error {
	headers := []string{"ID", "Name", "Connections"}
	var rows []row
	for _, c := range a.doc.Clusters {
		rows = append(rows, row{Cells: []string{c.ID, c.Name, strings.Join(c.ConnectionIDs, ",")}})
	}
	return render(f.format, headers, rows, a.doc.Clusters)
}

func cmdClusterAdd(a *app, f *clf) error {
	ids := splitTags(f.tags)
	for _, id := range ids {
		if c, _ := a.findConnection(id); c == nil {
			return trace.NotFound("connection %q not found", id)
		}
	}
	c := types.Cluster{ID: uuid.NewString(), Name: f.targetName, ConnectionIDs: ids}
	a.doc.Clusters = append(a.doc.Clusters, c)
	if err := a.save(); err != nil {
		return trace.Wrap(err)
	}
	return printJSON(c)
}

func cmdVarList(a *app, f *clf) error {
	headers := []string{"Name", "Scope", "ScopeID", "Value"}
	var rows []row
	for _, v := range a.doc.Variables {
		value := v.Value
		if v.IsSecret {
			value = "********"
		}
		rows = append(rows, row{Cells: []string{v.Name, scopeLabel(v.Scope), v.ScopeID, value}})
	}
	return render(f.format, headers, rows, a.doc.Variables)
}

func cmdVarSet(a *app, f *clf) error {
	scope, err := parseScope(f.varScope)
	if err != nil {
		return trace.Wrap(err)
	}
	if scope != types.ScopeGlobal && f.varScopeID == "" {
		return trace.BadParameter("--scope-id is required for scope %q", f.varScope)
	}
	v := types.Variable{Name: f.varName, Value: f.varValue, Scope: scope, ScopeID: f.varScopeID, IsSecret: f.varSecret}
	for i, existing := range a.doc.Variables {
		if existing.Name == v.Name && existing.Scope == v.Scope && existing.ScopeID == v.ScopeID {
			a.doc.Variables[i] = v
			if err := a.save(); err != nil {
				return trace.Wrap(err)
			}
			return printJSON(v)
		}
	}
	a.doc.Variables = append(a.doc.Variables, v)
	if err := a.save(); err != nil {
		return trace.Wrap(err)
	}
	return printJSON(v)
}

func cmdVarUnset(a *app, f *clf) error {
	for i, v := range a.doc.Variables {
		if v.Name == f.varName {
			a.doc.Variables = append(a.doc.Variables[:i], a.doc.Variables[i+1:]...)
			return trace.Wrap(a.save())
		}
	}
	return trace.NotFound("variable %q not found", f.varName)
}

func cmdSecretSet(a *app, f *clf) error {
	loader := credentials.NewFileEncryptedStoreLoader(a.secretsPath)
	backend := credentials.NewEncryptedStoreBackend(loader, a.passphrase)
	return trace.Wrap(backend.Store(f.secretKey, types.Credentials{
		Username: f.username,
		Password: secret.NewString(f.secretValue),
	}))
}

func cmdSecretGet(ctx context.Context, a *app, f *clf) error {
	loader := credentials.NewFileEncryptedStoreLoader(a.secretsPath)
	backend := credentials.NewEncryptedStoreBackend(loader, a.passphrase)
	creds, status, err := backend.Lookup(ctx, f.secretKey)
	if err != nil {
		return trace.Wrap(err)
	}
	if status != credentials.StatusFound {
		return trace.NotFound("no secret stored under %q", f.secretKey)
	}
	return printJSON(map[string]any{"username": creds.Username, "password": "********"})
}

func cmdStats(a *app, f *clf) error {
	sessions := a.sessions.List()
	counts := map[types.SessionState]int{}
	for _, s := range sessions {
		counts[s.State]++
	}
	return printJSON(map[string]any{
		"connections": len(a.doc.Connections),
		"groups":      len(a.doc.Groups),
		"templates":   len(a.doc.Templates),
		"clusters":    len(a.doc.Clusters),
		"snippets":    len(a.doc.Snippets),
		"variables":   len(a.doc.Variables),
		"sessions":    counts,
	})
}

func cmdCompletions(a *app, f *clf) error {
	fmt.Println(`# bash completion for rustconn
_rustconn() {
  COMPREPLY=( $(compgen -W "list add update delete show duplicate connect test export import sftp wol snippet group template cluster var secret stats completions" -- "${COMP_WORDS[COMP_CWORD]}") )
}
complete -F _rustconn rustconn`)
	return nil
}

func defaultConfigFor(proto types.Protocol) (types.ProtocolConfig, error) {
	switch proto {
	case types.ProtocolSSH:
		return types.NewProtocolConfig(&types.SSHConfig{AuthMethod: types.AuthAgent}), nil
	case types.ProtocolSFTP:
		return types.NewProtocolConfig(&types.SFTPConfig{SSHConfig: types.SSHConfig{AuthMethod: types.AuthAgent}}), nil
	case types.ProtocolRDP:
		return types.NewProtocolConfig(&types.RDPConfig{Resolution: "1920x1080", ColorDepth: 24}), nil
	case types.ProtocolVNC:
		return types.NewProtocolConfig(&types.VNCConfig{Compression: 5, Quality: 7}), nil
	case types.ProtocolSPICE:
		return types.NewProtocolConfig(&types.SPICEConfig{ImageCompression: "auto"}), nil
	case types.ProtocolSerial:
		return types.NewProtocolConfig(&types.SerialConfig{BaudRate: 9600, Parity: "none", StopBits: 1, FlowControl: "none"}), nil
	case types.ProtocolTelnet:
		return types.NewProtocolConfig(&types.TelnetConfig{}), nil
	case types.ProtocolKubernetes:
		return types.NewProtocolConfig(&types.KubernetesConfig{ShellPath: "/bin/sh"}), nil
	case types.ProtocolZeroTrust:
		return types.NewProtocolConfig(&types.ZeroTrustConfig{}), nil
	default:
		return types.ProtocolConfig{}, trace.BadParameter("unknown protocol %q", proto)
	}
}

func now() time.Time { return time.Now() }

func splitTags(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func scopeLabel(s types.VariableScope) string {
	switch s {
	case types.ScopeGlobal:
		return "global"
	case types.ScopeDocument:
		return "document"
	case types.ScopeConnection:
		return "connection"
	default:
		return "unknown"
	}
}

func parseScope(s string) (types.VariableScope, error) {
	switch s {
	case "global":
		return types.ScopeGlobal, nil
	case "document":
		return types.ScopeDocument, nil
	case "connection":
		return types.ScopeConnection, nil
	default:
		return 0, trace.BadParameter("unknown scope %q", s)
	}
}

// resolveVariableValue is used by command-substitution call sites (the
// Snippet run path) to expand ${...} references via lib/variables before
// handing a string to the shell.
func resolveVariableValue(store variables.Store, value, connectionID, documentID string) (string, error) {
	out, err := variables.SubstituteForCommand(store, value, connectionID, documentID)
	return out, trace.Wrap(err)
}
