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

// Command rustconn is the CLI front-end: it parses the verb/flag surface,
// loads the connections document, and dispatches to the core
// collaborators (lib/store, lib/credentials, lib/protocol, lib/session).
package main

import (
	"context"
	"os"

	"github.com/gravitational/trace"
	"github.com/sirupsen/logrus"

	"github.com/rustconn/rustconn/api/types"
	"github.com/rustconn/rustconn/lib/utils"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:]))
}

// run parses args, dispatches the selected command, and maps the result
// to a process exit code: 0 success, 1 general (config/validation/IO)
// failure, 2 connection failure, matching the CLI surface's exit-code
// contract.
func run(ctx context.Context, args []string) int {
	var f clf
	app := buildParser(&f)

	command, err := app.Parse(args)
	if err != nil {
		utils.FatalError(err)
		return 1
	}

	level := logrus.WarnLevel
	if f.debug {
		level = logrus.DebugLevel
	}
	utils.InitLogger(utils.LoggingForCLI, level)
	log := logrus.NewEntry(logrus.StandardLogger()).WithField(trace.Component, "rustconn")

	if f.docPath == "" {
		f.docPath = defaultDocPath()
	}

	a, err := newApp(f.docPath, f.format, log)
	if err != nil {
		os.Stderr.WriteString(utils.UserMessageFromError(err) + "\n")
		return 1
	}

	if err := dispatch(ctx, a, command, &f); err != nil {
		os.Stderr.WriteString(utils.UserMessageFromError(err) + "\n")
		return exitCodeFor(err)
	}
	return 0
}

// exitCodeFor maps a dispatched command's error to the CLI's exit-code
// contract: a Connection- or Session-kind CoreError means the connection
// attempt itself failed (2); everything else -- configuration, storage,
// credential, or protocol-validation errors -- is a general failure (1).
func exitCodeFor(err error) int {
	switch types.ErrorKind(err) {
	case types.KindConnection, types.KindSession:
		return 2
	default:
		return 1
	}
}
