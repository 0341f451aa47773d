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

package protocol

import (
	"github.com/gravitational/trace"

	"github.com/rustconn/rustconn/api/types"
)

type kubernetesProtocol struct{}

func (kubernetesProtocol) ProtocolID() types.Protocol { return types.ProtocolKubernetes }
func (kubernetesProtocol) DefaultPort() int           { return 0 }

func (kubernetesProtocol) Capability() types.Capability {
	return types.Capability{ExternalFallback: true, TerminalBased: true}
}

func (kubernetesProtocol) Validate(conn *types.Connection) error {
	cfg, ok := conn.Config.Variant().(*types.KubernetesConfig)
	if !ok {
		return types.InvalidConfig("kubernetes: connection carries no kubernetes config")
	}
	if cfg.PodName == "" {
		return types.InvalidConfig("kubernetes: pod name must not be empty")
	}
	if cfg.ShellPath == "" {
		return types.InvalidConfig("kubernetes: shell path must be selected")
	}
	return nil
}

func (p kubernetesProtocol) BuildCommand(conn *types.Connection) ([]string, []string, error) {
	if err := p.Validate(conn); err != nil {
		return nil, nil, trace.Wrap(err)
	}
	cfg := conn.Config.Variant().(*types.KubernetesConfig)

	argv := []string{"kubectl", "exec", "-it", cfg.PodName}
	if cfg.Namespace != "" {
		argv = append(argv, "-n", cfg.Namespace)
	}
	if cfg.Container != "" {
		argv = append(argv, "-c", cfg.Container)
	}
	argv = append(argv, "--", cfg.ShellPath)
	return argv, nil, nil
}
