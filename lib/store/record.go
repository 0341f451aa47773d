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

package store

import (
	"time"

	"github.com/gravitational/trace"

	"github.com/rustconn/rustconn/api/types"
)

// documentRecord is the TOML-on-disk shape of one types.Document: a flat
// set of tables, each keyed by the owning entity's ID. TOML has no native
// sum type, so ProtocolConfig's variant is flattened into one optional
// sub-table per protocol on connectionRecord rather than round-tripped
// through the `any` ProtocolConfig.Variant() directly.
type documentRecord struct {
	ID   string `toml:"id"`
	Name string `toml:"name"`

	Connections []connectionRecord `toml:"connections"`
	Groups      []groupRecord      `toml:"groups"`
	Templates   []templateRecord   `toml:"templates"`
	Clusters    []clusterRecord    `toml:"clusters"`
	Snippets    []snippetRecord    `toml:"snippets"`
	Variables   []variableRecord   `toml:"variables"`
}

type connectionRecord struct {
	ID          string   `toml:"id"`
	Name        string   `toml:"name"`
	Host        string   `toml:"host"`
	Port        int      `toml:"port"`
	Protocol    string   `toml:"protocol"`
	Username    string   `toml:"username,omitempty"`
	Domain      string   `toml:"domain,omitempty"`
	Description string   `toml:"description,omitempty"`
	Icon        string   `toml:"icon,omitempty"`
	Pinned      bool     `toml:"pinned,omitempty"`
	Tags        []string `toml:"tags,omitempty"`
	GroupID     string   `toml:"group_id,omitempty"`
	DocumentID  string   `toml:"document_id,omitempty"`

	SSH        *sshConfigRecord        `toml:"ssh,omitempty"`
	SFTP       *sftpConfigRecord       `toml:"sftp,omitempty"`
	RDP        *rdpConfigRecord        `toml:"rdp,omitempty"`
	VNC        *vncConfigRecord        `toml:"vnc,omitempty"`
	SPICE      *spiceConfigRecord      `toml:"spice,omitempty"`
	Serial     *serialConfigRecord     `toml:"serial,omitempty"`
	Telnet     *telnetConfigRecord     `toml:"telnet,omitempty"`
	Kubernetes *kubernetesConfigRecord `toml:"kubernetes,omitempty"`
	ZeroTrust  *zeroTrustConfigRecord  `toml:"zerotrust,omitempty"`

	Monitoring *monitoringOverrideRecord `toml:"monitoring,omitempty"`
	WOL        *wolRecord                `toml:"wol,omitempty"`
	Retry       *retryPolicyRecord       `toml:"retry,omitempty"`

	CustomProperties []customPropertyRecord `toml:"custom_properties,omitempty"`

	CreatedAt       time.Time  `toml:"created_at"`
	UpdatedAt       time.Time  `toml:"updated_at"`
	LastConnectedAt *time.Time `toml:"last_connected_at,omitempty"`
}

type sshConfigRecord struct {
	AuthMethod string `toml:"auth_method"`
	KeyPath    string `toml:"key_path,omitempty"`
	ProxyJump  string `toml:"proxy_jump,omitempty"`
	Port22Only bool   `toml:"port22_only,omitempty"`
}

type sftpConfigRecord struct {
	sshConfigRecord
	RemotePath string `toml:"remote_path,omitempty"`
}

type rdpConfigRecord struct {
	Resolution    string   `toml:"resolution,omitempty"`
	ColorDepth    int      `toml:"color_depth,omitempty"`
	Gateway       string   `toml:"gateway,omitempty"`
	SharedFolders []string `toml:"shared_folders,omitempty"`
	CustomArgs    []string `toml:"custom_args,omitempty"`
	Domain        string   `toml:"domain,omitempty"`
}

type vncConfigRecord struct {
	Compression int      `toml:"compression,omitempty"`
	Quality     int      `toml:"quality,omitempty"`
	CustomArgs  []string `toml:"custom_args,omitempty"`
}

type spiceConfigRecord struct {
	TLSPort           int    `toml:"tls_port,omitempty"`
	ImageCompression  string `toml:"image_compression,omitempty"`
	EnableUSBRedirect bool   `toml:"enable_usb_redirect,omitempty"`
}

type serialConfigRecord struct {
	Device      string `toml:"device"`
	BaudRate    int    `toml:"baud_rate"`
	Parity      string `toml:"parity,omitempty"`
	StopBits    int    `toml:"stop_bits,omitempty"`
	FlowControl string `toml:"flow_control,omitempty"`
}

type telnetConfigRecord struct{}

type kubernetesConfigRecord struct {
	Namespace string `toml:"namespace,omitempty"`
	PodName   string `toml:"pod_name,omitempty"`
	Container string `toml:"container,omitempty"`
	ShellPath string `toml:"shell_path,omitempty"`
}

type zeroTrustConfigRecord struct {
	TunnelID string `toml:"tunnel_id,omitempty"`
	Resource string `toml:"resource,omitempty"`
}

type monitoringOverrideRecord struct {
	Set             bool `toml:"set"`
	Enabled         bool `toml:"enabled"`
	IntervalSeconds int  `toml:"interval_seconds,omitempty"`
}

type wolRecord struct {
	MACAddress  string `toml:"mac_address"`
	BroadcastIP string `toml:"broadcast_ip"`
	Port        int    `toml:"port"`
}

type retryPolicyRecord struct {
	Enabled           bool    `toml:"enabled"`
	MaxAttempts       int     `toml:"max_attempts"`
	InitialDelayMS    int64   `toml:"initial_delay_ms"`
	MaxDelayMS        int64   `toml:"max_delay_ms"`
	BackoffMultiplier float64 `toml:"backoff_multiplier"`
}

type customPropertyRecord struct {
	Name  string `toml:"name"`
	Value string `toml:"value"`
	Kind  string `toml:"kind"`
}

type groupRecord struct {
	ID             string `toml:"id"`
	Name           string `toml:"name"`
	ParentID       string `toml:"parent_id,omitempty"`
	PasswordSource string `toml:"password_source,omitempty"`
}

type templateRecord struct {
	ID          string `toml:"id"`
	Name        string `toml:"name"`
	Protocol    string `toml:"protocol"`
	Description string `toml:"description,omitempty"`

	SSH        *sshConfigRecord        `toml:"ssh,omitempty"`
	SFTP       *sftpConfigRecord       `toml:"sftp,omitempty"`
	RDP        *rdpConfigRecord        `toml:"rdp,omitempty"`
	VNC        *vncConfigRecord        `toml:"vnc,omitempty"`
	SPICE      *spiceConfigRecord      `toml:"spice,omitempty"`
	Serial     *serialConfigRecord     `toml:"serial,omitempty"`
	Telnet     *telnetConfigRecord     `toml:"telnet,omitempty"`
	Kubernetes *kubernetesConfigRecord `toml:"kubernetes,omitempty"`
	ZeroTrust  *zeroTrustConfigRecord  `toml:"zerotrust,omitempty"`
}

type clusterRecord struct {
	ID            string   `toml:"id"`
	Name          string   `toml:"name"`
	ConnectionIDs []string `toml:"connection_ids,omitempty"`
}

type snippetRecord struct {
	ID      string `toml:"id"`
	Name    string `toml:"name"`
	Command string `toml:"command"`
}

type variableRecord struct {
	Name        string `toml:"name"`
	Value       string `toml:"value"`
	IsSecret    bool   `toml:"is_secret,omitempty"`
	Description string `toml:"description,omitempty"`
	Scope       string `toml:"scope"`
	ScopeID     string `toml:"scope_id,omitempty"`
}

func protocolConfigToRecord(rec *connectionRecord, cfg types.ProtocolConfig) error {
	switch v := cfg.Variant().(type) {
	case nil:
		return nil
	case *types.SSHConfig:
		rec.SSH = &sshConfigRecord{
			AuthMethod: string(v.AuthMethod),
			KeyPath:    v.KeyPath,
			ProxyJump:  v.ProxyJump,
			Port22Only: v.Port22Only,
		}
	case *types.SFTPConfig:
		rec.SFTP = &sftpConfigRecord{
			sshConfigRecord: sshConfigRecord{
				AuthMethod: string(v.AuthMethod),
				KeyPath:    v.KeyPath,
				ProxyJump:  v.ProxyJump,
				Port22Only: v.Port22Only,
			},
			RemotePath: v.RemotePath,
		}
	case *types.RDPConfig:
		rec.RDP = &rdpConfigRecord{
			Resolution:    v.Resolution,
			ColorDepth:    v.ColorDepth,
			Gateway:       v.Gateway,
			SharedFolders: v.SharedFolders,
			CustomArgs:    v.CustomArgs,
			Domain:        v.Domain,
		}
	case *types.VNCConfig:
		rec.VNC = &vncConfigRecord{Compression: v.Compression, Quality: v.Quality, CustomArgs: v.CustomArgs}
	case *types.SPICEConfig:
		rec.SPICE = &spiceConfigRecord{
			TLSPort:           v.TLSPort,
			ImageCompression:  v.ImageCompression,
			EnableUSBRedirect: v.EnableUSBRedirect,
		}
	case *types.SerialConfig:
		rec.Serial = &serialConfigRecord{
			Device:      v.Device,
			BaudRate:    v.BaudRate,
			Parity:      v.Parity,
			StopBits:    v.StopBits,
			FlowControl: v.FlowControl,
		}
	case *types.TelnetConfig:
		rec.Telnet = &telnetConfigRecord{}
	case *types.KubernetesConfig:
		rec.Kubernetes = &kubernetesConfigRecord{
			Namespace: v.Namespace,
			PodName:   v.PodName,
			Container: v.Container,
			ShellPath: v.ShellPath,
		}
	case *types.ZeroTrustConfig:
		rec.ZeroTrust = &zeroTrustConfigRecord{TunnelID: v.TunnelID, Resource: v.Resource}
	default:
		return trace.BadParameter("store: unrecognized protocol config type %T", v)
	}
	return nil
}

// protocolConfigFromFields rebuilds a types.ProtocolConfig from whichever
// single sub-table is populated on a connectionRecord/templateRecord.
// Exactly one of these fields is expected; if more than one round-tripped
// in (a hand-edited file), the first match in declaration order wins.
func protocolConfigFromFields(
	protocol string,
	ssh *sshConfigRecord, sftp *sftpConfigRecord, rdp *rdpConfigRecord, vnc *vncConfigRecord,
	spice *spiceConfigRecord, serial *serialConfigRecord, telnet *telnetConfigRecord,
	kube *kubernetesConfigRecord, zt *zeroTrustConfigRecord,
) (types.ProtocolConfig, error) {
	switch {
	case ssh != nil:
		return types.NewProtocolConfig(&types.SSHConfig{
			AuthMethod: types.AuthMethod(ssh.AuthMethod),
			KeyPath:    ssh.KeyPath,
			ProxyJump:  ssh.ProxyJump,
			Port22Only: ssh.Port22Only,
		}), nil
	case sftp != nil:
		return types.NewProtocolConfig(&types.SFTPConfig{
			SSHConfig: types.SSHConfig{
				AuthMethod: types.AuthMethod(sftp.AuthMethod),
				KeyPath:    sftp.KeyPath,
				ProxyJump:  sftp.ProxyJump,
				Port22Only: sftp.Port22Only,
			},
			RemotePath: sftp.RemotePath,
		}), nil
	case rdp != nil:
		return types.NewProtocolConfig(&types.RDPConfig{
			Resolution:    rdp.Resolution,
			ColorDepth:    rdp.ColorDepth,
			Gateway:       rdp.Gateway,
			SharedFolders: rdp.SharedFolders,
			CustomArgs:    rdp.CustomArgs,
			Domain:        rdp.Domain,
		}), nil
	case vnc != nil:
		return types.NewProtocolConfig(&types.VNCConfig{
			Compression: vnc.Compression,
			Quality:     vnc.Quality,
			CustomArgs:  vnc.CustomArgs,
		}), nil
	case spice != nil:
		return types.NewProtocolConfig(&types.SPICEConfig{
			TLSPort:           spice.TLSPort,
			ImageCompression:  spice.ImageCompression,
			EnableUSBRedirect: spice.EnableUSBRedirect,
		}), nil
	case serial != nil:
		return types.NewProtocolConfig(&types.SerialConfig{
			Device:      serial.Device,
			BaudRate:    serial.BaudRate,
			Parity:      serial.Parity,
			StopBits:    serial.StopBits,
			FlowControl: serial.FlowControl,
		}), nil
	case telnet != nil:
		return types.NewProtocolConfig(&types.TelnetConfig{}), nil
	case kube != nil:
		return types.NewProtocolConfig(&types.KubernetesConfig{
			Namespace: kube.Namespace,
			PodName:   kube.PodName,
			Container: kube.Container,
			ShellPath: kube.ShellPath,
		}), nil
	case zt != nil:
		return types.NewProtocolConfig(&types.ZeroTrustConfig{TunnelID: zt.TunnelID, Resource: zt.Resource}), nil
	default:
		return types.ProtocolConfig{}, trace.BadParameter("store: connection for protocol %q has no matching config table", protocol)
	}
}
