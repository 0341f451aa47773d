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
	"github.com/gravitational/trace"

	"github.com/rustconn/rustconn/api/types"
)

// DocumentData is the in-memory, API-typed contents of one Document: the
// entities a caller actually works with. Load/Save translate it to/from
// the on-disk documentRecord.
type DocumentData struct {
	Document  types.Document
	Connections []types.Connection
	Groups      []types.Group
	Templates   []types.Template
	Clusters    []types.Cluster
	Snippets    []types.Snippet
	Variables   []types.Variable
}

func toRecord(d DocumentData) (documentRecord, error) {
	rec := documentRecord{ID: d.Document.ID, Name: d.Document.Name}

	for _, c := range d.Connections {
		cr := connectionRecord{
			ID:              c.ID,
			Name:            c.Name,
			Host:            c.Host,
			Port:            c.Port,
			Protocol:        string(c.Protocol),
			Username:        c.Username,
			Domain:          c.Domain,
			Description:     c.Description,
			Icon:            c.Icon,
			Pinned:          c.Pinned,
			Tags:            c.Tags,
			GroupID:         c.GroupID,
			DocumentID:      c.DocumentID,
			CreatedAt:       c.CreatedAt,
			UpdatedAt:       c.UpdatedAt,
			LastConnectedAt: c.LastConnectedAt,
		}
		if err := protocolConfigToRecord(&cr, c.Config); err != nil {
			return documentRecord{}, trace.Wrap(err, "store: connection %q", c.ID)
		}
		if c.Monitoring.Set || c.Monitoring.Enabled || c.Monitoring.IntervalSeconds != 0 {
			cr.Monitoring = &monitoringOverrideRecord{
				Set:             c.Monitoring.Set,
				Enabled:         c.Monitoring.Enabled,
				IntervalSeconds: c.Monitoring.IntervalSeconds,
			}
		}
		if c.WOL != nil {
			cr.WOL = &wolRecord{MACAddress: c.WOL.MACAddress, BroadcastIP: c.WOL.BroadcastIP, Port: c.WOL.Port}
		}
		if c.Retry != nil {
			cr.Retry = &retryPolicyRecord{
				Enabled:           c.Retry.Enabled,
				MaxAttempts:       c.Retry.MaxAttempts,
				InitialDelayMS:    c.Retry.InitialDelayMS,
				MaxDelayMS:        c.Retry.MaxDelayMS,
				BackoffMultiplier: c.Retry.BackoffMultiplier,
			}
		}
		for _, p := range c.CustomProperties {
			cr.CustomProperties = append(cr.CustomProperties, customPropertyRecord{
				Name: p.Name, Value: p.Value, Kind: string(p.Kind),
			})
		}
		rec.Connections = append(rec.Connections, cr)
	}

	for _, g := range d.Groups {
		rec.Groups = append(rec.Groups, groupRecord{
			ID:             g.ID,
			Name:           g.Name,
			ParentID:       g.ParentID,
			PasswordSource: string(g.PasswordSource),
		})
	}

	for _, tpl := range d.Templates {
		tr := templateRecord{ID: tpl.ID, Name: tpl.Name, Protocol: string(tpl.Protocol), Description: tpl.Description}
		placeholder := connectionRecord{}
		if err := protocolConfigToRecord(&placeholder, tpl.Config); err != nil {
			return documentRecord{}, trace.Wrap(err, "store: template %q", tpl.ID)
		}
		tr.SSH, tr.SFTP, tr.RDP, tr.VNC = placeholder.SSH, placeholder.SFTP, placeholder.RDP, placeholder.VNC
		tr.SPICE, tr.Serial, tr.Telnet = placeholder.SPICE, placeholder.Serial, placeholder.Telnet
		tr.Kubernetes, tr.ZeroTrust = placeholder.Kubernetes, placeholder.ZeroTrust
		rec.Templates = append(rec.Templates, tr)
	}

	for _, cl := range d.Clusters {
		rec.Clusters = append(rec.Clusters, clusterRecord{ID: cl.ID, Name: cl.Name, ConnectionIDs: cl.ConnectionIDs})
	}

	for _, s := range d.Snippets {
		rec.Snippets = append(rec.Snippets, snippetRecord{ID: s.ID, Name: s.Name, Command: s.Command})
	}

	for _, v := range d.Variables {
		if v.IsSecret {
			continue // secret-valued variables are not written to TOML, so they do not survive a Save/Load round trip.
		}
		rec.Variables = append(rec.Variables, variableRecord{
			Name:        v.Name,
			Value:       v.Value,
			IsSecret:    v.IsSecret,
			Description: v.Description,
			Scope:       scopeToString(v.Scope),
			ScopeID:     v.ScopeID,
		})
	}

	return rec, nil
}

func fromRecord(rec documentRecord) (DocumentData, error) {
	d := DocumentData{Document: types.Document{ID: rec.ID, Name: rec.Name}}

	for _, cr := range rec.Connections {
		cfg, err := protocolConfigFromFields(cr.Protocol, cr.SSH, cr.SFTP, cr.RDP, cr.VNC, cr.SPICE, cr.Serial, cr.Telnet, cr.Kubernetes, cr.ZeroTrust)
		if err != nil {
			return DocumentData{}, trace.Wrap(err, "store: connection %q", cr.ID)
		}
		c := types.Connection{
			ID:              cr.ID,
			Name:            cr.Name,
			Host:            cr.Host,
			Port:            cr.Port,
			Protocol:        types.Protocol(cr.Protocol),
			Username:        cr.Username,
			Domain:          cr.Domain,
			Description:     cr.Description,
			Icon:            cr.Icon,
			Pinned:          cr.Pinned,
			Tags:            cr.Tags,
			GroupID:         cr.GroupID,
			DocumentID:      cr.DocumentID,
			Config:          cfg,
			CreatedAt:       cr.CreatedAt,
			UpdatedAt:       cr.UpdatedAt,
			LastConnectedAt: cr.LastConnectedAt,
		}
		if cr.Monitoring != nil {
			c.Monitoring = types.MonitoringOverride{
				Set: cr.Monitoring.Set, Enabled: cr.Monitoring.Enabled, IntervalSeconds: cr.Monitoring.IntervalSeconds,
			}
		}
		if cr.WOL != nil {
			c.WOL = &types.WakeOnLAN{MACAddress: cr.WOL.MACAddress, BroadcastIP: cr.WOL.BroadcastIP, Port: cr.WOL.Port}
		}
		if cr.Retry != nil {
			c.Retry = &types.RetryPolicy{
				Enabled:           cr.Retry.Enabled,
				MaxAttempts:       cr.Retry.MaxAttempts,
				InitialDelayMS:    cr.Retry.InitialDelayMS,
				MaxDelayMS:        cr.Retry.MaxDelayMS,
				BackoffMultiplier: cr.Retry.BackoffMultiplier,
			}
		}
		for _, p := range cr.CustomProperties {
			c.CustomProperties = append(c.CustomProperties, types.CustomProperty{
				Name: p.Name, Value: p.Value, Kind: types.PropertyKind(p.Kind),
			})
		}
		d.Connections = append(d.Connections, c)
	}

	for _, gr := range rec.Groups {
		d.Groups = append(d.Groups, types.Group{
			ID: gr.ID, Name: gr.Name, ParentID: gr.ParentID, PasswordSource: types.PasswordSource(gr.PasswordSource),
		})
	}

	for _, tr := range rec.Templates {
		cfg, err := protocolConfigFromFields(tr.Protocol, tr.SSH, tr.SFTP, tr.RDP, tr.VNC, tr.SPICE, tr.Serial, tr.Telnet, tr.Kubernetes, tr.ZeroTrust)
		if err != nil {
			return DocumentData{}, trace.Wrap(err, "store: template %q", tr.ID)
		}
		d.Templates = append(d.Templates, types.Template{
			ID: tr.ID, Name: tr.Name, Protocol: types.Protocol(tr.Protocol), Config: cfg, Description: tr.Description,
		})
	}

	for _, cr := range rec.Clusters {
		d.Clusters = append(d.Clusters, types.Cluster{ID: cr.ID, Name: cr.Name, ConnectionIDs: cr.ConnectionIDs})
	}

	for _, sr := range rec.Snippets {
		d.Snippets = append(d.Snippets, types.Snippet{ID: sr.ID, Name: sr.Name, Command: sr.Command})
	}

	for _, vr := range rec.Variables {
		scope, err := scopeFromString(vr.Scope)
		if err != nil {
			return DocumentData{}, trace.Wrap(err, "store: variable %q", vr.Name)
		}
		d.Variables = append(d.Variables, types.Variable{
			Name: vr.Name, Value: vr.Value, IsSecret: vr.IsSecret, Description: vr.Description,
			Scope: scope, ScopeID: vr.ScopeID,
		})
	}

	return d, nil
}

func scopeToString(s types.VariableScope) string {
	switch s {
	case types.ScopeGlobal:
		return "global"
	case types.ScopeDocument:
		return "document"
	case types.ScopeConnection:
		return "connection"
	default:
		return "global"
	}
}

func scopeFromString(s string) (types.VariableScope, error) {
	switch s {
	case "", "global":
		return types.ScopeGlobal, nil
	case "document":
		return types.ScopeDocument, nil
	case "connection":
		return types.ScopeConnection, nil
	default:
		return 0, trace.BadParameter("store: unrecognized variable scope %q", s)
	}
}
