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

package split

import "github.com/gravitational/trace"

// NodeSnapshot is the wire form of a single tree node: a leaf carries
// PanelID/SessionID/Color, a split carries SplitID/Direction/Position
// plus its two children. Exactly one shape is populated, selected by
// Leaf.
type NodeSnapshot struct {
	Leaf      bool    `json:"leaf"`
	PanelID   PanelID `json:"panel_id,omitempty"`
	SessionID *string `json:"session_id,omitempty"`
	Color     ColorID `json:"color,omitempty"`

	SplitID   SplitID       `json:"split_id,omitempty"`
	Direction Direction     `json:"direction,omitempty"`
	Position  float64       `json:"position,omitempty"`
	Left      *NodeSnapshot `json:"left,omitempty"`
	Right     *NodeSnapshot `json:"right,omitempty"`
}

// TreeSnapshot is the wire form of one tab's panel tree: its node shape
// plus which leaf was focused. Carried inside session.RestoreState so a
// tab's split layout survives a restart.
type TreeSnapshot struct {
	Root    NodeSnapshot `json:"root"`
	Focused PanelID      `json:"focused"`
}

// Snapshot captures t's current shape for persistence.
func (t *Tree) Snapshot() TreeSnapshot {
	return TreeSnapshot{
		Root:    snapshotNode(t.root),
		Focused: t.focused.panelID,
	}
}

func snapshotNode(n *node) NodeSnapshot {
	if n.leaf {
		return NodeSnapshot{
			Leaf:      true,
			PanelID:   n.panelID,
			SessionID: n.sessionID,
			Color:     n.color,
		}
	}
	left := snapshotNode(n.left)
	right := snapshotNode(n.right)
	return NodeSnapshot{
		SplitID:   n.splitID,
		Direction: n.direction,
		Position:  n.position,
		Left:      &left,
		Right:     &right,
	}
}

// NewTreeFromSnapshot rebuilds a Tree from a TreeSnapshot captured by
// Snapshot: every leaf's panel id, placed session, and color, every
// split's id/direction/position, and the focused leaf are restored
// exactly. pool is seeded past every restored color id so a panel split
// off after restore doesn't immediately collide with a restored color.
func NewTreeFromSnapshot(pool *ColorPool, snap TreeSnapshot) (*Tree, error) {
	t := &Tree{
		leaves: make(map[PanelID]*node),
		splits: make(map[SplitID]*node),
		pool:   pool,
	}

	root, used, err := buildNode(t, snap.Root, nil)
	if err != nil {
		return nil, trace.Wrap(err)
	}
	t.root = root
	pool.Seed(used)

	focused, ok := t.leaves[snap.Focused]
	if !ok {
		return nil, trace.BadParameter(
			"session restore: focused panel %q not present in restored tree", snap.Focused)
	}
	t.focused = focused
	return t, nil
}

func buildNode(t *Tree, snap NodeSnapshot, parent *node) (*node, []ColorID, error) {
	if snap.Leaf {
		if snap.PanelID == "" {
			return nil, nil, trace.BadParameter("session restore: leaf node missing panel id")
		}
		if _, exists := t.leaves[snap.PanelID]; exists {
			return nil, nil, trace.BadParameter("session restore: duplicate panel id %q", snap.PanelID)
		}
		n := &node{
			parent:    parent,
			leaf:      true,
			panelID:   snap.PanelID,
			sessionID: snap.SessionID,
			color:     snap.Color,
		}
		t.leaves[n.panelID] = n
		return n, []ColorID{n.color}, nil
	}

	if snap.Left == nil || snap.Right == nil {
		return nil, nil, trace.BadParameter("session restore: split %q missing a child", snap.SplitID)
	}

	n := &node{
		parent:    parent,
		splitID:   snap.SplitID,
		direction: snap.Direction,
		position:  snap.Position,
	}
	left, usedLeft, err := buildNode(t, *snap.Left, n)
	if err != nil {
		return nil, nil, trace.Wrap(err)
	}
	right, usedRight, err := buildNode(t, *snap.Right, n)
	if err != nil {
		return nil, nil, trace.Wrap(err)
	}
	n.left = left
	n.right = right
	t.splits[n.splitID] = n

	return n, append(usedLeft, usedRight...), nil
}
