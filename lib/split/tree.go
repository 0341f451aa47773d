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

import (
	"fmt"
	"sync/atomic"

	"github.com/gravitational/trace"
)

// Direction is the axis a Split node divides its two children along.
type Direction string

const (
	Horizontal Direction = "horizontal"
	Vertical   Direction = "vertical"
)

// PanelID identifies a leaf; stable across every non-destructive
// operation (split, place, focus, set-split-position).
type PanelID string

// SplitID identifies an internal split node, addressed by
// SetSplitPosition.
type SplitID string

var idSeq uint64

func nextID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, atomic.AddUint64(&idSeq, 1))
}

// node is either a leaf (sessionID optional) or an internal split with
// exactly two children.
type node struct {
	parent *node

	// leaf fields
	leaf      bool
	panelID   PanelID
	sessionID *string
	color     ColorID

	// split fields
	splitID   SplitID
	direction Direction
	position  float64
	left      *node
	right     *node
}

// PlaceResult is the outcome of Place.
type PlaceResult struct {
	Evicted     bool
	PriorSessionID string
}

// RemoveResult is the outcome of Remove.
type RemoveResult struct {
	// SurvivingPanelID is the panel id of the leaf that absorbed the
	// removed panel's space (the sibling, or its own descendant leaf if
	// the sibling was itself a split).
	SurvivingPanelID PanelID
}

// Tree is the binary tree of panels belonging to a single tab. A Tree
// always has at least one leaf; Remove refuses any operation that would
// leave zero.
type Tree struct {
	root    *node
	focused *node
	leaves  map[PanelID]*node
	splits  map[SplitID]*node
	pool    *ColorPool
}

// NewTree creates a tab's tree with a single, focused, empty leaf.
func NewTree(pool *ColorPool) *Tree {
	t := &Tree{
		leaves: make(map[PanelID]*node),
		splits: make(map[SplitID]*node),
		pool:   pool,
	}
	root := t.newLeaf(nil)
	t.root = root
	t.focused = root
	return t
}

func (t *Tree) newLeaf(parent *node) *node {
	n := &node{
		parent:  parent,
		leaf:    true,
		panelID: PanelID(nextID("panel")),
		color:   t.pool.Acquire(),
	}
	t.leaves[n.panelID] = n
	return n
}

// FocusedPanelID returns the currently focused leaf's id.
func (t *Tree) FocusedPanelID() PanelID {
	return t.focused.panelID
}

// LeafCount returns the number of leaves currently in the tree.
func (t *Tree) LeafCount() int {
	return len(t.leaves)
}

// Split splits the focused leaf into a Split node with two leaves: the
// existing session stays in the left/original leaf, the new leaf is empty
// and becomes focused. Returns the new leaf's PanelID.
func (t *Tree) Split(direction Direction) PanelID {
	target := t.focused

	splitNode := &node{
		parent:    target.parent,
		splitID:   SplitID(nextID("split")),
		direction: direction,
		position:  0.5,
	}
	t.splits[splitNode.splitID] = splitNode

	// the original leaf keeps its session+color and becomes the left child
	left := &node{
		parent:    splitNode,
		leaf:      true,
		panelID:   target.panelID,
		sessionID: target.sessionID,
		color:     target.color,
	}
	t.leaves[left.panelID] = left

	right := t.newLeaf(splitNode)

	splitNode.left = left
	splitNode.right = right

	if target.parent == nil {
		t.root = splitNode
	} else {
		if target.parent.left == target {
			target.parent.left = splitNode
		} else {
			target.parent.right = splitNode
		}
	}

	t.focused = right
	return right.panelID
}

// Place attaches sessionID to the leaf identified by panelID. Placing on
// an empty leaf succeeds plainly; placing on an occupied leaf evicts the
// prior session, which the caller must reparent or close.
func (t *Tree) Place(panelID PanelID, sessionID string) (PlaceResult, error) {
	n, ok := t.leaves[panelID]
	if !ok {
		return PlaceResult{}, trace.NotFound("panel %q not found", panelID)
	}
	var result PlaceResult
	if n.sessionID != nil {
		result = PlaceResult{Evicted: true, PriorSessionID: *n.sessionID}
	}
	id := sessionID
	n.sessionID = &id
	return result, nil
}

// Clear empties the leaf identified by panelID without placing a new
// session, returning the prior session id if any.
func (t *Tree) Clear(panelID PanelID) (string, error) {
	n, ok := t.leaves[panelID]
	if !ok {
		return "", trace.NotFound("panel %q not found", panelID)
	}
	var prior string
	if n.sessionID != nil {
		prior = *n.sessionID
	}
	n.sessionID = nil
	return prior, nil
}

// Remove collapses panelID's sibling back into the parent slot. It is an
// error to remove the last leaf in the tree.
func (t *Tree) Remove(panelID PanelID) (RemoveResult, error) {
	n, ok := t.leaves[panelID]
	if !ok {
		return RemoveResult{}, trace.NotFound("panel %q not found", panelID)
	}
	if len(t.leaves) <= 1 {
		return RemoveResult{}, trace.BadParameter("cannot remove the last leaf in a tab")
	}

	t.pool.Release(n.color)
	delete(t.leaves, n.panelID)

	parent := n.parent
	var sibling *node
	if parent.left == n {
		sibling = parent.right
	} else {
		sibling = parent.left
	}

	delete(t.splits, parent.splitID)

	grandparent := parent.parent
	sibling.parent = grandparent
	if grandparent == nil {
		t.root = sibling
	} else {
		if grandparent.left == parent {
			grandparent.left = sibling
		} else {
			grandparent.right = sibling
		}
	}

	if t.focused == n {
		t.focused = firstLeaf(sibling)
	}

	return RemoveResult{SurvivingPanelID: firstLeaf(sibling).panelID}, nil
}

func firstLeaf(n *node) *node {
	for !n.leaf {
		n = n.left
	}
	return n
}

// SetSplitPosition clamps position to [0.1, 0.9] and applies it to the
// named split node.
func (t *Tree) SetSplitPosition(id SplitID, position float64) error {
	n, ok := t.splits[id]
	if !ok {
		return trace.NotFound("split %q not found", id)
	}
	if position < 0.1 {
		position = 0.1
	}
	if position > 0.9 {
		position = 0.9
	}
	n.position = position
	return nil
}

// Focus updates the focused leaf; it is an error if panelID is not
// present in the tree.
func (t *Tree) Focus(panelID PanelID) error {
	n, ok := t.leaves[panelID]
	if !ok {
		return trace.NotFound("panel %q not found", panelID)
	}
	t.focused = n
	return nil
}

// PanelColor returns the color id assigned to a leaf.
func (t *Tree) PanelColor(panelID PanelID) (ColorID, bool) {
	n, ok := t.leaves[panelID]
	if !ok {
		return 0, false
	}
	return n.color, true
}

// PanelSession returns the session id currently placed in a leaf, if any.
func (t *Tree) PanelSession(panelID PanelID) (string, bool) {
	n, ok := t.leaves[panelID]
	if !ok || n.sessionID == nil {
		return "", false
	}
	return *n.sessionID, true
}
