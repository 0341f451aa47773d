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

import "sync"

// TabGroups assigns a palette index to a named group of tabs: the first
// request for a name allocates the next index sequentially mod palette
// size; subsequent requests for the same name return the same index.
type TabGroups struct {
	mu        sync.Mutex
	paletteSz int
	indices   map[string]int
	next      int
}

// NewTabGroups creates an assigner over a palette of paletteSize entries.
func NewTabGroups(paletteSize int) *TabGroups {
	if paletteSize <= 0 {
		paletteSize = len(DefaultPalette)
	}
	return &TabGroups{
		paletteSz: paletteSize,
		indices:   make(map[string]int),
	}
}

// IndexFor returns the stable palette index for name, allocating one on
// first use.
func (g *TabGroups) IndexFor(name string) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	if idx, ok := g.indices[name]; ok {
		return idx
	}
	idx := g.next % g.paletteSz
	g.next++
	g.indices[name] = idx
	return idx
}
