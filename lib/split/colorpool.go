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

// Package split implements the tab-scoped binary-tree panel layout: split,
// place, remove, focus, and the fixed-size color pool panels draw their
// identity color from.
package split

// ColorID indexes into a fixed palette of RGB tuples.
type ColorID int

// RGB is one palette entry.
type RGB struct {
	R, G, B uint8
}

// DefaultPalette is the built-in 8-color palette assigned to new panels.
var DefaultPalette = []RGB{
	{230, 25, 75}, {60, 180, 75}, {255, 225, 25}, {0, 130, 200},
	{245, 130, 48}, {145, 30, 180}, {70, 240, 240}, {240, 50, 230},
}

// ColorPool assigns a ColorID to each new panel on first use, recycling
// the least-recently-released index so a fresh panel's color isn't
// visually adjacent to whatever panel just vacated it.
type ColorPool struct {
	size int
	// free holds released indices, oldest-released first (LRU reuse).
	free []ColorID
	next ColorID
}

// NewColorPool creates a pool over a palette of size entries. size must be
// > 0.
func NewColorPool(size int) *ColorPool {
	if size <= 0 {
		size = len(DefaultPalette)
	}
	return &ColorPool{size: size}
}

// Acquire returns the next color, preferring the oldest released index,
// falling back to sequential allocation, and finally wrapping modulo pool
// size once every index has been handed out at least once.
func (p *ColorPool) Acquire() ColorID {
	if len(p.free) > 0 {
		id := p.free[0]
		p.free = p.free[1:]
		return id
	}
	if p.next < ColorID(p.size) {
		id := p.next
		p.next++
		return id
	}
	// pool exhausted and nothing released yet: wrap around.
	id := ColorID(int(p.next) % p.size)
	p.next++
	return id
}

// Release returns id to the free list for LRU reuse.
func (p *ColorPool) Release(id ColorID) {
	p.free = append(p.free, id)
}

// Seed advances the pool's sequential cursor past every id already in
// use, so a pool rebuilt alongside a restored Tree (see
// NewTreeFromSnapshot) does not immediately hand an in-use color back
// out to the next freshly split panel.
func (p *ColorPool) Seed(used []ColorID) {
	for _, id := range used {
		if id >= ColorID(p.size) {
			continue
		}
		if id >= p.next {
			p.next = id + 1
		}
	}
}

// Size returns the palette size this pool was constructed with.
func (p *ColorPool) Size() int {
	return p.size
}
