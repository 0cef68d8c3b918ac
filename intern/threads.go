// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package intern

// A ThreadSet remembers which thread identities already have a descriptor
// in the trace.
type ThreadSet struct {
	ids []uint64
}

// NewThreadSet returns an empty set holding at most capacity identities.
func NewThreadSet(capacity int) *ThreadSet {
	return &ThreadSet{ids: make([]uint64, 0, capacity)}
}

// Emitted reports whether id has been marked.
func (s *ThreadSet) Emitted(id uint64) bool {
	for _, v := range s.ids {
		if v == id {
			return true
		}
	}
	return false
}

// Mark records id. It returns false if the set is full and id could not be
// recorded; such a thread keeps reporting not emitted, and its descriptor
// is written again each time it is needed.
func (s *ThreadSet) Mark(id uint64) bool {
	if s.Emitted(id) {
		return true
	}
	if len(s.ids) == cap(s.ids) {
		return false
	}
	s.ids = append(s.ids, id)
	return true
}

// Reset forgets every identity.
func (s *ThreadSet) Reset() {
	s.ids = s.ids[:0]
}

// Len returns the number of identities recorded.
func (s *ThreadSet) Len() int { return len(s.ids) }
