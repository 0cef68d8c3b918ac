// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package intern provides the fixed-capacity tables the encoder uses to
// replace repeated strings with small integer ids.
//
// Tables never grow. Once full they refuse new strings and report id 0,
// which callers treat as "leave the field out".
package intern

import "unicode/utf8"

// MaxNameLen is the longest name a Table stores. Longer names are cut to
// this length before hashing, so names sharing a long prefix share an id.
const MaxNameLen = 32

type entry struct {
	hash    uint32
	name    string
	emitted bool
}

// A Table maps strings to ids 1, 2, 3... in order of first use.
//
// A Table is not safe for concurrent use.
type Table struct {
	entries []entry
}

// NewTable returns an empty table holding at most capacity names.
func NewTable(capacity int) *Table {
	return &Table{entries: make([]entry, 0, capacity)}
}

// Intern returns the id of name, adding it to the table if needed.
// It returns 0 for the empty string and when the table is full.
func (t *Table) Intern(name string) uint64 {
	name = Truncate(name, MaxNameLen)
	if name == "" {
		return 0
	}
	h := hash(name)
	for i := range t.entries {
		e := &t.entries[i]
		if e.hash == h && e.name == name {
			return uint64(i + 1)
		}
	}
	if len(t.entries) == cap(t.entries) {
		return 0
	}
	t.entries = append(t.entries, entry{hash: h, name: name})
	return uint64(len(t.entries))
}

// Lookup returns the name with the given id.
func (t *Table) Lookup(id uint64) (string, bool) {
	e := t.entry(id)
	if e == nil {
		return "", false
	}
	return e.name, true
}

// Emitted reports whether the definition of id has been written to the
// trace. Unknown ids report true, as there is nothing to write for them.
func (t *Table) Emitted(id uint64) bool {
	e := t.entry(id)
	return e == nil || e.emitted
}

// MarkEmitted records that the definition of id is in the trace.
func (t *Table) MarkEmitted(id uint64) {
	if e := t.entry(id); e != nil {
		e.emitted = true
	}
}

// Reset removes every name. Ids restart at 1.
func (t *Table) Reset() {
	clear(t.entries)
	t.entries = t.entries[:0]
}

// Len returns the number of names in the table.
func (t *Table) Len() int { return len(t.entries) }

// Cap returns the number of names the table can hold.
func (t *Table) Cap() int { return cap(t.entries) }

func (t *Table) entry(id uint64) *entry {
	if id == 0 || id > uint64(len(t.entries)) {
		return nil
	}
	return &t.entries[id-1]
}

// Truncate returns the longest prefix of s that is at most n bytes long and
// does not end inside a multi-byte UTF-8 sequence.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// hash is djb2.
func hash(s string) uint32 {
	h := uint32(5381)
	for i := 0; i < len(s); i++ {
		h = h*33 + uint32(s[i])
	}
	return h
}
