/*
 * go-leia
 * Copyright (C) 2021 Nuts community
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 *
 */

package secidx

import (
	"bytes"
	"sort"
)

// memKV is a minimal in-memory KVStore used only by this module's own
// tests, so the codec, write path and iterators can be exercised without
// paying for a real bbolt file per test case. It keeps keys sorted on
// every write, which is wasteful for production use but trivial to reason
// about in a test.
type memKV struct {
	keys   [][]byte
	values map[string][]byte
}

func newMemKV() *memKV {
	return &memKV{values: make(map[string][]byte)}
}

func (m *memKV) Get(key []byte) ([]byte, bool, error) {
	v, ok := m.values[string(key)]
	return v, ok, nil
}

func (m *memKV) Put(key, value []byte) error {
	if _, exists := m.values[string(key)]; !exists {
		m.keys = append(m.keys, append([]byte{}, key...))
		sort.Slice(m.keys, func(i, j int) bool { return bytes.Compare(m.keys[i], m.keys[j]) < 0 })
	}
	m.values[string(key)] = append([]byte{}, value...)
	return nil
}

func (m *memKV) Delete(key []byte) error {
	delete(m.values, string(key))
	for i, k := range m.keys {
		if bytes.Equal(k, key) {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
	return nil
}

func (m *memKV) NewIterator() Cursor {
	return &memCursor{store: m, pos: -1}
}

type memCursor struct {
	store *memKV
	pos   int
}

func (c *memCursor) Seek(key []byte) {
	c.pos = sort.Search(len(c.store.keys), func(i int) bool {
		return bytes.Compare(c.store.keys[i], key) >= 0
	})
}

func (c *memCursor) Next() {
	if c.pos < len(c.store.keys) {
		c.pos++
	}
}

func (c *memCursor) Prev() {
	c.pos--
}

func (c *memCursor) Valid() bool {
	return c.pos >= 0 && c.pos < len(c.store.keys)
}

func (c *memCursor) Key() []byte {
	if !c.Valid() {
		return nil
	}
	return c.store.keys[c.pos]
}

func (c *memCursor) Value() []byte {
	if !c.Valid() {
		return nil
	}
	return c.store.values[string(c.store.keys[c.pos])]
}

// memPrimaryIndex resolves primary keys back to documents; tests register
// documents under their primary key and hand memPrimaryIndex.lookup to
// the iterator.
type memPrimaryIndex struct {
	docs map[string]Document
}

func newMemPrimaryIndex() *memPrimaryIndex {
	return &memPrimaryIndex{docs: make(map[string]Document)}
}

func (p *memPrimaryIndex) put(pk PrimaryKey, doc Document) {
	p.docs[string(pk)] = doc
}

func (p *memPrimaryIndex) lookup(pk PrimaryKey) (Document, bool, error) {
	doc, ok := p.docs[string(pk)]
	return doc, ok, nil
}
