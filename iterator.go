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

// PrimaryLookup resolves a primary key to its current document. Primary
// storage is an external collaborator; the indirection tolerates document
// relocations between index write and read.
type PrimaryLookup func(pk PrimaryKey) (Document, bool, error)

// Hit is one resolved iterator result: the document plus the primary key
// that produced it.
type Hit struct {
	Document   Document
	PrimaryKey PrimaryKey
}

// Iterator is a bounded sorted scan between two encoded endpoints. The
// endpoint comparison lives in withinLower/withinUpper (key.go) so the
// scan never depends on the KV engine comparing a short endpoint against
// a longer key.
type Iterator struct {
	store   KVStore
	left    bound
	right   bound
	reverse bool
	lookup  PrimaryLookup

	cursor  Cursor
	started bool
	done    bool
	queue   []PrimaryKey
}

// NewIterator builds an Iterator scoped to one already-open KV store
// handle. The returned Iterator exclusively owns the cursor it opens;
// dropping the Iterator (letting it go out of scope) releases it.
func NewIterator(store KVStore, left, right bound, reverse bool, lookup PrimaryLookup) *Iterator {
	return &Iterator{store: store, left: left, right: right, reverse: reverse, lookup: lookup}
}

func (it *Iterator) reset() {
	it.cursor = it.store.NewIterator()

	if !it.reverse {
		it.cursor.Seek(it.left.key)
		return
	}

	// The upper bound is prefix-inclusive unless strict, so in-range keys
	// may sort after right.key itself. Seek past the whole prefix closure
	// and step back once: Seek lands on the first key past the closure (or
	// goes invalid at end-of-table, where Prev lands on the last key,
	// bbolt's documented idiom for a reverse range scan). Keys equal to a
	// strict bound are filtered by withinUpper in the Next loop.
	if succ := prefixSuccessor(it.right.key); succ != nil {
		it.cursor.Seek(succ)
	} else {
		it.cursor.Seek(it.right.key)
		for it.cursor.Valid() {
			it.cursor.Next()
		}
	}
	it.cursor.Prev()
}

func (it *Iterator) step() {
	if it.reverse {
		it.cursor.Prev()
	} else {
		it.cursor.Next()
	}
}

// Next returns the next hit in scan order, or (nil, nil) at the end
// of the range. Every stored key resolves through the entrySet it holds,
// since more than one document can share an encoded tuple in a non-unique
// index; Next drains that set's members, one Hit per call, before
// stepping the cursor again.
func (it *Iterator) Next() (*Hit, error) {
	if !it.started {
		it.reset()
		it.started = true
	}

	for {
		for len(it.queue) > 0 {
			pk := it.queue[0]
			it.queue = it.queue[1:]
			doc, ok, err := it.lookup(pk)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			return &Hit{Document: doc, PrimaryKey: pk}, nil
		}

		if it.done || !it.cursor.Valid() {
			it.done = true
			return nil, nil
		}

		k := it.cursor.Key()

		if it.reverse {
			if !withinUpper(k, it.right) {
				it.step()
				continue
			}
			if !withinLower(k, it.left) {
				it.done = true
				return nil, nil
			}
		} else {
			if !withinLower(k, it.left) {
				it.step()
				continue
			}
			if !withinUpper(k, it.right) {
				it.done = true
				return nil, nil
			}
		}

		set, err := unmarshalEntrySet(it.cursor.Value())
		if err != nil {
			return nil, err
		}
		it.queue = set.slice()
		it.step()
	}
}

// MultiIndexIterator concatenates a static list of sub-iterators in
// order, reversed when reverse is true, multiplexing the per-value scans
// of an IN predicate into one logical scan. It owns its children
// transitively: draining or dropping it is enough to release every
// underlying cursor.
type MultiIndexIterator struct {
	iterators []*Iterator
	reverse   bool
	idx       int
}

// NewMultiIndexIterator wraps children in scan order (the order the
// iterator factory built them in); reverse only affects which end of the
// list is drained first, not the order within each child.
func NewMultiIndexIterator(children []*Iterator, reverse bool) *MultiIndexIterator {
	return &MultiIndexIterator{iterators: children, reverse: reverse}
}

func (m *MultiIndexIterator) Next() (*Hit, error) {
	for {
		i := m.idx
		if m.reverse {
			i = len(m.iterators) - 1 - m.idx
		}
		if i < 0 || i >= len(m.iterators) {
			return nil, nil
		}

		hit, err := m.iterators[i].Next()
		if err != nil {
			return nil, err
		}
		if hit != nil {
			return hit, nil
		}
		m.idx++
	}
}
