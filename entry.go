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
	"fmt"
	"strconv"
)

// PrimaryKey identifies a document in the primary index. It is the value
// the secondary index stores at each entry key.
type PrimaryKey []byte

// String renders the primary key in its readable byte form.
func (p PrimaryKey) String() string {
	return string(p)
}

// entrySet holds the primary keys stored under a single encoded index
// key. More than one document can legitimately produce the same tuple in
// a non-unique index; since the KV contract only offers a single value
// per key, the value at a key is this small set rather than a bare
// primary key. A unique index never lets the set grow past size 1,
// enforced in writepath.go.
type entrySet struct {
	size int
	keys map[string]PrimaryKey
}

func newEntrySet() *entrySet {
	return &entrySet{keys: make(map[string]PrimaryKey)}
}

// add inserts pk into the set. size pins every member to the same byte
// length, so a corrupt mixed-width set is caught at write time instead
// of silently truncating on decode.
func (e *entrySet) add(pk PrimaryKey) error {
	if e.size != 0 && len(pk) != e.size {
		return fmt.Errorf("primary key size mismatch: got %d, expected %d", len(pk), e.size)
	}
	e.size = len(pk)
	e.keys[string(pk)] = pk
	return nil
}

func (e *entrySet) remove(pk PrimaryKey) {
	delete(e.keys, string(pk))
}

func (e *entrySet) len() int {
	return len(e.keys)
}

// slice returns the set's members in no particular order.
func (e *entrySet) slice() []PrimaryKey {
	out := make([]PrimaryKey, 0, len(e.keys))
	for _, pk := range e.keys {
		out = append(out, pk)
	}
	return out
}

// marshal renders the set as "<size>#" followed by the concatenated
// primary keys.
func (e *entrySet) marshal() []byte {
	buf := bytes.NewBufferString(strconv.Itoa(e.size))
	buf.WriteByte('#')
	for _, pk := range e.slice() {
		buf.Write(pk)
	}
	return buf.Bytes()
}

// unmarshalEntrySet parses the framing marshal produces. An empty input
// yields an empty set (a key with no stored value behaves as absent).
func unmarshalEntrySet(data []byte) (*entrySet, error) {
	e := newEntrySet()
	if len(data) == 0 {
		return e, nil
	}

	sep := bytes.IndexByte(data, '#')
	if sep < 0 {
		return nil, fmt.Errorf("malformed index entry: missing size separator")
	}
	size, err := strconv.Atoi(string(data[:sep]))
	if err != nil {
		return nil, fmt.Errorf("malformed index entry size: %w", err)
	}
	if size == 0 {
		return e, nil
	}

	rest := data[sep+1:]
	if len(rest)%size != 0 {
		return nil, fmt.Errorf("malformed index entry: %d bytes not a multiple of key size %d", len(rest), size)
	}
	for i := 0; i < len(rest); i += size {
		pk := make(PrimaryKey, size)
		copy(pk, rest[i:i+size])
		if err := e.add(pk); err != nil {
			return nil, err
		}
	}
	return e, nil
}
