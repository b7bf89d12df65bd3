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
	"errors"
	"strings"
)

// ErrEmptyFields is returned when a Descriptor is built with no fields.
var ErrEmptyFields = errors.New("index must have at least one field")

// Segment is one name component of an attribute path. Expanded marks the
// '[*]' flattening marker from the data model: the array found at this
// segment contributes one tuple slot per element instead of one.
type Segment struct {
	Name     string
	Expanded bool
}

// Field is an ordered attribute path: a sequence of name segments, at
// most one of which is typically expanded, though nothing in the codec
// forbids more than one.
type Field []Segment

// Equals reports whether two fields address the same path with the same
// expansion flags, the equality test the matcher uses to attach a
// comparison to an index field.
func (f Field) Equals(other Field) bool {
	if len(f) != len(other) {
		return false
	}
	for i := range f {
		if f[i] != other[i] {
			return false
		}
	}
	return true
}

// useExpansion reports whether any segment of this field is expanded.
func (f Field) useExpansion() bool {
	for _, s := range f {
		if s.Expanded {
			return true
		}
	}
	return false
}

// gjsonPath renders the field as a gjson path string so element building
// can hand it straight to gjson.GetBytes. An expanded last segment is
// rendered by name alone: gjson already returns the array there, and it
// is the element builder's job to flatten it. An expanded segment that
// is followed by further segments is rendered as "name.#", gjson's query
// for reading the rest of the path from every array element, so
// "list[*].key" resolves to one array of the elements' key values. With
// more than one expanded segment the result is a nested array, and only
// its outer level is flattened.
func (f Field) gjsonPath() string {
	parts := make([]string, 0, len(f))
	for i, s := range f {
		parts = append(parts, s.Name)
		if s.Expanded && i < len(f)-1 {
			parts = append(parts, "#")
		}
	}
	return strings.Join(parts, ".")
}

// NewField parses a dotted path string into a Field. A trailing "[*]" on
// any segment marks it expanded, e.g. "tags[*]" or "list[*].key".
func NewField(path string) Field {
	raw := strings.Split(path, ".")
	field := make(Field, len(raw))
	for i, p := range raw {
		if strings.HasSuffix(p, "[*]") {
			field[i] = Segment{Name: strings.TrimSuffix(p, "[*]"), Expanded: true}
		} else {
			field[i] = Segment{Name: p}
		}
	}
	return field
}

// Descriptor is the immutable-after-creation index definition: an
// ordered sequence of fields plus the unique/sparse policy flags.
type Descriptor struct {
	ID     uint64
	Fields []Field
	Unique bool
	Sparse bool
}

// NewDescriptor validates and builds a Descriptor. useExpansion is
// derived, not stored, so it can never drift from the fields that define
// it.
func NewDescriptor(id uint64, unique, sparse bool, fields ...Field) (*Descriptor, error) {
	if len(fields) == 0 {
		return nil, ErrEmptyFields
	}
	return &Descriptor{ID: id, Fields: fields, Unique: unique, Sparse: sparse}, nil
}

// UseExpansion reports whether any field of this descriptor is expanded.
func (d *Descriptor) UseExpansion() bool {
	for _, f := range d.Fields {
		if f.useExpansion() {
			return true
		}
	}
	return false
}

// Depth returns the number of indexed fields.
func (d *Descriptor) Depth() int {
	return len(d.Fields)
}
