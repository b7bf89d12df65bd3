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
	"encoding/binary"
	"math"
	"sort"
)

// kind orders the value classes as required by the data model:
// undefined < null < boolean < number < string < array < object.
// The numeric spacing leaves room so new classes can be inserted later
// without renumbering the ones that already shipped.
type kind byte

const (
	kindUndefined kind = 0x00
	kindNull      kind = 0x10
	kindFalse     kind = 0x20
	kindTrue      kind = 0x21
	kindNumber    kind = 0x30
	kindString    kind = 0x40
	kindArray     kind = 0x50
	kindObject    kind = 0x60
)

// Scalar is a typed value extracted from a document along one index field.
// It is the dynamically-typed value the key codec knows how to order and
// encode; Undefined is a sentinel for "attribute missing". A sparse index
// never persists it; a non-sparse index stores it as the lowest value.
type Scalar struct {
	k    kind
	num  float64
	str  string
	arr  []Scalar
	obj  map[string]Scalar
}

// Undefined denotes a missing attribute. It sorts before Null.
var Undefined = Scalar{k: kindUndefined}

// Null is the JSON null value.
var Null = Scalar{k: kindNull}

// Bool builds a boolean scalar.
func Bool(b bool) Scalar {
	if b {
		return Scalar{k: kindTrue}
	}
	return Scalar{k: kindFalse}
}

// Number builds a numeric scalar.
func Number(f float64) Scalar {
	return Scalar{k: kindNumber, num: f}
}

// String builds a string scalar.
func String(s string) Scalar {
	return Scalar{k: kindString, str: s}
}

// Array builds an array scalar out of already-typed elements.
func Array(elems ...Scalar) Scalar {
	return Scalar{k: kindArray, arr: elems}
}

// Object builds an object scalar. Key order does not matter; encoding and
// comparison always happen on sorted keys.
func Object(fields map[string]Scalar) Scalar {
	return Scalar{k: kindObject, obj: fields}
}

// IsUndefined reports whether this scalar is the missing-attribute sentinel.
func (s Scalar) IsUndefined() bool {
	return s.k == kindUndefined
}

// StringValue returns the underlying string and whether s is a string.
func (s Scalar) StringValue() (string, bool) {
	return s.str, s.k == kindString
}

// NumberValue returns the underlying number and whether s is a number.
func (s Scalar) NumberValue() (float64, bool) {
	return s.num, s.k == kindNumber
}

// Equal reports whether two scalars encode to the same key bytes.
func (s Scalar) Equal(other Scalar) bool {
	return compareScalar(s, other) == 0
}

// Less reports whether s sorts strictly before other under the type-aware
// order from the data model.
func (s Scalar) Less(other Scalar) bool {
	return compareScalar(s, other) < 0
}

// compareScalar implements the full cross-class order. It is only used by
// tests and by callers that want a comparison without paying for an
// encode; the codec itself compares encoded bytes, which must agree with
// this function by construction (both walk the same kind ordering).
func compareScalar(a, b Scalar) int {
	if a.k != b.k {
		if a.k < b.k {
			return -1
		}
		return 1
	}
	switch a.k {
	case kindUndefined, kindNull, kindFalse, kindTrue:
		return 0
	case kindNumber:
		switch {
		case a.num < b.num:
			return -1
		case a.num > b.num:
			return 1
		default:
			return 0
		}
	case kindString:
		switch {
		case a.str < b.str:
			return -1
		case a.str > b.str:
			return 1
		default:
			return 0
		}
	case kindArray:
		for i := 0; i < len(a.arr) && i < len(b.arr); i++ {
			if c := compareScalar(a.arr[i], b.arr[i]); c != 0 {
				return c
			}
		}
		return len(a.arr) - len(b.arr)
	case kindObject:
		ak, bk := sortedKeys(a.obj), sortedKeys(b.obj)
		for i := 0; i < len(ak) && i < len(bk); i++ {
			if ak[i] != bk[i] {
				if ak[i] < bk[i] {
					return -1
				}
				return 1
			}
			if c := compareScalar(a.obj[ak[i]], b.obj[bk[i]]); c != 0 {
				return c
			}
		}
		return len(ak) - len(bk)
	}
	return 0
}

func sortedKeys(m map[string]Scalar) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Bytes encodes a single scalar as a self-delimiting byte sequence: a tag
// byte identifying the class, followed by a payload whose own encoding
// never produces a byte sequence that could be mistaken for "end of
// value" by a reader walking left to right. Self-delimiting encoding is
// what lets tuple encoding (encodeTuple in key.go) simply concatenate
// scalars and keep the data model's prefix-consistency guarantee: a
// shorter tuple's bytes are always a true byte-prefix of any longer tuple
// that extends it with the same leading values.
func (s Scalar) Bytes() []byte {
	switch s.k {
	case kindUndefined, kindNull, kindFalse, kindTrue:
		return []byte{byte(s.k)}
	case kindNumber:
		buf := make([]byte, 9)
		buf[0] = byte(s.k)
		binary.BigEndian.PutUint64(buf[1:], orderedFloatBits(s.num))
		return buf
	case kindString:
		return appendTagged(byte(s.k), escapeString(s.str))
	case kindArray:
		var payload []byte
		for _, e := range s.arr {
			payload = append(payload, e.Bytes()...)
		}
		return appendTagged(byte(s.k), terminate(payload))
	case kindObject:
		var payload []byte
		for _, key := range sortedKeys(s.obj) {
			payload = append(payload, escapeString(key)...)
			payload = append(payload, s.obj[key].Bytes()...)
		}
		return appendTagged(byte(s.k), terminate(payload))
	}
	return []byte{byte(kindUndefined)}
}

func appendTagged(tag byte, payload []byte) []byte {
	buf := make([]byte, 0, len(payload)+1)
	buf = append(buf, tag)
	buf = append(buf, payload...)
	return buf
}

// orderedFloatBits maps a float64's IEEE-754 bit pattern onto an ordering
// that matches numeric order when compared as a big-endian unsigned
// integer: flip the sign bit for non-negatives, flip every bit for
// negatives. This is the standard trick used by order-preserving KV key
// encodings (e.g. FoundationDB's and CockroachDB's tuple layers).
func orderedFloatBits(f float64) uint64 {
	bits := math.Float64bits(f)
	if f >= 0 || math.IsNaN(f) {
		return bits | 0x8000000000000000
	}
	return ^bits
}

// escapeString makes a string self-delimiting: every literal 0x00 byte is
// escaped as 0x00 0xFF, and the whole payload is terminated with
// 0x00 0x00. Because 0x00 0xFF > 0x00 0x00 under byte comparison, a string
// that is a true prefix of another still sorts before it, preserving
// lexicographic order across the escape.
func escapeString(s string) []byte {
	buf := make([]byte, 0, len(s)+2)
	for i := 0; i < len(s); i++ {
		b := s[i]
		if b == 0x00 {
			buf = append(buf, 0x00, 0xFF)
			continue
		}
		buf = append(buf, b)
	}
	return terminate(buf)
}

func terminate(payload []byte) []byte {
	buf := make([]byte, 0, len(payload)+2)
	buf = append(buf, payload...)
	buf = append(buf, 0x00, 0x00)
	return buf
}
