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
	"encoding/binary"
)

// Key is a fully or partially encoded index key. It is always a valid
// prefix of any key for a tuple that extends it with the same leading
// scalar values (see Scalar.Bytes).
type Key []byte

// encodeID renders an index-id as its fixed-width key prefix. A fixed
// width keeps entries of different indexes from ever interleaving,
// regardless of how their tuples compare.
func encodeID(id uint64) Key {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, id)
	return buf
}

// encodeTuple concatenates the self-delimiting encoding of each scalar in
// order. Concatenation alone is correct because every Scalar.Bytes
// encoding is self-delimiting: it never produces a sequence that a
// following scalar's bytes could be confused with.
func encodeTuple(values []Scalar) Key {
	var buf []byte
	for _, v := range values {
		buf = append(buf, v.Bytes()...)
	}
	return buf
}

// EncodeKey builds the full index entry key for an (id, tuple) pair.
func EncodeKey(id uint64, values []Scalar) Key {
	return append(encodeID(id), encodeTuple(values)...)
}

// bound describes one edge of a range scan. key is the encoded prefix the
// bound is anchored to. strict, when true, excludes any stored key that
// is exactly equal to key (used for the open side of '<' and '>'); it
// also excludes proper extensions of key (a strict bound denotes "this
// field's value itself is excluded", and an extension still carries that
// same field value). A non-strict bound is prefix-inclusive: any stored
// key that has `key` as a true byte-prefix lies within the bound, because
// such a key merely carries additional, unconstrained trailing fields.
//
// This explicit (key, strict) model exists instead of "seek then compare
// raw bytes" specifically so a short endpoint is never compared, via the
// store's raw byte comparator, against a longer key as if shorter always
// meant "less".
type bound struct {
	key    Key
	strict bool
}

func withinLower(k []byte, b bound) bool {
	if bytes.HasPrefix(k, b.key) {
		return !b.strict
	}
	return bytes.Compare(k, b.key) > 0
}

func withinUpper(k []byte, b bound) bool {
	if bytes.HasPrefix(k, b.key) {
		return !b.strict
	}
	return bytes.Compare(k, b.key) < 0
}

// rangeOp names the operator(s) applied to the final, non-equality field
// of a scan. Equality/IN fields are folded into the equality prefix
// before a rangeOp is ever considered. Up to two
// of the four may be set at once (a two-sided range), in which case only
// one of {ge,gt} and one of {le,lt} make sense together.
type rangeOp struct {
	ge, gt *Scalar
	le, lt *Scalar
}

// endpoints builds the [lower, upper] bounds for an equality prefix plus
// an optional range condition on the field right after it. A pure prefix
// scan uses the same prefix-inclusive bound on both sides.
func endpoints(id uint64, equality []Scalar, r *rangeOp) (lower, upper bound) {
	prefix := EncodeKey(id, equality)
	lower = bound{key: prefix}
	upper = bound{key: prefix}

	if r == nil {
		return lower, upper
	}

	switch {
	case r.ge != nil:
		lower = bound{key: EncodeKey(id, withValue(equality, *r.ge))}
	case r.gt != nil:
		lower = bound{key: EncodeKey(id, withValue(equality, *r.gt)), strict: true}
	}

	switch {
	case r.le != nil:
		upper = bound{key: EncodeKey(id, withValue(equality, *r.le))}
	case r.lt != nil:
		upper = bound{key: EncodeKey(id, withValue(equality, *r.lt)), strict: true}
	}

	return lower, upper
}

// prefixSuccessor returns the smallest key that sorts after every key
// carrying k as a prefix, or nil when no such key exists (k is all 0xFF).
// A reverse scan seeks here and steps back once to land on the last key
// inside the prefix closure.
func prefixSuccessor(k Key) Key {
	out := append(Key{}, k...)
	for i := len(out) - 1; i >= 0; i-- {
		if out[i] != 0xFF {
			out[i]++
			return out[:i+1]
		}
	}
	return nil
}

func withValue(equality []Scalar, v Scalar) []Scalar {
	out := make([]Scalar, len(equality)+1)
	copy(out, equality)
	out[len(equality)] = v
	return out
}
