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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeKey(t *testing.T) {
	t.Run("ok - different ids never interleave", func(t *testing.T) {
		k1 := EncodeKey(1, []Scalar{Number(1000)})
		k2 := EncodeKey(2, []Scalar{Number(-1000)})

		assert.True(t, bytes.Compare(k1, k2) < 0)
	})

	t.Run("ok - shorter tuple is a byte-prefix of an extending tuple", func(t *testing.T) {
		short := EncodeKey(1, []Scalar{Number(5)})
		long := EncodeKey(1, []Scalar{Number(5), String("x")})

		assert.True(t, bytes.HasPrefix(long, short))
	})

	t.Run("ok - tuples compare in type-aware order", func(t *testing.T) {
		a := EncodeKey(1, []Scalar{Number(1), Number(1)})
		b := EncodeKey(1, []Scalar{Number(1), Number(2)})

		assert.True(t, bytes.Compare(a, b) < 0)
	})
}

func TestEndpoints(t *testing.T) {
	eq := []Scalar{Number(1)}

	t.Run("ok - pure prefix has equal, non-strict bounds", func(t *testing.T) {
		lower, upper := endpoints(1, eq, nil)

		assert.Equal(t, lower.key, upper.key)
		assert.False(t, lower.strict)
		assert.False(t, upper.strict)
	})

	t.Run("ok - ge lower bound is non-strict and includes the prefix", func(t *testing.T) {
		v := Number(5)
		lower, upper := endpoints(1, eq, &rangeOp{ge: &v})

		assert.False(t, lower.strict)
		assert.Equal(t, Key(EncodeKey(1, append(eq, v))), lower.key)
		assert.Equal(t, Key(EncodeKey(1, eq)), upper.key)
	})

	t.Run("ok - gt lower bound is strict", func(t *testing.T) {
		v := Number(5)
		lower, _ := endpoints(1, eq, &rangeOp{gt: &v})

		assert.True(t, lower.strict)
	})

	t.Run("ok - le upper bound is non-strict", func(t *testing.T) {
		v := Number(5)
		_, upper := endpoints(1, eq, &rangeOp{le: &v})

		assert.False(t, upper.strict)
		assert.Equal(t, Key(EncodeKey(1, append(eq, v))), upper.key)
	})

	t.Run("ok - lt upper bound is strict", func(t *testing.T) {
		v := Number(5)
		_, upper := endpoints(1, eq, &rangeOp{lt: &v})

		assert.True(t, upper.strict)
	})

	t.Run("ok - two sided range combines both edges", func(t *testing.T) {
		lo, hi := Number(2), Number(8)
		lower, upper := endpoints(1, eq, &rangeOp{ge: &lo, le: &hi})

		assert.Equal(t, Key(EncodeKey(1, append(append([]Scalar{}, eq...), lo))), lower.key)
		assert.Equal(t, Key(EncodeKey(1, append(append([]Scalar{}, eq...), hi))), upper.key)
	})
}

func TestPrefixSuccessor(t *testing.T) {
	t.Run("ok - increments the last byte", func(t *testing.T) {
		assert.Equal(t, Key{0x01, 0x03}, prefixSuccessor(Key{0x01, 0x02}))
	})

	t.Run("ok - skips trailing 0xFF bytes", func(t *testing.T) {
		assert.Equal(t, Key{0x02}, prefixSuccessor(Key{0x01, 0xFF, 0xFF}))
	})

	t.Run("ok - all-0xFF key has no successor", func(t *testing.T) {
		assert.Nil(t, prefixSuccessor(Key{0xFF, 0xFF}))
	})

	t.Run("ok - successor sorts after every extension of the prefix", func(t *testing.T) {
		prefix := EncodeKey(1, []Scalar{Number(1)})
		extended := EncodeKey(1, []Scalar{Number(1), String("zzz")})

		assert.True(t, bytes.Compare(prefixSuccessor(prefix), extended) > 0)
	})
}

func TestWithinBounds(t *testing.T) {
	prefix := EncodeKey(1, []Scalar{Number(1)})
	extended := EncodeKey(1, []Scalar{Number(1), Number(2)})

	t.Run("ok - non-strict bound includes a proper extension of the prefix", func(t *testing.T) {
		b := bound{key: prefix, strict: false}

		assert.True(t, withinLower(extended, b))
		assert.True(t, withinUpper(extended, b))
	})

	t.Run("ok - strict bound excludes the exact key and its extensions", func(t *testing.T) {
		b := bound{key: prefix, strict: true}

		assert.False(t, withinLower(prefix, b))
		assert.False(t, withinLower(extended, b))
		assert.False(t, withinUpper(prefix, b))
		assert.False(t, withinUpper(extended, b))
	})

	t.Run("ok - lower bound excludes keys strictly less than it", func(t *testing.T) {
		lowKey := EncodeKey(1, []Scalar{Number(0)})
		b := bound{key: prefix}

		assert.False(t, withinLower(lowKey, b))
	})

	t.Run("ok - upper bound excludes keys strictly greater than it", func(t *testing.T) {
		highKey := EncodeKey(1, []Scalar{Number(2)})
		b := bound{key: prefix}

		assert.False(t, withinUpper(highKey, b))
	})
}
