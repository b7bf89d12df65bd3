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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScalar_Less(t *testing.T) {
	t.Run("ok - undefined sorts before null", func(t *testing.T) {
		assert.True(t, Undefined.Less(Null))
	})

	t.Run("ok - null sorts before bool", func(t *testing.T) {
		assert.True(t, Null.Less(Bool(false)))
	})

	t.Run("ok - false sorts before true", func(t *testing.T) {
		assert.True(t, Bool(false).Less(Bool(true)))
	})

	t.Run("ok - bool sorts before number", func(t *testing.T) {
		assert.True(t, Bool(true).Less(Number(-1000)))
	})

	t.Run("ok - number sorts before string", func(t *testing.T) {
		assert.True(t, Number(1e300).Less(String("")))
	})

	t.Run("ok - string sorts before array", func(t *testing.T) {
		assert.True(t, String("zzzz").Less(Array()))
	})

	t.Run("ok - array sorts before object", func(t *testing.T) {
		assert.True(t, Array(String("z")).Less(Object(map[string]Scalar{"a": Null})))
	})

	t.Run("ok - numeric order across signs", func(t *testing.T) {
		assert.True(t, Number(-5).Less(Number(-1)))
		assert.True(t, Number(-1).Less(Number(0)))
		assert.True(t, Number(0).Less(Number(1)))
		assert.True(t, Number(1).Less(Number(5)))
	})

	t.Run("ok - string lexicographic order", func(t *testing.T) {
		assert.True(t, String("a").Less(String("b")))
		assert.True(t, String("abc").Less(String("abd")))
		assert.True(t, String("ab").Less(String("abc")))
	})

	t.Run("ok - array element-wise order", func(t *testing.T) {
		a := Array(Number(1), Number(2))
		b := Array(Number(1), Number(3))
		assert.True(t, a.Less(b))
	})

	t.Run("ok - shorter array sorts before longer prefix-equal array", func(t *testing.T) {
		a := Array(Number(1))
		b := Array(Number(1), Number(2))
		assert.True(t, a.Less(b))
	})

	t.Run("ok - object order by sorted keys then values", func(t *testing.T) {
		a := Object(map[string]Scalar{"a": Number(1)})
		b := Object(map[string]Scalar{"b": Number(0)})
		assert.True(t, a.Less(b))
	})
}

func TestScalar_BytesOrderMatchesLess(t *testing.T) {
	values := []Scalar{
		Undefined,
		Null,
		Bool(false),
		Bool(true),
		Number(-1e10),
		Number(-1),
		Number(0),
		Number(1),
		Number(1e10),
		String(""),
		String("\x00withNul"),
		String("a"),
		String("ab"),
		String("b"),
		Array(),
		Array(Number(1)),
		Array(Number(1), Number(2)),
		Array(String("z")),
		Object(map[string]Scalar{"a": Number(1)}),
		Object(map[string]Scalar{"b": Number(1)}),
	}

	encoded := make([][]byte, len(values))
	for i, v := range values {
		encoded[i] = v.Bytes()
	}

	t.Run("ok - encoded bytes already ascending", func(t *testing.T) {
		sorted := make([][]byte, len(encoded))
		copy(sorted, encoded)
		sort.Slice(sorted, func(i, j int) bool {
			return bytes.Compare(sorted[i], sorted[j]) < 0
		})
		for i := range encoded {
			assert.True(t, bytes.Equal(encoded[i], sorted[i]), "index %d out of order", i)
		}
	})

	t.Run("ok - pairwise byte order matches Less", func(t *testing.T) {
		for i := range values {
			for j := range values {
				if i == j {
					continue
				}
				wantLess := values[i].Less(values[j])
				gotLess := bytes.Compare(values[i].Bytes(), values[j].Bytes()) < 0
				assert.Equal(t, wantLess, gotLess, "pair (%d,%d)", i, j)
			}
		}
	})
}

func TestScalar_Equal(t *testing.T) {
	t.Run("ok - equal numbers", func(t *testing.T) {
		assert.True(t, Number(1).Equal(Number(1)))
	})

	t.Run("ok - different kinds not equal", func(t *testing.T) {
		assert.False(t, Number(0).Equal(Bool(false)))
	})
}
