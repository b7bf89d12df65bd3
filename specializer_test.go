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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpecialize(t *testing.T) {
	d, _ := NewDescriptor(1, false, false, NewField("a"), NewField("b"))

	t.Run("ok - equality and a trailing range both survive", func(t *testing.T) {
		p := &Predicate{Members: []Comparison{
			eqCmp("a", Number(1)),
			cmp(OpGE, access("b"), lit(Number(2))),
		}}

		out := Specialize(p, testRef, d)

		assert.Len(t, out.Members, 2)
	})

	t.Run("ok - duplicate equality on the same field is deduplicated", func(t *testing.T) {
		p := &Predicate{Members: []Comparison{
			eqCmp("a", Number(1)),
			eqCmp("a", Number(2)),
		}}

		out := Specialize(p, testRef, d)

		assert.Len(t, out.Members, 1)
	})

	t.Run("ok - equality subsumes a range on the same field", func(t *testing.T) {
		p := &Predicate{Members: []Comparison{
			eqCmp("a", Number(1)),
			cmp(OpGE, access("a"), lit(Number(0))),
		}}

		out := Specialize(p, testRef, d)

		assert.Len(t, out.Members, 1)
		assert.Equal(t, OpEQ, out.Members[0].Operator)
	})

	t.Run("ok - LT subsumes a duplicate LE on the same field", func(t *testing.T) {
		p := &Predicate{Members: []Comparison{
			cmp(OpLT, access("a"), lit(Number(10))),
			cmp(OpLE, access("a"), lit(Number(20))),
		}}

		out := Specialize(p, testRef, d)

		assert.Len(t, out.Members, 1)
		assert.Equal(t, OpLT, out.Members[0].Operator)
	})

	t.Run("ok - a two-sided range keeps one of each side", func(t *testing.T) {
		p := &Predicate{Members: []Comparison{
			cmp(OpGE, access("a"), lit(Number(1))),
			cmp(OpLE, access("a"), lit(Number(9))),
		}}

		out := Specialize(p, testRef, d)

		assert.Len(t, out.Members, 2)
	})

	t.Run("ok - a range field stops the walk at the next field", func(t *testing.T) {
		p := &Predicate{Members: []Comparison{
			cmp(OpGE, access("a"), lit(Number(1))),
			eqCmp("b", Number(2)),
		}}

		out := Specialize(p, testRef, d)

		assert.Len(t, out.Members, 1)
		assert.Equal(t, OpGE, out.Members[0].Operator)
	})

	t.Run("ok - idempotent", func(t *testing.T) {
		p := &Predicate{Members: []Comparison{
			eqCmp("a", Number(1)),
			eqCmp("a", Number(2)),
			cmp(OpGE, access("b"), lit(Number(1))),
			cmp(OpLE, access("b"), lit(Number(9))),
		}}

		once := Specialize(p, testRef, d)
		twice := Specialize(once, testRef, d)

		assert.Equal(t, once.Members, twice.Members)
	})

	t.Run("ok - input predicate is never mutated", func(t *testing.T) {
		p := &Predicate{Members: []Comparison{
			eqCmp("a", Number(1)),
			eqCmp("a", Number(2)),
		}}
		originalLen := len(p.Members)

		Specialize(p, testRef, d)

		assert.Len(t, p.Members, originalLen)
	})
}
