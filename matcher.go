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

// opMatch is one comparison attached to an index field: the operator as
// literally parsed (never pre-flipped — see Side) plus its operand value,
// except that `<scalar> IN doc.v[*]` is recorded as OpEQ.
// For OpIN on a non-expanded field, List carries the candidate values;
// for every other case, Value does. Source is the original comparison
// node, kept so Specialize can reassemble a predicate's member
// list out of the subset it decides to keep.
type opMatch struct {
	Operator Operator
	Side     Side
	Value    Scalar
	List     []Scalar
	Source   Comparison
}

// matchConditions walks every comparison of p, attaches the ones that
// fit an index field to that field's slot, and reports the extra scan
// multiplicity IN lists introduce.
func matchConditions(p *Predicate, ref string, d *Descriptor) (matches [][]opMatch, values int) {
	matches = make([][]opMatch, len(d.Fields))
	values = 0

	for _, cmp := range p.Members {
		fieldIdx, m, ok := accessFitsIndex(cmp, ref, d)
		if !ok {
			continue
		}
		matches[fieldIdx] = append(matches[fieldIdx], m)
		if m.Operator == OpIN && len(m.List) >= 2 {
			values += len(m.List) - 1
		}
	}

	return matches, values
}

// accessFitsIndex decides whether one comparison can be answered by one
// of the descriptor's fields, and under which operator.
func accessFitsIndex(cmp Comparison, ref string, d *Descriptor) (int, opMatch, bool) {
	if cmp.Operator == OpIN {
		return accessFitsIndexIN(cmp, ref, d)
	}

	// Accepted non-IN operators never touch an expanded field, and must
	// have the attribute access on exactly one side with a literal on
	// the other. Both orderings are tried.
	if access, lit, side, ok := splitAccessLiteral(cmp, ref); ok {
		if access.Field.useExpansion() {
			return 0, opMatch{}, false
		}
		if idx, ok := fieldIndexOf(d, access.Field); ok {
			return idx, opMatch{Operator: cmp.Operator, Side: side, Value: lit.Value, Source: cmp}, true
		}
	}
	return 0, opMatch{}, false
}

func accessFitsIndexIN(cmp Comparison, ref string, d *Descriptor) (int, opMatch, bool) {
	// Form 1: doc.v IN [a, b, ...] — field must not be expanded.
	if cmp.Left.Access != nil && cmp.Left.Access.Var == ref && cmp.Right.Lit != nil && cmp.Right.Lit.List != nil {
		access := cmp.Left.Access
		if !access.Field.useExpansion() {
			if idx, ok := fieldIndexOf(d, access.Field); ok {
				return idx, opMatch{Operator: OpIN, Side: SideLeft, List: cmp.Right.Lit.List, Source: cmp}, true
			}
		}
	}

	// Form 2: <scalar> IN doc.v[*] — field must be expanded; this
	// degrades to a plain equality scan on the expanded field.
	if cmp.Right.Access != nil && cmp.Right.Access.Var == ref && cmp.Left.Lit != nil {
		access := cmp.Right.Access
		if access.Field.useExpansion() {
			if idx, ok := fieldIndexOf(d, access.Field); ok {
				return idx, opMatch{Operator: OpEQ, Side: SideRight, Value: cmp.Left.Lit.Value, Source: cmp}, true
			}
		}
	}

	return 0, opMatch{}, false
}

// splitAccessLiteral finds the attribute-access operand (on ref) and the
// literal operand of a binary comparison, trying both orderings, and
// reports which side the access was found on.
func splitAccessLiteral(cmp Comparison, ref string) (*AttributeAccess, *Literal, Side, bool) {
	if cmp.Left.Access != nil && cmp.Left.Access.Var == ref && cmp.Right.Lit != nil {
		return cmp.Left.Access, cmp.Right.Lit, SideLeft, true
	}
	if cmp.Right.Access != nil && cmp.Right.Access.Var == ref && cmp.Left.Lit != nil {
		return cmp.Right.Access, cmp.Left.Lit, SideRight, true
	}
	return nil, nil, SideLeft, false
}

func fieldIndexOf(d *Descriptor, f Field) (int, bool) {
	for i, df := range d.Fields {
		if df.Equals(f) {
			return i, true
		}
	}
	return 0, false
}
