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

import "sort"

// Specialize is a pure tree rewrite that prunes p down to the canonical
// form this index will ever consume. It returns a new Predicate; p
// itself is never mutated.
func Specialize(p *Predicate, ref string, d *Descriptor) *Predicate {
	matches, _ := matchConditions(p, ref, d)

	var kept []Comparison
	for _, ms := range matches {
		if len(ms) == 0 {
			break
		}

		sorted := make([]opMatch, len(ms))
		copy(sorted, ms)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Operator.precedence() < sorted[j].Operator.precedence()
		})

		accepted := acceptField(sorted)
		for _, m := range accepted {
			kept = append(kept, m.Source)
		}

		// A field whose accepted set is an equality/IN closes the
		// prefix; a field with only range operators may still be
		// followed by a field with matches, but the walk stops there
		// regardless (exactly one range field per scan — the planner
		// and the iterator factory apply this same rule).
		if hasEqualityMatch(accepted) {
			continue
		}
		break
	}

	return &Predicate{Members: kept}
}

// acceptField walks sorted (already ordered by operator precedence) and
// keeps the first occurrence of each operator class: an equality or IN
// closes the field outright, and within each range direction the first
// operator subsumes the rest.
func acceptField(sorted []opMatch) []opMatch {
	var accepted []opMatch
	var sawEqOrIn, sawLtLe, sawGtGe bool

	for _, m := range sorted {
		if sawEqOrIn {
			break
		}
		switch m.Operator {
		case OpEQ, OpIN:
			accepted = append(accepted, m)
			sawEqOrIn = true
		case OpLT, OpLE:
			if sawLtLe {
				continue
			}
			accepted = append(accepted, m)
			sawLtLe = true
		case OpGT, OpGE:
			if sawGtGe {
				continue
			}
			accepted = append(accepted, m)
			sawGtGe = true
		}
	}

	return accepted
}

func hasEqualityMatch(ms []opMatch) bool {
	for _, m := range ms {
		if m.Operator == OpEQ || m.Operator == OpIN {
			return true
		}
	}
	return false
}
